package catalyst

import (
	"encoding/json"
	"time"

	"github.com/makerhub/innovation-wizard/internal/ai"
	"github.com/makerhub/innovation-wizard/internal/notify"
	"github.com/makerhub/innovation-wizard/internal/wizard/async"
)

type State struct {
	SessionID     string                              `json:"sessionId"`
	OwnerID       string                              `json:"ownerId"`
	View          View                                `json:"view"`
	Form          RoughIdea                           `json:"form"`
	Analysis      async.Snapshot[ai.AdvancedAnalysis] `json:"analysis"`
	Innovation    *ai.InnovationAnalysis              `json:"innovation,omitempty"`
	SmartKit      json.RawMessage                     `json:"smartKit,omitempty"`
	Collaboration *ai.Collaboration                   `json:"collaboration,omitempty"`
	Notifications []notify.Notification               `json:"notifications"`
	Navigation    string                              `json:"navigation,omitempty"`
	Mounted       bool                                `json:"mounted"`
	LastTouched   time.Time                           `json:"lastTouched"`
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	return State{
		SessionID:     s.id,
		OwnerID:       s.owner.ID,
		View:          s.view(),
		Form:          s.form,
		Analysis:      s.analysis.State(),
		Innovation:    s.innovation,
		SmartKit:      s.smartKit,
		Collaboration: s.collaboration,
		Notifications: s.notes.All(),
		Navigation:    s.navigation,
		Mounted:       s.mounted,
		LastTouched:   s.LastTouched().UTC(),
	}
}
