package service

import (
	"time"

	"github.com/makerhub/innovation-wizard/internal/ai"
	"github.com/makerhub/innovation-wizard/internal/notify"
	"github.com/makerhub/innovation-wizard/internal/projects"
	"github.com/makerhub/innovation-wizard/internal/wizard/async"
	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
)

// StepStatus is the derived view of one step.
type StepStatus struct {
	Step      int    `json:"step"`
	Name      string `json:"name"`
	Valid     bool   `json:"valid"`
	Reachable bool   `json:"reachable"`
}

// State is everything a client needs to render a session.
type State struct {
	SessionID        string                                  `json:"sessionId"`
	OwnerID          string                                  `json:"ownerId"`
	CurrentStep      int                                     `json:"currentStep"`
	StepName         string                                  `json:"stepName"`
	MaxReachableStep int                                     `json:"maxReachableStep"`
	IsFirstStep      bool                                    `json:"isFirstStep"`
	IsLastStep       bool                                    `json:"isLastStep"`
	Steps            []StepStatus                            `json:"steps"`
	JumpPolicy       domain.JumpPolicy                       `json:"jumpPolicy"`
	Draft            domain.ProjectDraft                     `json:"draft"`
	Classification   async.Snapshot[ai.ClassificationResult] `json:"classification"`
	TeamSuggestion   async.Snapshot[ai.TeamSuggestionResult] `json:"teamSuggestion"`
	Submission       async.Snapshot[projects.CreatedProject] `json:"submission"`
	Notifications    []notify.Notification                   `json:"notifications"`
	Navigation       string                                  `json:"navigation,omitempty"`
	Mounted          bool                                    `json:"mounted"`
	LastTouched      time.Time                               `json:"lastTouched"`
}

// State returns the current view. It also works after the session ended, so a
// client can read the outcome of a launch.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	d := s.form.Snapshot()
	current := s.steps.Current()

	steps := make([]StepStatus, 0, s.steps.Max())
	for n := 1; n <= s.steps.Max(); n++ {
		step := domain.Step(n)
		steps = append(steps, StepStatus{
			Step:      n,
			Name:      step.String(),
			Valid:     step != domain.StepIdeation || ideationGaps(d, step) == nil,
			Reachable: s.policy == domain.JumpFree || n <= s.maxReached,
		})
	}

	return State{
		SessionID:        s.id,
		OwnerID:          s.owner.ID,
		CurrentStep:      current,
		StepName:         domain.Step(current).String(),
		MaxReachableStep: s.maxReached,
		IsFirstStep:      s.steps.IsFirst(),
		IsLastStep:       s.steps.IsLast(),
		Steps:            steps,
		JumpPolicy:       s.policy,
		Draft:            d,
		Classification:   s.classify.State(),
		TeamSuggestion:   s.team.State(),
		Submission:       s.submit.State(),
		Notifications:    s.notes.All(),
		Navigation:       s.navigation,
		Mounted:          s.mounted,
		LastTouched:      s.LastTouched().UTC(),
	}
}
