package catalyst

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/makerhub/innovation-wizard/internal/ai"
	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
)

// WizardKey names the draft slot of the rough-idea flow.
const WizardKey = "innovation-catalyst"

// RoughIdea is the single free-text prompt of the rough-idea flow.
type RoughIdea struct {
	RoughIdea              string `json:"roughIdea"`
	ProblemScope           string `json:"problemScope"`
	ExperienceLevel        string `json:"experienceLevel"`
	Timeframe              string `json:"timeframe"`
	TeamPreference         string `json:"teamPreference"`
	SkipCollaborationCheck bool   `json:"skipCollaborationCheck"`
}

func (r RoughIdea) request() ai.AdvancedAnalysisRequest {
	return ai.AdvancedAnalysisRequest{
		RoughIdea:              strings.TrimSpace(r.RoughIdea),
		ProblemScope:           strings.TrimSpace(r.ProblemScope),
		ExperienceLevel:        r.ExperienceLevel,
		Timeframe:              r.Timeframe,
		TeamPreference:         r.TeamPreference,
		SkipCollaborationCheck: r.SkipCollaborationCheck,
	}
}

// FormPatch is a partial RoughIdea; absent fields are left alone.
type FormPatch struct {
	RoughIdea              domain.Field[string] `json:"roughIdea,omitzero"`
	ProblemScope           domain.Field[string] `json:"problemScope,omitzero"`
	ExperienceLevel        domain.Field[string] `json:"experienceLevel,omitzero"`
	Timeframe              domain.Field[string] `json:"timeframe,omitzero"`
	TeamPreference         domain.Field[string] `json:"teamPreference,omitzero"`
	SkipCollaborationCheck domain.Field[bool]   `json:"skipCollaborationCheck,omitzero"`
}

func (p FormPatch) apply(r RoughIdea) RoughIdea {
	apply(&r.RoughIdea, p.RoughIdea)
	apply(&r.ProblemScope, p.ProblemScope)
	apply(&r.ExperienceLevel, p.ExperienceLevel)
	apply(&r.Timeframe, p.Timeframe)
	apply(&r.TeamPreference, p.TeamPreference)
	apply(&r.SkipCollaborationCheck, p.SkipCollaborationCheck)
	return r
}

func apply[T any](dst *T, f domain.Field[T]) {
	if f.Set {
		*dst = f.Value
	}
}

// Record is the persisted state of the rough-idea flow.
type Record struct {
	Version        int                    `json:"schemaVersion"`
	FormData       RoughIdea              `json:"formData"`
	InnovationData *ai.InnovationAnalysis `json:"innovationData,omitempty"`
	SmartKit       json.RawMessage        `json:"smartKit,omitempty"`
	Collaboration  *ai.Collaboration      `json:"collaboration,omitempty"`
	Timestamp      time.Time              `json:"timestamp"`
}

func (r *Record) SchemaVersion() int { return r.Version }

func (r *Record) StampSchema(v int) { r.Version = v }

// HasResults reports whether the record holds an analysis outcome, in which
// case a restored session opens on the results or collaboration view.
func (r *Record) HasResults() bool {
	return r != nil && (r.InnovationData != nil || r.Collaboration != nil)
}
