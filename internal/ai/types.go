package ai

import (
	"encoding/json"

	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
)

type ClassifyRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	ProblemStatement string `json:"problemStatement"`
}

// ClassificationResult is the classify-project response.
type ClassificationResult struct {
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Complexity  string   `json:"complexity"`
	Skills      []string `json:"skills"`
	Resources   []string `json:"resources"`
	Reasoning   string   `json:"reasoning"`
}

// Classification converts the result into the domain shape. Unknown complexities
// fall back to beginner.
func (r ClassificationResult) Classification() *domain.AIClassification {
	c, ok := domain.ParseComplexity(r.Complexity)
	if !ok {
		c = domain.ComplexityBeginner
	}
	return &domain.AIClassification{
		Category:    r.Category,
		Subcategory: r.Subcategory,
		Complexity:  c,
		Skills:      domain.NormalizeList(r.Skills),
		Resources:   domain.NormalizeList(r.Resources),
		Reasoning:   r.Reasoning,
	}
}

type TeamSuggestRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	RequiredSkills []string `json:"requiredSkills"`
	MaxTeamSize    int      `json:"maxTeamSize"`
	Type           string   `json:"type"`
}

// TeamSuggestionResult is the team/suggest response.
type TeamSuggestionResult struct {
	Analysis       string            `json:"analysis"`
	SuggestedRoles []domain.TeamRole `json:"suggestedRoles"`
}

// RoleSkills returns the normalized union of the skills of all suggested roles.
func (r TeamSuggestionResult) RoleSkills() []string {
	var skills []string
	for _, role := range r.SuggestedRoles {
		skills = append(skills, role.Skills...)
	}
	return domain.NormalizeList(skills)
}

type AdvancedAnalysisRequest struct {
	RoughIdea              string `json:"roughIdea"`
	ProblemScope           string `json:"problemScope"`
	ExperienceLevel        string `json:"experienceLevel"`
	Timeframe              string `json:"timeframe"`
	TeamPreference         string `json:"teamPreference"`
	SkipCollaborationCheck bool   `json:"skipCollaborationCheck"`
}

// Kind discriminates the arms of AdvancedAnalysis.
type Kind string

const (
	KindInnovationAnalysis       Kind = "innovation_analysis"
	KindCollaborationOpportunity Kind = "collaboration_opportunity"
)

// InnovationAnalysis is the opportunity/technical/commercial/execution breakdown of an idea.
// Section bodies are passed through untouched.
type InnovationAnalysis struct {
	Title       string          `json:"title,omitempty"`
	Summary     string          `json:"summary,omitempty"`
	Opportunity json.RawMessage `json:"opportunity,omitempty"`
	Technical   json.RawMessage `json:"technical,omitempty"`
	Commercial  json.RawMessage `json:"commercial,omitempty"`
	Execution   json.RawMessage `json:"execution,omitempty"`
}

// SimilarProject is an existing project close to the submitted idea.
type SimilarProject struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Similarity  float64 `json:"similarity,omitempty"`
	OwnerName   string  `json:"ownerName,omitempty"`
}

// Collaboration lists similar projects and how the user could join them.
type Collaboration struct {
	Message         string           `json:"message,omitempty"`
	SimilarProjects []SimilarProject `json:"similarProjects"`
	JoinSuggestions []string         `json:"joinSuggestions"`
}

// AdvancedAnalysis is the tagged union returned by analyze-advanced. Exactly one
// of Innovation and Collaboration is set, selected by Kind.
type AdvancedAnalysis struct {
	Kind          Kind
	Innovation    *InnovationAnalysis
	SmartKit      json.RawMessage
	Collaboration *Collaboration
}

type advancedWire struct {
	Type          string              `json:"type,omitempty"`
	Innovation    *InnovationAnalysis `json:"innovation,omitempty"`
	SmartKit      json.RawMessage     `json:"smartKit,omitempty"`
	Collaboration *Collaboration      `json:"collaboration,omitempty"`
}

// UnmarshalJSON selects the arm from the type field. Only
// collaboration_opportunity selects the collaboration arm; anything else,
// including a missing type, is read as an innovation analysis.
func (a *AdvancedAnalysis) UnmarshalJSON(b []byte) error {
	var w advancedWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if Kind(w.Type) == KindCollaborationOpportunity {
		collab := w.Collaboration
		if collab == nil {
			collab = &Collaboration{}
		}
		if collab.SimilarProjects == nil {
			collab.SimilarProjects = []SimilarProject{}
		}
		if collab.JoinSuggestions == nil {
			collab.JoinSuggestions = []string{}
		}
		*a = AdvancedAnalysis{Kind: KindCollaborationOpportunity, Collaboration: collab}
		return nil
	}
	innovation := w.Innovation
	if innovation == nil {
		innovation = &InnovationAnalysis{}
	}
	*a = AdvancedAnalysis{Kind: KindInnovationAnalysis, Innovation: innovation, SmartKit: w.SmartKit}
	return nil
}

func (a AdvancedAnalysis) MarshalJSON() ([]byte, error) {
	kind := a.Kind
	if kind == "" {
		kind = KindInnovationAnalysis
	}
	return json.Marshal(advancedWire{
		Type:          string(kind),
		Innovation:    a.Innovation,
		SmartKit:      a.SmartKit,
		Collaboration: a.Collaboration,
	})
}

func (a AdvancedAnalysis) IsCollaboration() bool {
	return a.Kind == KindCollaborationOpportunity
}
