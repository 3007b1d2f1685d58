package domain

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMaxTeamSize is the team capacity of a fresh draft.
const DefaultMaxTeamSize = 5

// Sentinel reasoning strings for classifications that did not come from the AI service.
const (
	FallbackReasoning   = "Proceeded without AI classification - can be refined later"
	CustomizedReasoning = "Customized by user"
)

// Date is a calendar date in YYYY-MM-DD form. The empty Date means "not set".
type Date string

const dateLayout = "2006-01-02"

// Valid reports whether d is empty or a well-formed calendar date.
func (d Date) Valid() bool {
	if d == "" {
		return true
	}
	_, err := time.Parse(dateLayout, string(d))
	return err == nil
}

// TeamMember is one person attached to a team project.
type TeamMember struct {
	MemberID          string            `json:"memberId"`
	DisplayName       string            `json:"displayName"`
	Email             string            `json:"email,omitempty"`
	Role              string            `json:"role"`
	ConfirmationState ConfirmationState `json:"confirmationState"`
}

// Milestone is a planned checkpoint of the project.
type Milestone struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TargetDate  Date   `json:"targetDate,omitempty"`
	Completed   bool   `json:"completed"`
}

// TeamRole is a role suggested by the team suggestion service.
type TeamRole struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
}

// AIClassification is the category/complexity bundle produced by the classification service.
// It is replaced wholesale, never edited field by field.
type AIClassification struct {
	Category    string     `json:"category"`
	Subcategory string     `json:"subcategory"`
	Complexity  Complexity `json:"complexity"`
	Skills      []string   `json:"skills"`
	Resources   []string   `json:"resources"`
	Reasoning   string     `json:"reasoning"`
}

// Clone returns a deep copy of c.
func (c *AIClassification) Clone() *AIClassification {
	if c == nil {
		return nil
	}
	out := *c
	out.Skills = slices.Clone(c.Skills)
	out.Resources = slices.Clone(c.Resources)
	return &out
}

// FallbackClassification is used when the user continues without AI.
func FallbackClassification() *AIClassification {
	return &AIClassification{
		Category:    "General",
		Subcategory: "Other",
		Complexity:  ComplexityBeginner,
		Skills:      []string{},
		Resources:   []string{},
		Reasoning:   FallbackReasoning,
	}
}

// ProjectDraft is the accumulating payload of a project that has not been created yet.
// The same shape is sent to the projects API on launch.
type ProjectDraft struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	ProblemStatement string `json:"problemStatement"`

	Category    string     `json:"category"`
	Subcategory string     `json:"subcategory"`
	Complexity  Complexity `json:"complexity"`

	IsTeamProject  bool         `json:"isTeamProject"`
	MaxTeamSize    int          `json:"maxTeamSize"`
	RequiredSkills []string     `json:"requiredSkills"`
	TeamMembers    []TeamMember `json:"teamMembers"`
	SuggestedRoles []TeamRole   `json:"suggestedRoles"`
	TeamAnalysis   string       `json:"teamAnalysis,omitempty"`

	StartDate            Date            `json:"startDate,omitempty"`
	TargetCompletionDate Date            `json:"targetCompletionDate,omitempty"`
	EstimatedBudget      decimal.Decimal `json:"estimatedBudget"`
	Constraints          []string        `json:"constraints"`
	Milestones           []Milestone     `json:"milestones"`
	SuccessMetrics       []string        `json:"successMetrics"`

	Type       string   `json:"type"`
	Discipline string   `json:"discipline"`
	Industry   string   `json:"industry"`
	Tags       []string `json:"tags"`

	RepositoryURL    string `json:"repositoryUrl,omitempty"`
	DocumentationURL string `json:"documentationUrl,omitempty"`
	IsPublic         bool   `json:"isPublic"`

	AIClassification *AIClassification `json:"aiClassification,omitempty"`
	AIAnalysis       json.RawMessage   `json:"aiAnalysis,omitempty"`
}

// NewProjectDraft returns the all-empty default draft.
func NewProjectDraft() ProjectDraft {
	return ProjectDraft{
		Complexity:     ComplexityBeginner,
		MaxTeamSize:    DefaultMaxTeamSize,
		RequiredSkills: []string{},
		TeamMembers:    []TeamMember{},
		SuggestedRoles: []TeamRole{},
		Constraints:    []string{},
		Milestones:     []Milestone{},
		SuccessMetrics: []string{},
		Tags:           []string{},
		IsPublic:       true,
	}
}

// Clone returns a deep copy of d so callers never share backing arrays.
func (d ProjectDraft) Clone() ProjectDraft {
	out := d
	out.RequiredSkills = slices.Clone(d.RequiredSkills)
	out.TeamMembers = slices.Clone(d.TeamMembers)
	out.SuggestedRoles = cloneRoles(d.SuggestedRoles)
	out.Constraints = slices.Clone(d.Constraints)
	out.Milestones = slices.Clone(d.Milestones)
	out.SuccessMetrics = slices.Clone(d.SuccessMetrics)
	out.Tags = slices.Clone(d.Tags)
	out.AIClassification = d.AIClassification.Clone()
	out.AIAnalysis = slices.Clone(d.AIAnalysis)
	return out
}

func cloneRoles(in []TeamRole) []TeamRole {
	if in == nil {
		return nil
	}
	out := make([]TeamRole, len(in))
	for i, r := range in {
		out[i] = r
		out[i].Skills = slices.Clone(r.Skills)
	}
	return out
}

// IdeationFields returns the three fields that gate the first step and trigger classification.
func (d ProjectDraft) IdeationFields() [3]string {
	return [3]string{d.Title, d.Description, d.ProblemStatement}
}

// withEmptyLists replaces nil list fields with empty ones.
func (d ProjectDraft) withEmptyLists() ProjectDraft {
	d.RequiredSkills = orEmpty(d.RequiredSkills)
	d.TeamMembers = orEmpty(d.TeamMembers)
	d.SuggestedRoles = orEmpty(d.SuggestedRoles)
	d.Constraints = orEmpty(d.Constraints)
	d.Milestones = orEmpty(d.Milestones)
	d.SuccessMetrics = orEmpty(d.SuccessMetrics)
	d.Tags = orEmpty(d.Tags)
	return d
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
