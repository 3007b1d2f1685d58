package domain

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/shopspring/decimal"
)

// Field is an optional patch value. Set is true iff the key was present in the
// decoded JSON, so an explicit null or empty value still overwrites.
type Field[T any] struct {
	Set   bool
	Value T
}

// Some returns a present field holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// IsZero lets encoding/json's omitzero drop absent fields.
func (f Field[T]) IsZero() bool { return !f.Set }

func (f Field[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Value)
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		var zero T
		f.Value = zero
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

// DraftPatch is a partial ProjectDraft. Applying it is a shallow merge: present
// fields replace the current value wholesale, absent fields are left alone.
type DraftPatch struct {
	Title            Field[string] `json:"title,omitzero"`
	Description      Field[string] `json:"description,omitzero"`
	ProblemStatement Field[string] `json:"problemStatement,omitzero"`

	Category    Field[string]     `json:"category,omitzero"`
	Subcategory Field[string]     `json:"subcategory,omitzero"`
	Complexity  Field[Complexity] `json:"complexity,omitzero"`

	IsTeamProject  Field[bool]         `json:"isTeamProject,omitzero"`
	MaxTeamSize    Field[int]          `json:"maxTeamSize,omitzero"`
	RequiredSkills Field[[]string]     `json:"requiredSkills,omitzero"`
	TeamMembers    Field[[]TeamMember] `json:"teamMembers,omitzero"`
	SuggestedRoles Field[[]TeamRole]   `json:"suggestedRoles,omitzero"`
	TeamAnalysis   Field[string]       `json:"teamAnalysis,omitzero"`

	StartDate            Field[Date]            `json:"startDate,omitzero"`
	TargetCompletionDate Field[Date]            `json:"targetCompletionDate,omitzero"`
	EstimatedBudget      Field[decimal.Decimal] `json:"estimatedBudget,omitzero"`
	Constraints          Field[[]string]        `json:"constraints,omitzero"`
	Milestones           Field[[]Milestone]     `json:"milestones,omitzero"`
	SuccessMetrics       Field[[]string]        `json:"successMetrics,omitzero"`

	Type       Field[string]   `json:"type,omitzero"`
	Discipline Field[string]   `json:"discipline,omitzero"`
	Industry   Field[string]   `json:"industry,omitzero"`
	Tags       Field[[]string] `json:"tags,omitzero"`

	RepositoryURL    Field[string] `json:"repositoryUrl,omitzero"`
	DocumentationURL Field[string] `json:"documentationUrl,omitzero"`
	IsPublic         Field[bool]   `json:"isPublic,omitzero"`

	AIClassification Field[*AIClassification] `json:"aiClassification,omitzero"`
	AIAnalysis       Field[json.RawMessage]   `json:"aiAnalysis,omitzero"`
}

// Apply merges p over d and returns the result. d is not modified.
func (p DraftPatch) Apply(d ProjectDraft) ProjectDraft {
	out := d.Clone()

	set(&out.Title, p.Title)
	set(&out.Description, p.Description)
	set(&out.ProblemStatement, p.ProblemStatement)
	set(&out.Category, p.Category)
	set(&out.Subcategory, p.Subcategory)
	set(&out.Complexity, p.Complexity)
	set(&out.IsTeamProject, p.IsTeamProject)
	set(&out.MaxTeamSize, p.MaxTeamSize)
	setSlice(&out.RequiredSkills, p.RequiredSkills)
	setSlice(&out.TeamMembers, p.TeamMembers)
	if p.SuggestedRoles.Set {
		out.SuggestedRoles = cloneRoles(p.SuggestedRoles.Value)
	}
	set(&out.TeamAnalysis, p.TeamAnalysis)
	set(&out.StartDate, p.StartDate)
	set(&out.TargetCompletionDate, p.TargetCompletionDate)
	set(&out.EstimatedBudget, p.EstimatedBudget)
	setSlice(&out.Constraints, p.Constraints)
	setSlice(&out.Milestones, p.Milestones)
	setSlice(&out.SuccessMetrics, p.SuccessMetrics)
	set(&out.Type, p.Type)
	set(&out.Discipline, p.Discipline)
	set(&out.Industry, p.Industry)
	setSlice(&out.Tags, p.Tags)
	set(&out.RepositoryURL, p.RepositoryURL)
	set(&out.DocumentationURL, p.DocumentationURL)
	set(&out.IsPublic, p.IsPublic)
	if p.AIClassification.Set {
		out.AIClassification = p.AIClassification.Value.Clone()
	}
	if p.AIAnalysis.Set {
		out.AIAnalysis = slices.Clone(p.AIAnalysis.Value)
	}
	return out
}

// TouchesIdeation reports whether any of the three ideation fields is present in p.
func (p DraftPatch) TouchesIdeation() bool {
	return p.Title.Set || p.Description.Set || p.ProblemStatement.Set
}

func set[T any](dst *T, f Field[T]) {
	if f.Set {
		*dst = f.Value
	}
}

func setSlice[T any](dst *[]T, f Field[[]T]) {
	if f.Set {
		*dst = slices.Clone(f.Value)
	}
}
