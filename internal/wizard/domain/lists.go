package domain

import "strings"

// NormalizeList trims every entry, drops empties and removes exact duplicates,
// keeping the first occurrence. The result is never nil.
func NormalizeList(in []string) []string {
	return normalize(in, func(s string) string { return s })
}

// NormalizeTags is NormalizeList with case-insensitive duplicate detection.
func NormalizeTags(in []string) []string {
	return normalize(in, strings.ToLower)
}

func normalize(in []string, key func(string) string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k := key(s)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Union appends extra to base and normalizes the result.
func Union(base, extra []string) []string {
	merged := make([]string, 0, len(base)+len(extra))
	merged = append(merged, base...)
	merged = append(merged, extra...)
	return NormalizeList(merged)
}

// ContainsFold reports whether list holds s, ignoring case and surrounding space.
func ContainsFold(list []string, s string) bool {
	s = strings.TrimSpace(s)
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), s) {
			return true
		}
	}
	return false
}

// Normalize returns p with every list field cleaned and every scalar checked.
// List normalization never fails; malformed scalars produce a ValidationError.
func (p DraftPatch) Normalize(step Step) (DraftPatch, error) {
	if p.RequiredSkills.Set {
		p.RequiredSkills.Value = NormalizeList(p.RequiredSkills.Value)
	}
	if p.Constraints.Set {
		p.Constraints.Value = NormalizeList(p.Constraints.Value)
	}
	if p.SuccessMetrics.Set {
		p.SuccessMetrics.Value = NormalizeList(p.SuccessMetrics.Value)
	}
	if p.Tags.Set {
		p.Tags.Value = NormalizeTags(p.Tags.Value)
	}

	var fields []FieldError
	if p.Complexity.Set && !p.Complexity.Value.Valid() {
		fields = append(fields, FieldError{Field: "complexity", Message: ErrInvalidComplexity.Error()})
	}
	if p.EstimatedBudget.Set && p.EstimatedBudget.Value.IsNegative() {
		fields = append(fields, FieldError{Field: "estimatedBudget", Message: ErrNegativeBudget.Error()})
	}
	if p.StartDate.Set && !p.StartDate.Value.Valid() {
		fields = append(fields, FieldError{Field: "startDate", Message: ErrInvalidDate.Error()})
	}
	if p.TargetCompletionDate.Set && !p.TargetCompletionDate.Value.Valid() {
		fields = append(fields, FieldError{Field: "targetCompletionDate", Message: ErrInvalidDate.Error()})
	}
	if p.Milestones.Set {
		for _, m := range p.Milestones.Value {
			if !m.TargetDate.Valid() {
				fields = append(fields, FieldError{Field: "milestones", Message: ErrInvalidDate.Error()})
				break
			}
		}
	}
	if p.MaxTeamSize.Set && p.MaxTeamSize.Value < 1 {
		fields = append(fields, FieldError{Field: "maxTeamSize", Message: "team size must be at least 1"})
	}
	if len(fields) > 0 {
		return p, &ValidationError{Step: step, Fields: fields}
	}
	return p, nil
}
