package domain

import (
	"slices"
	"strings"
)

func sameMember(a, b TeamMember) bool {
	if a.MemberID != "" && a.MemberID == b.MemberID {
		return true
	}
	ea, eb := strings.TrimSpace(a.Email), strings.TrimSpace(b.Email)
	return ea != "" && strings.EqualFold(ea, eb)
}

// WithCreator returns members with creator as the single, confirmed creator entry
// at the head of the list. Any other entry claiming the creator role is demoted.
func WithCreator(members []TeamMember, creator TeamMember) []TeamMember {
	creator.Role = RoleCreator
	creator.ConfirmationState = ConfirmationConfirmed

	out := make([]TeamMember, 0, len(members)+1)
	out = append(out, creator)
	for _, m := range members {
		if sameMember(m, creator) {
			continue
		}
		if m.Role == RoleCreator {
			m.Role = RoleMember
		}
		out = append(out, m)
	}
	return out
}

// HasCreator reports whether members already holds a creator entry.
func HasCreator(members []TeamMember) bool {
	return slices.ContainsFunc(members, func(m TeamMember) bool { return m.Role == RoleCreator })
}

// AddMember appends m unless it duplicates an existing member by id or email.
// capacity <= 0 disables the size check.
func AddMember(members []TeamMember, m TeamMember, capacity int) ([]TeamMember, error) {
	m.MemberID = strings.TrimSpace(m.MemberID)
	m.Email = strings.TrimSpace(m.Email)
	m.DisplayName = strings.TrimSpace(m.DisplayName)
	if m.MemberID == "" && m.Email == "" {
		return members, &ValidationError{Step: StepTeamSetup, Fields: []FieldError{
			{Field: "memberId", Message: "member id or email is required"},
		}}
	}
	for _, existing := range members {
		if sameMember(existing, m) {
			return members, ErrDuplicateMember
		}
	}
	if capacity > 0 && len(members) >= capacity {
		return members, ErrTeamFull
	}
	if m.Role == "" || m.Role == RoleCreator {
		m.Role = RoleMember
	}
	if m.ConfirmationState == "" {
		m.ConfirmationState = ConfirmationPending
	}
	out := slices.Clone(members)
	return append(out, m), nil
}

// RemoveMember drops the member with the given id. The creator cannot be removed.
func RemoveMember(members []TeamMember, memberID string) ([]TeamMember, error) {
	i := slices.IndexFunc(members, func(m TeamMember) bool { return m.MemberID == memberID })
	if i < 0 {
		return members, ErrMemberNotFound
	}
	if members[i].Role == RoleCreator {
		return members, ErrCannotRemoveCreator
	}
	out := slices.Clone(members)
	return slices.Delete(out, i, i+1), nil
}

// ConfirmMember marks the member with the given id as confirmed.
func ConfirmMember(members []TeamMember, memberID string) ([]TeamMember, error) {
	i := slices.IndexFunc(members, func(m TeamMember) bool { return m.MemberID == memberID })
	if i < 0 {
		return members, ErrMemberNotFound
	}
	out := slices.Clone(members)
	out[i].ConfirmationState = ConfirmationConfirmed
	return out, nil
}

// NormalizeMembers drops entries with neither id nor email and later duplicates.
func NormalizeMembers(in []TeamMember) []TeamMember {
	out := make([]TeamMember, 0, len(in))
	for _, m := range in {
		if strings.TrimSpace(m.MemberID) == "" && strings.TrimSpace(m.Email) == "" {
			continue
		}
		if slices.ContainsFunc(out, func(e TeamMember) bool { return sameMember(e, m) }) {
			continue
		}
		if m.ConfirmationState == "" {
			m.ConfirmationState = ConfirmationPending
		}
		out = append(out, m)
	}
	return out
}
