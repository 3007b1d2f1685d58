package service

import (
	"context"
	"errors"

	"github.com/makerhub/innovation-wizard/internal/notify"
	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
)

// SetTeamProject switches between a solo and a team project. Turning it on
// seeds the owner as the creator.
func (s *Session) SetTeamProject(ctx context.Context, on bool) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return State{}, err
	}
	s.teamTouched = true
	if err := s.update(ctx, domain.DraftPatch{IsTeamProject: domain.Some(on)}); err != nil {
		return State{}, err
	}
	return s.stateLocked(), nil
}

// AddTeamMember adds m to the team. Adding someone already on the team is a
// no-op reported with added == false.
func (s *Session) AddTeamMember(ctx context.Context, m domain.TeamMember) (added bool, st State, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return false, State{}, err
	}

	d := s.form.Snapshot()
	members := domain.WithCreator(d.TeamMembers, s.owner.member())
	capacity := d.MaxTeamSize
	if capacity < len(members) {
		capacity = len(members)
	}

	members, err = domain.AddMember(members, m, capacity)
	switch {
	case errors.Is(err, domain.ErrDuplicateMember):
		s.notify(ctx, notify.LevelInfo, "Already on the team", displayName(m)+" is already a member of this team.")
		return false, s.stateLocked(), nil
	case errors.Is(err, domain.ErrTeamFull):
		s.notify(ctx, notify.LevelWarning, "Team is full", "Increase the maximum team size to add more members.")
		return false, State{}, err
	case err != nil:
		return false, State{}, err
	}

	if err := s.update(ctx, domain.DraftPatch{
		IsTeamProject: domain.Some(true),
		TeamMembers:   domain.Some(members),
	}); err != nil {
		return false, State{}, err
	}
	s.notify(ctx, notify.LevelSuccess, "Team member added", displayName(m)+" was invited to the team.")
	return true, s.stateLocked(), nil
}

func (s *Session) RemoveTeamMember(ctx context.Context, memberID string) (State, error) {
	return s.editMembers(ctx, func(members []domain.TeamMember) ([]domain.TeamMember, error) {
		return domain.RemoveMember(members, memberID)
	})
}

func (s *Session) ConfirmTeamMember(ctx context.Context, memberID string) (State, error) {
	return s.editMembers(ctx, func(members []domain.TeamMember) ([]domain.TeamMember, error) {
		return domain.ConfirmMember(members, memberID)
	})
}

func (s *Session) editMembers(ctx context.Context, edit func([]domain.TeamMember) ([]domain.TeamMember, error)) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return State{}, err
	}
	members, err := edit(s.form.Snapshot().TeamMembers)
	if err != nil {
		return State{}, err
	}
	if err := s.update(ctx, domain.DraftPatch{TeamMembers: domain.Some(members)}); err != nil {
		return State{}, err
	}
	return s.stateLocked(), nil
}

func displayName(m domain.TeamMember) string {
	switch {
	case m.DisplayName != "":
		return m.DisplayName
	case m.Email != "":
		return m.Email
	}
	return m.MemberID
}
