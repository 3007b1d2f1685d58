package service

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
)

// AddTag appends tag unless an equal tag (ignoring case) is already present.
func (s *Session) AddTag(ctx context.Context, tag string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return State{}, err
	}
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return State{}, &domain.ValidationError{Step: domain.Step(s.steps.Current()), Fields: []domain.FieldError{
			{Field: "tag", Message: "tag cannot be empty"},
		}}
	}
	tags := s.form.Snapshot().Tags
	if !domain.ContainsFold(tags, tag) {
		if err := s.update(ctx, domain.DraftPatch{Tags: domain.Some(append(tags, tag))}); err != nil {
			return State{}, err
		}
	}
	return s.stateLocked(), nil
}

// RemoveTag drops tag, ignoring case. Removing an absent tag is a no-op.
func (s *Session) RemoveTag(ctx context.Context, tag string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return State{}, err
	}
	tags := s.form.Snapshot().Tags
	kept := slices.DeleteFunc(slices.Clone(tags), func(t string) bool {
		return strings.EqualFold(t, strings.TrimSpace(tag))
	})
	if len(kept) != len(tags) {
		if err := s.update(ctx, domain.DraftPatch{Tags: domain.Some(kept)}); err != nil {
			return State{}, err
		}
	}
	return s.stateLocked(), nil
}

// AddMilestone appends m, assigning an id when it has none.
func (s *Session) AddMilestone(ctx context.Context, m domain.Milestone) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return State{}, err
	}

	m.Title = strings.TrimSpace(m.Title)
	m.Description = strings.TrimSpace(m.Description)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	milestones := s.form.Snapshot().Milestones

	var fields []domain.FieldError
	if m.Title == "" {
		fields = append(fields, domain.FieldError{Field: "title", Message: "milestone title is required"})
	}
	if !m.TargetDate.Valid() {
		fields = append(fields, domain.FieldError{Field: "targetDate", Message: domain.ErrInvalidDate.Error()})
	}
	if slices.ContainsFunc(milestones, func(e domain.Milestone) bool { return e.ID == m.ID }) {
		fields = append(fields, domain.FieldError{Field: "id", Message: "a milestone with this id already exists"})
	}
	if len(fields) > 0 {
		return State{}, &domain.ValidationError{Step: domain.StepPlanning, Fields: fields}
	}

	if err := s.update(ctx, domain.DraftPatch{Milestones: domain.Some(append(milestones, m))}); err != nil {
		return State{}, err
	}
	return s.stateLocked(), nil
}

// ToggleMilestone flips the completed flag of the milestone with the given id.
func (s *Session) ToggleMilestone(ctx context.Context, id string) (State, error) {
	return s.editMilestones(ctx, id, func(ms []domain.Milestone, i int) []domain.Milestone {
		ms[i].Completed = !ms[i].Completed
		return ms
	})
}

func (s *Session) RemoveMilestone(ctx context.Context, id string) (State, error) {
	return s.editMilestones(ctx, id, func(ms []domain.Milestone, i int) []domain.Milestone {
		return slices.Delete(ms, i, i+1)
	})
}

func (s *Session) editMilestones(ctx context.Context, id string, edit func([]domain.Milestone, int) []domain.Milestone) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return State{}, err
	}
	milestones := s.form.Snapshot().Milestones
	i := slices.IndexFunc(milestones, func(m domain.Milestone) bool { return m.ID == id })
	if i < 0 {
		return State{}, domain.ErrMilestoneNotFound
	}
	if err := s.update(ctx, domain.DraftPatch{Milestones: domain.Some(edit(milestones, i))}); err != nil {
		return State{}, err
	}
	return s.stateLocked(), nil
}
