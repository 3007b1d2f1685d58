package service

import (
	"context"

	"github.com/makerhub/innovation-wizard/internal/ai"
	"github.com/makerhub/innovation-wizard/internal/notify"
	"github.com/makerhub/innovation-wizard/internal/wizard/async"
	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
)

// maybeAutoClassify fires classification at most once per ideation triple,
// only on the analysis step and only while no classification exists.
func (s *Session) maybeAutoClassify(ctx context.Context) {
	if domain.Step(s.steps.Current()) != domain.StepAIAnalysis {
		return
	}
	d := s.form.Snapshot()
	if d.AIClassification != nil || s.classify.Pending() {
		return
	}
	triple := ideationTriple(d)
	if triple[0] == "" || triple[1] == "" || triple[2] == "" {
		return
	}
	if _, fired := s.autoFired[triple]; fired {
		return
	}
	s.autoFired[triple] = struct{}{}
	s.startClassify(ctx, triple)
}

func (s *Session) startClassify(ctx context.Context, triple [3]string) async.Ticket {
	req := newOutbound(ctx, ai.ClassifyRequest{Title: triple[0], Description: triple[1], ProblemStatement: triple[2]})
	return s.classify.Invoke(req, func(res ai.ClassificationResult, err error) {
		s.onClassified(req.bind(s.ctx), res, err)
	})
}

// onClassified runs with s.mu held.
func (s *Session) onClassified(ctx context.Context, res ai.ClassificationResult, err error) {
	if !s.mounted {
		return
	}
	if err != nil {
		s.notify(ctx, notify.LevelError, "AI classification failed", s.classify.State().LastError)
		return
	}
	s.applyClassification(ctx, res.Classification())
	s.notify(ctx, notify.LevelSuccess, "AI analysis complete", "Your project has been classified.")
}

// applyClassification overwrites category, subcategory and complexity, adds the
// skills to the required skills and stores the whole classification.
func (s *Session) applyClassification(ctx context.Context, cls *domain.AIClassification) {
	d := s.form.Snapshot()
	s.form.Update(domain.DraftPatch{
		Category:         domain.Some(cls.Category),
		Subcategory:      domain.Some(cls.Subcategory),
		Complexity:       domain.Some(cls.Complexity),
		RequiredSkills:   domain.Some(domain.Union(d.RequiredSkills, cls.Skills)),
		AIClassification: domain.Some(cls),
	})
	s.persist(ctx)
}

// Classify runs classification on demand, replacing any earlier result once it arrives.
func (s *Session) Classify(ctx context.Context) (async.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return async.Ticket{}, err
	}
	if s.classify.Pending() {
		return async.Ticket{}, domain.ErrRequestPending
	}
	d := s.form.Snapshot()
	if err := ideationGaps(d, domain.StepAIAnalysis); err != nil {
		return async.Ticket{}, err
	}
	triple := ideationTriple(d)
	s.autoFired[triple] = struct{}{}
	return s.startClassify(ctx, triple), nil
}

// Retry re-invokes a failed classification with the current fields.
func (s *Session) Retry(ctx context.Context) (async.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return async.Ticket{}, err
	}
	if s.classify.State().Status != async.StatusError {
		return async.Ticket{}, domain.ErrNothingToRetry
	}
	d := s.form.Snapshot()
	if err := ideationGaps(d, domain.StepAIAnalysis); err != nil {
		return async.Ticket{}, err
	}
	triple := ideationTriple(d)
	s.autoFired[triple] = struct{}{}
	return s.startClassify(ctx, triple), nil
}

// ContinueWithoutAI stores the fallback classification, drops any in-flight
// classification and moves on from the analysis step.
func (s *Session) ContinueWithoutAI(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return State{}, err
	}

	s.classify.Reset()
	if s.form.Snapshot().AIClassification == nil {
		s.applyClassification(ctx, domain.FallbackClassification())
		s.notify(ctx, notify.LevelInfo, "Continuing without AI", "You can refine the classification later.")
	}
	if domain.Step(s.steps.Current()) == domain.StepAIAnalysis {
		s.moveTo(ctx, s.steps.Next())
	}
	return s.stateLocked(), nil
}

// CustomClassification is a user override of the AI classification.
type CustomClassification struct {
	Category    string            `json:"category"`
	Subcategory string            `json:"subcategory"`
	Complexity  domain.Complexity `json:"complexity"`
	Skills      []string          `json:"skills"`
	Resources   []string          `json:"resources"`
}

// CustomizeClassification replaces the whole classification with c.
func (s *Session) CustomizeClassification(ctx context.Context, c CustomClassification) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return State{}, err
	}

	var fields []domain.FieldError
	category, subcategory, ok := s.deps.Taxonomy.Canonical(c.Category, c.Subcategory)
	if !ok {
		fields = append(fields, domain.FieldError{Field: "category", Message: domain.ErrUnknownCategory.Error()})
	}
	complexity := c.Complexity
	if complexity == "" {
		complexity = domain.ComplexityBeginner
	}
	if parsed, valid := domain.ParseComplexity(string(complexity)); valid {
		complexity = parsed
	} else {
		fields = append(fields, domain.FieldError{Field: "complexity", Message: domain.ErrInvalidComplexity.Error()})
	}
	if len(fields) > 0 {
		return State{}, &domain.ValidationError{Step: domain.StepAIAnalysis, Fields: fields}
	}

	s.classify.Reset()
	s.applyClassification(ctx, &domain.AIClassification{
		Category:    category,
		Subcategory: subcategory,
		Complexity:  complexity,
		Skills:      domain.NormalizeList(c.Skills),
		Resources:   domain.NormalizeList(c.Resources),
		Reasoning:   domain.CustomizedReasoning,
	})
	s.notify(ctx, notify.LevelSuccess, "Classification updated", "")
	return s.stateLocked(), nil
}

// SuggestTeam asks for team roles based on the current draft.
func (s *Session) SuggestTeam(ctx context.Context) (async.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return async.Ticket{}, err
	}
	if s.team.Pending() {
		return async.Ticket{}, domain.ErrRequestPending
	}
	d := s.form.Snapshot()
	if ideationTriple(d)[0] == "" {
		return async.Ticket{}, &domain.ValidationError{Step: domain.StepTeamSetup, Fields: []domain.FieldError{
			{Field: "title", Message: "title is required"},
		}}
	}

	req := newOutbound(ctx, ai.TeamSuggestRequest{
		Title:          d.Title,
		Description:    d.Description,
		RequiredSkills: d.RequiredSkills,
		MaxTeamSize:    d.MaxTeamSize,
		Type:           d.Type,
	})
	return s.team.Invoke(req, func(res ai.TeamSuggestionResult, err error) {
		s.onTeamSuggested(req.bind(s.ctx), res, err)
	}), nil
}

// onTeamSuggested runs with s.mu held.
func (s *Session) onTeamSuggested(ctx context.Context, res ai.TeamSuggestionResult, err error) {
	if !s.mounted {
		return
	}
	if err != nil {
		s.notify(ctx, notify.LevelError, "Team suggestion failed", s.team.State().LastError)
		return
	}
	d := s.form.Snapshot()
	s.form.Update(domain.DraftPatch{
		SuggestedRoles: domain.Some(res.SuggestedRoles),
		TeamAnalysis:   domain.Some(res.Analysis),
		RequiredSkills: domain.Some(domain.Union(d.RequiredSkills, res.RoleSkills())),
	})
	s.persist(ctx)
	s.notify(ctx, notify.LevelSuccess, "Team suggestions ready", "")
}
