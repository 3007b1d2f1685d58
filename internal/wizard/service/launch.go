package service

import (
	"context"
	"net/url"
	"time"

	"github.com/makerhub/innovation-wizard/internal/logging"
	"github.com/makerhub/innovation-wizard/internal/notify"
	"github.com/makerhub/innovation-wizard/internal/projects"
	"github.com/makerhub/innovation-wizard/internal/wizard/async"
	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
	"github.com/makerhub/innovation-wizard/internal/wizard/launchlog"
)

const launchRecordTimeout = 5 * time.Second

// Launch submits the draft. It is only available on the last step and only
// once at a time. On success the draft is cleared and the session ends; on
// failure the session stays on the launch step with the draft intact.
func (s *Session) Launch(ctx context.Context) (async.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return async.Ticket{}, err
	}
	if domain.Step(s.steps.Current()) != domain.StepLaunch {
		return async.Ticket{}, domain.ErrNotOnLaunchStep
	}
	if s.submit.Pending() {
		return async.Ticket{}, domain.ErrSubmissionInFlight
	}
	d := s.form.Snapshot()
	// a free jump policy can reach this step with ideation still empty
	if err := ideationGaps(d, domain.StepIdeation); err != nil {
		return async.Ticket{}, err
	}

	req := newOutbound(ctx, d)
	return s.submit.Invoke(req, func(created projects.CreatedProject, err error) {
		s.onLaunched(req.bind(s.ctx), d, created, err)
	}), nil
}

// onLaunched runs with s.mu held.
func (s *Session) onLaunched(ctx context.Context, d domain.ProjectDraft, created projects.CreatedProject, err error) {
	if !s.mounted {
		return
	}
	if err != nil {
		s.notify(ctx, notify.LevelError, "Project creation failed", projects.UserMessage(err))
		return
	}

	s.clearDraft(ctx)
	s.navigation = "/projects/" + url.PathEscape(created.ID)
	s.notify(ctx, notify.LevelSuccess, "Project created successfully!", d.Title)
	s.recordLaunch(ctx, d, created.ID)
	s.closeLocked()
}

// recordLaunch writes the launch ledger row in the background. It outlives the session.
func (s *Session) recordLaunch(ctx context.Context, d domain.ProjectDraft, projectID string) {
	if s.deps.Launches == nil {
		return
	}
	entry := launchlog.Entry{
		ProjectID:  projectID,
		SessionID:  s.id,
		OwnerID:    s.owner.ID,
		Title:      d.Title,
		Category:   d.Category,
		Complexity: string(d.Complexity),
		TeamSize:   len(d.TeamMembers),
		AIAssisted: d.AIClassification != nil && d.AIClassification.Reasoning != domain.FallbackReasoning,
		LaunchedAt: time.Now().UTC(),
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), launchRecordTimeout)
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		defer cancel()
		if err := s.deps.Launches.Record(ctx, entry); err != nil {
			logging.NewLogger(ctx).With("session_id", s.id).LogError("record_launch", err)
		}
	}()
}
