package catalyst

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/makerhub/innovation-wizard/internal/ai"
	"github.com/makerhub/innovation-wizard/internal/auth"
	"github.com/makerhub/innovation-wizard/internal/logging"
	"github.com/makerhub/innovation-wizard/internal/notify"
	"github.com/makerhub/innovation-wizard/internal/wizard/async"
	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
	"github.com/makerhub/innovation-wizard/internal/wizard/draftstore"
	"github.com/makerhub/innovation-wizard/internal/wizard/service"
)

// View is the screen a catalyst session currently shows.
type View string

const (
	ViewForm          View = "form"
	ViewResults       View = "results"
	ViewCollaboration View = "collaboration"
)

const maxTitleRunes = 80

type analyzeRequest struct {
	body   ai.AdvancedAnalysisRequest
	caller auth.Carrier
}

type Session struct {
	id    string
	owner service.Owner
	key   draftstore.Key
	deps  *Deps

	ctx         context.Context
	cancel      context.CancelFunc
	lastTouched atomic.Int64
	closed      atomic.Bool

	mu            sync.Mutex
	mounted       bool
	form          RoughIdea
	innovation    *ai.InnovationAnalysis
	smartKit      json.RawMessage
	collaboration *ai.Collaboration
	navigation    string
	notes         *notify.Recorder

	analysis *async.Tracker[analyzeRequest, ai.AdvancedAnalysis]
}

func newSession(id string, owner service.Owner, deps *Deps, cfg Config) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:      id,
		owner:   owner,
		key:     draftKey(owner.ID),
		deps:    deps,
		ctx:     ctx,
		cancel:  cancel,
		mounted: true,
		notes:   notify.NewRecorder(cfg.NotificationLimit),
	}
	s.touch()
	s.analysis = async.New(ctx,
		func(ctx context.Context, r analyzeRequest) (ai.AdvancedAnalysis, error) {
			return deps.Analyzer.AnalyzeAdvanced(r.caller.Bind(ctx), r.body)
		},
		async.WithLocker(&s.mu),
		async.WithTimeout(cfg.Timeout),
		async.WithErrorMessage(func(err error) string { return ai.UserMessage(err, "Analysis failed") }),
	)
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) LastTouched() time.Time { return time.Unix(0, s.lastTouched.Load()) }

func (s *Session) Closed() bool { return s.closed.Load() }

func (s *Session) touch() { s.lastTouched.Store(time.Now().UnixNano()) }

func (s *Session) usable() error {
	s.touch()
	if !s.mounted {
		return domain.ErrSessionClosed
	}
	return nil
}

func (s *Session) view() View {
	switch {
	case s.collaboration != nil:
		return ViewCollaboration
	case s.innovation != nil:
		return ViewResults
	}
	return ViewForm
}

func (s *Session) restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec Record
	ok, err := s.deps.Store.Load(ctx, s.key, &rec)
	if err != nil {
		logging.NewLogger(ctx).LogWarnf("restore_catalyst", "starting without a saved draft: %v", err)
		return
	}
	if !ok {
		return
	}
	s.form = rec.FormData
	if rec.HasResults() {
		s.innovation = rec.InnovationData
		s.smartKit = rec.SmartKit
		s.collaboration = rec.Collaboration
		s.notify(ctx, notify.LevelSuccess, "Draft restored", "Your previous analysis has been restored.")
		return
	}
	s.notify(ctx, notify.LevelSuccess, "Draft restored", "Your previous idea has been restored.")
}

func (s *Session) persist(ctx context.Context) {
	rec := &Record{
		FormData:       s.form,
		InnovationData: s.innovation,
		SmartKit:       s.smartKit,
		Collaboration:  s.collaboration,
		Timestamp:      time.Now().UTC(),
	}
	if err := s.deps.Store.Save(ctx, s.key, rec); err != nil {
		logging.NewLogger(ctx).With("session_id", s.id).LogError("save_catalyst_draft", err)
	}
}

func (s *Session) clearDraft(ctx context.Context) {
	if err := s.deps.Store.Clear(ctx, s.key); err != nil {
		logging.NewLogger(ctx).With("session_id", s.id).LogError("clear_catalyst_draft", err)
	}
}

func (s *Session) notify(ctx context.Context, level notify.Level, title, message string) {
	n := notify.New(s.id, level, title, message)
	_ = s.notes.Notify(ctx, n)
	if err := s.deps.Notifier.Notify(ctx, n); err != nil {
		logging.NewLogger(ctx).With("session_id", s.id).LogWarnf("notify", "notification not delivered: %v", err)
	}
}

// UpdateForm merges p into the prompt and saves the draft.
func (s *Session) UpdateForm(ctx context.Context, p FormPatch) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return State{}, err
	}
	s.form = p.apply(s.form)
	s.persist(ctx)
	return s.stateLocked(), nil
}

// Analyze sends the prompt to the advanced analysis. The rough idea is required.
func (s *Session) Analyze(ctx context.Context) (async.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return async.Ticket{}, err
	}
	return s.startAnalysis(ctx)
}

// ProceedWithNewIdea re-runs the analysis past the similar-projects check.
func (s *Session) ProceedWithNewIdea(ctx context.Context) (async.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return async.Ticket{}, err
	}
	if err := s.canAnalyze(); err != nil {
		return async.Ticket{}, err
	}
	s.form.SkipCollaborationCheck = true
	s.collaboration = nil
	s.persist(ctx)
	return s.startAnalysis(ctx)
}

func (s *Session) canAnalyze() error {
	if s.analysis.Pending() {
		return domain.ErrRequestPending
	}
	if strings.TrimSpace(s.form.RoughIdea) == "" {
		return &domain.ValidationError{Step: domain.StepIdeation, Fields: []domain.FieldError{
			{Field: "roughIdea", Message: "describe your idea first"},
		}}
	}
	return nil
}

func (s *Session) startAnalysis(ctx context.Context) (async.Ticket, error) {
	if err := s.canAnalyze(); err != nil {
		return async.Ticket{}, err
	}
	req := analyzeRequest{body: s.form.request(), caller: auth.Carry(ctx)}
	return s.analysis.Invoke(req, func(res ai.AdvancedAnalysis, err error) {
		s.onAnalyzed(req.caller.Bind(s.ctx), res, err)
	}), nil
}

// onAnalyzed runs with s.mu held.
func (s *Session) onAnalyzed(ctx context.Context, res ai.AdvancedAnalysis, err error) {
	if !s.mounted {
		return
	}
	if err != nil {
		s.notify(ctx, notify.LevelError, "Analysis failed", s.analysis.State().LastError)
		return
	}
	if res.IsCollaboration() {
		s.innovation, s.smartKit = nil, nil
		s.collaboration = res.Collaboration
		s.persist(ctx)
		s.notify(ctx, notify.LevelInfo, "Similar projects found",
			fmt.Sprintf("%d existing projects look like your idea.", len(res.Collaboration.SimilarProjects)))
		return
	}
	s.innovation = res.Innovation
	s.smartKit = res.SmartKit
	s.collaboration = nil
	s.persist(ctx)
	s.notify(ctx, notify.LevelSuccess, "Analysis complete", "")
}

// TryAnotherIdea discards the draft and the results and returns to an empty prompt.
func (s *Session) TryAnotherIdea(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return State{}, err
	}
	s.analysis.Reset()
	s.clearDraft(ctx)
	s.form = RoughIdea{}
	s.innovation, s.smartKit, s.collaboration = nil, nil, nil
	return s.stateLocked(), nil
}

// Promote opens a structured wizard session seeded from the innovation
// analysis. The catalyst draft is cleared and this session ends.
func (s *Session) Promote(ctx context.Context) (*service.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return nil, err
	}
	if s.innovation == nil || s.deps.Wizard == nil {
		return nil, ErrNothingToPromote
	}

	seed, err := seedDraft(s.form, ai.AdvancedAnalysis{
		Kind:       ai.KindInnovationAnalysis,
		Innovation: s.innovation,
		SmartKit:   s.smartKit,
	})
	if err != nil {
		return nil, err
	}
	wiz, err := s.deps.Wizard.MountSeeded(ctx, s.owner, seed, "Idea promoted")
	if err != nil {
		return nil, fmt.Errorf("promote idea: %w", err)
	}

	s.clearDraft(ctx)
	s.navigation = "/wizard/sessions/" + url.PathEscape(wiz.ID())
	s.closeLocked()
	return wiz, nil
}

// seedDraft maps the prompt and its analysis onto a project draft.
func seedDraft(form RoughIdea, a ai.AdvancedAnalysis) (domain.ProjectDraft, error) {
	idea := strings.TrimSpace(form.RoughIdea)
	d := domain.NewProjectDraft()
	d.Title = firstNonEmpty(a.Innovation.Title, headline(idea))
	d.Description = firstNonEmpty(a.Innovation.Summary, idea)
	d.ProblemStatement = firstNonEmpty(form.ProblemScope, idea)
	if c, ok := domain.ParseComplexity(form.ExperienceLevel); ok {
		d.Complexity = c
	}
	d.IsTeamProject = strings.EqualFold(strings.TrimSpace(form.TeamPreference), "team")

	raw, err := json.Marshal(a)
	if err != nil {
		return domain.ProjectDraft{}, fmt.Errorf("encode analysis: %w", err)
	}
	d.AIAnalysis = raw
	return d, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// headline is the first line of idea, cut to maxTitleRunes.
func headline(idea string) string {
	line, _, _ := strings.Cut(idea, "\n")
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) <= maxTitleRunes {
		return line
	}
	return strings.TrimSpace(string([]rune(line)[:maxTitleRunes]))
}

// Unmount ends the session; an outstanding analysis is cancelled and dropped.
func (s *Session) Unmount() {
	s.mu.Lock()
	s.closeLocked()
	s.mu.Unlock()
	s.analysis.Wait()
}

func (s *Session) closeLocked() {
	s.mounted = false
	s.closed.Store(true)
	s.cancel()
}
