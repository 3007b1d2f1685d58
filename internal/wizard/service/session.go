package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/makerhub/innovation-wizard/internal/ai"
	"github.com/makerhub/innovation-wizard/internal/logging"
	"github.com/makerhub/innovation-wizard/internal/notify"
	"github.com/makerhub/innovation-wizard/internal/projects"
	"github.com/makerhub/innovation-wizard/internal/wizard/async"
	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
	"github.com/makerhub/innovation-wizard/internal/wizard/draftstore"
	"github.com/makerhub/innovation-wizard/internal/wizard/formstate"
	"github.com/makerhub/innovation-wizard/internal/wizard/sequencer"
)

// Session is one mounted wizard. All exported methods are safe for concurrent
// use; they serialize on the session mutex, which async completions also take
// before touching state.
type Session struct {
	id     string
	owner  Owner
	key    draftstore.Key
	deps   *Deps
	policy domain.JumpPolicy

	ctx         context.Context
	cancel      context.CancelFunc
	lastTouched atomic.Int64
	closed      atomic.Bool
	bg          sync.WaitGroup

	mu         sync.Mutex
	mounted    bool
	form       *formstate.Container
	steps      *sequencer.Sequencer
	maxReached int
	navigation string
	notes      *notify.Recorder

	// ideation triples auto-classification already fired for
	autoFired map[[3]string]struct{}

	// set by the first team action; from then on the owner stays the creator
	teamTouched bool

	classify *async.Tracker[outbound[ai.ClassifyRequest], ai.ClassificationResult]
	team     *async.Tracker[outbound[ai.TeamSuggestRequest], ai.TeamSuggestionResult]
	submit   *async.Tracker[outbound[domain.ProjectDraft], projects.CreatedProject]
}

func newSession(id string, owner Owner, deps *Deps, cfg Config) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:         id,
		owner:      owner,
		key:        draftKey(owner.ID),
		deps:       deps,
		policy:     cfg.JumpPolicy,
		ctx:        ctx,
		cancel:     cancel,
		mounted:    true,
		form:       formstate.New(),
		steps:      sequencer.New(domain.StepCount),
		maxReached: 1,
		notes:      notify.NewRecorder(cfg.NotificationLimit),
		autoFired:  make(map[[3]string]struct{}),
	}
	s.touch()

	s.classify = async.New(ctx,
		func(ctx context.Context, o outbound[ai.ClassifyRequest]) (ai.ClassificationResult, error) {
			return deps.Classifier.Classify(o.bind(ctx), o.Body)
		},
		async.WithLocker(&s.mu),
		async.WithTimeout(cfg.AITimeout),
		async.WithErrorMessage(func(err error) string { return ai.UserMessage(err, "AI classification failed") }),
	)
	s.team = async.New(ctx,
		func(ctx context.Context, o outbound[ai.TeamSuggestRequest]) (ai.TeamSuggestionResult, error) {
			return deps.Teams.SuggestTeam(o.bind(ctx), o.Body)
		},
		async.WithLocker(&s.mu),
		async.WithTimeout(cfg.AITimeout),
		async.WithErrorMessage(func(err error) string { return ai.UserMessage(err, "Team suggestion failed") }),
	)
	s.submit = async.New(ctx,
		func(ctx context.Context, o outbound[domain.ProjectDraft]) (projects.CreatedProject, error) {
			created, err := deps.Submitter.Submit(o.bind(ctx), o.Body)
			if err != nil {
				return projects.CreatedProject{}, err
			}
			return *created, nil
		},
		async.WithLocker(&s.mu),
		async.WithTimeout(cfg.SubmitTimeout),
		async.WithErrorMessage(projects.UserMessage),
	)
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Owner() Owner { return s.owner }

// LastTouched is the time of the last operation on the session.
func (s *Session) LastTouched() time.Time {
	return time.Unix(0, s.lastTouched.Load())
}

// Closed reports whether the session has ended, by launch or unmount.
func (s *Session) Closed() bool { return s.closed.Load() }

func (s *Session) touch() {
	s.lastTouched.Store(time.Now().UnixNano())
}

// usable must be called with s.mu held at the start of every mutating operation.
func (s *Session) usable() error {
	s.touch()
	if !s.mounted {
		return domain.ErrSessionClosed
	}
	return nil
}

// restore loads the owner's saved draft. A restored draft that already carries
// a classification opens on the analysis step.
func (s *Session) restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec domain.DraftRecord
	ok, err := s.deps.Store.Load(ctx, s.key, &rec)
	if err != nil {
		logging.NewLogger(ctx).LogWarnf("restore_draft", "starting without a saved draft: %v", err)
		return
	}
	if !ok {
		return
	}

	s.form.Restore(rec.FormData)
	if rec.HasAnalysis() {
		s.steps.GoTo(int(domain.StepAIAnalysis))
		s.maxReached = int(domain.StepAIAnalysis)
		// the triple was already classified; do not fire again for it
		s.autoFired[ideationTriple(rec.FormData)] = struct{}{}
	}
	s.teamTouched = rec.FormData.IsTeamProject || domain.HasCreator(rec.FormData.TeamMembers)
	s.notify(ctx, notify.LevelSuccess, "Draft restored", "Your previous progress has been restored.")
}

func (s *Session) seed(ctx context.Context, draft domain.ProjectDraft, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.form.Restore(draft)
	s.persist(ctx)
	if title != "" {
		s.notify(ctx, notify.LevelInfo, title, "")
	}
}

// persist saves the current draft. Failures are logged and never fail the caller.
func (s *Session) persist(ctx context.Context) {
	rec := &domain.DraftRecord{FormData: s.form.Snapshot(), Timestamp: time.Now().UTC()}
	if err := s.deps.Store.Save(ctx, s.key, rec); err != nil {
		logging.NewLogger(ctx).With("session_id", s.id).LogError("save_draft", err)
	}
}

func (s *Session) clearDraft(ctx context.Context) {
	if err := s.deps.Store.Clear(ctx, s.key); err != nil {
		logging.NewLogger(ctx).With("session_id", s.id).LogError("clear_draft", err)
	}
}

func (s *Session) notify(ctx context.Context, level notify.Level, title, message string) {
	n := notify.New(s.id, level, title, message)
	_ = s.notes.Notify(ctx, n)
	if err := s.deps.Notifier.Notify(ctx, n); err != nil {
		logging.NewLogger(ctx).With("session_id", s.id).LogWarnf("notify", "notification not delivered: %v", err)
	}
}

// update normalizes and merges p, keeping the team invariants, then saves.
func (s *Session) update(ctx context.Context, p domain.DraftPatch) error {
	p, err := p.Normalize(domain.Step(s.steps.Current()))
	if err != nil {
		return err
	}
	if p.TeamMembers.Set {
		p.TeamMembers.Value = domain.NormalizeMembers(p.TeamMembers.Value)
	}

	d := p.Apply(s.form.Snapshot())
	if s.teamTouched || d.IsTeamProject || len(d.TeamMembers) > 0 {
		s.teamTouched = true
		d.TeamMembers = domain.WithCreator(d.TeamMembers, s.owner.member())
		p.TeamMembers = domain.Some(d.TeamMembers)
	}
	if d.IsTeamProject && d.MaxTeamSize < len(d.TeamMembers) {
		p.MaxTeamSize = domain.Some(len(d.TeamMembers))
	}

	s.form.Update(p)
	s.persist(ctx)
	return nil
}

// Update merges a partial draft from the user.
func (s *Session) Update(ctx context.Context, p domain.DraftPatch) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return State{}, err
	}
	if p.AIClassification.Set || p.AIAnalysis.Set {
		return State{}, &domain.ValidationError{
			Step: domain.Step(s.steps.Current()),
			Fields: []domain.FieldError{{
				Field:   "aiClassification",
				Message: "classification can only be changed through the classification actions",
			}},
		}
	}
	if err := s.update(ctx, p); err != nil {
		return State{}, err
	}
	if p.TouchesIdeation() {
		s.maybeAutoClassify(ctx)
	}
	return s.stateLocked(), nil
}

// Next advances one step. Leaving the ideation step requires title,
// description and problem statement; every other transition is allowed.
func (s *Session) Next(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return State{}, err
	}
	if err := s.gate(domain.Step(s.steps.Current())); err != nil {
		return State{}, err
	}
	s.moveTo(ctx, s.steps.Next())
	return s.stateLocked(), nil
}

func (s *Session) Previous(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return State{}, err
	}
	s.moveTo(ctx, s.steps.Previous())
	return s.stateLocked(), nil
}

// GoTo jumps to step n under the configured jump policy.
func (s *Session) GoTo(ctx context.Context, n int) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return State{}, err
	}
	target := s.steps.Clamp(n)
	if s.policy != domain.JumpFree && target > s.maxReached {
		return State{}, domain.ErrStepLocked
	}
	s.moveTo(ctx, s.steps.GoTo(target))
	return s.stateLocked(), nil
}

func (s *Session) moveTo(ctx context.Context, step int) {
	if step > s.maxReached {
		s.maxReached = step
	}
	s.maybeAutoClassify(ctx)
}

// gate checks whether Next may leave step.
func (s *Session) gate(step domain.Step) error {
	if step != domain.StepIdeation {
		return nil
	}
	return ideationGaps(s.form.Snapshot(), step)
}

func ideationGaps(d domain.ProjectDraft, step domain.Step) error {
	var fields []domain.FieldError
	for i, name := range [3]string{"title", "description", "problemStatement"} {
		if strings.TrimSpace(d.IdeationFields()[i]) == "" {
			fields = append(fields, domain.FieldError{Field: name, Message: name + " is required"})
		}
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Step: step, Fields: fields}
	}
	return nil
}

func ideationTriple(d domain.ProjectDraft) [3]string {
	f := d.IdeationFields()
	return [3]string{strings.TrimSpace(f[0]), strings.TrimSpace(f[1]), strings.TrimSpace(f[2])}
}

// StartOver discards the draft and returns to the first step.
func (s *Session) StartOver(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return State{}, err
	}
	if s.submit.Pending() {
		return State{}, domain.ErrSubmissionInFlight
	}

	s.clearDraft(ctx)
	s.form.Reset()
	s.steps.Reset()
	s.maxReached = 1
	clear(s.autoFired)
	s.teamTouched = false
	s.navigation = ""
	s.classify.Reset()
	s.team.Reset()
	s.submit.Reset()
	s.notify(ctx, notify.LevelInfo, "Started over", "The saved draft has been discarded.")
	return s.stateLocked(), nil
}

// Unmount ends the session and waits for outstanding calls to finish. Their
// results are dropped.
func (s *Session) Unmount() {
	s.mu.Lock()
	s.closeLocked()
	s.mu.Unlock()

	s.classify.Wait()
	s.team.Wait()
	s.submit.Wait()
	s.bg.Wait()
}

func (s *Session) closeLocked() {
	s.mounted = false
	s.closed.Store(true)
	s.cancel()
}
