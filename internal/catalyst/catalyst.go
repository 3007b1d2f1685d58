// Package catalyst runs the rough-idea flow: one free-text prompt sent to the
// advanced innovation analysis, whose result is either an innovation breakdown
// or a list of similar projects to join. An innovation result can be promoted
// into a structured wizard session.
package catalyst

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/makerhub/innovation-wizard/internal/ai"
	"github.com/makerhub/innovation-wizard/internal/logging"
	"github.com/makerhub/innovation-wizard/internal/notify"
	"github.com/makerhub/innovation-wizard/internal/wizard/async"
	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
	"github.com/makerhub/innovation-wizard/internal/wizard/draftstore"
	"github.com/makerhub/innovation-wizard/internal/wizard/service"
)

var ErrNothingToPromote = errors.New("there is no innovation analysis to promote")

type Analyzer interface {
	AnalyzeAdvanced(ctx context.Context, req ai.AdvancedAnalysisRequest) (ai.AdvancedAnalysis, error)
}

// Promoter opens a structured wizard session from a seeded draft.
type Promoter interface {
	MountSeeded(ctx context.Context, owner service.Owner, seed domain.ProjectDraft, title string) (*service.Session, error)
}

// Deps are shared by every catalyst session. Wizard and Notifier are optional;
// without Wizard, Promote is unavailable.
type Deps struct {
	Store    service.DraftStore
	Analyzer Analyzer
	Wizard   Promoter
	Notifier notify.Notifier
}

type Config struct {
	Timeout           time.Duration
	NotificationLimit int
}

type Service struct {
	deps Deps
	cfg  Config

	mu       sync.RWMutex
	sessions map[string]*Session
}

func New(deps Deps, cfg Config) (*Service, error) {
	if deps.Store == nil || deps.Analyzer == nil {
		return nil, errors.New("catalyst service: store and analyzer are required")
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Discard
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = async.DefaultTimeout
	}
	if cfg.NotificationLimit <= 0 {
		cfg.NotificationLimit = notify.DefaultRecorderSize
	}
	return &Service{deps: deps, cfg: cfg, sessions: make(map[string]*Session)}, nil
}

// Mount opens a rough-idea session for owner, restoring the saved draft if any.
func (s *Service) Mount(ctx context.Context, owner service.Owner) (*Session, error) {
	if owner.ID == "" {
		return nil, errors.New("mount: owner id is required")
	}
	sess := newSession(uuid.NewString(), owner, &s.deps, s.cfg)
	sess.restore(ctx)

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	logging.NewLogger(ctx).LogInfof("mount_catalyst", "session %s mounted for %s", sess.id, owner.ID)
	return sess, nil
}

func (s *Service) Session(id, ownerID string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || sess.owner.ID != ownerID {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

func (s *Service) Unmount(id, ownerID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok || sess.owner.ID != ownerID {
		s.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, id)
	s.mu.Unlock()

	sess.Unmount()
	return nil
}

// EvictIdle unmounts sessions untouched for longer than maxIdle and returns how many there were.
func (s *Service) EvictIdle(maxIdle time.Duration) int {
	now := time.Now()
	var evicted []*Session

	s.mu.Lock()
	for id, sess := range s.sessions {
		if now.Sub(sess.LastTouched()) > maxIdle {
			evicted = append(evicted, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range evicted {
		sess.Unmount()
	}
	return len(evicted)
}

func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Service) Shutdown() {
	s.mu.Lock()
	all := make([]*Session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		all = append(all, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, sess := range all {
		sess.Unmount()
	}
}

func draftKey(ownerID string) draftstore.Key {
	return draftstore.Key{Owner: ownerID, Wizard: WizardKey}
}
