// Package service hosts project creation wizard sessions. A Session composes the
// form state, the step sequencer, the draft store and the AI and submission
// clients; the Service keeps the registry of live sessions.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/makerhub/innovation-wizard/internal/logging"
	"github.com/makerhub/innovation-wizard/internal/notify"
	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
	"github.com/makerhub/innovation-wizard/internal/wizard/draftstore"
	"github.com/makerhub/innovation-wizard/internal/wizard/taxonomy"
)

type Service struct {
	deps Deps
	cfg  Config

	mu       sync.RWMutex
	sessions map[string]*Session
}

func New(deps Deps, cfg Config) (*Service, error) {
	if deps.Store == nil || deps.Classifier == nil || deps.Teams == nil || deps.Submitter == nil {
		return nil, errors.New("wizard service: store, classifier, team suggester and submitter are required")
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Discard
	}
	if deps.Taxonomy == nil {
		deps.Taxonomy = taxonomy.Default()
	}
	return &Service{
		deps:     deps,
		cfg:      cfg.withDefaults(),
		sessions: make(map[string]*Session),
	}, nil
}

// Mount opens a new session for owner, restoring the owner's saved draft if any.
func (s *Service) Mount(ctx context.Context, owner Owner) (*Session, error) {
	if owner.ID == "" {
		return nil, errors.New("mount: owner id is required")
	}
	sess := newSession(uuid.NewString(), owner, &s.deps, s.cfg)
	sess.restore(ctx)
	s.register(sess)
	logging.NewLogger(ctx).LogInfof("mount_wizard", "session %s mounted for %s", sess.id, owner.ID)
	return sess, nil
}

// MountSeeded opens a session whose draft starts from seed, replacing any saved draft.
func (s *Service) MountSeeded(ctx context.Context, owner Owner, seed domain.ProjectDraft, title string) (*Session, error) {
	if owner.ID == "" {
		return nil, errors.New("mount: owner id is required")
	}
	sess := newSession(uuid.NewString(), owner, &s.deps, s.cfg)
	sess.seed(ctx, seed, title)
	s.register(sess)
	return sess, nil
}

func (s *Service) register(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.id] = sess
}

// Session returns the session with the given id if it belongs to ownerID.
func (s *Service) Session(id, ownerID string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || sess.owner.ID != ownerID {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// Unmount closes the session and forgets it. Outstanding calls are cancelled
// and their results are never applied.
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

// EvictIdle unmounts sessions untouched for longer than maxIdle, and closed
// sessions untouched for a minute. It returns how many were evicted.
func (s *Service) EvictIdle(maxIdle time.Duration) int {
	now := time.Now()
	var evicted []*Session

	s.mu.Lock()
	for id, sess := range s.sessions {
		idle := now.Sub(sess.LastTouched())
		if idle > maxIdle || (sess.Closed() && idle > time.Minute) {
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

// Len returns the number of registered sessions.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Shutdown unmounts every session.
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

// Taxonomy returns the category list used to validate customized classifications.
func (s *Service) Taxonomy() *taxonomy.Taxonomy { return s.deps.Taxonomy }

// draftKey is the slot of the structured wizard for ownerID.
func draftKey(ownerID string) draftstore.Key {
	return draftstore.Key{Owner: ownerID, Wizard: domain.WizardKey}
}
