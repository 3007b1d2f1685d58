// Package formstate holds the evolving project draft of one wizard session.
package formstate

import (
	"sync"

	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
)

// Container is a pure state holder: it merges patches and hands out copies.
// It performs no validation.
type Container struct {
	mu    sync.RWMutex
	draft domain.ProjectDraft
}

// New returns a container holding the default draft.
func New() *Container {
	return &Container{draft: domain.NewProjectDraft()}
}

// Snapshot returns a deep copy of the current draft.
func (c *Container) Snapshot() domain.ProjectDraft {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.draft.Clone()
}

// Update shallow-merges p into the draft and returns the new state.
func (c *Container) Update(p domain.DraftPatch) domain.ProjectDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = p.Apply(c.draft)
	return c.draft.Clone()
}

// Restore replaces the whole draft, used when a persisted draft is loaded.
func (c *Container) Restore(d domain.ProjectDraft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = d.Clone()
}

// Reset restores the default draft.
func (c *Container) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = domain.NewProjectDraft()
}
