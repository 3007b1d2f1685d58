// Package draftstore persists the single in-progress draft of each wizard per owner.
//
// Records are JSON documents stamped with a schema version. A slot that cannot be
// decoded, or that was written by a newer build, is logged, cleared and reported
// as empty so a broken draft never blocks the wizard.
package draftstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/makerhub/innovation-wizard/internal/logging"
	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
)

// ErrEmpty is returned by a Slot when nothing is stored under the key.
var ErrEmpty = errors.New("draft slot is empty")

// Key identifies one draft slot: one owner, one wizard.
type Key struct {
	Owner  string
	Wizard string
}

func (k Key) String() string {
	return k.Owner + ":" + k.Wizard
}

// Slot is raw byte storage for drafts.
type Slot interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Set(ctx context.Context, key Key, payload []byte) error
	Delete(ctx context.Context, key Key) error
}

// Versioned is implemented by every persisted record type.
type Versioned interface {
	SchemaVersion() int
	StampSchema(v int)
}

// Store encodes records into a Slot.
type Store struct {
	slot Slot
}

// New creates a Store over slot.
func New(slot Slot) *Store {
	return &Store{slot: slot}
}

// Load decodes the record stored under key into dst. It reports false when the
// slot is empty or held an unusable record; the latter is cleared.
func (s *Store) Load(ctx context.Context, key Key, dst Versioned) (bool, error) {
	logger := logging.NewLogger(ctx).With("draft_key", key.String())

	raw, err := s.slot.Get(ctx, key)
	if errors.Is(err, ErrEmpty) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load draft: %w", err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		logger.LogWarnf("load_draft", "discarding corrupt draft: %v", err)
		s.discard(ctx, key, logger)
		return false, nil
	}

	switch v := dst.SchemaVersion(); {
	case v == 0:
		// written before records were versioned; the shape is unchanged
		dst.StampSchema(domain.CurrentSchemaVersion)
	case v > domain.CurrentSchemaVersion:
		logger.LogWarnf("load_draft", "discarding draft with unsupported schema version %d", v)
		s.discard(ctx, key, logger)
		return false, nil
	}
	return true, nil
}

// Save overwrites the slot with rec, stamping the current schema version.
func (s *Store) Save(ctx context.Context, key Key, rec Versioned) error {
	rec.StampSchema(domain.CurrentSchemaVersion)
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.slot.Set(ctx, key, payload); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Clear empties the slot. Clearing an empty slot is not an error.
func (s *Store) Clear(ctx context.Context, key Key) error {
	if err := s.slot.Delete(ctx, key); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

func (s *Store) discard(ctx context.Context, key Key, logger *logging.Logger) {
	if err := s.slot.Delete(ctx, key); err != nil {
		logger.LogError("discard_draft", err)
	}
}
