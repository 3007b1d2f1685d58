package draftstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const createDraftsTable = `
CREATE TABLE IF NOT EXISTS wizard_drafts (
  owner_id   TEXT        NOT NULL,
  wizard_key TEXT        NOT NULL,
  payload    JSONB       NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (owner_id, wizard_key)
);`

// PostgresSlot stores drafts in the wizard_drafts table.
type PostgresSlot struct {
	db *sql.DB
}

func NewPostgresSlot(db *sql.DB) *PostgresSlot {
	return &PostgresSlot{db: db}
}

// EnsureSchema creates the drafts table when it does not exist.
func (p *PostgresSlot) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, createDraftsTable); err != nil {
		return fmt.Errorf("create wizard_drafts: %w", err)
	}
	return nil
}

func (p *PostgresSlot) Get(ctx context.Context, key Key) ([]byte, error) {
	const q = `
SELECT payload::text
FROM wizard_drafts
WHERE owner_id = $1 AND wizard_key = $2;
`
	var payload string
	err := p.db.QueryRowContext(ctx, q, key.Owner, key.Wizard).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEmpty
		}
		if isUndefinedTable(err) {
			return nil, ErrEmpty
		}
		return nil, err
	}
	return []byte(payload), nil
}

func (p *PostgresSlot) Set(ctx context.Context, key Key, payload []byte) error {
	const q = `
INSERT INTO wizard_drafts (owner_id, wizard_key, payload, updated_at)
VALUES ($1, $2, $3::jsonb, now())
ON CONFLICT (owner_id, wizard_key)
DO UPDATE SET payload = EXCLUDED.payload, updated_at = now();
`
	_, err := p.db.ExecContext(ctx, q, key.Owner, key.Wizard, string(payload))
	if isUndefinedTable(err) {
		// first write against a fresh database
		if err := p.EnsureSchema(ctx); err != nil {
			return err
		}
		_, err = p.db.ExecContext(ctx, q, key.Owner, key.Wizard, string(payload))
	}
	return err
}

func (p *PostgresSlot) Delete(ctx context.Context, key Key) error {
	const q = `
DELETE FROM wizard_drafts
WHERE owner_id = $1 AND wizard_key = $2;
`
	_, err := p.db.ExecContext(ctx, q, key.Owner, key.Wizard)
	if isUndefinedTable(err) {
		return nil
	}
	return err
}

// Purge deletes drafts not saved within the retention window and returns how many were removed.
func (p *PostgresSlot) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	const q = `
DELETE FROM wizard_drafts
WHERE updated_at < $1;
`
	result, err := p.db.ExecContext(ctx, q, time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func isUndefinedTable(err error) bool {
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}
