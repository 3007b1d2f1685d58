// Package launchlog records every project launched through the wizard.
package launchlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const createLaunchesTable = `
create table if not exists wizard_launches (
  project_id   text primary key,
  session_id   text not null,
  owner_id     text not null,
  title        text not null,
  category     text not null default '',
  complexity   text not null default '',
  team_size    int  not null default 0,
  ai_assisted  boolean not null default false,
  launched_at  timestamptz not null default now()
);`

// Execer is satisfied by *pgxpool.Pool and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Entry struct {
	ProjectID  string
	SessionID  string
	OwnerID    string
	Title      string
	Category   string
	Complexity string
	TeamSize   int
	AIAssisted bool
	LaunchedAt time.Time
}

type Ledger struct {
	db Execer
}

func New(db Execer) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) EnsureSchema(ctx context.Context) error {
	if _, err := l.db.Exec(ctx, createLaunchesTable); err != nil {
		return fmt.Errorf("create wizard_launches: %w", err)
	}
	return nil
}

// Record inserts e. Recording the same project twice is not an error.
func (l *Ledger) Record(ctx context.Context, e Entry) error {
	if e.ProjectID == "" {
		return errors.New("launch entry without project id")
	}
	if e.LaunchedAt.IsZero() {
		e.LaunchedAt = time.Now().UTC()
	}

	const q = `
insert into wizard_launches (project_id, session_id, owner_id, title, category, complexity, team_size, ai_assisted, launched_at)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`
	_, err := l.db.Exec(ctx, q,
		e.ProjectID, e.SessionID, e.OwnerID, e.Title, e.Category, e.Complexity, e.TeamSize, e.AIAssisted, e.LaunchedAt)
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil
	}
	return fmt.Errorf("record launch: %w", err)
}
