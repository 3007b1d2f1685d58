package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/makerhub/innovation-wizard/config"
	"github.com/makerhub/innovation-wizard/internal/logging"
	"github.com/makerhub/innovation-wizard/internal/storage/postgres"
	"github.com/makerhub/innovation-wizard/internal/wizard/draftstore"
)

// Drafts is the configured draft slot plus whatever must be closed with it.
type Drafts struct {
	Store *draftstore.Store
	// Postgres is set when DRAFT_BACKEND=postgres; the purge job needs it.
	Postgres *draftstore.PostgresSlot

	close func() error
}

func (d *Drafts) Close() error {
	if d == nil || d.close == nil {
		return nil
	}
	return d.close()
}

// OpenDrafts builds the draft store for cfg.Wizard.DraftBackend. rdb is used
// for the redis backend and may be nil otherwise.
func OpenDrafts(ctx context.Context, cfg *config.Config, rdb *redis.Client) (*Drafts, error) {
	logger := logging.NewLogger(ctx)

	switch cfg.Wizard.DraftBackend {
	case config.DraftBackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis draft backend needs a redis client")
		}
		logger.LogInfof("open_drafts", "drafts in redis, ttl %s", cfg.Wizard.DraftTTL)
		return &Drafts{Store: draftstore.New(draftstore.NewRedisSlot(rdb, cfg.Wizard.DraftTTL))}, nil

	case config.DraftBackendPostgres:
		db, err := postgres.NewConnection(ctx, &cfg.Database)
		if err != nil {
			return nil, err
		}
		slot := draftstore.NewPostgresSlot(db)
		if err := slot.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("draft schema: %w", err)
		}
		logger.LogInfo("open_drafts", "drafts in postgres")
		return &Drafts{Store: draftstore.New(slot), Postgres: slot, close: db.Close}, nil

	case config.DraftBackendMemory:
		logger.LogWarn("open_drafts", "drafts kept in memory and lost on restart")
		return &Drafts{Store: draftstore.New(draftstore.NewMemorySlot())}, nil
	}
	return nil, fmt.Errorf("unknown draft backend %q", cfg.Wizard.DraftBackend)
}
