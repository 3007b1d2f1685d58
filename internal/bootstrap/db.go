package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/makerhub/innovation-wizard/config"
)

// DBOptions bounds how long OpenDB waits on the pgx pool.
type DBOptions struct {
	DSN            string
	ConnectTimeout time.Duration
	PingTimeout    time.Duration
}

var errNoDSN = errors.New("DB_DSN is not set")

func DBOptionsFrom(cfg config.DatabaseConfig) DBOptions {
	return DBOptions{
		DSN:            cfg.DSN,
		ConnectTimeout: cfg.ConnectTimeout,
		PingTimeout:    cfg.PingTimeout,
	}
}

func (o DBOptions) withDefaults() DBOptions {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 5 * time.Second
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = 2 * time.Second
	}
	return o
}

// OpenDB opens the pool behind the launch log and the health check and pings it once.
func OpenDB(ctx context.Context, opt DBOptions) (*pgxpool.Pool, error) {
	if opt.DSN == "" {
		return nil, errNoDSN
	}
	opt = opt.withDefaults()

	poolCfg, err := pgxpool.ParseConfig(opt.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse DB_DSN: %w", err)
	}
	poolCfg.ConnConfig.ConnectTimeout = opt.ConnectTimeout

	cctx, cancel := context.WithTimeout(ctx, opt.ConnectTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(cctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	pctx, pcancel := context.WithTimeout(ctx, opt.PingTimeout)
	defer pcancel()
	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping within %s: %w", opt.PingTimeout, err)
	}
	return pool, nil
}
