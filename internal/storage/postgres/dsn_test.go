package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/makerhub/innovation-wizard/config"
)

func TestDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:     "db.local",
		Port:     5433,
		User:     "wizard",
		Password: `p a'ss`,
		Name:     "drafts",
	}

	got := DSN(cfg)
	assert.Equal(t, `host='db.local' port=5433 user='wizard' password='p a\'ss' dbname='drafts' sslmode=disable`, got)

	cfg.SSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}
