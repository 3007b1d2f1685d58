package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makerhub/innovation-wizard/config"
)

func TestDBOptionsFrom(t *testing.T) {
	opt := DBOptionsFrom(config.DatabaseConfig{
		DSN:            "postgres://wizard@localhost/wizard",
		ConnectTimeout: 750 * time.Millisecond,
		PingTimeout:    300 * time.Millisecond,
	})
	assert.Equal(t, "postgres://wizard@localhost/wizard", opt.DSN)
	assert.Equal(t, 750*time.Millisecond, opt.ConnectTimeout)
	assert.Equal(t, 300*time.Millisecond, opt.PingTimeout)

	def := DBOptions{}.withDefaults()
	assert.Equal(t, 5*time.Second, def.ConnectTimeout)
	assert.Equal(t, 2*time.Second, def.PingTimeout)
}

func TestOpenDB_Rejects(t *testing.T) {
	_, err := OpenDB(context.Background(), DBOptions{})
	assert.ErrorIs(t, err, errNoDSN)

	_, err = OpenDB(context.Background(), DBOptions{DSN: "postgres://%zz"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse DB_DSN")
}

func TestGinMode(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"production", gin.ReleaseMode},
		{"test", gin.TestMode},
		{"development", gin.DebugMode},
		{"", gin.DebugMode},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			assert.Equal(t, tt.want, GinMode(config.AppConfig{Environment: tt.env}))
		})
	}
}
