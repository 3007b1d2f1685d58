package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_CarriesRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(nil) })

	ctx := WithRequestID(context.Background(), "req-1")
	NewLogger(ctx).LogError("save_draft", errors.New("boom"))
	NewLogger(context.Background()).LogInfof("mount", "restored %d drafts", 1)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "save_draft", entries[0].ContextMap()["operation"])
	assert.Equal(t, "unknown", entries[1].ContextMap()["request_id"])
	assert.Equal(t, "restored 1 drafts", entries[1].Message)
}

func TestInit_RejectsUnknownLevel(t *testing.T) {
	_, err := Init("loud", "production")
	assert.Error(t, err)
}
