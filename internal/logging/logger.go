// Package logging provides request-scoped structured logging on top of zap.
package logging

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var base atomic.Pointer[zap.Logger]

func init() {
	base.Store(zap.NewNop())
}

// Init builds the process logger from the configured level and environment and
// installs it as the base for every Logger.
func Init(level, env string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if env == "development" {
		cfg = zap.NewDevelopmentConfig()
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	Set(l)
	return l, nil
}

// Set replaces the base logger. Tests use it with zaptest or observer cores.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	base.Store(l)
}

// L returns the base logger.
func L() *zap.Logger {
	return base.Load()
}

type requestIDKey struct{}

// WithRequestID stores the request id in ctx.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// RequestID extracts the request id stored by WithRequestID.
func RequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

// Logger is an operation-tagged logger bound to one request.
type Logger struct {
	s *zap.SugaredLogger
}

// NewLogger creates a logger carrying the request id found in ctx.
func NewLogger(ctx context.Context) *Logger {
	requestID := "unknown"
	if rid := RequestID(ctx); rid != "" {
		requestID = rid
	}
	return &Logger{s: L().Sugar().With("request_id", requestID)}
}

// With returns a logger with extra key/value pairs attached.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{s: l.s.With(kv...)}
}

func (l *Logger) LogError(operation string, err error) {
	l.s.Errorw("operation failed", "operation", operation, "error", err)
}

func (l *Logger) LogErrorf(operation string, format string, args ...any) {
	l.s.With("operation", operation).Errorf(format, args...)
}

func (l *Logger) LogInfo(operation string, message string) {
	l.s.Infow(message, "operation", operation)
}

func (l *Logger) LogInfof(operation string, format string, args ...any) {
	l.s.With("operation", operation).Infof(format, args...)
}

func (l *Logger) LogWarn(operation string, message string) {
	l.s.Warnw(message, "operation", operation)
}

func (l *Logger) LogWarnf(operation string, format string, args ...any) {
	l.s.With("operation", operation).Warnf(format, args...)
}
