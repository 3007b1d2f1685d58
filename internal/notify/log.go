package notify

import (
	"context"

	"github.com/makerhub/innovation-wizard/internal/logging"
)

// Log writes error and warning notifications to the request logger so failed
// AI calls and submissions show up next to the request that caused them.
type Log struct{}

func (Log) Notify(ctx context.Context, n Notification) error {
	switch n.Level {
	case LevelError, LevelWarning:
		logging.NewLogger(ctx).With("session_id", n.SessionID).
			LogWarnf("notify", "%s: %s", n.Title, n.Message)
	}
	return nil
}
