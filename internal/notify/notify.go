// Package notify delivers user-facing notifications (toasts) raised by wizard sessions.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

type Notification struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Level     Level     `json:"level"`
	Title     string    `json:"title"`
	Message   string    `json:"message,omitempty"`
	At        time.Time `json:"at"`
}

// New builds a notification for sessionID stamped with a fresh id and the current time.
func New(sessionID string, level Level, title, message string) Notification {
	return Notification{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Level:     level,
		Title:     title,
		Message:   message,
		At:        time.Now().UTC(),
	}
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Subscriber streams the notifications of one session until ctx is done.
type Subscriber interface {
	Subscribe(ctx context.Context, sessionID string) (<-chan Notification, error)
}

// Broker both publishes and streams notifications.
type Broker interface {
	Notifier
	Subscriber
}

// Fanout delivers to every notifier and joins their errors.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, nt := range f {
		if nt == nil {
			continue
		}
		if err := nt.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every notification.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(context.Context, Notification) error { return nil }
