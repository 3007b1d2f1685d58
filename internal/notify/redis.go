package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/makerhub/innovation-wizard/internal/logging"
)

const eventChannelPrefix = "wizard:events:" // wizard:events:{session_id}

// RedisBroker publishes notifications on a per-session Pub/Sub channel so that
// any API instance can stream them.
type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) Notify(ctx context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := b.client.Publish(ctx, eventChannelPrefix+n.SessionID, data).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, sessionID string) (<-chan Notification, error) {
	pubsub := b.client.Subscribe(ctx, eventChannelPrefix+sessionID)
	// wait for the subscription to be confirmed before reporting success
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe notifications: %w", err)
	}

	out := make(chan Notification, subscriberBuffer)
	go func() {
		defer close(out)
		defer pubsub.Close()
		logger := logging.NewLogger(ctx)
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var n Notification
				if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
					logger.LogWarnf("subscribe_notifications", "dropping undecodable event: %v", err)
					continue
				}
				select {
				case out <- n:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
