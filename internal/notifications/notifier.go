package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"

	"timebank/internal/middleware"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventsChannel carries broker events between instances.
const EventsChannel = "timebank:events"

type envelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

// Notifier bridges a Broker over Redis pub/sub so that subscribers on every
// instance see every event exactly once.
type Notifier struct {
	rdb    *redis.Client
	origin string
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb, origin: uuid.NewString()}
}

// Publish sends e to the other instances.
func (n *Notifier) Publish(ctx context.Context, e Event) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(envelope{Origin: n.origin, Event: e})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.rdb.Publish(ctx, EventsChannel, payload).Err()
}

// Attach forwards local publishes of b to Redis and delivers remote events
// into b until ctx is done. With a nil client it is a no-op.
func (n *Notifier) Attach(ctx context.Context, b *Broker) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, EventsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", EventsChannel, err)
	}
	ch := sub.Channel()

	b.mu.Lock()
	b.forward = func(ctx context.Context, e Event) {
		if err := n.Publish(ctx, e); err != nil {
			middleware.Logger.WarnContext(ctx, "event bridge publish failed", "kind", e.Kind, "error", err)
		}
	}
	b.mu.Unlock()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				b.mu.Lock()
				b.forward = nil
				b.mu.Unlock()
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in event bridge", "panic", r, "stack", string(debug.Stack()))
						}
					}()
					var env envelope
					if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
						middleware.Logger.Warn("invalid event on bridge", "error", err)
						return
					}
					if env.Origin == n.origin {
						return
					}
					b.deliver(env.Event)
				}()
			}
		}
	}()

	return nil
}
