// Package notifications delivers live updates: an in-process broker with
// filtered subscriptions, a Redis bridge between instances and the websocket
// hub that feeds browsers.
package notifications

import (
	"context"
	"runtime/debug"
	"slices"
	"strconv"
	"sync"

	"timebank/internal/middleware"
	"timebank/internal/observability"

	"github.com/google/uuid"
)

// Event kinds published by the services after their writes commit.
const (
	KindTaskCreated        = "task.created"
	KindTaskUpdated        = "task.updated"
	KindTaskDeleted        = "task.deleted"
	KindHireRequestCreated = "hire_request.created"
	KindChatMessage        = "chat.message"
	KindChatRead           = "chat.read"
	KindCommunityMessage   = "community.message"
	KindUserUpdated        = "user.updated"
)

// Collections events belong to.
const (
	CollectionTasks     = "tasks"
	CollectionChats     = "chats"
	CollectionCommunity = "community"
	CollectionUsers     = "users"
)

// Event is a change notification. Users lists every account the change is
// visible to.
type Event struct {
	ID         string `json:"id"`
	Collection string `json:"collection"`
	Kind       string `json:"kind"`
	DocID      uint   `json:"doc_id,omitempty"`
	Users      []uint `json:"users,omitempty"`
	City       string `json:"city,omitempty"`
	Payload    any    `json:"payload,omitempty"`
}

func (e Event) attr(field string) []string {
	switch field {
	case "collection":
		return []string{e.Collection}
	case "kind":
		return []string{e.Kind}
	case "id":
		return []string{strconv.FormatUint(uint64(e.DocID), 10)}
	case "city":
		return []string{e.City}
	case "user":
		out := make([]string, len(e.Users))
		for i, u := range e.Users {
			out[i] = strconv.FormatUint(uint64(u), 10)
		}
		return out
	}
	return nil
}

// Predicate matches when any value of the event attribute Field is in Values.
type Predicate struct {
	Field  string
	Values []string
}

// Eq matches field == value.
func Eq(field, value string) Predicate {
	return Predicate{Field: field, Values: []string{value}}
}

// In matches field against a set.
func In(field string, values ...string) Predicate {
	return Predicate{Field: field, Values: values}
}

// User matches events visible to id.
func User(id uint) Predicate {
	return Eq("user", strconv.FormatUint(uint64(id), 10))
}

// Filter is a conjunction of predicates. The empty filter matches everything.
type Filter []Predicate

// Match reports whether every predicate holds for e.
func (f Filter) Match(e Event) bool {
	for _, p := range f {
		ok := false
		for _, have := range e.attr(p.Field) {
			if slices.Contains(p.Values, have) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

type subscription struct {
	filter Filter
	fn     func(Event)
}

// Broker fans events out to subscribers whose filter matches.
type Broker struct {
	mu      sync.RWMutex
	nextID  uint64
	subs    map[uint64]subscription
	forward func(context.Context, Event)
}

// NewBroker returns an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[uint64]subscription)}
}

// Subscribe registers fn for events matching f. The returned cancel is
// idempotent; after it returns fn is not called again.
func (b *Broker) Subscribe(f Filter, fn func(Event)) (cancel func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[id] = subscription{filter: f, fn: fn}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers e locally and forwards it to other instances when a bridge is attached.
func (b *Broker) Publish(ctx context.Context, e Event) {
	if b == nil {
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	b.deliver(e)

	b.mu.RLock()
	forward := b.forward
	b.mu.RUnlock()
	if forward != nil {
		forward(ctx, e)
	}
}

func (b *Broker) deliver(e Event) {
	observability.EventsPublishedTotal.WithLabelValues(e.Collection).Inc()

	b.mu.RLock()
	matched := make([]func(Event), 0, len(b.subs))
	for _, s := range b.subs {
		if s.filter.Match(e) {
			matched = append(matched, s.fn)
		}
	}
	b.mu.RUnlock()

	for _, fn := range matched {
		func() {
			defer func() {
				if r := recover(); r != nil {
					middleware.Logger.Error("panic in event subscriber",
						"kind", e.Kind, "panic", r, "stack", string(debug.Stack()))
				}
			}()
			fn(e)
		}()
	}
}

// SubscriberCount returns the number of live subscriptions.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
