// Package events carries post-commit side effects out of the mutating
// transactions. Services publish events only after their transaction has
// committed; a Dispatcher hands them to a Sink that is allowed to fail.
package events

import (
	"context"
	"time"
)

// Event is a committed state change that interested users are told about.
type Event struct {
	Type       string
	ActorID    string
	ProjectID  string
	SessionID  string
	Recipients []string
	Title      string
	Message    string
	Data       map[string]any
	OccurredAt time.Time
}

// Publisher accepts committed events. Publish never fails the caller.
type Publisher interface {
	Publish(ctx context.Context, events ...Event)
}

// Sink delivers one event, for example by writing notifications.
type Sink interface {
	Deliver(ctx context.Context, event Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, event Event) error

// Deliver calls f.
func (f SinkFunc) Deliver(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Recipients returns ids with blanks and duplicates removed, keeping the
// first occurrence order.
func Recipients(ids ...string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
