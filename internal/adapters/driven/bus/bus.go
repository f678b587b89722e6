// Package bus provides the in-process implementation of the outcome bus:
// the message channel between a consent browsing context and its opener.
// The transport is swappable behind driven.OutcomeBus; the state machine
// never sees which one is in play.
package bus

import (
	"sync"

	"github.com/catalyst-match/identity/internal/core/domain"
	"github.com/catalyst-match/identity/internal/core/ports/driven"
)

// Ensure Bus implements the interface.
var _ driven.OutcomeBus = (*Bus)(nil)

// Bus is a broadcast event bus for link outcome messages. Publish delivers
// to every handler subscribed at the moment the publish begins; a handler
// removed before that moment is not called.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(domain.LinkOutcome)
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		subs: make(map[int]func(domain.LinkOutcome)),
	}
}

// Publish delivers the message to all current subscribers. Handlers run on
// the publisher's goroutine, outside the bus lock, so a handler may
// subscribe or unsubscribe without deadlocking.
func (b *Bus) Publish(msg domain.LinkOutcome) {
	b.mu.Lock()
	handlers := make([]func(domain.LinkOutcome), 0, len(b.subs))
	for _, handler := range b.subs {
		handlers = append(handlers, handler)
	}
	b.mu.Unlock()

	for _, handler := range handlers {
		handler(msg)
	}
}

// Subscribe registers a handler and returns its unsubscribe function.
// Unsubscribing twice is harmless.
func (b *Bus) Subscribe(handler func(domain.LinkOutcome)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}
