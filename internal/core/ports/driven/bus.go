package driven

import "github.com/catalyst-match/identity/internal/core/domain"

// OutcomeBus carries link outcome messages from a consent context to its
// opener. It is the only channel between the two; neither side touches the
// other's state directly.
//
// The bus is a shared medium: unrelated messages may pass over it, so
// subscribers must validate the message type before acting. Delivery is
// broadcast; a subscriber that has unsubscribed is never called again.
type OutcomeBus interface {
	// Publish delivers a message to all current subscribers.
	Publish(msg domain.LinkOutcome)

	// Subscribe registers a handler and returns the function that removes
	// it. Handlers must be removed when their owner goes away to avoid
	// stale listeners reacting to later, unrelated consent windows.
	Subscribe(handler func(domain.LinkOutcome)) (unsubscribe func())
}
