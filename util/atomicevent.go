package util

import (
	"sync"
)

// AtomicEvent is a latest-value cell with a non-blocking notification
// channel. Producers call Send as often as they like; consumers either
// poll Value for the most recent entry or select on Channel to learn that
// something new arrived. Intermediate values are coalesced away, which is
// the behavior we want for runtime configuration updates: only the newest
// state matters.
type AtomicEvent[T any] struct {
	mu     sync.Mutex
	value  T
	set    bool
	notify chan struct{}
}

// NewAtomicEvent creates an empty AtomicEvent.
func NewAtomicEvent[T any]() *AtomicEvent[T] {
	return &AtomicEvent[T]{
		notify: make(chan struct{}, 1),
	}
}

// Send stores the value as the latest one and queues a notification if
// none is pending. It never blocks.
func (ae *AtomicEvent[T]) Send(value T) {
	ae.mu.Lock()
	defer ae.mu.Unlock()

	ae.value = value
	ae.set = true

	select {
	case ae.notify <- struct{}{}:
	default:
		// A notification is already pending.
	}
}

// Channel returns the notification channel for use in select statements.
func (ae *AtomicEvent[T]) Channel() <-chan struct{} {
	return ae.notify
}

// Value returns the most recently sent value and whether anything has
// been sent at all.
func (ae *AtomicEvent[T]) Value() (T, bool) {
	ae.mu.Lock()
	defer ae.mu.Unlock()
	return ae.value, ae.set
}

// HasPending checks if a notification is waiting to be consumed without
// consuming it.
func (ae *AtomicEvent[T]) HasPending() bool {
	return len(ae.notify) > 0
}
