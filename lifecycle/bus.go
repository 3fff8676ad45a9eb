// Package lifecycle carries application foreground/background transition
// signals from the owning application shell to interested subscribers. It
// replaces a hidden process-wide notification registry with an explicit,
// injectable bus.
package lifecycle

import "sync"

// Signal is an application lifecycle transition.
type Signal int

const (
	// Foreground is delivered when the application enters the foreground.
	Foreground Signal = iota
	// Background is delivered when the application resigns active and
	// enters the background.
	Background
)

func (s Signal) String() string {
	switch s {
	case Foreground:
		return "foreground"
	case Background:
		return "background"
	}
	return "unknown"
}

// Bus fans lifecycle signals out to subscribers. Publish never blocks: a
// subscriber that has not drained its channel misses intermediate signals
// but always finds the most recent one in its buffer.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Signal
	closed bool
}

// NewBus creates an empty lifecycle bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Signal)}
}

// Subscribe registers a new subscriber and returns its signal channel
// together with a cancel function. Cancel closes the channel; it is safe
// to call more than once.
func (b *Bus) Subscribe() (<-chan Signal, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Signal, 1)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Publish delivers a signal to all current subscribers without blocking.
// A subscriber that still holds an undelivered signal gets it replaced:
// intermediate transitions are dropped, the current state is not.
func (b *Bus) Publish(sig Signal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- sig:
		default:
			// Subscriber is behind; evict the stale signal so it sees
			// the current lifecycle state when it catches up.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- sig:
			default:
			}
		}
	}
}

// Close closes all subscriber channels. Subsequent Subscribe calls return
// an already-closed channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
