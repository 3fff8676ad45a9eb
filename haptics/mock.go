package haptics

import (
	"sync"

	"lautenbacher.net/gohaptics/event"
)

// Mock is the test and preview substitute for the Service. It has no
// lifecycle behavior and touches no hardware; both capabilities of the
// Player interface are overridable through injected closures. The zero
// value is usable: available, and Play only records the event.
type Mock struct {
	// AvailableFunc overrides IsAvailable. Nil means "available".
	AvailableFunc func() bool
	// PlayFunc overrides Play. Nil means "record only".
	PlayFunc func(ev event.Event)

	mu     sync.Mutex
	played []event.Event
}

var _ Player = (*Mock)(nil)

func (m *Mock) IsAvailable() bool {
	if m.AvailableFunc != nil {
		return m.AvailableFunc()
	}
	return true
}

func (m *Mock) Play(ev event.Event) {
	m.mu.Lock()
	m.played = append(m.played, ev)
	m.mu.Unlock()

	if m.PlayFunc != nil {
		m.PlayFunc(ev)
	}
}

// Played returns a copy of all events passed to Play, in order.
func (m *Mock) Played() []event.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	ret := make([]event.Event, len(m.played))
	copy(ret, m.played)
	return ret
}
