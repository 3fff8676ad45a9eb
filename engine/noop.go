package engine

import (
	"time"

	"lautenbacher.net/gohaptics/event"
)

// Noop is the engine used on platforms without any way to produce haptic
// feedback. It reports itself as unsupported and ignores everything; the
// playback service degrades to a silent no-op on top of it.
type Noop struct{}

// NewNoop creates the no-op fallback engine.
func NewNoop() *Noop {
	return &Noop{}
}

func (e *Noop) Supported() bool { return false }

func (e *Noop) Start() error { return nil }

func (e *Noop) Stop() error { return nil }

func (e *Noop) Play(pulses []event.Pulse, at time.Duration) error { return nil }
