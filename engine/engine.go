// Package engine contains the playback engines that turn event pulses
// into physical (or simulated) haptic output. The playback service talks
// to an Engine and does not care which concrete variant is behind it.
package engine

import (
	"time"

	"lautenbacher.net/gohaptics/event"
)

// Engine defines the interface for abstracting away the real haptic
// hardware from the simulation and no-op fallbacks.
type Engine interface {
	// Supported reports whether this engine can actually produce
	// feedback. It is fixed for the lifetime of the engine.
	Supported() bool

	// Start acquires the underlying resources (GPIO, audio device, TUI)
	// and makes the engine ready to play.
	Start() error

	// Stop releases all resources. A stopped engine can be started again.
	Stop() error

	// Play renders the given pulses starting at the given offset from
	// now. It returns quickly; actual rendering happens asynchronously.
	Play(pulses []event.Pulse, at time.Duration) error
}

// Engine defaults applied when a pulse leaves a parameter unset.
const (
	defaultIntensity = 1.0
	defaultSharpness = 0.5
)

func pulseIntensity(p event.Pulse) float64 {
	if p.Intensity != nil {
		return *p.Intensity
	}
	return defaultIntensity
}

func pulseSharpness(p event.Pulse) float64 {
	if p.Sharpness != nil {
		return *p.Sharpness
	}
	return defaultSharpness
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
