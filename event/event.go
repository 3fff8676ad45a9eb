// Package event provides a declarative, immutable description of haptic
// feedback patterns. An Event is an ordered sequence of pulses; builders
// construct single pulses, concatenate patterns, and derive time-shifted or
// intensity-scaled copies. The package performs no I/O and never errors:
// out-of-range values are passed through for the playback engine to clamp
// or reject.
package event

import "time"

// Pulse is one atomic unit of haptic feedback. Optional parameters are
// pointers; a nil pointer means "not set", and the playback engine applies
// its own default. RelativeTime and Duration default to zero, meaning an
// instantaneous pulse at pattern start.
type Pulse struct {
	Intensity *float64
	Sharpness *float64
	Attack    *float64
	Decay     *float64
	Release   *float64
	Sustained *bool

	RelativeTime time.Duration
	Duration     time.Duration
}

// Event is an ordered sequence of pulses played together as one pattern.
// Treat an Event as immutable: the derivation methods return copies and
// never touch the receiver.
type Event struct {
	pulses []Pulse
}

// PulseOption attaches one parameter to a pulse under construction.
type PulseOption func(*Pulse)

// WithIntensity sets the pulse intensity (nominal range 0.0 to 1.0).
func WithIntensity(v float64) PulseOption {
	return func(p *Pulse) { p.Intensity = &v }
}

// WithSharpness sets the pulse sharpness (nominal range 0.0 to 1.0).
func WithSharpness(v float64) PulseOption {
	return func(p *Pulse) { p.Sharpness = &v }
}

// WithAttack sets the attack time of the amplitude envelope.
func WithAttack(v float64) PulseOption {
	return func(p *Pulse) { p.Attack = &v }
}

// WithDecay sets the decay time of the amplitude envelope.
func WithDecay(v float64) PulseOption {
	return func(p *Pulse) { p.Decay = &v }
}

// WithRelease sets the release time of the amplitude envelope.
func WithRelease(v float64) PulseOption {
	return func(p *Pulse) { p.Release = &v }
}

// WithSustained marks the pulse as sustained for its duration instead of
// decaying immediately.
func WithSustained(v bool) PulseOption {
	return func(p *Pulse) { p.Sustained = &v }
}

// At sets the pulse start time relative to the start of the pattern.
func At(d time.Duration) PulseOption {
	return func(p *Pulse) { p.RelativeTime = d }
}

// For sets the pulse duration. Zero means transient.
func For(d time.Duration) PulseOption {
	return func(p *Pulse) { p.Duration = d }
}

// Single builds a one-pulse pattern. Only the parameters provided as
// options are attached to the pulse; everything else is left unset for the
// engine to default. Single() with no options is valid and yields a pulse
// with no parameters attached.
func Single(opts ...PulseOption) Event {
	var p Pulse
	for _, opt := range opts {
		opt(&p)
	}
	return Event{pulses: []Pulse{p}}
}

// Pattern concatenates the pulse sequences of the given events, preserving
// input order. Pattern() with no arguments yields an empty pattern.
func Pattern(events ...Event) Event {
	total := 0
	for _, ev := range events {
		total += len(ev.pulses)
	}
	pulses := make([]Pulse, 0, total)
	for _, ev := range events {
		pulses = append(pulses, ev.pulses...)
	}
	return Event{pulses: pulses}
}

// TimeShifted returns a copy of the event with every pulse re-stamped to
// the given relative time and duration. All other pulse parameters are
// retained. Note that this is a uniform stamp: a multi-pulse pattern loses
// its internal timing offsets.
func (e Event) TimeShifted(relativeTime, duration time.Duration) Event {
	pulses := make([]Pulse, len(e.pulses))
	copy(pulses, e.pulses)
	for i := range pulses {
		pulses[i].RelativeTime = relativeTime
		pulses[i].Duration = duration
	}
	return Event{pulses: pulses}
}

// Scaled returns a copy of the event with every set intensity multiplied
// by gain and clamped to [0, 1]. Pulses without an intensity parameter are
// left untouched.
func (e Event) Scaled(gain float64) Event {
	pulses := make([]Pulse, len(e.pulses))
	copy(pulses, e.pulses)
	for i := range pulses {
		if pulses[i].Intensity == nil {
			continue
		}
		v := *pulses[i].Intensity * gain
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		pulses[i].Intensity = &v
	}
	return Event{pulses: pulses}
}

// Pulses returns a copy of the event's pulse sequence.
func (e Event) Pulses() []Pulse {
	ret := make([]Pulse, len(e.pulses))
	copy(ret, e.pulses)
	return ret
}

// Len returns the number of pulses in the pattern.
func (e Event) Len() int {
	return len(e.pulses)
}
