package engine

import (
	"math"
	"time"

	"lautenbacher.net/gohaptics/event"
)

// Envelope defaults, in seconds. Applied when a pulse leaves the
// corresponding parameter unset.
const (
	defaultAttack  = 0.005
	defaultDecay   = 0.05
	defaultRelease = 0.02
)

// envelope describes the amplitude curve of one pulse over time. It is
// shared by the engines that can actually modulate amplitude over a
// pulse's lifetime (currently the audio renderer).
type envelope struct {
	attack    float64
	decay     float64
	release   float64
	sustained bool
	hold      float64 // seconds the pulse nominally lasts
}

// newEnvelope derives the amplitude curve for a pulse. Transient pulses
// (duration zero) get the engine's transient width as their hold time.
func newEnvelope(p event.Pulse, transient time.Duration) envelope {
	env := envelope{
		attack:  defaultAttack,
		decay:   defaultDecay,
		release: defaultRelease,
	}
	if p.Attack != nil {
		env.attack = math.Max(0, *p.Attack)
	}
	if p.Decay != nil {
		env.decay = math.Max(0, *p.Decay)
	}
	if p.Release != nil {
		env.release = math.Max(0, *p.Release)
	}
	if p.Sustained != nil {
		env.sustained = *p.Sustained
	}

	hold := p.Duration
	if hold == 0 {
		hold = transient
	}
	env.hold = hold.Seconds()
	return env
}

// total returns the full render length in seconds, including the release
// tail.
func (e envelope) total() float64 {
	return e.hold + e.release
}

// at returns the amplitude factor in [0, 1] at time t seconds into the
// pulse.
func (e envelope) at(t float64) float64 {
	if t < 0 || t >= e.total() {
		return 0
	}

	amp := 1.0
	if e.attack > 0 && t < e.attack {
		amp = t / e.attack
	} else if !e.sustained {
		// Transient behavior: exponential decay after the attack phase.
		tc := e.decay
		if tc <= 0 {
			tc = defaultDecay
		}
		amp = math.Exp(-(t - e.attack) / tc)
	}

	// Release fade at the end of the pulse, both for sustained pulses and
	// for whatever is left of a decaying one.
	if t > e.hold && e.release > 0 {
		amp *= 1 - (t-e.hold)/e.release
	}

	return clamp01(amp)
}
