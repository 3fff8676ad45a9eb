//go:build linux

package engine

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/stianeikeland/go-rpio/v4"

	"lautenbacher.net/gohaptics/config"
	"lautenbacher.net/gohaptics/event"
)

// GPIO drives an ERM vibration motor attached to a hardware PWM pin of a
// Raspberry Pi. Pulse intensity maps to the PWM duty cycle, sharpness to
// the carrier frequency. Envelope parameters are ignored here: motor
// inertia dominates anything faster than a few tens of milliseconds.
type GPIO struct {
	cfg   config.GPIOConfig
	pin   rpio.Pin
	sched *scheduler

	mu      sync.Mutex
	started bool
}

// NewGPIO probes for GPIO access and creates the engine. On hosts without
// a usable GPIO chip (anything that is not the device) the probe fails
// and the caller should fall back to another engine.
func NewGPIO(cfg config.GPIOConfig) (*GPIO, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("no GPIO access: %w", err)
	}
	// Probe only; Start acquires the chip for real.
	if err := rpio.Close(); err != nil {
		return nil, fmt.Errorf("failed to close rpio after probe: %w", err)
	}

	e := &GPIO{cfg: cfg}
	e.sched = newScheduler(e.renderPulse)
	return e, nil
}

func (e *GPIO) Supported() bool { return true }

func (e *GPIO) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return nil
	}

	slog.Info("Initialise GPIO...", "pin", e.cfg.Pin)
	if err := rpio.Open(); err != nil {
		return fmt.Errorf("failed to open rpio: %w", err)
	}

	e.pin = rpio.Pin(e.cfg.Pin)
	e.pin.Mode(rpio.Pwm)
	e.pin.Freq(e.cfg.BaseFreqHz * e.cfg.CycleLength)
	e.pin.DutyCycle(0, uint32(e.cfg.CycleLength))

	e.sched.start()
	e.started = true
	return nil
}

func (e *GPIO) Stop() error {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return nil
	}
	e.started = false
	e.mu.Unlock()

	e.sched.stop()

	e.pin.DutyCycle(0, uint32(e.cfg.CycleLength))
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("failed to close rpio: %w", err)
	}
	return nil
}

func (e *GPIO) Play(pulses []event.Pulse, at time.Duration) error {
	e.mu.Lock()
	started := e.started
	e.mu.Unlock()
	if !started {
		return fmt.Errorf("GPIO engine not started")
	}
	e.sched.submit(pulses, at)
	return nil
}

// renderPulse runs on the scheduler goroutine, so pulses cannot overlap
// on the single motor.
func (e *GPIO) renderPulse(p event.Pulse) {
	cycle := uint32(e.cfg.CycleLength)
	duty := uint32(math.Round(clamp01(pulseIntensity(p)) * float64(e.cfg.CycleLength)))
	freq := e.cfg.BaseFreqHz + int(clamp01(pulseSharpness(p))*float64(e.cfg.MaxFreqHz-e.cfg.BaseFreqHz))

	hold := p.Duration
	if hold == 0 {
		hold = e.cfg.TransientDuration
	}

	e.pin.Freq(freq * e.cfg.CycleLength)
	e.pin.DutyCycle(duty, cycle)
	time.Sleep(hold)
	e.pin.DutyCycle(0, cycle)
}
