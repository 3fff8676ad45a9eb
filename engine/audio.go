//go:build cgo

package engine

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"lautenbacher.net/gohaptics/config"
	"lautenbacher.net/gohaptics/event"
)

var (
	paMutex       sync.Mutex
	paInitialized bool
)

// Audio renders pulses as short audible ticks through the default output
// device. It is the stand-in actuator for desktop development: sharpness
// maps to the tick frequency, intensity to its amplitude, and the
// envelope parameters shape the tick the way they would shape a real
// haptic transient.
type Audio struct {
	cfg    config.AudioConfig
	sched  *scheduler
	stream *portaudio.Stream
	buf    []float32

	mu      sync.Mutex
	started bool
}

// NewAudio creates the audible-tick engine.
func NewAudio(cfg config.AudioConfig) (*Audio, error) {
	e := &Audio{
		cfg: cfg,
		buf: make([]float32, 512),
	}
	e.sched = newScheduler(e.renderPulse)
	return e, nil
}

func (e *Audio) Supported() bool { return true }

func (e *Audio) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return nil
	}

	paMutex.Lock()
	if !paInitialized {
		if err := portaudio.Initialize(); err != nil {
			paMutex.Unlock()
			return fmt.Errorf("failed to initialize portaudio: %w", err)
		}
		paInitialized = true
		slog.Info("Audio engine: PortAudio initialized.")
	}
	paMutex.Unlock()

	stream, err := portaudio.OpenDefaultStream(0, 1, float64(e.cfg.SampleRate), len(e.buf), &e.buf)
	if err != nil {
		return fmt.Errorf("failed to open audio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start audio stream: %w", err)
	}

	e.stream = stream
	e.sched.start()
	e.started = true
	return nil
}

func (e *Audio) Stop() error {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return nil
	}
	e.started = false
	e.mu.Unlock()

	e.sched.stop()

	var firstErr error
	if err := e.stream.Stop(); err != nil {
		firstErr = fmt.Errorf("failed to stop audio stream: %w", err)
	}
	if err := e.stream.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close audio stream: %w", err)
	}
	e.stream = nil

	paMutex.Lock()
	if paInitialized {
		if err := portaudio.Terminate(); err != nil {
			slog.Error("Audio engine: failed to terminate portaudio", "error", err)
		} else {
			slog.Info("Audio engine: PortAudio terminated.")
			paInitialized = false
		}
	}
	paMutex.Unlock()

	return firstErr
}

func (e *Audio) Play(pulses []event.Pulse, at time.Duration) error {
	e.mu.Lock()
	started := e.started
	e.mu.Unlock()
	if !started {
		return fmt.Errorf("audio engine not started")
	}
	e.sched.submit(pulses, at)
	return nil
}

// renderPulse synthesizes one tick and writes it to the stream in
// buffer-sized chunks. It runs on the scheduler goroutine.
func (e *Audio) renderPulse(p event.Pulse) {
	env := newEnvelope(p, e.cfg.TransientDuration)
	freq := e.cfg.BaseFreqHz + clamp01(pulseSharpness(p))*(e.cfg.MaxFreqHz-e.cfg.BaseFreqHz)
	amp := clamp01(pulseIntensity(p))

	total := int(env.total() * float64(e.cfg.SampleRate))
	for off := 0; off < total; off += len(e.buf) {
		for i := range e.buf {
			n := off + i
			if n >= total {
				e.buf[i] = 0
				continue
			}
			t := float64(n) / float64(e.cfg.SampleRate)
			e.buf[i] = float32(math.Sin(2*math.Pi*freq*t) * amp * env.at(t))
		}
		if err := e.stream.Write(); err != nil {
			slog.Error("Audio engine: stream write failed", "error", err)
			return
		}
	}
}
