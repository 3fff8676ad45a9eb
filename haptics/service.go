// Package haptics contains the playback service that bridges declarative
// event patterns to a playback engine, honoring application lifecycle
// transitions and degrading to a silent no-op whenever the engine is
// unavailable. Haptic feedback is non-critical by policy: nothing in this
// package ever surfaces an error to the caller.
package haptics

import (
	"log/slog"
	"sync"
	"time"

	"lautenbacher.net/gohaptics/config"
	"lautenbacher.net/gohaptics/engine"
	"lautenbacher.net/gohaptics/event"
	"lautenbacher.net/gohaptics/lifecycle"
	"lautenbacher.net/gohaptics/util"
)

// Player is the capability UI code programs against. The real Service and
// the Mock both implement it.
type Player interface {
	// IsAvailable reports whether the platform can produce haptic
	// feedback at all. It never changes within a process run.
	IsAvailable() bool

	// Play renders the pattern starting immediately. It never blocks for
	// long and never fails; when no engine is live it does nothing.
	Play(ev event.Event)
}

// State is the playback service's engine-handle state.
type State int

const (
	StateUninitialized State = iota
	StateStarting
	StateLive
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateStarting:
		return "starting"
	case StateLive:
		return "live"
	case StateStopping:
		return "stopping"
	}
	return "unknown"
}

// Service owns the engine handle and reacts to lifecycle transitions:
// entering the background tears the engine down, entering the foreground
// sets it up again. Construct one per application and keep it for the
// process lifetime.
type Service struct {
	eng       engine.Engine
	available bool

	mu          sync.Mutex
	state       State
	stopPending bool

	runtime     *util.AtomicEvent[config.RuntimeConfig]
	now         func() time.Time
	unsubscribe func()
	wg          sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

// WithRuntimeConfig attaches the cell carrying runtime-changeable
// settings (gain, quiet hours). The service reads the latest value on
// every Play.
func WithRuntimeConfig(cell *util.AtomicEvent[config.RuntimeConfig]) Option {
	return func(s *Service) { s.runtime = cell }
}

// WithClock overrides the time source used for the quiet-hours check.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates the service, subscribes it to the lifecycle bus (a nil bus
// is allowed: the OnForeground/OnBackground hooks still work), and kicks
// off engine setup asynchronously. Availability is computed once, here.
func New(eng engine.Engine, bus *lifecycle.Bus, opts ...Option) *Service {
	s := &Service{
		eng:       eng,
		available: eng != nil && eng.Supported(),
		state:     StateUninitialized,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if bus != nil {
		ch, cancel := bus.Subscribe()
		s.unsubscribe = cancel
		s.wg.Add(1)
		go s.lifecycleLoop(ch)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.setup()
	}()

	return s
}

// IsAvailable reports the capability computed at construction time. The
// no-op fallback engine always reports false.
func (s *Service) IsAvailable() bool {
	return s.available
}

// State returns the current engine-handle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Play forwards the pattern to the engine. In every state but Live this
// is a silent no-op; engine failures are logged and swallowed.
func (s *Service) Play(ev event.Event) {
	s.mu.Lock()
	live := s.state == StateLive
	s.mu.Unlock()
	if !live {
		return
	}

	if s.runtime != nil {
		if rt, ok := s.runtime.Value(); ok {
			if s.suppressed(rt.QuietHours) {
				slog.Debug("Suppressing haptic feedback during quiet hours")
				return
			}
			if rt.Feedback.Gain != 1.0 {
				ev = ev.Scaled(rt.Feedback.Gain)
			}
		}
	}

	if err := s.eng.Play(ev.Pulses(), 0); err != nil {
		slog.Error("Failed to play haptic pattern", "error", err)
	}
}

// OnForeground tears down any existing engine handle and sets up a fresh
// one. Application shells without a lifecycle bus call this directly.
func (s *Service) OnForeground() {
	s.teardown()
	s.setup()
}

// OnBackground tears the engine handle down.
func (s *Service) OnBackground() {
	s.teardown()
}

// Close unsubscribes from the lifecycle bus and tears the engine down.
// Teardown is best-effort; Close never fails.
func (s *Service) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.wg.Wait()
	s.teardown()
}

func (s *Service) lifecycleLoop(ch <-chan lifecycle.Signal) {
	defer s.wg.Done()
	for sig := range ch {
		slog.Debug("Lifecycle transition", "signal", sig)
		switch sig {
		case lifecycle.Foreground:
			s.OnForeground()
		case lifecycle.Background:
			s.OnBackground()
		}
	}
}

// setup starts the engine. The blocking engine call happens outside the
// lock so Play never waits on an in-flight transition.
func (s *Service) setup() {
	if !s.available {
		return
	}

	s.mu.Lock()
	if s.state != StateUninitialized {
		if s.state == StateStarting {
			// A start is already in flight; let it land live.
			s.stopPending = false
		}
		s.mu.Unlock()
		return
	}
	s.state = StateStarting
	s.stopPending = false
	s.mu.Unlock()

	err := s.eng.Start()

	s.mu.Lock()
	if err != nil {
		slog.Error("Failed to start haptic engine", "error", err)
		s.state = StateUninitialized
		s.stopPending = false
		s.mu.Unlock()
		return
	}
	if s.stopPending {
		// A teardown arrived while Start was in flight; the engine must
		// not stay running.
		s.stopPending = false
		s.state = StateStopping
		s.mu.Unlock()
		if err := s.eng.Stop(); err != nil {
			slog.Error("Failed to stop haptic engine", "error", err)
		}
		s.mu.Lock()
		s.state = StateUninitialized
		s.mu.Unlock()
		return
	}
	if s.state == StateStarting {
		s.state = StateLive
	}
	s.mu.Unlock()
}

func (s *Service) teardown() {
	s.mu.Lock()
	if s.state == StateStarting {
		// Start is still in flight; have it stop the engine once it
		// returns instead of letting it go live.
		s.stopPending = true
		s.mu.Unlock()
		return
	}
	if s.state != StateLive {
		s.mu.Unlock()
		return
	}
	s.state = StateStopping
	s.mu.Unlock()

	err := s.eng.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		slog.Error("Failed to stop haptic engine", "error", err)
	}
	s.state = StateUninitialized
}

func (s *Service) suppressed(qh config.QuietHoursConfig) bool {
	if !qh.Enabled {
		return false
	}
	return isNight(s.now(), qh.Latitude, qh.Longitude)
}
