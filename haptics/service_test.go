package haptics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lautenbacher.net/gohaptics/config"
	"lautenbacher.net/gohaptics/event"
	"lautenbacher.net/gohaptics/lifecycle"
	"lautenbacher.net/gohaptics/util"
)

var _ Player = (*Service)(nil)

// fakeEngine records every call the service makes. A non-nil startGate
// makes Start block until the gate is closed.
type fakeEngine struct {
	mu        sync.Mutex
	supported bool
	startErr  error
	stopErr   error
	playErr   error
	startGate chan struct{}
	starts    int
	stops     int
	played    [][]event.Pulse
}

func (f *fakeEngine) Supported() bool { return f.supported }

func (f *fakeEngine) Start() error {
	f.mu.Lock()
	f.starts++
	gate := f.startGate
	err := f.startErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeEngine) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return f.stopErr
}

func (f *fakeEngine) Play(pulses []event.Pulse, at time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playErr != nil {
		return f.playErr
	}
	f.played = append(f.played, pulses)
	return nil
}

func (f *fakeEngine) playCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.played)
}

func (f *fakeEngine) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts, f.stops
}

func waitLive(t *testing.T, s *Service) {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.State() == StateLive
	}, 2*time.Second, 5*time.Millisecond, "service should reach Live")
}

func TestService_BecomesLiveAfterConstruction(t *testing.T) {
	eng := &fakeEngine{supported: true}
	s := New(eng, nil)
	defer s.Close()

	assert.True(t, s.IsAvailable())
	waitLive(t, s)

	starts, _ := eng.counts()
	assert.Equal(t, 1, starts)
}

func TestService_UnsupportedEngineStaysUninitialized(t *testing.T) {
	eng := &fakeEngine{supported: false}
	s := New(eng, nil)
	defer s.Close()

	assert.False(t, s.IsAvailable())

	// Setup must not even be attempted.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StateUninitialized, s.State())
	starts, _ := eng.counts()
	assert.Equal(t, 0, starts)

	// Play must be a silent no-op, not a crash.
	s.Play(event.Single(event.WithIntensity(1.0)))
	assert.Equal(t, 0, eng.playCount())
}

func TestService_PlayForwardsToEngine(t *testing.T) {
	eng := &fakeEngine{supported: true}
	s := New(eng, nil)
	defer s.Close()
	waitLive(t, s)

	s.Play(event.Single(event.WithIntensity(1.0)))

	require.Equal(t, 1, eng.playCount())
	pulses := eng.played[0]
	require.Len(t, pulses, 1)
	require.NotNil(t, pulses[0].Intensity)
	assert.Equal(t, 1.0, *pulses[0].Intensity)
	assert.Nil(t, pulses[0].Sharpness)
}

func TestService_BackgroundForegroundRoundTrip(t *testing.T) {
	eng := &fakeEngine{supported: true}
	s := New(eng, nil)
	defer s.Close()
	waitLive(t, s)

	s.OnBackground()
	assert.Equal(t, StateUninitialized, s.State())

	// Play while torn down must be a no-op.
	s.Play(event.Single(event.WithIntensity(0.5)))
	assert.Equal(t, 0, eng.playCount())

	s.OnForeground()
	assert.Equal(t, StateLive, s.State())

	s.Play(event.Single(event.WithIntensity(1.0)))
	require.Equal(t, 1, eng.playCount())
	require.Len(t, eng.played[0], 1)
	assert.Equal(t, 1.0, *eng.played[0][0].Intensity)

	starts, stops := eng.counts()
	assert.Equal(t, 2, starts)
	assert.Equal(t, 1, stops)
}

func TestService_EngineStartFailureIsSwallowed(t *testing.T) {
	eng := &fakeEngine{supported: true, startErr: errors.New("engine exploded")}
	s := New(eng, nil)
	defer s.Close()

	require.Eventually(t, func() bool {
		starts, _ := eng.counts()
		return starts == 1
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, StateUninitialized, s.State())
	s.Play(event.Single())
	assert.Equal(t, 0, eng.playCount())
}

func TestService_EnginePlayFailureIsSwallowed(t *testing.T) {
	eng := &fakeEngine{supported: true, playErr: errors.New("compile failed")}
	s := New(eng, nil)
	defer s.Close()
	waitLive(t, s)

	// Must neither panic nor change state.
	s.Play(event.Single(event.WithIntensity(0.5)))
	assert.Equal(t, StateLive, s.State())
}

func TestService_BackgroundDuringStartupStopsEngine(t *testing.T) {
	gate := make(chan struct{})
	eng := &fakeEngine{supported: true, startGate: gate}
	s := New(eng, nil)
	defer s.Close()

	// Wait until the constructor's setup goroutine is inside Start.
	require.Eventually(t, func() bool {
		starts, _ := eng.counts()
		return starts == 1
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, StateStarting, s.State())

	// Backgrounding mid-startup must win: once Start returns, the
	// engine gets stopped again instead of going live.
	s.OnBackground()
	close(gate)

	require.Eventually(t, func() bool {
		_, stops := eng.counts()
		return stops == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, StateUninitialized, s.State())

	s.Play(event.Single(event.WithIntensity(1.0)))
	assert.Equal(t, 0, eng.playCount())
}

func TestService_ForegroundCancelsPendingStopDuringStartup(t *testing.T) {
	gate := make(chan struct{})
	eng := &fakeEngine{supported: true, startGate: gate}
	s := New(eng, nil)
	defer s.Close()

	require.Eventually(t, func() bool {
		starts, _ := eng.counts()
		return starts == 1
	}, 2*time.Second, 5*time.Millisecond)

	// Background then foreground while Start is in flight: the later
	// foreground wins and the running startup lands live.
	s.OnBackground()
	s.OnForeground()
	close(gate)

	waitLive(t, s)
	_, stops := eng.counts()
	assert.Equal(t, 0, stops)
}

func TestService_LifecycleBusDrivesTransitions(t *testing.T) {
	eng := &fakeEngine{supported: true}
	bus := lifecycle.NewBus()
	s := New(eng, bus)
	defer s.Close()
	waitLive(t, s)

	bus.Publish(lifecycle.Background)
	require.Eventually(t, func() bool {
		return s.State() == StateUninitialized
	}, 2*time.Second, 5*time.Millisecond)

	bus.Publish(lifecycle.Foreground)
	require.Eventually(t, func() bool {
		return s.State() == StateLive
	}, 2*time.Second, 5*time.Millisecond)

	starts, stops := eng.counts()
	assert.Equal(t, 2, starts)
	assert.Equal(t, 1, stops)
}

func TestService_CloseTearsDown(t *testing.T) {
	eng := &fakeEngine{supported: true}
	bus := lifecycle.NewBus()
	s := New(eng, bus)
	waitLive(t, s)

	s.Close()
	assert.Equal(t, StateUninitialized, s.State())
	_, stops := eng.counts()
	assert.Equal(t, 1, stops)

	// Publishing after Close must not reach the service.
	bus.Publish(lifecycle.Foreground)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StateUninitialized, s.State())
}

func TestService_GainScalesIntensity(t *testing.T) {
	eng := &fakeEngine{supported: true}
	cell := util.NewAtomicEvent[config.RuntimeConfig]()
	cell.Send(config.RuntimeConfig{Feedback: config.FeedbackConfig{Gain: 0.5}})

	s := New(eng, nil, WithRuntimeConfig(cell))
	defer s.Close()
	waitLive(t, s)

	s.Play(event.Single(event.WithIntensity(0.5)))

	require.Equal(t, 1, eng.playCount())
	assert.Equal(t, 0.25, *eng.played[0][0].Intensity)
}

func TestService_QuietHoursSuppressPlayback(t *testing.T) {
	eng := &fakeEngine{supported: true}
	cell := util.NewAtomicEvent[config.RuntimeConfig]()
	cell.Send(config.RuntimeConfig{
		Feedback: config.FeedbackConfig{Gain: 1.0},
		QuietHours: config.QuietHoursConfig{
			Enabled:   true,
			Latitude:  48.14,
			Longitude: 11.58,
		},
	})

	// Mid-January in Munich: half past midnight UTC is deep night.
	night := time.Date(2026, time.January, 15, 0, 30, 0, 0, time.UTC)
	clock := &fixedClock{now: night}

	s := New(eng, nil, WithRuntimeConfig(cell), WithClock(clock.Now))
	defer s.Close()
	waitLive(t, s)

	s.Play(event.Single(event.WithIntensity(1.0)))
	assert.Equal(t, 0, eng.playCount(), "night playback should be suppressed")

	clock.set(time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC))
	s.Play(event.Single(event.WithIntensity(1.0)))
	assert.Equal(t, 1, eng.playCount(), "noon playback should go through")
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "starting", StateStarting.String())
	assert.Equal(t, "live", StateLive.String())
	assert.Equal(t, "stopping", StateStopping.String())
	assert.Equal(t, "unknown", State(9).String())
}
