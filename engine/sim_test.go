package engine

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lautenbacher.net/gohaptics/event"
)

func TestSim_PatternKeyMapping(t *testing.T) {
	ossignal := make(chan os.Signal, 1)
	s := NewSim(ossignal, []string{"tap", "double", "ramp"})

	assert.Equal(t, "tap", s.patternKeys["1"])
	assert.Equal(t, "double", s.patternKeys["2"])
	assert.Equal(t, "ramp", s.patternKeys["3"])
	assert.True(t, s.Supported())
}

func TestSim_PlayBeforeStartFails(t *testing.T) {
	s := NewSim(make(chan os.Signal, 1), nil)
	err := s.Play(event.Single().Pulses(), 0)
	assert.Error(t, err)
}

func TestSim_TriggerDelivery(t *testing.T) {
	s := NewSim(make(chan os.Signal, 1), []string{"tap"})

	s.sendTrigger("tap")
	s.sendTrigger(TriggerBackground)

	trig := <-s.Triggers()
	require.NotNil(t, trig)
	assert.Equal(t, "tap", trig.ID)
	assert.WithinDuration(t, time.Now(), trig.Timestamp, time.Second)

	trig = <-s.Triggers()
	assert.Equal(t, TriggerBackground, trig.ID)
}

func TestSim_TriggerOverflowIsDropped(t *testing.T) {
	s := NewSim(make(chan os.Signal, 1), nil)

	// Channel buffer is 10; anything beyond must be dropped, not block.
	for i := 0; i < 25; i++ {
		s.sendTrigger(TriggerForeground)
	}
	assert.Len(t, s.triggers, 10)
}
