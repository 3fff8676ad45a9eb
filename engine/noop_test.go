package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lautenbacher.net/gohaptics/event"
)

func TestNoop(t *testing.T) {
	e := NewNoop()

	assert.False(t, e.Supported())
	assert.NoError(t, e.Start())
	assert.NoError(t, e.Play(event.Single(event.WithIntensity(1.0)).Pulses(), 0))
	assert.NoError(t, e.Stop())

	// Playing on a stopped noop engine is equally harmless.
	assert.NoError(t, e.Play(event.Single().Pulses(), 0))
}
