//go:build !linux

package engine

import (
	"fmt"
	"log/slog"

	"lautenbacher.net/gohaptics/config"
)

// GPIO is a stub for platforms without GPIO support.
type GPIO struct {
	*Noop
}

// NewGPIO always fails on this platform.
func NewGPIO(cfg config.GPIOConfig) (*GPIO, error) {
	slog.Warn("GPIO engine: not available on this platform.")
	return nil, fmt.Errorf("GPIO engine requires linux")
}
