//go:build !cgo

package engine

import (
	"fmt"
	"log/slog"

	"lautenbacher.net/gohaptics/config"
)

// Audio is a stub for builds where CGO is disabled.
type Audio struct {
	*Noop
}

// NewAudio always fails in this build.
func NewAudio(cfg config.AudioConfig) (*Audio, error) {
	slog.Warn("Audio engine: audio support is disabled in this build (requires CGO).")
	return nil, fmt.Errorf("audio engine requires CGO")
}
