package util

import "time"

// Trigger represents a user interaction event from the simulation TUI,
// e.g. a request to play a named pattern or a lifecycle transition.
type Trigger struct {
	ID        string
	Timestamp time.Time
}

// NewTrigger creates a new Trigger instance.
func NewTrigger(id string, time time.Time) *Trigger {
	inst := Trigger{
		ID:        id,
		Timestamp: time,
	}
	return &inst
}
