package orchestrator

import "time"

// Clock abstracts wall time so the retry cadence can be driven by a
// virtual clock in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }
