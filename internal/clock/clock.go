// Package clock provides an injectable time source so lifecycle transitions
// and period-boundary arithmetic are deterministic under test.
package clock

import "time"

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns a Clock backed by the wall clock, in UTC.
func System() Clock { return systemClock{} }

// Fixed is a Clock pinned to a single instant, for tests.
type Fixed struct {
	Instant time.Time
}

func (f Fixed) Now() time.Time { return f.Instant }

// At returns a Fixed clock pinned to t.
func At(t time.Time) Fixed { return Fixed{Instant: t} }
