package game

import (
	"time"

	"github.com/benbjohnson/clock"
)

// SimTime is the simulated clock handed to every update. Delta never changes
// during a run and Elapsed only grows in whole multiples of it.
type SimTime struct {
	Elapsed time.Duration
	Delta   time.Duration
}

// ElapsedSeconds returns Elapsed in seconds.
func (t SimTime) ElapsedSeconds() float64 { return t.Elapsed.Seconds() }

// DeltaSeconds returns Delta in seconds.
func (t SimTime) DeltaSeconds() float32 { return float32(t.Delta.Seconds()) }

// Clock is the wall clock driving a Loop.
type Clock interface {
	// Now returns monotonic time since an arbitrary fixed origin.
	Now() time.Duration
	Sleep(d time.Duration)
}

type wallClock struct {
	c      clock.Clock
	origin time.Time
}

// NewClock adapts c, measuring Now from the moment of the call.
func NewClock(c clock.Clock) Clock {
	return &wallClock{c: c, origin: c.Now()}
}

// NewRealClock returns a Clock backed by the monotonic system clock.
func NewRealClock() Clock {
	return NewClock(clock.New())
}

func (w *wallClock) Now() time.Duration    { return w.c.Since(w.origin) }
func (w *wallClock) Sleep(d time.Duration) { w.c.Sleep(d) }
