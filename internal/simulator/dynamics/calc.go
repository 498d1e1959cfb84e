package dynamics

import "time"

// Calc is one step of the physics chain. Iterate reads the previous tick's
// snapshot and writes its derived signal(s) into the next one; untouched
// fields carry over because next starts as a copy of prev.
type Calc interface {
	Name() string
	Iterate(prev, next *Snapshot)
}

// clock tracks the wall-clock step between a calc's iterations. The now
// function is injectable so tests can advance time deterministically.
type clock struct {
	now      func() time.Time
	lastCalc time.Time
}

func newClock(now func() time.Time) clock {
	if now == nil {
		now = time.Now
	}
	return clock{now: now, lastCalc: now()}
}

// delta is the elapsed time since the last mark.
func (c *clock) delta() time.Duration {
	return c.now().Sub(c.lastCalc)
}

// step is delta in seconds, the dt of the integration formulas.
func (c *clock) step() float64 {
	return c.delta().Seconds()
}

func (c *clock) mark() {
	c.lastCalc = c.now()
}
