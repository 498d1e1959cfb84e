package dynamics

import "time"

const accelPeriod = time.Second

// accelerationCalc reports the speed delta over a fixed one-second window,
// in km/h/s.
type accelerationCalc struct {
	clock
	startSpeed float64
}

func newAccelerationCalc(now func() time.Time) *accelerationCalc {
	return &accelerationCalc{clock: newClock(now)}
}

func (c *accelerationCalc) Name() string { return "acceleration" }

func (c *accelerationCalc) Iterate(prev, next *Snapshot) {
	if c.delta() < accelPeriod {
		return
	}

	next.Acceleration = prev.VehicleSpeed - c.startSpeed
	c.startSpeed = prev.VehicleSpeed
	c.mark()
}
