package dynamics

import "time"

const secondsPerHour = 60 * 60

// odometerCalc integrates distance from speed.
type odometerCalc struct {
	clock
}

func newOdometerCalc(now func() time.Time) *odometerCalc {
	return &odometerCalc{clock: newClock(now)}
}

func (c *odometerCalc) Name() string { return "odometer" }

func (c *odometerCalc) Iterate(prev, next *Snapshot) {
	step := c.step()
	c.mark()

	next.Odometer = prev.Odometer + prev.VehicleSpeed*step/secondsPerHour
}
