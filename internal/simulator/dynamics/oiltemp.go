package dynamics

import (
	"math/rand/v2"
	"time"

	"github.com/fleetsim-io/fleetsim/internal/route"
)

const (
	// oilTempCoefficient is the warm-up ramp in degrees per second.
	oilTempCoefficient = 2.0417
	// oilTempWarmupSeconds is how long the ramp runs before the temperature
	// settles into a jittered operating zone.
	oilTempWarmupSeconds = 115
	// High-temperature fault zone bounds in degrees.
	oilTempHighLower = 275
	oilTempHighUpper = 320
)

// oilTempCalc ramps the oil temperature during warm-up, then jitters it
// around the reached operating zone. A tripped oil-temperature trigger moves
// the zone into the fault range.
type oilTempCalc struct {
	clock
	totalTime      float64
	operatingZone  float64
	triggerTripped bool
}

func newOilTempCalc(now func() time.Time) *oilTempCalc {
	return &oilTempCalc{clock: newClock(now)}
}

func (c *oilTempCalc) Name() string { return "oil_temp" }

func (c *oilTempCalc) Iterate(prev, next *Snapshot) {
	step := c.step()
	c.mark()
	c.totalTime += step

	tripped := false
	for _, t := range prev.Triggers {
		if t.Type == route.TriggerOilTemp {
			tripped = true
			break
		}
	}

	if c.totalTime <= oilTempWarmupSeconds && !tripped {
		next.OilTemp = prev.OilTemp + step*oilTempCoefficient
		c.operatingZone = next.OilTemp
	} else {
		upper := c.operatingZone + 5
		lower := c.operatingZone - 5
		next.OilTemp = rand.Float64()*(upper-lower) + lower
	}

	if tripped && !c.triggerTripped {
		c.operatingZone = float64(rand.IntN(oilTempHighUpper-oilTempHighLower) + oilTempHighLower)
		c.triggerTripped = true
	}
}
