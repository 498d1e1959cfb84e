package dynamics

import "time"

const (
	maxFuelRate  = 0.0015   // liters per second at full throttle
	idleFuelRate = 0.000015 // liters per tick at idle
)

// fuelConsumedCalc accumulates liters burned since engine start.
type fuelConsumedCalc struct {
	clock
}

func newFuelConsumedCalc(now func() time.Time) *fuelConsumedCalc {
	return &fuelConsumedCalc{clock: newClock(now)}
}

func (c *fuelConsumedCalc) Name() string { return "fuel_consumed_since_restart" }

func (c *fuelConsumedCalc) Iterate(prev, next *Snapshot) {
	step := c.step()
	c.mark()

	if !prev.EngineRunning {
		return
	}
	next.FuelConsumedSinceRestart = prev.FuelConsumedSinceRestart +
		idleFuelRate + maxFuelRate*(prev.AcceleratorPedalPosition/100)*step
}

// fuelLevelCalc converts consumed liters into a tank percentage.
type fuelLevelCalc struct{}

func (fuelLevelCalc) Name() string { return "fuel_level" }

func (fuelLevelCalc) Iterate(prev, next *Snapshot) {
	if prev.FuelTankCapacity <= 0 {
		next.FuelLevel = 0
		return
	}

	level := 100 - prev.FuelConsumedSinceRestart/prev.FuelTankCapacity*100
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	next.FuelLevel = level
}

// fuelSpentCalc reports the tank volume already burned, in milliliters.
type fuelSpentCalc struct{}

func (fuelSpentCalc) Name() string { return "fuel_spent" }

func (fuelSpentCalc) Iterate(prev, next *Snapshot) {
	if prev.FuelLevel == 0 {
		next.FuelSpent = 0
		return
	}
	next.FuelSpent = (prev.FuelTankCapacity - prev.FuelLevel/100*prev.FuelTankCapacity) * 1000
}
