package dynamics

import "time"

const (
	airDragCoefficient    = 0.000008
	engineDragCoefficient = 0.0004
	brakeConstant         = 0.1
	engineV0Force         = 30 // cars * km/h / s
)

// speedCalc integrates vehicle speed from engine force minus drag and braking.
type speedCalc struct {
	clock
}

func newSpeedCalc(now func() time.Time) *speedCalc {
	return &speedCalc{clock: newClock(now)}
}

func (c *speedCalc) Name() string { return "vehicle_speed" }

func (c *speedCalc) Iterate(prev, next *Snapshot) {
	speed := prev.VehicleSpeed

	airDrag := speed * speed * speed * airDragCoefficient
	engineDrag := prev.EngineSpeed * engineDragCoefficient

	var engineForce float64
	if prev.EngineRunning && prev.TransmissionGearPosition > GearNeutral {
		// accelerator position is 0.0 to 100.0
		engineForce = engineV0Force * prev.AcceleratorPedalPosition / (50 * float64(prev.TransmissionGearPosition))
	}

	acceleration := engineForce - airDrag - engineDrag - 0.1 - prev.Brake*brakeConstant
	if prev.ParkingBrakeStatus {
		acceleration -= brakeConstant * 100
	}

	step := c.step()
	c.mark()

	impulse := acceleration * step
	if impulse+speed < 0 {
		impulse = -speed
	}

	next.VehicleSpeed = speed + impulse
}
