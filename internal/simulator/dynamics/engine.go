package dynamics

const (
	idleEngineSpeed = 2000
	maxEngineSpeed  = 16382
	engineToTorque  = 500.0 / 16382.0
)

// engineSpeedCalc derives RPM from vehicle speed and gear, idling in neutral.
type engineSpeedCalc struct{}

func (engineSpeedCalc) Name() string { return "engine_speed" }

func (engineSpeedCalc) Iterate(prev, next *Snapshot) {
	if prev.TransmissionGearPosition == GearNeutral {
		next.EngineSpeed = idleEngineSpeed
		return
	}
	next.EngineSpeed = maxEngineSpeed * prev.VehicleSpeed / (100.0 * float64(prev.TransmissionGearPosition))
}

// torqueCalc derives torque at the transmission from throttle power minus
// engine drag, scaled by a per-gear ratio.
type torqueCalc struct{}

func (torqueCalc) Name() string { return "torque_at_transmission" }

func (torqueCalc) Iterate(prev, next *Snapshot) {
	gearNumber := prev.TransmissionGearPosition - 1
	if gearNumber < GearFirst {
		gearNumber = GearFirst
	}
	gearRatio := 1 - float64(gearNumber)*0.1

	drag := prev.EngineSpeed * engineToTorque
	power := prev.AcceleratorPedalPosition * 15 * gearRatio

	if prev.EngineRunning {
		next.TorqueAtTransmission = power - drag
	} else {
		next.TorqueAtTransmission = -drag
	}
}
