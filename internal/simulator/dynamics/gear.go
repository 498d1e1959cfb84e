package dynamics

// gearLeverCalc keeps the selector in drive whenever the engine runs.
type gearLeverCalc struct{}

func (gearLeverCalc) Name() string { return "gear_lever_position" }

func (gearLeverCalc) Iterate(prev, next *Snapshot) {
	if prev.EngineRunning {
		next.GearLeverPosition = GearLeverDrive
	}
}

// gearSpeedBands holds the [downshift, upshift] speed window per gear. An
// automatic transmission shifts when vehicle speed leaves the current gear's
// window.
var gearSpeedBands = [7][2]float64{
	{0, 0},
	{0, 25},
	{20, 50},
	{45, 75},
	{70, 100},
	{95, 125},
	{120, 500},
}

type gearCalc struct{}

func (gearCalc) Name() string { return "transmission_gear_position" }

func (gearCalc) Iterate(prev, next *Snapshot) {
	if !prev.EngineRunning || prev.ManualTrans {
		return
	}

	gear := prev.TransmissionGearPosition
	switch {
	case prev.VehicleSpeed < gearSpeedBands[gear][0]:
		gear--
	case prev.VehicleSpeed > gearSpeedBands[gear][1]:
		gear++
	}

	if gear < GearNeutral {
		gear = GearNeutral
	}
	if gear > GearSixth {
		gear = GearSixth
	}

	next.TransmissionGearPosition = gear
}
