package dynamics

import "time"

// Thresholds for the trip rollup counters. Speeds in km/h, acceleration in
// km/h/s.
const (
	highSpeedThreshold  = 112.6
	idleSpeedThreshold  = 1.0
	highAccelThreshold  = 12.0
	highBrakingAccel    = -16.0
	accelEventWindowMin = time.Second
)

// Aggregated is the trip-level rollup of the signal stream: running means,
// duration counters, event counters and last-seen values.
type Aggregated struct {
	VehicleSpeedMean             float64 `json:"vehicle_speed_mean"`
	EngineSpeedMean              float64 `json:"engine_speed_mean"`
	TorqueAtTransmissionMean     float64 `json:"torque_at_transmission_mean"`
	OilTempMean                  float64 `json:"oil_temp_mean"`
	AcceleratorPedalPositionMean float64 `json:"accelerator_pedal_position_mean"`
	BrakeMean                    float64 `json:"brake_mean"`

	HighSpeedDuration     time.Duration `json:"high_speed_duration"`
	IdleDuration          time.Duration `json:"idle_duration"`
	HighAccelerationEvent int           `json:"high_acceleration_event"`
	HighBrakingEvent      int           `json:"high_braking_event"`

	IgnitionStatus           IgnitionStatus `json:"ignition_status"`
	BrakePedalStatus         bool           `json:"brake_pedal_status"`
	TransmissionGearPosition Gear           `json:"transmission_gear_position"`
	Odometer                 float64        `json:"odometer"`
	FuelLevel                float64        `json:"fuel_level"`
	FuelConsumedSinceRestart float64        `json:"fuel_consumed_since_restart"`
	Latitude                 float64        `json:"latitude"`
	Longitude                float64        `json:"longitude"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// meanAcc is a running arithmetic mean.
type meanAcc struct {
	mean float64
	cnt  int
}

func (m *meanAcc) add(v float64) {
	m.mean = (m.mean*float64(m.cnt) + v) / float64(m.cnt+1)
	m.cnt++
}

// aggregatorCalc folds each published snapshot into the trip rollup. It runs
// outside the calc chain, after every tick.
type aggregatorCalc struct {
	clock
	lastAccelCalc   time.Time
	accelStartSpeed float64

	speed, engine, torque, oil, accel, brake meanAcc

	data Aggregated
}

func newAggregatorCalc(now func() time.Time) *aggregatorCalc {
	c := &aggregatorCalc{clock: newClock(now)}
	c.lastAccelCalc = c.now()
	c.data.StartTime = c.now()
	return c
}

func (c *aggregatorCalc) Iterate(s *Snapshot) {
	currentTime := c.now()
	timeDelta := currentTime.Sub(c.lastCalc)
	accelDelta := currentTime.Sub(c.lastAccelCalc)

	c.speed.add(s.VehicleSpeed)
	c.engine.add(s.EngineSpeed)
	c.torque.add(s.TorqueAtTransmission)
	c.oil.add(s.OilTemp)
	c.accel.add(s.AcceleratorPedalPosition)
	c.brake.add(s.Brake)

	c.data.VehicleSpeedMean = c.speed.mean
	c.data.EngineSpeedMean = c.engine.mean
	c.data.TorqueAtTransmissionMean = c.torque.mean
	c.data.OilTempMean = c.oil.mean
	c.data.AcceleratorPedalPositionMean = c.accel.mean
	c.data.BrakeMean = c.brake.mean

	c.data.IgnitionStatus = s.IgnitionStatus
	c.data.BrakePedalStatus = s.BrakePedalStatus
	c.data.TransmissionGearPosition = s.TransmissionGearPosition
	c.data.Odometer = s.Odometer
	c.data.FuelLevel = s.FuelLevel
	c.data.FuelConsumedSinceRestart = s.FuelConsumedSinceRestart
	c.data.Latitude = s.Location.Latitude
	c.data.Longitude = s.Location.Longitude

	if s.VehicleSpeed > highSpeedThreshold {
		c.data.HighSpeedDuration += timeDelta
	}
	if s.IgnitionStatus == IgnitionRun && s.VehicleSpeed <= idleSpeedThreshold {
		c.data.IdleDuration += timeDelta
	}

	if accelDelta >= accelEventWindowMin {
		accel := (s.VehicleSpeed - c.accelStartSpeed) / accelDelta.Seconds()
		if accel >= highAccelThreshold {
			c.data.HighAccelerationEvent++
		}
		if s.Brake > 0 && accel < highBrakingAccel {
			c.data.HighBrakingEvent++
		}

		c.accelStartSpeed = s.VehicleSpeed
		c.lastAccelCalc = currentTime
	}

	if s.IgnitionStatus == IgnitionOff {
		c.data.EndTime = currentTime
	}

	c.mark()
}
