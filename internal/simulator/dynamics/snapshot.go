// Package dynamics implements the per-second vehicle physics model: a chain
// of calculations that each derive one signal from the previous tick's state.
package dynamics

import (
	"time"

	"github.com/fleetsim-io/fleetsim/internal/route"
)

// IgnitionStatus is the reported ignition state.
type IgnitionStatus string

const (
	IgnitionRun IgnitionStatus = "run"
	IgnitionOff IgnitionStatus = "off"
)

// Gear is the transmission gear position. Zero is neutral.
type Gear int

const (
	GearNeutral Gear = iota
	GearFirst
	GearSecond
	GearThird
	GearFourth
	GearFifth
	GearSixth
)

// GearLever is the selector lever position.
type GearLever string

const GearLeverDrive GearLever = "drive"

// Location is the vehicle position with the instantaneous bearing of travel.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Bearing   float64 `json:"bearing"`
}

// RouteTrigger is a fault condition armed at a distance mark along the route.
// Armed triggers carry only Type and Km; once tripped they are copied onto the
// snapshot with Triggered set and, for trouble codes, the injected Value.
type RouteTrigger struct {
	Type      route.TriggerType `json:"type"`
	Km        float64           `json:"km,omitempty"`
	Triggered bool              `json:"triggered"`
	Value     string            `json:"value,omitempty"`
}

// Snapshot is the full signal state of the vehicle at one physics tick.
// Snapshots are immutable once published: each tick builds a fresh one from
// the previous and swaps it in atomically, so readers never observe a
// half-updated state.
type Snapshot struct {
	AcceleratorPedalPosition float64        `json:"accelerator_pedal_position"`
	Acceleration             float64        `json:"acceleration"`
	Brake                    float64        `json:"brake"`
	BrakePedalStatus         bool           `json:"brake_pedal_status"`
	DTCCode                  string         `json:"dtc_code,omitempty"`
	DTCChanged               bool           `json:"dtc_changed"`
	EngineRunning            bool           `json:"engine_running"`
	EngineSpeed              float64        `json:"engine_speed"`
	FuelConsumedSinceRestart float64        `json:"fuel_consumed_since_restart"`
	FuelLevel                float64        `json:"fuel_level"`
	FuelSpent                float64        `json:"fuel_spent"`
	GearLeverPosition        GearLever      `json:"gear_lever_position"`
	Heading                  float64        `json:"heading"`
	IgnitionStatus           IgnitionStatus `json:"ignition_status"`
	Location                 Location       `json:"location"`
	ManualTrans              bool           `json:"manual_trans"`
	Odometer                 float64        `json:"odometer"`
	OilTemp                  float64        `json:"oil_temp"`
	ParkingBrakeStatus       bool           `json:"parking_brake_status"`
	RouteDuration            time.Duration  `json:"route_duration"`
	RouteEnded               bool           `json:"route_ended"`
	SteeringWheelAngle       float64        `json:"steering_wheel_angle"`
	TorqueAtTransmission     float64        `json:"torque_at_transmission"`
	TransmissionGearPosition Gear           `json:"transmission_gear_position"`
	UpdateTriggers           bool           `json:"update_triggers"`
	VehicleSpeed             float64        `json:"vehicle_speed"`

	Triggers          []RouteTrigger `json:"triggers,omitempty"`
	CurrentRouteStage int            `json:"current_route_stage"`
	TripOdometer      float64        `json:"trip_odometer"`
	FuelTankCapacity  float64        `json:"fuel_tank_capacity"`

	SimulationID string    `json:"simulationId"`
	VIN          string    `json:"vin"`
	TripID       string    `json:"tripId"`
	Timestamp    time.Time `json:"timestamp"`
}
