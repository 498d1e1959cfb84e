// Package transform renders physics snapshots into the connected-vehicle
// ingest payloads published over MQTT.
package transform

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/fleetsim-io/fleetsim/internal/route"
	"github.com/fleetsim-io/fleetsim/internal/simulator/dynamics"
)

// Geolocation is the position block of a telemetry message.
type Geolocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Heading   float64 `json:"heading"`
	Speed     float64 `json:"speed"`
}

// MaxReading is a per-axis peak measurement.
type MaxReading struct {
	Axis  int     `json:"axis"`
	Value float64 `json:"value"`
}

type Acceleration struct {
	MaxLongitudinal MaxReading `json:"maxlongitudinal"`
	MaxLateral      MaxReading `json:"maxlateral"`
}

type Throttle struct {
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

type Speed struct {
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

type Odometer struct {
	Metres       float64 `json:"metres"`
	TripOdometer float64 `json:"tripodometer"`
	TicksFL      float64 `json:"ticksfl"`
	TicksFR      float64 `json:"ticksfr"`
	TicksRL      float64 `json:"ticksrl"`
	TicksRR      float64 `json:"ticksrr"`
}

type FuelInfo struct {
	CurrentTripConsumption float64 `json:"currenttripconsumption"`
	TankCapacity           float64 `json:"tankcapacity"`
}

// Telemetry is the periodic car-data message.
type Telemetry struct {
	MessageID         string       `json:"messageid"`
	SimulationID      string       `json:"simulationid"`
	CreationTimestamp string       `json:"creationtimestamp"`
	SendTimestamp     string       `json:"sendtimestamp"`
	VIN               string       `json:"vin"`
	TripID            string       `json:"tripid"`
	DriverID          string       `json:"driverid"`
	Geolocation       Geolocation  `json:"geolocation"`
	Acceleration      Acceleration `json:"acceleration"`
	Throttle          Throttle     `json:"throttle"`
	Speed             Speed        `json:"speed"`
	Odometer          Odometer     `json:"odometer"`
	Fuel              float64      `json:"fuel"`
	Name              string       `json:"name"`
	OilTemp           float64      `json:"oiltemp"`
	FuelInfo          FuelInfo     `json:"fuelinfo"`
}

// DTCDetail carries one trouble code. Changed travels as a string for
// backwards compatibility with the ingest rules.
type DTCDetail struct {
	Code    string `json:"code"`
	Changed string `json:"changed"`
}

// DTC is the trouble-code message.
type DTC struct {
	MessageID         string    `json:"messageid"`
	CreationTimestamp string    `json:"creationtimestamp"`
	SendTimestamp     string    `json:"sendtimestamp"`
	VIN               string    `json:"vin"`
	DTC               DTCDetail `json:"dtc"`
}

type TripLocation struct {
	Altitude  float64 `json:"altitude"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// TripSummary is the end-of-journey rollup block.
type TripSummary struct {
	StartTime     string       `json:"starttime"`
	Duration      int64        `json:"duration"`
	Distance      float64      `json:"distance"`
	Fuel          float64      `json:"fuel"`
	StartLocation TripLocation `json:"startlocation"`
	EndLocation   TripLocation `json:"endlocation"`
}

// Trip is the once-per-journey summary message.
type Trip struct {
	MessageID         string      `json:"messageid"`
	CreationTimestamp string      `json:"creationtimestamp"`
	SendTimestamp     string      `json:"sendtimestamp"`
	VIN               string      `json:"vin"`
	TripID            string      `json:"tripid"`
	TripSummary       TripSummary `json:"tripsummary"`
}

// RouteAnnouncement tells the ingest side where the driven route file lives.
type RouteAnnouncement struct {
	DeviceID    string `json:"deviceId"`
	VIN         string `json:"vin"`
	RouteBucket string `json:"routeS3Bucket,omitempty"`
	RouteKey    string `json:"routeS3Key,omitempty"`
	TripID      string `json:"tripId"`
}

// Transformer builds the ingest payloads from snapshots. The now function is
// injectable for deterministic tests.
type Transformer struct {
	now func() time.Time
}

func New() *Transformer {
	return &Transformer{now: time.Now}
}

// CarData renders the telemetry message for one snapshot.
func (t *Transformer) CarData(s *dynamics.Snapshot, routeName string) ([]byte, error) {
	ts := t.now().UTC().Format(time.RFC3339Nano)

	msg := Telemetry{
		MessageID:         messageID(s.VIN, ts),
		SimulationID:      s.SimulationID,
		CreationTimestamp: ts,
		SendTimestamp:     ts,
		VIN:               s.VIN,
		TripID:            s.TripID,
		Geolocation: Geolocation{
			Latitude:  s.Location.Latitude,
			Longitude: s.Location.Longitude,
			Heading:   s.Location.Bearing,
			Speed:     s.VehicleSpeed,
		},
		Acceleration: Acceleration{
			MaxLongitudinal: MaxReading{Value: s.Acceleration},
			MaxLateral:      MaxReading{Value: s.Acceleration},
		},
		Throttle: Throttle{Max: s.AcceleratorPedalPosition},
		Speed:    Speed{Max: s.VehicleSpeed},
		Odometer: Odometer{
			Metres:       s.Odometer * 1000,
			TripOdometer: s.TripOdometer * 1000,
		},
		Fuel:    s.FuelConsumedSinceRestart,
		Name:    routeName,
		OilTemp: s.OilTemp,
		FuelInfo: FuelInfo{
			CurrentTripConsumption: s.FuelConsumedSinceRestart,
			TankCapacity:           s.FuelTankCapacity,
		},
	}

	return json.Marshal(msg)
}

// ProcessDTC renders the trouble-code message for one snapshot.
func (t *Transformer) ProcessDTC(s *dynamics.Snapshot) ([]byte, error) {
	ts := t.now().UTC().Format(time.RFC3339Nano)

	msg := DTC{
		MessageID:         messageID(s.VIN, ts),
		CreationTimestamp: ts,
		SendTimestamp:     ts,
		VIN:               s.VIN,
		DTC: DTCDetail{
			Code:    s.DTCCode,
			Changed: strconv.FormatBool(s.DTCChanged),
		},
	}

	return json.Marshal(msg)
}

// ProcessTrip renders the end-of-journey summary. The route supplies the
// start location; the snapshot supplies the final one.
func (t *Transformer) ProcessTrip(s *dynamics.Snapshot, agg dynamics.Aggregated, r *route.Route) ([]byte, error) {
	ts := t.now().UTC().Format(time.RFC3339Nano)

	start := TripLocation{Latitude: s.Location.Latitude, Longitude: s.Location.Longitude}
	if r != nil {
		start = TripLocation{Latitude: r.Start.Lat(), Longitude: r.Start.Lon()}
	}

	msg := Trip{
		MessageID:         messageID(s.VIN, ts),
		CreationTimestamp: ts,
		SendTimestamp:     ts,
		VIN:               s.VIN,
		TripID:            s.TripID,
		TripSummary: TripSummary{
			StartTime:     agg.StartTime.UTC().Format(time.RFC3339Nano),
			Duration:      s.RouteDuration.Milliseconds(),
			Distance:      s.TripOdometer,
			Fuel:          s.FuelSpent,
			StartLocation: start,
			EndLocation: TripLocation{
				Latitude:  s.Location.Latitude,
				Longitude: s.Location.Longitude,
			},
		},
	}

	return json.Marshal(msg)
}

// Announce renders the route announcement published once at journey start.
func (t *Transformer) Announce(deviceID string, s *dynamics.Snapshot, bucket, key string) ([]byte, error) {
	return json.Marshal(RouteAnnouncement{
		DeviceID:    deviceID,
		VIN:         s.VIN,
		RouteBucket: bucket,
		RouteKey:    key,
		TripID:      s.TripID,
	})
}

func messageID(vin, ts string) string {
	return fmt.Sprintf("%s-%s", vin, ts)
}
