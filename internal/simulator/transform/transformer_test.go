package transform

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetsim-io/fleetsim/internal/geo"
	"github.com/fleetsim-io/fleetsim/internal/route"
	"github.com/fleetsim-io/fleetsim/internal/simulator/dynamics"
)

func fixedTransformer() (*Transformer, time.Time) {
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return &Transformer{now: func() time.Time { return at }}, at
}

func sampleSnapshot() *dynamics.Snapshot {
	return &dynamics.Snapshot{
		VIN:                      "5AZMJ59WXHD10002",
		TripID:                   "trip-1",
		SimulationID:             "sim-1",
		VehicleSpeed:             52.2,
		AcceleratorPedalPosition: 27.0,
		Odometer:                 131.497,
		TripOdometer:             23.31,
		FuelConsumedSinceRestart: 1.07,
		FuelSpent:                559.4,
		FuelTankCapacity:         40,
		OilTemp:                  96.5,
		DTCCode:                  "P0301",
		DTCChanged:               true,
		RouteDuration:            1397098 * time.Millisecond,
		Location: dynamics.Location{
			Latitude:  47.599,
			Longitude: -122.401,
			Bearing:   76.4,
		},
	}
}

func TestCarDataPayload(t *testing.T) {
	tr, at := fixedTransformer()

	raw, err := tr.CarData(sampleSnapshot(), "route-name")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))

	ts := at.Format(time.RFC3339Nano)
	assert.Equal(t, "5AZMJ59WXHD10002-"+ts, got["messageid"])
	assert.Equal(t, ts, got["sendtimestamp"])
	assert.Equal(t, "sim-1", got["simulationid"])
	assert.Equal(t, "trip-1", got["tripid"])
	assert.Equal(t, "route-name", got["name"])

	geoBlock := got["geolocation"].(map[string]any)
	assert.InDelta(t, 47.599, geoBlock["latitude"].(float64), 1e-9)
	assert.InDelta(t, -122.401, geoBlock["longitude"].(float64), 1e-9)
	assert.InDelta(t, 52.2, geoBlock["speed"].(float64), 1e-9)

	odo := got["odometer"].(map[string]any)
	assert.InDelta(t, 131497.0, odo["metres"].(float64), 1e-6)
	assert.InDelta(t, 23310.0, odo["tripodometer"].(float64), 1e-6)

	fuelInfo := got["fuelinfo"].(map[string]any)
	assert.InDelta(t, 40.0, fuelInfo["tankcapacity"].(float64), 1e-9)
}

func TestDTCPayload(t *testing.T) {
	tr, _ := fixedTransformer()

	raw, err := tr.ProcessDTC(sampleSnapshot())
	require.NoError(t, err)

	var got DTC
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, "5AZMJ59WXHD10002", got.VIN)
	assert.Equal(t, "P0301", got.DTC.Code)
	assert.Equal(t, "true", got.DTC.Changed)
}

func TestTripPayload(t *testing.T) {
	tr, _ := fixedTransformer()
	s := sampleSnapshot()

	r := &route.Route{
		RouteID: "r1",
		Start:   geo.NewLocation(geo.Point{Lat: 36.2523, Lon: -115.0112}),
		Stages:  []route.Stage{{Km: 1}},
		Km:      1,
	}
	agg := dynamics.Aggregated{StartTime: time.Date(2026, 8, 30, 11, 36, 0, 0, time.UTC)}

	raw, err := tr.ProcessTrip(s, agg, r)
	require.NoError(t, err)

	var got Trip
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, "trip-1", got.TripID)
	assert.Equal(t, int64(1397098), got.TripSummary.Duration)
	assert.InDelta(t, 23.31, got.TripSummary.Distance, 1e-9)
	assert.InDelta(t, 559.4, got.TripSummary.Fuel, 1e-9)
	assert.InDelta(t, 36.2523, got.TripSummary.StartLocation.Latitude, 1e-9)
	assert.InDelta(t, 47.599, got.TripSummary.EndLocation.Latitude, 1e-9)
}

func TestAnnouncePayload(t *testing.T) {
	tr, _ := fixedTransformer()

	raw, err := tr.Announce("ECU-1", sampleSnapshot(), "routes", "seattle/r1.json")
	require.NoError(t, err)

	var got RouteAnnouncement
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, "ECU-1", got.DeviceID)
	assert.Equal(t, "5AZMJ59WXHD10002", got.VIN)
	assert.Equal(t, "routes", got.RouteBucket)
	assert.Equal(t, "seattle/r1.json", got.RouteKey)
	assert.Equal(t, "trip-1", got.TripID)
}
