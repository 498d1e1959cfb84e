package route

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetsim-io/fleetsim/internal/geo"
)

// encodePolyline is the inverse of geo.DecodePolyline, used to fabricate
// directions responses.
func encodePolyline(points []geo.Point) string {
	var sb strings.Builder
	prevLat, prevLon := 0, 0
	for _, p := range points {
		lat := int(math.Round(p.Lat * 1e5))
		lon := int(math.Round(p.Lon * 1e5))
		encodeValue(&sb, lat-prevLat)
		encodeValue(&sb, lon-prevLon)
		prevLat, prevLon = lat, lon
	}
	return sb.String()
}

func encodeValue(sb *strings.Builder, v int) {
	u := v << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		sb.WriteByte(byte((0x20 | (u & 0x1f)) + 63))
		u >>= 5
	}
	sb.WriteByte(byte(u + 63))
}

// stubDirections replays canned responses in order, repeating the last one.
type stubDirections struct {
	responses []*Directions
	err       error
	calls     int

	lastStart geo.Point
	lastEnd   geo.Point
}

func (s *stubDirections) Driving(_ context.Context, start, end geo.Point) (*Directions, error) {
	s.calls++
	s.lastStart, s.lastEnd = start, end
	if s.err != nil {
		return nil, s.err
	}
	i := s.calls - 1
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], nil
}

func testPoints(n int) []geo.Point {
	points := make([]geo.Point, n)
	for i := range points {
		points[i] = geo.Point{Lat: 47.6 + float64(i)*0.01, Lon: -122.33 + float64(i)*0.005}
	}
	return points
}

func TestGenerateStagePairing(t *testing.T) {
	points := testPoints(6)
	stub := &stubDirections{responses: []*Directions{{
		Geometry: encodePolyline(points),
		Summary:  "I-5 North",
	}}}

	r, err := NewGenerator(stub).Generate(context.Background(), GeneratorParams{
		Start:          points[0],
		DistanceMeters: 10,
	})
	require.NoError(t, err)

	// Six points pair into four overlapping stages covering [0..4].
	require.Len(t, r.Stages, 4)

	var sum float64
	for i, s := range r.Stages {
		assert.Equal(t, i, s.Index)
		assert.GreaterOrEqual(t, s.Km, 0.0)
		if i > 0 {
			assert.Equal(t, r.Stages[i-1].End, s.Start)
		}
		sum += s.Km
	}
	assert.InDelta(t, sum, r.Km, 1e-9)

	assert.Equal(t, "I-5 North", r.Description)
	assert.Equal(t, r.RouteID, r.Name)
	assert.NotEmpty(t, r.RouteID)
	assert.Equal(t, ProfileNormal, r.Profile)
}

// Stage endpoints carry wire order: [lon, lat].
func TestGenerateLocationOrder(t *testing.T) {
	points := testPoints(4)
	stub := &stubDirections{responses: []*Directions{{Geometry: encodePolyline(points)}}}

	r, err := NewGenerator(stub).Generate(context.Background(), GeneratorParams{Start: points[0], DistanceMeters: 5})
	require.NoError(t, err)

	require.NotEmpty(t, r.Stages)
	for i, s := range r.Stages {
		assert.InDelta(t, points[i].Lon, s.Start[0], 1e-5, "stage %d start lon", i)
		assert.InDelta(t, points[i].Lat, s.Start[1], 1e-5, "stage %d start lat", i)
		assert.InDelta(t, points[i+1].Lon, s.End[0], 1e-5, "stage %d end lon", i)
		assert.InDelta(t, points[i+1].Lat, s.End[1], 1e-5, "stage %d end lat", i)
	}
	assert.InDelta(t, points[0].Lon, r.Start[0], 1e-5)
	assert.InDelta(t, points[3].Lat, r.End[1], 1e-5)
}

func TestGenerateDropsTrailingOddPoint(t *testing.T) {
	points := testPoints(7)
	stub := &stubDirections{responses: []*Directions{{Geometry: encodePolyline(points)}}}

	r, err := NewGenerator(stub).Generate(context.Background(), GeneratorParams{Start: points[0], DistanceMeters: 5})
	require.NoError(t, err)

	// Seventh point dropped; six remain, four stages.
	assert.Len(t, r.Stages, 4)
	assert.InDelta(t, points[5].Lat, r.End[1], 1e-5)
}

func TestGenerateRetriesEmptyRoute(t *testing.T) {
	points := testPoints(4)
	stub := &stubDirections{responses: []*Directions{
		{Geometry: ""}, // unroutable pair: no geometry, zero stages
		{Geometry: encodePolyline(points)},
	}}

	r, err := NewGenerator(stub).Generate(context.Background(), GeneratorParams{Start: points[0], DistanceMeters: 5})
	require.NoError(t, err)

	assert.Equal(t, 2, stub.calls)
	assert.NotEmpty(t, r.Stages)
}

func TestGenerateExhaustsRetries(t *testing.T) {
	stub := &stubDirections{responses: []*Directions{{Geometry: ""}}}

	_, err := NewGenerator(stub).Generate(context.Background(), GeneratorParams{DistanceMeters: 5})
	require.ErrorIs(t, err, ErrEmptyRoute)
	assert.Equal(t, defaultMaxAttempts, stub.calls)
}

// Network failures from the directions service propagate without retries.
func TestGenerateDirectionsErrorNotRetried(t *testing.T) {
	boom := errors.New("gateway timeout")
	stub := &stubDirections{err: boom}

	_, err := NewGenerator(stub).Generate(context.Background(), GeneratorParams{DistanceMeters: 5})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, stub.calls)
}

func TestGenerateProjectsDistanceInMeters(t *testing.T) {
	points := testPoints(4)
	stub := &stubDirections{responses: []*Directions{{Geometry: encodePolyline(points)}}}

	start := geo.Point{Lat: 47.6062, Lon: -122.3321}
	_, err := NewGenerator(stub).Generate(context.Background(), GeneratorParams{
		Start:          start,
		DistanceMeters: 1500,
	})
	require.NoError(t, err)

	// The directions query must be bounded 1.5 km out, not 1500 km.
	assert.Equal(t, start, stub.lastStart)
	assert.InDelta(t, 1.5, geo.Distance(start, stub.lastEnd), 0.01)
}

func TestGenerateRandomDistanceStaysLocal(t *testing.T) {
	points := testPoints(4)
	stub := &stubDirections{responses: []*Directions{{Geometry: encodePolyline(points)}}}

	start := geo.Point{Lat: 47.6062, Lon: -122.3321}
	_, err := NewGenerator(stub).Generate(context.Background(), GeneratorParams{Start: start})
	require.NoError(t, err)

	d := geo.Distance(start, stub.lastEnd)
	assert.GreaterOrEqual(t, d, 0.49)
	assert.LessOrEqual(t, d, 2.01)
}

func TestGenerateKeepsTriggersAndProfile(t *testing.T) {
	points := testPoints(4)
	stub := &stubDirections{responses: []*Directions{{Geometry: encodePolyline(points)}}}

	triggers := []Trigger{{Type: TriggerDTC, Occurrences: 2}}
	r, err := NewGenerator(stub).Generate(context.Background(), GeneratorParams{
		Start:          points[0],
		DistanceMeters: 5,
		Triggers:       triggers,
		Profile:        ProfileAggressive,
	})
	require.NoError(t, err)

	assert.Equal(t, triggers, r.Triggers)
	assert.Equal(t, ProfileAggressive, r.Profile)
}
