package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKnownPairs(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Point
		wantKm float64
	}{
		{"same point", Point{Lat: 52.2, Lon: 0.12}, Point{Lat: 52.2, Lon: 0.12}, 0},
		{"london-paris", Point{Lat: 51.5074, Lon: -0.1278}, Point{Lat: 48.8566, Lon: 2.3522}, 343.5},
		{"seattle-denver", Point{Lat: 47.6062, Lon: -122.3321}, Point{Lat: 39.7392, Lon: -104.9903}, 1643},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			assert.InDelta(t, tt.wantKm, got, tt.wantKm*0.01+0.001)
		})
	}
}

// Projecting from start by a bearing and distance, then measuring back to the
// projected point, must reproduce the distance within 0.1%.
func TestDestinationRoundTrip(t *testing.T) {
	start := Point{Lat: 47.6062, Lon: -122.3321}

	for _, bearing := range []float64{1, 45, 90, 135, 180, 270, 359} {
		for _, km := range []float64{0.5, 10, 500, 2000} {
			dest := Destination(start, km, bearing)
			got := Distance(start, dest)
			if math.Abs(got-km) > km*0.001 {
				t.Errorf("bearing %.0f km %.1f: round-trip distance %.4f", bearing, km, got)
			}
		}
	}
}

func TestBearing(t *testing.T) {
	origin := Point{Lat: 0, Lon: 0}

	assert.InDelta(t, 0, Bearing(origin, Point{Lat: 1, Lon: 0}), 0.01)
	assert.InDelta(t, 90, Bearing(origin, Point{Lat: 0, Lon: 1}), 0.01)
	assert.InDelta(t, 180, Bearing(origin, Point{Lat: -1, Lon: 0}), 0.01)
	assert.InDelta(t, 270, Bearing(origin, Point{Lat: 0, Lon: -1}), 0.01)
}

func TestMoveToward(t *testing.T) {
	from := Point{Lat: 47.60, Lon: -122.33}
	to := Point{Lat: 47.70, Lon: -122.33}

	total := Distance(from, to)

	// Overshoot clamps at the destination.
	got := MoveToward(from, to, total*2)
	assert.Equal(t, to, got)

	// A partial move covers the requested distance and stays on the path.
	step := MoveToward(from, to, total/4)
	assert.InDelta(t, total/4, Distance(from, step), total*0.001)
	assert.InDelta(t, total*3/4, Distance(step, to), total*0.001)
}

// A Point converted to wire form always yields [lon, lat].
func TestLocationOrder(t *testing.T) {
	p := Point{Lat: 47.6, Lon: -122.3}
	loc := NewLocation(p)

	assert.Equal(t, -122.3, loc.Lon())
	assert.Equal(t, -122.3, loc[0])
	assert.Equal(t, 47.6, loc.Lat())
	assert.Equal(t, 47.6, loc[1])
	assert.Equal(t, p, loc.Point())
}
