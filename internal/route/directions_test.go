package route

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetsim-io/fleetsim/internal/geo"
)

func TestDirectionsClientDriving(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/directions/v5/mapbox/driving/")
		assert.Equal(t, "test-token", r.URL.Query().Get("access_token"))
		assert.Equal(t, "true", r.URL.Query().Get("steps"))
		assert.Equal(t, "full", r.URL.Query().Get("overview"))
		// Coordinates travel lon-first.
		assert.Contains(t, r.URL.Path, "-122.330000,47.600000")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"routes":[{"geometry":"_p~iF~ps|U_ulLnnqC","legs":[{"summary":"Aurora Ave N"}]}]}`))
	}))
	defer srv.Close()

	c := NewDirectionsClient(srv.URL, "test-token", 0)
	d, err := c.Driving(context.Background(),
		geo.Point{Lat: 47.6, Lon: -122.33},
		geo.Point{Lat: 47.62, Lon: -122.31})
	require.NoError(t, err)

	assert.Equal(t, "_p~iF~ps|U_ulLnnqC", d.Geometry)
	assert.Equal(t, "Aurora Ave N", d.Summary)
}

func TestDirectionsClientNoRoutes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"routes":[]}`))
	}))
	defer srv.Close()

	c := NewDirectionsClient(srv.URL, "t", 0)
	_, err := c.Driving(context.Background(), geo.Point{}, geo.Point{})
	assert.ErrorIs(t, err, ErrNoRoutes)
}

func TestDirectionsClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewDirectionsClient(srv.URL, "t", 0)
	_, err := c.Driving(context.Background(), geo.Point{}, geo.Point{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
