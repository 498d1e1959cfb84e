package route

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fleetsim-io/fleetsim/internal/geo"
	"github.com/fleetsim-io/fleetsim/pkg/log"
)

// ErrNoRoutes is returned when the directions service answers without any
// route alternative for the requested pair.
var ErrNoRoutes = errors.New("directions response contains no routes")

// Directions is the subset of a driving-directions response the generator
// consumes: the full-route encoded geometry and the first leg's summary.
type Directions struct {
	Geometry string
	Summary  string
}

type directionsResponse struct {
	Routes []struct {
		Geometry string `json:"geometry"`
		Legs     []struct {
			Summary string `json:"summary"`
		} `json:"legs"`
	} `json:"routes"`
}

// DirectionsClient queries an external Mapbox-style directions API. It is
// stateless and safe to share across generations.
type DirectionsClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewDirectionsClient creates a client for the given service endpoint.
func NewDirectionsClient(baseURL, accessToken string, timeout time.Duration) *DirectionsClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &DirectionsClient{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Driving requests driving directions between two points, with step detail and
// full-resolution geometry.
func (c *DirectionsClient) Driving(ctx context.Context, start, end geo.Point) (*Directions, error) {
	coords := fmt.Sprintf("%f,%f;%f,%f", start.Lon, start.Lat, end.Lon, end.Lat)

	reqURL := fmt.Sprintf("%s/directions/v5/mapbox/driving/%s", c.baseURL, coords)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("access_token", c.accessToken)
	q.Set("steps", "true")
	q.Set("overview", "full")
	req.URL.RawQuery = q.Encode()

	log.Debug("Querying directions service", "start", start, "end", end)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directions query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("directions query: unexpected status %d: %s", resp.StatusCode, body)
	}

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("directions query: decode response: %w", err)
	}

	if len(decoded.Routes) == 0 {
		return nil, ErrNoRoutes
	}

	d := &Directions{Geometry: decoded.Routes[0].Geometry}
	if len(decoded.Routes[0].Legs) > 0 {
		d.Summary = decoded.Routes[0].Legs[0].Summary
	}
	return d, nil
}
