// Package route defines the persisted route model consumed by the simulator
// and the generator that produces it from a start point and target distance.
package route

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fleetsim-io/fleetsim/internal/geo"
)

// Profile selects the driving style used along a route.
type Profile string

const (
	ProfileNormal     Profile = "normal"
	ProfileAggressive Profile = "aggressive"
)

// TriggerType identifies a fault condition that can be injected along a route.
type TriggerType string

const (
	TriggerDTC     TriggerType = "dtc"
	TriggerOilTemp TriggerType = "oiltemp"
	TriggerBrake   TriggerType = "brake"
)

// Trigger asks for a fault condition to be injected a number of times at
// random distances along the route.
type Trigger struct {
	Type TriggerType `json:"type"`
	// Occurrences keeps the historical wire spelling used by existing route
	// files and the ingest pipeline.
	Occurrences int `json:"occurances,omitempty"`
}

// Stage is one sub-segment of a route between two consecutive geometry points.
type Stage struct {
	Index int          `json:"stage"`
	Start geo.Location `json:"start"`
	End   geo.Location `json:"end"`
	Km    float64      `json:"km"`
}

// Route is a generated multi-stage path. It is created once by the generator
// and read-only afterwards.
type Route struct {
	RouteID     string       `json:"route_id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Start       geo.Location `json:"start"`
	End         geo.Location `json:"end"`
	Stages      []Stage      `json:"stages"`
	Triggers    []Trigger    `json:"triggers,omitempty"`
	Profile     Profile      `json:"profile,omitempty"`
	Km          float64      `json:"km"`
}

// Validate rejects routes that cannot be driven.
func (r *Route) Validate() error {
	if r == nil {
		return errors.New("route is nil")
	}
	if len(r.Stages) == 0 {
		return errors.New("route has no stages")
	}
	for _, s := range r.Stages {
		if s.Km < 0 {
			return fmt.Errorf("stage %d has negative distance %f", s.Index, s.Km)
		}
	}
	return nil
}

// Load reads a persisted route file.
func Load(path string) (*Route, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route file: %w", err)
	}

	return Decode(raw)
}

// Decode parses the JSON form of a route.
func Decode(raw []byte) (*Route, error) {
	var r Route
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode route: %w", err)
	}
	return &r, nil
}

// Encode renders the route as JSON.
func (r *Route) Encode() ([]byte, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode route: %w", err)
	}
	return raw, nil
}

// Save writes the route as JSON to path.
func (r *Route) Save(path string) error {
	raw, err := r.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write route file: %w", err)
	}
	return nil
}
