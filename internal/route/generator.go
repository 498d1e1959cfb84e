package route

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/rs/xid"

	"github.com/fleetsim-io/fleetsim/internal/geo"
	"github.com/fleetsim-io/fleetsim/pkg/log"
)

const (
	// Random target distance bounds in meters, used when the caller does not
	// supply one. Routes end up 0.5-2 km from their start point.
	minRandomDistance = 500
	maxRandomDistance = 2000

	// defaultMaxAttempts bounds the regeneration loop for unroutable bounds.
	defaultMaxAttempts = 10
)

// ErrEmptyRoute is returned when every generation attempt produced a route
// with zero stages.
var ErrEmptyRoute = errors.New("route generation exhausted retries without a routable result")

// DirectionsQuerier is the routing-service dependency of the generator.
type DirectionsQuerier interface {
	Driving(ctx context.Context, start, end geo.Point) (*Directions, error)
}

// GeneratorParams describes one route generation request.
type GeneratorParams struct {
	Start geo.Point

	// DistanceMeters is the target distance in meters. Zero or negative means
	// "pick one at random".
	DistanceMeters float64

	Triggers []Trigger
	Profile  Profile
}

// bounds is the transient start/end pair handed to the directions query.
type bounds struct {
	start geo.Point
	end   geo.Point
}

// Generator turns a start point and target distance into a routable,
// multi-stage Route.
type Generator struct {
	directions  DirectionsQuerier
	maxAttempts int
}

// NewGenerator creates a Generator backed by the given directions service.
func NewGenerator(directions DirectionsQuerier) *Generator {
	return &Generator{
		directions:  directions,
		maxAttempts: defaultMaxAttempts,
	}
}

// Generate builds a route starting at params.Start. If a generated route
// degenerates to zero stages (the chosen bearing led to an unroutable pair in
// the road network) the whole generation is retried with a fresh random
// distance, up to the attempt cap. Directions-service errors are not retried;
// they propagate to the caller unchanged.
func (g *Generator) Generate(ctx context.Context, params GeneratorParams) (*Route, error) {
	distance := params.DistanceMeters
	if distance <= 0 {
		distance = randomDistance()
	}

	profile := params.Profile
	if profile == "" {
		profile = ProfileNormal
	}

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		r, err := g.build(ctx, params.Start, distance, params.Triggers, profile)
		if err != nil {
			return nil, err
		}
		if len(r.Stages) > 0 {
			return r, nil
		}

		log.Warn("Generated route has no stages, retrying with a new distance",
			"attempt", attempt, "distance", distance)
		distance = randomDistance()
	}

	return nil, ErrEmptyRoute
}

func (g *Generator) build(ctx context.Context, start geo.Point, distance float64, triggers []Trigger, profile Profile) (*Route, error) {
	b := randomBounds(start, distance)

	dirs, err := g.directions.Driving(ctx, b.start, b.end)
	if err != nil {
		return nil, err
	}

	return parseRoute(dirs, triggers, profile), nil
}

// parseRoute decodes the directions geometry into wire-order locations and
// repacks consecutive point pairs into stages.
func parseRoute(dirs *Directions, triggers []Trigger, profile Profile) *Route {
	points := geo.DecodePolyline(dirs.Geometry)

	collection := make([]geo.Location, len(points))
	for i, p := range points {
		collection[i] = geo.NewLocation(p)
	}

	// Stage pairing needs an even point count; drop a trailing odd point.
	if len(collection)%2 != 0 {
		collection = collection[:len(collection)-1]
	}

	id := xid.New().String()
	r := &Route{
		RouteID:     id,
		Name:        id,
		Description: dirs.Summary,
		Triggers:    triggers,
		Profile:     profile,
	}

	if len(collection) == 0 {
		return r
	}

	r.Start = collection[0]
	r.End = collection[len(collection)-1]

	for i := 0; i+1 < len(collection)-1; i++ {
		km := geo.Distance(collection[i].Point(), collection[i+1].Point())
		r.Stages = append(r.Stages, Stage{
			Index: i,
			Start: collection[i],
			End:   collection[i+1],
			Km:    km,
		})
		r.Km += km
	}

	return r
}

func randomDistance() float64 {
	return rand.Float64()*(maxRandomDistance-minRandomDistance) + minRandomDistance
}

func randomBounds(start geo.Point, distanceMeters float64) bounds {
	bearing := float64(rand.IntN(360) + 1)
	return bounds{
		start: start,
		end:   geo.Destination(start, distanceMeters/1000, bearing),
	}
}
