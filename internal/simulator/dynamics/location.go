package dynamics

import (
	"github.com/fleetsim-io/fleetsim/internal/geo"
	"github.com/fleetsim-io/fleetsim/internal/route"
)

// stageStepKm is how far the position advances toward the stage end each
// tick.
const stageStepKm = 0.001

// locationCalc advances the position along the active route stage, snapping
// to the stage start whenever the route calc moves to a new stage.
type locationCalc struct {
	route      *route.Route
	stageIndex int
}

func newLocationCalc(r *route.Route) *locationCalc {
	return &locationCalc{route: r}
}

func (c *locationCalc) Name() string { return "location" }

func (c *locationCalc) Iterate(prev, next *Snapshot) {
	if c.route == nil {
		return
	}
	if prev.CurrentRouteStage > len(c.route.Stages)-1 {
		return
	}

	if c.stageIndex != prev.CurrentRouteStage {
		c.stageIndex = prev.CurrentRouteStage
		start := c.route.Stages[c.stageIndex].Start
		next.Location = Location{Latitude: start.Lat(), Longitude: start.Lon()}
		return
	}

	from := geo.Point{Lat: prev.Location.Latitude, Lon: prev.Location.Longitude}
	to := c.route.Stages[c.stageIndex].End.Point()

	bearing := geo.Bearing(from, to)
	moved := geo.MoveToward(from, to, stageStepKm)

	next.Location = Location{
		Latitude:  moved.Lat,
		Longitude: moved.Lon,
		Bearing:   bearing,
	}
}
