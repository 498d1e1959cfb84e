package dynamics

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/fleetsim-io/fleetsim/internal/route"
)

const (
	// jitterPeriod is how often the throttle position wanders around its
	// current set point.
	jitterPeriod   = 7 * time.Second
	throttleJitter = 4

	// Bounds for the random interval between throttle set-point changes.
	throttleAdjMin = 30 * time.Second
	throttleAdjMax = 60 * time.Second

	// burndownPeriod is the full-brake coast after the last stage before the
	// route is declared ended.
	burndownPeriod = 20 * time.Second

	// triggerKmFloor keeps random trigger marks off the very start of the
	// route.
	triggerKmFloor = 0.2
)

// Throttle set-point deltas drawn at each adjustment, weighted by driving
// profile.
var (
	normalThrottleDeltas = []float64{
		2, 2, 2, 2, 2, 2, 2, 2, 2, 25, 5, 5, 5, 5, 5, 5, 5, 5, 5, 7, 7, 7, 7,
		7, 7, 7, 7, 7, 7, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 15, 15, 15, 15, 20, 20,
	}
	aggressiveThrottleDeltas = []float64{
		10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 12, 12, 12, 12, 12, 12, 12,
		12, 12, 12, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 20, 20, 20, 20,
		20, 20, 20, 20, 25, 25, 25, 25,
	}
)

// routeStageCalc drives the vehicle along the route: it advances stages on
// odometer marks, schedules throttle set-point changes and jitter, trips the
// armed triggers, and runs the end-of-route burndown.
type routeStageCalc struct {
	now func() time.Time

	route             *route.Route
	currentStage      int
	stageOdometerBase float64
	initialOdometer   float64
	routeStart        time.Time

	lastJitterCalc   time.Time
	lastThrottleCalc time.Time
	lastBurndownCalc time.Time
	throttleAdjAfter time.Duration

	randomTriggers []RouteTrigger
	triggers       []RouteTrigger
	updateTriggers bool

	curThrottlePosition float64
	throttlePosition    float64
	brakePosition       float64

	routeEnded    bool
	burndown      bool
	dtcCode       string
	routeDuration time.Duration
	tripOdometer  float64
}

func newRouteStageCalc(r *route.Route, odometer float64, now func() time.Time) *routeStageCalc {
	if now == nil {
		now = time.Now
	}

	c := &routeStageCalc{
		now:              now,
		route:            r,
		lastJitterCalc:   now(),
		lastThrottleCalc: now(),
		lastBurndownCalc: now(),
		routeStart:       now(),

		stageOdometerBase: odometer,
		initialOdometer:   odometer,

		throttleAdjAfter: randomThrottleAdjPeriod(),
		randomTriggers:   armTriggers(r),
	}

	c.curThrottlePosition = randomStartSpeed(r.Profile)
	c.throttlePosition = c.curThrottlePosition
	return c
}

func (c *routeStageCalc) Name() string { return "route_stage" }

func (c *routeStageCalc) Iterate(prev, next *Snapshot) {
	odometer := prev.Odometer
	currentTime := c.now()
	c.updateTriggers = false
	c.tripOdometer = odometer - c.initialOdometer

	if c.routeEnded {
		c.apply(next)
		return
	}

	if !c.burndown {
		moveStage := c.stageOdometerBase+c.route.Stages[c.currentStage].Km <= odometer

		if c.throttleAdjAfter <= currentTime.Sub(c.lastThrottleCalc) {
			c.curThrottlePosition += randomThrottleDelta(c.route.Profile)
			if c.curThrottlePosition >= 100 {
				c.curThrottlePosition = 99
			}
			if c.curThrottlePosition < 0 {
				c.curThrottlePosition = 5
			}

			c.brakePosition = 0
			c.throttlePosition = c.curThrottlePosition
			c.throttleAdjAfter = randomThrottleAdjPeriod()
			c.lastThrottleCalc = currentTime
		}

		for i := range c.randomTriggers {
			trigger := &c.randomTriggers[i]
			if odometer < trigger.Km || trigger.Triggered {
				continue
			}

			switch trigger.Type {
			case route.TriggerBrake:
				c.throttlePosition = 0
				c.brakePosition = 100
				trigger.Triggered = true
			case route.TriggerDTC:
				c.dtcCode = randomDTC()
				c.triggers = append(c.triggers, RouteTrigger{
					Type:      route.TriggerDTC,
					Triggered: true,
					Value:     c.dtcCode,
				})
				c.updateTriggers = true
				trigger.Triggered = true
			case route.TriggerOilTemp:
				c.triggers = append(c.triggers, RouteTrigger{
					Type:      route.TriggerOilTemp,
					Triggered: true,
				})
				c.updateTriggers = true
				trigger.Triggered = true
			}
		}

		if moveStage {
			c.currentStage++
			if c.currentStage < len(c.route.Stages) {
				c.stageOdometerBase = odometer
			} else {
				c.burndown = true
				c.lastBurndownCalc = currentTime
			}
		}
	} else {
		c.throttlePosition = 0
		c.brakePosition = 100
		if currentTime.Sub(c.lastBurndownCalc) >= burndownPeriod {
			c.routeEnded = true
			c.burndown = false
		}
	}

	if c.routeEnded {
		c.routeDuration = currentTime.Sub(c.routeStart)
		c.curThrottlePosition = 0
		c.throttlePosition = 0
		c.brakePosition = 0
	} else if jitterPeriod <= currentTime.Sub(c.lastJitterCalc) {
		if c.throttlePosition != 0 && c.throttlePosition != 100 && c.brakePosition == 0 {
			c.throttlePosition = jitterPosition(c.curThrottlePosition, throttleJitter)
		}
		c.lastJitterCalc = currentTime
	}

	c.apply(next)
}

// apply copies the calc's outputs onto the snapshot being built.
func (c *routeStageCalc) apply(next *Snapshot) {
	next.AcceleratorPedalPosition = c.throttlePosition
	next.Brake = c.brakePosition
	next.BrakePedalStatus = c.brakePosition > 0
	next.CurrentRouteStage = c.currentStage
	next.TripOdometer = c.tripOdometer
	next.UpdateTriggers = c.updateTriggers

	if c.routeEnded {
		next.RouteEnded = true
		next.RouteDuration = c.routeDuration
	}
	if c.dtcCode != "" {
		next.DTCCode = c.dtcCode
	}
	if c.updateTriggers {
		next.Triggers = append([]RouteTrigger(nil), c.triggers...)
	}
}

// armTriggers expands the route's trigger requests into concrete distance
// marks, each at a random point along the route.
func armTriggers(r *route.Route) []RouteTrigger {
	var armed []RouteTrigger
	for _, trigger := range r.Triggers {
		for j := 0; j < trigger.Occurrences; j++ {
			km := rand.Float64()*(r.Km-triggerKmFloor) + triggerKmFloor
			armed = append(armed, RouteTrigger{
				Type: trigger.Type,
				Km:   math.Round(km*100) / 100,
			})
		}
	}
	return armed
}

func randomStartSpeed(profile route.Profile) float64 {
	lower, upper := 10.0, 40.0
	if profile == route.ProfileAggressive {
		lower, upper = 20.0, 50.0
	}
	return rand.Float64()*(upper-lower) + lower
}

func randomThrottleDelta(profile route.Profile) float64 {
	deltas := normalThrottleDeltas
	if profile == route.ProfileAggressive {
		deltas = aggressiveThrottleDeltas
	}

	delta := deltas[rand.IntN(len(deltas))]
	if rand.IntN(2) == 1 {
		return -delta
	}
	return delta
}

func randomThrottleAdjPeriod() time.Duration {
	return throttleAdjMin + time.Duration(rand.Int64N(int64(throttleAdjMax-throttleAdjMin)))
}

func jitterPosition(setPoint, jitter float64) float64 {
	upper := setPoint + jitter
	if upper > 100 {
		upper = 100
	}

	lower := setPoint - jitter
	if setPoint == 0 || lower < 0 {
		lower = 0
	}

	return math.Floor(rand.Float64()*(upper-lower)) + lower
}
