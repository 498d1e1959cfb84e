package dynamics

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/xid"

	"github.com/fleetsim-io/fleetsim/internal/metrics"
	"github.com/fleetsim-io/fleetsim/internal/route"
	"github.com/fleetsim-io/fleetsim/pkg/log"
)

// tickInterval is the physics step.
const tickInterval = time.Second

const vinCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Params configures a Model.
type Params struct {
	DeviceID string
	VIN      string

	// Route is optional; without one the model only produces standstill
	// snapshots.
	Route *route.Route

	Odometer         float64
	FuelTankCapacity float64
	Latitude         float64
	Longitude        float64
	SimulationID     string
}

// Validate rejects parameter sets the model cannot run on.
func (p *Params) Validate() error {
	if p.DeviceID == "" {
		return errors.New("device id is required")
	}
	if p.FuelTankCapacity <= 0 {
		return errors.New("fuel tank capacity must be positive")
	}
	if p.Route != nil {
		if err := p.Route.Validate(); err != nil {
			return err
		}
	}
	if p.Odometer < 0 {
		return errors.New("odometer must not be negative")
	}
	return nil
}

// Model runs the physics chain on a fixed tick and publishes each completed
// snapshot through an atomic pointer swap. Writers never mutate a published
// snapshot and readers always see a consistent one.
type Model struct {
	calcs      []Calc
	routeStage *routeStageCalc
	aggregator *aggregatorCalc
	route      *route.Route
	now        func() time.Time

	cur atomic.Pointer[Snapshot]

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewModel builds a model from params, validating them first.
func NewModel(params Params) (*Model, error) {
	return newModel(params, time.Now)
}

func newModel(params Params, now func() time.Time) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	m := &Model{
		now:   now,
		route: params.Route,
	}

	m.calcs = []Calc{
		newSpeedCalc(now),
		newAccelerationCalc(now),
		gearLeverCalc{},
		gearCalc{},
		torqueCalc{},
		engineSpeedCalc{},
		newFuelConsumedCalc(now),
		newOdometerCalc(now),
		fuelLevelCalc{},
		fuelSpentCalc{},
		newOilTempCalc(now),
		newLocationCalc(params.Route),
	}
	if params.Route != nil {
		m.routeStage = newRouteStageCalc(params.Route, params.Odometer, now)
		m.calcs = append(m.calcs, m.routeStage)
	}
	m.aggregator = newAggregatorCalc(now)

	vin := params.VIN
	if vin == "" {
		vin = generateVIN()
	}

	init := Snapshot{
		VIN:                      vin,
		SimulationID:             params.SimulationID,
		TripID:                   xid.New().String(),
		Odometer:                 params.Odometer,
		FuelTankCapacity:         params.FuelTankCapacity,
		FuelLevel:                100,
		TransmissionGearPosition: GearFirst,
		IgnitionStatus:           IgnitionOff,
		Location:                 Location{Latitude: params.Latitude, Longitude: params.Longitude},
		Timestamp:                now(),
	}
	if params.Route != nil {
		start := params.Route.Stages[0].Start
		init.Location = Location{Latitude: start.Lat(), Longitude: start.Lon()}
	}
	m.cur.Store(&init)

	return m, nil
}

// Snapshot returns a copy of the most recently published state.
func (m *Model) Snapshot() Snapshot {
	return *m.cur.Load()
}

// Aggregated returns the trip rollup accumulated so far.
func (m *Model) Aggregated() Aggregated {
	return m.aggregator.data
}

// Route returns the route the model drives, or nil.
func (m *Model) Route() *route.Route {
	return m.route
}

// Update applies fn to a copy of the current snapshot and publishes the
// result. It is meant for state priming before the physics loop starts; it
// does not coalesce with a concurrently running tick.
func (m *Model) Update(fn func(*Snapshot)) {
	next := *m.cur.Load()
	fn(&next)
	m.cur.Store(&next)
}

// Tick runs one physics step: every calc iterates against the previous
// snapshot, the result is published, then folded into the trip rollup.
func (m *Model) Tick() {
	prev := m.cur.Load()
	next := *prev

	for _, c := range m.calcs {
		c.Iterate(prev, &next)
	}

	next.DTCChanged = next.DTCCode != prev.DTCCode
	next.Timestamp = m.now()

	if next.RouteEnded {
		next.EngineRunning = false
		next.IgnitionStatus = IgnitionOff
	}

	m.cur.Store(&next)
	m.aggregator.Iterate(&next)
	metrics.PhysicsTicks.Inc()
}

// Start runs the physics loop until ctx is cancelled, Stop is called, or the
// route ends.
func (m *Model) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}

	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})

	go func(ctx context.Context, done chan struct{}) {
		defer close(done)

		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Tick()
				if m.cur.Load().RouteEnded {
					log.Debug("Physics loop finished, route ended")
					return
				}
			}
		}
	}(ctx, m.done)
}

// Stop halts the physics loop and waits for it to exit. Safe to call more
// than once.
func (m *Model) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func generateVIN() string {
	b := make([]byte, 17)
	for i := range b {
		b[i] = vinCharset[rand.IntN(len(vinCharset))]
	}
	return string(b)
}
