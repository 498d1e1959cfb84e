// Package simulator orchestrates one simulated vehicle: it runs the physics
// engine, samples snapshots onto the telemetry topics, and serves OTA jobs
// for the lifetime of the journey.
package simulator

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fleetsim-io/fleetsim/internal/metrics"
	"github.com/fleetsim-io/fleetsim/internal/route"
	"github.com/fleetsim-io/fleetsim/internal/simulator/dynamics"
	"github.com/fleetsim-io/fleetsim/internal/simulator/job"
	"github.com/fleetsim-io/fleetsim/internal/simulator/transform"
	"github.com/fleetsim-io/fleetsim/pkg/log"
	"github.com/fleetsim-io/fleetsim/pkg/mqtt"
	"github.com/fleetsim-io/fleetsim/pkg/mqtt/topic"
)

// Sampler cadence defaults, matching the ingest pipeline's expectations.
const (
	DefaultTelemetryInterval = 12 * time.Second
	DefaultDTCInterval       = time.Second
)

// Engine is the physics dependency of the vehicle.
type Engine interface {
	Snapshot() dynamics.Snapshot
	Aggregated() dynamics.Aggregated
	Route() *route.Route
	Update(fn func(*dynamics.Snapshot))
	Tick()
	Start(ctx context.Context)
	Stop()
}

// Config carries the vehicle's identity and sampling cadence.
type Config struct {
	DeviceID string

	// Object-store coordinates of the driven route, forwarded in the route
	// announcement for the ingest side.
	RouteBucket string
	RouteKey    string

	TelemetryInterval time.Duration
	DTCInterval       time.Duration

	// TopicRoot overrides the default topic namespace.
	TopicRoot string
}

// Vehicle ties the engine, the payload transformer and the job runner to one
// MQTT session.
type Vehicle struct {
	cfg         Config
	engine      Engine
	client      mqtt.Client
	topics      *topic.Builder
	transformer *transform.Transformer
	jobs        *job.Runner
	machine     *PhaseMachine
	logger      log.Logger

	cancel context.CancelFunc
}

// New assembles a vehicle. The engine must already be constructed; its VIN
// seeds the job runner's identity.
func New(cfg Config, engine Engine, client mqtt.Client) *Vehicle {
	if cfg.TelemetryInterval <= 0 {
		cfg.TelemetryInterval = DefaultTelemetryInterval
	}
	if cfg.DTCInterval <= 0 {
		cfg.DTCInterval = DefaultDTCInterval
	}

	topics := topic.NewBuilder(cfg.TopicRoot)
	logger := log.Std().WithName("vehicle").WithValues("deviceId", cfg.DeviceID)

	return &Vehicle{
		cfg:         cfg,
		engine:      engine,
		client:      client,
		topics:      topics,
		transformer: transform.New(),
		jobs:        job.NewRunner(client, topics, cfg.DeviceID, engine.Snapshot().VIN),
		machine:     NewPhaseMachine(logger),
		logger:      logger,
	}
}

// Phase reports the current lifecycle phase.
func (v *Vehicle) Phase() Phase {
	return v.machine.Phase()
}

// Run executes the vehicle until the journey completes, the one-shot snapshot
// is published, or ctx is cancelled. In-flight OTA jobs are scoped to the
// same context: stopping the vehicle cancels their timers.
func (v *Vehicle) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	defer cancel()
	defer v.engine.Stop()

	var err error
	if v.engine.Route() == nil {
		err = v.publishInitialState(ctx)
	} else {
		err = v.runJourney(ctx)
	}

	cancel()
	v.jobs.Wait()

	if stopErr := v.machine.Event(context.Background(), EventStop); stopErr != nil {
		v.logger.Error(stopErr, "Phase machine stop failed")
	}
	return err
}

// Stop cancels a running vehicle. Run returns once sampling and jobs unwind.
func (v *Vehicle) Stop() {
	if v.cancel != nil {
		v.cancel()
	}
}

func (v *Vehicle) runJourney(ctx context.Context) error {
	r := v.engine.Route()
	if len(r.Stages) == 0 {
		v.logger.Error(nil, "Route has no stages, refusing to start journey")
		return errors.New("route has no stages")
	}

	if err := v.machine.Event(ctx, EventJourney); err != nil {
		return err
	}

	v.engine.Update(func(s *dynamics.Snapshot) {
		s.EngineRunning = true
		s.IgnitionStatus = dynamics.IgnitionRun
		s.GearLeverPosition = dynamics.GearLeverDrive
		s.TransmissionGearPosition = dynamics.GearFirst
	})

	if err := v.jobs.Start(ctx); err != nil {
		return err
	}

	// The route announcement must precede the first telemetry sample so the
	// ingest side can resolve the route file.
	if err := v.announceRoute(ctx); err != nil {
		return err
	}

	v.engine.Start(ctx)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return v.telemetryLoop(gctx) })
	group.Go(func() error { return v.dtcLoop(gctx) })

	err := group.Wait()
	if errors.Is(err, errJourneyComplete) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// errJourneyComplete unwinds the sampling errgroup once the trip summary is
// out.
var errJourneyComplete = errors.New("journey complete")

func (v *Vehicle) telemetryLoop(ctx context.Context) error {
	ticker := time.NewTicker(v.cfg.TelemetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		s := v.engine.Snapshot()
		if err := v.publishTelemetry(ctx, &s); err != nil {
			v.logger.Error(err, "Telemetry publish failed")
			continue
		}

		if s.RouteEnded {
			if err := v.publishTrip(ctx, &s); err != nil {
				return err
			}
			v.logger.Info("Journey finished", "tripId", s.TripID, "tripKm", s.TripOdometer)
			return errJourneyComplete
		}
	}
}

func (v *Vehicle) dtcLoop(ctx context.Context) error {
	ticker := time.NewTicker(v.cfg.DTCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		s := v.engine.Snapshot()
		if !s.UpdateTriggers && !s.DTCChanged {
			continue
		}

		if err := v.publishDTC(ctx, &s); err != nil {
			v.logger.Error(err, "DTC publish failed")
		}
	}
}

// publishInitialState emits one standstill snapshot, for fleets that need the
// vehicle visible without driving a route.
func (v *Vehicle) publishInitialState(ctx context.Context) error {
	if err := v.machine.Event(ctx, EventSnapshot); err != nil {
		return err
	}

	v.engine.Update(func(s *dynamics.Snapshot) {
		s.EngineRunning = false
		s.IgnitionStatus = dynamics.IgnitionOff
		s.TransmissionGearPosition = dynamics.GearNeutral
	})
	v.engine.Tick()

	s := v.engine.Snapshot()
	return v.publishTelemetry(ctx, &s)
}

func (v *Vehicle) announceRoute(ctx context.Context) error {
	s := v.engine.Snapshot()
	payload, err := v.transformer.Announce(v.cfg.DeviceID, &s, v.cfg.RouteBucket, v.cfg.RouteKey)
	if err != nil {
		return err
	}

	if err := v.client.Publish(ctx, v.topics.Route(v.cfg.DeviceID), 1, false, payload); err != nil {
		return err
	}
	metrics.MessagesPublished.WithLabelValues("route").Inc()
	return nil
}

func (v *Vehicle) publishTelemetry(ctx context.Context, s *dynamics.Snapshot) error {
	var routeName string
	if r := v.engine.Route(); r != nil {
		routeName = r.Name
	}

	payload, err := v.transformer.CarData(s, routeName)
	if err != nil {
		return err
	}

	if err := v.client.Publish(ctx, v.topics.CarData(v.cfg.DeviceID), 1, false, payload); err != nil {
		return err
	}
	metrics.MessagesPublished.WithLabelValues("telemetry").Inc()
	return nil
}

func (v *Vehicle) publishDTC(ctx context.Context, s *dynamics.Snapshot) error {
	payload, err := v.transformer.ProcessDTC(s)
	if err != nil {
		return err
	}

	if err := v.client.Publish(ctx, v.topics.DTC(v.cfg.DeviceID), 1, false, payload); err != nil {
		return err
	}
	metrics.MessagesPublished.WithLabelValues("dtc").Inc()
	return nil
}

func (v *Vehicle) publishTrip(ctx context.Context, s *dynamics.Snapshot) error {
	payload, err := v.transformer.ProcessTrip(s, v.engine.Aggregated(), v.engine.Route())
	if err != nil {
		return err
	}

	if err := v.client.Publish(ctx, v.topics.Trip(v.cfg.DeviceID), 1, false, payload); err != nil {
		return err
	}
	metrics.MessagesPublished.WithLabelValues("trip").Inc()
	return nil
}
