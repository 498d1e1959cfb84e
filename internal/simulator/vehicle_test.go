package simulator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetsim-io/fleetsim/internal/geo"
	"github.com/fleetsim-io/fleetsim/internal/route"
	"github.com/fleetsim-io/fleetsim/internal/simulator/dynamics"
	"github.com/fleetsim-io/fleetsim/pkg/mqtt"
	"github.com/fleetsim-io/fleetsim/pkg/mqtt/topic"
)

// fakeEngine hands out a controllable snapshot instead of running physics.
type fakeEngine struct {
	mu      sync.Mutex
	snap    dynamics.Snapshot
	agg     dynamics.Aggregated
	r       *route.Route
	started int
	stopped int
	ticks   int
}

func (e *fakeEngine) Snapshot() dynamics.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap
}

func (e *fakeEngine) Aggregated() dynamics.Aggregated { return e.agg }
func (e *fakeEngine) Route() *route.Route             { return e.r }

func (e *fakeEngine) Update(fn func(*dynamics.Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.snap)
}

func (e *fakeEngine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ticks++
}

func (e *fakeEngine) Start(context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started++
}

func (e *fakeEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped++
}

func (e *fakeEngine) endRoute() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snap.RouteEnded = true
}

func (e *fakeEngine) setDTC(code string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snap.DTCCode = code
	e.snap.DTCChanged = true
}

// recordingClient keeps published messages in arrival order.
type recordingClient struct {
	mu       sync.Mutex
	topics   []string
	handlers map[string]mqtt.MessageHandler
}

func newRecordingClient() *recordingClient {
	return &recordingClient{handlers: map[string]mqtt.MessageHandler{}}
}

func (c *recordingClient) Start(context.Context) error           { return nil }
func (c *recordingClient) Disconnect(context.Context)            {}
func (c *recordingClient) AwaitConnection(context.Context) error { return nil }

func (c *recordingClient) Publish(_ context.Context, topic string, _ int, _ bool, _ []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = append(c.topics, topic)
	return nil
}

func (c *recordingClient) Subscribe(_ context.Context, topic string, _ int, handler mqtt.MessageHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
	return nil
}

func (c *recordingClient) Unsubscribe(_ context.Context, topic string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handlers, topic)
	return nil
}

func (c *recordingClient) published() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.topics...)
}

func (c *recordingClient) count(topic string) int {
	n := 0
	for _, pt := range c.published() {
		if pt == topic {
			n++
		}
	}
	return n
}

func journeyRoute() *route.Route {
	start := geo.Point{Lat: 47.6, Lon: -122.33}
	end := geo.Destination(start, 1, 90)
	return &route.Route{
		RouteID: "r-journey",
		Name:    "r-journey",
		Start:   geo.NewLocation(start),
		End:     geo.NewLocation(end),
		Stages:  []route.Stage{{Index: 0, Start: geo.NewLocation(start), End: geo.NewLocation(end), Km: 1}},
		Km:      1,
	}
}

func testConfig() Config {
	return Config{
		DeviceID:          "ECU-1",
		RouteBucket:       "routes",
		RouteKey:          "r-journey.json",
		TelemetryInterval: 10 * time.Millisecond,
		DTCInterval:       5 * time.Millisecond,
	}
}

func TestSingleSnapshotRun(t *testing.T) {
	engine := &fakeEngine{snap: dynamics.Snapshot{VIN: "VIN1"}}
	client := newRecordingClient()

	v := New(testConfig(), engine, client)
	require.NoError(t, v.Run(context.Background()))

	carData := topic.NewBuilder("").CarData("ECU-1")
	assert.Equal(t, []string{carData}, client.published())
	assert.Equal(t, 1, engine.ticks)
	assert.Equal(t, PhaseStopped, v.Phase())

	s := engine.Snapshot()
	assert.False(t, s.EngineRunning)
	assert.Equal(t, dynamics.IgnitionOff, s.IgnitionStatus)
	assert.Equal(t, dynamics.GearNeutral, s.TransmissionGearPosition)
}

func TestJourneyOrderingAndTripOnce(t *testing.T) {
	engine := &fakeEngine{snap: dynamics.Snapshot{VIN: "VIN1", TripID: "trip-1"}, r: journeyRoute()}
	client := newRecordingClient()

	v := New(testConfig(), engine, client)

	go func() {
		time.Sleep(30 * time.Millisecond)
		engine.endRoute()
	}()

	require.NoError(t, v.Run(context.Background()))

	b := topic.NewBuilder("")
	published := client.published()
	require.NotEmpty(t, published)

	// The route announcement precedes every telemetry sample.
	assert.Equal(t, b.Route("ECU-1"), published[0])
	assert.GreaterOrEqual(t, client.count(b.CarData("ECU-1")), 1)

	// Exactly one trip summary, and it is the final message.
	assert.Equal(t, 1, client.count(b.Trip("ECU-1")))
	assert.Equal(t, b.Trip("ECU-1"), published[len(published)-1])

	// The journey was primed and torn down.
	assert.Equal(t, 1, engine.started)
	assert.GreaterOrEqual(t, engine.stopped, 1)
	assert.Equal(t, PhaseStopped, v.Phase())

	// Jobs were subscribed for the journey's duration.
	client.mu.Lock()
	_, subscribed := client.handlers[b.JobNotify("ECU-1")]
	client.mu.Unlock()
	assert.True(t, subscribed)
}

func TestJourneyRefusesEmptyRoute(t *testing.T) {
	engine := &fakeEngine{snap: dynamics.Snapshot{VIN: "VIN1"}, r: &route.Route{RouteID: "empty"}}
	client := newRecordingClient()

	v := New(testConfig(), engine, client)
	err := v.Run(context.Background())
	require.Error(t, err)

	assert.Empty(t, client.published())
	assert.Equal(t, PhaseStopped, v.Phase())
}

func TestDTCPublishedOnEdgeOnly(t *testing.T) {
	engine := &fakeEngine{snap: dynamics.Snapshot{VIN: "VIN1"}, r: journeyRoute()}
	client := newRecordingClient()

	v := New(testConfig(), engine, client)

	go func() {
		time.Sleep(20 * time.Millisecond)
		engine.setDTC("P0301")
		time.Sleep(30 * time.Millisecond)
		engine.endRoute()
	}()

	require.NoError(t, v.Run(context.Background()))

	dtcTopic := topic.NewBuilder("").DTC("ECU-1")
	assert.GreaterOrEqual(t, client.count(dtcTopic), 1)
}

func TestDTCSilentWithoutChanges(t *testing.T) {
	engine := &fakeEngine{snap: dynamics.Snapshot{VIN: "VIN1"}, r: journeyRoute()}
	client := newRecordingClient()

	v := New(testConfig(), engine, client)

	go func() {
		time.Sleep(30 * time.Millisecond)
		engine.endRoute()
	}()

	require.NoError(t, v.Run(context.Background()))
	assert.Zero(t, client.count(topic.NewBuilder("").DTC("ECU-1")))
}

func TestStopCancelsRun(t *testing.T) {
	engine := &fakeEngine{snap: dynamics.Snapshot{VIN: "VIN1"}, r: journeyRoute()}
	client := newRecordingClient()

	cfg := testConfig()
	cfg.TelemetryInterval = time.Hour
	cfg.DTCInterval = time.Hour
	v := New(cfg, engine, client)

	done := make(chan error, 1)
	go func() { done <- v.Run(context.Background()) }()

	require.Eventually(t, func() bool { return v.Phase() == PhaseJourney }, time.Second, time.Millisecond)
	v.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
	assert.Equal(t, PhaseStopped, v.Phase())
}
