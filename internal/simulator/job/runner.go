package job

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"github.com/fleetsim-io/fleetsim/internal/metrics"
	fsmutil "github.com/fleetsim-io/fleetsim/internal/pkg/util/fsm"
	"github.com/fleetsim-io/fleetsim/pkg/log"
	"github.com/fleetsim-io/fleetsim/pkg/mqtt"
	"github.com/fleetsim-io/fleetsim/pkg/mqtt/topic"
)

// defaultStepDelay is the pause between consecutive job status steps.
const defaultStepDelay = 5 * time.Second

// Lifecycle states of one job execution.
const (
	stateReceived   = "received"
	stateQueued     = "queued"
	stateInProgress = "in_progress"
	stateSucceeded  = "succeeded"
	stateFailed     = "failed"
)

const (
	eventQueue    = "event_queue"
	eventAdvance  = "event_advance"
	eventComplete = "event_complete"
	eventFail     = "event_fail"
)

// statusForState maps an fsm state to the pair of statuses reported for it.
var statusForState = map[string]struct {
	custom Status
	native string
}{
	stateQueued:     {StatusQueued, NativeQueued},
	stateInProgress: {StatusInProgress, NativeInProgress},
	stateSucceeded:  {StatusSuccess, NativeSucceeded},
	stateFailed:     {StatusFailed, NativeFailed},
}

// Runner subscribes to job notifications and executes each received job on
// its own goroutine. Executions inherit the context passed to Start, so
// stopping the vehicle cancels any in-flight job timers.
type Runner struct {
	client   mqtt.Client
	topics   *topic.Builder
	deviceID string
	vin      string

	stepDelay time.Duration
	now       func() time.Time
	logger    log.Logger

	wg sync.WaitGroup
}

// NewRunner creates a runner for one device identity.
func NewRunner(client mqtt.Client, topics *topic.Builder, deviceID, vin string) *Runner {
	return &Runner{
		client:    client,
		topics:    topics,
		deviceID:  deviceID,
		vin:       vin,
		stepDelay: defaultStepDelay,
		now:       time.Now,
		logger:    log.Std().WithName("job").WithValues("deviceId", deviceID),
	}
}

// Start subscribes to the device's job-notify topic. Received jobs run
// concurrently, each with its own state machine.
func (r *Runner) Start(ctx context.Context) error {
	notify := r.topics.JobNotify(r.deviceID)

	// Job execution is scoped to the Start ctx, not the delivery ctx: the
	// client dispatches handlers with a fresh context, but cancelling the
	// vehicle must still stop in-flight step timers.
	return r.client.Subscribe(ctx, notify, 1, func(_ context.Context, _ string, payload []byte) {
		var j Job
		if err := json.Unmarshal(payload, &j); err != nil {
			r.logger.Error(err, "Dropping malformed job notification")
			return
		}
		if j.ID == "" {
			r.logger.Warn("Dropping job notification without a job id")
			return
		}

		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.execute(ctx, j)
		}()
	})
}

// Wait blocks until all in-flight job executions have finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// execute walks one job through queued, in progress and succeeded, pausing
// stepDelay between transitions. Unsupported operations go straight to
// failed.
func (r *Runner) execute(ctx context.Context, j Job) {
	metrics.ActiveJobs.Inc()
	defer metrics.ActiveJobs.Dec()

	logger := r.logger.WithValues("jobId", j.ID, "operation", j.Document.Operation)

	machine := r.newMachine(j)

	if !supported(j.Document.Operation) {
		logger.Warn("Unsupported job operation, reporting failure")
		if err := machine.Event(ctx, eventFail); err != nil {
			logger.Error(err, "Failed to report job failure")
		}
		return
	}

	for _, event := range []string{eventQueue, eventAdvance, eventComplete} {
		if event != eventQueue && !r.pause(ctx) {
			logger.Debug("Job cancelled", "state", machine.Current())
			return
		}
		if err := machine.Event(ctx, event); err != nil {
			logger.Error(err, "Job transition failed", "event", event)
			return
		}
	}

	logger.Info("Job completed")
}

// newMachine builds the per-job state machine. Entering any reportable state
// publishes both the custom and the native status update.
func (r *Runner) newMachine(j Job) *fsm.FSM {
	events := fsm.Events{
		{Name: eventQueue, Src: []string{stateReceived}, Dst: stateQueued},
		{Name: eventAdvance, Src: []string{stateQueued}, Dst: stateInProgress},
		{Name: eventComplete, Src: []string{stateInProgress}, Dst: stateSucceeded},
		{Name: eventFail, Src: []string{stateReceived, stateQueued, stateInProgress}, Dst: stateFailed},
	}

	report := fsmutil.WrapEvent(func(ctx context.Context, e *fsm.Event) error {
		return r.report(ctx, j, e.Dst)
	})

	callbacks := fsm.Callbacks{
		"enter_" + stateQueued:     report,
		"enter_" + stateInProgress: report,
		"enter_" + stateSucceeded:  report,
		"enter_" + stateFailed:     report,
	}

	return fsm.NewFSM(stateReceived, events, callbacks)
}

// report publishes the status pair for the state just entered.
func (r *Runner) report(ctx context.Context, j Job, state string) error {
	statuses, ok := statusForState[state]
	if !ok {
		return nil
	}

	timestamp := r.now().UTC().Format(time.RFC3339Nano)

	update, err := json.Marshal(StatusUpdate{
		Operation:       j.Document.Operation,
		ReportedVersion: j.Document.DesiredVersion,
		JobID:           j.ID,
		Status:          statuses.custom,
		VIN:             r.vin,
		DeviceID:        r.deviceID,
		Timestamp:       timestamp,
	})
	if err != nil {
		return err
	}

	if err := r.client.Publish(ctx, r.topics.JobUpdate(r.deviceID, j.ID), 1, false, update); err != nil {
		return err
	}
	metrics.MessagesPublished.WithLabelValues("job_update").Inc()

	native, err := json.Marshal(StateUpdate{Status: statuses.native, Timestamp: timestamp})
	if err != nil {
		return err
	}

	if err := r.client.Publish(ctx, r.topics.JobState(r.deviceID, j.ID), 1, false, native); err != nil {
		return err
	}
	metrics.MessagesPublished.WithLabelValues("job_state").Inc()

	return nil
}

// pause waits one step delay, returning false when ctx is cancelled first.
func (r *Runner) pause(ctx context.Context) bool {
	timer := time.NewTimer(r.stepDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func supported(operation string) bool {
	return operation == OpOTAUpdate || operation == OpUpdateFirmware
}
