package simulator

import (
	"context"

	"github.com/looplab/fsm"

	fsmutil "github.com/fleetsim-io/fleetsim/internal/pkg/util/fsm"
	"github.com/fleetsim-io/fleetsim/pkg/log"
)

// Phase is the vehicle lifecycle state.
type Phase string

const (
	// PhaseInitializing is the state before the run mode is decided.
	PhaseInitializing Phase = "initializing"
	// PhaseJourney drives the route with periodic sampling.
	PhaseJourney Phase = "journey"
	// PhaseSingleSnapshot publishes one standstill snapshot and exits.
	PhaseSingleSnapshot Phase = "single_snapshot"
	// PhaseStopped is terminal.
	PhaseStopped Phase = "stopped"
)

const (
	// EventJourney starts route driving.
	EventJourney = "event_journey"
	// EventSnapshot starts the one-shot standstill publish.
	EventSnapshot = "event_snapshot"
	// EventStop ends the run from any active phase.
	EventStop = "event_stop"
)

// PhaseMachine enforces the vehicle's lifecycle transitions.
type PhaseMachine struct {
	*fsm.FSM
}

func NewPhaseMachine(logger log.Logger) *PhaseMachine {
	m := &PhaseMachine{}

	events := fsm.Events{
		{Name: EventJourney, Src: []string{string(PhaseInitializing)}, Dst: string(PhaseJourney)},
		{Name: EventSnapshot, Src: []string{string(PhaseInitializing)}, Dst: string(PhaseSingleSnapshot)},
		{Name: EventStop, Src: []string{string(PhaseInitializing), string(PhaseJourney), string(PhaseSingleSnapshot)}, Dst: string(PhaseStopped)},
	}

	callbacks := fsm.Callbacks{
		"enter_state": fsmutil.WrapEvent(func(_ context.Context, e *fsm.Event) error {
			logger.Info("Vehicle phase changed", "from", e.Src, "to", e.Dst)
			return nil
		}),
	}

	m.FSM = fsm.NewFSM(string(PhaseInitializing), events, callbacks)
	return m
}

// Phase returns the current lifecycle phase.
func (m *PhaseMachine) Phase() Phase {
	return Phase(m.Current())
}
