// Package fsm adapts error-returning callbacks to the looplab/fsm callback
// signature.
package fsm

import (
	"context"

	"github.com/looplab/fsm"
)

// WrapEvent turns an error-returning transition callback into an fsm.Callback,
// surfacing the error on the event so Event() returns it to the caller.
func WrapEvent(fn func(ctx context.Context, event *fsm.Event) error) fsm.Callback {
	return func(ctx context.Context, event *fsm.Event) {
		if err := fn(ctx, event); err != nil {
			event.Err = err
		}
	}
}
