package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/simplot/internal/observer"
)

// Model is the simulated system a Loop drives. Advance moves the model to
// time now; Env exposes its observable variables.
type Model interface {
	Env() observer.Environment
	Advance(now int64)
}

// Loop drives a model and its observers synchronously: Start at time 0,
// then one Step per time increment, then Stop. Observers run in
// registration order, one at a time.
type Loop struct {
	model     Model
	observers []observer.Observer
	agents    []observer.Agent
}

func NewLoop(model Model) *Loop {
	return &Loop{
		model:     model,
		observers: make([]observer.Observer, 0),
	}
}

func (l *Loop) AddObserver(o observer.Observer) { l.observers = append(l.observers, o) }

// Run executes steps time steps. An observer returning observer.ErrClosed
// ends the run cleanly; any other error aborts it. Stop hooks run in both
// cases.
func (l *Loop) Run(ctx context.Context, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("sim: steps must be positive, got %d", steps)
	}

	now := int64(0)
	for _, o := range l.observers {
		if err := o.Start(now, l.agents, l.model.Env()); err != nil {
			return l.finish(now, err)
		}
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return l.finish(now, ctx.Err())
		default:
		}

		now++
		l.model.Advance(now)
		for _, o := range l.observers {
			if err := o.Step(now, l.agents, l.model.Env()); err != nil {
				return l.finish(now, err)
			}
		}
	}

	return l.finish(now, nil)
}

// finish runs the Stop hooks and folds their errors into the run's
// outcome. ErrClosed is a termination request, not a failure.
func (l *Loop) finish(now int64, runErr error) error {
	var stopErr error
	for _, o := range l.observers {
		if err := o.Stop(now, l.agents, l.model.Env()); err != nil && stopErr == nil {
			stopErr = err
		}
	}
	if errors.Is(runErr, observer.ErrClosed) {
		runErr = nil
	}
	if runErr != nil {
		return runErr
	}
	return stopErr
}
