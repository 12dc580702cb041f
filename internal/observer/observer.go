package observer

import (
	"errors"
	"fmt"
)

// Agent is an actor managed by the driving simulation. The observers in
// this package never inspect agents; the parameter exists so observers can
// be dropped into any loop that exposes its population.
type Agent interface {
	ID() int64
}

// Environment exposes named numeric variables of the simulated world.
type Environment interface {
	Field(name string) (float64, error)
}

// Observer is invoked by the simulation driver at lifecycle points, in the
// order Start, Step*, Stop, synchronously and one at a time.
type Observer interface {
	Start(now int64, agents []Agent, env Environment) error
	Step(now int64, agents []Agent, env Environment) error
	Stop(now int64, agents []Agent, env Environment) error
}

// ErrClosed signals that the user closed the plot surface. It is a normal
// termination request, not a failure; drivers should stop the run cleanly.
var ErrClosed = errors.New("plot surface closed")

// AttributeError reports a variable name absent from the environment.
type AttributeError struct {
	Name string
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("environment has no attribute %q", e.Name)
}

// IsAttributeNotFound reports whether err is an AttributeError.
func IsAttributeNotFound(err error) bool {
	var ae *AttributeError
	return errors.As(err, &ae)
}

// Fields is a map-backed Environment.
type Fields map[string]float64

func (f Fields) Field(name string) (float64, error) {
	v, ok := f[name]
	if !ok {
		return 0, &AttributeError{Name: name}
	}
	return v, nil
}
