package sim

import (
	"math"

	"github.com/san-kum/simplot/internal/observer"
)

// Oscillator is a damped driven oscillator used by the demo command. It
// exposes "position", "velocity", and "energy".
type Oscillator struct {
	Omega   float64 // natural frequency per step
	Damping float64
	Drive   float64 // amplitude of the periodic forcing

	pos float64
	vel float64
}

func NewOscillator() *Oscillator {
	return &Oscillator{
		Omega:   0.35,
		Damping: 0.01,
		Drive:   0.2,
		pos:     1.0,
	}
}

func (o *Oscillator) Advance(now int64) {
	acc := -o.Omega*o.Omega*o.pos - 2*o.Damping*o.Omega*o.vel + o.Drive*math.Sin(0.1*float64(now))
	o.vel += acc
	o.pos += o.vel
}

func (o *Oscillator) Env() observer.Environment {
	return observer.Fields{
		"position": o.pos,
		"velocity": o.vel,
		"energy":   0.5*o.vel*o.vel + 0.5*o.Omega*o.Omega*o.pos*o.pos,
	}
}
