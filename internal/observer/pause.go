package observer

import "time"

// PauseObserver blocks for a fixed delay at lifecycle points. Every step
// pauses; start and stop pause only when enabled. The blocking primitive is
// injectable so a rendering backend can supply one that also flushes
// pending redraws.
type PauseObserver struct {
	Delay   time.Duration
	OnStart bool
	OnStop  bool

	sleep func(time.Duration)
}

func NewPauseObserver(delay time.Duration, onStart, onStop bool) *PauseObserver {
	return &PauseObserver{
		Delay:   delay,
		OnStart: onStart,
		OnStop:  onStop,
		sleep:   time.Sleep,
	}
}

// SetPauseFunc replaces the blocking primitive, typically with the
// rendering backend's pause operation.
func (p *PauseObserver) SetPauseFunc(fn func(time.Duration)) {
	if fn != nil {
		p.sleep = fn
	}
}

func (p *PauseObserver) Start(now int64, agents []Agent, env Environment) error {
	if p.OnStart {
		p.sleep(p.Delay)
	}
	return nil
}

func (p *PauseObserver) Step(now int64, agents []Agent, env Environment) error {
	p.sleep(p.Delay)
	return nil
}

func (p *PauseObserver) Stop(now int64, agents []Agent, env Environment) error {
	if p.OnStop {
		p.sleep(p.Delay)
	}
	return nil
}
