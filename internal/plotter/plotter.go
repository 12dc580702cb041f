package plotter

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/simplot/internal/observer"
	"github.com/san-kum/simplot/internal/render"
	"github.com/san-kum/simplot/internal/series"
)

// ConfigError reports an invalid construction argument.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("plotter config: %s: %s", e.Field, e.Message)
}

// Limits is a floor bound for an axis: the rendered axis covers at least
// [Min, Max], expanded when the data's own extent exceeds it.
type Limits struct {
	Min float64
	Max float64
}

// Config describes a Plotter. Zero values take the documented defaults.
type Config struct {
	// Variables are the environment attribute names to track, in draw
	// order. At least one is required.
	Variables []string
	// Styles holds one style token shared by every variable, or one token
	// per variable. Empty defaults to "b".
	Styles []string
	// Window is the number of trailing points to display; 0 shows the full
	// series.
	Window int
	Title  string // default: variable names joined by " & "
	XLabel string // default: "Time"
	YLabel string // default: same as the title default
	// XLimits and YLimits are optional axis floor bounds.
	XLimits *Limits
	YLimits *Limits
	// Legend is a placement token (top-left, top-right, bottom-left,
	// bottom-right); empty disables the legend.
	Legend string
	// Pace is how long every redraw blocks to let the surface render. It
	// must be positive.
	Pace time.Duration
	// FrameDir, when set, receives one image per redraw named by the
	// zero-padded time value.
	FrameDir string
	// FrameFormat is the frame image extension, "png" (default) or "svg".
	FrameFormat string
}

// Plotter accumulates named environment variables at every simulation step
// and redraws a live time-series chart. It owns its surface exclusively:
// the surface is opened on Start, redrawn on every Step, and closed on
// Stop.
type Plotter struct {
	cfg     Config
	styles  map[string]string
	samples *series.Set
	surface render.Surface
	open    func() render.Surface
	log     logrus.FieldLogger
}

// axis floor bounds grow by this fraction of the auto-scaled span
const axesMargin = 0.01

func New(cfg Config) (*Plotter, error) {
	if len(cfg.Variables) == 0 {
		return nil, &ConfigError{Field: "Variables", Message: "at least one variable is required"}
	}
	seen := make(map[string]struct{}, len(cfg.Variables))
	for _, name := range cfg.Variables {
		if _, dup := seen[name]; dup {
			return nil, &ConfigError{Field: "Variables", Message: fmt.Sprintf("duplicate variable %q", name)}
		}
		seen[name] = struct{}{}
	}
	if cfg.Window < 0 {
		return nil, &ConfigError{Field: "Window", Message: fmt.Sprintf("must be >= 0, got %d", cfg.Window)}
	}
	if cfg.Pace <= 0 {
		return nil, &ConfigError{Field: "Pace", Message: fmt.Sprintf("must be positive, got %v", cfg.Pace)}
	}

	styles := cfg.Styles
	if len(styles) == 0 {
		styles = []string{"b"}
	}
	if len(styles) != 1 && len(styles) != len(cfg.Variables) {
		return nil, &ConfigError{
			Field:   "Styles",
			Message: fmt.Sprintf("got %d tokens for %d variables", len(styles), len(cfg.Variables)),
		}
	}
	styleMap := make(map[string]string, len(cfg.Variables))
	for i, name := range cfg.Variables {
		if len(styles) == 1 {
			styleMap[name] = styles[0]
		} else {
			styleMap[name] = styles[i]
		}
	}

	joined := strings.Join(cfg.Variables, " & ")
	if cfg.Title == "" {
		cfg.Title = joined
	}
	if cfg.XLabel == "" {
		cfg.XLabel = "Time"
	}
	if cfg.YLabel == "" {
		cfg.YLabel = joined
	}
	if cfg.FrameFormat == "" {
		cfg.FrameFormat = "png"
	}

	return &Plotter{
		cfg:     cfg,
		styles:  styleMap,
		samples: series.NewSet(cfg.Variables),
		open:    func() render.Surface { return render.NewTermSurface() },
		log:     logrus.WithField("tag", "Plotter"),
	}, nil
}

// SetSurfaceOpener replaces how the plot surface is created on Start.
func (p *Plotter) SetSurfaceOpener(open func() render.Surface) {
	if open != nil {
		p.open = open
	}
}

// Series exposes the accumulated samples, e.g. for persisting a run.
func (p *Plotter) Series() *series.Set { return p.samples }

func (p *Plotter) Start(now int64, agents []observer.Agent, env observer.Environment) error {
	p.surface = p.open()
	p.surface.SetTitle(p.cfg.Title)
	return p.Step(now, agents, env)
}

func (p *Plotter) Step(now int64, agents []observer.Agent, env observer.Environment) error {
	values := make([]float64, len(p.cfg.Variables))
	for i, name := range p.cfg.Variables {
		v, err := env.Field(name)
		if err != nil {
			return err
		}
		values[i] = v
	}
	if err := p.samples.Append(now, values); err != nil {
		return err
	}

	window := p.samples.Window(p.cfg.Window)

	p.surface.Clear()
	for _, name := range p.cfg.Variables {
		p.surface.DrawSeries(name, p.styles[name], window.Times, window.Values[name])
	}
	if p.cfg.Legend != "" && p.cfg.Legend != "none" {
		p.surface.SetLegend(p.cfg.Legend)
	}
	p.surface.SetLabels(p.cfg.XLabel, p.cfg.YLabel)
	p.applyLimits()
	p.surface.IntegerTimeTicks(true)

	if err := p.surface.Flush(); err != nil {
		return err
	}
	p.surface.Pause(p.cfg.Pace)

	if p.surface.Closed() || render.OpenCount() == 0 {
		p.log.Info("plot surface closed, stopping")
		return observer.ErrClosed
	}

	if p.cfg.FrameDir != "" {
		path := filepath.Join(p.cfg.FrameDir, fmt.Sprintf("%05d.%s", now, p.cfg.FrameFormat))
		if err := p.surface.SaveFrame(path); err != nil {
			return err
		}
	}
	return nil
}

func (p *Plotter) Stop(now int64, agents []observer.Agent, env observer.Environment) error {
	if p.surface == nil {
		return nil
	}
	return p.surface.Close()
}

// applyLimits merges configured floor bounds with the data's current
// extent. The extent comes from the full accumulated series, not just the
// displayed window; the value-axis margin is 1% of the surface's
// auto-scaled span, computed independently of the floor merge.
func (p *Plotter) applyLimits() {
	if p.cfg.YLimits != nil {
		dataMin, dataMax, ok := p.samples.ValueExtent()
		if ok {
			margin := 0.0
			if autoMin, autoMax, autoOK := p.surface.AutoYLimits(); autoOK {
				margin = axesMargin * (autoMax - autoMin)
			}
			min := dataMin - margin
			if p.cfg.YLimits.Min < min {
				min = p.cfg.YLimits.Min
			}
			max := dataMax + margin
			if p.cfg.YLimits.Max > max {
				max = p.cfg.YLimits.Max
			}
			p.surface.SetYLimits(min, max)
		}
	}
	if p.cfg.XLimits != nil {
		tMin, tMax, ok := p.samples.TimeExtent()
		if ok {
			min := float64(tMin)
			if p.cfg.XLimits.Min < min {
				min = p.cfg.XLimits.Min
			}
			max := float64(tMax)
			if p.cfg.XLimits.Max > max {
				max = p.cfg.XLimits.Max
			}
			p.surface.SetXLimits(min, max)
		}
	}
}
