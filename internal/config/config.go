package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/simplot/internal/plotter"
)

const (
	DefaultPaceMs = 1.0
	DefaultSteps  = 200
)

type Config struct {
	Plot PlotConfig `yaml:"plot"`
	Sim  SimConfig  `yaml:"sim"`
}

type PlotConfig struct {
	Variables   []string  `yaml:"variables"`
	Styles      []string  `yaml:"styles"`
	Window      int       `yaml:"window"`
	Title       string    `yaml:"title"`
	XLabel      string    `yaml:"xlabel"`
	YLabel      string    `yaml:"ylabel"`
	XLim        []float64 `yaml:"xlim"` // [min, max]
	YLim        []float64 `yaml:"ylim"` // [min, max]
	Legend      string    `yaml:"legend"`
	PaceMs      float64   `yaml:"pace_ms"`
	FrameDir    string    `yaml:"frame_dir"`
	FrameFormat string    `yaml:"frame_format"`
}

type SimConfig struct {
	Steps   int     `yaml:"steps"`
	Omega   float64 `yaml:"omega"`
	Damping float64 `yaml:"damping"`
	Drive   float64 `yaml:"drive"`
}

func DefaultConfig() *Config {
	return &Config{
		Plot: PlotConfig{
			Variables: []string{"position"},
			Styles:    []string{"b"},
			PaceMs:    DefaultPaceMs,
		},
		Sim: SimConfig{
			Steps:   DefaultSteps,
			Omega:   0.35,
			Damping: 0.01,
			Drive:   0.2,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ToPlotter converts the yaml shape into a plotter.Config. Limit lists
// must hold exactly two values.
func (p PlotConfig) ToPlotter() (plotter.Config, error) {
	cfg := plotter.Config{
		Variables:   p.Variables,
		Styles:      p.Styles,
		Window:      p.Window,
		Title:       p.Title,
		XLabel:      p.XLabel,
		YLabel:      p.YLabel,
		Legend:      p.Legend,
		Pace:        time.Duration(p.PaceMs * float64(time.Millisecond)),
		FrameDir:    p.FrameDir,
		FrameFormat: p.FrameFormat,
	}

	lim, err := toLimits("xlim", p.XLim)
	if err != nil {
		return plotter.Config{}, err
	}
	cfg.XLimits = lim

	lim, err = toLimits("ylim", p.YLim)
	if err != nil {
		return plotter.Config{}, err
	}
	cfg.YLimits = lim

	return cfg, nil
}

func toLimits(field string, vals []float64) (*plotter.Limits, error) {
	switch len(vals) {
	case 0:
		return nil, nil
	case 2:
		return &plotter.Limits{Min: vals[0], Max: vals[1]}, nil
	default:
		return nil, fmt.Errorf("config: %s needs [min, max], got %d values", field, len(vals))
	}
}
