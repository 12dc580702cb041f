package plotter

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/san-kum/simplot/internal/observer"
	"github.com/san-kum/simplot/internal/render"
)

// fakeSurface records every backend operation.
type fakeSurface struct {
	title       string
	clears      int
	drawn       []drawnSeries
	legend      string
	xLabel      string
	yLabel      string
	xMin, xMax  float64
	yMin, yMax  float64
	hasXLim     bool
	hasYLim     bool
	intTicks    bool
	flushes     int
	paused      time.Duration
	frames      []string
	closed      bool
	closeCalled bool
}

type drawnSeries struct {
	label  string
	style  string
	times  []int64
	values []float64
}

func newFakeSurface() *fakeSurface {
	s := &fakeSurface{}
	render.Register(s)
	return s
}

func (s *fakeSurface) SetTitle(title string) { s.title = title }
func (s *fakeSurface) Clear() {
	s.clears++
	s.drawn = nil
	s.hasXLim, s.hasYLim = false, false
}
func (s *fakeSurface) DrawSeries(label, style string, times []int64, values []float64) {
	s.drawn = append(s.drawn, drawnSeries{label, style, times, values})
}
func (s *fakeSurface) SetLegend(loc string)        { s.legend = loc }
func (s *fakeSurface) SetLabels(x, y string)       { s.xLabel, s.yLabel = x, y }
func (s *fakeSurface) SetXLimits(min, max float64) { s.xMin, s.xMax, s.hasXLim = min, max, true }
func (s *fakeSurface) SetYLimits(min, max float64) { s.yMin, s.yMax, s.hasYLim = min, max, true }
func (s *fakeSurface) AutoYLimits() (float64, float64, bool) {
	min, max := 0.0, 0.0
	found := false
	for _, d := range s.drawn {
		for _, v := range d.values {
			if !found || v < min {
				min = v
			}
			if !found || v > max {
				max = v
			}
			found = true
		}
	}
	return min, max, found
}
func (s *fakeSurface) IntegerTimeTicks(on bool) { s.intTicks = on }
func (s *fakeSurface) Flush() error             { s.flushes++; return nil }
func (s *fakeSurface) Pause(d time.Duration)    { s.paused += d }
func (s *fakeSurface) SaveFrame(path string) error {
	s.frames = append(s.frames, path)
	return os.WriteFile(path, []byte("frame"), 0644)
}
func (s *fakeSurface) Closed() bool { return s.closed }
func (s *fakeSurface) Close() error {
	s.closeCalled = true
	s.closed = true
	render.Unregister(s)
	return nil
}

func newTestPlotter(t *testing.T, cfg Config) (*Plotter, *fakeSurface) {
	t.Helper()
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s := newFakeSurface()
	t.Cleanup(func() { render.Unregister(s) })
	p.SetSurfaceOpener(func() render.Surface { return s })
	return p, s
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"no variables", Config{Pace: time.Millisecond}, false},
		{"zero pace", Config{Variables: []string{"a"}}, false},
		{"negative pace", Config{Variables: []string{"a"}, Pace: -time.Second}, false},
		{"small pace ok", Config{Variables: []string{"a"}, Pace: time.Millisecond}, true},
		{"style broadcast", Config{Variables: []string{"a", "b"}, Styles: []string{"x"}, Pace: time.Millisecond}, true},
		{"style per variable", Config{Variables: []string{"a", "b"}, Styles: []string{"x", "y"}, Pace: time.Millisecond}, true},
		{"style count mismatch", Config{Variables: []string{"a", "b"}, Styles: []string{"x", "y", "z"}, Pace: time.Millisecond}, false},
		{"duplicate variable", Config{Variables: []string{"a", "a"}, Pace: time.Millisecond}, false},
		{"negative window", Config{Variables: []string{"a"}, Window: -1, Pace: time.Millisecond}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok {
				var ce *ConfigError
				if !errors.As(err, &ce) {
					t.Errorf("expected ConfigError, got %v", err)
				}
			}
		})
	}
}

func TestNew_StyleMapping(t *testing.T) {
	p, err := New(Config{Variables: []string{"a", "b"}, Styles: []string{"x"}, Pace: time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.styles["a"] != "x" || p.styles["b"] != "x" {
		t.Errorf("broadcast mapping = %v", p.styles)
	}

	p, err = New(Config{Variables: []string{"a", "b"}, Styles: []string{"x", "y"}, Pace: time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.styles["a"] != "x" || p.styles["b"] != "y" {
		t.Errorf("zipped mapping = %v", p.styles)
	}
}

func TestNew_Defaults(t *testing.T) {
	p, err := New(Config{Variables: []string{"temp", "load"}, Pace: time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.cfg.Title != "temp & load" {
		t.Errorf("Title = %q", p.cfg.Title)
	}
	if p.cfg.XLabel != "Time" {
		t.Errorf("XLabel = %q", p.cfg.XLabel)
	}
	if p.cfg.YLabel != "temp & load" {
		t.Errorf("YLabel = %q", p.cfg.YLabel)
	}
	if p.cfg.FrameFormat != "png" {
		t.Errorf("FrameFormat = %q", p.cfg.FrameFormat)
	}
}

func TestPlotter_WindowedScenario(t *testing.T) {
	p, s := newTestPlotter(t, Config{
		Variables: []string{"temp"},
		Window:    3,
		Pace:      time.Microsecond,
	})

	env := observer.Fields{"temp": 10}
	if err := p.Start(0, nil, env); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i, v := range []float64{12, 9, 15} {
		env["temp"] = v
		if err := p.Step(int64(i+1), nil, env); err != nil {
			t.Fatalf("Step %d: %v", i+1, err)
		}
	}

	full := p.Series().Window(0)
	wantTimes := []int64{0, 1, 2, 3}
	wantVals := []float64{10, 12, 9, 15}
	for i := range wantTimes {
		if full.Times[i] != wantTimes[i] || full.Values["temp"][i] != wantVals[i] {
			t.Fatalf("full series = %v / %v", full.Times, full.Values["temp"])
		}
	}

	if len(s.drawn) != 1 {
		t.Fatalf("drawn %d series, want 1", len(s.drawn))
	}
	got := s.drawn[0]
	if got.label != "temp" {
		t.Errorf("label = %q", got.label)
	}
	if len(got.times) != 3 || got.times[0] != 1 || got.times[2] != 3 {
		t.Errorf("window times = %v, want [1 2 3]", got.times)
	}
	if got.values[0] != 12 || got.values[1] != 9 || got.values[2] != 15 {
		t.Errorf("window values = %v, want [12 9 15]", got.values)
	}

	if s.title != "temp" {
		t.Errorf("title = %q", s.title)
	}
	if !s.intTicks {
		t.Error("time axis should use integer ticks")
	}
	if s.flushes != 4 {
		t.Errorf("flushes = %d, want 4", s.flushes)
	}
}

func TestPlotter_FloorMergeY(t *testing.T) {
	p, s := newTestPlotter(t, Config{
		Variables: []string{"v"},
		Pace:      time.Microsecond,
		YLimits:   &Limits{Min: 0, Max: 10},
	})

	env := observer.Fields{"v": 2}
	if err := p.Start(0, nil, env); err != nil {
		t.Fatalf("Start: %v", err)
	}
	env["v"] = 20
	if err := p.Step(1, nil, env); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if !s.hasYLim {
		t.Fatal("expected y limits to be set")
	}
	margin := 0.01 * (20.0 - 2.0)
	if s.yMax < 20+margin {
		t.Errorf("yMax = %v, want >= %v", s.yMax, 20+margin)
	}
	// floor min 0 is below data min 2, so it wins
	if s.yMin > 0 {
		t.Errorf("yMin = %v, want <= 0", s.yMin)
	}
}

func TestPlotter_FloorMergeX(t *testing.T) {
	p, s := newTestPlotter(t, Config{
		Variables: []string{"v"},
		Pace:      time.Microsecond,
		XLimits:   &Limits{Min: 0, Max: 100},
	})

	env := observer.Fields{"v": 1}
	if err := p.Start(0, nil, env); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Step(5, nil, env); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if !s.hasXLim {
		t.Fatal("expected x limits to be set")
	}
	if s.xMin != 0 || s.xMax != 100 {
		t.Errorf("x limits = (%v, %v), want (0, 100)", s.xMin, s.xMax)
	}
}

func TestPlotter_NoFloorNoOverride(t *testing.T) {
	p, s := newTestPlotter(t, Config{Variables: []string{"v"}, Pace: time.Microsecond})

	env := observer.Fields{"v": 1}
	if err := p.Start(0, nil, env); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if s.hasXLim || s.hasYLim {
		t.Error("surface should auto-scale when no floor limits are configured")
	}
}

func TestPlotter_FrameExport(t *testing.T) {
	dir := t.TempDir()
	p, _ := newTestPlotter(t, Config{
		Variables: []string{"v"},
		Pace:      time.Microsecond,
		FrameDir:  dir,
	})

	env := observer.Fields{"v": 1}
	if err := p.Start(0, nil, env); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Step(1, nil, env); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if err := p.Step(2, nil, env); err != nil {
		t.Fatalf("Step: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	want := []string{"00000.png", "00001.png", "00002.png"}
	if len(entries) != len(want) {
		t.Fatalf("wrote %d frames, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e.Name() != want[i] {
			t.Errorf("frame %d = %q, want %q", i, e.Name(), want[i])
		}
	}
}

func TestPlotter_MissingAttribute(t *testing.T) {
	p, _ := newTestPlotter(t, Config{Variables: []string{"temp", "gone"}, Pace: time.Microsecond})

	err := p.Start(0, nil, observer.Fields{"temp": 1})
	if err == nil {
		t.Fatal("expected error for missing attribute")
	}
	if !observer.IsAttributeNotFound(err) {
		t.Errorf("expected AttributeError, got %v", err)
	}
}

func TestPlotter_SurfaceClosed(t *testing.T) {
	p, s := newTestPlotter(t, Config{Variables: []string{"v"}, Pace: time.Microsecond})

	env := observer.Fields{"v": 1}
	if err := p.Start(0, nil, env); err != nil {
		t.Fatalf("Start: %v", err)
	}

	s.closed = true
	err := p.Step(1, nil, env)
	if !errors.Is(err, observer.ErrClosed) {
		t.Errorf("Step after close = %v, want ErrClosed", err)
	}
}

func TestPlotter_Stop(t *testing.T) {
	p, s := newTestPlotter(t, Config{Variables: []string{"v"}, Pace: time.Microsecond})

	env := observer.Fields{"v": 1}
	if err := p.Start(0, nil, env); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Stop(1, nil, env); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !s.closeCalled {
		t.Error("Stop should close the surface")
	}
}

func TestPlotter_StopWithoutStart(t *testing.T) {
	p, err := New(Config{Variables: []string{"v"}, Pace: time.Microsecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Stop(0, nil, nil); err != nil {
		t.Errorf("Stop without Start: %v", err)
	}
}

func TestPlotter_EqualColumnLengths(t *testing.T) {
	p, _ := newTestPlotter(t, Config{Variables: []string{"a", "b", "c"}, Pace: time.Microsecond})

	env := observer.Fields{"a": 1, "b": 2, "c": 3}
	if err := p.Start(0, nil, env); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 1; i <= 10; i++ {
		if err := p.Step(int64(i), nil, env); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}

	full := p.Series().Window(0)
	if len(full.Times) != 11 {
		t.Fatalf("recorded %d times, want 11", len(full.Times))
	}
	for name, vals := range full.Values {
		if len(vals) != len(full.Times) {
			t.Errorf("column %s has %d values, want %d", name, len(vals), len(full.Times))
		}
	}
}
