package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/simplot/internal/config"
	"github.com/san-kum/simplot/internal/observer"
	"github.com/san-kum/simplot/internal/plotter"
	"github.com/san-kum/simplot/internal/sim"
	"github.com/san-kum/simplot/internal/storage"
	"github.com/san-kum/simplot/internal/tui"
)

var (
	dataDir     string
	configFile  string
	variables   []string
	styles      []string
	window      int
	title       string
	xLabel      string
	yLabel      string
	xLim        []float64
	yLim        []float64
	legend      string
	paceMs      float64
	frameDir    string
	frameFormat string
	steps       int
	saveRun     bool
	pauseMs     float64
	animateOut  string
	animateFPS  int
)

var log = logrus.WithField("tag", "simplot")

func main() {
	rootCmd := &cobra.Command{
		Use:   "simplot",
		Short: "live time-series plotting for simulation loops",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".simplot", "data directory")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "run the demo oscillator with a live plot",
		RunE:  runDemo,
	}
	demoCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	demoCmd.Flags().StringSliceVar(&variables, "vars", nil, "variables to plot (position, velocity, energy)")
	demoCmd.Flags().StringSliceVar(&styles, "styles", nil, "style token, or one per variable")
	demoCmd.Flags().IntVar(&window, "window", 0, "scrolling window size (0 = unbounded)")
	demoCmd.Flags().StringVar(&title, "title", "", "chart title")
	demoCmd.Flags().StringVar(&xLabel, "xlabel", "", "time axis label")
	demoCmd.Flags().StringVar(&yLabel, "ylabel", "", "value axis label")
	demoCmd.Flags().Float64SliceVar(&xLim, "xlim", nil, "time axis floor limits as min,max")
	demoCmd.Flags().Float64SliceVar(&yLim, "ylim", nil, "value axis floor limits as min,max")
	demoCmd.Flags().StringVar(&legend, "legend", "", "legend placement (top-left, top-right, bottom-left, bottom-right)")
	demoCmd.Flags().Float64Var(&paceMs, "pace", 0, "redraw pacing in milliseconds")
	demoCmd.Flags().StringVar(&frameDir, "frames", "", "directory for per-step frame images")
	demoCmd.Flags().StringVar(&frameFormat, "frame-format", "", "frame image format (png, svg)")
	demoCmd.Flags().IntVar(&steps, "steps", 0, "number of simulation steps")
	demoCmd.Flags().BoolVar(&saveRun, "save", false, "persist the observed series as a run")
	demoCmd.Flags().Float64Var(&pauseMs, "step-pause", 0, "extra pause per step in milliseconds")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "chart a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "replay a stored run interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  replayRun,
	}
	replayCmd.Flags().IntVar(&window, "window", 0, "scrolling window size (0 = unbounded)")

	animateCmd := &cobra.Command{
		Use:   "animate [frame_dir]",
		Short: "assemble exported png frames into a gif",
		Args:  cobra.ExactArgs(1),
		RunE:  animateFrames,
	}
	animateCmd.Flags().StringVar(&animateOut, "out", "animation.gif", "output gif path")
	animateCmd.Flags().IntVar(&animateFPS, "fps", 10, "frames per second")

	rootCmd.AddCommand(demoCmd, listCmd, plotCmd, replayCmd, animateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// demoConfig folds the config file and flags together; flags win.
func demoConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if len(variables) > 0 {
		cfg.Plot.Variables = variables
	}
	if len(styles) > 0 {
		cfg.Plot.Styles = styles
	}
	if window > 0 {
		cfg.Plot.Window = window
	}
	if title != "" {
		cfg.Plot.Title = title
	}
	if xLabel != "" {
		cfg.Plot.XLabel = xLabel
	}
	if yLabel != "" {
		cfg.Plot.YLabel = yLabel
	}
	if len(xLim) > 0 {
		cfg.Plot.XLim = xLim
	}
	if len(yLim) > 0 {
		cfg.Plot.YLim = yLim
	}
	if legend != "" {
		cfg.Plot.Legend = legend
	}
	if paceMs > 0 {
		cfg.Plot.PaceMs = paceMs
	}
	if frameDir != "" {
		cfg.Plot.FrameDir = frameDir
	}
	if frameFormat != "" {
		cfg.Plot.FrameFormat = frameFormat
	}
	if steps > 0 {
		cfg.Sim.Steps = steps
	}
	return cfg, nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := demoConfig()
	if err != nil {
		return err
	}

	plotCfg, err := cfg.Plot.ToPlotter()
	if err != nil {
		return err
	}
	if plotCfg.FrameDir != "" {
		if err := os.MkdirAll(plotCfg.FrameDir, 0755); err != nil {
			return err
		}
	}

	p, err := plotter.New(plotCfg)
	if err != nil {
		return err
	}

	model := sim.NewOscillator()
	model.Omega = cfg.Sim.Omega
	model.Damping = cfg.Sim.Damping
	model.Drive = cfg.Sim.Drive

	loop := sim.NewLoop(model)
	loop.AddObserver(p)
	if pauseMs > 0 {
		loop.AddObserver(observer.NewPauseObserver(time.Duration(pauseMs*float64(time.Millisecond)), false, false))
	}

	if err := loop.Run(context.Background(), cfg.Sim.Steps); err != nil {
		return err
	}

	if saveRun {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(plotCfg.Title, p.Series())
		if err != nil {
			return err
		}
		log.WithField("run", runID).Info("run saved")
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tVARIABLES\tSTEPS\tWHEN")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.Title, strings.Join(r.Variables, ","), r.Steps,
			r.Timestamp.Format(time.RFC3339))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if samples.Len() < 2 {
		return fmt.Errorf("run %s has too few samples to chart", meta.ID)
	}

	full := samples.Window(0)
	data := make([][]float64, 0, len(samples.Names()))
	for _, name := range samples.Names() {
		data = append(data, full.Values[name])
	}

	fmt.Printf("run: %s\nsamples: %d\n\n", meta.ID, samples.Len())
	graph := asciigraph.PlotMany(data,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.SeriesLegends(samples.Names()...),
		asciigraph.Caption(meta.Title),
	)
	fmt.Println(graph)
	return nil
}

func replayRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	return tui.Run(*meta, samples, window)
}

// animateFrames assembles the png frames a plotter exported into an
// animated gif, in filename (= time) order.
func animateFrames(cmd *cobra.Command, args []string) error {
	paths, err := filepath.Glob(filepath.Join(args[0], "*.png"))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no png frames in %s", args[0])
	}
	sort.Strings(paths)

	anim := gif.GIF{LoopCount: 0}
	delay := 100 / animateFPS // gif delay is in 1/100s
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		src, err := png.Decode(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}

		pal := image.NewPaletted(src.Bounds(), palette(src))
		draw.FloydSteinberg.Draw(pal, src.Bounds(), src, image.Point{})
		anim.Image = append(anim.Image, pal)
		anim.Delay = append(anim.Delay, delay)
	}

	out, err := os.Create(animateOut)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := gif.EncodeAll(out, &anim); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"frames": len(paths), "out": animateOut}).Info("animation written")
	return nil
}

// palette samples the frame's distinct colors, capped at gif's 256.
func palette(img image.Image) color.Palette {
	seen := make(map[color.RGBA]struct{})
	pal := color.Palette{color.RGBA{0x0a, 0x0a, 0x0a, 0xff}}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, a := img.At(x, y).RGBA()
			c := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(bb >> 8), uint8(a >> 8)}
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			if len(pal) < 256 {
				pal = append(pal, c)
			}
		}
	}
	return pal
}
