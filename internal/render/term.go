package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	chartWidth  = 80
	chartHeight = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	gutterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// styleColors maps series style tokens to terminal colors. Single-letter
// tokens follow the usual plotting shorthand.
var styleColors = map[string]lipgloss.Color{
	"b": "12", "blue": "12",
	"r": "9", "red": "9",
	"g": "10", "green": "10",
	"y": "11", "yellow": "11",
	"m": "13", "magenta": "13",
	"c": "14", "cyan": "14",
	"w": "15", "white": "15",
	"k": "240", "gray": "240",
}

func styleColor(token string) lipgloss.Color {
	if c, ok := styleColors[token]; ok {
		return c
	}
	return "12"
}

type stagedSeries struct {
	label  string
	style  string
	times  []int64
	values []float64
}

// TermSurface renders staged series as a braille line chart in the
// terminal, redrawing in place on every Flush. Interrupting the process
// (ctrl-c) marks the surface closed, the terminal analogue of closing a
// plot window.
type TermSurface struct {
	out    io.Writer
	canvas *Canvas

	title     string
	xLabel    string
	yLabel    string
	legendLoc string
	series    []stagedSeries

	xMin, xMax     float64
	yMin, yMax     float64
	hasXLim        bool
	hasYLim        bool
	intTicks       bool
	closed         atomic.Bool
	sigCh          chan os.Signal
	manageTerminal bool
}

// NewTermSurface opens a surface on stdout with interrupt handling.
func NewTermSurface() *TermSurface {
	s := newTermSurface(os.Stdout, true)
	s.sigCh = make(chan os.Signal, 1)
	signal.Notify(s.sigCh, os.Interrupt)
	go func() {
		if _, ok := <-s.sigCh; ok {
			s.closed.Store(true)
		}
	}()
	return s
}

// NewTermSurfaceWriter opens a surface on an arbitrary writer, without
// cursor control or interrupt handling.
func NewTermSurfaceWriter(out io.Writer) *TermSurface {
	return newTermSurface(out, false)
}

func newTermSurface(out io.Writer, manageTerminal bool) *TermSurface {
	s := &TermSurface{
		out:            out,
		canvas:         NewCanvas(chartWidth, chartHeight),
		manageTerminal: manageTerminal,
	}
	if manageTerminal {
		fmt.Fprint(out, hideCursor)
	}
	Register(s)
	return s
}

func (s *TermSurface) SetTitle(title string) { s.title = title }

func (s *TermSurface) Clear() {
	s.canvas.Clear()
	s.series = s.series[:0]
}

func (s *TermSurface) DrawSeries(label, style string, times []int64, values []float64) {
	s.series = append(s.series, stagedSeries{label: label, style: style, times: times, values: values})
}

func (s *TermSurface) SetLegend(location string) { s.legendLoc = location }

func (s *TermSurface) SetLabels(xLabel, yLabel string) {
	s.xLabel = xLabel
	s.yLabel = yLabel
}

func (s *TermSurface) SetXLimits(min, max float64) {
	s.xMin, s.xMax = min, max
	s.hasXLim = true
}

func (s *TermSurface) SetYLimits(min, max float64) {
	s.yMin, s.yMax = min, max
	s.hasYLim = true
}

// AutoYLimits is the value extent of the staged series, the limits a Flush
// would use without a SetYLimits override.
func (s *TermSurface) AutoYLimits() (float64, float64, bool) {
	min, max := math.Inf(1), math.Inf(-1)
	found := false
	for _, sr := range s.series {
		for _, v := range sr.values {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
			found = true
		}
	}
	if !found {
		return 0, 0, false
	}
	return min, max, true
}

func (s *TermSurface) IntegerTimeTicks(on bool) { s.intTicks = on }

func (s *TermSurface) limits() (xlo, xhi, ylo, yhi float64) {
	xlo, xhi = math.Inf(1), math.Inf(-1)
	for _, sr := range s.series {
		for _, t := range sr.times {
			xlo = math.Min(xlo, float64(t))
			xhi = math.Max(xhi, float64(t))
		}
	}
	ylo, yhi, _ = s.AutoYLimits()
	if s.hasXLim {
		xlo, xhi = s.xMin, s.xMax
	}
	if s.hasYLim {
		ylo, yhi = s.yMin, s.yMax
	}
	if math.IsInf(xlo, 1) {
		xlo, xhi = 0, 1
	}
	if xhi <= xlo {
		xhi = xlo + 1
	}
	if yhi <= ylo {
		yhi = ylo + 1
	}
	return xlo, xhi, ylo, yhi
}

func (s *TermSurface) Flush() error {
	xlo, xhi, ylo, yhi := s.limits()

	subW, subH := chartWidth*2-1, chartHeight*4-1
	for _, sr := range s.series {
		color := styleColor(sr.style)
		px, py := -1, -1
		for i := range sr.times {
			x := int((float64(sr.times[i]) - xlo) / (xhi - xlo) * float64(subW))
			y := subH - int((sr.values[i]-ylo)/(yhi-ylo)*float64(subH))
			if i > 0 {
				s.canvas.DrawLine(px, py, x, y, color)
			} else {
				s.canvas.Set(x, y, color)
			}
			px, py = x, y
		}
	}

	var b strings.Builder
	if s.manageTerminal {
		b.WriteString(clearScreen)
	}
	b.WriteString("  " + titleStyle.Render(s.title) + "\n")
	if s.yLabel != "" {
		b.WriteString("  " + labelStyle.Render(s.yLabel) + "\n")
	}
	if loc := s.legendLoc; loc == "top-left" || loc == "top-right" {
		b.WriteString(s.legendLine(loc) + "\n")
	}

	gutter := s.gutterLabels(ylo, yhi)
	gw := 0
	for _, g := range gutter {
		if len(g) > gw {
			gw = len(g)
		}
	}
	rows := strings.Split(strings.TrimRight(s.canvas.String(), "\n"), "\n")
	for i, row := range rows {
		b.WriteString(gutterStyle.Render(fmt.Sprintf("%*s ┤", gw, gutter[i])))
		b.WriteString(row + "\n")
	}

	b.WriteString(s.ruler(gw, xlo, xhi) + "\n")
	if s.xLabel != "" {
		pad := gw + 2 + chartWidth/2 - len(s.xLabel)/2
		b.WriteString(strings.Repeat(" ", pad) + labelStyle.Render(s.xLabel) + "\n")
	}
	if loc := s.legendLoc; loc == "bottom-left" || loc == "bottom-right" {
		b.WriteString(s.legendLine(loc) + "\n")
	}

	_, err := io.WriteString(s.out, b.String())
	return err
}

// gutterLabels returns one y-axis label per canvas row; only the top,
// middle, and bottom rows carry values.
func (s *TermSurface) gutterLabels(ylo, yhi float64) []string {
	labels := make([]string, chartHeight)
	put := func(row int, v float64) {
		labels[row] = fmt.Sprintf("%.3g", v)
	}
	put(0, yhi)
	put(chartHeight/2, ylo+(yhi-ylo)/2)
	put(chartHeight-1, ylo)
	return labels
}

func (s *TermSurface) ruler(gw int, xlo, xhi float64) string {
	line := []rune(strings.Repeat(" ", gw+2+chartWidth))
	prev := ""
	for i := 0; i <= 4; i++ {
		v := xlo + (xhi-xlo)*float64(i)/4
		var label string
		if s.intTicks {
			label = fmt.Sprintf("%d", int64(math.Round(v)))
		} else {
			label = fmt.Sprintf("%.3g", v)
		}
		if label == prev {
			continue
		}
		prev = label
		col := gw + 2 + i*(chartWidth-1)/4
		if col+len(label) > len(line) {
			col = len(line) - len(label)
		}
		copy(line[col:], []rune(label))
	}
	return gutterStyle.Render(string(line))
}

func (s *TermSurface) legendLine(loc string) string {
	parts := make([]string, 0, len(s.series))
	for _, sr := range s.series {
		entry := lipgloss.NewStyle().Foreground(styleColor(sr.style)).Render("── " + sr.label)
		parts = append(parts, entry)
	}
	line := strings.Join(parts, "   ")
	if strings.HasSuffix(loc, "-right") {
		pad := chartWidth - lipgloss.Width(line)
		if pad > 0 {
			return strings.Repeat(" ", pad) + line
		}
	}
	return "  " + line
}

func (s *TermSurface) Pause(d time.Duration) {
	time.Sleep(d)
}

func (s *TermSurface) Closed() bool { return s.closed.Load() }

func (s *TermSurface) Close() error {
	if s.sigCh != nil {
		signal.Stop(s.sigCh)
		close(s.sigCh)
		s.sigCh = nil
	}
	if s.manageTerminal {
		fmt.Fprint(s.out, showCursor)
	}
	s.closed.Store(true)
	Unregister(s)
	return nil
}
