package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/simplot/internal/series"
	"github.com/san-kum/simplot/internal/storage"
)

const (
	chartWidth  = 80
	chartHeight = 16
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model replays a stored run, advancing a playhead through its samples.
type Model struct {
	meta    storage.RunMetadata
	samples *series.Set
	window  int

	playHead int
	running  bool
}

func NewModel(meta storage.RunMetadata, samples *series.Set, window int) Model {
	return Model{
		meta:     meta,
		samples:  samples,
		window:   window,
		playHead: 0,
		running:  true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.playHead = 0
		case "[":
			m.running = false
			m.scrub(-1)
		case "]":
			m.running = false
			m.scrub(1)
		}
	case TickMsg:
		if m.running {
			m.scrub(1)
			if m.playHead == m.samples.Len()-1 {
				m.running = false
			}
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) scrub(dir int) {
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= m.samples.Len() {
		m.playHead = m.samples.Len() - 1
	}
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.meta.Title)) + "\n")

	status := "PAUSED"
	if m.running {
		status = "PLAYING"
	}
	s.WriteString(fmt.Sprintf("%s  %d/%d\n", status, m.playHead+1, m.samples.Len()))

	if m.samples.Len() > 0 {
		upTo := m.upToPlayhead()
		data := make([][]float64, 0, len(m.samples.Names()))
		for _, name := range m.samples.Names() {
			if vals := upTo.Values[name]; len(vals) > 1 {
				data = append(data, vals)
			}
		}
		if len(data) > 0 {
			chart := asciigraph.PlotMany(data,
				asciigraph.Height(chartHeight),
				asciigraph.Width(chartWidth),
				asciigraph.SeriesLegends(m.samples.Names()...),
				asciigraph.Caption(m.meta.Title),
			)
			s.WriteString(graphStyle.Render(chart) + "\n")
		}

		now := upTo.Times[len(upTo.Times)-1]
		s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%d", now)) + "\n")
		for _, name := range m.samples.Names() {
			v := upTo.Values[name][len(upTo.Values[name])-1]
			s.WriteString(labelStyle.Render(name) + valueStyle.Render(fmt.Sprintf("%.4f", v)) + "\n")
		}
	}

	s.WriteString(helpStyle.Render("SP:Play/Pause  [ ]:Scrub  R:Restart  Q:Quit"))
	return s.String()
}

// upToPlayhead is the displayed slice: everything up to the playhead,
// bounded by the window when one is configured.
func (m Model) upToPlayhead() series.View {
	full := m.samples.Window(0)
	end := m.playHead + 1
	start := 0
	if m.window > 0 && end-m.window > 0 {
		start = end - m.window
	}
	values := make(map[string][]float64, len(m.samples.Names()))
	for _, name := range m.samples.Names() {
		values[name] = full.Values[name][start:end]
	}
	return series.View{Times: full.Times[start:end], Values: values}
}

// Run replays a stored run in the terminal.
func Run(meta storage.RunMetadata, samples *series.Set, window int) error {
	if samples.Len() == 0 {
		return fmt.Errorf("tui: run %s has no samples", meta.ID)
	}
	p := tea.NewProgram(NewModel(meta, samples, window))
	_, err := p.Run()
	return err
}
