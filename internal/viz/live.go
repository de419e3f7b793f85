// Package viz renders a running particle ensemble in the terminal: a
// braille-canvas map of the domain with trajectory trails, alongside live
// ensemble statistics.
package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/Eisbrenner/parcels/internal/compute"
	"github.com/Eisbrenner/parcels/internal/kernels"
	"github.com/Eisbrenner/parcels/internal/particle"
	"github.com/Eisbrenner/parcels/internal/pset"
)

const (
	canvasWidth     = 80
	canvasHeight    = 24
	trailCapacity   = 200
	historyCapacity = 600
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model steps the ensemble a fixed slice of simulated time per frame and
// draws the result.
type Model struct {
	set      *pset.ParticleSet
	kernel   kernels.Kernel
	recovery map[particle.State]kernels.Kernel
	flowName string

	dt        float64 // integration step (s)
	frameTime float64 // simulated seconds per frame

	lonMin, lonMax float64
	latMin, latMax float64

	canvas  *Canvas
	trails  map[int][]point
	spread  []float64
	running bool
	runErr  error

	initLons, initLats, initDepths []float64
}

type point struct{ x, y int }

// NewModel builds the live view. The domain extent comes from the
// fieldset's grid axes.
func NewModel(set *pset.ParticleSet, kernel kernels.Kernel, recovery map[particle.State]kernels.Kernel, dt, frameTime float64, flowName string) Model {
	g := set.FieldSet().Grid()
	return Model{
		set:        set,
		kernel:     kernel,
		recovery:   recovery,
		flowName:   flowName,
		dt:         dt,
		frameTime:  frameTime,
		lonMin:     g.Lon.Min(),
		lonMax:     g.Lon.Max(),
		latMin:     g.Lat.Min(),
		latMax:     g.Lat.Max(),
		canvas:     NewCanvas(canvasWidth, canvasHeight),
		trails:     make(map[int][]point),
		running:    true,
		initLons:   set.Lons(),
		initLats:   set.Lats(),
		initDepths: set.Depths(),
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
			m.reset()
		}
	case TickMsg:
		if m.running && m.runErr == nil {
			m.step()
		}
		m.draw()
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// step advances the whole ensemble by one frame of simulated time.
func (m *Model) step() {
	err := m.set.Execute(m.kernel, pset.Options{
		Dt:             m.dt,
		Stop:           pset.RunFor(m.frameTime),
		OutputInterval: m.frameTime,
		Recovery:       m.recovery,
		Backend:        compute.NewSerial(),
	})
	if err != nil {
		m.runErr = err
		m.running = false
		return
	}
	for _, p := range m.set.Particles() {
		x, y := m.project(p.Lon, p.Lat)
		tr := append(m.trails[p.ID], point{x, y})
		if len(tr) > trailCapacity {
			tr = tr[1:]
		}
		m.trails[p.ID] = tr
	}
	m.spread = append(m.spread, m.ensembleSpread())
	if len(m.spread) > historyCapacity {
		m.spread = m.spread[1:]
	}
}

// reset re-releases the initial ensemble.
func (m *Model) reset() {
	set, err := pset.New(m.set.FieldSet(), m.initLons, m.initLats, m.initDepths)
	if err != nil {
		m.runErr = err
		return
	}
	m.set = set
	m.trails = make(map[int][]point)
	m.spread = m.spread[:0]
	m.runErr = nil
	m.running = true
}

func (m *Model) project(lon, lat float64) (int, int) {
	nx := float64(canvasWidth * 2)
	ny := float64(canvasHeight * 4)
	x := (lon - m.lonMin) / (m.lonMax - m.lonMin) * (nx - 1)
	y := (1 - (lat-m.latMin)/(m.latMax-m.latMin)) * (ny - 1)
	return int(x), int(y)
}

func (m *Model) ensembleSpread() float64 {
	ps := m.set.Particles()
	if len(ps) == 0 {
		return 0
	}
	var mx, my float64
	for _, p := range ps {
		mx += p.Lon
		my += p.Lat
	}
	n := float64(len(ps))
	mx /= n
	my /= n
	var sq float64
	for _, p := range ps {
		sq += (p.Lon-mx)*(p.Lon-mx) + (p.Lat-my)*(p.Lat-my)
	}
	return math.Sqrt(sq / n)
}

func (m *Model) draw() {
	m.canvas.Clear()
	for _, tr := range m.trails {
		for i := 1; i < len(tr); i++ {
			m.canvas.DrawLine(tr[i-1].x, tr[i-1].y, tr[i].x, tr[i].y)
		}
	}
	for _, p := range m.set.Particles() {
		x, y := m.project(p.Lon, p.Lat)
		m.canvas.Set(x, y)
	}
}

func (m Model) View() string {
	var stats strings.Builder
	stats.WriteString(headerStyle.Render(m.flowName) + "\n")

	t := 0.0
	if ps := m.set.Particles(); len(ps) > 0 {
		t = ps[0].Time
	}
	row := func(label, value string) {
		stats.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("time", fmtDuration(t))
	row("particles", fmt.Sprintf("%d", m.set.Len()))
	row("dt", fmt.Sprintf("%.0f s", m.dt))
	if n := len(m.spread); n > 0 {
		row("spread", fmt.Sprintf("%.4g", m.spread[n-1]))
	}
	if len(m.spread) > 1 {
		stats.WriteString(graphStyle.Render(asciigraph.Plot(m.spread, asciigraph.Height(6), asciigraph.Width(36))))
		stats.WriteString("\n")
	}
	if m.runErr != nil {
		stats.WriteString("\n" + errorStyle.Render(m.runErr.Error()) + "\n")
	}
	stats.WriteString(helpStyle.Render("space: pause  r: reset  q: quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.String()),
		statsStyle.Render(stats.String()),
	)
}

func fmtDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	return d.Truncate(time.Second).String()
}
