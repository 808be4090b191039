package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/armsim/internal/physics"
	"github.com/san-kum/armsim/internal/playback"
)

const (
	canvasWidth     = 60
	canvasHeight    = 22
	historyCapacity = 300
)

type TickMsg time.Time

// Model is the live playback view. Every tick advances the controller
// once and redraws the arm.
type Model struct {
	ctl      *playback.Controller
	params   physics.Params
	limits   []float64
	interval time.Duration

	canvas *Canvas
	camera *Camera
	theme  Theme
	styles styles

	frame      playback.Frame
	torqueHist [][]float64
	ticks      int
	selected   int
	showHelp   bool
}

// NewModel wraps a controller. interval is the tick period; zero means 60 Hz.
func NewModel(ctl *playback.Controller, arm *physics.Arm, limits []float64, interval time.Duration) Model {
	if interval <= 0 {
		interval = time.Second / 60
	}
	params := arm.Params()
	return Model{
		ctl:        ctl,
		params:     params,
		limits:     limits,
		interval:   interval,
		canvas:     NewCanvas(canvasWidth, canvasHeight),
		camera:     NewCamera(),
		theme:      Themes[0],
		styles:     newStyles(Themes[0]),
		frame:      ctl.Tick(),
		torqueHist: make([][]float64, len(params.Joints)),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.ctl.SetContinuous(!m.ctl.Continuous())
		case "tab":
			m.selected = (m.selected + 1) % len(m.params.Joints)
		case "shift+tab":
			m.selected = (m.selected + len(m.params.Joints) - 1) % len(m.params.Joints)
		case "t":
			m.theme = NextTheme(m.theme)
			m.styles = newStyles(m.theme)
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		m.step()
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	m.frame = m.ctl.Tick()
	m.ticks++
	for i, j := range m.frame.State {
		h := append(m.torqueHist[i], j.Torque)
		if len(h) > historyCapacity {
			h = h[len(h)-historyCapacity:]
		}
		m.torqueHist[i] = h
	}
}

// SetContinuous switches the wrapped controller's mode, as the space key does.
func (m Model) SetContinuous(on bool) { m.ctl.SetContinuous(on) }

// Frame returns the most recent controller output.
func (m Model) Frame() playback.Frame { return m.frame }

func (m Model) draw() string {
	m.canvas.Clear()
	Render3D(m.canvas, ArmWireframe(m.params, m.frame.State.Angles()), m.camera)
	return m.canvas.String()
}

func (m Model) View() string {
	st := m.styles
	var s strings.Builder

	s.WriteString(st.header.Render("ARMSIM") + "\n")
	status := strings.ToUpper(m.frame.Phase.String())
	if m.ctl.Continuous() {
		status += fmt.Sprintf("  move %d", m.ctl.Moves())
		if m.ctl.Moves() > 0 {
			status += " (" + m.ctl.LastKind().String() + ")"
		}
	}
	s.WriteString(st.phase[m.frame.Phase].Render(status) + "\n\n")

	if traj := m.ctl.Trajectory(); traj != nil && m.frame.Phase == playback.Moving {
		s.WriteString(st.label.Render("Elapsed") +
			st.value.Render(fmt.Sprintf("%.2fs / %.2fs", m.frame.Elapsed.Seconds(), traj.Duration)) + "\n")
	} else if m.frame.Phase == playback.Dwelling {
		s.WriteString(st.label.Render("Dwell") + st.value.Render(fmt.Sprintf("%.2fs", m.frame.Elapsed.Seconds())) + "\n")
	} else {
		s.WriteString(st.label.Render("Elapsed") + st.value.Render("-") + "\n")
	}
	s.WriteString("\n")

	for i, j := range m.frame.State {
		name := m.params.Joints[i].Name
		ratio := 0.0
		if i < len(m.limits) && m.limits[i] > 0 {
			ratio = math.Abs(j.Torque) / m.limits[i]
		}
		line := fmt.Sprintf("%-11s %+6.2f rad %+7.2f Nm ", name, j.Angle, j.Torque)
		if i == m.selected {
			s.WriteString(st.active.Render("> "+line) + st.UsageBar(ratio, 10) + "\n")
		} else {
			s.WriteString("  " + st.value.Render(line) + st.UsageBar(ratio, 10) + "\n")
		}
	}

	if hist := m.torqueHist[m.selected]; len(hist) > 1 {
		chart := asciigraph.Plot(hist,
			asciigraph.Height(5),
			asciigraph.Width(40),
			asciigraph.Caption(m.params.Joints[m.selected].Name+" torque (Nm)"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	s.WriteString(st.divider + "\n")
	s.WriteString(st.hint.Render("SP:Continuous TAB:Joint T:Theme\nX/Y:Orbit +/-:Zoom ?:Help Q:Quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, st.canvas.Render(m.draw()), st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `
  Space    start or stop continuous random moves
  Tab      select the joint shown in the torque graph
  x / X    tilt camera
  y / Y    orbit camera
  + / -    zoom
  t        cycle themes
  q        quit
`

// Run starts a full-screen program around the model.
func Run(m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
