package sim

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cloooock/telemetry"
)

// FrameInterval is how often the dashboard redraws
const FrameInterval = 33 * time.Millisecond

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555"))
	ledStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ecc40")).Bold(true)
	highStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#fff")).Reverse(true)
	cursorStyle = lipgloss.NewStyle().Background(lipgloss.Color("#444"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
)

type frameMsg time.Time

func nextFrame() tea.Cmd {
	return tea.Tick(FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// dashboard is the bubbletea model drawing the front panel
type dashboard struct {
	sim      *Sim
	quitting bool
}

func newDashboard(s *Sim) dashboard {
	return dashboard{sim: s}
}

func (m dashboard) Init() tea.Cmd {
	return nextFrame()
}

func (m dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "up", "right":
			m.sim.keyboard.Handle(KeyUp)
		case "down", "left":
			m.sim.keyboard.Handle(KeyDown)
		case "pgup":
			m.sim.keyboard.Handle(KeyFastUp)
		case "pgdown":
			m.sim.keyboard.Handle(KeyFastDown)
		case "enter":
			m.sim.keyboard.Handle(KeyEncoder)
		default:
			if len(key) == 1 {
				m.sim.keyboard.Handle(key[0])
			}
		}

	case frameMsg:
		return m, nextFrame()
	}
	return m, nil
}

func (m dashboard) View() string {
	if m.quitting {
		return ""
	}

	status, ok := m.sim.LastStatus()
	leds, outs := m.sim.ChannelLevels()

	var jacks []string
	for i := range outs {
		led := dimStyle.Render("o")
		if leds[i] {
			led = ledStyle.Render("*")
		}
		jack := dimStyle.Render(" _ ")
		if outs[i] {
			jack = highStyle.Render(" ^ ")
		}
		label := fmt.Sprintf("ch%d", i+1)
		if ok && status.Mode.Selecting() && int(status.Selected) == i {
			label = cursorStyle.Render(label)
		}
		if ok && i < int(status.Count) {
			label += dimStyle.Render(fmt.Sprintf(" %d/%d", status.Channels[i].Numerator, status.Channels[i].Denominator))
		}
		jacks = append(jacks, fmt.Sprintf("%s %s %s", led, jack, label))
	}

	line := "waiting for status"
	if ok {
		line = telemetry.FormatStatus(status)
	}

	help := dimStyle.Render("up/down:turn  pgup/pgdn:fast  enter:encoder  p:pause  q:quit")

	return fmt.Sprintf("\n%s\n\n%s\n\n%s\n%s\n",
		m.sim.display.Render(),
		strings.Join(jacks, "\n"),
		statusStyle.Render(line),
		help)
}

// RunTUI runs the device behind a full-screen dashboard until ctx is done
// or the operator quits
func (s *Sim) RunTUI(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go RunTimer(ctx, s.shared.Tick, s.opts.Speed)
	go s.loop(ctx)

	p := tea.NewProgram(newDashboard(s), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
