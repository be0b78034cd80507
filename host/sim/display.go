package sim

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"cloooock/core"
	"cloooock/segment"
)

var displayStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#ff3b30")).
	Bold(true).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#555")).
	Padding(0, 1)

// Display keeps the digits a seven-segment display would show and prints
// them to out whenever they change (out may be nil)
type Display struct {
	out    io.Writer
	digits uint8

	mu   sync.Mutex
	last string
}

func NewDisplay(out io.Writer, digits uint8) *Display {
	return &Display{out: out, digits: digits}
}

func (d *Display) Update(value core.Displayable) {
	text := segment.Text(value, d.digits)

	d.mu.Lock()
	changed := text != d.last
	d.last = text
	d.mu.Unlock()

	if changed && d.out != nil {
		fmt.Fprintf(d.out, "[%s]\n", text)
	}
}

// Text returns what the display currently shows
func (d *Display) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Render returns the display drawn as a boxed LED readout
func (d *Display) Render() string {
	return displayStyle.Render(d.Text())
}
