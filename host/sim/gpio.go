package sim

import (
	"errors"
	"sync"

	"cloooock/core"
)

var (
	ErrPinInUse     = errors.New("sim: pin already configured")
	ErrNotAnOutput  = errors.New("sim: pin is not an output")
	ErrUnknownInput = errors.New("sim: pin is not an input")
)

// EdgeFunc is called after an output pin changes level
type EdgeFunc func(pin core.GPIOPin, level bool)

// GPIO is an in-memory core.GPIODriver. Inputs idle high (pull-up); Press
// queues the levels a press and release produce on the following reads.
type GPIO struct {
	mu      sync.Mutex
	outputs map[core.GPIOPin]bool
	inputs  map[core.GPIOPin]bool
	pending map[core.GPIOPin][]bool
	last    map[core.GPIOPin]bool
	onEdge  EdgeFunc
}

func NewGPIO(onEdge EdgeFunc) *GPIO {
	return &GPIO{
		outputs: make(map[core.GPIOPin]bool),
		inputs:  make(map[core.GPIOPin]bool),
		pending: make(map[core.GPIOPin][]bool),
		last:    make(map[core.GPIOPin]bool),
		onEdge:  onEdge,
	}
}

func (g *GPIO) ConfigureOutput(pin core.GPIOPin) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.inputs[pin]; ok {
		return ErrPinInUse
	}
	if _, ok := g.outputs[pin]; ok {
		return ErrPinInUse
	}
	g.outputs[pin] = false
	return nil
}

func (g *GPIO) ConfigureInputPullUp(pin core.GPIOPin) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.outputs[pin]; ok {
		return ErrPinInUse
	}
	if _, ok := g.inputs[pin]; ok {
		return ErrPinInUse
	}
	g.inputs[pin] = true
	g.last[pin] = true
	return nil
}

func (g *GPIO) SetPin(pin core.GPIOPin, value bool) error {
	g.mu.Lock()
	old, ok := g.outputs[pin]
	if !ok {
		g.mu.Unlock()
		return ErrNotAnOutput
	}
	g.outputs[pin] = value
	g.mu.Unlock()

	if old != value && g.onEdge != nil {
		g.onEdge(pin, value)
	}
	return nil
}

func (g *GPIO) ReadPin(pin core.GPIOPin) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.outputs[pin]; ok {
		return g.outputs[pin]
	}
	level, ok := g.inputs[pin]
	if !ok {
		return true
	}
	if queue := g.pending[pin]; len(queue) > 0 {
		level = queue[0]
		g.pending[pin] = queue[1:]
	}
	g.last[pin] = level
	return level
}

// Press makes input pin read low once, like a momentary switch pressed and
// released between two samples. When the pin would otherwise still read low
// from an earlier press, a high read is queued first so the falling edge of
// every press is visible.
func (g *GPIO) Press(pin core.GPIOPin) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.inputs[pin]; !ok {
		return ErrUnknownInput
	}
	queue := g.pending[pin]
	tail := g.last[pin]
	if len(queue) > 0 {
		tail = queue[len(queue)-1]
	}
	if !tail {
		queue = append(queue, true)
	}
	g.pending[pin] = append(queue, false)
	return nil
}

// Level returns the current level of an output pin
func (g *GPIO) Level(pin core.GPIOPin) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.outputs[pin]
}
