package sim

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cjeanneret/JoyPanel/internal/debug"
	"github.com/cjeanneret/JoyPanel/internal/hw/adc"
	"github.com/cjeanneret/JoyPanel/internal/hw/gpio"
	"github.com/cjeanneret/JoyPanel/internal/logic/axis"
	"github.com/cjeanneret/JoyPanel/internal/logic/debounce"
	"github.com/cjeanneret/JoyPanel/internal/logic/outputs"
	"github.com/cjeanneret/JoyPanel/internal/ui"
)

// Virtual pins of the two buttons. Buttons read LOW while pressed.
const (
	StylePin  = 1
	TogglePin = 2
)

// bounce is the offset of every raw edge a single key press produces,
// modelled on a cheap tactile switch settling within a few milliseconds.
var bounce = []time.Duration{0, 250 * time.Microsecond, 700 * time.Microsecond, 1800 * time.Microsecond}

// EdgeHandler receives raw falling edges. debounce.Detector.OnRawEdge fits.
type EdgeHandler func(b debounce.Button, at time.Duration) bool

// Board is a virtual JoyPanel: joystick, two buttons, two dimmable LEDs, a
// confirmation LED and the panel. It plays every hardware role the control
// loop needs.
type Board struct {
	*adc.Mock

	onEdge EdgeHandler
	epoch  time.Time

	styleDown  atomic.Bool
	toggleDown atomic.Bool
	red        atomic.Int32
	blue       atomic.Int32
	confirm    atomic.Bool

	mu      sync.Mutex
	frame   *ui.Frame
	flushes uint64
}

// NewBoard returns a board with the stick at rest. onEdge may be nil.
func NewBoard(onEdge EdgeHandler) *Board {
	return &Board{
		Mock:   adc.NewMock(),
		onEdge: onEdge,
		epoch:  time.Now(),
		frame:  ui.NewFrame(),
	}
}

// SetEdgeHandler replaces the edge handler. Not safe while keys are pressed.
func (b *Board) SetEdgeHandler(fn EdgeHandler) {
	b.onEdge = fn
}

// Stick moves the joystick. nx and ny are in [-1, 1], 0 being the rest position.
func (b *Board) Stick(nx, ny float64) {
	b.Set(adc.X, stickRaw(nx))
	b.Set(adc.Y, stickRaw(ny))
}

func stickRaw(n float64) int {
	if n < -1 {
		n = -1
	}
	if n > 1 {
		n = 1
	}
	if n < 0 {
		return axis.Center + int(n*float64(axis.Center))
	}
	return axis.Center + int(n*float64(axis.MaxRaw-axis.Center))
}

// Press pulls the button pin LOW and emits the bouncing edges of one press.
// It returns how many of them were accepted.
func (b *Board) Press(btn debounce.Button) int {
	b.down(btn).Store(true)
	if b.onEdge == nil {
		return 0
	}
	at := time.Since(b.epoch)
	accepted := 0
	for _, d := range bounce {
		if b.onEdge(btn, at+d) {
			accepted++
		}
	}
	debug.Live("sim: %v pressed, %d of %d edges accepted", btn, accepted, len(bounce))
	return accepted
}

// Release returns the button pin to its idle HIGH level.
func (b *Board) Release(btn debounce.Button) {
	b.down(btn).Store(false)
}

func (b *Board) down(btn debounce.Button) *atomic.Bool {
	if btn == debounce.ToggleButton {
		return &b.toggleDown
	}
	return &b.styleDown
}

// ReadPin returns the live level of a button pin.
func (b *Board) ReadPin(pin int) (gpio.Level, error) {
	switch pin {
	case StylePin:
		return gpio.Level(!b.styleDown.Load()), nil
	case TogglePin:
		return gpio.Level(!b.toggleDown.Load()), nil
	default:
		return gpio.Low, fmt.Errorf("read pin %d: %w", pin, gpio.ErrUnknownPin)
	}
}

func (b *Board) SetOutputLevel(ch outputs.Channel, level int) error {
	level = axis.Clamp(level)
	switch ch {
	case outputs.Red:
		b.red.Store(int32(level))
	case outputs.Blue:
		b.blue.Store(int32(level))
	default:
		return fmt.Errorf("set level: unknown output %v", ch)
	}
	return nil
}

func (b *Board) SetConfirm(on bool) error {
	b.confirm.Store(on)
	return nil
}

// Outputs returns the LED levels last driven.
func (b *Board) Outputs() (red, blue int, confirm bool) {
	return int(b.red.Load()), int(b.blue.Load()), b.confirm.Load()
}

// Flush keeps a copy of the frame for the window.
func (b *Board) Flush(f *ui.Frame) error {
	b.mu.Lock()
	b.frame.CopyFrom(f)
	b.flushes++
	b.mu.Unlock()
	return nil
}

// Snapshot copies the last flushed frame into dst and returns the number of
// frames received so far.
func (b *Board) Snapshot(dst *ui.Frame) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	dst.CopyFrom(b.frame)
	return b.flushes
}
