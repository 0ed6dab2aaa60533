package adc

import (
	"fmt"
	"sync/atomic"

	"github.com/cjeanneret/JoyPanel/internal/logic/axis"
)

// Channel selects one joystick axis.
type Channel int

const (
	X Channel = iota
	Y
)

func (c Channel) String() string {
	switch c {
	case X:
		return "x"
	case Y:
		return "y"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Source is the high-level interface used by the rest of the application.
// It represents an abstract analog front end, regardless of how it's wired
// (SPI converter, on-chip ADC, simulator, etc.).
type Source interface {
	// ReadAxis returns one raw sample in [0, axis.MaxRaw].
	ReadAxis(ch Channel) (int, error)
}

// Mock is a Source whose values are set programmatically. Both axes start at
// the resting center position.
type Mock struct {
	x, y atomic.Int32
}

// NewMock returns a mock source resting at center.
func NewMock() *Mock {
	m := &Mock{}
	m.x.Store(axis.Center)
	m.y.Store(axis.Center)
	return m
}

// Set changes the value returned for ch.
func (m *Mock) Set(ch Channel, raw int) {
	switch ch {
	case X:
		m.x.Store(int32(raw))
	case Y:
		m.y.Store(int32(raw))
	}
}

func (m *Mock) ReadAxis(ch Channel) (int, error) {
	switch ch {
	case X:
		return int(m.x.Load()), nil
	case Y:
		return int(m.y.Load()), nil
	default:
		return 0, fmt.Errorf("read %v: unknown channel", ch)
	}
}
