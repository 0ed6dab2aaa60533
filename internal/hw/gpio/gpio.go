package gpio

import (
	"errors"
	"sync"
	"time"

	"github.com/cjeanneret/JoyPanel/internal/debug"
)

// Level represents the logical state of a GPIO pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

// PinMode indicates how a GPIO is used.
type PinMode int

const (
	Input PinMode = iota
	InputPullUp
	Output
	PWM
)

func (m PinMode) String() string {
	switch m {
	case Input:
		return "input"
	case InputPullUp:
		return "input-pullup"
	case Output:
		return "output"
	case PWM:
		return "pwm"
	default:
		return "unknown"
	}
}

// ErrUnknownPin is returned when a pin is used before it was set up in the required mode.
var ErrUnknownPin = errors.New("pin not configured")

// EdgeFunc receives a falling edge on pin, stamped with a monotonic time offset.
// It runs on the driver's watch goroutine and must not block.
type EdgeFunc func(pin int, at time.Duration)

// Driver defines the abstract interface for controlling GPIOs.
// This allows plugging in a real Raspberry Pi implementation
// or a mock for development on PC.
type Driver interface {
	SetupPin(pin int, mode PinMode) error
	WritePin(pin int, level Level) error
	ReadPin(pin int) (Level, error)
	// SetDuty sets a PWM pin to duty/cycle (0 <= duty <= cycle).
	SetDuty(pin int, duty, cycle uint32) error
	Close() error
}

// EdgeSource delivers falling edges on input pins asynchronously.
type EdgeSource interface {
	WatchFalling(pin int, fn EdgeFunc) error
}

// MockDriver is a test implementation that keeps pin levels in memory and logs actions.
// Used for development on PC or testing. Inputs idle HIGH (pull-up, button released).
type MockDriver struct {
	mu       sync.Mutex
	modes    map[int]PinMode
	levels   map[int]Level
	duty     map[int]uint32
	watchers map[int]EdgeFunc
	epoch    time.Time
}

// NewDriver creates a GPIO driver based on the chosen mode.
// If mock is true, returns a MockDriver (for dev/test).
// If mock is false, returns a real RPiDriver (for Raspberry Pi).
func NewDriver(mock bool) (Driver, error) {
	if mock {
		debug.Info("Using MOCK GPIO driver (development mode)")
		return NewMockDriver(), nil
	}
	return newRealDriver()
}

// NewMockDriver returns an empty in-memory driver.
func NewMockDriver() *MockDriver {
	return &MockDriver{
		modes:    make(map[int]PinMode),
		levels:   make(map[int]Level),
		duty:     make(map[int]uint32),
		watchers: make(map[int]EdgeFunc),
		epoch:    time.Now(),
	}
}

func (m *MockDriver) SetupPin(pin int, mode PinMode) error {
	debug.GPIO("SetupPin", pin, mode)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modes[pin] = mode
	if mode == InputPullUp {
		m.levels[pin] = High
	}
	return nil
}

func (m *MockDriver) WritePin(pin int, level Level) error {
	debug.GPIO("WritePin", pin, level)
	m.mu.Lock()
	defer m.mu.Unlock()
	if mode, ok := m.modes[pin]; !ok || mode != Output {
		return ErrUnknownPin
	}
	m.levels[pin] = level
	return nil
}

func (m *MockDriver) ReadPin(pin int) (Level, error) {
	debug.GPIO("ReadPin", pin, nil)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.modes[pin]; !ok {
		return Low, ErrUnknownPin
	}
	return m.levels[pin], nil
}

func (m *MockDriver) SetDuty(pin int, duty, cycle uint32) error {
	debug.GPIO("SetDuty", pin, duty)
	m.mu.Lock()
	defer m.mu.Unlock()
	if mode, ok := m.modes[pin]; !ok || mode != PWM {
		return ErrUnknownPin
	}
	m.duty[pin] = duty
	return nil
}

// Duty returns the last duty written to a PWM pin.
func (m *MockDriver) Duty(pin int) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duty[pin]
}

// WatchFalling registers fn for falling edges produced by Press.
func (m *MockDriver) WatchFalling(pin int, fn EdgeFunc) error {
	debug.GPIO("WatchFalling", pin, nil)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchers[pin] = fn
	return nil
}

// Press pulls an input pin LOW and fires its edge callback, as a button press would.
func (m *MockDriver) Press(pin int) {
	m.mu.Lock()
	m.levels[pin] = Low
	fn := m.watchers[pin]
	at := time.Since(m.epoch)
	m.mu.Unlock()
	if fn != nil {
		fn(pin, at)
	}
}

// Release returns an input pin to its idle HIGH level.
func (m *MockDriver) Release(pin int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels[pin] = High
}

func (m *MockDriver) Close() error {
	debug.Trace("GPIO Close (mock)")
	return nil
}
