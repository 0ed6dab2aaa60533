package control

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cjeanneret/JoyPanel/internal/debug"
	"github.com/cjeanneret/JoyPanel/internal/hw/adc"
	"github.com/cjeanneret/JoyPanel/internal/hw/gpio"
	"github.com/cjeanneret/JoyPanel/internal/logic/axis"
	"github.com/cjeanneret/JoyPanel/internal/logic/outputs"
	"github.com/cjeanneret/JoyPanel/internal/logic/state"
	"github.com/cjeanneret/JoyPanel/internal/ui"
)

// TickPeriod is the fixed cadence of the loop (20 Hz).
const TickPeriod = 50 * time.Millisecond

// ErrTransport wraps every display flush failure. It is the only fault that
// stops the loop.
var ErrTransport = errors.New("display transport failure")

// AnalogSource provides the raw joystick samples.
type AnalogSource interface {
	ReadAxis(ch adc.Channel) (int, error)
}

// DigitalInput reads the instantaneous level of an input pin.
type DigitalInput interface {
	ReadPin(pin int) (gpio.Level, error)
}

// OutputDriver drives the two dimmable outputs and the confirmation LED.
type OutputDriver interface {
	SetOutputLevel(ch outputs.Channel, level int) error
	SetConfirm(on bool) error
}

// Transport pushes a complete frame to the panel.
type Transport interface {
	Flush(f *ui.Frame) error
}

// Deps groups the collaborators of the loop.
type Deps struct {
	Analog  AnalogSource
	Outputs OutputDriver
	Display Transport

	// Pins is used for the live button glyphs. nil shows both released.
	Pins         DigitalInput
	StylePin     int
	TogglePin    int
	PressedLevel gpio.Level // Low for buttons pulled up to VCC
}

// TickReport describes one completed tick.
type TickReport struct {
	Tick       uint64         `json:"tick"`
	At         time.Time      `json:"at"`
	Sample     axis.Sample    `json:"sample"`
	LevelX     int            `json:"level_x"`
	LevelY     int            `json:"level_y"`
	Red        int            `json:"red"`
	Blue       int            `json:"blue"`
	State      state.Snapshot `json:"state"`
	StyleDown  bool           `json:"style_down"`
	ToggleDown bool           `json:"toggle_down"`
	Elapsed    time.Duration  `json:"elapsed"`

	AnalogErrors uint64 `json:"analog_errors"`
	OutputErrors uint64 `json:"output_errors"`
}

// Option configures a Loop.
type Option func(*Loop)

// WithMapper replaces the default curve (axis.Mapper with axis.Deadzone).
func WithMapper(c axis.Curve) Option {
	return func(l *Loop) { l.curve = c }
}

// WithMaxTicks stops Run after n ticks. 0 runs until cancelled.
func WithMaxTicks(n uint64) Option {
	return func(l *Loop) { l.maxTicks = n }
}

// WithPeriod overrides TickPeriod. Meant for tests.
func WithPeriod(d time.Duration) Option {
	return func(l *Loop) { l.period = d }
}

// WithObserver registers fn to receive a report after every flushed frame.
// fn runs on the loop goroutine and delays the next tick while it runs.
func WithObserver(fn func(TickReport)) Option {
	return func(l *Loop) { l.observer = fn }
}

// Loop is the fixed-cadence scheduler: sample, map, drive, compose, flush.
// Only Run's goroutine touches the sample and the frame.
type Loop struct {
	ctl      *state.Control
	deps     Deps
	curve    axis.Curve
	period   time.Duration
	maxTicks uint64
	observer func(TickReport)

	frame  *ui.Frame
	sample axis.Sample // last good sample, reused on read errors
	prev   state.Snapshot
	prevOn bool

	ticks        atomic.Uint64
	analogErrors atomic.Uint64
	outputErrors atomic.Uint64

	mu   sync.Mutex
	last TickReport
}

// New creates a loop reading ctl. It does not start anything.
func New(ctl *state.Control, deps Deps, opts ...Option) *Loop {
	l := &Loop{
		ctl:    ctl,
		deps:   deps,
		curve:  axis.Mapper{Deadzone: axis.Deadzone},
		period: TickPeriod,
		frame:  ui.NewFrame(),
		sample: axis.CenterSample,
		prev:   ctl.Snapshot(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run executes ticks until ctx is cancelled, the display fails or the tick
// limit is reached. The next tick starts one period after the start of the
// previous one; a late tick starts immediately and the schedule is re-based
// on it, so missed ticks are never replayed.
func (l *Loop) Run(ctx context.Context) error {
	debug.Section("Control loop")
	debug.Info("Control loop started (period %v)", l.period)

	timer := time.NewTimer(l.period)
	timer.Stop()
	defer timer.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		if err := l.tick(start); err != nil {
			return err
		}
		if l.maxTicks > 0 && l.ticks.Load() >= l.maxTicks {
			debug.Info("Control loop done after %d ticks", l.ticks.Load())
			return nil
		}

		wait := time.Until(start.Add(l.period))
		if wait <= 0 {
			debug.Verbose("Tick %d overran by %v", l.ticks.Load(), -wait)
			continue
		}
		timer.Reset(wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *Loop) tick(start time.Time) error {
	n := l.ticks.Load() + 1

	s := l.read()
	levelX, levelY := axis.Levels(l.curve, s)

	red, blue := 0, 0
	enabled := l.ctl.OutputsEnabled()
	if enabled {
		red, blue = levelX, levelY
	}
	l.drive(outputs.Red, red)
	l.drive(outputs.Blue, blue)

	snap := l.ctl.Snapshot()
	l.logTransitions(snap, enabled, red, blue)

	st := ui.Status{
		State:      snap,
		Sample:     s,
		LevelX:     levelX,
		LevelY:     levelY,
		StyleDown:  l.pressed(l.deps.StylePin),
		ToggleDown: l.pressed(l.deps.TogglePin),
	}
	ui.Compose(l.frame, st)
	if err := l.deps.Display.Flush(l.frame); err != nil {
		err = fmt.Errorf("flush tick %d: %w: %w", n, ErrTransport, err)
		debug.Error(err)
		return err
	}

	l.ticks.Store(n)
	debug.Tick(n, s.X, s.Y, levelX, levelY)

	report := TickReport{
		Tick:         n,
		At:           start,
		Sample:       s,
		LevelX:       levelX,
		LevelY:       levelY,
		Red:          red,
		Blue:         blue,
		State:        snap,
		StyleDown:    st.StyleDown,
		ToggleDown:   st.ToggleDown,
		Elapsed:      time.Since(start),
		AnalogErrors: l.analogErrors.Load(),
		OutputErrors: l.outputErrors.Load(),
	}
	l.mu.Lock()
	l.last = report
	l.mu.Unlock()

	if l.observer != nil {
		l.observer(report)
	}
	return nil
}

// read samples X then Y. A failed read keeps the previous value of that axis.
func (l *Loop) read() axis.Sample {
	if v, err := l.deps.Analog.ReadAxis(adc.X); err != nil {
		l.analogErrors.Add(1)
		debug.Error(fmt.Errorf("read axis %v: %w", adc.X, err))
	} else {
		l.sample.X = axis.Clamp(v)
	}
	if v, err := l.deps.Analog.ReadAxis(adc.Y); err != nil {
		l.analogErrors.Add(1)
		debug.Error(fmt.Errorf("read axis %v: %w", adc.Y, err))
	} else {
		l.sample.Y = axis.Clamp(v)
	}
	return l.sample
}

// drive writes one output. Failures are skipped; the next tick writes again.
func (l *Loop) drive(ch outputs.Channel, level int) {
	if err := l.deps.Outputs.SetOutputLevel(ch, level); err != nil {
		l.outputErrors.Add(1)
		debug.Error(fmt.Errorf("drive %v: %w", ch, err))
	}
}

func (l *Loop) pressed(pin int) bool {
	if l.deps.Pins == nil {
		return false
	}
	lvl, err := l.deps.Pins.ReadPin(pin)
	if err != nil {
		debug.Trace("read pin %d: %v", pin, err)
		return false
	}
	return lvl == l.deps.PressedLevel
}

func (l *Loop) logTransitions(snap state.Snapshot, enabled bool, red, blue int) {
	if snap.Border != l.prev.Border {
		debug.Transition("border", snap.Border)
	}
	if snap.IndicatorOn != l.prev.IndicatorOn {
		debug.Transition("indicator", snap.IndicatorOn)
	}
	if enabled != l.prevOn || l.ticks.Load() == 0 {
		debug.Outputs(enabled, red, blue)
	}
	l.prev = snap
	l.prevOn = enabled
}

// Ticks returns the number of frames flushed so far.
func (l *Loop) Ticks() uint64 {
	return l.ticks.Load()
}

// Last returns the report of the most recent tick.
func (l *Loop) Last() TickReport {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}
