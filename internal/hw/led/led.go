package led

import (
	"github.com/cjeanneret/JoyPanel/internal/debug"
	"github.com/cjeanneret/JoyPanel/internal/hw/gpio"
	"github.com/cjeanneret/JoyPanel/internal/logic/axis"
)

// Config holds the hardware configuration for a dimmable LED.
type Config struct {
	Pin    int
	FreqHz int    // PWM output frequency. 0 = leave the driver default.
	Cycle  uint32 // PWM counter range; level == Cycle is full brightness. 0 = axis.MaxRaw.
}

// frequencySetter is implemented by drivers with a programmable PWM clock.
type frequencySetter interface {
	SetFrequency(pin int, freq int) error
}

// Dimmer drives one LED through a PWM pin with an intensity in [0, Cycle].
type Dimmer struct {
	gpio  gpio.Driver
	cfg   Config
	level int
}

// NewDimmer configures cfg.Pin for PWM and switches the LED off.
func NewDimmer(g gpio.Driver, cfg Config) (*Dimmer, error) {
	if cfg.Cycle == 0 {
		cfg.Cycle = axis.MaxRaw
	}
	if err := g.SetupPin(cfg.Pin, gpio.PWM); err != nil {
		return nil, err
	}
	if fs, ok := g.(frequencySetter); ok && cfg.FreqHz > 0 {
		// the PWM clock counts Cycle ticks per period
		if err := fs.SetFrequency(cfg.Pin, cfg.FreqHz*int(cfg.Cycle)); err != nil {
			return nil, err
		}
	}

	d := &Dimmer{gpio: g, cfg: cfg, level: -1}
	if err := d.Set(0); err != nil {
		return nil, err
	}
	return d, nil
}

// Set changes the intensity. Values outside [0, Cycle] are clamped.
// Writing the current level again is a no-op.
func (d *Dimmer) Set(level int) error {
	if level < 0 {
		level = 0
	}
	if level > int(d.cfg.Cycle) {
		level = int(d.cfg.Cycle)
	}
	if level == d.level {
		return nil
	}
	debug.Trace("LED: pin %d level %d/%d", d.cfg.Pin, level, d.cfg.Cycle)
	if err := d.gpio.SetDuty(d.cfg.Pin, uint32(level), d.cfg.Cycle); err != nil {
		return err
	}
	d.level = level
	return nil
}

// Level returns the last intensity written.
func (d *Dimmer) Level() int {
	return d.level
}

// Indicator is an on/off LED on a plain output pin. Active HIGH.
type Indicator struct {
	gpio gpio.Driver
	pin  int
}

// NewIndicator configures pin as an output and switches the LED off.
func NewIndicator(g gpio.Driver, pin int) (*Indicator, error) {
	if err := g.SetupPin(pin, gpio.Output); err != nil {
		return nil, err
	}
	if err := g.WritePin(pin, gpio.Low); err != nil {
		return nil, err
	}
	return &Indicator{gpio: g, pin: pin}, nil
}

// Set switches the LED on or off.
func (i *Indicator) Set(on bool) error {
	return i.gpio.WritePin(i.pin, gpio.Level(on))
}
