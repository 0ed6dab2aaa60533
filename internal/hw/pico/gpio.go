//go:build rp2040

package pico

import (
	"fmt"
	"machine"
	"time"

	"github.com/cjeanneret/JoyPanel/internal/hw/gpio"
)

// pwmPeriod is the PWM period in nanoseconds (1 kHz).
const pwmPeriod = 1e6

// pwmSlice is the subset of the RP2040 PWM slice API the driver needs.
type pwmSlice interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Set(channel uint8, value uint32)
	Top() uint32
}

var pwmSlices = [...]pwmSlice{
	machine.PWM0, machine.PWM1, machine.PWM2, machine.PWM3,
	machine.PWM4, machine.PWM5, machine.PWM6, machine.PWM7,
}

type pwmOut struct {
	slice   pwmSlice
	channel uint8
}

// Driver implements gpio.Driver and gpio.EdgeSource on the RP2040 pins.
// Pins are set up once at boot, before any interrupt is enabled; after
// that the maps are only read.
type Driver struct {
	pwm        map[int]pwmOut
	configured [len(pwmSlices)]bool
	epoch      time.Time
}

var (
	_ gpio.Driver     = (*Driver)(nil)
	_ gpio.EdgeSource = (*Driver)(nil)
)

func NewDriver() *Driver {
	return &Driver{pwm: make(map[int]pwmOut), epoch: time.Now()}
}

func (d *Driver) SetupPin(pin int, mode gpio.PinMode) error {
	p := machine.Pin(pin)
	switch mode {
	case gpio.Input:
		p.Configure(machine.PinConfig{Mode: machine.PinInput})
	case gpio.InputPullUp:
		p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	case gpio.Output:
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	case gpio.PWM:
		// GPIO n belongs to slice (n/2)%8
		idx := (pin / 2) % len(pwmSlices)
		s := pwmSlices[idx]
		if !d.configured[idx] {
			if err := s.Configure(machine.PWMConfig{Period: pwmPeriod}); err != nil {
				return fmt.Errorf("configure PWM%d: %w", idx, err)
			}
			d.configured[idx] = true
		}
		ch, err := s.Channel(p)
		if err != nil {
			return fmt.Errorf("PWM channel for GPIO%d: %w", pin, err)
		}
		d.pwm[pin] = pwmOut{slice: s, channel: ch}
	default:
		return fmt.Errorf("GPIO%d: unsupported mode %v", pin, mode)
	}
	return nil
}

func (d *Driver) WritePin(pin int, level gpio.Level) error {
	machine.Pin(pin).Set(bool(level))
	return nil
}

func (d *Driver) ReadPin(pin int) (gpio.Level, error) {
	return gpio.Level(machine.Pin(pin).Get()), nil
}

// SetDuty scales duty/cycle onto the slice's counter range.
func (d *Driver) SetDuty(pin int, duty, cycle uint32) error {
	out, ok := d.pwm[pin]
	if !ok {
		return fmt.Errorf("GPIO%d: %w", pin, gpio.ErrUnknownPin)
	}
	if cycle == 0 {
		cycle = 1
	}
	out.slice.Set(out.channel, uint32(uint64(duty)*uint64(out.slice.Top())/uint64(cycle)))
	return nil
}

// WatchFalling runs fn from the pin interrupt.
func (d *Driver) WatchFalling(pin int, fn gpio.EdgeFunc) error {
	return machine.Pin(pin).SetInterrupt(machine.PinFalling, func(p machine.Pin) {
		fn(int(p), time.Since(d.epoch))
	})
}

// Close stops the interrupts and leaves the outputs as they are; the
// caller switches them off first.
func (d *Driver) Close() error {
	for _, p := range []machine.Pin{StylePin, TogglePin} {
		_ = p.SetInterrupt(0, nil)
	}
	return nil
}
