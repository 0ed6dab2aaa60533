//go:build rp2040

package pico

import (
	"fmt"
	"machine"

	"github.com/cjeanneret/JoyPanel/internal/hw/adc"
)

// Joystick reads the two potentiometers on the RP2040 ADC.
type Joystick struct {
	x, y machine.ADC
}

func NewJoystick() *Joystick {
	machine.InitADC()
	j := &Joystick{
		x: machine.ADC{Pin: JoystickX},
		y: machine.ADC{Pin: JoystickY},
	}
	j.x.Configure(machine.ADCConfig{})
	j.y.Configure(machine.ADCConfig{})
	return j
}

// ReadAxis returns a 12-bit sample. machine.ADC.Get scales to 16 bits.
func (j *Joystick) ReadAxis(ch adc.Channel) (int, error) {
	switch ch {
	case adc.X:
		return int(j.x.Get() >> 4), nil
	case adc.Y:
		return int(j.y.Get() >> 4), nil
	default:
		return 0, fmt.Errorf("read %v: unknown channel", ch)
	}
}
