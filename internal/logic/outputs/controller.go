package outputs

import (
	"errors"
	"fmt"

	"github.com/cjeanneret/JoyPanel/internal/hw/led"
)

// Channel identifies one of the two dimmable outputs.
type Channel int

const (
	Red  Channel = iota // driven by the X axis
	Blue                // driven by the Y axis
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Blue:
		return "blue"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Controller drives the two dimmable outputs and the confirmation indicator.
// It's an intermediate layer between the control loop and the LED drivers.
//
// SetOutputLevel is only called by the loop. SetConfirm is only called by
// the edge detector. They touch disjoint pins.
type Controller struct {
	red     *led.Dimmer
	blue    *led.Dimmer
	confirm *led.Indicator
}

func NewController(red, blue *led.Dimmer, confirm *led.Indicator) *Controller {
	return &Controller{
		red:     red,
		blue:    blue,
		confirm: confirm,
	}
}

// SetOutputLevel sets the intensity of ch. Levels are clamped by the dimmer.
func (c *Controller) SetOutputLevel(ch Channel, level int) error {
	switch ch {
	case Red:
		return c.red.Set(level)
	case Blue:
		return c.blue.Set(level)
	default:
		return fmt.Errorf("set level: unknown output %v", ch)
	}
}

// SetConfirm switches the confirmation indicator. A controller built without
// an indicator ignores the call.
func (c *Controller) SetConfirm(on bool) error {
	if c.confirm == nil {
		return nil
	}
	return c.confirm.Set(on)
}

// Levels returns the last intensities written to the red and blue outputs.
func (c *Controller) Levels() (red, blue int) {
	return c.red.Level(), c.blue.Level()
}

// Off switches every output off. Used on shutdown so nothing stays lit.
func (c *Controller) Off() error {
	return errors.Join(
		c.red.Set(0),
		c.blue.Set(0),
		c.SetConfirm(false),
	)
}
