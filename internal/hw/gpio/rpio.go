//go:build !tinygo

package gpio

import (
	"fmt"
	"sync"
	"time"

	"github.com/cjeanneret/JoyPanel/internal/debug"
	"github.com/stianeikeland/go-rpio/v4"
)

// edgePollInterval is how often the edge-detect status register is checked.
const edgePollInterval = time.Millisecond

// RPiDriver is the real implementation for Raspberry Pi using go-rpio.
// Pin modes live in a sync.Map so that writes issued from edge callbacks
// never wait on a lock once the pin is set up.
type RPiDriver struct {
	modes sync.Map // int -> PinMode

	epoch time.Time
	stop  chan struct{}
	wg    sync.WaitGroup
}

func newRealDriver() (Driver, error) {
	return NewRPiRealDriver()
}

// NewRPiRealDriver creates a real GPIO driver for Raspberry Pi.
// Requires running on a Raspberry Pi with access to /dev/gpiomem or as root.
func NewRPiRealDriver() (*RPiDriver, error) {
	debug.Info("Initializing real GPIO driver (go-rpio)")

	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("failed to open GPIO: %w (are you running on a Raspberry Pi?)", err)
	}

	debug.Verbose("GPIO memory mapped successfully")

	return &RPiDriver{
		epoch: time.Now(),
		stop:  make(chan struct{}),
	}, nil
}

func (r *RPiDriver) SetupPin(pin int, mode PinMode) error {
	debug.GPIO("SetupPin", pin, mode)

	p := rpio.Pin(pin)

	switch mode {
	case Input:
		p.Input()
	case InputPullUp:
		p.Input()
		p.PullUp()
	case Output:
		p.Output()
	case PWM:
		// only pins routed to a PWM channel (12, 13, 18, 19) can do this
		p.Pwm()
	default:
		return fmt.Errorf("unknown pin mode: %d", mode)
	}

	r.modes.Store(pin, mode)
	return nil
}

func (r *RPiDriver) mode(pin int) (PinMode, bool) {
	v, ok := r.modes.Load(pin)
	if !ok {
		return 0, false
	}
	return v.(PinMode), true
}

func (r *RPiDriver) pin(pin int, fallback PinMode) (rpio.Pin, error) {
	if _, ok := r.mode(pin); ok {
		return rpio.Pin(pin), nil
	}
	// Pin not setup yet
	if err := r.SetupPin(pin, fallback); err != nil {
		return 0, err
	}
	return rpio.Pin(pin), nil
}

func (r *RPiDriver) WritePin(pin int, level Level) error {
	debug.GPIO("WritePin", pin, level)

	p, err := r.pin(pin, Output)
	if err != nil {
		return err
	}
	if level == High {
		p.High()
	} else {
		p.Low()
	}
	return nil
}

func (r *RPiDriver) ReadPin(pin int) (Level, error) {
	debug.GPIO("ReadPin", pin, nil)

	p, err := r.pin(pin, Input)
	if err != nil {
		return Low, err
	}
	if p.Read() == rpio.High {
		return High, nil
	}
	return Low, nil
}

// SetFrequency sets the PWM clock of a PWM pin. The effective output
// frequency is freq/cycle, cycle being the value later passed to SetDuty.
func (r *RPiDriver) SetFrequency(pin int, freq int) error {
	if mode, ok := r.mode(pin); !ok || mode != PWM {
		return fmt.Errorf("set frequency on pin %d: %w", pin, ErrUnknownPin)
	}
	rpio.Pin(pin).Freq(freq)
	return nil
}

func (r *RPiDriver) SetDuty(pin int, duty, cycle uint32) error {
	debug.GPIO("SetDuty", pin, duty)

	if mode, ok := r.mode(pin); !ok || mode != PWM {
		return fmt.Errorf("set duty on pin %d: %w", pin, ErrUnknownPin)
	}
	if duty > cycle {
		duty = cycle
	}
	rpio.Pin(pin).DutyCycle(duty, cycle)
	return nil
}

// WatchFalling arms falling-edge detection on pin and polls the event status
// register from a dedicated goroutine. Every detected edge is reported to fn
// with the time elapsed since the driver was opened.
func (r *RPiDriver) WatchFalling(pin int, fn EdgeFunc) error {
	debug.GPIO("WatchFalling", pin, nil)

	p, err := r.pin(pin, InputPullUp)
	if err != nil {
		return err
	}
	p.Detect(rpio.FallEdge)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		t := time.NewTicker(edgePollInterval)
		defer t.Stop()
		for {
			select {
			case <-r.stop:
				p.Detect(rpio.NoEdge)
				return
			case <-t.C:
				if p.EdgeDetected() {
					fn(pin, time.Since(r.epoch))
				}
			}
		}
	}()
	return nil
}

func (r *RPiDriver) Close() error {
	debug.Trace("GPIO Close (real driver)")

	close(r.stop)
	r.wg.Wait()

	// Reset all pins to input (safe state)
	r.modes.Range(func(k, _ any) bool {
		pin := k.(int)
		debug.Verbose("Resetting pin %d to input", pin)
		rpio.Pin(pin).Input()
		return true
	})

	return rpio.Close()
}
