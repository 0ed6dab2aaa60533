//go:build rp2040

// Command joypanel-pico runs the panel on a BitDogLab RP2040 board.
//
//	tinygo flash -target=pico ./cmd/joypanel-pico
package main

import (
	"context"
	"machine"
	"time"

	"github.com/cjeanneret/JoyPanel/internal/hw/gpio"
	"github.com/cjeanneret/JoyPanel/internal/hw/led"
	"github.com/cjeanneret/JoyPanel/internal/hw/pico"
	"github.com/cjeanneret/JoyPanel/internal/logic/control"
	"github.com/cjeanneret/JoyPanel/internal/logic/debounce"
	"github.com/cjeanneret/JoyPanel/internal/logic/outputs"
	"github.com/cjeanneret/JoyPanel/internal/logic/state"
)

func main() {
	// let the USB serial console attach before the first message
	time.Sleep(2 * time.Second)

	if err := run(); err != nil {
		pico.Fail(err, func(s string) { println(s) }, time.Sleep, machine.CPUReset)
	}
}

func run() error {
	drv := pico.NewDriver()

	red, err := led.NewDimmer(drv, led.Config{Pin: int(pico.RedPin)})
	if err != nil {
		return err
	}
	blue, err := led.NewDimmer(drv, led.Config{Pin: int(pico.BluePin)})
	if err != nil {
		return err
	}
	confirm, err := led.NewIndicator(drv, int(pico.ConfirmPin))
	if err != nil {
		return err
	}
	out := outputs.NewController(red, blue, confirm)

	ctl := state.New()
	det := debounce.NewDetector(ctl, out)
	for _, b := range []struct {
		pin int
		btn debounce.Button
	}{
		{int(pico.StylePin), debounce.StyleButton},
		{int(pico.TogglePin), debounce.ToggleButton},
	} {
		if err := drv.SetupPin(b.pin, gpio.InputPullUp); err != nil {
			return err
		}
		btn := b.btn
		if err := drv.WatchFalling(b.pin, func(_ int, at time.Duration) {
			det.OnRawEdge(btn, at)
		}); err != nil {
			return err
		}
	}

	display, err := pico.OpenDisplay()
	if err != nil {
		return err
	}

	loop := control.New(ctl, control.Deps{
		Analog:       pico.NewJoystick(),
		Outputs:      out,
		Display:      display,
		Pins:         drv,
		StylePin:     int(pico.StylePin),
		TogglePin:    int(pico.TogglePin),
		PressedLevel: gpio.Low,
	})
	err = loop.Run(context.Background())
	_ = out.Off()
	_ = drv.Close()
	return err
}
