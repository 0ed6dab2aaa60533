package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cjeanneret/JoyPanel/internal/config"
	"github.com/cjeanneret/JoyPanel/internal/debug"
	"github.com/cjeanneret/JoyPanel/internal/hw/adc"
	"github.com/cjeanneret/JoyPanel/internal/hw/gpio"
	"github.com/cjeanneret/JoyPanel/internal/hw/led"
	"github.com/cjeanneret/JoyPanel/internal/hw/oled"
	"github.com/cjeanneret/JoyPanel/internal/logic/control"
	"github.com/cjeanneret/JoyPanel/internal/logic/debounce"
	"github.com/cjeanneret/JoyPanel/internal/logic/outputs"
	"github.com/cjeanneret/JoyPanel/internal/logic/state"
	"github.com/cjeanneret/JoyPanel/internal/web"
)

// mirrorEvery throttles tick events on the SSE stream to about 4 per second.
const mirrorEvery = uint64(time.Second / control.TickPeriod / 4)

// panel is a fully wired board: shared state, edge detector and the loop's
// collaborators, plus what must be undone on exit.
type panel struct {
	ctl  *state.Control
	det  *debounce.Detector
	deps control.Deps

	// run in order by close
	closers []func() error
}

// close runs the shutdown steps in order, collecting every error.
func (p *panel) close() error {
	var errs []error
	for _, c := range p.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openPanel builds the board described by cfg. frames receives a text dump
// of every frame when the mock display is used; it may be nil.
func openPanel(cfg *config.Config, frames io.Writer) (_ *panel, err error) {
	p := &panel{ctl: state.New()}
	defer func() {
		if err != nil {
			_ = p.close()
		}
	}()

	debug.Step(1, "Initializing GPIO driver")
	debug.Value("Mock GPIO", cfg.Defaults.MockGPIO)
	drv, err := gpio.NewDriver(cfg.Defaults.MockGPIO)
	if err != nil {
		return nil, fmt.Errorf("init GPIO: %w", err)
	}
	// last: resets every pin to input
	defer func() { p.closers = append(p.closers, drv.Close) }()

	debug.Step(2, "Initializing outputs")
	out, err := newOutputs(drv, cfg.Outputs)
	if err != nil {
		return nil, err
	}
	p.closers = append(p.closers, out.Off)
	debug.PrintStruct("Outputs config", cfg.Outputs)

	p.det = debounce.NewDetector(p.ctl, out)

	debug.Step(3, "Initializing buttons")
	if err := watchButtons(drv, cfg.Buttons, cfg.ButtonsPullUp(), p.det); err != nil {
		return nil, err
	}
	debug.PrintStruct("Buttons config", cfg.Buttons)

	debug.Step(4, "Initializing joystick")
	analog, closeADC, err := newAnalog(cfg.ADC)
	if err != nil {
		return nil, err
	}
	if closeADC != nil {
		p.closers = append(p.closers, closeADC)
	}
	debug.Value("ADC type", cfg.ADC.Type)

	debug.Step(5, "Initializing display")
	display, closeDisplay, err := newDisplay(cfg, frames)
	if err != nil {
		return nil, err
	}
	p.closers = append(p.closers, closeDisplay)
	debug.Value("Display type", cfg.Display.Type)

	p.deps = control.Deps{
		Analog:       analog,
		Outputs:      out,
		Display:      display,
		Pins:         drv,
		StylePin:     cfg.Buttons.StylePin,
		TogglePin:    cfg.Buttons.TogglePin,
		PressedLevel: gpio.Low,
	}
	return p, nil
}

func newOutputs(drv gpio.Driver, cfg config.OutputsConfig) (*outputs.Controller, error) {
	red, err := led.NewDimmer(drv, led.Config{Pin: cfg.RedPin, FreqHz: cfg.PWMFreqHz})
	if err != nil {
		return nil, fmt.Errorf("init red output: %w", err)
	}
	blue, err := led.NewDimmer(drv, led.Config{Pin: cfg.BluePin, FreqHz: cfg.PWMFreqHz})
	if err != nil {
		return nil, fmt.Errorf("init blue output: %w", err)
	}
	var confirm *led.Indicator
	if cfg.ConfirmPin != 0 {
		if confirm, err = led.NewIndicator(drv, cfg.ConfirmPin); err != nil {
			return nil, fmt.Errorf("init confirm LED: %w", err)
		}
	}
	return outputs.NewController(red, blue, confirm), nil
}

// watchButtons configures the button pins and routes their falling edges to det.
func watchButtons(drv gpio.Driver, cfg config.ButtonsConfig, pullUp bool, det *debounce.Detector) error {
	es, ok := drv.(gpio.EdgeSource)
	if !ok {
		return errors.New("GPIO driver cannot watch edges")
	}
	mode := gpio.Input
	if pullUp {
		mode = gpio.InputPullUp
	}
	for _, b := range []struct {
		pin int
		btn debounce.Button
	}{
		{cfg.StylePin, debounce.StyleButton},
		{cfg.TogglePin, debounce.ToggleButton},
	} {
		if err := drv.SetupPin(b.pin, mode); err != nil {
			return fmt.Errorf("setup %v button: %w", b.btn, err)
		}
		btn := b.btn
		if err := es.WatchFalling(b.pin, func(_ int, at time.Duration) {
			det.OnRawEdge(btn, at)
		}); err != nil {
			return fmt.Errorf("watch %v button: %w", b.btn, err)
		}
	}
	return nil
}

func newAnalog(cfg config.ADCConfig) (control.AnalogSource, func() error, error) {
	switch cfg.Type {
	case config.ADCMock:
		debug.Info("Using MOCK joystick (resting at center)")
		return adc.NewMock(), nil, nil
	case config.ADCMCP3208:
		spi, err := adc.OpenRPiSPI(uint8(cfg.SPIChipSelect), cfg.SPISpeedHz)
		if err != nil {
			return nil, nil, fmt.Errorf("open SPI: %w", err)
		}
		conv, err := adc.NewMCP3208(spi, uint8(cfg.XChannel), uint8(cfg.YChannel))
		if err != nil {
			_ = spi.Close()
			return nil, nil, err
		}
		return conv, spi.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported adc type: %s", cfg.Type)
	}
}

func newDisplay(cfg *config.Config, frames io.Writer) (control.Transport, func() error, error) {
	switch cfg.Display.Type {
	case config.DisplayMock:
		l := oled.NewLog(frames)
		return l, l.Close, nil
	case config.DisplaySSD1306:
		d, err := oled.OpenSSD1306(cfg.Display.I2CBus, cfg.DisplayAddress())
		if err != nil {
			return nil, nil, err
		}
		return d, d.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported display type: %s", cfg.Display.Type)
	}
}

// serve runs the control loop, and the diagnostic mirror when port > 0,
// until ctx is cancelled, the tick limit is reached or the display fails.
// Only a display failure is returned.
func serve(ctx context.Context, p *panel, port int, opts ...control.Option) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	deps := p.deps
	var srv *web.Server
	if port > 0 {
		b := web.NewBroadcaster()
		debug.SetOutput(io.MultiWriter(os.Stdout, web.LogWriter(b)))
		mirror := web.NewMirror(b, p.ctl, p.det, mirrorEvery)
		deps.Display = mirror.Tee(deps.Display)
		opts = append(opts, control.WithObserver(mirror.Observe))

		var err error
		if srv, err = web.NewServer(fmt.Sprintf(":%d", port), b, mirror); err != nil {
			return err
		}
	}

	loop := control.New(p.ctl, deps, opts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return loop.Run(gctx)
	})
	if srv != nil {
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}

	err := g.Wait()
	debug.Info("Stopped after %d ticks", loop.Ticks())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
