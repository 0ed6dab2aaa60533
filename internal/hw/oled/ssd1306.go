package oled

import (
	"errors"
	"fmt"
	"image"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"

	"github.com/cjeanneret/JoyPanel/internal/debug"
	"github.com/cjeanneret/JoyPanel/internal/ui"
)

// DefaultAddress is the usual I2C address of SSD1306 modules.
const DefaultAddress = 0x3C

// SSD1306 flushes frames to a 128x64 SSD1306 panel over I2C using periph.io.
type SSD1306 struct {
	bus i2c.BusCloser
	dev *ssd1306.Dev
}

// addressedBus pins every transaction to one device address. The periph
// driver always talks to 0x3C; modules strapped to 0x3D need the rewrite.
type addressedBus struct {
	i2c.Bus
	addr uint16
}

func (b addressedBus) Tx(_ uint16, w, r []byte) error {
	return b.Bus.Tx(b.addr, w, r)
}

// OpenSSD1306 initializes the host drivers, opens the named I2C bus ("" for
// the first one found) and resets the panel.
func OpenSSD1306(busName string, addr uint16) (*SSD1306, error) {
	debug.Verbose("OLED: host init")
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}

	d, err := newSSD1306(bus, addr)
	if err != nil {
		_ = bus.Close()
		return nil, err
	}
	debug.Info("OLED: SSD1306 on %s at 0x%02X", bus, addr)
	return d, nil
}

func newSSD1306(bus i2c.BusCloser, addr uint16) (*SSD1306, error) {
	if addr == 0 {
		addr = DefaultAddress
	}
	opts := ssd1306.DefaultOpts
	opts.W, opts.H = ui.Width, ui.Height

	dev, err := ssd1306.NewI2C(addressedBus{Bus: bus, addr: addr}, &opts)
	if err != nil {
		return nil, fmt.Errorf("ssd1306 init: %w", err)
	}
	return &SSD1306{bus: bus, dev: dev}, nil
}

// Flush writes the whole frame to the panel.
func (d *SSD1306) Flush(f *ui.Frame) error {
	return d.dev.Draw(f.Bounds(), f.Image(), image.Point{})
}

// Close blanks the panel and releases the bus.
func (d *SSD1306) Close() error {
	debug.Verbose("OLED: halt")
	return errors.Join(d.dev.Halt(), d.bus.Close())
}
