//go:build rp2040

package pico

import (
	"machine"

	"tinygo.org/x/drivers/ssd1306"

	"github.com/cjeanneret/JoyPanel/internal/ui"
)

// Display is the on-board SSD1306 on I2C1.
type Display struct {
	dev *ssd1306.Device
}

func OpenDisplay() (*Display, error) {
	if err := machine.I2C1.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       SDAPin,
		SCL:       SCLPin,
	}); err != nil {
		return nil, err
	}
	dev := ssd1306.NewI2C(machine.I2C1)
	dev.Configure(ssd1306.Config{
		Width:    ui.Width,
		Height:   ui.Height,
		Address:  DisplayAddress,
		VccState: ssd1306.SWITCHCAPVCC,
	})
	dev.ClearDisplay()
	return &Display{dev: &dev}, nil
}

func (d *Display) Flush(f *ui.Frame) error {
	return f.DrawTo(d.dev)
}
