//go:build !tinygo

package adc

import (
	"fmt"

	"github.com/cjeanneret/JoyPanel/internal/debug"
	"github.com/stianeikeland/go-rpio/v4"
)

// RPiSPI is the SPI0 controller of a Raspberry Pi driven through go-rpio.
// The GPIO driver must already be open (rpio.Open).
type RPiSPI struct{}

// OpenRPiSPI claims SPI0 with the given chip select and clock speed.
func OpenRPiSPI(chipSelect uint8, speedHz int) (*RPiSPI, error) {
	debug.Info("Initializing SPI0 (go-rpio), CE%d at %d Hz", chipSelect, speedHz)
	if err := rpio.SpiBegin(rpio.Spi0); err != nil {
		return nil, fmt.Errorf("begin spi0: %w", err)
	}
	rpio.SpiSpeed(speedHz)
	rpio.SpiChipSelect(chipSelect)
	return &RPiSPI{}, nil
}

func (s *RPiSPI) Exchange(buf []byte) {
	rpio.SpiExchange(buf)
}

// Close releases SPI0 and returns its pins to inputs.
func (s *RPiSPI) Close() error {
	debug.Trace("SPI0 Close")
	rpio.SpiEnd(rpio.Spi0)
	return nil
}
