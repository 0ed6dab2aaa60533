package adc

import (
	"fmt"

	"github.com/cjeanneret/JoyPanel/internal/debug"
)

// SPI is a full-duplex SPI transfer: buf is sent and overwritten with the reply.
type SPI interface {
	Exchange(buf []byte)
}

// MCP3208 is a Source for a Microchip MCP3208 12-bit converter on SPI,
// the joystick axes wired to two of its single-ended inputs:
// - CH<x>: joystick X potentiometer wiper
// - CH<y>: joystick Y potentiometer wiper
//
// Conversion frame (3 bytes, single-ended):
// 1. 0000 011D2  start bit, single-ended, channel bit 2
// 2. D1D0xx xxxx channel bits 1..0
// 3. don't care
// Reply: low nibble of byte 2 and all of byte 3 carry the 12-bit result.
type MCP3208 struct {
	spi      SPI
	channels [2]uint8
	buf      [3]byte
}

// NewMCP3208 creates a converter reader.
// xChannel and yChannel are the converter inputs (0-7) of the X and Y axes.
func NewMCP3208(spi SPI, xChannel, yChannel uint8) (*MCP3208, error) {
	if xChannel > 7 || yChannel > 7 {
		return nil, fmt.Errorf("mcp3208 channels must be 0-7, got x=%d y=%d", xChannel, yChannel)
	}
	return &MCP3208{
		spi:      spi,
		channels: [2]uint8{xChannel, yChannel},
	}, nil
}

// ReadAxis performs one conversion on the input wired to ch.
// Not safe for concurrent use; the control loop is its only caller.
func (m *MCP3208) ReadAxis(ch Channel) (int, error) {
	if ch != X && ch != Y {
		return 0, fmt.Errorf("read %v: unknown channel", ch)
	}
	in := m.channels[ch]

	m.buf[0] = 0x06 | (in>>2)&0x01
	m.buf[1] = (in & 0x03) << 6
	m.buf[2] = 0x00
	m.spi.Exchange(m.buf[:])

	raw := int(m.buf[1]&0x0F)<<8 | int(m.buf[2])
	debug.Trace("ADC: %v (CH%d) = %d", ch, in, raw)
	return raw, nil
}
