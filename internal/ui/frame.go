package ui

import (
	"image"
	"image/color"

	"periph.io/x/devices/v3/ssd1306/image1bit"
	"tinygo.org/x/drivers"
)

// Panel geometry in pixels.
const (
	Width  = 128
	Height = 64
)

// Frame is a one-bit pixel buffer laid out the way the SSD1306 expects it:
// eight vertically stacked pixels per byte, one page of Width bytes per
// eight rows. It can be drawn into by tinyfont (drivers.Displayer) and read
// back as an image.Image.
type Frame struct {
	img *image1bit.VerticalLSB
}

var _ drivers.Displayer = (*Frame)(nil)
var _ image.Image = (*Frame)(nil)

// NewFrame returns a blank frame.
func NewFrame() *Frame {
	return &Frame{img: image1bit.NewVerticalLSB(image.Rect(0, 0, Width, Height))}
}

// Clear switches every pixel off.
func (f *Frame) Clear() {
	clear(f.img.Pix)
}

// Set switches the pixel at (x, y). Out-of-bounds coordinates are ignored.
func (f *Frame) Set(x, y int, on bool) {
	if !image.Pt(x, y).In(f.img.Rect) {
		return
	}
	f.img.SetBit(x, y, image1bit.Bit(on))
}

// On reports whether the pixel at (x, y) is lit.
func (f *Frame) On(x, y int) bool {
	return bool(f.img.BitAt(x, y))
}

// Bytes returns the raw page buffer (Width*Height/8 bytes). The slice aliases
// the frame.
func (f *Frame) Bytes() []byte {
	return f.img.Pix
}

// Image returns the underlying buffer, as accepted by ssd1306.Dev.Draw.
func (f *Frame) Image() *image1bit.VerticalLSB {
	return f.img
}

// CopyFrom overwrites f with the content of src.
func (f *Frame) CopyFrom(src *Frame) {
	copy(f.img.Pix, src.img.Pix)
}

// DrawTo writes every pixel of f to d, lit or not, then calls d.Display.
func (f *Frame) DrawTo(d drivers.Displayer) error {
	on := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	off := color.RGBA{A: 0xFF}
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			c := off
			if f.On(x, y) {
				c = on
			}
			d.SetPixel(int16(x), int16(y), c)
		}
	}
	return d.Display()
}

func (f *Frame) ColorModel() color.Model { return f.img.ColorModel() }
func (f *Frame) Bounds() image.Rectangle { return f.img.Bounds() }
func (f *Frame) At(x, y int) color.Color { return f.img.At(x, y) }

// Size implements drivers.Displayer.
func (f *Frame) Size() (x, y int16) {
	return Width, Height
}

// SetPixel implements drivers.Displayer. Any non-black color lights the pixel.
func (f *Frame) SetPixel(x, y int16, c color.RGBA) {
	f.Set(int(x), int(y), c.R|c.G|c.B != 0)
}

// Display implements drivers.Displayer. A Frame is only a buffer; pushing it
// to a panel is the transport's job.
func (f *Frame) Display() error {
	return nil
}

// HLine draws a horizontal line from x0 to x1 inclusive.
func (f *Frame) HLine(x0, x1, y int) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	for x := x0; x <= x1; x++ {
		f.Set(x, y, true)
	}
}

// VLine draws a vertical line from y0 to y1 inclusive.
func (f *Frame) VLine(x, y0, y1 int) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		f.Set(x, y, true)
	}
}

// Rect draws the outline of the rectangle with corners (x0, y0) and (x1, y1).
func (f *Frame) Rect(x0, y0, x1, y1 int) {
	f.HLine(x0, x1, y0)
	f.HLine(x0, x1, y1)
	f.VLine(x0, y0, y1)
	f.VLine(x1, y0, y1)
}

// FillRect lights every pixel of the rectangle with corners (x0, y0) and (x1, y1).
func (f *Frame) FillRect(x0, y0, x1, y1 int) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		f.HLine(x0, x1, y)
	}
}
