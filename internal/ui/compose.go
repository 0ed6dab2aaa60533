package ui

import (
	"image/color"
	"strconv"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"github.com/cjeanneret/JoyPanel/internal/logic/axis"
	"github.com/cjeanneret/JoyPanel/internal/logic/state"
)

// Status is everything one frame is built from.
type Status struct {
	State  state.Snapshot
	Sample axis.Sample // raw joystick values
	LevelX int         // mapped level driven on Red
	LevelY int         // mapped level driven on Blue

	// Live pin state of the buttons, read just before composing. Not debounced.
	StyleDown  bool
	ToggleDown bool
}

// Layout, in panel coordinates.
const (
	borderX0 = 3
	borderY0 = 3
	borderX1 = Width - 4
	borderY1 = Height - 2

	doubleInset = 2

	headerDivider = 25 // header band above, label band below
	labelDivider  = 37 // label band above, value band below
	xColumnEnd    = 44
	yColumnEnd    = 84

	glyphSize    = 7
	styleGlyphX  = 92
	toggleGlyphX = 108
	glyphY       = 45
)

const (
	titleText  = "JOYPANEL"
	headerText = "ADC  BUTTONS"
	labelText  = "X     Y     PB"
)

var (
	font = &proggy.TinySZ8pt7b
	ink  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Render composes st into a new frame.
func Render(st Status) *Frame {
	f := NewFrame()
	Compose(f, st)
	return f
}

// Compose rebuilds dst from scratch. It depends on nothing but st: the same
// Status always yields the same bytes.
func Compose(dst *Frame, st Status) {
	dst.Clear()

	drawBorder(dst, st.State.Border, borderX0, borderY0, borderX1, borderY1)

	dst.HLine(borderX0, borderX1, headerDivider)
	dst.HLine(borderX0, borderX1, labelDivider)
	dst.VLine(xColumnEnd, labelDivider, borderY1)
	dst.VLine(yColumnEnd, labelDivider, borderY1)

	text(dst, 8, 13, titleText)
	text(dst, 8, 23, headerText)
	text(dst, 8, 35, labelText)

	text(dst, 8, 48, strconv.Itoa(st.Sample.X))
	text(dst, xColumnEnd+4, 48, strconv.Itoa(st.Sample.Y))
	text(dst, 8, 59, "R"+strconv.Itoa(st.LevelX))
	text(dst, xColumnEnd+4, 59, "B"+strconv.Itoa(st.LevelY))

	glyph(dst, styleGlyphX, glyphY, st.StyleDown)
	glyph(dst, toggleGlyphX, glyphY, st.ToggleDown)
}

// drawBorder outlines (x0, y0)-(x1, y1) in the given style.
func drawBorder(dst *Frame, style state.BorderStyle, x0, y0, x1, y1 int) {
	switch style {
	case state.Dotted:
		for x := x0; x <= x1; x += 2 {
			dst.Set(x, y0, true)
			dst.Set(x, y1, true)
		}
		for y := y0; y <= y1; y += 2 {
			dst.Set(x0, y, true)
			dst.Set(x1, y, true)
		}
		// the stride may skip the far edges
		dst.Set(x1, y0, true)
		dst.Set(x0, y1, true)
		dst.Set(x1, y1, true)
	case state.Double:
		dst.Rect(x0, y0, x1, y1)
		ix0, iy0 := x0+doubleInset, y0+doubleInset
		ix1, iy1 := x1-doubleInset, y1-doubleInset
		if ix1-ix0 > 4 && iy1-iy0 > 4 {
			dst.Rect(ix0, iy0, ix1, iy1)
		}
	default:
		dst.Rect(x0, y0, x1, y1)
	}
}

// glyph draws a glyphSize square at (x, y): filled when on, hollow otherwise.
func glyph(dst *Frame, x, y int, on bool) {
	x1, y1 := x+glyphSize-1, y+glyphSize-1
	if on {
		dst.FillRect(x, y, x1, y1)
		return
	}
	dst.Rect(x, y, x1, y1)
}

// text draws s with its baseline at y.
func text(dst *Frame, x, y int, s string) {
	tinyfont.WriteLine(dst, font, int16(x), int16(y), s, ink)
}
