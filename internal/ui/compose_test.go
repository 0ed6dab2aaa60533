package ui

import (
	"bytes"
	"image/color"
	"strconv"
	"testing"

	"tinygo.org/x/tinyfont"

	"github.com/cjeanneret/JoyPanel/internal/logic/axis"
	"github.com/cjeanneret/JoyPanel/internal/logic/state"
)

func baseStatus() Status {
	return Status{
		State:  state.New().Snapshot(),
		Sample: axis.CenterSample,
	}
}

func TestCompose_Idempotent(t *testing.T) {
	st := Status{
		State:     state.Snapshot{OutputsEnabled: true, Border: state.Double, IndicatorOn: true},
		Sample:    axis.Sample{X: 1000, Y: 3000},
		LevelX:    1867,
		LevelY:    1688,
		StyleDown: true,
	}

	a := Render(st)
	b := Render(st)
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatal("two renders of the same status differ")
	}

	// composing over a dirty frame must not leave anything behind
	dirty := NewFrame()
	dirty.FillRect(0, 0, Width-1, Height-1)
	Compose(dirty, st)
	if !bytes.Equal(a.Bytes(), dirty.Bytes()) {
		t.Error("compose over a dirty frame differs from a fresh render")
	}
}

func TestCompose_DifferentStatusDifferentFrame(t *testing.T) {
	base := baseStatus()
	moved := base
	moved.Sample = axis.Sample{X: 0, Y: 4095}
	moved.LevelX, moved.LevelY = 4095, 4095

	if bytes.Equal(Render(base).Bytes(), Render(moved).Bytes()) {
		t.Error("moving the stick should change the frame")
	}
}

// rawBand is the first value line (raw samples) of one column.
type rawBand struct {
	x0, x1 int
	textX  int
}

var (
	rawBandX = rawBand{x0: borderX0 + 1, x1: xColumnEnd - 1, textX: 8}
	rawBandY = rawBand{x0: xColumnEnd + 1, x1: yColumnEnd - 1, textX: xColumnEnd + 4}
)

const rawBandY0, rawBandY1 = labelDivider + 1, 50

func bandEqual(a, b *Frame, band rawBand) bool {
	for y := rawBandY0; y <= rawBandY1; y++ {
		for x := band.x0; x <= band.x1; x++ {
			if a.On(x, y) != b.On(x, y) {
				return false
			}
		}
	}
	return true
}

func TestCompose_ValueBandShowsRawSamples(t *testing.T) {
	tests := []struct {
		name   string
		sample axis.Sample
	}{
		{"center", axis.CenterSample},
		{"extremes", axis.Sample{X: 0, Y: 4095}},
		{"mixed", axis.Sample{X: 1234, Y: 987}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := baseStatus()
			st.Sample = tt.sample
			// levels deliberately unrelated to the sample
			st.LevelX, st.LevelY = 7, 4000
			f := Render(st)

			for _, c := range []struct {
				band rawBand
				raw  int
			}{
				{rawBandX, tt.sample.X},
				{rawBandY, tt.sample.Y},
			} {
				want := NewFrame()
				tinyfont.WriteLine(want, font, int16(c.band.textX), 48, strconv.Itoa(c.raw), ink)
				if !bandEqual(f, want, c.band) {
					t.Errorf("value band at x=%d should show raw %d", c.band.x0, c.raw)
				}
			}
		})
	}
}

func TestCompose_LevelsDoNotChangeRawLine(t *testing.T) {
	base := baseStatus()
	base.LevelX, base.LevelY = 0, 0
	driven := base
	driven.LevelX, driven.LevelY = 4095, 1234

	a, b := Render(base), Render(driven)
	if !bandEqual(a, b, rawBandX) || !bandEqual(a, b, rawBandY) {
		t.Error("changing only the levels must leave the raw sample line untouched")
	}
	if bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("changing the levels should change the level line")
	}
}

func TestCompose_SampleOnlyChangesFrame(t *testing.T) {
	base := baseStatus()
	moved := base
	moved.Sample = axis.Sample{X: 100, Y: 3900}

	a, b := Render(base), Render(moved)
	if bandEqual(a, b, rawBandX) || bandEqual(a, b, rawBandY) {
		t.Error("changing only the sample should change the raw sample line")
	}
}

func TestCompose_BorderStyles(t *testing.T) {
	tests := []struct {
		name  string
		style state.BorderStyle
		on    [][2]int
		off   [][2]int
	}{
		{
			name:  "solid",
			style: state.Solid,
			on:    [][2]int{{3, 3}, {4, 3}, {124, 62}, {3, 20}, {124, 20}},
			off:   [][2]int{{5, 20}, {2, 2}},
		},
		{
			name:  "dotted",
			style: state.Dotted,
			on:    [][2]int{{3, 3}, {5, 3}, {3, 5}, {123, 62}, {124, 3}, {3, 62}, {124, 62}},
			off:   [][2]int{{4, 3}, {3, 4}, {4, 62}, {5, 20}},
		},
		{
			name:  "double",
			style: state.Double,
			on:    [][2]int{{3, 3}, {4, 3}, {5, 5}, {5, 20}, {122, 60}},
			off:   [][2]int{{4, 20}, {6, 20}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := baseStatus()
			st.State.Border = tt.style
			f := Render(st)
			for _, p := range tt.on {
				if !f.On(p[0], p[1]) {
					t.Errorf("pixel (%d,%d) should be on", p[0], p[1])
				}
			}
			for _, p := range tt.off {
				if f.On(p[0], p[1]) {
					t.Errorf("pixel (%d,%d) should be off", p[0], p[1])
				}
			}
		})
	}
}

func TestCompose_Dividers(t *testing.T) {
	f := Render(baseStatus())
	for _, p := range [][2]int{{60, headerDivider}, {60, labelDivider}, {xColumnEnd, 50}, {yColumnEnd, 50}} {
		if !f.On(p[0], p[1]) {
			t.Errorf("divider pixel (%d,%d) should be on", p[0], p[1])
		}
	}
	// vertical dividers only split the value band
	if f.On(xColumnEnd, headerDivider+1) {
		t.Error("X/Y divider should not cross the label band")
	}
}

func TestCompose_Glyphs(t *testing.T) {
	st := baseStatus()
	st.StyleDown = true

	f := Render(st)
	mid := glyphSize / 2
	if !f.On(styleGlyphX+mid, glyphY+mid) {
		t.Error("pressed glyph should be filled")
	}
	if f.On(toggleGlyphX+mid, glyphY+mid) {
		t.Error("released glyph should be hollow")
	}
	if !f.On(toggleGlyphX, glyphY) || !f.On(toggleGlyphX+glyphSize-1, glyphY+glyphSize-1) {
		t.Error("released glyph should still have an outline")
	}
}

func TestCompose_DrawsText(t *testing.T) {
	f := Render(baseStatus())

	lit := 0
	for y := 6; y < headerDivider; y++ {
		for x := 8; x < 120; x++ {
			if f.On(x, y) {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("header band should contain text")
	}
}

func TestCompose_ValuesDrawnRegardlessOfOutputs(t *testing.T) {
	on := baseStatus()
	on.Sample = axis.Sample{X: 0, Y: 0}
	on.LevelX, on.LevelY = 4095, 4095
	off := on
	off.State.OutputsEnabled = false

	// the enable flag is not part of the layout; levels are always shown
	if !bytes.Equal(Render(on).Bytes(), Render(off).Bytes()) {
		t.Error("output enable flag should not change the frame")
	}
}

func TestFrame_Pixels(t *testing.T) {
	f := NewFrame()
	if len(f.Bytes()) != Width*Height/8 {
		t.Fatalf("buffer size = %d, want %d", len(f.Bytes()), Width*Height/8)
	}

	f.Set(10, 20, true)
	if !f.On(10, 20) {
		t.Error("pixel should be on")
	}
	f.SetPixel(10, 20, color.RGBA{})
	if f.On(10, 20) {
		t.Error("black SetPixel should clear the pixel")
	}
	f.SetPixel(1, 1, color.RGBA{R: 1})
	if !f.On(1, 1) {
		t.Error("non-black SetPixel should light the pixel")
	}

	// ignored, must not panic
	f.Set(-1, 0, true)
	f.Set(Width, Height, true)

	if w, h := f.Size(); w != Width || h != Height {
		t.Errorf("Size() = %d,%d", w, h)
	}
	if err := f.Display(); err != nil {
		t.Errorf("Display: %v", err)
	}

	f.Clear()
	for _, b := range f.Bytes() {
		if b != 0 {
			t.Fatal("Clear left pixels on")
		}
	}
}

func TestFrame_CopyFrom(t *testing.T) {
	src := Render(baseStatus())
	dst := NewFrame()
	dst.CopyFrom(src)
	if !bytes.Equal(src.Bytes(), dst.Bytes()) {
		t.Error("CopyFrom should duplicate the buffer")
	}
}

func TestFrame_DrawTo(t *testing.T) {
	src := Render(baseStatus())
	dst := NewFrame()
	dst.FillRect(0, 0, Width-1, Height-1)
	if err := src.DrawTo(dst); err != nil {
		t.Fatalf("DrawTo: %v", err)
	}
	if !bytes.Equal(src.Bytes(), dst.Bytes()) {
		t.Error("DrawTo should overwrite every pixel of the target")
	}
}
