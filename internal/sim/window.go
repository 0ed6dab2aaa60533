//go:build !tinygo

package sim

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/cjeanneret/JoyPanel/internal/hw/adc"
	"github.com/cjeanneret/JoyPanel/internal/logic/axis"
	"github.com/cjeanneret/JoyPanel/internal/logic/debounce"
	"github.com/cjeanneret/JoyPanel/internal/ui"
)

// Window geometry.
const (
	Scale       = 4
	panelWidth  = ui.Width * Scale
	panelHeight = ui.Height * Scale
	stripHeight = 72
	ledRadius   = 18
)

var (
	pixelOn  = color.RGBA{R: 0x9f, G: 0xe8, B: 0xff, A: 0xff}
	pixelOff = color.RGBA{R: 0x05, G: 0x08, B: 0x10, A: 0xff}
	ledOff   = color.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff}
)

// RunWindow opens the simulator window and blocks until it is closed or ctx
// is cancelled. Ebiten needs the main goroutine: the control loop must run
// elsewhere.
//
// Controls: hold the left mouse button to drag the stick (it springs back to
// center on release), J is the style button, K the toggle button.
func RunWindow(ctx context.Context, b *Board, title string) error {
	g := &game{ctx: ctx, b: b, frame: ui.NewFrame()}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(panelWidth, panelHeight+stripHeight)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type game struct {
	ctx   context.Context
	b     *Board
	frame *ui.Frame
	img   *image.RGBA
	fbImg *ebiten.Image
}

func (g *game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}

	g.key(ebiten.KeyJ, debounce.StyleButton)
	g.key(ebiten.KeyK, debounce.ToggleButton)

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		// screen Y grows downwards, the stick's Y grows upwards
		g.b.Stick(norm(x, panelWidth), -norm(y, panelHeight))
	} else {
		g.b.Set(adc.X, axis.Center)
		g.b.Set(adc.Y, axis.Center)
	}
	return nil
}

func (g *game) key(k ebiten.Key, btn debounce.Button) {
	if inpututil.IsKeyJustPressed(k) {
		g.b.Press(btn)
	}
	if inpututil.IsKeyJustReleased(k) {
		g.b.Release(btn)
	}
}

// norm maps a coordinate in [0, size) to [-1, 1].
func norm(v, size int) float64 {
	return float64(2*v-size) / float64(size)
}

func (g *game) Draw(screen *ebiten.Image) {
	n := g.b.Snapshot(g.frame)

	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, ui.Width, ui.Height))
		g.fbImg = ebiten.NewImage(ui.Width, ui.Height)
	}
	for y := 0; y < ui.Height; y++ {
		for x := 0; x < ui.Width; x++ {
			c := pixelOff
			if g.frame.On(x, y) {
				c = pixelOn
			}
			g.img.SetRGBA(x, y, c)
		}
	}
	g.fbImg.WritePixels(g.img.Pix)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(Scale, Scale)
	screen.DrawImage(g.fbImg, op)

	red, blue, confirm := g.b.Outputs()
	cy := float32(panelHeight + stripHeight/2)
	vector.DrawFilledCircle(screen, 60, cy, ledRadius, dim(color.RGBA{R: 0xff, A: 0xff}, red), true)
	vector.DrawFilledCircle(screen, 140, cy, ledRadius, dim(color.RGBA{B: 0xff, A: 0xff}, blue), true)
	confirmColor := ledOff
	if confirm {
		confirmColor = color.RGBA{G: 0xff, A: 0xff}
	}
	vector.DrawFilledCircle(screen, 220, cy, ledRadius/2, confirmColor, true)

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("R %4d  B %4d  frame %d", red, blue, n), 260, panelHeight+12)
	ebitenutil.DebugPrintAt(screen, "drag: stick  J: style  K: outputs", 260, panelHeight+36)
}

// dim scales full by level/MaxRaw over the unlit LED color.
func dim(full color.RGBA, level int) color.RGBA {
	mix := func(on, off uint8) uint8 {
		return uint8(int(off) + (int(on)-int(off))*level/axis.MaxRaw)
	}
	return color.RGBA{
		R: mix(full.R, ledOff.R),
		G: mix(full.G, ledOff.G),
		B: mix(full.B, ledOff.B),
		A: 0xff,
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return panelWidth, panelHeight + stripHeight
}
