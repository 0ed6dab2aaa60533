package web

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"

	"github.com/cjeanneret/JoyPanel/internal/logic/control"
	"github.com/cjeanneret/JoyPanel/internal/logic/debounce"
	"github.com/cjeanneret/JoyPanel/internal/logic/state"
	"github.com/cjeanneret/JoyPanel/internal/ui"
)

// MaxScale bounds the upscaling of GET /frame.png.
const MaxScale = 8

// EdgeStats exposes the debounce counters.
type EdgeStats interface {
	Stats(b debounce.Button) (accepted, discarded uint64)
	LEDErrors() uint64
}

// ButtonStats is the debounce result for one button.
type ButtonStats struct {
	Accepted  uint64 `json:"accepted"`
	Discarded uint64 `json:"discarded"`
}

// Status is the JSON document served on GET /state.
type Status struct {
	State   state.Snapshot         `json:"state"`
	Last    *control.TickReport    `json:"last,omitempty"`
	Buttons map[string]ButtonStats `json:"buttons,omitempty"`
	// failed confirmation LED writes
	ConfirmErrors uint64 `json:"confirm_errors"`
	Fault         string `json:"fault,omitempty"`
}

// Mirror keeps a read-only copy of what the panel shows. It sits between the
// control loop and the real transport and never changes the control state.
type Mirror struct {
	b     *Broadcaster
	ctl   *state.Control
	edges EdgeStats
	every uint64

	mu     sync.RWMutex
	frame  *ui.Frame
	last   *control.TickReport
	fault  string
	frames uint64
}

// NewMirror creates a mirror of ctl. edges may be nil. Tick reports are
// broadcast every `every` ticks (0 or 1: all of them).
func NewMirror(b *Broadcaster, ctl *state.Control, edges EdgeStats, every uint64) *Mirror {
	if every == 0 {
		every = 1
	}
	return &Mirror{
		b:     b,
		ctl:   ctl,
		edges: edges,
		every: every,
		frame: ui.NewFrame(),
	}
}

// Tee returns a transport that records every frame before passing it on to next.
func (m *Mirror) Tee(next control.Transport) control.Transport {
	return &teeTransport{m: m, next: next}
}

type teeTransport struct {
	m    *Mirror
	next control.Transport
}

func (t *teeTransport) Flush(f *ui.Frame) error {
	t.m.mu.Lock()
	t.m.frame.CopyFrom(f)
	t.m.frames++
	t.m.mu.Unlock()

	if err := t.next.Flush(f); err != nil {
		t.m.Fault(err)
		return err
	}
	return nil
}

// Observe records a tick report. It has the signature expected by
// control.WithObserver.
func (m *Mirror) Observe(r control.TickReport) {
	m.mu.Lock()
	m.last = &r
	m.mu.Unlock()

	if r.Tick%m.every == 0 {
		m.b.Tick(r)
	}
}

// Fault records a fatal error and pushes it to the clients.
func (m *Mirror) Fault(err error) {
	m.mu.Lock()
	m.fault = err.Error()
	m.mu.Unlock()
	m.b.Fault(err)
}

// Frames returns the number of frames seen.
func (m *Mirror) Frames() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frames
}

// Status returns the live control state with the last tick and the counters.
func (m *Mirror) Status() Status {
	st := Status{State: m.ctl.Snapshot()}

	m.mu.RLock()
	if m.last != nil {
		last := *m.last
		st.Last = &last
	}
	st.Fault = m.fault
	m.mu.RUnlock()

	if m.edges != nil {
		st.Buttons = make(map[string]ButtonStats, 2)
		for _, b := range []debounce.Button{debounce.StyleButton, debounce.ToggleButton} {
			acc, dis := m.edges.Stats(b)
			st.Buttons[b.String()] = ButtonStats{Accepted: acc, Discarded: dis}
		}
		st.ConfirmErrors = m.edges.LEDErrors()
	}
	return st
}

// WritePNG encodes the last frame, each panel pixel drawn as a scale x scale square.
func (m *Mirror) WritePNG(w io.Writer, scale int) error {
	if scale < 1 || scale > MaxScale {
		return fmt.Errorf("scale must be between 1 and %d, got %d", MaxScale, scale)
	}

	img := image.NewGray(image.Rect(0, 0, ui.Width*scale, ui.Height*scale))
	m.mu.RLock()
	for y := 0; y < ui.Height; y++ {
		for x := 0; x < ui.Width; x++ {
			if !m.frame.On(x, y) {
				continue
			}
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.SetGray(x*scale+dx, y*scale+dy, color.Gray{Y: 0xFF})
				}
			}
		}
	}
	m.mu.RUnlock()

	return png.Encode(w, img)
}
