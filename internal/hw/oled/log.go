package oled

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/cjeanneret/JoyPanel/internal/debug"
	"github.com/cjeanneret/JoyPanel/internal/ui"
)

// Log is the transport used without a panel. It counts flushes and can
// print every frame as text.
type Log struct {
	w       io.Writer // nil: count only
	flushes atomic.Uint64
}

// NewLog returns a Log transport. Frames are printed to w when it is not nil.
func NewLog(w io.Writer) *Log {
	debug.Info("Using MOCK display (no panel)")
	return &Log{w: w}
}

func (l *Log) Flush(f *ui.Frame) error {
	n := l.flushes.Add(1)
	debug.Trace("OLED (mock): flush %d", n)
	if l.w == nil {
		return nil
	}
	_, err := fmt.Fprintf(l.w, "frame %d\n%s", n, ASCII(f))
	return err
}

// Flushes returns the number of frames received.
func (l *Log) Flushes() uint64 {
	return l.flushes.Load()
}

func (l *Log) Close() error {
	return nil
}

// ASCII renders f with '#' for lit pixels, one text line per row.
func ASCII(f *ui.Frame) string {
	var b strings.Builder
	b.Grow((ui.Width + 1) * ui.Height)
	for y := 0; y < ui.Height; y++ {
		for x := 0; x < ui.Width; x++ {
			if f.On(x, y) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
