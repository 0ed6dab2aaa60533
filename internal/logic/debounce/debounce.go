package debounce

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/cjeanneret/JoyPanel/internal/logic/state"
)

// Window is the minimum time between two accepted edges on the same button.
const Window = 200 * time.Millisecond

// Button identifies one of the two monitored push buttons.
type Button int

const (
	StyleButton  Button = iota // cycles the border and toggles the confirmation indicator
	ToggleButton               // enables/disables output driving

	buttonCount
)

func (b Button) String() string {
	switch b {
	case StyleButton:
		return "style"
	case ToggleButton:
		return "toggle"
	default:
		return "unknown"
	}
}

// ConfirmLED is the discrete output that mirrors the indicator state.
type ConfirmLED interface {
	SetConfirm(on bool) error
}

const neverAccepted = math.MinInt64

// Detector filters raw falling edges into accepted presses and applies the
// matching transition to the shared state. OnRawEdge may be called from any
// goroutine, including several at once; it never blocks and never allocates.
type Detector struct {
	ctl     *state.Control
	confirm ConfirmLED

	last      [buttonCount]atomic.Int64 // timestamp of the last accepted edge
	accepted  [buttonCount]atomic.Uint64
	discarded [buttonCount]atomic.Uint64
	ledErrors atomic.Uint64
}

// NewDetector creates a detector mutating ctl. confirm may be nil.
func NewDetector(ctl *state.Control, confirm ConfirmLED) *Detector {
	d := &Detector{ctl: ctl, confirm: confirm}
	for i := range d.last {
		d.last[i].Store(neverAccepted)
	}
	return d
}

// OnRawEdge handles one electrical falling edge on button b seen at the
// monotonic timestamp at. It reports whether the edge was accepted.
func (d *Detector) OnRawEdge(b Button, at time.Duration) bool {
	if b < 0 || b >= buttonCount {
		return false
	}

	last := d.last[b].Load()
	if last != neverAccepted && at-time.Duration(last) < Window {
		d.discarded[b].Add(1)
		return false
	}
	// A concurrent edge on the same button may have been accepted between the
	// load and here; only one of them wins the window.
	if !d.last[b].CompareAndSwap(last, int64(at)) {
		d.discarded[b].Add(1)
		return false
	}
	d.accepted[b].Add(1)

	switch b {
	case StyleButton:
		on := d.ctl.ToggleIndicator()
		d.ctl.CycleBorder()
		if d.confirm != nil {
			if err := d.confirm.SetConfirm(on); err != nil {
				d.ledErrors.Add(1)
			}
		}
	case ToggleButton:
		d.ctl.ToggleOutputs()
	}
	return true
}

// Stats reports how many edges on b were accepted and discarded so far.
func (d *Detector) Stats(b Button) (accepted, discarded uint64) {
	if b < 0 || b >= buttonCount {
		return 0, 0
	}
	return d.accepted[b].Load(), d.discarded[b].Load()
}

// LEDErrors reports how many confirmation LED writes failed.
func (d *Detector) LEDErrors() uint64 {
	return d.ledErrors.Load()
}
