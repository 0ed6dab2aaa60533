package state

import "sync/atomic"

// BorderStyle selects how the display border is drawn.
type BorderStyle uint32

const (
	Solid BorderStyle = iota
	Dotted
	Double

	borderStyles = 3
)

func (b BorderStyle) String() string {
	switch b {
	case Solid:
		return "solid"
	case Dotted:
		return "dotted"
	case Double:
		return "double"
	default:
		return "unknown"
	}
}

// Next returns the style that follows b in the Solid -> Dotted -> Double cycle.
func (b BorderStyle) Next() BorderStyle {
	return (b + 1) % borderStyles
}

// Control is the state shared between the asynchronous edge handler and the
// control loop. Every field is accessed atomically and independently: a
// reader may see a fresh value of one field next to a value of another field
// that is one edge older, and nothing depends on them being consistent.
type Control struct {
	outputsEnabled atomic.Bool
	border         atomic.Uint32
	indicatorOn    atomic.Bool
}

// Snapshot is a copy of Control taken with one atomic load per field.
type Snapshot struct {
	OutputsEnabled bool        `json:"outputs_enabled"`
	Border         BorderStyle `json:"border"`
	IndicatorOn    bool        `json:"indicator_on"`
}

// New returns the state in its power-on defaults: outputs enabled, solid
// border, indicator off.
func New() *Control {
	c := &Control{}
	c.outputsEnabled.Store(true)
	c.border.Store(uint32(Solid))
	return c
}

// OutputsEnabled reports whether the outputs should be driven.
func (c *Control) OutputsEnabled() bool {
	return c.outputsEnabled.Load()
}

// Border returns the current border style.
func (c *Control) Border() BorderStyle {
	return BorderStyle(c.border.Load())
}

// IndicatorOn reports the confirmation indicator state.
func (c *Control) IndicatorOn() bool {
	return c.indicatorOn.Load()
}

// ToggleOutputs flips the output enable flag and returns the new value.
func (c *Control) ToggleOutputs() bool {
	return toggle(&c.outputsEnabled)
}

// ToggleIndicator flips the indicator and returns the new value.
func (c *Control) ToggleIndicator() bool {
	return toggle(&c.indicatorOn)
}

// CycleBorder advances the border style and returns the new style.
func (c *Control) CycleBorder() BorderStyle {
	for {
		old := c.border.Load()
		next := uint32(BorderStyle(old).Next())
		if c.border.CompareAndSwap(old, next) {
			return BorderStyle(next)
		}
	}
}

// Snapshot reads each field once. The result has no cross-field consistency
// guarantee.
func (c *Control) Snapshot() Snapshot {
	return Snapshot{
		OutputsEnabled: c.OutputsEnabled(),
		Border:         c.Border(),
		IndicatorOn:    c.IndicatorOn(),
	}
}

func toggle(b *atomic.Bool) bool {
	for {
		old := b.Load()
		if b.CompareAndSwap(old, !old) {
			return !old
		}
	}
}
