package axis

import (
	"errors"
	"fmt"
)

// Reference 12-bit analog range.
const (
	MaxRaw   = 4095         // full-scale raw sample and full-scale output level
	Center   = MaxRaw/2 + 1 // resting position of the stick (2048)
	Deadzone = 210          // raw distance from Center treated as "no input"
)

// ErrLegacyDeadzone is returned when the legacy curve is requested with a non-zero deadzone.
var ErrLegacyDeadzone = errors.New("legacy curve requires a zero deadzone")

// Sample is one pair of raw axis readings captured in a single tick.
type Sample struct {
	X int
	Y int
}

// CenterSample is the resting position of both axes.
var CenterSample = Sample{X: Center, Y: Center}

// Curve turns a raw axis sample into an output intensity in [0, MaxRaw].
type Curve interface {
	Map(raw int) int
}

// Mapper is the deadzone-aware curve: zero output inside the deadzone, then
// linear up to MaxRaw at either extreme. The deadzone is removed from the
// useful range by re-normalizing the scale, not by clipping.
type Mapper struct {
	Deadzone int
}

// Legacy is the early clamp-and-double curve. Degraded mode: it has no
// deadzone, its scale stops at 2*(Center-1) and it drops to zero when the
// axis hits the low rail.
type Legacy struct{}

// NewMapper returns the curve for the given deadzone. legacy selects the
// degraded curve, which is only accepted with deadzone 0.
func NewMapper(deadzone int, legacy bool) (Curve, error) {
	if deadzone < 0 || deadzone >= MaxRaw-Center {
		return nil, fmt.Errorf("deadzone must be between 0 and %d, got %d", MaxRaw-Center-1, deadzone)
	}
	if legacy {
		if deadzone != 0 {
			return nil, ErrLegacyDeadzone
		}
		return Legacy{}, nil
	}
	return Mapper{Deadzone: deadzone}, nil
}

// MapLevel maps raw with the reference deadzone.
func MapLevel(raw int) int {
	return Mapper{Deadzone: Deadzone}.Map(raw)
}

// Map returns round((diff-deadzone) * MaxRaw / (travel-deadzone)), capped at
// MaxRaw, where diff is the distance of the clamped sample from Center and
// travel is the distance from Center to the rail on that side (Center below,
// MaxRaw-Center above), so both rails saturate. Above Center this departs
// from a single Center-deadzone denominator by at most 2 counts.
func (m Mapper) Map(raw int) int {
	raw = Clamp(raw)
	diff := distance(raw)
	if diff < m.Deadzone {
		return 0
	}
	travel := Center
	if raw > Center {
		travel = MaxRaw - Center
	}
	den := travel - m.Deadzone
	if den <= 0 {
		return MaxRaw
	}
	num := (diff - m.Deadzone) * MaxRaw
	// round half up, all terms are non-negative
	level := (2*num + den) / (2 * den)
	if level > MaxRaw {
		return MaxRaw
	}
	return level
}

// Map returns diff*2, or 0 once diff exceeds Center-1.
func (Legacy) Map(raw int) int {
	diff := distance(raw)
	if diff > Center-1 {
		return 0
	}
	level := diff * 2
	if level > MaxRaw {
		return MaxRaw
	}
	return level
}

// Levels maps both axes of a sample with c.
func Levels(c Curve, s Sample) (x, y int) {
	return c.Map(s.X), c.Map(s.Y)
}

// Clamp limits raw to [0, MaxRaw].
func Clamp(raw int) int {
	if raw < 0 {
		return 0
	}
	if raw > MaxRaw {
		return MaxRaw
	}
	return raw
}

func distance(raw int) int {
	d := Clamp(raw) - Center
	if d < 0 {
		return -d
	}
	return d
}
