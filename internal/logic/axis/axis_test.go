package axis

import (
	"errors"
	"testing"
)

func TestMapLevel_Range(t *testing.T) {
	for raw := 0; raw <= MaxRaw; raw++ {
		got := MapLevel(raw)
		if got < 0 || got > MaxRaw {
			t.Fatalf("MapLevel(%d) = %d, out of [0, %d]", raw, got, MaxRaw)
		}
	}
}

func TestMapLevel_MonotonicInDistance(t *testing.T) {
	// Walk outward from Center on both sides and require that the level never
	// decreases as the distance grows, whichever side the sample is on.
	best := 0
	for d := 0; d <= Center; d++ {
		var levels []int
		if Center-d >= 0 {
			levels = append(levels, MapLevel(Center-d))
		}
		if Center+d <= MaxRaw {
			levels = append(levels, MapLevel(Center+d))
		}
		lo := levels[0]
		for _, l := range levels {
			if l < lo {
				lo = l
			}
		}
		if lo < best {
			t.Fatalf("distance %d: level %d below level %d seen at a smaller distance", d, lo, best)
		}
		for _, l := range levels {
			if l > best {
				best = l
			}
		}
	}
}

func TestMapLevel_Deadzone(t *testing.T) {
	if got := MapLevel(Center); got != 0 {
		t.Errorf("MapLevel(Center) = %d, want 0", got)
	}
	for raw := Center - Deadzone + 1; raw < Center+Deadzone; raw++ {
		if got := MapLevel(raw); got != 0 {
			t.Fatalf("MapLevel(%d) = %d inside the deadzone, want 0", raw, got)
		}
	}
	if got := MapLevel(Center + Deadzone + 10); got == 0 {
		t.Error("level just outside the deadzone should be non-zero")
	}
}

func TestMapLevel_ExtremesSaturate(t *testing.T) {
	cases := []struct {
		name string
		raw  int
	}{
		{"low_rail", 0},
		{"high_rail", MaxRaw},
		{"below_range", -100},
		{"above_range", MaxRaw + 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MapLevel(tc.raw); got != MaxRaw {
				t.Errorf("MapLevel(%d) = %d, want %d", tc.raw, got, MaxRaw)
			}
		})
	}
}

func TestMapLevel_KnownValues(t *testing.T) {
	// Below Center: travel = 2048, span = 2048-210 = 1838.
	// raw 1000: diff 1048 -> round(838*4095/1838) = round(1867.04) = 1867
	// Above Center: travel = 2047, span = 1837.
	// raw 3000: diff 952 -> round(742*4095/1837) = round(1654.05) = 1654
	cases := []struct {
		raw  int
		want int
	}{
		{0, 4095},
		{Center, 0},
		{Center - Deadzone, 0},
		{1000, 1867},
		{3000, 1654},
		{MaxRaw, MaxRaw},
	}
	for _, tc := range cases {
		if got := MapLevel(tc.raw); got != tc.want {
			t.Errorf("MapLevel(%d) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestMapper_ZeroDeadzone(t *testing.T) {
	m := Mapper{Deadzone: 0}
	if got := m.Map(Center); got != 0 {
		t.Errorf("Map(Center) = %d, want 0", got)
	}
	if got := m.Map(Center + 1); got == 0 {
		t.Error("with no deadzone the first step off center should be non-zero")
	}
	if got := m.Map(0); got != MaxRaw {
		t.Errorf("Map(0) = %d, want %d", got, MaxRaw)
	}
}

func TestLegacy_Map(t *testing.T) {
	l := Legacy{}
	cases := []struct {
		raw  int
		want int
	}{
		{Center, 0},
		{Center + 100, 200},
		{Center - 100, 200},
		{MaxRaw, 4094},
		{0, 0}, // diff 2048 > Center-1: degraded curve drops to zero on the low rail
	}
	for _, tc := range cases {
		if got := l.Map(tc.raw); got != tc.want {
			t.Errorf("Legacy.Map(%d) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestNewMapper(t *testing.T) {
	c, err := NewMapper(Deadzone, false)
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	if _, ok := c.(Mapper); !ok {
		t.Errorf("NewMapper(%d, false) = %T, want Mapper", Deadzone, c)
	}

	c, err = NewMapper(0, true)
	if err != nil {
		t.Fatalf("NewMapper legacy: %v", err)
	}
	if _, ok := c.(Legacy); !ok {
		t.Errorf("NewMapper(0, true) = %T, want Legacy", c)
	}

	if _, err := NewMapper(Deadzone, true); !errors.Is(err, ErrLegacyDeadzone) {
		t.Errorf("legacy with deadzone: err = %v, want ErrLegacyDeadzone", err)
	}
	for _, dz := range []int{-1, MaxRaw - Center, 5000} {
		if _, err := NewMapper(dz, false); err == nil {
			t.Errorf("NewMapper(%d) should fail", dz)
		}
	}
}

func TestLevels(t *testing.T) {
	x, y := Levels(Mapper{Deadzone: Deadzone}, CenterSample)
	if x != 0 || y != 0 {
		t.Errorf("Levels(center) = (%d, %d), want (0, 0)", x, y)
	}
	x, y = Levels(Mapper{Deadzone: Deadzone}, Sample{X: 0, Y: MaxRaw})
	if x != MaxRaw || y != MaxRaw {
		t.Errorf("Levels(rails) = (%d, %d), want (%d, %d)", x, y, MaxRaw, MaxRaw)
	}
}

func TestClamp(t *testing.T) {
	cases := []struct{ in, want int }{
		{-1, 0}, {0, 0}, {2048, 2048}, {MaxRaw, MaxRaw}, {MaxRaw + 1, MaxRaw},
	}
	for _, tc := range cases {
		if got := Clamp(tc.in); got != tc.want {
			t.Errorf("Clamp(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
