package debounce

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cjeanneret/JoyPanel/internal/logic/state"
)

// recordingLED records confirmation LED writes for verification.
type recordingLED struct {
	writes []bool
	err    error
}

func (l *recordingLED) SetConfirm(on bool) error {
	l.writes = append(l.writes, on)
	return l.err
}

const us = time.Microsecond

func TestDetector_WindowSequence(t *testing.T) {
	ctl := state.New()
	d := NewDetector(ctl, nil)

	start := 5 * time.Second
	edges := []struct {
		at   time.Duration
		want bool
	}{
		{start, true},
		{start + 1*us, false},
		{start + Window - 1*us, false},
		{start + Window + 1*us, true},
	}

	accepted := 0
	for i, e := range edges {
		got := d.OnRawEdge(ToggleButton, e.at)
		if got != e.want {
			t.Errorf("edge %d at %v: accepted=%v, want %v", i, e.at, got, e.want)
		}
		if got {
			accepted++
		}
	}
	if accepted != 2 {
		t.Errorf("accepted %d edges, want 2", accepted)
	}
	if acc, disc := d.Stats(ToggleButton); acc != 2 || disc != 2 {
		t.Errorf("Stats = (%d, %d), want (2, 2)", acc, disc)
	}
	// two accepted toggles bring the outputs back on
	if !ctl.OutputsEnabled() {
		t.Error("outputs should be enabled after two accepted toggles")
	}
}

func TestDetector_WindowMeasuredFromAcceptedEdge(t *testing.T) {
	d := NewDetector(state.New(), nil)

	// A held button bouncing every 50ms: the window is measured from the last
	// accepted edge, so discarded edges do not extend it.
	var accepted []time.Duration
	for at := time.Duration(0); at <= time.Second; at += 50 * time.Millisecond {
		if d.OnRawEdge(StyleButton, at) {
			accepted = append(accepted, at)
		}
	}
	want := []time.Duration{0, 200 * time.Millisecond, 400 * time.Millisecond, 600 * time.Millisecond, 800 * time.Millisecond, time.Second}
	if len(accepted) != len(want) {
		t.Fatalf("accepted %v, want %v", accepted, want)
	}
	for i := range want {
		if accepted[i] != want[i] {
			t.Errorf("accepted[%d] = %v, want %v", i, accepted[i], want[i])
		}
	}
}

func TestDetector_ExactWindowAccepted(t *testing.T) {
	d := NewDetector(state.New(), nil)
	d.OnRawEdge(ToggleButton, time.Second)
	if !d.OnRawEdge(ToggleButton, time.Second+Window) {
		t.Error("an edge exactly one window later should be accepted")
	}
}

func TestDetector_FirstEdgeAlwaysAccepted(t *testing.T) {
	d := NewDetector(state.New(), nil)
	if !d.OnRawEdge(StyleButton, 0) {
		t.Error("first edge at t=0 should be accepted")
	}
}

func TestDetector_ButtonsAreIndependent(t *testing.T) {
	ctl := state.New()
	d := NewDetector(ctl, nil)

	at := 3 * time.Second
	if !d.OnRawEdge(StyleButton, at) {
		t.Error("style edge should be accepted")
	}
	if !d.OnRawEdge(ToggleButton, at+1*us) {
		t.Error("toggle edge inside the style window should still be accepted")
	}
	s := ctl.Snapshot()
	if s.Border != state.Dotted || !s.IndicatorOn || s.OutputsEnabled {
		t.Errorf("snapshot = %+v, want dotted/indicator on/outputs off", s)
	}
}

func TestDetector_BorderCycleWithInterleavedToggles(t *testing.T) {
	ctl := state.New()
	d := NewDetector(ctl, nil)

	want := []state.BorderStyle{state.Dotted, state.Double, state.Solid, state.Dotted}
	at := time.Second
	for i, w := range want {
		d.OnRawEdge(ToggleButton, at)
		d.OnRawEdge(ToggleButton, at+10*us) // bounce, discarded
		d.OnRawEdge(StyleButton, at+20*us)
		if got := ctl.Border(); got != w {
			t.Fatalf("press %d: border = %v, want %v", i+1, got, w)
		}
		at += 2 * Window
	}
}

func TestDetector_ThreePressesFullCycle(t *testing.T) {
	ctl := state.New()
	d := NewDetector(ctl, nil)
	for i := 0; i < 3; i++ {
		d.OnRawEdge(StyleButton, time.Duration(i)*time.Second)
	}
	if ctl.Border() != state.Solid {
		t.Errorf("border = %v after 3 presses, want solid", ctl.Border())
	}
	if !ctl.IndicatorOn() {
		t.Error("indicator should be on after an odd number of presses")
	}
}

func TestDetector_ConfirmLED(t *testing.T) {
	led := &recordingLED{}
	d := NewDetector(state.New(), led)

	d.OnRawEdge(StyleButton, 0)
	d.OnRawEdge(StyleButton, 1*us) // discarded
	d.OnRawEdge(ToggleButton, 2*us)
	d.OnRawEdge(StyleButton, Window)

	want := []bool{true, false}
	if len(led.writes) != len(want) {
		t.Fatalf("LED writes = %v, want %v", led.writes, want)
	}
	for i := range want {
		if led.writes[i] != want[i] {
			t.Errorf("LED write %d = %v, want %v", i, led.writes[i], want[i])
		}
	}
}

func TestDetector_ConfirmLEDErrorCounted(t *testing.T) {
	led := &recordingLED{err: errors.New("pin fault")}
	ctl := state.New()
	d := NewDetector(ctl, led)

	if !d.OnRawEdge(StyleButton, 0) {
		t.Fatal("edge should be accepted even if the LED write fails")
	}
	if d.LEDErrors() != 1 {
		t.Errorf("LEDErrors = %d, want 1", d.LEDErrors())
	}
	if ctl.Border() != state.Dotted {
		t.Error("state transition must not depend on the LED write")
	}
}

func TestDetector_UnknownButtonIgnored(t *testing.T) {
	ctl := state.New()
	d := NewDetector(ctl, nil)
	if d.OnRawEdge(Button(9), 0) || d.OnRawEdge(Button(-1), 0) {
		t.Error("unknown buttons must not be accepted")
	}
	if ctl.Snapshot() != state.New().Snapshot() {
		t.Error("unknown button changed the state")
	}
	if acc, disc := d.Stats(Button(9)); acc != 0 || disc != 0 {
		t.Errorf("Stats(unknown) = (%d, %d), want zeros", acc, disc)
	}
}

// Many goroutines hammering the same button with the same timestamp must
// produce exactly one accepted edge.
func TestDetector_ConcurrentEdgesSingleAccept(t *testing.T) {
	ctl := state.New()
	d := NewDetector(ctl, nil)

	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if d.OnRawEdge(ToggleButton, time.Second) {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("accepted %d concurrent edges, want 1", wins.Load())
	}
	if ctl.OutputsEnabled() {
		t.Error("exactly one toggle should have been applied")
	}
}

func TestButton_String(t *testing.T) {
	if StyleButton.String() != "style" || ToggleButton.String() != "toggle" || Button(5).String() != "unknown" {
		t.Error("unexpected button names")
	}
}
