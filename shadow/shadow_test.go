package shadow

import (
	"errors"
	"testing"
)

func TestViewExpiresAtPassEnd(t *testing.T) {
	var p Publisher
	v := p.Begin(0.5, 0, 10)

	begin, end, err := v.Bounds()
	if err != nil || begin != 0 || end != 10 {
		t.Fatalf("expected bounds [0,10), got [%d,%d) err=%v", begin, end, err)
	}

	p.End()

	if _, _, err := v.Bounds(); !errors.Is(err, ErrStale) {
		t.Errorf("expected ErrStale from Bounds, got %v", err)
	}
	if _, err := v.TimeStep(); !errors.Is(err, ErrStale) {
		t.Errorf("expected ErrStale from TimeStep, got %v", err)
	}
	if _, err := v.InLoop(); !errors.Is(err, ErrStale) {
		t.Errorf("expected ErrStale from InLoop, got %v", err)
	}
}

func TestViewsAreIsolatedBetweenPasses(t *testing.T) {
	var p Publisher
	first := p.Begin(0.1, 0, 5)
	p.SetBounds(0, 8)
	firstEnd := func() int {
		_, end, _ := first.Bounds()
		return end
	}()

	second := p.Begin(0.2, 0, 3)

	if first.Valid() {
		t.Error("starting a pass must expire the previous view")
	}
	dt, err := second.TimeStep()
	if err != nil || dt != 0.2 {
		t.Errorf("expected dt 0.2 for second pass, got %f err=%v", dt, err)
	}
	n, _ := second.Pass()
	if n != 2 {
		t.Errorf("expected pass number 2, got %d", n)
	}
	if firstEnd != 8 {
		t.Errorf("expected republished end 8 in first pass, got %d", firstEnd)
	}
}

func TestLoopAndRecordingFlags(t *testing.T) {
	var p Publisher
	p.SetRecording(true)
	if !p.Recording() {
		t.Error("expected recording flag set")
	}
	p.SetRecording(false)
	v := p.Begin(1, 0, 0)

	p.SetLoop(true)
	if in, _ := v.InLoop(); !in || !p.InLoop() {
		t.Error("expected loop flag set")
	}
	p.End()
	if p.InLoop() || p.InPass() {
		t.Error("flags must clear at pass end")
	}

	var nilView *View
	if nilView.Valid() {
		t.Error("nil view must be invalid")
	}
}
