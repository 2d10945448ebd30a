package selector

import (
	"image"
	"testing"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(1920, 1080)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s
}

func TestNewSessionRejectsBadDimensions(t *testing.T) {
	cases := []struct {
		name          string
		width, height int
	}{
		{"zero width", 0, 1080},
		{"zero height", 1920, 0},
		{"negative width", -1, 1080},
		{"negative height", 1920, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewSession(tc.width, tc.height); err == nil {
				t.Errorf("expected error for %dx%d", tc.width, tc.height)
			}
		})
	}
}

func TestDragForwardConfirms(t *testing.T) {
	s := newTestSession(t)
	s.Press(image.Pt(10, 10))
	s.Move(image.Pt(100, 80))
	s.Release(image.Pt(200, 150))

	out, done := s.Outcome()
	if !done {
		t.Fatal("session should be done after release")
	}
	if out.Cancelled {
		t.Fatal("expected confirmed outcome")
	}
	want := image.Rect(10, 10, 200, 150)
	if out.Rect != want {
		t.Errorf("expected %v, got %v", want, out.Rect)
	}
}

func TestDragReverseYieldsSameRect(t *testing.T) {
	// Dragging from (200,150) to (10,10) must bound the same pixels as the
	// forward drag.
	s := newTestSession(t)
	s.Press(image.Pt(200, 150))
	s.Release(image.Pt(10, 10))

	out, done := s.Outcome()
	if !done || out.Cancelled {
		t.Fatalf("expected confirmed outcome, got done=%v cancelled=%v", done, out.Cancelled)
	}
	want := image.Rect(10, 10, 200, 150)
	if out.Rect != want {
		t.Errorf("expected %v, got %v", want, out.Rect)
	}
}

func TestNormalizeIsCommutative(t *testing.T) {
	pairs := []struct{ a, b image.Point }{
		{image.Pt(0, 0), image.Pt(5, 5)},
		{image.Pt(10, 200), image.Pt(300, 20)},
		{image.Pt(7, 7), image.Pt(7, 7)},
		{image.Pt(100, 0), image.Pt(0, 100)},
	}
	for _, p := range pairs {
		ab := Normalize(p.a, p.b)
		ba := Normalize(p.b, p.a)
		if ab != ba {
			t.Errorf("Normalize(%v,%v)=%v but Normalize(%v,%v)=%v", p.a, p.b, ab, p.b, p.a, ba)
		}
		if ab.Min.X > ab.Max.X || ab.Min.Y > ab.Max.Y {
			t.Errorf("Normalize(%v,%v)=%v is not normalized", p.a, p.b, ab)
		}
	}
}

func TestEscapeCancelsFromIdle(t *testing.T) {
	s := newTestSession(t)
	s.Escape()

	out, done := s.Outcome()
	if !done {
		t.Fatal("session should be done after escape")
	}
	if !out.Cancelled {
		t.Error("expected cancelled outcome")
	}
}

func TestEscapeCancelsMidDrag(t *testing.T) {
	s := newTestSession(t)
	s.Press(image.Pt(50, 50))
	for i := 0; i < 20; i++ {
		s.Move(image.Pt(50+i*10, 50+i*5))
	}
	s.Escape()

	out, done := s.Outcome()
	if !done || !out.Cancelled {
		t.Fatalf("expected cancelled outcome regardless of prior drag updates, got done=%v outcome=%+v", done, out)
	}
	// A release after the session ended must not resurrect it.
	s.Release(image.Pt(400, 400))
	out, _ = s.Outcome()
	if !out.Cancelled {
		t.Error("release after escape changed the stored outcome")
	}
}

func TestClickWithoutDragIsCancelled(t *testing.T) {
	s := newTestSession(t)
	s.Press(image.Pt(300, 300))
	s.Release(image.Pt(300, 300))

	out, done := s.Outcome()
	if !done {
		t.Fatal("session should be done after release")
	}
	if !out.Cancelled {
		t.Error("zero-area selection must be reported as cancelled, not confirmed")
	}
}

func TestZeroWidthAndZeroHeightAreCancelled(t *testing.T) {
	cases := []struct {
		name           string
		press, release image.Point
	}{
		{"zero width", image.Pt(40, 10), image.Pt(40, 90)},
		{"zero height", image.Pt(10, 40), image.Pt(90, 40)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestSession(t)
			s.Press(tc.press)
			s.Release(tc.release)
			out, done := s.Outcome()
			if !done || !out.Cancelled {
				t.Errorf("expected cancelled, got done=%v outcome=%+v", done, out)
			}
		})
	}
}

func TestPointsClampedToBounds(t *testing.T) {
	s := newTestSession(t)
	s.Press(image.Pt(-50, -20))
	live, ok := s.Move(image.Pt(5000, 3000))
	if !ok {
		t.Fatal("expected live rect while dragging")
	}
	if !live.In(s.Bounds()) {
		t.Errorf("live rect %v exceeds bounds %v", live, s.Bounds())
	}
	s.Release(image.Pt(5000, 3000))

	out, done := s.Outcome()
	if !done || out.Cancelled {
		t.Fatalf("expected confirmed outcome, got done=%v outcome=%+v", done, out)
	}
	if out.Rect != image.Rect(0, 0, 1920, 1080) {
		t.Errorf("expected full-screen rect, got %v", out.Rect)
	}
}

func TestStateTransitions(t *testing.T) {
	s := newTestSession(t)
	if s.State() != StateIdle {
		t.Fatalf("new session state = %v, want idle", s.State())
	}

	// Stray move/release before any press must not change state.
	if _, ok := s.Move(image.Pt(10, 10)); ok {
		t.Error("Move before Press reported a live rect")
	}
	s.Release(image.Pt(10, 10))
	if s.State() != StateIdle {
		t.Fatalf("state after stray release = %v, want idle", s.State())
	}

	s.Press(image.Pt(10, 10))
	if s.State() != StateDragging {
		t.Fatalf("state after press = %v, want dragging", s.State())
	}

	// A second press mid-drag is ignored; the anchor stays put.
	s.Press(image.Pt(500, 500))
	s.Release(image.Pt(20, 20))
	out, _ := s.Outcome()
	if out.Cancelled || out.Rect != image.Rect(10, 10, 20, 20) {
		t.Errorf("second press moved the anchor: %+v", out)
	}
	if s.State() != StateDone {
		t.Fatalf("state after release = %v, want done", s.State())
	}
}

func TestLiveRectTracksPointer(t *testing.T) {
	s := newTestSession(t)
	s.Press(image.Pt(100, 100))
	live, ok := s.Move(image.Pt(60, 160))
	if !ok {
		t.Fatal("expected live rect")
	}
	if live != image.Rect(60, 100, 100, 160) {
		t.Errorf("live rect = %v", live)
	}
	if s.Done() {
		t.Error("Move must not terminate the session")
	}
}

func TestOutcomeUnavailableBeforeDone(t *testing.T) {
	s := newTestSession(t)
	if _, done := s.Outcome(); done {
		t.Error("outcome reported before session finished")
	}
	s.Press(image.Pt(1, 1))
	if _, done := s.Outcome(); done {
		t.Error("outcome reported mid-drag")
	}
}
