// Package selector implements the modal drag-selection state machine used by
// the screen overlay. It is deliberately display-free: the platform overlay
// feeds pointer and keyboard events into a Session and reads back one Outcome,
// which makes the whole interaction testable with synthetic events.
package selector

import (
	"fmt"
	"image"
)

// State identifies where a selection session is in its lifecycle.
type State int

const (
	// StateIdle means no pointer button is down yet.
	StateIdle State = iota
	// StateDragging means the anchor is set and the rectangle follows the pointer.
	StateDragging
	// StateDone means the session produced its outcome. Terminal.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome is the single result of a selection session: either a confirmed
// normalized rectangle or a cancellation.
type Outcome struct {
	Rect      image.Rectangle
	Cancelled bool
}

// Session runs one modal selection over a captured screen image.
//
// Exactly one outcome is produced per session. Events arriving after the
// session reaches StateDone are ignored, as are stray Move/Release events
// before any Press.
type Session struct {
	bounds  image.Rectangle
	state   State
	anchor  image.Point
	current image.Point
	outcome Outcome
}

// NewSession creates a session over a screen image of the given pixel size.
// Dimensions must be positive; anything else is a caller bug surfaced as an
// error so the overlay can abort before showing anything.
func NewSession(width, height int) (*Session, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid screen dimensions %dx%d", width, height)
	}
	return &Session{bounds: image.Rect(0, 0, width, height)}, nil
}

// Bounds returns the screen bounds the session clamps against.
func (s *Session) Bounds() image.Rectangle { return s.bounds }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Done reports whether the session has produced its outcome.
func (s *Session) Done() bool { return s.state == StateDone }

// Outcome returns the session result. The second return is false until the
// session is done.
func (s *Session) Outcome() (Outcome, bool) {
	if s.state != StateDone {
		return Outcome{}, false
	}
	return s.outcome, true
}

// Press starts a drag at p. Ignored unless the session is idle.
func (s *Session) Press(p image.Point) {
	if s.state != StateIdle {
		return
	}
	p = clamp(p, s.bounds)
	s.anchor = p
	s.current = p
	s.state = StateDragging
}

// Move updates the live rectangle while dragging. The returned rectangle is
// feedback for the overlay only, never a result; ok is false when the session
// is not dragging.
func (s *Session) Move(p image.Point) (live image.Rectangle, ok bool) {
	if s.state != StateDragging {
		return image.Rectangle{}, false
	}
	s.current = clamp(p, s.bounds)
	return Normalize(s.anchor, s.current), true
}

// Release finishes the drag at p. A zero-width or zero-height rectangle (a
// click without a drag) is demoted to a cancellation: a zero-area crop is
// never useful downstream.
func (s *Session) Release(p image.Point) {
	if s.state != StateDragging {
		return
	}
	rect := Normalize(s.anchor, clamp(p, s.bounds))
	if rect.Dx() == 0 || rect.Dy() == 0 {
		s.outcome = Outcome{Cancelled: true}
	} else {
		s.outcome = Outcome{Rect: rect}
	}
	s.state = StateDone
}

// Escape cancels the session from either idle or dragging, discarding any
// in-progress drag.
func (s *Session) Escape() {
	if s.state == StateDone {
		return
	}
	s.outcome = Outcome{Cancelled: true}
	s.state = StateDone
}

// Normalize returns the rectangle spanned by two corner points, regardless of
// drag direction.
func Normalize(a, b image.Point) image.Rectangle {
	return image.Rect(a.X, a.Y, b.X, b.Y)
}

// clamp restricts p to the inclusive range [Min, Max] of bounds. Max is a
// valid coordinate here: a drag released at the far screen edge selects up to
// that edge.
func clamp(p image.Point, bounds image.Rectangle) image.Point {
	if p.X < bounds.Min.X {
		p.X = bounds.Min.X
	}
	if p.X > bounds.Max.X {
		p.X = bounds.Max.X
	}
	if p.Y < bounds.Min.Y {
		p.Y = bounds.Min.Y
	}
	if p.Y > bounds.Max.Y {
		p.Y = bounds.Max.Y
	}
	return p
}
