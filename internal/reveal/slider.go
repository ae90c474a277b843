// Package reveal holds the state machine behind the before/after comparison
// slider: a single reveal position in [0, 100] written by handle drags and by
// a range control, plus the pure layout math used to render it.
package reveal

import (
	"math"

	"github.com/nicky-ayoub/ebitreveal/internal/event"
)

const (
	MinPosition     = 0.0
	MaxPosition     = 100.0
	DefaultPosition = 50.0
)

// RevealState is the local state of one mounted slider.
type RevealState struct {
	// Position is the percentage of the container width over which the
	// after image is shown.
	Position float64
	Dragging bool
}

// Rect is the bounding rectangle of the slider container in screen pixels.
type Rect struct {
	Left, Top     float64
	Width, Height float64
}

// Clamp restricts v to [MinPosition, MaxPosition].
func Clamp(v float64) float64 {
	if v < MinPosition {
		return MinPosition
	}
	if v > MaxPosition {
		return MaxPosition
	}
	return v
}

// PositionForX converts a screen x coordinate into a clamped reveal position
// relative to bounds. It returns false when bounds has no width.
func PositionForX(x float64, bounds Rect) (float64, bool) {
	if bounds.Width <= 0 || math.IsNaN(x) {
		return 0, false
	}
	raw := (x - bounds.Left) / bounds.Width * 100
	return Clamp(raw), true
}

// Option configures a Slider at mount time.
type Option func(*Slider)

// WithOnPositionChange registers a callback invoked after every change of
// the reveal position.
func WithOnPositionChange(fn func(position float64)) Option {
	return func(s *Slider) {
		s.onChange = fn
	}
}

// WithInitialPosition overrides the mount position. The value is clamped.
func WithInitialPosition(v float64) Option {
	return func(s *Slider) {
		if !math.IsNaN(v) {
			s.state.Position = Clamp(v)
		}
	}
}

// Slider owns the reveal state of one comparison. It is driven from a single
// goroutine (the UI update loop) and is not safe for concurrent use.
type Slider struct {
	doc      *event.Document
	state    RevealState
	bounds   Rect
	source   event.Source
	onChange func(float64)
	handles  []event.Handle
	mounted  bool
}

// NewSlider mounts a slider in the Idle state at the midpoint.
func NewSlider(doc *event.Document, opts ...Option) *Slider {
	s := &Slider{
		doc:     doc,
		state:   RevealState{Position: DefaultPosition},
		mounted: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of the current reveal state.
func (s *Slider) State() RevealState {
	return s.state
}

// Position returns the current reveal position.
func (s *Slider) Position() float64 {
	return s.state.Position
}

// Dragging reports whether a drag session is active.
func (s *Slider) Dragging() bool {
	return s.state.Dragging
}

// Source returns the device that started the current or last drag session.
func (s *Slider) Source() event.Source {
	return s.source
}

// Mounted reports whether Unmount has not been called yet.
func (s *Slider) Mounted() bool {
	return s.mounted
}

// Bounds returns the container rectangle used for coordinate mapping.
func (s *Slider) Bounds() Rect {
	return s.bounds
}

// SetBounds updates the container rectangle. The layout pass calls it every
// frame so moves are always mapped against the current geometry.
func (s *Slider) SetBounds(r Rect) {
	s.bounds = r
}

// SetPosition is the only writer of the reveal position. Both the drag path
// and the range path go through it.
func (s *Slider) SetPosition(v float64) {
	if !s.mounted || math.IsNaN(v) {
		return
	}
	v = Clamp(v)
	if v == s.state.Position {
		return
	}
	s.state.Position = v
	if s.onChange != nil {
		s.onChange(v)
	}
}

// SetFromRange applies a value coming from the range control. It never
// starts or stops a drag session.
func (s *Slider) SetFromRange(v float64) {
	s.SetPosition(v)
}

// StartDrag enters the Dragging state and attaches the document listeners
// for moves and releases of both mice and touches. The position is left
// untouched until the first move. It returns false when a session is
// already active or the slider is unmounted.
func (s *Slider) StartDrag(src event.Source) bool {
	if !s.mounted || s.state.Dragging {
		return false
	}
	s.state.Dragging = true
	s.source = src
	s.handles = append(s.handles,
		s.doc.Add(event.MouseMove, s.handleMove),
		s.doc.Add(event.TouchMove, s.handleMove),
		s.doc.Add(event.MouseUp, s.handleEnd),
		s.doc.Add(event.TouchEnd, s.handleEnd),
	)
	return true
}

// EndDrag leaves the Dragging state and detaches the document listeners.
func (s *Slider) EndDrag() {
	if !s.state.Dragging {
		return
	}
	s.state.Dragging = false
	s.detach()
}

// Unmount detaches every listener and freezes the slider. Any later call is
// a no-op.
func (s *Slider) Unmount() {
	if !s.mounted {
		return
	}
	s.detach()
	s.state.Dragging = false
	s.mounted = false
	s.onChange = nil
}

func (s *Slider) handleMove(ev event.Event) {
	if !s.state.Dragging {
		return
	}
	if pos, ok := PositionForX(ev.X, s.bounds); ok {
		s.SetPosition(pos)
	}
}

func (s *Slider) handleEnd(event.Event) {
	s.EndDrag()
}

func (s *Slider) detach() {
	for _, h := range s.handles {
		s.doc.Remove(h)
	}
	s.handles = nil
}
