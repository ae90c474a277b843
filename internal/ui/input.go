package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/nicky-ayoub/ebitreveal/internal/event"
)

// TouchState is the per-frame state of one touch point.
type TouchState struct {
	ID       ebiten.TouchID
	X, Y     int
	Pressed  bool // touch started this frame
	Released bool // touch ended this frame
	Moved    bool
}

// InputState holds the polled state of inputs for a single frame.
// This separates input polling from input handling logic.
type InputState struct {
	Quit             bool
	ToggleFullscreen bool
	ToggleStrip      bool
	ToggleInfo       bool
	NextProject      bool
	PrevProject      bool
	NextTag          bool
	ClearFilter      bool
	NudgeLeft        bool
	NudgeRight       bool
	DeleteProject    bool

	// Mouse state
	MouseX, MouseY int
	MousePressed   bool // Left mouse button just pressed
	MouseHeld      bool // Left mouse button is being held down
	MouseReleased  bool // Left mouse button just released
	MouseMoved     bool

	Touches []TouchState
}

// Touch returns the state of touch id, if it is present this frame.
func (in InputState) Touch(id ebiten.TouchID) (TouchState, bool) {
	for _, t := range in.Touches {
		if t.ID == id {
			return t, true
		}
	}
	return TouchState{}, false
}

// InputPoller turns Ebitengine's polled input into InputState values. It
// remembers the last positions so moves can be reported as events.
type InputPoller struct {
	lastX, lastY int
	touches      map[ebiten.TouchID][2]int

	touchIDs []ebiten.TouchID
}

// NewInputPoller creates a poller.
func NewInputPoller() *InputPoller {
	return &InputPoller{touches: make(map[ebiten.TouchID][2]int)}
}

// Poll gathers all raw input events for the current frame.
func (p *InputPoller) Poll() InputState {
	mx, my := ebiten.CursorPosition()
	in := InputState{
		Quit:             inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape),
		ToggleFullscreen: inpututil.IsKeyJustPressed(ebiten.KeyF11),
		ToggleStrip:      inpututil.IsKeyJustPressed(ebiten.KeyT),
		ToggleInfo:       inpututil.IsKeyJustPressed(ebiten.KeyI),
		NextProject:      inpututil.IsKeyJustPressed(ebiten.KeyRight),
		PrevProject:      inpututil.IsKeyJustPressed(ebiten.KeyLeft),
		NextTag:          inpututil.IsKeyJustPressed(ebiten.KeyG),
		ClearFilter:      inpututil.IsKeyJustPressed(ebiten.KeyC),
		NudgeLeft:        inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft),
		NudgeRight:       inpututil.IsKeyJustPressed(ebiten.KeyBracketRight),
		DeleteProject:    inpututil.IsKeyJustPressed(ebiten.KeyDelete),

		MouseX:        mx,
		MouseY:        my,
		MousePressed:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		MouseHeld:     ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		MouseReleased: inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft),
		MouseMoved:    mx != p.lastX || my != p.lastY,
	}
	p.lastX, p.lastY = mx, my

	p.touchIDs = ebiten.AppendTouchIDs(p.touchIDs[:0])
	for _, id := range p.touchIDs {
		x, y := ebiten.TouchPosition(id)
		last, known := p.touches[id]
		in.Touches = append(in.Touches, TouchState{
			ID:      id,
			X:       x,
			Y:       y,
			Pressed: !known,
			Moved:   known && (last[0] != x || last[1] != y),
		})
		p.touches[id] = [2]int{x, y}
	}

	p.touchIDs = inpututil.AppendJustReleasedTouchIDs(p.touchIDs[:0])
	for _, id := range p.touchIDs {
		x, y := inpututil.TouchPositionInPreviousTick(id)
		in.Touches = append(in.Touches, TouchState{ID: id, X: x, Y: y, Released: true})
		delete(p.touches, id)
	}
	return in
}

// DispatchMoves forwards the frame's pointer moves to the document,
// whatever widget the pointer is over.
func DispatchMoves(doc *event.Document, in InputState) {
	if in.MouseMoved {
		doc.Dispatch(event.Event{Kind: event.MouseMove, X: float64(in.MouseX), Y: float64(in.MouseY)})
	}
	for _, t := range in.Touches {
		if t.Moved {
			doc.Dispatch(event.Event{Kind: event.TouchMove, X: float64(t.X), Y: float64(t.Y), TouchID: int(t.ID)})
		}
	}
}

// DispatchReleases forwards the frame's button and touch releases.
func DispatchReleases(doc *event.Document, in InputState) {
	if in.MouseReleased {
		doc.Dispatch(event.Event{Kind: event.MouseUp, X: float64(in.MouseX), Y: float64(in.MouseY)})
	}
	for _, t := range in.Touches {
		if t.Released {
			doc.Dispatch(event.Event{Kind: event.TouchEnd, X: float64(t.X), Y: float64(t.Y), TouchID: int(t.ID)})
		}
	}
}
