package ui

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nicky-ayoub/ebitreveal/internal/event"
	"github.com/nicky-ayoub/ebitreveal/internal/reveal"
)

var testProps = reveal.Props{BeforeURL: "before.jpg", AfterURL: "after.jpg", Title: "Hall"}

// newTestComparison lays the widget out in a 1032x800 desktop viewport,
// which gives a container from x=16 to x=1016 (1000px wide).
func newTestComparison(t *testing.T) (*Comparison, *event.Document) {
	t.Helper()
	doc := event.NewDocument()
	c := NewComparison(doc, reveal.DefaultStyle(), reveal.DefaultRange(), zaptest.NewLogger(t))
	c.Mount(testProps)
	c.Layout(image.Rect(0, 0, 1032, 800))
	require.Equal(t, 1000, c.Geometry().Container.Dx())
	return c, doc
}

// frame runs one update the way the game loop does.
func frame(c *Comparison, _ *event.Document, in InputState) {
	c.Update(in)
}

func handlePoint(c *Comparison) (int, int) {
	x, y := c.Geometry().HandleCenter(c.State().Position)
	return int(x), int(y)
}

func TestComparisonMouseDrag(t *testing.T) {
	c, doc := newTestComparison(t)
	hx, hy := handlePoint(c)

	frame(c, doc, InputState{MouseX: hx, MouseY: hy, MousePressed: true, MouseHeld: true})
	require.True(t, c.State().Dragging)
	assert.Equal(t, 50.0, c.State().Position, "press alone does not move")

	frame(c, doc, InputState{MouseX: 16 + 250, MouseY: hy, MouseHeld: true, MouseMoved: true})
	assert.InDelta(t, 25, c.State().Position, 1e-9)

	// leaving the container, even the window, keeps tracking
	frame(c, doc, InputState{MouseX: 5000, MouseY: 9999, MouseHeld: true, MouseMoved: true})
	assert.Equal(t, 100.0, c.State().Position)

	frame(c, doc, InputState{MouseX: 5000, MouseY: 9999, MouseReleased: true})
	assert.False(t, c.State().Dragging)
	assert.Equal(t, 0, doc.Len())

	frame(c, doc, InputState{MouseX: 16, MouseY: hy, MouseMoved: true})
	assert.Equal(t, 100.0, c.State().Position)
}

func TestComparisonMoveBeforePressInSameFrame(t *testing.T) {
	c, doc := newTestComparison(t)
	hx, hy := handlePoint(c)

	// the cursor travelled to hx+8 and was pressed there within one tick
	frame(c, doc, InputState{MouseX: hx + 8, MouseY: hy, MousePressed: true, MouseHeld: true, MouseMoved: true})
	require.True(t, c.State().Dragging)
	assert.Equal(t, 50.0, c.State().Position)

	frame(c, doc, InputState{MouseX: hx + 8, MouseY: hy, MouseReleased: true})
	assert.False(t, c.State().Dragging)
	assert.Equal(t, 50.0, c.State().Position, "down and up without a move after the press")
	assert.Equal(t, 0, doc.Len())
}

func TestComparisonPressAndReleaseInSameFrame(t *testing.T) {
	c, doc := newTestComparison(t)
	hx, hy := handlePoint(c)

	frame(c, doc, InputState{MouseX: hx, MouseY: hy, MousePressed: true, MouseReleased: true, MouseMoved: true})
	assert.Equal(t, reveal.RevealState{Position: 50}, c.State())
	assert.Equal(t, 0, doc.Len())
}

func TestComparisonTouchDrag(t *testing.T) {
	c, doc := newTestComparison(t)
	hx, hy := handlePoint(c)

	frame(c, doc, InputState{Touches: []TouchState{{ID: 3, X: hx, Y: hy, Pressed: true}}})
	require.True(t, c.State().Dragging)

	frame(c, doc, InputState{Touches: []TouchState{{ID: 3, X: 16 + 100, Y: hy, Moved: true}}})
	assert.InDelta(t, 10, c.State().Position, 1e-9)

	frame(c, doc, InputState{Touches: []TouchState{{ID: 3, X: 16 + 100, Y: hy, Released: true}}})
	assert.False(t, c.State().Dragging)
}

func TestComparisonPressOutsideHandleIgnored(t *testing.T) {
	c, doc := newTestComparison(t)
	frame(c, doc, InputState{MouseX: 100, MouseY: 100, MousePressed: true, MouseHeld: true})
	assert.False(t, c.State().Dragging)
	frame(c, doc, InputState{MouseX: 300, MouseY: 100, MouseHeld: true, MouseMoved: true})
	assert.Equal(t, 50.0, c.State().Position)
}

func TestComparisonRangeTrack(t *testing.T) {
	c, doc := newTestComparison(t)
	tr := c.Geometry().Track
	y := tr.Min.Y + tr.Dy()/2

	consumed := c.Update(InputState{MouseX: 16 + 333, MouseY: y, MousePressed: true, MouseHeld: true})
	assert.True(t, consumed)
	assert.InDelta(t, 33.3, c.State().Position, 1e-9)
	assert.False(t, c.State().Dragging, "range control never starts a drag session")
	assert.Equal(t, 0, doc.Len())

	frame(c, doc, InputState{MouseX: 16 + 700, MouseY: y + 200, MouseHeld: true, MouseMoved: true})
	assert.InDelta(t, 70, c.State().Position, 1e-9, "held range follows the pointer")

	frame(c, doc, InputState{MouseX: 16 + 900, MouseY: y, MouseReleased: true})
	frame(c, doc, InputState{MouseX: 16 + 100, MouseY: y, MouseMoved: true})
	assert.InDelta(t, 70, c.State().Position, 1e-9)

	clip := c.Geometry().Clip(c.State().Position)
	assert.Equal(t, 16+700, clip.Max.X)
}

func TestComparisonNudge(t *testing.T) {
	c, doc := newTestComparison(t)
	frame(c, doc, InputState{NudgeRight: true})
	assert.InDelta(t, 51, c.State().Position, 1e-9)
	frame(c, doc, InputState{NudgeLeft: true})
	frame(c, doc, InputState{NudgeLeft: true})
	assert.InDelta(t, 49, c.State().Position, 1e-9)
}

func TestComparisonRemountMidDrag(t *testing.T) {
	c, doc := newTestComparison(t)
	hx, hy := handlePoint(c)
	frame(c, doc, InputState{MouseX: hx, MouseY: hy, MousePressed: true, MouseHeld: true})
	frame(c, doc, InputState{MouseX: 16 + 900, MouseY: hy, MouseHeld: true, MouseMoved: true})
	require.True(t, c.State().Dragging)

	c.Mount(reveal.Props{BeforeURL: "b2.jpg", AfterURL: "a2.jpg", Title: "Other"})
	assert.Equal(t, 0, doc.Len(), "old slider listeners are detached")
	assert.Equal(t, reveal.RevealState{Position: 50}, c.State())
	assert.Equal(t, "Other", c.Props().Title)

	assert.NotPanics(t, func() {
		frame(c, doc, InputState{MouseX: 16 + 100, MouseY: hy, MouseHeld: true, MouseMoved: true})
		frame(c, doc, InputState{MouseReleased: true})
	})
	assert.Equal(t, 50.0, c.State().Position)
}

func TestComparisonUnmount(t *testing.T) {
	c, doc := newTestComparison(t)
	hx, hy := handlePoint(c)
	frame(c, doc, InputState{MouseX: hx, MouseY: hy, MousePressed: true, MouseHeld: true})

	assert.Empty(t, c.Unmount())
	assert.False(t, c.Mounted())
	assert.Equal(t, 0, doc.Len())
	assert.False(t, c.Update(InputState{MouseX: hx, MouseY: hy, MousePressed: true}))
}

func TestComparisonMobileLayoutUsesOverlaidTrack(t *testing.T) {
	c, doc := newTestComparison(t)
	c.Layout(image.Rect(0, 0, 400, 700))
	geo := c.Geometry()
	require.Equal(t, reveal.Mobile, geo.Orientation)
	assert.True(t, geo.Track.In(geo.Container))

	hx, hy := handlePoint(c)
	frame(c, doc, InputState{Touches: []TouchState{{ID: 1, X: hx, Y: hy, Pressed: true}}})
	require.True(t, c.State().Dragging)
	frame(c, doc, InputState{Touches: []TouchState{{ID: 1, X: 100, Y: hy, Moved: true}}})
	assert.InDelta(t, 25, c.State().Position, 1e-9)
}
