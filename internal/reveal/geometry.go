package reveal

import (
	"image"
	"math"
)

// Orientation selects how the handle and the range control are presented.
// It never changes the reveal state.
type Orientation int

const (
	// Desktop shows a round handle on the vertical divider and the range
	// control below the images.
	Desktop Orientation = iota
	// Mobile overlays the range control on the bottom of the images and
	// moves the handle onto it.
	Mobile
)

func (o Orientation) String() string {
	if o == Mobile {
		return "mobile"
	}
	return "desktop"
}

// OrientationFor picks the orientation for a viewport width.
func OrientationFor(viewportWidth, breakpoint int) Orientation {
	if viewportWidth < breakpoint {
		return Mobile
	}
	return Desktop
}

// Style holds the presentation constants of the widget.
type Style struct {
	Breakpoint      int
	ContainerHeight int // 0 fills the available height
	Margin          int
	HandleRadius    float64
	DividerWidth    float64
	TrackHeight     int
}

// DefaultStyle returns the stock presentation constants.
func DefaultStyle() Style {
	return Style{
		Breakpoint:      768,
		ContainerHeight: 500,
		Margin:          16,
		HandleRadius:    20,
		DividerWidth:    2,
		TrackHeight:     24,
	}
}

// Geometry is the laid out widget for one frame.
type Geometry struct {
	Orientation Orientation
	Container   image.Rectangle
	Track       image.Rectangle
	Style       Style
}

// Layout places the container and the range track inside viewport.
// The track always spans the container horizontally, so a value read from
// the track and a position computed from a drag agree for the same x.
func Layout(viewport image.Rectangle, st Style) Geometry {
	g := Geometry{
		Orientation: OrientationFor(viewport.Dx(), st.Breakpoint),
		Style:       st,
	}

	switch g.Orientation {
	case Mobile:
		h := viewport.Dy()
		if st.ContainerHeight > 0 && st.ContainerHeight < h {
			h = st.ContainerHeight
		}
		g.Container = image.Rect(viewport.Min.X, viewport.Min.Y, viewport.Max.X, viewport.Min.Y+h)
		bottom := g.Container.Max.Y - st.Margin
		g.Track = image.Rect(g.Container.Min.X, bottom-st.TrackHeight, g.Container.Max.X, bottom)
	default:
		avail := viewport.Dy() - st.TrackHeight - 3*st.Margin
		h := avail
		if st.ContainerHeight > 0 && st.ContainerHeight < avail {
			h = st.ContainerHeight
		}
		if h < 0 {
			h = 0
		}
		left := viewport.Min.X + st.Margin
		right := viewport.Max.X - st.Margin
		if right < left {
			right = left
		}
		top := viewport.Min.Y + st.Margin
		g.Container = image.Rect(left, top, right, top+h)
		trackTop := g.Container.Max.Y + st.Margin
		g.Track = image.Rect(left, trackTop, right, trackTop+st.TrackHeight)
	}
	return g
}

// Bounds returns the container as a Rect for coordinate mapping.
func (g Geometry) Bounds() Rect {
	return Rect{
		Left:   float64(g.Container.Min.X),
		Top:    float64(g.Container.Min.Y),
		Width:  float64(g.Container.Dx()),
		Height: float64(g.Container.Dy()),
	}
}

// DividerX is the screen x of the divider line for position.
func (g Geometry) DividerX(position float64) float64 {
	return float64(g.Container.Min.X) + Clamp(position)/100*float64(g.Container.Dx())
}

// Clip is the visible region of the after image: [0%, position%] of the
// container width, full height.
func (g Geometry) Clip(position float64) image.Rectangle {
	right := int(math.Round(g.DividerX(position)))
	return image.Rect(g.Container.Min.X, g.Container.Min.Y, right, g.Container.Max.Y)
}

// ClipPercent returns the left-anchored inset of the clip, as the right
// edge distance from the container's right side in percent.
func (g Geometry) ClipPercent(position float64) (left, right float64) {
	return 0, 100 - Clamp(position)
}

// HandleCenter is the center of the round handle.
func (g Geometry) HandleCenter(position float64) (x, y float64) {
	x = g.DividerX(position)
	if g.Orientation == Mobile {
		return x, float64(g.Track.Min.Y+g.Track.Max.Y) / 2
	}
	return x, float64(g.Container.Min.Y+g.Container.Max.Y) / 2
}

// HitHandle reports whether a press at (x, y) grabs the handle. On desktop
// the whole divider band is grabbable as well.
func (g Geometry) HitHandle(position, x, y float64) bool {
	cx, cy := g.HandleCenter(position)
	r := g.Style.HandleRadius
	if dx, dy := x-cx, y-cy; dx*dx+dy*dy <= r*r {
		return true
	}
	if g.Orientation == Desktop {
		band := math.Max(g.Style.DividerWidth, r/2)
		return math.Abs(x-cx) <= band &&
			y >= float64(g.Container.Min.Y) && y < float64(g.Container.Max.Y)
	}
	return false
}

// HitTrack reports whether a press at (x, y) lands on the range track.
func (g Geometry) HitTrack(x, y float64) bool {
	pt := image.Pt(int(math.Floor(x)), int(math.Floor(y)))
	return pt.In(g.Track)
}
