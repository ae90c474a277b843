package ui

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/nicky-ayoub/ebitreveal/internal/event"
	"github.com/nicky-ayoub/ebitreveal/internal/reveal"
)

// nudgeSteps is how many range steps one [ or ] press moves.
const nudgeSteps = 10

var (
	backgroundColor  = color.RGBA{R: 0x18, G: 0x18, B: 0x1c, A: 0xff}
	placeholderColor = color.RGBA{R: 0x3a, G: 0x3a, B: 0x40, A: 0xff}
	dividerColor     = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	handleRingColor  = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
	trackColor       = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xa0}
	trackFillColor   = color.RGBA{R: 0xf0, G: 0xb0, B: 0x30, A: 0xff}
)

// rangeGrab records which pointer is holding the range control.
type rangeGrab struct {
	active  bool
	touch   bool
	touchID ebiten.TouchID
}

// Comparison renders a before/after pair with a draggable reveal handle and
// a range control mirroring the same position.
type Comparison struct {
	doc    *event.Document
	slider *reveal.Slider
	props  reveal.Props
	style  reveal.Style
	rng    reveal.RangeInput
	geo    reveal.Geometry
	logger *zap.Logger

	before, after       *ebiten.Image
	beforeErr, afterErr error
	loading             bool

	grab rangeGrab
}

// NewComparison creates an empty widget. Mount it with props before use.
func NewComparison(doc *event.Document, style reveal.Style, rng reveal.RangeInput, logger *zap.Logger) *Comparison {
	return &Comparison{
		doc:    doc,
		style:  style,
		rng:    rng,
		logger: logger,
	}
}

// Mount shows a new props triple. The previous slider is unmounted, which
// detaches its document listeners even mid-drag, and the new one starts at
// the midpoint. The old images are returned for deallocation.
func (c *Comparison) Mount(props reveal.Props) (stale []*ebiten.Image) {
	if c.slider != nil {
		c.slider.Unmount()
	}
	stale = c.takeImages()
	c.props = props
	c.loading = true
	c.grab = rangeGrab{}
	c.slider = reveal.NewSlider(c.doc, reveal.WithOnPositionChange(func(p float64) {
		c.logger.Debug("reveal position", zap.String("title", props.Title), zap.Float64("position", p))
	}))
	c.slider.SetBounds(c.geo.Bounds())
	c.logger.Info("mounted comparison",
		zap.String("title", props.Title),
		zap.String("before", props.BeforeURL),
		zap.String("after", props.AfterURL))
	return stale
}

// Unmount tears the widget down and returns its images for deallocation.
func (c *Comparison) Unmount() []*ebiten.Image {
	if c.slider != nil {
		c.slider.Unmount()
		c.slider = nil
	}
	c.grab = rangeGrab{}
	return c.takeImages()
}

func (c *Comparison) takeImages() []*ebiten.Image {
	var out []*ebiten.Image
	for _, img := range []*ebiten.Image{c.before, c.after} {
		if img != nil {
			out = append(out, img)
		}
	}
	c.before, c.after = nil, nil
	c.beforeErr, c.afterErr = nil, nil
	return out
}

// Mounted reports whether a props triple is mounted.
func (c *Comparison) Mounted() bool {
	return c.slider != nil
}

// Props returns the mounted props.
func (c *Comparison) Props() reveal.Props {
	return c.props
}

// State returns the reveal state, or the zero value when nothing is mounted.
func (c *Comparison) State() reveal.RevealState {
	if c.slider == nil {
		return reveal.RevealState{}
	}
	return c.slider.State()
}

// Geometry returns the layout of the last frame.
func (c *Comparison) Geometry() reveal.Geometry {
	return c.geo
}

// SetImages installs the decoded images. A nil image with an error draws the
// broken-image placeholder for that side.
func (c *Comparison) SetImages(before, after *ebiten.Image, beforeErr, afterErr error) {
	c.before, c.after = before, after
	c.beforeErr, c.afterErr = beforeErr, afterErr
	c.loading = false
}

// Layout places the widget inside viewport and refreshes the slider bounds.
func (c *Comparison) Layout(viewport image.Rectangle) {
	c.geo = reveal.Layout(viewport, c.style)
	if c.slider != nil {
		c.slider.SetBounds(c.geo.Bounds())
	}
}

// Update runs one frame of pointer input. Moves polled this frame happened
// before any press in it, so they reach the document first; a drag started
// by a press only follows later moves. Releases are dispatched last. It
// reports whether the widget consumed a press this frame.
func (c *Comparison) Update(in InputState) bool {
	DispatchMoves(c.doc, in)
	consumed := c.handlePresses(in)
	DispatchReleases(c.doc, in)
	return consumed
}

func (c *Comparison) handlePresses(in InputState) bool {
	if c.slider == nil {
		return false
	}
	consumed := false
	pos := c.slider.Position()

	if in.MousePressed {
		consumed = c.press(pos, float64(in.MouseX), float64(in.MouseY), event.SourceMouse, 0) || consumed
	}
	for _, t := range in.Touches {
		if t.Pressed {
			consumed = c.press(pos, float64(t.X), float64(t.Y), event.SourceTouch, t.ID) || consumed
		}
	}

	c.followRange(in)

	switch {
	case in.NudgeLeft:
		c.slider.SetFromRange(c.rng.Nudge(c.slider.Position(), -nudgeSteps))
	case in.NudgeRight:
		c.slider.SetFromRange(c.rng.Nudge(c.slider.Position(), nudgeSteps))
	}
	return consumed
}

func (c *Comparison) press(pos, x, y float64, src event.Source, id ebiten.TouchID) bool {
	if c.slider.Dragging() || c.grab.active {
		return false
	}
	if c.geo.HitHandle(pos, x, y) {
		return c.slider.StartDrag(src)
	}
	if c.geo.HitTrack(x, y) {
		c.grab = rangeGrab{active: true, touch: src == event.SourceTouch, touchID: id}
		c.slider.SetFromRange(c.rng.ValueAt(x, c.geo.Track))
		return true
	}
	return false
}

// followRange keeps the range control under the pointer that grabbed it,
// like a native range input does, without entering a drag session.
func (c *Comparison) followRange(in InputState) {
	if !c.grab.active {
		return
	}
	if !c.grab.touch {
		if in.MouseHeld {
			c.slider.SetFromRange(c.rng.ValueAt(float64(in.MouseX), c.geo.Track))
		}
		if in.MouseReleased || !in.MouseHeld {
			c.grab = rangeGrab{}
		}
		return
	}
	t, ok := in.Touch(c.grab.touchID)
	if !ok || t.Released {
		c.grab = rangeGrab{}
		return
	}
	c.slider.SetFromRange(c.rng.ValueAt(float64(t.X), c.geo.Track))
}

// Draw renders the layered images, divider, handle and range control.
func (c *Comparison) Draw(screen *ebiten.Image) {
	box := c.geo.Container
	if box.Empty() {
		return
	}
	screen.SubImage(box).(*ebiten.Image).Fill(backgroundColor)
	if c.slider == nil {
		return
	}
	pos := c.slider.Position()

	c.drawLayer(screen, box, c.before, c.beforeErr, c.props.BeforeAlt())
	if clip := c.geo.Clip(pos); !clip.Empty() {
		c.drawLayer(screen, clip, c.after, c.afterErr, c.props.AfterAlt())
	}

	ebitenutil.DebugPrintAt(screen, "Before", box.Max.X-52, box.Min.Y+6)
	ebitenutil.DebugPrintAt(screen, "After", box.Min.X+6, box.Min.Y+6)

	dx := float32(c.geo.DividerX(pos))
	vector.StrokeLine(screen, dx, float32(box.Min.Y), dx, float32(box.Max.Y), float32(c.style.DividerWidth), dividerColor, true)

	c.drawTrack(screen, pos)
	c.drawHandle(screen, pos)
}

// drawLayer draws img scaled to cover the container, restricted to region.
func (c *Comparison) drawLayer(screen *ebiten.Image, region image.Rectangle, img *ebiten.Image, err error, alt string) {
	dst := screen.SubImage(region).(*ebiten.Image)
	if img == nil {
		dst.Fill(placeholderColor)
		label := alt
		switch {
		case c.loading:
			label = "Loading " + alt
		case err != nil:
			label = "[broken image] " + alt
		}
		ebitenutil.DebugPrintAt(dst, label, region.Min.X+8, region.Min.Y+region.Dy()/2)
		return
	}
	box := c.geo.Container
	iw, ih := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	scale := math.Max(float64(box.Dx())/iw, float64(box.Dy())/ih)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(
		float64(box.Min.X)+(float64(box.Dx())-iw*scale)/2,
		float64(box.Min.Y)+(float64(box.Dy())-ih*scale)/2,
	)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(img, op)
}

func (c *Comparison) drawTrack(screen *ebiten.Image, pos float64) {
	tr := c.geo.Track
	if tr.Empty() {
		return
	}
	h := float32(tr.Dy()) / 4
	y := float32(tr.Min.Y) + float32(tr.Dy())/2 - h/2
	vector.DrawFilledRect(screen, float32(tr.Min.X), y, float32(tr.Dx()), h, trackColor, true)
	fill := float32(c.rng.Fraction(pos)) * float32(tr.Dx())
	vector.DrawFilledRect(screen, float32(tr.Min.X), y, fill, h, trackFillColor, true)

	if c.geo.Orientation == reveal.Desktop {
		kx := float32(tr.Min.X) + fill
		ky := float32(tr.Min.Y) + float32(tr.Dy())/2
		vector.DrawFilledCircle(screen, kx, ky, float32(tr.Dy())/2, trackFillColor, true)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%.1f%%", c.rng.Snap(pos)), tr.Max.X-48, tr.Max.Y+2)
	}
}

func (c *Comparison) drawHandle(screen *ebiten.Image, pos float64) {
	cx, cy := c.geo.HandleCenter(pos)
	r := float32(c.style.HandleRadius)
	if c.geo.Orientation == reveal.Mobile {
		r *= 0.75
	}
	vector.DrawFilledCircle(screen, float32(cx), float32(cy), r, dividerColor, true)
	vector.StrokeCircle(screen, float32(cx), float32(cy), r, 2, handleRingColor, true)
	ebitenutil.DebugPrintAt(screen, "<>", int(cx)-6, int(cy)-8)
}
