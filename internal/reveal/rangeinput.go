package reveal

import (
	"image"
	"math"
)

// RangeInput models the native range control mirrored next to the slider.
type RangeInput struct {
	Min, Max, Step float64
}

// DefaultRange is min=0, max=100 with a fractional step.
func DefaultRange() RangeInput {
	return RangeInput{Min: MinPosition, Max: MaxPosition, Step: 0.1}
}

// Snap clamps v to the range and rounds it to the nearest step.
func (r RangeInput) Snap(v float64) float64 {
	if math.IsNaN(v) {
		return r.Min
	}
	v = math.Max(r.Min, math.Min(r.Max, v))
	if r.Step > 0 {
		v = r.Min + math.Round((v-r.Min)/r.Step)*r.Step
		v = math.Max(r.Min, math.Min(r.Max, v))
	}
	// drop float noise such as 25.000000000000004
	return math.Round(v*1e6) / 1e6
}

// ValueAt maps a pointer x on track to a snapped value.
func (r RangeInput) ValueAt(x float64, track image.Rectangle) float64 {
	if track.Dx() <= 0 {
		return r.Min
	}
	frac := (x - float64(track.Min.X)) / float64(track.Dx())
	return r.Snap(r.Min + frac*(r.Max-r.Min))
}

// Nudge moves v by a number of steps.
func (r RangeInput) Nudge(v float64, steps int) float64 {
	return r.Snap(v + float64(steps)*r.Step)
}

// Fraction returns where v sits in the range, from 0 to 1.
func (r RangeInput) Fraction(v float64) float64 {
	if r.Max <= r.Min {
		return 0
	}
	return (r.Snap(v) - r.Min) / (r.Max - r.Min)
}
