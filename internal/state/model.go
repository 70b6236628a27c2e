package state

import (
	"fmt"
	"image/color"
)

type Point struct{ X, Y float32 }

// Stroke is a freehand polyline. It is only used to rasterize into the
// overlay layer and is never stored in History.
type Stroke struct {
	Points []Point
	Color  color.Color
	Width  float32
	Erase  bool
}

type FilterKind string

const (
	Brightness  FilterKind = "brightness"
	Saturation  FilterKind = "saturation"
	Inversion   FilterKind = "inversion"
	Grayscale   FilterKind = "grayscale"
	Contrast    FilterKind = "contrast"
	Temperature FilterKind = "temperature"
)

// FilterSpec declares the slider range and default of a filter.
type FilterSpec struct {
	Kind    FilterKind
	Label   string
	Min     float64
	Max     float64
	Default float64
	Step    float64
}

// FilterSpecs lists every filter in application order.
var FilterSpecs = []FilterSpec{
	{Kind: Brightness, Label: "Brightness", Min: 0, Max: 200, Default: 100, Step: 1},
	{Kind: Saturation, Label: "Saturation", Min: 0, Max: 200, Default: 100, Step: 1},
	{Kind: Inversion, Label: "Inversion", Min: 0, Max: 100, Default: 0, Step: 1},
	{Kind: Grayscale, Label: "Grayscale", Min: 0, Max: 100, Default: 0, Step: 1},
	{Kind: Contrast, Label: "Contrast", Min: 0, Max: 200, Default: 100, Step: 1},
	{Kind: Temperature, Label: "Temperature", Min: -100, Max: 100, Default: 0, Step: 1},
}

// Spec returns the declared bounds for kind.
func Spec(kind FilterKind) (FilterSpec, bool) {
	for _, s := range FilterSpecs {
		if s.Kind == kind {
			return s, true
		}
	}
	return FilterSpec{}, false
}

// Filters holds percentages, except Temperature which is a signed shift.
type Filters struct {
	Brightness  float64 `json:"brightness"`
	Saturation  float64 `json:"saturation"`
	Inversion   float64 `json:"inversion"`
	Grayscale   float64 `json:"grayscale"`
	Contrast    float64 `json:"contrast"`
	Temperature float64 `json:"temperature"`
}

func DefaultFilters() Filters {
	return Filters{
		Brightness: 100,
		Saturation: 100,
		Contrast:   100,
	}
}

// Get returns the value of kind.
func (f Filters) Get(kind FilterKind) float64 {
	switch kind {
	case Brightness:
		return f.Brightness
	case Saturation:
		return f.Saturation
	case Inversion:
		return f.Inversion
	case Grayscale:
		return f.Grayscale
	case Contrast:
		return f.Contrast
	case Temperature:
		return f.Temperature
	}
	return 0
}

// With returns a copy with kind set to v, clamped to its declared bounds.
func (f Filters) With(kind FilterKind, v float64) Filters {
	if s, ok := Spec(kind); ok {
		v = clamp(v, s.Min, s.Max)
	}
	switch kind {
	case Brightness:
		f.Brightness = v
	case Saturation:
		f.Saturation = v
	case Inversion:
		f.Inversion = v
	case Grayscale:
		f.Grayscale = v
	case Contrast:
		f.Contrast = v
	case Temperature:
		f.Temperature = v
	}
	return f
}

// Clamped forces every value into its bounds.
func (f Filters) Clamped() Filters {
	for _, s := range FilterSpecs {
		f = f.With(s.Kind, f.Get(s.Kind))
	}
	return f
}

// IsDefault reports whether no filter differs from its default.
func (f Filters) IsDefault() bool {
	return f == DefaultFilters()
}

// String renders the CSS filter list, with temperature appended.
func (f Filters) String() string {
	return fmt.Sprintf("brightness(%g%%) saturate(%g%%) invert(%g%%) grayscale(%g%%) contrast(%g%%) temperature(%g)",
		f.Brightness, f.Saturation, f.Inversion, f.Grayscale, f.Contrast, f.Temperature)
}

// Transform rotation accumulates unbounded; flips are +1 or -1.
type Transform struct {
	Rotate int `json:"rotate"`
	FlipH  int `json:"flip_h"`
	FlipV  int `json:"flip_v"`
}

func DefaultTransform() Transform {
	return Transform{Rotate: 0, FlipH: 1, FlipV: 1}
}

type Direction int

const (
	Left Direction = iota
	Right
)

func (t Transform) Rotated(d Direction) Transform {
	if d == Left {
		t.Rotate -= 90
	} else {
		t.Rotate += 90
	}
	return t
}

type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

func (t Transform) Flipped(a Axis) Transform {
	if a == Horizontal {
		t.FlipH = toggle(t.FlipH)
	} else {
		t.FlipV = toggle(t.FlipV)
	}
	return t
}

// NormalizedRotation is Rotate folded into [0, 360).
func (t Transform) NormalizedRotation() int {
	r := t.Rotate % 360
	if r < 0 {
		r += 360
	}
	return r
}

func (t Transform) IsIdentity() bool {
	return t.NormalizedRotation() == 0 && t.FlipH >= 0 && t.FlipV >= 0
}

// CSS renders the transform in CSS transform syntax.
func (t Transform) CSS() string {
	return fmt.Sprintf("rotate(%ddeg) scale(%d, %d)", t.Rotate, t.FlipH, t.FlipV)
}

// EditState is one snapshot of the undoable editing state.
type EditState struct {
	Filters   Filters   `json:"filters"`
	Transform Transform `json:"transform"`
}

func DefaultEditState() EditState {
	return EditState{Filters: DefaultFilters(), Transform: DefaultTransform()}
}

func toggle(v int) int {
	if v == 1 {
		return -1
	}
	return 1
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
