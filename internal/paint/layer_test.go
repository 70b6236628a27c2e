package paint

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RoMagic/internal/state"
)

var red = color.NRGBA{R: 255, A: 255}

func TestLayer_NewIsTransparent(t *testing.T) {
	l := NewLayer(10, 8)
	assert.Equal(t, image.Rect(0, 0, 10, 8), l.Bounds())
	assert.True(t, l.IsEmpty())
}

func TestLayer_DrawStroke(t *testing.T) {
	l := NewLayer(40, 40)
	dirty := l.DrawStroke(state.Stroke{
		Points: []state.Point{{X: 5, Y: 20}, {X: 35, Y: 20}},
		Color:  red,
		Width:  4,
	})
	img := l.Image()

	assert.Equal(t, red, img.NRGBAAt(20, 20))
	assert.Equal(t, red, img.NRGBAAt(5, 20), "round cap at the start")
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(20, 30))
	assert.True(t, image.Pt(20, 20).In(dirty))
	assert.False(t, l.IsEmpty())
}

func TestLayer_SinglePointStamps(t *testing.T) {
	l := NewLayer(10, 10)
	l.DrawStroke(state.Stroke{Points: []state.Point{{X: 5, Y: 5}}, Color: red, Width: 3})
	assert.Equal(t, red, l.Image().NRGBAAt(5, 5))
}

func TestLayer_EraseRestoresTransparency(t *testing.T) {
	l := NewLayer(20, 20)
	line := []state.Point{{X: 2, Y: 10}, {X: 18, Y: 10}}
	l.DrawStroke(state.Stroke{Points: line, Color: red, Width: 4})
	require.False(t, l.IsEmpty())

	l.DrawStroke(state.Stroke{Points: line, Width: 8, Erase: true})
	assert.True(t, l.IsEmpty())
}

func TestLayer_StrokeOutsideBoundsIsClipped(t *testing.T) {
	l := NewLayer(10, 10)
	dirty := l.DrawStroke(state.Stroke{Points: []state.Point{{X: -50, Y: -50}, {X: -40, Y: -40}}, Color: red, Width: 2})
	assert.True(t, dirty.Empty())
	assert.True(t, l.IsEmpty())
}

func TestLayer_Clear(t *testing.T) {
	l := NewLayer(10, 10)
	l.DrawStroke(state.Stroke{Points: []state.Point{{X: 1, Y: 1}, {X: 9, Y: 9}}, Color: red, Width: 2})
	l.Clear()
	assert.True(t, l.IsEmpty())
}

func TestLayer_Resize(t *testing.T) {
	l := NewLayer(10, 10)
	l.DrawStroke(state.Stroke{Points: []state.Point{{X: 5, Y: 5}}, Color: red, Width: 10})
	l.Resize(20, 30)
	assert.Equal(t, image.Rect(0, 0, 20, 30), l.Bounds())
	assert.Equal(t, uint8(255), l.Image().NRGBAAt(10, 15).A)
}
