package render

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultTextSize is used when a text overlay has no size.
const DefaultTextSize = 32

// TextOverlay is text positioned by its baseline origin in image pixels.
type TextOverlay struct {
	ID    string
	Text  string
	X, Y  float64
	Color color.Color
	Size  float64
}

var (
	regularFont *opentype.Font
	faceCache   = map[float64]font.Face{}
	faceMu      sync.Mutex
)

func init() {
	var err error
	regularFont, err = opentype.Parse(goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("parse goregular: %v", err))
	}
}

func face(size float64) (font.Face, error) {
	if size <= 0 {
		size = DefaultTextSize
	}
	faceMu.Lock()
	defer faceMu.Unlock()
	if f, ok := faceCache[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(regularFont, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("new face %.1fpt: %w", size, err)
	}
	faceCache[size] = f
	return f, nil
}

// DrawText paints every overlay onto dst in order.
func DrawText(dst *image.NRGBA, texts []TextOverlay) error {
	for _, t := range texts {
		if t.Text == "" {
			continue
		}
		f, err := face(t.Size)
		if err != nil {
			return err
		}
		var c color.Color = color.Black
		if t.Color != nil {
			c = t.Color
		}
		d := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(c),
			Face: f,
			Dot:  fixed.Point26_6{X: fixed.Int26_6(t.X * 64), Y: fixed.Int26_6(t.Y * 64)},
		}
		faceMu.Lock()
		d.DrawString(t.Text)
		faceMu.Unlock()
	}
	return nil
}

// textBounds returns the pixel box the overlay covers.
func textBounds(t TextOverlay) (image.Rectangle, error) {
	f, err := face(t.Size)
	if err != nil {
		return image.Rectangle{}, err
	}
	faceMu.Lock()
	b, _ := font.BoundString(f, t.Text)
	faceMu.Unlock()
	dot := fixed.Point26_6{X: fixed.Int26_6(t.X * 64), Y: fixed.Int26_6(t.Y * 64)}
	return image.Rect(
		(b.Min.X + dot.X).Floor(), (b.Min.Y + dot.Y).Floor(),
		(b.Max.X + dot.X).Ceil(), (b.Max.Y + dot.Y).Ceil(),
	), nil
}
