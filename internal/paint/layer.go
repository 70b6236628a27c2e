// Package paint holds the transparent overlay raster that receives freehand
// strokes. Strokes are committed straight to pixels and not kept as vectors.
package paint

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	xdraw "golang.org/x/image/draw"

	"RoMagic/internal/state"
)

type Layer struct {
	img *image.NRGBA
	mu  sync.RWMutex
}

func NewLayer(w, h int) *Layer {
	return &Layer{img: image.NewNRGBA(image.Rect(0, 0, w, h))}
}

func (l *Layer) Bounds() image.Rectangle {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.img.Bounds()
}

// Image returns a copy of the layer pixels.
func (l *Layer) Image() *image.NRGBA {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := image.NewNRGBA(l.img.Bounds())
	copy(out.Pix, l.img.Pix)
	return out
}

// IsEmpty reports whether every pixel is fully transparent.
func (l *Layer) IsEmpty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := 3; i < len(l.img.Pix); i += 4 {
		if l.img.Pix[i] != 0 {
			return false
		}
	}
	return true
}

func (l *Layer) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.img.Pix)
}

// Resize scales the existing drawing to w x h.
func (l *Layer) Resize(w, h int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.img.Bounds().Dx() == w && l.img.Bounds().Dy() == h {
		return
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), l.img, l.img.Bounds(), draw.Src, nil)
	l.img = dst
}

// DrawStroke rasterizes s into the layer. An erasing stroke clears pixels.
// The returned rectangle covers the touched pixels.
func (l *Layer) DrawStroke(s state.Stroke) image.Rectangle {
	if len(s.Points) == 0 {
		return image.Rectangle{}
	}
	width := float64(s.Width)
	if width < 1 {
		width = 1
	}
	var c color.NRGBA
	if !s.Erase {
		src := s.Color
		if src == nil {
			src = color.Black
		}
		c = color.NRGBAModel.Convert(src).(color.NRGBA)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	r := width / 2
	dirty := image.Rectangle{}
	if len(s.Points) == 1 {
		p := s.Points[0]
		dirty = dirty.Union(l.stamp(float64(p.X), float64(p.Y), r, c, s.Erase))
		return dirty
	}
	for i := 1; i < len(s.Points); i++ {
		dirty = dirty.Union(l.segment(s.Points[i-1], s.Points[i], r, c, s.Erase))
	}
	return dirty
}

// segment stamps discs every half radius between a and b, giving round caps.
func (l *Layer) segment(a, b state.Point, r float64, c color.NRGBA, erase bool) image.Rectangle {
	ax, ay := float64(a.X), float64(a.Y)
	dx, dy := float64(b.X)-ax, float64(b.Y)-ay
	dist := math.Hypot(dx, dy)
	step := math.Max(r/2, 0.5)
	n := int(math.Ceil(dist / step))

	dirty := image.Rectangle{}
	for i := 0; i <= n; i++ {
		t := 0.0
		if n > 0 {
			t = float64(i) / float64(n)
		}
		dirty = dirty.Union(l.stamp(ax+dx*t, ay+dy*t, r, c, erase))
	}
	return dirty
}

func (l *Layer) stamp(cx, cy, r float64, c color.NRGBA, erase bool) image.Rectangle {
	box := image.Rect(
		int(math.Floor(cx-r)), int(math.Floor(cy-r)),
		int(math.Ceil(cx+r))+1, int(math.Ceil(cy+r))+1,
	).Intersect(l.img.Bounds())

	r2 := r * r
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			px, py := float64(x)+0.5-cx, float64(y)+0.5-cy
			if px*px+py*py > r2 {
				continue
			}
			i := l.img.PixOffset(x, y)
			if erase {
				l.img.Pix[i], l.img.Pix[i+1], l.img.Pix[i+2], l.img.Pix[i+3] = 0, 0, 0, 0
				continue
			}
			l.img.Pix[i], l.img.Pix[i+1], l.img.Pix[i+2], l.img.Pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return box
}
