package render

import (
	"image"
	"math"

	"RoMagic/internal/state"
)

// ApplyTransform draws src onto a canvas of the same size, translated to the
// centre, rotated and then scaled by the flip factors. Pixels that fall
// outside the rotated source stay transparent.
func ApplyTransform(src *image.NRGBA, t state.Transform) *image.NRGBA {
	b := src.Bounds()
	if t.IsIdentity() {
		dst := image.NewNRGBA(b)
		copy(dst.Pix, src.Pix)
		return dst
	}
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	cos, sin := quarterTurn(t.NormalizedRotation())
	fh, fv := float64(sign(t.FlipH)), float64(sign(t.FlipV))
	cx, cy := float64(w)/2, float64(h)/2

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Inverse of translate(c) * rotate(θ) * scale(fh, fv).
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			rx := cos*dx + sin*dy
			ry := -sin*dx + cos*dy
			sx := int(math.Floor(rx*fh + cx))
			sy := int(math.Floor(ry*fv + cy))
			if sx < 0 || sy < 0 || sx >= w || sy >= h {
				continue
			}
			si := src.PixOffset(b.Min.X+sx, b.Min.Y+sy)
			di := dst.PixOffset(x, y)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst
}

// quarterTurn returns exact cos/sin for multiples of 90 degrees and falls
// back to math for anything else.
func quarterTurn(deg int) (float64, float64) {
	switch deg {
	case 0:
		return 1, 0
	case 90:
		return 0, 1
	case 180:
		return -1, 0
	case 270:
		return 0, -1
	}
	rad := float64(deg) * math.Pi / 180
	return math.Cos(rad), math.Sin(rad)
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}
