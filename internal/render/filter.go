// Package render turns a base image and an EditState into the flattened raster
// shown in the preview and written on export.
package render

import (
	"context"
	"image"
	"image/draw"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"RoMagic/internal/state"
)

// bandRows is the smallest number of rows handed to one worker.
const bandRows = 64

// temperatureShift is the channel offset applied at temperature ±100.
const temperatureShift = 0.15

// colorMatrix is a 3x3 linear map over normalized RGB, plus an offset.
type colorMatrix struct {
	m   [9]float64
	off [3]float64
}

// ToNRGBA copies any image into a fresh NRGBA anchored at the origin.
func ToNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// ApplyFilters returns a filtered copy of src. The filters run in CSS list
// order with clamping between each primitive.
func ApplyFilters(ctx context.Context, src *image.NRGBA, f state.Filters) (*image.NRGBA, error) {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	if f.IsDefault() {
		return dst, nil
	}
	chain := filterChain(f)

	h := dst.Bounds().Dy()
	workers := runtime.GOMAXPROCS(0)
	rows := max(bandRows, (h+workers-1)/workers)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y0 := 0; y0 < h; y0 += rows {
		y1 := min(y0+rows, h)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			filterRows(dst, y0, y1, chain)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dst, nil
}

func filterRows(img *image.NRGBA, y0, y1 int, chain []colorMatrix) {
	w := img.Bounds().Dx()
	for y := y0; y < y1; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			if row[i+3] == 0 {
				continue
			}
			r, g, b := float64(row[i])/255, float64(row[i+1])/255, float64(row[i+2])/255
			for _, cm := range chain {
				r, g, b = cm.apply(r, g, b)
			}
			row[i], row[i+1], row[i+2] = to8(r), to8(g), to8(b)
		}
	}
}

func (cm colorMatrix) apply(r, g, b float64) (float64, float64, float64) {
	m := cm.m
	nr := m[0]*r + m[1]*g + m[2]*b + cm.off[0]
	ng := m[3]*r + m[4]*g + m[5]*b + cm.off[1]
	nb := m[6]*r + m[7]*g + m[8]*b + cm.off[2]
	return unit(nr), unit(ng), unit(nb)
}

// filterChain builds the matrices for every non-default filter.
func filterChain(f state.Filters) []colorMatrix {
	var chain []colorMatrix
	if f.Brightness != 100 {
		chain = append(chain, brightness(f.Brightness/100))
	}
	if f.Saturation != 100 {
		chain = append(chain, saturate(f.Saturation/100))
	}
	if f.Inversion != 0 {
		chain = append(chain, invert(f.Inversion/100))
	}
	if f.Grayscale != 0 {
		chain = append(chain, grayscale(f.Grayscale/100))
	}
	if f.Contrast != 100 {
		chain = append(chain, contrast(f.Contrast/100))
	}
	if f.Temperature != 0 {
		chain = append(chain, temperature(f.Temperature/100))
	}
	return chain
}

func brightness(a float64) colorMatrix {
	return colorMatrix{m: [9]float64{a, 0, 0, 0, a, 0, 0, 0, a}}
}

func contrast(a float64) colorMatrix {
	o := 0.5 - 0.5*a
	return colorMatrix{m: [9]float64{a, 0, 0, 0, a, 0, 0, 0, a}, off: [3]float64{o, o, o}}
}

func invert(a float64) colorMatrix {
	a = unit(a)
	k := 1 - 2*a
	return colorMatrix{m: [9]float64{k, 0, 0, 0, k, 0, 0, 0, k}, off: [3]float64{a, a, a}}
}

func saturate(s float64) colorMatrix {
	return colorMatrix{m: [9]float64{
		0.213 + 0.787*s, 0.715 - 0.715*s, 0.072 - 0.072*s,
		0.213 - 0.213*s, 0.715 + 0.285*s, 0.072 - 0.072*s,
		0.213 - 0.213*s, 0.715 - 0.715*s, 0.072 + 0.928*s,
	}}
}

func grayscale(g float64) colorMatrix {
	a := 1 - unit(g)
	return colorMatrix{m: [9]float64{
		0.2126 + 0.7874*a, 0.7152 - 0.7152*a, 0.0722 - 0.0722*a,
		0.2126 - 0.2126*a, 0.7152 + 0.2848*a, 0.0722 - 0.0722*a,
		0.2126 - 0.2126*a, 0.7152 - 0.7152*a, 0.0722 + 0.9278*a,
	}}
}

// temperature warms (t > 0) or cools (t < 0) by shifting red against blue.
func temperature(t float64) colorMatrix {
	d := temperatureShift * t
	return colorMatrix{m: [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}, off: [3]float64{d, 0, -d}}
}

func unit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func to8(v float64) uint8 {
	return uint8(math.Round(v * 255))
}
