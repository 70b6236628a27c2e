package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"

	"RoMagic/internal/state"
)

var ErrNoSource = errors.New("render: no source image")

// Scene is everything that ends up in the flattened raster.
type Scene struct {
	Base    image.Image
	Edit    state.EditState
	Overlay image.Image // freehand layer, may be nil
	Texts   []TextOverlay
}

// Compose filters and transforms the base image, then draws the overlay layer
// and the text on top. The result has the size of the base image.
func Compose(ctx context.Context, sc Scene) (*image.NRGBA, error) {
	if sc.Base == nil {
		return nil, ErrNoSource
	}
	base := ToNRGBA(sc.Base)

	filtered, err := ApplyFilters(ctx, base, sc.Edit.Filters.Clamped())
	if err != nil {
		return nil, fmt.Errorf("apply filters: %w", err)
	}
	out := ApplyTransform(filtered, sc.Edit.Transform)

	if sc.Overlay != nil {
		ob := sc.Overlay.Bounds()
		draw.Draw(out, out.Bounds(), sc.Overlay, ob.Min, draw.Over)
	}
	if err := DrawText(out, sc.Texts); err != nil {
		return nil, fmt.Errorf("draw text: %w", err)
	}
	return out, nil
}
