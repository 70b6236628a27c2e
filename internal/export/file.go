// Package export serializes the flattened raster to files.
package export

import (
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"RoMagic/internal/render"
)

// DefaultFileName is the export name used when none is configured.
const DefaultFileName = "image-editee.jpg"

type Options struct {
	Format     render.Format
	Quality    int
	FileName   string
	RandomName bool
}

// Name picks the download name, fixing the extension to the format.
func (o Options) Name() string {
	if o.RandomName {
		return "edited-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8] + o.Format.Ext()
	}
	name := o.FileName
	if name == "" {
		name = DefaultFileName
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + o.Format.Ext()
}

// Write encodes img to w in the requested format.
func Write(w io.Writer, img image.Image, o Options) error {
	if o.Format == render.PDF {
		return PDF(w, img)
	}
	return render.Encode(w, img, o.Format, o.Quality)
}

// WriteFile writes img to path. The format follows the path's extension, which
// must be one the exporter writes. A failed write removes the partial file.
func WriteFile(path string, img image.Image, o Options) error {
	if ext := filepath.Ext(path); ext != "" {
		f, err := render.LookupFormat(ext)
		if err != nil {
			return err
		}
		o.Format = f
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, img, o); err != nil {
		f.Close()
		if rmErr := os.Remove(path); rmErr != nil {
			log.Printf("[EXPORT] Error removing partial %s: %v", path, rmErr)
		}
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	log.Printf("[EXPORT] Wrote %s (%dx%d)", path, img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}
