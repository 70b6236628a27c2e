package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	_ "image/gif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	PDF  Format = "pdf"
)

const DefaultJPEGQuality = 80

// ImageExtensions are the file types the decoder registry accepts.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

var ErrUnsupportedFormat = errors.New("render: unsupported export format")

// LookupFormat maps a format name or file extension onto a Format.
func LookupFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "jpg", "jpeg":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "pdf":
		return PDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ParseFormat is LookupFormat with unknown values falling back to JPEG.
func ParseFormat(s string) Format {
	f, err := LookupFormat(s)
	if err != nil {
		return JPEG
	}
	return f
}

func (f Format) Ext() string {
	switch f {
	case PNG:
		return ".png"
	case PDF:
		return ".pdf"
	default:
		return ".jpg"
	}
}

func (f Format) MIME() string {
	switch f {
	case PNG:
		return "image/png"
	case PDF:
		return "application/pdf"
	default:
		return "image/jpeg"
	}
}

// Decode reads any registered image format.
func Decode(r io.Reader) (image.Image, string, error) {
	img, kind, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, kind, nil
}

// Encode writes img as JPEG or PNG. JPEG has no alpha, so transparent areas
// come out black, the same as a canvas export.
func Encode(w io.Writer, img image.Image, f Format, quality int) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case JPEG:
		if quality <= 0 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		return jpeg.Encode(w, flatten(img, color.Black), &jpeg.Options{Quality: quality})
	}
	return fmt.Errorf("encode: unsupported raster format %q", f)
}

// DataURL encodes img and wraps it as a data: URL.
func DataURL(img image.Image, f Format, quality int) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f, quality); err != nil {
		return "", err
	}
	return "data:" + f.MIME() + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func flatten(img image.Image, bg color.Color) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(out, b, img, b.Min, draw.Over)
	return out
}
