package export

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RoMagic/internal/render"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	return img
}

func TestOptions_Name(t *testing.T) {
	t.Run("default name", func(t *testing.T) {
		assert.Equal(t, "image-editee.jpg", Options{Format: render.JPEG}.Name())
	})
	t.Run("extension follows format", func(t *testing.T) {
		assert.Equal(t, "image-editee.png", Options{Format: render.PNG}.Name())
		assert.Equal(t, "holiday.pdf", Options{Format: render.PDF, FileName: "holiday.jpg"}.Name())
	})
	t.Run("random name", func(t *testing.T) {
		a := Options{Format: render.JPEG, RandomName: true}.Name()
		b := Options{Format: render.JPEG, RandomName: true}.Name()
		assert.Regexp(t, regexp.MustCompile(`^edited-[0-9a-f]{8}\.jpg$`), a)
		assert.NotEqual(t, a, b)
	})
}

func TestWrite_PDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testImage(), Options{Format: render.PDF}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("extension picks png", func(t *testing.T) {
		path := filepath.Join(dir, "out.png")
		require.NoError(t, WriteFile(path, testImage(), Options{Format: render.JPEG}))
		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		_, kind, err := render.Decode(f)
		require.NoError(t, err)
		assert.Equal(t, "png", kind)
	})

	t.Run("no extension keeps option format", func(t *testing.T) {
		path := filepath.Join(dir, "out")
		require.NoError(t, WriteFile(path, testImage(), Options{Format: render.JPEG, Quality: 80}))
		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		_, kind, err := render.Decode(f)
		require.NoError(t, err)
		assert.Equal(t, "jpeg", kind)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(dir, "out.gif")
		err := WriteFile(path, testImage(), Options{Format: render.JPEG})
		assert.ErrorIs(t, err, render.ErrUnsupportedFormat)
		assert.NoFileExists(t, path)
	})

	t.Run("failed encode removes the file", func(t *testing.T) {
		path := filepath.Join(dir, "partial")
		err := WriteFile(path, testImage(), Options{Format: render.Format("bmp")})
		assert.Error(t, err)
		assert.NoFileExists(t, path)
	})

	t.Run("missing directory", func(t *testing.T) {
		err := WriteFile(filepath.Join(dir, "nope", "out.png"), testImage(), Options{})
		assert.Error(t, err)
	})
}
