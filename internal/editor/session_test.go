package editor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RoMagic/internal/export"
	"RoMagic/internal/render"
	"RoMagic/internal/state"
)

func pngBytes(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func loaded(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s := New(opts...)
	require.NoError(t, s.Load("photo.png", pngBytes(t, 4, 4, color.NRGBA{R: 100, G: 150, B: 200, A: 255})))
	return s
}

type fakeRemover struct {
	mu      sync.Mutex
	calls   int
	gotName string
	gotData []byte
	out     []byte
	err     error
	block   chan struct{}
}

func (f *fakeRemover) Remove(ctx context.Context, name string, r io.Reader) ([]byte, error) {
	if f.block != nil {
		<-f.block
	}
	data, _ := io.ReadAll(r)
	f.mu.Lock()
	f.calls++
	f.gotName, f.gotData = name, data
	f.mu.Unlock()
	return f.out, f.err
}

func TestSession_LoadSeedsHistory(t *testing.T) {
	s := loaded(t)
	assert.True(t, s.HasImage())
	assert.Equal(t, image.Pt(4, 4), s.Size())
	assert.Equal(t, state.DefaultEditState(), s.State())
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
}

func TestSession_LoadInvalid(t *testing.T) {
	s := New()
	err := s.Load("junk.png", []byte("nope"))
	assert.Error(t, err)
	assert.False(t, s.HasImage())
}

func TestSession_UndoRedo(t *testing.T) {
	s := loaded(t)
	s.CommitFilter(state.Brightness, 120)
	s.Rotate(state.Right)
	s.Flip(state.Horizontal)

	afterRotate := state.DefaultEditState()
	afterRotate.Filters = afterRotate.Filters.With(state.Brightness, 120)
	afterRotate.Transform = afterRotate.Transform.Rotated(state.Right)

	require.True(t, s.Undo())
	assert.Equal(t, afterRotate, s.State())

	require.True(t, s.Redo())
	assert.Equal(t, -1, s.State().Transform.FlipH)
	assert.False(t, s.Redo())

	for s.Undo() {
	}
	assert.Equal(t, state.DefaultEditState(), s.State())
}

func TestSession_EditAfterUndoDropsRedo(t *testing.T) {
	s := loaded(t)
	s.CommitFilter(state.Contrast, 150)
	s.CommitFilter(state.Contrast, 160)
	require.True(t, s.Undo())
	require.True(t, s.CanRedo())

	s.Flip(state.Vertical)
	assert.False(t, s.CanRedo())
	assert.Equal(t, float64(150), s.State().Filters.Contrast)
}

func TestSession_PreviewAndCommitFilter(t *testing.T) {
	s := loaded(t)
	changes := 0
	s.OnChange = func() { changes++ }

	s.PreviewFilter(state.Saturation, 40)
	s.PreviewFilter(state.Saturation, 60)
	assert.Equal(t, float64(60), s.State().Filters.Saturation)
	assert.False(t, s.CanUndo(), "preview does not record history")

	assert.True(t, s.CommitFilter(state.Saturation, 60))
	assert.True(t, s.CanUndo())
	assert.False(t, s.CommitFilter(state.Saturation, 60), "same value twice is one snapshot")
	assert.Equal(t, 3, changes)

	require.True(t, s.Undo())
	assert.Equal(t, float64(100), s.State().Filters.Saturation)
}

func TestSession_CommitFilterClamps(t *testing.T) {
	s := loaded(t)
	s.CommitFilter(state.Grayscale, 900)
	assert.Equal(t, float64(100), s.State().Filters.Grayscale)
}

func TestSession_ResetRestoresDefaults(t *testing.T) {
	s := loaded(t)
	s.CommitFilter(state.Inversion, 70)
	s.CommitFilter(state.Temperature, -30)
	s.Rotate(state.Left)

	s.Reset()
	assert.Equal(t, state.DefaultEditState(), s.State())
	require.True(t, s.Undo(), "reset is undoable")
	assert.Equal(t, -90, s.State().Transform.Rotate)
}

func TestSession_DrawingIsOutsideUndo(t *testing.T) {
	s := loaded(t)
	s.DrawStroke(state.Stroke{Points: []state.Point{{X: 0, Y: 0}, {X: 4, Y: 4}}, Color: color.White, Width: 2})
	s.CommitFilter(state.Brightness, 50)
	require.True(t, s.Undo())

	img, err := s.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, img.NRGBAAt(1, 1), "stroke survives undo")

	s.ClearDrawing()
	img, err = s.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 100, G: 150, B: 200, A: 255}, img.NRGBAAt(1, 1))
}

func TestSession_Texts(t *testing.T) {
	s := loaded(t)
	_, ok := s.AddText("", 0, 0, color.Black, 10)
	assert.False(t, ok)

	id, ok := s.AddText("hello", 1, 3, color.Black, 10)
	require.True(t, ok)
	s.AddText("world", 1, 3, color.Black, 10)
	assert.Len(t, s.Texts(), 2)

	assert.True(t, s.RemoveText(id))
	assert.False(t, s.RemoveText(id))
	require.Len(t, s.Texts(), 1)
	assert.Equal(t, "world", s.Texts()[0].Text)

	s.ClearText()
	assert.Empty(t, s.Texts())
}

func TestSession_LoadResetsLayers(t *testing.T) {
	s := loaded(t)
	s.AddText("x", 0, 0, color.Black, 10)
	s.CommitFilter(state.Brightness, 10)
	require.NoError(t, s.Load("other.png", pngBytes(t, 6, 2, color.NRGBA{A: 255})))
	assert.Empty(t, s.Texts())
	assert.False(t, s.CanUndo())
	assert.Equal(t, image.Pt(6, 2), s.Size())
}

func TestSession_ExportWithoutImage(t *testing.T) {
	s := New()
	err := s.Export(context.Background(), io.Discard, export.Options{Format: render.PNG})
	assert.ErrorIs(t, err, ErrNoImage)
	_, err = s.DataURL(context.Background(), export.Options{})
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestSession_ExportAppliesEdits(t *testing.T) {
	s := loaded(t)
	s.CommitFilter(state.Inversion, 100)

	var buf bytes.Buffer
	require.NoError(t, s.Export(context.Background(), &buf, export.Options{Format: render.PNG}))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())
	r, g, b, _ := img.At(2, 2).RGBA()
	assert.Equal(t, []uint32{155, 105, 55}, []uint32{r >> 8, g >> 8, b >> 8})

	u, err := s.DataURL(context.Background(), export.Options{Format: render.PDF})
	require.NoError(t, err)
	assert.Contains(t, u, "data:image/png;base64,")
}

func TestSession_RemoveBackground(t *testing.T) {
	t.Run("success replaces the image", func(t *testing.T) {
		fr := &fakeRemover{out: pngBytes(t, 2, 2, color.NRGBA{G: 255, A: 255})}
		s := loaded(t, WithRemover(fr))
		s.DrawStroke(state.Stroke{Points: []state.Point{{X: 2, Y: 2}}, Color: color.Black, Width: 4})
		s.CommitFilter(state.Brightness, 120)

		require.NoError(t, s.RemoveBackground(context.Background()))
		assert.Equal(t, "photo.png", fr.gotName)
		assert.NotEmpty(t, fr.gotData)
		assert.Equal(t, image.Pt(2, 2), s.Size())
		assert.Equal(t, float64(120), s.State().Filters.Brightness, "edits are kept")
		assert.False(t, s.Loading())

		img, err := s.Render(context.Background())
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
	})

	t.Run("text follows a smaller result", func(t *testing.T) {
		fr := &fakeRemover{out: pngBytes(t, 10, 10, color.NRGBA{G: 255, A: 255})}
		s := New(WithRemover(fr))
		require.NoError(t, s.Load("big.png", pngBytes(t, 100, 100, color.NRGBA{R: 255, A: 255})))
		_, ok := s.AddText("Hi", 60, 80, color.White, 12)
		require.True(t, ok)

		require.NoError(t, s.RemoveBackground(context.Background()))
		require.Len(t, s.Texts(), 1)
		txt := s.Texts()[0]
		assert.InDelta(t, 6.0, txt.X, 1e-9)
		assert.InDelta(t, 8.0, txt.Y, 1e-9)
		assert.InDelta(t, 1.2, txt.Size, 1e-9)
	})

	t.Run("result for a replaced image is dropped", func(t *testing.T) {
		fr := &fakeRemover{out: pngBytes(t, 3, 3, color.NRGBA{A: 255}), block: make(chan struct{})}
		s := loaded(t, WithRemover(fr))

		started := make(chan struct{})
		s.OnChange = func() {
			if s.Loading() {
				select {
				case <-started:
				default:
					close(started)
				}
			}
		}
		done := make(chan error, 1)
		go func() { done <- s.RemoveBackground(context.Background()) }()
		<-started

		require.NoError(t, s.Load("other.png", pngBytes(t, 8, 8, color.NRGBA{B: 255, A: 255})))
		close(fr.block)
		assert.ErrorIs(t, <-done, ErrStale)
		assert.Equal(t, "other.png", s.SourceName())
		assert.Equal(t, image.Pt(8, 8), s.Size())
		assert.False(t, s.Loading())
	})

	t.Run("failure leaves state unchanged", func(t *testing.T) {
		fr := &fakeRemover{err: errors.New("boom")}
		s := loaded(t, WithRemover(fr))
		err := s.RemoveBackground(context.Background())
		assert.Error(t, err)
		assert.Equal(t, image.Pt(4, 4), s.Size())
		assert.False(t, s.Loading())
	})

	t.Run("undecodable response leaves state unchanged", func(t *testing.T) {
		fr := &fakeRemover{out: []byte(`{"errors":[]}`)}
		s := loaded(t, WithRemover(fr))
		assert.Error(t, s.RemoveBackground(context.Background()))
		assert.Equal(t, image.Pt(4, 4), s.Size())
	})

	t.Run("no image", func(t *testing.T) {
		s := New(WithRemover(&fakeRemover{}))
		assert.ErrorIs(t, s.RemoveBackground(context.Background()), ErrNoImage)
	})

	t.Run("no remover", func(t *testing.T) {
		s := loaded(t)
		assert.ErrorIs(t, s.RemoveBackground(context.Background()), ErrNoRemover)
	})

	t.Run("re-entrant call is rejected", func(t *testing.T) {
		fr := &fakeRemover{out: pngBytes(t, 4, 4, color.NRGBA{A: 255}), block: make(chan struct{})}
		s := loaded(t, WithRemover(fr))

		started := make(chan struct{})
		s.OnChange = func() {
			if s.Loading() {
				select {
				case <-started:
				default:
					close(started)
				}
			}
		}
		done := make(chan error, 1)
		go func() { done <- s.RemoveBackground(context.Background()) }()
		<-started

		assert.ErrorIs(t, s.RemoveBackground(context.Background()), ErrBusy)
		close(fr.block)
		require.NoError(t, <-done)
		assert.Equal(t, 1, fr.calls)
		assert.False(t, s.Loading())
	})
}

func TestSession_HistoryDepth(t *testing.T) {
	s := loaded(t, WithHistoryDepth(2))
	s.CommitFilter(state.Brightness, 110)
	s.CommitFilter(state.Brightness, 120)
	require.True(t, s.Undo())
	assert.False(t, s.Undo())
	assert.Equal(t, float64(110), s.State().Filters.Brightness)
}
