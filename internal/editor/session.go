// Package editor holds the editing session: the working image, its undoable
// filter and transform state, and the raster layers that sit outside undo.
package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"RoMagic/internal/export"
	"RoMagic/internal/paint"
	"RoMagic/internal/render"
	"RoMagic/internal/state"
)

var (
	ErrNoImage   = errors.New("editor: no image loaded")
	ErrBusy      = errors.New("editor: background removal already running")
	ErrNoRemover = errors.New("editor: background removal not configured")
	ErrStale     = errors.New("editor: image replaced during background removal")
)

// Remover strips the background from an encoded image.
type Remover interface {
	Remove(ctx context.Context, filename string, image io.Reader) ([]byte, error)
}

type Session struct {
	base       image.Image
	sourceName string
	source     []byte
	// gen counts loads so a late background removal result can tell it is stale.
	gen uint64

	current state.EditState
	history *state.History
	layer   *paint.Layer
	texts   []render.TextOverlay

	remover Remover
	loading atomic.Bool
	mu      sync.RWMutex

	// OnChange is called after any visible change, outside the lock.
	OnChange func()
}

type Option func(*Session)

func WithHistoryDepth(n int) Option {
	return func(s *Session) { s.history = state.NewHistory(n) }
}

func WithRemover(r Remover) Option {
	return func(s *Session) { s.remover = r }
}

func New(opts ...Option) *Session {
	s := &Session{
		current: state.DefaultEditState(),
		history: state.NewHistory(0),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Session) notify() {
	if s.OnChange != nil {
		s.OnChange()
	}
}

// Load decodes data and makes it the working image. Filters, transforms,
// drawing and text are reset and History is seeded with the defaults.
func (s *Session) Load(name string, data []byte) error {
	img, kind, err := render.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}

	s.mu.Lock()
	s.base = img
	s.sourceName = name
	s.source = data
	s.gen++
	s.resetLocked()
	s.mu.Unlock()

	b := img.Bounds()
	log.Printf("[EDITOR] Loaded %s (%s, %dx%d)", name, kind, b.Dx(), b.Dy())
	s.notify()
	return nil
}

// LoadReader reads r fully and loads it.
func (s *Session) LoadReader(name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	return s.Load(name, data)
}

func (s *Session) resetLocked() {
	b := s.base.Bounds()
	s.current = state.DefaultEditState()
	s.history.Clear()
	s.history.Apply(s.current)
	s.layer = paint.NewLayer(b.Dx(), b.Dy())
	s.texts = nil
}

func (s *Session) HasImage() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.base != nil
}

// Size is the base image size, zero without an image.
func (s *Session) Size() image.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.base == nil {
		return image.Point{}
	}
	return s.base.Bounds().Size()
}

func (s *Session) SourceName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sourceName
}

func (s *Session) State() state.EditState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// ApplyEdit records a new snapshot, dropping any redo branch.
func (s *Session) ApplyEdit(f state.Filters, t state.Transform) {
	s.mu.Lock()
	s.current = state.EditState{Filters: f.Clamped(), Transform: t}
	s.history.Apply(s.current)
	s.mu.Unlock()
	s.notify()
}

// PreviewFilter changes a filter for display without recording it.
func (s *Session) PreviewFilter(kind state.FilterKind, v float64) {
	s.mu.Lock()
	s.current.Filters = s.current.Filters.With(kind, v)
	s.mu.Unlock()
	s.notify()
}

// CommitFilter records the filter value unless it equals the snapshot under
// the history cursor. It reports whether a snapshot was added.
func (s *Session) CommitFilter(kind state.FilterKind, v float64) bool {
	s.mu.Lock()
	next := s.current
	next.Filters = next.Filters.With(kind, v)
	if last, ok := s.history.Current(); ok && last == next {
		s.current = next
		s.mu.Unlock()
		return false
	}
	s.current = next
	s.history.Apply(next)
	s.mu.Unlock()
	s.notify()
	return true
}

func (s *Session) Rotate(d state.Direction) {
	cur := s.State()
	s.ApplyEdit(cur.Filters, cur.Transform.Rotated(d))
}

func (s *Session) Flip(a state.Axis) {
	cur := s.State()
	s.ApplyEdit(cur.Filters, cur.Transform.Flipped(a))
}

// Reset restores default filters and transform as a new, undoable edit.
func (s *Session) Reset() {
	s.ApplyEdit(state.DefaultFilters(), state.DefaultTransform())
}

func (s *Session) Undo() bool {
	return s.step(s.history.Undo)
}

func (s *Session) Redo() bool {
	return s.step(s.history.Redo)
}

func (s *Session) step(move func() (state.EditState, bool)) bool {
	s.mu.Lock()
	snap, ok := move()
	if ok {
		s.current = snap
	}
	s.mu.Unlock()
	if ok {
		s.notify()
	}
	return ok
}

func (s *Session) CanUndo() bool { return s.history.CanUndo() }
func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// DrawStroke rasterizes a stroke onto the overlay layer.
func (s *Session) DrawStroke(st state.Stroke) image.Rectangle {
	s.mu.RLock()
	layer := s.layer
	s.mu.RUnlock()
	if layer == nil {
		return image.Rectangle{}
	}
	dirty := layer.DrawStroke(st)
	if !dirty.Empty() {
		s.notify()
	}
	return dirty
}

func (s *Session) ClearDrawing() {
	s.mu.RLock()
	layer := s.layer
	s.mu.RUnlock()
	if layer == nil {
		return
	}
	layer.Clear()
	s.notify()
}

// AddText places a text overlay and returns its id. Empty text is ignored.
func (s *Session) AddText(text string, x, y float64, c color.Color, size float64) (string, bool) {
	if text == "" {
		return "", false
	}
	t := render.TextOverlay{ID: uuid.NewString(), Text: text, X: x, Y: y, Color: c, Size: size}
	s.mu.Lock()
	s.texts = append(s.texts, t)
	s.mu.Unlock()
	s.notify()
	return t.ID, true
}

func (s *Session) RemoveText(id string) bool {
	s.mu.Lock()
	removed := false
	kept := s.texts[:0]
	for _, t := range s.texts {
		if t.ID == id {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	s.texts = kept
	s.mu.Unlock()
	if removed {
		s.notify()
	}
	return removed
}

func (s *Session) ClearText() {
	s.mu.Lock()
	s.texts = nil
	s.mu.Unlock()
	s.notify()
}

func (s *Session) Texts() []render.TextOverlay {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]render.TextOverlay(nil), s.texts...)
}

// Render composes the flattened raster exactly as it will be exported.
func (s *Session) Render(ctx context.Context) (*image.NRGBA, error) {
	s.mu.RLock()
	if s.base == nil {
		s.mu.RUnlock()
		return nil, ErrNoImage
	}
	sc := render.Scene{
		Base:  s.base,
		Edit:  s.current,
		Texts: append([]render.TextOverlay(nil), s.texts...),
	}
	layer := s.layer
	s.mu.RUnlock()

	if layer != nil && !layer.IsEmpty() {
		sc.Overlay = layer.Image()
	}
	return render.Compose(ctx, sc)
}

// Export renders and encodes the result to w.
func (s *Session) Export(ctx context.Context, w io.Writer, o export.Options) error {
	img, err := s.Render(ctx)
	if err != nil {
		return err
	}
	return export.Write(w, img, o)
}

func (s *Session) ExportFile(ctx context.Context, path string, o export.Options) error {
	img, err := s.Render(ctx)
	if err != nil {
		return err
	}
	return export.WriteFile(path, img, o)
}

func (s *Session) DataURL(ctx context.Context, o export.Options) (string, error) {
	img, err := s.Render(ctx)
	if err != nil {
		return "", err
	}
	f := o.Format
	if f == render.PDF {
		f = render.PNG
	}
	return render.DataURL(img, f, o.Quality)
}

// Loading reports whether a background removal is in flight.
func (s *Session) Loading() bool {
	return s.loading.Load()
}

// RemoveBackground sends the originally selected file to the remover and
// swaps in the result, rescaling the drawing and text to the new size. On
// failure, or when another image was loaded meanwhile, the session is left
// as it was.
func (s *Session) RemoveBackground(ctx context.Context) error {
	s.mu.RLock()
	name, data, remover, gen := s.sourceName, s.source, s.remover, s.gen
	s.mu.RUnlock()

	if data == nil {
		return ErrNoImage
	}
	if remover == nil {
		return ErrNoRemover
	}
	if !s.loading.CompareAndSwap(false, true) {
		return ErrBusy
	}
	s.notify()
	defer func() {
		s.loading.Store(false)
		s.notify()
	}()

	out, err := remover.Remove(ctx, name, bytes.NewReader(data))
	if err != nil {
		log.Printf("[REMOVEBG] Error removing background: %v", err)
		return fmt.Errorf("remove background: %w", err)
	}
	img, _, err := render.Decode(bytes.NewReader(out))
	if err != nil {
		log.Printf("[REMOVEBG] Error decoding result: %v", err)
		return fmt.Errorf("remove background: %w", err)
	}

	b := img.Bounds()
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		log.Printf("[REMOVEBG] Dropping result for %s, another image was loaded", name)
		return ErrStale
	}
	old := s.base.Bounds()
	s.base = img
	if s.layer != nil {
		s.layer.Resize(b.Dx(), b.Dy())
	} else {
		s.layer = paint.NewLayer(b.Dx(), b.Dy())
	}
	scaleTexts(s.texts, float64(b.Dx())/float64(old.Dx()), float64(b.Dy())/float64(old.Dy()))
	s.mu.Unlock()
	log.Printf("[EDITOR] Background removed, image now %dx%d", b.Dx(), b.Dy())
	return nil
}

// scaleTexts moves overlays onto a resized canvas. Sizes follow the vertical
// factor so glyph height keeps its share of the image.
func scaleTexts(texts []render.TextOverlay, sx, sy float64) {
	for i := range texts {
		size := texts[i].Size
		if size <= 0 {
			size = render.DefaultTextSize
		}
		texts[i].X *= sx
		texts[i].Y *= sy
		texts[i].Size = size * sy
	}
}
