package ui

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"RoMagic/internal/editor"
	"RoMagic/internal/state"
)

// EditorWidget shows the composed image and turns pointer input into strokes
// and text placements on the session.
type EditorWidget struct {
	widget.BaseWidget
	session *editor.Session

	mu            sync.RWMutex
	preview       image.Image
	tool          Tool
	currentColor  color.Color
	currentStroke float32
	textSize      float64
	currentPath   []fyne.Position
	drawing       bool

	// TextSource supplies the text placed by the text tool.
	TextSource func() string
	OnStatus   func(string)
}

var _ fyne.Widget = (*EditorWidget)(nil)
var _ fyne.Draggable = (*EditorWidget)(nil)
var _ fyne.Tappable = (*EditorWidget)(nil)
var _ desktop.Mouseable = (*EditorWidget)(nil)

func NewEditorWidget(s *editor.Session) *EditorWidget {
	e := &EditorWidget{
		session:       s,
		tool:          ToolPen,
		currentColor:  color.Black,
		currentStroke: defaultStroke,
		textSize:      defaultTextSize,
	}
	e.ExtendBaseWidget(e)
	return e
}

func (e *EditorWidget) SetTool(t Tool) {
	e.mu.Lock()
	e.tool = t
	e.mu.Unlock()
}

func (e *EditorWidget) Tool() Tool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tool
}

func (e *EditorWidget) SetColor(c color.Color) {
	e.mu.Lock()
	e.currentColor = c
	e.mu.Unlock()
}

func (e *EditorWidget) SetStroke(s float32) {
	e.mu.Lock()
	e.currentStroke = s
	e.mu.Unlock()
}

func (e *EditorWidget) SetTextSize(s float64) {
	e.mu.Lock()
	e.textSize = s
	e.mu.Unlock()
}

func (e *EditorWidget) status(text string) {
	if e.OnStatus != nil {
		e.OnStatus(text)
	}
}

// Update re-renders the session into the preview and refreshes the widget.
func (e *EditorWidget) Update() {
	img, err := e.session.Render(context.Background())
	if err != nil && !errors.Is(err, editor.ErrNoImage) {
		log.Printf("[EDITOR] Render failed: %v", err)
		return
	}
	e.mu.Lock()
	e.preview = nil
	if img != nil {
		e.preview = img
	}
	e.mu.Unlock()
	e.Refresh()
}

// imageRect is where the image lands inside a widget of the given size when
// scaled to fit, and the scale used.
func imageRect(widgetSize fyne.Size, img image.Point) (fyne.Position, float32) {
	if img.X <= 0 || img.Y <= 0 || widgetSize.Width <= 0 || widgetSize.Height <= 0 {
		return fyne.Position{}, 0
	}
	sx := widgetSize.Width / float32(img.X)
	sy := widgetSize.Height / float32(img.Y)
	scale := sx
	if sy < sx {
		scale = sy
	}
	off := fyne.NewPos(
		(widgetSize.Width-float32(img.X)*scale)/2,
		(widgetSize.Height-float32(img.Y)*scale)/2,
	)
	return off, scale
}

// toImage maps a widget position to image pixel coordinates.
func toImage(p fyne.Position, widgetSize fyne.Size, img image.Point) (state.Point, bool) {
	off, scale := imageRect(widgetSize, img)
	if scale == 0 {
		return state.Point{}, false
	}
	return state.Point{X: (p.X - off.X) / scale, Y: (p.Y - off.Y) / scale}, true
}

func (e *EditorWidget) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary || !e.session.HasImage() {
		return
	}
	tool := e.Tool()
	if tool != ToolPen && tool != ToolEraser {
		return
	}
	e.mu.Lock()
	e.drawing = true
	e.currentPath = []fyne.Position{ev.Position}
	e.mu.Unlock()
	e.Refresh()
}

func (e *EditorWidget) Dragged(ev *fyne.DragEvent) {
	e.mu.Lock()
	if e.drawing {
		e.currentPath = append(e.currentPath, ev.Position)
	}
	e.mu.Unlock()
	e.Refresh()
}

func (e *EditorWidget) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	e.commitStroke()
}

func (e *EditorWidget) DragEnd() {
	e.commitStroke()
}

// commitStroke rasterizes the pending path. MouseUp and DragEnd may both
// arrive for the same gesture; only the first one commits.
func (e *EditorWidget) commitStroke() {
	e.mu.Lock()
	if !e.drawing {
		e.mu.Unlock()
		return
	}
	path := e.currentPath
	tool, c, width := e.tool, e.currentColor, e.currentStroke
	e.drawing = false
	e.currentPath = nil
	e.mu.Unlock()

	st, ok := e.strokeFor(path, tool, c, width)
	if ok {
		e.session.DrawStroke(st)
	}
	e.Refresh()
}

// strokeFor converts widget positions into an image-space stroke.
func (e *EditorWidget) strokeFor(path []fyne.Position, tool Tool, c color.Color, width float32) (state.Stroke, bool) {
	size := e.session.Size()
	_, scale := imageRect(e.Size(), size)
	if len(path) == 0 || scale == 0 {
		return state.Stroke{}, false
	}
	points := make([]state.Point, 0, len(path))
	for _, p := range path {
		ip, _ := toImage(p, e.Size(), size)
		points = append(points, ip)
	}
	return state.Stroke{
		Points: points,
		Color:  c,
		Width:  width / scale,
		Erase:  tool == ToolEraser,
	}, true
}

func (e *EditorWidget) Tapped(ev *fyne.PointEvent) {
	if e.Tool() != ToolText || !e.session.HasImage() || e.TextSource == nil {
		return
	}
	text := e.TextSource()
	if text == "" {
		e.status("Type some text first")
		return
	}
	p, ok := toImage(ev.Position, e.Size(), e.session.Size())
	if !ok {
		return
	}
	e.mu.RLock()
	c, size := e.currentColor, e.textSize
	e.mu.RUnlock()
	if _, added := e.session.AddText(text, float64(p.X), float64(p.Y), c, size); added {
		e.status("Text added")
	}
}

func (e *EditorWidget) MouseIn(*desktop.MouseEvent) {}
func (e *EditorWidget) MouseOut() {}
func (e *EditorWidget) MouseMoved(*desktop.MouseEvent) {}

func (e *EditorWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &editorWidgetRenderer{editor: e}
	r.background = canvas.NewRectangle(color.NRGBA{R: 245, G: 246, B: 248, A: 255})
	r.image = canvas.NewImageFromImage(nil)
	r.image.FillMode = canvas.ImageFillContain
	r.placeholder = widget.NewLabel("Open an image to start editing")
	r.placeholder.Alignment = fyne.TextAlignCenter
	return r
}

type editorWidgetRenderer struct {
	editor      *EditorWidget
	background  *canvas.Rectangle
	image       *canvas.Image
	placeholder *widget.Label
}

func (r *editorWidgetRenderer) Objects() []fyne.CanvasObject {
	e := r.editor
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.preview == nil {
		return []fyne.CanvasObject{r.background, r.placeholder}
	}
	objects := []fyne.CanvasObject{r.background, r.image}

	if !e.drawing || len(e.currentPath) < 2 {
		return objects
	}
	var lineColor color.Color = e.currentColor
	if e.tool == ToolEraser {
		lineColor = color.NRGBA{R: 128, G: 128, B: 128, A: 128}
	}
	for i := 0; i < len(e.currentPath)-1; i++ {
		segment := canvas.NewLine(lineColor)
		segment.StrokeWidth = e.currentStroke
		segment.Position1 = e.currentPath[i]
		segment.Position2 = e.currentPath[i+1]
		objects = append(objects, segment)
	}
	return objects
}

func (r *editorWidgetRenderer) Refresh() {
	r.editor.mu.RLock()
	r.image.Image = r.editor.preview
	r.editor.mu.RUnlock()
	r.image.Refresh()
	canvas.Refresh(r.editor)
}

func (r *editorWidgetRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.image.Resize(size)
	r.placeholder.Resize(size)
}

func (r *editorWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 400)
}

func (r *editorWidgetRenderer) Destroy() {}
