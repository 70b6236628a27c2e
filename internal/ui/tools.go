package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"RoMagic/internal/render"
)

type Tool int

const (
	ToolPen Tool = iota
	ToolEraser
	ToolText
)

func (t Tool) String() string {
	switch t {
	case ToolEraser:
		return "Eraser"
	case ToolText:
		return "Text"
	default:
		return "Pen"
	}
}

const (
	defaultStroke   = 3.0
	minStroke       = 1.0
	maxStroke       = 50.0
	defaultTextSize = 32.0
)

// Actions are the toolbar commands that are not drawing tools.
type Actions struct {
	Open, Save, CopyDataURL func()
	Undo, Redo, Reset       func()
	ClearDrawing            func()
}

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func(color.Color)
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// NewToolbar builds the top bar: file and history actions, then the drawing
// tools, palette and stroke size.
func NewToolbar(ed *EditorWidget, a Actions, onTool func(Tool)) fyne.CanvasObject {
	pick := func(t Tool) func() {
		return func() {
			ed.SetTool(t)
			if onTool != nil {
				onTool(t)
			}
		}
	}

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), a.Open),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), a.Save),
		widget.NewToolbarAction(theme.ContentCopyIcon(), a.CopyDataURL),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), a.Undo),
		widget.NewToolbarAction(theme.ContentRedoIcon(), a.Redo),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), a.Reset),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentCreateIcon(), pick(ToolPen)),  // Pen
		widget.NewToolbarAction(theme.ContentClearIcon(), pick(ToolEraser)), // Eraser
		widget.NewToolbarAction(theme.ContentAddIcon(), pick(ToolText)),     // Text
		widget.NewToolbarAction(theme.DeleteIcon(), a.ClearDrawing),
	)

	onColorTapped := func(c color.Color) {
		ed.SetColor(c)
	}
	colorBox := container.NewHBox()
	for _, c := range render.Palette {
		colorBox.Add(newColorSwatch(c.Color, onColorTapped))
	}

	strokeSlider := widget.NewSlider(minStroke, maxStroke)
	strokeSlider.SetValue(defaultStroke)
	strokeSlider.OnChanged = func(val float64) {
		ed.SetStroke(float32(val))
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), strokeSlider)

	return container.NewHBox(
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		layout.NewSpacer(),
	)
}
