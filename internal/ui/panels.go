package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"RoMagic/internal/editor"
	"RoMagic/internal/state"
)

// FilterPanel has one labelled slider per filter. Moving a slider previews
// the value; releasing it records an undoable edit.
type FilterPanel struct {
	session *editor.Session
	sliders map[state.FilterKind]*widget.Slider
	labels  map[state.FilterKind]*widget.Label
	syncing bool

	Content fyne.CanvasObject
}

func NewFilterPanel(s *editor.Session) *FilterPanel {
	p := &FilterPanel{
		session: s,
		sliders: make(map[state.FilterKind]*widget.Slider),
		labels:  make(map[state.FilterKind]*widget.Label),
	}

	box := container.NewVBox()
	for _, spec := range state.FilterSpecs {
		label := widget.NewLabel(filterLabel(spec, spec.Default))
		slider := widget.NewSlider(spec.Min, spec.Max)
		slider.Step = spec.Step
		slider.SetValue(spec.Default)

		slider.OnChanged = func(v float64) {
			label.SetText(filterLabel(spec, v))
			if p.syncing {
				return
			}
			p.session.PreviewFilter(spec.Kind, v)
		}
		slider.OnChangeEnded = func(v float64) {
			if p.syncing {
				return
			}
			p.session.CommitFilter(spec.Kind, v)
		}

		p.sliders[spec.Kind] = slider
		p.labels[spec.Kind] = label
		box.Add(label)
		box.Add(slider)
	}
	p.Content = box
	return p
}

// Sync moves the sliders to the session's current values without recording.
func (p *FilterPanel) Sync() {
	f := p.session.State().Filters
	p.syncing = true
	defer func() { p.syncing = false }()
	for _, spec := range state.FilterSpecs {
		v := f.Get(spec.Kind)
		if p.sliders[spec.Kind].Value != v {
			p.sliders[spec.Kind].SetValue(v)
		}
		p.labels[spec.Kind].SetText(filterLabel(spec, v))
	}
}

func filterLabel(spec state.FilterSpec, v float64) string {
	if spec.Kind == state.Temperature {
		return fmt.Sprintf("%s: %+.0f", spec.Label, v)
	}
	return fmt.Sprintf("%s: %.0f%%", spec.Label, v)
}

// NewTransformPanel holds the rotate and flip buttons.
func NewTransformPanel(s *editor.Session) (fyne.CanvasObject, func()) {
	info := widget.NewLabel(transformLabel(s.State().Transform))

	grid := container.NewGridWithColumns(2,
		widget.NewButtonWithIcon("Rotate Left", theme.ContentUndoIcon(), func() { s.Rotate(state.Left) }),
		widget.NewButtonWithIcon("Rotate Right", theme.ContentRedoIcon(), func() { s.Rotate(state.Right) }),
		widget.NewButton("Flip H", func() { s.Flip(state.Horizontal) }),
		widget.NewButton("Flip V", func() { s.Flip(state.Vertical) }),
	)
	sync := func() { info.SetText(transformLabel(s.State().Transform)) }
	return container.NewVBox(grid, info), sync
}

func transformLabel(t state.Transform) string {
	return fmt.Sprintf("Rotation %d°, flip %+d/%+d", t.Rotate, t.FlipH, t.FlipV)
}

// TextPanel collects the text the text tool places on the image.
type TextPanel struct {
	Entry   *widget.Entry
	Content fyne.CanvasObject
}

func NewTextPanel(ed *EditorWidget, onClear func()) *TextPanel {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Text to place")

	sizeLabel := widget.NewLabel(fmt.Sprintf("Size: %.0fpt", defaultTextSize))
	size := widget.NewSlider(8, 200)
	size.SetValue(defaultTextSize)
	size.OnChanged = func(v float64) {
		sizeLabel.SetText(fmt.Sprintf("Size: %.0fpt", v))
		ed.SetTextSize(v)
	}

	useTool := widget.NewButtonWithIcon("Place on click", theme.ContentAddIcon(), func() { ed.SetTool(ToolText) })
	clearBtn := widget.NewButtonWithIcon("Clear text", theme.DeleteIcon(), onClear)

	ed.TextSource = func() string { return entry.Text }
	return &TextPanel{
		Entry:   entry,
		Content: container.NewVBox(entry, sizeLabel, size, useTool, clearBtn),
	}
}
