package ui

import (
	"context"
	"errors"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"RoMagic/internal/config"
	"RoMagic/internal/editor"
	"RoMagic/internal/removebg"
)

const windowTitle = "RoMagic Pro"

// App is the main window and the widgets that mirror the session.
type App struct {
	win     fyne.Window
	session *editor.Session
	cfg     *config.Config

	editor        *EditorWidget
	filters       *FilterPanel
	syncTransform func()
	status        *widget.Label
	removeBtn     *widget.Button
}

// NewApp builds the main window for s without showing it.
func NewApp(fa fyne.App, s *editor.Session, cfg *config.Config) *App {
	a := &App{
		win:     fa.NewWindow(windowTitle),
		session: s,
		cfg:     cfg,
		status:  widget.NewLabel("Ready"),
	}
	a.win.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))

	a.editor = NewEditorWidget(s)
	a.editor.OnStatus = a.SetStatus
	a.filters = NewFilterPanel(s)
	transformPanel, syncTransform := NewTransformPanel(s)
	a.syncTransform = syncTransform
	textPanel := NewTextPanel(a.editor, s.ClearText)

	a.removeBtn = widget.NewButtonWithIcon("Remove background", theme.ColorPaletteIcon(), a.removeBackground)

	tabs := container.NewAppTabs(
		container.NewTabItem("Filters", container.NewVScroll(a.filters.Content)),
		container.NewTabItem("Transform", transformPanel),
		container.NewTabItem("Text", textPanel.Content),
	)
	side := container.NewBorder(nil, a.removeBtn, nil, nil, tabs)

	toolbar := NewToolbar(a.editor, Actions{
		Open:         a.showOpen,
		Save:         a.showSave,
		CopyDataURL:  a.copyDataURL,
		Undo:         func() { s.Undo() },
		Redo:         func() { s.Redo() },
		Reset:        s.Reset,
		ClearDrawing: s.ClearDrawing,
	}, func(t Tool) { a.SetStatus("Tool: " + t.String()) })

	split := container.NewHSplit(side, a.editor)
	split.Offset = 0.25
	a.win.SetContent(container.NewBorder(toolbar, a.status, nil, nil, split))
	a.addShortcuts()

	s.OnChange = func() { fyne.Do(a.Refresh) }
	a.Refresh()
	return a
}

func (a *App) addShortcuts() {
	c := a.win.Canvas()
	add := func(key fyne.KeyName, fn func()) {
		c.AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { fn() })
	}
	add(fyne.KeyO, a.showOpen)
	add(fyne.KeyS, a.showSave)
	add(fyne.KeyZ, func() { a.session.Undo() })
	add(fyne.KeyY, func() { a.session.Redo() })
}

// Refresh redraws the preview and brings every control in line with the
// session. It must run on the UI goroutine.
func (a *App) Refresh() {
	a.editor.Update()
	a.filters.Sync()
	a.syncTransform()
	if a.session.Loading() {
		a.removeBtn.Disable()
	} else {
		a.removeBtn.Enable()
	}
}

func (a *App) SetStatus(text string) {
	a.status.SetText(text)
}

func (a *App) removeBackground() {
	if a.session.Loading() {
		return
	}
	a.SetStatus("Removing background...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RemoveBG.Timeout)
		defer cancel()
		err := a.session.RemoveBackground(ctx)
		fyne.Do(func() { a.SetStatus(removeStatus(err)) })
	}()
}

func removeStatus(err error) string {
	switch {
	case err == nil:
		return "Background removed"
	case errors.Is(err, editor.ErrNoImage):
		return "Open an image first"
	case errors.Is(err, editor.ErrBusy):
		return "Background removal already running"
	case errors.Is(err, editor.ErrStale):
		return "Another image was opened, background removal discarded"
	case errors.Is(err, removebg.ErrNoAPIKey), errors.Is(err, editor.ErrNoRemover):
		return "Set REMOVE_BG_API_KEY to enable background removal"
	default:
		return "Background removal failed"
	}
}

// RunApp shows the main window and blocks until it is closed.
// The initial image is loaded before the window exists so the first
// Refresh already shows it.
func RunApp(fa fyne.App, s *editor.Session, cfg *config.Config, initial string) {
	var loadErr error
	if initial != "" {
		loadErr = loadPath(s, initial)
	}
	a := NewApp(fa, s, cfg)
	switch {
	case loadErr != nil:
		log.Printf("RunApp: %v", loadErr)
		a.SetStatus(loadErr.Error())
	case initial != "":
		a.SetStatus("Opened " + s.SourceName())
	}
	a.win.ShowAndRun()
}
