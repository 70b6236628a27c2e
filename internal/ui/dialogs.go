package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"RoMagic/internal/editor"
	"RoMagic/internal/render"
)

func (a *App) showOpen() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.win)
			return
		}
		if reader == nil {
			return
		}
		a.LoadFromFile(reader)
	}, a.win)
	d.SetFilter(storage.NewExtensionFileFilter(render.ImageExtensions))
	d.Show()
}

func (a *App) LoadFromFile(reader fyne.URIReadCloser) {
	defer func() {
		if err := reader.Close(); err != nil {
			log.Printf("Error closing reader: %v", err)
		}
	}()

	name := reader.URI().Name()
	a.SetStatus("Loading " + name + "...")
	if err := a.session.LoadReader(name, reader); err != nil {
		log.Printf("LoadFromFile: %v", err)
		a.SetStatus("Could not open " + name)
		return
	}
	a.SetStatus(fmt.Sprintf("Opened %s", name))
}

// loadPath opens an image from the local filesystem.
func loadPath(s *editor.Session, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return s.Load(filepath.Base(path), data)
}

func (a *App) showSave() {
	if !a.session.HasImage() {
		return
	}
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.win)
			return
		}
		if writer == nil {
			return
		}
		a.SaveToFile(writer)
	}, a.win)
	d.SetFileName(a.cfg.Export.Name())
	d.SetFilter(storage.NewExtensionFileFilter([]string{".jpg", ".jpeg", ".png", ".pdf"}))
	d.Show()
}

func (a *App) SaveToFile(writer fyne.URIWriteCloser) {
	defer func() {
		if err := writer.Close(); err != nil {
			log.Printf("Error closing writer: %v", err)
		}
	}()

	opts := a.cfg.Export
	if ext := writer.URI().Extension(); ext != "" {
		f, err := render.LookupFormat(ext)
		if err != nil {
			log.Printf("SaveToFile: %v", err)
			a.SetStatus("Save as .jpg, .png or .pdf")
			return
		}
		opts.Format = f
	}
	if err := a.session.Export(context.Background(), writer, opts); err != nil {
		if errors.Is(err, editor.ErrNoImage) {
			return
		}
		log.Printf("SaveToFile: %v", err)
		a.SetStatus("Error saving file")
		return
	}
	a.SetStatus("Saved " + writer.URI().Name())
}

func (a *App) copyDataURL() {
	u, err := a.session.DataURL(context.Background(), a.cfg.Export)
	if err != nil {
		if !errors.Is(err, editor.ErrNoImage) {
			log.Printf("copyDataURL: %v", err)
		}
		return
	}
	a.win.Clipboard().SetContent(u)
	a.SetStatus(fmt.Sprintf("Copied data URL (%d KB)", len(u)/1024))
}
