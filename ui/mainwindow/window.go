// Package mainwindow assembles the editor's main window.
package mainwindow

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"mask-painter/internal/app"
	imagepkg "mask-painter/internal/image"
	"mask-painter/pkg/colorutil"
	maskcanvas "mask-painter/ui/canvas"
	"mask-painter/ui/panels"
	"mask-painter/ui/prefs"
)

const (
	defaultWidth  = 1200
	defaultHeight = 800
)

var photoExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff"}

// MainWindow ties the canvas, the tool panel, and the dialogs together.
type MainWindow struct {
	win    fyne.Window
	state  *app.State
	prefs  *prefs.Prefs
	canvas *maskcanvas.MaskCanvas
	panel  *panels.ToolPanel

	savedSnapshot string
}

// New builds the main window. Preferences are applied to the brush and
// window size before the first show.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	mw := &MainWindow{
		win:   fyneApp.NewWindow("Mask Painter"),
		state: state,
		prefs: p,
	}

	mw.applyPreferences()

	mw.canvas = maskcanvas.New(state)
	mw.panel = panels.New(state, mw.canvas)
	mw.panel.OnExport = mw.showExportDialog

	openButton := widget.NewButtonWithIcon("Open Photo", theme.FolderOpenIcon(), mw.showOpenDialog)
	status := widget.NewLabel("No photo loaded")
	state.On(app.EventPhotoLoaded, func(data interface{}) {
		if photo, ok := data.(*imagepkg.Photo); ok {
			status.SetText(fmt.Sprintf("%s  %dx%d",
				filepath.Base(photo.Path), photo.NaturalWidth, photo.NaturalHeight))
		}
	})
	state.On(app.EventExported, func(data interface{}) {
		if path, ok := data.(string); ok {
			status.SetText("Exported " + filepath.Base(path))
		}
	})
	top := container.NewBorder(nil, nil, openButton, nil, status)

	mw.win.SetContent(container.NewBorder(
		top, nil, nil, mw.panel.Content(),
		mw.canvas,
	))
	mw.win.Resize(fyne.NewSize(
		float32(p.Float(prefs.KeyWindowWidth, defaultWidth)),
		float32(p.Float(prefs.KeyWindowHeight, defaultHeight)),
	))
	mw.win.SetOnClosed(func() {
		mw.canvas.Close()
		mw.SavePreferences()
	})

	mw.savedSnapshot = mw.snapshot()
	return mw
}

// Window returns the underlying fyne window.
func (mw *MainWindow) Window() fyne.Window {
	return mw.win
}

// SetTitle sets the window title.
func (mw *MainWindow) SetTitle(title string) {
	mw.win.SetTitle(title)
}

// ShowAndRun shows the window and runs the event loop.
func (mw *MainWindow) ShowAndRun() {
	mw.win.ShowAndRun()
}

func (mw *MainWindow) applyPreferences() {
	mw.state.SetBrushSize(mw.prefs.Float(prefs.KeyBrushSize, mw.state.Brush().Size))
	if hex := mw.prefs.String(prefs.KeyBrushColor, ""); hex != "" {
		if c, err := colorutil.ParseHex(hex); err == nil {
			mw.state.SetBrushColor(c)
		} else {
			log.Printf("Ignoring bad brush color preference %q: %v", hex, err)
		}
	}
}

// SavePreferences writes the current brush and window geometry to disk.
func (mw *MainWindow) SavePreferences() {
	brush := mw.state.Brush()
	mw.prefs.SetFloat(prefs.KeyBrushSize, brush.Size)
	mw.prefs.SetString(prefs.KeyBrushColor, colorutil.ToHex(brush.Color))

	size := mw.win.Canvas().Size()
	if size.Width > 0 && size.Height > 0 {
		mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
		mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	}

	if err := mw.prefs.Save(); err != nil {
		log.Printf("Failed to save preferences: %v", err)
		return
	}
	mw.savedSnapshot = mw.snapshot()
}

// SavePreferencesIfChanged saves only when something differs from the
// last save. Cheap enough to call from a periodic tick.
func (mw *MainWindow) SavePreferencesIfChanged() {
	if mw.snapshot() != mw.savedSnapshot {
		mw.SavePreferences()
	}
}

func (mw *MainWindow) snapshot() string {
	brush := mw.state.Brush()
	size := mw.win.Canvas().Size()
	return fmt.Sprintf("%.1f|%s|%.0fx%.0f",
		brush.Size, colorutil.ToHex(brush.Color), size.Width, size.Height)
}

func (mw *MainWindow) showOpenDialog() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, mw.win)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		photo, err := imagepkg.Decode(reader)
		if err != nil {
			dialog.ShowError(fmt.Errorf("open %s: %w", reader.URI().Name(), err), mw.win)
			return
		}
		photo.Path = reader.URI().Path()
		if err := mw.state.BindPhoto(photo); err != nil {
			dialog.ShowError(err, mw.win)
		}
	}, mw.win)
	fd.SetFilter(storage.NewExtensionFileFilter(photoExtensions))
	fd.Show()
}

func (mw *MainWindow) showExportDialog() {
	if mw.state.Canvas() == nil {
		dialog.ShowInformation("Export", "Load a photo first.", mw.win)
		return
	}

	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, mw.win)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		mimeType := mimeForPath(path, mw.prefs.String(prefs.KeyExportFormat, "image/png"))
		quality := mw.prefs.Float(prefs.KeyExportQuality, 0.9)
		if err := mw.state.ExportToFile(path, mimeType, quality); err != nil {
			dialog.ShowError(err, mw.win)
			return
		}

		if summary, err := mw.state.MaskSummary(); err == nil && !summary.Empty() {
			log.Printf("Mask covers %.1f%% of the photo (%d px)",
				summary.Coverage*100, summary.PixelCount)
		}
	}, mw.win)
	fd.SetFileName(exportFileName(mw.state))
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg"}))
	fd.Show()
}

func mimeForPath(path, fallback string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	}
	return fallback
}

func exportFileName(state *app.State) string {
	photo := state.Photo()
	if photo == nil || photo.Path == "" {
		return "mask.png"
	}
	base := filepath.Base(photo.Path)
	ext := strings.ToLower(filepath.Ext(base))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		ext = ".png"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + "-mask" + ext
}
