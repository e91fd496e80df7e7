// Package panels provides the editor's side panel widgets.
package panels

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"mask-painter/internal/app"
	"mask-painter/pkg/colorutil"
	"mask-painter/pkg/geometry"
	maskcanvas "mask-painter/ui/canvas"
)

const (
	minBrushSize = 4
	maxBrushSize = 200
)

// ToolPanel holds the brush, zoom, and export controls.
type ToolPanel struct {
	content fyne.CanvasObject

	state  *app.State
	canvas *maskcanvas.MaskCanvas

	sizeValue *widget.Label
	zoomLabel *widget.Label

	// OnExport is invoked by the export button; the window wires it to
	// the save dialog.
	OnExport func()
}

// New builds the tool panel for the given state and canvas.
func New(state *app.State, canvas *maskcanvas.MaskCanvas) *ToolPanel {
	tp := &ToolPanel{
		state:  state,
		canvas: canvas,
	}

	brush := state.Brush()

	tp.sizeValue = widget.NewLabel(fmt.Sprintf("%.0f px", brush.Size))
	sizeSlider := widget.NewSlider(minBrushSize, maxBrushSize)
	sizeSlider.Value = brush.Size
	sizeSlider.OnChanged = func(v float64) {
		state.SetBrushSize(v)
		tp.sizeValue.SetText(fmt.Sprintf("%.0f px", v))
	}

	swatches := make([]fyne.CanvasObject, 0, len(colorutil.Palette))
	for _, c := range colorutil.Palette {
		swatches = append(swatches, newSwatch(c, state.SetBrushColor))
	}

	tp.zoomLabel = widget.NewLabel(fmt.Sprintf("%d%%", canvas.ZoomPercent()))
	tp.zoomLabel.Alignment = fyne.TextAlignCenter
	canvas.OnZoomChange(func(percent int) {
		tp.zoomLabel.SetText(fmt.Sprintf("%d%%", percent))
	})

	zoomOut := widget.NewButtonWithIcon("", theme.ZoomOutIcon(), canvas.ZoomOut)
	zoomIn := widget.NewButtonWithIcon("", theme.ZoomInIcon(), canvas.ZoomIn)
	resetView := widget.NewButton("Reset View", func() {
		canvas.ResetView()
		tp.zoomLabel.SetText(fmt.Sprintf("%d%%", canvas.ZoomPercent()))
	})

	// Held arrows scroll the view toward the pressed direction.
	up := tp.panButton(theme.MoveUpIcon(), geometry.NewPoint2D(0, 1))
	down := tp.panButton(theme.MoveDownIcon(), geometry.NewPoint2D(0, -1))
	left := tp.panButton(theme.NavigateBackIcon(), geometry.NewPoint2D(1, 0))
	right := tp.panButton(theme.NavigateNextIcon(), geometry.NewPoint2D(-1, 0))

	clearMask := widget.NewButton("Clear Mask", state.ResetCanvas)
	export := widget.NewButtonWithIcon("Export", theme.DocumentSaveIcon(), func() {
		if tp.OnExport != nil {
			tp.OnExport()
		}
	})
	export.Importance = widget.HighImportance

	tp.content = container.NewVBox(
		widget.NewLabelWithStyle("Brush", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		sizeSlider,
		tp.sizeValue,
		container.NewGridWithColumns(3, swatches...),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("View", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewGridWithColumns(3, zoomOut, tp.zoomLabel, zoomIn),
		container.NewGridWithColumns(3, layoutSpacer(), up, layoutSpacer(), left, down, right),
		resetView,
		widget.NewSeparator(),
		clearMask,
		export,
	)
	return tp
}

// Content returns the panel's root object.
func (tp *ToolPanel) Content() fyne.CanvasObject {
	return tp.content
}

func (tp *ToolPanel) panButton(icon fyne.Resource, direction geometry.Point2D) *holdButton {
	return newHoldButton(icon,
		func() { tp.canvas.StartPan(direction) },
		tp.canvas.StopPan,
	)
}

func layoutSpacer() fyne.CanvasObject {
	return widget.NewLabel("")
}

// holdButton fires onPress when the pointer goes down and onRelease
// when it goes up or leaves, unlike widget.Button which only taps.
type holdButton struct {
	widget.Button
	onPress   func()
	onRelease func()
}

func newHoldButton(icon fyne.Resource, onPress, onRelease func()) *holdButton {
	b := &holdButton{onPress: onPress, onRelease: onRelease}
	b.Icon = icon
	b.ExtendBaseWidget(b)
	return b
}

func (b *holdButton) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button == desktop.MouseButtonPrimary {
		b.onPress()
	}
}

func (b *holdButton) MouseUp(*desktop.MouseEvent) {
	b.onRelease()
}

func (b *holdButton) MouseOut() {
	b.onRelease()
	b.Button.MouseOut()
}

func (b *holdButton) TouchDown(*mobile.TouchEvent) {
	b.onPress()
}

func (b *holdButton) TouchUp(*mobile.TouchEvent) {
	b.onRelease()
}

func (b *holdButton) TouchCancel(*mobile.TouchEvent) {
	b.onRelease()
}

// swatch is a tappable color patch for the brush palette.
type swatch struct {
	widget.BaseWidget
	color    color.RGBA
	onSelect func(color.RGBA)
}

func newSwatch(c color.RGBA, onSelect func(color.RGBA)) *swatch {
	s := &swatch{color: c, onSelect: onSelect}
	s.ExtendBaseWidget(s)
	return s
}

func (s *swatch) Tapped(*fyne.PointEvent) {
	s.onSelect(s.color)
}

func (s *swatch) MinSize() fyne.Size {
	return fyne.NewSize(32, 24)
}

func (s *swatch) CreateRenderer() fyne.WidgetRenderer {
	rect := fynecanvas.NewRectangle(s.color)
	rect.StrokeColor = color.RGBA{R: 90, G: 90, B: 96, A: 255}
	rect.StrokeWidth = 1
	return widget.NewSimpleRenderer(rect)
}
