// Package canvas provides the interactive mask-painting canvas widget:
// the photo with its painted mask, pan/zoom, and the brush preview.
package canvas

import (
	"image"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"

	"mask-painter/internal/app"
	"mask-painter/internal/gesture"
	"mask-painter/internal/viewport"
	"mask-painter/pkg/geometry"
)

const (
	wheelZoomStep  = 0.1
	buttonZoomStep = 0.25
)

var backdrop = color.RGBA{R: 24, G: 24, B: 26, A: 255}

// MaskCanvas displays the bound photo with its mask and feeds raw input
// into the gesture machine. One widget owns one viewport, one gesture
// machine, and one continuous panner.
type MaskCanvas struct {
	widget.BaseWidget

	state   *app.State
	view    *viewport.State
	machine *gesture.Machine
	panner  *viewport.Panner
	raster  *fynecanvas.Raster

	onZoomChange func(percent int)
}

// New creates a mask canvas bound to the editor state.
func New(state *app.State) *MaskCanvas {
	mc := &MaskCanvas{
		state: state,
		view:  viewport.New(),
	}
	mc.machine = gesture.New(mc.view)
	mc.panner = viewport.NewPanner(mc.view)

	mc.raster = fynecanvas.NewRaster(mc.draw)
	mc.raster.ScaleMode = fynecanvas.ImageScalePixels

	mc.machine.OnSegment = func(p0, p1 geometry.Point2D) {
		state.CommitSegment(p0, p1)
		mc.raster.Refresh()
	}
	mc.machine.OnPreview = func(p geometry.Point2D) {
		state.RenderPreview(p)
		mc.raster.Refresh()
	}
	mc.machine.OnPreviewClear = func() {
		state.ClearPreview()
		mc.raster.Refresh()
	}
	mc.machine.OnViewChanged = func() {
		mc.raster.Refresh()
	}
	mc.panner.OnTick(func() {
		mc.raster.Refresh()
	})
	mc.view.OnChange(func(float64) {
		if mc.onZoomChange != nil {
			mc.onZoomChange(mc.view.ZoomPercent())
		}
	})

	state.On(app.EventPhotoLoaded, func(interface{}) {
		// New photo: fresh transform and geometry.
		mc.view.Reset()
		if photo := state.Photo(); photo != nil {
			mc.machine.SetPhotoSize(photo.Size())
		}
		mc.raster.Refresh()
	})
	state.On(app.EventCanvasReset, func(interface{}) {
		mc.raster.Refresh()
	})

	mc.ExtendBaseWidget(mc)
	return mc
}

// OnZoomChange sets a callback receiving the zoom as a percentage.
func (mc *MaskCanvas) OnZoomChange(callback func(percent int)) {
	mc.onZoomChange = callback
}

// ZoomIn steps the zoom with a synthetic cursor at the view center.
func (mc *MaskCanvas) ZoomIn() {
	mc.view.StepZoom(mc.containerSize(), buttonZoomStep)
	mc.raster.Refresh()
}

// ZoomOut steps the zoom out around the view center.
func (mc *MaskCanvas) ZoomOut() {
	mc.view.StepZoom(mc.containerSize(), -buttonZoomStep)
	mc.raster.Refresh()
}

// ZoomPercent returns the current zoom as a percentage.
func (mc *MaskCanvas) ZoomPercent() int {
	return mc.view.ZoomPercent()
}

// ResetView restores zoom 1 and centered pan.
func (mc *MaskCanvas) ResetView() {
	mc.view.Reset()
	mc.raster.Refresh()
}

// StartPan begins continuous panning in the given direction until
// StopPan is called. Restarting with a new direction is safe.
func (mc *MaskCanvas) StartPan(direction geometry.Point2D) {
	mc.panner.Start(direction)
}

// StopPan halts continuous panning.
func (mc *MaskCanvas) StopPan() {
	mc.panner.Stop()
}

// Close releases the widget's background resources. Must be called on
// teardown so the panner goroutine does not outlive the view.
func (mc *MaskCanvas) Close() {
	mc.panner.Stop()
	mc.machine.CancelAll()
}

// Refresh redraws the canvas.
func (mc *MaskCanvas) Refresh() {
	mc.raster.Refresh()
	mc.BaseWidget.Refresh()
}

// Resize keeps the gesture machine's notion of the interactive region
// in sync with the widget.
func (mc *MaskCanvas) Resize(size fyne.Size) {
	mc.BaseWidget.Resize(size)
	mc.machine.SetContainerSize(geometry.NewSize(float64(size.Width), float64(size.Height)))
}

// CreateRenderer implements fyne.Widget.
func (mc *MaskCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(mc.raster)
}

// MinSize implements fyne.Widget.
func (mc *MaskCanvas) MinSize() fyne.Size {
	return fyne.NewSize(200, 200)
}

// MouseDown implements desktop.Mouseable; a primary press is draw
// intent on the photo, pan intent on the letterbox.
func (mc *MaskCanvas) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	mc.machine.Handle(gesture.MouseDown{Pos: eventPoint(ev.Position)})
}

// MouseUp implements desktop.Mouseable.
func (mc *MaskCanvas) MouseUp(ev *desktop.MouseEvent) {
	mc.machine.Handle(gesture.MouseUp{Pos: eventPoint(ev.Position)})
}

// Dragged implements fyne.Draggable; motion with the button held.
func (mc *MaskCanvas) Dragged(ev *fyne.DragEvent) {
	mc.machine.Handle(gesture.MouseMove{Pos: eventPoint(ev.Position)})
}

// DragEnd implements fyne.Draggable.
func (mc *MaskCanvas) DragEnd() {
	mc.machine.Handle(gesture.MouseUp{})
}

// MouseIn implements desktop.Hoverable.
func (mc *MaskCanvas) MouseIn(ev *desktop.MouseEvent) {
	mc.machine.Handle(gesture.MouseMove{Pos: eventPoint(ev.Position)})
}

// MouseMoved implements desktop.Hoverable and drives the brush preview.
func (mc *MaskCanvas) MouseMoved(ev *desktop.MouseEvent) {
	// While a drag is in flight Dragged carries the motion; feeding the
	// hover stream too would double-commit stroke points.
	if phase := mc.machine.Phase(); phase == gesture.Drawing || phase == gesture.Panning {
		return
	}
	mc.machine.Handle(gesture.MouseMove{Pos: eventPoint(ev.Position)})
}

// MouseOut implements desktop.Hoverable.
func (mc *MaskCanvas) MouseOut() {
	mc.machine.Handle(gesture.Leave{})
}

// Scrolled zooms around the cursor instead of scrolling.
func (mc *MaskCanvas) Scrolled(ev *fyne.ScrollEvent) {
	var delta float64
	if ev.Scrolled.DY > 0 {
		delta = wheelZoomStep
	} else if ev.Scrolled.DY < 0 {
		delta = -wheelZoomStep
	} else {
		return
	}
	mc.machine.Handle(gesture.Wheel{Pos: eventPoint(ev.Position), Delta: delta})
}

// TouchDown implements mobile.Touchable. The fyne mobile driver
// delivers single-point events without touch IDs, so this path drives
// drawing and panning only; pinch input reaches the gesture machine
// through drivers that report per-touch identity.
func (mc *MaskCanvas) TouchDown(ev *mobile.TouchEvent) {
	mc.machine.Handle(gesture.TouchDown{ID: 0, Pos: eventPoint(ev.Position)})
}

// TouchUp implements mobile.Touchable.
func (mc *MaskCanvas) TouchUp(ev *mobile.TouchEvent) {
	mc.machine.Handle(gesture.TouchUp{ID: 0})
}

// TouchCancel implements mobile.Touchable.
func (mc *MaskCanvas) TouchCancel(ev *mobile.TouchEvent) {
	mc.machine.CancelAll()
}

func (mc *MaskCanvas) containerSize() geometry.Size {
	size := mc.Size()
	return geometry.NewSize(float64(size.Width), float64(size.Height))
}

func eventPoint(p fyne.Position) geometry.Point2D {
	return geometry.NewPoint2D(float64(p.X), float64(p.Y))
}

// draw is the raster drawing function: backdrop, then the painted
// raster and the preview overlay contain-fitted and transformed by the
// live zoom/pan.
func (mc *MaskCanvas) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(out, out.Bounds(), image.NewUniform(backdrop), image.Point{}, xdraw.Src)

	canvas := mc.state.Canvas()
	if canvas == nil || w <= 0 || h <= 0 {
		return out
	}

	// Pointer math runs in logical units; the raster callback gets
	// device pixels. Lay out logically, then scale the destination.
	logical := mc.containerSize()
	if logical.Empty() {
		logical = geometry.NewSize(float64(w), float64(h))
	}

	photoSize := canvas.Size()
	fit, ok := geometry.ContainFit(photoSize.Width, photoSize.Height, logical.Width, logical.Height)
	if !ok {
		return out
	}

	tr := mc.view.Transform(logical)
	tl := tr.Apply(geometry.NewPoint2D(fit.OffsetX, fit.OffsetY))
	br := tr.Apply(geometry.NewPoint2D(fit.OffsetX+fit.RenderedW, fit.OffsetY+fit.RenderedH))

	px := float64(w) / logical.Width
	py := float64(h) / logical.Height
	dest := image.Rect(
		int(math.Round(tl.X*px)), int(math.Round(tl.Y*py)),
		int(math.Round(br.X*px)), int(math.Round(br.Y*py)),
	)
	if dest.Empty() {
		return out
	}

	painted := canvas.Image()
	xdraw.ApproxBiLinear.Scale(out, dest, painted, painted.Bounds(), xdraw.Over, nil)

	preview := canvas.PreviewImage()
	xdraw.ApproxBiLinear.Scale(out, dest, preview, preview.Bounds(), xdraw.Over, nil)

	return out
}
