package geometry

// FitResult describes the placement of content scaled to fit a container
// while preserving aspect ratio ("object-fit: contain"): the largest
// centered rectangle with the content's aspect ratio that fits inside the
// container, with letterbox margins on the constrained axis.
type FitResult struct {
	RenderedW float64
	RenderedH float64
	OffsetX   float64
	OffsetY   float64
}

// Rect returns the fitted rectangle in container coordinates.
func (f FitResult) Rect() Rect {
	return Rect{X: f.OffsetX, Y: f.OffsetY, Width: f.RenderedW, Height: f.RenderedH}
}

// Scale returns the content-pixels-per-rendered-pixel factor. X and Y
// share one factor because the aspect ratio is preserved.
func (f FitResult) Scale(contentW float64) float64 {
	if f.RenderedW <= 0 {
		return 0
	}
	return contentW / f.RenderedW
}

// ContainFit computes the contain-fit placement of content inside a
// container. A wider-than-container image is width-constrained and
// letterboxed top/bottom; otherwise it is height-constrained and
// letterboxed left/right. Returns false if either size is degenerate.
func ContainFit(contentW, contentH, containerW, containerH float64) (FitResult, bool) {
	if contentW <= 0 || contentH <= 0 || containerW <= 0 || containerH <= 0 {
		return FitResult{}, false
	}

	var f FitResult
	if contentW/contentH > containerW/containerH {
		f.RenderedW = containerW
		f.RenderedH = containerW * contentH / contentW
	} else {
		f.RenderedH = containerH
		f.RenderedW = containerH * contentW / contentH
	}
	f.OffsetX = (containerW - f.RenderedW) / 2
	f.OffsetY = (containerH - f.RenderedH) / 2
	return f, true
}
