package viewport

import (
	"mask-painter/pkg/geometry"
)

// MapToImage converts a container-relative point in pre-zoom space to
// photo pixel coordinates through the contain-fit layout. With
// clampInside true, points outside the letterboxed rectangle (or a
// degenerate container/photo) map to no point; with clampInside false
// the result may fall outside [0,w]x[0,h], which the brush preview uses
// to follow the pointer past the photo edge.
func MapToImage(p geometry.Point2D, container, photo geometry.Size, clampInside bool) (geometry.Point2D, bool) {
	fit, ok := geometry.ContainFit(photo.Width, photo.Height, container.Width, container.Height)
	if !ok {
		return geometry.Point2D{}, false
	}

	local := geometry.Point2D{X: p.X - fit.OffsetX, Y: p.Y - fit.OffsetY}
	if clampInside {
		if local.X < 0 || local.Y < 0 || local.X > fit.RenderedW || local.Y > fit.RenderedH {
			return geometry.Point2D{}, false
		}
	}

	return local.Scale(fit.Scale(photo.Width)), true
}

// MapThroughView maps a raw screen point to photo pixels under the live
// transform. The rendering surface here is static and the zoom/pan is
// applied by the compositor, so the transform is divided out first:
// scale about the container center is undone, then the point goes
// through MapToImage.
func MapThroughView(p geometry.Point2D, container, photo geometry.Size, view *State, clampInside bool) (geometry.Point2D, bool) {
	if view == nil || container.Empty() {
		return geometry.Point2D{}, false
	}

	view.mu.Lock()
	zoom, pan := view.zoom, view.pan
	view.mu.Unlock()
	if zoom <= 0 {
		return geometry.Point2D{}, false
	}

	c := container.Center()
	pre := p.Sub(c).Sub(pan).Scale(1 / zoom).Add(c)
	return MapToImage(pre, container, photo, clampInside)
}
