// Package viewport owns the zoom and pan transform of one editor view.
//
// Pan is measured in screen pixels relative to the container center: the
// displayed content is the contain-fitted photo scaled by Zoom about the
// container center, then translated by Pan. All zoom operations preserve
// the content point under their anchor (cursor for the wheel, touch
// midpoint for a pinch).
package viewport

import (
	"math"
	"sync"

	"mask-painter/pkg/geometry"
)

// Zoom bounds. A zoom of 1 shows the whole contain-fitted photo.
const (
	MinZoom = 1.0
	MaxZoom = 3.0
)

// State holds the zoom scalar and pan vector for one editor session.
// Gesture events arrive serially, but the continuous-pan scheduler ticks
// from its own goroutine, so the transform is guarded by a mutex.
type State struct {
	mu   sync.Mutex
	zoom float64
	pan  geometry.Point2D

	onChange func(zoom float64)
}

// New creates a viewport state at the identity transform.
func New() *State {
	return &State{zoom: 1}
}

// OnChange sets a callback invoked after every zoom change, for the
// external zoom readout. Called without the state lock held.
func (s *State) OnChange(callback func(zoom float64)) {
	s.mu.Lock()
	s.onChange = callback
	s.mu.Unlock()
}

// Zoom returns the current zoom scalar.
func (s *State) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// Pan returns the current pan vector.
func (s *State) Pan() geometry.Point2D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pan
}

// Reset restores the identity transform.
func (s *State) Reset() {
	s.mu.Lock()
	s.zoom = 1
	s.pan = geometry.Point2D{}
	zoom, notify := s.zoom, s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(zoom)
	}
}

// ZoomPercent returns the current zoom rounded to a whole percentage.
func (s *State) ZoomPercent() int {
	return int(math.Round(s.Zoom() * 100))
}

func clampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// anchoredPan computes the pan that keeps one content point fixed across
// a zoom change. The content point under oldAnchor before the change
// ends up under newAnchor after it. Both the wheel (stationary anchor)
// and the pinch (drifting midpoint) reduce to this formula.
func anchoredPan(center, oldAnchor, newAnchor geometry.Point2D, oldZoom, newZoom float64, oldPan geometry.Point2D) geometry.Point2D {
	world := oldAnchor.Sub(center).Sub(oldPan).Scale(1 / oldZoom)
	return newAnchor.Sub(center).Sub(world.Scale(newZoom))
}

// WheelZoom applies one wheel step at the given cursor position. The
// step is multiplicative (delta scaled by the current zoom) so zooming
// feels linear at every level; the point under the cursor stays put.
func (s *State) WheelZoom(cursor geometry.Point2D, container geometry.Size, delta float64) {
	s.mu.Lock()
	if container.Empty() || s.zoom <= 0 {
		s.mu.Unlock()
		return
	}

	newZoom := clampZoom(s.zoom + delta*s.zoom)
	if newZoom == s.zoom {
		s.mu.Unlock()
		return
	}

	s.pan = anchoredPan(container.Center(), cursor, cursor, s.zoom, newZoom, s.pan)
	s.zoom = newZoom
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(newZoom)
	}
}

// StepZoom is the wheel-zoom equivalent for external +/- buttons, using
// a synthetic cursor at the container center.
func (s *State) StepZoom(container geometry.Size, delta float64) {
	s.WheelZoom(container.Center(), container, delta)
}

// PinchAnchor captures the state of a pinch gesture at the moment the
// second touch lands. It lives for exactly one pinch and is discarded
// when the touch count drops below two.
type PinchAnchor struct {
	StartDistance float64
	StartMidpoint geometry.Point2D
	StartZoom     float64
	StartPan      geometry.Point2D
}

// BeginPinch creates a PinchAnchor from the two current touch positions
// and the current transform.
func (s *State) BeginPinch(t1, t2 geometry.Point2D) PinchAnchor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PinchAnchor{
		StartDistance: t1.Distance(t2),
		StartMidpoint: geometry.Midpoint(t1, t2),
		StartZoom:     s.zoom,
		StartPan:      s.pan,
	}
}

// PinchZoom updates zoom and pan from the current positions of both
// touches. Zoom follows the inter-touch distance ratio; pan keeps the
// content point that started under the midpoint under the (possibly
// drifted) midpoint.
func (s *State) PinchZoom(anchor PinchAnchor, t1, t2 geometry.Point2D, container geometry.Size) {
	if container.Empty() || anchor.StartDistance <= 0 || anchor.StartZoom <= 0 {
		return
	}

	newZoom := clampZoom(anchor.StartZoom * t1.Distance(t2) / anchor.StartDistance)
	mid := geometry.Midpoint(t1, t2)

	s.mu.Lock()
	s.pan = anchoredPan(container.Center(), anchor.StartMidpoint, mid,
		anchor.StartZoom, newZoom, anchor.StartPan)
	changed := newZoom != s.zoom
	s.zoom = newZoom
	notify := s.onChange
	s.mu.Unlock()

	if changed && notify != nil {
		notify(newZoom)
	}
}

// PanAnchor captures the pointer and pan at the start of a drag.
type PanAnchor struct {
	StartPointer geometry.Point2D
	StartPan     geometry.Point2D
}

// BeginPan creates a PanAnchor at the given pointer position.
func (s *State) BeginPan(pointer geometry.Point2D) PanAnchor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PanAnchor{StartPointer: pointer, StartPan: s.pan}
}

// DragPan pans by the pointer's displacement since the drag started.
// Panning is unclamped; dragging past the photo edge is allowed and the
// compositor simply letterboxes.
func (s *State) DragPan(anchor PanAnchor, pointer geometry.Point2D) {
	s.mu.Lock()
	s.pan = anchor.StartPan.Add(pointer.Sub(anchor.StartPointer))
	s.mu.Unlock()
}

// PanBy shifts the pan by a delta. Used by the continuous-pan scheduler,
// whose ticks may interleave with gesture events.
func (s *State) PanBy(delta geometry.Point2D) {
	s.mu.Lock()
	s.pan = s.pan.Add(delta)
	s.mu.Unlock()
}

// Transform returns the screen transform as an affine matrix: scale by
// Zoom about the container center, then translate by Pan.
func (s *State) Transform(container geometry.Size) geometry.AffineTransform {
	s.mu.Lock()
	zoom, pan := s.zoom, s.pan
	s.mu.Unlock()

	c := container.Center()
	return geometry.Translation(c.X+pan.X, c.Y+pan.Y).
		Compose(geometry.Scaling(zoom)).
		Compose(geometry.Translation(-c.X, -c.Y))
}
