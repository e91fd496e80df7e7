// Package app provides application state and events for the mask editor.
package app

import (
	"image/color"
	"log"
	"os"
	"sync"

	"mask-painter/internal/image"
	"mask-painter/internal/mask"
	"mask-painter/internal/raster"
	"mask-painter/pkg/colorutil"
	"mask-painter/pkg/geometry"
)

// EventType identifies different application events.
type EventType int

const (
	EventPhotoLoaded EventType = iota
	EventBrushChanged
	EventCanvasReset
	EventModified
	EventExported
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State holds one editor session: the bound photo, its painted raster,
// and the active brush. Gestures are serialized by the UI event loop;
// the mutex covers the async photo load and background exports.
type State struct {
	mu sync.RWMutex

	photo    *image.Photo
	canvas   *raster.Canvas
	brush    raster.Brush
	modified bool

	listeners map[EventType][]EventListener
}

// NewState creates a new editor state with the default brush.
func NewState() *State {
	return &State{
		brush: raster.Brush{
			Size:  40,
			Color: colorutil.Magenta,
		},
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// BindPhoto replaces the session's photo and rebuilds the raster. The
// previous mask is discarded.
func (s *State) BindPhoto(photo *image.Photo) error {
	canvas, err := raster.New(photo.Image)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.photo = photo
	s.canvas = canvas
	s.modified = false
	s.mu.Unlock()

	log.Printf("Photo bound: %s (%dx%d)", photo.Path, photo.NaturalWidth, photo.NaturalHeight)
	s.Emit(EventPhotoLoaded, photo)
	return nil
}

// LoadPhoto loads a photo from disk and binds it.
func (s *State) LoadPhoto(path string) error {
	photo, err := image.Load(path)
	if err != nil {
		return err
	}
	return s.BindPhoto(photo)
}

// LoadPhotoAsync loads a photo off the event loop. Until done fires the
// session has no photo and all gestures are no-ops.
func (s *State) LoadPhotoAsync(path string, done func(error)) {
	go func() {
		err := s.LoadPhoto(path)
		if err != nil {
			log.Printf("Failed to load photo %s: %v", path, err)
		}
		if done != nil {
			done(err)
		}
	}()
}

// Photo returns the bound photo, or nil while none is loaded.
func (s *State) Photo() *image.Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.photo
}

// Canvas returns the raster canvas, or nil while no photo is bound.
func (s *State) Canvas() *raster.Canvas {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canvas
}

// Brush returns the active brush.
func (s *State) Brush() raster.Brush {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.brush
}

// SetBrushSize updates the brush diameter (image-space pixels).
func (s *State) SetBrushSize(size float64) {
	s.mu.Lock()
	s.brush.Size = size
	b := s.brush
	s.mu.Unlock()
	s.Emit(EventBrushChanged, b)
}

// SetBrushColor updates the mask color.
func (s *State) SetBrushColor(c color.RGBA) {
	s.mu.Lock()
	s.brush.Color = c
	b := s.brush
	s.mu.Unlock()
	s.Emit(EventBrushChanged, b)
}

// Modified reports whether any stroke has been committed since the
// photo was bound or the canvas reset.
func (s *State) Modified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// CommitSegment bakes one stroke segment with the brush active right
// now; past brush settings are not buffered per stroke.
func (s *State) CommitSegment(p0, p1 geometry.Point2D) {
	s.mu.Lock()
	if s.canvas == nil {
		s.mu.Unlock()
		return
	}
	s.canvas.CommitSegment(p0, p1, s.brush)
	first := !s.modified
	s.modified = true
	s.mu.Unlock()

	if first {
		s.Emit(EventModified, nil)
	}
}

// RenderPreview redraws the brush preview at an image-space point.
func (s *State) RenderPreview(p geometry.Point2D) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.canvas != nil {
		s.canvas.RenderPreview(p, s.brush)
	}
}

// ClearPreview hides the brush preview.
func (s *State) ClearPreview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.canvas != nil {
		s.canvas.ClearPreview()
	}
}

// ResetCanvas restores the original photo, discarding all strokes.
func (s *State) ResetCanvas() {
	s.mu.Lock()
	if s.canvas == nil {
		s.mu.Unlock()
		return
	}
	s.canvas.Reset()
	s.modified = false
	s.mu.Unlock()
	s.Emit(EventCanvasReset, nil)
}

// Export encodes the painted raster. Fails with raster.ErrNoPhoto when
// nothing is bound rather than producing a blank image.
func (s *State) Export(mimeType string, quality float64) ([]byte, error) {
	s.mu.RLock()
	canvas := s.canvas
	s.mu.RUnlock()

	if canvas == nil {
		return nil, raster.ErrNoPhoto
	}
	return canvas.Export(mimeType, quality)
}

// ExportToFile encodes the painted raster and writes it to path.
func (s *State) ExportToFile(path, mimeType string, quality float64) error {
	data, err := s.Export(mimeType, quality)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	log.Printf("Exported %d bytes to %s", len(data), path)
	s.Emit(EventExported, path)
	return nil
}

// MaskSummary computes statistics over the painted region.
func (s *State) MaskSummary() (mask.Summary, error) {
	s.mu.RLock()
	canvas := s.canvas
	s.mu.RUnlock()

	if canvas == nil {
		return mask.Summary{}, raster.ErrNoPhoto
	}
	return mask.Summarize(canvas.BaseImage(), canvas.Image())
}
