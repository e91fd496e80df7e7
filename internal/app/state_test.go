package app

import (
	goimage "image"
	"image/color"
	"testing"

	"mask-painter/internal/image"
	"mask-painter/internal/raster"
	"mask-painter/pkg/geometry"
)

func boundState(t *testing.T) *State {
	t.Helper()
	s := NewState()

	img := goimage.NewRGBA(goimage.Rect(0, 0, 60, 40))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	photo := &image.Photo{Image: img, NaturalWidth: 60, NaturalHeight: 40}
	if err := s.BindPhoto(photo); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestExportBeforeBindFails(t *testing.T) {
	s := NewState()
	if _, err := s.Export("image/png", 0); err != raster.ErrNoPhoto {
		t.Errorf("Export err = %v, want ErrNoPhoto", err)
	}
	if _, err := s.MaskSummary(); err != raster.ErrNoPhoto {
		t.Errorf("MaskSummary err = %v, want ErrNoPhoto", err)
	}
}

func TestBindPhotoEmitsEvent(t *testing.T) {
	s := NewState()
	loaded := 0
	s.On(EventPhotoLoaded, func(interface{}) { loaded++ })

	img := goimage.NewRGBA(goimage.Rect(0, 0, 10, 10))
	if err := s.BindPhoto(&image.Photo{Image: img, NaturalWidth: 10, NaturalHeight: 10}); err != nil {
		t.Fatal(err)
	}
	if loaded != 1 {
		t.Errorf("EventPhotoLoaded fired %d times, want 1", loaded)
	}
	if s.Canvas() == nil || s.Photo() == nil {
		t.Error("photo or canvas missing after bind")
	}
}

func TestCommitSegmentMarksModified(t *testing.T) {
	s := boundState(t)
	modified := 0
	s.On(EventModified, func(interface{}) { modified++ })

	s.SetBrushColor(color.RGBA{R: 255, A: 255})
	s.SetBrushSize(8)
	s.CommitSegment(geometry.NewPoint2D(10, 20), geometry.NewPoint2D(50, 20))
	s.CommitSegment(geometry.NewPoint2D(50, 20), geometry.NewPoint2D(50, 30))

	if !s.Modified() {
		t.Error("state not modified after committing segments")
	}
	if modified != 1 {
		t.Errorf("EventModified fired %d times, want once per dirty transition", modified)
	}

	sum, err := s.MaskSummary()
	if err != nil {
		t.Fatal(err)
	}
	if sum.Empty() {
		t.Error("mask summary empty after painting")
	}
}

func TestResetCanvasClearsMask(t *testing.T) {
	s := boundState(t)
	s.CommitSegment(geometry.NewPoint2D(10, 20), geometry.NewPoint2D(50, 20))
	s.ResetCanvas()

	if s.Modified() {
		t.Error("state still modified after reset")
	}
	sum, err := s.MaskSummary()
	if err != nil {
		t.Fatal(err)
	}
	if !sum.Empty() {
		t.Errorf("mask summary not empty after reset: %+v", sum)
	}
}

func TestCommitWithoutPhotoIsNoOp(t *testing.T) {
	s := NewState()
	s.CommitSegment(geometry.NewPoint2D(0, 0), geometry.NewPoint2D(5, 5))
	if s.Modified() {
		t.Error("committing without a photo should be a no-op")
	}
}

func TestBrushUpdates(t *testing.T) {
	s := NewState()
	changes := 0
	s.On(EventBrushChanged, func(interface{}) { changes++ })

	s.SetBrushSize(12)
	s.SetBrushColor(color.RGBA{G: 255, A: 255})

	b := s.Brush()
	if b.Size != 12 || b.Color.G != 255 {
		t.Errorf("brush = %+v, want size 12 green", b)
	}
	if changes != 2 {
		t.Errorf("EventBrushChanged fired %d times, want 2", changes)
	}
}
