package gesture

import (
	"math"
	"testing"

	"mask-painter/internal/viewport"
	"mask-painter/pkg/geometry"
)

const tolerance = 1e-6

var (
	testContainer = geometry.NewSize(800, 800)
	testPhoto     = geometry.NewSize(1000, 500) // fits as 800x400 at offset (0,200)
)

type recorder struct {
	segments      [][2]geometry.Point2D
	previews      []geometry.Point2D
	previewClears int
	viewChanges   int
}

func newMachine() (*Machine, *viewport.State, *recorder) {
	view := viewport.New()
	m := New(view)
	m.SetContainerSize(testContainer)
	m.SetPhotoSize(testPhoto)

	rec := &recorder{}
	m.OnSegment = func(p0, p1 geometry.Point2D) {
		rec.segments = append(rec.segments, [2]geometry.Point2D{p0, p1})
	}
	m.OnPreview = func(p geometry.Point2D) { rec.previews = append(rec.previews, p) }
	m.OnPreviewClear = func() { rec.previewClears++ }
	m.OnViewChanged = func() { rec.viewChanges++ }
	return m, view, rec
}

func TestNoPhotoIsNoOp(t *testing.T) {
	view := viewport.New()
	m := New(view)
	m.SetContainerSize(testContainer)

	committed := 0
	m.OnSegment = func(_, _ geometry.Point2D) { committed++ }

	m.Handle(MouseDown{Pos: geometry.NewPoint2D(400, 400)})
	m.Handle(MouseMove{Pos: geometry.NewPoint2D(420, 400)})
	m.Handle(Wheel{Pos: geometry.NewPoint2D(400, 400), Delta: 0.3})

	if m.Phase() != Idle {
		t.Errorf("phase = %v, want idle before a photo is bound", m.Phase())
	}
	if committed != 0 {
		t.Errorf("committed %d segments before a photo was bound", committed)
	}
	if view.Zoom() != 1 {
		t.Errorf("zoom = %v, want untouched 1", view.Zoom())
	}
}

func TestMouseStrokeCommitsSegments(t *testing.T) {
	m, _, rec := newMachine()

	m.Handle(MouseDown{Pos: geometry.NewPoint2D(400, 400)})
	if m.Phase() != Drawing {
		t.Fatalf("phase = %v, want drawing", m.Phase())
	}

	m.Handle(MouseMove{Pos: geometry.NewPoint2D(440, 400)})
	m.Handle(MouseMove{Pos: geometry.NewPoint2D(480, 420)})
	m.Handle(MouseUp{Pos: geometry.NewPoint2D(480, 420)})

	if m.Phase() != Idle {
		t.Errorf("phase after release = %v, want idle", m.Phase())
	}
	if len(rec.segments) != 2 {
		t.Fatalf("committed %d segments, want 2", len(rec.segments))
	}

	// (400,400) is the photo center; the contain scale is 1.25.
	p0 := rec.segments[0][0]
	p1 := rec.segments[0][1]
	if math.Abs(p0.X-500) > tolerance || math.Abs(p0.Y-250) > tolerance {
		t.Errorf("stroke start = %v, want (500,250)", p0)
	}
	if math.Abs(p1.X-550) > tolerance || math.Abs(p1.Y-250) > tolerance {
		t.Errorf("stroke point = %v, want (550,250)", p1)
	}
}

func TestMouseDownInLetterboxPans(t *testing.T) {
	m, view, _ := newMachine()

	// y=50 is inside the container but in the top letterbox margin.
	m.Handle(MouseDown{Pos: geometry.NewPoint2D(400, 50)})
	if m.Phase() != Panning {
		t.Fatalf("phase = %v, want panning", m.Phase())
	}

	m.Handle(MouseMove{Pos: geometry.NewPoint2D(430, 90)})
	if view.Pan().X != 30 || view.Pan().Y != 40 {
		t.Errorf("pan = %v, want (30,40)", view.Pan())
	}

	m.Handle(MouseUp{Pos: geometry.NewPoint2D(430, 90)})
	if m.Phase() != Idle {
		t.Errorf("phase after release = %v, want idle", m.Phase())
	}
}

func TestStrokePausesOutsidePhoto(t *testing.T) {
	m, _, rec := newMachine()

	m.Handle(MouseDown{Pos: geometry.NewPoint2D(400, 210)})
	m.Handle(MouseMove{Pos: geometry.NewPoint2D(400, 205)}) // still on the photo edge region
	got := len(rec.segments)

	// Into the margin: no segment, stroke pauses.
	m.Handle(MouseMove{Pos: geometry.NewPoint2D(400, 100)})
	if len(rec.segments) != got {
		t.Fatal("segment committed while pointer was outside the photo")
	}
	if m.Phase() != Drawing {
		t.Errorf("phase = %v, leaving the photo should not end the gesture", m.Phase())
	}

	// Re-entry re-seeds the previous point without bridging the gap.
	m.Handle(MouseMove{Pos: geometry.NewPoint2D(400, 300)})
	if len(rec.segments) != got {
		t.Fatal("re-entry move must not commit a bridging segment")
	}
	m.Handle(MouseMove{Pos: geometry.NewPoint2D(420, 300)})
	if len(rec.segments) != got+1 {
		t.Fatalf("drawing did not resume after re-entry: %d segments", len(rec.segments))
	}
}

func TestSecondTouchInterruptsDrawing(t *testing.T) {
	m, view, rec := newMachine()

	m.Handle(TouchDown{ID: 1, Pos: geometry.NewPoint2D(350, 400)})
	if m.Phase() != Drawing {
		t.Fatalf("phase = %v, want drawing on single touch over the photo", m.Phase())
	}
	m.Handle(TouchMove{ID: 1, Pos: geometry.NewPoint2D(360, 400)})
	committed := len(rec.segments)

	m.Handle(TouchDown{ID: 2, Pos: geometry.NewPoint2D(450, 400)})
	if m.Phase() != Pinching {
		t.Fatalf("phase = %v, want pinching after second touch", m.Phase())
	}

	// Spread the fingers: zoom responds, strokes do not.
	m.Handle(TouchMove{ID: 1, Pos: geometry.NewPoint2D(300, 400)})
	m.Handle(TouchMove{ID: 2, Pos: geometry.NewPoint2D(500, 400)})
	if len(rec.segments) != committed {
		t.Error("segments committed while pinching")
	}
	if view.Zoom() <= 1 {
		t.Errorf("zoom = %v, want > 1 after spreading", view.Zoom())
	}

	// Dropping below two touches ends the pinch entirely.
	m.Handle(TouchUp{ID: 2})
	if m.Phase() != Idle {
		t.Errorf("phase = %v, want idle below two touches", m.Phase())
	}
	m.Handle(TouchMove{ID: 1, Pos: geometry.NewPoint2D(320, 400)})
	if len(rec.segments) != committed {
		t.Error("lingering touch committed segments after the pinch ended")
	}
}

func TestPinchZoomMatchesViewportContract(t *testing.T) {
	m, view, _ := newMachine()

	// 100px apart around the container center.
	m.Handle(TouchDown{ID: 7, Pos: geometry.NewPoint2D(350, 400)})
	m.Handle(TouchDown{ID: 9, Pos: geometry.NewPoint2D(450, 400)})
	m.Handle(TouchMove{ID: 7, Pos: geometry.NewPoint2D(300, 400)})
	m.Handle(TouchMove{ID: 9, Pos: geometry.NewPoint2D(500, 400)})

	if math.Abs(view.Zoom()-2) > tolerance {
		t.Errorf("zoom = %v, want 2 after doubling the spread", view.Zoom())
	}
	if math.Abs(view.Pan().X) > tolerance || math.Abs(view.Pan().Y) > tolerance {
		t.Errorf("pan = %v, want (0,0) for a stationary midpoint", view.Pan())
	}
}

func TestStaleTouchFallsBackToIdle(t *testing.T) {
	m, _, _ := newMachine()

	m.Handle(TouchDown{ID: 1, Pos: geometry.NewPoint2D(350, 400)})
	m.Handle(TouchDown{ID: 2, Pos: geometry.NewPoint2D(450, 400)})
	if m.Phase() != Pinching {
		t.Fatalf("phase = %v, want pinching", m.Phase())
	}

	// Motion for a touch the machine has never seen: the anchors cannot
	// be trusted any more.
	m.Handle(TouchMove{ID: 99, Pos: geometry.NewPoint2D(100, 100)})
	if m.Phase() != Idle {
		t.Errorf("phase = %v, want idle after a stale touch", m.Phase())
	}
}

func TestLeaveCancelsDrawingButNotPinching(t *testing.T) {
	m, _, rec := newMachine()

	m.Handle(MouseDown{Pos: geometry.NewPoint2D(400, 400)})
	m.Handle(Leave{})
	if m.Phase() != Idle {
		t.Errorf("phase = %v, want idle after leave while drawing", m.Phase())
	}
	if rec.previewClears == 0 {
		t.Error("leave should clear the preview")
	}

	m.Handle(TouchDown{ID: 1, Pos: geometry.NewPoint2D(350, 400)})
	m.Handle(TouchDown{ID: 2, Pos: geometry.NewPoint2D(450, 400)})
	m.Handle(Leave{})
	if m.Phase() != Pinching {
		t.Errorf("phase = %v, leave must not terminate a pinch", m.Phase())
	}
}

func TestWheelZoomPausesStroke(t *testing.T) {
	m, view, rec := newMachine()

	m.Handle(MouseDown{Pos: geometry.NewPoint2D(400, 400)})
	m.Handle(MouseMove{Pos: geometry.NewPoint2D(420, 400)})
	committed := len(rec.segments)

	m.Handle(Wheel{Pos: geometry.NewPoint2D(420, 400), Delta: 0.3})
	if math.Abs(view.Zoom()-1.3) > tolerance {
		t.Errorf("zoom = %v, want 1.3", view.Zoom())
	}

	// The first move after the zoom re-seeds; no segment spans the
	// re-anchored mapping.
	m.Handle(MouseMove{Pos: geometry.NewPoint2D(430, 400)})
	if len(rec.segments) != committed {
		t.Error("segment committed across a zoom re-anchor")
	}
	m.Handle(MouseMove{Pos: geometry.NewPoint2D(440, 400)})
	if len(rec.segments) != committed+1 {
		t.Error("drawing did not resume after the zoom step")
	}
}

func TestHoverPreviewFollowsPointer(t *testing.T) {
	m, _, rec := newMachine()

	// Hover in the letterbox margin: the preview still tracks, with a
	// coordinate above the photo.
	m.Handle(MouseMove{Pos: geometry.NewPoint2D(400, 100)})
	if len(rec.previews) != 1 {
		t.Fatalf("previews = %d, want 1", len(rec.previews))
	}
	if rec.previews[0].Y >= 0 {
		t.Errorf("preview Y = %v, want negative above the photo", rec.previews[0].Y)
	}

	m.Handle(Leave{})
	if rec.previewClears != 1 {
		t.Errorf("preview clears = %d, want 1", rec.previewClears)
	}
}

func TestTouchNeverDrivesPreview(t *testing.T) {
	m, _, rec := newMachine()

	m.Handle(TouchDown{ID: 1, Pos: geometry.NewPoint2D(400, 400)})
	m.Handle(TouchMove{ID: 1, Pos: geometry.NewPoint2D(420, 400)})
	m.Handle(TouchUp{ID: 1})

	if len(rec.previews) != 0 {
		t.Errorf("previews = %d, want 0 for touch input", len(rec.previews))
	}
}

func TestPhotoRebindCancelsGesture(t *testing.T) {
	m, _, _ := newMachine()

	m.Handle(MouseDown{Pos: geometry.NewPoint2D(400, 400)})
	if m.Phase() != Drawing {
		t.Fatalf("phase = %v, want drawing", m.Phase())
	}

	m.SetPhotoSize(geometry.NewSize(640, 480))
	if m.Phase() != Idle {
		t.Errorf("phase = %v, want idle after photo switch", m.Phase())
	}
}
