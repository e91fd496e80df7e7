// Package gesture classifies raw pointer and touch input into editor
// gestures and dispatches them to the viewport or the stroke callbacks.
//
// Exactly one gesture is active at any instant: Idle, Panning, Pinching
// or Drawing. Events are processed serially to completion, so the
// machine needs no locking. Until a photo is bound every event is a
// no-op.
package gesture

import (
	"mask-painter/internal/viewport"
	"mask-painter/pkg/geometry"
)

// Phase is the current gesture classification.
type Phase int

const (
	Idle Phase = iota
	Panning
	Pinching
	Drawing
)

func (p Phase) String() string {
	switch p {
	case Panning:
		return "panning"
	case Pinching:
		return "pinching"
	case Drawing:
		return "drawing"
	default:
		return "idle"
	}
}

// Event is a raw input event fed to the machine. The interface is
// sealed: only the event types in this package implement it.
type Event interface {
	isEvent()
}

// MouseDown is a primary-button press at a container-relative position.
type MouseDown struct{ Pos geometry.Point2D }

// MouseMove is pointer motion, with or without the button held.
type MouseMove struct{ Pos geometry.Point2D }

// MouseUp is the primary-button release.
type MouseUp struct{ Pos geometry.Point2D }

// Leave reports the pointer leaving the interactive region.
type Leave struct{}

// Wheel is one scroll-wheel step at the cursor position. Delta is the
// signed zoom step magnitude.
type Wheel struct {
	Pos   geometry.Point2D
	Delta float64
}

// TouchDown reports a new touch point.
type TouchDown struct {
	ID  int
	Pos geometry.Point2D
}

// TouchMove reports motion of an existing touch point.
type TouchMove struct {
	ID  int
	Pos geometry.Point2D
}

// TouchUp reports a touch point lifting.
type TouchUp struct{ ID int }

func (MouseDown) isEvent() {}
func (MouseMove) isEvent() {}
func (MouseUp) isEvent()   {}
func (Leave) isEvent()     {}
func (Wheel) isEvent()     {}
func (TouchDown) isEvent() {}
func (TouchMove) isEvent() {}
func (TouchUp) isEvent()   {}

const noTouch = -1

// Machine consumes events and drives the viewport plus the stroke and
// preview callbacks. One machine serves one editor view.
type Machine struct {
	view      *viewport.State
	container geometry.Size
	photo     geometry.Size

	phase       Phase
	touches     map[int]geometry.Point2D
	panAnchor   viewport.PanAnchor
	pinchAnchor viewport.PinchAnchor
	pinchIDs    [2]int
	drawTouch   int // touch ID driving the stroke, noTouch for the mouse

	hasPrev bool
	prev    geometry.Point2D // previous stroke point, image space

	// OnSegment receives consecutive image-space stroke points to commit.
	OnSegment func(p0, p1 geometry.Point2D)
	// OnPreview receives the image-space brush preview position. Only
	// pointer devices drive it; touch has no hover concept.
	OnPreview func(p geometry.Point2D)
	// OnPreviewClear hides the brush preview.
	OnPreviewClear func()
	// OnViewChanged fires after any pan or zoom mutation.
	OnViewChanged func()
}

// New creates a machine bound to a viewport state.
func New(view *viewport.State) *Machine {
	return &Machine{
		view:      view,
		touches:   make(map[int]geometry.Point2D),
		drawTouch: noTouch,
	}
}

// Phase returns the current gesture classification.
func (m *Machine) Phase() Phase {
	return m.phase
}

// SetContainerSize updates the interactive region size.
func (m *Machine) SetContainerSize(size geometry.Size) {
	m.container = size
}

// SetPhotoSize binds the natural size of the displayed photo. A zero
// size (photo absent or still loading) makes every gesture a no-op.
// Any gesture in progress is cancelled.
func (m *Machine) SetPhotoSize(size geometry.Size) {
	m.photo = size
	m.cancelAll()
}

// CancelAll drops all touch bookkeeping and returns to Idle. Used on
// focus loss and widget teardown.
func (m *Machine) CancelAll() {
	m.cancelAll()
	m.clearPreview()
}

// Handle processes one input event to completion.
func (m *Machine) Handle(ev Event) {
	if m.photo.Empty() {
		// No photo bound yet. Keep touch bookkeeping coherent so a load
		// mid-gesture does not resurrect stale anchors.
		switch e := ev.(type) {
		case TouchDown:
			m.touches[e.ID] = e.Pos
		case TouchUp:
			delete(m.touches, e.ID)
		case Leave:
			m.clearPreview()
		}
		return
	}

	switch e := ev.(type) {
	case MouseDown:
		m.mouseDown(e.Pos)
	case MouseMove:
		m.mouseMove(e.Pos)
	case MouseUp:
		m.pointerEnd()
	case Leave:
		m.leave()
	case Wheel:
		m.wheel(e.Pos, e.Delta)
	case TouchDown:
		m.touchDown(e.ID, e.Pos)
	case TouchMove:
		m.touchMove(e.ID, e.Pos)
	case TouchUp:
		m.touchUp(e.ID)
	}
}

func (m *Machine) mouseDown(pos geometry.Point2D) {
	if m.phase == Pinching {
		return
	}
	// A press on the photo is draw intent; outside it, a pan.
	if pt, ok := m.mapStroke(pos); ok {
		m.phase = Drawing
		m.drawTouch = noTouch
		m.prev = pt
		m.hasPrev = true
		return
	}
	m.phase = Panning
	m.panAnchor = m.view.BeginPan(pos)
}

func (m *Machine) mouseMove(pos geometry.Point2D) {
	// The preview cursor follows every pointer move, clamped to nothing:
	// it may sit past the photo edge.
	if pt, ok := viewport.MapThroughView(pos, m.container, m.photo, m.view, false); ok {
		if m.OnPreview != nil {
			m.OnPreview(pt)
		}
	} else {
		m.clearPreview()
	}

	switch m.phase {
	case Drawing:
		if m.drawTouch == noTouch {
			m.strokeTo(pos)
		}
	case Panning:
		m.view.DragPan(m.panAnchor, pos)
		m.viewChanged()
	}
}

func (m *Machine) pointerEnd() {
	if m.phase == Drawing || m.phase == Panning {
		m.toIdle()
	}
}

func (m *Machine) leave() {
	m.clearPreview()
	// A pinch spans the surface; "leave" is not well-defined for it and
	// the gesture continues until the touch count changes.
	if m.phase != Pinching {
		m.toIdle()
	}
}

func (m *Machine) wheel(pos geometry.Point2D, delta float64) {
	m.view.WheelZoom(pos, m.container, delta)
	// The view re-anchored under the stroke; pause it rather than
	// connect across two different mappings.
	m.hasPrev = false
	m.viewChanged()
}

func (m *Machine) touchDown(id int, pos geometry.Point2D) {
	m.touches[id] = pos

	switch len(m.touches) {
	case 1:
		if m.phase != Idle {
			return
		}
		if pt, ok := m.mapStroke(pos); ok {
			m.phase = Drawing
			m.drawTouch = id
			m.prev = pt
			m.hasPrev = true
		} else {
			m.phase = Panning
			m.panAnchor = m.view.BeginPan(pos)
		}
	case 2:
		// Second finger: whatever was in progress becomes a pinch.
		ids := make([]int, 0, 2)
		for tid := range m.touches {
			ids = append(ids, tid)
		}
		m.pinchIDs[0], m.pinchIDs[1] = ids[0], ids[1]
		m.pinchAnchor = m.view.BeginPinch(m.touches[ids[0]], m.touches[ids[1]])
		m.phase = Pinching
		m.drawTouch = noTouch
		m.hasPrev = false
	}
	// Additional fingers are tracked but drive nothing.
}

func (m *Machine) touchMove(id int, pos geometry.Point2D) {
	if _, known := m.touches[id]; !known {
		// Stale touch: never seen or already lifted. Do not operate on
		// anchors that may reference it.
		if m.phase == Pinching {
			m.toIdle()
		}
		return
	}
	m.touches[id] = pos

	switch m.phase {
	case Pinching:
		p1, ok1 := m.touches[m.pinchIDs[0]]
		p2, ok2 := m.touches[m.pinchIDs[1]]
		if !ok1 || !ok2 {
			m.toIdle()
			return
		}
		m.view.PinchZoom(m.pinchAnchor, p1, p2, m.container)
		m.viewChanged()
	case Drawing:
		if id == m.drawTouch {
			m.strokeTo(pos)
		}
	case Panning:
		m.view.DragPan(m.panAnchor, pos)
		m.viewChanged()
	}
}

func (m *Machine) touchUp(id int) {
	delete(m.touches, id)

	switch {
	case m.phase == Pinching && len(m.touches) < 2:
		m.toIdle()
	case m.phase == Drawing && id == m.drawTouch:
		m.toIdle()
	case len(m.touches) == 0 && m.phase != Idle:
		m.toIdle()
	}
}

// strokeTo maps the pointer position and commits a segment from the
// previous stroke point. Outside the photo the stroke pauses: the
// previous point is dropped and drawing resumes cleanly on re-entry.
func (m *Machine) strokeTo(pos geometry.Point2D) {
	pt, ok := m.mapStroke(pos)
	if !ok {
		m.hasPrev = false
		return
	}
	if m.hasPrev && m.OnSegment != nil {
		m.OnSegment(m.prev, pt)
	}
	m.prev = pt
	m.hasPrev = true
}

func (m *Machine) mapStroke(pos geometry.Point2D) (geometry.Point2D, bool) {
	return viewport.MapThroughView(pos, m.container, m.photo, m.view, true)
}

func (m *Machine) toIdle() {
	m.phase = Idle
	m.drawTouch = noTouch
	m.hasPrev = false
}

func (m *Machine) cancelAll() {
	m.touches = make(map[int]geometry.Point2D)
	m.toIdle()
}

func (m *Machine) clearPreview() {
	if m.OnPreviewClear != nil {
		m.OnPreviewClear()
	}
}

func (m *Machine) viewChanged() {
	if m.OnViewChanged != nil {
		m.OnViewChanged()
	}
}
