package viewport

import (
	"sync"
	"time"

	"mask-painter/pkg/geometry"
)

// Default tick rate for held directional pan buttons, roughly one tick
// per display refresh.
const (
	DefaultPanInterval = 16 * time.Millisecond
	DefaultPanSpeed    = 6.0 // screen pixels per tick
)

// Panner drives continuous panning while a directional control is held.
// Start spawns a repeating tick that shifts the pan until Stop is
// called; both are idempotent, and starting a new direction first
// cancels the previous one. The owner must call Stop on teardown so the
// ticker goroutine does not outlive the view.
type Panner struct {
	mu       sync.Mutex
	view     *State
	interval time.Duration
	speed    float64
	stopCh   chan struct{}
	onTick   func()
}

// NewPanner creates a panner for the given viewport state.
func NewPanner(view *State) *Panner {
	return &Panner{
		view:     view,
		interval: DefaultPanInterval,
		speed:    DefaultPanSpeed,
	}
}

// SetInterval overrides the tick interval. Intended for tests.
func (p *Panner) SetInterval(d time.Duration) {
	p.mu.Lock()
	p.interval = d
	p.mu.Unlock()
}

// OnTick sets a callback invoked after each pan step, typically to
// refresh the display. Called from the panner goroutine.
func (p *Panner) OnTick(callback func()) {
	p.mu.Lock()
	p.onTick = callback
	p.mu.Unlock()
}

// Start begins panning in the given direction (a unit vector). Any pan
// already running is cancelled first.
func (p *Panner) Start(direction geometry.Point2D) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	stopCh := make(chan struct{})
	p.stopCh = stopCh

	step := direction.Scale(p.speed)
	interval := p.interval
	go p.run(stopCh, step, interval)
}

// Stop cancels the running pan, if any.
func (p *Panner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Running reports whether a pan is currently active.
func (p *Panner) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopCh != nil
}

func (p *Panner) stopLocked() {
	if p.stopCh != nil {
		close(p.stopCh)
		p.stopCh = nil
	}
}

func (p *Panner) run(stopCh chan struct{}, step geometry.Point2D, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			p.mu.Lock()
			p.view.PanBy(step)
			tick := p.onTick
			p.mu.Unlock()
			if tick != nil {
				tick()
			}
		}
	}
}
