package viewport

import (
	"sync"
	"time"

	"github.com/inkwellhq/blockview/internal/shared/types"
)

// Measurement is a raw geometry report from the document surface: the
// unclamped placeholder rectangle plus the extents it must be clipped to.
type Measurement struct {
	// Attached is false when the placeholder is temporarily out of the
	// layout tree. Detached measurements are skipped, not emitted as a
	// zero rectangle.
	Attached bool `json:"attached"`

	// Element is the raw placeholder rectangle in viewport coordinates.
	Element types.Bounds `json:"element"`

	// ViewportWidth and ViewportHeight are the visible surface extents.
	ViewportWidth  float64 `json:"viewport_width"`
	ViewportHeight float64 `json:"viewport_height"`

	// Container optionally scopes clipping to a named scrollable
	// ancestor's rectangle.
	Container *types.Bounds `json:"container,omitempty"`
}

// Config controls clipping and the deferred mount re-check.
type Config struct {
	// FooterReserve is subtracted from the visible bottom edge, e.g. a
	// fixed status bar of known height.
	FooterReserve float64

	// MountRecheckDelay is how long after mount to ask for one more
	// measurement, to outlast initial layout.
	MountRecheckDelay time.Duration

	// MaxDetachedRetries bounds how many re-measure requests are issued
	// while the element keeps reporting detached.
	MaxDetachedRetries int
}

// DefaultConfig returns production clipping defaults.
func DefaultConfig() Config {
	return Config{
		FooterReserve:      28,
		MountRecheckDelay:  50 * time.Millisecond,
		MaxDetachedRetries: 5,
	}
}

// Tracker turns raw geometry reports for one placeholder into a
// de-duplicated stream of clipped bounds. It never self-polls: new
// geometry arrives from the surface's observers, and the tracker only
// requests a re-measure after mount or while the element is detached.
type Tracker struct {
	mu       sync.Mutex
	cfg      Config
	emit     func(types.Bounds)
	remeasur func()

	last            *types.Bounds
	detachedRetries int
	recheck         *time.Timer
	closed          bool
}

// NewTracker creates a tracker for one placeholder. emit receives each
// changed clipped rectangle; requestRemeasure asks the surface for a
// fresh geometry report.
func NewTracker(cfg Config, emit func(types.Bounds), requestRemeasure func()) *Tracker {
	return &Tracker{cfg: cfg, emit: emit, remeasur: requestRemeasure}
}

// OnMount schedules the short deferred re-check that outlasts the
// surface's initial layout pass.
func (t *Tracker) OnMount() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.scheduleRecheckLocked(t.cfg.MountRecheckDelay)
}

// Observe clips a raw measurement and emits it when it differs from the
// last emission. Detached measurements are skipped silently with a
// bounded follow-up request.
func (t *Tracker) Observe(m Measurement) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}

	if !m.Attached {
		if t.detachedRetries < t.cfg.MaxDetachedRetries {
			t.detachedRetries++
			t.scheduleRecheckLocked(t.cfg.MountRecheckDelay)
		}
		t.mu.Unlock()
		return
	}
	t.detachedRetries = 0

	clipped := t.clip(m)
	if t.last != nil && t.last.Equal(clipped) {
		t.mu.Unlock()
		return
	}
	t.last = &clipped
	emit := t.emit
	t.mu.Unlock()

	if emit != nil {
		emit(clipped)
	}
}

// Last returns the most recently emitted bounds, if any.
func (t *Tracker) Last() (types.Bounds, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return types.Bounds{}, false
	}
	return *t.last, true
}

// Close cancels any pending re-check. No emissions happen afterwards.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	if t.recheck != nil {
		t.recheck.Stop()
		t.recheck = nil
	}
}

func (t *Tracker) scheduleRecheckLocked(delay time.Duration) {
	if t.recheck != nil {
		t.recheck.Stop()
	}
	t.recheck = time.AfterFunc(delay, func() {
		t.mu.Lock()
		closed := t.closed
		remeasure := t.remeasur
		t.mu.Unlock()
		if !closed && remeasure != nil {
			remeasure()
		}
	})
}

// clip clamps the raw rectangle to the visible region: left/top at zero,
// right/bottom at the viewport (or container) extent, minus the footer
// reserve at the bottom.
func (t *Tracker) clip(m Measurement) types.Bounds {
	left := m.Element.X
	top := m.Element.Y
	right := m.Element.X + m.Element.Width
	bottom := m.Element.Y + m.Element.Height

	minX, minY := 0.0, 0.0
	maxX := m.ViewportWidth
	maxY := m.ViewportHeight - t.cfg.FooterReserve

	if m.Container != nil {
		minX = max(minX, m.Container.X)
		minY = max(minY, m.Container.Y)
		maxX = min(maxX, m.Container.X+m.Container.Width)
		maxY = min(maxY, m.Container.Y+m.Container.Height)
	}

	left = max(left, minX)
	top = max(top, minY)
	right = min(right, maxX)
	bottom = min(bottom, maxY)

	return types.Bounds{
		X:      left,
		Y:      top,
		Width:  max(right-left, 0),
		Height: max(bottom-top, 0),
	}
}
