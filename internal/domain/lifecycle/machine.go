package lifecycle

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/inkwellhq/blockview/internal/domain/classify"
	"github.com/inkwellhq/blockview/internal/shared/types"
)

// DefaultStallTimeout is how long an initialization may sit without a
// terminal host event before it is demoted to an error.
const DefaultStallTimeout = 10 * time.Second

// Machine tracks per-view initialization state. All transitions are
// monotonic except retry, which is the only edge back to idle.
type Machine struct {
	mu       sync.Mutex
	views    map[string]*viewState
	stall    time.Duration
	onChange func(viewID string, status types.InitStatus)
	logger   *zap.Logger
}

type viewState struct {
	status   types.InitStatus
	attempts int
	lastURL  string
	timer    *time.Timer
	// epoch invalidates a timer that fires after retry or removal.
	epoch uint64
}

// Option configures a Machine.
type Option func(*Machine)

// WithStallTimeout overrides the stall timeout (tests use short values).
func WithStallTimeout(d time.Duration) Option {
	return func(m *Machine) { m.stall = d }
}

// WithOnChange registers a status-change listener. Called outside the
// machine lock is not guaranteed; listeners must not call back in.
func WithOnChange(fn func(viewID string, status types.InitStatus)) Option {
	return func(m *Machine) { m.onChange = fn }
}

// New creates a lifecycle machine.
func New(logger *zap.Logger, opts ...Option) *Machine {
	m := &Machine{
		views:  make(map[string]*viewState),
		stall:  DefaultStallTimeout,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	return m
}

// Register creates an idle entry for a view. Idempotent.
func (m *Machine) Register(viewID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.views[viewID]; !ok {
		m.views[viewID] = &viewState{status: types.InitStatus{Phase: types.PhaseIdle}}
	}
}

// MarkRequested records that a bounds/URL update was flushed to the host
// while the view is not yet terminal. It bumps the attempt counter, moves
// idle to initializing, and arms the stall timer on the first attempt of
// the current cycle.
func (m *Machine) MarkRequested(viewID, url string) {
	m.mu.Lock()
	vs, ok := m.views[viewID]
	if !ok {
		vs = &viewState{status: types.InitStatus{Phase: types.PhaseIdle}}
		m.views[viewID] = vs
	}
	if vs.status.Terminal() {
		m.mu.Unlock()
		return
	}
	vs.attempts++
	vs.lastURL = url

	var changed *types.InitStatus
	if vs.status.Phase == types.PhaseIdle {
		vs.status = types.InitStatus{Phase: types.PhaseInitializing}
		changed = &vs.status
	}
	if vs.timer == nil {
		m.armTimerLocked(viewID, vs)
	}
	m.mu.Unlock()

	if changed != nil {
		m.notify(viewID, *changed)
	}
}

// ApplyEvent applies a host-reported lifecycle event. Events are applied
// in arrival order; monotonic-success and no-downgrade rules make the
// result stable under duplicate or late delivery. Non-host origins are
// ignored outright.
func (m *Machine) ApplyEvent(ev types.ViewInitialized) {
	if ev.Origin != types.OriginHost {
		return
	}

	m.mu.Lock()
	vs, ok := m.views[ev.ViewID]
	if !ok {
		m.mu.Unlock()
		return
	}

	switch {
	case vs.status.Phase == types.PhaseInitialized:
		// No downgrade from success.
		m.mu.Unlock()
		return
	case vs.status.Phase == types.PhaseError:
		// A stale event never overwrites an existing error.
		m.mu.Unlock()
		return
	}

	var next types.InitStatus
	if ev.Success {
		switch ev.Status {
		case types.DetailLoaded:
			next = types.InitStatus{Phase: types.PhaseInitialized}
		case types.DetailCreated, types.DetailExisting:
			next = types.InitStatus{Phase: types.PhaseInitializing, Detail: ev.Status}
		default:
			// Unknown detail: progress, but never erase a more specific
			// detail already held.
			next = types.InitStatus{Phase: types.PhaseInitializing, Detail: vs.status.Detail}
		}
	} else {
		ce := classify.Classify(classify.Failure{
			Code:        ev.ErrorCode,
			Description: ev.ErrorDescription,
			URL:         ev.URL,
			RawMessage:  ev.Error,
		})
		next = types.InitStatus{Phase: types.PhaseError, Error: &ce}
	}

	if next == vs.status && next.Error == nil {
		m.mu.Unlock()
		return
	}
	vs.status = next
	if next.Terminal() {
		m.stopTimerLocked(vs)
	}
	m.mu.Unlock()

	m.notify(ev.ViewID, next)
}

// Fail forces a view into the error state with an already classified
// error. Used for client-side failures such as invalid URLs.
func (m *Machine) Fail(viewID string, ce types.ClassifiedError) {
	m.mu.Lock()
	vs, ok := m.views[viewID]
	if !ok || vs.status.Terminal() {
		m.mu.Unlock()
		return
	}
	vs.status = types.InitStatus{Phase: types.PhaseError, Error: &ce}
	m.stopTimerLocked(vs)
	next := vs.status
	m.mu.Unlock()

	m.notify(viewID, next)
}

// Retry resets an errored view to idle and clears the attempt counter.
// It never talks to the host: the caller re-flushes the last known
// bounds, which re-enters the flow through MarkRequested. Returns false
// when the view is unknown or not in error.
func (m *Machine) Retry(viewID string) bool {
	m.mu.Lock()
	vs, ok := m.views[viewID]
	if !ok || vs.status.Phase != types.PhaseError {
		m.mu.Unlock()
		return false
	}
	m.stopTimerLocked(vs)
	vs.attempts = 0
	vs.status = types.InitStatus{Phase: types.PhaseIdle}
	next := vs.status
	m.mu.Unlock()

	m.notify(viewID, next)
	return true
}

// Remove discards the view's state and clears any armed timer.
func (m *Machine) Remove(viewID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if vs, ok := m.views[viewID]; ok {
		m.stopTimerLocked(vs)
		delete(m.views, viewID)
	}
}

// Status returns the current status for a view.
func (m *Machine) Status(viewID string) (types.InitStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vs, ok := m.views[viewID]
	if !ok {
		return types.InitStatus{}, false
	}
	return vs.status, true
}

// Attempts returns the attempt counter for a view.
func (m *Machine) Attempts(viewID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if vs, ok := m.views[viewID]; ok {
		return vs.attempts
	}
	return 0
}

// armTimerLocked arms the stall timer for the current cycle. The epoch
// guard makes a timer that outlives retry or removal a no-op, so the
// demotion fires exactly once per cycle.
func (m *Machine) armTimerLocked(viewID string, vs *viewState) {
	epoch := vs.epoch
	vs.timer = time.AfterFunc(m.stall, func() {
		m.onStall(viewID, epoch)
	})
}

func (m *Machine) stopTimerLocked(vs *viewState) {
	if vs.timer != nil {
		vs.timer.Stop()
		vs.timer = nil
	}
	vs.epoch++
}

func (m *Machine) onStall(viewID string, epoch uint64) {
	m.mu.Lock()
	vs, ok := m.views[viewID]
	if !ok || vs.epoch != epoch || vs.status.Terminal() {
		m.mu.Unlock()
		return
	}
	ce := classify.Timeout(vs.lastURL, m.stall.String())
	vs.status = types.InitStatus{Phase: types.PhaseError, Error: &ce}
	vs.timer = nil
	vs.epoch++
	next := vs.status
	m.mu.Unlock()

	m.logger.Warn("view initialization stalled",
		zap.String("view_id", viewID),
		zap.Duration("stall_timeout", m.stall),
	)
	m.notify(viewID, next)
}

func (m *Machine) notify(viewID string, status types.InitStatus) {
	if m.onChange != nil {
		m.onChange(viewID, status)
	}
}
