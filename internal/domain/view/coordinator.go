package view

import (
	"context"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/inkwellhq/blockview/internal/domain/channel"
	"github.com/inkwellhq/blockview/internal/domain/classify"
	"github.com/inkwellhq/blockview/internal/domain/lifecycle"
	"github.com/inkwellhq/blockview/internal/domain/viewport"
	"github.com/inkwellhq/blockview/internal/host"
	"github.com/inkwellhq/blockview/internal/infrastructure/monitoring"
	"github.com/inkwellhq/blockview/internal/shared/types"
)

// Manager coordinates every mounted placeholder: it owns the registry of
// per-view state, wires tracker emissions through the update channel to
// the host, and applies host events to the lifecycle machine. There is
// exactly one Manager per process; nothing here is a package-level
// singleton.
type Manager struct {
	mu    sync.RWMutex
	views map[string]*instance // Protected by mu

	host       host.Host
	machine    *lifecycle.Machine
	channel    *channel.Channel
	trackerCfg viewport.Config
	logger     *zap.Logger
	metrics    *monitoring.Metrics

	onStatus     func(viewID string, status types.InitStatus)
	onNavigation func(update types.NavigationUpdate)
	onRemeasure  func(viewID string)
}

type instance struct {
	tracker   *viewport.Tracker
	url       string
	canGoBack bool
	removed   bool
}

// Info is a read-only snapshot of one view's state.
type Info struct {
	ViewID    string           `json:"view_id"`
	URL       string           `json:"url,omitempty"`
	Bounds    *types.Bounds    `json:"bounds,omitempty"`
	Status    types.InitStatus `json:"status"`
	Attempts  int              `json:"attempts"`
	CanGoBack bool             `json:"can_go_back"`
}

// Config configures the coordinator.
type Config struct {
	Tracker viewport.Config
	Machine []lifecycle.Option
}

// NewManager creates a view coordinator talking to the given host.
func NewManager(h host.Host, cfg Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		views:      make(map[string]*instance),
		host:       h,
		trackerCfg: cfg.Tracker,
		logger:     logger.With(zap.String("component", "view-coordinator")),
	}

	opts := append([]lifecycle.Option{lifecycle.WithOnChange(m.statusChanged)}, cfg.Machine...)
	m.machine = lifecycle.New(logger, opts...)
	m.channel = channel.New(m.flush)

	return m
}

// WithMetrics adds metrics tracking to the coordinator.
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// OnStatus registers the status-push listener (one per coordinator).
func (m *Manager) OnStatus(fn func(viewID string, status types.InitStatus)) {
	m.onStatus = fn
}

// OnNavigation registers the navigation-update listener.
func (m *Manager) OnNavigation(fn func(update types.NavigationUpdate)) {
	m.onNavigation = fn
}

// OnRemeasure registers the callback used to ask the surface for a fresh
// geometry report.
func (m *Manager) OnRemeasure(fn func(viewID string)) {
	m.onRemeasure = fn
}

// Mount registers a placeholder and its initial URL, if already known.
// The view id comes from the surface (block id, optionally
// layout-qualified) and must not be shared between placeholders. An
// empty URL means "not yet known" and leaves the view waiting for a url
// message; it is not a validation failure.
func (m *Manager) Mount(viewID, rawURL string) {
	m.mu.Lock()
	if _, exists := m.views[viewID]; exists {
		m.mu.Unlock()
		m.logger.Warn("duplicate mount ignored", zap.String("view_id", viewID))
		return
	}

	inst := &instance{}
	inst.tracker = viewport.NewTracker(
		m.trackerCfg,
		func(b types.Bounds) { m.channel.HandleBoundsChange(viewID, b) },
		func() { m.requestRemeasure(viewID) },
	)
	m.views[viewID] = inst
	m.mu.Unlock()

	m.machine.Register(viewID)
	if m.metrics != nil {
		m.metrics.ViewsActive.Inc()
	}

	inst.tracker.OnMount()
	if rawURL != "" {
		m.SetURL(viewID, rawURL)
	}
}

// Observe feeds a raw geometry report into the view's tracker.
func (m *Manager) Observe(viewID string, measurement viewport.Measurement) {
	m.mu.RLock()
	inst, ok := m.views[viewID]
	m.mu.RUnlock()
	if !ok {
		return
	}
	inst.tracker.Observe(measurement)
}

// SetURL records a URL change. Malformed URLs never reach the host: they
// fail locally through the same classified-error path.
func (m *Manager) SetURL(viewID, rawURL string) {
	m.mu.Lock()
	inst, ok := m.views[viewID]
	if !ok {
		m.mu.Unlock()
		return
	}
	inst.url = rawURL
	m.mu.Unlock()

	if reason, ok := validateURL(rawURL); !ok {
		m.machine.Fail(viewID, classify.InvalidURL(rawURL, reason))
		return
	}
	m.channel.HandleURLChange(viewID, rawURL)
}

// Retry resets an errored view to idle and re-sends the last known
// update so the host re-triggers creation. A retry with an unchanged
// invalid URL reproduces the same classified error instead of leaving
// the view parked in idle with nothing pending.
func (m *Manager) Retry(viewID string) bool {
	if !m.machine.Retry(viewID) {
		return false
	}
	if m.metrics != nil {
		m.metrics.Retries.Inc()
	}

	m.mu.RLock()
	var rawURL string
	if inst, ok := m.views[viewID]; ok {
		rawURL = inst.url
	}
	m.mu.RUnlock()

	if rawURL != "" {
		if reason, ok := validateURL(rawURL); !ok {
			m.machine.Fail(viewID, classify.InvalidURL(rawURL, reason))
			return true
		}
	}

	if !m.channel.Reflush(viewID) {
		// Nothing recorded yet; the next measurement flush re-triggers
		// creation on its own.
		m.logger.Debug("retry with no stored record", zap.String("view_id", viewID))
	}
	return true
}

// Unmount discards all local state for the placeholder and tells the
// host to destroy the native view. Removal is best-effort and sent
// exactly once; host-side removal is idempotent.
func (m *Manager) Unmount(ctx context.Context, viewID string) {
	m.mu.Lock()
	inst, ok := m.views[viewID]
	if !ok {
		m.mu.Unlock()
		return
	}
	alreadyRemoved := inst.removed
	inst.removed = true
	delete(m.views, viewID)
	m.mu.Unlock()

	inst.tracker.Close()
	m.machine.Remove(viewID)
	m.channel.Forget(viewID)

	if m.metrics != nil {
		m.metrics.ViewsActive.Dec()
	}

	if !alreadyRemoved {
		if err := m.host.RemoveView(ctx, viewID); err != nil {
			// Logged, never retried: the host treats removal as
			// idempotent and cleans up dropped links itself.
			m.logger.Warn("remove-view failed",
				zap.String("view_id", viewID),
				zap.Error(err),
			)
		}
	}
}

// NavigateBack forwards a history-back request and refreshes the
// can-go-back affordance from the response.
func (m *Manager) NavigateBack(ctx context.Context, viewID string) (types.NavigateBackResult, error) {
	result, err := m.host.NavigateBack(ctx, viewID)
	if err != nil {
		return result, err
	}

	m.mu.Lock()
	if inst, ok := m.views[viewID]; ok {
		inst.canGoBack = result.CanGoBack
	}
	m.mu.Unlock()

	return result, nil
}

// DevToolsState queries the devtools panel state for a view.
func (m *Manager) DevToolsState(ctx context.Context, viewID string) (types.DevToolsResult, error) {
	return m.host.DevToolsState(ctx, viewID)
}

// ToggleDevTools toggles the devtools panel for a view.
func (m *Manager) ToggleDevTools(ctx context.Context, viewID string) (types.DevToolsResult, error) {
	return m.host.ToggleDevTools(ctx, viewID)
}

// Run pumps host events until the context ends or the link drops.
// Events for one view are applied in arrival order; the lifecycle
// machine enforces monotonic-success and no-downgrade semantics against
// any arrival-order defects.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-m.host.Events():
			if !ok {
				m.logger.Warn("host event stream closed")
				return
			}
			m.apply(ev)
		}
	}
}

// Get returns a snapshot of one view.
func (m *Manager) Get(viewID string) (Info, bool) {
	m.mu.RLock()
	inst, ok := m.views[viewID]
	if !ok {
		m.mu.RUnlock()
		return Info{}, false
	}
	info := Info{
		ViewID:    viewID,
		URL:       inst.url,
		CanGoBack: inst.canGoBack,
	}
	if b, ok := inst.tracker.Last(); ok {
		bounds := b
		info.Bounds = &bounds
	}
	m.mu.RUnlock()

	if status, ok := m.machine.Status(viewID); ok {
		info.Status = status
	}
	info.Attempts = m.machine.Attempts(viewID)
	return info, true
}

// List returns snapshots of all mounted views.
func (m *Manager) List() []Info {
	m.mu.RLock()
	ids := make([]string, 0, len(m.views))
	for id := range m.views {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	infos := make([]Info, 0, len(ids))
	for _, id := range ids {
		if info, ok := m.Get(id); ok {
			infos = append(infos, info)
		}
	}
	return infos
}

// Stats returns coordinator statistics.
func (m *Manager) Stats() types.ViewStats {
	var stats types.ViewStats
	for _, info := range m.List() {
		stats.TotalViews++
		switch info.Status.Phase {
		case types.PhaseInitialized:
			stats.InitializedViews++
		case types.PhaseError:
			stats.ErroredViews++
		default:
			stats.PendingViews++
		}
	}
	return stats
}

// flush is the channel's send hook: it marks the request on the
// lifecycle machine (arming the stall timer) and forwards the combined
// update to the host.
func (m *Manager) flush(update types.UpdateView) {
	m.machine.MarkRequested(update.ViewID, update.URL)

	if err := m.host.UpdateView(context.Background(), update); err != nil {
		m.logger.Warn("update-view failed",
			zap.String("view_id", update.ViewID),
			zap.Error(err),
		)
		return
	}
	if m.metrics != nil {
		m.metrics.UpdatesSent.Inc()
	}
}

func (m *Manager) apply(ev host.Event) {
	switch {
	case ev.Initialized != nil:
		m.machine.ApplyEvent(*ev.Initialized)
	case ev.Navigation != nil:
		m.mu.Lock()
		if inst, ok := m.views[ev.Navigation.ViewID]; ok {
			inst.url = ev.Navigation.URL
			inst.canGoBack = ev.Navigation.CanGoBack
		}
		m.mu.Unlock()
		if m.onNavigation != nil {
			m.onNavigation(*ev.Navigation)
		}
	}
}

func (m *Manager) statusChanged(viewID string, status types.InitStatus) {
	if m.metrics != nil && status.Phase == types.PhaseError && status.Error != nil {
		reason := status.Error.Description
		if reason == "" {
			reason = "unknown"
		}
		m.metrics.InitFailures.WithLabelValues(reason).Inc()
		if status.Error.Code != nil && *status.Error.Code == classify.TimeoutCode {
			m.metrics.StallTimeouts.Inc()
		}
	}
	if m.onStatus != nil {
		m.onStatus(viewID, status)
	}
}

func (m *Manager) requestRemeasure(viewID string) {
	if m.onRemeasure != nil {
		m.onRemeasure(viewID)
	}
}

// validateURL rejects URLs the host navigation stack would choke on.
func validateURL(rawURL string) (string, bool) {
	if rawURL == "" {
		return "empty URL", false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return err.Error(), false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "unsupported scheme: " + parsed.Scheme, false
	}
	if parsed.Host == "" {
		return "missing host", false
	}
	return "", true
}
