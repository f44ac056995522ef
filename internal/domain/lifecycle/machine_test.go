package lifecycle

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellhq/blockview/internal/domain/classify"
	"github.com/inkwellhq/blockview/internal/shared/types"
)

type changeLog struct {
	mu      sync.Mutex
	changes []types.InitStatus
}

func (l *changeLog) record(_ string, status types.InitStatus) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.changes = append(l.changes, status)
}

func (l *changeLog) snapshot() []types.InitStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.InitStatus, len(l.changes))
	copy(out, l.changes)
	return out
}

func hostEvent(viewID string, success bool, detail types.InitDetail) types.ViewInitialized {
	return types.ViewInitialized{
		ViewID:  viewID,
		Success: success,
		Status:  detail,
		Origin:  types.OriginHost,
	}
}

func TestSuccessfulInitializationFlow(t *testing.T) {
	m := New(nil)
	m.Register("view-1")

	status, ok := m.Status("view-1")
	require.True(t, ok)
	assert.Equal(t, types.PhaseIdle, status.Phase)

	m.MarkRequested("view-1", "https://example.com")
	status, _ = m.Status("view-1")
	assert.Equal(t, types.PhaseInitializing, status.Phase)

	m.ApplyEvent(hostEvent("view-1", true, types.DetailCreated))
	status, _ = m.Status("view-1")
	assert.Equal(t, types.PhaseInitializing, status.Phase)
	assert.Equal(t, types.DetailCreated, status.Detail)

	m.ApplyEvent(hostEvent("view-1", true, types.DetailLoaded))
	status, _ = m.Status("view-1")
	assert.Equal(t, types.PhaseInitialized, status.Phase)
	assert.True(t, status.Terminal())
}

func TestNoDowngradeFromInitialized(t *testing.T) {
	m := New(nil)
	m.Register("view-1")
	m.MarkRequested("view-1", "https://example.com")
	m.ApplyEvent(hostEvent("view-1", true, types.DetailLoaded))

	// A late "created" event must not regress the view.
	m.ApplyEvent(hostEvent("view-1", true, types.DetailCreated))
	status, _ := m.Status("view-1")
	assert.Equal(t, types.PhaseInitialized, status.Phase)

	// Neither may a late failure.
	fail := hostEvent("view-1", false, "")
	fail.ErrorDescription = "ERR_CONNECTION_REFUSED"
	m.ApplyEvent(fail)
	status, _ = m.Status("view-1")
	assert.Equal(t, types.PhaseInitialized, status.Phase)
}

func TestErrorIsNotOverwritten(t *testing.T) {
	m := New(nil)
	m.Register("view-1")
	m.MarkRequested("view-1", "https://bad.example")

	code := -105
	fail := hostEvent("view-1", false, "")
	fail.ErrorCode = &code
	fail.ErrorDescription = "ERR_NAME_NOT_RESOLVED"
	fail.URL = "https://bad.example"
	m.ApplyEvent(fail)

	status, _ := m.Status("view-1")
	require.Equal(t, types.PhaseError, status.Phase)
	require.NotNil(t, status.Error)
	firstTitle := status.Error.FriendlyTitle

	// A success arriving after the error is stale and ignored.
	m.ApplyEvent(hostEvent("view-1", true, types.DetailLoaded))
	status, _ = m.Status("view-1")
	assert.Equal(t, types.PhaseError, status.Phase)
	assert.Equal(t, firstTitle, status.Error.FriendlyTitle)
}

func TestNonHostEventsIgnored(t *testing.T) {
	m := New(nil)
	m.Register("view-1")
	m.MarkRequested("view-1", "https://example.com")

	ev := hostEvent("view-1", true, types.DetailLoaded)
	ev.Origin = types.OriginLocal
	m.ApplyEvent(ev)

	status, _ := m.Status("view-1")
	assert.Equal(t, types.PhaseInitializing, status.Phase)
}

func TestUnknownSuccessDetailKeepsProgress(t *testing.T) {
	log := &changeLog{}
	m := New(nil, WithOnChange(log.record))
	m.Register("view-1")
	m.MarkRequested("view-1", "https://example.com")
	m.ApplyEvent(hostEvent("view-1", true, types.DetailCreated))

	before := len(log.snapshot())

	// A success event with no recognizable detail must not erase the
	// held detail or fire a spurious change push.
	m.ApplyEvent(hostEvent("view-1", true, ""))
	m.ApplyEvent(hostEvent("view-1", true, "warming-up"))

	status, _ := m.Status("view-1")
	assert.Equal(t, types.PhaseInitializing, status.Phase)
	assert.Equal(t, types.DetailCreated, status.Detail)
	assert.Len(t, log.snapshot(), before)
}

func TestStallTimeoutFiresOnce(t *testing.T) {
	log := &changeLog{}
	m := New(nil, WithStallTimeout(20*time.Millisecond), WithOnChange(log.record))
	m.Register("view-1")
	m.MarkRequested("view-1", "https://stalled.example")

	// Repeated flushes while waiting must not re-arm extra timers.
	m.MarkRequested("view-1", "https://stalled.example")
	m.MarkRequested("view-1", "https://stalled.example")

	time.Sleep(100 * time.Millisecond)

	status, _ := m.Status("view-1")
	require.Equal(t, types.PhaseError, status.Phase)
	require.NotNil(t, status.Error)
	require.NotNil(t, status.Error.Code)
	assert.Equal(t, classify.TimeoutCode, *status.Error.Code)

	errors := 0
	for _, s := range log.snapshot() {
		if s.Phase == types.PhaseError {
			errors++
		}
	}
	assert.Equal(t, 1, errors, "stall demotion must fire exactly once")
	assert.Equal(t, 3, m.Attempts("view-1"))
}

func TestStallTimerStoppedOnSuccess(t *testing.T) {
	log := &changeLog{}
	m := New(nil, WithStallTimeout(20*time.Millisecond), WithOnChange(log.record))
	m.Register("view-1")
	m.MarkRequested("view-1", "https://example.com")
	m.ApplyEvent(hostEvent("view-1", true, types.DetailLoaded))

	time.Sleep(60 * time.Millisecond)

	status, _ := m.Status("view-1")
	assert.Equal(t, types.PhaseInitialized, status.Phase)
	for _, s := range log.snapshot() {
		assert.NotEqual(t, types.PhaseError, s.Phase)
	}
}

func TestRetryResetsCycle(t *testing.T) {
	m := New(nil, WithStallTimeout(20*time.Millisecond))
	m.Register("view-1")
	m.MarkRequested("view-1", "https://example.com")

	fail := hostEvent("view-1", false, "")
	fail.ErrorDescription = "ERR_CONNECTION_REFUSED"
	m.ApplyEvent(fail)

	assert.True(t, m.Retry("view-1"))
	status, _ := m.Status("view-1")
	assert.Equal(t, types.PhaseIdle, status.Phase)
	assert.Nil(t, status.Error)
	assert.Equal(t, 0, m.Attempts("view-1"))

	// The retried cycle runs the full flow again.
	m.MarkRequested("view-1", "https://example.com")
	m.ApplyEvent(hostEvent("view-1", true, types.DetailLoaded))
	status, _ = m.Status("view-1")
	assert.Equal(t, types.PhaseInitialized, status.Phase)
	assert.Equal(t, 1, m.Attempts("view-1"))
}

func TestRetryOnlyFromError(t *testing.T) {
	m := New(nil)
	m.Register("view-1")
	assert.False(t, m.Retry("view-1"), "idle views have nothing to retry")

	m.MarkRequested("view-1", "https://example.com")
	assert.False(t, m.Retry("view-1"), "initializing views have nothing to retry")

	assert.False(t, m.Retry("unknown"))
}

func TestStaleTimerAfterRetry(t *testing.T) {
	m := New(nil, WithStallTimeout(30*time.Millisecond))
	m.Register("view-1")
	m.MarkRequested("view-1", "https://example.com")

	fail := hostEvent("view-1", false, "")
	fail.ErrorDescription = "ERR_CONNECTION_REFUSED"
	m.ApplyEvent(fail)
	require.True(t, m.Retry("view-1"))

	// The old cycle's timer window passes without demoting the new cycle.
	time.Sleep(50 * time.Millisecond)
	status, _ := m.Status("view-1")
	assert.Equal(t, types.PhaseIdle, status.Phase)
}

func TestRemoveClearsState(t *testing.T) {
	m := New(nil, WithStallTimeout(20*time.Millisecond))
	m.Register("view-1")
	m.MarkRequested("view-1", "https://example.com")
	m.Remove("view-1")

	_, ok := m.Status("view-1")
	assert.False(t, ok)

	// The orphaned timer must not resurrect the view.
	time.Sleep(60 * time.Millisecond)
	_, ok = m.Status("view-1")
	assert.False(t, ok)
}

func TestFailMarksClientSideError(t *testing.T) {
	m := New(nil)
	m.Register("view-1")
	m.Fail("view-1", classify.InvalidURL("nope", "missing host"))

	status, _ := m.Status("view-1")
	require.Equal(t, types.PhaseError, status.Phase)
	require.NotNil(t, status.Error)
	require.NotNil(t, status.Error.Code)
	assert.Equal(t, -300, *status.Error.Code)
}
