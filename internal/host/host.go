package host

import (
	"context"

	"github.com/inkwellhq/blockview/internal/shared/types"
)

// Message type names on the host event link.
const (
	MsgUpdateView       = "update-view"
	MsgRemoveView       = "remove-view"
	MsgViewInitialized  = "view-initialized"
	MsgNavigationUpdate = "navigation-update"
)

// Event is one host-emitted message. Exactly one field is set.
type Event struct {
	Initialized *types.ViewInitialized
	Navigation  *types.NavigationUpdate
}

// Host is the privileged process that owns the native views. Every
// operation is asynchronous and fallible; the host's events may arrive
// before, interleaved with, or after a request completes locally.
type Host interface {
	// UpdateView creates, positions, or navigates the native view.
	UpdateView(ctx context.Context, update types.UpdateView) error

	// RemoveView destroys the native view. Idempotent on the host side;
	// callers treat failures as best-effort.
	RemoveView(ctx context.Context, viewID string) error

	// NavigateBack asks the view to go back one history entry.
	NavigateBack(ctx context.Context, viewID string) (types.NavigateBackResult, error)

	// DevToolsState reports whether the view's devtools panel is open.
	DevToolsState(ctx context.Context, viewID string) (types.DevToolsResult, error)

	// ToggleDevTools opens or closes the view's devtools panel.
	ToggleDevTools(ctx context.Context, viewID string) (types.DevToolsResult, error)

	// Events streams host-emitted lifecycle and navigation events. The
	// channel closes when the link to the host is gone.
	Events() <-chan Event

	// Close tears down the link to the host.
	Close() error
}
