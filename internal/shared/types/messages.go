package types

// Origin tags where an applied event came from. The lifecycle machine only
// reacts to host-originated events; locally generated echoes are ignored
// instead of being inferred from timing.
type Origin string

const (
	OriginLocal Origin = "local"
	OriginHost  Origin = "host"
)

// UpdateView positions and navigates an embedded view. Sent to the view
// host only when both URL and bounds are known and at least one changed.
type UpdateView struct {
	ViewID string `json:"view_id"`
	URL    string `json:"url"`
	Bounds Bounds `json:"bounds"`
}

// RemoveView destroys the native view. Idempotent on the host side.
type RemoveView struct {
	ViewID string `json:"view_id"`
}

// NavigateBackResult is the host response to a navigate-back request.
type NavigateBackResult struct {
	Success   bool `json:"success"`
	CanGoBack bool `json:"can_go_back"`
}

// DevToolsResult is the host response to a devtools state or toggle request.
type DevToolsResult struct {
	Success bool   `json:"success"`
	IsOpen  bool   `json:"is_open"`
	Error   string `json:"error,omitempty"`
}

// ViewInitialized is the host-emitted lifecycle event for a view. Success
// events carry a Status detail; failures carry the raw error triple that
// feeds the classifier.
type ViewInitialized struct {
	ViewID           string     `json:"view_id"`
	Success          bool       `json:"success"`
	Status           InitDetail `json:"status,omitempty"`
	Error            string     `json:"error,omitempty"`
	ErrorCode        *int       `json:"error_code,omitempty"`
	ErrorDescription string     `json:"error_description,omitempty"`
	URL              string     `json:"url,omitempty"`

	// Origin is assigned by the receiving layer, never by the wire.
	Origin Origin `json:"-"`
}

// NavigationUpdate keeps the back/forward affordance in sync.
type NavigationUpdate struct {
	ViewID    string `json:"view_id"`
	URL       string `json:"url"`
	CanGoBack bool   `json:"can_go_back"`
}
