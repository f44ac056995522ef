package types

// Bounds is the clipped, visible rectangle of a placeholder in viewport
// coordinates. It is never the raw element rectangle: callers receive it
// already clamped to the visible area.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Equal compares all four fields. Bounds drive outbound messages, so
// equality is the primary defense against update feedback loops.
func (b Bounds) Equal(o Bounds) bool {
	return b.X == o.X && b.Y == o.Y && b.Width == o.Width && b.Height == o.Height
}

// Empty reports whether the rectangle has no visible area.
func (b Bounds) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// ViewRecord holds the latest known URL and bounds for one embedded view.
// It is owned exclusively by the update channel for that view.
type ViewRecord struct {
	ViewID          string  `json:"view_id"`
	LastKnownURL    *string `json:"last_known_url,omitempty"`
	LastKnownBounds *Bounds `json:"last_known_bounds,omitempty"`
}

// Phase represents view initialization lifecycle phases
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseInitializing Phase = "initializing"
	PhaseInitialized  Phase = "initialized"
	PhaseError        Phase = "error"
)

// InitDetail narrates sub-progress within the initializing phase
type InitDetail string

const (
	DetailCreated  InitDetail = "created"
	DetailExisting InitDetail = "existing"
	DetailLoaded   InitDetail = "loaded"
)

// InitStatus is the per-view initialization state. At most one phase is
// active per view at any time; Detail is set only while initializing and
// Error only in the error phase.
type InitStatus struct {
	Phase  Phase            `json:"phase"`
	Detail InitDetail       `json:"detail,omitempty"`
	Error  *ClassifiedError `json:"error,omitempty"`
}

// Terminal reports whether the status can no longer advance without a retry.
func (s InitStatus) Terminal() bool {
	return s.Phase == PhaseInitialized || s.Phase == PhaseError
}

// ClassifiedError is the user-facing rendition of a raw navigation failure.
// It is always produced by the classifier, never constructed ad hoc.
type ClassifiedError struct {
	FriendlyTitle    string `json:"friendly_title"`
	FriendlySubtitle string `json:"friendly_subtitle,omitempty"`
	TechnicalMessage string `json:"technical_message,omitempty"`
	Code             *int   `json:"code,omitempty"`
	Description      string `json:"description,omitempty"`
	URL              string `json:"url,omitempty"`
}

// ViewStats contains coordinator statistics
type ViewStats struct {
	TotalViews       int `json:"total_views"`
	InitializedViews int `json:"initialized_views"`
	ErroredViews     int `json:"errored_views"`
	PendingViews     int `json:"pending_views"`
}
