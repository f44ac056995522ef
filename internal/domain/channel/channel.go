package channel

import (
	"sync"

	"github.com/inkwellhq/blockview/internal/shared/types"
)

// Channel holds the latest known URL and bounds per view and emits a
// combined update only when both are known and at least one actually
// changed. It is the last line of defense against redundant host traffic
// and feedback loops.
type Channel struct {
	mu      sync.Mutex
	records map[string]*record
	send    func(types.UpdateView)
}

type record struct {
	url    *string
	bounds *types.Bounds

	sentURL    *string
	sentBounds *types.Bounds
}

// New creates a channel. send receives exactly one message per logical
// change; it must not call back into the channel.
func New(send func(types.UpdateView)) *Channel {
	return &Channel{
		records: make(map[string]*record),
		send:    send,
	}
}

// HandleURLChange records a URL for the view and attempts to flush.
func (c *Channel) HandleURLChange(viewID, url string) {
	c.mu.Lock()
	r := c.recordLocked(viewID)
	r.url = &url
	msg, ok := c.flushLocked(viewID, r)
	c.mu.Unlock()

	if ok {
		c.send(msg)
	}
}

// HandleBoundsChange records bounds for the view and attempts to flush.
func (c *Channel) HandleBoundsChange(viewID string, bounds types.Bounds) {
	c.mu.Lock()
	r := c.recordLocked(viewID)
	b := bounds
	r.bounds = &b
	msg, ok := c.flushLocked(viewID, r)
	c.mu.Unlock()

	if ok {
		c.send(msg)
	}
}

// Reflush forces a resend of the stored pair, if complete. Used by retry:
// the host must see the last known geometry again even though nothing
// changed locally.
func (c *Channel) Reflush(viewID string) bool {
	c.mu.Lock()
	r, ok := c.records[viewID]
	if !ok || r.url == nil || r.bounds == nil {
		c.mu.Unlock()
		return false
	}
	r.sentURL = nil
	r.sentBounds = nil
	msg, ok := c.flushLocked(viewID, r)
	c.mu.Unlock()

	if ok {
		c.send(msg)
	}
	return ok
}

// Record returns a copy of the stored record for a view.
func (c *Channel) Record(viewID string) (types.ViewRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.records[viewID]
	if !ok {
		return types.ViewRecord{}, false
	}
	out := types.ViewRecord{ViewID: viewID}
	if r.url != nil {
		u := *r.url
		out.LastKnownURL = &u
	}
	if r.bounds != nil {
		b := *r.bounds
		out.LastKnownBounds = &b
	}
	return out, true
}

// Forget discards the record for a view. Returns whether one existed.
func (c *Channel) Forget(viewID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.records[viewID]
	delete(c.records, viewID)
	return ok
}

func (c *Channel) recordLocked(viewID string) *record {
	r, ok := c.records[viewID]
	if !ok {
		r = &record{}
		c.records[viewID] = r
	}
	return r
}

// flushLocked builds the combined message when both fields are present
// and at least one differs from what was last sent. A url-only or
// bounds-only record never flushes: a view must not be created with
// undefined geometry or undefined content.
func (c *Channel) flushLocked(viewID string, r *record) (types.UpdateView, bool) {
	if r.url == nil || r.bounds == nil {
		return types.UpdateView{}, false
	}
	urlChanged := r.sentURL == nil || *r.sentURL != *r.url
	boundsChanged := r.sentBounds == nil || !r.sentBounds.Equal(*r.bounds)
	if !urlChanged && !boundsChanged {
		return types.UpdateView{}, false
	}

	sentURL := *r.url
	sentBounds := *r.bounds
	r.sentURL = &sentURL
	r.sentBounds = &sentBounds

	return types.UpdateView{
		ViewID: viewID,
		URL:    *r.url,
		Bounds: *r.bounds,
	}, true
}
