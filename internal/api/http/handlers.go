package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkwellhq/blockview/internal/domain/view"
	"github.com/inkwellhq/blockview/internal/infrastructure/logging"
	"github.com/inkwellhq/blockview/internal/infrastructure/monitoring"
)

// Handlers bundles the REST endpoints over the view coordinator.
type Handlers struct {
	manager   *view.Manager
	metrics   *monitoring.Metrics
	logger    *logging.Logger
	startTime time.Time
}

// NewHandlers creates the REST handler set.
func NewHandlers(manager *view.Manager, metrics *monitoring.Metrics, logger *logging.Logger) *Handlers {
	return &Handlers{
		manager:   manager,
		metrics:   metrics,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Root returns service identification.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "blockview",
		"status":  "running",
	})
}

// Health returns service health and uptime.
func (h *Handlers) Health(c *gin.Context) {
	if h.metrics != nil {
		h.metrics.UpdateUptime()
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// ListViews returns snapshots of all mounted views.
func (h *Handlers) ListViews(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"views": h.manager.List()})
}

// GetView returns one view's snapshot.
func (h *Handlers) GetView(c *gin.Context) {
	info, ok := h.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "view not found"})
		return
	}
	c.JSON(http.StatusOK, info)
}

// Stats returns coordinator statistics.
func (h *Handlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.manager.Stats())
}

// RetryView resets an errored view and re-triggers creation.
func (h *Handlers) RetryView(c *gin.Context) {
	viewID := c.Param("id")
	if !h.manager.Retry(viewID) {
		c.JSON(http.StatusConflict, gin.H{"error": "view is not in an error state"})
		return
	}
	h.logger.Info("view retry requested", zap.String("view_id", viewID))
	c.JSON(http.StatusOK, gin.H{"retried": true})
}

// NavigateBack asks the view to go back one history entry.
func (h *Handlers) NavigateBack(c *gin.Context) {
	viewID := c.Param("id")

	timer := monitoring.NewTimer(h.metrics, "navigate-back")
	result, err := h.manager.NavigateBack(c.Request.Context(), viewID)
	if err != nil {
		timer.Stop("error")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	timer.Stop("ok")
	c.JSON(http.StatusOK, result)
}

// DevToolsState reports whether the view's devtools panel is open.
func (h *Handlers) DevToolsState(c *gin.Context) {
	viewID := c.Param("id")

	timer := monitoring.NewTimer(h.metrics, "devtools-state")
	result, err := h.manager.DevToolsState(c.Request.Context(), viewID)
	if err != nil {
		timer.Stop("error")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	timer.Stop("ok")
	c.JSON(http.StatusOK, result)
}

// ToggleDevTools opens or closes the view's devtools panel.
func (h *Handlers) ToggleDevTools(c *gin.Context) {
	viewID := c.Param("id")

	timer := monitoring.NewTimer(h.metrics, "devtools-toggle")
	result, err := h.manager.ToggleDevTools(c.Request.Context(), viewID)
	if err != nil {
		timer.Stop("error")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	timer.Stop("ok")
	c.JSON(http.StatusOK, result)
}
