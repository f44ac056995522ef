package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/inkwellhq/blockview/internal/domain/view"
	"github.com/inkwellhq/blockview/internal/domain/viewport"
	"github.com/inkwellhq/blockview/internal/infrastructure/logging"
	"github.com/inkwellhq/blockview/internal/infrastructure/monitoring"
	"github.com/inkwellhq/blockview/internal/shared/id"
	"github.com/inkwellhq/blockview/internal/shared/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // The document surface runs on a dev origin; restrict in production
	},
}

const unmountTimeout = 5 * time.Second

// inbound is a message from the document surface.
type inbound struct {
	Type        string                `json:"type"`
	ViewID      string                `json:"view_id,omitempty"`
	URL         string                `json:"url,omitempty"`
	Measurement *viewport.Measurement `json:"measurement,omitempty"`
}

// outbound is a message pushed to the document surface.
type outbound struct {
	Type       string                  `json:"type"`
	ViewID     string                  `json:"view_id,omitempty"`
	Status     *types.InitStatus       `json:"status,omitempty"`
	Navigation *types.NavigationUpdate `json:"navigation,omitempty"`
	Session    string                  `json:"session,omitempty"`
	Error      string                  `json:"error,omitempty"`
}

// Handler manages document-surface stream connections. Geometry and URL
// changes flow in; status changes, navigation updates, and re-measure
// requests flow out.
type Handler struct {
	manager *view.Manager
	metrics *monitoring.Metrics
	logger  *logging.Logger

	mu    sync.RWMutex
	conns map[id.ConnID]*conn
}

type conn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
}

// NewHandler creates a surface stream handler and hooks it into the
// coordinator's push callbacks.
func NewHandler(manager *view.Manager, metrics *monitoring.Metrics, logger *logging.Logger) *Handler {
	h := &Handler{
		manager: manager,
		metrics: metrics,
		logger:  logger,
		conns:   make(map[id.ConnID]*conn),
	}

	manager.OnStatus(func(viewID string, status types.InitStatus) {
		s := status
		h.broadcast(outbound{Type: "status", ViewID: viewID, Status: &s})
	})
	manager.OnNavigation(func(update types.NavigationUpdate) {
		u := update
		h.broadcast(outbound{Type: "navigation", ViewID: update.ViewID, Navigation: &u})
	})
	manager.OnRemeasure(func(viewID string) {
		h.broadcast(outbound{Type: "remeasure", ViewID: viewID})
	})

	return h
}

// HandleConnection upgrades the surface connection and processes its
// messages until it drops.
func (h *Handler) HandleConnection(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	connID := id.NewConnID()
	cn := &conn{ws: ws}

	h.mu.Lock()
	h.conns[connID] = cn
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
	}

	defer func() {
		h.mu.Lock()
		delete(h.conns, connID)
		h.mu.Unlock()
		if h.metrics != nil {
			h.metrics.WSConnections.Dec()
		}
		ws.Close()
	}()

	h.send(cn, outbound{Type: "system", Session: uuid.New().String()})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			h.logger.Debug("surface stream closed",
				zap.String("conn_id", connID.String()),
				zap.Error(err),
			)
			return
		}

		var msg inbound
		if err := sonic.Unmarshal(data, &msg); err != nil {
			h.send(cn, outbound{Type: "error", Error: "malformed message"})
			continue
		}
		if h.metrics != nil {
			h.metrics.WSMessages.WithLabelValues(msg.Type, "in").Inc()
		}

		h.dispatch(cn, msg)
	}
}

func (h *Handler) dispatch(cn *conn, msg inbound) {
	switch msg.Type {
	case "mount":
		if msg.ViewID == "" {
			h.send(cn, outbound{Type: "error", Error: "mount requires view_id"})
			return
		}
		h.manager.Mount(msg.ViewID, msg.URL)
	case "geometry":
		if msg.Measurement == nil {
			h.send(cn, outbound{Type: "error", Error: "geometry requires measurement"})
			return
		}
		h.manager.Observe(msg.ViewID, *msg.Measurement)
	case "url":
		h.manager.SetURL(msg.ViewID, msg.URL)
	case "retry":
		h.manager.Retry(msg.ViewID)
	case "unmount":
		ctx, cancel := context.WithTimeout(context.Background(), unmountTimeout)
		h.manager.Unmount(ctx, msg.ViewID)
		cancel()
	case "ping":
		h.send(cn, outbound{Type: "pong"})
	default:
		h.send(cn, outbound{Type: "error", Error: "unknown message type"})
	}
}

// broadcast pushes a message to every connected surface.
func (h *Handler) broadcast(msg outbound) {
	h.mu.RLock()
	conns := make([]*conn, 0, len(h.conns))
	for _, cn := range h.conns {
		conns = append(conns, cn)
	}
	h.mu.RUnlock()

	for _, cn := range conns {
		h.send(cn, msg)
	}
}

func (h *Handler) send(cn *conn, msg outbound) {
	data, err := sonic.Marshal(msg)
	if err != nil {
		h.logger.Warn("failed to encode outbound message", zap.Error(err))
		return
	}

	cn.writeMu.Lock()
	err = cn.ws.WriteMessage(websocket.TextMessage, data)
	cn.writeMu.Unlock()

	if err != nil {
		h.logger.Debug("surface write failed", zap.Error(err))
		return
	}
	if h.metrics != nil {
		h.metrics.WSMessages.WithLabelValues(msg.Type, "out").Inc()
	}
}
