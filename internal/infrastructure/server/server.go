package server

import (
	"context"
	"fmt"
	"net"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/inkwellhq/blockview/internal/api/http"
	"github.com/inkwellhq/blockview/internal/api/middleware"
	"github.com/inkwellhq/blockview/internal/api/ws"
	"github.com/inkwellhq/blockview/internal/domain/lifecycle"
	"github.com/inkwellhq/blockview/internal/domain/view"
	"github.com/inkwellhq/blockview/internal/domain/viewport"
	"github.com/inkwellhq/blockview/internal/host"
	"github.com/inkwellhq/blockview/internal/infrastructure/config"
	"github.com/inkwellhq/blockview/internal/infrastructure/logging"
	"github.com/inkwellhq/blockview/internal/infrastructure/monitoring"
	"github.com/inkwellhq/blockview/internal/infrastructure/tracing"
)

// Server wires the sync core: host client, view coordinator, and the
// HTTP/websocket surface.
type Server struct {
	router     *gin.Engine
	manager    *view.Manager
	hostClient host.Host
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
	cancelPump context.CancelFunc
}

// New creates a server instance and connects to the view host.
func New(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("initializing blockview server",
		zap.String("port", cfg.Server.Port),
		zap.String("host_events", cfg.Host.EventsURL),
		zap.String("host_control", cfg.Host.ControlURL),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("blockview", logger.Logger)

	hostClient, err := host.Dial(host.Config{
		EventsURL:      cfg.Host.EventsURL,
		ControlURL:     cfg.Host.ControlURL,
		DialTimeout:    cfg.Host.DialTimeout,
		ControlTimeout: cfg.Host.ControlTimeout,
		RetryMax:       cfg.Host.RetryMax,
	}, logger.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to view host: %w", err)
	}
	logger.Info("connected to view host", zap.String("events_url", cfg.Host.EventsURL))

	manager := view.NewManager(hostClient, view.Config{
		Tracker: viewport.Config{
			FooterReserve:      cfg.Sync.FooterReserve,
			MountRecheckDelay:  cfg.Sync.MountRecheckDelay,
			MaxDetachedRetries: cfg.Sync.MaxDetachedRetries,
		},
		Machine: []lifecycle.Option{
			lifecycle.WithStallTimeout(cfg.Sync.StallTimeout),
		},
	}, logger.Logger).WithMetrics(metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(manager, metrics, logger)
	wsHandler := ws.NewHandler(manager, metrics, logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// View management
	router.GET("/views", handlers.ListViews)
	router.GET("/views/:id", handlers.GetView)
	router.POST("/views/:id/retry", handlers.RetryView)
	router.POST("/views/:id/back", handlers.NavigateBack)
	router.GET("/views/:id/devtools", handlers.DevToolsState)
	router.POST("/views/:id/devtools/toggle", handlers.ToggleDevTools)
	router.GET("/stats", handlers.Stats)

	// Document-surface stream
	router.GET("/stream", wsHandler.HandleConnection)

	// Prometheus exposition
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Server{
		router:     router,
		manager:    manager,
		hostClient: hostClient,
		logger:     logger,
		config:     cfg,
		metrics:    metrics,
	}, nil
}

// Run starts the host event pump and serves HTTP until failure.
func (s *Server) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelPump = cancel
	go s.manager.Run(ctx)

	addr := net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
	s.logger.Info("server listening", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close shuts down the event pump and the host link.
func (s *Server) Close() error {
	if s.cancelPump != nil {
		s.cancelPump()
	}
	err := s.hostClient.Close()
	s.logger.Sync() //nolint:errcheck
	return err
}
