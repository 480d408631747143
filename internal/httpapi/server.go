// Package httpapi exposes the aggregation pipeline over HTTP.
package httpapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/skillsenselab/offerhub/internal/auth"
	"github.com/skillsenselab/offerhub/internal/config"
	"github.com/skillsenselab/offerhub/internal/logging"
	"github.com/skillsenselab/offerhub/internal/metrics"
	"github.com/skillsenselab/offerhub/internal/offers"
	"github.com/skillsenselab/offerhub/internal/resilience"
)

// Server hosts the public and admin endpoints on a single port.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	svc        *offers.Service
	limiter    *resilience.WindowLimiter
	metrics    *metrics.Metrics
	log        *logging.Logger

	name        string
	version     string
	environment string
	startedAt   time.Time
}

// New builds the server, registers middleware and routes.
func New(cfg *config.Config, svc *offers.Service, limiter *resilience.WindowLimiter, m *metrics.Metrics, log *logging.Logger) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}
	handler := h2c.NewHandler(engine, h2s)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		engine:      engine,
		svc:         svc,
		limiter:     limiter,
		metrics:     m,
		log:         log.WithComponent("httpapi"),
		name:        cfg.Name,
		version:     cfg.Version,
		environment: cfg.Environment,
		startedAt:   time.Now(),
	}

	s.registerRoutes(cfg)
	return s
}

func (s *Server) registerRoutes(cfg *config.Config) {
	s.engine.Use(Recovery(s.log))
	s.engine.Use(RequestID())
	s.engine.Use(RequestLogger(s.log))
	s.engine.Use(RequestMetrics(s.metrics))

	s.engine.GET("/", s.handleRoot)
	s.engine.GET("/health", s.handleHealth)

	keyVerifier := auth.NewKeyVerifier(cfg.Auth.APIKeys)
	products := s.engine.Group("/products")
	products.Use(APIKeyAuth(keyVerifier), RateLimit(s.limiter))
	products.GET("/:sku", s.handleProduct)

	adminVerifier := auth.NewAdminVerifier(cfg.Auth.AdminJWTSecret)
	admin := s.engine.Group("/admin")
	admin.Use(AdminAuth(adminVerifier))
	admin.GET("/metrics", s.handleAdminMetrics)
	admin.POST("/breakers/reset", s.handleAdminBreakersReset)
	admin.DELETE("/cache/:sku", s.handleAdminCacheDelete)
}

// Engine exposes the router for handler tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start binds the listen address and serves in the background. It returns
// once the listener is bound so callers know the port is ready.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	s.log.Info("http server started", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop(ctx context.Context, timeout time.Duration) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.log.Info("http server stopped", nil)
	return nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
