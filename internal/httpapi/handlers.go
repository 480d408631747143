package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/skillsenselab/offerhub/internal/apperrors"
	"github.com/skillsenselab/offerhub/internal/offers"
	"github.com/skillsenselab/offerhub/internal/resilience"
)

var validate = validator.New()

// rootInfo is the service banner returned on GET /.
type rootInfo struct {
	Service     string `json:"service"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, rootInfo{
		Service:     s.name,
		Version:     s.version,
		Environment: s.environment,
	})
}

// healthResponse reports overall and per-component health.
type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

func (s *Server) handleHealth(c *gin.Context) {
	components := map[string]string{}
	status := "healthy"

	if err := s.svc.Cache().Ping(c.Request.Context()); err != nil {
		components["redis"] = "unavailable"
		status = "degraded"
	} else {
		components["redis"] = "healthy"
	}

	// Liveness is about this process, not its dependencies: a broken cache
	// degrades responses but never fails the probe.
	c.JSON(http.StatusOK, healthResponse{Status: status, Components: components})
}

func (s *Server) handleProduct(c *gin.Context) {
	sku := c.Param("sku")
	if err := validate.Var(sku, "required,alphanum,min=3,max=20"); err != nil {
		abortWith(c, apperrors.InvalidInput("SKU must be 3-20 alphanumeric characters"))
		return
	}

	result, source := s.svc.BestOffer(c.Request.Context(), sku)
	if source == offers.SourceCache {
		c.Header(headerCache, "HIT")
	} else {
		c.Header(headerCache, "MISS")
	}
	c.JSON(http.StatusOK, result)
}

// adminMetricsResponse aggregates operational counters for the admin surface.
type adminMetricsResponse struct {
	Vendors   []offers.VendorStats         `json:"vendors"`
	Breakers  []resilience.BreakerSnapshot `json:"breakers"`
	Cache     adminCacheMetrics            `json:"cache"`
	RateLimit adminRateLimitMetrics        `json:"rate_limit"`
	Uptime    string                       `json:"uptime"`
}

type adminCacheMetrics struct {
	TotalRequests uint64  `json:"total_requests"`
	Hits          uint64  `json:"hits"`
	Misses        uint64  `json:"misses"`
	HitRate       float64 `json:"hit_rate"`
}

type adminRateLimitMetrics struct {
	Limit         int `json:"limit"`
	WindowSeconds int `json:"window_seconds"`
	ActiveKeys    int `json:"active_keys"`
}

func (s *Server) handleAdminMetrics(c *gin.Context) {
	cm := s.svc.Cache().Metrics()
	c.JSON(http.StatusOK, adminMetricsResponse{
		Vendors:  s.svc.VendorSnapshots(),
		Breakers: s.svc.Breakers().Snapshots(),
		Cache: adminCacheMetrics{
			TotalRequests: cm.TotalRequests,
			Hits:          cm.Hits,
			Misses:        cm.Misses,
			HitRate:       cm.HitRate,
		},
		RateLimit: adminRateLimitMetrics{
			Limit:         s.limiter.Limit(),
			WindowSeconds: int(s.limiter.Window().Seconds()),
			ActiveKeys:    s.limiter.ActiveKeys(),
		},
		Uptime: time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleAdminCacheDelete(c *gin.Context) {
	sku := c.Param("sku")
	if err := validate.Var(sku, "required,alphanum,min=3,max=20"); err != nil {
		abortWith(c, apperrors.InvalidInput("SKU must be 3-20 alphanumeric characters"))
		return
	}

	s.svc.Cache().Delete(c.Request.Context(), sku)
	c.JSON(http.StatusOK, gin.H{"status": "invalidated", "sku": sku})
}

func (s *Server) handleAdminBreakersReset(c *gin.Context) {
	s.svc.Breakers().ResetAll()
	s.log.Info("circuit breakers reset", map[string]interface{}{
		"request_id": c.GetString("request_id"),
	})
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
