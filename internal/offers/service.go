// Package offers implements the aggregation pipeline: fan out to every
// vendor behind its circuit breaker and retry wrapper, normalize what comes
// back, drop stale quotes, and pick the best offer.
package offers

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/skillsenselab/offerhub/internal/cache"
	"github.com/skillsenselab/offerhub/internal/logging"
	"github.com/skillsenselab/offerhub/internal/metrics"
	"github.com/skillsenselab/offerhub/internal/models"
	"github.com/skillsenselab/offerhub/internal/observability"
	"github.com/skillsenselab/offerhub/internal/resilience"
	"github.com/skillsenselab/offerhub/internal/vendors"
)

// Source reports where a result came from.
type Source string

const (
	SourceCache   Source = "cache"
	SourceVendors Source = "vendors"
)

// Config carries the pipeline tuning knobs.
type Config struct {
	// Timeout is the per-attempt vendor call timeout.
	Timeout time.Duration
	// RetryAttempts is the total attempts per vendor call.
	RetryAttempts int
	// RetryDelay is the fixed pause between attempts.
	RetryDelay time.Duration
	// Freshness is the maximum accepted quote age.
	Freshness time.Duration
}

// Service orchestrates vendor fan-out, aggregation and caching.
type Service struct {
	cfg      Config
	adapters []vendors.Adapter
	breakers *resilience.BreakerSet
	cache    *cache.Store
	metrics  *metrics.Metrics
	log      *logging.Logger

	mu    sync.Mutex
	stats map[string]*vendorStats
}

// vendorStats accumulates per-vendor call bookkeeping.
type vendorStats struct {
	total          uint64
	success        uint64
	failure        uint64
	totalLatency   time.Duration
	latencySamples uint64
}

// VendorStats is the exported per-vendor counters snapshot.
type VendorStats struct {
	Vendor       string  `json:"vendor"`
	Total        uint64  `json:"total_calls"`
	Success      uint64  `json:"successful_calls"`
	Failure      uint64  `json:"failed_calls"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
}

// NewService wires the pipeline together.
func NewService(cfg Config, adapters []vendors.Adapter, breakers *resilience.BreakerSet, store *cache.Store, m *metrics.Metrics, log *logging.Logger) *Service {
	stats := make(map[string]*vendorStats, len(adapters))
	for _, a := range adapters {
		stats[a.Name()] = &vendorStats{}
	}
	return &Service{
		cfg:      cfg,
		adapters: adapters,
		breakers: breakers,
		cache:    store,
		metrics:  m,
		log:      log.WithComponent("offers"),
		stats:    stats,
	}
}

// BestOffer returns the availability result for a SKU, serving from cache
// when possible. Vendor failures are absorbed: an empty fan-out yields an
// OUT_OF_STOCK result, never an error.
func (s *Service) BestOffer(ctx context.Context, sku string) (models.Result, Source) {
	ctx, span := observability.StartSpan(ctx, "offers.best_offer")
	defer span.End()
	span.SetAttributes(attribute.String("sku", sku))

	if res, ok := s.cache.Get(ctx, sku); ok {
		s.metrics.RecordCacheLookup(ctx, true)
		return *res, SourceCache
	}
	s.metrics.RecordCacheLookup(ctx, false)

	quotes := s.fanOut(ctx, sku)
	fresh := FilterFresh(quotes, time.Now().UTC(), s.cfg.Freshness)
	if dropped := len(quotes) - len(fresh); dropped > 0 {
		s.log.Debug("stale quotes discarded", map[string]interface{}{
			"sku": sku, "dropped": dropped,
		})
	}

	var result models.Result
	if winner := Decide(fresh); winner != nil {
		result = models.ResultFromQuote(*winner)
	} else {
		result = models.OutOfStockResult(sku)
	}

	// The write-back shares the fan-out's detachment: vendor answers paid
	// for after a client disconnect still populate the cache.
	s.cache.Set(context.WithoutCancel(ctx), sku, result)
	return result, SourceVendors
}

// fanOut queries every vendor concurrently and joins all answers. The fan-out
// runs on a detached context with its own deadline so a client disconnect
// does not abort vendor calls mid-flight.
func (s *Service) fanOut(ctx context.Context, sku string) []models.Quote {
	fanCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.outerDeadline())
	defer cancel()

	results := make(chan *models.Quote, len(s.adapters))
	var wg sync.WaitGroup
	for _, adapter := range s.adapters {
		wg.Add(1)
		go func(ad vendors.Adapter) {
			defer wg.Done()
			results <- s.fetchOne(fanCtx, ad, sku)
		}(adapter)
	}
	wg.Wait()
	close(results)

	quotes := make([]models.Quote, 0, len(s.adapters))
	for q := range results {
		if q != nil {
			quotes = append(quotes, *q)
		}
	}
	return quotes
}

// outerDeadline bounds the whole fan-out: every attempt plus every retry
// pause plus scheduling headroom.
func (s *Service) outerDeadline() time.Duration {
	attempts := time.Duration(s.cfg.RetryAttempts)
	return attempts*s.cfg.Timeout + attempts*s.cfg.RetryDelay + time.Second
}

// fetchOne runs one vendor call through its breaker and retry wrapper.
// Returns nil for any failure or a vendor that does not carry the SKU.
func (s *Service) fetchOne(ctx context.Context, ad vendors.Adapter, sku string) *models.Quote {
	name := ad.Name()
	br := s.breakers.Get(name)

	if err := br.Allow(); err != nil {
		s.metrics.RecordVendorCall(ctx, name, metrics.OutcomeCircuitOpen, 0)
		s.log.Debug("vendor skipped, circuit open", map[string]interface{}{
			"vendor": name, "sku": sku,
		})
		return nil
	}

	start := time.Now()
	quote, err := resilience.Retry(ctx, s.retryConfig(name), func(ctx context.Context) (*models.Quote, error) {
		return ad.Fetch(ctx, sku)
	})
	elapsed := time.Since(start)

	if err != nil {
		br.RecordFailure()
		s.recordFailure(ctx, name, err, elapsed)
		s.log.Warn("vendor call failed", map[string]interface{}{
			"vendor": name, "sku": sku, "error": err.Error(),
		})
		return nil
	}

	br.RecordSuccess()
	s.recordSuccess(ctx, name, quote, elapsed)
	return quote
}

func (s *Service) retryConfig(vendor string) resilience.RetryConfig {
	return resilience.RetryConfig{
		Attempts:          s.cfg.RetryAttempts,
		Delay:             s.cfg.RetryDelay,
		PerAttemptTimeout: s.cfg.Timeout,
		// Malformed payloads fail identically on every attempt.
		RetryIf: func(err error) bool {
			return !errors.Is(err, vendors.ErrInvalidVendorData) && resilience.DefaultRetryIf(err)
		},
		OnRetry: func(attempt int, err error) {
			s.log.Debug("retrying vendor call", map[string]interface{}{
				"vendor": vendor, "attempt": attempt, "error": err.Error(),
			})
		},
	}
}

func (s *Service) recordSuccess(ctx context.Context, vendor string, quote *models.Quote, elapsed time.Duration) {
	outcome := metrics.OutcomeSuccess
	if quote == nil {
		outcome = metrics.OutcomeNotFound
	}
	s.metrics.RecordVendorCall(ctx, vendor, outcome, elapsed)

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats[vendor]
	st.total++
	st.success++
	st.totalLatency += elapsed
	st.latencySamples++
}

func (s *Service) recordFailure(ctx context.Context, vendor string, err error, elapsed time.Duration) {
	outcome := metrics.OutcomeUnavailable
	if errors.Is(err, vendors.ErrInvalidVendorData) {
		outcome = metrics.OutcomeInvalidData
	}
	s.metrics.RecordVendorCall(ctx, vendor, outcome, elapsed)

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats[vendor]
	st.total++
	st.failure++
	st.totalLatency += elapsed
	st.latencySamples++
}

// VendorSnapshots returns per-vendor call counters in adapter order.
func (s *Service) VendorSnapshots() []VendorStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]VendorStats, 0, len(s.adapters))
	for _, a := range s.adapters {
		st := s.stats[a.Name()]
		snap := VendorStats{
			Vendor:  a.Name(),
			Total:   st.total,
			Success: st.success,
			Failure: st.failure,
		}
		if st.latencySamples > 0 {
			snap.AvgLatencyMS = float64(st.totalLatency.Milliseconds()) / float64(st.latencySamples)
		}
		out = append(out, snap)
	}
	return out
}

// Breakers exposes the breaker set for the admin surface.
func (s *Service) Breakers() *resilience.BreakerSet {
	return s.breakers
}

// Cache exposes the result cache for the admin surface.
func (s *Service) Cache() *cache.Store {
	return s.cache
}
