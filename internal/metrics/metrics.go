// Package metrics defines the service's OpenTelemetry instruments.
// All recording goes through the global meter provider, so everything is a
// no-op until observability is initialized.
package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/skillsenselab/offerhub"

// Vendor call outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeUnavailable = "unavailable"
	OutcomeInvalidData = "invalid_data"
	OutcomeCircuitOpen = "circuit_open"
	OutcomeNotFound    = "not_found"
)

// Metrics bundles the domain instruments.
type Metrics struct {
	vendorCalls        metric.Int64Counter
	vendorLatency      metric.Float64Histogram
	cacheLookups       metric.Int64Counter
	breakerTransitions metric.Int64Counter
	requests           metric.Int64Counter
}

// New creates the instrument set on the global meter provider.
func New() (*Metrics, error) {
	meter := otel.Meter(meterName)

	vendorCalls, err := meter.Int64Counter("offerhub.vendor.calls",
		metric.WithDescription("Vendor pipeline calls by vendor and outcome"))
	if err != nil {
		return nil, fmt.Errorf("create vendor call counter: %w", err)
	}
	vendorLatency, err := meter.Float64Histogram("offerhub.vendor.latency",
		metric.WithDescription("Vendor call latency"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("create vendor latency histogram: %w", err)
	}
	cacheLookups, err := meter.Int64Counter("offerhub.cache.lookups",
		metric.WithDescription("Result cache lookups by outcome"))
	if err != nil {
		return nil, fmt.Errorf("create cache lookup counter: %w", err)
	}
	breakerTransitions, err := meter.Int64Counter("offerhub.breaker.transitions",
		metric.WithDescription("Circuit breaker state transitions"))
	if err != nil {
		return nil, fmt.Errorf("create breaker transition counter: %w", err)
	}
	requests, err := meter.Int64Counter("offerhub.http.requests",
		metric.WithDescription("HTTP requests by status code"))
	if err != nil {
		return nil, fmt.Errorf("create request counter: %w", err)
	}

	return &Metrics{
		vendorCalls:        vendorCalls,
		vendorLatency:      vendorLatency,
		cacheLookups:       cacheLookups,
		breakerTransitions: breakerTransitions,
		requests:           requests,
	}, nil
}

// RecordVendorCall records one vendor pipeline outcome and its latency.
func (m *Metrics) RecordVendorCall(ctx context.Context, vendor, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("vendor", vendor),
		attribute.String("outcome", outcome),
	)
	m.vendorCalls.Add(ctx, 1, attrs)
	m.vendorLatency.Record(ctx, float64(elapsed.Milliseconds()), attrs)
}

// RecordCacheLookup records a cache hit or miss.
func (m *Metrics) RecordCacheLookup(ctx context.Context, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordBreakerTransition records one circuit breaker state change.
func (m *Metrics) RecordBreakerTransition(ctx context.Context, vendor, from, to string) {
	m.breakerTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("vendor", vendor),
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

// RecordRequest records one served HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, route string, status int) {
	m.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("status", strconv.Itoa(status)),
	))
}
