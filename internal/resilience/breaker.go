// Package resilience provides the fault-tolerance primitives of the vendor
// pipeline: per-vendor circuit breakers, the bounded retry wrapper, and the
// per-caller fixed-window rate limiter.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// BreakerState represents the circuit breaker state.
type BreakerState int

const (
	// StateClosed allows calls to pass through.
	StateClosed BreakerState = iota
	// StateOpen rejects all calls.
	StateOpen
	// StateHalfOpen allows a single probe call to test recovery.
	StateHalfOpen
)

// String returns the state name.
func (s BreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when a call is rejected without reaching the
// vendor.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig configures a circuit breaker.
type BreakerConfig struct {
	// Name identifies the protected vendor for logging and metrics.
	Name string
	// FailureThreshold is the number of consecutive failures that opens
	// the circuit.
	FailureThreshold int
	// Cooldown is how long an open circuit rejects calls before allowing
	// a probe.
	Cooldown time.Duration
	// OnStateChange is called after every state transition.
	OnStateChange func(name string, from, to BreakerState)
}

// CircuitBreaker gates calls to one vendor. Failures are counted only while
// consecutive; any success resets the count. In the half-open state at most
// one probe is in flight across all concurrent requests; the slot is held
// until that probe's outcome is recorded.
type CircuitBreaker struct {
	cfg BreakerConfig

	mu                  sync.Mutex
	state               BreakerState
	consecutiveFailures int
	openedAt            time.Time
	lastTransition      time.Time
	probeInFlight       bool
}

// NewCircuitBreaker creates a circuit breaker in the closed state.
func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	return &CircuitBreaker{
		cfg:            cfg,
		state:          StateClosed,
		lastTransition: time.Now(),
	}
}

// Execute runs fn through the breaker. It returns ErrCircuitOpen without
// calling fn when the circuit rejects the call; otherwise fn's outcome is
// recorded and its error returned unchanged.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.Allow(); err != nil {
		return err
	}
	err := fn()
	if err != nil {
		cb.RecordFailure()
	} else {
		cb.RecordSuccess()
	}
	return err
}

// Allow reports whether a call may proceed. In the half-open state the
// caller is granted the single probe slot and must resolve it by calling
// RecordSuccess or RecordFailure.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil
	case StateOpen:
		if time.Since(cb.openedAt) < cb.cfg.Cooldown {
			return ErrCircuitOpen
		}
		cb.toState(StateHalfOpen)
		cb.probeInFlight = true
		return nil
	case StateHalfOpen:
		if cb.probeInFlight {
			return ErrCircuitOpen
		}
		cb.probeInFlight = true
		return nil
	default:
		return ErrCircuitOpen
	}
}

// RecordSuccess records a successful call.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.consecutiveFailures = 0
	if cb.state == StateHalfOpen {
		cb.probeInFlight = false
		cb.toState(StateClosed)
	}
}

// RecordFailure records a failed call.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.consecutiveFailures++

	switch cb.state {
	case StateClosed:
		if cb.consecutiveFailures >= cb.cfg.FailureThreshold {
			cb.openedAt = time.Now()
			cb.toState(StateOpen)
		}
	case StateHalfOpen:
		cb.probeInFlight = false
		cb.openedAt = time.Now()
		cb.toState(StateOpen)
	}
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset returns the breaker to the closed state and clears its counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.consecutiveFailures = 0
	cb.probeInFlight = false
	if cb.state != StateClosed {
		cb.toState(StateClosed)
	}
}

// BreakerSnapshot is a point-in-time view of one breaker for metrics.
type BreakerSnapshot struct {
	Name                string        `json:"vendor"`
	State               string        `json:"state"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	TimeInState         time.Duration `json:"-"`
	TimeInStateSeconds  float64       `json:"time_in_state_seconds"`
}

// Snapshot returns the breaker's current state for reporting.
func (cb *CircuitBreaker) Snapshot() BreakerSnapshot {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	inState := time.Since(cb.lastTransition)
	return BreakerSnapshot{
		Name:                cb.cfg.Name,
		State:               cb.state.String(),
		ConsecutiveFailures: cb.consecutiveFailures,
		TimeInState:         inState,
		TimeInStateSeconds:  inState.Seconds(),
	}
}

// toState transitions to a new state. Callers must hold cb.mu.
func (cb *CircuitBreaker) toState(to BreakerState) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state = to
	cb.lastTransition = time.Now()
	if cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(cb.cfg.Name, from, to)
	}
}

// BreakerSet holds one breaker per vendor. The map is fixed at construction;
// each breaker carries its own lock, so no set-wide locking happens on the
// request path.
type BreakerSet struct {
	breakers map[string]*CircuitBreaker
	order    []string
}

// NewBreakerSet creates one breaker per vendor name with shared settings.
func NewBreakerSet(vendors []string, threshold int, cooldown time.Duration, onChange func(name string, from, to BreakerState)) *BreakerSet {
	set := &BreakerSet{
		breakers: make(map[string]*CircuitBreaker, len(vendors)),
		order:    append([]string(nil), vendors...),
	}
	for _, name := range vendors {
		set.breakers[name] = NewCircuitBreaker(BreakerConfig{
			Name:             name,
			FailureThreshold: threshold,
			Cooldown:         cooldown,
			OnStateChange:    onChange,
		})
	}
	return set
}

// Get returns the breaker for a vendor, or nil if unknown.
func (s *BreakerSet) Get(vendor string) *CircuitBreaker {
	return s.breakers[vendor]
}

// ResetAll returns every breaker to the closed state.
func (s *BreakerSet) ResetAll() {
	for _, cb := range s.breakers {
		cb.Reset()
	}
}

// Snapshots returns per-vendor breaker snapshots in registration order.
func (s *BreakerSet) Snapshots() []BreakerSnapshot {
	out := make([]BreakerSnapshot, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.breakers[name].Snapshot())
	}
	return out
}
