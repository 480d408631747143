package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	return NewCircuitBreaker(BreakerConfig{
		Name:             "vendor-test",
		FailureThreshold: threshold,
		Cooldown:         cooldown,
	})
}

func TestCircuitBreaker_StartsClosed(t *testing.T) {
	cb := newTestBreaker(3, time.Second)

	if cb.State() != StateClosed {
		t.Errorf("expected StateClosed, got %s", cb.State())
	}
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := newTestBreaker(3, time.Second)
	testErr := errors.New("vendor down")

	for i := 0; i < 2; i++ {
		_ = cb.Execute(func() error { return testErr })
	}
	if cb.State() != StateClosed {
		t.Fatalf("breaker opened early after 2 failures, state %s", cb.State())
	}

	_ = cb.Execute(func() error { return testErr })
	if cb.State() != StateOpen {
		t.Errorf("expected StateOpen after 3 failures, got %s", cb.State())
	}

	err := cb.Execute(func() error {
		t.Error("function should not run while open")
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := newTestBreaker(3, time.Second)
	testErr := errors.New("vendor down")

	_ = cb.Execute(func() error { return testErr })
	_ = cb.Execute(func() error { return testErr })
	_ = cb.Execute(func() error { return nil })
	_ = cb.Execute(func() error { return testErr })
	_ = cb.Execute(func() error { return testErr })

	if cb.State() != StateClosed {
		t.Errorf("intermittent failures must not open the circuit, state %s", cb.State())
	}
}

func TestCircuitBreaker_ProbeAfterCooldown(t *testing.T) {
	cb := newTestBreaker(1, 30*time.Millisecond)

	_ = cb.Execute(func() error { return errors.New("fail") })
	if cb.State() != StateOpen {
		t.Fatalf("expected StateOpen, got %s", cb.State())
	}

	if err := cb.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected rejection during cooldown, got %v", err)
	}

	time.Sleep(40 * time.Millisecond)

	if err := cb.Allow(); err != nil {
		t.Fatalf("expected probe admission after cooldown, got %v", err)
	}
	if cb.State() != StateHalfOpen {
		t.Errorf("expected StateHalfOpen, got %s", cb.State())
	}

	cb.RecordSuccess()
	if cb.State() != StateClosed {
		t.Errorf("probe success should close the circuit, got %s", cb.State())
	}
}

func TestCircuitBreaker_ProbeFailureReopens(t *testing.T) {
	cb := newTestBreaker(1, 20*time.Millisecond)

	_ = cb.Execute(func() error { return errors.New("fail") })
	time.Sleep(30 * time.Millisecond)

	if err := cb.Allow(); err != nil {
		t.Fatalf("expected probe admission, got %v", err)
	}
	cb.RecordFailure()

	if cb.State() != StateOpen {
		t.Errorf("probe failure should reopen the circuit, got %s", cb.State())
	}
	if err := cb.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected rejection after reopen, got %v", err)
	}
}

func TestCircuitBreaker_SingleProbeAcrossConcurrentCallers(t *testing.T) {
	cb := newTestBreaker(1, 10*time.Millisecond)

	_ = cb.Execute(func() error { return errors.New("fail") })
	time.Sleep(20 * time.Millisecond)

	var mu sync.Mutex
	admitted := 0
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := cb.Allow(); err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != 1 {
		t.Errorf("expected exactly one probe admission, got %d", admitted)
	}
}

func TestCircuitBreaker_ResetClosesAndClearsCount(t *testing.T) {
	cb := newTestBreaker(2, time.Minute)

	_ = cb.Execute(func() error { return errors.New("fail") })
	_ = cb.Execute(func() error { return errors.New("fail") })
	if cb.State() != StateOpen {
		t.Fatalf("expected StateOpen, got %s", cb.State())
	}

	cb.Reset()
	if cb.State() != StateClosed {
		t.Errorf("expected StateClosed after reset, got %s", cb.State())
	}
	if err := cb.Allow(); err != nil {
		t.Errorf("expected calls allowed after reset, got %v", err)
	}
}

func TestCircuitBreaker_OnStateChangeFires(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker(BreakerConfig{
		Name:             "vendor-test",
		FailureThreshold: 1,
		Cooldown:         time.Minute,
		OnStateChange: func(name string, from, to BreakerState) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	_ = cb.Execute(func() error { return errors.New("fail") })

	if len(transitions) != 1 || transitions[0] != "closed->open" {
		t.Errorf("unexpected transitions %v", transitions)
	}
}

func TestBreakerSet_IndependentVendors(t *testing.T) {
	set := NewBreakerSet([]string{"vendor-one", "vendor-two"}, 1, time.Minute, nil)

	_ = set.Get("vendor-one").Execute(func() error { return errors.New("fail") })

	if set.Get("vendor-one").State() != StateOpen {
		t.Errorf("vendor-one should be open")
	}
	if set.Get("vendor-two").State() != StateClosed {
		t.Errorf("vendor-two must be unaffected")
	}

	set.ResetAll()
	if set.Get("vendor-one").State() != StateClosed {
		t.Errorf("ResetAll should close every breaker")
	}

	snaps := set.Snapshots()
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snaps))
	}
	if snaps[0].Name != "vendor-one" || snaps[1].Name != "vendor-two" {
		t.Errorf("snapshots out of order: %v", snaps)
	}
}
