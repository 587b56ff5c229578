package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"topstore/internal/config"
)

var errService = errors.New("service unavailable")

func newTestBreaker(clock *time.Time) *CircuitBreaker {
	cb := New("quotes", config.CircuitBreakerConfig{
		FailureThreshold: 2,
		SuccessThreshold: 2,
		Timeout:          time.Minute,
		MaxRequests:      1,
	})
	cb.now = func() time.Time { return *clock }
	return cb
}

func fail(ctx context.Context) error    { return errService }
func succeed(ctx context.Context) error { return nil }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	now := time.Now()
	cb := newTestBreaker(&now)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	if cb.State() != StateClosed {
		t.Fatalf("Expected CLOSED after one failure, got %s", cb.State())
	}
	_ = cb.Execute(ctx, fail)
	if cb.State() != StateOpen {
		t.Fatalf("Expected OPEN after threshold, got %s", cb.State())
	}

	called := false
	err := cb.Execute(ctx, func(ctx context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrOpen) {
		t.Errorf("Expected ErrOpen, got %v", err)
	}
	if called {
		t.Error("Function must not be called while OPEN")
	}
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	now := time.Now()
	cb := newTestBreaker(&now)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, succeed)
	_ = cb.Execute(ctx, fail)

	if cb.State() != StateClosed {
		t.Errorf("Non-consecutive failures should not open breaker, got %s", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	now := time.Now()
	cb := newTestBreaker(&now)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, fail)

	now = now.Add(time.Minute)
	if cb.State() != StateHalfOpen {
		t.Fatalf("Expected HALF_OPEN after timeout, got %s", cb.State())
	}

	if err := cb.Execute(ctx, succeed); err != nil {
		t.Fatalf("Probe request failed: %v", err)
	}
	if err := cb.Execute(ctx, succeed); err != nil {
		t.Fatalf("Second probe failed: %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("Expected CLOSED after successful probes, got %s", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	cb := newTestBreaker(&now)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, fail)
	now = now.Add(time.Minute)

	_ = cb.Execute(ctx, fail)
	if cb.State() != StateOpen {
		t.Errorf("Expected OPEN after failed probe, got %s", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenLimitsInFlight(t *testing.T) {
	now := time.Now()
	cb := newTestBreaker(&now)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, fail)
	now = now.Add(time.Minute)

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- cb.Execute(ctx, func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	if err := cb.Execute(ctx, succeed); !errors.Is(err, ErrOpen) {
		t.Errorf("Expected second concurrent probe to be rejected, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("First probe failed: %v", err)
	}
}

func TestCircuitBreaker_CancellationNotCounted(t *testing.T) {
	now := time.Now()
	cb := newTestBreaker(&now)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(ctx, func(ctx context.Context) error { return ctx.Err() })
	}
	if cb.State() != StateClosed {
		t.Errorf("Caller cancellations should not open breaker, got %s", cb.State())
	}
}

func TestCircuitBreaker_StateChangeCallback(t *testing.T) {
	now := time.Now()
	cb := newTestBreaker(&now)

	var transitions []string
	cb.OnStateChange(func(name string, from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	_ = cb.Execute(context.Background(), fail)
	_ = cb.Execute(context.Background(), fail)
	cb.Reset()

	want := []string{"CLOSED->OPEN", "OPEN->CLOSED"}
	if len(transitions) != len(want) {
		t.Fatalf("Expected %v, got %v", want, transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("Transition %d: expected %s, got %s", i, want[i], transitions[i])
		}
	}
}

func TestState_String(t *testing.T) {
	if StateHalfOpen.String() != "HALF_OPEN" || State(42).String() != "UNKNOWN" {
		t.Error("Unexpected state names")
	}
}
