package shipping

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"topstore/internal/cache"
	"topstore/internal/circuitbreaker"
	"topstore/internal/config"
	apperrors "topstore/internal/errors"
	"topstore/internal/model"
)

func TestTariff(t *testing.T) {
	tests := []struct {
		name   string
		city   string
		weight float64
		want   [3]int
	}{
		{"moscow 2kg", "Moscow", 2, [3]int{560, 840, 1400}},
		{"minsk 1kg", "Minsk", 1, [3]int{450, 675, 1125}},
		{"cyrillic counts runes", "Москва", 2, [3]int{560, 840, 1400}},
		{"fractional price floored", "Omsk", 0.25, [3]int{365, 547, 912}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options := Tariff(tt.city, tt.weight)
			if len(options) != 3 {
				t.Fatalf("Expected 3 options, got %d", len(options))
			}
			for i, want := range tt.want {
				if options[i].Price != want {
					t.Errorf("Option %s: expected %d, got %d", options[i].ID, want, options[i].Price)
				}
			}
		})
	}
}

func TestTariff_OptionShape(t *testing.T) {
	options := Tariff("Kazan", 1)

	expected := []struct {
		id      string
		typ     model.DeliveryType
		minDays int
		maxDays int
	}{
		{"cdek-pvz", model.DeliveryPoint, 3, 5},
		{"cdek-courier", model.DeliveryCourier, 2, 4},
		{"cdek-super", model.DeliveryCourier, 1, 2},
	}
	for i, e := range expected {
		o := options[i]
		if o.ID != e.id || o.Type != e.typ || o.DaysMin != e.minDays || o.DaysMax != e.maxDays {
			t.Errorf("Unexpected option %d: %+v", i, o)
		}
	}
}

func TestCalculator_HonoursCancellation(t *testing.T) {
	calc := NewCalculator(config.ShippingConfig{SimulatedLatency: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := calc.Quote(ctx, "Moscow", 1)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Quote ignored context cancellation")
	}
}

func TestEligible(t *testing.T) {
	cfg := config.ShippingConfig{SupportedCountry: "Russia", MinCityLength: 3}

	tests := []struct {
		country string
		city    string
		want    bool
	}{
		{"Russia", "Moscow", true},
		{"Russia", "Ufa", true},
		{"russia", "Omsk", true},
		{"Russia", "Mo", false},
		{"Russia", "  Mo  ", false},
		{"Belarus", "Minsk", false},
		{"", "Moscow", false},
	}

	for _, tt := range tests {
		if got := Eligible(tt.country, tt.city, cfg); got != tt.want {
			t.Errorf("Eligible(%q, %q) = %v, want %v", tt.country, tt.city, got, tt.want)
		}
	}
}

// flakyQuoter падает первые failures раз
type flakyQuoter struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (q *flakyQuoter) Quote(ctx context.Context, city string, weight float64) ([]model.DeliveryOption, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls++
	if q.calls <= q.failures {
		return nil, errors.New("cdek unavailable")
	}
	return Tariff(city, weight), nil
}

func (q *flakyQuoter) Calls() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.calls
}

func testConfig() *config.Config {
	return &config.Config{
		Shipping: config.ShippingConfig{QuoteTimeout: time.Second},
		Retry: config.RetryConfig{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
			MaxDelay:     2 * time.Millisecond,
			Multiplier:   2,
		},
		CircuitBreaker: config.CircuitBreakerConfig{
			FailureThreshold: 3,
			SuccessThreshold: 1,
			Timeout:          time.Minute,
			MaxRequests:      1,
		},
	}
}

func TestResilient_RetriesTransientFailures(t *testing.T) {
	next := &flakyQuoter{failures: 2}
	r := NewResilient(next, testConfig(), nil, nil, nil)

	options, err := r.Quote(context.Background(), "Moscow", 2)
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if len(options) != 3 || next.Calls() != 3 {
		t.Errorf("Expected 3 options after 3 calls, got %d options, %d calls", len(options), next.Calls())
	}
}

func TestResilient_FailureIsQuoteError(t *testing.T) {
	next := &flakyQuoter{failures: 100}
	r := NewResilient(next, testConfig(), nil, nil, nil)

	_, err := r.Quote(context.Background(), "Moscow", 2)
	if !errors.Is(err, apperrors.ErrQuoteFailed) {
		t.Errorf("Expected ErrQuoteFailed, got %v", err)
	}
}

func TestResilient_BreakerStopsCalls(t *testing.T) {
	next := &flakyQuoter{failures: 100}
	r := NewResilient(next, testConfig(), nil, nil, nil)
	ctx := context.Background()

	_, _ = r.Quote(ctx, "Moscow", 2)
	if r.BreakerState() != circuitbreaker.StateOpen {
		t.Fatalf("Expected breaker OPEN after threshold failures, got %s", r.BreakerState())
	}

	calls := next.Calls()
	_, err := r.Quote(ctx, "Moscow", 2)
	if !errors.Is(err, circuitbreaker.ErrOpen) {
		t.Errorf("Expected ErrOpen in chain, got %v", err)
	}
	if next.Calls() != calls {
		t.Error("Quoter must not be called while breaker is OPEN")
	}
}

func TestResilient_UsesCache(t *testing.T) {
	next := &flakyQuoter{}
	quoteCache := cache.NewQuoteCache(10, time.Hour)
	defer quoteCache.Stop()
	r := NewResilient(next, testConfig(), quoteCache, nil, nil)
	ctx := context.Background()

	first, _ := r.Quote(ctx, "Moscow", 2)
	second, _ := r.Quote(ctx, "moscow", 2)

	if next.Calls() != 1 {
		t.Errorf("Expected one upstream call, got %d", next.Calls())
	}
	if second[0].Price != first[0].Price {
		t.Error("Cached options differ")
	}
}

func TestResilient_Timeout(t *testing.T) {
	cfg := testConfig()
	cfg.Shipping.QuoteTimeout = 20 * time.Millisecond
	slow := NewCalculator(config.ShippingConfig{SimulatedLatency: time.Second})
	r := NewResilient(slow, cfg, nil, nil, nil)

	start := time.Now()
	_, err := r.Quote(context.Background(), "Moscow", 2)
	if !errors.Is(err, apperrors.ErrQuoteFailed) {
		t.Errorf("Expected ErrQuoteFailed on timeout, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Quote timeout not applied")
	}
}
