package weather

import (
	"context"
	"testing"
)

type stubSource struct {
	currentCalls  int
	forecastCalls int
}

func (s *stubSource) Current(ctx context.Context, city string) (Current, bool, error) {
	s.currentCalls++
	return Current{City: city}, true, nil
}

func (s *stubSource) Forecast(ctx context.Context, lat, lon float64) ([]ForecastDay, bool, error) {
	s.forecastCalls++
	return []ForecastDay{{Temperature: lat}}, true, nil
}

func TestRateLimitedForwards(t *testing.T) {
	stub := &stubSource{}
	limited := NewRateLimited(stub, 100, 5)

	cur, ok, err := limited.Current(context.Background(), "Pune")
	if err != nil || !ok || cur.City != "Pune" {
		t.Fatalf("Current = %+v, %v, %v", cur, ok, err)
	}
	days, ok, err := limited.Forecast(context.Background(), 3, 4)
	if err != nil || !ok || len(days) != 1 {
		t.Fatalf("Forecast = %+v, %v, %v", days, ok, err)
	}
	if stub.currentCalls != 1 || stub.forecastCalls != 1 {
		t.Fatalf("calls = %d, %d", stub.currentCalls, stub.forecastCalls)
	}
}

func TestRateLimitedHonoursCanceledContext(t *testing.T) {
	stub := &stubSource{}
	limited := NewRateLimited(stub, 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := limited.Current(ctx, "Pune"); err == nil {
		t.Fatal("expected error for canceled context")
	}
	if stub.currentCalls != 0 {
		t.Fatal("underlying source should not be called")
	}
}
