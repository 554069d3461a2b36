package core

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// -----------------------------------------------------------------------------

func TestComputeChange(t *testing.T) {
	tests := []struct {
		name       string
		current    float64
		preClose   float64
		wantChange float64
		wantRate   float64
	}{
		{"down", 13.49, 13.52, -0.03, -0.03 / 13.52 * 100},
		{"up", 10.5, 10.0, 0.5, 5.0},
		{"flat", 10.0, 10.0, 0, 0},
		{"zero pre-close", 5.0, 0, 5.0, 0},
		{"negative drift", 0, 2.0, -2.0, -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, rate := ComputeChange(tt.current, tt.preClose)
			if !almostEqual(change, tt.wantChange) {
				t.Errorf("change = %v, want %v", change, tt.wantChange)
			}
			if !almostEqual(rate, tt.wantRate) {
				t.Errorf("rate = %v, want %v", rate, tt.wantRate)
			}
		})
	}
}

// -----------------------------------------------------------------------------

func TestIntradayGainPercent(t *testing.T) {
	if got := IntradayGainPercent(10.0, 10.5); !almostEqual(got, 5.0) {
		t.Errorf("gain = %v, want 5.0", got)
	}
	if got := IntradayGainPercent(0, 10.5); got != 0 {
		t.Errorf("zero open should yield 0, got %v", got)
	}
}

// -----------------------------------------------------------------------------

func TestDeviationPercent(t *testing.T) {
	if got := DeviationPercent(10.1, 10.0); !almostEqual(got, 1.0) {
		t.Errorf("deviation = %v, want 1.0", got)
	}
	if got := DeviationPercent(9.65, 10.0); !almostEqual(got, -3.5) {
		t.Errorf("deviation = %v, want -3.5", got)
	}
	if got := DeviationPercent(10.0, 0); got != 0 {
		t.Errorf("zero reference should yield 0, got %v", got)
	}
}
