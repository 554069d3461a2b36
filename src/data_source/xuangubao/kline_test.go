package xuangubao

import (
	"testing"

	"github.com/qymmdj/daily-stock-analysis/src/models"
)

const klineBody = `{
	"code": 20000,
	"data": {
		"fields": ["tick_at", "open_px", "close_px", "high_px", "low_px", "turnover_volume", "ma10", "ma20"],
		"candle": {
			"300750.SZ": {
				"lines": [
					[1755561600000, 178.0, 180.5, 181.2, 177.6, 12000000, 176.4, 172.1],
					[1755475200000, 176.2, 178.1, 179.0, 175.8, 11000000, 175.9, 171.6]
				],
				"pre_close_px": 178.1,
				"total": 2
			}
		}
	}
}`

func newTestKlineFetcher(body string) (*KlineFetcher, *fakeNetwork) {
	net := &fakeNetwork{body: []byte(body)}
	return NewKlineFetcher(&models.MConfig{}, net), net
}

// -----------------------------------------------------------------------------

func TestFetchKlines(t *testing.T) {
	fetcher, net := newTestKlineFetcher(klineBody)

	klines, err := fetcher.FetchKlines("300750.SZ", 120)
	if err != nil {
		t.Fatalf("FetchKlines failed: %v", err)
	}

	if net.lastParams["tick_count"] != "120" {
		t.Errorf("tick_count = %q, want 120", net.lastParams["tick_count"])
	}
	if net.lastParams["adjust_price_type"] != "forward" {
		t.Errorf("adjust_price_type = %q", net.lastParams["adjust_price_type"])
	}
	if net.lastParams["period_type"] != "86400" {
		t.Errorf("period_type = %q", net.lastParams["period_type"])
	}

	if len(klines) != 2 {
		t.Fatalf("got %d klines, want 2", len(klines))
	}

	// Oldest first, millisecond timestamps normalized to seconds.
	if klines[0].Timestamp != 1755475200 {
		t.Errorf("first timestamp = %d, want 1755475200", klines[0].Timestamp)
	}
	if klines[1].Timestamp != 1755561600 {
		t.Errorf("second timestamp = %d, want 1755561600", klines[1].Timestamp)
	}

	last := klines[1]
	if !almostEqual(last.Close, 180.5) {
		t.Errorf("close = %v", last.Close)
	}
	if last.Volume != 12000000 {
		t.Errorf("volume = %d", last.Volume)
	}
	if !almostEqual(last.MA10, 176.4) || !almostEqual(last.MA20, 172.1) {
		t.Errorf("MA10/MA20 = %v/%v", last.MA10, last.MA20)
	}
}

// -----------------------------------------------------------------------------

func TestFetchKlinesDefaultDays(t *testing.T) {
	fetcher, net := newTestKlineFetcher(klineBody)

	if _, err := fetcher.FetchKlines("300750.SZ", 0); err != nil {
		t.Fatalf("FetchKlines failed: %v", err)
	}
	if net.lastParams["tick_count"] != "180" {
		t.Errorf("tick_count = %q, want default 180", net.lastParams["tick_count"])
	}
}

// -----------------------------------------------------------------------------

func TestFetchKlinesDropsIncompleteRows(t *testing.T) {
	body := `{
		"code": 20000,
		"data": {
			"fields": ["tick_at", "open_px", "close_px", "high_px", "low_px"],
			"candle": {
				"X": {
					"lines": [
						[1700000000, 1.0, 1.1, 1.2, 0.9],
						[1700086400, 1.1, null, 1.3, 1.0]
					],
					"pre_close_px": 1.0,
					"total": 2
				}
			}
		}
	}`
	fetcher, _ := newTestKlineFetcher(body)

	klines, err := fetcher.FetchKlines("X", 10)
	if err != nil {
		t.Fatalf("FetchKlines failed: %v", err)
	}
	if len(klines) != 1 {
		t.Fatalf("got %d klines, want 1 (row without close dropped)", len(klines))
	}
}

// -----------------------------------------------------------------------------

func TestFetchKlinesEmptySymbol(t *testing.T) {
	fetcher, net := newTestKlineFetcher(klineBody)

	if _, err := fetcher.FetchKlines("", 10); err == nil {
		t.Fatal("expected error for empty symbol")
	}
	if net.calls != 0 {
		t.Error("network should not be hit for an empty symbol")
	}
}
