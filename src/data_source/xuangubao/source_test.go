package xuangubao

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/qymmdj/daily-stock-analysis/src/helpers"
	"github.com/qymmdj/daily-stock-analysis/src/models"
)

// -----------------------------------------------------------------------------
// Test doubles
// -----------------------------------------------------------------------------

type stubFetcher struct {
	mu     sync.Mutex
	series map[string]*models.MQuoteSeries
	calls  map[string]int
}

func (f *stubFetcher) FetchSeries(symbol string) (*models.MQuoteSeries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[symbol]++

	s, ok := f.series[symbol]
	if !ok {
		return nil, helpers.NewNotFoundError(symbol)
	}
	return s, nil
}

func (f *stubFetcher) LatestPrice(symbol string) (float64, error) {
	s, err := f.FetchSeries(symbol)
	if err != nil {
		return 0, err
	}
	latest, _ := s.Latest()
	return latest.Close, nil
}

func (f *stubFetcher) PriceChange(symbol string) (*models.MPriceChange, error) {
	return nil, helpers.NewNotFoundError(symbol)
}

func (f *stubFetcher) TradingVolume(symbol string) (int64, error) {
	return 0, helpers.NewNotFoundError(symbol)
}

func (f *stubFetcher) callCount(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[symbol]
}

func seriesWith(symbol string, timestamps ...int64) *models.MQuoteSeries {
	ticks := make([]models.MTick, len(timestamps))
	for i, ts := range timestamps {
		ticks[i] = models.MTick{Timestamp: ts, Close: 10.0, Volume: 100}
	}
	return &models.MQuoteSeries{
		Symbol:      symbol,
		Name:        symbol,
		Ticks:       ticks,
		PreClose:    10.0,
		TotalPoints: len(ticks),
	}
}

func sourceConfig(symbols ...string) *models.MConfig {
	return &models.MConfig{
		Name: "test",
		Network: models.MNetworkConfig{
			RequestTimeout:     5,
			ConcurrentRequests: 2,
		},
		DataSource: models.MDataSourceConfig{
			Symbols:               symbols,
			UpdateIntervalSeconds: 1,
			DataRetentionDays:     7,
		},
	}
}

// -----------------------------------------------------------------------------

func TestFetchInitialData(t *testing.T) {
	fetcher := &stubFetcher{series: map[string]*models.MQuoteSeries{
		"000001.SS": seriesWith("000001.SS", 1700000100, 1700000160),
		"300750.SZ": seriesWith("300750.SZ", 1700000100),
	}}
	source := NewTrendSource(sourceConfig("000001.SS", "300750.SZ"), fetcher)

	data, err := source.FetchInitialData()
	if err != nil {
		t.Fatalf("FetchInitialData failed: %v", err)
	}

	if len(data) != 2 {
		t.Fatalf("got %d series, want 2", len(data))
	}
	if len(data["000001.SS"].Ticks) != 2 {
		t.Errorf("000001.SS ticks = %d", len(data["000001.SS"].Ticks))
	}

	// Last-seen timestamps are primed from the latest tick.
	source.lastTimestampsMu.RLock()
	defer source.lastTimestampsMu.RUnlock()
	if source.LastTimestamps["000001.SS"] != 1700000160 {
		t.Errorf("last timestamp = %d", source.LastTimestamps["000001.SS"])
	}
}

// -----------------------------------------------------------------------------

func TestFetchBatchPartialFailure(t *testing.T) {
	// One symbol resolves, the other 404s; the batch keeps the good one.
	fetcher := &stubFetcher{series: map[string]*models.MQuoteSeries{
		"000001.SS": seriesWith("000001.SS", 1700000100),
	}}
	source := NewTrendSource(sourceConfig("000001.SS", "999999.SZ"), fetcher)

	data, err := source.FetchUpdateData()
	if err != nil {
		t.Fatalf("partial failure should not error: %v", err)
	}
	if len(data) != 1 {
		t.Fatalf("got %d series, want 1", len(data))
	}
	if _, ok := data["999999.SZ"]; ok {
		t.Error("failed symbol should be absent")
	}
}

// -----------------------------------------------------------------------------

func TestFetchBatchAllFailed(t *testing.T) {
	fetcher := &stubFetcher{series: map[string]*models.MQuoteSeries{}}
	source := NewTrendSource(sourceConfig("A", "B"), fetcher)

	if _, err := source.FetchUpdateData(); err == nil {
		t.Fatal("expected error when every fetch fails")
	}
}

// -----------------------------------------------------------------------------

func TestUpdateSymbols(t *testing.T) {
	fetcher := &stubFetcher{series: map[string]*models.MQuoteSeries{
		"000001.SS": seriesWith("000001.SS", 1700000100),
		"600000.SS": seriesWith("600000.SS", 1700000100),
	}}
	source := NewTrendSource(sourceConfig("000001.SS"), fetcher)

	if err := source.UpdateSymbols([]string{"600000.SS"}); err != nil {
		t.Fatalf("UpdateSymbols failed: %v", err)
	}

	if _, err := source.FetchUpdateData(); err != nil {
		t.Fatalf("FetchUpdateData failed: %v", err)
	}
	if fetcher.callCount("600000.SS") != 1 {
		t.Errorf("new symbol fetched %d times, want 1", fetcher.callCount("600000.SS"))
	}
	if fetcher.callCount("000001.SS") != 0 {
		t.Errorf("replaced symbol still fetched %d times", fetcher.callCount("000001.SS"))
	}
}

// -----------------------------------------------------------------------------

func TestStartStopLifecycle(t *testing.T) {
	fetcher := &stubFetcher{series: map[string]*models.MQuoteSeries{
		"000001.SS": seriesWith("000001.SS", 1700000100),
	}}
	source := NewTrendSource(sourceConfig("000001.SS"), fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wg := &sync.WaitGroup{}
	out := make(chan map[string][]models.MTick, 10)

	if err := source.Start(ctx, out, wg); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := source.Start(ctx, out, wg); err == nil {
		t.Error("second Start should fail while running")
	}

	if err := source.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := source.Stop(); err == nil {
		t.Error("second Stop should fail when not running")
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("run loop did not exit after Stop")
	}
}
