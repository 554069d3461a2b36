package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/qymmdj/daily-stock-analysis/src/helpers"
	"github.com/qymmdj/daily-stock-analysis/src/logger"
	"github.com/qymmdj/daily-stock-analysis/src/models"
	"github.com/qymmdj/daily-stock-analysis/src/utils"
)

// -----------------------------------------------------------------------------
// Test doubles
// -----------------------------------------------------------------------------

type stubQuotes struct {
	series map[string]*models.MQuoteSeries
}

func (s *stubQuotes) FetchSeries(symbol string) (*models.MQuoteSeries, error) {
	q, ok := s.series[symbol]
	if !ok {
		return nil, helpers.NewNotFoundError(symbol)
	}
	return q, nil
}

func (s *stubQuotes) LatestPrice(symbol string) (float64, error) {
	q, err := s.FetchSeries(symbol)
	if err != nil {
		return 0, err
	}
	latest, _ := q.Latest()
	return latest.Close, nil
}

func (s *stubQuotes) PriceChange(symbol string) (*models.MPriceChange, error) {
	q, err := s.FetchSeries(symbol)
	if err != nil {
		return nil, err
	}
	latest, _ := q.Latest()
	return &models.MPriceChange{
		CurrentPrice: latest.Close,
		PreClose:     q.PreClose,
		Change:       latest.Close - q.PreClose,
	}, nil
}

func (s *stubQuotes) TradingVolume(symbol string) (int64, error) {
	q, err := s.FetchSeries(symbol)
	if err != nil {
		return 0, err
	}
	latest, _ := q.Latest()
	return latest.Volume, nil
}

type stubKlines struct {
	klines []models.MKline
	err    error
}

func (s *stubKlines) FetchKlines(symbol string, days int) ([]models.MKline, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.klines, nil
}

type stubFlash struct {
	pool []models.MLimitUpStock
}

func (s *stubFlash) LimitUpPool(date string) ([]models.MLimitUpStock, error) {
	return s.pool, nil
}

func (s *stubFlash) SurgeStocks() (*models.MSurgeSnapshot, error) {
	return &models.MSurgeSnapshot{FetchedAt: 1}, nil
}

type stubAnalyzer struct{}

func (s *stubAnalyzer) AnalyzeTrendSupport(symbol string, klines []models.MKline) (*models.MTrendSupport, error) {
	return &models.MTrendSupport{Symbol: symbol, BarsAnalyzed: len(klines)}, nil
}

// -----------------------------------------------------------------------------

func testServer() *APIServer {
	cfg := &models.MConfig{
		Name:     "test",
		Host:     "127.0.0.1",
		Port:     8900,
		LogLevel: "ERROR",
		DataSource: models.MDataSourceConfig{
			Symbols:               []string{"000001.SS"},
			UpdateIntervalSeconds: 60,
		},
	}

	quotes := &stubQuotes{series: map[string]*models.MQuoteSeries{
		"000001.SS": {
			Symbol:   "000001.SS",
			Name:     "000001.SS",
			PreClose: 13.52,
			Ticks: []models.MTick{
				{Timestamp: 1700000100, Close: 13.50, Volume: 900},
				{Timestamp: 1700000160, Close: 13.49, Volume: 800},
			},
			TotalPoints: 2,
		},
	}}

	klines := &stubKlines{klines: []models.MKline{
		{Timestamp: 1755475200, Close: 178.1},
		{Timestamp: 1755561600, Close: 180.5},
	}}

	cache := utils.NewTickCache(10)
	cache.AddSeries("000001.SS", quotes.series["000001.SS"].Ticks)

	return NewAPIServer(cfg, logger.NewLogger(cfg, "test"), quotes, klines, &stubFlash{}, &stubAnalyzer{}, cache)
}

func doGet(t *testing.T, s *APIServer, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// -----------------------------------------------------------------------------

func TestGetPrice(t *testing.T) {
	w := doGet(t, testServer(), "/api/price/000001.SS")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Price != 13.49 {
		t.Errorf("price = %v", resp.Price)
	}
}

// -----------------------------------------------------------------------------

func TestGetQuoteUnknownSymbolIs404(t *testing.T) {
	w := doGet(t, testServer(), "/api/quote/999999.SZ")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// -----------------------------------------------------------------------------

func TestGetChange(t *testing.T) {
	w := doGet(t, testServer(), "/api/change/000001.SS")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var change models.MPriceChange
	if err := json.Unmarshal(w.Body.Bytes(), &change); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if change.PreClose != 13.52 || change.CurrentPrice != 13.49 {
		t.Errorf("change = %+v", change)
	}
}

// -----------------------------------------------------------------------------

func TestGetKlinesInvalidDaysIs400(t *testing.T) {
	w := doGet(t, testServer(), "/api/klines/000001.SS?days=zero")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// -----------------------------------------------------------------------------

func TestGetKlinesUpstreamFailureIs502(t *testing.T) {
	s := testServer()
	s.Klines = &stubKlines{err: helpers.NewAPIError(50000, "internal error")}

	w := doGet(t, s, "/api/klines/000001.SS")
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

// -----------------------------------------------------------------------------

func TestGetTrendSupport(t *testing.T) {
	w := doGet(t, testServer(), "/api/trend/300750.SZ")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var result models.MTrendSupport
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if result.BarsAnalyzed != 2 {
		t.Errorf("BarsAnalyzed = %d", result.BarsAnalyzed)
	}
}

// -----------------------------------------------------------------------------

func TestGetRecentServedFromCache(t *testing.T) {
	w := doGet(t, testServer(), "/api/recent/000001.SS?n=1")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Ticks []models.MTick `json:"ticks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(resp.Ticks) != 1 || resp.Ticks[0].Timestamp != 1700000160 {
		t.Errorf("ticks = %+v", resp.Ticks)
	}
}

// -----------------------------------------------------------------------------

func TestGetHealth(t *testing.T) {
	s := testServer()
	s.SetLatest(&models.MLatestData{Type: "UPDATE", Timestamp: 1756345800})

	w := doGet(t, s, "/api/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Status       string `json:"status"`
		LatestUpdate int64  `json:"latest_update"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Status != "ok" || resp.LatestUpdate != 1756345800 {
		t.Errorf("health = %+v", resp)
	}
}

// -----------------------------------------------------------------------------

func TestGetLimitUp(t *testing.T) {
	s := testServer()
	s.Flash = &stubFlash{pool: []models.MLimitUpStock{{Symbol: "600519.SS"}}}

	w := doGet(t, s, "/api/limitup?date=2026-08-27")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("count = %d", resp.Count)
	}
}
