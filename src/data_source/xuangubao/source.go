package xuangubao

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/qymmdj/daily-stock-analysis/src/interfaces"
	"github.com/qymmdj/daily-stock-analysis/src/logger"
	"github.com/qymmdj/daily-stock-analysis/src/models"
	"github.com/qymmdj/daily-stock-analysis/src/utils"
)

// -----------------------------------------------------------------------------
// TrendSource wraps the single-shot QuoteFetcher into a polling collector.
// The fetcher itself stays synchronous; the concurrency lives here.
// -----------------------------------------------------------------------------

type TrendSource struct {
	Config           *models.MConfig
	Fetcher          interfaces.IQuoteFetcher
	Logger           *logger.Logger
	MarketScheduler  *utils.MarketScheduler
	symbols          atomic.Value // stores []string
	LastTimestamps   map[string]int64
	lastTimestampsMu sync.RWMutex
	cancelFunc       context.CancelFunc
	ctx              context.Context
	outputChan       chan<- map[string][]models.MTick
	isRunning        atomic.Bool
	mu               sync.Mutex
}

// -----------------------------------------------------------------------------

func NewTrendSource(cfg *models.MConfig, fetcher interfaces.IQuoteFetcher) *TrendSource {
	s := &TrendSource{
		Config:          cfg,
		Fetcher:         fetcher,
		Logger:          logger.NewLogger(nil, "TrendSource"),
		LastTimestamps:  make(map[string]int64),
		MarketScheduler: utils.NewMarketScheduler(cfg.DataSource.Symbols, logger.NewLogger(nil, "MarketScheduler")),
	}
	s.symbols.Store(cfg.DataSource.Symbols)
	return s
}

// -----------------------------------------------------------------------------

func (s *TrendSource) Name() string {
	return "xuangubao-trend"
}

// -----------------------------------------------------------------------------

// FetchInitialData fetches the full intraday series for every symbol and
// primes the last-seen timestamps.
func (s *TrendSource) FetchInitialData() (map[string]*models.MQuoteSeries, error) {
	data, err := s.fetchBatch(s.getSymbols())
	if err != nil {
		return nil, err
	}

	for symbol, series := range data {
		if latest, ok := series.Latest(); ok {
			s.lastTimestampsMu.Lock()
			s.LastTimestamps[symbol] = latest.Timestamp
			s.lastTimestampsMu.Unlock()
		}
	}

	return data, nil
}

// -----------------------------------------------------------------------------

// FetchUpdateData re-fetches the current series; deduplication against the
// last-seen timestamps happens in the run loop.
func (s *TrendSource) FetchUpdateData() (map[string]*models.MQuoteSeries, error) {
	return s.fetchBatch(s.getSymbols())
}

// -----------------------------------------------------------------------------

// fetchBatch processes symbols concurrently, bounded by the configured
// concurrent request limit.
func (s *TrendSource) fetchBatch(symbols []string) (map[string]*models.MQuoteSeries, error) {
	if len(symbols) == 0 {
		return make(map[string]*models.MQuoteSeries), nil
	}

	results := make(map[string]*models.MQuoteSeries)
	var mu sync.Mutex
	var wg sync.WaitGroup
	errors := make([]error, 0, len(symbols))
	var errorsMu sync.Mutex

	limit := s.Config.Network.ConcurrentRequests
	if limit <= 0 {
		limit = 1
	}
	sem := make(chan struct{}, limit)

	for _, symbol := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			// Small delay so bursts do not hammer the endpoint
			time.Sleep(10 * time.Millisecond)

			series, err := s.Fetcher.FetchSeries(sym)
			if err != nil {
				s.Logger.Info("Error fetching symbol %s: %v", sym, err)
				errorsMu.Lock()
				errors = append(errors, err)
				errorsMu.Unlock()
				return
			}

			mu.Lock()
			results[sym] = series
			mu.Unlock()
		}(symbol)
	}

	wg.Wait()

	s.Logger.Info("Trend: Fetched %d/%d symbols successfully", len(results), len(symbols))

	if len(results) == 0 && len(errors) > 0 {
		return nil, fmt.Errorf("all fetches failed: %v", errors[0])
	}

	return results, nil
}

// -----------------------------------------------------------------------------

// Start begins the polling loop
func (s *TrendSource) Start(parentCtx context.Context, outputChan chan<- map[string][]models.MTick, wg *sync.WaitGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning.Load() {
		return fmt.Errorf("source %s is already running", s.Name())
	}

	ctx, cancel := context.WithCancel(parentCtx)
	s.cancelFunc = cancel
	s.ctx = ctx
	s.outputChan = outputChan
	s.isRunning.Store(true)

	wg.Add(1)
	go s.runLoop(ctx, wg)
	s.Logger.Info("Started TrendSource: %s", s.Name())
	return nil
}

// -----------------------------------------------------------------------------

// Stop signals the run loop to exit
func (s *TrendSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning.Load() {
		return fmt.Errorf("source %s is not running", s.Name())
	}

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning.Store(false)
	s.Logger.Info("Stopped TrendSource: %s", s.Name())
	return nil
}

// -----------------------------------------------------------------------------

// push sends new ticks to the collector loop, honoring cancellation.
func (s *TrendSource) push(data map[string][]models.MTick) error {
	if s.outputChan == nil {
		return fmt.Errorf("output channel is nil")
	}

	select {
	case s.outputChan <- data:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

// -----------------------------------------------------------------------------

// runLoop polls the trend endpoint on the configured interval. Only ticks
// newer than the last pushed timestamp per symbol go out.
func (s *TrendSource) runLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(time.Duration(s.Config.DataSource.UpdateIntervalSeconds) * time.Second)
	defer ticker.Stop()

	// This goroutine is the only writer while running; work on a local copy
	// and sync back on exit so a restart picks up where we left off.
	localTimestamps := make(map[string]int64)

	s.lastTimestampsMu.RLock()
	for k, v := range s.LastTimestamps {
		localTimestamps[k] = v
	}
	s.lastTimestampsMu.RUnlock()

	defer func() {
		s.lastTimestampsMu.Lock()
		for k, v := range localTimestamps {
			if v > s.LastTimestamps[k] {
				s.LastTimestamps[k] = v
			}
		}
		s.lastTimestampsMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.MarketScheduler.AnyMarketOpen() {
				s.Logger.Info("All markets are closed. Pausing for 30 minutes...")
				select {
				case <-time.After(30 * time.Minute):
				case <-ctx.Done():
					return
				}
				continue
			}

			data, err := s.FetchUpdateData()
			if err != nil {
				s.Logger.Info("Error fetching updates: %v", err)
				continue
			}

			fresh := make(map[string][]models.MTick)
			for symbol, series := range data {
				lastTs := localTimestamps[symbol]

				var newTicks []models.MTick
				for _, t := range series.Ticks {
					if lastTs == 0 || t.Timestamp > lastTs {
						newTicks = append(newTicks, t)
					}
				}

				if len(newTicks) > 0 {
					fresh[symbol] = newTicks

					lastT := newTicks[len(newTicks)-1]
					if lastT.Timestamp > localTimestamps[symbol] {
						localTimestamps[symbol] = lastT.Timestamp
					}
				}
			}

			if len(fresh) > 0 {
				if err := s.push(fresh); err != nil {
					return
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------

func (s *TrendSource) UpdateSymbols(symbols []string) error {
	s.symbols.Store(symbols)
	s.Logger.Info("Updated symbol list. New count: %d", len(symbols))

	s.MarketScheduler.UpdateSymbols(symbols)

	return nil
}

// -----------------------------------------------------------------------------

func (s *TrendSource) getSymbols() []string {
	return s.symbols.Load().([]string)
}
