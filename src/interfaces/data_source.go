package interfaces

import (
	"context"
	"sync"

	"github.com/qymmdj/daily-stock-analysis/src/models"
)

// -----------------------------------------------------------------------------
// IDataSource interface for the polling collector built on top of the fetcher.
// -----------------------------------------------------------------------------

type IDataSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchInitialData retrieves the full intraday series for all symbols.
	FetchInitialData() (map[string]*models.MQuoteSeries, error)

	// -----------------------------------------------------------------------------

	// FetchUpdateData retrieves the current series for incremental updates.
	FetchUpdateData() (map[string]*models.MQuoteSeries, error)

	// -----------------------------------------------------------------------------

	// UpdateSymbols updates the list of symbols being monitored
	UpdateSymbols(symbols []string) error

	// -----------------------------------------------------------------------------

	// Start begins the polling loop.
	// ctx: controls the lifecycle (cancellation stops the source)
	// outputChan: channel new ticks are pushed to, keyed by symbol
	// wg: WaitGroup to signal when the source has fully stopped
	Start(ctx context.Context, outputChan chan<- map[string][]models.MTick, wg *sync.WaitGroup) error

	// -----------------------------------------------------------------------------

	// Stop terminates the polling loop (manual stop).
	Stop() error
}
