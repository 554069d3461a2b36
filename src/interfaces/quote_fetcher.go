package interfaces

import "github.com/qymmdj/daily-stock-analysis/src/models"

// -----------------------------------------------------------------------------
// IQuoteFetcher is the single-shot client surface for the trend endpoint.
// Implementations carry no shared mutable state; use one per goroutine.
// -----------------------------------------------------------------------------

type IQuoteFetcher interface {

	// -----------------------------------------------------------------------------

	// FetchSeries retrieves the intraday series for one symbol.
	FetchSeries(symbol string) (*models.MQuoteSeries, error)

	// -----------------------------------------------------------------------------

	// LatestPrice returns the close of the most recent tick.
	LatestPrice(symbol string) (float64, error)

	// -----------------------------------------------------------------------------

	// PriceChange derives current price, change and change rate against the
	// previous close.
	PriceChange(symbol string) (*models.MPriceChange, error)

	// -----------------------------------------------------------------------------

	// TradingVolume returns the volume of the most recent tick.
	TradingVolume(symbol string) (int64, error)
}

// -----------------------------------------------------------------------------
// IKlineFetcher retrieves daily candles from the kline endpoint.
// -----------------------------------------------------------------------------

type IKlineFetcher interface {
	FetchKlines(symbol string, days int) ([]models.MKline, error)
}

// -----------------------------------------------------------------------------
// IFlashClient covers the flash-api pool and surge endpoints.
// -----------------------------------------------------------------------------

type IFlashClient interface {

	// LimitUpPool fetches the limit-up pool for a YYYY-MM-DD trading day.
	LimitUpPool(date string) ([]models.MLimitUpStock, error)

	// SurgeStocks fetches the current surge stock snapshot.
	SurgeStocks() (*models.MSurgeSnapshot, error)
}
