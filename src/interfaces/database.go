package interfaces

import "github.com/qymmdj/daily-stock-analysis/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for storage operations.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveTicksBulk upserts a batch of intraday ticks, keyed by symbol.
	SaveTicksBulk(ticks map[string][]models.MTick) error

	// -----------------------------------------------------------------------------

	// SaveKlines upserts daily candles for one symbol.
	SaveKlines(symbol string, klines []models.MKline) error

	// -----------------------------------------------------------------------------

	// SaveLimitUpPool upserts the limit-up pool for a YYYY-MM-DD trading day.
	SaveLimitUpPool(date string, stocks []models.MLimitUpStock) error

	// -----------------------------------------------------------------------------

	// CleanupOldData removes data older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
