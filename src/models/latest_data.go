package models

// -----------------------------------------------------------------------------
// Server State Structure
// -----------------------------------------------------------------------------

type MLatestData struct {
	Type      string             `json:"type"` // "INITIAL" or "UPDATE"
	Ticks     map[string]MTick   `json:"ticks"`
	PreClose  map[string]float64 `json:"pre_close"`
	Timestamp int64              `json:"timestamp"`
	Metrics   MCollectMetrics    `json:"metrics"`
}

// MCollectMetrics describes one pass of the collector loop.
type MCollectMetrics struct {
	FetchTimeSeconds float64 `json:"fetch_time_seconds"`
	ValidSymbols     int     `json:"valid_symbols"`
	NewTicks         int     `json:"new_ticks"`
}
