package models

// MTick is one minute-by-minute observation of the intraday trend line.
// Immutable once parsed; the fetcher never hands out partially filled ticks.
type MTick struct {
	Timestamp  int64   `json:"timestamp"`
	Close      float64 `json:"close"`
	AvgPrice   float64 `json:"avg_price"`
	Volume     int64   `json:"volume"`
	Amount     int64   `json:"amount"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Change     float64 `json:"change"`
	ChangeRate float64 `json:"change_rate"`
}

// -----------------------------------------------------------------------------

// MQuoteSeries is the full intraday series for one symbol, chronological.
type MQuoteSeries struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	Ticks       []MTick `json:"ticks"`
	PreClose    float64 `json:"pre_close"`
	TotalPoints int     `json:"total_points"`
}

// Latest returns the most recent tick, or false when the series is empty.
func (s *MQuoteSeries) Latest() (MTick, bool) {
	if len(s.Ticks) == 0 {
		return MTick{}, false
	}
	return s.Ticks[len(s.Ticks)-1], true
}

// -----------------------------------------------------------------------------

// MPriceChange is the derived view over the last tick and the previous close.
type MPriceChange struct {
	CurrentPrice float64 `json:"current_price"`
	PreClose     float64 `json:"pre_close"`
	Change       float64 `json:"change"`
	ChangeRate   float64 `json:"change_rate"`
}
