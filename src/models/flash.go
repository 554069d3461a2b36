package models

// -----------------------------------------------------------------------------
// Flash API payloads (pool/detail and surge_stock endpoints)
// -----------------------------------------------------------------------------

// MLimitUpStock is one entry of the daily limit-up pool. Field names follow
// the wire contract of /api/pool/detail; timestamps are epoch seconds.
type MLimitUpStock struct {
	Symbol              string        `json:"symbol"`
	Name                string        `json:"stock_chi_name"`
	IsNewStock          bool          `json:"is_new_stock"`
	ListedDate          int64         `json:"listed_date"`
	Price               float64       `json:"price"`
	PrevClosePrice      float64       `json:"prev_close_price"`
	ChangePercent       float64       `json:"change_percent"`
	BreakLimitUpTimes   int           `json:"break_limit_up_times"`
	LimitUpDays         int           `json:"limit_up_days"`
	FirstLimitUp        int64         `json:"first_limit_up"`
	LastLimitUp         int64         `json:"last_limit_up"`
	TotalCapital        float64       `json:"total_capital"`
	NonRestrictedCap    float64       `json:"non_restricted_capital"`
	TurnoverRatio       float64       `json:"turnover_ratio"`
	VolumeBiasRatio     float64       `json:"volume_bias_ratio"`
	MDaysNBoardsDays    int           `json:"m_days_n_boards_days"`
	MDaysNBoardsBoards  int           `json:"m_days_n_boards_boards"`
	SurgeReason         *MSurgeReason `json:"surge_reason,omitempty"`
}

// MSurgeReason explains why a stock hit the pool, with its related sectors.
type MSurgeReason struct {
	StockReason   string          `json:"stock_reason"`
	RelatedPlates []MRelatedPlate `json:"related_plates"`
}

type MRelatedPlate struct {
	PlateName   string `json:"plate_name"`
	PlateReason string `json:"plate_reason"`
}

// -----------------------------------------------------------------------------

// MSurgeSnapshot is the raw surge_stock listing. Rows are positional arrays
// whose layout the upstream does not document; index 6 is the session entry
// time and the only column the collector relies on.
type MSurgeSnapshot struct {
	Items     [][]any `json:"items"`
	FetchedAt int64   `json:"fetched_at"`
}
