package models

// -----------------------------------------------------------------------------
// Trend support analysis results
// -----------------------------------------------------------------------------

// MTouch records one trading day whose low came close to MA10 or MA20.
type MTouch struct {
	Date          string  `json:"day"`
	MA            string  `json:"ma"` // "ma10" or "ma20"
	Deviation     float64 `json:"deviation"`
	ChangeRate    float64 `json:"rate"`
	NextDayRate   float64 `json:"next_rate"`
	HasNextDay    bool    `json:"has_next_day"`
	IsLargeVolume bool    `json:"is_large_volume"`
}

// MTrendSupport aggregates the MA10/MA20 support-touch scan for one symbol.
type MTrendSupport struct {
	Symbol       string   `json:"code"`
	BarsAnalyzed int      `json:"bars_analyzed"`
	NearMA10     []MTouch `json:"near_10"`
	NearMA20     []MTouch `json:"near_20"`
}

// TouchCount is the total number of near-MA days in the analyzed segment.
func (t *MTrendSupport) TouchCount() int {
	return len(t.NearMA10) + len(t.NearMA20)
}

// LargeVolumeCount counts touches confirmed by volume and a strong gain.
func (t *MTrendSupport) LargeVolumeCount() int {
	n := 0
	for _, touch := range t.NearMA10 {
		if touch.IsLargeVolume {
			n++
		}
	}
	for _, touch := range t.NearMA20 {
		if touch.IsLargeVolume {
			n++
		}
	}
	return n
}
