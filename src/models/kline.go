package models

import "time"

// MKline is one daily candle from the kline endpoint (forward adjusted).
// The MA columns come straight from the API; zero means the field was not
// present in the requested field list.
type MKline struct {
	Timestamp     int64   `json:"timestamp"`
	Open          float64 `json:"open"`
	Close         float64 `json:"close"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Volume        int64   `json:"volume"`
	Value         float64 `json:"value"`
	TurnoverRatio float64 `json:"turnover_ratio"`
	AvgPrice      float64 `json:"avg_price"`
	Change        float64 `json:"change"`
	ChangeRate    float64 `json:"change_rate"`
	MA5           float64 `json:"ma5"`
	MA10          float64 `json:"ma10"`
	MA20          float64 `json:"ma20"`
	MA60          float64 `json:"ma60"`
}

// Date renders the candle timestamp as a YYYY-MM-DD trading day.
func (k *MKline) Date() string {
	return time.Unix(k.Timestamp, 0).Format("2006-01-02")
}
