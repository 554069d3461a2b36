package xuangubao

import (
	"sort"
	"strconv"
	"strings"

	"github.com/qymmdj/daily-stock-analysis/src/helpers"
	"github.com/qymmdj/daily-stock-analysis/src/interfaces"
	"github.com/qymmdj/daily-stock-analysis/src/logger"
	"github.com/qymmdj/daily-stock-analysis/src/models"
)

const (
	defaultKlineURL = "https://api-ddc-wscn.xuangubao.com.cn/market/kline"

	// period_type for daily candles, in seconds
	dailyPeriod = 86400
)

// DefaultKlineFields is the daily candle field list, moving averages included.
var DefaultKlineFields = []string{
	"tick_at",
	"open_px",
	"close_px",
	"high_px",
	"low_px",
	"turnover_volume",
	"turnover_value",
	"turnover_ratio",
	"average_px",
	"px_change",
	"px_change_rate",
	"ma5",
	"ma10",
	"ma20",
	"ma60",
}

// -----------------------------------------------------------------------------

// KlineFetcher retrieves forward-adjusted daily candles.
type KlineFetcher struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
	Fields  []string
}

// -----------------------------------------------------------------------------

func NewKlineFetcher(cfg *models.MConfig, netMgr interfaces.INetworkManager) *KlineFetcher {
	return &KlineFetcher{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger(nil, "KlineFetcher"),
		Fields:  DefaultKlineFields,
	}
}

// -----------------------------------------------------------------------------

func (f *KlineFetcher) endpoint() string {
	if f.Config != nil && f.Config.DataSource.KlineURL != "" {
		return f.Config.DataSource.KlineURL
	}
	return defaultKlineURL
}

// -----------------------------------------------------------------------------

// FetchKlines retrieves up to days daily candles for one symbol, oldest first.
func (f *KlineFetcher) FetchKlines(symbol string, days int) ([]models.MKline, error) {
	if symbol == "" {
		return nil, &helpers.StockDataError{Message: "symbol cannot be empty"}
	}
	if days <= 0 {
		days = 180
	}

	params := map[string]string{
		"prod_code":         symbol,
		"tick_count":        strconv.Itoa(days),
		"adjust_price_type": "forward",
		"period_type":       strconv.Itoa(dailyPeriod),
		"fields":            strings.Join(f.Fields, ","),
	}

	body, err := f.Network.Get(f.endpoint(), params)
	if err != nil {
		return nil, helpers.NewNetworkError("kline request failed for "+symbol, err)
	}

	block, fieldIndex, err := parseCandleEnvelope(body, symbol)
	if err != nil {
		return nil, err
	}

	klines := make([]models.MKline, 0, len(block.Lines))
	for i, line := range block.Lines {
		k, ok := klineFromLine(line, fieldIndex)
		if !ok {
			f.Logger.Debug("Skipping malformed kline %d for %s", i, symbol)
			continue
		}
		klines = append(klines, k)
	}

	if len(klines) == 0 {
		return nil, helpers.NewParseError("no valid klines for "+symbol, nil)
	}

	sort.Slice(klines, func(i, j int) bool {
		return klines[i].Timestamp < klines[j].Timestamp
	})

	return klines, nil
}

// -----------------------------------------------------------------------------

// klineFromLine maps one positional row to a candle. OHLC and timestamp are
// required; turnover and MA columns stay zero when absent from the response.
// Millisecond timestamps are normalized to seconds.
func klineFromLine(line []*float64, fieldIndex map[string]int) (models.MKline, bool) {
	ts, ok := lineValue(line, fieldIndex, "tick_at")
	if !ok {
		return models.MKline{}, false
	}
	if ts > 1e10 {
		ts /= 1000
	}

	openPx, okOpen := lineValue(line, fieldIndex, "open_px")
	closePx, okClose := lineValue(line, fieldIndex, "close_px")
	highPx, okHigh := lineValue(line, fieldIndex, "high_px")
	lowPx, okLow := lineValue(line, fieldIndex, "low_px")
	if !okOpen || !okClose || !okHigh || !okLow {
		return models.MKline{}, false
	}

	k := models.MKline{
		Timestamp: int64(ts),
		Open:      openPx,
		Close:     closePx,
		High:      highPx,
		Low:       lowPx,
	}

	if v, ok := lineValue(line, fieldIndex, "turnover_volume"); ok {
		k.Volume = int64(v)
	}
	if v, ok := lineValue(line, fieldIndex, "turnover_value"); ok {
		k.Value = v
	}
	if v, ok := lineValue(line, fieldIndex, "turnover_ratio"); ok {
		k.TurnoverRatio = v
	}
	if v, ok := lineValue(line, fieldIndex, "average_px"); ok {
		k.AvgPrice = v
	}
	if v, ok := lineValue(line, fieldIndex, "px_change"); ok {
		k.Change = v
	}
	if v, ok := lineValue(line, fieldIndex, "px_change_rate"); ok {
		k.ChangeRate = v
	}
	if v, ok := lineValue(line, fieldIndex, "ma5"); ok {
		k.MA5 = v
	}
	if v, ok := lineValue(line, fieldIndex, "ma10"); ok {
		k.MA10 = v
	}
	if v, ok := lineValue(line, fieldIndex, "ma20"); ok {
		k.MA20 = v
	}
	if v, ok := lineValue(line, fieldIndex, "ma60"); ok {
		k.MA60 = v
	}

	return k, true
}
