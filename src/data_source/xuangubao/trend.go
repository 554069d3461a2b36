package xuangubao

import (
	"sort"
	"strings"

	"github.com/qymmdj/daily-stock-analysis/src/analysis/core"
	"github.com/qymmdj/daily-stock-analysis/src/helpers"
	"github.com/qymmdj/daily-stock-analysis/src/interfaces"
	"github.com/qymmdj/daily-stock-analysis/src/logger"
	"github.com/qymmdj/daily-stock-analysis/src/models"
)

const defaultTrendURL = "https://api-ddc-wscn.xuangubao.com.cn/market/trend"

// DefaultTrendFields is the full intraday field list of the trend endpoint.
var DefaultTrendFields = []string{
	"tick_at",
	"close_px",
	"avg_px",
	"turnover_volume",
	"turnover_value",
	"open_px",
	"high_px",
	"low_px",
	"px_change",
	"px_change_rate",
}

// -----------------------------------------------------------------------------

// QuoteFetcher is the single-shot client for the intraday trend endpoint.
// It keeps no state across calls beyond the reusable HTTP transport, so
// concurrent callers should each own their instance.
type QuoteFetcher struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
	Fields  []string
}

// -----------------------------------------------------------------------------

func NewQuoteFetcher(cfg *models.MConfig, netMgr interfaces.INetworkManager) *QuoteFetcher {
	return &QuoteFetcher{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger(nil, "QuoteFetcher"),
		Fields:  DefaultTrendFields,
	}
}

// -----------------------------------------------------------------------------

func (f *QuoteFetcher) endpoint() string {
	if f.Config != nil && f.Config.DataSource.TrendURL != "" {
		return f.Config.DataSource.TrendURL
	}
	return defaultTrendURL
}

// -----------------------------------------------------------------------------

// FetchSeries retrieves and parses the intraday series for one symbol.
func (f *QuoteFetcher) FetchSeries(symbol string) (*models.MQuoteSeries, error) {
	if symbol == "" {
		return nil, &helpers.StockDataError{Message: "symbol cannot be empty"}
	}

	params := map[string]string{
		"prod_code": symbol,
		"fields":    strings.Join(f.Fields, ","),
	}

	body, err := f.Network.Get(f.endpoint(), params)
	if err != nil {
		return nil, helpers.NewNetworkError("trend request failed for "+symbol, err)
	}

	block, fieldIndex, err := parseCandleEnvelope(body, symbol)
	if err != nil {
		return nil, err
	}

	ticks := make([]models.MTick, 0, len(block.Lines))
	for i, line := range block.Lines {
		tick, ok := f.tickFromLine(line, fieldIndex, block.PreClosePx)
		if !ok {
			f.Logger.Debug("Skipping malformed line %d for %s", i, symbol)
			continue
		}
		ticks = append(ticks, tick)
	}

	if len(ticks) == 0 {
		return nil, helpers.NewParseError("no valid data points for "+symbol, nil)
	}

	sort.Slice(ticks, func(i, j int) bool {
		return ticks[i].Timestamp < ticks[j].Timestamp
	})

	return &models.MQuoteSeries{
		Symbol:      symbol,
		Name:        symbol, // the endpoint does not return a display name
		Ticks:       ticks,
		PreClose:    block.PreClosePx,
		TotalPoints: len(ticks),
	}, nil
}

// -----------------------------------------------------------------------------

// tickFromLine maps one positional row to a named tick. A row without a
// timestamp or close is unusable; other fields default to zero when not
// requested. Change columns fall back to the pre-close derivation when the
// endpoint was queried without them.
func (f *QuoteFetcher) tickFromLine(line []*float64, fieldIndex map[string]int, preClose float64) (models.MTick, bool) {
	ts, ok := lineValue(line, fieldIndex, "tick_at")
	if !ok {
		return models.MTick{}, false
	}
	closePx, ok := lineValue(line, fieldIndex, "close_px")
	if !ok {
		return models.MTick{}, false
	}

	tick := models.MTick{
		Timestamp: int64(ts),
		Close:     closePx,
	}

	if v, ok := lineValue(line, fieldIndex, "avg_px"); ok {
		tick.AvgPrice = v
	}
	if v, ok := lineValue(line, fieldIndex, "turnover_volume"); ok {
		tick.Volume = int64(v)
	}
	if v, ok := lineValue(line, fieldIndex, "turnover_value"); ok {
		tick.Amount = int64(v)
	}
	if v, ok := lineValue(line, fieldIndex, "open_px"); ok {
		tick.Open = v
	}
	if v, ok := lineValue(line, fieldIndex, "high_px"); ok {
		tick.High = v
	}
	if v, ok := lineValue(line, fieldIndex, "low_px"); ok {
		tick.Low = v
	}

	if v, ok := lineValue(line, fieldIndex, "px_change"); ok {
		tick.Change = v
	} else {
		tick.Change, _ = core.ComputeChange(closePx, preClose)
	}
	if v, ok := lineValue(line, fieldIndex, "px_change_rate"); ok {
		tick.ChangeRate = v
	} else {
		_, tick.ChangeRate = core.ComputeChange(closePx, preClose)
	}

	return tick, true
}

// -----------------------------------------------------------------------------

// LatestPrice returns the most recent close for one symbol.
func (f *QuoteFetcher) LatestPrice(symbol string) (float64, error) {
	series, err := f.FetchSeries(symbol)
	if err != nil {
		return 0, err
	}

	latest, ok := series.Latest()
	if !ok {
		return 0, helpers.NewParseError("no ticks in series for "+symbol, nil)
	}
	return latest.Close, nil
}

// -----------------------------------------------------------------------------

// PriceChange derives the change view from the last tick and the previous
// close. change = current - pre_close; change_rate is a percentage and 0
// when pre_close is 0.
func (f *QuoteFetcher) PriceChange(symbol string) (*models.MPriceChange, error) {
	series, err := f.FetchSeries(symbol)
	if err != nil {
		return nil, err
	}

	latest, ok := series.Latest()
	if !ok {
		return nil, helpers.NewParseError("no ticks in series for "+symbol, nil)
	}

	change, rate := core.ComputeChange(latest.Close, series.PreClose)
	return &models.MPriceChange{
		CurrentPrice: latest.Close,
		PreClose:     series.PreClose,
		Change:       change,
		ChangeRate:   rate,
	}, nil
}

// -----------------------------------------------------------------------------

// TradingVolume returns the volume of the most recent tick.
func (f *QuoteFetcher) TradingVolume(symbol string) (int64, error) {
	series, err := f.FetchSeries(symbol)
	if err != nil {
		return 0, err
	}

	latest, ok := series.Latest()
	if !ok {
		return 0, helpers.NewParseError("no ticks in series for "+symbol, nil)
	}
	return latest.Volume, nil
}

// -----------------------------------------------------------------------------

// Close releases the underlying HTTP connections. No other side effects.
func (f *QuoteFetcher) Close() {
	f.Network.Close()
}
