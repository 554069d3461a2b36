package analysis

import (
	"math"
	"sort"
	"strings"

	"github.com/qymmdj/daily-stock-analysis/src/analysis/core"
	"github.com/qymmdj/daily-stock-analysis/src/helpers"
	"github.com/qymmdj/daily-stock-analysis/src/logger"
	"github.com/qymmdj/daily-stock-analysis/src/models"
)

const (
	// Touch window around MA10/MA20, percent of the MA value
	maDeviationLimit = 3.5

	// Volume confirmation requires at least 1.2x the prior bar
	volumeSurgeRatio = 1.2

	// Fallback scan length when the golden-cross segment is too short
	fallbackBars    = 90
	minSegmentBars  = 30
	minAnalysisBars = 2
)

// -----------------------------------------------------------------------------
// TrendAnalyzer scans daily candles for support touches on MA10/MA20 during
// the current golden-cross segment.
// -----------------------------------------------------------------------------

type TrendAnalyzer struct {
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewTrendAnalyzer() *TrendAnalyzer {
	return &TrendAnalyzer{
		Logger: logger.NewLogger(nil, "TrendAnalyzer"),
	}
}

// -----------------------------------------------------------------------------

// AnalyzeTrendSupport locates the start of the active MA10>=MA20 segment by
// walking back from the latest bar, then counts bars whose low comes within
// the deviation window of the nearer MA, flagging those confirmed by volume
// and a strong intraday gain.
func (a *TrendAnalyzer) AnalyzeTrendSupport(symbol string, klines []models.MKline) (*models.MTrendSupport, error) {
	if len(klines) == 0 {
		return nil, &helpers.StockDataError{Message: "no klines to analyze for " + symbol}
	}

	bars := make([]models.MKline, len(klines))
	copy(bars, klines)
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp < bars[j].Timestamp
	})

	segment := bars[a.findStartIndex(bars)+1:]

	// Short or empty segment: fall back to the recent window so quiet stocks
	// still get a result.
	if len(segment) < minSegmentBars {
		start := len(bars) - fallbackBars
		if start < 0 {
			start = 0
		}
		segment = make([]models.MKline, 0, fallbackBars)
		for _, b := range bars[start:] {
			if b.MA10 != 0 && b.MA20 != 0 {
				segment = append(segment, b)
			}
		}
	}

	if len(segment) < minAnalysisBars {
		return nil, &helpers.StockDataError{Message: "not enough bars to analyze for " + symbol}
	}

	result := &models.MTrendSupport{
		Symbol:       strings.SplitN(symbol, ".", 2)[0],
		BarsAnalyzed: len(segment),
	}

	for i := 1; i < len(segment); i++ {
		bar := segment[i]
		prev := segment[i-1]

		if bar.Close == 0 || bar.Open == 0 || bar.Low == 0 || bar.Volume == 0 || prev.Volume == 0 {
			continue
		}

		changePct := core.IntradayGainPercent(bar.Open, bar.Close)

		ma, deviation, ok := nearestMA(bar)
		if !ok || deviation < -maDeviationLimit || deviation > maDeviationLimit {
			continue
		}

		touch := models.MTouch{
			Date:       bar.Date(),
			MA:         ma,
			Deviation:  deviation,
			ChangeRate: round2(changePct),
		}

		if i+1 < len(segment) {
			next := segment[i+1]
			if next.Open != 0 {
				touch.NextDayRate = round2(core.IntradayGainPercent(next.Open, next.Close))
				touch.HasNextDay = true
			}
		}

		touch.IsLargeVolume = float64(bar.Volume) >= float64(prev.Volume)*volumeSurgeRatio &&
			isStrongIncrease(changePct, symbol)

		if ma == "ma10" {
			result.NearMA10 = append(result.NearMA10, touch)
		} else {
			result.NearMA20 = append(result.NearMA20, touch)
		}
	}

	a.Logger.Info("Trend support %s: %d bars, %d touches, %d volume-confirmed",
		symbol, result.BarsAnalyzed, result.TouchCount(), result.LargeVolumeCount())

	return result, nil
}

// -----------------------------------------------------------------------------

// findStartIndex walks back from the latest bar while MA10 >= MA20 and
// returns the index of the last bar before the golden cross. Bars missing
// either MA are skipped; 0 when the whole history is above the cross.
func (a *TrendAnalyzer) findStartIndex(bars []models.MKline) int {
	for i := len(bars) - 1; i >= 0; i-- {
		if bars[i].MA10 == 0 || bars[i].MA20 == 0 {
			continue
		}
		if bars[i].MA10 < bars[i].MA20 {
			return i
		}
	}
	return 0
}

// -----------------------------------------------------------------------------

// nearestMA picks whichever of MA10/MA20 the bar's low deviates least from.
func nearestMA(bar models.MKline) (string, float64, bool) {
	switch {
	case bar.MA10 != 0 && bar.MA20 != 0:
		dev10 := core.DeviationPercent(bar.Low, bar.MA10)
		dev20 := core.DeviationPercent(bar.Low, bar.MA20)
		if math.Abs(dev10) <= math.Abs(dev20) {
			return "ma10", dev10, true
		}
		return "ma20", dev20, true
	case bar.MA10 != 0:
		return "ma10", core.DeviationPercent(bar.Low, bar.MA10), true
	case bar.MA20 != 0:
		return "ma20", core.DeviationPercent(bar.Low, bar.MA20), true
	default:
		return "", 0, false
	}
}

// -----------------------------------------------------------------------------

// isStrongIncrease applies the board-specific gain bar: ChiNext (300xxx.SZ)
// needs more than 6%, main boards more than 4%.
func isStrongIncrease(changePct float64, symbol string) bool {
	base := strings.SplitN(symbol, ".", 2)[0]
	if strings.HasSuffix(symbol, ".SZ") && strings.HasPrefix(base, "300") {
		return changePct > 6.0
	}
	return changePct > 4.0
}

// -----------------------------------------------------------------------------

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
