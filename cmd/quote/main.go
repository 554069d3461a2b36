package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/qymmdj/daily-stock-analysis/src/analysis"
	"github.com/qymmdj/daily-stock-analysis/src/data_source/xuangubao"
	"github.com/qymmdj/daily-stock-analysis/src/logger"
	"github.com/qymmdj/daily-stock-analysis/src/models"
	"github.com/qymmdj/daily-stock-analysis/src/network"
)

// -----------------------------------------------------------------------------
// One-shot quote lookup, useful for checking a symbol without running the
// collector service:
//
//	quote -symbol 000001.SS
//	quote -symbol 300750.SZ -klines 180 -trend
// -----------------------------------------------------------------------------

func main() {

	symbol := flag.String("symbol", "", "symbol to look up, e.g. 000001.SS")
	klineDays := flag.Int("klines", 0, "also fetch N days of daily candles")
	trend := flag.Bool("trend", false, "run MA support analysis on the candles")
	flag.Parse()

	if *symbol == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := &models.MConfig{
		Name:     "quote",
		LogLevel: "WARNING",
		Network: models.MNetworkConfig{
			RequestTimeout:     10,
			ConcurrentRequests: 1,
		},
	}
	log := logger.NewLogger(cfg, cfg.Name)

	netMgr := network.NewAsyncNetworkManager(cfg, log)
	defer netMgr.Close()

	fetcher := xuangubao.NewQuoteFetcher(cfg, netMgr)

	series, err := fetcher.FetchSeries(*symbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s  (%d points, pre-close %.2f)\n", series.Symbol, len(series.Ticks), series.PreClose)

	if latest, ok := series.Latest(); ok {
		fmt.Printf("  %s  price %.2f  change %+.2f (%+.2f%%)  volume %d\n",
			time.Unix(latest.Timestamp, 0).Format("15:04"),
			latest.Close, latest.Change, latest.ChangeRate, latest.Volume)
	}

	if *klineDays <= 0 {
		return
	}

	klines := xuangubao.NewKlineFetcher(cfg, netMgr)
	bars, err := klines.FetchKlines(*symbol, *klineDays)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kline fetch failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("  %d daily candles", len(bars))
	if len(bars) > 0 {
		last := bars[len(bars)-1]
		fmt.Printf(", last %s close %.2f (MA10 %.2f / MA20 %.2f)",
			last.Date(), last.Close, last.MA10, last.MA20)
	}
	fmt.Println()

	if !*trend {
		return
	}

	analyzer := analysis.NewTrendAnalyzer()
	support, err := analyzer.AnalyzeTrendSupport(*symbol, bars)
	if err != nil {
		fmt.Fprintf(os.Stderr, "trend analysis failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("  trend: %d bars, %d near MA10, %d near MA20\n",
		support.BarsAnalyzed, len(support.NearMA10), len(support.NearMA20))
	for _, t := range support.NearMA10 {
		fmt.Printf("    MA10 %s  dev %+.2f%%  day %+.2f%%  big-vol=%v\n",
			t.Date, t.Deviation, t.ChangeRate, t.IsLargeVolume)
	}
	for _, t := range support.NearMA20 {
		fmt.Printf("    MA20 %s  dev %+.2f%%  day %+.2f%%  big-vol=%v\n",
			t.Date, t.Deviation, t.ChangeRate, t.IsLargeVolume)
	}
}
