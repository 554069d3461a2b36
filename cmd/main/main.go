package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/qymmdj/daily-stock-analysis/src/analysis"
	"github.com/qymmdj/daily-stock-analysis/src/config"
	"github.com/qymmdj/daily-stock-analysis/src/data_source/flashapi"
	"github.com/qymmdj/daily-stock-analysis/src/data_source/xuangubao"
	"github.com/qymmdj/daily-stock-analysis/src/interfaces"
	"github.com/qymmdj/daily-stock-analysis/src/logger"
	"github.com/qymmdj/daily-stock-analysis/src/models"
	"github.com/qymmdj/daily-stock-analysis/src/network"
	"github.com/qymmdj/daily-stock-analysis/src/server"
	"github.com/qymmdj/daily-stock-analysis/src/storage"
	"github.com/qymmdj/daily-stock-analysis/src/utils"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config, config.Name)

	// 2. Storage
	var db interfaces.IDatabase

	switch config.Storage.DBType {
	case "postgres":
		db, err = storage.NewPostgresDB(config.MConfig, appLogger)
	default:
		// Default to SQLite
		db, err = storage.NewAsyncSQLiteDB(config.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
	}
	if err := db.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
	}
	defer db.Close()

	// 3. Fetchers
	var networkManager interfaces.INetworkManager = network.NewAsyncNetworkManager(config.MConfig, appLogger)
	defer networkManager.Close()

	var quotes interfaces.IQuoteFetcher = xuangubao.NewQuoteFetcher(config.MConfig, networkManager)
	var klines interfaces.IKlineFetcher = xuangubao.NewKlineFetcher(config.MConfig, networkManager)
	var flash interfaces.IFlashClient = flashapi.NewFlashClient(config.MConfig, networkManager)

	analyzer := analysis.NewTrendAnalyzer()
	cache := utils.NewTickCache(utils.DefaultBufferCapacity)

	var source interfaces.IDataSource = xuangubao.NewTrendSource(config.MConfig, quotes)

	srv := server.NewAPIServer(config.MConfig, appLogger, quotes, klines, flash, analyzer, cache)
	var exchange interfaces.IDataExchanger = srv

	// 4. Initial Data Load
	appLogger.Info("Fetching initial data...")
	initialData, err := source.FetchInitialData()
	if err != nil {
		appLogger.Warning("Initial fetch failed: %v", err)
	}

	initialTicks := make(map[string][]models.MTick)
	initialPayload := &models.MLatestData{
		Type:      "INITIAL",
		Ticks:     make(map[string]models.MTick),
		PreClose:  make(map[string]float64),
		Timestamp: time.Now().Unix(),
	}

	for sym, series := range initialData {
		initialTicks[sym] = series.Ticks
		cache.AddSeries(sym, series.Ticks)
		initialPayload.PreClose[sym] = series.PreClose
		if latest, ok := series.Latest(); ok {
			initialPayload.Ticks[sym] = latest
		}
	}
	db.SaveTicksBulk(initialTicks)

	// 5. Daily history and trend analysis
	for _, sym := range config.DataSource.Symbols {
		bars, err := klines.FetchKlines(sym, config.DataSource.KlineDays)
		if err != nil {
			appLogger.Warning("Kline fetch failed for %s: %v", sym, err)
			continue
		}
		db.SaveKlines(sym, bars)

		support, err := analyzer.AnalyzeTrendSupport(sym, bars)
		if err != nil {
			appLogger.Warning("Trend analysis failed for %s: %v", sym, err)
			continue
		}
		appLogger.Info("%s: %d bars analyzed, %d MA10 touches, %d MA20 touches",
			sym, support.BarsAnalyzed, len(support.NearMA10), len(support.NearMA20))
	}

	// 6. Market snapshot (limit-up pool keyed on the surge session date)
	if snapshot, err := flash.SurgeStocks(); err != nil {
		appLogger.Warning("Surge fetch failed: %v", err)
	} else {
		date := flashapi.SessionDate(snapshot)
		if pool, err := flash.LimitUpPool(date); err != nil {
			appLogger.Warning("Limit-up pool fetch failed: %v", err)
		} else {
			appLogger.Info("Limit-up pool %s: %d stocks", date, len(pool))
			db.SaveLimitUpPool(date, pool)
		}
	}

	appLogger.Info("Initialization complete.")

	exchange.SetLatest(initialPayload)

	// 7. Start Server
	go func() {
		if err := exchange.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 8. Main Loop (Push Model)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wrapWg := &sync.WaitGroup{}
	updatesChan := make(chan map[string][]models.MTick, 100)

	// Start Source
	if err := source.Start(ctx, updatesChan, wrapWg); err != nil {
		appLogger.Critical("Failed to start source: %v", err)
		return
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	appLogger.Info("Starting data loop (Push Model)...")

	for {
		select {
		case updates, ok := <-updatesChan:
			if !ok {
				appLogger.Info("Data source closed channel.")
				return
			}

			startProcess := time.Now()
			appLogger.Info("Received update for %d symbols", len(updates))

			newTicks := 0
			payload := &models.MLatestData{
				Type:      "UPDATE",
				Ticks:     make(map[string]models.MTick),
				PreClose:  initialPayload.PreClose,
				Timestamp: time.Now().Unix(),
			}

			for sym, ticks := range updates {
				newTicks += len(ticks)
				cache.AddSeries(sym, ticks)
				if len(ticks) > 0 {
					payload.Ticks[sym] = ticks[len(ticks)-1]
				}
			}
			db.SaveTicksBulk(updates)

			payload.Metrics = models.MCollectMetrics{
				FetchTimeSeconds: time.Since(startProcess).Seconds(),
				ValidSymbols:     len(updates),
				NewTicks:         newTicks,
			}

			exchange.SetLatest(payload)
			exchange.Broadcast(payload)

			// Cleanup
			db.CleanupOldData()

		case <-quit:
			appLogger.Info("Shutting down...")
			cancel()      // Signal source to stop
			wrapWg.Wait() // Wait for source to close
			exchange.Stop()
			return
		}
	}
}
