package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/qymmdj/daily-stock-analysis/src/helpers"
	"github.com/qymmdj/daily-stock-analysis/src/interfaces"
	"github.com/qymmdj/daily-stock-analysis/src/logger"
	"github.com/qymmdj/daily-stock-analysis/src/models"
	"github.com/qymmdj/daily-stock-analysis/src/utils"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

type APIServer struct {
	Config   *models.MConfig
	Logger   *logger.Logger
	Fetcher  interfaces.IQuoteFetcher
	Klines   interfaces.IKlineFetcher
	Flash    interfaces.IFlashClient
	Analyzer TrendSupportAnalyzer
	Cache    *utils.TickCache
	engine   *gin.Engine

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan *models.MLatestData
	register   chan *Client
	unregister chan *Client

	// Local cache of the last pushed state
	latestState *models.MLatestData
	stateMutex  sync.RWMutex
}

// TrendSupportAnalyzer is what the trend endpoint needs from the analysis
// package; declared locally to keep the dependency one-directional.
type TrendSupportAnalyzer interface {
	AnalyzeTrendSupport(symbol string, klines []models.MKline) (*models.MTrendSupport, error)
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(
	cfg *models.MConfig,
	log *logger.Logger,
	fetcher interfaces.IQuoteFetcher,
	klines interfaces.IKlineFetcher,
	flash interfaces.IFlashClient,
	analyzer TrendSupportAnalyzer,
	cache *utils.TickCache,
) *APIServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &APIServer{
		Config:   cfg,
		Logger:   log,
		Fetcher:  fetcher,
		Klines:   klines,
		Flash:    flash,
		Analyzer: analyzer,
		Cache:    cache,
		engine:   gin.Default(),
		clients:  make(map[*Client]struct{}),
		// Buffered so a burst of collector updates never blocks the loop
		broadcast:  make(chan *models.MLatestData, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		latestState: &models.MLatestData{
			Type:     "INITIAL",
			Ticks:    make(map[string]models.MTick),
			PreClose: make(map[string]float64),
		},
	}

	// CORS for local dashboards
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/quote/:symbol", s.getQuote)
	s.engine.GET("/api/price/:symbol", s.getPrice)
	s.engine.GET("/api/change/:symbol", s.getChange)
	s.engine.GET("/api/volume/:symbol", s.getVolume)
	s.engine.GET("/api/recent/:symbol", s.getRecent)
	s.engine.GET("/api/klines/:symbol", s.getKlines)
	s.engine.GET("/api/trend/:symbol", s.getTrendSupport)
	s.engine.GET("/api/limitup", s.getLimitUp)
	s.engine.GET("/api/surge", s.getSurge)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/api/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *APIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *APIServer) Stop() error {
	close(s.broadcast)
	close(s.register)
	close(s.unregister)
	return nil
}

// -----------------------------------------------------------------------------
// Error mapping
// -----------------------------------------------------------------------------

// statusForError maps the typed fetch errors onto HTTP statuses: an unknown
// symbol is the caller's fault, everything upstream is a bad gateway.
func statusForError(err error) int {
	var notFound *helpers.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}

	var apiErr *helpers.APIError
	var netErr *helpers.NetworkError
	var parseErr *helpers.ParseError
	if errors.As(err, &apiErr) || errors.As(err, &netErr) || errors.As(err, &parseErr) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

func (s *APIServer) abortWithError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) getQuote(c *gin.Context) {
	series, err := s.Fetcher.FetchSeries(c.Param("symbol"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getPrice(c *gin.Context) {
	symbol := c.Param("symbol")
	price, err := s.Fetcher.LatestPrice(symbol)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "price": price})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getChange(c *gin.Context) {
	change, err := s.Fetcher.PriceChange(c.Param("symbol"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, change)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getVolume(c *gin.Context) {
	symbol := c.Param("symbol")
	volume, err := s.Fetcher.TradingVolume(symbol)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "volume": volume})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getRecent(c *gin.Context) {
	symbol := c.Param("symbol")
	n, err := strconv.Atoi(c.DefaultQuery("n", "30"))
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid n"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol": symbol,
		"ticks":  s.Cache.Latest(symbol, n),
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getKlines(c *gin.Context) {
	symbol := c.Param("symbol")
	days, err := strconv.Atoi(c.DefaultQuery("days", "180"))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days"})
		return
	}

	klines, err := s.Klines.FetchKlines(symbol, days)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "klines": klines})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getTrendSupport(c *gin.Context) {
	symbol := c.Param("symbol")
	days, err := strconv.Atoi(c.DefaultQuery("days", "180"))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days"})
		return
	}

	klines, err := s.Klines.FetchKlines(symbol, days)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	result, err := s.Analyzer.AnalyzeTrendSupport(symbol, klines)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getLimitUp(c *gin.Context) {
	stocks, err := s.Flash.LimitUpPool(c.Query("date"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(stocks), "stocks": stocks})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getSurge(c *gin.Context) {
	snapshot, err := s.Flash.SurgeStocks()
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"symbols":         s.Config.DataSource.Symbols,
		"update_interval": s.Config.DataSource.UpdateIntervalSeconds,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := len(s.clients)
	timestamp := s.latestState.Timestamp
	s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"connections":   connections,
		"latest_update": timestamp,
	})
}
