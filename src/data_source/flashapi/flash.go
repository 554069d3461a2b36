package flashapi

import (
	"encoding/json"
	"time"

	"github.com/qymmdj/daily-stock-analysis/src/helpers"
	"github.com/qymmdj/daily-stock-analysis/src/interfaces"
	"github.com/qymmdj/daily-stock-analysis/src/logger"
	"github.com/qymmdj/daily-stock-analysis/src/models"
)

const (
	defaultPoolURL  = "http://flash-api.xuangubao.cn/api/pool/detail"
	defaultSurgeURL = "https://flash-api.xuangubao.com.cn/api/surge_stock/stocks"

	successCode = 20000
)

// -----------------------------------------------------------------------------
// FlashClient talks to the flash-api side of the same API family: the daily
// limit-up pool and the surge stock snapshot.
// -----------------------------------------------------------------------------

type FlashClient struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewFlashClient(cfg *models.MConfig, netMgr interfaces.INetworkManager) *FlashClient {
	return &FlashClient{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger(nil, "FlashClient"),
	}
}

// -----------------------------------------------------------------------------

func (c *FlashClient) poolURL() string {
	if c.Config != nil && c.Config.DataSource.PoolURL != "" {
		return c.Config.DataSource.PoolURL
	}
	return defaultPoolURL
}

func (c *FlashClient) surgeURL() string {
	if c.Config != nil && c.Config.DataSource.SurgeURL != "" {
		return c.Config.DataSource.SurgeURL
	}
	return defaultSurgeURL
}

// -----------------------------------------------------------------------------

type poolEnvelope struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    []models.MLimitUpStock `json:"data"`
}

// LimitUpPool fetches the limit-up pool for one YYYY-MM-DD trading day.
// An empty pool (non-trading day) is a valid result, not an error.
func (c *FlashClient) LimitUpPool(date string) ([]models.MLimitUpStock, error) {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	params := map[string]string{
		"pool_name": "limit_up",
		"date":      date,
	}

	body, err := c.Network.Get(c.poolURL(), params)
	if err != nil {
		return nil, helpers.NewNetworkError("limit-up request failed for "+date, err)
	}

	var resp poolEnvelope
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, helpers.NewParseError("json unmarshal failed", err)
	}

	if resp.Code != successCode {
		return nil, helpers.NewAPIError(resp.Code, resp.Message)
	}

	c.Logger.Info("Fetched limit-up pool for %s: %d stocks", date, len(resp.Data))
	return resp.Data, nil
}

// -----------------------------------------------------------------------------

type surgeEnvelope struct {
	Data struct {
		Items [][]any `json:"items"`
	} `json:"data"`
}

// SurgeStocks fetches the current surge stock snapshot. Rows stay positional
// because the upstream documents no column layout for them.
func (c *FlashClient) SurgeStocks() (*models.MSurgeSnapshot, error) {
	params := map[string]string{
		"normal":  "true",
		"uplimit": "true",
	}

	body, err := c.Network.Get(c.surgeURL(), params)
	if err != nil {
		return nil, helpers.NewNetworkError("surge stocks request failed", err)
	}

	var resp surgeEnvelope
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, helpers.NewParseError("json unmarshal failed", err)
	}

	c.Logger.Info("Fetched surge stocks: %d items", len(resp.Data.Items))
	return &models.MSurgeSnapshot{
		Items:     resp.Data.Items,
		FetchedAt: time.Now().Unix(),
	}, nil
}

// -----------------------------------------------------------------------------

// SessionDate extracts the trading day from a snapshot via the enter_time
// column (row index 6), falling back to today when the snapshot is empty.
// The result is a YYYY-MM-DD string accepted by LimitUpPool.
func SessionDate(snapshot *models.MSurgeSnapshot) string {
	if snapshot != nil && len(snapshot.Items) > 0 && len(snapshot.Items[0]) > 6 {
		if ts, ok := snapshot.Items[0][6].(float64); ok && ts > 0 {
			return time.Unix(int64(ts), 0).Format("2006-01-02")
		}
	}
	return time.Now().Format("2006-01-02")
}
