package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/qymmdj/daily-stock-analysis/src/logger"
	"github.com/qymmdj/daily-stock-analysis/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	schema := cfg.Name
	if schema == "" {
		schema = "stock_analysis"
	}

	return &PostgresDB{
		Config: cfg,
		Schema: schema,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %q`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables() error {
	queries := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q.ticks (
			symbol TEXT,
			timestamp BIGINT,
			close DOUBLE PRECISION,
			avg_price DOUBLE PRECISION,
			volume BIGINT,
			amount BIGINT,
			open DOUBLE PRECISION,
			high DOUBLE PRECISION,
			low DOUBLE PRECISION,
			change DOUBLE PRECISION,
			change_rate DOUBLE PRECISION,
			PRIMARY KEY (symbol, timestamp)
		);`, d.Schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q.klines (
			symbol TEXT,
			timestamp BIGINT,
			open DOUBLE PRECISION,
			close DOUBLE PRECISION,
			high DOUBLE PRECISION,
			low DOUBLE PRECISION,
			volume BIGINT,
			value DOUBLE PRECISION,
			turnover_ratio DOUBLE PRECISION,
			ma5 DOUBLE PRECISION,
			ma10 DOUBLE PRECISION,
			ma20 DOUBLE PRECISION,
			ma60 DOUBLE PRECISION,
			PRIMARY KEY (symbol, timestamp)
		);`, d.Schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q.limit_up_pool (
			trade_date TEXT,
			symbol TEXT,
			name TEXT,
			price DOUBLE PRECISION,
			prev_close DOUBLE PRECISION,
			change_percent DOUBLE PRECISION,
			limit_up_days INTEGER,
			break_limit_up_times INTEGER,
			turnover_ratio DOUBLE PRECISION,
			reason TEXT,
			PRIMARY KEY (trade_date, symbol)
		);`, d.Schema),
	}

	for _, query := range queries {
		if _, err := d.DB.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveTicksBulk(ticks map[string][]models.MTick) error {
	if len(ticks) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO %q.ticks (symbol, timestamp, close, avg_price, volume, amount, open, high, low, change, change_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (symbol, timestamp) DO UPDATE SET
			close = EXCLUDED.close,
			avg_price = EXCLUDED.avg_price,
			volume = EXCLUDED.volume,
			amount = EXCLUDED.amount,
			change = EXCLUDED.change,
			change_rate = EXCLUDED.change_rate
	`, d.Schema))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for symbol, list := range ticks {
		for _, t := range list {
			_, err := stmt.Exec(symbol, t.Timestamp, t.Close, t.AvgPrice, t.Volume, t.Amount, t.Open, t.High, t.Low, t.Change, t.ChangeRate)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveKlines(symbol string, klines []models.MKline) error {
	if len(klines) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO %q.klines (symbol, timestamp, open, close, high, low, volume, value, turnover_ratio, ma5, ma10, ma20, ma60)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (symbol, timestamp) DO UPDATE SET
			open = EXCLUDED.open,
			close = EXCLUDED.close,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			volume = EXCLUDED.volume,
			value = EXCLUDED.value,
			turnover_ratio = EXCLUDED.turnover_ratio,
			ma5 = EXCLUDED.ma5,
			ma10 = EXCLUDED.ma10,
			ma20 = EXCLUDED.ma20,
			ma60 = EXCLUDED.ma60
	`, d.Schema))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, k := range klines {
		_, err := stmt.Exec(symbol, k.Timestamp, k.Open, k.Close, k.High, k.Low, k.Volume, k.Value, k.TurnoverRatio, k.MA5, k.MA10, k.MA20, k.MA60)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveLimitUpPool(date string, stocks []models.MLimitUpStock) error {
	if len(stocks) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO %q.limit_up_pool (trade_date, symbol, name, price, prev_close, change_percent, limit_up_days, break_limit_up_times, turnover_ratio, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (trade_date, symbol) DO UPDATE SET
			price = EXCLUDED.price,
			change_percent = EXCLUDED.change_percent,
			limit_up_days = EXCLUDED.limit_up_days,
			break_limit_up_times = EXCLUDED.break_limit_up_times,
			turnover_ratio = EXCLUDED.turnover_ratio,
			reason = EXCLUDED.reason
	`, d.Schema))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range stocks {
		reason := ""
		if s.SurgeReason != nil {
			reason = s.SurgeReason.StockReason
		}
		_, err := stmt.Exec(date, s.Symbol, s.Name, s.Price, s.PrevClosePrice, s.ChangePercent, s.LimitUpDays, s.BreakLimitUpTimes, s.TurnoverRatio, reason)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) CleanupOldData() error {
	retentionDays := d.Config.DataSource.DataRetentionDays
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Unix()

	if _, err := d.DB.Exec(fmt.Sprintf("DELETE FROM %q.ticks WHERE timestamp < $1", d.Schema), cutoff); err != nil {
		d.Logger.Error("Cleanup ticks error: %v", err)
	}

	// Daily candles live on their own horizon; the tick retention window is
	// far too short for them.
	if klineDays := d.Config.DataSource.KlineDays; klineDays > 0 {
		klineCutoff := time.Now().UTC().AddDate(0, 0, -klineDays).Unix()
		if _, err := d.DB.Exec(fmt.Sprintf("DELETE FROM %q.klines WHERE timestamp < $1", d.Schema), klineCutoff); err != nil {
			d.Logger.Error("Cleanup klines error: %v", err)
		}
	}

	d.Logger.Info("Cleanup completed (cutoff %d)", cutoff)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
