package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/qymmdj/daily-stock-analysis/src/logger"
	"github.com/qymmdj/daily-stock-analysis/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) createTables() error {
	// SQLite types: INTEGER for int64, REAL for float64, TEXT for string.
	// Collected history survives restarts, so tables are created, not rebuilt.
	queries := []string{
		`CREATE TABLE IF NOT EXISTS ticks (
			symbol TEXT,
			timestamp INTEGER,
			close REAL,
			avg_price REAL,
			volume INTEGER,
			amount INTEGER,
			open REAL,
			high REAL,
			low REAL,
			change REAL,
			change_rate REAL,
			PRIMARY KEY (symbol, timestamp)
		);`,
		`CREATE TABLE IF NOT EXISTS klines (
			symbol TEXT,
			timestamp INTEGER,
			open REAL,
			close REAL,
			high REAL,
			low REAL,
			volume INTEGER,
			value REAL,
			turnover_ratio REAL,
			ma5 REAL,
			ma10 REAL,
			ma20 REAL,
			ma60 REAL,
			PRIMARY KEY (symbol, timestamp)
		);`,
		`CREATE TABLE IF NOT EXISTS limit_up_pool (
			trade_date TEXT,
			symbol TEXT,
			name TEXT,
			price REAL,
			prev_close REAL,
			change_percent REAL,
			limit_up_days INTEGER,
			break_limit_up_times INTEGER,
			turnover_ratio REAL,
			reason TEXT,
			PRIMARY KEY (trade_date, symbol)
		);`,
	}

	for _, query := range queries {
		if _, err := d.DB.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SaveTicksBulk(ticks map[string][]models.MTick) error {
	if len(ticks) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO ticks (symbol, timestamp, close, avg_price, volume, amount, open, high, low, change, change_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol, timestamp) DO UPDATE SET
			close = excluded.close,
			avg_price = excluded.avg_price,
			volume = excluded.volume,
			amount = excluded.amount,
			change = excluded.change,
			change_rate = excluded.change_rate
	`)
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

func (d *AsyncSQLiteDB) SaveKlines(symbol string, klines []models.MKline) error {
	if len(klines) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO klines (symbol, timestamp, open, close, high, low, volume, value, turnover_ratio, ma5, ma10, ma20, ma60)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol, timestamp) DO UPDATE SET
			open = excluded.open,
			close = excluded.close,
			high = excluded.high,
			low = excluded.low,
			volume = excluded.volume,
			value = excluded.value,
			turnover_ratio = excluded.turnover_ratio,
			ma5 = excluded.ma5,
			ma10 = excluded.ma10,
			ma20 = excluded.ma20,
			ma60 = excluded.ma60
	`)
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

func (d *AsyncSQLiteDB) SaveLimitUpPool(date string, stocks []models.MLimitUpStock) error {
	if len(stocks) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO limit_up_pool (trade_date, symbol, name, price, prev_close, change_percent, limit_up_days, break_limit_up_times, turnover_ratio, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (trade_date, symbol) DO UPDATE SET
			price = excluded.price,
			change_percent = excluded.change_percent,
			limit_up_days = excluded.limit_up_days,
			break_limit_up_times = excluded.break_limit_up_times,
			turnover_ratio = excluded.turnover_ratio,
			reason = excluded.reason
	`)
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

func (d *AsyncSQLiteDB) CleanupOldData() error {
	retentionDays := d.Config.DataSource.DataRetentionDays
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Unix()

	if _, err := d.DB.Exec("DELETE FROM ticks WHERE timestamp < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup ticks error: %v", err)
	}

	// Daily candles live on their own horizon; the tick retention window is
	// far too short for them.
	if klineDays := d.Config.DataSource.KlineDays; klineDays > 0 {
		klineCutoff := time.Now().UTC().AddDate(0, 0, -klineDays).Unix()
		if _, err := d.DB.Exec("DELETE FROM klines WHERE timestamp < ?", klineCutoff); err != nil {
			d.Logger.Error("Cleanup klines error: %v", err)
		}
	}

	d.Logger.Info("Cleanup completed (cutoff %d)", cutoff)
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
