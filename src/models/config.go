package models

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	LogLevel   string            `yaml:"log_level"`
	Storage    MStorageConfig    `yaml:"storage"`
	Network    MNetworkConfig    `yaml:"network"`
	DataSource MDataSourceConfig `yaml:"data_source"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	RequestTimeout     int    `yaml:"timeout"`
	ConcurrentRequests int    `yaml:"concurrent_requests"`
	UserAgent          string `yaml:"user_agent"`
}

type MDataSourceConfig struct {
	TrendURL              string   `yaml:"trend_url"`
	KlineURL              string   `yaml:"kline_url"`
	PoolURL               string   `yaml:"pool_url"`
	SurgeURL              string   `yaml:"surge_url"`
	Symbols               []string `yaml:"symbols"`
	UpdateIntervalSeconds int      `yaml:"update_interval_seconds"`
	DataRetentionDays     int      `yaml:"data_retention_days"`
	KlineDays             int      `yaml:"kline_days"`
}
