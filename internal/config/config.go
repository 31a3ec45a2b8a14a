// Package config provides configuration management for the crypto backtester.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Data       DataConfig       `mapstructure:"data" validate:"required"`
	Backtest   BacktestConfig   `mapstructure:"backtest" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Strategies []StrategyConfig `mapstructure:"strategies" validate:"required,min=1,dive"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DataConfig represents market-data acquisition configuration
type DataConfig struct {
	BaseURL          string  `mapstructure:"base_url" validate:"required,url"`
	Symbol           string  `mapstructure:"symbol" validate:"required"`
	Currency         string  `mapstructure:"currency" validate:"required"`
	Interval         string  `mapstructure:"interval" validate:"required,interval"`
	SinceDays        int     `mapstructure:"since_days" validate:"required,gt=0"`
	DataDir          string  `mapstructure:"data_dir" validate:"required"`
	RateLimit        float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	TimeoutSeconds   int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries       int     `mapstructure:"max_retries" validate:"gte=0"`
	CacheTTLSeconds  int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	RefreshSchedule  string  `mapstructure:"refresh_schedule"`
}

// BacktestConfig represents backtesting configuration, including the global
// risk-parameter defaults that strategies may override
type BacktestConfig struct {
	InitialCapital      float64 `mapstructure:"initial_capital" validate:"required,gt=0"`
	StopLossPct         float64 `mapstructure:"stop_loss_pct" validate:"gte=0,lt=1"`
	TakeProfitPct       float64 `mapstructure:"take_profit_pct" validate:"gte=0"`
	TransactionFeePct   float64 `mapstructure:"transaction_fee_pct" validate:"gte=0,lte=0.1"`
	RiskFreeRate        float64 `mapstructure:"risk_free_rate" validate:"gte=0,lte=1"`
	ResampleIterations  int     `mapstructure:"resample_iterations" validate:"gte=0"`
	OutputPath          string  `mapstructure:"output_path" validate:"required"`
	PersistResults      bool    `mapstructure:"persist_results"`
	ParallelRuns        bool    `mapstructure:"parallel_runs"`
}

// DatabaseConfig represents database connection configuration. Only consulted
// when backtest.persist_results is enabled.
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
}

// MetricsConfig represents metrics and health endpoint configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// StrategyConfig describes one strategy run: its signal source, its position
// sizer and optional risk-parameter overrides
type StrategyConfig struct {
	Name          string             `mapstructure:"name" validate:"required"`
	Description   string             `mapstructure:"description"`
	Type          string             `mapstructure:"type" validate:"required"`
	Params        map[string]any     `mapstructure:"params"`
	PositionSizer SizerConfig        `mapstructure:"position_sizer" validate:"required"`
	RiskOverrides map[string]float64 `mapstructure:"risk_overrides"`
}

// SizerConfig describes the position sizer attached to a strategy
type SizerConfig struct {
	Type   string         `mapstructure:"type" validate:"required"`
	Params map[string]any `mapstructure:"params"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return c.Database.DSN()
}

// DSN builds the PostgreSQL connection string for this database
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
}

// SymbolPair returns the trading pair in exchange format, e.g. BTCUSDT
func (c *Config) SymbolPair() string {
	return c.Data.Symbol + c.Data.Currency
}
