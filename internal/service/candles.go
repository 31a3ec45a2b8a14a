package service

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/crypto-backtester/internal/config"
	"github.com/yourusername/crypto-backtester/internal/datasource"
)

// NewCandleService wires the exchange client, disk store and memory cache
// from configuration.
func NewCandleService(cfg *config.Config, log *logrus.Logger) (*datasource.Service, error) {
	store, err := datasource.NewCSVStore(cfg.Data.DataDir)
	if err != nil {
		return nil, err
	}

	httpClient := datasource.NewRateLimitedHTTPClient(datasource.HTTPClientConfig{
		Timeout:           time.Duration(cfg.Data.TimeoutSeconds) * time.Second,
		MaxRetries:        cfg.Data.MaxRetries,
		RetryWaitMin:      100 * time.Millisecond,
		RetryWaitMax:      10 * time.Second,
		RateLimit:         cfg.Data.RateLimit,
		CircuitBreakerMax: 5,
	}, log)

	binance := datasource.NewBinanceClient(cfg.Data.BaseURL, httpClient, log)

	return datasource.NewService(binance, store, datasource.ServiceConfig{
		Symbol:    cfg.SymbolPair(),
		Interval:  cfg.Data.Interval,
		SinceDays: cfg.Data.SinceDays,
		CacheTTL:  time.Duration(cfg.Data.CacheTTLSeconds) * time.Second,
	}, log), nil
}
