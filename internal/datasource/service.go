package datasource

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/crypto-backtester/internal/metrics"
	"github.com/yourusername/crypto-backtester/internal/models"
)

// ServiceConfig configures the candle service
type ServiceConfig struct {
	Symbol    string
	Interval  string
	SinceDays int
	CacheTTL  time.Duration
}

// Service serves candle series from a three-level hierarchy: an in-memory
// TTL cache, the CSV store on disk, and finally the exchange itself. Disk
// data is reused only when it reaches back far enough for the request.
type Service struct {
	source DataSource
	store  *CSVStore
	cache  *gocache.Cache
	cfg    ServiceConfig
	logger *logrus.Logger
}

// NewService creates a candle service
func NewService(source DataSource, store *CSVStore, cfg ServiceConfig, logger *logrus.Logger) *Service {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Service{
		source: source,
		store:  store,
		cache:  gocache.New(ttl, 2*ttl),
		cfg:    cfg,
		logger: logger,
	}
}

// GetCandles returns the configured pair's candle series, fetching from the
// exchange only when neither cache level can satisfy the request. The
// returned series is validated: ascending dates, finite coherent prices.
func (s *Service) GetCandles(ctx context.Context) ([]models.Candle, error) {
	key := s.cacheKey()
	if cached, found := s.cache.Get(key); found {
		return cached.([]models.Candle), nil
	}

	requiredStart := time.Now().UTC().AddDate(0, 0, -s.cfg.SinceDays)

	if s.store.Exists(s.cfg.Symbol, s.cfg.Interval) {
		candles, err := s.store.Load(s.cfg.Symbol, s.cfg.Interval)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to load cached candles, refetching")
		} else if len(candles) > 0 && !candles[0].Date.After(requiredStart) {
			if err := models.ValidateSeries(candles); err != nil {
				return nil, NewDataSourceError(s.source.Name(), ErrCodeInvalidData, "cached series failed validation", err)
			}
			s.cache.SetDefault(key, candles)
			return candles, nil
		}
	}

	return s.Refresh(ctx)
}

// Refresh bypasses both cache levels, fetches a fresh series from the
// exchange, persists it and repopulates the memory cache.
func (s *Service) Refresh(ctx context.Context) ([]models.Candle, error) {
	since := time.Now().UTC().AddDate(0, 0, -s.cfg.SinceDays)

	start := time.Now()
	candles, err := s.source.FetchCandles(ctx, s.cfg.Symbol, s.cfg.Interval, since)
	if err != nil {
		metrics.RecordDataFetch(s.source.Name(), "failure", time.Since(start).Seconds())
		return nil, err
	}
	metrics.RecordDataFetch(s.source.Name(), "success", time.Since(start).Seconds())
	if err := models.ValidateSeries(candles); err != nil {
		return nil, NewDataSourceError(s.source.Name(), ErrCodeInvalidData, "fetched series failed validation", err)
	}

	if err := s.store.Save(s.cfg.Symbol, s.cfg.Interval, candles); err != nil {
		// A failed disk write should not discard a good fetch.
		s.logger.WithError(err).Warn("Failed to persist candles to disk")
	}

	s.cache.SetDefault(s.cacheKey(), candles)
	s.logger.WithFields(logrus.Fields{
		"symbol":   s.cfg.Symbol,
		"interval": s.cfg.Interval,
		"candles":  len(candles),
	}).Info("Refreshed candle series")

	return candles, nil
}

func (s *Service) cacheKey() string {
	return fmt.Sprintf("%s:%s:%d", s.cfg.Symbol, s.cfg.Interval, s.cfg.SinceDays)
}
