package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/crypto-backtester/internal/models"
)

const (
	binanceSourceName = "binance"
	binanceKlineLimit = 1000
)

// BinanceClient fetches spot market klines from the Binance public REST API
type BinanceClient struct {
	baseURL string
	client  *RateLimitedHTTPClient
	logger  *logrus.Logger
}

// NewBinanceClient creates a Binance data source. baseURL should normally be
// https://api.binance.com; tests point it at a local server.
func NewBinanceClient(baseURL string, client *RateLimitedHTTPClient, logger *logrus.Logger) *BinanceClient {
	return &BinanceClient{
		baseURL: baseURL,
		client:  client,
		logger:  logger,
	}
}

// Name returns the name of the data source
func (b *BinanceClient) Name() string {
	return binanceSourceName
}

// FetchCandles retrieves all klines for symbol from since up to now, paging
// through the API in chunks of 1000. The symbol is the concatenated pair
// Binance expects, e.g. BTCUSDT.
func (b *BinanceClient) FetchCandles(ctx context.Context, symbol string, interval string, since time.Time) ([]models.Candle, error) {
	if symbol == "" {
		return nil, NewDataSourceError(binanceSourceName, ErrCodeInvalidData, "symbol is required", nil)
	}

	var all []models.Candle
	startTime := since.UnixMilli()

	for {
		batch, err := b.fetchKlinesPage(ctx, symbol, interval, startTime)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		all = append(all, batch...)
		// Resume one millisecond past the last open time so pages never overlap.
		startTime = batch[len(batch)-1].Date.UnixMilli() + 1

		if len(batch) < binanceKlineLimit {
			break
		}
	}

	if len(all) == 0 {
		return nil, NewDataSourceError(binanceSourceName, ErrCodeNotFound,
			fmt.Sprintf("no klines returned for %s %s", symbol, interval), nil)
	}

	b.logger.WithFields(logrus.Fields{
		"symbol":   symbol,
		"interval": interval,
		"candles":  len(all),
	}).Info("Fetched klines from Binance")

	return all, nil
}

func (b *BinanceClient) fetchKlinesPage(ctx context.Context, symbol, interval string, startTime int64) ([]models.Candle, error) {
	endpoint := fmt.Sprintf("%s/api/v3/klines?%s", b.baseURL, url.Values{
		"symbol":    {symbol},
		"interval":  {interval},
		"startTime": {fmt.Sprintf("%d", startTime)},
		"limit":     {fmt.Sprintf("%d", binanceKlineLimit)},
	}.Encode())

	resp, err := b.client.Get(ctx, endpoint)
	if err != nil {
		return nil, NewDataSourceError(binanceSourceName, ErrCodeNetworkError, "klines request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewDataSourceError(binanceSourceName, ErrCodeNetworkError, "failed to read response body", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewDataSourceError(binanceSourceName, ErrCodeRateLimitExceeded, "rate limited by exchange", nil)
	case resp.StatusCode >= 500:
		return nil, NewDataSourceError(binanceSourceName, ErrCodeServerError,
			fmt.Sprintf("exchange returned %d", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		return nil, NewDataSourceError(binanceSourceName, ErrCodeInvalidData,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200)), nil)
	}

	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, NewDataSourceError(binanceSourceName, ErrCodeInvalidData, "failed to decode klines payload", err)
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		candle, err := parseKlineRow(row)
		if err != nil {
			return nil, NewDataSourceError(binanceSourceName, ErrCodeInvalidData, "malformed kline row", err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// parseKlineRow decodes one kline array. Binance sends the open time as a
// millisecond integer and all prices as strings.
func parseKlineRow(row []json.RawMessage) (models.Candle, error) {
	if len(row) < 6 {
		return models.Candle{}, fmt.Errorf("expected at least 6 fields, got %d", len(row))
	}

	var openTimeMs int64
	if err := json.Unmarshal(row[0], &openTimeMs); err != nil {
		return models.Candle{}, fmt.Errorf("open time: %w", err)
	}

	prices := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		var raw string
		if err := json.Unmarshal(row[i], &raw); err != nil {
			return models.Candle{}, fmt.Errorf("field %d: %w", i, err)
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return models.Candle{}, fmt.Errorf("field %d: %w", i, err)
		}
		prices[i-1] = value.InexactFloat64()
	}

	return models.Candle{
		Date:   time.UnixMilli(openTimeMs).UTC(),
		Open:   prices[0],
		High:   prices[1],
		Low:    prices[2],
		Close:  prices[3],
		Volume: prices[4],
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
