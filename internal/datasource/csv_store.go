package datasource

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/yourusername/crypto-backtester/internal/models"
)

// CSVStore persists candle series as CSV files under a data directory, one
// canonical file per pair and interval so refreshes overwrite in place.
type CSVStore struct {
	dir string
}

// NewCSVStore creates the data directory if needed
func NewCSVStore(dir string) (*CSVStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &CSVStore{dir: dir}, nil
}

// Path returns the canonical file path for a pair and interval
func (s *CSVStore) Path(symbol, interval string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.csv", symbol, interval))
}

// Exists reports whether a cached file is present for the pair and interval
func (s *CSVStore) Exists(symbol, interval string) bool {
	_, err := os.Stat(s.Path(symbol, interval))
	return err == nil
}

// Save writes the full candle series, replacing any previous file
func (s *CSVStore) Save(symbol, interval string, candles []models.Candle) error {
	file, err := os.Create(s.Path(symbol, interval))
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"Date", "Open", "High", "Low", "Close", "Volume"}); err != nil {
		return err
	}
	for _, candle := range candles {
		record := []string{
			candle.Date.UTC().Format(time.RFC3339),
			formatFloat(candle.Open),
			formatFloat(candle.High),
			formatFloat(candle.Low),
			formatFloat(candle.Close),
			formatFloat(candle.Volume),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Load reads a previously saved candle series
func (s *CSVStore) Load(symbol, interval string) ([]models.Candle, error) {
	file, err := os.Open(s.Path(symbol, interval))
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv file: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv file %s has no data rows", s.Path(symbol, interval))
	}

	candles := make([]models.Candle, 0, len(records)-1)
	for i, record := range records[1:] {
		candle, err := parseCSVRecord(record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

func parseCSVRecord(record []string) (models.Candle, error) {
	if len(record) != 6 {
		return models.Candle{}, fmt.Errorf("expected 6 columns, got %d", len(record))
	}
	date, err := time.Parse(time.RFC3339, record[0])
	if err != nil {
		return models.Candle{}, fmt.Errorf("date: %w", err)
	}
	values := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		v, err := strconv.ParseFloat(record[i], 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("column %d: %w", i+1, err)
		}
		values[i-1] = v
	}
	return models.Candle{
		Date:   date,
		Open:   values[0],
		High:   values[1],
		Low:    values[2],
		Close:  values[3],
		Volume: values[4],
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
