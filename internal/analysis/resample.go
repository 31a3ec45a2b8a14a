package analysis

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/yourusername/crypto-backtester/internal/models"
)

// ResampleConfig configures bootstrap resampling of a trade log
type ResampleConfig struct {
	Iterations      int
	Seed            int64
	InitialCapital  float64
	ConfidenceLevel float64
}

// ResampleResult represents outcomes of shuffled trade sequences. It
// estimates how much of the observed equity depends on trade ordering.
type ResampleResult struct {
	Iterations          int                `json:"iterations"`
	MeanFinalCapital    float64            `json:"mean_final_capital"`
	StdFinalCapital     float64            `json:"std_final_capital"`
	MeanReturn          float64            `json:"mean_return"`
	VaR95               float64            `json:"var_95"`
	VaR99               float64            `json:"var_99"`
	ProbabilityOfProfit float64            `json:"probability_of_profit"`
	ProbabilityOfRuin   float64            `json:"probability_of_ruin"`
	ConfidenceIntervals map[string]float64 `json:"confidence_intervals"`
}

// ResampleTrades redraws the trade log with replacement and replays each
// sample's cash profits against the starting capital. Trade profits are
// treated as independent draws, which overstates dispersion when entries
// cluster, so the result is a stress estimate rather than a forecast.
func ResampleTrades(trades []models.Trade, cfg ResampleConfig) ResampleResult {
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1000
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	result := ResampleResult{Iterations: cfg.Iterations}
	if len(trades) == 0 || cfg.InitialCapital <= 0 {
		return result
	}

	rng := rand.New(rand.NewSource(seed))
	distribution := make([]float64, cfg.Iterations)

	for i := 0; i < cfg.Iterations; i++ {
		capital := cfg.InitialCapital
		for range trades {
			pick := trades[rng.Intn(len(trades))]
			capital += pick.CashProfit
			if capital <= 0 {
				capital = 0
				break
			}
		}
		distribution[i] = capital
	}

	mean, std := meanStd(distribution)
	result.MeanFinalCapital = mean
	result.StdFinalCapital = std
	result.MeanReturn = (mean - cfg.InitialCapital) / cfg.InitialCapital
	result.VaR95 = (percentile(distribution, 0.05) - cfg.InitialCapital) / cfg.InitialCapital
	result.VaR99 = (percentile(distribution, 0.01) - cfg.InitialCapital) / cfg.InitialCapital
	result.ProbabilityOfProfit = probabilityAbove(distribution, cfg.InitialCapital)
	result.ProbabilityOfRuin = probabilityAtOrBelow(distribution, 0)
	result.ConfidenceIntervals = confidenceIntervals(distribution, []float64{0.90, 0.95, 0.99})

	return result
}

func confidenceIntervals(distribution []float64, levels []float64) map[string]float64 {
	results := make(map[string]float64, len(levels))
	for _, level := range levels {
		p := (1.0 - level) / 2.0
		low := percentile(distribution, p)
		high := percentile(distribution, 1.0-p)
		results[formatPercent(level)] = high - low
	}
	return results
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean := average(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	idx := int(math.Floor(p * float64(len(sorted)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func probabilityAbove(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v > threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}

func formatPercent(level float64) string {
	return fmt.Sprintf("%.0f%%", level*100)
}

func probabilityAtOrBelow(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v <= threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}
