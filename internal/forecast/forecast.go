// Package forecast predicts daily transaction volume over a fixed horizon
// through an ordered chain of strategies, each simpler and more widely
// applicable than the last.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Horizon is the fixed number of future days every strategy must emit.
const Horizon = 30

// ErrUnavailable signals a strategy cannot serve the given series (for
// example, not enough history). The chain moves on to the next tier.
var ErrUnavailable = errors.New("strategy unavailable for series")

// Day is one point of the daily transaction-count series.
type Day struct {
	Date  time.Time
	Count float64
}

// Record is the forecast result shared by all tiers: per-date point
// predictions with bounds, an overall trend percentage, the seasonal
// components detected, and the peak predicted date.
type Record struct {
	Dates           []string `json:"dates"`
	Predicted       []int    `json:"predicted"`
	LowerBound      []int    `json:"lower_bound"`
	UpperBound      []int    `json:"upper_bound"`
	Trend           float64  `json:"trend"`
	SeasonalPeriods string   `json:"seasonal_periods"`
	PeakForecastDay string   `json:"peak_forecast_day"`
}

// Strategy is one forecasting tier. Implementations return ErrUnavailable
// (possibly wrapped) when the series does not meet their requirements.
type Strategy interface {
	Name() string
	Forecast(days []Day, horizon int) (*Record, error)
}

// Chain is the ordered fallback sequence: seasonal regression, then
// exponential smoothing, then moving average.
func Chain() []Strategy {
	return []Strategy{seasonal{}, smoothing{}, movingAverage{}}
}

// Run feeds the series through the chain and returns the first successful
// record together with the name of the strategy that produced it.
func Run(days []Day, horizon int) (*Record, string, error) {
	if len(days) == 0 {
		return nil, "", fmt.Errorf("empty daily series: %w", ErrUnavailable)
	}
	if horizon <= 0 {
		horizon = Horizon
	}
	var lastErr error
	for _, s := range Chain() {
		rec, err := s.Forecast(days, horizon)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", s.Name(), err)
			continue
		}
		return rec, s.Name(), nil
	}
	return nil, "", lastErr
}

// buildRecord converts raw per-day predictions into a Record, applying the
// shared output rules: non-negative integer counts, lower <= predicted <=
// upper after rounding, ISO dates, trend computed over the raw window.
func buildRecord(start time.Time, raw, lower, upper []float64, seasonal string) *Record {
	n := len(raw)
	rec := &Record{
		Dates:           make([]string, n),
		Predicted:       make([]int, n),
		LowerBound:      make([]int, n),
		UpperBound:      make([]int, n),
		SeasonalPeriods: seasonal,
	}
	peak := 0
	for i := 0; i < n; i++ {
		rec.Dates[i] = start.AddDate(0, 0, i+1).Format("2006-01-02")
		p := roundCount(raw[i])
		lo := roundCount(lower[i])
		hi := roundCount(upper[i])
		if lo > p {
			lo = p
		}
		if hi < p {
			hi = p
		}
		rec.Predicted[i] = p
		rec.LowerBound[i] = lo
		rec.UpperBound[i] = hi
		if raw[i] > raw[peak] {
			peak = i
		}
	}
	if first := raw[0]; first > 0 {
		rec.Trend = (raw[n-1] - first) / first * 100
	}
	rec.PeakForecastDay = rec.Dates[peak]
	return rec
}

func roundCount(v float64) int {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return int(math.Round(v))
}

// pctBounds synthesizes +/-20% uncertainty bands for tiers without a
// native interval estimate.
func pctBounds(raw []float64) (lower, upper []float64) {
	lower = make([]float64, len(raw))
	upper = make([]float64, len(raw))
	for i, v := range raw {
		if v < 0 {
			v = 0
		}
		lower[i] = v * 0.8
		upper[i] = v * 1.2
	}
	return lower, upper
}
