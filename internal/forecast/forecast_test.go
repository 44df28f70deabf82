package forecast

import (
	"errors"
	"math"
	"testing"
	"time"
)

// makeDays builds a consecutive daily series starting 2017-01-01.
func makeDays(n int, count func(i int) float64) []Day {
	start := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	days := make([]Day, n)
	for i := range days {
		days[i] = Day{Date: start.AddDate(0, 0, i), Count: count(i)}
	}
	return days
}

// weeklyPattern is a noiseless trend-plus-weekday series every tier can fit.
func weeklyPattern(i int) float64 {
	base := []float64{20, 22, 24, 26, 28, 35, 30}
	return base[i%7] + 0.5*float64(i)
}

func checkRecordInvariants(t *testing.T, rec *Record, horizon int) {
	t.Helper()
	if len(rec.Dates) != horizon || len(rec.Predicted) != horizon ||
		len(rec.LowerBound) != horizon || len(rec.UpperBound) != horizon {
		t.Fatalf("record lengths = %d/%d/%d/%d, want %d",
			len(rec.Dates), len(rec.Predicted), len(rec.LowerBound), len(rec.UpperBound), horizon)
	}
	for i := range rec.Predicted {
		if rec.Predicted[i] < 0 || rec.LowerBound[i] < 0 || rec.UpperBound[i] < 0 {
			t.Errorf("negative count at %d: p=%d lo=%d hi=%d", i, rec.Predicted[i], rec.LowerBound[i], rec.UpperBound[i])
		}
		if rec.LowerBound[i] > rec.Predicted[i] || rec.Predicted[i] > rec.UpperBound[i] {
			t.Errorf("bound order violated at %d: lo=%d p=%d hi=%d", i, rec.LowerBound[i], rec.Predicted[i], rec.UpperBound[i])
		}
	}
	if _, err := time.Parse("2006-01-02", rec.Dates[0]); err != nil {
		t.Errorf("dates not ISO formatted: %s", rec.Dates[0])
	}
	found := false
	for _, d := range rec.Dates {
		if d == rec.PeakForecastDay {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("peak_forecast_day %s not among forecast dates", rec.PeakForecastDay)
	}
}

func TestRunPicksSeasonalTier(t *testing.T) {
	days := makeDays(56, weeklyPattern)
	rec, tier, err := Run(days, Horizon)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if tier != "seasonal" {
		t.Errorf("tier = %s, want seasonal", tier)
	}
	checkRecordInvariants(t, rec, Horizon)
	if rec.SeasonalPeriods != "weekly" {
		t.Errorf("seasonal_periods = %q, want weekly", rec.SeasonalPeriods)
	}
	if rec.Trend <= 0 {
		t.Errorf("trend = %v, want positive for rising series", rec.Trend)
	}
}

func TestRunFallsBackToMovingAverage(t *testing.T) {
	days := makeDays(5, func(i int) float64 { return 10 })
	rec, tier, err := Run(days, Horizon)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if tier != "moving_average" {
		t.Errorf("tier = %s, want moving_average", tier)
	}
	checkRecordInvariants(t, rec, Horizon)
	if rec.Trend != 0 {
		t.Errorf("trend = %v, want 0 for flat tier", rec.Trend)
	}
	if rec.SeasonalPeriods != "not detected" {
		t.Errorf("seasonal_periods = %q, want \"not detected\"", rec.SeasonalPeriods)
	}
	if rec.PeakForecastDay != rec.Dates[0] {
		t.Errorf("flat forecast peak = %s, want first date %s", rec.PeakForecastDay, rec.Dates[0])
	}
}

func TestRunEmptySeries(t *testing.T) {
	_, _, err := Run(nil, Horizon)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestSeasonalRejectsShortSeries(t *testing.T) {
	days := makeDays(10, weeklyPattern)
	_, err := seasonal{}.Forecast(days, Horizon)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestSeasonalFitsCleanWeeklySeries(t *testing.T) {
	days := makeDays(42, weeklyPattern)
	rec, err := seasonal{}.Forecast(days, Horizon)
	if err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}
	checkRecordInvariants(t, rec, Horizon)
	// A noiseless series must reproduce the generator on future days.
	last := days[len(days)-1].Date
	for h := 0; h < 7; h++ {
		want := weeklyPattern(len(days) + h)
		got := float64(rec.Predicted[h])
		if math.Abs(got-want) > 1.0 {
			t.Errorf("predicted[%d] = %v, want ~%v", h, got, want)
		}
		wantDate := last.AddDate(0, 0, h+1).Format("2006-01-02")
		if rec.Dates[h] != wantDate {
			t.Errorf("dates[%d] = %s, want %s", h, rec.Dates[h], wantDate)
		}
	}
}

func TestSeasonalDetectsYearlyComponent(t *testing.T) {
	days := makeDays(400, func(i int) float64 {
		return 50 + 10*math.Sin(2*math.Pi*float64(i)/365.25) + float64(i%7)
	})
	rec, err := seasonal{}.Forecast(days, Horizon)
	if err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}
	if rec.SeasonalPeriods != "weekly, yearly" {
		t.Errorf("seasonal_periods = %q, want \"weekly, yearly\"", rec.SeasonalPeriods)
	}
}

func TestSmoothingForecast(t *testing.T) {
	days := makeDays(14, weeklyPattern)
	rec, err := smoothing{}.Forecast(days, Horizon)
	if err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}
	checkRecordInvariants(t, rec, Horizon)
	if rec.SeasonalPeriods != "weekly" {
		t.Errorf("seasonal_periods = %q, want weekly", rec.SeasonalPeriods)
	}
}

func TestSmoothingRejectsShortSeries(t *testing.T) {
	days := makeDays(13, weeklyPattern)
	_, err := smoothing{}.Forecast(days, Horizon)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestMovingAverageShortWindow(t *testing.T) {
	days := makeDays(3, func(i int) float64 { return float64(10 * (i + 1)) })
	rec, err := movingAverage{}.Forecast(days, Horizon)
	if err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}
	checkRecordInvariants(t, rec, Horizon)
	// Average of 10, 20, 30.
	if rec.Predicted[0] != 20 {
		t.Errorf("predicted[0] = %d, want 20", rec.Predicted[0])
	}
}

func TestBuildRecordClampsBounds(t *testing.T) {
	start := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	raw := []float64{10.4, -3}
	lower := []float64{10.6, -5}
	upper := []float64{9.9, -1}
	rec := buildRecord(start, raw, lower, upper, "weekly")
	for i := range rec.Predicted {
		if rec.LowerBound[i] > rec.Predicted[i] || rec.Predicted[i] > rec.UpperBound[i] {
			t.Errorf("bound order violated at %d: %d/%d/%d", i, rec.LowerBound[i], rec.Predicted[i], rec.UpperBound[i])
		}
	}
	if rec.Predicted[1] != 0 {
		t.Errorf("negative raw rounded to %d, want 0", rec.Predicted[1])
	}
	if rec.Dates[0] != "2017-01-02" {
		t.Errorf("dates[0] = %s, want day after start", rec.Dates[0])
	}
}
