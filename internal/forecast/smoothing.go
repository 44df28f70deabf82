package forecast

import "fmt"

// smoothing is the second tier: additive Holt-Winters with a 7-day season.
// It has no native interval estimate, so bounds are +/-20% of the point
// forecast.
type smoothing struct{}

const (
	smoothingSeason  = 7
	smoothingMinDays = 2 * smoothingSeason

	// Fixed smoothing constants; the fit is deliberately simple since this
	// tier only runs when the seasonal regression cannot.
	hwAlpha = 0.2
	hwBeta  = 0.1
	hwGamma = 0.3
)

func (smoothing) Name() string { return "smoothing" }

func (smoothing) Forecast(days []Day, horizon int) (*Record, error) {
	n := len(days)
	if n < smoothingMinDays {
		return nil, fmt.Errorf("need %d days, have %d: %w", smoothingMinDays, n, ErrUnavailable)
	}

	y := make([]float64, n)
	for i, d := range days {
		y[i] = d.Count
	}

	var first, second float64
	for i := 0; i < smoothingSeason; i++ {
		first += y[i]
		second += y[smoothingSeason+i]
	}
	first /= smoothingSeason
	second /= smoothingSeason

	level := first
	trend := (second - first) / smoothingSeason
	season := make([]float64, smoothingSeason)
	for i := 0; i < smoothingSeason; i++ {
		season[i] = y[i] - first
	}

	for t := smoothingSeason; t < n; t++ {
		si := t % smoothingSeason
		prevLevel := level
		level = hwAlpha*(y[t]-season[si]) + (1-hwAlpha)*(level+trend)
		trend = hwBeta*(level-prevLevel) + (1-hwBeta)*trend
		season[si] = hwGamma*(y[t]-level) + (1-hwGamma)*season[si]
	}

	raw := make([]float64, horizon)
	for h := 1; h <= horizon; h++ {
		v := level + float64(h)*trend + season[(n+h-1)%smoothingSeason]
		if v < 0 {
			v = 0
		}
		raw[h-1] = v
	}
	lower, upper := pctBounds(raw)
	return buildRecord(days[n-1].Date, raw, lower, upper, "weekly"), nil
}
