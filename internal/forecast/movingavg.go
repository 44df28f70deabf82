package forecast

// movingAverage is the last tier: the trailing 7-day (or shorter) average
// of the observed series replicated flat across the horizon. Trend is 0 and
// the peak day degenerates to the first forecast date.
type movingAverage struct{}

const movingWindow = 7

func (movingAverage) Name() string { return "moving_average" }

func (movingAverage) Forecast(days []Day, horizon int) (*Record, error) {
	n := len(days)
	window := movingWindow
	if n < window {
		window = n
	}
	var sum float64
	for _, d := range days[n-window:] {
		sum += d.Count
	}
	avg := sum / float64(window)

	raw := make([]float64, horizon)
	for i := range raw {
		raw[i] = avg
	}
	lower, upper := pctBounds(raw)
	rec := buildRecord(days[n-1].Date, raw, lower, upper, "not detected")
	rec.Trend = 0
	return rec, nil
}
