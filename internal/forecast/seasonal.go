package forecast

import (
	"fmt"
	"math"
	"time"
)

// seasonal is the first tier: least-squares regression of daily counts on a
// linear trend plus weekly day-of-week terms, with yearly Fourier terms
// added when the series spans a full year.
type seasonal struct{}

const (
	seasonalMinDays = 14
	yearlyMinSpan   = 365
	yearLength      = 365.25
	yearlyHarmonics = 2
	// 95% interval multiplier on the residual standard deviation.
	boundZ = 1.96
)

func (seasonal) Name() string { return "seasonal" }

func (s seasonal) Forecast(days []Day, horizon int) (*Record, error) {
	n := len(days)
	if n < seasonalMinDays {
		return nil, fmt.Errorf("need %d days, have %d: %w", seasonalMinDays, n, ErrUnavailable)
	}
	start := days[0].Date
	yearly := days[n-1].Date.Sub(start).Hours()/24 >= yearlyMinSpan

	p := 2 + 6 // intercept, trend, six day-of-week dummies
	if yearly {
		p += 2 * yearlyHarmonics
	}
	if n <= p {
		return nil, fmt.Errorf("series shorter than model terms: %w", ErrUnavailable)
	}

	x := make([][]float64, n)
	y := make([]float64, n)
	for i, d := range days {
		x[i] = seasonalFeatures(d.Date, start, yearly, p)
		y[i] = d.Count
	}
	beta, err := leastSquares(x, y, p)
	if err != nil {
		return nil, err
	}

	var sse float64
	for i := range x {
		r := y[i] - dot(x[i], beta)
		sse += r * r
	}
	sigma := math.Sqrt(sse / float64(n-p))

	last := days[n-1].Date
	raw := make([]float64, horizon)
	lower := make([]float64, horizon)
	upper := make([]float64, horizon)
	for h := 0; h < horizon; h++ {
		future := last.AddDate(0, 0, h+1)
		v := dot(seasonalFeatures(future, start, yearly, p), beta)
		if v < 0 {
			v = 0
		}
		raw[h] = v
		lower[h] = v - boundZ*sigma
		upper[h] = v + boundZ*sigma
	}

	label := "weekly"
	if yearly {
		label = "weekly, yearly"
	}
	return buildRecord(last, raw, lower, upper, label), nil
}

// seasonalFeatures builds one design-matrix row: intercept, day index,
// Monday..Saturday dummies (Sunday is the baseline), and optional yearly
// sine/cosine harmonics.
func seasonalFeatures(date, start time.Time, yearly bool, p int) []float64 {
	row := make([]float64, p)
	row[0] = 1
	row[1] = date.Sub(start).Hours() / 24
	if wd := int(date.Weekday()); wd > 0 {
		row[1+wd] = 1
	}
	if yearly {
		doy := float64(date.YearDay())
		for k := 1; k <= yearlyHarmonics; k++ {
			angle := 2 * math.Pi * float64(k) * doy / yearLength
			row[8+2*(k-1)] = math.Sin(angle)
			row[8+2*(k-1)+1] = math.Cos(angle)
		}
	}
	return row
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// leastSquares solves the normal equations X'X beta = X'y by Gaussian
// elimination with partial pivoting. A singular system is reported as an
// error so the chain can fall through.
func leastSquares(x [][]float64, y []float64, p int) ([]float64, error) {
	ata := make([][]float64, p)
	atb := make([]float64, p)
	for i := range ata {
		ata[i] = make([]float64, p)
	}
	for r := range x {
		for i := 0; i < p; i++ {
			atb[i] += x[r][i] * y[r]
			for j := i; j < p; j++ {
				ata[i][j] += x[r][i] * x[r][j]
			}
		}
	}
	for i := 1; i < p; i++ {
		for j := 0; j < i; j++ {
			ata[i][j] = ata[j][i]
		}
	}

	for col := 0; col < p; col++ {
		pivot := col
		for r := col + 1; r < p; r++ {
			if math.Abs(ata[r][col]) > math.Abs(ata[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(ata[pivot][col]) < 1e-10 {
			return nil, fmt.Errorf("singular design matrix: %w", ErrUnavailable)
		}
		ata[col], ata[pivot] = ata[pivot], ata[col]
		atb[col], atb[pivot] = atb[pivot], atb[col]
		for r := col + 1; r < p; r++ {
			f := ata[r][col] / ata[col][col]
			for c := col; c < p; c++ {
				ata[r][c] -= f * ata[col][c]
			}
			atb[r] -= f * atb[col]
		}
	}
	beta := make([]float64, p)
	for i := p - 1; i >= 0; i-- {
		v := atb[i]
		for j := i + 1; j < p; j++ {
			v -= ata[i][j] * beta[j]
		}
		beta[i] = v / ata[i][i]
	}
	return beta, nil
}
