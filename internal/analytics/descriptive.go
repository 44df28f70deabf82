package analytics

import (
	"math"
	"sort"

	"github.com/cartloom/cartloom/internal/dataset"
)

// Descriptive fills the numeric_columns, categorical_columns, and
// correlations sections of doc from the cleaned table. Columns that cannot
// be classified are silently excluded; correlations are computed only when
// at least two numeric columns exist.
func Descriptive(tbl *dataset.Table, doc *Document) {
	var numeric []string
	for _, col := range tbl.Columns() {
		switch col.Kind {
		case dataset.KindNumeric:
			vals, ok := tbl.NumericColumn(col.Name)
			if !ok || len(vals) == 0 {
				continue
			}
			doc.NumericColumns[col.Name] = summarizeNumeric(vals)
			numeric = append(numeric, col.Name)
		case dataset.KindCategorical:
			vals, ok := tbl.Column(col.Name)
			if !ok || len(vals) == 0 {
				continue
			}
			doc.CategoricalColumns[col.Name] = summarizeCategorical(vals)
		}
	}

	if len(numeric) < 2 {
		return
	}
	series := make(map[string][]float64, len(numeric))
	for _, name := range numeric {
		vals, _ := tbl.NumericColumn(name)
		series[name] = vals
	}
	for _, a := range numeric {
		row := make(map[string]Float, len(numeric))
		for _, b := range numeric {
			if a == b {
				row[b] = 1.0
				continue
			}
			row[b] = Float(pearson(series[a], series[b]))
		}
		doc.Correlations[a] = row
	}
}

func summarizeNumeric(vals []float64) NumericSummary {
	mn, mx := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < mn {
			mn = v
		}
		if v > mx {
			mx = v
		}
	}
	return NumericSummary{
		Mean:   Float(mean(vals)),
		Median: Float(median(vals)),
		Std:    Float(sampleStd(vals)),
		Min:    Float(mn),
		Max:    Float(mx),
	}
}

func summarizeCategorical(vals []string) CategoricalSummary {
	counts := make(map[string]int, len(vals))
	// First-encountered order breaks ties for the mode.
	var order []string
	for _, v := range vals {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	mode := ""
	best := 0
	for _, v := range order {
		if counts[v] > best {
			best = counts[v]
			mode = v
		}
	}
	return CategoricalSummary{UniqueValues: len(counts), MostCommon: mode}
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func median(vals []float64) float64 {
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	n := len(cp)
	if n%2 == 1 {
		return cp[n/2]
	}
	return (cp[n/2-1] + cp[n/2]) / 2
}

// sampleStd is the n-1 convention; a single observation yields 0.
func sampleStd(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var sum float64
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)-1))
}

func pearson(a, b []float64) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return math.NaN()
	}
	ma, mb := mean(a), mean(b)
	var num, da2, db2 float64
	for i := range a {
		da := a[i] - ma
		db := b[i] - mb
		num += da * db
		da2 += da * da
		db2 += db * db
	}
	denom := math.Sqrt(da2 * db2)
	if denom == 0 {
		return math.NaN()
	}
	r := num / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}
