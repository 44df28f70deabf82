package analytics

import (
	"math"

	"github.com/cartloom/cartloom/internal/dataset"
)

// The matrix is bounded to the first categorical columns in source order to
// keep the pairwise cost flat.
const maxCramerColumns = 4

// CategoricalCorrelation fills the categorical_correlation section with a
// symmetric bias-corrected Cramér's V matrix. A degenerate pair yields 0.0
// for that cell rather than aborting the matrix.
func CategoricalCorrelation(tbl *dataset.Table, doc *Document) {
	var selected []string
	for _, col := range tbl.Columns() {
		if col.Kind == dataset.KindCategorical {
			selected = append(selected, col.Name)
			if len(selected) == maxCramerColumns {
				break
			}
		}
	}
	if len(selected) < 2 {
		return
	}

	for _, name := range selected {
		doc.CategoricalCorrelation[name] = make(map[string]Float, len(selected))
	}
	for i, a := range selected {
		doc.CategoricalCorrelation[a][a] = 1.0
		for _, b := range selected[i+1:] {
			va, _ := tbl.Column(a)
			vb, _ := tbl.Column(b)
			v := Float(round3(cramersV(va, vb)))
			doc.CategoricalCorrelation[a][b] = v
			doc.CategoricalCorrelation[b][a] = v
		}
	}
}

// cramersV computes bias-corrected Cramér's V between two categorical
// series of equal length. Returns 0 for degenerate tables.
func cramersV(a, b []string) float64 {
	n := len(a)
	if n == 0 || n != len(b) {
		return 0
	}
	rowsIdx := map[string]int{}
	colsIdx := map[string]int{}
	for _, v := range a {
		if _, ok := rowsIdx[v]; !ok {
			rowsIdx[v] = len(rowsIdx)
		}
	}
	for _, v := range b {
		if _, ok := colsIdx[v]; !ok {
			colsIdx[v] = len(colsIdx)
		}
	}
	r, k := len(rowsIdx), len(colsIdx)
	if r < 2 || k < 2 || n < 2 {
		return 0
	}

	table := make([][]float64, r)
	for i := range table {
		table[i] = make([]float64, k)
	}
	rowTotals := make([]float64, r)
	colTotals := make([]float64, k)
	for i := range a {
		ri, ci := rowsIdx[a[i]], colsIdx[b[i]]
		table[ri][ci]++
		rowTotals[ri]++
		colTotals[ci]++
	}

	var chi2 float64
	for i := 0; i < r; i++ {
		for j := 0; j < k; j++ {
			expected := rowTotals[i] * colTotals[j] / float64(n)
			if expected == 0 {
				continue
			}
			d := table[i][j] - expected
			chi2 += d * d / expected
		}
	}

	fn := float64(n)
	phi2 := chi2 / fn
	phi2corr := math.Max(0, phi2-float64((k-1)*(r-1))/(fn-1))
	rcorr := float64(r) - float64((r-1)*(r-1))/(fn-1)
	kcorr := float64(k) - float64((k-1)*(k-1))/(fn-1)
	denom := math.Min(kcorr-1, rcorr-1)
	if denom <= 0 {
		return 0
	}
	v := math.Sqrt(phi2corr / denom)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
