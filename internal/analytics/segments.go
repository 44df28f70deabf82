package analytics

import (
	"sort"
	"strconv"

	"github.com/cartloom/cartloom/internal/dataset"
)

// segmentCodes maps a two-digit recency/frequency score to a named
// behavioral segment. Built once; codes matching nothing fall to Others.
var segmentCodes = buildSegmentCodes()

func buildSegmentCodes() map[string]string {
	byName := []struct {
		name  string
		codes []string
	}{
		{"Champions", []string{"55", "54", "45"}},
		{"Loyal", []string{"53", "52", "51", "44", "43", "42", "35", "34", "33"}},
		{"Potential", []string{"41", "32", "31", "25", "24", "23"}},
		{"New", []string{"15", "14", "13", "12", "11"}},
		{"At Risk", []string{"50", "40", "30", "20", "10"}},
	}
	out := map[string]string{}
	for _, s := range byName {
		for _, code := range s.codes {
			// First matching entry wins.
			if _, ok := out[code]; !ok {
				out[code] = s.name
			}
		}
	}
	return out
}

const topCustomerLimit = 10

// Segment fills the customer_segments section with an RFM-style (monetary
// unused) segmentation keyed by transaction identifier. Without a usable
// timestamp column every recency is the constant placeholder 1.
func Segment(tbl *dataset.Table, doc *Document) {
	if !tbl.HasColumn(ColTransaction) || !tbl.HasColumn(ColItem) {
		return
	}

	frequency := map[string]int{}
	var order []string
	for i := 0; i < tbl.Len(); i++ {
		txn, _ := tbl.Cell(i, ColTransaction)
		if frequency[txn] == 0 {
			order = append(order, txn)
		}
		frequency[txn]++
	}
	if len(order) == 0 {
		return
	}

	recency := map[string]int{}
	if latest, max, ok := latestPerTransaction(tbl); ok {
		for _, txn := range order {
			if ts, ok := latest[txn]; ok {
				recency[txn] = int(max.Sub(ts).Hours() / 24)
			} else {
				recency[txn] = 1
			}
		}
	} else {
		for _, txn := range order {
			recency[txn] = 1
		}
	}

	recVals := make([]float64, len(order))
	freqVals := make([]float64, len(order))
	for i, txn := range order {
		recVals[i] = float64(recency[txn])
		freqVals[i] = float64(frequency[txn])
	}
	// Recency buckets are inverted: the most recent transactions score 5.
	recScore := quintileScores(recVals)
	freqScore := quintileScores(freqVals)

	counts := map[string]int{}
	recSum := map[string]float64{}
	freqSum := map[string]float64{}
	top := make([]TopCustomer, len(order))
	for i, txn := range order {
		r := 6 - recScore[i]
		f := freqScore[i]
		code := strconv.Itoa(r) + strconv.Itoa(f)
		name, ok := segmentCodes[code]
		if !ok {
			name = "Others"
		}
		counts[name]++
		recSum[name] += recVals[i]
		freqSum[name] += freqVals[i]
		top[i] = TopCustomer{
			Transaction: txn,
			Recency:     recency[txn],
			Frequency:   frequency[txn],
			Score:       code,
			Segment:     name,
		}
	}

	stats := make(map[string]SegmentStats, len(counts))
	for name, n := range counts {
		stats[name] = SegmentStats{
			Recency:   Float(recSum[name] / float64(n)),
			Frequency: Float(freqSum[name] / float64(n)),
		}
	}

	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Frequency != top[j].Frequency {
			return top[i].Frequency > top[j].Frequency
		}
		return top[i].Transaction < top[j].Transaction
	})
	if len(top) > topCustomerLimit {
		top = top[:topCustomerLimit]
	}

	doc.CustomerSegments = Segments{Counts: counts, Stats: stats, TopCustomers: top}
}

// quintileScores assigns each value a 1..5 quantile bucket by ascending
// rank. Ties resolve by input position, so the bucketing is stable and
// deterministic for a fixed input.
func quintileScores(vals []float64) []int {
	n := len(vals)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return vals[idx[a]] < vals[idx[b]] })
	scores := make([]int, n)
	for rank, i := range idx {
		scores[i] = rank*5/n + 1
	}
	return scores
}
