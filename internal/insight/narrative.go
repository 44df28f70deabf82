package insight

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cartloom/cartloom/internal/analytics"
)

// FallbackNarrative deterministically synthesizes an insight text from the
// statistics document alone. It is the resilience path exercised whenever
// the external collaborator is unavailable, so it covers every section the
// collaborator would have been asked about.
func FallbackNarrative(doc *analytics.Document) string {
	var b strings.Builder

	for _, col := range sortedKeys(doc.NumericColumns) {
		s := doc.NumericColumns[col]
		fmt.Fprintf(&b, "Column '%s' statistics:\n", col)
		fmt.Fprintf(&b, "- Average: %.2f\n", float64(s.Mean))
		fmt.Fprintf(&b, "- Range: %.2f to %.2f\n", float64(s.Min), float64(s.Max))
		fmt.Fprintf(&b, "- Standard deviation: %.2f\n\n", float64(s.Std))
	}

	for _, col := range sortedKeys(doc.CategoricalColumns) {
		s := doc.CategoricalColumns[col]
		fmt.Fprintf(&b, "Column '%s' analysis:\n", col)
		fmt.Fprintf(&b, "- Number of unique values: %d\n", s.UniqueValues)
		fmt.Fprintf(&b, "- Most common value: %s\n\n", s.MostCommon)
	}

	if len(doc.Correlations) > 0 {
		b.WriteString("Correlation Analysis:\n")
		for _, a := range sortedKeys(doc.Correlations) {
			for _, c := range sortedKeys(doc.Correlations[a]) {
				if a < c {
					fmt.Fprintf(&b, "- %s vs %s: %.2f\n", a, c, float64(doc.Correlations[a][c]))
				}
			}
		}
	}

	tp := doc.TimePatterns
	if len(tp.Hourly) > 0 || len(tp.Daily) > 0 || len(tp.WeekdayWeekend) > 0 {
		b.WriteString("\nTime Pattern Analysis:\n")
		if hour, ok := peakBucket(tp.Hourly); ok {
			fmt.Fprintf(&b, "- Peak hour with most transactions: %s:00\n", hour)
		}
		if day, ok := peakBucket(tp.Daily); ok {
			fmt.Fprintf(&b, "- Peak day with most transactions: %s\n", day)
		}
		if len(tp.WeekdayWeekend) > 0 {
			fmt.Fprintf(&b, "- Distribution: %d weekday transactions vs %d weekend transactions\n",
				tp.WeekdayWeekend["weekday"], tp.WeekdayWeekend["weekend"])
		}
	}

	if len(doc.ProductAssociations) > 0 {
		b.WriteString("\nProduct Association Analysis:\n")
		anchors := sortedKeys(doc.ProductAssociations)
		if len(anchors) > 5 {
			anchors = anchors[:5]
		}
		for _, anchor := range anchors {
			assoc := doc.ProductAssociations[anchor]
			if len(assoc) > 3 {
				assoc = assoc[:3]
			}
			parts := make([]string, len(assoc))
			for i, a := range assoc {
				parts[i] = fmt.Sprintf("%s (%d)", a.Item, a.Count)
			}
			fmt.Fprintf(&b, "- Items frequently purchased with %s: %s\n", anchor, strings.Join(parts, ", "))
		}
	}

	if fc := doc.Forecast.Record; fc != nil {
		b.WriteString("\nSales Forecast Analysis:\n")
		direction := "upward"
		if fc.Trend < 0 {
			direction = "downward"
		}
		trend := fc.Trend
		if trend < 0 {
			trend = -trend
		}
		fmt.Fprintf(&b, "- Sales trend: %s trend detected with %.1f%% change over the forecast window\n", direction, trend)
		fmt.Fprintf(&b, "- Seasonal patterns: %s\n", fc.SeasonalPeriods)
		fmt.Fprintf(&b, "- Peak sales forecast: %s\n", fc.PeakForecastDay)
	}

	if len(doc.CustomerSegments.Counts) > 0 {
		b.WriteString("\nCustomer Segmentation Analysis:\n")
		total := 0
		for _, n := range doc.CustomerSegments.Counts {
			total += n
		}
		for _, seg := range sortedKeys(doc.CustomerSegments.Counts) {
			n := doc.CustomerSegments.Counts[seg]
			fmt.Fprintf(&b, "- %s: %d customers (%.1f%%)\n", seg, n, float64(n)/float64(total)*100)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// peakBucket returns the key with the highest count; ties resolve to the
// lexically smallest key so the narrative is deterministic.
func peakBucket(m map[string]int) (string, bool) {
	if len(m) == 0 {
		return "", false
	}
	best := ""
	bestN := -1
	for _, k := range sortedKeys(m) {
		if m[k] > bestN {
			best, bestN = k, m[k]
		}
	}
	return best, true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
