package insight

import (
	"strings"
	"testing"

	"github.com/cartloom/cartloom/internal/analytics"
	"github.com/cartloom/cartloom/internal/forecast"
)

func sampleDocument() *analytics.Document {
	doc := analytics.NewDocument()
	doc.NumericColumns["sales"] = analytics.NumericSummary{
		Mean: 137.5, Median: 140, Std: 13.23, Min: 120, Max: 150,
	}
	doc.CategoricalColumns["Item"] = analytics.CategoricalSummary{
		UniqueValues: 4, MostCommon: "Coffee",
	}
	doc.Correlations["sales"] = map[string]analytics.Float{"sales": 1, "units": 0.87}
	doc.Correlations["units"] = map[string]analytics.Float{"sales": 0.87, "units": 1}
	doc.TimePatterns.Hourly = map[string]int{"9": 10, "11": 25}
	doc.TimePatterns.Daily = map[string]int{"Monday": 12, "Saturday": 30}
	doc.TimePatterns.WeekdayWeekend = map[string]int{"weekday": 60, "weekend": 40}
	doc.ProductAssociations["Coffee"] = []analytics.Association{
		{Item: "Bread", Count: 12}, {Item: "Scone", Count: 7},
	}
	doc.Forecast = analytics.Forecast{Record: &forecast.Record{
		Dates:           []string{"2017-02-01"},
		Predicted:       []int{30},
		LowerBound:      []int{24},
		UpperBound:      []int{36},
		Trend:           -4.2,
		SeasonalPeriods: "weekly",
		PeakForecastDay: "2017-02-01",
	}}
	doc.CustomerSegments = analytics.Segments{
		Counts: map[string]int{"Champions": 3, "Others": 1},
	}
	return doc
}

func TestFallbackNarrativeCoversEverySection(t *testing.T) {
	text := FallbackNarrative(sampleDocument())

	wantFragments := []string{
		"Column 'sales' statistics:",
		"- Average: 137.50",
		"- Range: 120.00 to 150.00",
		"- Standard deviation: 13.23",
		"Column 'Item' analysis:",
		"- Most common value: Coffee",
		"Correlation Analysis:",
		"- sales vs units: 0.87",
		"Time Pattern Analysis:",
		"- Peak hour with most transactions: 11:00",
		"- Peak day with most transactions: Saturday",
		"- Distribution: 60 weekday transactions vs 40 weekend transactions",
		"Product Association Analysis:",
		"- Items frequently purchased with Coffee: Bread (12), Scone (7)",
		"Sales Forecast Analysis:",
		"- Sales trend: downward trend detected with 4.2% change over the forecast window",
		"- Seasonal patterns: weekly",
		"- Peak sales forecast: 2017-02-01",
		"Customer Segmentation Analysis:",
		"- Champions: 3 customers (75.0%)",
		"- Others: 1 customers (25.0%)",
	}
	for _, frag := range wantFragments {
		if !strings.Contains(text, frag) {
			t.Errorf("narrative missing %q\n---\n%s", frag, text)
		}
	}
}

func TestFallbackNarrativeEmptyDocument(t *testing.T) {
	text := FallbackNarrative(analytics.NewDocument())
	if text != "" {
		t.Errorf("narrative for empty document = %q, want empty", text)
	}
}

func TestPeakBucketTieBreaks(t *testing.T) {
	got, ok := peakBucket(map[string]int{"b": 5, "a": 5, "c": 3})
	if !ok || got != "a" {
		t.Errorf("peakBucket = %q, %v; want a", got, ok)
	}
	if _, ok := peakBucket(nil); ok {
		t.Error("peakBucket(nil) reported ok")
	}
}
