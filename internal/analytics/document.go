package analytics

import (
	"encoding/json"
	"math"

	"github.com/cartloom/cartloom/internal/forecast"
)

// Well-known columns of transaction exports. Sections that need one of
// these degrade to an empty result when it is absent.
const (
	ColTimestamp      = "date_time"
	ColTransaction    = "Transaction"
	ColItem           = "Item"
	ColPeriodDay      = "period_day"
	ColWeekdayWeekend = "weekday_weekend"
)

// Float marshals non-finite values as JSON null instead of failing or
// leaking a language-specific sentinel.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// NumericSummary holds descriptive statistics for one numeric column.
// Std uses the sample (n-1) convention; a single-value column yields 0.
type NumericSummary struct {
	Mean   Float `json:"mean"`
	Median Float `json:"median"`
	Std    Float `json:"std"`
	Min    Float `json:"min"`
	Max    Float `json:"max"`
}

// CategoricalSummary holds cardinality and mode for one categorical column.
type CategoricalSummary struct {
	UniqueValues int    `json:"unique_values"`
	MostCommon   string `json:"most_common"`
}

// TimePatterns counts distinct transactions per derived time bucket.
// Bucket maps are keyed by hour string ("0".."23"), weekday name, month
// name, or whatever labels the source columns carry.
type TimePatterns struct {
	Hourly         map[string]int `json:"hourly,omitempty"`
	Daily          map[string]int `json:"daily,omitempty"`
	Monthly        map[string]int `json:"monthly,omitempty"`
	WeekdayWeekend map[string]int `json:"weekday_weekend,omitempty"`
	PeriodDay      map[string]int `json:"period_day,omitempty"`
}

// Association is one co-occurring item with its joint transaction count.
type Association struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

// LargeTransactions flags transactions whose item count exceeds
// mean + 2*std.
type LargeTransactions struct {
	Description  string         `json:"description"`
	Transactions map[string]int `json:"transactions"`
}

// RareItems lists items occurring exactly once across the dataset.
type RareItems struct {
	Description string   `json:"description"`
	Items       []string `json:"items"`
}

// UnusualHours counts transactions in the 22:00-05:59 window, keyed by
// hour string.
type UnusualHours struct {
	Description string         `json:"description"`
	Counts      map[string]int `json:"counts"`
}

// Anomalies groups the three independent anomaly checks; absent checks
// are omitted from the JSON object.
type Anomalies struct {
	LargeTransactions *LargeTransactions `json:"large_transactions,omitempty"`
	RareItems         *RareItems         `json:"rare_items,omitempty"`
	UnusualHours      *UnusualHours      `json:"unusual_hours,omitempty"`
}

// SegmentStats holds per-segment mean recency and frequency.
type SegmentStats struct {
	Recency   Float `json:"recency"`
	Frequency Float `json:"frequency"`
}

// TopCustomer is one of the highest-frequency transactions.
type TopCustomer struct {
	Transaction string `json:"transaction"`
	Recency     int    `json:"recency"`
	Frequency   int    `json:"frequency"`
	Score       string `json:"rfm_score"`
	Segment     string `json:"segment"`
}

// Segments is the RFM segmentation result.
type Segments struct {
	Counts       map[string]int          `json:"segments,omitempty"`
	Stats        map[string]SegmentStats `json:"segment_stats,omitempty"`
	TopCustomers []TopCustomer           `json:"top_customers,omitempty"`
}

// Forecast wraps a forecast record so an absent forecast marshals as an
// empty object rather than null.
type Forecast struct {
	*forecast.Record
}

func (f Forecast) MarshalJSON() ([]byte, error) {
	if f.Record == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(f.Record)
}

// Document is the statistics tree returned to the caller. Every top-level
// key is always present; each section is independently optional and may be
// an empty structure when its prerequisite columns are missing or its
// computation failed.
type Document struct {
	NumericColumns         map[string]NumericSummary     `json:"numeric_columns"`
	CategoricalColumns     map[string]CategoricalSummary `json:"categorical_columns"`
	Correlations           map[string]map[string]Float   `json:"correlations"`
	TimePatterns           TimePatterns                  `json:"time_patterns"`
	ProductAssociations    map[string][]Association      `json:"product_associations"`
	CategoricalCorrelation map[string]map[string]Float   `json:"categorical_correlation"`
	Anomalies              Anomalies                     `json:"anomalies"`
	Forecast               Forecast                      `json:"forecast"`
	CustomerSegments       Segments                      `json:"customer_segments"`
}

// NewDocument returns a document with every map section initialized so the
// fixed top-level keys marshal even when sections stay empty.
func NewDocument() *Document {
	return &Document{
		NumericColumns:         map[string]NumericSummary{},
		CategoricalColumns:     map[string]CategoricalSummary{},
		Correlations:           map[string]map[string]Float{},
		ProductAssociations:    map[string][]Association{},
		CategoricalCorrelation: map[string]map[string]Float{},
	}
}
