// Package report shapes the pipeline output into the JSON envelope handed
// back to the caller.
package report

import (
	"strconv"
	"strings"

	"github.com/cartloom/cartloom/internal/analytics"
	"github.com/cartloom/cartloom/internal/dataset"
)

// SampleLimit caps the number of cleaned rows echoed back in the bundle.
const SampleLimit = 100

// Row is one echoed data row; numeric cells carry native numbers.
type Row map[string]any

// Bundle is the single artifact returned on success.
type Bundle struct {
	AnalysisID string              `json:"analysis_id"`
	Data       []Row               `json:"data"`
	Columns    []string            `json:"columns"`
	Insights   string              `json:"insights"`
	Statistics *analytics.Document `json:"statistics"`
	TotalRows  int                 `json:"total_rows"`
}

// ErrorEnvelope is the only failure shape: no partial statistics.
type ErrorEnvelope struct {
	Error      string         `json:"error"`
	Data       []Row          `json:"data"`
	Columns    []string       `json:"columns"`
	Insights   string         `json:"insights"`
	Statistics map[string]any `json:"statistics"`
}

// NewError builds the failure envelope for a fatal input error.
func NewError(err error) *ErrorEnvelope {
	return &ErrorEnvelope{
		Error:      "Error processing file: " + err.Error(),
		Data:       []Row{},
		Columns:    []string{},
		Insights:   "",
		Statistics: map[string]any{},
	}
}

// Build assembles the success envelope: the first limit cleaned rows
// (numeric columns converted to native numbers), the column list in source
// order, the statistics document, and the narrative. A non-positive limit
// falls back to SampleLimit.
func Build(analysisID string, tbl *dataset.Table, doc *analytics.Document, insights string, limit int) *Bundle {
	if limit <= 0 {
		limit = SampleLimit
	}
	numeric := map[string]bool{}
	for _, col := range tbl.Columns() {
		numeric[col.Name] = col.Kind == dataset.KindNumeric
	}
	cols := tbl.ColumnNames()
	timestamps := tbl.HasColumn(analytics.ColTimestamp)

	n := tbl.Len()
	if n > limit {
		n = limit
	}
	rows := make([]Row, n)
	for i := 0; i < n; i++ {
		cells := tbl.Row(i)
		row := make(Row, len(cols))
		for j, name := range cols {
			if numeric[name] {
				if v, err := strconv.ParseFloat(strings.TrimSpace(cells[j]), 64); err == nil {
					row[name] = v
					continue
				}
			}
			// Timestamps are echoed in ISO-8601 form.
			if timestamps && name == analytics.ColTimestamp {
				if ts, ok := dataset.ParseTime(cells[j]); ok {
					row[name] = ts.Format("2006-01-02T15:04:05")
					continue
				}
			}
			row[name] = cells[j]
		}
		rows[i] = row
	}

	return &Bundle{
		AnalysisID: analysisID,
		Data:       rows,
		Columns:    cols,
		Insights:   insights,
		Statistics: doc,
		TotalRows:  tbl.Len(),
	}
}
