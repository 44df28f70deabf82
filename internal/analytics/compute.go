package analytics

import (
	"github.com/cartloom/cartloom/internal/dataset"
	"github.com/cartloom/cartloom/internal/forecast"
)

// Options tunes the analytics pipeline.
type Options struct {
	// MinSupport is the minimum occurrence count for association anchors.
	MinSupport int
	// ForecastHorizon is the number of future days to predict.
	ForecastHorizon int
	// Logf receives diagnostics for non-fatal section failures; nil
	// discards them. Diagnostics never reach the statistics payload.
	Logf func(format string, args ...any)
}

// DefaultOptions returns the pipeline defaults.
func DefaultOptions() Options {
	return Options{
		MinSupport:      DefaultMinSupport,
		ForecastHorizon: forecast.Horizon,
	}
}

// Compute runs every analytics section over the cleaned table and returns
// the statistics document. Sections are isolated: a panic or failure in one
// leaves its key empty and never aborts the others.
func Compute(tbl *dataset.Table, opt Options) *Document {
	if opt.MinSupport <= 0 {
		opt.MinSupport = DefaultMinSupport
	}
	if opt.ForecastHorizon <= 0 {
		opt.ForecastHorizon = forecast.Horizon
	}
	logf := opt.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	doc := NewDocument()
	run := func(name string, fn func()) {
		defer func() {
			if r := recover(); r != nil {
				logf("section %s failed: %v", name, r)
			}
		}()
		fn()
	}

	run("descriptive", func() { Descriptive(tbl, doc) })
	run("time_patterns", func() {
		Temporal(tbl, doc)
		if doc.TimePatterns.Hourly == nil {
			logf("time patterns unavailable: missing or unparseable %s/%s", ColTimestamp, ColTransaction)
		}
	})
	run("product_associations", func() { Associations(tbl, doc, opt.MinSupport) })
	run("categorical_correlation", func() { CategoricalCorrelation(tbl, doc) })
	run("anomalies", func() { DetectAnomalies(tbl, doc) })
	run("forecast", func() {
		days := DailySeries(tbl)
		if days == nil {
			logf("forecast skipped: no daily series")
			return
		}
		rec, tier, err := forecast.Run(days, opt.ForecastHorizon)
		if err != nil {
			logf("forecast failed: %v", err)
			return
		}
		logf("forecast produced by %s tier", tier)
		doc.Forecast = Forecast{Record: rec}
	})
	run("customer_segments", func() { Segment(tbl, doc) })
	return doc
}
