package analytics

import (
	"strconv"
	"time"

	"github.com/cartloom/cartloom/internal/dataset"
	"github.com/cartloom/cartloom/internal/forecast"
)

// Temporal fills the time_patterns section. It requires the timestamp and
// transaction columns; rows with unparseable timestamps are excluded from
// this section only. The weekday/weekend and period-of-day splits are
// emitted when those label columns are present.
func Temporal(tbl *dataset.Table, doc *Document) {
	if !tbl.HasColumn(ColTimestamp) || !tbl.HasColumn(ColTransaction) {
		return
	}
	hourly := map[string]map[string]struct{}{}
	daily := map[string]map[string]struct{}{}
	monthly := map[string]map[string]struct{}{}
	parsedAny := false
	for i := 0; i < tbl.Len(); i++ {
		raw, _ := tbl.Cell(i, ColTimestamp)
		ts, ok := dataset.ParseTime(raw)
		if !ok {
			continue
		}
		parsedAny = true
		txn, _ := tbl.Cell(i, ColTransaction)
		addDistinct(hourly, strconv.Itoa(ts.Hour()), txn)
		addDistinct(daily, ts.Weekday().String(), txn)
		addDistinct(monthly, ts.Month().String(), txn)
	}
	if !parsedAny {
		return
	}
	doc.TimePatterns.Hourly = distinctCounts(hourly)
	doc.TimePatterns.Daily = distinctCounts(daily)
	doc.TimePatterns.Monthly = distinctCounts(monthly)

	for _, split := range []struct {
		col string
		dst *map[string]int
	}{
		{ColWeekdayWeekend, &doc.TimePatterns.WeekdayWeekend},
		{ColPeriodDay, &doc.TimePatterns.PeriodDay},
	} {
		if !tbl.HasColumn(split.col) {
			continue
		}
		buckets := map[string]map[string]struct{}{}
		for i := 0; i < tbl.Len(); i++ {
			label, _ := tbl.Cell(i, split.col)
			txn, _ := tbl.Cell(i, ColTransaction)
			addDistinct(buckets, label, txn)
		}
		*split.dst = distinctCounts(buckets)
	}
}

// DailySeries aggregates distinct transaction counts per calendar day for
// the forecaster. Calendar gaps between the first and last observed day are
// filled with zero counts so the series is regular. Returns nil when the
// prerequisite columns are missing or nothing parses.
func DailySeries(tbl *dataset.Table) []forecast.Day {
	if !tbl.HasColumn(ColTimestamp) || !tbl.HasColumn(ColTransaction) {
		return nil
	}
	perDay := map[string]map[string]struct{}{}
	var first, last time.Time
	for i := 0; i < tbl.Len(); i++ {
		raw, _ := tbl.Cell(i, ColTimestamp)
		ts, ok := dataset.ParseTime(raw)
		if !ok {
			continue
		}
		day := ts.Truncate(24 * time.Hour)
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if last.IsZero() || day.After(last) {
			last = day
		}
		txn, _ := tbl.Cell(i, ColTransaction)
		addDistinct(perDay, day.Format("2006-01-02"), txn)
	}
	if first.IsZero() {
		return nil
	}
	var out []forecast.Day
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		out = append(out, forecast.Day{Date: d, Count: float64(len(perDay[key]))})
	}
	return out
}

// latestPerTransaction returns each transaction's most recent timestamp and
// the overall dataset maximum. ok is false when no timestamp parses.
func latestPerTransaction(tbl *dataset.Table) (map[string]time.Time, time.Time, bool) {
	if !tbl.HasColumn(ColTimestamp) || !tbl.HasColumn(ColTransaction) {
		return nil, time.Time{}, false
	}
	latest := map[string]time.Time{}
	var max time.Time
	for i := 0; i < tbl.Len(); i++ {
		raw, _ := tbl.Cell(i, ColTimestamp)
		ts, ok := dataset.ParseTime(raw)
		if !ok {
			continue
		}
		txn, _ := tbl.Cell(i, ColTransaction)
		if cur, ok := latest[txn]; !ok || ts.After(cur) {
			latest[txn] = ts
		}
		if ts.After(max) {
			max = ts
		}
	}
	if max.IsZero() {
		return nil, time.Time{}, false
	}
	return latest, max, true
}

func addDistinct(buckets map[string]map[string]struct{}, key, member string) {
	set := buckets[key]
	if set == nil {
		set = map[string]struct{}{}
		buckets[key] = set
	}
	set[member] = struct{}{}
}

func distinctCounts(buckets map[string]map[string]struct{}) map[string]int {
	out := make(map[string]int, len(buckets))
	for k, set := range buckets {
		out[k] = len(set)
	}
	return out
}
