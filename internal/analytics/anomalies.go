package analytics

import (
	"fmt"
	"strconv"

	"github.com/cartloom/cartloom/internal/dataset"
)

const maxRareItems = 10

// DetectAnomalies fills the anomalies section with three independent
// checks: oversized transactions, singleton items, and off-hours activity.
// Each check is skipped, not failed, when its prerequisite is missing.
func DetectAnomalies(tbl *dataset.Table, doc *Document) {
	if !tbl.HasColumn(ColTransaction) || !tbl.HasColumn(ColItem) {
		return
	}

	sizes := map[string]int{}
	itemCounts := map[string]int{}
	var itemOrder []string
	for i := 0; i < tbl.Len(); i++ {
		txn, _ := tbl.Cell(i, ColTransaction)
		item, _ := tbl.Cell(i, ColItem)
		sizes[txn]++
		if itemCounts[item] == 0 {
			itemOrder = append(itemOrder, item)
		}
		itemCounts[item]++
	}

	if len(sizes) > 0 {
		vals := make([]float64, 0, len(sizes))
		for _, s := range sizes {
			vals = append(vals, float64(s))
		}
		threshold := mean(vals) + 2*sampleStd(vals)
		large := map[string]int{}
		for txn, s := range sizes {
			if float64(s) > threshold {
				large[txn] = s
			}
		}
		if len(large) > 0 {
			doc.Anomalies.LargeTransactions = &LargeTransactions{
				Description:  fmt.Sprintf("Transactions with unusually high number of items (>%.1f)", threshold),
				Transactions: large,
			}
		}
	}

	var rare []string
	for _, item := range itemOrder {
		if itemCounts[item] == 1 {
			rare = append(rare, item)
			if len(rare) == maxRareItems {
				break
			}
		}
	}
	if len(rare) > 0 {
		doc.Anomalies.RareItems = &RareItems{
			Description: "Items that appear only once in the dataset",
			Items:       rare,
		}
	}

	if tbl.HasColumn(ColTimestamp) {
		offHours := map[string]int{}
		for i := 0; i < tbl.Len(); i++ {
			raw, _ := tbl.Cell(i, ColTimestamp)
			ts, ok := dataset.ParseTime(raw)
			if !ok {
				continue
			}
			h := ts.Hour()
			if h >= 22 || h < 6 {
				offHours[strconv.Itoa(h)]++
			}
		}
		if len(offHours) > 0 {
			doc.Anomalies.UnusualHours = &UnusualHours{
				Description: "Transactions during unusual hours (10PM-6AM)",
				Counts:      offHours,
			}
		}
	}
}
