package analytics

import (
	"sort"

	"github.com/cartloom/cartloom/internal/dataset"
)

// Association mining limits. The anchor cap bounds the scan to a constant
// multiple of dataset size regardless of catalog breadth.
const (
	DefaultMinSupport  = 10
	maxAnchorItems     = 30
	maxAssociationsPer = 5
)

// Associations fills product_associations: for each sufficiently frequent
// item (support >= minSupport, capped to the most frequent anchors), the
// top co-occurring items across shared transactions.
func Associations(tbl *dataset.Table, doc *Document, minSupport int) {
	if !tbl.HasColumn(ColItem) || !tbl.HasColumn(ColTransaction) {
		return
	}
	if minSupport <= 0 {
		minSupport = DefaultMinSupport
	}

	itemCounts := map[string]int{}
	txnItems := map[string][]string{}
	itemTxns := map[string][]string{}
	seenTxn := map[string]map[string]struct{}{}
	for i := 0; i < tbl.Len(); i++ {
		item, _ := tbl.Cell(i, ColItem)
		txn, _ := tbl.Cell(i, ColTransaction)
		itemCounts[item]++
		txnItems[txn] = append(txnItems[txn], item)
		set := seenTxn[item]
		if set == nil {
			set = map[string]struct{}{}
			seenTxn[item] = set
		}
		if _, dup := set[txn]; !dup {
			set[txn] = struct{}{}
			itemTxns[item] = append(itemTxns[item], txn)
		}
	}

	type freq struct {
		item  string
		count int
	}
	var popular []freq
	for item, count := range itemCounts {
		if count >= minSupport {
			popular = append(popular, freq{item, count})
		}
	}
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].count != popular[j].count {
			return popular[i].count > popular[j].count
		}
		return popular[i].item < popular[j].item
	})
	if len(popular) > maxAnchorItems {
		popular = popular[:maxAnchorItems]
	}

	for _, anchor := range popular {
		related := map[string]int{}
		for _, txn := range itemTxns[anchor.item] {
			for _, other := range txnItems[txn] {
				if other != anchor.item {
					related[other]++
				}
			}
		}
		if len(related) == 0 {
			continue
		}
		ranked := make([]Association, 0, len(related))
		for item, count := range related {
			ranked = append(ranked, Association{Item: item, Count: count})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].Count != ranked[j].Count {
				return ranked[i].Count > ranked[j].Count
			}
			return ranked[i].Item < ranked[j].Item
		})
		if len(ranked) > maxAssociationsPer {
			ranked = ranked[:maxAssociationsPer]
		}
		doc.ProductAssociations[anchor.item] = ranked
	}
}
