package documents

import (
	"sort"
	"strings"

	"invoiceflow/billing"

	"github.com/samber/lo"
)

// Uncategorized is the bucket for lines without a category.
const Uncategorized = "Uncategorized"

// DefaultCategoryOrder lists the categories printed first on packing lists.
var DefaultCategoryOrder = []string{"Frozen Bulk", "Frozen Vegetable", "Frozen Fruit"}

type RowKind string

const (
	RowCategoryHeader RowKind = "category-header"
	RowLineItem       RowKind = "line-item"
)

// Row is one printed table row: a category header or a numbered line item.
type Row struct {
	Kind     RowKind           `json:"kind"`
	Category string            `json:"category,omitempty"`
	Serial   int               `json:"serial,omitempty"`
	Line     *billing.LineItem `json:"line,omitempty"`
}

// ItemRows numbers lines in their given order, without category headers.
func ItemRows(lines []billing.LineItem) []Row {
	rows := make([]Row, 0, len(lines))
	for i := range lines {
		l := lines[i]
		rows = append(rows, Row{Kind: RowLineItem, Category: l.Category, Serial: i + 1, Line: &l})
	}
	return rows
}

// Grouper orders lines by category for packing lists.
type Grouper struct {
	Preferred []string
}

// NewGrouper orders categories by preferred first; nil uses the default order.
func NewGrouper(preferred []string) Grouper {
	if len(preferred) == 0 {
		preferred = DefaultCategoryOrder
	}
	return Grouper{Preferred: preferred}
}

// Group buckets lines by category, sorts each bucket by description and
// emits a header row before every bucket. Serial numbers run across the
// whole document and skip headers.
func (g Grouper) Group(lines []billing.LineItem) []Row {
	buckets := lo.GroupBy(lines, func(l billing.LineItem) string {
		if c := strings.TrimSpace(l.Category); c != "" {
			return c
		}
		return Uncategorized
	})

	rows := make([]Row, 0, len(lines)+len(buckets))
	serial := 0
	for _, category := range g.order(lo.Keys(buckets)) {
		items := buckets[category]
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].Description) < strings.ToLower(items[j].Description)
		})

		rows = append(rows, Row{Kind: RowCategoryHeader, Category: category})
		for i := range items {
			serial++
			l := items[i]
			rows = append(rows, Row{Kind: RowLineItem, Category: category, Serial: serial, Line: &l})
		}
	}
	return rows
}

// order puts preferred categories first in list order, then the rest
// alphabetically.
func (g Grouper) order(categories []string) []string {
	rank := make(map[string]int, len(g.Preferred))
	for i, c := range g.Preferred {
		if _, ok := rank[c]; !ok {
			rank[c] = i
		}
	}

	sort.Slice(categories, func(i, j int) bool {
		ri, iPreferred := rank[categories[i]]
		rj, jPreferred := rank[categories[j]]
		switch {
		case iPreferred && jPreferred:
			return ri < rj
		case iPreferred != jPreferred:
			return iPreferred
		}
		li, lj := strings.ToLower(categories[i]), strings.ToLower(categories[j])
		if li != lj {
			return li < lj
		}
		return categories[i] < categories[j]
	})
	return categories
}

// Group orders lines with the default category preference.
func Group(lines []billing.LineItem) []Row {
	return NewGrouper(DefaultCategoryOrder).Group(lines)
}
