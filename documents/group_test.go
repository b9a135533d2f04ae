package documents

import (
	"bytes"
	"testing"
	"time"

	"invoiceflow/billing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headers(rows []Row) []string {
	var out []string
	for _, r := range rows {
		if r.Kind == RowCategoryHeader {
			out = append(out, r.Category)
		}
	}
	return out
}

func TestGroup_CategoryOrder(t *testing.T) {
	items := []billing.LineItem{
		{ProductID: "1", Description: "Chips", Category: "Snacks"},
		{ProductID: "2", Description: "Mango", Category: "Frozen Fruit"},
		{ProductID: "3", Description: "Peas", Category: "Frozen Bulk"},
	}
	assert.Equal(t, []string{"Frozen Bulk", "Frozen Fruit", "Snacks"}, headers(Group(items)))
}

func TestGroup_UnlistedCategoriesAlphabeticalAndUncategorized(t *testing.T) {
	items := []billing.LineItem{
		{ProductID: "1", Description: "x", Category: "Spices"},
		{ProductID: "2", Description: "y"},
		{ProductID: "3", Description: "z", Category: "Dairy"},
		{ProductID: "4", Description: "w", Category: "Frozen Vegetable"},
	}
	assert.Equal(t, []string{"Frozen Vegetable", "Dairy", "Spices", Uncategorized}, headers(Group(items)))
}

func TestGroup_SortsItemsAndNumbersAcrossCategories(t *testing.T) {
	items := []billing.LineItem{
		{ProductID: "1", Description: "strawberry", Category: "Frozen Fruit"},
		{ProductID: "2", Description: "Apple", Category: "Frozen Fruit"},
		{ProductID: "3", Description: "Blueberry", Category: "Frozen Fruit"},
		{ProductID: "4", Description: "Okra", Category: "Frozen Bulk"},
	}
	rows := Group(items)
	require.Len(t, rows, 6)

	assert.Equal(t, RowCategoryHeader, rows[0].Kind)
	assert.Equal(t, "Okra", rows[1].Line.Description)
	assert.Equal(t, 1, rows[1].Serial)
	assert.Equal(t, RowCategoryHeader, rows[2].Kind)
	assert.Equal(t, 0, rows[2].Serial)
	assert.Equal(t, []string{"Apple", "Blueberry", "strawberry"}, []string{rows[3].Line.Description, rows[4].Line.Description, rows[5].Line.Description})
	assert.Equal(t, []int{2, 3, 4}, []int{rows[3].Serial, rows[4].Serial, rows[5].Serial})
}

func TestGroup_CustomPreference(t *testing.T) {
	items := []billing.LineItem{
		{ProductID: "1", Description: "a", Category: "Frozen Bulk"},
		{ProductID: "2", Description: "b", Category: "Ice Cream"},
	}
	assert.Equal(t, []string{"Ice Cream", "Frozen Bulk"}, headers(NewGrouper([]string{"Ice Cream"}).Group(items)))
}

func TestSerialsContinueAcrossPages(t *testing.T) {
	items := append(lines(15, "Frozen Bulk"), lines(15, "Snacks")...)
	pages, err := Paginate(Group(items), TypePackingList)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	last := pages[1].Rows[len(pages[1].Rows)-1]
	assert.Equal(t, 30, last.Serial)
	assert.True(t, pages[1].ShowSummary)
}

func TestSummarize(t *testing.T) {
	items := []billing.LineItem{
		{ProductID: "1", Quantity: 30, GrossWeightKgs: decimal.RequireFromString("1.2"), NetWeightKgs: decimal.NewFromInt(1)},
		{ProductID: "1", Kind: billing.KindFree, Quantity: 2, GrossWeightKgs: decimal.RequireFromString("1.2"), NetWeightKgs: decimal.NewFromInt(1)},
	}
	s := Summarize(items)
	assert.Equal(t, 32, s.Quantity)
	assert.True(t, s.GrossWeight.Equal(decimal.RequireFromString("38.4")))
	assert.True(t, s.NetWeight.Equal(decimal.NewFromInt(32)))
}

func TestRender_AllDocumentTypes(t *testing.T) {
	items := []billing.LineItem{
		{Kind: billing.KindPrimary, ProductID: "p1", Description: "Green Peas", Quantity: 30, UnitPrice: decimal.NewFromInt(10), Amount: decimal.NewFromInt(300), Category: "Frozen Vegetable"},
		{Kind: billing.KindFree, ProductID: "p1", Description: "Green Peas - Buy 15 Get 1", Quantity: 2, Category: "Frozen Vegetable"},
	}
	r := NewRenderer(billing.NewFormatter("$"))

	for _, typ := range []DocumentType{TypeInvoice, TypePackingList, TypeShippingLabel} {
		t.Run(string(typ), func(t *testing.T) {
			doc, err := Build(typ, items, NewGrouper(nil))
			require.NoError(t, err)
			doc.Number = "INV-0001"
			doc.Date = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
			doc.Seller = Party{Name: "Polar Foods", City: "Pune"}
			doc.Buyer = Party{Name: "Corner Mart", Address: "1 Main St"}
			doc.Totals = billing.Totals{Subtotal: decimal.NewFromInt(300), Discount: decimal.NewFromInt(6), Freight: decimal.Zero, Total: decimal.NewFromInt(294)}

			var buf bytes.Buffer
			require.NoError(t, r.Render(&buf, doc))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
		})
	}
}
