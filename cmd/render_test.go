package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"invoiceflow/billing"
	"invoiceflow/documents"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderJSON = `{
  "type": "receivable",
  "number": "INV-00042",
  "date": "2024-03-01",
  "terms_days": 14,
  "seller": {"name": "Polar Foods", "city": "Hamburg"},
  "buyer": {"name": "Corner Market", "city": "Bremen"},
  "entries": [
    {"product_id": "p-peas", "description": "Green Peas 1kg", "quantity": 10, "unit_price": "3.00", "category": "Frozen Vegetable",
     "gross_weight_kgs": "1.05", "net_weight_kgs": "1.00"},
    {"product_id": "", "description": "", "quantity": 0}
  ],
  "schemes": [
    {"id": "s1", "name": "5+1 Peas", "product_ids": ["p-peas"], "buy_quantity": 5, "free_quantity": 1, "active": true}
  ],
  "freight": "5"
}`

func TestRenderDocument_Invoice(t *testing.T) {
	var in renderInput
	require.NoError(t, json.Unmarshal([]byte(orderJSON), &in))

	var buf bytes.Buffer
	doc, err := renderDocument(&buf, in, documents.TypeInvoice, billing.DefaultDiscountRate,
		documents.NewRenderer(billing.NewFormatter("$")), documents.NewGrouper(nil))
	require.NoError(t, err)

	require.Len(t, doc.Lines, 2)
	assert.True(t, doc.Lines[1].IsFreeFromScheme())
	assert.Equal(t, 2, doc.Lines[1].Quantity)
	assert.Equal(t, 12, doc.Summary.Quantity)

	// 30.00 - 0.60 + 5.00
	assert.True(t, decimal.RequireFromString("34.40").Equal(doc.Totals.Total), doc.Totals.Total.String())
	assert.Equal(t, "2024-03-15", doc.DueDate.Format("2006-01-02"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestRenderDocument_ShippingLabelIsOnePage(t *testing.T) {
	var in renderInput
	require.NoError(t, json.Unmarshal([]byte(orderJSON), &in))

	var buf bytes.Buffer
	doc, err := renderDocument(&buf, in, documents.TypeShippingLabel, billing.DefaultDiscountRate,
		documents.NewRenderer(billing.NewFormatter("$")), documents.NewGrouper(nil))
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	assert.True(t, doc.Pages[0].ShowSummary)
}

func TestRenderDocument_Rejects(t *testing.T) {
	r := documents.NewRenderer(billing.NewFormatter("$"))
	g := documents.NewGrouper(nil)

	_, err := renderDocument(&bytes.Buffer{}, renderInput{Type: "credit-note"}, documents.TypeInvoice, decimal.Zero, r, g)
	assert.Error(t, err)

	_, err = renderDocument(&bytes.Buffer{}, renderInput{Date: "01.03.2024"}, documents.TypeInvoice, decimal.Zero, r, g)
	assert.Error(t, err)

	incomplete := renderInput{Entries: []billing.Entry{{ProductID: "p1", Quantity: 3}}}
	_, err = renderDocument(&bytes.Buffer{}, incomplete, documents.TypeInvoice, decimal.Zero, r, g)
	var ve *billing.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []int{0}, ve.Lines)
}
