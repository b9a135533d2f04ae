package controllers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"invoiceflow/billing"
	"invoiceflow/documents"
	"invoiceflow/middlewares"
	"invoiceflow/models"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func peas() models.Product {
	return models.Product{
		Id:             "p-peas",
		Name:           "Green Peas 1kg",
		UnitPrice:      decimal.NewFromInt(10),
		Category:       "Frozen Vegetable",
		ItemCode:       "GP-1",
		GrossWeightKgs: decimal.RequireFromString("1.05"),
		NetWeightKgs:   decimal.NewFromInt(1),
		Active:         true,
	}
}

func TestDraftFor_UsesProductSnapshot(t *testing.T) {
	products := map[string]models.Product{"p-peas": peas()}
	d := draftFor([]lineInput{
		{ProductID: "p-peas", Quantity: 30},
		{ProductID: "p-peas", Quantity: 2, UnitPrice: lo.ToPtr(decimal.NewFromInt(8)), Description: lo.ToPtr("Peas (promo)")},
	}, products)

	require.Len(t, d.Entries, 2)
	assert.Equal(t, "Green Peas 1kg", d.Entries[0].Description)
	assert.Equal(t, "Frozen Vegetable", d.Entries[0].Category)
	assert.True(t, d.Entries[0].UnitPrice.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "Peas (promo)", d.Entries[1].Description)
	assert.True(t, d.Entries[1].UnitPrice.Equal(decimal.NewFromInt(8)))
}

func TestDraftFor_UnknownProductIsIncomplete(t *testing.T) {
	d := draftFor([]lineInput{
		{ProductID: "p-peas", Quantity: 1},
		{ProductID: "missing", Quantity: 3, Description: lo.ToPtr("ghost")},
		{},
	}, map[string]models.Product{"p-peas": peas()})

	p := billing.Project(d, nil)
	assert.Equal(t, []int{1}, p.Incomplete)
	assert.Len(t, p.Lines, 1)
}

func TestDraftFor_ComputesSchemeAndTotals(t *testing.T) {
	schemes := []billing.Scheme{{ID: "s1", Name: "Buy 15 Get 1", ProductIDs: []string{"p-peas"}, BuyQuantity: 15, FreeQuantity: 1, Active: true}}
	d := draftFor([]lineInput{{ProductID: "p-peas", Quantity: 30}}, map[string]models.Product{"p-peas": peas()})

	discount := billing.DiscountFor(billing.Receivable, nil, billing.DefaultDiscountRate)
	proj, totals, err := billing.Compute(d, schemes, discount, decimal.Zero)
	require.NoError(t, err)
	require.Len(t, proj.Lines, 2)
	assert.Equal(t, 2, proj.Lines[1].Quantity)
	assert.Equal(t, "294.00", totals.Rounded().Total.StringFixed(2))

	items := models.ItemsFromLines(proj.Lines)
	assert.True(t, items[1].IsFreeFromScheme)
	assert.True(t, items[1].Amount.IsZero())
}

func TestExplicitDiscount_SurvivesEdits(t *testing.T) {
	d50 := decimal.NewFromInt(50)
	explicit := &models.Invoice{Type: billing.Receivable, Discount: d50, DiscountExplicit: true}
	byRate := &models.Invoice{Type: billing.Receivable, Discount: decimal.NewFromInt(6)}

	tests := []struct {
		name         string
		inv          *models.Invoice
		in           invoiceInput
		wantExplicit bool
		wantTotal    string
	}{
		{"create without discount", nil, invoiceInput{}, false, "294.00"},
		{"create with discount", nil, invoiceInput{Discount: &d50}, true, "250.00"},
		{"edit keeps stored discount", explicit, invoiceInput{Notes: "call before delivery"}, true, "250.00"},
		{"edit replaces discount", explicit, invoiceInput{Discount: lo.ToPtr(decimal.NewFromInt(20))}, true, "280.00"},
		{"edit resets to rate", explicit, invoiceInput{ResetDiscount: true}, false, "294.00"},
		{"edit of rate invoice stays on rate", byRate, invoiceInput{}, false, "294.00"},
	}

	draft := draftFor([]lineInput{{ProductID: "p-peas", Quantity: 30}}, map[string]models.Product{"p-peas": peas()})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Type = billing.Receivable
			got := explicitDiscount(tt.inv, tt.in)
			assert.Equal(t, tt.wantExplicit, got != nil)

			_, totals, err := billing.Compute(draft, nil, billing.DiscountFor(tt.in.Type, got, billing.DefaultDiscountRate), decimal.Zero)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, totals.Rounded().Total.StringFixed(2))
		})
	}

	// the stored invoice is not aliased
	got := explicitDiscount(explicit, invoiceInput{})
	*got = decimal.Zero
	assert.True(t, explicit.Discount.Equal(d50))
}

func TestSchemaNameFor(t *testing.T) {
	tests := map[string]string{
		"Polar Foods":     "polar_foods",
		"  ACME GmbH & Co": "acme_gmbh__co",
		"7 Seas":          "t_7_seas",
	}
	for in, want := range tests {
		got, err := schemaNameFor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := schemaNameFor("!!!")
	assert.Error(t, err)
}

func TestParseInvoiceDate(t *testing.T) {
	d, err := parseInvoiceDate("2024-02-08")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 8, 0, 0, 0, 0, time.UTC), d)

	_, err = parseInvoiceDate("08/02/2024")
	assert.Error(t, err)

	today, err := parseInvoiceDate("")
	require.NoError(t, err)
	assert.Equal(t, 0, today.Hour())
}

func TestParties(t *testing.T) {
	company := models.Company{CompanyName: "Polar Foods", City: "Pune", ContactPerson: models.ContactPerson{PhoneNumber: "123"}}
	assert.Equal(t, documents.Party{Name: "Polar Foods", City: "Pune", Phone: "123"}, companyParty(company))
	assert.Equal(t, "Corner Mart", customerParty(models.Customer{CompanyName: "Corner Mart"}).Name)
	assert.Equal(t, "Cold Chain Ltd", supplierParty(models.Supplier{CompanyName: "Cold Chain Ltd"}).Name)
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	app.Post("/invoice", CreateInvoice)
	app.Post("/invoice/preview", PreviewInvoice)
	app.Get("/invoices/:id/documents/:type", GetInvoiceDocument)
	return app
}

func TestHandlers_RejectBeforeTouchingDatabase(t *testing.T) {
	app := newApp()

	tests := []struct {
		name, method, path, body string
		code                     int
	}{
		{"missing type", fiber.MethodPost, "/invoice", `{"items":[]}`, fiber.StatusUnprocessableEntity},
		{"bad type", fiber.MethodPost, "/invoice/preview", `{"type":"credit"}`, fiber.StatusUnprocessableEntity},
		{"negative freight", fiber.MethodPost, "/invoice", `{"type":"receivable","freight":"-1"}`, fiber.StatusUnprocessableEntity},
		{"bad date", fiber.MethodPost, "/invoice", `{"type":"receivable","date":"8 Feb"}`, fiber.StatusUnprocessableEntity},
		{"malformed body", fiber.MethodPost, "/invoice", `{`, fiber.StatusBadRequest},
		{"unknown document", fiber.MethodGet, "/invoices/1/documents/receipt", "", fiber.StatusBadRequest},
		{"bad invoice id", fiber.MethodGet, "/invoices/x/documents/invoice", "", fiber.StatusBadRequest},
		{"no tenant", fiber.MethodPost, "/invoice/preview", `{"type":"payable"}`, fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}
}
