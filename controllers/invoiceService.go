package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"invoiceflow/billing"
	"invoiceflow/logger"
	"invoiceflow/metrics"
	"invoiceflow/models"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type lineInput struct {
	ProductID   string           `json:"product_id"`
	Quantity    int              `json:"quantity" validate:"gte=0"`
	UnitPrice   *decimal.Decimal `json:"unit_price" validate:"omitempty,gte=0"`
	Description *string          `json:"description"`
}

type invoiceInput struct {
	InvoiceNumber    string              `json:"invoice_number" validate:"max=64"`
	Type             billing.InvoiceType `json:"type" validate:"required,oneof=receivable payable"`
	CustomerID       *uint               `json:"customer_id"`
	SupplierID       *uint               `json:"supplier_id"`
	Date             string              `json:"date" validate:"omitempty,datetime=2006-01-02"`
	PaymentTermsDays *int                `json:"payment_terms_days" validate:"omitempty,gte=0,lte=365"`
	Discount         *decimal.Decimal    `json:"discount" validate:"omitempty,gte=0"`
	ResetDiscount    bool                `json:"reset_discount"`
	Freight          decimal.Decimal     `json:"freight" validate:"gte=0"`
	Notes            string              `json:"notes" validate:"max=2000"`
	Items            []lineInput         `json:"items" validate:"dive"`
}

// draftFor turns submitted rows into a draft. Known products are selected
// into their row so price, description, category and weights come from the
// product; explicit unit price or description then override. Unknown or
// inactive product ids leave the row without a product.
func draftFor(items []lineInput, products map[string]models.Product) billing.Draft {
	var d billing.Draft
	for i, in := range items {
		d = billing.Reduce(d, billing.AddEntry{Entry: billing.Entry{Quantity: in.Quantity}})
		if p, ok := products[strings.TrimSpace(in.ProductID)]; ok {
			d = billing.Reduce(d, billing.SelectProduct{Index: i, Product: p.Snapshot()})
		}
		if in.UnitPrice != nil {
			d = billing.Reduce(d, billing.SetUnitPrice{Index: i, UnitPrice: *in.UnitPrice})
		}
		if in.Description != nil {
			d = billing.Reduce(d, billing.SetDescription{Index: i, Description: *in.Description})
		}
	}
	return d
}

// explicitDiscount returns the absolute discount for a save, or nil when the
// default policy applies. A discount once set on inv is kept on later edits
// until the request replaces it or sets reset_discount.
func explicitDiscount(inv *models.Invoice, in invoiceInput) *decimal.Decimal {
	switch {
	case in.Discount != nil:
		return in.Discount
	case inv != nil && inv.DiscountExplicit && !in.ResetDiscount:
		d := inv.Discount
		return &d
	}
	return nil
}

// computed is a priced invoice ready to persist or preview.
type computed struct {
	Projection billing.Projection `json:"projection"`
	Totals     billing.Totals     `json:"totals"`
}

func computeInvoice(ctx context.Context, tx *gorm.DB, tenant models.Tenant, in invoiceInput) (computed, error) {
	ids := lo.Uniq(lo.FilterMap(in.Items, func(l lineInput, _ int) (string, bool) {
		id := strings.TrimSpace(l.ProductID)
		return id, id != ""
	}))
	products, err := productSnapshots(tx, ids)
	if err != nil {
		return computed{}, err
	}
	schemes, err := activeSchemes(ctx, tx, tenant)
	if err != nil {
		return computed{}, err
	}

	discount := billing.DiscountFor(in.Type, in.Discount, deps.DiscountRate)
	proj, totals, err := billing.Compute(draftFor(in.Items, products), schemes, discount, in.Freight)
	if err != nil {
		metrics.InvoicesComputed.WithLabelValues(string(in.Type), "rejected").Inc()
		return computed{Projection: proj}, err
	}
	if totals.Rounded().Total.IsNegative() {
		return computed{Projection: proj}, fiber.NewError(fiber.StatusUnprocessableEntity, "discount exceeds invoice amount")
	}

	if len(proj.Ambiguous) > 0 {
		metrics.AmbiguousSchemeMatches.Add(float64(len(proj.Ambiguous)))
		log := logger.WithTenant("billing", tenant.Schema, tenant.UserID)
		log.Warn().Ints("entries", proj.Ambiguous).Msg("several schemes matched; first created scheme applied")
	}
	free := lo.CountBy(proj.Lines, func(l billing.LineItem) bool { return l.IsFreeFromScheme() })
	metrics.FreeLinesGenerated.Add(float64(free))

	return computed{Projection: proj, Totals: totals}, nil
}

func parseInvoiceDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	return d, nil
}

// applyCounterparty checks the counterparty matches the invoice type and sets
// the payment terms and due date.
func applyCounterparty(tx *gorm.DB, inv *models.Invoice, in invoiceInput) error {
	var terms int
	switch in.Type {
	case billing.Receivable:
		if in.CustomerID == nil || in.SupplierID != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "receivable invoices need a customer_id and no supplier_id")
		}
		var customer models.Customer
		if err := tx.First(&customer, *in.CustomerID).Error; err != nil {
			return fmt.Errorf("customer %d: %w", *in.CustomerID, err)
		}
		inv.CustomerID, inv.SupplierID = in.CustomerID, nil
		terms = customer.PaymentTermsDays
	case billing.Payable:
		if in.SupplierID == nil || in.CustomerID != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "payable invoices need a supplier_id and no customer_id")
		}
		var supplier models.Supplier
		if err := tx.First(&supplier, *in.SupplierID).Error; err != nil {
			return fmt.Errorf("supplier %d: %w", *in.SupplierID, err)
		}
		inv.SupplierID, inv.CustomerID = in.SupplierID, nil
		terms = supplier.PaymentTermsDays
	}
	if in.PaymentTermsDays != nil {
		terms = *in.PaymentTermsDays
	}
	inv.PaymentTermsDays = terms
	inv.DueDate = billing.DueDate(inv.Date, terms)
	return nil
}

// nextInvoiceNumber numbers invoices per tenant and type.
func nextInvoiceNumber(tx *gorm.DB, t billing.InvoiceType) (string, error) {
	var n int64
	if err := tx.Model(&models.Invoice{}).Where("type = ?", t).Count(&n).Error; err != nil {
		return "", err
	}
	prefix := "INV"
	if t == billing.Payable {
		prefix = "BILL"
	}
	return fmt.Sprintf("%s-%05d", prefix, n+1), nil
}

// writeVersion stores an immutable snapshot of inv.
func writeVersion(tx *gorm.DB, inv *models.Invoice, reason, userID string) error {
	snap, err := json.Marshal(inv)
	if err != nil {
		return err
	}
	var last int
	if err := tx.Model(&models.InvoiceVersion{}).
		Where("invoice_id = ?", inv.ID).
		Select("COALESCE(MAX(version_no), 0)").
		Scan(&last).Error; err != nil {
		return err
	}
	return tx.Create(&models.InvoiceVersion{
		InvoiceID: inv.ID,
		VersionNo: last + 1,
		Reason:    reason,
		Snapshot:  datatypes.JSON(snap),
		CreatedBy: userID,
	}).Error
}

func loadInvoice(tx *gorm.DB, id int) (models.Invoice, error) {
	var inv models.Invoice
	err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Customer").
		Preload("Supplier").
		First(&inv, id).Error
	return inv, err
}
