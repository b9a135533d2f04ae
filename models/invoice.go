package models

import (
	"sort"
	"time"

	"invoiceflow/billing"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type InvoiceStatus string

const (
	StatusDraft   InvoiceStatus = "draft"
	StatusSent    InvoiceStatus = "sent"
	StatusPaid    InvoiceStatus = "paid"
	StatusOverdue InvoiceStatus = "overdue"
)

var statusTransitions = map[InvoiceStatus][]InvoiceStatus{
	StatusDraft:   {StatusSent},
	StatusSent:    {StatusPaid, StatusOverdue},
	StatusOverdue: {StatusPaid},
}

func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	return lo.Contains(statusTransitions[s], next)
}

// Invoice is the current/live state of a receivable or payable invoice.
type Invoice struct {
	ID            uint                `json:"id" gorm:"primaryKey"`
	InvoiceNumber string              `json:"invoice_number" gorm:"unique"`
	Type          billing.InvoiceType `json:"type" gorm:"type:varchar(16);not null;index"`

	// Exactly one counterparty is set, matching Type.
	CustomerID *uint     `json:"customer_id"`
	Customer   *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID;references:Id;constraint:OnDelete:RESTRICT"`
	SupplierID *uint     `json:"supplier_id"`
	Supplier   *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID;references:Id;constraint:OnDelete:RESTRICT"`

	Date             time.Time `json:"date" gorm:"type:date;not null"`
	DueDate          time.Time `json:"due_date" gorm:"type:date;not null"`
	PaymentTermsDays int       `json:"payment_terms_days"`

	// Live items (latest state), primary lines each followed by their free lines
	Items            []InvoiceItem   `json:"items" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Subtotal         decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2)"`
	Discount         decimal.Decimal `json:"discount" gorm:"type:numeric(12,2)"`
	DiscountExplicit bool            `json:"discount_explicit"`
	Freight          decimal.Decimal `json:"freight" gorm:"type:numeric(12,2)"`
	Total            decimal.Decimal `json:"total" gorm:"type:numeric(12,2)"`

	Status InvoiceStatus `json:"status" gorm:"type:varchar(16);not null;default:draft;index"`
	SentAt *time.Time    `json:"sent_at"`

	// Payments rollup
	PaidTotal decimal.Decimal `json:"paid_total" gorm:"type:numeric(12,2);not null;default:0"`

	Notes         string     `json:"notes"`
	QuickBooksRef *string    `json:"quickbooks_ref"`
	SyncedAt      *time.Time `json:"synced_at"`
	CreatedBy     string     `json:"created_by" gorm:"size:128"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type InvoiceItem struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	InvoiceID        uint            `json:"-" gorm:"index"`
	Position         int             `json:"position" gorm:"not null"`
	ProductID        string          `json:"product_id" gorm:"not null;index"`
	Product          Product         `json:"-" gorm:"foreignKey:ProductID;references:Id;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	Description      string          `json:"description" gorm:"not null"`
	Quantity         int             `json:"quantity" gorm:"not null"`
	UnitPrice        decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2)"`
	Amount           decimal.Decimal `json:"amount" gorm:"type:numeric(12,2)"`
	Category         string          `json:"category"`
	ItemCode         string          `json:"item_code"`
	PackingSize      string          `json:"packing_size"`
	GrossWeightKgs   decimal.Decimal `json:"gross_weight_kgs" gorm:"type:numeric(10,3)"`
	NetWeightKgs     decimal.Decimal `json:"net_weight_kgs" gorm:"type:numeric(10,3)"`
	IsFreeFromScheme bool            `json:"is_free_from_scheme" gorm:"not null;default:false"`
	SchemeID         *string         `json:"scheme_id"`
}

// ItemsFromLines maps computed lines onto rows, keeping their order.
func ItemsFromLines(lines []billing.LineItem) []InvoiceItem {
	return lo.Map(lines, func(l billing.LineItem, i int) InvoiceItem {
		item := InvoiceItem{
			Position:         i + 1,
			ProductID:        l.ProductID,
			Description:      l.Description,
			Quantity:         l.Quantity,
			UnitPrice:        l.UnitPrice,
			Amount:           l.Amount,
			Category:         l.Category,
			ItemCode:         l.ItemCode,
			PackingSize:      l.PackingSize,
			GrossWeightKgs:   l.GrossWeightKgs,
			NetWeightKgs:     l.NetWeightKgs,
			IsFreeFromScheme: l.IsFreeFromScheme(),
		}
		if l.SchemeID != "" {
			item.SchemeID = lo.ToPtr(l.SchemeID)
		}
		return item
	})
}

func (item InvoiceItem) Line() billing.LineItem {
	kind := billing.KindPrimary
	if item.IsFreeFromScheme {
		kind = billing.KindFree
	}
	return billing.LineItem{
		Kind:           kind,
		ProductID:      item.ProductID,
		Description:    item.Description,
		Quantity:       item.Quantity,
		UnitPrice:      item.UnitPrice,
		Amount:         item.Amount,
		Category:       item.Category,
		ItemCode:       item.ItemCode,
		PackingSize:    item.PackingSize,
		GrossWeightKgs: item.GrossWeightKgs,
		NetWeightKgs:   item.NetWeightKgs,
		SchemeID:       lo.FromPtr(item.SchemeID),
	}
}

// Lines returns the stored items in position order as billing lines.
func (inv Invoice) Lines() []billing.LineItem {
	items := append([]InvoiceItem(nil), inv.Items...)
	sortItems(items)
	return lo.Map(items, func(it InvoiceItem, _ int) billing.LineItem { return it.Line() })
}

func (inv Invoice) Totals() billing.Totals {
	return billing.Totals{
		Subtotal: inv.Subtotal,
		Discount: inv.Discount,
		Freight:  inv.Freight,
		Total:    inv.Total,
	}
}

// ApplyTotals stores totals at currency precision.
func (inv *Invoice) ApplyTotals(t billing.Totals) {
	r := t.Rounded()
	inv.Subtotal = r.Subtotal
	inv.Discount = r.Discount
	inv.Freight = r.Freight
	inv.Total = r.Total
}

func (inv Invoice) Outstanding() decimal.Decimal {
	return inv.Total.Sub(inv.PaidTotal)
}

func sortItems(items []InvoiceItem) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })
}

// Immutable snapshot
type InvoiceVersion struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	InvoiceID uint           `json:"invoice_id" gorm:"index:idx_invoice_versions_invoice_id_version_no,unique,priority:1"`
	VersionNo int            `json:"version_no" gorm:"not null;index:idx_invoice_versions_invoice_id_version_no,unique,priority:2"`
	Reason    string         `json:"reason" gorm:"type:VARCHAR(20)"` // "created" | "updated" | "status"
	Snapshot  datatypes.JSON `json:"snapshot" gorm:"type:jsonb"`
	CreatedBy string         `json:"created_by" gorm:"size:128"`
	CreatedAt time.Time      `json:"created_at"`
}

type Payment struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	InvoiceID uint            `json:"invoice_id" gorm:"index:idx_payments_invoice_paid_at,priority:1"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(12,2)"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
	Note      string          `json:"note"`
	PaidAt    time.Time       `json:"paid_at" gorm:"index:idx_payments_invoice_paid_at,priority:2"`
	CreatedAt time.Time       `json:"created_at"`
}
