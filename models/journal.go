package models

import (
	"time"

	"invoiceflow/billing"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// JournalEntry is the accounting projection of one invoice. Retried syncs
// update the same row.
type JournalEntry struct {
	ID          uint                `json:"id" gorm:"primaryKey"`
	InvoiceID   uint                `json:"invoice_id" gorm:"not null;uniqueIndex"`
	InvoiceType billing.InvoiceType `json:"invoice_type" gorm:"type:varchar(16);not null"`
	Lines       datatypes.JSON      `json:"lines" gorm:"type:jsonb;not null"`
	DebitTotal  decimal.Decimal     `json:"debit_total" gorm:"type:numeric(12,2)"`
	CreditTotal decimal.Decimal     `json:"credit_total" gorm:"type:numeric(12,2)"`
	ExternalRef string              `json:"external_ref" gorm:"size:128"`
	Revision    int                 `json:"revision" gorm:"not null;default:1"`
	SyncedAt    *time.Time          `json:"synced_at"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}
