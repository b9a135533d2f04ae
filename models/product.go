package models

import (
	"time"

	"invoiceflow/billing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	Id             string          `json:"id" gorm:"primaryKey"`
	Name           string          `json:"name" gorm:"not null"`
	Description    string          `json:"description"`
	UnitPrice      decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	Category       string          `json:"category" gorm:"index"`
	ItemCode       string          `json:"item_code" gorm:"index"`
	PackingSize    string          `json:"packing_size"`
	GrossWeightKgs decimal.Decimal `json:"gross_weight_kgs" gorm:"type:numeric(10,3);not null;default:0"`
	NetWeightKgs   decimal.Decimal `json:"net_weight_kgs" gorm:"type:numeric(10,3);not null;default:0"`
	Active         bool            `json:"active" gorm:"not null;default:true"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (product *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if product.Id == "" {
		product.Id = uuid.NewString()
	}
	return
}

// Snapshot is the read-only view line items are priced from.
func (product Product) Snapshot() billing.Product {
	return billing.Product{
		ID:             product.Id,
		Name:           product.Name,
		BasePrice:      product.UnitPrice,
		Category:       product.Category,
		ItemCode:       product.ItemCode,
		PackingSize:    product.PackingSize,
		GrossWeightKgs: product.GrossWeightKgs,
		NetWeightKgs:   product.NetWeightKgs,
	}
}
