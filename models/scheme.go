package models

import (
	"time"

	"invoiceflow/billing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type Scheme struct {
	Id           string          `json:"id" gorm:"primaryKey"`
	Name         string          `json:"name" gorm:"not null"`
	BuyQuantity  int             `json:"buy_quantity" gorm:"not null"`
	FreeQuantity int             `json:"free_quantity" gorm:"not null"`
	Active       bool            `json:"active" gorm:"not null;default:true"`
	Products     []SchemeProduct `json:"products" gorm:"foreignKey:SchemeID;references:Id;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SchemeProduct links a scheme to one product it applies to.
type SchemeProduct struct {
	SchemeID  string  `json:"-" gorm:"primaryKey"`
	ProductID string  `json:"product_id" gorm:"primaryKey"`
	Product   Product `json:"-" gorm:"foreignKey:ProductID;references:Id;constraint:OnUpdate:RESTRICT,OnDelete:CASCADE"`
}

func (scheme *Scheme) BeforeCreate(tx *gorm.DB) (err error) {
	if scheme.Id == "" {
		scheme.Id = uuid.NewString()
	}
	return
}

func (scheme Scheme) ProductIDs() []string {
	return lo.Map(scheme.Products, func(p SchemeProduct, _ int) string { return p.ProductID })
}

func (scheme Scheme) ToBilling() billing.Scheme {
	return billing.Scheme{
		ID:           scheme.Id,
		Name:         scheme.Name,
		ProductIDs:   scheme.ProductIDs(),
		BuyQuantity:  scheme.BuyQuantity,
		FreeQuantity: scheme.FreeQuantity,
		Active:       scheme.Active,
		CreatedAt:    scheme.CreatedAt,
	}
}

// SchemeProductsFor builds the join rows for a set of product ids, dropping duplicates.
func SchemeProductsFor(productIDs []string) []SchemeProduct {
	return lo.Map(lo.Uniq(productIDs), func(id string, _ int) SchemeProduct {
		return SchemeProduct{ProductID: id}
	})
}
