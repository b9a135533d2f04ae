package utils

import (
	"testing"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type productPatch struct {
	Name        *string          `json:"name"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	GrossWeight *decimal.Decimal `json:"gross_weight_kgs" scale:"3"`
	Category    *string          `json:"category"`
}

func TestNormalizePtrDTO(t *testing.T) {
	p := productPatch{
		Name:        lo.ToPtr("  Peas "),
		UnitPrice:   lo.ToPtr(decimal.RequireFromString("10.005")),
		GrossWeight: lo.ToPtr(decimal.RequireFromString("1.23456")),
	}
	NormalizePtrDTO(&p)
	assert.Equal(t, "Peas", *p.Name)
	assert.Equal(t, "10.01", p.UnitPrice.String())
	assert.Equal(t, "1.235", p.GrossWeight.String())
	assert.Nil(t, p.Category)
}

func TestNormalizeDTO(t *testing.T) {
	dto := struct {
		Name  string
		Price decimal.Decimal
	}{Name: " a ", Price: decimal.RequireFromString("1.999")}
	NormalizeDTO(&dto)
	assert.Equal(t, "a", dto.Name)
	assert.Equal(t, "2", dto.Price.String())
}

func TestUpdatesFromPtrDTO(t *testing.T) {
	p := productPatch{Name: lo.ToPtr("Peas"), Category: lo.ToPtr("Frozen Bulk")}
	got := UpdatesFromPtrDTO(&p, map[string]string{"category": "category_name"})
	assert.Equal(t, map[string]any{"name": "Peas", "category_name": "Frozen Bulk"}, got)
}

func TestPage(t *testing.T) {
	off, lim := Page("", "", 100)
	assert.Equal(t, 0, off)
	assert.Equal(t, 50, lim)

	off, lim = Page("3", "20", 100)
	assert.Equal(t, 40, off)
	assert.Equal(t, 20, lim)

	_, lim = Page("1", "1000", 100)
	assert.Equal(t, 100, lim)
}
