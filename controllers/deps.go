package controllers

import (
	"invoiceflow/accounting"
	"invoiceflow/archive"
	"invoiceflow/billing"
	"invoiceflow/cache"
	"invoiceflow/documents"

	"github.com/shopspring/decimal"
)

// Deps are the collaborators handlers share. Set once at startup with Setup.
type Deps struct {
	DiscountRate     decimal.Decimal
	DefaultTermsDays int
	Schemes          *cache.SchemeCache
	Archive          *archive.Store
	Renderer         documents.Renderer
	Grouper          documents.Grouper
	Syncer           *accounting.Syncer
}

var deps = Deps{
	DiscountRate:     billing.DefaultDiscountRate,
	DefaultTermsDays: 30,
	Renderer:         documents.NewRenderer(billing.NewFormatter("$")),
	Grouper:          documents.NewGrouper(nil),
	Syncer:           accounting.NewSyncer(nil),
}

func Setup(d Deps) {
	if d.Syncer == nil {
		d.Syncer = accounting.NewSyncer(nil)
	}
	if len(d.Grouper.Preferred) == 0 {
		d.Grouper = documents.NewGrouper(nil)
	}
	if d.Renderer.Format.Symbol == "" {
		d.Renderer = documents.NewRenderer(billing.NewFormatter("$"))
	}
	if d.DefaultTermsDays <= 0 {
		d.DefaultTermsDays = 30
	}
	deps = d
}
