package controllers

import (
	"invoiceflow/database"
	"invoiceflow/middlewares"
	"invoiceflow/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm/clause"
)

// SyncInvoice pushes the invoice's journal entry to the bookkeeping system.
// Repeated calls update the same entry.
func SyncInvoice(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid invoice id")
	}
	if _, err := middlewares.CurrentTenant(c); err != nil {
		return err
	}
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	var inv models.Invoice
	if err := tenantDB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, id).Error; err != nil {
		return err
	}
	if inv.Status == models.StatusDraft {
		return fiber.NewError(fiber.StatusConflict, "draft invoices are not synced")
	}

	entry, err := deps.Syncer.Sync(c.UserContext(), tenantDB, &inv)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"journal_entry":  entry,
		"quickbooks_ref": inv.QuickBooksRef,
	})
}
