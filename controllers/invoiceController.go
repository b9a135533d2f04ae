package controllers

import (
	"time"

	"invoiceflow/database"
	"invoiceflow/metrics"
	"invoiceflow/middlewares"
	"invoiceflow/models"
	"invoiceflow/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type statusInput struct {
	Status models.InvoiceStatus `json:"status" validate:"required,oneof=draft sent paid overdue"`
}

// PreviewInvoice prices the submitted rows without saving anything.
func PreviewInvoice(c *fiber.Ctx) error {
	var data invoiceInput
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	tenant, err := middlewares.CurrentTenant(c)
	if err != nil {
		return err
	}
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	res, err := computeInvoice(c.UserContext(), tenantDB, tenant, data)
	if err != nil {
		return err
	}
	metrics.InvoicesComputed.WithLabelValues(string(data.Type), "preview").Inc()

	return c.JSON(fiber.Map{
		"lines":     res.Projection.Lines,
		"ambiguous": res.Projection.Ambiguous,
		"totals":    res.Totals.Rounded(),
	})
}

func CreateInvoice(c *fiber.Ctx) error {
	var data invoiceInput
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizeDTO(&data)

	tenant, err := middlewares.CurrentTenant(c)
	if err != nil {
		return err
	}
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	date, err := parseInvoiceDate(data.Date)
	if err != nil {
		return err
	}

	data.Discount = explicitDiscount(nil, data)
	res, err := computeInvoice(c.UserContext(), tenantDB, tenant, data)
	if err != nil {
		return err
	}

	inv := models.Invoice{
		InvoiceNumber:    data.InvoiceNumber,
		Type:             data.Type,
		Date:             date,
		DiscountExplicit: data.Discount != nil,
		Status:           models.StatusDraft,
		Notes:            data.Notes,
		CreatedBy:        tenant.UserID,
		Items:            models.ItemsFromLines(res.Projection.Lines),
	}
	inv.ApplyTotals(res.Totals)
	if err := applyCounterparty(tenantDB, &inv, data); err != nil {
		return err
	}
	if inv.InvoiceNumber == "" {
		if inv.InvoiceNumber, err = nextInvoiceNumber(tenantDB, inv.Type); err != nil {
			return err
		}
	}

	if err := tenantDB.Create(&inv).Error; err != nil {
		return err
	}
	if err := writeVersion(tenantDB, &inv, "created", tenant.UserID); err != nil {
		return err
	}

	metrics.InvoicesComputed.WithLabelValues(string(inv.Type), "created").Inc()
	return c.Status(fiber.StatusCreated).JSON(inv)
}

// UpdateInvoice recomputes a draft invoice from the submitted rows and
// replaces all of its items.
func UpdateInvoice(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid invoice id")
	}

	var data invoiceInput
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizeDTO(&data)

	tenant, err := middlewares.CurrentTenant(c)
	if err != nil {
		return err
	}
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	inv, err := loadInvoice(tenantDB, id)
	if err != nil {
		return err
	}
	if inv.Status != models.StatusDraft {
		return fiber.NewError(fiber.StatusConflict, "only draft invoices can be edited")
	}
	if data.Type != inv.Type {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invoice type cannot change")
	}

	if data.Date != "" {
		if inv.Date, err = parseInvoiceDate(data.Date); err != nil {
			return err
		}
	}

	data.Discount = explicitDiscount(&inv, data)
	res, err := computeInvoice(c.UserContext(), tenantDB, tenant, data)
	if err != nil {
		return err
	}
	if err := applyCounterparty(tenantDB, &inv, data); err != nil {
		return err
	}

	if data.InvoiceNumber != "" {
		inv.InvoiceNumber = data.InvoiceNumber
	}
	inv.Notes = data.Notes
	inv.DiscountExplicit = data.Discount != nil
	inv.ApplyTotals(res.Totals)
	inv.Customer, inv.Supplier = nil, nil

	if err := tenantDB.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
		return err
	}
	items := models.ItemsFromLines(res.Projection.Lines)
	for i := range items {
		items[i].InvoiceID = inv.ID
	}
	if err := tenantDB.Create(&items).Error; err != nil {
		return err
	}

	inv.Items = nil
	if err := tenantDB.Omit("Items", "Customer", "Supplier").Save(&inv).Error; err != nil {
		return err
	}
	inv.Items = items

	if err := writeVersion(tenantDB, &inv, "updated", tenant.UserID); err != nil {
		return err
	}

	metrics.InvoicesComputed.WithLabelValues(string(inv.Type), "updated").Inc()
	return c.JSON(inv)
}

func GetInvoice(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid invoice id")
	}
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}
	inv, err := loadInvoice(tenantDB, id)
	if err != nil {
		return err
	}
	return c.JSON(inv)
}

func GetInvoices(c *fiber.Ctx) error {
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	offset, limit := utils.Page(c.Query("page"), c.Query("limit"), 200)
	q := tenantDB.Model(&models.Invoice{})
	if t := c.Query("type"); t != "" {
		q = q.Where("type = ?", t)
	}
	if s := c.Query("status"); s != "" {
		q = q.Where("status = ?", s)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return err
	}

	var invoices []models.Invoice
	if err := q.Preload("Customer").Preload("Supplier").
		Order("date DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&invoices).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"invoices": invoices,
		"total":    total,
		"message":  "success",
	})
}

func GetInvoiceVersions(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid invoice id")
	}
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}
	var versions []models.InvoiceVersion
	if err := tenantDB.Where("invoice_id = ?", id).Order("version_no").Find(&versions).Error; err != nil {
		return err
	}
	return c.JSON(versions)
}

func UpdateInvoiceStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid invoice id")
	}
	var data statusInput
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	tenant, err := middlewares.CurrentTenant(c)
	if err != nil {
		return err
	}
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	inv, err := loadInvoice(tenantDB, id)
	if err != nil {
		return err
	}
	if !inv.Status.CanTransitionTo(data.Status) {
		return fiber.NewError(fiber.StatusConflict, "cannot move invoice from "+string(inv.Status)+" to "+string(data.Status))
	}

	updates := map[string]any{"status": data.Status}
	if data.Status == models.StatusSent {
		updates["sent_at"] = lo.ToPtr(time.Now().UTC())
	}
	if err := tenantDB.Model(&inv).Updates(updates).Error; err != nil {
		return err
	}
	inv.Status = data.Status

	if err := writeVersion(tenantDB, &inv, "status", tenant.UserID); err != nil {
		return err
	}
	return c.JSON(inv)
}
