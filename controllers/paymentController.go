package controllers

import (
	"time"

	"invoiceflow/database"
	"invoiceflow/middlewares"
	"invoiceflow/models"
	"invoiceflow/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

type paymentInput struct {
	Amount    decimal.Decimal `json:"amount" validate:"gt=0"`
	Method    string          `json:"method" validate:"required,max=32"`
	Reference string          `json:"reference" validate:"max=128"`
	Note      string          `json:"note" validate:"max=500"`
	PaidAt    *time.Time      `json:"paid_at"`
}

// CreatePayment records a payment and rolls it into the invoice. The invoice
// becomes paid once the paid total covers its total.
func CreatePayment(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid invoice id")
	}

	var data paymentInput
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

	var inv models.Invoice
	if err := tenantDB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, id).Error; err != nil {
		return err
	}
	if inv.Status != models.StatusSent && inv.Status != models.StatusOverdue {
		return fiber.NewError(fiber.StatusConflict, "payments can only be recorded on sent or overdue invoices")
	}
	if data.Amount.GreaterThan(inv.Outstanding()) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "payment exceeds outstanding amount")
	}

	paidAt := time.Now().UTC()
	if data.PaidAt != nil {
		paidAt = data.PaidAt.UTC()
	}
	payment := models.Payment{
		InvoiceID: inv.ID,
		Amount:    data.Amount,
		Method:    data.Method,
		Reference: data.Reference,
		Note:      data.Note,
		PaidAt:    paidAt,
	}
	if err := tenantDB.Create(&payment).Error; err != nil {
		return err
	}

	inv.PaidTotal = utils.RoundMoney(inv.PaidTotal.Add(payment.Amount))
	updates := map[string]any{"paid_total": inv.PaidTotal}
	if inv.PaidTotal.GreaterThanOrEqual(inv.Total) {
		inv.Status = models.StatusPaid
		updates["status"] = models.StatusPaid
	}
	if err := tenantDB.Model(&inv).Updates(updates).Error; err != nil {
		return err
	}
	if inv.Status == models.StatusPaid {
		if err := writeVersion(tenantDB, &inv, "status", tenant.UserID); err != nil {
			return err
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"payment": payment,
		"invoice": inv,
	})
}

func ListPayments(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid invoice id")
	}
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}
	var payments []models.Payment
	if err := tenantDB.Where("invoice_id = ?", id).Order("paid_at").Find(&payments).Error; err != nil {
		return err
	}
	return c.JSON(payments)
}
