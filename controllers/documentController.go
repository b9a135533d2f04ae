package controllers

import (
	"bytes"
	"errors"
	"fmt"

	"invoiceflow/archive"
	"invoiceflow/billing"
	"invoiceflow/database"
	"invoiceflow/documents"
	"invoiceflow/logger"
	"invoiceflow/metrics"
	"invoiceflow/middlewares"
	"invoiceflow/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func companyParty(c models.Company) documents.Party {
	p := documents.Party{
		Name:    c.CompanyName,
		Address: c.Address,
		City:    c.City,
		Zip:     c.Zip,
		Country: c.Country,
		Email:   c.Email,
	}
	if c.ContactPerson.PhoneNumber != "" {
		p.Phone = c.ContactPerson.PhoneNumber
	}
	return p
}

func customerParty(c models.Customer) documents.Party {
	return documents.Party{Name: c.CompanyName, Address: c.Address, City: c.City, Zip: c.Zip, Country: c.Country, Email: c.Email, Phone: c.PhoneNumber}
}

func supplierParty(s models.Supplier) documents.Party {
	return documents.Party{Name: s.CompanyName, Address: s.Address, City: s.City, Zip: s.Zip, Country: s.Country, Email: s.Email, Phone: s.PhoneNumber}
}

// documentFor assembles a printable document. On receivable invoices the
// tenant's company sells; on payable ones the supplier does.
func documentFor(tx *gorm.DB, tenant models.Tenant, inv models.Invoice, t documents.DocumentType) (documents.Document, error) {
	doc, err := documents.Build(t, inv.Lines(), deps.Grouper)
	if err != nil {
		return documents.Document{}, err
	}

	var company models.Company
	if err := tx.Table("public.companies").Preload("ContactPerson").
		Where("schema_name = ?", tenant.Schema).First(&company).Error; err != nil {
		return documents.Document{}, fmt.Errorf("company for %s: %w", tenant.Schema, err)
	}

	doc.Number = inv.InvoiceNumber
	doc.InvoiceType = inv.Type
	doc.Date = inv.Date
	doc.DueDate = inv.DueDate
	doc.Totals = inv.Totals()
	doc.Notes = inv.Notes

	switch inv.Type {
	case billing.Receivable:
		doc.Seller = companyParty(company)
		if inv.Customer != nil {
			doc.Buyer = customerParty(*inv.Customer)
		}
	case billing.Payable:
		doc.Buyer = companyParty(company)
		if inv.Supplier != nil {
			doc.Seller = supplierParty(*inv.Supplier)
		}
	}
	return doc, nil
}

// GetInvoiceDocument renders an invoice, packing list or shipping label.
// ?format=json returns the page layout instead of a PDF; ?archive=true also
// stores the PDF in the document archive.
func GetInvoiceDocument(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid invoice id")
	}
	docType, err := documents.ParseDocumentType(c.Params("type"))
	if err != nil {
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
	doc, err := documentFor(tenantDB, tenant, inv, docType)
	if err != nil {
		return err
	}

	if c.Query("format") == "json" {
		return c.JSON(doc)
	}

	var buf bytes.Buffer
	if err := deps.Renderer.Render(&buf, doc); err != nil {
		return err
	}
	metrics.PagesRendered.WithLabelValues(string(docType)).Add(float64(len(doc.Pages)))

	if c.QueryBool("archive") {
		key, err := deps.Archive.Put(c.UserContext(), archive.Key(tenant.Schema, inv.InvoiceNumber, string(docType)), buf.Bytes())
		if err != nil {
			if errors.Is(err, archive.ErrDisabled) {
				return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
			}
			return err
		}
		log := logger.WithTenant("documents", tenant.Schema, tenant.UserID)
		log.Info().Str("key", key).Str("invoice", inv.InvoiceNumber).Msg("document archived")
		c.Set("X-Archive-Key", key)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s-%s.pdf"`, inv.InvoiceNumber, docType))
	return c.Send(buf.Bytes())
}
