package controllers

import (
	"invoiceflow/database"
	"invoiceflow/middlewares"
	"invoiceflow/models"
	"invoiceflow/utils"

	"github.com/gofiber/fiber/v2"
)

type supplierInput struct {
	CompanyName      string `json:"company_name" validate:"required,max=120"`
	Address          string `json:"address" validate:"required"`
	City             string `json:"city" validate:"required"`
	Country          string `json:"country" validate:"required"`
	Zip              string `json:"zip" validate:"required"`
	Homepage         string `json:"homepage"`
	UID              string `json:"uid"`
	Email            string `json:"email" validate:"required,email"`
	PhoneNumber      string `json:"phone_number"`
	MobileNumber     string `json:"mobile_number"`
	PaymentTermsDays *int   `json:"payment_terms_days" validate:"omitempty,gte=0,lte=365"`
}

type supplierPatch struct {
	CompanyName      *string `json:"company_name" validate:"omitempty,max=120"`
	Address          *string `json:"address"`
	City             *string `json:"city"`
	Country          *string `json:"country"`
	Zip              *string `json:"zip"`
	Homepage         *string `json:"homepage"`
	UID              *string `json:"uid"`
	Email            *string `json:"email" validate:"omitempty,email"`
	PhoneNumber      *string `json:"phone_number"`
	MobileNumber     *string `json:"mobile_number"`
	PaymentTermsDays *int    `json:"payment_terms_days" validate:"omitempty,gte=0,lte=365"`
}

func CreateSupplier(c *fiber.Ctx) error {
	var data supplierInput
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizeDTO(&data)

	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	supplier := models.Supplier{
		CompanyName:      data.CompanyName,
		Address:          data.Address,
		City:             data.City,
		Country:          data.Country,
		Zip:              data.Zip,
		Homepage:         data.Homepage,
		UID:              data.UID,
		Email:            data.Email,
		PhoneNumber:      data.PhoneNumber,
		MobileNumber:     data.MobileNumber,
		PaymentTermsDays: deps.DefaultTermsDays,
	}
	if data.PaymentTermsDays != nil {
		supplier.PaymentTermsDays = *data.PaymentTermsDays
	}

	if err := tenantDB.Create(&supplier).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(supplier)
}

func UpdateSupplier(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid supplier id")
	}

	var data supplierPatch
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&data)

	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	var supplier models.Supplier
	if err := tenantDB.First(&supplier, id).Error; err != nil {
		return err
	}
	if updates := utils.UpdatesFromPtrDTO(&data, nil); len(updates) > 0 {
		if err := tenantDB.Model(&supplier).Updates(updates).Error; err != nil {
			return err
		}
	}
	if err := tenantDB.First(&supplier, id).Error; err != nil {
		return err
	}
	return c.JSON(supplier)
}

func GetSupplier(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid supplier id")
	}
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}
	var supplier models.Supplier
	if err := tenantDB.First(&supplier, id).Error; err != nil {
		return err
	}
	return c.JSON(supplier)
}

func GetSuppliers(c *fiber.Ctx) error {
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}
	var suppliers []models.Supplier
	if err := tenantDB.Order("company_name").Find(&suppliers).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"suppliers": suppliers,
		"message":   "success",
	})
}
