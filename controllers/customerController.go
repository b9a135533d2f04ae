package controllers

import (
	"invoiceflow/database"
	"invoiceflow/middlewares"
	"invoiceflow/models"
	"invoiceflow/utils"

	"github.com/gofiber/fiber/v2"
)

type customerInput struct {
	CompanyName      string `json:"company_name" validate:"required,max=120"`
	Address          string `json:"address" validate:"required"`
	City             string `json:"city" validate:"required"`
	Country          string `json:"country" validate:"required"`
	Zip              string `json:"zip" validate:"required"`
	Homepage         string `json:"homepage"`
	UID              string `json:"uid"`
	Email            string `json:"email" validate:"required,email"`
	FirstName        string `json:"first_name" validate:"required"`
	LastName         string `json:"last_name" validate:"required"`
	PhoneNumber      string `json:"phone_number"`
	MobileNumber     string `json:"mobile_number"`
	Salutation       string `json:"salutation"`
	Title            string `json:"title"`
	PaymentTermsDays *int   `json:"payment_terms_days" validate:"omitempty,gte=0,lte=365"`
}

type customerPatch struct {
	CompanyName      *string `json:"company_name" validate:"omitempty,max=120"`
	Address          *string `json:"address"`
	City             *string `json:"city"`
	Country          *string `json:"country"`
	Zip              *string `json:"zip"`
	Homepage         *string `json:"homepage"`
	UID              *string `json:"uid"`
	Email            *string `json:"email" validate:"omitempty,email"`
	FirstName        *string `json:"first_name"`
	LastName         *string `json:"last_name"`
	PhoneNumber      *string `json:"phone_number"`
	MobileNumber     *string `json:"mobile_number"`
	Salutation       *string `json:"salutation"`
	Title            *string `json:"title"`
	PaymentTermsDays *int    `json:"payment_terms_days" validate:"omitempty,gte=0,lte=365"`
	Active           *bool   `json:"active"`
}

func CreateCustomer(c *fiber.Ctx) error {
	var data customerInput
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizeDTO(&data)

	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	customer := models.Customer{
		CompanyName:      data.CompanyName,
		Address:          data.Address,
		City:             data.City,
		Country:          data.Country,
		Zip:              data.Zip,
		Homepage:         data.Homepage,
		UID:              data.UID,
		Email:            data.Email,
		FirstName:        data.FirstName,
		LastName:         data.LastName,
		PhoneNumber:      data.PhoneNumber,
		MobileNumber:     data.MobileNumber,
		Salutation:       data.Salutation,
		Title:            data.Title,
		PaymentTermsDays: deps.DefaultTermsDays,
		Active:           true,
	}
	if data.PaymentTermsDays != nil {
		customer.PaymentTermsDays = *data.PaymentTermsDays
	}

	if err := tenantDB.Create(&customer).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

func UpdateCustomer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid customer id")
	}

	var data customerPatch
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&data)

	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	var customer models.Customer
	if err := tenantDB.First(&customer, id).Error; err != nil {
		return err
	}

	updates := utils.UpdatesFromPtrDTO(&data, nil)
	if len(updates) > 0 {
		if err := tenantDB.Model(&customer).Updates(updates).Error; err != nil {
			return err
		}
	}
	if err := tenantDB.First(&customer, id).Error; err != nil {
		return err
	}
	return c.JSON(customer)
}

func GetCustomer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid customer id")
	}
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}
	var customer models.Customer
	if err := tenantDB.First(&customer, id).Error; err != nil {
		return err
	}
	return c.JSON(customer)
}

func GetCustomers(c *fiber.Ctx) error {
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	var customers []models.Customer
	q := tenantDB.Model(&models.Customer{}).Order("company_name")
	if c.Query("active") == "true" {
		q = q.Where("active = ?", true)
	}
	if err := q.Find(&customers).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"customers": customers,
		"message":   "success",
	})
}
