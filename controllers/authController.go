package controllers

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"invoiceflow/database"
	"invoiceflow/logger"
	"invoiceflow/middlewares"
	"invoiceflow/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type registerInput struct {
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Salutation      string `json:"salutation"`
	Title           string `json:"title"`
	PhoneNumber     string `json:"phone_number"`
	MobileNumber    string `json:"mobile_number"`
	CompanyName     string `json:"company_name" validate:"required,max=120"`
	Address         string `json:"address" validate:"required"`
	City            string `json:"city" validate:"required"`
	Country         string `json:"country" validate:"required"`
	Zip             string `json:"zip" validate:"required"`
	Homepage        string `json:"homepage"`
	UID             string `json:"uid"`
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var nonSchemaChars = regexp.MustCompile(`[^a-z0-9_]+`)

// schemaNameFor derives the tenant schema from the company name.
func schemaNameFor(company string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(company))
	name = strings.ReplaceAll(name, " ", "_")
	name = nonSchemaChars.ReplaceAllString(name, "")
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		name = "t_" + name
	}
	if len(name) > 63 {
		name = name[:63]
	}
	if !database.ValidSchemaName(name) {
		return "", fmt.Errorf("invalid schema name after sanitization: %q", name)
	}
	return name, nil
}

func Register(c *fiber.Ctx) error {
	var data registerInput
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	email := models.NormalizeEmail(data.Email)
	var existing int64
	database.DB.Model(&models.User{}).Where("email = ?", email).Count(&existing)
	if existing > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "email already exists")
	}

	schemaName, err := schemaNameFor(data.CompanyName)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var company models.Company
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		user := models.User{
			FirstName:  data.FirstName,
			LastName:   data.LastName,
			Email:      email,
			SchemaName: schemaName,
		}
		if err := user.SetPassword(data.Password); err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		contactPerson := models.ContactPerson{
			FirstName:    data.FirstName,
			LastName:     data.LastName,
			Salutation:   data.Salutation,
			Title:        data.Title,
			PhoneNumber:  data.PhoneNumber,
			MobileNumber: data.MobileNumber,
		}
		if err := tx.Create(&contactPerson).Error; err != nil {
			return err
		}

		company = models.Company{
			CompanyName: data.CompanyName,
			Address:     data.Address,
			City:        data.City,
			Country:     data.Country,
			Zip:         data.Zip,
			Homepage:    data.Homepage,
			UID:         data.UID,
			Email:       email,
			UserId:      user.Id,
			PId:         contactPerson.Id,
			SchemaName:  schemaName,
		}
		return tx.Create(&company).Error
	})
	if err != nil {
		return err
	}

	if err := database.MigrateTenantSchema(schemaName); err != nil {
		log := logger.WithComponent("auth")
		log.Error().Err(err).Str("tenant", schemaName).Msg("tenant migration failed")
		return fiber.NewError(fiber.StatusInternalServerError, "Could not migrate tenant schema")
	}

	database.DB.Preload("User").Preload("ContactPerson").First(&company, "id = ?", company.Id)
	return c.Status(fiber.StatusCreated).JSON(company)
}

func Login(c *fiber.Ctx) error {
	var data loginInput
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	var user models.User
	if err := database.DB.Table("public.users").Where("email = ?", models.NormalizeEmail(data.Email)).First(&user).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid credentials")
	}
	if _, err := uuid.Parse(user.Id); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid credentials")
	}
	if err := user.ComparePassword(data.Password); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid credentials")
	}

	token, err := middlewares.GenerateJWT(user.Id, user.SchemaName)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"token":  token,
		"schema": user.SchemaName,
		"user": fiber.Map{
			"id":    user.Id,
			"name":  user.FullName(),
			"email": user.Email,
		},
	})
}

func Logout(c *fiber.Ctx) error {
	cookie := fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	}
	c.Cookie(&cookie)
	return c.JSON(fiber.Map{
		"message": "success",
	})
}
