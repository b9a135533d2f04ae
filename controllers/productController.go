package controllers

import (
	"fmt"

	"invoiceflow/database"
	"invoiceflow/middlewares"
	"invoiceflow/models"
	"invoiceflow/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type productInput struct {
	Name           string          `json:"name" validate:"required,max=200"`
	Description    string          `json:"description"`
	UnitPrice      decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Category       string          `json:"category" validate:"max=100"`
	ItemCode       string          `json:"item_code" validate:"max=64"`
	PackingSize    string          `json:"packing_size" validate:"max=64"`
	GrossWeightKgs decimal.Decimal `json:"gross_weight_kgs" validate:"gte=0" scale:"3"`
	NetWeightKgs   decimal.Decimal `json:"net_weight_kgs" validate:"gte=0" scale:"3"`
	Active         *bool           `json:"active"`
}

type productPatch struct {
	Name           *string          `json:"name" validate:"omitempty,max=200"`
	Description    *string          `json:"description"`
	UnitPrice      *decimal.Decimal `json:"unit_price" validate:"omitempty,gte=0"`
	Category       *string          `json:"category" validate:"omitempty,max=100"`
	ItemCode       *string          `json:"item_code" validate:"omitempty,max=64"`
	PackingSize    *string          `json:"packing_size" validate:"omitempty,max=64"`
	GrossWeightKgs *decimal.Decimal `json:"gross_weight_kgs" validate:"omitempty,gte=0" scale:"3"`
	NetWeightKgs   *decimal.Decimal `json:"net_weight_kgs" validate:"omitempty,gte=0" scale:"3"`
	Active         *bool            `json:"active"`
}

// CreateProducts accepts a batch; the whole batch fails on the first bad entry.
func CreateProducts(c *fiber.Ctx) error {
	var inputs []productInput
	if err := c.BodyParser(&inputs); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(inputs) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no products given")
	}

	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	created := make([]models.Product, 0, len(inputs))
	for i := range inputs {
		input := inputs[i]
		if err := middlewares.ValidateStruct(&input); err != nil {
			return err
		}
		utils.NormalizeDTO(&input)

		product := models.Product{
			Name:           input.Name,
			Description:    input.Description,
			UnitPrice:      input.UnitPrice,
			Category:       input.Category,
			ItemCode:       input.ItemCode,
			PackingSize:    input.PackingSize,
			GrossWeightKgs: input.GrossWeightKgs,
			NetWeightKgs:   input.NetWeightKgs,
			Active:         input.Active == nil || *input.Active,
		}
		if err := tenantDB.Create(&product).Error; err != nil {
			return fmt.Errorf("create product at index %d: %w", i, err)
		}
		created = append(created, product)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func UpdateProduct(c *fiber.Ctx) error {
	id := c.Params("id")

	var data productPatch
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&data)

	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	var product models.Product
	if err := tenantDB.First(&product, "id = ?", id).Error; err != nil {
		return err
	}
	if updates := utils.UpdatesFromPtrDTO(&data, nil); len(updates) > 0 {
		if err := tenantDB.Model(&product).Updates(updates).Error; err != nil {
			return err
		}
	}
	if err := tenantDB.First(&product, "id = ?", id).Error; err != nil {
		return err
	}
	return c.JSON(product)
}

func GetProduct(c *fiber.Ctx) error {
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}
	var product models.Product
	if err := tenantDB.First(&product, "id = ?", c.Params("id")).Error; err != nil {
		return err
	}
	return c.JSON(product)
}

func GetProducts(c *fiber.Ctx) error {
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	q := tenantDB.Model(&models.Product{}).Order("category").Order("name")
	if cat := c.Query("category"); cat != "" {
		q = q.Where("category = ?", cat)
	}
	if c.Query("active") == "true" {
		q = q.Where("active = ?", true)
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"products": products,
		"message":  "success",
	})
}

// productSnapshots loads the active products referenced by ids, keyed by id.
func productSnapshots(tx *gorm.DB, ids []string) (map[string]models.Product, error) {
	out := make(map[string]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []models.Product
	if err := tx.Where("id IN ? AND active = ?", ids, true).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.Id] = p
	}
	return out, nil
}
