package controllers

import (
	"context"
	"strings"

	"invoiceflow/billing"
	"invoiceflow/database"
	"invoiceflow/middlewares"
	"invoiceflow/models"
	"invoiceflow/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type schemeInput struct {
	Name         string   `json:"name" validate:"required,max=120"`
	ProductIDs   []string `json:"product_ids" validate:"required,min=1,dive,required"`
	BuyQuantity  int      `json:"buy_quantity" validate:"gte=1"`
	FreeQuantity int      `json:"free_quantity" validate:"gte=1"`
	Active       *bool    `json:"active"`
}

type schemePatch struct {
	Name         *string   `json:"name" validate:"omitempty,max=120"`
	ProductIDs   *[]string `json:"product_ids" validate:"omitempty,min=1,dive,required"`
	BuyQuantity  *int      `json:"buy_quantity" validate:"omitempty,gte=1"`
	FreeQuantity *int      `json:"free_quantity" validate:"omitempty,gte=1"`
	Active       *bool     `json:"active"`
}

// checkSchemeProducts rejects references to products that do not exist.
func checkSchemeProducts(tx *gorm.DB, s billing.Scheme) error {
	if err := s.Validate(); err != nil {
		return err
	}
	var found []string
	if err := tx.Model(&models.Product{}).Where("id IN ?", s.ProductIDs).Pluck("id", &found).Error; err != nil {
		return err
	}
	if missing, _ := lo.Difference(lo.Uniq(s.ProductIDs), found); len(missing) > 0 {
		return &billing.SchemeConfigurationError{SchemeID: s.ID, Field: "product_ids", Message: "references unknown products " + strings.Join(missing, ", ")}
	}
	return nil
}

func CreateScheme(c *fiber.Ctx) error {
	var data schemeInput
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

	scheme := models.Scheme{
		Name:         data.Name,
		BuyQuantity:  data.BuyQuantity,
		FreeQuantity: data.FreeQuantity,
		Active:       data.Active == nil || *data.Active,
		Products:     models.SchemeProductsFor(data.ProductIDs),
	}
	if err := checkSchemeProducts(tenantDB, scheme.ToBilling()); err != nil {
		return err
	}
	if err := tenantDB.Create(&scheme).Error; err != nil {
		return err
	}

	deps.Schemes.Invalidate(c.UserContext(), tenant.Schema)
	return c.Status(fiber.StatusCreated).JSON(scheme)
}

func UpdateScheme(c *fiber.Ctx) error {
	var data schemePatch
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&data)

	tenant, err := middlewares.CurrentTenant(c)
	if err != nil {
		return err
	}
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	var scheme models.Scheme
	if err := tenantDB.Preload("Products").First(&scheme, "id = ?", c.Params("id")).Error; err != nil {
		return err
	}

	if data.Name != nil {
		scheme.Name = *data.Name
	}
	if data.BuyQuantity != nil {
		scheme.BuyQuantity = *data.BuyQuantity
	}
	if data.FreeQuantity != nil {
		scheme.FreeQuantity = *data.FreeQuantity
	}
	if data.Active != nil {
		scheme.Active = *data.Active
	}
	if data.ProductIDs != nil {
		scheme.Products = models.SchemeProductsFor(*data.ProductIDs)
	}
	if err := checkSchemeProducts(tenantDB, scheme.ToBilling()); err != nil {
		return err
	}

	if err := tenantDB.Model(&scheme).Select("name", "buy_quantity", "free_quantity", "active").Updates(&scheme).Error; err != nil {
		return err
	}
	if data.ProductIDs != nil {
		if err := tenantDB.Where("scheme_id = ?", scheme.Id).Delete(&models.SchemeProduct{}).Error; err != nil {
			return err
		}
		for i := range scheme.Products {
			scheme.Products[i].SchemeID = scheme.Id
		}
		if err := tenantDB.Create(&scheme.Products).Error; err != nil {
			return err
		}
	}

	deps.Schemes.Invalidate(c.UserContext(), tenant.Schema)
	return c.JSON(scheme)
}

func GetSchemes(c *fiber.Ctx) error {
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}
	var schemes []models.Scheme
	q := tenantDB.Preload("Products").Order("created_at").Order("id")
	if c.Query("active") == "true" {
		q = q.Where("active = ?", true)
	}
	if err := q.Find(&schemes).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"schemes": schemes,
		"message": "success",
	})
}

// activeSchemes returns the tenant's active schemes in match order, from the
// cache when possible.
func activeSchemes(ctx context.Context, tx *gorm.DB, tenant models.Tenant) ([]billing.Scheme, error) {
	if cached, ok := deps.Schemes.Schemes(ctx, tenant.Schema); ok {
		return cached, nil
	}

	var rows []models.Scheme
	if err := tx.Preload("Products").Where("active = ?", true).Order("created_at").Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	schemes := lo.Map(rows, func(s models.Scheme, _ int) billing.Scheme { return s.ToBilling() })
	billing.SortSchemes(schemes)

	deps.Schemes.StoreSchemes(ctx, tenant.Schema, schemes)
	return schemes, nil
}
