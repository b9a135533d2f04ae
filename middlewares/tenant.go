package middlewares

import (
	"strings"

	"invoiceflow/models"

	"github.com/gofiber/fiber/v2"
)

// CurrentTenant returns the tenant stored by IsAuthenticatedHeader.
func CurrentTenant(c *fiber.Ctx) (models.Tenant, error) {
	schema, _ := c.Locals("schema").(string)
	userID, _ := c.Locals("userID").(string)
	if strings.TrimSpace(schema) == "" || strings.TrimSpace(userID) == "" {
		return models.Tenant{}, fiber.NewError(fiber.StatusUnauthorized, "auth context missing")
	}
	return models.Tenant{Schema: schema, UserID: userID}, nil
}
