package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"invoiceflow/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var ErrInvalidSchema = errors.New("invalid tenant schema")

// GetTenantDB returns a *gorm.DB bound to the request's tenant.
// Prefers the per-request TX from middlewares.TenantTx, else falls back to a
// session with search_path pinned on the connection.
func GetTenantDB(c *fiber.Ctx) (*gorm.DB, error) {
	if v := c.Locals("tx"); v != nil {
		if tx, ok := v.(*gorm.DB); ok && tx != nil {
			return tx, nil
		}
	}

	schema, _ := c.Locals("schema").(string)
	return TenantSession(c.UserContext(), strings.TrimSpace(schema))
}

// TenantSession opens a session pinned to schema. Used outside HTTP requests
// (CLI, migrations).
func TenantSession(ctx context.Context, schema string) (*gorm.DB, error) {
	if !ValidSchemaName(schema) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSchema, schema)
	}
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	sess := DB.WithContext(ctx).Session(&gorm.Session{})
	if err := sess.Exec(`SET search_path = "` + schema + `", public`).Error; err != nil {
		return nil, fmt.Errorf("set search_path failed: %w", err)
	}
	return sess, nil
}

// BeginTenantTx starts a transaction with search_path pinned to the tenant
// for its lifetime.
func BeginTenantTx(t models.Tenant) (*gorm.DB, error) {
	if !ValidSchemaName(t.Schema) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSchema, t.Schema)
	}
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	tx := DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	if err := tx.Exec(`SET LOCAL search_path = "` + t.Schema + `", public`).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("set search_path failed: %w", err)
	}
	return tx, nil
}

// TenantTransaction runs fn in its own short transaction pinned to the tenant.
func TenantTransaction(ctx context.Context, t models.Tenant, fn func(tx *gorm.DB) error) error {
	if !ValidSchemaName(t.Schema) {
		return fmt.Errorf("%w: %q", ErrInvalidSchema, t.Schema)
	}
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`SET LOCAL search_path = "` + t.Schema + `", public`).Error; err != nil {
			return fmt.Errorf("set search_path failed: %w", err)
		}
		return fn(tx)
	})
}
