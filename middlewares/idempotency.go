package middlewares

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"invoiceflow/database"
	"invoiceflow/logger"
	"invoiceflow/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const idempotencyHeader = "Idempotency-Key"

// errReplayed stops the lookup transaction after a stored response was sent.
var errReplayed = errors.New("idempotent replay")

// RequestHash fingerprints method|path|body|schema|user.
func RequestHash(method, path string, body []byte, schema, userID string) string {
	h := sha256.New()
	for i, part := range [][]byte{[]byte(method), []byte(path), body, []byte(schema), []byte(userID)} {
		if i > 0 {
			h.Write([]byte{'\n'})
		}
		h.Write(part)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Idempotency processes Idempotency-Key for mutating HTTP methods in a schema-safe way.
// It uses its own short transactions so the stored key is independent of the
// handler's TenantTx.
func Idempotency() fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get(idempotencyHeader))
		if key == "" {
			return c.Next()
		}
		if len(key) > 128 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Idempotency-Key too long"})
		}

		tenant, err := CurrentTenant(c)
		if err != nil {
			return err
		}

		path := c.OriginalURL()
		reqHash := RequestHash(method, path, c.Body(), tenant.Schema, tenant.UserID)

		// Phase 1: find or create the pending record
		err = database.TenantTransaction(c.UserContext(), tenant, func(tx *gorm.DB) error {
			var existing models.IdempotencyKey
			if err := tx.Where("key = ?", key).First(&existing).Error; err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusInternalServerError, "idempotency lookup failed")
				}
				rec := models.IdempotencyKey{
					Key:          key,
					RequestHash:  reqHash,
					Method:       method,
					Path:         path,
					TenantSchema: tenant.Schema,
					UserID:       tenant.UserID,
				}
				if e2 := tx.Create(&rec).Error; e2 != nil {
					// lost a race with a concurrent request
					if e3 := tx.Where("key = ?", key).First(&existing).Error; e3 != nil {
						return fiber.NewError(fiber.StatusInternalServerError, "idempotency create failed")
					}
				} else {
					existing = rec
				}
			}

			if existing.RequestHash != reqHash {
				return fiber.NewError(fiber.StatusConflict, "Idempotency-Key reuse with different request")
			}
			if existing.Completed() {
				if existing.ContentType != "" {
					c.Set(fiber.HeaderContentType, existing.ContentType)
				}
				c.Set("Idempotent-Replayed", "true")
				c.Status(existing.ResponseStatus)
				if err := c.Send(existing.ResponseBody); err != nil {
					return err
				}
				return errReplayed
			}
			return nil
		})
		if errors.Is(err, errReplayed) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := c.Next(); err != nil {
			// drop the pending key so the client can retry with it
			_ = database.TenantTransaction(c.UserContext(), tenant, func(tx *gorm.DB) error {
				return tx.Where("key = ? AND response_status = 0", key).Delete(&models.IdempotencyKey{}).Error
			})
			return err
		}

		// Phase 2: store the response
		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			return nil
		}
		resp := c.Response().Body()
		blob := make([]byte, len(resp))
		copy(blob, resp)
		now := time.Now().UTC()

		if err := database.TenantTransaction(c.UserContext(), tenant, func(tx *gorm.DB) error {
			return tx.Model(&models.IdempotencyKey{}).
				Where("key = ?", key).
				Updates(map[string]any{
					"response_status": status,
					"content_type":    string(c.Response().Header.ContentType()),
					"response_body":   blob,
					"completed_at":    &now,
				}).Error
		}); err != nil {
			log := logger.WithTenant("idempotency", tenant.Schema, tenant.UserID)
			log.Warn().Err(err).Str("key", key).Msg("failed to store idempotent response")
		}
		return nil
	}
}
