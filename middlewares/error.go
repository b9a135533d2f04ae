package middlewares

import (
	"errors"

	"invoiceflow/billing"
	"invoiceflow/database"
	"invoiceflow/documents"
	"invoiceflow/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// ErrorHandler centralizes error responses and keeps messages sanitized.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  out,
		})
	}

	var lineErr *billing.ValidationError
	if errors.As(err, &lineErr) {
		body := fiber.Map{"message": lineErr.Error()}
		if len(lineErr.Lines) > 0 {
			body["lines"] = lineErr.Lines
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(body)
	}

	var schemeErr *billing.SchemeConfigurationError
	if errors.As(err, &schemeErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": schemeErr.Error(),
			"errors":  fiber.Map{schemeErr.Field: schemeErr.Message},
		})
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "not found"})
	case errors.Is(err, documents.ErrUnknownDocumentType):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, database.ErrInvalidSchema):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "invalid tenant"})
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "resource already exists"})
	}

	log := logger.WithComponent("http")
	log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("internal error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}
