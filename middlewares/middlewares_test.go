package middlewares

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"invoiceflow/billing"
	"invoiceflow/documents"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestApp(handler fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(AccessLog())
	app.Get("/t", handler)
	return app
}

func decode(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestErrorHandler_Mapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"fiber error", fiber.NewError(fiber.StatusTeapot, "nope"), fiber.StatusTeapot},
		{"line validation", &billing.ValidationError{Err: billing.ErrIncompleteLine, Lines: []int{2}}, fiber.StatusUnprocessableEntity},
		{"scheme config", &billing.SchemeConfigurationError{SchemeID: "s", Field: "buy_quantity", Message: "must be at least 1"}, fiber.StatusUnprocessableEntity},
		{"not found", fmt.Errorf("load invoice: %w", gorm.ErrRecordNotFound), fiber.StatusNotFound},
		{"unknown document", documents.ErrUnknownDocumentType, fiber.StatusBadRequest},
		{"unique violation", &pgconn.PgError{Code: "23505"}, fiber.StatusConflict},
		{"other", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(func(c *fiber.Ctx) error { return tt.err })
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/t", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}
}

func TestErrorHandler_LineIndexes(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error {
		return &billing.ValidationError{Err: billing.ErrIncompleteLine, Lines: []int{1, 3}}
	})
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/t", nil))
	require.NoError(t, err)
	body := decode(t, resp.Body)
	assert.Equal(t, []any{float64(1), float64(3)}, body["lines"])
}

type paymentDTO struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Method string          `json:"method" validate:"required"`
}

func TestBindAndValidate_Decimal(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Post("/p", func(c *fiber.Ctx) error {
		var dto paymentDTO
		if err := BindAndValidate(c, &dto); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"amount": dto.Amount.StringFixed(2)})
	})

	post := func(body string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/p", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, post(`{"amount":"12.50","method":"cash"}`))
	assert.Equal(t, fiber.StatusUnprocessableEntity, post(`{"amount":"0","method":"cash"}`))
	assert.Equal(t, fiber.StatusUnprocessableEntity, post(`{"amount":"5"}`))
	assert.Equal(t, fiber.StatusBadRequest, post(`{"amount":`))
}

func TestIsAuthenticatedHeader(t *testing.T) {
	ConfigureAuth("test-secret", time.Hour)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/me", IsAuthenticatedHeader(), func(c *fiber.Ctx) error {
		tenant, err := CurrentTenant(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"schema": tenant.Schema, "user": tenant.UserID})
	})

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token, err := GenerateJWT("user-1", "tenant_a")
	require.NoError(t, err)
	req = httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode(t, resp.Body)
	assert.Equal(t, "tenant_a", body["schema"])
	assert.Equal(t, "user-1", body["user"])
}

func TestCurrentTenant_Missing(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error {
		_, err := CurrentTenant(c)
		return err
	})
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/t", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequestHash(t *testing.T) {
	a := RequestHash("POST", "/api/invoice", []byte(`{}`), "tenant_a", "u1")
	assert.Len(t, a, 64)
	assert.Equal(t, a, RequestHash("POST", "/api/invoice", []byte(`{}`), "tenant_a", "u1"))
	assert.NotEqual(t, a, RequestHash("POST", "/api/invoice", []byte(`{}`), "tenant_b", "u1"))
	assert.NotEqual(t, a, RequestHash("PUT", "/api/invoice", []byte(`{}`), "tenant_a", "u1"))
}

func TestIdempotency_PassesThroughReads(t *testing.T) {
	app := fiber.New()
	app.Get("/r", Idempotency(), func(c *fiber.Ctx) error { return c.SendString("ok") })
	req := httptest.NewRequest(fiber.MethodGet, "/r", nil)
	req.Header.Set(idempotencyHeader, "k1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
