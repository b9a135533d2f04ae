package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, []string{"Frozen Bulk", "Frozen Vegetable", "Frozen Fruit"}, cfg.Billing.CategoryOrder)

	rate, err := cfg.DiscountRate()
	require.NoError(t, err)
	assert.Equal(t, "0.02", rate.String())
	assert.Contains(t, cfg.DSN(), "host=db")
}

func TestLoad_FileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte(`
server:
  port: 9090
billing:
  default_discount_rate: "0.05"
  currency_symbol: "EUR "
  category_order: ["Ice Cream"]
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "EUR ", cfg.Billing.CurrencySymbol)
	assert.Equal(t, []string{"Ice Cream"}, cfg.Billing.CategoryOrder)
}

func TestLoad_RejectsBadDiscountRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("billing:\n  default_discount_rate: \"1.5\"\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
