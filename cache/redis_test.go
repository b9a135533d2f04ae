package cache

import (
	"context"
	"testing"
	"time"

	"invoiceflow/billing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemeCache_DisabledIsNoop(t *testing.T) {
	ctx := context.Background()

	var nilCache *SchemeCache
	assert.False(t, nilCache.Enabled())
	_, ok := nilCache.Schemes(ctx, "tenant_a")
	assert.False(t, ok)
	nilCache.StoreSchemes(ctx, "tenant_a", []billing.Scheme{{ID: "s1"}})
	nilCache.Invalidate(ctx, "tenant_a")
	assert.NoError(t, nilCache.Close())

	c, err := Connect("", "", 0, time.Minute)
	require.NoError(t, err)
	assert.False(t, c.Enabled())
	_, ok = c.Schemes(ctx, "tenant_a")
	assert.False(t, ok)
}

func TestKeyIsPerTenant(t *testing.T) {
	assert.Equal(t, "schemes:tenant_a", key("tenant_a"))
	assert.NotEqual(t, key("tenant_a"), key("tenant_b"))
}
