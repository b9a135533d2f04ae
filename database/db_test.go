package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidSchemaName(t *testing.T) {
	for _, ok := range []string{"tenant_a", "acme2", "t"} {
		assert.True(t, ValidSchemaName(ok), ok)
	}
	for _, bad := range []string{"", "Tenant", "1abc", `a"; drop table users; --`, "a-b"} {
		assert.False(t, ValidSchemaName(bad), bad)
	}
}

func TestAddConstraintIsGuarded(t *testing.T) {
	stmt := addConstraint("schemes", "chk_x", "CHECK (buy_quantity >= 1)")
	assert.Contains(t, stmt, "conname  = 'chk_x'")
	assert.Contains(t, stmt, "ALTER TABLE schemes ADD CONSTRAINT chk_x CHECK (buy_quantity >= 1);")
}

func TestMigrateTenantSchema_RejectsBadName(t *testing.T) {
	assert.ErrorIs(t, MigrateTenantSchema("Bad Name"), ErrInvalidSchema)
}
