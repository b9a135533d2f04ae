package database

import (
	"fmt"

	"invoiceflow/models"

	"gorm.io/gorm"
)

// addConstraint wraps ALTER TABLE ... ADD CONSTRAINT so it can be re-run.
func addConstraint(table, name, definition string) string {
	return fmt.Sprintf(`
DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint
		WHERE conrelid = '%[1]s'::regclass
		  AND conname  = '%[2]s'
	) THEN
		ALTER TABLE %[1]s ADD CONSTRAINT %[2]s %[3]s;
	END IF;
END $$;`, table, name, definition)
}

// MigrateTenantSchema applies (idempotent) schema migrations for a single tenant schema.
// It pins search_path to the tenant and performs:
// - AutoMigrate (tables/columns)
// - Indexes (versions, payments, invoice_items, scheme lookups)
// - Foreign keys: invoice_items.product_id → products.id, scheme_products → products
// - CHECK constraints for prices, quantities, scheme thresholds and free lines
func MigrateTenantSchema(schema string) error {
	if !ValidSchemaName(schema) {
		return fmt.Errorf("%w: %q", ErrInvalidSchema, schema)
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error; err != nil {
			return fmt.Errorf("create schema failed: %w", err)
		}
		if err := tx.Exec(`SET LOCAL search_path = "` + schema + `", public`).Error; err != nil {
			return fmt.Errorf("set search_path failed: %w", err)
		}

		if err := tx.AutoMigrate(
			&models.Product{},
			&models.Scheme{},
			&models.SchemeProduct{},
			&models.Customer{},
			&models.Supplier{},
			&models.Invoice{},
			&models.InvoiceItem{},
			&models.InvoiceVersion{},
			&models.Payment{},
			&models.JournalEntry{},
			&models.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("tenant automigrate failed: %w", err)
		}

		indexes := []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_invoice_versions_invoice_id_version_no ON invoice_versions (invoice_id, version_no)`,
			`CREATE INDEX IF NOT EXISTS idx_payments_invoice_paid_at ON payments (invoice_id, paid_at)`,
			`CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice_position ON invoice_items (invoice_id, position)`,
			`CREATE INDEX IF NOT EXISTS idx_invoice_items_product ON invoice_items (product_id)`,
			`CREATE INDEX IF NOT EXISTS idx_scheme_products_product ON scheme_products (product_id)`,
			`CREATE INDEX IF NOT EXISTS idx_schemes_active_created ON schemes (active, created_at, id)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_journal_entries_invoice ON journal_entries (invoice_id)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_keys_key ON idempotency_keys (key)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		constraints := []string{
			addConstraint("invoice_items", "fk_invoice_items_product",
				"FOREIGN KEY (product_id) REFERENCES products(id) ON UPDATE RESTRICT ON DELETE RESTRICT"),
			addConstraint("products", "chk_products_unit_price_nonneg", "CHECK (unit_price >= 0)"),
			addConstraint("payments", "chk_payments_amount_pos", "CHECK (amount > 0)"),
			addConstraint("invoice_items", "chk_invoice_items_amount_nonneg", "CHECK (amount >= 0)"),
			addConstraint("invoice_items", "chk_invoice_items_quantity_pos", "CHECK (quantity >= 1)"),
			addConstraint("invoice_items", "chk_invoice_items_free_zero",
				"CHECK (NOT is_free_from_scheme OR (unit_price = 0 AND amount = 0 AND scheme_id IS NOT NULL))"),
			addConstraint("schemes", "chk_schemes_quantities", "CHECK (buy_quantity >= 1 AND free_quantity >= 1)"),
			addConstraint("invoices", "chk_invoices_total_identity", "CHECK (total = subtotal + freight - discount)"),
			addConstraint("invoices", "chk_invoices_counterparty",
				"CHECK ((type = 'receivable' AND customer_id IS NOT NULL AND supplier_id IS NULL) OR (type = 'payable' AND supplier_id IS NOT NULL AND customer_id IS NULL))"),
		}
		for _, stmt := range constraints {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("constraint migration failed: %w", err)
			}
		}

		return nil
	})
}

// MigrateAll migrates the public tables and every registered tenant schema.
func MigrateAll() error {
	if err := MigratePublic(); err != nil {
		return fmt.Errorf("public automigrate failed: %w", err)
	}
	schemas, err := TenantSchemas()
	if err != nil {
		return err
	}
	for _, s := range schemas {
		if err := MigrateTenantSchema(s); err != nil {
			return fmt.Errorf("tenant %s: %w", s, err)
		}
	}
	return nil
}
