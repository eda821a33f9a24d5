package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mercatohq/mercato-backend/pkg/migrate"
)

func TestTaxMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_tax_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no tax migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE jurisdiction_kind AS ENUM",
		"CREATE TYPE tax_type AS ENUM",
		"CREATE TABLE IF NOT EXISTS tax_jurisdictions",
		"CREATE TABLE IF NOT EXISTS tax_rates",
		"idx_tax_jurisdictions_country_code",
		"compound_base_id uuid REFERENCES tax_rates (id)",
		"CHECK (rate >= 0 AND rate <= 1)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrdersMigrationContainsStatusEnums(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_orders_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no orders migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE order_status AS ENUM",
		"CREATE TYPE payment_status AS ENUM",
		"CREATE TYPE fulfillment_status AS ENUM",
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE TABLE IF NOT EXISTS order_line_items",
		"confirmed_at timestamptz",
		"cancelled_at timestamptz",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}
