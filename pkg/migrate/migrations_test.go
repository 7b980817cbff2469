package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/idoblon/vendorrs-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestProductsMigrationContainsStockConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_products"), []string{
		"CREATE TABLE IF NOT EXISTS product_availability",
		"PRIMARY KEY (product_id, center_id)",
		"FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE",
		"CONSTRAINT chk_availability_stock CHECK (stock >= 0)",
		"CONSTRAINT chk_availability_reserved CHECK (reserved_stock >= 0)",
		"DROP TABLE IF EXISTS product_availability",
	})
}

func TestOrdersMigrationContainsLifecycleColumns(t *testing.T) {
	assertContains(t, readMigration(t, "create_orders"), []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"version integer NOT NULL DEFAULT 1",
		"'PENDING', 'CONFIRMED', 'IN_PROGRESS', 'SHIPPED', 'DELIVERED', 'CANCELLED', 'RETURNED'",
		"CONSTRAINT orders_order_number_key UNIQUE (order_number)",
		"CREATE TABLE IF NOT EXISTS order_status_history",
		"DROP TABLE IF EXISTS orders",
	})
}

func TestUsersMigrationGuardsCenterCounter(t *testing.T) {
	assertContains(t, readMigration(t, "create_users"), []string{
		"CONSTRAINT chk_users_current_orders CHECK (operational_current_orders >= 0)",
	})
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Center Index!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_center_index.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
	if _, err := migrate.CreateSQLMigration(dir, "!!!"); err == nil {
		t.Fatal("expected empty sanitized name to fail")
	}
}

func TestListDirOrdersAndRejectsDuplicates(t *testing.T) {
	files, err := migrate.ListDir("migrations")
	if err != nil {
		t.Fatalf("list migrations: %v", err)
	}
	if len(files) < 4 {
		t.Fatalf("expected at least 4 migrations, got %d", len(files))
	}
	for i := 1; i < len(files); i++ {
		if files[i-1].Version >= files[i].Version {
			t.Fatalf("migrations out of order at %s", files[i].Path)
		}
	}

	dir := t.TempDir()
	for _, name := range []string{"20260101000000_a.sql", "20260101000000_b.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if _, err := migrate.ListDir(dir); err == nil {
		t.Fatal("expected duplicate versions to fail")
	}
}

func TestCreateSQLMigrationBumpsPastFutureVersions(t *testing.T) {
	dir := t.TempDir()
	future := filepath.Join(dir, "29991231235959_future.sql")
	if err := os.WriteFile(future, []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write future migration: %v", err)
	}
	path, err := migrate.CreateSQLMigration(dir, "next step")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if filepath.Base(path) != "29991231235960_next_step.sql" {
		t.Fatalf("unexpected filename %s", filepath.Base(path))
	}
}

func TestValidateDirRejectsMissingDown(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "20260101000000_only_up.sql"), []byte("-- +goose Up\nSELECT 1;\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected missing down section to fail")
	}
}
