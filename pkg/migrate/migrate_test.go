package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/backoffice/pkg/config"
	"github.com/angelmondragon/backoffice/pkg/db/dbtest"
	"github.com/angelmondragon/backoffice/pkg/logger"
	"github.com/stretchr/testify/require"
)

func TestMigrationsDirIsValid(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.Error(t, ValidateDir(dir), "empty dir")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "init.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.ErrorContains(t, ValidateDir(dir), "invalid migration filename")

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_a.sql"), []byte("-- +goose Up\n"), 0o644))
	require.ErrorContains(t, ValidateDir(dir), "goose Down")
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Order Notes!")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_order_notes.sql"), path)
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "!!!")
	require.Error(t, err)
}

func TestCreateSQLMigrationOrdersAfterExistingVersions(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260301120000_future.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	path, err := CreateSQLMigration(dir, "add sku")
	require.NoError(t, err)
	require.Equal(t, "20260301120001_add_sku.sql", filepath.Base(path))

	path, err = CreateSQLMigration(dir, "add barcode")
	require.NoError(t, err)
	require.Equal(t, "20260301120002_add_barcode.sql", filepath.Base(path))
	require.NoError(t, ValidateDir(dir))
}

func TestCreateSQLMigrationRejectsReusedName(t *testing.T) {
	dir := t.TempDir()
	_, err := CreateSQLMigration(dir, "add sku")
	require.NoError(t, err)

	_, err = CreateSQLMigration(dir, "Add SKU")
	require.ErrorContains(t, err, "already exists")
}

func TestInventoryMigrationEnforcesStockFloor(t *testing.T) {
	content := readMigration(t, "*_create_products_inventory.sql")
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS inventory",
		"CHECK (in_stock >= 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_product_id ON inventory (product_id)",
		"REFERENCES products(id) ON DELETE CASCADE",
		"NUMERIC(12,2)",
		"created_by_user_id BIGINT NULL REFERENCES users(id) ON DELETE SET NULL",
		"DROP TABLE IF EXISTS inventory",
	} {
		require.Contains(t, content, sub)
	}
}

func TestOrdersMigrationBlocksProductDelete(t *testing.T) {
	content := readMigration(t, "*_create_orders_reviews.sql")
	require.Contains(t, content, "product_id BIGINT NOT NULL REFERENCES products(id),")
	require.Contains(t, content, "CHECK (rating BETWEEN 1 AND 5)")
	require.Contains(t, content, "idx_orders_reserved ON orders (product_id) WHERE in_inventory = false")
}

func TestUsersMigrationHasUniqueEmail(t *testing.T) {
	content := readMigration(t, "*_create_companies_users.sql")
	require.Contains(t, content, "CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (email)")
	require.Contains(t, content, "companies_owner_fkey")
}

func TestMaybeRunDevSyncsSQLite(t *testing.T) {
	client, conn := dbtest.OpenClient(t)
	cfg := &config.Config{
		App:          config.AppConfig{Env: config.AppEnvDev},
		DB:           config.DBConfig{Driver: config.DriverSQLite},
		FeatureFlags: config.FeatureFlagsConfig{AutoMigrate: true},
	}
	logg := logger.New(logger.Options{ServiceName: "test"})

	require.NoError(t, MaybeRunDev(context.Background(), cfg, logg, client))
	require.True(t, conn.Migrator().HasTable("inventory"))
}

func TestMaybeRunDevSkipsOutsideDev(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: config.AppEnvProd}}
	require.NoError(t, MaybeRunDev(context.Background(), cfg, nil, nil))
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}
