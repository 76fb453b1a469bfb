package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/norraset/shopapi/internal/models"
	"github.com/norraset/shopapi/internal/store"
)

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:14-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	postgres, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	host, err := postgres.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := postgres.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	if err := runMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			t.Logf("Failed to close database: %v", err)
		}
		if err := postgres.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

func runMigrations(db *sql.DB) error {
	migrationDir := "../../migrations"
	files, err := os.ReadDir(migrationDir)
	if err != nil {
		return fmt.Errorf("read migration directory: %w", err)
	}

	var migrationFiles []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".up.sql") {
			migrationFiles = append(migrationFiles, file.Name())
		}
	}

	sort.Strings(migrationFiles)

	for _, filename := range migrationFiles {
		filePath := filepath.Join(migrationDir, filename)
		content, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("read migration file %s: %w", filename, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("execute migration %s: %w", filename, err)
		}
	}

	return nil
}

// Fixture helpers. Each test seeds its own catalog through the stores so the
// same code paths are exercised as in production.

func createTestUser(t *testing.T, db *sql.DB, email string) *models.User {
	t.Helper()
	users := &store.UserStore{DB: db}
	user, err := users.Create(context.Background(), email, "Test User", "customer")
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}
	return user
}

func createTestSize(t *testing.T, db *sql.DB, label string) *models.Size {
	t.Helper()
	sizes := &store.SizeStore{DB: db}
	size, err := sizes.Create(context.Background(), label)
	if err != nil {
		t.Fatalf("Create size %q: %v", label, err)
	}
	return size
}

func createTestCategory(t *testing.T, db *sql.DB, name string) *models.Category {
	t.Helper()
	categories := &store.CategoryStore{DB: db}
	category, err := categories.Create(context.Background(), name)
	if err != nil {
		t.Fatalf("Create category %q: %v", name, err)
	}
	return category
}

func createTestProduct(t *testing.T, db *sql.DB, categoryID int64, sku string, price int64, sizeID int64, stock int) *models.Product {
	t.Helper()
	products := &store.ProductStore{DB: db}
	product, err := products.Create(context.Background(), categoryID, sku, "Product "+sku, "",
		decimal.NewFromInt(price), []store.SizeStockInput{{SizeID: sizeID, Stock: stock}})
	if err != nil {
		t.Fatalf("Create product %q: %v", sku, err)
	}
	return product
}
