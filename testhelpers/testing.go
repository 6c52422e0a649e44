package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"invoicedash/internal/models"
	"invoicedash/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func()
}

// SetupTestDB connects to TEST_DATABASE_URL, applies the schema and empties
// the tables. The test is skipped when no database is configured.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		pool.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	if _, err := pool.Exec(ctx, `TRUNCATE invoices, customers`); err != nil {
		pool.Close()
		t.Fatalf("Failed to reset test database: %v", err)
	}

	db := &TestDB{Pool: pool, Cleanup: pool.Close}
	t.Cleanup(db.Cleanup)
	return db
}

// SetupTestCustomer creates a test customer for testing
func SetupTestCustomer(t *testing.T, db *TestDB, name, email string) uuid.UUID {
	t.Helper()

	customerID := uuid.New()
	query := `
		INSERT INTO customers (id, name, email, image_url)
		VALUES ($1, $2, $3, $4)
	`
	_, err := db.Pool.Exec(context.Background(), query, customerID, name, email, "/customers/"+customerID.String()+".png")
	if err != nil {
		t.Fatalf("Failed to create test customer: %v", err)
	}

	return customerID
}

// SetupTestInvoice inserts an invoice directly, bypassing the repository
func SetupTestInvoice(t *testing.T, db *TestDB, customerID uuid.UUID, amount int64, status models.InvoiceStatus, date time.Time) uuid.UUID {
	t.Helper()

	invoiceID := uuid.New()
	query := `
		INSERT INTO invoices (id, customer_id, amount, status, date)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := db.Pool.Exec(context.Background(), query, invoiceID, customerID, amount, string(status), date.Format(time.DateOnly))
	if err != nil {
		t.Fatalf("Failed to create test invoice: %v", err)
	}

	return invoiceID
}
