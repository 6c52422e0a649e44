package repositories

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"invoicedash/internal/models"

	"github.com/jackc/pgx/v5"
)

// InvoicesPerPage is the page size of the invoices listing
const InvoicesPerPage = 6

// MaxPage keeps the listing offset within a 32-bit integer
const MaxPage = math.MaxInt32 / InvoicesPerPage

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	Update(ctx context.Context, id, customerID string, amount int64, status models.InvoiceStatus) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	GetByID(ctx context.Context, id string) (*models.Invoice, error)
	ListFiltered(ctx context.Context, query string, page int) ([]*models.InvoiceListItem, error)
	CountPages(ctx context.Context, query string) (int, error)
	Summary(ctx context.Context) (*models.DashboardSummary, error)
}

type invoiceRepo struct {
	db Database
}

func NewInvoiceRepo(db Database) InvoiceRepository {
	return &invoiceRepo{db: db}
}

// Create inserts the invoice and stores the database-generated id on it
func (r *invoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	query := `
		INSERT INTO invoices (customer_id, amount, status, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query, invoice.CustomerID, invoice.Amount, string(invoice.Status), invoice.Date.Format(time.DateOnly)).Scan(&invoice.ID)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of one invoice and reports rows affected.
// id and date are never touched.
func (r *invoiceRepo) Update(ctx context.Context, id, customerID string, amount int64, status models.InvoiceStatus) (int64, error) {
	query := `
		UPDATE invoices
		SET customer_id = $1, amount = $2, status = $3
		WHERE id = $4
	`
	tag, err := r.db.Exec(ctx, query, customerID, amount, string(status), id)
	if err != nil {
		return 0, fmt.Errorf("update invoice %s: %w", id, err)
	}
	return tag.RowsAffected(), nil
}

func (r *invoiceRepo) Delete(ctx context.Context, id string) (int64, error) {
	query := `DELETE FROM invoices WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete invoice %s: %w", id, err)
	}
	return tag.RowsAffected(), nil
}

// GetByID returns nil, nil when no invoice has the id
func (r *invoiceRepo) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	query := `
		SELECT id, customer_id, amount, status, date
		FROM invoices
		WHERE id = $1
	`
	var status string
	err := r.db.QueryRow(ctx, query, id).Scan(&invoice.ID, &invoice.CustomerID, &invoice.Amount, &status, &invoice.Date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice %s: %w", id, err)
	}
	invoice.Status = models.InvoiceStatus(status)
	return invoice, nil
}

// ListFiltered returns one page (1-based) of invoices whose customer, amount,
// date or status matches query, newest first
func (r *invoiceRepo) ListFiltered(ctx context.Context, query string, page int) ([]*models.InvoiceListItem, error) {
	page = min(max(page, 1), MaxPage)
	sql := `
		SELECT invoices.id, invoices.customer_id, customers.name, customers.email, invoices.amount, invoices.status, invoices.date
		FROM invoices
		JOIN customers ON invoices.customer_id = customers.id
		WHERE customers.name ILIKE $1
			OR customers.email ILIKE $1
			OR invoices.amount::text ILIKE $1
			OR invoices.date::text ILIKE $1
			OR invoices.status ILIKE $1
		ORDER BY invoices.date DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, sql, likePattern(query), InvoicesPerPage, (page-1)*InvoicesPerPage)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	invoices := []*models.InvoiceListItem{}
	for rows.Next() {
		item := &models.InvoiceListItem{}
		var status string
		if err := rows.Scan(&item.ID, &item.CustomerID, &item.CustomerName, &item.CustomerEmail, &item.Amount, &status, &item.Date); err != nil {
			return nil, fmt.Errorf("scan invoice row: %w", err)
		}
		item.Status = models.InvoiceStatus(status)
		invoices = append(invoices, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

func (r *invoiceRepo) CountPages(ctx context.Context, query string) (int, error) {
	sql := `
		SELECT COUNT(*)
		FROM invoices
		JOIN customers ON invoices.customer_id = customers.id
		WHERE customers.name ILIKE $1
			OR customers.email ILIKE $1
			OR invoices.amount::text ILIKE $1
			OR invoices.date::text ILIKE $1
			OR invoices.status ILIKE $1
	`
	var count int64
	if err := r.db.QueryRow(ctx, sql, likePattern(query)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return int(math.Ceil(float64(count) / InvoicesPerPage)), nil
}

func (r *invoiceRepo) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM invoices),
			(SELECT COUNT(*) FROM customers),
			COALESCE(SUM(CASE WHEN status = 'paid' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'pending' THEN amount ELSE 0 END), 0)
		FROM invoices
	`
	summary := &models.DashboardSummary{}
	err := r.db.QueryRow(ctx, query).Scan(&summary.InvoiceCount, &summary.CustomerCount, &summary.TotalPaid, &summary.TotalPending)
	if err != nil {
		return nil, fmt.Errorf("invoice summary: %w", err)
	}
	return summary, nil
}

func likePattern(query string) string {
	return "%" + query + "%"
}
