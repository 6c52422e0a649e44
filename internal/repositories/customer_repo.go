package repositories

import (
	"context"
	"fmt"

	"invoicedash/internal/models"
)

type CustomerRepository interface {
	List(ctx context.Context) ([]*models.Customer, error)
}

type customerRepo struct {
	db Database
}

func NewCustomerRepo(db Database) CustomerRepository {
	return &customerRepo{db: db}
}

// List returns every customer ordered by name, for the invoice form's picker
func (r *customerRepo) List(ctx context.Context) ([]*models.Customer, error) {
	query := `
		SELECT id, name, email, image_url
		FROM customers
		ORDER BY name ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := []*models.Customer{}
	for rows.Next() {
		c := &models.Customer{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.ImageURL); err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}
