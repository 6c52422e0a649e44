package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"invoicedash/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCustomerRepository struct {
	customers []*models.Customer
	err       error
}

func (s *stubCustomerRepository) List(ctx context.Context) ([]*models.Customer, error) {
	return s.customers, s.err
}

func TestListCustomers(t *testing.T) {
	tests := []struct {
		name     string
		repo     *stubCustomerRepository
		wantCode int
		wantBody string
	}{
		{
			name: "ok",
			repo: &stubCustomerRepository{customers: []*models.Customer{
				{ID: "c1", Name: "Amy Burns", Email: "amy@burns.com", ImageURL: "/customers/amy-burns.png"},
			}},
			wantCode: http.StatusOK,
			wantBody: `[{"id":"c1","name":"Amy Burns","email":"amy@burns.com","image_url":"/customers/amy-burns.png"}]`,
		},
		{
			name:     "store error",
			repo:     &stubCustomerRepository{err: errors.New("boom")},
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":{"code":"SERVER_ERROR","message":"Failed to fetch customers"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/dashboard/customers", nil), rec)

			require.NoError(t, NewCustomerHandlers(tt.repo, zerolog.Nop()).ListCustomers(c))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
