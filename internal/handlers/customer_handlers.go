package handlers

import (
	"net/http"

	"invoicedash/internal/common"
	"invoicedash/internal/repositories"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type CustomerHandlers struct {
	customerRepo repositories.CustomerRepository
	log          zerolog.Logger
}

func NewCustomerHandlers(customerRepo repositories.CustomerRepository, log zerolog.Logger) *CustomerHandlers {
	return &CustomerHandlers{customerRepo: customerRepo, log: log}
}

// ListCustomers handles GET /dashboard/customers
func (h *CustomerHandlers) ListCustomers(c echo.Context) error {
	customers, err := h.customerRepo.List(c.Request().Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list customers")
		return common.SendServerError(c, "Failed to fetch customers")
	}
	return c.JSON(http.StatusOK, customers)
}
