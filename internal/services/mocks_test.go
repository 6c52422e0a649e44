package services

import (
	"context"

	"invoicedash/internal/caching"
	"invoicedash/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, id, customerID string, amount int64, status models.InvoiceStatus) (int64, error) {
	args := m.Called(ctx, id, customerID, amount, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListFiltered(ctx context.Context, query string, page int) ([]*models.InvoiceListItem, error) {
	args := m.Called(ctx, query, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InvoiceListItem), args.Error(1)
}

func (m *MockInvoiceRepository) CountPages(ctx context.Context, query string) (int, error) {
	args := m.Called(ctx, query)
	return args.Int(0), args.Error(1)
}

func (m *MockInvoiceRepository) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardSummary), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetView(ctx context.Context, path, variant string) (caching.ViewLookup, error) {
	args := m.Called(ctx, path, variant)
	return args.Get(0).(caching.ViewLookup), args.Error(1)
}

func (m *MockCacheService) SetView(ctx context.Context, path, variant string, generation int64, data []byte) error {
	return m.Called(ctx, path, variant, generation, data).Error(0)
}

func (m *MockCacheService) Generation(ctx context.Context, path string) (int64, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheService) InvalidatePath(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) Close() error {
	return m.Called().Error(0)
}
