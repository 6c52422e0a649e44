package repositories

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"invoicedash/internal/models"

	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type InvoiceRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    InvoiceRepository
	context context.Context
}

func (suite *InvoiceRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewInvoiceRepo(mock)
	suite.context = context.Background()
}

func (suite *InvoiceRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestInvoiceRepoTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceRepoTestSuite))
}

func (suite *InvoiceRepoTestSuite) TestCreate_Success() {
	invoice := &models.Invoice{
		CustomerID: "c1",
		Amount:     4500,
		Status:     models.InvoiceStatusPending,
		Date:       time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
	}

	suite.mock.ExpectQuery(`INSERT INTO invoices \(customer_id, amount, status, date\)\s+VALUES \(\$1, \$2, \$3, \$4\)\s+RETURNING id`).
		WithArgs("c1", int64(4500), "pending", "2024-03-09").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("3958dc9e-712f-4377-85e9-fec4b6a6442a"))

	err := suite.repo.Create(suite.context, invoice)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "3958dc9e-712f-4377-85e9-fec4b6a6442a", invoice.ID)
}

func (suite *InvoiceRepoTestSuite) TestCreate_DatabaseError() {
	invoice := &models.Invoice{CustomerID: "missing", Amount: 1, Status: models.InvoiceStatusPaid, Date: time.Now()}

	suite.mock.ExpectQuery(`INSERT INTO invoices`).
		WillReturnError(errors.New("violates foreign key constraint"))

	err := suite.repo.Create(suite.context, invoice)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "violates foreign key constraint")
	assert.Empty(suite.T(), invoice.ID)
}

func (suite *InvoiceRepoTestSuite) TestUpdate_TouchesOnlyMutableColumns() {
	suite.mock.ExpectExec(`UPDATE invoices\s+SET customer_id = \$1, amount = \$2, status = \$3\s+WHERE id = \$4`).
		WithArgs("c2", int64(1050), "paid", "inv1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	affected, err := suite.repo.Update(suite.context, "inv1", "c2", 1050, models.InvoiceStatusPaid)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), affected)
}

func (suite *InvoiceRepoTestSuite) TestUpdate_NoMatchingRow() {
	suite.mock.ExpectExec(`UPDATE invoices`).
		WithArgs("c2", int64(1050), "paid", "nope").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	affected, err := suite.repo.Update(suite.context, "nope", "c2", 1050, models.InvoiceStatusPaid)
	assert.NoError(suite.T(), err)
	assert.Zero(suite.T(), affected)
}

func (suite *InvoiceRepoTestSuite) TestUpdate_DatabaseError() {
	suite.mock.ExpectExec(`UPDATE invoices`).
		WillReturnError(errors.New("connection reset"))

	_, err := suite.repo.Update(suite.context, "inv1", "c2", 1050, models.InvoiceStatusPaid)
	assert.ErrorContains(suite.T(), err, "connection reset")
}

func (suite *InvoiceRepoTestSuite) TestDelete_Success() {
	suite.mock.ExpectExec(`DELETE FROM invoices WHERE id = \$1`).
		WithArgs("inv1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	affected, err := suite.repo.Delete(suite.context, "inv1")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), affected)
}

func (suite *InvoiceRepoTestSuite) TestDelete_DatabaseError() {
	suite.mock.ExpectExec(`DELETE FROM invoices`).
		WithArgs("inv1").
		WillReturnError(errors.New("database connection failed"))

	_, err := suite.repo.Delete(suite.context, "inv1")
	assert.ErrorContains(suite.T(), err, "database connection failed")
}

func (suite *InvoiceRepoTestSuite) TestGetByID_Success() {
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	suite.mock.ExpectQuery(`SELECT id, customer_id, amount, status, date\s+FROM invoices\s+WHERE id = \$1`).
		WithArgs("inv1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "customer_id", "amount", "status", "date"}).
			AddRow("inv1", "c1", int64(999), "paid", date))

	invoice, err := suite.repo.GetByID(suite.context, "inv1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), &models.Invoice{
		ID: "inv1", CustomerID: "c1", Amount: 999, Status: models.InvoiceStatusPaid, Date: date,
	}, invoice)
}

func (suite *InvoiceRepoTestSuite) TestGetByID_NotFound() {
	suite.mock.ExpectQuery(`FROM invoices\s+WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	invoice, err := suite.repo.GetByID(suite.context, "missing")
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), invoice)
}

func (suite *InvoiceRepoTestSuite) TestListFiltered_PagesAndFilters() {
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	suite.mock.ExpectQuery(`FROM invoices\s+JOIN customers ON invoices.customer_id = customers.id`).
		WithArgs("%lee%", InvoicesPerPage, InvoicesPerPage).
		WillReturnRows(pgxmock.NewRows([]string{"id", "customer_id", "name", "email", "amount", "status", "date"}).
			AddRow("inv7", "c3", "Lee Robinson", "lee@robinson.com", int64(500), "pending", date))

	items, err := suite.repo.ListFiltered(suite.context, "lee", 2)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), items, 1)
	assert.Equal(suite.T(), "Lee Robinson", items[0].CustomerName)
	assert.Equal(suite.T(), models.InvoiceStatusPending, items[0].Status)
}

func (suite *InvoiceRepoTestSuite) TestListFiltered_ClampsPage() {
	suite.mock.ExpectQuery(`FROM invoices`).
		WithArgs("%%", InvoicesPerPage, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "customer_id", "name", "email", "amount", "status", "date"}))

	items, err := suite.repo.ListFiltered(suite.context, "", 0)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), items)
	assert.NotNil(suite.T(), items)
}

func (suite *InvoiceRepoTestSuite) TestListFiltered_CapsOffset() {
	suite.mock.ExpectQuery(`FROM invoices`).
		WithArgs("%%", InvoicesPerPage, (MaxPage-1)*InvoicesPerPage).
		WillReturnRows(pgxmock.NewRows([]string{"id", "customer_id", "name", "email", "amount", "status", "date"}))

	items, err := suite.repo.ListFiltered(suite.context, "", math.MaxInt)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), items)
}

func (suite *InvoiceRepoTestSuite) TestCountPages() {
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM invoices`).
		WithArgs("%%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(13)))

	pages, err := suite.repo.CountPages(suite.context, "")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, pages)
}

func (suite *InvoiceRepoTestSuite) TestSummary() {
	suite.mock.ExpectQuery(`SELECT\s+\(SELECT COUNT\(\*\) FROM invoices\)`).
		WillReturnRows(pgxmock.NewRows([]string{"invoices", "customers", "paid", "pending"}).
			AddRow(int64(15), int64(6), int64(120000), int64(3450)))

	summary, err := suite.repo.Summary(suite.context)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(15), summary.InvoiceCount)
	assert.Equal(suite.T(), int64(6), summary.CustomerCount)
	assert.Equal(suite.T(), int64(120000), summary.TotalPaid)
	assert.Equal(suite.T(), int64(3450), summary.TotalPending)
}
