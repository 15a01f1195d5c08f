package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockPaymentRepository(t *testing.T) (*GormPaymentRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPaymentRepository(gormDB), mock, mockDB
}

func TestGormPaymentRepository_FindByID(t *testing.T) {
	t.Run("finds existing payment", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()
		budgetID := uuid.New()
		businessID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "business_id", "budget_id", "amount", "voided"}).
			AddRow(paymentID, businessID, budgetID, decimal.NewFromInt(50000), false)

		mock.ExpectQuery(`SELECT \* FROM "budget_payments" WHERE id = \$1 AND .*"deleted_at" IS NULL.*`).
			WithArgs(paymentID, 1).
			WillReturnRows(rows)

		p, err := repo.FindByID(context.Background(), paymentID)

		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, paymentID, p.ID)
		assert.Equal(t, budgetID, p.BudgetID)
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(50000)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for missing payment", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "budget_payments" WHERE id = \$1 AND .*"deleted_at" IS NULL.*`).
			WithArgs(paymentID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		p, err := repo.FindByID(context.Background(), paymentID)

		require.NoError(t, err)
		assert.Nil(t, p)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_FindByIDForBusiness(t *testing.T) {
	t.Run("scopes the lookup to the business", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()
		businessID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "business_id", "amount"}).
			AddRow(paymentID, businessID, decimal.NewFromInt(10000))

		mock.ExpectQuery(`SELECT \* FROM "budget_payments" WHERE \(business_id = \$1 AND id = \$2\) AND .*"deleted_at" IS NULL.*`).
			WithArgs(businessID, paymentID, 1).
			WillReturnRows(rows)

		p, err := repo.FindByIDForBusiness(context.Background(), businessID, paymentID)

		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, businessID, p.BusinessID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_FindByBudget(t *testing.T) {
	t.Run("lists payments ordered by date", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		budgetID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "budget_id", "amount", "voided"}).
			AddRow(uuid.New(), budgetID, decimal.NewFromInt(60000), false).
			AddRow(uuid.New(), budgetID, decimal.NewFromInt(40000), true)

		mock.ExpectQuery(`SELECT \* FROM "budget_payments" WHERE budget_id = \$1 AND .*"deleted_at" IS NULL.* ORDER BY date ASC, created_at ASC`).
			WithArgs(budgetID).
			WillReturnRows(rows)

		payments, err := repo.FindByBudget(context.Background(), budgetID)

		require.NoError(t, err)
		require.Len(t, payments, 2)
		assert.False(t, payments[0].Voided)
		assert.True(t, payments[1].Voided)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_Delete(t *testing.T) {
	t.Run("removes the row permanently", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()

		mock.ExpectExec(`DELETE FROM "budget_payments" WHERE id = \$1`).
			WithArgs(paymentID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), paymentID)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
