package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/quoteflow/backend/internal/domain/ledger"
)

func newMockLedgerRepository(t *testing.T) (*GormLedgerRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormLedgerRepository(gormDB), mock, mockDB
}

func TestGormLedgerRepository_FindByPaymentID(t *testing.T) {
	t.Run("resolves the mirror movement", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		movementID := uuid.New()
		paymentID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "type", "status", "amount", "budget_payment_id"}).
			AddRow(movementID, "INCOME", "PAID", decimal.NewFromInt(50000), paymentID)

		mock.ExpectQuery(`SELECT \* FROM "ledger_movements" WHERE budget_payment_id = \$1 AND .*"deleted_at" IS NULL.*`).
			WithArgs(paymentID, 1).
			WillReturnRows(rows)

		m, err := repo.FindByPaymentID(context.Background(), paymentID)

		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, movementID, m.ID)
		assert.Equal(t, ledger.MovementTypeIncome, m.Type)
		require.NotNil(t, m.BudgetPaymentID)
		assert.Equal(t, paymentID, *m.BudgetPaymentID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil when no mirror exists", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "ledger_movements" WHERE budget_payment_id = \$1 AND .*"deleted_at" IS NULL.*`).
			WithArgs(paymentID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		m, err := repo.FindByPaymentID(context.Background(), paymentID)

		require.NoError(t, err)
		assert.Nil(t, m)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerRepository_CountForBusiness(t *testing.T) {
	t.Run("account filter narrows the count", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		businessID := uuid.New()
		accountID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "ledger_movements" WHERE \(business_id = \$1 AND account_id = \$2\) AND .*"deleted_at" IS NULL.*`).
			WithArgs(businessID, accountID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.CountForBusiness(context.Background(), businessID, ledger.Filter{AccountID: &accountID})

		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerRepository_Delete(t *testing.T) {
	t.Run("removes the row permanently", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		movementID := uuid.New()

		mock.ExpectExec(`DELETE FROM "ledger_movements" WHERE id = \$1`).
			WithArgs(movementID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), movementID)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerRepository_Summarize(t *testing.T) {
	t.Run("totals live movements by type", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		businessID := uuid.New()

		rows := sqlmock.NewRows([]string{"type", "total"}).
			AddRow("INCOME", decimal.NewFromInt(130000)).
			AddRow("EXPENSE", decimal.NewFromInt(30000))

		mock.ExpectQuery(`SELECT type, COALESCE\(SUM\(amount\), 0\) AS total FROM "ledger_movements" WHERE \(business_id = \$1 AND status <> \$2\) AND .*"deleted_at" IS NULL.* GROUP BY "type"`).
			WithArgs(businessID, string(ledger.MovementStatusVoided)).
			WillReturnRows(rows)

		summary, err := repo.Summarize(context.Background(), businessID, time.Time{}, time.Time{})

		require.NoError(t, err)
		assert.True(t, summary.Income.Equal(decimal.NewFromInt(130000)))
		assert.True(t, summary.Expense.Equal(decimal.NewFromInt(30000)))
		assert.True(t, summary.Balance.Equal(decimal.NewFromInt(100000)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty range yields zeroes", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		businessID := uuid.New()

		mock.ExpectQuery(`SELECT type, COALESCE\(SUM\(amount\), 0\) AS total FROM "ledger_movements"`).
			WillReturnRows(sqlmock.NewRows([]string{"type", "total"}))

		summary, err := repo.Summarize(context.Background(), businessID, time.Time{}, time.Time{})

		require.NoError(t, err)
		assert.True(t, summary.Income.IsZero())
		assert.True(t, summary.Expense.IsZero())
		assert.True(t, summary.Balance.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
