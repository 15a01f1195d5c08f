package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/quoteflow/backend/internal/domain/budget"
)

func newMockBudgetRepository(t *testing.T) (*GormBudgetRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormBudgetRepository(gormDB), mock, mockDB
}

func TestGormBudgetRepository_NextNumber(t *testing.T) {
	t.Run("first number for a business is 1", func(t *testing.T) {
		repo, mock, mockDB := newMockBudgetRepository(t)
		defer mockDB.Close()

		businessID := uuid.New()

		mock.ExpectQuery(`SELECT COALESCE\(MAX\(number\), 0\) FROM "budgets" WHERE business_id = \$1`).
			WithArgs(businessID).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))

		number, err := repo.NextNumber(context.Background(), businessID)

		require.NoError(t, err)
		assert.Equal(t, 1, number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("continues past the current maximum", func(t *testing.T) {
		repo, mock, mockDB := newMockBudgetRepository(t)
		defer mockDB.Close()

		businessID := uuid.New()

		mock.ExpectQuery(`SELECT COALESCE\(MAX\(number\), 0\) FROM "budgets" WHERE business_id = \$1`).
			WithArgs(businessID).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(41))

		number, err := repo.NextNumber(context.Background(), businessID)

		require.NoError(t, err)
		assert.Equal(t, 42, number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBudgetRepository_CountForBusiness(t *testing.T) {
	t.Run("applies the enabled filter", func(t *testing.T) {
		repo, mock, mockDB := newMockBudgetRepository(t)
		defer mockDB.Close()

		businessID := uuid.New()
		enabled := true

		mock.ExpectQuery(`SELECT count\(\*\) FROM "budgets" WHERE \(business_id = \$1 AND enabled = \$2\) AND .*"deleted_at" IS NULL.*`).
			WithArgs(businessID, enabled).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.CountForBusiness(context.Background(), businessID, budget.Filter{Enabled: &enabled})

		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
