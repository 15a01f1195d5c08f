package budget

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	businessID := uuid.New()
	budgetID := uuid.New()
	actorID := uuid.New()

	t.Run("creates live payment", func(t *testing.T) {
		p, err := NewPayment(businessID, budgetID, actorID, decimal.NewFromInt(50000), time.Now(), "transferencia")
		require.NoError(t, err)

		assert.False(t, p.Voided)
		assert.Nil(t, p.VoidedAt)
		assert.True(t, p.IsLive())
		assert.Equal(t, budgetID, p.BudgetID)
		require.NotNil(t, p.CreatedBy)
		assert.Equal(t, actorID, *p.CreatedBy)
	})

	t.Run("defaults zero date to now", func(t *testing.T) {
		p, err := NewPayment(businessID, budgetID, actorID, decimal.NewFromInt(100), time.Time{}, "")
		require.NoError(t, err)
		assert.False(t, p.Date.IsZero())
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewPayment(businessID, budgetID, actorID, decimal.Zero, time.Now(), "")
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "INVALID_AMOUNT", derr.Code)

		_, err = NewPayment(businessID, budgetID, actorID, decimal.NewFromInt(-5), time.Now(), "")
		assert.Error(t, err)
	})

	t.Run("rejects missing parents", func(t *testing.T) {
		_, err := NewPayment(uuid.Nil, budgetID, actorID, decimal.NewFromInt(1), time.Now(), "")
		assert.Error(t, err)
		_, err = NewPayment(businessID, uuid.Nil, actorID, decimal.NewFromInt(1), time.Now(), "")
		assert.Error(t, err)
	})
}

func TestPaymentAmend(t *testing.T) {
	p, err := NewPayment(uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(1000), time.Now(), "")
	require.NoError(t, err)

	actor := uuid.New()
	newDate := time.Now().AddDate(0, 0, -3)
	require.NoError(t, p.Amend(actor, decimal.NewFromInt(2500), newDate, "cheque 1204"))
	assert.True(t, p.Amount.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, newDate, p.Date)
	assert.Equal(t, "cheque 1204", p.Reference)
	require.NotNil(t, p.UpdatedBy)
	assert.Equal(t, actor, *p.UpdatedBy)

	t.Run("keeps date when zero", func(t *testing.T) {
		require.NoError(t, p.Amend(actor, decimal.NewFromInt(2600), time.Time{}, ""))
		assert.Equal(t, newDate, p.Date)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		assert.Error(t, p.Amend(actor, decimal.Zero, time.Now(), ""))
	})

	t.Run("rejects amend after void", func(t *testing.T) {
		require.NoError(t, p.Void(actor))
		err := p.Amend(actor, decimal.NewFromInt(1), time.Now(), "")
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "PAYMENT_VOIDED", derr.Code)
	})
}

func TestPaymentVoid(t *testing.T) {
	p, err := NewPayment(uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(1000), time.Now(), "")
	require.NoError(t, err)

	actor := uuid.New()
	require.NoError(t, p.Void(actor))
	assert.True(t, p.Voided)
	require.NotNil(t, p.VoidedAt)
	assert.False(t, p.IsLive())

	// voiding twice is a conflict, not a no-op
	err = p.Void(actor)
	require.Error(t, err)
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "PAYMENT_VOIDED", derr.Code)
}
