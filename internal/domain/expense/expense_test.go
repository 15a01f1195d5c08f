package expense

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord(t *testing.T) {
	businessID := uuid.New()
	actorID := uuid.New()

	t.Run("creates unpaid record", func(t *testing.T) {
		r, err := NewRecord(businessID, actorID, CategoryMaterials, decimal.NewFromInt(85000), "Fierro estriado", "F-5521", nil, time.Now(), false)
		require.NoError(t, err)

		assert.False(t, r.Paid)
		assert.Nil(t, r.PaidAt)
		assert.False(t, r.Voided)
		assert.True(t, r.IsLive())

		events := r.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventExpenseRecorded, events[0].EventType())
	})

	t.Run("paid record stamps paid at", func(t *testing.T) {
		r, err := NewRecord(businessID, actorID, CategoryRent, decimal.NewFromInt(450000), "Arriendo bodega agosto", "", nil, time.Now(), true)
		require.NoError(t, err)
		assert.True(t, r.Paid)
		require.NotNil(t, r.PaidAt)
	})

	t.Run("rejects invalid inputs", func(t *testing.T) {
		_, err := NewRecord(uuid.Nil, actorID, CategoryOther, decimal.NewFromInt(1), "x", "", nil, time.Now(), false)
		assert.Error(t, err)

		_, err = NewRecord(businessID, actorID, Category("FOOD"), decimal.NewFromInt(1), "x", "", nil, time.Now(), false)
		assert.Error(t, err)

		_, err = NewRecord(businessID, actorID, CategoryOther, decimal.Zero, "x", "", nil, time.Now(), false)
		assert.Error(t, err)

		_, err = NewRecord(businessID, actorID, CategoryOther, decimal.NewFromInt(1), "", "", nil, time.Now(), false)
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "INVALID_DESCRIPTION", derr.Code)
	})
}

func TestRecordAmend(t *testing.T) {
	r, err := NewRecord(uuid.New(), uuid.New(), CategoryMaterials, decimal.NewFromInt(1000), "Cemento", "", nil, time.Now(), false)
	require.NoError(t, err)

	actor := uuid.New()
	require.NoError(t, r.Amend(actor, CategoryTransport, decimal.NewFromInt(2000), "Flete cemento", "G-10", time.Now()))
	assert.Equal(t, CategoryTransport, r.Category)
	assert.True(t, r.Amount.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, 2, r.GetVersion())
	require.NotNil(t, r.UpdatedBy)
	assert.Equal(t, actor, *r.UpdatedBy)

	t.Run("rejects invalid amend", func(t *testing.T) {
		assert.Error(t, r.Amend(actor, CategoryOther, decimal.Zero, "x", "", time.Now()))
		assert.Error(t, r.Amend(actor, CategoryOther, decimal.NewFromInt(1), "", "", time.Now()))
	})
}

func TestRecordLifecycle(t *testing.T) {
	r, err := NewRecord(uuid.New(), uuid.New(), CategorySalary, decimal.NewFromInt(600000), "Sueldo maestro", "", nil, time.Now(), false)
	require.NoError(t, err)

	actor := uuid.New()
	require.NoError(t, r.MarkPaid(actor))
	assert.True(t, r.Paid)
	require.NotNil(t, r.PaidAt)

	// paying twice is a conflict
	err = r.MarkPaid(actor)
	require.Error(t, err)
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "ALREADY_PAID", derr.Code)

	require.NoError(t, r.Void(actor))
	assert.True(t, r.Voided)
	assert.False(t, r.IsLive())

	// voided is terminal
	assert.Error(t, r.Void(actor))
	assert.Error(t, r.MarkPaid(actor))
	assert.Error(t, r.Amend(actor, CategoryOther, decimal.NewFromInt(1), "x", "", time.Now()))
}
