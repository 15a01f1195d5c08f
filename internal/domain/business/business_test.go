package business

import (
	"testing"
	"time"

	"github.com/quoteflow/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBusiness(t *testing.T) {
	b, err := NewBusiness("Constructora Andes SpA", "76.123.456-7", "contacto@andes.cl")
	require.NoError(t, err)

	assert.True(t, b.Active)
	assert.Equal(t, valueobject.CLP, b.DefaultCurrency)
	assert.Equal(t, 30, b.QuoteExpireDays)

	_, err = NewBusiness("", "", "")
	assert.Error(t, err)
}

func TestBusinessSettings(t *testing.T) {
	b, err := NewBusiness("Constructora Andes SpA", "", "")
	require.NoError(t, err)

	require.NoError(t, b.UpdateSettings(valueobject.UF, 15))
	assert.Equal(t, valueobject.UF, b.DefaultCurrency)
	assert.Equal(t, 15, b.QuoteExpireDays)

	assert.Error(t, b.UpdateSettings(valueobject.CLP, 0))

	t.Run("empty currency falls back to default", func(t *testing.T) {
		require.NoError(t, b.UpdateSettings("", 10))
		assert.Equal(t, valueobject.DefaultCurrency, b.DefaultCurrency)
	})
}

func TestQuoteExpireDate(t *testing.T) {
	b, err := NewBusiness("Constructora Andes SpA", "", "")
	require.NoError(t, err)
	require.NoError(t, b.UpdateSettings(valueobject.CLP, 15))

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 16, 12, 0, 0, 0, time.UTC), b.QuoteExpireDate(now))
}

func TestDeactivate(t *testing.T) {
	b, err := NewBusiness("Constructora Andes SpA", "", "")
	require.NoError(t, err)

	require.NoError(t, b.Deactivate())
	assert.False(t, b.Active)
	assert.Error(t, b.Deactivate())
}
