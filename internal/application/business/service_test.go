package business

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/business"
	"github.com/quoteflow/backend/internal/domain/shared"
	"github.com/quoteflow/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	items map[uuid.UUID]*business.Business
}

func newMemRepo() *memRepo {
	return &memRepo{items: make(map[uuid.UUID]*business.Business)}
}

func (r *memRepo) FindByID(_ context.Context, id uuid.UUID) (*business.Business, error) {
	return r.items[id], nil
}

func (r *memRepo) FindByRUT(_ context.Context, rut string) (*business.Business, error) {
	for _, b := range r.items {
		if b.RUT == rut {
			return b, nil
		}
	}
	return nil, nil
}

func (r *memRepo) Create(_ context.Context, b *business.Business) error {
	r.items[b.ID] = b
	return nil
}

func (r *memRepo) Update(_ context.Context, b *business.Business) error {
	r.items[b.ID] = b
	return nil
}

var _ business.Repository = (*memRepo)(nil)

func TestCreateBusiness(t *testing.T) {
	svc := NewService(newMemRepo())

	resp, err := svc.Create(context.Background(), CreateBusinessRequest{
		Name:  "Constructora Andes SpA",
		RUT:   "76.123.456-7",
		Email: "contacto@andes.cl",
	})
	require.NoError(t, err)
	assert.True(t, resp.Active)
	assert.Equal(t, valueobject.CLP, resp.DefaultCurrency)

	t.Run("duplicate RUT rejected", func(t *testing.T) {
		_, err := svc.Create(context.Background(), CreateBusinessRequest{
			Name: "Otra Constructora",
			RUT:  "76.123.456-7",
		})
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "RUT_TAKEN", derr.Code)
	})
}

func TestUpdateSettings(t *testing.T) {
	svc := NewService(newMemRepo())

	created, err := svc.Create(context.Background(), CreateBusinessRequest{Name: "Constructora Andes SpA"})
	require.NoError(t, err)

	resp, err := svc.UpdateSettings(context.Background(), UpdateSettingsRequest{
		BusinessID:      created.ID,
		DefaultCurrency: valueobject.UF,
		QuoteExpireDays: 15,
	})
	require.NoError(t, err)
	assert.Equal(t, valueobject.UF, resp.DefaultCurrency)
	assert.Equal(t, 15, resp.QuoteExpireDays)

	_, err = svc.UpdateSettings(context.Background(), UpdateSettingsRequest{
		BusinessID:      uuid.New(),
		QuoteExpireDays: 10,
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
