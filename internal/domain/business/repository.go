package business

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence port for businesses.
// Implementations return (nil, nil) when a row is not found.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Business, error)
	FindByRUT(ctx context.Context, rut string) (*Business, error)
	Create(ctx context.Context, b *Business) error
	Update(ctx context.Context, b *Business) error
}
