package business

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/business"
	"github.com/quoteflow/backend/internal/domain/shared"
	"github.com/quoteflow/backend/internal/domain/shared/valueobject"
)

// CreateBusinessRequest registers a new tenant
type CreateBusinessRequest struct {
	Name  string
	RUT   string
	Email string
}

// UpdateSettingsRequest changes quote defaults
type UpdateSettingsRequest struct {
	BusinessID      uuid.UUID
	DefaultCurrency valueobject.Currency
	QuoteExpireDays int
}

// BusinessResponse mirrors a persisted business
type BusinessResponse struct {
	ID              uuid.UUID            `json:"id"`
	Name            string               `json:"name"`
	RUT             string               `json:"rut,omitempty"`
	Email           string               `json:"email,omitempty"`
	Phone           string               `json:"phone,omitempty"`
	Address         string               `json:"address,omitempty"`
	DefaultCurrency valueobject.Currency `json:"default_currency"`
	QuoteExpireDays int                  `json:"quote_expire_days"`
	Active          bool                 `json:"active"`
	CreatedAt       time.Time            `json:"created_at"`
}

// ToBusinessResponse maps a business to its API view
func ToBusinessResponse(b *business.Business) BusinessResponse {
	return BusinessResponse{
		ID:              b.ID,
		Name:            b.Name,
		RUT:             b.RUT,
		Email:           b.Email,
		Phone:           b.Phone,
		Address:         b.Address,
		DefaultCurrency: b.DefaultCurrency,
		QuoteExpireDays: b.QuoteExpireDays,
		Active:          b.Active,
		CreatedAt:       b.CreatedAt,
	}
}

// Service manages tenant registration and settings
type Service struct {
	repo business.Repository
}

// NewService creates a new business Service
func NewService(repo business.Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a business. RUT collisions are rejected.
func (s *Service) Create(ctx context.Context, req CreateBusinessRequest) (*BusinessResponse, error) {
	if req.RUT != "" {
		existing, err := s.repo.FindByRUT(ctx, req.RUT)
		if err != nil {
			return nil, fmt.Errorf("failed to check RUT: %w", err)
		}
		if existing != nil {
			return nil, shared.NewDomainError("RUT_TAKEN", "A business with this RUT already exists")
		}
	}

	b, err := business.NewBusiness(req.Name, req.RUT, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to save business: %w", err)
	}

	resp := ToBusinessResponse(b)
	return &resp, nil
}

// Get loads one business
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*BusinessResponse, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load business: %w", err)
	}
	if b == nil {
		return nil, shared.ErrNotFound
	}
	resp := ToBusinessResponse(b)
	return &resp, nil
}

// UpdateSettings changes a business's quote defaults
func (s *Service) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*BusinessResponse, error) {
	b, err := s.repo.FindByID(ctx, req.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("failed to load business: %w", err)
	}
	if b == nil {
		return nil, shared.ErrNotFound
	}

	if err := b.UpdateSettings(req.DefaultCurrency, req.QuoteExpireDays); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to save business: %w", err)
	}

	resp := ToBusinessResponse(b)
	return &resp, nil
}
