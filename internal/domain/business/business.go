package business

import (
	"time"

	"github.com/quoteflow/backend/internal/domain/shared"
	"github.com/quoteflow/backend/internal/domain/shared/valueobject"
	"gorm.io/gorm"
)

const defaultQuoteExpireDays = 30

// Business is a tenant of the platform. Its settings drive quote defaults
// for everything the business owns.
type Business struct {
	shared.BaseAggregateRoot
	Name            string               `gorm:"type:varchar(200);not null"`
	RUT             string               `gorm:"type:varchar(20);uniqueIndex"`
	Email           string               `gorm:"type:varchar(200)"`
	Phone           string               `gorm:"type:varchar(50)"`
	Address         string               `gorm:"type:varchar(300)"`
	DefaultCurrency valueobject.Currency `gorm:"type:varchar(5);not null;default:'CLP'"`
	QuoteExpireDays int                  `gorm:"not null;default:30"`
	Active          bool                 `gorm:"not null;default:true"`
	DeletedAt       gorm.DeletedAt       `gorm:"index"`
}

// TableName returns the table name for GORM
func (Business) TableName() string {
	return "businesses"
}

// NewBusiness creates a business with default quote settings
func NewBusiness(name, rut, email string) (*Business, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Business name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Business name cannot exceed 200 characters")
	}

	return &Business{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		RUT:               rut,
		Email:             email,
		DefaultCurrency:   valueobject.DefaultCurrency,
		QuoteExpireDays:   defaultQuoteExpireDays,
		Active:            true,
	}, nil
}

// UpdateSettings changes the quote defaults of the business
func (b *Business) UpdateSettings(currency valueobject.Currency, quoteExpireDays int) error {
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if quoteExpireDays <= 0 {
		return shared.NewDomainError("INVALID_SETTINGS", "Quote expire days must be positive")
	}
	b.DefaultCurrency = currency
	b.QuoteExpireDays = quoteExpireDays
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// UpdateContact changes the contact fields of the business
func (b *Business) UpdateContact(email, phone, address string) {
	b.Email = email
	b.Phone = phone
	b.Address = address
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}

// Deactivate disables the business. Reads still work; writes are rejected
// upstream by the middleware.
func (b *Business) Deactivate() error {
	if !b.Active {
		return shared.NewDomainError("INVALID_STATE", "Business is already inactive")
	}
	b.Active = false
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// QuoteExpireDate derives the expire date for a quote created now
func (b *Business) QuoteExpireDate(now time.Time) time.Time {
	days := b.QuoteExpireDays
	if days <= 0 {
		days = defaultQuoteExpireDays
	}
	return now.AddDate(0, 0, days)
}
