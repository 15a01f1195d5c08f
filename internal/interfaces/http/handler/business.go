package handler

import (
	"github.com/gin-gonic/gin"

	businessapp "github.com/quoteflow/backend/internal/application/business"
	"github.com/quoteflow/backend/internal/domain/shared/valueobject"
)

// BusinessHandler handles tenant registration and settings endpoints
type BusinessHandler struct {
	BaseHandler
	service *businessapp.Service
}

// NewBusinessHandler creates a new BusinessHandler
func NewBusinessHandler(service *businessapp.Service) *BusinessHandler {
	return &BusinessHandler{service: service}
}

// CreateBusinessRequest holds business registration input
type CreateBusinessRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	RUT   string `json:"rut" binding:"required,rut"`
	Email string `json:"email" binding:"omitempty,email"`
}

// UpdateSettingsRequest holds quote default updates
type UpdateSettingsRequest struct {
	DefaultCurrency string `json:"default_currency" binding:"required,currency"`
	QuoteExpireDays int    `json:"quote_expire_days" binding:"required,min=1,max=365"`
}

// Create registers a new business
func (h *BusinessHandler) Create(c *gin.Context) {
	var req CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Create(c.Request.Context(), businessapp.CreateBusinessRequest{
		Name:  req.Name,
		RUT:   req.RUT,
		Email: req.Email,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns the caller's business
func (h *BusinessHandler) Get(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}

	resp, err := h.service.Get(c.Request.Context(), identity.BusinessID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateSettings changes the caller's quote defaults
func (h *BusinessHandler) UpdateSettings(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.UpdateSettings(c.Request.Context(), businessapp.UpdateSettingsRequest{
		BusinessID:      identity.BusinessID,
		DefaultCurrency: valueobject.Currency(req.DefaultCurrency),
		QuoteExpireDays: req.QuoteExpireDays,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
