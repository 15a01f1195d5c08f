package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	budgetapp "github.com/quoteflow/backend/internal/application/budget"
	"github.com/quoteflow/backend/internal/domain/budget"
	"github.com/quoteflow/backend/internal/domain/shared/valueobject"
	"github.com/quoteflow/backend/internal/infrastructure/cache"
	"github.com/quoteflow/backend/internal/infrastructure/logger"
	"github.com/quoteflow/backend/internal/interfaces/http/dto"
)

// QuoteHandler handles quote revision endpoints
type QuoteHandler struct {
	BaseHandler
	versioningService *budgetapp.VersioningService
	viewCache         cache.QuoteViewCache
}

// NewQuoteHandler creates a new QuoteHandler. viewCache may be nil.
func NewQuoteHandler(versioningService *budgetapp.VersioningService, viewCache cache.QuoteViewCache) *QuoteHandler {
	return &QuoteHandler{versioningService: versioningService, viewCache: viewCache}
}

// CreateQuoteRequest is the request body for opening a new quote lineage
type CreateQuoteRequest struct {
	ClientID       uuid.UUID                     `json:"client_id" binding:"required"`
	Currency       string                        `json:"currency" binding:"omitempty,currency"`
	CurrencyValue  decimal.Decimal               `json:"currency_value"`
	Discount       decimal.Decimal               `json:"discount"`
	Utility        decimal.Decimal               `json:"utility"`
	ExpireDate     *time.Time                    `json:"expire_date"`
	LineProducts   []budgetapp.LineProductInput  `json:"line_products" binding:"dive"`
	LineItems      []budgetapp.LineItemInput     `json:"line_items" binding:"dive"`
	BankAccountIDs []uuid.UUID                   `json:"bank_account_ids"`
	Detail         *budgetapp.DetailInput        `json:"detail"`
}

// SupersedeQuoteRequest is the request body for replacing an enabled revision
type SupersedeQuoteRequest struct {
	ClientID       uuid.UUID                     `json:"client_id" binding:"required"`
	Currency       string                        `json:"currency" binding:"omitempty,currency"`
	CurrencyValue  decimal.Decimal               `json:"currency_value"`
	Discount       decimal.Decimal               `json:"discount"`
	Utility        decimal.Decimal               `json:"utility"`
	ExpireDate     *time.Time                    `json:"expire_date"`
	KeepSameNumber bool                          `json:"keep_same_number"`
	LineProducts   []budgetapp.LineProductInput  `json:"line_products" binding:"dive"`
	LineItems      []budgetapp.LineItemInput     `json:"line_items" binding:"dive"`
	BankAccountIDs []uuid.UUID                   `json:"bank_account_ids"`
	Detail         *budgetapp.DetailInput        `json:"detail"`
}

// ListQuotesRequest holds list query parameters
type ListQuotesRequest struct {
	dto.ListRequest
	ClientID *uuid.UUID `form:"client_id"`
	Enabled  *bool      `form:"enabled"`
	FromDate *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate   *time.Time `form:"to_date" time_format:"2006-01-02"`
}

// Create opens a new quote lineage
func (h *QuoteHandler) Create(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}

	var req CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	quote, err := h.versioningService.CreateQuote(c.Request.Context(), budgetapp.CreateQuoteRequest{
		BusinessID:     identity.BusinessID,
		ActorID:        identity.UserID,
		ClientID:       req.ClientID,
		Currency:       valueobject.Currency(req.Currency),
		CurrencyValue:  req.CurrencyValue,
		Discount:       req.Discount,
		Utility:        req.Utility,
		ExpireDate:     req.ExpireDate,
		LineProducts:   req.LineProducts,
		LineItems:      req.LineItems,
		BankAccountIDs: req.BankAccountIDs,
		Detail:         req.Detail,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, quote)
}

// Supersede replaces the enabled revision of a lineage with a new one
func (h *QuoteHandler) Supersede(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	budgetID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req SupersedeQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	quote, err := h.versioningService.Supersede(c.Request.Context(), budgetapp.SupersedeQuoteRequest{
		BudgetID:       budgetID,
		BusinessID:     identity.BusinessID,
		ActorID:        identity.UserID,
		ClientID:       req.ClientID,
		Currency:       valueobject.Currency(req.Currency),
		CurrencyValue:  req.CurrencyValue,
		Discount:       req.Discount,
		Utility:        req.Utility,
		ExpireDate:     req.ExpireDate,
		KeepSameNumber: req.KeepSameNumber,
		LineProducts:   req.LineProducts,
		LineItems:      req.LineItems,
		BankAccountIDs: req.BankAccountIDs,
		Detail:         req.Detail,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// Public viewers resolve by lineage token, so the cached view must
	// not outlive the superseded revision.
	if h.viewCache != nil && quote.Token != nil {
		if err := h.viewCache.Invalidate(c.Request.Context(), *quote.Token); err != nil {
			logger.GetGinLogger(c).Warn("Failed to invalidate quote view cache", zap.Error(err))
		}
	}

	h.Success(c, quote)
}

// Get returns one revision by ID
func (h *QuoteHandler) Get(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	budgetID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	quote, err := h.versioningService.GetQuote(c.Request.Context(), identity.BusinessID, budgetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, quote)
}

// History returns the revision chain of a quote, newest first
func (h *QuoteHandler) History(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	budgetID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	history, err := h.versioningService.GetHistory(c.Request.Context(), identity.BusinessID, budgetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, history)
}

// List returns revisions for the caller's business
func (h *QuoteHandler) List(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}

	var req ListQuotesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	filter := budget.Filter{
		ClientID: req.ClientID,
		Enabled:  req.Enabled,
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
	}
	filter.Page = req.Page
	filter.PageSize = req.PageSize
	filter.OrderBy = req.OrderBy
	filter.OrderDir = req.OrderDir

	page, err := h.versioningService.ListQuotes(c.Request.Context(), identity.BusinessID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
