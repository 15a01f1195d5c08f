package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/quoteflow/backend/internal/application/ledger"
	"github.com/quoteflow/backend/internal/domain/ledger"
	"github.com/quoteflow/backend/internal/interfaces/http/dto"
)

// LedgerHandler handles ledger movement read endpoints. Movements are
// written only through payments and expenses; there is no write endpoint.
type LedgerHandler struct {
	BaseHandler
	queryService *ledgerapp.QueryService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(queryService *ledgerapp.QueryService) *LedgerHandler {
	return &LedgerHandler{queryService: queryService}
}

// ListMovementsRequest holds list query parameters
type ListMovementsRequest struct {
	dto.ListRequest
	Type         *string    `form:"type" binding:"omitempty,oneof=INCOME EXPENSE"`
	Status       *string    `form:"status" binding:"omitempty,oneof=PENDING PAID VOIDED"`
	FromDate     *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate       *time.Time `form:"to_date" time_format:"2006-01-02"`
	AccountID    *uuid.UUID `form:"account_id"`
	CostCenterID *uuid.UUID `form:"cost_center_id"`
	ClientID     *uuid.UUID `form:"client_id"`
}

// SummaryRequest holds summary query parameters
type SummaryRequest struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// List returns movements for the caller's business
func (h *LedgerHandler) List(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}

	var req ListMovementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	filter := ledger.Filter{
		FromDate:     req.FromDate,
		ToDate:       req.ToDate,
		AccountID:    req.AccountID,
		CostCenterID: req.CostCenterID,
		ClientID:     req.ClientID,
	}
	if req.Type != nil {
		t := ledger.MovementType(*req.Type)
		filter.Type = &t
	}
	if req.Status != nil {
		s := ledger.MovementStatus(*req.Status)
		filter.Status = &s
	}
	filter.Page = req.Page
	filter.PageSize = req.PageSize
	filter.OrderBy = req.OrderBy
	filter.OrderDir = req.OrderDir

	page, err := h.queryService.List(c.Request.Context(), identity.BusinessID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get returns one movement
func (h *LedgerHandler) Get(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	movementID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	movement, err := h.queryService.Get(c.Request.Context(), identity.BusinessID, movementID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movement)
}

// Summary totals live movements over an optional date range
func (h *LedgerHandler) Summary(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}

	var req SummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var from, to time.Time
	if req.From != nil {
		from = *req.From
	}
	if req.To != nil {
		to = *req.To
	}

	summary, err := h.queryService.Summarize(c.Request.Context(), identity.BusinessID, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}
