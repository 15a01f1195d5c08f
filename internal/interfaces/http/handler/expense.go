package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	expenseapp "github.com/quoteflow/backend/internal/application/expense"
	"github.com/quoteflow/backend/internal/domain/expense"
	"github.com/quoteflow/backend/internal/interfaces/http/dto"
)

// ExpenseHandler handles expense record endpoints
type ExpenseHandler struct {
	BaseHandler
	expenseService *expenseapp.Service
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *expenseapp.Service) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// RecordExpenseRequest is the request body for recording an expense
type RecordExpenseRequest struct {
	Category       string          `json:"category" binding:"required,oneof=MATERIALS SUBCONTRACT SALARY RENT TRANSPORT TAX OTHER"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Description    string          `json:"description" binding:"required,max=500"`
	DocumentNumber string          `json:"document_number" binding:"max=50"`
	CostCenterID   *uuid.UUID      `json:"cost_center_id"`
	IncurredAt     time.Time       `json:"incurred_at"`
	Paid           bool            `json:"paid"`
}

// AmendExpenseRequest is the request body for amending a live expense
type AmendExpenseRequest struct {
	Category       string          `json:"category" binding:"required,oneof=MATERIALS SUBCONTRACT SALARY RENT TRANSPORT TAX OTHER"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Description    string          `json:"description" binding:"required,max=500"`
	DocumentNumber string          `json:"document_number" binding:"max=50"`
	IncurredAt     time.Time       `json:"incurred_at"`
}

// ListExpensesRequest holds list query parameters
type ListExpensesRequest struct {
	dto.ListRequest
	Category *string    `form:"category"`
	Paid     *bool      `form:"paid"`
	FromDate *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate   *time.Time `form:"to_date" time_format:"2006-01-02"`
}

// Record registers an operating expense
func (h *ExpenseHandler) Record(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}

	var req RecordExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	record, err := h.expenseService.Record(c.Request.Context(), expenseapp.RecordExpenseRequest{
		BusinessID:     identity.BusinessID,
		ActorID:        identity.UserID,
		Category:       expense.Category(req.Category),
		Amount:         req.Amount,
		Description:    req.Description,
		DocumentNumber: req.DocumentNumber,
		CostCenterID:   req.CostCenterID,
		IncurredAt:     req.IncurredAt,
		Paid:           req.Paid,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, record)
}

// Amend changes a live expense record
func (h *ExpenseHandler) Amend(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	expenseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req AmendExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	record, err := h.expenseService.Amend(c.Request.Context(), expenseapp.AmendExpenseRequest{
		BusinessID:     identity.BusinessID,
		ExpenseID:      expenseID,
		ActorID:        identity.UserID,
		Category:       expense.Category(req.Category),
		Amount:         req.Amount,
		Description:    req.Description,
		DocumentNumber: req.DocumentNumber,
		IncurredAt:     req.IncurredAt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// MarkPaid settles a pending expense
func (h *ExpenseHandler) MarkPaid(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	expenseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	record, err := h.expenseService.MarkPaid(c.Request.Context(), identity.BusinessID, expenseID, identity.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// Void marks an expense record void
func (h *ExpenseHandler) Void(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	expenseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	record, err := h.expenseService.Void(c.Request.Context(), identity.BusinessID, expenseID, identity.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// Delete soft-deletes an expense record together with its ledger movement
func (h *ExpenseHandler) Delete(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	expenseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.expenseService.Delete(c.Request.Context(), identity.BusinessID, expenseID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Get returns one expense record
func (h *ExpenseHandler) Get(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	expenseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	record, err := h.expenseService.Get(c.Request.Context(), identity.BusinessID, expenseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// List returns expense records for the caller's business
func (h *ExpenseHandler) List(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}

	var req ListExpensesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	filter := expense.Filter{
		Paid:     req.Paid,
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
	}
	if req.Category != nil {
		cat := expense.Category(*req.Category)
		filter.Category = &cat
	}
	filter.Page = req.Page
	filter.PageSize = req.PageSize
	filter.OrderBy = req.OrderBy
	filter.OrderDir = req.OrderDir

	page, err := h.expenseService.List(c.Request.Context(), identity.BusinessID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
