package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	budgetapp "github.com/quoteflow/backend/internal/application/budget"
	"github.com/quoteflow/backend/internal/domain/ledger"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *budgetapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *budgetapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// ValidatePaymentRequest asks whether an amount would reconcile
type ValidatePaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// RegisterPaymentRequest is the request body for registering a payment.
// Status is optional and defaults to PENDING; the remaining optional fields
// annotate the mirrored ledger movement.
type RegisterPaymentRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Date            time.Time       `json:"date"`
	Reference       string          `json:"reference" binding:"max=200"`
	Status          string          `json:"status" binding:"omitempty,oneof=PENDING PAID"`
	AccountID       *uuid.UUID      `json:"account_id"`
	PaymentMethodID *uuid.UUID      `json:"payment_method_id"`
	DocumentTypeID  *uuid.UUID      `json:"document_type_id"`
	DocumentNumber  string          `json:"document_number" binding:"max=50"`
}

// AmendPaymentRequest is the request body for amending a live payment.
// Absent fields keep their current value.
type AmendPaymentRequest struct {
	Amount    *decimal.Decimal `json:"amount"`
	Date      *time.Time       `json:"date"`
	Reference *string          `json:"reference" binding:"omitempty,max=200"`
}

// Validate reports whether an amount fits the revision's remaining headroom.
// The check is advisory; Register re-validates under a row lock.
func (h *PaymentHandler) Validate(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	budgetID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req ValidatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.paymentService.Validate(c.Request.Context(), identity.BusinessID, budgetID, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Register records money received against a revision
func (h *PaymentHandler) Register(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	budgetID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.Register(c.Request.Context(), budgetapp.RegisterPaymentRequest{
		BusinessID:      identity.BusinessID,
		BudgetID:        budgetID,
		ActorID:         identity.UserID,
		Amount:          req.Amount,
		Date:            req.Date,
		Reference:       req.Reference,
		Status:          ledger.MovementStatus(req.Status),
		AccountID:       req.AccountID,
		PaymentMethodID: req.PaymentMethodID,
		DocumentTypeID:  req.DocumentTypeID,
		DocumentNumber:  req.DocumentNumber,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, payment)
}

// ListByBudget lists payments of a revision, voided ones included
func (h *PaymentHandler) ListByBudget(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	budgetID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	payments, err := h.paymentService.ListByBudget(c.Request.Context(), identity.BusinessID, budgetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payments)
}

// Get returns one payment together with its ledger movement
func (h *PaymentHandler) Get(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	paymentID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	payment, err := h.paymentService.FindWithMovement(c.Request.Context(), identity.BusinessID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// Amend changes the supplied fields of a live payment and leaves the rest
// untouched
func (h *PaymentHandler) Amend(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	paymentID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req AmendPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.Amend(c.Request.Context(), budgetapp.AmendPaymentRequest{
		BusinessID: identity.BusinessID,
		PaymentID:  paymentID,
		ActorID:    identity.UserID,
		Amount:     req.Amount,
		Date:       req.Date,
		Reference:  req.Reference,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// Void marks a payment void and releases its reconciled amount
func (h *PaymentHandler) Void(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	paymentID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	payment, err := h.paymentService.Void(c.Request.Context(), identity.BusinessID, paymentID, identity.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// Delete permanently removes a payment together with its ledger movement
func (h *PaymentHandler) Delete(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	paymentID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.paymentService.Delete(c.Request.Context(), identity.BusinessID, paymentID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
