package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quoteflow/backend/internal/domain/budget"
	"github.com/quoteflow/backend/internal/domain/shared"
	"github.com/quoteflow/backend/internal/infrastructure/auth"
	"github.com/quoteflow/backend/internal/interfaces/http/dto"
	"github.com/quoteflow/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)

	h.Success(c, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestBaseHandlerCreated(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)

	h.Created(c, map[string]string{"id": "1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
}

func TestBaseHandlerNoContent(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)

	h.NoContent(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestBaseHandlerSuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)

	h.SuccessWithMeta(c, []string{"a", "b"}, 42, 2, 20)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(42), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 20, resp.Meta.PageSize)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestHandleErrorDomainErrors(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "not found",
			err:            shared.NewDomainError("NOT_FOUND", "revision not found"),
			expectedStatus: http.StatusNotFound,
			expectedCode:   dto.ErrCodeNotFound,
		},
		{
			name:           "rut taken maps to already exists",
			err:            shared.NewDomainError("RUT_TAKEN", "rut already registered"),
			expectedStatus: http.StatusConflict,
			expectedCode:   dto.ErrCodeAlreadyExists,
		},
		{
			name:           "superseded revision",
			err:            shared.NewDomainError("REVISION_SUPERSEDED", "revision was superseded"),
			expectedStatus: http.StatusConflict,
			expectedCode:   dto.ErrCodeRevisionSuperseded,
		},
		{
			name:           "voided payment",
			err:            shared.NewDomainError("PAYMENT_VOIDED", "payment already voided"),
			expectedStatus: http.StatusConflict,
			expectedCode:   dto.ErrCodeAlreadyVoided,
		},
		{
			name:           "lock contention",
			err:            shared.NewDomainError("BUSY", "revision is being modified"),
			expectedStatus: http.StatusConflict,
			expectedCode:   dto.ErrCodeConcurrencyConflict,
		},
		{
			name:           "invalid amount",
			err:            shared.NewDomainError("INVALID_AMOUNT", "amount must be positive"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrCodeInvalidInput,
		},
		{
			name:           "plain error is internal",
			err:            fmt.Errorf("db connection reset"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestContext(t)

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
		})
	}
}

func TestHandleErrorWrappedDomainError(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)

	wrapped := fmt.Errorf("loading revision: %w", shared.NewDomainError("NOT_FOUND", "gone"))
	h.HandleError(c, wrapped)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleErrorReconciliation(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)

	err := budget.NewReconciliationError(
		decimal.NewFromInt(100000),
		decimal.NewFromInt(80000),
		decimal.NewFromInt(20000),
		decimal.NewFromInt(50000),
	)
	h.HandleError(c, err)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodePaymentExceedsTotal, resp.Error.Code)

	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "total_amount")
	assert.Contains(t, details, "total_paid")
	assert.Contains(t, details, "remaining_amount")
	assert.Contains(t, details, "requested")
}

func TestParseUUIDParam(t *testing.T) {
	t.Run("valid uuid", func(t *testing.T) {
		c, _ := newTestContext(t)
		id := uuid.New()
		c.Params = gin.Params{{Key: "id", Value: id.String()}}

		parsed, ok := parseUUIDParam(c, "id")
		assert.True(t, ok)
		assert.Equal(t, id, parsed)
	})

	t.Run("garbage aborts with 400", func(t *testing.T) {
		c, w := newTestContext(t)
		c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

		_, ok := parseUUIDParam(c, "id")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetIdentity(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		c, _ := newTestContext(t)
		want := &auth.Identity{BusinessID: uuid.New(), UserID: uuid.New(), Name: "Valentina"}
		c.Set(middleware.IdentityKey, want)

		got, ok := getIdentity(c)
		require.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("absent aborts with 401", func(t *testing.T) {
		c, w := newTestContext(t)

		_, ok := getIdentity(c)
		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
