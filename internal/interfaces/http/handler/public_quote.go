package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	budgetapp "github.com/quoteflow/backend/internal/application/budget"
	"github.com/quoteflow/backend/internal/infrastructure/cache"
	"github.com/quoteflow/backend/internal/infrastructure/logger"
)

// PublicQuoteHandler serves the unauthenticated quote view. A lineage
// token always resolves to the revision currently enabled, never to a
// superseded one.
type PublicQuoteHandler struct {
	BaseHandler
	versioningService *budgetapp.VersioningService
	viewCache         cache.QuoteViewCache
}

// NewPublicQuoteHandler creates a new PublicQuoteHandler. viewCache may be nil.
func NewPublicQuoteHandler(versioningService *budgetapp.VersioningService, viewCache cache.QuoteViewCache) *PublicQuoteHandler {
	return &PublicQuoteHandler{versioningService: versioningService, viewCache: viewCache}
}

// GetByToken returns the public projection of the enabled revision for a
// share token. Internal identifiers and payment details never leave this
// endpoint.
func (h *PublicQuoteHandler) GetByToken(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		h.BadRequest(c, "token is required")
		return
	}

	if h.viewCache != nil {
		cached, err := h.viewCache.Get(c.Request.Context(), token)
		if err != nil {
			logger.GetGinLogger(c).Warn("Quote view cache lookup failed", zap.Error(err))
		} else if cached != nil {
			h.Success(c, cached)
			return
		}
	}

	quote, err := h.versioningService.GetPublicViewByToken(c.Request.Context(), token)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if h.viewCache != nil {
		if err := h.viewCache.Set(c.Request.Context(), token, quote); err != nil {
			logger.GetGinLogger(c).Warn("Failed to cache quote view", zap.Error(err))
		}
	}

	h.Success(c, quote)
}
