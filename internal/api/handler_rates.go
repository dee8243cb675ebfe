package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createRateRequest struct {
	PerHour       decimal.Decimal `json:"perHour" binding:"required"`
	PerMinute     decimal.Decimal `json:"perMinute" binding:"required"`
	EffectiveFrom *time.Time      `json:"effectiveFrom"`
}

// CreateRate handles POST /api/rates. The new rate supersedes the currently
// active one; effectiveFrom defaults to now.
func (h *Handler) CreateRate(c *gin.Context) {
	var req createRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	effectiveFrom := time.Now().UTC()
	if req.EffectiveFrom != nil {
		effectiveFrom = req.EffectiveFrom.UTC()
	}

	rate, err := h.store.IntroduceRate(c.Request.Context(), req.PerHour, req.PerMinute, effectiveFrom)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rate)
}

// ListRates handles GET /api/rates.
func (h *Handler) ListRates(c *gin.Context) {
	rates, err := h.store.ListRates(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rates)
}

// GetEffectiveRate handles GET /api/rates/effective.
func (h *Handler) GetEffectiveRate(c *gin.Context) {
	rate, err := h.store.EffectiveRate(c.Request.Context(), time.Now().UTC())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rate)
}
