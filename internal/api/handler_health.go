package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"parking-backend/internal/model"
)

// Healthz handles GET /healthz: a database ping plus table counts, so a probe
// can tell connection trouble apart from an empty deployment.
func (h *Handler) Healthz(c *gin.Context) {
	sqlDB, err := h.store.DB().DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database unreachable",
		})
		return
	}

	var spots, occupancies, rates int64
	db := h.store.DB().WithContext(c.Request.Context())
	db.Model(&model.Spot{}).Count(&spots)
	db.Model(&model.Occupancy{}).Count(&occupancies)
	db.Model(&model.PriceRate{}).Count(&rates)

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"counts": gin.H{
			"spots":       spots,
			"occupancies": occupancies,
			"priceRates":  rates,
		},
	})
}
