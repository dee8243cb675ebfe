package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type openOccupancyRequest struct {
	SpotID       int64  `json:"spotId" binding:"required"`
	VehiclePlate string `json:"vehiclePlate" binding:"required"`
}

// OpenOccupancy handles POST /api/occupancies.
func (h *Handler) OpenOccupancy(c *gin.Context) {
	var req openOccupancyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	occ, err := h.engine.OpenOccupancy(c.Request.Context(), req.SpotID, req.VehiclePlate)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, occ)
}

// ListActiveOccupancies handles GET /api/occupancies.
func (h *Handler) ListActiveOccupancies(c *gin.Context) {
	occs, err := h.store.ListActiveOccupancies(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, occs)
}

// ListOccupancies handles GET /api/occupancies/all, optionally filtered by
// the plate query parameter.
func (h *Handler) ListOccupancies(c *gin.Context) {
	ctx := c.Request.Context()
	if p := c.Query("plate"); p != "" {
		occs, err := h.store.ListOccupanciesByPlate(ctx, p)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, occs)
		return
	}

	occs, err := h.store.ListOccupancies(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, occs)
}

// GetOccupancy handles GET /api/occupancies/:id.
func (h *Handler) GetOccupancy(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid occupancy id"})
		return
	}

	occ, err := h.store.OccupancyByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, occ)
}

// QuoteFee handles GET /api/occupancies/:id/fee. For a still-open occupancy
// this prices the session up to the current instant without closing it.
func (h *Handler) QuoteFee(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid occupancy id"})
		return
	}

	fee, err := h.engine.ComputeFee(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fee": fee})
}

// CloseOccupancy handles POST /api/occupancies/:id/close.
func (h *Handler) CloseOccupancy(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid occupancy id"})
		return
	}

	occ, err := h.engine.CloseOccupancy(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, occ)
}
