package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type createSpotRequest struct {
	Number string `json:"number" binding:"required"`
}

// CreateSpot handles POST /api/spots.
func (h *Handler) CreateSpot(c *gin.Context) {
	var req createSpotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	spot, err := h.store.CreateSpot(c.Request.Context(), req.Number)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, spot)
}

// ListSpots handles GET /api/spots.
func (h *Handler) ListSpots(c *gin.Context) {
	spots, err := h.store.ListSpots(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, spots)
}

// GetSpot handles GET /api/spots/:id.
func (h *Handler) GetSpot(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spot id"})
		return
	}

	spot, err := h.store.SpotByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, spot)
}

// spotAvailability is a per-spot row of the availability view; occupied spots
// carry the plate and entry time of the vehicle currently parked there.
type spotAvailability struct {
	ID           int64      `json:"id"`
	Number       string     `json:"number"`
	Occupied     bool       `json:"occupied"`
	VehiclePlate *string    `json:"vehiclePlate,omitempty"`
	EntryTime    *time.Time `json:"entryTime,omitempty"`
}

type availabilityResponse struct {
	TotalSpots     int                `json:"totalSpots"`
	OccupiedSpots  int                `json:"occupiedSpots"`
	AvailableSpots int                `json:"availableSpots"`
	Spots          []spotAvailability `json:"spots"`
}

// GetAvailability handles GET /api/spots/availability.
func (h *Handler) GetAvailability(c *gin.Context) {
	ctx := c.Request.Context()

	spots, err := h.store.ListSpots(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	active, err := h.store.ListActiveOccupancies(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	activeBySpot := make(map[int64]int, len(active))
	for i, occ := range active {
		activeBySpot[occ.SpotID] = i
	}

	resp := availabilityResponse{
		TotalSpots: len(spots),
		Spots:      make([]spotAvailability, 0, len(spots)),
	}
	for _, spot := range spots {
		row := spotAvailability{
			ID:       spot.ID,
			Number:   spot.Number,
			Occupied: spot.Occupied,
		}
		if i, ok := activeBySpot[spot.ID]; ok {
			row.VehiclePlate = &active[i].VehiclePlate
			row.EntryTime = &active[i].EntryTime
		}
		if spot.Occupied {
			resp.OccupiedSpots++
		} else {
			resp.AvailableSpots++
		}
		resp.Spots = append(resp.Spots, row)
	}

	c.JSON(http.StatusOK, resp)
}
