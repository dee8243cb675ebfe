package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"parking-backend/internal/auth"
	"parking-backend/internal/engine"
	"parking-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store  store.Store
	engine *engine.Engine
	auth   *auth.Service
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, eng *engine.Engine, authSvc *auth.Service) *Handler {
	return &Handler{
		store:  s,
		engine: eng,
		auth:   authSvc,
	}
}

// writeError maps the error taxonomy onto HTTP status codes: absent records
// to 404, rejected operations to 409, bad input to 400. Anything else is an
// infrastructure failure and is not leaked to the client.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrSpotNotFound),
		errors.Is(err, store.ErrOccupancyNotFound),
		errors.Is(err, store.ErrNoActiveRate):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrDuplicateSpotNumber),
		errors.Is(err, store.ErrActiveOccupancyExists),
		errors.Is(err, store.ErrOccupancyClosed),
		errors.Is(err, engine.ErrSpotOccupied):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrInvalidRate),
		errors.Is(err, engine.ErrInvalidPlate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
