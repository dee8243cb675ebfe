package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"parking-backend/config"
	"parking-backend/internal/auth"
	"parking-backend/internal/engine"
	"parking-backend/internal/mw"
	"parking-backend/internal/store"
)

// NewRouter creates and configures a new Gin router. Everything under /api
// except login requires a bearer token; GET responses are cached and every
// successful mutation flushes that cache.
func NewRouter(s store.Store, eng *engine.Engine, authSvc *auth.Service, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, eng, authSvc)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, cfg.RequestIPHeader)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)
	flushing := mw.FlushOnWrite(cacheStore)

	r.GET("/healthz", handler.Healthz)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/auth/login", handler.Login)

		authed := api.Group("")
		authed.Use(mw.RequireAuth(authSvc), flushing)
		{
			authed.POST("/spots", handler.CreateSpot)
			authed.GET("/spots", caching, handler.ListSpots)
			authed.GET("/spots/availability", caching, handler.GetAvailability)
			authed.GET("/spots/:id", handler.GetSpot)

			authed.POST("/occupancies", handler.OpenOccupancy)
			authed.GET("/occupancies", handler.ListActiveOccupancies)
			authed.GET("/occupancies/all", handler.ListOccupancies)
			authed.GET("/occupancies/:id", handler.GetOccupancy)
			authed.GET("/occupancies/:id/fee", handler.QuoteFee)
			authed.POST("/occupancies/:id/close", handler.CloseOccupancy)

			authed.POST("/rates", handler.CreateRate)
			authed.GET("/rates", caching, handler.ListRates)
			authed.GET("/rates/effective", handler.GetEffectiveRate)
		}
	}

	return r
}
