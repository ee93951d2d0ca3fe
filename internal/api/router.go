package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"gamelounge-backend/config"
	"gamelounge-backend/internal/mw"
	"gamelounge-backend/internal/session"
	"gamelounge-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, m *session.Manager, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, m, webpushOptions)

	rateLimiter := mw.RateLimiter(
		rate.Limit(cfg.Server.RateLimitPerSec),
		cfg.Server.RateLimitBurst,
		cfg.Server.RequestIPHeader,
	)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Catalog reads are cacheable; session state never is.
		api.GET("/games", caching, handler.GetGames)
		api.POST("/games", handler.CreateGame)
		api.DELETE("/games/:game_id", handler.DeleteGame)
		api.GET("/controllers", caching, handler.GetControllers)
		api.POST("/controllers", handler.CreateController)
		api.DELETE("/controllers/:controller_id", handler.DeleteController)
		api.PATCH("/controllers/:controller_id/status", handler.PatchControllerStatus)

		api.GET("/stations", handler.GetStations)
		api.POST("/stations", handler.CreateStation)
		api.DELETE("/stations/:station_id", handler.DeleteStation)
		api.PATCH("/stations/:station_id/status", handler.PatchStationStatus)
		api.GET("/stations/:station_id/session", handler.GetActiveSession)
		api.POST("/stations/:station_id/end", handler.EndSession)

		api.POST("/sessions", handler.StartSession)
		api.GET("/sessions/:session_id", handler.GetSession)
		api.POST("/sessions/:session_id/controllers", handler.AttachController)
		api.DELETE("/sessions/:session_id/controllers/:controller_id", handler.DetachController)

		api.PUT("/discounts", handler.PutDiscount)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
