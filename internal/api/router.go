package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"slotswap-backend/config"
	"slotswap-backend/internal/auth"
	"slotswap-backend/internal/mw"
)

// perUser buckets authenticated requests by user and the rest by address.
func perUser(c *gin.Context) string {
	if id, ok := auth.FromContext(c); ok {
		return "user:" + id.UserID
	}
	return "ip:" + c.ClientIP()
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, tokens *auth.Tokens, syncer auth.Syncer, limits config.RateLimitConfig, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestLogger(logger))

	r.GET("/healthz", h.Health)

	// API group
	api := r.Group("/api")
	api.Use(auth.Middleware(tokens, syncer))
	api.Use(mw.RateLimiter(rate.Limit(limits.RequestsPerSec), limits.Burst, perUser))
	{
		api.GET("/events", h.StreamEvents)

		swaps := api.Group("/swaps")
		swaps.GET("/swappable-slots", h.ListSwappableSlots)
		swaps.POST("/requests", h.ProposeSwap)
		swaps.GET("/requests", h.ListSwapRequests)
		swaps.POST("/requests/:requestId/response", h.RespondToSwap)

		notifications := api.Group("/notifications")
		notifications.GET("", h.ListNotifications)
		notifications.PATCH("/read-all", h.MarkAllNotificationsRead)
		notifications.PATCH("/:notificationId/read", h.MarkNotificationRead)

		slots := api.Group("/slots")
		slots.POST("", h.CreateSlot)
		slots.GET("/mine", h.ListMySlots)
		slots.PUT("/:slotId", h.UpdateSlot)
		slots.PATCH("/:slotId/status", h.SetSlotStatus)
		slots.DELETE("/:slotId", h.DeleteSlot)
	}

	return r
}
