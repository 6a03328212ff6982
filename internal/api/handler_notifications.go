package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"slotswap-backend/internal/auth"
)

// ListNotifications handles GET /api/notifications.
func (h *Handler) ListNotifications(c *gin.Context) {
	inbox, err := h.Notifications.List(c.Request.Context(), auth.MustIdentity(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"notifications": inbox.Notifications,
		"unreadCount":   inbox.UnreadCount,
		"success":       true,
	})
}

// MarkNotificationRead handles PATCH /api/notifications/:notificationId/read.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	err := h.Notifications.MarkRead(c.Request.Context(), c.Param("notificationId"), auth.MustIdentity(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read", "success": true})
}

// MarkAllNotificationsRead handles PATCH /api/notifications/read-all.
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	updated, err := h.Notifications.MarkAllRead(c.Request.Context(), auth.MustIdentity(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "All notifications marked as read",
		"updated": updated,
		"success": true,
	})
}
