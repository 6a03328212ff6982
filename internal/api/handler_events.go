package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"slotswap-backend/internal/auth"
	"slotswap-backend/internal/realtime"
)

// StreamEvents handles GET /api/events. The caller was authenticated by
// the middleware; the connection is registered for pushes until the client
// goes away or a newer connection for the same user replaces it.
func (h *Handler) StreamEvents(c *gin.Context) {
	id := auth.MustIdentity(c)
	conn := realtime.NewConn(h.queueSize)
	h.Registry.Register(id.UserID, conn)
	defer h.Registry.Unregister(id.UserID, conn)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("connected", gin.H{"userId": id.UserID, "connectionId": conn.ID})
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-conn.Done():
			return
		case ev := <-conn.Outbound():
			c.SSEvent(ev.Name, ev.Data)
			c.Writer.Flush()
		case <-heartbeat.C:
			c.SSEvent("heartbeat", gin.H{"at": time.Now().UTC()})
			c.Writer.Flush()
		}
	}
}
