package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"slotswap-backend/internal/auth"
)

type proposeRequest struct {
	MySlotID    string `json:"mySlotId"`
	TheirSlotID string `json:"theirSlotId"`
}

type respondRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

// ProposeSwap handles POST /api/swaps/requests.
func (h *Handler) ProposeSwap(c *gin.Context) {
	var body proposeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	req, err := h.Ledger.ProposeSwap(c.Request.Context(), auth.MustIdentity(c).UserID, body.MySlotID, body.TheirSlotID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":     "Swap request sent successfully",
		"swapRequest": req,
		"success":     true,
	})
}

// RespondToSwap handles POST /api/swaps/requests/:requestId/response.
func (h *Handler) RespondToSwap(c *gin.Context) {
	var body respondRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "accept must be true or false")
		return
	}

	req, err := h.Ledger.Respond(c.Request.Context(), c.Param("requestId"), auth.MustIdentity(c).UserID, *body.Accept)
	if err != nil {
		h.fail(c, err)
		return
	}

	message := "Swap request rejected"
	if *body.Accept {
		message = "Swap request accepted"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     message,
		"swapRequest": req,
		"success":     true,
	})
}

// ListSwapRequests handles GET /api/swaps/requests.
func (h *Handler) ListSwapRequests(c *gin.Context) {
	reqs, err := h.Ledger.ListRequests(c.Request.Context(), auth.MustIdentity(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"incoming": reqs.Incoming,
		"outgoing": reqs.Outgoing,
		"success":  true,
	})
}

// ListSwappableSlots handles GET /api/swaps/swappable-slots.
func (h *Handler) ListSwappableSlots(c *gin.Context) {
	slots, err := h.Catalog.ListSwappable(c.Request.Context(), auth.MustIdentity(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots, "success": true})
}
