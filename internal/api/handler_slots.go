package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"slotswap-backend/internal/auth"
	"slotswap-backend/internal/catalog"
	"slotswap-backend/internal/model"
)

type createSlotRequest struct {
	Title     string           `json:"title"`
	StartTime time.Time        `json:"startTime"`
	EndTime   time.Time        `json:"endTime"`
	Status    model.SlotStatus `json:"status"`
}

type updateSlotRequest struct {
	Title     *string           `json:"title"`
	StartTime *time.Time        `json:"startTime"`
	EndTime   *time.Time        `json:"endTime"`
	Status    *model.SlotStatus `json:"status"`
}

type slotStatusRequest struct {
	Status model.SlotStatus `json:"status" binding:"required"`
}

// CreateSlot handles POST /api/slots.
func (h *Handler) CreateSlot(c *gin.Context) {
	var body createSlotRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	slot, err := h.Catalog.Create(c.Request.Context(), auth.MustIdentity(c).UserID, body.Title, body.StartTime, body.EndTime, body.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Slot created", "slot": slot, "success": true})
}

// ListMySlots handles GET /api/slots/mine.
func (h *Handler) ListMySlots(c *gin.Context) {
	slots, err := h.Catalog.ListMine(c.Request.Context(), auth.MustIdentity(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots, "success": true})
}

// UpdateSlot handles PUT /api/slots/:slotId.
func (h *Handler) UpdateSlot(c *gin.Context) {
	var body updateSlotRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	patch := catalog.Patch{
		Title:     body.Title,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Status:    body.Status,
	}
	slot, err := h.Catalog.Update(c.Request.Context(), auth.MustIdentity(c).UserID, c.Param("slotId"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Slot updated", "slot": slot, "success": true})
}

// SetSlotStatus handles PATCH /api/slots/:slotId/status.
func (h *Handler) SetSlotStatus(c *gin.Context) {
	var body slotStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "status is required")
		return
	}

	slot, err := h.Catalog.SetStatus(c.Request.Context(), auth.MustIdentity(c).UserID, c.Param("slotId"), body.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Slot status updated", "slot": slot, "success": true})
}

// DeleteSlot handles DELETE /api/slots/:slotId.
func (h *Handler) DeleteSlot(c *gin.Context) {
	if err := h.Catalog.Delete(c.Request.Context(), auth.MustIdentity(c).UserID, c.Param("slotId")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Slot deleted", "success": true})
}
