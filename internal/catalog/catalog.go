// Package catalog manages a user's own slots and the marketplace of slots
// other users have offered for swapping.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"slotswap-backend/internal/apperr"
	"slotswap-backend/internal/model"
	"slotswap-backend/internal/store"
)

// Patch holds the optional fields of an update. Nil fields are left alone.
type Patch struct {
	Title     *string
	StartTime *time.Time
	EndTime   *time.Time
	Status    *model.SlotStatus
}

type Catalog struct {
	store  store.Store
	logger *zap.Logger
}

func New(st store.Store, logger *zap.Logger) *Catalog {
	return &Catalog{store: st, logger: logger}
}

// Create adds a slot owned by ownerID. An empty status means BUSY.
func (c *Catalog) Create(ctx context.Context, ownerID, title string, start, end time.Time, status model.SlotStatus) (*model.Slot, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.Invalid("Title is required")
	}
	if start.IsZero() || end.IsZero() {
		return nil, apperr.Invalid("Start and end time are required")
	}
	if !end.After(start) {
		return nil, apperr.Invalid("End time must be after start time")
	}
	if status == "" {
		status = model.SlotStatusBusy
	}
	if !userSettable(status) {
		return nil, apperr.Invalid("Status must be BUSY or SWAPPABLE")
	}

	slot := &model.Slot{
		Title:     title,
		StartTime: start,
		EndTime:   end,
		OwnerID:   ownerID,
		Status:    status,
	}
	if err := c.store.CreateSlot(ctx, slot); err != nil {
		return nil, c.internal("create slot", err)
	}
	return slot, nil
}

// ListMine returns ownerID's slots by start time.
func (c *Catalog) ListMine(ctx context.Context, ownerID string) ([]model.Slot, error) {
	slots, err := c.store.ListSlotsByOwner(ctx, ownerID)
	if err != nil {
		return nil, c.internal("list slots", err)
	}
	if slots == nil {
		slots = []model.Slot{}
	}
	return slots, nil
}

// Update applies patch to one of ownerID's slots. Slots claimed by a
// pending swap cannot be changed.
func (c *Catalog) Update(ctx context.Context, ownerID, slotID string, patch Patch) (*model.Slot, error) {
	current, err := c.owned(ctx, ownerID, slotID)
	if err != nil {
		return nil, err
	}
	if current.Status == model.SlotStatusSwapPending {
		return nil, apperr.Conflict("Cannot modify a slot with a pending swap")
	}

	updates := map[string]any{}
	start, end := current.StartTime, current.EndTime
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, apperr.Invalid("Title is required")
		}
		updates["title"] = title
	}
	if patch.StartTime != nil {
		start = *patch.StartTime
		updates["start_time"] = start
	}
	if patch.EndTime != nil {
		end = *patch.EndTime
		updates["end_time"] = end
	}
	if !end.After(start) {
		return nil, apperr.Invalid("End time must be after start time")
	}
	if patch.Status != nil {
		if !userSettable(*patch.Status) {
			return nil, apperr.Invalid("Status must be BUSY or SWAPPABLE")
		}
		updates["status"] = *patch.Status
	}
	if len(updates) == 0 {
		return current, nil
	}

	if err := c.store.UpdateOwnedSlot(ctx, ownerID, slotID, updates); err != nil {
		return nil, c.guarded(ctx, ownerID, slotID, "update slot", err)
	}
	return c.owned(ctx, ownerID, slotID)
}

// SetStatus toggles a slot between BUSY and SWAPPABLE.
func (c *Catalog) SetStatus(ctx context.Context, ownerID, slotID string, status model.SlotStatus) (*model.Slot, error) {
	if !userSettable(status) {
		return nil, apperr.Invalid("Status must be BUSY or SWAPPABLE")
	}
	return c.Update(ctx, ownerID, slotID, Patch{Status: &status})
}

// Delete removes one of ownerID's slots unless a swap is pending on it.
func (c *Catalog) Delete(ctx context.Context, ownerID, slotID string) error {
	if err := c.store.DeleteOwnedSlot(ctx, ownerID, slotID); err != nil {
		return c.guarded(ctx, ownerID, slotID, "delete slot", err)
	}
	c.logger.Debug("Slot deleted", zap.String("slot_id", slotID), zap.String("owner_id", ownerID))
	return nil
}

// ListSwappable is the marketplace: every SWAPPABLE slot not owned by
// viewerID, with its owner resolved.
func (c *Catalog) ListSwappable(ctx context.Context, viewerID string) ([]model.Slot, error) {
	slots, err := c.store.ListSwappableSlots(ctx, viewerID)
	if err != nil {
		return nil, c.internal("list swappable slots", err)
	}
	if slots == nil {
		slots = []model.Slot{}
	}
	return slots, nil
}

func (c *Catalog) owned(ctx context.Context, ownerID, slotID string) (*model.Slot, error) {
	slot, err := c.store.FindOwnedSlot(ctx, ownerID, slotID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Slot not found")
	}
	if err != nil {
		return nil, c.internal("find slot", err)
	}
	return slot, nil
}

// guarded explains why a guarded write matched no row: the slot is gone or
// not ours, or a swap claimed it in the meantime.
func (c *Catalog) guarded(ctx context.Context, ownerID, slotID, op string, err error) error {
	if !errors.Is(err, store.ErrPreconditionFailed) {
		return c.internal(op, err)
	}
	if _, findErr := c.owned(ctx, ownerID, slotID); findErr != nil {
		return findErr
	}
	return apperr.Conflict("Cannot modify a slot with a pending swap")
}

func (c *Catalog) internal(op string, err error) error {
	c.logger.Error("Catalog operation failed", zap.String("op", op), zap.Error(err))
	return apperr.Internal(op, err)
}

func userSettable(s model.SlotStatus) bool {
	return s == model.SlotStatusBusy || s == model.SlotStatusSwappable
}
