package store

import (
	"context"
	"fmt"

	"slotswap-backend/internal/model"
)

func (s *gormStore) CreateSlot(ctx context.Context, slot *model.Slot) error {
	if err := s.db.WithContext(ctx).Create(slot).Error; err != nil {
		return fmt.Errorf("create slot: %w", err)
	}
	return nil
}

func (s *gormStore) FindSlot(ctx context.Context, slotID string) (*model.Slot, error) {
	var slot model.Slot
	err := s.db.WithContext(ctx).Preload("Owner").First(&slot, "id = ?", slotID).Error
	if err != nil {
		return nil, notFoundOr(err, "find slot %s", slotID)
	}
	return &slot, nil
}

func (s *gormStore) FindOwnedSlot(ctx context.Context, ownerID, slotID string) (*model.Slot, error) {
	var slot model.Slot
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", slotID, ownerID).
		First(&slot).Error
	if err != nil {
		return nil, notFoundOr(err, "find slot %s of %s", slotID, ownerID)
	}
	return &slot, nil
}

func (s *gormStore) ListSlotsByOwner(ctx context.Context, ownerID string) ([]model.Slot, error) {
	var slots []model.Slot
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("start_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("list slots of %s: %w", ownerID, err)
	}
	return slots, nil
}

func (s *gormStore) ListSwappableSlots(ctx context.Context, excludeOwnerID string) ([]model.Slot, error) {
	var slots []model.Slot
	err := s.db.WithContext(ctx).
		Preload("Owner").
		Where("status = ? AND owner_id <> ?", model.SlotStatusSwappable, excludeOwnerID).
		Order("start_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("list swappable slots: %w", err)
	}
	return slots, nil
}

func (s *gormStore) CompareAndSetSlot(ctx context.Context, slotID string, expected, next model.SlotStatus, newOwnerID string) error {
	updates := map[string]any{"status": next}
	if newOwnerID != "" {
		updates["owner_id"] = newOwnerID
	}

	result := s.db.WithContext(ctx).
		Model(&model.Slot{}).
		Where("id = ? AND status = ?", slotID, expected).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("set slot %s %s->%s: %w", slotID, expected, next, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPreconditionFailed
	}
	return nil
}

func (s *gormStore) UpdateOwnedSlot(ctx context.Context, ownerID, slotID string, updates map[string]any) error {
	result := s.db.WithContext(ctx).
		Model(&model.Slot{}).
		Where("id = ? AND owner_id = ? AND status <> ?", slotID, ownerID, model.SlotStatusSwapPending).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("update slot %s: %w", slotID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPreconditionFailed
	}
	return nil
}

func (s *gormStore) DeleteOwnedSlot(ctx context.Context, ownerID, slotID string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ? AND status <> ?", slotID, ownerID, model.SlotStatusSwapPending).
		Delete(&model.Slot{})
	if result.Error != nil {
		return fmt.Errorf("delete slot %s: %w", slotID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPreconditionFailed
	}
	return nil
}
