package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"slotswap-backend/internal/model"
)

func withSwapDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Requester").
		Preload("Responder").
		Preload("MySlot").
		Preload("TheirSlot")
}

func (s *gormStore) CreateSwapRequest(ctx context.Context, req *model.SwapRequest) error {
	if err := s.db.WithContext(ctx).Omit("Requester", "Responder", "MySlot", "TheirSlot").Create(req).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrPreconditionFailed
		}
		return fmt.Errorf("create swap request: %w", err)
	}
	return nil
}

func (s *gormStore) FindSwapRequest(ctx context.Context, requestID string) (*model.SwapRequest, error) {
	var req model.SwapRequest
	err := withSwapDetails(s.db.WithContext(ctx)).First(&req, "id = ?", requestID).Error
	if err != nil {
		return nil, notFoundOr(err, "find swap request %s", requestID)
	}
	return &req, nil
}

// CountPendingReferencing counts PENDING requests that hold any of slotIDs
// on either side.
func (s *gormStore) CountPendingReferencing(ctx context.Context, slotIDs ...string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.SwapRequest{}).
		Where("status = ?", model.SwapStatusPending).
		Where(s.db.Where("my_slot_id IN ?", slotIDs).Or("their_slot_id IN ?", slotIDs)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count pending swap requests: %w", err)
	}
	return count, nil
}

func (s *gormStore) CompareAndSetSwapStatus(ctx context.Context, requestID string, expected, next model.SwapStatus) error {
	result := s.db.WithContext(ctx).
		Model(&model.SwapRequest{}).
		Where("id = ? AND status = ?", requestID, expected).
		Update("status", next)
	if result.Error != nil {
		return fmt.Errorf("set swap request %s %s->%s: %w", requestID, expected, next, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPreconditionFailed
	}
	return nil
}

func (s *gormStore) ListIncomingPending(ctx context.Context, responderID string) ([]model.SwapRequest, error) {
	var reqs []model.SwapRequest
	err := withSwapDetails(s.db.WithContext(ctx)).
		Where("responder_id = ? AND status = ?", responderID, model.SwapStatusPending).
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("list incoming swap requests: %w", err)
	}
	return reqs, nil
}

func (s *gormStore) ListOutgoing(ctx context.Context, requesterID string) ([]model.SwapRequest, error) {
	var reqs []model.SwapRequest
	err := withSwapDetails(s.db.WithContext(ctx)).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("list outgoing swap requests: %w", err)
	}
	return reqs, nil
}
