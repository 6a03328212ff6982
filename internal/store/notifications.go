package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"slotswap-backend/internal/model"
)

func (s *gormStore) CreateNotification(ctx context.Context, n *model.Notification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListNotifications returns the newest notifications first.
func (s *gormStore) ListNotifications(ctx context.Context, recipientID string, limit int) ([]model.Notification, error) {
	var notifications []model.Notification
	q := s.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("list notifications for %s: %w", recipientID, err)
	}
	return notifications, nil
}

func (s *gormStore) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count unread notifications for %s: %w", recipientID, err)
	}
	return count, nil
}

// MarkNotificationRead keeps the first read time when called again.
func (s *gormStore) MarkNotificationRead(ctx context.Context, notificationID, recipientID string, at time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Updates(map[string]any{
			"read":    true,
			"read_at": gorm.Expr("COALESCE(read_at, ?)", at),
		})
	if result.Error != nil {
		return fmt.Errorf("mark notification %s read: %w", notificationID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) MarkAllNotificationsRead(ctx context.Context, recipientID string, at time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Updates(map[string]any{"read": true, "read_at": at})
	if result.Error != nil {
		return 0, fmt.Errorf("mark notifications of %s read: %w", recipientID, result.Error)
	}
	return result.RowsAffected, nil
}
