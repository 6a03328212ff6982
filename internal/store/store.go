package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"slotswap-backend/internal/model"
)

var (
	// ErrNotFound is returned when the addressed row does not exist or is
	// not visible to the caller.
	ErrNotFound = errors.New("record not found")

	// ErrPreconditionFailed is returned by conditional updates that matched
	// no row, i.e. the row was not in the expected state.
	ErrPreconditionFailed = errors.New("precondition failed")
)

// Store defines the interface for all database operations.
type Store interface {
	// Transaction runs fn with a Store bound to a single database
	// transaction. Returning an error from fn rolls everything back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error

	SlotStore
	SwapStore
	NotificationStore
	UserStore
}

// SlotStore is the part of the store the negotiation engine needs from slots.
type SlotStore interface {
	CreateSlot(ctx context.Context, slot *model.Slot) error
	FindSlot(ctx context.Context, slotID string) (*model.Slot, error)
	FindOwnedSlot(ctx context.Context, ownerID, slotID string) (*model.Slot, error)
	ListSlotsByOwner(ctx context.Context, ownerID string) ([]model.Slot, error)
	ListSwappableSlots(ctx context.Context, excludeOwnerID string) ([]model.Slot, error)
	// CompareAndSetSlot moves a slot from expected to next status, and hands
	// it to newOwnerID when that is non-empty. It fails with
	// ErrPreconditionFailed if the slot is not in expected status.
	CompareAndSetSlot(ctx context.Context, slotID string, expected, next model.SlotStatus, newOwnerID string) error
	// UpdateOwnedSlot applies updates unless the slot is claimed by a swap.
	UpdateOwnedSlot(ctx context.Context, ownerID, slotID string, updates map[string]any) error
	DeleteOwnedSlot(ctx context.Context, ownerID, slotID string) error
}

type SwapStore interface {
	CreateSwapRequest(ctx context.Context, req *model.SwapRequest) error
	FindSwapRequest(ctx context.Context, requestID string) (*model.SwapRequest, error)
	CountPendingReferencing(ctx context.Context, slotIDs ...string) (int64, error)
	CompareAndSetSwapStatus(ctx context.Context, requestID string, expected, next model.SwapStatus) error
	ListIncomingPending(ctx context.Context, responderID string) ([]model.SwapRequest, error)
	ListOutgoing(ctx context.Context, requesterID string) ([]model.SwapRequest, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, recipientID string, limit int) ([]model.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkNotificationRead(ctx context.Context, notificationID, recipientID string, at time.Time) error
	MarkAllNotificationsRead(ctx context.Context, recipientID string, at time.Time) (int64, error)
}

type UserStore interface {
	UpsertUser(ctx context.Context, user *model.User) error
	FindUser(ctx context.Context, userID string) (*model.User, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// isUniqueViolation recognises duplicate-key errors from both drivers.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
