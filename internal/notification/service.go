package notification

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"slotswap-backend/internal/apperr"
	"slotswap-backend/internal/model"
	"slotswap-backend/internal/realtime"
	"slotswap-backend/internal/store"
)

// ListLimit caps how many notifications List returns.
const ListLimit = 50

// Pusher delivers an event to a connected user without blocking.
type Pusher interface {
	Push(userID string, ev realtime.Event) bool
}

// Message is the body of a real-time notification event.
type Message struct {
	NotificationID string                 `json:"notificationId"`
	Type           model.NotificationType `json:"type"`
	Message        string                 `json:"message"`
	Payload        model.SwapPayload      `json:"payload"`
	CreatedAt      time.Time              `json:"createdAt"`
}

// Inbox is a recipient's newest notifications with their unread total.
type Inbox struct {
	Notifications []model.Notification `json:"notifications"`
	UnreadCount   int64                `json:"unreadCount"`
}

// Service persists notifications and pushes them to live connections.
type Service struct {
	store  store.Store
	pusher Pusher
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a notification service.
func NewService(st store.Store, pusher Pusher, logger *zap.Logger) *Service {
	return &Service{
		store:  st,
		pusher: pusher,
		logger: logger,
		now:    time.Now,
	}
}

// Record persists an unread notification through st, which may be bound to
// the caller's transaction. Nothing is pushed; call Deliver after commit.
func (s *Service) Record(ctx context.Context, st store.NotificationStore, recipientID string, typ model.NotificationType, message string, payload model.SwapPayload) (*model.Notification, error) {
	n := &model.Notification{
		RecipientID: recipientID,
		Type:        typ,
		Message:     message,
		Payload:     payload,
		Read:        false,
		CreatedAt:   s.now(),
	}
	if err := st.CreateNotification(ctx, n); err != nil {
		return nil, apperr.Internal("record notification", err)
	}
	return n, nil
}

// Deliver pushes n to its recipient if they are connected. Delivery is best
// effort: an offline recipient or a full queue is not an error.
func (s *Service) Deliver(n *model.Notification) {
	if n == nil {
		return
	}
	ev := realtime.Event{
		Name: string(n.Type),
		Data: Message{
			NotificationID: n.ID,
			Type:           n.Type,
			Message:        n.Message,
			Payload:        n.Payload,
			CreatedAt:      n.CreatedAt,
		},
	}
	if !s.pusher.Push(n.RecipientID, ev) {
		s.logger.Debug("Notification not pushed",
			zap.String("notification_id", n.ID),
			zap.String("recipient_id", n.RecipientID),
		)
	}
}

// Notify records a notification outside any transaction and delivers it.
func (s *Service) Notify(ctx context.Context, recipientID string, typ model.NotificationType, message string, payload model.SwapPayload) (*model.Notification, error) {
	n, err := s.Record(ctx, s.store, recipientID, typ, message, payload)
	if err != nil {
		return nil, err
	}
	s.Deliver(n)
	return n, nil
}

// MarkRead marks one of the caller's notifications as read. Someone else's
// notification is reported as not found.
func (s *Service) MarkRead(ctx context.Context, notificationID, callerID string) error {
	err := s.store.MarkNotificationRead(ctx, notificationID, callerID, s.now())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("Notification not found")
	default:
		return apperr.Internal("mark notification read", err)
	}
}

// MarkAllRead marks every unread notification of the caller as read and
// returns how many changed.
func (s *Service) MarkAllRead(ctx context.Context, callerID string) (int64, error) {
	n, err := s.store.MarkAllNotificationsRead(ctx, callerID, s.now())
	if err != nil {
		return 0, apperr.Internal("mark all notifications read", err)
	}
	return n, nil
}

// List returns the caller's newest notifications and unread count.
func (s *Service) List(ctx context.Context, callerID string) (*Inbox, error) {
	notifications, err := s.store.ListNotifications(ctx, callerID, ListLimit)
	if err != nil {
		return nil, apperr.Internal("list notifications", err)
	}
	unread, err := s.store.CountUnread(ctx, callerID)
	if err != nil {
		return nil, apperr.Internal("count unread notifications", err)
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	return &Inbox{Notifications: notifications, UnreadCount: unread}, nil
}
