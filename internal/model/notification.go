package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationSwapRequested NotificationType = "SWAP_REQUESTED"
	NotificationSwapAccepted  NotificationType = "SWAP_ACCEPTED"
	NotificationSwapRejected  NotificationType = "SWAP_REJECTED"
)

// Notification is a durable record of a swap state change for one recipient.
// Only Read and ReadAt change after creation.
type Notification struct {
	ID          string           `gorm:"primaryKey;size:64" json:"id"`
	RecipientID string           `gorm:"size:64;not null;index:idx_notifications_recipient_read,priority:1" json:"recipientId"`
	Type        NotificationType `gorm:"size:32;not null" json:"type"`
	Message     string           `gorm:"not null" json:"message"`
	Payload     SwapPayload      `gorm:"type:text;serializer:json" json:"payload"`
	Read        bool             `gorm:"not null;index:idx_notifications_recipient_read,priority:2" json:"read"`
	ReadAt      *time.Time       `json:"readAt,omitempty"`
	CreatedAt   time.Time        `gorm:"not null;index" json:"createdAt"`
}

// BeforeCreate assigns a random ID to new notifications.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// SwapPayload is carried by every swap notification type. Its shape does
// not depend on the type, so consumers never need to inspect the tag to
// decode it.
type SwapPayload struct {
	SwapRequest SwapSnapshot `json:"swapRequest"`
}

// SwapSnapshot freezes a swap request as it was when the notification was raised.
type SwapSnapshot struct {
	ID        string       `json:"id"`
	Status    SwapStatus   `json:"status"`
	Requester UserSnapshot `json:"requester"`
	Responder UserSnapshot `json:"responder"`
	MySlot    SlotSnapshot `json:"mySlot"`
	TheirSlot SlotSnapshot `json:"theirSlot"`
	CreatedAt time.Time    `json:"createdAt"`
}

type UserSnapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type SlotSnapshot struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	StartTime time.Time  `json:"startTime"`
	EndTime   time.Time  `json:"endTime"`
	OwnerID   string     `json:"ownerId"`
	Status    SlotStatus `json:"status"`
}

// NewSwapPayload builds a payload from a request whose associations may or
// may not be loaded. Missing associations leave only the ID set.
func NewSwapPayload(r *SwapRequest) SwapPayload {
	snap := SwapSnapshot{
		ID:        r.ID,
		Status:    r.Status,
		Requester: userSnapshot(r.RequesterID, r.Requester),
		Responder: userSnapshot(r.ResponderID, r.Responder),
		MySlot:    slotSnapshot(r.MySlotID, r.MySlot),
		TheirSlot: slotSnapshot(r.TheirSlotID, r.TheirSlot),
		CreatedAt: r.CreatedAt,
	}
	return SwapPayload{SwapRequest: snap}
}

func userSnapshot(id string, u *User) UserSnapshot {
	if u == nil {
		return UserSnapshot{ID: id}
	}
	return UserSnapshot{ID: u.ID, Name: u.Name, Email: u.Email}
}

func slotSnapshot(id string, s *Slot) SlotSnapshot {
	if s == nil {
		return SlotSnapshot{ID: id}
	}
	return SlotSnapshot{
		ID:        s.ID,
		Title:     s.Title,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		OwnerID:   s.OwnerID,
		Status:    s.Status,
	}
}
