package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SlotStatus string

const (
	SlotStatusBusy        SlotStatus = "BUSY"
	SlotStatusSwappable   SlotStatus = "SWAPPABLE"
	SlotStatusSwapPending SlotStatus = "SWAP_PENDING" // claimed by exactly one pending swap request
)

// Slot is a bookable time window with a single owner.
type Slot struct {
	ID        string     `gorm:"primaryKey;size:64" json:"id"`
	Title     string     `gorm:"size:256;not null" json:"title"`
	StartTime time.Time  `gorm:"not null" json:"startTime"`
	EndTime   time.Time  `gorm:"not null" json:"endTime"`
	OwnerID   string     `gorm:"size:64;not null;index" json:"ownerId"`
	Status    SlotStatus `gorm:"size:16;not null;index" json:"status"`
	CreatedAt time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"not null" json:"updatedAt"`

	// Associations
	Owner *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

// BeforeCreate assigns a random ID to new slots.
func (s *Slot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Valid reports whether status is one of the known slot statuses.
func (s SlotStatus) Valid() bool {
	switch s {
	case SlotStatusBusy, SlotStatusSwappable, SlotStatusSwapPending:
		return true
	}
	return false
}
