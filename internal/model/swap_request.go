package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SwapStatus string

const (
	SwapStatusPending  SwapStatus = "PENDING"
	SwapStatusAccepted SwapStatus = "ACCEPTED"
	SwapStatusRejected SwapStatus = "REJECTED"
)

// SwapRequest is a proposal to exchange MySlot (owned by the requester) for
// TheirSlot (owned by the responder).
//
// The partial unique indexes allow a slot to appear in at most one PENDING
// request per column. The ledger additionally checks across columns.
type SwapRequest struct {
	ID          string     `gorm:"primaryKey;size:64" json:"id"`
	RequesterID string     `gorm:"size:64;not null;index" json:"requesterId"`
	ResponderID string     `gorm:"size:64;not null;index" json:"responderId"`
	MySlotID    string     `gorm:"size:64;not null;index:idx_swap_requests_pending_my_slot,unique,where:status = 'PENDING'" json:"mySlotId"`
	TheirSlotID string     `gorm:"size:64;not null;index:idx_swap_requests_pending_their_slot,unique,where:status = 'PENDING'" json:"theirSlotId"`
	Status      SwapStatus `gorm:"size:16;not null;index" json:"status"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updatedAt"`

	// Associations
	Requester *User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Responder *User `gorm:"foreignKey:ResponderID" json:"responder,omitempty"`
	MySlot    *Slot `gorm:"foreignKey:MySlotID" json:"mySlot,omitempty"`
	TheirSlot *Slot `gorm:"foreignKey:TheirSlotID" json:"theirSlot,omitempty"`
}

// BeforeCreate assigns a random ID to new requests.
func (r *SwapRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// IsPending reports whether the request still awaits a response.
func (r *SwapRequest) IsPending() bool {
	return r.Status == SwapStatusPending
}

// References reports whether slotID takes part in the request on either side.
func (r *SwapRequest) References(slotID string) bool {
	return r.MySlotID == slotID || r.TheirSlotID == slotID
}
