package domain

import "time"

type DisputeStatus string

const (
	DisputeOpen        DisputeStatus = "open"
	DisputeUnderReview DisputeStatus = "under_review"
	DisputeResolved    DisputeStatus = "resolved"
	DisputeRejected    DisputeStatus = "rejected"
)

// Blocking reports whether the dispute must stop escrow release for
// its booking. Resolution in either direction lifts the block.
func (s DisputeStatus) Blocking() bool {
	return s == DisputeOpen || s == DisputeUnderReview
}

type Dispute struct {
	ID          int64         `json:"id"`
	BookingID   int64         `json:"booking_id" gorm:"index"`
	InitiatorID int64         `json:"initiator_id"`
	Reason      string        `json:"reason" gorm:"type:text"`
	Status      DisputeStatus `json:"status" gorm:"type:varchar(32);index"`
	Resolution  string        `json:"resolution,omitempty" gorm:"type:text"`
	CreatedAt   time.Time     `json:"created_at"`
	ResolvedAt  *time.Time    `json:"resolved_at,omitempty"`
}
