package domain

import (
	"time"

	"gorm.io/datatypes"
)

// JobLock is a named lease row that lets exactly one server instance
// run a periodic job at a time. The unique job_name key is the
// coordination point; staleness is decided purely from expires_at so
// a crashed holder self-heals once the lease runs out.
//
// The persisted shape (job_name, locked_by, locked_at, expires_at,
// booking_ids) is a durable format shared by all instances during
// rolling deploys. Do not rename columns.
type JobLock struct {
	ID        int64     `json:"id"`
	JobName   string    `json:"job_name" gorm:"uniqueIndex;type:varchar(64)"`
	LockedBy  string    `json:"locked_by" gorm:"type:varchar(128)"`
	LockedAt  time.Time `json:"locked_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`

	// Working set claimed by the current holder. Observability and
	// crash diagnosis only, not required for correctness.
	BookingIDs datatypes.JSON `json:"booking_ids,omitempty"`
}

func (JobLock) TableName() string { return "job_locks" }
