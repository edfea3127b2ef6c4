package repository

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"stayhub/internal/domain"
)

type JobLockRepository struct {
	db *gorm.DB
}

func NewJobLockRepository(db *gorm.DB) *JobLockRepository {
	return &JobLockRepository{db: db}
}

// TryAcquire claims the named lease for instanceID. The fresh-insert
// path wins outright; when the unique job_name key already exists the
// claim degrades to a conditional update filtered by expiry, so two
// instances racing to steal an expired lock resolve through the
// store's atomic row update: only one of them sees RowsAffected == 1.
func (r *JobLockRepository) TryAcquire(ctx context.Context, jobName, instanceID string, lease time.Duration) (bool, error) {
	now := time.Now().UTC()
	lock := domain.JobLock{
		JobName:   jobName,
		LockedBy:  instanceID,
		LockedAt:  now,
		ExpiresAt: now.Add(lease),
	}

	err := r.db.WithContext(ctx).Create(&lock).Error
	if err == nil {
		return true, nil
	}
	if !isUniqueViolation(err) {
		return false, err
	}

	// Row exists: steal if expired, or refresh our own lease.
	res := r.db.WithContext(ctx).
		Model(&domain.JobLock{}).
		Where("job_name = ? AND (expires_at <= ? OR locked_by = ?)", jobName, now, instanceID).
		Updates(map[string]any{
			"locked_by":   instanceID,
			"locked_at":   now,
			"expires_at":  now.Add(lease),
			"booking_ids": nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Release drops the lease, but only if this instance still holds it.
// A lock reclaimed by someone else after an unexpectedly slow run is
// left alone.
func (r *JobLockRepository) Release(ctx context.Context, jobName, instanceID string) error {
	return r.db.WithContext(ctx).
		Where("job_name = ? AND locked_by = ?", jobName, instanceID).
		Delete(&domain.JobLock{}).Error
}

// DeleteExpired is the best-effort safety net run at the start of
// every cycle, independent of the stealing path in TryAcquire.
func (r *JobLockRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now().UTC()).
		Delete(&domain.JobLock{})
	return res.RowsAffected, res.Error
}

// SetBookingIDs records the working set on the lock row, guarded by
// holder identity so a stale instance cannot scribble over the
// current holder's claim.
func (r *JobLockRepository) SetBookingIDs(ctx context.Context, jobName, instanceID string, ids []int64) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).
		Model(&domain.JobLock{}).
		Where("job_name = ? AND locked_by = ? AND expires_at > ?", jobName, instanceID, time.Now().UTC()).
		Update("booking_ids", raw)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLockHeld
	}
	return nil
}
