package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"stayhub/internal/domain"
)

type DisputeRepository struct {
	db *gorm.DB
}

func NewDisputeRepository(db *gorm.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

var blockingDisputeStatuses = []domain.DisputeStatus{
	domain.DisputeOpen,
	domain.DisputeUnderReview,
}

func (r *DisputeRepository) Create(ctx context.Context, d *domain.Dispute) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DisputeRepository) GetByID(ctx context.Context, id int64) (*domain.Dispute, error) {
	var d domain.Dispute
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// HasBlockingDispute answers the escrow engine's gate question: does
// this booking have a dispute in a state that must stop release.
func (r *DisputeRepository) HasBlockingDispute(ctx context.Context, bookingID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&domain.Dispute{}).
		Where("booking_id = ? AND status IN ?", bookingID, blockingDisputeStatuses).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *DisputeRepository) Resolve(ctx context.Context, id int64, status domain.DisputeStatus, resolution string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Dispute{}).
		Where("id = ? AND status IN ?", id, blockingDisputeStatuses).
		Updates(map[string]any{
			"status":      status,
			"resolution":  resolution,
			"resolved_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}
