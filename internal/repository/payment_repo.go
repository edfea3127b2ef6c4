package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stayhub/internal/domain"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkHeldIdempotent moves the payment to held on provider
// confirmation. Re-delivered provider callbacks are absorbed: a
// payment already past initiated is left alone and the call reports
// changed=false.
func (r *PaymentRepository) MarkHeldIdempotent(ctx context.Context, bookingID int64, method, providerRef string, paidAt time.Time) (bool, error) {
	var changed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Payment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("booking_id = ?", bookingID).First(&p).Error; err != nil {
			return err
		}
		if p.Status != domain.PaymentInitiated {
			changed = false
			return nil
		}
		res := tx.Model(&domain.Payment{}).
			Where("id = ? AND status = ?", p.ID, domain.PaymentInitiated).
			Updates(map[string]any{
				"status":       domain.PaymentHeld,
				"method":       method,
				"provider_ref": providerRef,
				"paid_at":      paidAt,
			})
		if res.Error != nil {
			return res.Error
		}
		changed = res.RowsAffected == 1
		return nil
	})
	return changed, err
}

func (r *PaymentRepository) MarkFailed(ctx context.Context, bookingID int64, providerRef string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("booking_id = ? AND status = ?", bookingID, domain.PaymentInitiated).
		Updates(map[string]any{
			"status":       domain.PaymentFailed,
			"provider_ref": providerRef,
		}).Error
}
