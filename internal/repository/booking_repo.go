package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"stayhub/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// blockingStatuses are the booking statuses that occupy the calendar.
var blockingStatuses = []domain.BookingStatus{
	domain.BookingPending,
	domain.BookingConfirmed,
	domain.BookingActive,
}

// CreateWithPayment inserts the booking and its payment after
// re-checking for date conflicts, all inside one transaction. The
// conflict re-query and the insert share the transaction boundary so
// two concurrent callers cannot both pass the check before either
// commits; on Postgres the idx_no_double_booking exclusion constraint
// is the backstop and its violation bubbles up to the caller.
func (r *BookingRepository) CreateWithPayment(ctx context.Context, b *domain.Booking, p *domain.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		q := tx.Model(&domain.Booking{}).
			Where("property_id = ?", b.PropertyID).
			Where("status IN ?", blockingStatuses).
			Where("check_in_date < ? AND check_out_date > ?", b.CheckOutDate, b.CheckInDate)
		if err := q.Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return ErrOverlap
		}

		if err := tx.Create(b).Error; err != nil {
			return err
		}
		p.BookingID = b.ID
		return tx.Create(p).Error
	})
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID int64, limit, offset int) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("guest_id = ?", guestID).
		Order("check_in_date DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

// UpdateStatusIf performs the optimistic status transition: the update
// is filtered by the expected current status and the number of rows
// affected tells the caller whether their view was stale.
func (r *BookingRepository) UpdateStatusIf(ctx context.Context, bookingID int64, from, to domain.BookingStatus, fields map[string]any) (int64, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ? AND status = ?", bookingID, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// SyncPaymentStatus refreshes the denormalized payment_status mirror
// from the payment's canonical status.
func (r *BookingRepository) SyncPaymentStatus(ctx context.Context, bookingID int64, status domain.PaymentStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ?", bookingID).
		Update("payment_status", status).Error
}
