package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stayhub/internal/domain"
)

var (
	// ErrDisputeBlocked is returned when a release lost the race
	// against a dispute opened after eligibility was computed.
	ErrDisputeBlocked = errors.New("booking has a blocking dispute")

	// ErrBookingCancelled is returned when a release lost the race
	// against a cancellation.
	ErrBookingCancelled = errors.New("booking was cancelled")
)

type EscrowRepository struct {
	db *gorm.DB
}

func NewEscrowRepository(db *gorm.DB) *EscrowRepository {
	return &EscrowRepository{db: db}
}

// ListReleaseCandidateIDs selects bookings whose payment is due for
// either tranche: held payments past the guest dispute window, or
// partially released payments past the host dispute window. Bookings
// with a blocking dispute or a cancelled status never make the list.
// This is a pure read; the release itself re-derives everything.
func (r *EscrowRepository) ListReleaseCandidateIDs(ctx context.Context, tranche1Cutoff, tranche2Cutoff time.Time) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Select("payments.booking_id").
		Joins("JOIN bookings ON bookings.id = payments.booking_id").
		Where(
			"(payments.status = ? AND bookings.check_in_date <= ?) OR (payments.status = ? AND bookings.check_out_date <= ?)",
			domain.PaymentHeld, tranche1Cutoff,
			domain.PaymentPartiallyReleased, tranche2Cutoff,
		).
		Where("bookings.status <> ?", domain.BookingCancelled).
		Where(
			"NOT EXISTS (SELECT 1 FROM disputes WHERE disputes.booking_id = bookings.id AND disputes.status IN ?)",
			blockingDisputeStatuses,
		).
		Order("payments.booking_id").
		Scan(&ids).Error
	return ids, err
}

// RoomFeeRelease carries the amounts the settlement engine computed
// for tranche 1.
type RoomFeeRelease struct {
	BookingID  int64
	RealtorID  int64
	Currency   string
	HostPayout float64
	Commission float64
}

// ReleaseRoomFee performs tranche 1 atomically: dispute re-check,
// payment transition held -> partially_released, payout and
// commission ledger credits, and the booking payment-status mirror.
// Returns false without error when the payment is no longer held,
// which is how a retried sweep discovers a prior attempt already ran.
func (r *EscrowRepository) ReleaseRoomFee(ctx context.Context, rel RoomFeeRelease) (bool, error) {
	released := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := guardRelease(tx, rel.BookingID); err != nil {
			return err
		}

		res := tx.Model(&domain.Payment{}).
			Where("booking_id = ? AND status = ?", rel.BookingID, domain.PaymentHeld).
			Updates(map[string]any{
				"status":             domain.PaymentPartiallyReleased,
				"host_payout_amount": rel.HostPayout,
				"commission_amount":  rel.Commission,
				"updated_at":         time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var p domain.Payment
		if err := tx.Where("booking_id = ?", rel.BookingID).First(&p).Error; err != nil {
			return err
		}

		entries := []domain.LedgerEntry{
			{BookingID: rel.BookingID, PaymentID: p.ID, UserID: rel.RealtorID, Amount: rel.HostPayout, Currency: rel.Currency, Type: domain.LedgerHostPayout},
			{BookingID: rel.BookingID, PaymentID: p.ID, UserID: 0, Amount: rel.Commission, Currency: rel.Currency, Type: domain.LedgerPlatformFee},
		}
		if err := tx.Create(&entries).Error; err != nil {
			return err
		}

		if err := tx.Model(&domain.Booking{}).
			Where("id = ?", rel.BookingID).
			Update("payment_status", domain.PaymentPartiallyReleased).Error; err != nil {
			return err
		}

		released = true
		return nil
	})
	return released, err
}

// DepositRelease carries the amounts for tranche 2.
type DepositRelease struct {
	BookingID int64
	GuestID   int64
	Currency  string
	Deposit   float64
}

// ReleaseDeposit performs tranche 2 atomically: dispute re-check,
// payment transition partially_released -> settled, the deposit
// refund credit (a zero deposit is just a no-op release), and the
// booking's move to completed. The completion uses the same
// expected-status guard as every other transition, so a concurrent
// cancellation wins and rolls the whole release back.
func (r *EscrowRepository) ReleaseDeposit(ctx context.Context, rel DepositRelease) (bool, error) {
	released := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := guardRelease(tx, rel.BookingID); err != nil {
			return err
		}

		res := tx.Model(&domain.Payment{}).
			Where("booking_id = ? AND status = ?", rel.BookingID, domain.PaymentPartiallyReleased).
			Updates(map[string]any{
				"status":        domain.PaymentSettled,
				"refund_amount": rel.Deposit,
				"updated_at":    time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if rel.Deposit > 0 {
			var p domain.Payment
			if err := tx.Where("booking_id = ?", rel.BookingID).First(&p).Error; err != nil {
				return err
			}
			entry := domain.LedgerEntry{
				BookingID: rel.BookingID,
				PaymentID: p.ID,
				UserID:    rel.GuestID,
				Amount:    rel.Deposit,
				Currency:  rel.Currency,
				Type:      domain.LedgerDepositReturn,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}

		completion := tx.Model(&domain.Booking{}).
			Where("id = ? AND status IN ?", rel.BookingID, []domain.BookingStatus{
				domain.BookingPending,
				domain.BookingConfirmed,
				domain.BookingActive,
			}).
			Updates(map[string]any{
				"status":         domain.BookingCompleted,
				"payment_status": domain.PaymentSettled,
				"updated_at":     time.Now().UTC(),
			})
		if completion.Error != nil {
			return completion.Error
		}
		if completion.RowsAffected == 0 {
			return ErrBookingCancelled
		}

		released = true
		return nil
	})
	return released, err
}

// guardRelease re-checks, inside the release transaction, the two
// conditions that may have changed since eligibility was computed: a
// dispute opened against the booking and a cancellation. The booking
// row is locked so the check stays valid until commit.
func guardRelease(tx *gorm.DB, bookingID int64) error {
	var b domain.Booking
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, bookingID).Error; err != nil {
		return err
	}
	if b.Status == domain.BookingCancelled {
		return ErrBookingCancelled
	}

	var cnt int64
	if err := tx.Model(&domain.Dispute{}).
		Where("booking_id = ? AND status IN ?", bookingID, blockingDisputeStatuses).
		Count(&cnt).Error; err != nil {
		return err
	}
	if cnt > 0 {
		return ErrDisputeBlocked
	}
	return nil
}
