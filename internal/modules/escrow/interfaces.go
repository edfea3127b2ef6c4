package escrow

import (
	"context"
	"time"

	"stayhub/internal/domain"
	"stayhub/internal/repository"
)

// EscrowStore is the transactional release surface. Each Release*
// call re-checks disputes and cancellation inside its own
// transaction and reports false when the payment had already moved
// on, which is what makes the sweep safe to re-run.
type EscrowStore interface {
	ListReleaseCandidateIDs(ctx context.Context, tranche1Cutoff, tranche2Cutoff time.Time) ([]int64, error)
	ReleaseRoomFee(ctx context.Context, rel repository.RoomFeeRelease) (bool, error)
	ReleaseDeposit(ctx context.Context, rel repository.DepositRelease) (bool, error)
}

type bookingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

type paymentReader interface {
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error)
}

type propertyReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Property, error)
}

type NotificationSender interface {
	NotifyFundsReleased(ctx context.Context, realtorID, bookingID int64, amount float64) error
	NotifyDepositReturned(ctx context.Context, guestID, bookingID int64, amount float64) error
}
