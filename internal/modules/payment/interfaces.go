package payment

import (
	"context"
	"time"

	"stayhub/internal/domain"
)

type paymentRepo interface {
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error)
	MarkHeldIdempotent(ctx context.Context, bookingID int64, method, providerRef string, paidAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, bookingID int64, providerRef string) error
}

type bookingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

type bookingPaymentWriter interface {
	SyncPaymentStatus(ctx context.Context, bookingID int64, status domain.PaymentStatus) error
}
