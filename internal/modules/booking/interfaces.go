package booking

import (
	"context"

	"stayhub/internal/domain"
)

// BookingRepository defines the persistence operations the
// reservation engine and status machine need.
type BookingRepository interface {
	CreateWithPayment(ctx context.Context, b *domain.Booking, p *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByGuest(ctx context.Context, guestID int64, limit, offset int) ([]domain.Booking, error)
	UpdateStatusIf(ctx context.Context, bookingID int64, from, to domain.BookingStatus, fields map[string]any) (int64, error)
}

type PropertyRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Property, error)
}

// NotificationSender is the fire-and-forget side channel. Errors from
// it are logged and dropped, never propagated.
type NotificationSender interface {
	NotifyBookingCreated(ctx context.Context, realtorID, bookingID, propertyID int64) error
	NotifyBookingConfirmed(ctx context.Context, guestID, bookingID int64) error
	NotifyBookingCancelled(ctx context.Context, userID, bookingID int64, reason string) error
}
