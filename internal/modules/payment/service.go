package payment

import (
	"context"
	"fmt"
	"time"

	"stayhub/internal/domain"
)

// Service applies payment-provider confirmations. The core never
// talks to card networks directly; the provider tells us when funds
// moved to held, and re-delivered callbacks must be absorbed without
// double effect.
type Service struct {
	payments paymentRepo
	bookings bookingReader
	mirror   bookingPaymentWriter
	loggerf  func(format string, args ...interface{})
}

func NewService(payments paymentRepo, bookings bookingReader, mirror bookingPaymentWriter, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		payments: payments,
		bookings: bookings,
		mirror:   mirror,
		loggerf:  loggerf,
	}
}

func (s *Service) HandleProviderCallback(ctx context.Context, req ProviderCallbackRequest) (*domain.Payment, error) {
	if _, err := s.bookings.GetByID(ctx, req.BookingID); err != nil {
		return nil, fmt.Errorf("booking check failed: %w", err)
	}

	if !req.Succeeded {
		if err := s.payments.MarkFailed(ctx, req.BookingID, req.ProviderRef); err != nil {
			return nil, err
		}
		if err := s.mirror.SyncPaymentStatus(ctx, req.BookingID, domain.PaymentFailed); err != nil {
			s.loggerf("level=error msg=failed to mirror failed payment status booking_id=%d err=%v", req.BookingID, err)
		}
		return s.payments.GetByBookingID(ctx, req.BookingID)
	}

	changed, err := s.payments.MarkHeldIdempotent(ctx, req.BookingID, req.Method, req.ProviderRef, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !changed {
		s.loggerf("level=info msg=idempotent provider callback booking_id=%d provider_ref=%s", req.BookingID, req.ProviderRef)
	} else {
		if err := s.mirror.SyncPaymentStatus(ctx, req.BookingID, domain.PaymentHeld); err != nil {
			s.loggerf("level=error msg=failed to mirror held payment status booking_id=%d err=%v", req.BookingID, err)
		}
	}

	return s.payments.GetByBookingID(ctx, req.BookingID)
}

func (s *Service) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	return s.payments.GetByBookingID(ctx, bookingID)
}
