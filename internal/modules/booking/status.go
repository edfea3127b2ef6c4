package booking

import (
	"context"
	"log"
	"time"

	"stayhub/internal/domain"
)

// allowedTransitions is the booking lifecycle:
// pending -> confirmed -> active -> completed, with cancelled
// reachable from any non-terminal state. completed and cancelled are
// terminal.
var allowedTransitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.BookingPending:   {domain.BookingConfirmed, domain.BookingCancelled},
	domain.BookingConfirmed: {domain.BookingActive, domain.BookingCancelled},
	domain.BookingActive:    {domain.BookingCompleted, domain.BookingCancelled},
}

func canTransition(from, to domain.BookingStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves a booking from an expected current status to a new
// one. The update is conditional on the expected status: zero rows
// affected means the caller's read was stale and the call fails with
// ErrStatusConflict instead of silently overwriting. This is what
// lets a manual cancellation win a race against the escrow job, and
// vice versa.
func (s *Service) Transition(ctx context.Context, bookingID int64, from, to domain.BookingStatus, fields map[string]any) (*domain.Booking, error) {
	if !canTransition(from, to) {
		return nil, ErrInvalidStatusTransition
	}

	rows, err := s.bookings.UpdateStatusIf(ctx, bookingID, from, to, fields)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrStatusConflict
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Notification is a best-effort side channel: its failure must
	// never fail or roll back the transition.
	if s.notifs != nil {
		switch to {
		case domain.BookingConfirmed:
			if nerr := s.notifs.NotifyBookingConfirmed(ctx, b.GuestID, b.ID); nerr != nil {
				log.Printf("level=warn msg=confirm notification failed booking_id=%d err=%v", b.ID, nerr)
			}
		case domain.BookingCancelled:
			reason, _ := fields["cancellation_reason"].(string)
			if nerr := s.notifs.NotifyBookingCancelled(ctx, b.GuestID, b.ID, reason); nerr != nil {
				log.Printf("level=warn msg=cancel notification failed booking_id=%d err=%v", b.ID, nerr)
			}
		}
	}

	return b, nil
}

// Confirm is the host accepting a pending booking.
func (s *Service) Confirm(ctx context.Context, bookingID, actorID int64) (*domain.Booking, error) {
	if err := s.requireRealtor(ctx, bookingID, actorID); err != nil {
		return nil, err
	}
	return s.Transition(ctx, bookingID, domain.BookingPending, domain.BookingConfirmed, nil)
}

// Activate marks the stay as started at check-in.
func (s *Service) Activate(ctx context.Context, bookingID, actorID int64) (*domain.Booking, error) {
	if err := s.requireRealtor(ctx, bookingID, actorID); err != nil {
		return nil, err
	}
	return s.Transition(ctx, bookingID, domain.BookingConfirmed, domain.BookingActive, nil)
}

// Cancel is guest- or host-initiated. Cancellation is a status
// transition, never a delete, and the expected-status guard means it
// wins or loses any race against the release sweep cleanly.
func (s *Service) Cancel(ctx context.Context, bookingID, actorID int64, reason string) (*domain.Booking, error) {
	b, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	prop, err := s.properties.GetByID(ctx, b.PropertyID)
	if err != nil {
		return nil, err
	}
	if actorID != b.GuestID && actorID != prop.RealtorID {
		return nil, ErrForbidden
	}
	if b.Status.IsTerminal() {
		return nil, ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	return s.Transition(ctx, bookingID, b.Status, domain.BookingCancelled, map[string]any{
		"cancelled_at":        now,
		"cancellation_reason": reason,
	})
}

func (s *Service) requireRealtor(ctx context.Context, bookingID, actorID int64) error {
	b, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	prop, err := s.properties.GetByID(ctx, b.PropertyID)
	if err != nil {
		return err
	}
	if prop.RealtorID != actorID {
		return ErrForbidden
	}
	return nil
}
