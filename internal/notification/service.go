// Package notification is the best-effort side channel of the core:
// a durable notifications table written at-most-once per event.
// Callers hold it behind small interfaces and must never let a
// notification failure roll back the operation that triggered it.
package notification

import (
	"context"
	"fmt"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, userID int64, t NotificationType, title, message string, data map[string]any) error {
	n := &Notification{
		UserID:  userID,
		Type:    t,
		Title:   title,
		Message: message,
		IsRead:  false,
	}
	return s.repo.Create(ctx, n, data)
}

func (s *Service) GetUserNotifications(ctx context.Context, userID int64, limit int) ([]Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	list, err := s.repo.GetByUserID(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		unread = 0
	}
	return list, unread, nil
}

func (s *Service) MarkAsRead(ctx context.Context, notificationID, userID int64) error {
	return s.repo.MarkAsRead(ctx, notificationID, userID)
}

func (s *Service) NotifyBookingCreated(ctx context.Context, realtorID, bookingID, propertyID int64) error {
	return s.Create(ctx, realtorID, NotifBookingCreated,
		"New booking request",
		"A guest requested a stay at your property",
		map[string]any{"booking_id": bookingID, "property_id": propertyID},
	)
}

func (s *Service) NotifyBookingConfirmed(ctx context.Context, guestID, bookingID int64) error {
	return s.Create(ctx, guestID, NotifBookingConfirmed,
		"Booking confirmed",
		"Your booking was confirmed by the host",
		map[string]any{"booking_id": bookingID},
	)
}

func (s *Service) NotifyBookingCancelled(ctx context.Context, userID, bookingID int64, reason string) error {
	return s.Create(ctx, userID, NotifBookingCancelled,
		"Booking cancelled",
		reason,
		map[string]any{"booking_id": bookingID},
	)
}

func (s *Service) NotifyFundsReleased(ctx context.Context, realtorID, bookingID int64, amount float64) error {
	return s.Create(ctx, realtorID, NotifFundsReleased,
		"Payout released",
		fmt.Sprintf("Room fee payout of %.2f was credited to your ledger", amount),
		map[string]any{"booking_id": bookingID, "amount": amount},
	)
}

func (s *Service) NotifyDepositReturned(ctx context.Context, guestID, bookingID int64, amount float64) error {
	return s.Create(ctx, guestID, NotifDepositReturned,
		"Deposit returned",
		fmt.Sprintf("Your security deposit of %.2f was returned", amount),
		map[string]any{"booking_id": bookingID, "amount": amount},
	)
}
