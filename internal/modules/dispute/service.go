// Package dispute owns the claim records that gate escrow release.
// The settlement engine only ever asks one question of this data:
// does the booking have a blocking dispute right now.
package dispute

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"stayhub/internal/domain"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("dispute not found")
	ErrAlreadyResolved = errors.New("dispute already resolved")
	ErrForbidden       = errors.New("forbidden")
)

type DisputeRepository interface {
	Create(ctx context.Context, d *domain.Dispute) error
	GetByID(ctx context.Context, id int64) (*domain.Dispute, error)
	HasBlockingDispute(ctx context.Context, bookingID int64) (bool, error)
	Resolve(ctx context.Context, id int64, status domain.DisputeStatus, resolution string) (int64, error)
}

type bookingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

type propertyReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Property, error)
}

type Service struct {
	disputes   DisputeRepository
	bookings   bookingReader
	properties propertyReader
}

func NewService(disputes DisputeRepository, bookings bookingReader, properties propertyReader) *Service {
	return &Service{disputes: disputes, bookings: bookings, properties: properties}
}

// Open files a dispute against a booking. Only the guest or the host
// of the stay can open one; the escrow sweep starts skipping the
// booking from its next eligibility query onward.
func (s *Service) Open(ctx context.Context, bookingID, initiatorID int64, reason string) (*domain.Dispute, error) {
	if reason == "" {
		return nil, ErrValidation
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	prop, err := s.properties.GetByID(ctx, b.PropertyID)
	if err != nil {
		return nil, err
	}
	if initiatorID != b.GuestID && initiatorID != prop.RealtorID {
		return nil, ErrForbidden
	}

	d := &domain.Dispute{
		BookingID:   bookingID,
		InitiatorID: initiatorID,
		Reason:      reason,
		Status:      domain.DisputeOpen,
	}
	if err := s.disputes.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Resolve closes a dispute. The conditional update only matches
// blocking statuses, so resolving twice fails instead of rewriting
// history.
func (s *Service) Resolve(ctx context.Context, disputeID int64, accepted bool, resolution string) (*domain.Dispute, error) {
	status := domain.DisputeRejected
	if accepted {
		status = domain.DisputeResolved
	}

	rows, err := s.disputes.Resolve(ctx, disputeID, status, resolution)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		if _, gerr := s.disputes.GetByID(ctx, disputeID); errors.Is(gerr, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrAlreadyResolved
	}
	return s.disputes.GetByID(ctx, disputeID)
}

func (s *Service) HasBlockingDispute(ctx context.Context, bookingID int64) (bool, error) {
	return s.disputes.HasBlockingDispute(ctx, bookingID)
}
