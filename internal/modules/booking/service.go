package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"stayhub/internal/domain"
	"stayhub/internal/repository"
)

const dateLayout = "2006-01-02"

type Service struct {
	bookings   BookingRepository
	properties PropertyRepository
	notifs     NotificationSender

	commissionRate float64
	serviceFeeRate float64
}

func NewService(bookings BookingRepository, properties PropertyRepository, notifs NotificationSender, commissionRate, serviceFeeRate float64) *Service {
	return &Service{
		bookings:       bookings,
		properties:     properties,
		notifs:         notifs,
		commissionRate: commissionRate,
		serviceFeeRate: serviceFeeRate,
	}
}

// Create reserves a date range on a property. The conflict re-check
// and the insert run inside one transaction in the repository, so no
// caller ever double-books a property even under concurrent requests
// for overlapping ranges; the idx_no_double_booking exclusion
// constraint on Postgres is the backstop and surfaces here as an
// exclusion violation (23P01).
func (s *Service) Create(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	checkIn, err := time.ParseInLocation(dateLayout, req.CheckIn, time.UTC)
	if err != nil {
		return nil, ErrValidation
	}
	checkOut, err := time.ParseInLocation(dateLayout, req.CheckOut, time.UTC)
	if err != nil {
		return nil, ErrValidation
	}
	if !checkOut.After(checkIn) {
		return nil, ErrInvalidDateRange
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if checkIn.Before(today) {
		return nil, ErrDateInPast
	}

	prop, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	if !prop.IsActive {
		return nil, ErrPropertyNotFound
	}
	if prop.RealtorID == req.GuestID {
		return nil, ErrSelfBooking
	}
	if req.TotalGuests < 1 {
		return nil, ErrValidation
	}
	if req.TotalGuests > prop.MaxGuests {
		return nil, ErrCapacityExceeded
	}

	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	q := ComputeQuote(prop, nights, s.commissionRate, s.serviceFeeRate)

	b := &domain.Booking{
		PropertyID:    req.PropertyID,
		GuestID:       req.GuestID,
		CheckInDate:   checkIn,
		CheckOutDate:  checkOut,
		TotalGuests:   req.TotalGuests,
		TotalPrice:    q.Total,
		Currency:      prop.Currency,
		Status:        domain.BookingPending,
		PaymentStatus: domain.PaymentInitiated,
	}
	p := &domain.Payment{
		Amount:                q.Total,
		Currency:              prop.Currency,
		RoomFeeAmount:         q.RoomFee,
		CleaningFeeAmount:     q.CleaningFee,
		SecurityDepositAmount: q.SecurityDeposit,
		ServiceFeeAmount:      q.ServiceFee,
		Status:                domain.PaymentInitiated,
	}

	if err := s.bookings.CreateWithPayment(ctx, b, p); err != nil {
		if errors.Is(err, repository.ErrOverlap) {
			return nil, ErrNotAvailable
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "idx_no_double_booking" &&
			(pgErr.Code == "23P01" || pgErr.Code == "23505") {
			return nil, ErrOverbooking
		}
		return nil, err
	}

	if s.notifs != nil {
		if nerr := s.notifs.NotifyBookingCreated(ctx, prop.RealtorID, b.ID, prop.ID); nerr != nil {
			log.Printf("level=warn msg=booking created notification failed booking_id=%d err=%v", b.ID, nerr)
		}
	}

	return b, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) ListMyBookings(ctx context.Context, guestID int64, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.bookings.ListByGuest(ctx, guestID, limit, offset)
}
