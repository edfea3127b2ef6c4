// Package escrow releases held payments in two independently timed,
// independently disputable tranches: the room-fee split after the
// guest dispute window, and the security-deposit return after the
// host dispute window. Eligibility is re-derived from durable payment
// status on every sweep, so a booking that failed mid-release on one
// cycle is naturally retried on the next.
package escrow

import (
	"context"
	"errors"
	"math"
	"time"

	"stayhub/internal/domain"
	"stayhub/internal/repository"
)

const (
	TrancheRoomFee = "room_fee"
	TrancheDeposit = "deposit"
)

type ReleasedItem struct {
	BookingID int64   `json:"booking_id"`
	Tranche   string  `json:"tranche"`
	Amount    float64 `json:"amount"`
}

type SkippedItem struct {
	BookingID int64  `json:"booking_id"`
	Reason    string `json:"reason"`
}

type SweepError struct {
	BookingID int64  `json:"booking_id"`
	Error     string `json:"error"`
}

type SweepResult struct {
	Released []ReleasedItem `json:"released"`
	Skipped  []SkippedItem  `json:"skipped"`
	Errors   []SweepError   `json:"errors"`
}

type Service struct {
	store      EscrowStore
	bookings   bookingReader
	payments   paymentReader
	properties propertyReader
	notifs     NotificationSender
	loggerf    func(format string, args ...interface{})

	// claims records the working set on the job lock row before the
	// sweep mutates anything. Optional, observability only.
	claims func(ctx context.Context, ids []int64)

	hostShare   float64
	guestWindow time.Duration
	hostWindow  time.Duration
}

func NewService(
	store EscrowStore,
	bookings bookingReader,
	payments paymentReader,
	properties propertyReader,
	notifs NotificationSender,
	hostShare float64,
	guestWindow, hostWindow time.Duration,
	loggerf func(format string, args ...interface{}),
) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		store:       store,
		bookings:    bookings,
		payments:    payments,
		properties:  properties,
		notifs:      notifs,
		loggerf:     loggerf,
		hostShare:   hostShare,
		guestWindow: guestWindow,
		hostWindow:  hostWindow,
	}
}

// SetClaimRecorder wires the job-lock working-set hook.
func (s *Service) SetClaimRecorder(fn func(ctx context.Context, ids []int64)) {
	s.claims = fn
}

// RunSweep finds every booking due for a release and processes each
// one independently: a failure is recorded and skipped, never
// aborting the sweep for the remaining bookings. No ordering is
// promised across bookings; within one booking the deposit tranche
// can only follow a completed room-fee tranche because eligibility
// keys off the payment status the first tranche wrote.
func (s *Service) RunSweep(ctx context.Context) (*SweepResult, error) {
	now := time.Now().UTC()
	ids, err := s.store.ListReleaseCandidateIDs(ctx, now.Add(-s.guestWindow), now.Add(-s.hostWindow))
	if err != nil {
		return nil, err
	}

	if s.claims != nil && len(ids) > 0 {
		s.claims(ctx, ids)
	}

	res := &SweepResult{
		Released: []ReleasedItem{},
		Skipped:  []SkippedItem{},
		Errors:   []SweepError{},
	}
	for _, id := range ids {
		released, skipReason, err := s.releaseOne(ctx, id, now)
		switch {
		case err != nil:
			s.loggerf("level=error msg=escrow release failed booking_id=%d err=%v", id, err)
			res.Errors = append(res.Errors, SweepError{BookingID: id, Error: err.Error()})
		case skipReason != "":
			res.Skipped = append(res.Skipped, SkippedItem{BookingID: id, Reason: skipReason})
		default:
			res.Released = append(res.Released, *released)
		}
	}

	s.loggerf("level=info msg=escrow sweep finished released=%d skipped=%d errors=%d",
		len(res.Released), len(res.Skipped), len(res.Errors))
	return res, nil
}

func (s *Service) releaseOne(ctx context.Context, bookingID int64, now time.Time) (*ReleasedItem, string, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	if b.Status == domain.BookingCancelled {
		s.loggerf("level=info msg=cancelled booking left for refund flow booking_id=%d", bookingID)
		return nil, "booking cancelled", nil
	}

	p, err := s.payments.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}

	switch p.Status {
	case domain.PaymentHeld:
		if b.CheckInDate.After(now.Add(-s.guestWindow)) {
			return nil, "guest dispute window still open", nil
		}
		return s.releaseRoomFee(ctx, b, p)

	case domain.PaymentPartiallyReleased:
		if b.CheckOutDate.After(now.Add(-s.hostWindow)) {
			return nil, "host dispute window still open", nil
		}
		return s.releaseDeposit(ctx, b, p)

	default:
		return nil, "payment not in a releasable state", nil
	}
}

// releaseRoomFee performs tranche 1: the room fee splits between the
// host payout and the platform commission. The split ratio is
// configuration, not law.
func (s *Service) releaseRoomFee(ctx context.Context, b *domain.Booking, p *domain.Payment) (*ReleasedItem, string, error) {
	prop, err := s.properties.GetByID(ctx, b.PropertyID)
	if err != nil {
		return nil, "", err
	}

	commission := round2(p.RoomFeeAmount * (1 - s.hostShare))
	hostPayout := round2(p.RoomFeeAmount - commission)

	ok, err := s.store.ReleaseRoomFee(ctx, repository.RoomFeeRelease{
		BookingID:  b.ID,
		RealtorID:  prop.RealtorID,
		Currency:   p.Currency,
		HostPayout: hostPayout,
		Commission: commission,
	})
	if skip := skipReasonFor(err); skip != "" {
		return nil, skip, nil
	}
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "room fee already released", nil
	}

	if s.notifs != nil {
		if nerr := s.notifs.NotifyFundsReleased(ctx, prop.RealtorID, b.ID, hostPayout); nerr != nil {
			s.loggerf("level=warn msg=payout notification failed booking_id=%d err=%v", b.ID, nerr)
		}
	}
	return &ReleasedItem{BookingID: b.ID, Tranche: TrancheRoomFee, Amount: hostPayout}, "", nil
}

// releaseDeposit performs tranche 2 and completes the booking. A zero
// deposit is not an error, just a no-op release that still settles
// the payment.
func (s *Service) releaseDeposit(ctx context.Context, b *domain.Booking, p *domain.Payment) (*ReleasedItem, string, error) {
	ok, err := s.store.ReleaseDeposit(ctx, repository.DepositRelease{
		BookingID: b.ID,
		GuestID:   b.GuestID,
		Currency:  p.Currency,
		Deposit:   p.SecurityDepositAmount,
	})
	if skip := skipReasonFor(err); skip != "" {
		return nil, skip, nil
	}
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "deposit already settled", nil
	}

	if s.notifs != nil && p.SecurityDepositAmount > 0 {
		if nerr := s.notifs.NotifyDepositReturned(ctx, b.GuestID, b.ID, p.SecurityDepositAmount); nerr != nil {
			s.loggerf("level=warn msg=deposit notification failed booking_id=%d err=%v", b.ID, nerr)
		}
	}
	return &ReleasedItem{BookingID: b.ID, Tranche: TrancheDeposit, Amount: p.SecurityDepositAmount}, "", nil
}

// skipReasonFor maps the two expected lost races to sweep skip
// reasons. Anything else is a real error.
func skipReasonFor(err error) string {
	switch {
	case errors.Is(err, repository.ErrDisputeBlocked):
		return "blocking dispute"
	case errors.Is(err, repository.ErrBookingCancelled):
		return "booking cancelled"
	}
	return ""
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
