package escrow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stayhub/internal/domain"
	"stayhub/internal/repository"
)

type fakeStore struct {
	ids     []int64
	listErr error

	roomFeeResult bool
	roomFeeErr    error
	depositResult bool
	depositErr    error

	roomFeeCalls []repository.RoomFeeRelease
	depositCalls []repository.DepositRelease
}

func (f *fakeStore) ListReleaseCandidateIDs(_ context.Context, _, _ time.Time) ([]int64, error) {
	return f.ids, f.listErr
}

func (f *fakeStore) ReleaseRoomFee(_ context.Context, rel repository.RoomFeeRelease) (bool, error) {
	f.roomFeeCalls = append(f.roomFeeCalls, rel)
	return f.roomFeeResult, f.roomFeeErr
}

func (f *fakeStore) ReleaseDeposit(_ context.Context, rel repository.DepositRelease) (bool, error) {
	f.depositCalls = append(f.depositCalls, rel)
	return f.depositResult, f.depositErr
}

type fakeBookings struct {
	byID map[int64]*domain.Booking
}

func (f *fakeBookings) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, errors.New("booking not found")
	}
	return b, nil
}

type fakePayments struct {
	byBooking map[int64]*domain.Payment
}

func (f *fakePayments) GetByBookingID(_ context.Context, bookingID int64) (*domain.Payment, error) {
	p, ok := f.byBooking[bookingID]
	if !ok {
		return nil, errors.New("payment record missing")
	}
	return p, nil
}

type fakeProperties struct {
	byID map[int64]*domain.Property
}

func (f *fakeProperties) GetByID(_ context.Context, id int64) (*domain.Property, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, errors.New("property not found")
	}
	return p, nil
}

type fakeNotifier struct {
	payoutCalls  int
	depositCalls int
}

func (f *fakeNotifier) NotifyFundsReleased(_ context.Context, _, _ int64, _ float64) error {
	f.payoutCalls++
	return nil
}

func (f *fakeNotifier) NotifyDepositReturned(_ context.Context, _, _ int64, _ float64) error {
	f.depositCalls++
	return nil
}

func pastDate(d time.Duration) time.Time {
	return time.Now().UTC().Add(-d)
}

func heldFixture() (*fakeStore, *fakeBookings, *fakePayments, *fakeProperties) {
	store := &fakeStore{ids: []int64{10}, roomFeeResult: true, depositResult: true}
	bookings := &fakeBookings{byID: map[int64]*domain.Booking{
		10: {
			ID:           10,
			PropertyID:   7,
			GuestID:      2,
			CheckInDate:  pastDate(48 * time.Hour),
			CheckOutDate: pastDate(24 * time.Hour),
			Status:       domain.BookingActive,
		},
	}}
	payments := &fakePayments{byBooking: map[int64]*domain.Payment{
		10: {
			ID:                    500,
			BookingID:             10,
			RoomFeeAmount:         300,
			SecurityDepositAmount: 50,
			Currency:              "USD",
			Status:                domain.PaymentHeld,
		},
	}}
	properties := &fakeProperties{byID: map[int64]*domain.Property{
		7: {ID: 7, RealtorID: 1},
	}}
	return store, bookings, payments, properties
}

func newTestService(store *fakeStore, b *fakeBookings, p *fakePayments, props *fakeProperties, n NotificationSender) *Service {
	return NewService(store, b, p, props, n, 0.90, time.Hour, 2*time.Hour, nil)
}

func TestRunSweep_RoomFeeSplit(t *testing.T) {
	store, bookings, payments, properties := heldFixture()
	notifs := &fakeNotifier{}
	service := newTestService(store, bookings, payments, properties, notifs)

	res, err := service.RunSweep(context.Background())

	assert.NoError(t, err)
	assert.Len(t, res.Released, 1)
	assert.Equal(t, TrancheRoomFee, res.Released[0].Tranche)
	assert.Equal(t, 270.0, res.Released[0].Amount)

	// 90/10 split of the 300 room fee
	assert.Len(t, store.roomFeeCalls, 1)
	assert.Equal(t, 270.0, store.roomFeeCalls[0].HostPayout)
	assert.Equal(t, 30.0, store.roomFeeCalls[0].Commission)
	assert.Equal(t, int64(1), store.roomFeeCalls[0].RealtorID)
	assert.Equal(t, 1, notifs.payoutCalls)
}

func TestRunSweep_DepositReturn(t *testing.T) {
	store, bookings, payments, properties := heldFixture()
	payments.byBooking[10].Status = domain.PaymentPartiallyReleased
	notifs := &fakeNotifier{}
	service := newTestService(store, bookings, payments, properties, notifs)

	res, err := service.RunSweep(context.Background())

	assert.NoError(t, err)
	assert.Len(t, res.Released, 1)
	assert.Equal(t, TrancheDeposit, res.Released[0].Tranche)
	assert.Equal(t, 50.0, res.Released[0].Amount)
	assert.Len(t, store.depositCalls, 1)
	assert.Equal(t, int64(2), store.depositCalls[0].GuestID)
	assert.Equal(t, 50.0, store.depositCalls[0].Deposit)
	assert.Equal(t, 1, notifs.depositCalls)
	assert.Empty(t, store.roomFeeCalls, "tranche 1 must not re-run")
}

func TestRunSweep_ZeroDepositIsNoopRelease(t *testing.T) {
	store, bookings, payments, properties := heldFixture()
	payments.byBooking[10].Status = domain.PaymentPartiallyReleased
	payments.byBooking[10].SecurityDepositAmount = 0
	notifs := &fakeNotifier{}
	service := newTestService(store, bookings, payments, properties, notifs)

	res, err := service.RunSweep(context.Background())

	assert.NoError(t, err)
	assert.Len(t, res.Released, 1)
	assert.Equal(t, 0.0, res.Released[0].Amount)
	assert.Equal(t, 0, notifs.depositCalls, "no deposit, no notification")
}

func TestRunSweep_SecondRunFindsNothingNew(t *testing.T) {
	store, bookings, payments, properties := heldFixture()
	service := newTestService(store, bookings, payments, properties, nil)

	res, err := service.RunSweep(context.Background())
	assert.NoError(t, err)
	assert.Len(t, res.Released, 1)

	// A retried sweep sees the already-moved payment status and the
	// conditional update reports no change.
	store.roomFeeResult = false
	payments.byBooking[10].Status = domain.PaymentHeld // stale candidate row
	res, err = service.RunSweep(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, res.Released)
	assert.Len(t, res.Skipped, 1)
}

func TestRunSweep_DisputeBlocksRelease(t *testing.T) {
	store, bookings, payments, properties := heldFixture()
	store.roomFeeErr = repository.ErrDisputeBlocked
	service := newTestService(store, bookings, payments, properties, nil)

	res, err := service.RunSweep(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, res.Released)
	assert.Len(t, res.Skipped, 1)
	assert.Equal(t, "blocking dispute", res.Skipped[0].Reason)
}

func TestRunSweep_CancellationWinsRace(t *testing.T) {
	store, bookings, payments, properties := heldFixture()
	payments.byBooking[10].Status = domain.PaymentPartiallyReleased
	store.depositErr = repository.ErrBookingCancelled
	service := newTestService(store, bookings, payments, properties, nil)

	res, err := service.RunSweep(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, res.Released)
	assert.Len(t, res.Skipped, 1)
	assert.Equal(t, "booking cancelled", res.Skipped[0].Reason)
}

func TestRunSweep_CancelledBookingSkipped(t *testing.T) {
	store, bookings, payments, properties := heldFixture()
	bookings.byID[10].Status = domain.BookingCancelled
	service := newTestService(store, bookings, payments, properties, nil)

	res, err := service.RunSweep(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, res.Released)
	assert.Len(t, res.Skipped, 1)
	assert.Empty(t, store.roomFeeCalls)
}

func TestRunSweep_WindowNotElapsed(t *testing.T) {
	store, bookings, payments, properties := heldFixture()
	bookings.byID[10].CheckInDate = time.Now().UTC().Add(-30 * time.Minute)
	service := newTestService(store, bookings, payments, properties, nil)

	res, err := service.RunSweep(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, res.Released)
	assert.Len(t, res.Skipped, 1)
	assert.Equal(t, "guest dispute window still open", res.Skipped[0].Reason)
}

func TestRunSweep_PerBookingErrorIsolation(t *testing.T) {
	store, bookings, payments, properties := heldFixture()
	store.ids = []int64{99, 10} // 99 has no payment record
	bookings.byID[99] = &domain.Booking{
		ID:           99,
		PropertyID:   7,
		GuestID:      3,
		CheckInDate:  pastDate(48 * time.Hour),
		CheckOutDate: pastDate(24 * time.Hour),
		Status:       domain.BookingActive,
	}
	service := newTestService(store, bookings, payments, properties, nil)

	res, err := service.RunSweep(context.Background())

	assert.NoError(t, err)
	assert.Len(t, res.Errors, 1)
	assert.Equal(t, int64(99), res.Errors[0].BookingID)
	assert.Len(t, res.Released, 1, "one booking's failure must not abort the sweep")
	assert.Equal(t, int64(10), res.Released[0].BookingID)
}

func TestRunSweep_RecordsWorkingSet(t *testing.T) {
	store, bookings, payments, properties := heldFixture()
	service := newTestService(store, bookings, payments, properties, nil)

	var claimed []int64
	service.SetClaimRecorder(func(_ context.Context, ids []int64) {
		claimed = ids
	})

	_, err := service.RunSweep(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []int64{10}, claimed)
}
