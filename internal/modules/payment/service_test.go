package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stayhub/internal/domain"
)

type fakePaymentRepo struct {
	payment *domain.Payment

	heldCalls   int
	heldChanged bool
	heldErr     error

	failedCalls int
	failedErr   error
}

func (f *fakePaymentRepo) GetByBookingID(_ context.Context, _ int64) (*domain.Payment, error) {
	return f.payment, nil
}

func (f *fakePaymentRepo) MarkHeldIdempotent(_ context.Context, _ int64, method, providerRef string, paidAt time.Time) (bool, error) {
	f.heldCalls++
	if f.heldErr != nil {
		return false, f.heldErr
	}
	if f.heldChanged {
		f.payment.Status = domain.PaymentHeld
		f.payment.Method = method
		f.payment.ProviderRef = providerRef
		f.payment.PaidAt = &paidAt
	}
	return f.heldChanged, nil
}

func (f *fakePaymentRepo) MarkFailed(_ context.Context, _ int64, providerRef string) error {
	f.failedCalls++
	if f.failedErr != nil {
		return f.failedErr
	}
	f.payment.Status = domain.PaymentFailed
	f.payment.ProviderRef = providerRef
	return nil
}

type fakeBookingReader struct {
	booking *domain.Booking
	err     error
}

func (f *fakeBookingReader) GetByID(_ context.Context, _ int64) (*domain.Booking, error) {
	return f.booking, f.err
}

type fakeMirror struct {
	statuses []domain.PaymentStatus
	err      error
}

func (f *fakeMirror) SyncPaymentStatus(_ context.Context, _ int64, status domain.PaymentStatus) error {
	f.statuses = append(f.statuses, status)
	return f.err
}

func callbackFixture() (*fakePaymentRepo, *fakeBookingReader, *fakeMirror) {
	repo := &fakePaymentRepo{
		payment:     &domain.Payment{ID: 500, BookingID: 10, Amount: 315, Currency: "USD", Status: domain.PaymentInitiated},
		heldChanged: true,
	}
	bookings := &fakeBookingReader{booking: &domain.Booking{ID: 10, Status: domain.BookingPending}}
	return repo, bookings, &fakeMirror{}
}

func TestHandleProviderCallback_Success(t *testing.T) {
	repo, bookings, mirror := callbackFixture()
	service := NewService(repo, bookings, mirror, nil)

	p, err := service.HandleProviderCallback(context.Background(), ProviderCallbackRequest{
		BookingID:   10,
		ProviderRef: "ch_abc123",
		Method:      "card",
		Succeeded:   true,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentHeld, p.Status)
	assert.Equal(t, "ch_abc123", p.ProviderRef)
	assert.NotNil(t, p.PaidAt)
	assert.Equal(t, []domain.PaymentStatus{domain.PaymentHeld}, mirror.statuses)
}

func TestHandleProviderCallback_RedeliveredCallbackIsAbsorbed(t *testing.T) {
	repo, bookings, mirror := callbackFixture()
	service := NewService(repo, bookings, mirror, nil)

	_, err := service.HandleProviderCallback(context.Background(), ProviderCallbackRequest{
		BookingID: 10, ProviderRef: "ch_abc123", Method: "card", Succeeded: true,
	})
	assert.NoError(t, err)

	repo.heldChanged = false // second delivery hits the already-held row
	p, err := service.HandleProviderCallback(context.Background(), ProviderCallbackRequest{
		BookingID: 10, ProviderRef: "ch_abc123", Method: "card", Succeeded: true,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentHeld, p.Status)
	assert.Equal(t, 2, repo.heldCalls)
	assert.Len(t, mirror.statuses, 1, "mirror must only be written on an actual transition")
}

func TestHandleProviderCallback_FailureMarksFailed(t *testing.T) {
	repo, bookings, mirror := callbackFixture()
	service := NewService(repo, bookings, mirror, nil)

	p, err := service.HandleProviderCallback(context.Background(), ProviderCallbackRequest{
		BookingID:   10,
		ProviderRef: "ch_declined",
		Succeeded:   false,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, p.Status)
	assert.Equal(t, 1, repo.failedCalls)
	assert.Equal(t, 0, repo.heldCalls)
	assert.Equal(t, []domain.PaymentStatus{domain.PaymentFailed}, mirror.statuses)
}

func TestHandleProviderCallback_UnknownBooking(t *testing.T) {
	repo, bookings, mirror := callbackFixture()
	bookings.err = errors.New("record not found")
	service := NewService(repo, bookings, mirror, nil)

	_, err := service.HandleProviderCallback(context.Background(), ProviderCallbackRequest{
		BookingID: 404, Succeeded: true,
	})

	assert.Error(t, err)
	assert.Equal(t, 0, repo.heldCalls)
	assert.Empty(t, mirror.statuses)
}

func TestHandleProviderCallback_MirrorFailureDoesNotFailCallback(t *testing.T) {
	repo, bookings, mirror := callbackFixture()
	mirror.err = errors.New("db down")
	service := NewService(repo, bookings, mirror, nil)

	p, err := service.HandleProviderCallback(context.Background(), ProviderCallbackRequest{
		BookingID: 10, ProviderRef: "ch_abc123", Method: "card", Succeeded: true,
	})

	assert.NoError(t, err, "the payment row is the source of truth, the mirror is best effort")
	assert.Equal(t, domain.PaymentHeld, p.Status)
}
