package booking

import "errors"

var (
	ErrValidation       = errors.New("validation error")
	ErrInvalidDateRange = errors.New("check-out must be after check-in")
	ErrDateInPast       = errors.New("check-in date is in the past")
	ErrPropertyNotFound = errors.New("property not found or inactive")
	ErrSelfBooking      = errors.New("hosts cannot book their own property")
	ErrCapacityExceeded = errors.New("guest count exceeds property capacity")

	// ErrNotAvailable means the requested dates lost a race or were
	// already taken. Distinct from validation so clients know to
	// retry with different dates, not the same request.
	ErrNotAvailable = errors.New("property not available for the selected dates")

	// ErrOverbooking is the exclusion-constraint backstop firing.
	ErrOverbooking = errors.New("overbooking constraint violation")

	// ErrStatusConflict means the caller's view of the booking was
	// stale: someone else transitioned it first.
	ErrStatusConflict = errors.New("booking status changed concurrently")

	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrForbidden               = errors.New("forbidden")
	ErrNotFound                = errors.New("booking not found")
)
