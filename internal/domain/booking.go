package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// IsTerminal reports whether no further status transitions are allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

type Booking struct {
	ID            int64         `json:"id"`
	PropertyID    int64         `json:"property_id" validate:"required"`
	GuestID       int64         `json:"guest_id" validate:"required"`
	CheckInDate   time.Time     `json:"check_in_date" validate:"required"`
	CheckOutDate  time.Time     `json:"check_out_date" validate:"required"`
	TotalGuests   int           `json:"total_guests" validate:"required,gte=1"`
	TotalPrice    float64       `json:"total_price" validate:"gte=0"`
	Currency      string        `json:"currency"`
	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	CancelledAt   *time.Time    `json:"cancelled_at,omitempty"`

	// Заполняется при отмене, обязательная причина
	CancellationReason string `json:"cancellation_reason,omitempty" gorm:"type:text"`

	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Payment  *Payment  `json:"payment,omitempty" gorm:"foreignKey:BookingID"`
}

// Nights returns the number of nights covered by the stay. The
// [check-in, check-out) interval is half-open: checkout day is free.
func (b *Booking) Nights() int {
	return int(b.CheckOutDate.Sub(b.CheckInDate).Hours() / 24)
}
