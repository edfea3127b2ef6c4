package domain

import "time"

type PaymentStatus string

const (
	PaymentInitiated         PaymentStatus = "initiated"
	PaymentHeld              PaymentStatus = "held"
	PaymentPartiallyReleased PaymentStatus = "partially_released"
	PaymentSettled           PaymentStatus = "settled"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentFailed            PaymentStatus = "failed"
)

// IsFinal reports whether no further release operations are permitted.
func (s PaymentStatus) IsFinal() bool {
	return s == PaymentSettled || s == PaymentRefunded || s == PaymentFailed
}

// Payment is the monetary record attached 1:1 to a booking. Funds are
// collected upfront and held until the escrow engine releases them in
// two tranches: the room-fee split and the security-deposit return.
type Payment struct {
	ID        int64   `json:"id"`
	BookingID int64   `json:"booking_id" gorm:"uniqueIndex"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`

	RoomFeeAmount         float64 `json:"room_fee_amount"`
	CleaningFeeAmount     float64 `json:"cleaning_fee_amount"`
	SecurityDepositAmount float64 `json:"security_deposit_amount"`
	ServiceFeeAmount      float64 `json:"service_fee_amount"`

	// Written by the room-fee release so a crashed sweep can be audited.
	HostPayoutAmount float64 `json:"host_payout_amount"`
	CommissionAmount float64 `json:"commission_amount"`
	RefundAmount     float64 `json:"refund_amount"`

	Status      PaymentStatus `json:"status" gorm:"type:varchar(32);index"`
	Method      string        `json:"method,omitempty"`
	ProviderRef string        `json:"provider_ref,omitempty" gorm:"column:provider_ref"`

	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
