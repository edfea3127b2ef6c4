package domain

import "time"

type LedgerEntryType string

const (
	LedgerHostPayout    LedgerEntryType = "HOST_PAYOUT"
	LedgerPlatformFee   LedgerEntryType = "PLATFORM_FEE"
	LedgerDepositReturn LedgerEntryType = "DEPOSIT_RETURN"
	LedgerGuestRefund   LedgerEntryType = "GUEST_REFUND"
)

// LedgerEntry records one credit produced by an escrow release. The
// ledger is append-only; payout execution against it happens outside
// this core.
type LedgerEntry struct {
	ID        int64           `json:"id"`
	BookingID int64           `json:"booking_id" gorm:"index"`
	PaymentID int64           `json:"payment_id" gorm:"index"`
	UserID    int64           `json:"user_id" gorm:"index"`
	Amount    float64         `json:"amount"`
	Currency  string          `json:"currency"`
	Type      LedgerEntryType `json:"type" gorm:"type:varchar(32);index"`
	CreatedAt time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }
