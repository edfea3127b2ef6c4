package domain

import "time"

type Property struct {
	ID              int64   `json:"id"`
	RealtorID       int64   `json:"realtor_id" gorm:"index"`
	Title           string  `json:"title"`
	PricePerNight   float64 `json:"price_per_night"`
	CleaningFee     float64 `json:"cleaning_fee"`
	SecurityDeposit float64 `json:"security_deposit"`
	MaxGuests       int     `json:"max_guests"`
	Currency        string  `json:"currency"`
	IsActive        bool    `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
