package booking

import (
	"math"

	"stayhub/internal/domain"
)

// Quote is the financial breakdown of one stay. The guest pays Total
// upfront; RealtorPayout and Commission are what the escrow engine
// later splits out of the room fee.
type Quote struct {
	Nights          int
	RoomFee         float64
	Commission      float64
	ServiceFee      float64
	CleaningFee     float64
	SecurityDeposit float64
	Total           float64
	RealtorPayout   float64
}

func ComputeQuote(p *domain.Property, nights int, commissionRate, serviceFeeRate float64) Quote {
	roomFee := round2(p.PricePerNight * float64(nights))
	commission := round2(roomFee * commissionRate)
	serviceFee := round2(roomFee * serviceFeeRate)

	return Quote{
		Nights:          nights,
		RoomFee:         roomFee,
		Commission:      commission,
		ServiceFee:      serviceFee,
		CleaningFee:     round2(p.CleaningFee),
		SecurityDeposit: round2(p.SecurityDeposit),
		Total:           round2(roomFee + serviceFee + p.CleaningFee + p.SecurityDeposit),
		RealtorPayout:   round2(roomFee - commission),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
