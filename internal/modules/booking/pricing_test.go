package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stayhub/internal/domain"
)

func TestComputeQuote_ReferenceScenario(t *testing.T) {
	p := &domain.Property{PricePerNight: 100}

	q := ComputeQuote(p, 3, 0.10, 0.05)

	assert.Equal(t, 300.0, q.RoomFee)
	assert.Equal(t, 30.0, q.Commission)
	assert.Equal(t, 15.0, q.ServiceFee)
	assert.Equal(t, 315.0, q.Total)
	assert.Equal(t, 270.0, q.RealtorPayout)
}

func TestComputeQuote_WithCleaningFeeAndDeposit(t *testing.T) {
	p := &domain.Property{
		PricePerNight:   80,
		CleaningFee:     25,
		SecurityDeposit: 100,
	}

	q := ComputeQuote(p, 2, 0.10, 0.05)

	assert.Equal(t, 160.0, q.RoomFee)
	assert.Equal(t, 16.0, q.Commission)
	assert.Equal(t, 8.0, q.ServiceFee)
	assert.Equal(t, 293.0, q.Total)
	assert.Equal(t, 144.0, q.RealtorPayout)
}

func TestComputeQuote_RoundsToCents(t *testing.T) {
	p := &domain.Property{PricePerNight: 99.99}

	q := ComputeQuote(p, 3, 0.10, 0.05)

	assert.Equal(t, 299.97, q.RoomFee)
	assert.Equal(t, 30.0, q.Commission)
	assert.Equal(t, 15.0, q.ServiceFee)
	assert.Equal(t, 269.97, q.RealtorPayout)
}
