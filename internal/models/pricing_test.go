package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricingConfirmation(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Estimate Only", func(t *testing.T) {
		p := NewPricing(1200)
		assert.Equal(t, PricingEstimated, p.State())
		assert.Equal(t, 1200.0, p.Authoritative())
	})

	t.Run("Override Wins Over Estimate", func(t *testing.T) {
		p := NewPricing(1200)
		require.NoError(t, p.Override(1000))
		assert.Equal(t, PricingAdminReviewed, p.State())
		assert.Equal(t, 1000.0, p.Authoritative())

		assert.True(t, p.SetEstimate(1500))
		assert.Equal(t, 1000.0, p.Authoritative())
	})

	t.Run("Confirmation Freezes Price", func(t *testing.T) {
		p := NewPricing(1200)
		require.NoError(t, p.Apply(nil, true, at))
		assert.Equal(t, PricingConfirmed, p.State())
		assert.Equal(t, 1200.0, p.Authoritative())
		assert.Equal(t, at, *p.ConfirmedAt)

		assert.False(t, p.SetEstimate(9000))
		assert.Equal(t, 1200.0, p.Authoritative())

		p.Confirm(at.Add(time.Hour))
		assert.Equal(t, at, *p.ConfirmedAt)

		assert.NoError(t, p.Override(1200))
		assert.True(t, IsKind(p.Override(1300), KindInvalidTransition))
	})

	t.Run("Zero Override Ignored", func(t *testing.T) {
		p := NewPricing(800)
		zero := 0.0
		require.NoError(t, p.Apply(&zero, false, at))
		assert.Nil(t, p.AdminSetPrice)
		assert.Equal(t, 800.0, p.Authoritative())
	})

	t.Run("Negative Override", func(t *testing.T) {
		p := NewPricing(800)
		assert.True(t, IsKind(p.Override(-5), KindValidationFailed))
	})
}

func TestPassengerCount(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    PassengerCount
		wantErr bool
	}{
		{"number", `{"passengers": 4}`, 4, false},
		{"numeric string", `{"passengers": "2"}`, 2, false},
		{"padded string", `{"passengers": " 3 "}`, 3, false},
		{"word", `{"passengers": "four"}`, 0, true},
		{"fraction", `{"passengers": 1.5}`, 0, true},
		{"boolean", `{"passengers": true}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req CreateBookingRequest
			err := json.Unmarshal([]byte(tt.payload), &req)
			if tt.wantErr {
				assert.True(t, IsKind(err, KindValidationFailed), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Passengers)
		})
	}

	assert.True(t, IsKind(ValidatePassengers("passengers", 0), KindValidationFailed))
	assert.NoError(t, ValidatePassengers("passengers", 1))
}

func TestBookingReprice(t *testing.T) {
	b := &Booking{EstimatedDistance: 12.5, PricePerUnit: 80}
	b.Reprice()
	assert.Equal(t, 1000.0, b.TotalPrice)

	require.NoError(t, b.Apply(nil, true, time.Now()))
	b.EstimatedDistance = 50
	b.Reprice()
	assert.Equal(t, 1000.0, b.TotalPrice)
}

func TestBookingSchedule(t *testing.T) {
	b := &Booking{PickupDate: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, "2025-08-01", b.Schedule())
	b.PickupTime = "06:15"
	assert.Equal(t, "2025-08-01 06:15", b.Schedule())
}
