package models

import "time"

// PricingState is the phase of the estimate → override → confirmed protocol
type PricingState string

const (
	PricingEstimated     PricingState = "estimated"
	PricingAdminReviewed PricingState = "admin_reviewed"
	PricingConfirmed     PricingState = "confirmed"
)

// PricingConfirmation carries the price of a booking, rental or tour booking.
// Once confirmed the locked price is what every consumer reads.
type PricingConfirmation struct {
	Estimate         float64    `json:"estimate" db:"price_estimate"`
	AdminSetPrice    *float64   `json:"admin_set_price,omitempty" db:"admin_set_price"`
	IsPriceConfirmed bool       `json:"is_price_confirmed" db:"is_price_confirmed"`
	ConfirmedPrice   *float64   `json:"confirmed_price,omitempty" db:"confirmed_price"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty" db:"price_confirmed_at"`
}

// NewPricing starts the protocol from a computed estimate
func NewPricing(estimate float64) PricingConfirmation {
	return PricingConfirmation{Estimate: estimate}
}

// State reports the current protocol phase
func (p PricingConfirmation) State() PricingState {
	switch {
	case p.IsPriceConfirmed:
		return PricingConfirmed
	case p.AdminSetPrice != nil:
		return PricingAdminReviewed
	default:
		return PricingEstimated
	}
}

// Authoritative returns the confirmed price, else the admin override, else the estimate
func (p PricingConfirmation) Authoritative() float64 {
	if p.IsPriceConfirmed && p.ConfirmedPrice != nil {
		return *p.ConfirmedPrice
	}
	if p.AdminSetPrice != nil {
		return *p.AdminSetPrice
	}
	return p.Estimate
}

// SetEstimate records a recomputed estimate. The estimate is frozen once the
// price is confirmed, in which case SetEstimate reports false.
func (p *PricingConfirmation) SetEstimate(estimate float64) bool {
	if p.IsPriceConfirmed {
		return false
	}
	p.Estimate = estimate
	return true
}

// Override writes an admin price. It does not confirm the price.
func (p *PricingConfirmation) Override(price float64) error {
	if price < 0 {
		return ValidationFailed("price", "price must not be negative")
	}
	if p.IsPriceConfirmed {
		if p.ConfirmedPrice != nil && *p.ConfirmedPrice == price {
			return nil
		}
		return InvalidTransition("price", "price already confirmed")
	}
	p.AdminSetPrice = &price
	return nil
}

// Confirm locks the current authoritative price. Confirming twice is a no-op.
func (p *PricingConfirmation) Confirm(at time.Time) {
	if p.IsPriceConfirmed {
		return
	}
	price := p.Authoritative()
	p.ConfirmedPrice = &price
	p.IsPriceConfirmed = true
	p.ConfirmedAt = &at
}

// Apply runs an override followed by an optional confirmation
func (p *PricingConfirmation) Apply(override *float64, confirm bool, at time.Time) error {
	if override != nil && *override > 0 {
		if err := p.Override(*override); err != nil {
			return err
		}
	}
	if confirm {
		p.Confirm(at)
	}
	return nil
}
