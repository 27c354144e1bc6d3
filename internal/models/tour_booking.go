package models

import (
	"database/sql/driver"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// TourPaymentMethod is how a tour booking is settled
type TourPaymentMethod string

const (
	TourPaymentFull        TourPaymentMethod = "full_payment"
	TourPaymentInstallment TourPaymentMethod = "installment"
)

// TourPaymentStatus tracks how much of the final price has been paid
type TourPaymentStatus string

const (
	TourPaymentPending TourPaymentStatus = "pending"
	TourPaymentPartial TourPaymentStatus = "partial"
	TourPaymentPaid    TourPaymentStatus = "paid"
)

// ParseTourPaymentMethod converts a raw payment method, rejecting unknown values
func ParseTourPaymentMethod(s string) (TourPaymentMethod, error) {
	switch m := TourPaymentMethod(s); m {
	case TourPaymentFull, TourPaymentInstallment:
		return m, nil
	}
	return "", ValidationFailed("payment_method", fmt.Sprintf("unsupported payment method %q", s))
}

// TourPackage is a sellable multi-day tour
type TourPackage struct {
	ID             string      `json:"id" db:"id"`
	Name           string      `json:"name" db:"name"`
	Destination    string      `json:"destination" db:"destination"`
	TourDays       int         `json:"tour_days" db:"tour_days"`
	PricePerPerson float64     `json:"price_per_person" db:"price_per_person"`
	MaxPassengers  int         `json:"max_passengers" db:"max_passengers"`
	Inclusions     StringArray `json:"inclusions" db:"inclusions"`
	IsActive       bool        `json:"is_active" db:"is_active"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// TourPackageRequest creates or replaces a tour package
type TourPackageRequest struct {
	Name           string   `json:"name" binding:"required"`
	Destination    string   `json:"destination" binding:"required"`
	TourDays       int      `json:"tour_days" binding:"required"`
	PricePerPerson float64  `json:"price_per_person" binding:"required"`
	MaxPassengers  int      `json:"max_passengers"`
	Inclusions     []string `json:"inclusions"`
	IsActive       *bool    `json:"is_active,omitempty"`
}

// Validate validates the tour package request
func (r *TourPackageRequest) Validate() error {
	if r.TourDays < 1 {
		return ValidationFailed("tour_days", "must be at least 1")
	}
	if r.PricePerPerson <= 0 {
		return ValidationFailed("price_per_person", "must be greater than 0")
	}
	if r.MaxPassengers < 0 {
		return ValidationFailed("max_passengers", "must not be negative")
	}
	return nil
}

// TourPassenger is one entry of a tour booking's passenger roster
type TourPassenger struct {
	Name     string  `json:"name"`
	Age      *int    `json:"age,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	IDNumber *string `json:"id_number,omitempty"`
}

// PassengerRoster is stored as JSONB
type PassengerRoster []TourPassenger

func (r PassengerRoster) Value() (driver.Value, error) {
	if r == nil {
		return jsonbValue([]TourPassenger{})
	}
	return jsonbValue([]TourPassenger(r))
}

func (r *PassengerRoster) Scan(value interface{}) error {
	return jsonbScan(value, r, "PassengerRoster")
}

// TourPricing carries the tour price through the confirmation protocol.
// The estimate is the base price.
type TourPricing struct {
	PricingConfirmation
	BasePrice       float64 `json:"base_price"`
	TotalPrice      float64 `json:"total_price"`
	DiscountApplied float64 `json:"discount_applied"`
	FinalPrice      float64 `json:"final_price"`
}

// NewTourPricing prices a booking from its package
func NewTourPricing(passengers int, pricePerPerson float64, tourDays int) TourPricing {
	base := decimal.NewFromFloat(pricePerPerson).
		Mul(decimal.NewFromInt(int64(passengers))).
		Mul(decimal.NewFromInt(int64(tourDays))).
		InexactFloat64()
	p := TourPricing{
		PricingConfirmation: NewPricing(base),
		BasePrice:           base,
		TotalPrice:          base,
	}
	p.sync()
	return p
}

// ConfirmFinalPrice writes an admin final price and locks it
func (p *TourPricing) ConfirmFinalPrice(final float64, at time.Time) error {
	if err := p.Override(final); err != nil {
		return err
	}
	p.Confirm(at)
	p.sync()
	return nil
}

func (p *TourPricing) sync() {
	p.FinalPrice = p.Authoritative()
	p.DiscountApplied = math.Max(0, p.TotalPrice-p.FinalPrice)
}

func (p TourPricing) Value() (driver.Value, error) {
	return jsonbValue(p)
}

func (p *TourPricing) Scan(value interface{}) error {
	return jsonbScan(value, p, "TourPricing")
}

// TourPayment is the payment plan of a tour booking
type TourPayment struct {
	Method          TourPaymentMethod `json:"method"`
	Status          TourPaymentStatus `json:"status"`
	AmountPaid      float64           `json:"amount_paid"`
	RemainingAmount float64           `json:"remaining_amount"`
	LastPaymentAt   *time.Time        `json:"last_payment_at,omitempty"`
}

// Recompute refreshes the remaining amount and status against the final price
func (p *TourPayment) Recompute(finalPrice float64) {
	if p.Method == TourPaymentInstallment {
		p.RemainingAmount = decimal.NewFromFloat(finalPrice).Sub(decimal.NewFromFloat(p.AmountPaid)).InexactFloat64()
	} else {
		p.RemainingAmount = 0
	}
	switch {
	case p.AmountPaid <= 0:
		p.Status = TourPaymentPending
	case p.AmountPaid >= finalPrice:
		p.Status = TourPaymentPaid
	default:
		p.Status = TourPaymentPartial
	}
}

func (p TourPayment) Value() (driver.Value, error) {
	return jsonbValue(p)
}

func (p *TourPayment) Scan(value interface{}) error {
	return jsonbScan(value, p, "TourPayment")
}

// TourBooking represents a multi-passenger tour package booking
type TourBooking struct {
	ID                 string            `json:"id" db:"id"`
	CustomerID         string            `json:"customer_id" db:"customer_id"`
	PackageID          string            `json:"package_id" db:"package_id"`
	BookingDate        time.Time         `json:"booking_date" db:"booking_date"`
	NumberOfPassengers int               `json:"number_of_passengers" db:"number_of_passengers"`
	Passengers         PassengerRoster   `json:"passengers" db:"passengers"`
	Pricing            TourPricing       `json:"pricing" db:"pricing"`
	Payment            TourPayment       `json:"payment" db:"payment"`
	Status             TourBookingStatus `json:"status" db:"status"`
	AdminNotes         *string           `json:"admin_notes,omitempty" db:"admin_notes"`
	AdminActions       AdminActionLog    `json:"admin_actions" db:"admin_actions"`
	CreatedAt          time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at" db:"updated_at"`
}

// ConfirmFinalPrice locks the final price and refreshes the payment plan
func (b *TourBooking) ConfirmFinalPrice(final float64, at time.Time) error {
	if err := b.Pricing.ConfirmFinalPrice(final, at); err != nil {
		return err
	}
	b.Payment.Recompute(b.Pricing.FinalPrice)
	return nil
}

// RecordPayment adds a payment towards the final price
func (b *TourBooking) RecordPayment(amount float64, at time.Time) error {
	if amount <= 0 {
		return ValidationFailed("amount", "must be greater than 0")
	}
	paid := decimal.NewFromFloat(b.Payment.AmountPaid).Add(decimal.NewFromFloat(amount))
	if paid.GreaterThan(decimal.NewFromFloat(b.Pricing.FinalPrice)) {
		return ValidationFailed("amount", "payment exceeds the final price")
	}
	b.Payment.AmountPaid = paid.InexactFloat64()
	b.Payment.LastPaymentAt = &at
	b.Payment.Recompute(b.Pricing.FinalPrice)
	return nil
}

// TourActionFor derives the admin action tag from a status change
func TourActionFor(status TourBookingStatus) string {
	switch status {
	case TourStatusConfirmed:
		return "confirmed"
	case TourStatusRejected:
		return "rejected"
	default:
		return "status_updated"
	}
}

// CreateTourBookingRequest represents the request to book a tour package
type CreateTourBookingRequest struct {
	PackageID          string          `json:"package_id" binding:"required"`
	BookingDate        time.Time       `json:"booking_date" binding:"required"`
	NumberOfPassengers PassengerCount  `json:"number_of_passengers"`
	Passengers         []TourPassenger `json:"passengers"`
	PaymentMethod      string          `json:"payment_method" binding:"required"`
}

// Validate validates the create tour booking request
func (r *CreateTourBookingRequest) Validate() error {
	if err := ValidatePassengers("number_of_passengers", int(r.NumberOfPassengers)); err != nil {
		return err
	}
	if _, err := ParseTourPaymentMethod(r.PaymentMethod); err != nil {
		return err
	}
	for i, p := range r.Passengers {
		if p.Name == "" {
			return ValidationFailed(fmt.Sprintf("passengers[%d].name", i), "is required")
		}
	}
	return nil
}

// Roster returns the passenger list truncated to the booked passenger count
func (r *CreateTourBookingRequest) Roster() PassengerRoster {
	n := int(r.NumberOfPassengers)
	if len(r.Passengers) > n {
		return PassengerRoster(r.Passengers[:n])
	}
	return PassengerRoster(r.Passengers)
}

// TourStatusRequest is the admin status change payload
type TourStatusRequest struct {
	Status     string   `json:"status" binding:"required"`
	AdminNotes *string  `json:"admin_notes,omitempty"`
	FinalPrice *float64 `json:"final_price,omitempty"`
}

// RecordPaymentRequest records an amount paid
type RecordPaymentRequest struct {
	Amount float64 `json:"amount" binding:"required"`
	Notes  *string `json:"notes,omitempty"`
}
