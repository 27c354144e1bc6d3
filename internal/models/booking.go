package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ServiceType is the kind of ride a booking is for
type ServiceType string

const (
	ServiceTypeWedding ServiceType = "wedding"
	ServiceTypeAirport ServiceType = "airport"
	ServiceTypeCargo   ServiceType = "cargo"
	ServiceTypeDaily   ServiceType = "daily"
)

// ParseServiceType converts a raw service type, rejecting unknown values
func ParseServiceType(s string) (ServiceType, error) {
	switch st := ServiceType(s); st {
	case ServiceTypeWedding, ServiceTypeAirport, ServiceTypeCargo, ServiceTypeDaily:
		return st, nil
	}
	return "", ValidationFailed("service_type", fmt.Sprintf("unsupported service type %q", s))
}

// PaymentMethod is the customer's payment selection
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodOnline PaymentMethod = "online"
)

// ParsePaymentMethod converts a raw payment method, rejecting unknown values
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch pm := PaymentMethod(s); pm {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodOnline:
		return pm, nil
	}
	return "", ValidationFailed("payment_method", fmt.Sprintf("unsupported payment method %q", s))
}

// PassengerCount accepts a JSON number or numeric string and rejects anything else
type PassengerCount int

// UnmarshalJSON implements json.Unmarshaler
func (p *PassengerCount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(bytes.Trim(data, `"`)))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return ValidationFailed("passengers", "passengers must be a whole number")
	}
	*p = PassengerCount(n)
	return nil
}

// MarshalJSON implements json.Marshaler
func (p PassengerCount) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(p))
}

// ValidatePassengers enforces the minimum passenger count
func ValidatePassengers(field string, n int) error {
	if n < 1 {
		return ValidationFailed(field, "must be at least 1")
	}
	return nil
}

// Booking represents a single-trip service request
type Booking struct {
	ID              string        `json:"id" db:"id"`
	CustomerID      string        `json:"customer_id" db:"customer_id"`
	VehicleID       *string       `json:"vehicle_id,omitempty" db:"vehicle_id"`
	ServiceType     ServiceType   `json:"service_type" db:"service_type"`
	PickupLocation  string        `json:"pickup_location" db:"pickup_location"`
	DropoffLocation string        `json:"dropoff_location" db:"dropoff_location"`
	PickupDate      time.Time     `json:"pickup_date" db:"pickup_date"`
	PickupTime      string        `json:"pickup_time" db:"pickup_time"`
	ReturnDate      *time.Time    `json:"return_date,omitempty" db:"return_date"`
	Passengers      int           `json:"passengers" db:"passengers"`
	Notes           *string       `json:"notes,omitempty" db:"notes"`
	PaymentMethod   PaymentMethod `json:"payment_method" db:"payment_method"`
	Status          BookingStatus `json:"status" db:"status"`
	StatusReason    *string       `json:"status_reason,omitempty" db:"status_reason"`
	PaymentStatus   PaymentStatus `json:"payment_status" db:"payment_status"`

	// Pricing
	EstimatedDistance float64 `json:"estimated_distance" db:"estimated_distance"`
	PricePerUnit      float64 `json:"price_per_unit" db:"price_per_unit"`
	PricingConfirmation
	TotalPrice float64 `json:"total_price" db:"total_price"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Reprice recomputes the estimate from distance and rate and refreshes the total
func (b *Booking) Reprice() {
	b.SetEstimate(b.EstimatedDistance * b.PricePerUnit)
	b.TotalPrice = b.Authoritative()
}

// Schedule renders the pickup date and time for notifications
func (b *Booking) Schedule() string {
	schedule := b.PickupDate.Format("2006-01-02")
	if b.PickupTime != "" {
		schedule += " " + b.PickupTime
	}
	return schedule
}

// CreateBookingRequest represents the request to create a ride booking
type CreateBookingRequest struct {
	ServiceType       string         `json:"service_type" binding:"required"`
	VehicleID         *string        `json:"vehicle_id,omitempty"`
	PickupLocation    string         `json:"pickup_location" binding:"required"`
	DropoffLocation   string         `json:"dropoff_location" binding:"required"`
	PickupDate        time.Time      `json:"pickup_date" binding:"required"`
	PickupTime        string         `json:"pickup_time"`
	ReturnDate        *time.Time     `json:"return_date,omitempty"`
	Passengers        PassengerCount `json:"passengers"`
	EstimatedDistance float64        `json:"estimated_distance"`
	Notes             *string        `json:"notes,omitempty"`
	PaymentMethod     string         `json:"payment_method" binding:"required"`
}

// Validate validates the create booking request
func (r *CreateBookingRequest) Validate() error {
	if _, err := ParseServiceType(r.ServiceType); err != nil {
		return err
	}
	if _, err := ParsePaymentMethod(r.PaymentMethod); err != nil {
		return err
	}
	if err := ValidatePassengers("passengers", int(r.Passengers)); err != nil {
		return err
	}
	if r.EstimatedDistance < 0 {
		return ValidationFailed("estimated_distance", "must not be negative")
	}
	if r.ReturnDate != nil && r.ReturnDate.Before(r.PickupDate) {
		return ValidationFailed("return_date", "must not be before pickup_date")
	}
	return nil
}

// BookingCustomerUpdate names the fields a customer may change on a pending booking
type BookingCustomerUpdate struct {
	PickupLocation    *string         `json:"pickup_location,omitempty"`
	DropoffLocation   *string         `json:"dropoff_location,omitempty"`
	EstimatedDistance *float64        `json:"estimated_distance,omitempty"`
	PickupDate        *time.Time      `json:"pickup_date,omitempty"`
	PickupTime        *string         `json:"pickup_time,omitempty"`
	ReturnDate        *time.Time      `json:"return_date,omitempty"`
	Passengers        *PassengerCount `json:"passengers,omitempty"`
	Notes             *string         `json:"notes,omitempty"`
	PaymentMethod     *string         `json:"payment_method,omitempty"`
}

// Validate validates the customer update
func (u *BookingCustomerUpdate) Validate() error {
	if u.Passengers != nil {
		if err := ValidatePassengers("passengers", int(*u.Passengers)); err != nil {
			return err
		}
	}
	if u.PaymentMethod != nil {
		if _, err := ParsePaymentMethod(*u.PaymentMethod); err != nil {
			return err
		}
	}
	if u.EstimatedDistance != nil && *u.EstimatedDistance < 0 {
		return ValidationFailed("estimated_distance", "must not be negative")
	}
	return nil
}

// ValidateDates checks the pickup and return dates the update would leave on b
func (u *BookingCustomerUpdate) ValidateDates(b *Booking) error {
	pickup, ret := b.PickupDate, b.ReturnDate
	if u.PickupDate != nil {
		pickup = *u.PickupDate
	}
	if u.ReturnDate != nil {
		ret = u.ReturnDate
	}
	if ret != nil && ret.Before(pickup) {
		return ValidationFailed("return_date", "must not be before pickup_date")
	}
	return nil
}

// ApplyTo copies the set fields onto the booking and refreshes its estimate
func (u *BookingCustomerUpdate) ApplyTo(b *Booking) {
	if u.PickupLocation != nil {
		b.PickupLocation = *u.PickupLocation
	}
	if u.DropoffLocation != nil {
		b.DropoffLocation = *u.DropoffLocation
	}
	if u.EstimatedDistance != nil {
		b.EstimatedDistance = *u.EstimatedDistance
	}
	if u.PickupDate != nil {
		b.PickupDate = *u.PickupDate
	}
	if u.PickupTime != nil {
		b.PickupTime = *u.PickupTime
	}
	if u.ReturnDate != nil {
		b.ReturnDate = u.ReturnDate
	}
	if u.Passengers != nil {
		b.Passengers = int(*u.Passengers)
	}
	if u.Notes != nil {
		b.Notes = u.Notes
	}
	if u.PaymentMethod != nil {
		b.PaymentMethod = PaymentMethod(*u.PaymentMethod)
	}
	b.Reprice()
}

// BookingStatusRequest is the admin status change payload
type BookingStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Reason *string `json:"reason,omitempty"`
}

// BookingPricingRequest is the admin pricing payload
type BookingPricingRequest struct {
	EstimatedDistance *float64 `json:"estimated_distance,omitempty"`
	PricePerKm        *float64 `json:"price_per_km,omitempty"`
	OverridePrice     *float64 `json:"override_price,omitempty"`
	Confirmed         bool     `json:"confirmed"`
}

// Validate validates the pricing request
func (r *BookingPricingRequest) Validate() error {
	if r.EstimatedDistance != nil && *r.EstimatedDistance < 0 {
		return ValidationFailed("estimated_distance", "must not be negative")
	}
	if r.PricePerKm != nil && *r.PricePerKm < 0 {
		return ValidationFailed("price_per_km", "must not be negative")
	}
	if r.OverridePrice != nil && *r.OverridePrice < 0 {
		return ValidationFailed("override_price", "must not be negative")
	}
	return nil
}
