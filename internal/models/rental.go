package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RentalType is the billing basis of a rental
type RentalType string

const (
	RentalTypeDaily   RentalType = "daily"
	RentalTypeMonthly RentalType = "monthly"
)

// Rental represents a vehicle rental over a date range
type Rental struct {
	ID            string       `json:"id" db:"id"`
	CustomerID    string       `json:"customer_id" db:"customer_id"`
	VehicleID     string       `json:"vehicle_id" db:"vehicle_id"`
	RentalType    RentalType   `json:"rental_type" db:"rental_type"`
	StartDate     time.Time    `json:"start_date" db:"start_date"`
	EndDate       time.Time    `json:"end_date" db:"end_date"`
	Duration      int          `json:"duration" db:"duration"`
	DailyRate     float64      `json:"daily_rate" db:"daily_rate"`
	MonthlyRate   float64      `json:"monthly_rate" db:"monthly_rate"`
	Purpose       *string      `json:"purpose,omitempty" db:"purpose"`
	Status        RentalStatus `json:"status" db:"status"`
	ContractID    *string      `json:"contract_id,omitempty" db:"contract_id"`
	ContractTerms *string      `json:"contract_terms,omitempty" db:"contract_terms"`
	AdminNotes    *string      `json:"admin_notes,omitempty" db:"admin_notes"`
	ApprovedAt    *time.Time   `json:"approved_at,omitempty" db:"approved_at"`

	PricingConfirmation
	TotalAmount float64 `json:"total_amount" db:"total_amount"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Window returns the rental's date range
func (r *Rental) Window() Window {
	return Window{Start: r.StartDate, End: r.EndDate}
}

// Reprice recomputes duration and estimate from the dates and rates
func (r *Rental) Reprice() {
	r.Duration = RentalDuration(r.StartDate, r.EndDate)
	r.SetEstimate(RentalTotal(r.RentalType, r.DailyRate, r.MonthlyRate, r.Duration))
	r.TotalAmount = r.Authoritative()
}

// AssignContractID mints the contract identifier on first approval.
// An existing identifier is never replaced.
func (r *Rental) AssignContractID(now time.Time) bool {
	if r.ContractID != nil {
		return false
	}
	id := GenerateContractID(now)
	r.ContractID = &id
	r.ApprovedAt = &now
	return true
}

// RentalDuration returns the number of started days between start and end
func RentalDuration(start, end time.Time) int {
	days := end.Sub(start).Hours() / 24
	return int(math.Ceil(days))
}

// RentalTotal prices a rental of the given duration in days
func RentalTotal(rentalType RentalType, dailyRate, monthlyRate float64, duration int) float64 {
	if rentalType == RentalTypeMonthly {
		months := int64(math.Ceil(float64(duration) / 30))
		return decimal.NewFromFloat(monthlyRate).Mul(decimal.NewFromInt(months)).InexactFloat64()
	}
	return decimal.NewFromFloat(dailyRate).Mul(decimal.NewFromInt(int64(duration))).InexactFloat64()
}

// GenerateContractID generates a unique rental contract identifier
// Format: CTR-<unix millis>-XXXXXX
func GenerateContractID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("CTR-%d-%s", now.UnixMilli(), suffix)
}

// CreateRentalRequest represents the request to rent a vehicle
type CreateRentalRequest struct {
	VehicleID  string    `json:"vehicle_id" binding:"required"`
	RentalType string    `json:"rental_type" binding:"required"`
	StartDate  time.Time `json:"start_date" binding:"required"`
	EndDate    time.Time `json:"end_date" binding:"required"`
	Purpose    *string   `json:"purpose,omitempty"`
}

// Validate validates the create rental request
func (r *CreateRentalRequest) Validate() error {
	if _, err := ParseRentalType(r.RentalType); err != nil {
		return err
	}
	if !r.StartDate.Before(r.EndDate) {
		return ValidationFailed("end_date", "must be after start_date")
	}
	return nil
}

// ParseRentalType converts a raw rental type, rejecting unknown values
func ParseRentalType(s string) (RentalType, error) {
	switch rt := RentalType(s); rt {
	case RentalTypeDaily, RentalTypeMonthly:
		return rt, nil
	}
	return "", ValidationFailed("rental_type", fmt.Sprintf("unsupported rental type %q", s))
}

// RentalStatusRequest is the admin status change payload. Fees replaces the
// rental's total amount; it is not added on top.
type RentalStatusRequest struct {
	Status string   `json:"status" binding:"required"`
	Fees   *float64 `json:"fees,omitempty"`
	Notes  *string  `json:"notes,omitempty"`
}

// RentalAdminUpdate names the rental fields an admin may change
type RentalAdminUpdate struct {
	VehicleID     *string    `json:"vehicle_id,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	DailyRate     *float64   `json:"daily_rate,omitempty"`
	MonthlyRate   *float64   `json:"monthly_rate,omitempty"`
	Purpose       *string    `json:"purpose,omitempty"`
	ContractTerms *string    `json:"contract_terms,omitempty"`
	AdminNotes    *string    `json:"admin_notes,omitempty"`
}

// ChangesOccupancy reports whether the update touches the vehicle or the window
func (u *RentalAdminUpdate) ChangesOccupancy(r *Rental) bool {
	if u.VehicleID != nil && *u.VehicleID != r.VehicleID {
		return true
	}
	if u.StartDate != nil && !u.StartDate.Equal(r.StartDate) {
		return true
	}
	return u.EndDate != nil && !u.EndDate.Equal(r.EndDate)
}

// Validate validates the update against the rental it will be applied to
func (u *RentalAdminUpdate) Validate(r *Rental) error {
	start, end := r.StartDate, r.EndDate
	if u.StartDate != nil {
		start = *u.StartDate
	}
	if u.EndDate != nil {
		end = *u.EndDate
	}
	if !start.Before(end) {
		return ValidationFailed("end_date", "must be after start_date")
	}
	if u.DailyRate != nil && *u.DailyRate < 0 {
		return ValidationFailed("daily_rate", "must not be negative")
	}
	if u.MonthlyRate != nil && *u.MonthlyRate < 0 {
		return ValidationFailed("monthly_rate", "must not be negative")
	}
	return nil
}

// ApplyTo copies the set fields onto the rental and reprices it
func (u *RentalAdminUpdate) ApplyTo(r *Rental) {
	if u.VehicleID != nil {
		r.VehicleID = *u.VehicleID
	}
	if u.StartDate != nil {
		r.StartDate = *u.StartDate
	}
	if u.EndDate != nil {
		r.EndDate = *u.EndDate
	}
	if u.DailyRate != nil {
		r.DailyRate = *u.DailyRate
	}
	if u.MonthlyRate != nil {
		r.MonthlyRate = *u.MonthlyRate
	}
	if u.Purpose != nil {
		r.Purpose = u.Purpose
	}
	if u.ContractTerms != nil {
		r.ContractTerms = u.ContractTerms
	}
	if u.AdminNotes != nil {
		r.AdminNotes = u.AdminNotes
	}
	r.Reprice()
}
