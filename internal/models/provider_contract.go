package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// PaymentTerms is the fee cadence of a provider contract
type PaymentTerms string

const (
	PaymentTermsMonthly    PaymentTerms = "Monthly"
	PaymentTermsQuarterly  PaymentTerms = "Quarterly"
	PaymentTermsSemiAnnual PaymentTerms = "Semi-Annual"
	PaymentTermsAnnual     PaymentTerms = "Annual"
)

// cadenceMonths maps payment terms to the months between payments
var cadenceMonths = map[PaymentTerms]int{
	PaymentTermsMonthly:    1,
	PaymentTermsQuarterly:  3,
	PaymentTermsSemiAnnual: 6,
	PaymentTermsAnnual:     12,
}

// CadenceMonths returns the number of months between payments
func CadenceMonths(terms PaymentTerms) (int, error) {
	months, ok := cadenceMonths[terms]
	if !ok {
		return 0, ValidationFailed("payment_terms", fmt.Sprintf("unsupported payment terms %q", terms))
	}
	return months, nil
}

// NextPaymentDate returns from advanced by one cadence step
func NextPaymentDate(from time.Time, terms PaymentTerms) (time.Time, error) {
	months, err := CadenceMonths(terms)
	if err != nil {
		return time.Time{}, err
	}
	return from.AddDate(0, months, 0), nil
}

// VehicleSpec describes the vehicle a provider supplies
type VehicleSpec struct {
	Make               string      `json:"make"`
	Model              string      `json:"model"`
	Year               int         `json:"year"`
	Category           string      `json:"category"`
	RegistrationNumber string      `json:"registration_number"`
	Capacity           int         `json:"capacity"`
	Features           StringArray `json:"features,omitempty"`
}

func (s VehicleSpec) Value() (driver.Value, error) {
	return jsonbValue(s)
}

func (s *VehicleSpec) Scan(value interface{}) error {
	return jsonbScan(value, s, "VehicleSpec")
}

// ContractTerms are the commercial terms of a provider contract
type ContractTerms struct {
	StartDate    time.Time    `json:"start_date"`
	EndDate      time.Time    `json:"end_date"`
	MonthlyFee   float64      `json:"monthly_fee"`
	PaymentTerms PaymentTerms `json:"payment_terms"`
}

// Validate checks the terms are internally consistent
func (t ContractTerms) Validate() error {
	if t.StartDate.IsZero() {
		return ValidationFailed("contract_terms.start_date", "is required")
	}
	if !t.StartDate.Before(t.EndDate) {
		return ValidationFailed("contract_terms.end_date", "must be after start_date")
	}
	if t.MonthlyFee < 0 {
		return ValidationFailed("contract_terms.monthly_fee", "must not be negative")
	}
	_, err := CadenceMonths(t.PaymentTerms)
	return err
}

func (t ContractTerms) Value() (driver.Value, error) {
	return jsonbValue(t)
}

func (t *ContractTerms) Scan(value interface{}) error {
	return jsonbScan(value, t, "ContractTerms")
}

// ContractPayment is one entry of a contract's payment history
type ContractPayment struct {
	Amount     float64   `json:"amount"`
	PaidAt     time.Time `json:"paid_at"`
	PeriodDue  time.Time `json:"period_due"`
	RecordedBy string    `json:"recorded_by"`
	Notes      *string   `json:"notes,omitempty"`
}

// PaymentHistory is stored as JSONB
type PaymentHistory []ContractPayment

func (h PaymentHistory) Value() (driver.Value, error) {
	if h == nil {
		return jsonbValue([]ContractPayment{})
	}
	return jsonbValue([]ContractPayment(h))
}

func (h *PaymentHistory) Scan(value interface{}) error {
	return jsonbScan(value, h, "PaymentHistory")
}

// VehicleProviderContract is a supply agreement with a third-party vehicle owner
type VehicleProviderContract struct {
	ID              string         `json:"id" db:"id"`
	ProviderID      string         `json:"provider_id" db:"provider_id"`
	Status          ContractStatus `json:"status" db:"status"`
	VehicleSpec     VehicleSpec    `json:"vehicle_spec" db:"vehicle_spec"`
	ContractTerms   ContractTerms  `json:"contract_terms" db:"contract_terms"`
	Conditions      StringArray    `json:"conditions" db:"conditions"`
	PaymentHistory  PaymentHistory `json:"payment_history" db:"payment_history"`
	NextPaymentDate *time.Time     `json:"next_payment_date,omitempty" db:"next_payment_date"`
	AdminNotes      *string        `json:"admin_notes,omitempty" db:"admin_notes"`
	AdminActions    AdminActionLog `json:"admin_actions" db:"admin_actions"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// ScheduleFromStart recomputes the next payment date from the contract start
func (c *VehicleProviderContract) ScheduleFromStart() error {
	next, err := NextPaymentDate(c.ContractTerms.StartDate, c.ContractTerms.PaymentTerms)
	if err != nil {
		return err
	}
	c.NextPaymentDate = &next
	return nil
}

// RecordPayment appends to the payment history and advances the schedule by one step
func (c *VehicleProviderContract) RecordPayment(amount float64, recordedBy string, notes *string, at time.Time) error {
	if amount <= 0 {
		return ValidationFailed("amount", "must be greater than 0")
	}
	due := c.ContractTerms.StartDate
	if c.NextPaymentDate != nil {
		due = *c.NextPaymentDate
	}
	next, err := NextPaymentDate(due, c.ContractTerms.PaymentTerms)
	if err != nil {
		return err
	}
	c.PaymentHistory = append(c.PaymentHistory, ContractPayment{
		Amount:     amount,
		PaidAt:     at,
		PeriodDue:  due,
		RecordedBy: recordedBy,
		Notes:      notes,
	})
	c.NextPaymentDate = &next
	return nil
}

// Editable reports whether the contract may still be modified by its provider
func (c *VehicleProviderContract) Editable() bool {
	return c.Status == ContractStatusPending || c.Status == ContractStatusUnderReview
}

// CreateProviderContractRequest represents a provider's contract request
type CreateProviderContractRequest struct {
	VehicleSpec   *VehicleSpec   `json:"vehicle_spec"`
	ContractTerms *ContractTerms `json:"contract_terms"`
	Conditions    []string       `json:"conditions"`
}

// Validate validates the create contract request
func (r *CreateProviderContractRequest) Validate() error {
	if r.VehicleSpec == nil {
		return ValidationFailed("vehicle_spec", "is required")
	}
	if r.VehicleSpec.Make == "" || r.VehicleSpec.Model == "" {
		return ValidationFailed("vehicle_spec", "make and model are required")
	}
	if r.ContractTerms == nil {
		return ValidationFailed("contract_terms", "is required")
	}
	return r.ContractTerms.Validate()
}

// VehicleSpecPatch names the vehicle spec fields an update may change
type VehicleSpecPatch struct {
	Make               *string  `json:"make,omitempty"`
	Model              *string  `json:"model,omitempty"`
	Year               *int     `json:"year,omitempty"`
	Category           *string  `json:"category,omitempty"`
	RegistrationNumber *string  `json:"registration_number,omitempty"`
	Capacity           *int     `json:"capacity,omitempty"`
	Features           []string `json:"features,omitempty"`
}

// ContractTermsPatch names the contract terms fields an update may change
type ContractTermsPatch struct {
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	MonthlyFee   *float64   `json:"monthly_fee,omitempty"`
	PaymentTerms *string    `json:"payment_terms,omitempty"`
}

// ProviderContractUpdate merges nested fields onto a contract
type ProviderContractUpdate struct {
	VehicleSpec   *VehicleSpecPatch   `json:"vehicle_spec,omitempty"`
	ContractTerms *ContractTermsPatch `json:"contract_terms,omitempty"`
	Conditions    []string            `json:"conditions,omitempty"`
	Notes         *string             `json:"notes,omitempty"`
}

// ApplyTo merges the patch field by field. It reports whether the payment
// schedule inputs changed.
func (u *ProviderContractUpdate) ApplyTo(c *VehicleProviderContract) bool {
	if s := u.VehicleSpec; s != nil {
		if s.Make != nil {
			c.VehicleSpec.Make = *s.Make
		}
		if s.Model != nil {
			c.VehicleSpec.Model = *s.Model
		}
		if s.Year != nil {
			c.VehicleSpec.Year = *s.Year
		}
		if s.Category != nil {
			c.VehicleSpec.Category = *s.Category
		}
		if s.RegistrationNumber != nil {
			c.VehicleSpec.RegistrationNumber = *s.RegistrationNumber
		}
		if s.Capacity != nil {
			c.VehicleSpec.Capacity = *s.Capacity
		}
		if s.Features != nil {
			c.VehicleSpec.Features = s.Features
		}
	}

	rescheduled := false
	if t := u.ContractTerms; t != nil {
		if t.StartDate != nil && !t.StartDate.Equal(c.ContractTerms.StartDate) {
			c.ContractTerms.StartDate = *t.StartDate
			rescheduled = true
		}
		if t.EndDate != nil {
			c.ContractTerms.EndDate = *t.EndDate
		}
		if t.MonthlyFee != nil {
			c.ContractTerms.MonthlyFee = *t.MonthlyFee
		}
		if t.PaymentTerms != nil && PaymentTerms(*t.PaymentTerms) != c.ContractTerms.PaymentTerms {
			c.ContractTerms.PaymentTerms = PaymentTerms(*t.PaymentTerms)
			rescheduled = true
		}
	}
	if u.Conditions != nil {
		c.Conditions = u.Conditions
	}
	return rescheduled
}

// ContractStatusRequest is the admin status change payload
type ContractStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes,omitempty"`
}
