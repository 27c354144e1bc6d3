package models

import (
	"fmt"
	"time"
)

// EntryType distinguishes ledger income from expenses
type EntryType string

const (
	EntryTypeIncome  EntryType = "income"
	EntryTypeExpense EntryType = "expense"
)

// FinancialEntry is a manually entered ledger row
type FinancialEntry struct {
	ID          string    `json:"id" db:"id"`
	Type        EntryType `json:"type" db:"type"`
	Category    string    `json:"category" db:"category"`
	Amount      float64   `json:"amount" db:"amount"`
	Date        time.Time `json:"date" db:"date"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// FinancialEntryRequest creates or replaces a ledger row
type FinancialEntryRequest struct {
	Type        string    `json:"type" binding:"required"`
	Category    string    `json:"category" binding:"required"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date" binding:"required"`
	Description *string   `json:"description,omitempty"`
}

// Validate validates the ledger row request
func (r *FinancialEntryRequest) Validate() error {
	switch EntryType(r.Type) {
	case EntryTypeIncome, EntryTypeExpense:
	default:
		return ValidationFailed("type", fmt.Sprintf("unsupported entry type %q", r.Type))
	}
	if r.Amount < 0 {
		return ValidationFailed("amount", "must not be negative")
	}
	return nil
}

// ServiceRecord is a maintenance event on a vehicle
type ServiceRecord struct {
	ID                 string    `json:"id" db:"id"`
	VehicleID          string    `json:"vehicle_id" db:"vehicle_id"`
	ServiceType        string    `json:"service_type" db:"service_type"`
	Description        *string   `json:"description,omitempty" db:"description"`
	Mileage            int       `json:"mileage" db:"mileage"`
	Cost               float64   `json:"cost" db:"cost"`
	Date               time.Time `json:"date" db:"date"`
	NextServiceMileage *int      `json:"next_service_mileage,omitempty" db:"next_service_mileage"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// ServiceRecordRequest creates or replaces a service record
type ServiceRecordRequest struct {
	VehicleID          string    `json:"vehicle_id" binding:"required"`
	ServiceType        string    `json:"service_type" binding:"required"`
	Description        *string   `json:"description,omitempty"`
	Mileage            int       `json:"mileage"`
	Cost               float64   `json:"cost"`
	Date               time.Time `json:"date" binding:"required"`
	NextServiceMileage *int      `json:"next_service_mileage,omitempty"`
}

// Validate validates the service record request
func (r *ServiceRecordRequest) Validate() error {
	if r.Mileage <= 0 {
		return ValidationFailed("mileage", "must be greater than 0")
	}
	if r.Cost <= 0 {
		return ValidationFailed("cost", "must be greater than 0")
	}
	if r.NextServiceMileage != nil && *r.NextServiceMileage <= r.Mileage {
		return ValidationFailed("next_service_mileage", "must be greater than mileage")
	}
	return nil
}

// Period is an optional date range; a nil bound is open
type Period struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// Contains reports whether t falls inside the period, bounds inclusive
func (p *Period) Contains(t time.Time) bool {
	if p == nil {
		return true
	}
	if p.From != nil && t.Before(*p.From) {
		return false
	}
	if p.To != nil && t.After(*p.To) {
		return false
	}
	return true
}

// FinancialSummary is the reconciled income and expense picture
type FinancialSummary struct {
	Period         *Period `json:"period,omitempty"`
	ManualIncome   float64 `json:"manual_income"`
	PaymentIncome  float64 `json:"payment_income"`
	TotalIncome    float64 `json:"total_income"`
	ManualExpenses float64 `json:"manual_expenses"`
	ServiceCosts   float64 `json:"service_costs"`
	TotalExpenses  float64 `json:"total_expenses"`
	NetProfit      float64 `json:"net_profit"`
}

// MonthlySummary is a summary for one calendar month (YYYY-MM)
type MonthlySummary struct {
	Month string `json:"month"`
	FinancialSummary
}
