package models

import (
	"errors"
	"time"
)

// VehicleCategory is the kind of transport asset
type VehicleCategory string

const (
	VehicleCategoryCar   VehicleCategory = "car"
	VehicleCategoryVan   VehicleCategory = "van"
	VehicleCategoryBus   VehicleCategory = "bus"
	VehicleCategoryTruck VehicleCategory = "truck"
)

// Window is a closed date range a vehicle is held for
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether two windows share any instant
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Valid reports whether the window starts before it ends
func (w Window) Valid() bool {
	return w.Start.Before(w.End)
}

// Vehicle represents a bookable transport asset
type Vehicle struct {
	ID                 string          `json:"id" db:"id"`
	Name               string          `json:"name" db:"name"`
	Category           VehicleCategory `json:"category" db:"category"`
	RegistrationNumber string          `json:"registration_number" db:"registration_number"`
	Capacity           int             `json:"capacity" db:"capacity"`
	PricePerKm         float64         `json:"price_per_km" db:"price_per_km"`
	DailyRate          float64         `json:"daily_rate" db:"daily_rate"`
	MonthlyRate        float64         `json:"monthly_rate" db:"monthly_rate"`

	// Occupancy, written only through the resource registry
	IsAvailable   bool       `json:"is_available" db:"is_available"`
	OccupiedBy    *string    `json:"occupied_by,omitempty" db:"occupied_by"`
	OccupiedFrom  *time.Time `json:"occupied_from,omitempty" db:"occupied_from"`
	OccupiedUntil *time.Time `json:"occupied_until,omitempty" db:"occupied_until"`

	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OccupiedWindow returns the window the vehicle is held for, if any
func (v *Vehicle) OccupiedWindow() *Window {
	if v.OccupiedFrom == nil || v.OccupiedUntil == nil {
		return nil
	}
	return &Window{Start: *v.OccupiedFrom, End: *v.OccupiedUntil}
}

// HeldBy reports whether the vehicle is occupied by the given holder
func (v *Vehicle) HeldBy(holderID string) bool {
	return v.OccupiedBy != nil && *v.OccupiedBy == holderID
}

// FreeFor reports whether holderID could use the vehicle over the window.
// A vehicle held by someone else is still free outside the held window.
func (v *Vehicle) FreeFor(holderID string, window Window) bool {
	if !v.IsActive {
		return false
	}
	if v.OccupiedBy == nil || v.HeldBy(holderID) {
		return true
	}
	held := v.OccupiedWindow()
	return held != nil && !held.Overlaps(window)
}

// CreateVehicleRequest represents the request to register a vehicle
type CreateVehicleRequest struct {
	Name               string  `json:"name" binding:"required"`
	Category           string  `json:"category" binding:"required"`
	RegistrationNumber string  `json:"registration_number" binding:"required"`
	Capacity           int     `json:"capacity" binding:"required,gt=0"`
	PricePerKm         float64 `json:"price_per_km"`
	DailyRate          float64 `json:"daily_rate"`
	MonthlyRate        float64 `json:"monthly_rate"`
}

// Validate validates the create vehicle request
func (r *CreateVehicleRequest) Validate() error {
	if !isValidCategory(VehicleCategory(r.Category)) {
		return errors.New("category must be one of car, van, bus, truck")
	}
	if r.Capacity < 1 {
		return errors.New("capacity must be at least 1")
	}
	if r.PricePerKm < 0 || r.DailyRate < 0 || r.MonthlyRate < 0 {
		return errors.New("rates must not be negative")
	}
	return nil
}

// UpdateVehicleRequest names the vehicle fields an admin may change.
// Occupancy fields are not part of it.
type UpdateVehicleRequest struct {
	Name               *string  `json:"name,omitempty"`
	Category           *string  `json:"category,omitempty"`
	RegistrationNumber *string  `json:"registration_number,omitempty"`
	Capacity           *int     `json:"capacity,omitempty"`
	PricePerKm         *float64 `json:"price_per_km,omitempty"`
	DailyRate          *float64 `json:"daily_rate,omitempty"`
	MonthlyRate        *float64 `json:"monthly_rate,omitempty"`
}

// Validate validates the update vehicle request
func (r *UpdateVehicleRequest) Validate() error {
	if r.Category != nil && !isValidCategory(VehicleCategory(*r.Category)) {
		return errors.New("category must be one of car, van, bus, truck")
	}
	if r.Capacity != nil && *r.Capacity < 1 {
		return errors.New("capacity must be at least 1")
	}
	for _, rate := range []*float64{r.PricePerKm, r.DailyRate, r.MonthlyRate} {
		if rate != nil && *rate < 0 {
			return errors.New("rates must not be negative")
		}
	}
	return nil
}

// ApplyTo copies the set fields onto the vehicle
func (r *UpdateVehicleRequest) ApplyTo(v *Vehicle) {
	if r.Name != nil {
		v.Name = *r.Name
	}
	if r.Category != nil {
		v.Category = VehicleCategory(*r.Category)
	}
	if r.RegistrationNumber != nil {
		v.RegistrationNumber = *r.RegistrationNumber
	}
	if r.Capacity != nil {
		v.Capacity = *r.Capacity
	}
	if r.PricePerKm != nil {
		v.PricePerKm = *r.PricePerKm
	}
	if r.DailyRate != nil {
		v.DailyRate = *r.DailyRate
	}
	if r.MonthlyRate != nil {
		v.MonthlyRate = *r.MonthlyRate
	}
}

func isValidCategory(c VehicleCategory) bool {
	switch c {
	case VehicleCategoryCar, VehicleCategoryVan, VehicleCategoryBus, VehicleCategoryTruck:
		return true
	}
	return false
}
