package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
)

const vehicleColumns = `
	id, name, category, registration_number, capacity,
	price_per_km, daily_rate, monthly_rate,
	is_available, occupied_by, occupied_from, occupied_until,
	is_active, created_at, updated_at`

// VehicleFilter narrows a vehicle listing
type VehicleFilter struct {
	AvailableOnly   bool
	IncludeInactive bool
}

// VehicleRepository handles database operations for vehicles table
type VehicleRepository struct {
	db DB
}

// NewVehicleRepository creates a new VehicleRepository
func NewVehicleRepository(db DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// Create creates a new vehicle
func (r *VehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	query := `
		INSERT INTO vehicles (
			id, name, category, registration_number, capacity,
			price_per_km, daily_rate, monthly_rate, is_available, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, TRUE)
		RETURNING is_available, is_active, created_at, updated_at
	`

	if vehicle.ID == "" {
		vehicle.ID = uuid.New().String()
	}

	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		vehicle.ID, vehicle.Name, vehicle.Category, vehicle.RegistrationNumber, vehicle.Capacity,
		vehicle.PricePerKm, vehicle.DailyRate, vehicle.MonthlyRate,
	).Scan(&vehicle.IsAvailable, &vehicle.IsActive, &vehicle.CreatedAt, &vehicle.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	return nil
}

// GetByID retrieves a vehicle by ID
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	var vehicle models.Vehicle
	if err := conn(ctx, r.db).GetContext(ctx, &vehicle, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("vehicle", id)
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return &vehicle, nil
}

// List retrieves vehicles matching the filter
func (r *VehicleRepository) List(ctx context.Context, filter VehicleFilter) ([]models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE 1=1`
	if !filter.IncludeInactive {
		query += ` AND is_active = TRUE`
	}
	if filter.AvailableOnly {
		query += ` AND is_available = TRUE`
	}
	query += ` ORDER BY name`

	vehicles := []models.Vehicle{}
	if err := conn(ctx, r.db).SelectContext(ctx, &vehicles, query); err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return vehicles, nil
}

// Update writes the descriptive fields and rates of a vehicle
func (r *VehicleRepository) Update(ctx context.Context, vehicle *models.Vehicle) error {
	query := `
		UPDATE vehicles
		SET name = $2, category = $3, registration_number = $4, capacity = $5,
			price_per_km = $6, daily_rate = $7, monthly_rate = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		vehicle.ID, vehicle.Name, vehicle.Category, vehicle.RegistrationNumber, vehicle.Capacity,
		vehicle.PricePerKm, vehicle.DailyRate, vehicle.MonthlyRate,
	).Scan(&vehicle.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("vehicle", vehicle.ID)
		}
		return fmt.Errorf("failed to update vehicle: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a vehicle that is not currently occupied.
// It reports false when the vehicle is held by a rental.
func (r *VehicleRepository) Deactivate(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE vehicles
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND occupied_by IS NULL
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate vehicle: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

// Claim marks the vehicle as occupied by holderID for the window. The update
// only applies when the vehicle is active and free or already held by the
// same holder; Claim reports false otherwise.
func (r *VehicleRepository) Claim(ctx context.Context, vehicleID, holderID string, window models.Window) (bool, error) {
	query := `
		UPDATE vehicles
		SET is_available = FALSE,
			occupied_by = $2,
			occupied_from = $3,
			occupied_until = $4,
			updated_at = NOW()
		WHERE id = $1
		  AND is_active = TRUE
		  AND (occupied_by IS NULL OR occupied_by = $2)
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, vehicleID, holderID, window.Start, window.End)
	if err != nil {
		return false, fmt.Errorf("failed to claim vehicle: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

// ReleaseHeld clears occupancy when the vehicle is held by holderID.
// Releasing a vehicle that is free or held by someone else changes nothing.
func (r *VehicleRepository) ReleaseHeld(ctx context.Context, vehicleID, holderID string) (bool, error) {
	query := `
		UPDATE vehicles
		SET is_available = TRUE,
			occupied_by = NULL,
			occupied_from = NULL,
			occupied_until = NULL,
			updated_at = NOW()
		WHERE id = $1 AND occupied_by = $2
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, vehicleID, holderID)
	if err != nil {
		return false, fmt.Errorf("failed to release vehicle: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}
