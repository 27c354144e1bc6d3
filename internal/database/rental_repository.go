package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
)

const rentalColumns = `
	id, customer_id, vehicle_id, rental_type, start_date, end_date, duration,
	daily_rate, monthly_rate, purpose, status, contract_id, contract_terms,
	admin_notes, approved_at, price_estimate, admin_set_price, is_price_confirmed,
	confirmed_price, price_confirmed_at, total_amount, created_at, updated_at`

// RentalRepository handles database operations for rentals table
type RentalRepository struct {
	db DB
}

// NewRentalRepository creates a new RentalRepository
func NewRentalRepository(db DB) *RentalRepository {
	return &RentalRepository{db: db}
}

// Create creates a new rental
func (r *RentalRepository) Create(ctx context.Context, rental *models.Rental) error {
	query := `
		INSERT INTO rentals (
			id, customer_id, vehicle_id, rental_type, start_date, end_date, duration,
			daily_rate, monthly_rate, purpose, status, contract_id, contract_terms,
			admin_notes, approved_at, price_estimate, admin_set_price, is_price_confirmed,
			confirmed_price, price_confirmed_at, total_amount, created_at, updated_at
		) VALUES (
			:id, :customer_id, :vehicle_id, :rental_type, :start_date, :end_date, :duration,
			:daily_rate, :monthly_rate, :purpose, :status, :contract_id, :contract_terms,
			:admin_notes, :approved_at, :price_estimate, :admin_set_price, :is_price_confirmed,
			:confirmed_price, :price_confirmed_at, :total_amount, :created_at, :updated_at
		)
	`

	if rental.ID == "" {
		rental.ID = uuid.New().String()
	}

	if _, err := conn(ctx, r.db).NamedExecContext(ctx, query, rental); err != nil {
		return fmt.Errorf("failed to create rental: %w", err)
	}
	return nil
}

// GetByID retrieves a rental by ID
func (r *RentalRepository) GetByID(ctx context.Context, id string) (*models.Rental, error) {
	return r.get(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a rental and locks its row until the transaction ends
func (r *RentalRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Rental, error) {
	return r.get(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE id = $1 FOR UPDATE`, id)
}

func (r *RentalRepository) get(ctx context.Context, query, id string) (*models.Rental, error) {
	var rental models.Rental
	if err := conn(ctx, r.db).GetContext(ctx, &rental, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("rental", id)
		}
		return nil, fmt.Errorf("failed to get rental: %w", err)
	}
	return &rental, nil
}

// ListByCustomer retrieves all rentals for a customer
func (r *RentalRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE customer_id = $1 ORDER BY created_at DESC`

	rentals := []models.Rental{}
	if err := conn(ctx, r.db).SelectContext(ctx, &rentals, query, customerID); err != nil {
		return nil, fmt.Errorf("failed to list rentals: %w", err)
	}
	return rentals, nil
}

// List retrieves all rentals, optionally filtered by status
func (r *RentalRepository) List(ctx context.Context, status *models.RentalStatus) ([]models.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rentals := []models.Rental{}
	if err := conn(ctx, r.db).SelectContext(ctx, &rentals, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list rentals: %w", err)
	}
	return rentals, nil
}

// Update writes every mutable column of the rental. contract_id is only
// written while it is still NULL.
func (r *RentalRepository) Update(ctx context.Context, rental *models.Rental) error {
	query := `
		UPDATE rentals
		SET vehicle_id = :vehicle_id,
			start_date = :start_date,
			end_date = :end_date,
			duration = :duration,
			daily_rate = :daily_rate,
			monthly_rate = :monthly_rate,
			purpose = :purpose,
			status = :status,
			contract_id = COALESCE(contract_id, :contract_id),
			contract_terms = :contract_terms,
			admin_notes = :admin_notes,
			approved_at = COALESCE(approved_at, :approved_at),
			price_estimate = :price_estimate,
			admin_set_price = :admin_set_price,
			is_price_confirmed = :is_price_confirmed,
			confirmed_price = :confirmed_price,
			price_confirmed_at = :price_confirmed_at,
			total_amount = :total_amount,
			updated_at = :updated_at
		WHERE id = :id
	`

	result, err := conn(ctx, r.db).NamedExecContext(ctx, query, rental)
	if err != nil {
		return fmt.Errorf("failed to update rental: %w", err)
	}
	return expectOne(result, "rental", rental.ID)
}

// Delete removes a rental
func (r *RentalRepository) Delete(ctx context.Context, id string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM rentals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rental: %w", err)
	}
	return expectOne(result, "rental", id)
}
