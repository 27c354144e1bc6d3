package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
)

const tourPackageColumns = `
	id, name, destination, tour_days, price_per_person, max_passengers,
	inclusions, is_active, created_at, updated_at`

const tourBookingColumns = `
	id, customer_id, package_id, booking_date, number_of_passengers, passengers,
	pricing, payment, status, admin_notes, admin_actions, created_at, updated_at`

// TourRepository handles database operations for tour_packages and tour_bookings tables
type TourRepository struct {
	db DB
}

// NewTourRepository creates a new TourRepository
func NewTourRepository(db DB) *TourRepository {
	return &TourRepository{db: db}
}

// ============================================================================
// PACKAGES
// ============================================================================

// CreatePackage creates a new tour package
func (r *TourRepository) CreatePackage(ctx context.Context, pkg *models.TourPackage) error {
	query := `
		INSERT INTO tour_packages (
			id, name, destination, tour_days, price_per_person, max_passengers, inclusions, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	if pkg.ID == "" {
		pkg.ID = uuid.New().String()
	}

	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		pkg.ID, pkg.Name, pkg.Destination, pkg.TourDays, pkg.PricePerPerson,
		pkg.MaxPassengers, pkg.Inclusions, pkg.IsActive,
	).Scan(&pkg.CreatedAt, &pkg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tour package: %w", err)
	}
	return nil
}

// UpdatePackage replaces a tour package's fields
func (r *TourRepository) UpdatePackage(ctx context.Context, pkg *models.TourPackage) error {
	query := `
		UPDATE tour_packages
		SET name = $2, destination = $3, tour_days = $4, price_per_person = $5,
			max_passengers = $6, inclusions = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		pkg.ID, pkg.Name, pkg.Destination, pkg.TourDays, pkg.PricePerPerson,
		pkg.MaxPassengers, pkg.Inclusions, pkg.IsActive,
	).Scan(&pkg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("tour package", pkg.ID)
		}
		return fmt.Errorf("failed to update tour package: %w", err)
	}
	return nil
}

// GetPackage retrieves a tour package by ID
func (r *TourRepository) GetPackage(ctx context.Context, id string) (*models.TourPackage, error) {
	query := `SELECT ` + tourPackageColumns + ` FROM tour_packages WHERE id = $1`

	var pkg models.TourPackage
	if err := conn(ctx, r.db).GetContext(ctx, &pkg, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("tour package", id)
		}
		return nil, fmt.Errorf("failed to get tour package: %w", err)
	}
	return &pkg, nil
}

// ListPackages retrieves tour packages
func (r *TourRepository) ListPackages(ctx context.Context, activeOnly bool) ([]models.TourPackage, error) {
	query := `SELECT ` + tourPackageColumns + ` FROM tour_packages`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name`

	packages := []models.TourPackage{}
	if err := conn(ctx, r.db).SelectContext(ctx, &packages, query); err != nil {
		return nil, fmt.Errorf("failed to list tour packages: %w", err)
	}
	return packages, nil
}

// ============================================================================
// BOOKINGS
// ============================================================================

// CreateBooking creates a new tour booking
func (r *TourRepository) CreateBooking(ctx context.Context, booking *models.TourBooking) error {
	query := `
		INSERT INTO tour_bookings (
			id, customer_id, package_id, booking_date, number_of_passengers, passengers,
			pricing, payment, status, admin_notes, admin_actions, created_at, updated_at
		) VALUES (
			:id, :customer_id, :package_id, :booking_date, :number_of_passengers, :passengers,
			:pricing, :payment, :status, :admin_notes, :admin_actions, :created_at, :updated_at
		)
	`

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}

	if _, err := conn(ctx, r.db).NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("failed to create tour booking: %w", err)
	}
	return nil
}

// GetBooking retrieves a tour booking by ID
func (r *TourRepository) GetBooking(ctx context.Context, id string) (*models.TourBooking, error) {
	return r.getBooking(ctx, `SELECT `+tourBookingColumns+` FROM tour_bookings WHERE id = $1`, id)
}

// GetBookingForUpdate retrieves a tour booking and locks its row until the transaction ends
func (r *TourRepository) GetBookingForUpdate(ctx context.Context, id string) (*models.TourBooking, error) {
	return r.getBooking(ctx, `SELECT `+tourBookingColumns+` FROM tour_bookings WHERE id = $1 FOR UPDATE`, id)
}

func (r *TourRepository) getBooking(ctx context.Context, query, id string) (*models.TourBooking, error) {
	var booking models.TourBooking
	if err := conn(ctx, r.db).GetContext(ctx, &booking, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("tour booking", id)
		}
		return nil, fmt.Errorf("failed to get tour booking: %w", err)
	}
	return &booking, nil
}

// ListBookingsByCustomer retrieves all tour bookings for a customer
func (r *TourRepository) ListBookingsByCustomer(ctx context.Context, customerID string) ([]models.TourBooking, error) {
	query := `SELECT ` + tourBookingColumns + ` FROM tour_bookings WHERE customer_id = $1 ORDER BY created_at DESC`

	bookings := []models.TourBooking{}
	if err := conn(ctx, r.db).SelectContext(ctx, &bookings, query, customerID); err != nil {
		return nil, fmt.Errorf("failed to list tour bookings: %w", err)
	}
	return bookings, nil
}

// ListBookings retrieves all tour bookings, optionally filtered by status
func (r *TourRepository) ListBookings(ctx context.Context, status *models.TourBookingStatus) ([]models.TourBooking, error) {
	query := `SELECT ` + tourBookingColumns + ` FROM tour_bookings`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	bookings := []models.TourBooking{}
	if err := conn(ctx, r.db).SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list tour bookings: %w", err)
	}
	return bookings, nil
}

// UpdateBooking writes the mutable columns of a tour booking
func (r *TourRepository) UpdateBooking(ctx context.Context, booking *models.TourBooking) error {
	query := `
		UPDATE tour_bookings
		SET passengers = :passengers,
			pricing = :pricing,
			payment = :payment,
			status = :status,
			admin_notes = :admin_notes,
			admin_actions = :admin_actions,
			updated_at = :updated_at
		WHERE id = :id
	`

	result, err := conn(ctx, r.db).NamedExecContext(ctx, query, booking)
	if err != nil {
		return fmt.Errorf("failed to update tour booking: %w", err)
	}
	return expectOne(result, "tour booking", booking.ID)
}
