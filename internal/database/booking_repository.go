package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
)

const bookingColumns = `
	id, customer_id, vehicle_id, service_type,
	pickup_location, dropoff_location, pickup_date, pickup_time, return_date,
	passengers, notes, payment_method, status, status_reason, payment_status,
	estimated_distance, price_per_unit, price_estimate, admin_set_price,
	is_price_confirmed, confirmed_price, price_confirmed_at, total_price,
	created_at, updated_at`

// BookingRepository handles database operations for bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create creates a new booking
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, customer_id, vehicle_id, service_type,
			pickup_location, dropoff_location, pickup_date, pickup_time, return_date,
			passengers, notes, payment_method, status, payment_status,
			estimated_distance, price_per_unit, price_estimate, admin_set_price,
			is_price_confirmed, confirmed_price, price_confirmed_at, total_price,
			created_at, updated_at
		) VALUES (
			:id, :customer_id, :vehicle_id, :service_type,
			:pickup_location, :dropoff_location, :pickup_date, :pickup_time, :return_date,
			:passengers, :notes, :payment_method, :status, :payment_status,
			:estimated_distance, :price_per_unit, :price_estimate, :admin_set_price,
			:is_price_confirmed, :confirmed_price, :price_confirmed_at, :total_price,
			:created_at, :updated_at
		)
	`

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}

	if _, err := conn(ctx, r.db).NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a booking and locks its row until the transaction ends
func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
}

func (r *BookingRepository) get(ctx context.Context, query, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := conn(ctx, r.db).GetContext(ctx, &booking, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("booking", id)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// ListByCustomer retrieves all bookings for a customer
func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE customer_id = $1 ORDER BY created_at DESC`

	bookings := []models.Booking{}
	if err := conn(ctx, r.db).SelectContext(ctx, &bookings, query, customerID); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// List retrieves all bookings, optionally filtered by status
func (r *BookingRepository) List(ctx context.Context, status *models.BookingStatus) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	bookings := []models.Booking{}
	if err := conn(ctx, r.db).SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// Update writes every mutable column of the booking
func (r *BookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	query := `
		UPDATE bookings
		SET vehicle_id = :vehicle_id,
			pickup_location = :pickup_location,
			dropoff_location = :dropoff_location,
			pickup_date = :pickup_date,
			pickup_time = :pickup_time,
			return_date = :return_date,
			passengers = :passengers,
			notes = :notes,
			payment_method = :payment_method,
			status = :status,
			status_reason = :status_reason,
			payment_status = :payment_status,
			estimated_distance = :estimated_distance,
			price_per_unit = :price_per_unit,
			price_estimate = :price_estimate,
			admin_set_price = :admin_set_price,
			is_price_confirmed = :is_price_confirmed,
			confirmed_price = :confirmed_price,
			price_confirmed_at = :price_confirmed_at,
			total_price = :total_price,
			updated_at = :updated_at
		WHERE id = :id
	`

	result, err := conn(ctx, r.db).NamedExecContext(ctx, query, booking)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return expectOne(result, "booking", booking.ID)
}

// UpdatePaymentStatus sets the payment status carried on a booking
func (r *BookingRepository) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	query := `UPDATE bookings SET payment_status = $2, updated_at = NOW() WHERE id = $1`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update booking payment status: %w", err)
	}
	return expectOne(result, "booking", id)
}

// Delete removes a booking
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return expectOne(result, "booking", id)
}
