package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
)

const paymentColumns = `
	id, booking_id, customer_id, amount, currency, method, status, transaction_id,
	gateway_reference, failure_reason, completed_at, created_at, updated_at`

// PaymentRepository handles database operations for payments table
type PaymentRepository struct {
	db DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create creates a new payment
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (
			id, booking_id, customer_id, amount, currency, method, status, transaction_id,
			gateway_reference, failure_reason, completed_at, created_at, updated_at
		) VALUES (
			:id, :booking_id, :customer_id, :amount, :currency, :method, :status, :transaction_id,
			:gateway_reference, :failure_reason, :completed_at, :created_at, :updated_at
		)
	`

	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}

	if _, err := conn(ctx, r.db).NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// GetByIDForUpdate retrieves a payment and locks its row until the transaction ends
func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`

	var payment models.Payment
	if err := conn(ctx, r.db).GetContext(ctx, &payment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("payment", id)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

// ListByBooking retrieves all payments for a booking
func (r *PaymentRepository) ListByBooking(ctx context.Context, bookingID string) ([]models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1 ORDER BY created_at DESC`

	payments := []models.Payment{}
	if err := conn(ctx, r.db).SelectContext(ctx, &payments, query, bookingID); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// ListCompleted retrieves completed payments, optionally limited to a period
// of their completion timestamp
func (r *PaymentRepository) ListCompleted(ctx context.Context, period *models.Period) ([]models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE status = 'completed'`
	query, args := appendPeriod(query, "completed_at", period)

	payments := []models.Payment{}
	if err := conn(ctx, r.db).SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list completed payments: %w", err)
	}
	return payments, nil
}

// UpdateStatus writes the status fields of a payment. transaction_id is never updated.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, payment *models.Payment) error {
	query := `
		UPDATE payments
		SET status = :status,
			failure_reason = :failure_reason,
			completed_at = :completed_at,
			updated_at = :updated_at
		WHERE id = :id
	`

	result, err := conn(ctx, r.db).NamedExecContext(ctx, query, payment)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return expectOne(result, "payment", payment.ID)
}

// appendPeriod adds inclusive bounds on column to a query that already has a WHERE clause
func appendPeriod(query, column string, period *models.Period) (string, []interface{}) {
	args := []interface{}{}
	if period == nil {
		return query, args
	}
	if period.From != nil {
		args = append(args, *period.From)
		query += fmt.Sprintf(" AND %s >= $%d", column, len(args))
	}
	if period.To != nil {
		args = append(args, *period.To)
		query += fmt.Sprintf(" AND %s <= $%d", column, len(args))
	}
	return query, args
}
