package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendPeriod(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	query, args := appendPeriod("SELECT 1 WHERE TRUE", "date", nil)
	assert.Equal(t, "SELECT 1 WHERE TRUE", query)
	assert.Empty(t, args)

	query, args = appendPeriod("SELECT 1 WHERE TRUE", "date", &models.Period{From: &from, To: &to})
	assert.Equal(t, "SELECT 1 WHERE TRUE AND date >= $1 AND date <= $2", query)
	assert.Equal(t, []interface{}{from, to}, args)

	query, args = appendPeriod("SELECT 1 WHERE TRUE", "completed_at", &models.Period{To: &to})
	assert.Equal(t, "SELECT 1 WHERE TRUE AND completed_at <= $1", query)
	assert.Equal(t, []interface{}{to}, args)
}

var paymentRowColumns = []string{
	"id", "booking_id", "customer_id", "amount", "currency", "method", "status", "transaction_id",
	"gateway_reference", "failure_reason", "completed_at", "created_at", "updated_at",
}

func TestPaymentRepository_ListCompleted(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectQuery(`FROM payments WHERE status = 'completed' AND completed_at >= \$1`).
		WithArgs(from).
		WillReturnRows(sqlmock.NewRows(paymentRowColumns).AddRow(
			"p-1", "b-1", "c-1", 7500.0, "LKR", "card", "completed", "TXN-1-ABCDEF12",
			nil, nil, now, now, now,
		))

	payments, err := repo.ListCompleted(context.Background(), &models.Period{From: &from})
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, models.SettlementCompleted, payments[0].Status)
	assert.Nil(t, payments[0].GatewayReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_UpdateStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)
	now := time.Now()
	payment := &models.Payment{ID: "p-1", Status: models.SettlementCompleted, CompletedAt: &now, UpdatedAt: now}

	mock.ExpectExec(`UPDATE payments\s+SET status = \$1`).
		WithArgs(models.SettlementCompleted, nil, &now, now, "p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), payment))

	mock.ExpectExec(`UPDATE payments`).WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateStatus(context.Background(), payment)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}
