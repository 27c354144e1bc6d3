package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
)

const financialEntryColumns = `
	id, type, category, amount, date, description, created_by, created_at, updated_at`

const serviceRecordColumns = `
	id, vehicle_id, service_type, description, mileage, cost, date,
	next_service_mileage, created_at, updated_at`

// LedgerRepository handles database operations for financial_entries and service_records tables
type LedgerRepository struct {
	db DB
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// ============================================================================
// FINANCIAL ENTRIES
// ============================================================================

// CreateEntry creates a new ledger row
func (r *LedgerRepository) CreateEntry(ctx context.Context, entry *models.FinancialEntry) error {
	query := `
		INSERT INTO financial_entries (id, type, category, amount, date, description, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		entry.ID, entry.Type, entry.Category, entry.Amount, entry.Date, entry.Description, entry.CreatedBy,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create financial entry: %w", err)
	}
	return nil
}

// GetEntry retrieves a ledger row by ID
func (r *LedgerRepository) GetEntry(ctx context.Context, id string) (*models.FinancialEntry, error) {
	query := `SELECT ` + financialEntryColumns + ` FROM financial_entries WHERE id = $1`

	var entry models.FinancialEntry
	if err := conn(ctx, r.db).GetContext(ctx, &entry, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("financial entry", id)
		}
		return nil, fmt.Errorf("failed to get financial entry: %w", err)
	}
	return &entry, nil
}

// ListEntries retrieves ledger rows dated within the period
func (r *LedgerRepository) ListEntries(ctx context.Context, period *models.Period) ([]models.FinancialEntry, error) {
	query := `SELECT ` + financialEntryColumns + ` FROM financial_entries WHERE 1=1`
	query, args := appendPeriod(query, "date", period)
	query += ` ORDER BY date DESC`

	entries := []models.FinancialEntry{}
	if err := conn(ctx, r.db).SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list financial entries: %w", err)
	}
	return entries, nil
}

// UpdateEntry replaces a ledger row's fields
func (r *LedgerRepository) UpdateEntry(ctx context.Context, entry *models.FinancialEntry) error {
	query := `
		UPDATE financial_entries
		SET type = $2, category = $3, amount = $4, date = $5, description = $6, updated_at = NOW()
		WHERE id = $1
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		entry.ID, entry.Type, entry.Category, entry.Amount, entry.Date, entry.Description)
	if err != nil {
		return fmt.Errorf("failed to update financial entry: %w", err)
	}
	return expectOne(result, "financial entry", entry.ID)
}

// DeleteEntry removes a ledger row
func (r *LedgerRepository) DeleteEntry(ctx context.Context, id string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM financial_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete financial entry: %w", err)
	}
	return expectOne(result, "financial entry", id)
}

// ============================================================================
// SERVICE RECORDS
// ============================================================================

// CreateServiceRecord creates a new service record
func (r *LedgerRepository) CreateServiceRecord(ctx context.Context, record *models.ServiceRecord) error {
	query := `
		INSERT INTO service_records (
			id, vehicle_id, service_type, description, mileage, cost, date, next_service_mileage
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		record.ID, record.VehicleID, record.ServiceType, record.Description,
		record.Mileage, record.Cost, record.Date, record.NextServiceMileage,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create service record: %w", err)
	}
	return nil
}

// GetServiceRecord retrieves a service record by ID
func (r *LedgerRepository) GetServiceRecord(ctx context.Context, id string) (*models.ServiceRecord, error) {
	query := `SELECT ` + serviceRecordColumns + ` FROM service_records WHERE id = $1`

	var record models.ServiceRecord
	if err := conn(ctx, r.db).GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("service record", id)
		}
		return nil, fmt.Errorf("failed to get service record: %w", err)
	}
	return &record, nil
}

// ListServiceRecords retrieves service records dated within the period
func (r *LedgerRepository) ListServiceRecords(ctx context.Context, period *models.Period) ([]models.ServiceRecord, error) {
	query := `SELECT ` + serviceRecordColumns + ` FROM service_records WHERE 1=1`
	query, args := appendPeriod(query, "date", period)
	query += ` ORDER BY date DESC`

	records := []models.ServiceRecord{}
	if err := conn(ctx, r.db).SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list service records: %w", err)
	}
	return records, nil
}

// UpdateServiceRecord replaces a service record's fields
func (r *LedgerRepository) UpdateServiceRecord(ctx context.Context, record *models.ServiceRecord) error {
	query := `
		UPDATE service_records
		SET vehicle_id = $2, service_type = $3, description = $4, mileage = $5,
			cost = $6, date = $7, next_service_mileage = $8, updated_at = NOW()
		WHERE id = $1
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		record.ID, record.VehicleID, record.ServiceType, record.Description,
		record.Mileage, record.Cost, record.Date, record.NextServiceMileage)
	if err != nil {
		return fmt.Errorf("failed to update service record: %w", err)
	}
	return expectOne(result, "service record", record.ID)
}

// DeleteServiceRecord removes a service record
func (r *LedgerRepository) DeleteServiceRecord(ctx context.Context, id string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM service_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete service record: %w", err)
	}
	return expectOne(result, "service record", id)
}
