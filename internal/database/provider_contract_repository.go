package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
)

const providerContractColumns = `
	id, provider_id, status, vehicle_spec, contract_terms, conditions,
	payment_history, next_payment_date, admin_notes, admin_actions,
	created_at, updated_at`

// ProviderContractRepository handles database operations for provider_contracts table
type ProviderContractRepository struct {
	db DB
}

// NewProviderContractRepository creates a new ProviderContractRepository
func NewProviderContractRepository(db DB) *ProviderContractRepository {
	return &ProviderContractRepository{db: db}
}

// Create creates a new provider contract
func (r *ProviderContractRepository) Create(ctx context.Context, contract *models.VehicleProviderContract) error {
	query := `
		INSERT INTO provider_contracts (
			id, provider_id, status, vehicle_spec, contract_terms, conditions,
			payment_history, next_payment_date, admin_notes, admin_actions,
			created_at, updated_at
		) VALUES (
			:id, :provider_id, :status, :vehicle_spec, :contract_terms, :conditions,
			:payment_history, :next_payment_date, :admin_notes, :admin_actions,
			:created_at, :updated_at
		)
	`

	if contract.ID == "" {
		contract.ID = uuid.New().String()
	}

	if _, err := conn(ctx, r.db).NamedExecContext(ctx, query, contract); err != nil {
		return fmt.Errorf("failed to create provider contract: %w", err)
	}
	return nil
}

// GetByID retrieves a provider contract by ID
func (r *ProviderContractRepository) GetByID(ctx context.Context, id string) (*models.VehicleProviderContract, error) {
	return r.get(ctx, `SELECT `+providerContractColumns+` FROM provider_contracts WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a provider contract and locks its row until the transaction ends
func (r *ProviderContractRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.VehicleProviderContract, error) {
	return r.get(ctx, `SELECT `+providerContractColumns+` FROM provider_contracts WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProviderContractRepository) get(ctx context.Context, query, id string) (*models.VehicleProviderContract, error) {
	var contract models.VehicleProviderContract
	if err := conn(ctx, r.db).GetContext(ctx, &contract, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("provider contract", id)
		}
		return nil, fmt.Errorf("failed to get provider contract: %w", err)
	}
	return &contract, nil
}

// ListByProvider retrieves all contracts of a provider
func (r *ProviderContractRepository) ListByProvider(ctx context.Context, providerID string) ([]models.VehicleProviderContract, error) {
	query := `SELECT ` + providerContractColumns + ` FROM provider_contracts WHERE provider_id = $1 ORDER BY created_at DESC`

	contracts := []models.VehicleProviderContract{}
	if err := conn(ctx, r.db).SelectContext(ctx, &contracts, query, providerID); err != nil {
		return nil, fmt.Errorf("failed to list provider contracts: %w", err)
	}
	return contracts, nil
}

// List retrieves all contracts, optionally filtered by status
func (r *ProviderContractRepository) List(ctx context.Context, status *models.ContractStatus) ([]models.VehicleProviderContract, error) {
	query := `SELECT ` + providerContractColumns + ` FROM provider_contracts`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	contracts := []models.VehicleProviderContract{}
	if err := conn(ctx, r.db).SelectContext(ctx, &contracts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list provider contracts: %w", err)
	}
	return contracts, nil
}

// ListExpiring retrieves active contracts whose end date is before asOf
func (r *ProviderContractRepository) ListExpiring(ctx context.Context, asOf time.Time) ([]models.VehicleProviderContract, error) {
	query := `
		SELECT ` + providerContractColumns + `
		FROM provider_contracts
		WHERE status = 'active'
		  AND (contract_terms ->> 'end_date')::timestamptz < $1
		ORDER BY created_at
	`

	contracts := []models.VehicleProviderContract{}
	if err := conn(ctx, r.db).SelectContext(ctx, &contracts, query, asOf); err != nil {
		return nil, fmt.Errorf("failed to list expiring provider contracts: %w", err)
	}
	return contracts, nil
}

// Update writes the mutable columns of a provider contract
func (r *ProviderContractRepository) Update(ctx context.Context, contract *models.VehicleProviderContract) error {
	query := `
		UPDATE provider_contracts
		SET status = :status,
			vehicle_spec = :vehicle_spec,
			contract_terms = :contract_terms,
			conditions = :conditions,
			payment_history = :payment_history,
			next_payment_date = :next_payment_date,
			admin_notes = :admin_notes,
			admin_actions = :admin_actions,
			updated_at = :updated_at
		WHERE id = :id
	`

	result, err := conn(ctx, r.db).NamedExecContext(ctx, query, contract)
	if err != nil {
		return fmt.Errorf("failed to update provider contract: %w", err)
	}
	return expectOne(result, "provider contract", contract.ID)
}

// Delete removes a provider contract that is still pending
func (r *ProviderContractRepository) Delete(ctx context.Context, id string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`DELETE FROM provider_contracts WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("failed to delete provider contract: %w", err)
	}
	return expectOne(result, "provider contract", id)
}
