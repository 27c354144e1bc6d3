package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
	"github.com/smarttransit/fleet-booking-backend/pkg/notify"
)

// systemActor is recorded as the admin of actions taken by scheduled jobs
const systemActor = "system"

// ProviderContractService runs vehicle provider contracts
type ProviderContractService struct {
	contracts ProviderContractRepository
	tx        Transactor
	notifier  Notifier
	logger    *logrus.Logger
	now       func() time.Time
}

// NewProviderContractService creates a new ProviderContractService
func NewProviderContractService(contracts ProviderContractRepository, tx Transactor, notifier Notifier, logger *logrus.Logger) *ProviderContractService {
	return &ProviderContractService{
		contracts: contracts,
		tx:        tx,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// Create records a provider's contract request
func (s *ProviderContractService) Create(ctx context.Context, actor models.Actor, req *models.CreateProviderContractRequest) (*models.VehicleProviderContract, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	contract := &models.VehicleProviderContract{
		ProviderID:     actor.ID,
		Status:         models.ContractStatusPending,
		VehicleSpec:    *req.VehicleSpec,
		ContractTerms:  *req.ContractTerms,
		Conditions:     models.StringArray(req.Conditions),
		PaymentHistory: models.PaymentHistory{},
		AdminActions: models.AdminActionLog{}.Append(models.AdminAction{
			Action:    "created",
			AdminID:   actor.ID,
			Timestamp: now,
		}),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := contract.ScheduleFromStart(); err != nil {
		return nil, err
	}

	if err := s.contracts.Create(ctx, contract); err != nil {
		s.logger.WithFields(logrus.Fields{
			"provider_id": actor.ID,
			"error":       err.Error(),
		}).Error("Failed to create provider contract")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"contract_id":       contract.ID,
		"provider_id":       actor.ID,
		"next_payment_date": contract.NextPaymentDate,
	}).Info("Provider contract requested")
	return contract, nil
}

// Get returns a contract visible to the actor
func (s *ProviderContractService) Get(ctx context.Context, actor models.Actor, id string) (*models.VehicleProviderContract, error) {
	contract, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "provider contract", id)
	}
	if err := actor.RequireOwner(contract.ProviderID); err != nil {
		return nil, err
	}
	return contract, nil
}

// ListMine returns the actor's contracts
func (s *ProviderContractService) ListMine(ctx context.Context, actor models.Actor) ([]models.VehicleProviderContract, error) {
	return s.contracts.ListByProvider(ctx, actor.ID)
}

// List returns all contracts, optionally filtered by status
func (s *ProviderContractService) List(ctx context.Context, actor models.Actor, status string) ([]models.VehicleProviderContract, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if status == "" {
		return s.contracts.List(ctx, nil)
	}
	parsed, err := models.ParseContractStatus(status)
	if err != nil {
		return nil, err
	}
	return s.contracts.List(ctx, &parsed)
}

// Update merges changes into a contract that is still pending or under
// review. Changing the start date or payment terms reschedules the next payment.
func (s *ProviderContractService) Update(ctx context.Context, actor models.Actor, id string, update *models.ProviderContractUpdate) (*models.VehicleProviderContract, error) {
	var contract *models.VehicleProviderContract
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		contract, err = s.contracts.GetByIDForUpdate(ctx, id)
		if err != nil {
			return translateNotFound(err, "provider contract", id)
		}
		if err := actor.RequireOwner(contract.ProviderID); err != nil {
			return err
		}
		if !contract.Editable() {
			return models.InvalidTransition("status", fmt.Sprintf("contract is %s; only pending or under review contracts can be modified", contract.Status))
		}

		rescheduled := update.ApplyTo(contract)
		if err := contract.ContractTerms.Validate(); err != nil {
			return err
		}
		if rescheduled {
			if err := contract.ScheduleFromStart(); err != nil {
				return err
			}
		}

		now := s.now()
		contract.AdminActions = contract.AdminActions.Append(models.AdminAction{
			Action:    "modified",
			AdminID:   actor.ID,
			Notes:     update.Notes,
			Timestamp: now,
		})
		contract.UpdatedAt = now
		return s.contracts.Update(ctx, contract)
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

// AdminSetStatus moves a contract through its lifecycle
func (s *ProviderContractService) AdminSetStatus(ctx context.Context, actor models.Actor, id string, req *models.ContractStatusRequest) (*models.VehicleProviderContract, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	target, err := models.ParseContractStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var contract *models.VehicleProviderContract
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		contract, err = s.contracts.GetByIDForUpdate(ctx, id)
		if err != nil {
			return translateNotFound(err, "provider contract", id)
		}
		if err := models.ValidateContractTransition(contract.Status, target); err != nil {
			return err
		}
		now := s.now()
		contract.Status = target
		if req.Notes != nil {
			contract.AdminNotes = req.Notes
		}
		contract.AdminActions = contract.AdminActions.Append(models.AdminAction{
			Action:    string(target),
			AdminID:   actor.ID,
			Notes:     req.Notes,
			Timestamp: now,
		})
		contract.UpdatedAt = now
		return s.contracts.Update(ctx, contract)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"contract_id": id,
		"admin_id":    actor.ID,
		"status":      target,
	}).Info("Provider contract status changed")

	s.notifier.Send(notify.Notification{
		RecipientID:        contract.ProviderID,
		Kind:               notify.KindContractStatus,
		Title:              "Contract " + string(target),
		Message:            fmt.Sprintf("Your contract for %s %s is now %s", contract.VehicleSpec.Make, contract.VehicleSpec.Model, target),
		CorrelatedEntityID: contract.ID,
	})
	return contract, nil
}

// RecordPayment appends a fee payment to an active contract and advances
// the next payment date by one cadence step
func (s *ProviderContractService) RecordPayment(ctx context.Context, actor models.Actor, id string, req *models.RecordPaymentRequest) (*models.VehicleProviderContract, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var contract *models.VehicleProviderContract
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		contract, err = s.contracts.GetByIDForUpdate(ctx, id)
		if err != nil {
			return translateNotFound(err, "provider contract", id)
		}
		if contract.Status != models.ContractStatusActive {
			return models.InvalidTransition("status", fmt.Sprintf("contract is %s; payments are recorded on active contracts only", contract.Status))
		}
		now := s.now()
		if err := contract.RecordPayment(req.Amount, actor.ID, req.Notes, now); err != nil {
			return err
		}
		contract.AdminActions = contract.AdminActions.Append(models.AdminAction{
			Action:    "payment_recorded",
			AdminID:   actor.ID,
			Notes:     req.Notes,
			Timestamp: now,
		})
		contract.UpdatedAt = now
		return s.contracts.Update(ctx, contract)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"contract_id":       id,
		"amount":            req.Amount,
		"next_payment_date": contract.NextPaymentDate,
	}).Info("Provider contract payment recorded")
	return contract, nil
}

// Delete removes a contract that is still pending
func (s *ProviderContractService) Delete(ctx context.Context, actor models.Actor, id string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		contract, err := s.contracts.GetByIDForUpdate(ctx, id)
		if err != nil {
			return translateNotFound(err, "provider contract", id)
		}
		if err := actor.RequireOwner(contract.ProviderID); err != nil {
			return err
		}
		if contract.Status != models.ContractStatusPending {
			return models.InvalidTransition("status", fmt.Sprintf("contract is %s; only pending contracts can be deleted", contract.Status))
		}
		return s.contracts.Delete(ctx, id)
	})
}

// ExpireDue moves active contracts whose end date has passed to expired and
// returns how many were moved
func (s *ProviderContractService) ExpireDue(ctx context.Context, asOf time.Time) (int, error) {
	due, err := s.contracts.ListExpiring(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("failed to list expiring contracts: %w", err)
	}

	expired := 0
	for _, candidate := range due {
		changed := false
		err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			contract, err := s.contracts.GetByIDForUpdate(ctx, candidate.ID)
			if err != nil {
				return err
			}
			if contract.Status != models.ContractStatusActive || !contract.ContractTerms.EndDate.Before(asOf) {
				return nil
			}
			contract.Status = models.ContractStatusExpired
			contract.AdminActions = contract.AdminActions.Append(models.AdminAction{
				Action:    string(models.ContractStatusExpired),
				AdminID:   systemActor,
				Timestamp: asOf,
			})
			contract.UpdatedAt = asOf
			changed = true
			return s.contracts.Update(ctx, contract)
		})
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"contract_id": candidate.ID,
				"error":       err.Error(),
			}).Error("Failed to expire provider contract")
			continue
		}
		if changed {
			expired++
		}
	}

	if expired > 0 {
		s.logger.WithFields(logrus.Fields{
			"expired": expired,
			"as_of":   asOf,
		}).Info("Provider contracts expired")
	}
	return expired, nil
}
