package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
	"github.com/smarttransit/fleet-booking-backend/pkg/notify"
)

// RentalService runs rental requests and the vehicle occupancy they drive
type RentalService struct {
	rentals  RentalRepository
	vehicles VehicleRepository
	registry *ResourceRegistry
	tx       Transactor
	notifier Notifier
	logger   *logrus.Logger
	now      func() time.Time
}

// NewRentalService creates a new RentalService
func NewRentalService(
	rentals RentalRepository,
	vehicles VehicleRepository,
	registry *ResourceRegistry,
	tx Transactor,
	notifier Notifier,
	logger *logrus.Logger,
) *RentalService {
	return &RentalService{
		rentals:  rentals,
		vehicles: vehicles,
		registry: registry,
		tx:       tx,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Create requests a rental of an active vehicle. Rates are taken from the
// vehicle at request time.
func (s *RentalService) Create(ctx context.Context, actor models.Actor, req *models.CreateRentalRequest) (*models.Rental, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	rentalType, _ := models.ParseRentalType(req.RentalType)

	vehicle, err := s.activeVehicle(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	window := models.Window{Start: req.StartDate, End: req.EndDate}
	if !vehicle.FreeFor("", window) {
		return nil, models.ResourceConflict(fmt.Sprintf("vehicle %s is occupied for the requested dates", vehicle.ID))
	}

	now := s.now()
	rental := &models.Rental{
		CustomerID:  actor.ID,
		VehicleID:   vehicle.ID,
		RentalType:  rentalType,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		DailyRate:   vehicle.DailyRate,
		MonthlyRate: vehicle.MonthlyRate,
		Purpose:     req.Purpose,
		Status:      models.RentalStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	rental.Reprice()

	if err := s.rentals.Create(ctx, rental); err != nil {
		s.logger.WithFields(logrus.Fields{
			"customer_id": actor.ID,
			"vehicle_id":  vehicle.ID,
			"error":       err.Error(),
		}).Error("Failed to create rental")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"rental_id":    rental.ID,
		"vehicle_id":   rental.VehicleID,
		"duration":     rental.Duration,
		"total_amount": rental.TotalAmount,
	}).Info("Rental requested")
	return rental, nil
}

// Get returns a rental visible to the actor
func (s *RentalService) Get(ctx context.Context, actor models.Actor, id string) (*models.Rental, error) {
	rental, err := s.rentals.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "rental", id)
	}
	if err := actor.RequireOwner(rental.CustomerID); err != nil {
		return nil, err
	}
	return rental, nil
}

// ListMine returns the actor's rentals
func (s *RentalService) ListMine(ctx context.Context, actor models.Actor) ([]models.Rental, error) {
	return s.rentals.ListByCustomer(ctx, actor.ID)
}

// List returns all rentals, optionally filtered by status
func (s *RentalService) List(ctx context.Context, actor models.Actor, status string) ([]models.Rental, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if status == "" {
		return s.rentals.List(ctx, nil)
	}
	parsed, err := models.ParseRentalStatus(status)
	if err != nil {
		return nil, err
	}
	return s.rentals.List(ctx, &parsed)
}

// AdminSetStatus moves a rental through its lifecycle. Entering approved or
// active reserves the vehicle, entering completed, cancelled or rejected
// releases it. The status write and the occupancy change commit together.
func (s *RentalService) AdminSetStatus(ctx context.Context, actor models.Actor, id string, req *models.RentalStatusRequest) (*models.Rental, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	target, err := models.ParseRentalStatus(req.Status)
	if err != nil {
		return nil, err
	}
	if req.Fees != nil && *req.Fees < 0 {
		return nil, models.ValidationFailed("fees", "must not be negative")
	}

	var (
		rental   *models.Rental
		previous models.RentalStatus
	)
	err = s.withRentalLock(ctx, id, func(ctx context.Context, locked *models.Rental) error {
		rental = locked
		if err := models.ValidateRentalTransition(rental.Status, target); err != nil {
			return err
		}
		previous = rental.Status
		now := s.now()

		switch {
		case target.HoldsVehicle():
			if err := s.registry.Reserve(ctx, rental.VehicleID, rental.ID, rental.Window()); err != nil {
				return err
			}
		case target.ReleasesVehicle():
			if err := s.registry.Release(ctx, rental.VehicleID, rental.ID); err != nil {
				return err
			}
		}

		if err := rental.Apply(req.Fees, target == models.RentalStatusApproved, now); err != nil {
			return err
		}
		if target == models.RentalStatusApproved {
			rental.AssignContractID(now)
		}
		if req.Notes != nil {
			rental.AdminNotes = req.Notes
		}
		rental.Status = target
		rental.TotalAmount = rental.Authoritative()
		rental.UpdatedAt = now
		return s.rentals.Update(ctx, rental)
	})
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"rental_id": id,
			"admin_id":  actor.ID,
			"status":    target,
			"error":     err.Error(),
		}).Warn("Rental status change refused")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"rental_id":   id,
		"vehicle_id":  rental.VehicleID,
		"admin_id":    actor.ID,
		"from":        previous,
		"to":          target,
		"contract_id": rental.ContractID,
	}).Info("Rental status changed")

	if target != previous {
		s.notifier.Send(notify.Notification{
			RecipientID:        rental.CustomerID,
			Kind:               notify.KindRentalStatusChanged,
			Title:              "Rental " + string(target),
			Message:            fmt.Sprintf("Your rental from %s to %s is now %s", rental.StartDate.Format("2006-01-02"), rental.EndDate.Format("2006-01-02"), target),
			CorrelatedEntityID: rental.ID,
		})
	}
	return rental, nil
}

// AdminUpdate changes rental details. It never reserves a vehicle; the
// vehicle and dates of an approved or active rental are fixed.
func (s *RentalService) AdminUpdate(ctx context.Context, actor models.Actor, id string, update *models.RentalAdminUpdate) (*models.Rental, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var rental *models.Rental
	err := s.withRentalLock(ctx, id, func(ctx context.Context, locked *models.Rental) error {
		rental = locked
		if rental.Status.HoldsVehicle() && update.ChangesOccupancy(rental) {
			return models.InvalidTransition("vehicle_id", fmt.Sprintf("vehicle and dates cannot change while the rental is %s", rental.Status))
		}
		if err := update.Validate(rental); err != nil {
			return err
		}

		if update.VehicleID != nil && *update.VehicleID != rental.VehicleID {
			vehicle, err := s.activeVehicle(ctx, *update.VehicleID)
			if err != nil {
				return err
			}
			if update.DailyRate == nil {
				rental.DailyRate = vehicle.DailyRate
			}
			if update.MonthlyRate == nil {
				rental.MonthlyRate = vehicle.MonthlyRate
			}
		}

		update.ApplyTo(rental)
		rental.UpdatedAt = s.now()
		return s.rentals.Update(ctx, rental)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"rental_id":  id,
		"vehicle_id": rental.VehicleID,
		"admin_id":   actor.ID,
	}).Info("Rental updated")
	return rental, nil
}

// Delete removes a rental. Rentals that hold their vehicle must be completed
// or cancelled first.
func (s *RentalService) Delete(ctx context.Context, actor models.Actor, id string) error {
	err := s.withRentalLock(ctx, id, func(ctx context.Context, rental *models.Rental) error {
		if err := actor.RequireOwner(rental.CustomerID); err != nil {
			return err
		}
		if !actor.IsAdmin() && rental.Status != models.RentalStatusPending {
			return models.InvalidTransition("status", "only pending rentals can be withdrawn")
		}
		if rental.Status.HoldsVehicle() {
			return models.InvalidTransition("status", fmt.Sprintf("rental is %s; complete or cancel it before deleting", rental.Status))
		}
		return s.rentals.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"rental_id": id,
		"actor_id":  actor.ID,
	}).Info("Rental deleted")
	return nil
}

// withRentalLock holds the lock of the rental's vehicle and runs fn inside a
// transaction with the rental row locked
func (s *RentalService) withRentalLock(ctx context.Context, id string, fn func(ctx context.Context, rental *models.Rental) error) error {
	current, err := s.rentals.GetByID(ctx, id)
	if err != nil {
		return translateNotFound(err, "rental", id)
	}
	vehicleID := current.VehicleID

	return s.registry.WithVehicleLock(ctx, vehicleID, func() error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			rental, err := s.rentals.GetByIDForUpdate(ctx, id)
			if err != nil {
				return translateNotFound(err, "rental", id)
			}
			if rental.VehicleID != vehicleID {
				return models.ResourceConflict(fmt.Sprintf("rental %s was reassigned concurrently; retry", id))
			}
			return fn(ctx, rental)
		})
	})
}

func (s *RentalService) activeVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "vehicle", id)
	}
	if !vehicle.IsActive {
		return nil, models.NotFound("vehicle", id)
	}
	return vehicle, nil
}
