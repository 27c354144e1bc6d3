package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/internal/database"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
)

// VehicleService manages the fleet. Occupancy is owned by the ResourceRegistry.
type VehicleService struct {
	vehicles VehicleRepository
	registry *ResourceRegistry
	logger   *logrus.Logger
}

// NewVehicleService creates a new VehicleService
func NewVehicleService(vehicles VehicleRepository, registry *ResourceRegistry, logger *logrus.Logger) *VehicleService {
	return &VehicleService{
		vehicles: vehicles,
		registry: registry,
		logger:   logger,
	}
}

// Create registers a vehicle. New vehicles are active and free.
func (s *VehicleService) Create(ctx context.Context, actor models.Actor, req *models.CreateVehicleRequest) (*models.Vehicle, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, models.ValidationFailed("", err.Error())
	}

	vehicle := &models.Vehicle{
		Name:               req.Name,
		Category:           models.VehicleCategory(req.Category),
		RegistrationNumber: req.RegistrationNumber,
		Capacity:           req.Capacity,
		PricePerKm:         req.PricePerKm,
		DailyRate:          req.DailyRate,
		MonthlyRate:        req.MonthlyRate,
		IsAvailable:        true,
		IsActive:           true,
	}
	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"vehicle_id":   vehicle.ID,
		"registration": vehicle.RegistrationNumber,
		"admin_id":     actor.ID,
	}).Info("Vehicle registered")
	return vehicle, nil
}

// Get returns a vehicle
func (s *VehicleService) Get(ctx context.Context, id string) (*models.Vehicle, error) {
	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "vehicle", id)
	}
	return vehicle, nil
}

// List returns active vehicles. Admins may include retired ones.
func (s *VehicleService) List(ctx context.Context, actor models.Actor, availableOnly, includeInactive bool) ([]models.Vehicle, error) {
	return s.vehicles.List(ctx, database.VehicleFilter{
		AvailableOnly:   availableOnly,
		IncludeInactive: includeInactive && actor.IsAdmin(),
	})
}

// Update changes a vehicle's details and rates
func (s *VehicleService) Update(ctx context.Context, actor models.Actor, id string, req *models.UpdateVehicleRequest) (*models.Vehicle, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, models.ValidationFailed("", err.Error())
	}

	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "vehicle", id)
	}
	req.ApplyTo(vehicle)
	if err := s.vehicles.Update(ctx, vehicle); err != nil {
		return nil, translateNotFound(err, "vehicle", id)
	}
	return vehicle, nil
}

// Retire soft-deletes a vehicle that no rental holds
func (s *VehicleService) Retire(ctx context.Context, actor models.Actor, id string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	if err := s.registry.Retire(ctx, id); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"vehicle_id": id,
		"admin_id":   actor.ID,
	}).Info("Vehicle retired")
	return nil
}

// Availability reports whether the vehicle can be rented over the window
func (s *VehicleService) Availability(ctx context.Context, id string, start, end time.Time) (bool, error) {
	window := models.Window{Start: start, End: end}
	if !window.Valid() {
		return false, models.ValidationFailed("end", "must be after start")
	}
	return s.registry.IsFree(ctx, id, "", window)
}
