package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
)

// VehicleHandler handles fleet vehicle endpoints
type VehicleHandler struct {
	vehicles VehicleManager
	audit    AuditRecorder
	logger   *logrus.Logger
}

// NewVehicleHandler creates a new VehicleHandler
func NewVehicleHandler(vehicles VehicleManager, audit AuditRecorder, logger *logrus.Logger) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles, audit: audit, logger: logger}
}

// ListVehicles returns the fleet
// GET /api/v1/vehicles?available=true&include_inactive=true
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	availableOnly := c.Query("available") == "true"
	includeInactive := c.Query("include_inactive") == "true"

	vehicles, err := h.vehicles.List(c.Request.Context(), actor, availableOnly, includeInactive)
	if err != nil {
		respondError(c, h.logger, err, "list_vehicles", logrus.Fields{"available": availableOnly})
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

// GetVehicle returns one vehicle
// GET /api/v1/vehicles/:id
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	id := c.Param("id")
	vehicle, err := h.vehicles.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "get_vehicle", logrus.Fields{"vehicle_id": id})
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// GetAvailability reports whether a vehicle is free for a date window
// GET /api/v1/vehicles/:id/availability?start=2025-04-01&end=2025-04-05
func (h *VehicleHandler) GetAvailability(c *gin.Context) {
	id := c.Param("id")

	start, err := parseDateParam(c, "start")
	if err != nil {
		respondError(c, h.logger, err, "vehicle_availability", nil)
		return
	}
	end, err := parseDateParam(c, "end")
	if err != nil {
		respondError(c, h.logger, err, "vehicle_availability", nil)
		return
	}
	if start == nil || end == nil {
		respondError(c, h.logger, models.ValidationFailed("start", "start and end are required"), "vehicle_availability", nil)
		return
	}

	available, err := h.vehicles.Availability(c.Request.Context(), id, *start, *end)
	if err != nil {
		respondError(c, h.logger, err, "vehicle_availability", logrus.Fields{"vehicle_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"vehicle_id": id,
		"start":      start,
		"end":        end,
		"available":  available,
	})
}

// CreateVehicle adds a vehicle to the fleet (admin)
// POST /api/v1/vehicles
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.CreateVehicleRequest
	if !bindJSON(c, &req) {
		return
	}

	vehicle, err := h.vehicles.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, h.logger, err, "create_vehicle", logrus.Fields{"registration_number": req.RegistrationNumber})
		return
	}

	recordAdminAction(c, h.audit, actor, "vehicle_created", "vehicle", vehicle.ID, nil)
	c.JSON(http.StatusCreated, vehicle)
}

// UpdateVehicle changes vehicle details or rates (admin)
// PUT /api/v1/vehicles/:id
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.UpdateVehicleRequest
	if !bindJSON(c, &req) {
		return
	}

	id := c.Param("id")
	vehicle, err := h.vehicles.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, h.logger, err, "update_vehicle", logrus.Fields{"vehicle_id": id})
		return
	}

	recordAdminAction(c, h.audit, actor, "vehicle_updated", "vehicle", id, nil)
	c.JSON(http.StatusOK, vehicle)
}

// RetireVehicle soft-deletes a vehicle (admin)
// DELETE /api/v1/vehicles/:id
func (h *VehicleHandler) RetireVehicle(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := h.vehicles.Retire(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.logger, err, "retire_vehicle", logrus.Fields{"vehicle_id": id})
		return
	}

	recordAdminAction(c, h.audit, actor, "vehicle_retired", "vehicle", id, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Vehicle retired"})
}
