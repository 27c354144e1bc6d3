package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
)

// RentalHandler handles vehicle rental endpoints
type RentalHandler struct {
	rentals RentalManager
	audit   AuditRecorder
	logger  *logrus.Logger
}

// NewRentalHandler creates a new RentalHandler
func NewRentalHandler(rentals RentalManager, audit AuditRecorder, logger *logrus.Logger) *RentalHandler {
	return &RentalHandler{rentals: rentals, audit: audit, logger: logger}
}

// CreateRental requests a vehicle rental for the caller
// POST /api/v1/rentals
func (h *RentalHandler) CreateRental(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.CreateRentalRequest
	if !bindJSON(c, &req) {
		return
	}

	rental, err := h.rentals.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, h.logger, err, "create_rental", logrus.Fields{"vehicle_id": req.VehicleID, "customer_id": actor.ID})
		return
	}
	c.JSON(http.StatusCreated, rental)
}

// ListMyRentals returns the caller's rentals
// GET /api/v1/rentals
func (h *RentalHandler) ListMyRentals(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	rentals, err := h.rentals.ListMine(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err, "list_my_rentals", logrus.Fields{"customer_id": actor.ID})
		return
	}
	c.JSON(http.StatusOK, rentals)
}

// GetRental returns one rental the caller may see
// GET /api/v1/rentals/:id
func (h *RentalHandler) GetRental(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id := c.Param("id")
	rental, err := h.rentals.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err, "get_rental", logrus.Fields{"rental_id": id})
		return
	}
	c.JSON(http.StatusOK, rental)
}

// AdminListRentals returns all rentals, optionally by status
// GET /api/v1/admin/rentals?status=approved
func (h *RentalHandler) AdminListRentals(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	status := c.Query("status")
	rentals, err := h.rentals.List(c.Request.Context(), actor, status)
	if err != nil {
		respondError(c, h.logger, err, "admin_list_rentals", logrus.Fields{"status": status})
		return
	}
	c.JSON(http.StatusOK, rentals)
}

// AdminSetRentalStatus approves, activates, completes, rejects or cancels a
// rental. Approval reserves the vehicle and fails with 409 when it is taken.
// PUT /api/v1/admin/rentals/:id/status
func (h *RentalHandler) AdminSetRentalStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.RentalStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	id := c.Param("id")
	rental, err := h.rentals.AdminSetStatus(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, h.logger, err, "admin_set_rental_status", logrus.Fields{"rental_id": id, "status": req.Status})
		return
	}

	recordAdminAction(c, h.audit, actor, "rental_status", "rental", id, map[string]interface{}{
		"status":      rental.Status,
		"vehicle_id":  rental.VehicleID,
		"contract_id": rental.ContractID,
	})
	c.JSON(http.StatusOK, rental)
}

// AdminUpdateRental edits rental details
// PUT /api/v1/admin/rentals/:id
func (h *RentalHandler) AdminUpdateRental(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.RentalAdminUpdate
	if !bindJSON(c, &req) {
		return
	}

	id := c.Param("id")
	rental, err := h.rentals.AdminUpdate(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, h.logger, err, "admin_update_rental", logrus.Fields{"rental_id": id})
		return
	}

	recordAdminAction(c, h.audit, actor, "rental_updated", "rental", id, nil)
	c.JSON(http.StatusOK, rental)
}

// AdminDeleteRental removes a rental that does not hold its vehicle
// DELETE /api/v1/admin/rentals/:id
func (h *RentalHandler) AdminDeleteRental(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := h.rentals.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.logger, err, "admin_delete_rental", logrus.Fields{"rental_id": id})
		return
	}

	recordAdminAction(c, h.audit, actor, "rental_deleted", "rental", id, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Rental deleted"})
}
