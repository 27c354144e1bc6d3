package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
)

// TourHandler handles tour package and tour booking endpoints
type TourHandler struct {
	tours  TourManager
	audit  AuditRecorder
	logger *logrus.Logger
}

// NewTourHandler creates a new TourHandler
func NewTourHandler(tours TourManager, audit AuditRecorder, logger *logrus.Logger) *TourHandler {
	return &TourHandler{tours: tours, audit: audit, logger: logger}
}

// ListPackages returns bookable tour packages; admins also see inactive ones
// GET /api/v1/tour-packages
func (h *TourHandler) ListPackages(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	packages, err := h.tours.ListPackages(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err, "list_tour_packages", nil)
		return
	}
	c.JSON(http.StatusOK, packages)
}

// CreatePackage adds a tour package (admin)
// POST /api/v1/tour-packages
func (h *TourHandler) CreatePackage(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.TourPackageRequest
	if !bindJSON(c, &req) {
		return
	}

	pkg, err := h.tours.CreatePackage(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, h.logger, err, "create_tour_package", logrus.Fields{"name": req.Name})
		return
	}

	recordAdminAction(c, h.audit, actor, "tour_package_created", "tour_package", pkg.ID, nil)
	c.JSON(http.StatusCreated, pkg)
}

// UpdatePackage replaces a tour package's details (admin)
// PUT /api/v1/tour-packages/:id
func (h *TourHandler) UpdatePackage(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.TourPackageRequest
	if !bindJSON(c, &req) {
		return
	}

	id := c.Param("id")
	pkg, err := h.tours.UpdatePackage(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, h.logger, err, "update_tour_package", logrus.Fields{"package_id": id})
		return
	}

	recordAdminAction(c, h.audit, actor, "tour_package_updated", "tour_package", id, nil)
	c.JSON(http.StatusOK, pkg)
}

// CreateTourBooking books a tour package for the caller
// POST /api/v1/tour-bookings
func (h *TourHandler) CreateTourBooking(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.CreateTourBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	booking, err := h.tours.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, h.logger, err, "create_tour_booking", logrus.Fields{"package_id": req.PackageID, "customer_id": actor.ID})
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// ListMyTourBookings returns the caller's tour bookings
// GET /api/v1/tour-bookings
func (h *TourHandler) ListMyTourBookings(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	bookings, err := h.tours.ListMine(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err, "list_my_tour_bookings", logrus.Fields{"customer_id": actor.ID})
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// GetTourBooking returns one tour booking the caller may see
// GET /api/v1/tour-bookings/:id
func (h *TourHandler) GetTourBooking(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id := c.Param("id")
	booking, err := h.tours.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err, "get_tour_booking", logrus.Fields{"tour_booking_id": id})
		return
	}
	c.JSON(http.StatusOK, booking)
}

// CancelTourBooking cancels the caller's pending tour booking
// POST /api/v1/tour-bookings/:id/cancel
func (h *TourHandler) CancelTourBooking(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id := c.Param("id")
	booking, err := h.tours.Cancel(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err, "cancel_tour_booking", logrus.Fields{"tour_booking_id": id})
		return
	}
	c.JSON(http.StatusOK, booking)
}

// AdminListTourBookings returns all tour bookings, optionally by status
// GET /api/v1/admin/tour-bookings?status=pending
func (h *TourHandler) AdminListTourBookings(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	status := c.Query("status")
	bookings, err := h.tours.List(c.Request.Context(), actor, status)
	if err != nil {
		respondError(c, h.logger, err, "admin_list_tour_bookings", logrus.Fields{"status": status})
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// AdminSetTourStatus confirms, rejects, completes or cancels a tour booking
// PUT /api/v1/admin/tour-bookings/:id/status
func (h *TourHandler) AdminSetTourStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.TourStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	id := c.Param("id")
	booking, err := h.tours.AdminSetStatus(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, h.logger, err, "admin_set_tour_status", logrus.Fields{"tour_booking_id": id, "status": req.Status})
		return
	}

	recordAdminAction(c, h.audit, actor, "tour_booking_status", "tour_booking", id, map[string]interface{}{
		"status":      booking.Status,
		"final_price": req.FinalPrice,
	})
	c.JSON(http.StatusOK, booking)
}

// AdminRecordTourPayment records money received against a tour booking
// POST /api/v1/admin/tour-bookings/:id/payments
func (h *TourHandler) AdminRecordTourPayment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.RecordPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	id := c.Param("id")
	booking, err := h.tours.RecordPayment(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, h.logger, err, "admin_record_tour_payment", logrus.Fields{"tour_booking_id": id, "amount": req.Amount})
		return
	}

	recordAdminAction(c, h.audit, actor, "tour_payment_recorded", "tour_booking", id, map[string]interface{}{
		"amount": req.Amount,
	})
	c.JSON(http.StatusOK, booking)
}
