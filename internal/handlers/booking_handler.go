package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
)

// BookingHandler handles ride booking endpoints
type BookingHandler struct {
	bookings BookingManager
	audit    AuditRecorder
	logger   *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookings BookingManager, audit AuditRecorder, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, audit: audit, logger: logger}
}

// CreateBooking books a ride for the caller
// POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	booking, err := h.bookings.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, h.logger, err, "create_booking", logrus.Fields{"customer_id": actor.ID})
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// ListMyBookings returns the caller's bookings
// GET /api/v1/bookings
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	bookings, err := h.bookings.ListMine(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err, "list_my_bookings", logrus.Fields{"customer_id": actor.ID})
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// GetBooking returns one booking the caller may see
// GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id := c.Param("id")
	booking, err := h.bookings.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err, "get_booking", logrus.Fields{"booking_id": id})
		return
	}
	c.JSON(http.StatusOK, booking)
}

// UpdateBooking changes a pending booking owned by the caller
// PUT /api/v1/bookings/:id
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.BookingCustomerUpdate
	if !bindJSON(c, &req) {
		return
	}

	id := c.Param("id")
	booking, err := h.bookings.CustomerUpdate(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, h.logger, err, "update_booking", logrus.Fields{"booking_id": id})
		return
	}
	c.JSON(http.StatusOK, booking)
}

// DeleteBooking removes a pending booking owned by the caller
// DELETE /api/v1/bookings/:id
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := h.bookings.CustomerDelete(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.logger, err, "delete_booking", logrus.Fields{"booking_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted"})
}

// AdminListBookings returns all bookings, optionally by status
// GET /api/v1/admin/bookings?status=pending
func (h *BookingHandler) AdminListBookings(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	status := c.Query("status")
	bookings, err := h.bookings.List(c.Request.Context(), actor, status)
	if err != nil {
		respondError(c, h.logger, err, "admin_list_bookings", logrus.Fields{"status": status})
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// AdminSetBookingStatus moves a booking through its lifecycle
// PUT /api/v1/admin/bookings/:id/status
func (h *BookingHandler) AdminSetBookingStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.BookingStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	id := c.Param("id")
	booking, err := h.bookings.AdminSetStatus(c.Request.Context(), actor, id, req.Status, req.Reason)
	if err != nil {
		respondError(c, h.logger, err, "admin_set_booking_status", logrus.Fields{"booking_id": id, "status": req.Status})
		return
	}

	recordAdminAction(c, h.audit, actor, "booking_status", "booking", id, map[string]interface{}{
		"status": booking.Status,
		"reason": req.Reason,
	})
	c.JSON(http.StatusOK, booking)
}

// AdminSetBookingPricing adjusts or confirms a booking's price
// PUT /api/v1/admin/bookings/:id/pricing
func (h *BookingHandler) AdminSetBookingPricing(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.BookingPricingRequest
	if !bindJSON(c, &req) {
		return
	}

	id := c.Param("id")
	booking, err := h.bookings.AdminSetPricing(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, h.logger, err, "admin_set_booking_pricing", logrus.Fields{"booking_id": id})
		return
	}

	recordAdminAction(c, h.audit, actor, "booking_pricing", "booking", id, map[string]interface{}{
		"total_price": booking.TotalPrice,
		"confirmed":   req.Confirmed,
	})
	c.JSON(http.StatusOK, booking)
}
