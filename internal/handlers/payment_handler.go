package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
)

// PaymentHandler handles booking payment endpoints
type PaymentHandler struct {
	payments PaymentManager
	audit    AuditRecorder
	logger   *logrus.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments PaymentManager, audit AuditRecorder, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, audit: audit, logger: logger}
}

// CreatePayment records a payment attempt against the caller's booking
// POST /api/v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.CreatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	payment, err := h.payments.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, h.logger, err, "create_payment", logrus.Fields{"booking_id": req.BookingID})
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// ListBookingPayments returns the payments made against a booking
// GET /api/v1/payments/booking/:bookingId
func (h *PaymentHandler) ListBookingPayments(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	bookingID := c.Param("bookingId")
	payments, err := h.payments.ListByBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		respondError(c, h.logger, err, "list_booking_payments", logrus.Fields{"booking_id": bookingID})
		return
	}
	c.JSON(http.StatusOK, payments)
}

// AdminSetPaymentStatus settles, fails, retries or refunds a payment
// PUT /api/v1/admin/payments/:id/status
func (h *PaymentHandler) AdminSetPaymentStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.PaymentStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	id := c.Param("id")
	payment, err := h.payments.AdminSetStatus(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, h.logger, err, "admin_set_payment_status", logrus.Fields{"payment_id": id, "status": req.Status})
		return
	}

	recordAdminAction(c, h.audit, actor, "payment_status", "payment", id, map[string]interface{}{
		"status":     payment.Status,
		"booking_id": payment.BookingID,
	})
	c.JSON(http.StatusOK, payment)
}
