package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
)

// PaymentService records settlements against ride bookings and keeps the
// booking's payment status in step with them
type PaymentService struct {
	payments PaymentRepository
	bookings BookingRepository
	tx       Transactor
	currency string
	logger   *logrus.Logger
	now      func() time.Time
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(payments PaymentRepository, bookings BookingRepository, tx Transactor, currency string, logger *logrus.Logger) *PaymentService {
	return &PaymentService{
		payments: payments,
		bookings: bookings,
		tx:       tx,
		currency: currency,
		logger:   logger,
		now:      time.Now,
	}
}

// Create records a pending payment with a fresh transaction id
func (s *PaymentService) Create(ctx context.Context, actor models.Actor, req *models.CreatePaymentRequest) (*models.Payment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var payment *models.Payment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		booking, err := s.bookings.GetByIDForUpdate(ctx, req.BookingID)
		if err != nil {
			return translateNotFound(err, "booking", req.BookingID)
		}
		if err := actor.RequireOwner(booking.CustomerID); err != nil {
			return err
		}
		if booking.Status == models.BookingStatusCancelled {
			return models.InvalidTransition("booking_id", "booking is cancelled")
		}

		now := s.now()
		payment = &models.Payment{
			BookingID:        booking.ID,
			CustomerID:       booking.CustomerID,
			Amount:           req.Amount,
			Currency:         s.currency,
			Method:           models.PaymentMethod(req.Method),
			Status:           models.SettlementPending,
			TransactionID:    models.GenerateTransactionID(now),
			GatewayReference: req.GatewayReference,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.payments.Create(ctx, payment); err != nil {
			return err
		}
		return s.syncBookingPaymentStatus(ctx, *payment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id":     payment.ID,
		"booking_id":     payment.BookingID,
		"transaction_id": payment.TransactionID,
		"amount":         payment.Amount,
	}).Info("Payment recorded")
	return payment, nil
}

// ListByBooking returns the payments of a booking visible to the actor
func (s *PaymentService) ListByBooking(ctx context.Context, actor models.Actor, bookingID string) ([]models.Payment, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, translateNotFound(err, "booking", bookingID)
	}
	if err := actor.RequireOwner(booking.CustomerID); err != nil {
		return nil, err
	}
	return s.payments.ListByBooking(ctx, bookingID)
}

// AdminSetStatus settles, fails or refunds a payment. The payment and its
// booking's payment status are written in one transaction.
func (s *PaymentService) AdminSetStatus(ctx context.Context, actor models.Actor, id string, req *models.PaymentStatusRequest) (*models.Payment, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	target, err := models.ParseSettlementStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var payment *models.Payment
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		payment, err = s.payments.GetByIDForUpdate(ctx, id)
		if err != nil {
			return translateNotFound(err, "payment", id)
		}
		if err := models.ValidateSettlementTransition(payment.Status, target); err != nil {
			return err
		}

		now := s.now()
		payment.Status = target
		switch target {
		case models.SettlementCompleted:
			if payment.CompletedAt == nil {
				payment.CompletedAt = &now
			}
			payment.FailureReason = nil
		case models.SettlementFailed:
			payment.FailureReason = req.FailureReason
		}
		payment.UpdatedAt = now

		if err := s.payments.UpdateStatus(ctx, payment); err != nil {
			return err
		}
		return s.syncBookingPaymentStatus(ctx, *payment)
	})
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"payment_id": id,
			"status":     req.Status,
			"error":      err.Error(),
		}).Warn("Payment status change refused")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id": id,
		"booking_id": payment.BookingID,
		"status":     target,
	}).Info("Payment status changed")
	return payment, nil
}

// syncBookingPaymentStatus recomputes the booking's payment status from every
// payment on it. Must run inside the transaction that wrote latest.
func (s *PaymentService) syncBookingPaymentStatus(ctx context.Context, latest models.Payment) error {
	payments, err := s.payments.ListByBooking(ctx, latest.BookingID)
	if err != nil {
		return err
	}
	status := models.SettledPaymentStatus(payments, latest)
	if err := s.bookings.UpdatePaymentStatus(ctx, latest.BookingID, status); err != nil {
		return translateNotFound(err, "booking", latest.BookingID)
	}
	return nil
}
