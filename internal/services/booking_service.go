package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
	"github.com/smarttransit/fleet-booking-backend/pkg/notify"
)

// BookingService runs the ride booking lifecycle
type BookingService struct {
	bookings BookingRepository
	vehicles VehicleRepository
	tx       Transactor
	notifier Notifier
	rates    map[models.ServiceType]float64
	logger   *logrus.Logger
	now      func() time.Time
}

// NewBookingService creates a new BookingService. rates holds the default
// price per km for each service type, used when no vehicle is chosen.
func NewBookingService(
	bookings BookingRepository,
	vehicles VehicleRepository,
	tx Transactor,
	notifier Notifier,
	rates map[models.ServiceType]float64,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		vehicles: vehicles,
		tx:       tx,
		notifier: notifier,
		rates:    rates,
		logger:   logger,
		now:      time.Now,
	}
}

// Create books a ride for the calling customer. Every booking starts pending
// with a pending payment, whatever the payment method.
func (s *BookingService) Create(ctx context.Context, actor models.Actor, req *models.CreateBookingRequest) (*models.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	serviceType := models.ServiceType(req.ServiceType)
	rate := s.rates[serviceType]
	if req.VehicleID != nil {
		vehicle, err := s.vehicles.GetByID(ctx, *req.VehicleID)
		if err != nil {
			return nil, translateNotFound(err, "vehicle", *req.VehicleID)
		}
		if !vehicle.IsActive {
			return nil, models.NotFound("vehicle", *req.VehicleID)
		}
		if vehicle.PricePerKm > 0 {
			rate = vehicle.PricePerKm
		}
	}

	now := s.now()
	booking := &models.Booking{
		CustomerID:        actor.ID,
		VehicleID:         req.VehicleID,
		ServiceType:       serviceType,
		PickupLocation:    req.PickupLocation,
		DropoffLocation:   req.DropoffLocation,
		PickupDate:        req.PickupDate,
		PickupTime:        req.PickupTime,
		ReturnDate:        req.ReturnDate,
		Passengers:        int(req.Passengers),
		Notes:             req.Notes,
		PaymentMethod:     models.PaymentMethod(req.PaymentMethod),
		Status:            models.BookingStatusPending,
		PaymentStatus:     models.PaymentStatusPending,
		EstimatedDistance: req.EstimatedDistance,
		PricePerUnit:      rate,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	booking.Reprice()

	if err := s.bookings.Create(ctx, booking); err != nil {
		s.logger.WithFields(logrus.Fields{
			"customer_id":  actor.ID,
			"service_type": serviceType,
			"error":        err.Error(),
		}).Error("Failed to create booking")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"customer_id":  actor.ID,
		"service_type": serviceType,
		"total_price":  booking.TotalPrice,
	}).Info("Booking created")
	return booking, nil
}

// Get returns a booking visible to the actor
func (s *BookingService) Get(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "booking", id)
	}
	if err := actor.RequireOwner(booking.CustomerID); err != nil {
		return nil, err
	}
	return booking, nil
}

// ListMine returns the actor's bookings
func (s *BookingService) ListMine(ctx context.Context, actor models.Actor) ([]models.Booking, error) {
	return s.bookings.ListByCustomer(ctx, actor.ID)
}

// List returns all bookings, optionally filtered by status
func (s *BookingService) List(ctx context.Context, actor models.Actor, status string) ([]models.Booking, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if status == "" {
		return s.bookings.List(ctx, nil)
	}
	parsed, err := models.ParseBookingStatus(status)
	if err != nil {
		return nil, err
	}
	return s.bookings.List(ctx, &parsed)
}

// CustomerUpdate changes the allow-listed fields of the actor's own pending booking
func (s *BookingService) CustomerUpdate(ctx context.Context, actor models.Actor, id string, update *models.BookingCustomerUpdate) (*models.Booking, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	var booking *models.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.ownPendingBooking(ctx, actor, id)
		if err != nil {
			return err
		}
		if err := update.ValidateDates(booking); err != nil {
			return err
		}
		update.ApplyTo(booking)
		booking.UpdatedAt = s.now()
		return s.bookings.Update(ctx, booking)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// CustomerDelete removes the actor's own pending booking
func (s *BookingService) CustomerDelete(ctx context.Context, actor models.Actor, id string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.ownPendingBooking(ctx, actor, id); err != nil {
			return err
		}
		return s.bookings.Delete(ctx, id)
	})
}

func (s *BookingService) ownPendingBooking(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	booking, err := s.bookings.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "booking", id)
	}
	if err := actor.RequireStrictOwner(booking.CustomerID); err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusPending {
		return nil, models.InvalidTransition("status", fmt.Sprintf("booking is %s; only pending bookings can be changed", booking.Status))
	}
	return booking, nil
}

// AdminSetStatus moves a booking through its lifecycle. Confirming a booking
// notifies the customer after the change is committed.
func (s *BookingService) AdminSetStatus(ctx context.Context, actor models.Actor, id, status string, reason *string) (*models.Booking, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	target, err := models.ParseBookingStatus(status)
	if err != nil {
		return nil, err
	}

	var (
		booking  *models.Booking
		previous models.BookingStatus
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.bookings.GetByIDForUpdate(ctx, id)
		if err != nil {
			return translateNotFound(err, "booking", id)
		}
		if err := models.ValidateBookingTransition(booking.Status, target); err != nil {
			return err
		}
		previous = booking.Status
		booking.Status = target
		if reason != nil {
			booking.StatusReason = reason
		}
		booking.UpdatedAt = s.now()
		return s.bookings.Update(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": id,
		"admin_id":   actor.ID,
		"from":       previous,
		"to":         target,
	}).Info("Booking status changed")

	if target == models.BookingStatusConfirmed && previous != models.BookingStatusConfirmed {
		s.notifier.Send(notify.Notification{
			RecipientID:        booking.CustomerID,
			Kind:               notify.KindBookingConfirmed,
			Title:              "Booking confirmed",
			Message:            fmt.Sprintf("Your %s booking for %s has been confirmed", booking.ServiceType, booking.Schedule()),
			CorrelatedEntityID: booking.ID,
		})
	}
	return booking, nil
}

// AdminSetPricing writes the pricing inputs and admin override of a booking.
// A positive override becomes the total immediately; confirming locks it.
func (s *BookingService) AdminSetPricing(ctx context.Context, actor models.Actor, id string, req *models.BookingPricingRequest) (*models.Booking, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var booking *models.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.bookings.GetByIDForUpdate(ctx, id)
		if err != nil {
			return translateNotFound(err, "booking", id)
		}
		if req.EstimatedDistance != nil {
			booking.EstimatedDistance = *req.EstimatedDistance
		}
		if req.PricePerKm != nil {
			booking.PricePerUnit = *req.PricePerKm
		}
		booking.Reprice()

		now := s.now()
		if err := booking.Apply(req.OverridePrice, req.Confirmed, now); err != nil {
			return err
		}
		booking.TotalPrice = booking.Authoritative()
		booking.UpdatedAt = now
		return s.bookings.Update(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":  id,
		"admin_id":    actor.ID,
		"total_price": booking.TotalPrice,
		"confirmed":   booking.IsPriceConfirmed,
	}).Info("Booking pricing updated")
	return booking, nil
}
