package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
	"github.com/smarttransit/fleet-booking-backend/pkg/notify"
	"github.com/smarttransit/fleet-booking-backend/pkg/validator"
)

// TourBookingService runs tour packages and tour bookings
type TourBookingService struct {
	tours    TourRepository
	tx       Transactor
	notifier Notifier
	phones   *validator.PhoneValidator
	logger   *logrus.Logger
	now      func() time.Time
}

// NewTourBookingService creates a new TourBookingService
func NewTourBookingService(tours TourRepository, tx Transactor, notifier Notifier, logger *logrus.Logger) *TourBookingService {
	return &TourBookingService{
		tours:    tours,
		tx:       tx,
		notifier: notifier,
		phones:   validator.NewPhoneValidator(),
		logger:   logger,
		now:      time.Now,
	}
}

// ============================================================================
// PACKAGES
// ============================================================================

// CreatePackage adds a tour package
func (s *TourBookingService) CreatePackage(ctx context.Context, actor models.Actor, req *models.TourPackageRequest) (*models.TourPackage, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pkg := &models.TourPackage{IsActive: true}
	applyPackageRequest(pkg, req)
	if err := s.tours.CreatePackage(ctx, pkg); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"package_id": pkg.ID,
		"admin_id":   actor.ID,
	}).Info("Tour package created")
	return pkg, nil
}

// UpdatePackage replaces a tour package's details. Existing bookings keep
// the price they were quoted.
func (s *TourBookingService) UpdatePackage(ctx context.Context, actor models.Actor, id string, req *models.TourPackageRequest) (*models.TourPackage, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pkg, err := s.tours.GetPackage(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "tour package", id)
	}
	applyPackageRequest(pkg, req)
	if err := s.tours.UpdatePackage(ctx, pkg); err != nil {
		return nil, translateNotFound(err, "tour package", id)
	}
	return pkg, nil
}

func applyPackageRequest(pkg *models.TourPackage, req *models.TourPackageRequest) {
	pkg.Name = req.Name
	pkg.Destination = req.Destination
	pkg.TourDays = req.TourDays
	pkg.PricePerPerson = req.PricePerPerson
	pkg.MaxPassengers = req.MaxPassengers
	pkg.Inclusions = models.StringArray(req.Inclusions)
	if req.IsActive != nil {
		pkg.IsActive = *req.IsActive
	}
}

// GetPackage returns a tour package
func (s *TourBookingService) GetPackage(ctx context.Context, id string) (*models.TourPackage, error) {
	pkg, err := s.tours.GetPackage(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "tour package", id)
	}
	return pkg, nil
}

// ListPackages returns tour packages. Only admins see inactive ones.
func (s *TourBookingService) ListPackages(ctx context.Context, actor models.Actor) ([]models.TourPackage, error) {
	return s.tours.ListPackages(ctx, !actor.IsAdmin())
}

// ============================================================================
// BOOKINGS
// ============================================================================

// Create books a tour package for the calling customer. The quoted price is
// passengers × price per person × tour days.
func (s *TourBookingService) Create(ctx context.Context, actor models.Actor, req *models.CreateTourBookingRequest) (*models.TourBooking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	method, _ := models.ParseTourPaymentMethod(req.PaymentMethod)
	count := int(req.NumberOfPassengers)

	pkg, err := s.tours.GetPackage(ctx, req.PackageID)
	if err != nil {
		return nil, translateNotFound(err, "tour package", req.PackageID)
	}
	if !pkg.IsActive {
		return nil, models.NotFound("tour package", req.PackageID)
	}
	if pkg.MaxPassengers > 0 && count > pkg.MaxPassengers {
		return nil, models.ValidationFailed("number_of_passengers", fmt.Sprintf("package allows at most %d passengers", pkg.MaxPassengers))
	}

	roster := req.Roster()
	for i := range roster {
		if roster[i].Phone == nil || *roster[i].Phone == "" {
			continue
		}
		phone, err := s.phones.Validate(*roster[i].Phone)
		if err != nil {
			return nil, models.ValidationFailed(fmt.Sprintf("passengers[%d].phone", i), err.Error())
		}
		roster[i].Phone = &phone
	}

	now := s.now()
	booking := &models.TourBooking{
		CustomerID:         actor.ID,
		PackageID:          pkg.ID,
		BookingDate:        req.BookingDate,
		NumberOfPassengers: count,
		Passengers:         roster,
		Pricing:            models.NewTourPricing(count, pkg.PricePerPerson, pkg.TourDays),
		Payment:            models.TourPayment{Method: method},
		Status:             models.TourStatusPending,
		AdminActions:       models.AdminActionLog{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	booking.Payment.Recompute(booking.Pricing.FinalPrice)

	if err := s.tours.CreateBooking(ctx, booking); err != nil {
		s.logger.WithFields(logrus.Fields{
			"customer_id": actor.ID,
			"package_id":  pkg.ID,
			"error":       err.Error(),
		}).Error("Failed to create tour booking")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tour_booking_id": booking.ID,
		"package_id":      pkg.ID,
		"passengers":      count,
		"base_price":      booking.Pricing.BasePrice,
	}).Info("Tour booking created")
	return booking, nil
}

// Get returns a tour booking visible to the actor
func (s *TourBookingService) Get(ctx context.Context, actor models.Actor, id string) (*models.TourBooking, error) {
	booking, err := s.tours.GetBooking(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "tour booking", id)
	}
	if err := actor.RequireOwner(booking.CustomerID); err != nil {
		return nil, err
	}
	return booking, nil
}

// ListMine returns the actor's tour bookings
func (s *TourBookingService) ListMine(ctx context.Context, actor models.Actor) ([]models.TourBooking, error) {
	return s.tours.ListBookingsByCustomer(ctx, actor.ID)
}

// List returns all tour bookings, optionally filtered by status
func (s *TourBookingService) List(ctx context.Context, actor models.Actor, status string) ([]models.TourBooking, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if status == "" {
		return s.tours.ListBookings(ctx, nil)
	}
	parsed, err := models.ParseTourBookingStatus(status)
	if err != nil {
		return nil, err
	}
	return s.tours.ListBookings(ctx, &parsed)
}

// AdminSetStatus changes a tour booking's status and optionally confirms its
// final price. Every call appends one admin action.
func (s *TourBookingService) AdminSetStatus(ctx context.Context, actor models.Actor, id string, req *models.TourStatusRequest) (*models.TourBooking, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	target, err := models.ParseTourBookingStatus(req.Status)
	if err != nil {
		return nil, err
	}
	if req.FinalPrice != nil && *req.FinalPrice < 0 {
		return nil, models.ValidationFailed("final_price", "must not be negative")
	}

	var (
		booking      *models.TourBooking
		previous     models.TourBookingStatus
		priceChanged bool
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.tours.GetBookingForUpdate(ctx, id)
		if err != nil {
			return translateNotFound(err, "tour booking", id)
		}
		if err := models.ValidateTourTransition(booking.Status, target); err != nil {
			return err
		}
		previous = booking.Status
		now := s.now()

		if req.FinalPrice != nil {
			before := booking.Pricing.FinalPrice
			if err := booking.ConfirmFinalPrice(*req.FinalPrice, now); err != nil {
				return err
			}
			priceChanged = booking.Pricing.FinalPrice != before
		}
		if req.AdminNotes != nil {
			booking.AdminNotes = req.AdminNotes
		}
		booking.Status = target
		booking.AdminActions = booking.AdminActions.Append(models.AdminAction{
			Action:    models.TourActionFor(target),
			AdminID:   actor.ID,
			Notes:     req.AdminNotes,
			Timestamp: now,
		})
		booking.UpdatedAt = now
		return s.tours.UpdateBooking(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tour_booking_id": id,
		"admin_id":        actor.ID,
		"from":            previous,
		"to":              target,
		"final_price":     booking.Pricing.FinalPrice,
	}).Info("Tour booking status changed")

	// the customer only hears about changes they can see
	if target == previous && !priceChanged {
		return booking, nil
	}
	kind, title := notify.KindTourBookingUpdated, "Tour booking updated"
	if target == models.TourStatusConfirmed {
		kind, title = notify.KindTourBookingConfirmed, "Tour booking confirmed"
	}
	s.notifier.Send(notify.Notification{
		RecipientID:        booking.CustomerID,
		Kind:               kind,
		Title:              title,
		Message:            fmt.Sprintf("Your tour booking for %s is %s; final price %.2f", booking.BookingDate.Format("2006-01-02"), target, booking.Pricing.FinalPrice),
		CorrelatedEntityID: booking.ID,
	})
	return booking, nil
}

// RecordPayment adds an amount paid towards a tour booking
func (s *TourBookingService) RecordPayment(ctx context.Context, actor models.Actor, id string, req *models.RecordPaymentRequest) (*models.TourBooking, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var booking *models.TourBooking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.tours.GetBookingForUpdate(ctx, id)
		if err != nil {
			return translateNotFound(err, "tour booking", id)
		}
		if booking.Status == models.TourStatusCancelled || booking.Status == models.TourStatusRejected {
			return models.InvalidTransition("status", fmt.Sprintf("cannot record a payment on a %s booking", booking.Status))
		}
		now := s.now()
		if err := booking.RecordPayment(req.Amount, now); err != nil {
			return err
		}
		booking.AdminActions = booking.AdminActions.Append(models.AdminAction{
			Action:    "payment_recorded",
			AdminID:   actor.ID,
			Notes:     req.Notes,
			Timestamp: now,
		})
		booking.UpdatedAt = now
		return s.tours.UpdateBooking(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tour_booking_id":  id,
		"amount":           req.Amount,
		"amount_paid":      booking.Payment.AmountPaid,
		"remaining_amount": booking.Payment.RemainingAmount,
	}).Info("Tour payment recorded")
	return booking, nil
}

// Cancel withdraws the actor's own pending tour booking
func (s *TourBookingService) Cancel(ctx context.Context, actor models.Actor, id string) (*models.TourBooking, error) {
	var booking *models.TourBooking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.tours.GetBookingForUpdate(ctx, id)
		if err != nil {
			return translateNotFound(err, "tour booking", id)
		}
		if err := actor.RequireStrictOwner(booking.CustomerID); err != nil {
			return err
		}
		if booking.Status != models.TourStatusPending {
			return models.InvalidTransition("status", fmt.Sprintf("tour booking is %s; only pending bookings can be cancelled", booking.Status))
		}
		booking.Status = models.TourStatusCancelled
		booking.UpdatedAt = s.now()
		return s.tours.UpdateBooking(ctx, booking)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}
