package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/smarttransit/fleet-booking-backend/internal/database"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
	"github.com/smarttransit/fleet-booking-backend/pkg/notify"
)

// Transactor runs a unit of work atomically
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// VehicleRepository is the vehicle persistence used by the services
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *models.Vehicle) error
	GetByID(ctx context.Context, id string) (*models.Vehicle, error)
	List(ctx context.Context, filter database.VehicleFilter) ([]models.Vehicle, error)
	Update(ctx context.Context, vehicle *models.Vehicle) error
	Deactivate(ctx context.Context, id string) (bool, error)
	Claim(ctx context.Context, vehicleID, holderID string, window models.Window) (bool, error)
	ReleaseHeld(ctx context.Context, vehicleID, holderID string) (bool, error)
}

// BookingRepository is the ride booking persistence used by the services
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByIDForUpdate(ctx context.Context, id string) (*models.Booking, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error)
	List(ctx context.Context, status *models.BookingStatus) ([]models.Booking, error)
	Update(ctx context.Context, booking *models.Booking) error
	UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error
	Delete(ctx context.Context, id string) error
}

// RentalRepository is the rental persistence used by the services
type RentalRepository interface {
	Create(ctx context.Context, rental *models.Rental) error
	GetByID(ctx context.Context, id string) (*models.Rental, error)
	GetByIDForUpdate(ctx context.Context, id string) (*models.Rental, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Rental, error)
	List(ctx context.Context, status *models.RentalStatus) ([]models.Rental, error)
	Update(ctx context.Context, rental *models.Rental) error
	Delete(ctx context.Context, id string) error
}

// TourRepository is the tour package and tour booking persistence used by the services
type TourRepository interface {
	CreatePackage(ctx context.Context, pkg *models.TourPackage) error
	UpdatePackage(ctx context.Context, pkg *models.TourPackage) error
	GetPackage(ctx context.Context, id string) (*models.TourPackage, error)
	ListPackages(ctx context.Context, activeOnly bool) ([]models.TourPackage, error)
	CreateBooking(ctx context.Context, booking *models.TourBooking) error
	GetBooking(ctx context.Context, id string) (*models.TourBooking, error)
	GetBookingForUpdate(ctx context.Context, id string) (*models.TourBooking, error)
	ListBookingsByCustomer(ctx context.Context, customerID string) ([]models.TourBooking, error)
	ListBookings(ctx context.Context, status *models.TourBookingStatus) ([]models.TourBooking, error)
	UpdateBooking(ctx context.Context, booking *models.TourBooking) error
}

// ProviderContractRepository is the provider contract persistence used by the services
type ProviderContractRepository interface {
	Create(ctx context.Context, contract *models.VehicleProviderContract) error
	GetByID(ctx context.Context, id string) (*models.VehicleProviderContract, error)
	GetByIDForUpdate(ctx context.Context, id string) (*models.VehicleProviderContract, error)
	ListByProvider(ctx context.Context, providerID string) ([]models.VehicleProviderContract, error)
	List(ctx context.Context, status *models.ContractStatus) ([]models.VehicleProviderContract, error)
	ListExpiring(ctx context.Context, asOf time.Time) ([]models.VehicleProviderContract, error)
	Update(ctx context.Context, contract *models.VehicleProviderContract) error
	Delete(ctx context.Context, id string) error
}

// PaymentRepository is the payment persistence used by the services
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByIDForUpdate(ctx context.Context, id string) (*models.Payment, error)
	ListByBooking(ctx context.Context, bookingID string) ([]models.Payment, error)
	ListCompleted(ctx context.Context, period *models.Period) ([]models.Payment, error)
	UpdateStatus(ctx context.Context, payment *models.Payment) error
}

// LedgerRepository is the ledger row and service record persistence used by the services
type LedgerRepository interface {
	CreateEntry(ctx context.Context, entry *models.FinancialEntry) error
	GetEntry(ctx context.Context, id string) (*models.FinancialEntry, error)
	ListEntries(ctx context.Context, period *models.Period) ([]models.FinancialEntry, error)
	UpdateEntry(ctx context.Context, entry *models.FinancialEntry) error
	DeleteEntry(ctx context.Context, id string) error
	CreateServiceRecord(ctx context.Context, record *models.ServiceRecord) error
	GetServiceRecord(ctx context.Context, id string) (*models.ServiceRecord, error)
	ListServiceRecords(ctx context.Context, period *models.Period) ([]models.ServiceRecord, error)
	UpdateServiceRecord(ctx context.Context, record *models.ServiceRecord) error
	DeleteServiceRecord(ctx context.Context, id string) error
}

// Notifier schedules fire-and-forget notification delivery
type Notifier interface {
	Send(n notify.Notification)
}

// translateNotFound converts a repository miss into a NotFound domain error
func translateNotFound(err error, entity, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.NotFound(entity, id)
	}
	return err
}
