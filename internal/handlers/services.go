package handlers

import (
	"context"
	"time"

	"github.com/smarttransit/fleet-booking-backend/internal/models"
	"github.com/smarttransit/fleet-booking-backend/internal/services"
)

// The interfaces below are the service operations each handler calls.
// *services.XService values satisfy them.

type VehicleManager interface {
	Create(ctx context.Context, actor models.Actor, req *models.CreateVehicleRequest) (*models.Vehicle, error)
	Get(ctx context.Context, id string) (*models.Vehicle, error)
	List(ctx context.Context, actor models.Actor, availableOnly, includeInactive bool) ([]models.Vehicle, error)
	Update(ctx context.Context, actor models.Actor, id string, req *models.UpdateVehicleRequest) (*models.Vehicle, error)
	Retire(ctx context.Context, actor models.Actor, id string) error
	Availability(ctx context.Context, id string, start, end time.Time) (bool, error)
}

type BookingManager interface {
	Create(ctx context.Context, actor models.Actor, req *models.CreateBookingRequest) (*models.Booking, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Booking, error)
	ListMine(ctx context.Context, actor models.Actor) ([]models.Booking, error)
	List(ctx context.Context, actor models.Actor, status string) ([]models.Booking, error)
	CustomerUpdate(ctx context.Context, actor models.Actor, id string, update *models.BookingCustomerUpdate) (*models.Booking, error)
	CustomerDelete(ctx context.Context, actor models.Actor, id string) error
	AdminSetStatus(ctx context.Context, actor models.Actor, id, status string, reason *string) (*models.Booking, error)
	AdminSetPricing(ctx context.Context, actor models.Actor, id string, req *models.BookingPricingRequest) (*models.Booking, error)
}

type RentalManager interface {
	Create(ctx context.Context, actor models.Actor, req *models.CreateRentalRequest) (*models.Rental, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Rental, error)
	ListMine(ctx context.Context, actor models.Actor) ([]models.Rental, error)
	List(ctx context.Context, actor models.Actor, status string) ([]models.Rental, error)
	AdminSetStatus(ctx context.Context, actor models.Actor, id string, req *models.RentalStatusRequest) (*models.Rental, error)
	AdminUpdate(ctx context.Context, actor models.Actor, id string, update *models.RentalAdminUpdate) (*models.Rental, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

type TourManager interface {
	CreatePackage(ctx context.Context, actor models.Actor, req *models.TourPackageRequest) (*models.TourPackage, error)
	UpdatePackage(ctx context.Context, actor models.Actor, id string, req *models.TourPackageRequest) (*models.TourPackage, error)
	ListPackages(ctx context.Context, actor models.Actor) ([]models.TourPackage, error)
	Create(ctx context.Context, actor models.Actor, req *models.CreateTourBookingRequest) (*models.TourBooking, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.TourBooking, error)
	ListMine(ctx context.Context, actor models.Actor) ([]models.TourBooking, error)
	List(ctx context.Context, actor models.Actor, status string) ([]models.TourBooking, error)
	AdminSetStatus(ctx context.Context, actor models.Actor, id string, req *models.TourStatusRequest) (*models.TourBooking, error)
	RecordPayment(ctx context.Context, actor models.Actor, id string, req *models.RecordPaymentRequest) (*models.TourBooking, error)
	Cancel(ctx context.Context, actor models.Actor, id string) (*models.TourBooking, error)
}

type ContractManager interface {
	Create(ctx context.Context, actor models.Actor, req *models.CreateProviderContractRequest) (*models.VehicleProviderContract, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.VehicleProviderContract, error)
	ListMine(ctx context.Context, actor models.Actor) ([]models.VehicleProviderContract, error)
	List(ctx context.Context, actor models.Actor, status string) ([]models.VehicleProviderContract, error)
	Update(ctx context.Context, actor models.Actor, id string, update *models.ProviderContractUpdate) (*models.VehicleProviderContract, error)
	AdminSetStatus(ctx context.Context, actor models.Actor, id string, req *models.ContractStatusRequest) (*models.VehicleProviderContract, error)
	RecordPayment(ctx context.Context, actor models.Actor, id string, req *models.RecordPaymentRequest) (*models.VehicleProviderContract, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

type PaymentManager interface {
	Create(ctx context.Context, actor models.Actor, req *models.CreatePaymentRequest) (*models.Payment, error)
	ListByBooking(ctx context.Context, actor models.Actor, bookingID string) ([]models.Payment, error)
	AdminSetStatus(ctx context.Context, actor models.Actor, id string, req *models.PaymentStatusRequest) (*models.Payment, error)
}

type FinanceManager interface {
	CreateEntry(ctx context.Context, actor models.Actor, req *models.FinancialEntryRequest) (*models.FinancialEntry, error)
	UpdateEntry(ctx context.Context, actor models.Actor, id string, req *models.FinancialEntryRequest) (*models.FinancialEntry, error)
	DeleteEntry(ctx context.Context, actor models.Actor, id string) error
	ListEntries(ctx context.Context, actor models.Actor, period *models.Period) ([]models.FinancialEntry, error)
	CreateServiceRecord(ctx context.Context, actor models.Actor, req *models.ServiceRecordRequest) (*models.ServiceRecord, error)
	UpdateServiceRecord(ctx context.Context, actor models.Actor, id string, req *models.ServiceRecordRequest) (*models.ServiceRecord, error)
	DeleteServiceRecord(ctx context.Context, actor models.Actor, id string) error
	ListServiceRecords(ctx context.Context, actor models.Actor, period *models.Period) ([]models.ServiceRecord, error)
	Summary(ctx context.Context, actor models.Actor, period *models.Period) (*models.FinancialSummary, error)
	Monthly(ctx context.Context, actor models.Actor, period *models.Period) ([]models.MonthlySummary, error)
}

var (
	_ VehicleManager  = (*services.VehicleService)(nil)
	_ BookingManager  = (*services.BookingService)(nil)
	_ RentalManager   = (*services.RentalService)(nil)
	_ TourManager     = (*services.TourBookingService)(nil)
	_ ContractManager = (*services.ProviderContractService)(nil)
	_ PaymentManager  = (*services.PaymentService)(nil)
	_ FinanceManager  = (*services.FinancialService)(nil)
	_ AuditRecorder   = (*services.AuditService)(nil)
	_ AuditHistory    = (*services.AuditService)(nil)
)
