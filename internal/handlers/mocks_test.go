package handlers

import (
	"context"
	"time"

	"github.com/smarttransit/fleet-booking-backend/internal/models"
	"github.com/smarttransit/fleet-booking-backend/internal/services"
	"github.com/stretchr/testify/mock"
)

type MockVehicleService struct {
	mock.Mock
}

func (m *MockVehicleService) Create(ctx context.Context, actor models.Actor, req *models.CreateVehicleRequest) (*models.Vehicle, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}
func (m *MockVehicleService) Get(ctx context.Context, id string) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}
func (m *MockVehicleService) List(ctx context.Context, actor models.Actor, availableOnly, includeInactive bool) ([]models.Vehicle, error) {
	args := m.Called(ctx, actor, availableOnly, includeInactive)
	return args.Get(0).([]models.Vehicle), args.Error(1)
}
func (m *MockVehicleService) Update(ctx context.Context, actor models.Actor, id string, req *models.UpdateVehicleRequest) (*models.Vehicle, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}
func (m *MockVehicleService) Retire(ctx context.Context, actor models.Actor, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}
func (m *MockVehicleService) Availability(ctx context.Context, id string, start, end time.Time) (bool, error) {
	args := m.Called(ctx, id, start, end)
	return args.Bool(0), args.Error(1)
}

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Create(ctx context.Context, actor models.Actor, req *models.CreateBookingRequest) (*models.Booking, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *MockBookingService) Get(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *MockBookingService) ListMine(ctx context.Context, actor models.Actor) ([]models.Booking, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *MockBookingService) List(ctx context.Context, actor models.Actor, status string) ([]models.Booking, error) {
	args := m.Called(ctx, actor, status)
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *MockBookingService) CustomerUpdate(ctx context.Context, actor models.Actor, id string, update *models.BookingCustomerUpdate) (*models.Booking, error) {
	args := m.Called(ctx, actor, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *MockBookingService) CustomerDelete(ctx context.Context, actor models.Actor, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}
func (m *MockBookingService) AdminSetStatus(ctx context.Context, actor models.Actor, id, status string, reason *string) (*models.Booking, error) {
	args := m.Called(ctx, actor, id, status, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *MockBookingService) AdminSetPricing(ctx context.Context, actor models.Actor, id string, req *models.BookingPricingRequest) (*models.Booking, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) Create(ctx context.Context, actor models.Actor, req *models.CreateRentalRequest) (*models.Rental, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rental), args.Error(1)
}
func (m *MockRentalService) Get(ctx context.Context, actor models.Actor, id string) (*models.Rental, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rental), args.Error(1)
}
func (m *MockRentalService) ListMine(ctx context.Context, actor models.Actor) ([]models.Rental, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]models.Rental), args.Error(1)
}
func (m *MockRentalService) List(ctx context.Context, actor models.Actor, status string) ([]models.Rental, error) {
	args := m.Called(ctx, actor, status)
	return args.Get(0).([]models.Rental), args.Error(1)
}
func (m *MockRentalService) AdminSetStatus(ctx context.Context, actor models.Actor, id string, req *models.RentalStatusRequest) (*models.Rental, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rental), args.Error(1)
}
func (m *MockRentalService) AdminUpdate(ctx context.Context, actor models.Actor, id string, update *models.RentalAdminUpdate) (*models.Rental, error) {
	args := m.Called(ctx, actor, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rental), args.Error(1)
}
func (m *MockRentalService) Delete(ctx context.Context, actor models.Actor, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

type MockFinanceService struct {
	mock.Mock
}

func (m *MockFinanceService) CreateEntry(ctx context.Context, actor models.Actor, req *models.FinancialEntryRequest) (*models.FinancialEntry, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FinancialEntry), args.Error(1)
}
func (m *MockFinanceService) UpdateEntry(ctx context.Context, actor models.Actor, id string, req *models.FinancialEntryRequest) (*models.FinancialEntry, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FinancialEntry), args.Error(1)
}
func (m *MockFinanceService) DeleteEntry(ctx context.Context, actor models.Actor, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}
func (m *MockFinanceService) ListEntries(ctx context.Context, actor models.Actor, period *models.Period) ([]models.FinancialEntry, error) {
	args := m.Called(ctx, actor, period)
	return args.Get(0).([]models.FinancialEntry), args.Error(1)
}
func (m *MockFinanceService) CreateServiceRecord(ctx context.Context, actor models.Actor, req *models.ServiceRecordRequest) (*models.ServiceRecord, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRecord), args.Error(1)
}
func (m *MockFinanceService) UpdateServiceRecord(ctx context.Context, actor models.Actor, id string, req *models.ServiceRecordRequest) (*models.ServiceRecord, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRecord), args.Error(1)
}
func (m *MockFinanceService) DeleteServiceRecord(ctx context.Context, actor models.Actor, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}
func (m *MockFinanceService) ListServiceRecords(ctx context.Context, actor models.Actor, period *models.Period) ([]models.ServiceRecord, error) {
	args := m.Called(ctx, actor, period)
	return args.Get(0).([]models.ServiceRecord), args.Error(1)
}
func (m *MockFinanceService) Summary(ctx context.Context, actor models.Actor, period *models.Period) (*models.FinancialSummary, error) {
	args := m.Called(ctx, actor, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FinancialSummary), args.Error(1)
}
func (m *MockFinanceService) Monthly(ctx context.Context, actor models.Actor, period *models.Period) ([]models.MonthlySummary, error) {
	args := m.Called(ctx, actor, period)
	return args.Get(0).([]models.MonthlySummary), args.Error(1)
}

type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) RecordAdminAction(ctx context.Context, event services.AuditEvent) {
	m.Called(ctx, event)
}

type MockAuditHistory struct {
	mock.Mock
}

func (m *MockAuditHistory) EntityHistory(ctx context.Context, entityType, entityID string, limit int) ([]services.AuditRecord, error) {
	args := m.Called(ctx, entityType, entityID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.AuditRecord), args.Error(1)
}
