package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
)

// FinancialService keeps the manual ledger and service records and
// reconciles them with completed payments
type FinancialService struct {
	ledger   LedgerRepository
	payments PaymentRepository
	vehicles VehicleRepository
	logger   *logrus.Logger
}

// NewFinancialService creates a new FinancialService
func NewFinancialService(ledger LedgerRepository, payments PaymentRepository, vehicles VehicleRepository, logger *logrus.Logger) *FinancialService {
	return &FinancialService{
		ledger:   ledger,
		payments: payments,
		vehicles: vehicles,
		logger:   logger,
	}
}

// ============================================================================
// LEDGER ROWS
// ============================================================================

// CreateEntry adds a ledger row
func (s *FinancialService) CreateEntry(ctx context.Context, actor models.Actor, req *models.FinancialEntryRequest) (*models.FinancialEntry, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entry := &models.FinancialEntry{CreatedBy: actor.ID}
	applyEntryRequest(entry, req)
	if err := s.ledger.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateEntry replaces a ledger row
func (s *FinancialService) UpdateEntry(ctx context.Context, actor models.Actor, id string, req *models.FinancialEntryRequest) (*models.FinancialEntry, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entry, err := s.ledger.GetEntry(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "financial entry", id)
	}
	applyEntryRequest(entry, req)
	if err := s.ledger.UpdateEntry(ctx, entry); err != nil {
		return nil, translateNotFound(err, "financial entry", id)
	}
	return entry, nil
}

func applyEntryRequest(entry *models.FinancialEntry, req *models.FinancialEntryRequest) {
	entry.Type = models.EntryType(req.Type)
	entry.Category = req.Category
	entry.Amount = req.Amount
	entry.Date = req.Date
	entry.Description = req.Description
}

// DeleteEntry removes a ledger row
func (s *FinancialService) DeleteEntry(ctx context.Context, actor models.Actor, id string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	return translateNotFound(s.ledger.DeleteEntry(ctx, id), "financial entry", id)
}

// ListEntries returns ledger rows dated within the period
func (s *FinancialService) ListEntries(ctx context.Context, actor models.Actor, period *models.Period) ([]models.FinancialEntry, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.ledger.ListEntries(ctx, period)
}

// ============================================================================
// SERVICE RECORDS
// ============================================================================

// CreateServiceRecord adds a maintenance record for an existing vehicle
func (s *FinancialService) CreateServiceRecord(ctx context.Context, actor models.Actor, req *models.ServiceRecordRequest) (*models.ServiceRecord, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.vehicles.GetByID(ctx, req.VehicleID); err != nil {
		return nil, translateNotFound(err, "vehicle", req.VehicleID)
	}

	record := &models.ServiceRecord{}
	applyServiceRecordRequest(record, req)
	if err := s.ledger.CreateServiceRecord(ctx, record); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"service_record_id": record.ID,
		"vehicle_id":        record.VehicleID,
		"cost":              record.Cost,
	}).Info("Service record created")
	return record, nil
}

// UpdateServiceRecord replaces a maintenance record
func (s *FinancialService) UpdateServiceRecord(ctx context.Context, actor models.Actor, id string, req *models.ServiceRecordRequest) (*models.ServiceRecord, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	record, err := s.ledger.GetServiceRecord(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "service record", id)
	}
	if req.VehicleID != record.VehicleID {
		if _, err := s.vehicles.GetByID(ctx, req.VehicleID); err != nil {
			return nil, translateNotFound(err, "vehicle", req.VehicleID)
		}
	}
	applyServiceRecordRequest(record, req)
	if err := s.ledger.UpdateServiceRecord(ctx, record); err != nil {
		return nil, translateNotFound(err, "service record", id)
	}
	return record, nil
}

func applyServiceRecordRequest(record *models.ServiceRecord, req *models.ServiceRecordRequest) {
	record.VehicleID = req.VehicleID
	record.ServiceType = req.ServiceType
	record.Description = req.Description
	record.Mileage = req.Mileage
	record.Cost = req.Cost
	record.Date = req.Date
	record.NextServiceMileage = req.NextServiceMileage
}

// DeleteServiceRecord removes a maintenance record
func (s *FinancialService) DeleteServiceRecord(ctx context.Context, actor models.Actor, id string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	return translateNotFound(s.ledger.DeleteServiceRecord(ctx, id), "service record", id)
}

// ListServiceRecords returns maintenance records dated within the period
func (s *FinancialService) ListServiceRecords(ctx context.Context, actor models.Actor, period *models.Period) ([]models.ServiceRecord, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.ledger.ListServiceRecords(ctx, period)
}

// ============================================================================
// AGGREGATION
// ============================================================================

// ledgerSources is everything a summary is reduced from
type ledgerSources struct {
	entries  []models.FinancialEntry
	payments []models.Payment
	records  []models.ServiceRecord
}

func (s *FinancialService) load(ctx context.Context, period *models.Period) (*ledgerSources, error) {
	entries, err := s.ledger.ListEntries(ctx, period)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.ListCompleted(ctx, period)
	if err != nil {
		return nil, err
	}
	records, err := s.ledger.ListServiceRecords(ctx, period)
	if err != nil {
		return nil, err
	}
	return &ledgerSources{entries: entries, payments: payments, records: records}, nil
}

// Summary reconciles income and expenses over the period. A nil period
// covers everything.
func (s *FinancialService) Summary(ctx context.Context, actor models.Actor, period *models.Period) (*models.FinancialSummary, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	src, err := s.load(ctx, period)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load financial summary sources")
		return nil, err
	}
	summary := Summarize(period, src.entries, src.payments, src.records)
	return &summary, nil
}

// Monthly is Summary grouped by calendar month, oldest first
func (s *FinancialService) Monthly(ctx context.Context, actor models.Actor, period *models.Period) ([]models.MonthlySummary, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	src, err := s.load(ctx, period)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load monthly summary sources")
		return nil, err
	}
	return SummarizeMonthly(period, src.entries, src.payments, src.records), nil
}

// Summarize reduces ledger rows, completed payments and service costs into
// one summary. Rows outside the period are ignored.
func Summarize(period *models.Period, entries []models.FinancialEntry, payments []models.Payment, records []models.ServiceRecord) models.FinancialSummary {
	var manualIncome, paymentIncome, manualExpenses, serviceCosts decimal.Decimal

	for _, e := range entries {
		if !period.Contains(e.Date) {
			continue
		}
		switch e.Type {
		case models.EntryTypeIncome:
			manualIncome = manualIncome.Add(decimal.NewFromFloat(e.Amount))
		case models.EntryTypeExpense:
			manualExpenses = manualExpenses.Add(decimal.NewFromFloat(e.Amount))
		}
	}
	for _, p := range payments {
		if p.Status != models.SettlementCompleted || !period.Contains(completionDate(p)) {
			continue
		}
		paymentIncome = paymentIncome.Add(decimal.NewFromFloat(p.Amount))
	}
	for _, r := range records {
		if !period.Contains(r.Date) {
			continue
		}
		serviceCosts = serviceCosts.Add(decimal.NewFromFloat(r.Cost))
	}

	income := manualIncome.Add(paymentIncome)
	expenses := manualExpenses.Add(serviceCosts)
	return models.FinancialSummary{
		Period:         period,
		ManualIncome:   manualIncome.InexactFloat64(),
		PaymentIncome:  paymentIncome.InexactFloat64(),
		TotalIncome:    income.InexactFloat64(),
		ManualExpenses: manualExpenses.InexactFloat64(),
		ServiceCosts:   serviceCosts.InexactFloat64(),
		TotalExpenses:  expenses.InexactFloat64(),
		NetProfit:      income.Sub(expenses).InexactFloat64(),
	}
}

// SummarizeMonthly applies Summarize to each calendar month that has activity
func SummarizeMonthly(period *models.Period, entries []models.FinancialEntry, payments []models.Payment, records []models.ServiceRecord) []models.MonthlySummary {
	type bucket struct {
		entries  []models.FinancialEntry
		payments []models.Payment
		records  []models.ServiceRecord
	}
	buckets := map[string]*bucket{}
	get := func(t time.Time) *bucket {
		key := t.Format("2006-01")
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		return b
	}

	for _, e := range entries {
		if period.Contains(e.Date) {
			b := get(e.Date)
			b.entries = append(b.entries, e)
		}
	}
	for _, p := range payments {
		if p.Status == models.SettlementCompleted && period.Contains(completionDate(p)) {
			b := get(completionDate(p))
			b.payments = append(b.payments, p)
		}
	}
	for _, r := range records {
		if period.Contains(r.Date) {
			b := get(r.Date)
			b.records = append(b.records, r)
		}
	}

	months := make([]string, 0, len(buckets))
	for month := range buckets {
		months = append(months, month)
	}
	sort.Strings(months)

	out := make([]models.MonthlySummary, 0, len(months))
	for _, month := range months {
		b := buckets[month]
		summary := Summarize(nil, b.entries, b.payments, b.records)
		out = append(out, models.MonthlySummary{Month: month, FinancialSummary: summary})
	}
	return out
}

// completionDate is when a payment settled; rows completed before the
// timestamp existed fall back to their last update
func completionDate(p models.Payment) time.Time {
	if p.CompletedAt != nil {
		return *p.CompletedAt
	}
	return p.UpdatedAt
}
