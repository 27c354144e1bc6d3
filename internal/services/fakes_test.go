package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/internal/database"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
	"github.com/smarttransit/fleet-booking-backend/pkg/notify"
)

// ============================================================================
// IN-MEMORY STORE WITH ROLLBACK JOURNAL
// ============================================================================

type journal struct {
	undo []func()
}

type journalKey struct{}

// memTx runs units of work against the memory store. A failed unit replays
// its undo journal in reverse, so partial writes never survive.
type memTx struct{}

func (memTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(journalKey{}).(*journal); ok {
		return fn(ctx)
	}
	j := &journal{}
	if err := fn(context.WithValue(ctx, journalKey{}, j)); err != nil {
		for i := len(j.undo) - 1; i >= 0; i-- {
			j.undo[i]()
		}
		return err
	}
	return nil
}

// table is a keyed set of rows guarded by the store mutex
type table[T any] struct {
	mu   *sync.Mutex
	rows map[string]T
}

func newTable[T any](mu *sync.Mutex) *table[T] {
	return &table[T]{mu: mu, rows: map[string]T{}}
}

func (t *table[T]) get(entity, id string) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %s: %w", entity, id, sql.ErrNoRows)
	}
	return row, nil
}

// put must be called with the mutex held
func (t *table[T]) put(ctx context.Context, id string, row T) {
	prev, existed := t.rows[id]
	t.rows[id] = row
	remember(ctx, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if existed {
			t.rows[id] = prev
		} else {
			delete(t.rows, id)
		}
	})
}

// del must be called with the mutex held
func (t *table[T]) del(ctx context.Context, id string) bool {
	prev, existed := t.rows[id]
	if !existed {
		return false
	}
	delete(t.rows, id)
	remember(ctx, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.rows[id] = prev
	})
	return true
}

func (t *table[T]) all() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, row)
	}
	return out
}

func remember(ctx context.Context, undo func()) {
	if j, ok := ctx.Value(journalKey{}).(*journal); ok {
		j.undo = append(j.undo, undo)
	}
}

func missing(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, sql.ErrNoRows)
}

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// ============================================================================
// VEHICLES
// ============================================================================

type fakeVehicles struct {
	mu sync.Mutex
	t  *table[models.Vehicle]
}

func newFakeVehicles() *fakeVehicles {
	f := &fakeVehicles{}
	f.t = newTable[models.Vehicle](&f.mu)
	return f
}

func (f *fakeVehicles) Create(ctx context.Context, v *models.Vehicle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v.ID = newID(v.ID)
	f.t.put(ctx, v.ID, *v)
	return nil
}

func (f *fakeVehicles) GetByID(ctx context.Context, id string) (*models.Vehicle, error) {
	v, err := f.t.get("vehicle", id)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (f *fakeVehicles) List(ctx context.Context, filter database.VehicleFilter) ([]models.Vehicle, error) {
	out := []models.Vehicle{}
	for _, v := range f.t.all() {
		if !v.IsActive && !filter.IncludeInactive {
			continue
		}
		if filter.AvailableOnly && !v.IsAvailable {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeVehicles) Update(ctx context.Context, v *models.Vehicle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.t.rows[v.ID]
	if !ok {
		return missing("vehicle", v.ID)
	}
	cur.Name, cur.Category, cur.RegistrationNumber, cur.Capacity = v.Name, v.Category, v.RegistrationNumber, v.Capacity
	cur.PricePerKm, cur.DailyRate, cur.MonthlyRate = v.PricePerKm, v.DailyRate, v.MonthlyRate
	f.t.put(ctx, v.ID, cur)
	return nil
}

func (f *fakeVehicles) Deactivate(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.t.rows[id]
	if !ok || cur.OccupiedBy != nil {
		return false, nil
	}
	cur.IsActive = false
	f.t.put(ctx, id, cur)
	return true, nil
}

func (f *fakeVehicles) Claim(ctx context.Context, vehicleID, holderID string, window models.Window) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.t.rows[vehicleID]
	if !ok || !cur.IsActive || (cur.OccupiedBy != nil && *cur.OccupiedBy != holderID) {
		return false, nil
	}
	holder, start, end := holderID, window.Start, window.End
	cur.IsAvailable = false
	cur.OccupiedBy, cur.OccupiedFrom, cur.OccupiedUntil = &holder, &start, &end
	f.t.put(ctx, vehicleID, cur)
	return true, nil
}

func (f *fakeVehicles) ReleaseHeld(ctx context.Context, vehicleID, holderID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.t.rows[vehicleID]
	if !ok || cur.OccupiedBy == nil || *cur.OccupiedBy != holderID {
		return false, nil
	}
	cur.IsAvailable = true
	cur.OccupiedBy, cur.OccupiedFrom, cur.OccupiedUntil = nil, nil, nil
	f.t.put(ctx, vehicleID, cur)
	return true, nil
}

// ============================================================================
// BOOKINGS
// ============================================================================

type fakeBookings struct {
	mu sync.Mutex
	t  *table[models.Booking]
}

func newFakeBookings() *fakeBookings {
	f := &fakeBookings{}
	f.t = newTable[models.Booking](&f.mu)
	return f
}

func (f *fakeBookings) Create(ctx context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = newID(b.ID)
	f.t.put(ctx, b.ID, *b)
	return nil
}

func (f *fakeBookings) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	b, err := f.t.get("booking", id)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (f *fakeBookings) GetByIDForUpdate(ctx context.Context, id string) (*models.Booking, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeBookings) ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	out := []models.Booking{}
	for _, b := range f.t.all() {
		if b.CustomerID == customerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) List(ctx context.Context, status *models.BookingStatus) ([]models.Booking, error) {
	out := []models.Booking{}
	for _, b := range f.t.all() {
		if status == nil || b.Status == *status {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) Update(ctx context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.t.rows[b.ID]; !ok {
		return missing("booking", b.ID)
	}
	f.t.put(ctx, b.ID, *b)
	return nil
}

func (f *fakeBookings) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.t.rows[id]
	if !ok {
		return missing("booking", id)
	}
	cur.PaymentStatus = status
	f.t.put(ctx, id, cur)
	return nil
}

func (f *fakeBookings) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.t.del(ctx, id) {
		return missing("booking", id)
	}
	return nil
}

// ============================================================================
// RENTALS
// ============================================================================

type fakeRentals struct {
	mu sync.Mutex
	t  *table[models.Rental]
}

func newFakeRentals() *fakeRentals {
	f := &fakeRentals{}
	f.t = newTable[models.Rental](&f.mu)
	return f
}

func (f *fakeRentals) Create(ctx context.Context, r *models.Rental) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = newID(r.ID)
	f.t.put(ctx, r.ID, *r)
	return nil
}

func (f *fakeRentals) GetByID(ctx context.Context, id string) (*models.Rental, error) {
	r, err := f.t.get("rental", id)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (f *fakeRentals) GetByIDForUpdate(ctx context.Context, id string) (*models.Rental, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRentals) ListByCustomer(ctx context.Context, customerID string) ([]models.Rental, error) {
	out := []models.Rental{}
	for _, r := range f.t.all() {
		if r.CustomerID == customerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRentals) List(ctx context.Context, status *models.RentalStatus) ([]models.Rental, error) {
	out := []models.Rental{}
	for _, r := range f.t.all() {
		if status == nil || r.Status == *status {
			out = append(out, r)
		}
	}
	return out, nil
}

// Update keeps an existing contract id the way the SQL COALESCE does
func (f *fakeRentals) Update(ctx context.Context, r *models.Rental) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.t.rows[r.ID]
	if !ok {
		return missing("rental", r.ID)
	}
	next := *r
	if cur.ContractID != nil {
		next.ContractID = cur.ContractID
		next.ApprovedAt = cur.ApprovedAt
	}
	f.t.put(ctx, r.ID, next)
	return nil
}

func (f *fakeRentals) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.t.del(ctx, id) {
		return missing("rental", id)
	}
	return nil
}

// ============================================================================
// TOURS
// ============================================================================

type fakeTours struct {
	mu       sync.Mutex
	packages *table[models.TourPackage]
	bookings *table[models.TourBooking]
}

func newFakeTours() *fakeTours {
	f := &fakeTours{}
	f.packages = newTable[models.TourPackage](&f.mu)
	f.bookings = newTable[models.TourBooking](&f.mu)
	return f
}

func (f *fakeTours) CreatePackage(ctx context.Context, p *models.TourPackage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = newID(p.ID)
	f.packages.put(ctx, p.ID, *p)
	return nil
}

func (f *fakeTours) UpdatePackage(ctx context.Context, p *models.TourPackage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.packages.rows[p.ID]; !ok {
		return missing("tour package", p.ID)
	}
	f.packages.put(ctx, p.ID, *p)
	return nil
}

func (f *fakeTours) GetPackage(ctx context.Context, id string) (*models.TourPackage, error) {
	p, err := f.packages.get("tour package", id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (f *fakeTours) ListPackages(ctx context.Context, activeOnly bool) ([]models.TourPackage, error) {
	out := []models.TourPackage{}
	for _, p := range f.packages.all() {
		if !activeOnly || p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeTours) CreateBooking(ctx context.Context, b *models.TourBooking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = newID(b.ID)
	f.bookings.put(ctx, b.ID, *b)
	return nil
}

func (f *fakeTours) GetBooking(ctx context.Context, id string) (*models.TourBooking, error) {
	b, err := f.bookings.get("tour booking", id)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (f *fakeTours) GetBookingForUpdate(ctx context.Context, id string) (*models.TourBooking, error) {
	return f.GetBooking(ctx, id)
}

func (f *fakeTours) ListBookingsByCustomer(ctx context.Context, customerID string) ([]models.TourBooking, error) {
	out := []models.TourBooking{}
	for _, b := range f.bookings.all() {
		if b.CustomerID == customerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeTours) ListBookings(ctx context.Context, status *models.TourBookingStatus) ([]models.TourBooking, error) {
	out := []models.TourBooking{}
	for _, b := range f.bookings.all() {
		if status == nil || b.Status == *status {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeTours) UpdateBooking(ctx context.Context, b *models.TourBooking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bookings.rows[b.ID]; !ok {
		return missing("tour booking", b.ID)
	}
	f.bookings.put(ctx, b.ID, *b)
	return nil
}

// ============================================================================
// PROVIDER CONTRACTS
// ============================================================================

type fakeContracts struct {
	mu sync.Mutex
	t  *table[models.VehicleProviderContract]
}

func newFakeContracts() *fakeContracts {
	f := &fakeContracts{}
	f.t = newTable[models.VehicleProviderContract](&f.mu)
	return f
}

func (f *fakeContracts) Create(ctx context.Context, c *models.VehicleProviderContract) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = newID(c.ID)
	f.t.put(ctx, c.ID, *c)
	return nil
}

func (f *fakeContracts) GetByID(ctx context.Context, id string) (*models.VehicleProviderContract, error) {
	c, err := f.t.get("provider contract", id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (f *fakeContracts) GetByIDForUpdate(ctx context.Context, id string) (*models.VehicleProviderContract, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeContracts) ListByProvider(ctx context.Context, providerID string) ([]models.VehicleProviderContract, error) {
	out := []models.VehicleProviderContract{}
	for _, c := range f.t.all() {
		if c.ProviderID == providerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContracts) List(ctx context.Context, status *models.ContractStatus) ([]models.VehicleProviderContract, error) {
	out := []models.VehicleProviderContract{}
	for _, c := range f.t.all() {
		if status == nil || c.Status == *status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContracts) ListExpiring(ctx context.Context, asOf time.Time) ([]models.VehicleProviderContract, error) {
	out := []models.VehicleProviderContract{}
	for _, c := range f.t.all() {
		if c.Status == models.ContractStatusActive && c.ContractTerms.EndDate.Before(asOf) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContracts) Update(ctx context.Context, c *models.VehicleProviderContract) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.t.rows[c.ID]; !ok {
		return missing("provider contract", c.ID)
	}
	f.t.put(ctx, c.ID, *c)
	return nil
}

func (f *fakeContracts) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.t.rows[id]
	if !ok || cur.Status != models.ContractStatusPending {
		return missing("provider contract", id)
	}
	f.t.del(ctx, id)
	return nil
}

// ============================================================================
// PAYMENTS AND LEDGER
// ============================================================================

type fakePayments struct {
	mu sync.Mutex
	t  *table[models.Payment]
}

func newFakePayments() *fakePayments {
	f := &fakePayments{}
	f.t = newTable[models.Payment](&f.mu)
	return f
}

func (f *fakePayments) Create(ctx context.Context, p *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = newID(p.ID)
	f.t.put(ctx, p.ID, *p)
	return nil
}

func (f *fakePayments) GetByIDForUpdate(ctx context.Context, id string) (*models.Payment, error) {
	p, err := f.t.get("payment", id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (f *fakePayments) ListByBooking(ctx context.Context, bookingID string) ([]models.Payment, error) {
	out := []models.Payment{}
	for _, p := range f.t.all() {
		if p.BookingID == bookingID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePayments) ListCompleted(ctx context.Context, period *models.Period) ([]models.Payment, error) {
	out := []models.Payment{}
	for _, p := range f.t.all() {
		if p.Status == models.SettlementCompleted && p.CompletedAt != nil && period.Contains(*p.CompletedAt) {
			out = append(out, p)
		}
	}
	return out, nil
}

// UpdateStatus leaves the transaction id alone the way the SQL does
func (f *fakePayments) UpdateStatus(ctx context.Context, p *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.t.rows[p.ID]
	if !ok {
		return missing("payment", p.ID)
	}
	cur.Status, cur.FailureReason, cur.CompletedAt, cur.UpdatedAt = p.Status, p.FailureReason, p.CompletedAt, p.UpdatedAt
	f.t.put(ctx, p.ID, cur)
	return nil
}

type fakeLedger struct {
	mu      sync.Mutex
	entries *table[models.FinancialEntry]
	records *table[models.ServiceRecord]
}

func newFakeLedger() *fakeLedger {
	f := &fakeLedger{}
	f.entries = newTable[models.FinancialEntry](&f.mu)
	f.records = newTable[models.ServiceRecord](&f.mu)
	return f
}

func (f *fakeLedger) CreateEntry(ctx context.Context, e *models.FinancialEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = newID(e.ID)
	f.entries.put(ctx, e.ID, *e)
	return nil
}

func (f *fakeLedger) GetEntry(ctx context.Context, id string) (*models.FinancialEntry, error) {
	e, err := f.entries.get("financial entry", id)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (f *fakeLedger) ListEntries(ctx context.Context, period *models.Period) ([]models.FinancialEntry, error) {
	out := []models.FinancialEntry{}
	for _, e := range f.entries.all() {
		if period.Contains(e.Date) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (f *fakeLedger) UpdateEntry(ctx context.Context, e *models.FinancialEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries.rows[e.ID]; !ok {
		return missing("financial entry", e.ID)
	}
	f.entries.put(ctx, e.ID, *e)
	return nil
}

func (f *fakeLedger) DeleteEntry(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.entries.del(ctx, id) {
		return missing("financial entry", id)
	}
	return nil
}

func (f *fakeLedger) CreateServiceRecord(ctx context.Context, r *models.ServiceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = newID(r.ID)
	f.records.put(ctx, r.ID, *r)
	return nil
}

func (f *fakeLedger) GetServiceRecord(ctx context.Context, id string) (*models.ServiceRecord, error) {
	r, err := f.records.get("service record", id)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (f *fakeLedger) ListServiceRecords(ctx context.Context, period *models.Period) ([]models.ServiceRecord, error) {
	out := []models.ServiceRecord{}
	for _, r := range f.records.all() {
		if period.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeLedger) UpdateServiceRecord(ctx context.Context, r *models.ServiceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records.rows[r.ID]; !ok {
		return missing("service record", r.ID)
	}
	f.records.put(ctx, r.ID, *r)
	return nil
}

func (f *fakeLedger) DeleteServiceRecord(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.records.del(ctx, id) {
		return missing("service record", id)
	}
	return nil
}

// ============================================================================
// NOTIFIER AND HELPERS
// ============================================================================

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (n *recordingNotifier) Send(msg notify.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *recordingNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.sent))
	for _, msg := range n.sent {
		out = append(out, msg.Kind)
	}
	return out
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

var (
	admin    = models.Actor{ID: "admin-1", Role: models.RoleAdmin}
	customer = models.Actor{ID: "customer-1", Role: models.RoleCustomer}
	stranger = models.Actor{ID: "customer-2", Role: models.RoleCustomer}
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }
