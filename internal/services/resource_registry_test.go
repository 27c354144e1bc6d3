package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smarttransit/fleet-booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalVehicleLocker_SerializesPerVehicle(t *testing.T) {
	locker := NewLocalVehicleLocker()
	ctx := context.Background()

	var inside, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, "v-1")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak)
	assert.Empty(t, locker.locks)
}

func TestLocalVehicleLocker_IndependentVehicles(t *testing.T) {
	locker := NewLocalVehicleLocker()
	ctx := context.Background()

	unlockA, err := locker.Lock(ctx, "v-a")
	require.NoError(t, err)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB, err := locker.Lock(ctx, "v-b")
		if err == nil {
			unlockB()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on another vehicle blocked")
	}
}

func newRegistry(t *testing.T) (*ResourceRegistry, *fakeVehicles, string) {
	t.Helper()
	vehicles := newFakeVehicles()
	vehicle := &models.Vehicle{Name: "Caravan", Category: models.VehicleCategoryVan, Capacity: 9, DailyRate: 8000, IsActive: true, IsAvailable: true}
	require.NoError(t, vehicles.Create(context.Background(), vehicle))
	return NewResourceRegistry(vehicles, NewLocalVehicleLocker(), quietLogger()), vehicles, vehicle.ID
}

func TestResourceRegistry_ReserveAndRelease(t *testing.T) {
	registry, vehicles, id := newRegistry(t)
	ctx := context.Background()
	window := models.Window{Start: rentalStart, End: rentalStart.AddDate(0, 0, 5)}

	require.NoError(t, registry.Reserve(ctx, id, "rental-1", window))
	require.NoError(t, registry.Reserve(ctx, id, "rental-1", window))

	err := registry.Reserve(ctx, id, "rental-2", window)
	assert.True(t, models.IsKind(err, models.KindResourceConflict))

	// someone else's release leaves the hold alone
	require.NoError(t, registry.Release(ctx, id, "rental-2"))
	v, err := vehicles.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, v.HeldBy("rental-1"))
	assert.False(t, v.IsAvailable)

	free, err := registry.IsFree(ctx, id, "", models.Window{Start: window.End.AddDate(0, 0, 1), End: window.End.AddDate(0, 0, 3)})
	require.NoError(t, err)
	assert.True(t, free)
	free, err = registry.IsFree(ctx, id, "", window)
	require.NoError(t, err)
	assert.False(t, free)

	require.NoError(t, registry.Release(ctx, id, "rental-1"))
	v, err = vehicles.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, v.IsAvailable)
	assert.Nil(t, v.OccupiedBy)

	require.NoError(t, registry.Release(ctx, id, "rental-1"))

	err = registry.Reserve(ctx, "missing", "rental-1", window)
	assert.True(t, models.IsKind(err, models.KindNotFound))
}

func TestResourceRegistry_Retire(t *testing.T) {
	registry, vehicles, id := newRegistry(t)
	ctx := context.Background()
	window := models.Window{Start: rentalStart, End: rentalStart.AddDate(0, 0, 2)}

	require.NoError(t, registry.Reserve(ctx, id, "rental-1", window))
	err := registry.Retire(ctx, id)
	assert.True(t, models.IsKind(err, models.KindResourceConflict))

	require.NoError(t, registry.Release(ctx, id, "rental-1"))
	require.NoError(t, registry.Retire(ctx, id))

	v, err := vehicles.GetByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, v.IsActive)

	err = registry.Reserve(ctx, id, "rental-3", window)
	assert.True(t, models.IsKind(err, models.KindResourceConflict))

	assert.True(t, models.IsKind(registry.Retire(ctx, "missing"), models.KindNotFound))
}

func TestVehicleService(t *testing.T) {
	registry, vehicles, retiredID := newRegistry(t)
	service := NewVehicleService(vehicles, registry, quietLogger())
	ctx := context.Background()

	req := &models.CreateVehicleRequest{
		Name:               "Prado",
		Category:           "car",
		RegistrationNumber: "CAB-1234",
		Capacity:           6,
		PricePerKm:         150,
		DailyRate:          12000,
		MonthlyRate:        300000,
	}
	_, err := service.Create(ctx, customer, req)
	assert.True(t, models.IsKind(err, models.KindAccessDenied))

	bad := *req
	bad.Category = "boat"
	_, err = service.Create(ctx, admin, &bad)
	assert.True(t, models.IsKind(err, models.KindValidationFailed))

	vehicle, err := service.Create(ctx, admin, req)
	require.NoError(t, err)
	assert.True(t, vehicle.IsActive)
	assert.True(t, vehicle.IsAvailable)

	rate := 13000.0
	updated, err := service.Update(ctx, admin, vehicle.ID, &models.UpdateVehicleRequest{DailyRate: &rate})
	require.NoError(t, err)
	assert.Equal(t, rate, updated.DailyRate)
	assert.Equal(t, "Prado", updated.Name)

	_, err = service.Update(ctx, admin, "missing", &models.UpdateVehicleRequest{DailyRate: &rate})
	assert.True(t, models.IsKind(err, models.KindNotFound))

	require.NoError(t, service.Retire(ctx, admin, retiredID))

	listed, err := service.List(ctx, customer, false, true)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
	listed, err = service.List(ctx, admin, false, true)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	free, err := service.Availability(ctx, vehicle.ID, rentalStart, rentalStart.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, free)

	_, err = service.Availability(ctx, vehicle.ID, rentalStart, rentalStart)
	assert.True(t, models.IsKind(err, models.KindValidationFailed))

	free, err = service.Availability(ctx, retiredID, rentalStart, rentalStart.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, free)
}
