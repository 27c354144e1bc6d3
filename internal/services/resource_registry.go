package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
)

// VehicleLocker serializes occupancy changes per vehicle id
type VehicleLocker interface {
	Lock(ctx context.Context, vehicleID string) (unlock func(), err error)
}

// ============================================================================
// IN-PROCESS LOCKER
// ============================================================================

// LocalVehicleLocker holds one mutex per vehicle id for a single instance
type LocalVehicleLocker struct {
	mu    sync.Mutex
	locks map[string]*vehicleMutex
}

type vehicleMutex struct {
	mu   sync.Mutex
	refs int
}

// NewLocalVehicleLocker creates an in-process locker
func NewLocalVehicleLocker() *LocalVehicleLocker {
	return &LocalVehicleLocker{locks: make(map[string]*vehicleMutex)}
}

// Lock blocks until the vehicle's mutex is held
func (l *LocalVehicleLocker) Lock(ctx context.Context, vehicleID string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[vehicleID]
	if !ok {
		m = &vehicleMutex{}
		l.locks[vehicleID] = m
	}
	m.refs++
	l.mu.Unlock()

	m.mu.Lock()

	return func() {
		m.mu.Unlock()
		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, vehicleID)
		}
		l.mu.Unlock()
	}, nil
}

// ============================================================================
// REDIS LOCKER
// ============================================================================

// releaseScript deletes the lock only if it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisVehicleLocker is a lease lock shared by every instance
type RedisVehicleLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
	logger *logrus.Logger
}

// NewRedisVehicleLocker creates a locker whose leases expire after ttl.
// Lock gives up with a ResourceConflict after waiting for wait.
func NewRedisVehicleLocker(client *redis.Client, ttl, wait time.Duration, logger *logrus.Logger) *RedisVehicleLocker {
	return &RedisVehicleLocker{
		client: client,
		ttl:    ttl,
		wait:   wait,
		retry:  50 * time.Millisecond,
		logger: logger,
	}
}

func vehicleLockKey(vehicleID string) string {
	return "fleet:vehicle-lock:" + vehicleID
}

// Lock acquires the vehicle's lease
func (l *RedisVehicleLocker) Lock(ctx context.Context, vehicleID string) (func(), error) {
	key := vehicleLockKey(vehicleID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, models.DependencyUnavailable("vehicle lock", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, models.ResourceConflict(fmt.Sprintf("vehicle %s is being modified by another request", vehicleID))
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			l.logger.WithFields(logrus.Fields{
				"vehicle_id": vehicleID,
				"error":      err.Error(),
			}).Warn("Failed to release vehicle lock")
		}
	}, nil
}

// ============================================================================
// REGISTRY
// ============================================================================

// ResourceRegistry owns vehicle occupancy. Every reserve and release goes
// through it while the vehicle's lock is held.
type ResourceRegistry struct {
	vehicles VehicleRepository
	locker   VehicleLocker
	logger   *logrus.Logger
}

// NewResourceRegistry creates a new ResourceRegistry
func NewResourceRegistry(vehicles VehicleRepository, locker VehicleLocker, logger *logrus.Logger) *ResourceRegistry {
	return &ResourceRegistry{
		vehicles: vehicles,
		locker:   locker,
		logger:   logger,
	}
}

// WithVehicleLock runs fn while holding the vehicle's lock
func (r *ResourceRegistry) WithVehicleLock(ctx context.Context, vehicleID string, fn func() error) error {
	unlock, err := r.locker.Lock(ctx, vehicleID)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

// Reserve marks the vehicle as occupied by holderID over the window.
// Reserving a vehicle already held by the same holder succeeds.
func (r *ResourceRegistry) Reserve(ctx context.Context, vehicleID, holderID string, window models.Window) error {
	claimed, err := r.vehicles.Claim(ctx, vehicleID, holderID, window)
	if err != nil {
		return err
	}
	if claimed {
		r.logger.WithFields(logrus.Fields{
			"vehicle_id": vehicleID,
			"holder_id":  holderID,
		}).Debug("Vehicle reserved")
		return nil
	}

	vehicle, err := r.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return translateNotFound(err, "vehicle", vehicleID)
	}
	if !vehicle.IsActive {
		return models.ResourceConflict(fmt.Sprintf("vehicle %s is inactive", vehicleID))
	}
	return models.ResourceConflict(fmt.Sprintf("vehicle %s is already occupied", vehicleID))
}

// Release clears occupancy held by holderID. Releasing a vehicle that is
// free or held by another holder is a no-op.
func (r *ResourceRegistry) Release(ctx context.Context, vehicleID, holderID string) error {
	released, err := r.vehicles.ReleaseHeld(ctx, vehicleID, holderID)
	if err != nil {
		return err
	}
	r.logger.WithFields(logrus.Fields{
		"vehicle_id": vehicleID,
		"holder_id":  holderID,
		"released":   released,
	}).Debug("Vehicle release")
	return nil
}

// IsFree reports whether the vehicle is active and not held by anyone else
// over the window
func (r *ResourceRegistry) IsFree(ctx context.Context, vehicleID, holderID string, window models.Window) (bool, error) {
	vehicle, err := r.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return false, translateNotFound(err, "vehicle", vehicleID)
	}
	return vehicle.FreeFor(holderID, window), nil
}

// Retire soft-deletes a vehicle unless it is currently occupied
func (r *ResourceRegistry) Retire(ctx context.Context, vehicleID string) error {
	return r.WithVehicleLock(ctx, vehicleID, func() error {
		if _, err := r.vehicles.GetByID(ctx, vehicleID); err != nil {
			return translateNotFound(err, "vehicle", vehicleID)
		}
		ok, err := r.vehicles.Deactivate(ctx, vehicleID)
		if err != nil {
			return err
		}
		if !ok {
			return models.ResourceConflict(fmt.Sprintf("vehicle %s is occupied and cannot be removed", vehicleID))
		}
		return nil
	})
}
