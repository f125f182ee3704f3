package coordinator

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/becaslatam/becas-api/internal/models"
	appErrors "github.com/becaslatam/becas-api/pkg/errors"
)

// markerValue is stored under a confirmation marker; reservedValue under a
// TTL-bounded reservation.
const (
	markerValue   = "enrolled"
	reservedValue = "reserved"
)

// redisClient is the subset of go-redis commands the coordinator relies on.
type redisClient interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// DurableIndex is the durable store's existence/enumeration query path. It is
// the authority whenever the cache cannot answer.
type DurableIndex interface {
	ExistsRecord(ctx context.Context, key models.EnrollmentKey) (bool, error)
	CarrerasFor(ctx context.Context, dni, institucionSlug string) ([]string, error)
}

type metricsRecorder interface {
	RecordCacheOperation(hit bool, duration time.Duration)
	RecordReservation(won bool)
}

// Coordinator provides atomic reserve-if-absent admission control over Redis
// with the durable store as read fallback. Reserve is the only operation that
// needs a true atomic guarantee; everything else is idempotent or ordered
// relative to it.
type Coordinator struct {
	client      redisClient
	durable     DurableIndex
	backfillTTL time.Duration
	logger      *zap.Logger
	metrics     metricsRecorder
}

// New constructs a Coordinator. metrics may be nil.
func New(client redisClient, durable DurableIndex, backfillTTL time.Duration, logger *zap.Logger, metrics metricsRecorder) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		client:      client,
		durable:     durable,
		backfillTTL: backfillTTL,
		logger:      logger,
		metrics:     metrics,
	}
}

// Exists reports whether a confirmation marker or live reservation is present
// for the key. A cache outage degrades to the durable store; a healthy
// negative is returned as-is (callers needing an authoritative negative follow
// up with ExistsDurable).
func (c *Coordinator) Exists(ctx context.Context, key models.EnrollmentKey) (bool, error) {
	start := time.Now()
	n, err := c.client.Exists(ctx, key.MarkerKey(), key.ReservationKey()).Result()
	if err != nil {
		c.logger.Warn("coordinator exists check degraded to durable store",
			zap.String("key", key.String()), zap.Error(err))
		return c.ExistsDurable(ctx, key)
	}
	hit := n > 0
	if c.metrics != nil {
		c.metrics.RecordCacheOperation(hit, time.Since(start))
	}
	return hit, nil
}

// ExistsDurable queries the durable store directly and, on a positive answer,
// backfills a marker with a bounded TTL so the fast path answers next time.
func (c *Coordinator) ExistsDurable(ctx context.Context, key models.EnrollmentKey) (bool, error) {
	exists, err := c.durable.ExistsRecord(ctx, key)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment record")
	}
	if exists {
		if err := c.client.Set(ctx, key.MarkerKey(), markerValue, c.backfillTTL).Err(); err != nil {
			c.logger.Warn("failed to backfill enrollment marker",
				zap.String("key", key.String()), zap.Error(err))
		}
	}
	return exists, nil
}

// Reserve atomically claims the key for ttl. It returns true iff this call
// created the reservation. A confirmed key can never be re-reserved: the
// marker is permanent, so checking it before the SetNX race is safe. When the
// coordinator is unreachable it fails closed: without the atomic primitive
// uniqueness cannot be guaranteed, so the attempt is rejected rather than
// allowed through.
func (c *Coordinator) Reserve(ctx context.Context, key models.EnrollmentKey, ttl time.Duration) (bool, error) {
	confirmed, err := c.client.Exists(ctx, key.MarkerKey()).Result()
	if err != nil {
		c.logger.Error("reservation attempt failed, rejecting submission",
			zap.String("key", key.String()), zap.Error(err))
		return false, appErrors.ErrCoordinatorUnavailable
	}
	if confirmed > 0 {
		if c.metrics != nil {
			c.metrics.RecordReservation(false)
		}
		return false, nil
	}

	won, err := c.client.SetNX(ctx, key.ReservationKey(), reservedValue, ttl).Result()
	if err != nil {
		c.logger.Error("reservation attempt failed, rejecting submission",
			zap.String("key", key.String()), zap.Error(err))
		return false, appErrors.ErrCoordinatorUnavailable
	}
	if c.metrics != nil {
		c.metrics.RecordReservation(won)
	}
	return won, nil
}

// Release removes the reservation for the key. It is idempotent and never
// fails the caller: release runs on error paths where the original failure
// must stay visible, and the reservation TTL is the backstop anyway.
func (c *Coordinator) Release(ctx context.Context, key models.EnrollmentKey) {
	if err := c.client.Del(ctx, key.ReservationKey()).Err(); err != nil {
		c.logger.Warn("failed to release reservation, TTL will reclaim it",
			zap.String("key", key.String()), zap.Error(err))
	}
}

// Confirm sets the permanent confirmation marker and then clears the
// reservation. The marker is written first so a concurrent Exists never
// observes the key as free between the two steps.
func (c *Coordinator) Confirm(ctx context.Context, key models.EnrollmentKey) error {
	if err := c.client.Set(ctx, key.MarkerKey(), markerValue, 0).Err(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to confirm enrollment")
	}
	c.Release(ctx, key)
	return nil
}

// Forget drops both the confirmation marker and any reservation for the key.
// It runs when the underlying record is deleted so the key can be claimed
// again.
func (c *Coordinator) Forget(ctx context.Context, key models.EnrollmentKey) error {
	if err := c.client.Del(ctx, key.MarkerKey(), key.ReservationKey()).Err(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear enrollment key")
	}
	return nil
}

// Status classifies the key as ENROLLED, RESERVED or AVAILABLE. With the cache
// down only confirmed enrollments can be recovered, from the durable store.
func (c *Coordinator) Status(ctx context.Context, key models.EnrollmentKey) (models.AvailabilityStatus, error) {
	enrolled, err := c.client.Exists(ctx, key.MarkerKey()).Result()
	if err != nil {
		exists, derr := c.ExistsDurable(ctx, key)
		if derr != nil {
			return "", derr
		}
		if exists {
			return models.AvailabilityEnrolled, nil
		}
		return models.AvailabilityAvailable, nil
	}
	if enrolled > 0 {
		return models.AvailabilityEnrolled, nil
	}

	reserved, err := c.client.Exists(ctx, key.ReservationKey()).Result()
	if err != nil {
		return models.AvailabilityAvailable, nil
	}
	if reserved > 0 {
		return models.AvailabilityReserved, nil
	}
	return models.AvailabilityAvailable, nil
}

// CarrerasFor enumerates the carreras a DNI already holds. Enumeration always
// goes through the durable store's indexed query; scanning cache keys by
// pattern is O(keyspace) and defeats the point of the fast path.
func (c *Coordinator) CarrerasFor(ctx context.Context, dni, institucionSlug string) ([]string, error) {
	carreras, err := c.durable.CarrerasFor(ctx, dni, institucionSlug)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrolled carreras")
	}
	return carreras, nil
}

// Ping reports coordinator reachability.
func (c *Coordinator) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
