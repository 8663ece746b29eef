package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"appointment-service/internal/domain/entity"
	domainRepo "appointment-service/internal/domain/repository"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// RedisAppointmentKeyPrefix prefixes cached appointment records
	RedisAppointmentKeyPrefix = "appointment:"

	// RedisAppointmentGenerationSuffix marks the per-appointment eviction counter
	RedisAppointmentGenerationSuffix = ":gen"

	// Timeout for individual Redis operations
	redisCacheTimeout = 2 * time.Second

	// The generation counter must outlive any read that started before an eviction.
	generationGrace = time.Hour
)

var errStaleFill = errors.New("appointment changed while it was being cached")

// cachedAppointmentRepository is a read-through cache for FindByID in front of another store.
// Mutations go to the inner store first and then evict the key. Every eviction bumps a
// generation counter, and a fill only lands if the counter is unchanged since before the
// store read. Redis failures never fail a request; the inner store stays the source of truth.
type cachedAppointmentRepository struct {
	inner       domainRepo.AppointmentRepository
	redisClient *redis.Client
	ttl         time.Duration
	log         *logrus.Logger
}

func NewCachedAppointmentRepository(inner domainRepo.AppointmentRepository, redisClient *redis.Client, ttl time.Duration, log *logrus.Logger) domainRepo.AppointmentRepository {
	return &cachedAppointmentRepository{
		inner:       inner,
		redisClient: redisClient,
		ttl:         ttl,
		log:         log,
	}
}

func (r *cachedAppointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	return r.inner.Create(ctx, appointment)
}

func (r *cachedAppointmentRepository) Update(ctx context.Context, appointment *entity.Appointment) error {
	err := r.inner.Update(ctx, appointment)
	// Evict on failure too: a status conflict means the cached copy is stale.
	r.evict(ctx, appointment.ID)
	return err
}

func (r *cachedAppointmentRepository) FindByID(ctx context.Context, id int64) (*entity.Appointment, error) {
	if cached, ok := r.get(ctx, id); ok {
		return cached, nil
	}

	generation, ok := r.generation(ctx, id)

	appointment, err := r.inner.FindByID(ctx, id)
	if err != nil || appointment == nil {
		return appointment, err
	}

	if ok {
		r.set(ctx, appointment, generation)
	}
	return appointment, nil
}

func (r *cachedAppointmentRepository) CancelByID(ctx context.Context, id int64, modifiedAt time.Time) (int64, error) {
	affected, err := r.inner.CancelByID(ctx, id, modifiedAt)
	if err != nil {
		return 0, err
	}
	r.evict(ctx, id)
	return affected, nil
}

func (r *cachedAppointmentRepository) List(ctx context.Context, filter entity.AppointmentFilter, pageNumber, pageSize int) ([]entity.Appointment, int64, error) {
	return r.inner.List(ctx, filter, pageNumber, pageSize)
}

func appointmentKey(id int64) string {
	return fmt.Sprintf("%s%d", RedisAppointmentKeyPrefix, id)
}

func generationKey(id int64) string {
	return appointmentKey(id) + RedisAppointmentGenerationSuffix
}

// generation reads the eviction counter; a missing counter is generation 0.
func (r *cachedAppointmentRepository) generation(ctx context.Context, id int64) (int64, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	generation, err := r.redisClient.Get(ctx, generationKey(id)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.log.Warnf("Failed to read cache generation for appointment %d: %+v", id, err)
		return 0, false
	}
	return generation, true
}

func (r *cachedAppointmentRepository) get(ctx context.Context, id int64) (*entity.Appointment, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	raw, err := r.redisClient.Get(ctx, appointmentKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warnf("Failed to read appointment %d from cache: %+v", id, err)
		}
		return nil, false
	}

	var appointment entity.Appointment
	if err := json.Unmarshal(raw, &appointment); err != nil {
		r.log.Warnf("Discarding corrupt cache entry for appointment %d: %+v", id, err)
		r.evict(ctx, id)
		return nil, false
	}
	return &appointment, true
}

// set caches appointment unless an eviction happened after generation was read.
func (r *cachedAppointmentRepository) set(ctx context.Context, appointment *entity.Appointment, generation int64) {
	raw, err := json.Marshal(appointment)
	if err != nil {
		r.log.Warnf("Failed to encode appointment %d for cache: %+v", appointment.ID, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	genKey := generationKey(appointment.ID)
	err = r.redisClient.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleFill
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, appointmentKey(appointment.ID), raw, r.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		r.log.Debugf("Skipped caching appointment %d: changed during read", appointment.ID)
	default:
		r.log.Warnf("Failed to cache appointment %d: %+v", appointment.ID, err)
	}
}

func (r *cachedAppointmentRepository) evict(ctx context.Context, id int64) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	genKey := generationKey(id)
	_, err := r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, r.ttl+generationGrace)
		pipe.Del(ctx, appointmentKey(id))
		return nil
	})
	if err != nil {
		r.log.Warnf("Failed to evict appointment %d from cache: %+v", id, err)
	}
}
