package repository

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"appointment-service/internal/domain/entity"
	domainRepo "appointment-service/internal/domain/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRepository counts FindByID calls on the memory store. afterRead, when set,
// runs once between the store read and the return.
type countingRepository struct {
	*memoryAppointmentRepository
	finds     int
	afterRead func()
}

func (r *countingRepository) FindByID(ctx context.Context, id int64) (*entity.Appointment, error) {
	r.finds++
	appointment, err := r.memoryAppointmentRepository.FindByID(ctx, id)
	if hook := r.afterRead; hook != nil {
		r.afterRead = nil
		hook()
	}
	return appointment, err
}

func newCacheFixture(t *testing.T) (*miniredis.Miniredis, *countingRepository, *cachedAppointmentRepository) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	inner := &countingRepository{memoryAppointmentRepository: NewMemoryAppointmentRepository().(*memoryAppointmentRepository)}
	cached := NewCachedAppointmentRepository(inner, client, time.Minute, log).(*cachedAppointmentRepository)
	return mr, inner, cached
}

func seedAppointment(t *testing.T, repo *cachedAppointmentRepository) *entity.Appointment {
	t.Helper()
	a := &entity.Appointment{
		PurposeOfVisit: "Checkup",
		Date:           time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		Time:           "10:00:00",
		Status:         entity.AppointmentStatusScheduled,
		PatientID:      1,
		DoctorID:       2,
	}
	require.NoError(t, repo.Create(context.Background(), a))
	return a
}

func TestCachedAppointmentRepository_FindByIDReadsThrough(t *testing.T) {
	mr, inner, cached := newCacheFixture(t)
	a := seedAppointment(t, cached)
	ctx := context.Background()

	first, err := cached.FindByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, mr.Exists(appointmentKey(a.ID)))

	second, err := cached.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, first.PurposeOfVisit, second.PurposeOfVisit)
	assert.Equal(t, 1, inner.finds, "second read should be served by redis")
}

func TestCachedAppointmentRepository_MissingIsNotCached(t *testing.T) {
	mr, _, cached := newCacheFixture(t)

	got, err := cached.FindByID(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists(appointmentKey(404)))
}

func TestCachedAppointmentRepository_CancelEvicts(t *testing.T) {
	mr, _, cached := newCacheFixture(t)
	a := seedAppointment(t, cached)
	ctx := context.Background()

	_, err := cached.FindByID(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(appointmentKey(a.ID)))

	affected, err := cached.CancelByID(ctx, a.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.False(t, mr.Exists(appointmentKey(a.ID)))

	got, err := cached.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStatusCancelled, got.Status)
}

func TestCachedAppointmentRepository_UpdateEvicts(t *testing.T) {
	mr, _, cached := newCacheFixture(t)
	a := seedAppointment(t, cached)
	ctx := context.Background()

	_, err := cached.FindByID(ctx, a.ID)
	require.NoError(t, err)

	a.PurposeOfVisit = "Follow-up"
	require.NoError(t, cached.Update(ctx, a))
	assert.False(t, mr.Exists(appointmentKey(a.ID)))

	got, err := cached.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Follow-up", got.PurposeOfVisit)
}

func TestCachedAppointmentRepository_RedisDownFallsBackToStore(t *testing.T) {
	mr, inner, cached := newCacheFixture(t)
	a := seedAppointment(t, cached)
	mr.Close()

	got, err := cached.FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, inner.finds)
}

func TestCachedAppointmentRepository_CorruptEntryIsDiscarded(t *testing.T) {
	mr, inner, cached := newCacheFixture(t)
	a := seedAppointment(t, cached)
	require.NoError(t, mr.Set(appointmentKey(a.ID), "{not json"))

	got, err := cached.FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, inner.finds)
}

func TestCachedAppointmentRepository_CancelDuringFillIsNotCached(t *testing.T) {
	mr, inner, cached := newCacheFixture(t)
	a := seedAppointment(t, cached)
	ctx := context.Background()

	inner.afterRead = func() {
		affected, err := cached.CancelByID(ctx, a.ID, time.Now())
		require.NoError(t, err)
		require.Equal(t, int64(1), affected)
	}

	first, err := cached.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStatusScheduled, first.Status, "read happened before the cancel")
	assert.False(t, mr.Exists(appointmentKey(a.ID)), "stale copy must not be cached")

	second, err := cached.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStatusCancelled, second.Status)
	assert.True(t, mr.Exists(appointmentKey(a.ID)))
}

func TestCachedAppointmentRepository_StaleUpdateEvictsAndFails(t *testing.T) {
	mr, _, cached := newCacheFixture(t)
	a := seedAppointment(t, cached)
	ctx := context.Background()

	stale, err := cached.FindByID(ctx, a.ID)
	require.NoError(t, err)

	_, err = cached.CancelByID(ctx, a.ID, time.Now())
	require.NoError(t, err)
	require.NoError(t, mr.Set(appointmentKey(a.ID), mustJSON(t, stale)))

	stale.Message = "overwrite"
	err = cached.Update(ctx, stale)
	assert.ErrorIs(t, err, domainRepo.ErrStatusChanged)
	assert.False(t, mr.Exists(appointmentKey(a.ID)))

	got, err := cached.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStatusCancelled, got.Status)
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}
