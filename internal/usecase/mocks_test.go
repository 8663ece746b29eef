package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"appointment-service/internal/domain/entity"
	"appointment-service/internal/domain/repository"

	"github.com/stretchr/testify/mock"
)

var _ repository.AppointmentRepository = (*mockAppointmentRepository)(nil)

type mockAppointmentRepository struct {
	mock.Mock
}

func (m *mockAppointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *mockAppointmentRepository) Update(ctx context.Context, appointment *entity.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *mockAppointmentRepository) FindByID(ctx context.Context, id int64) (*entity.Appointment, error) {
	args := m.Called(ctx, id)
	appointment, _ := args.Get(0).(*entity.Appointment)
	return appointment, args.Error(1)
}

func (m *mockAppointmentRepository) CancelByID(ctx context.Context, id int64, modifiedAt time.Time) (int64, error) {
	args := m.Called(ctx, id, modifiedAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAppointmentRepository) List(ctx context.Context, filter entity.AppointmentFilter, pageNumber, pageSize int) ([]entity.Appointment, int64, error) {
	args := m.Called(ctx, filter, pageNumber, pageSize)
	items, _ := args.Get(0).([]entity.Appointment)
	return items, args.Get(1).(int64), args.Error(2)
}

// stubChecker answers existence checks from ExistsFunc, or from Known when unset.
type stubChecker struct {
	Known      map[int64]bool
	ExistsFunc func(ctx context.Context, id int64) bool
	calls      int32
}

func (s *stubChecker) Exists(ctx context.Context, id int64) bool {
	atomic.AddInt32(&s.calls, 1)
	if s.ExistsFunc != nil {
		return s.ExistsFunc(ctx, id)
	}
	return s.Known[id]
}

func (s *stubChecker) Calls() int {
	return int(atomic.LoadInt32(&s.calls))
}
