package usecase

import (
	"context"
	"errors"
	"testing"

	"appointment-service/internal/domain/entity"
	"appointment-service/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type mockAuditLogRepository struct {
	mock.Mock
}

func (m *mockAuditLogRepository) Create(db *gorm.DB, log *entity.AuditLog) error {
	return m.Called(db, log).Error(0)
}

func (m *mockAuditLogRepository) FindByAppointmentID(db *gorm.DB, appointmentID int64) ([]entity.AuditLog, error) {
	args := m.Called(db, appointmentID)
	logs, _ := args.Get(0).([]entity.AuditLog)
	return logs, args.Error(1)
}

// lazyDB returns a handle that never dials; the audit repository is mocked.
func lazyDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 port=1 user=test dbname=test sslmode=disable",
	}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestGetAppointmentHistory(t *testing.T) {
	appointments := &mockAppointmentRepository{}
	audits := &mockAuditLogRepository{}
	uc := NewAuditLogUsecase(lazyDB(t), quietLogger(), audits, appointments, testMessages(t))

	appointments.On("FindByID", mock.Anything, int64(5)).Return(&entity.Appointment{ID: 5}, nil)
	audits.On("FindByAppointmentID", mock.Anything, int64(5)).Return([]entity.AuditLog{
		{ID: 1, AppointmentID: 5, Action: entity.AuditActionAppointmentCreate},
		{ID: 2, AppointmentID: 5, Action: entity.AuditActionAppointmentCancel},
	}, nil)

	logs, err := uc.GetAppointmentHistory(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestGetAppointmentHistory_UnknownAppointment(t *testing.T) {
	appointments := &mockAppointmentRepository{}
	audits := &mockAuditLogRepository{}
	uc := NewAuditLogUsecase(lazyDB(t), quietLogger(), audits, appointments, testMessages(t))

	appointments.On("FindByID", mock.Anything, int64(6)).Return(nil, nil)

	_, err := uc.GetAppointmentHistory(context.Background(), 6)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	audits.AssertNotCalled(t, "FindByAppointmentID", mock.Anything, mock.Anything)
}

func TestGetAppointmentHistory_StoreError(t *testing.T) {
	appointments := &mockAppointmentRepository{}
	audits := &mockAuditLogRepository{}
	uc := NewAuditLogUsecase(lazyDB(t), quietLogger(), audits, appointments, testMessages(t))

	storeErr := errors.New("timeout")
	appointments.On("FindByID", mock.Anything, int64(5)).Return(&entity.Appointment{ID: 5}, nil)
	audits.On("FindByAppointmentID", mock.Anything, int64(5)).Return(nil, storeErr)

	_, err := uc.GetAppointmentHistory(context.Background(), 5)
	assert.ErrorIs(t, err, storeErr)
}
