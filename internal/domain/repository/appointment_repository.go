package repository

import (
	"context"
	"errors"
	"time"

	"appointment-service/internal/domain/entity"
)

// ErrStatusChanged is returned by Update when the stored status no longer matches
// the status of the appointment being written.
var ErrStatusChanged = errors.New("appointment status changed since it was read")

// AppointmentRepository is the storage contract consumed by the appointment usecase.
// FindByID returns (nil, nil) when the appointment does not exist.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	// Update writes every mutable field except status, and only while the stored
	// status equals appointment.Status.
	Update(ctx context.Context, appointment *entity.Appointment) error
	FindByID(ctx context.Context, id int64) (*entity.Appointment, error)
	// CancelByID cancels only a SCHEDULED appointment and returns the affected rows.
	CancelByID(ctx context.Context, id int64, modifiedAt time.Time) (int64, error)
	List(ctx context.Context, filter entity.AppointmentFilter, pageNumber, pageSize int) ([]entity.Appointment, int64, error)
}
