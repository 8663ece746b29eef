package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"appointment-service/internal/delivery/http/middleware"
	"appointment-service/internal/domain/entity"
	domainRepo "appointment-service/internal/domain/repository"
	"appointment-service/internal/service"

	"gorm.io/gorm"
)

type appointmentRepository struct {
	db           *gorm.DB
	auditService service.AuditService
}

// NewAppointmentRepository returns the PostgreSQL-backed store. Every mutation
// writes its audit entry in the same transaction.
func NewAppointmentRepository(db *gorm.DB, auditService service.AuditService) domainRepo.AppointmentRepository {
	return &appointmentRepository{
		db:           db,
		auditService: auditService,
	}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(appointment).Error; err != nil {
			return err
		}
		return r.auditService.LogCreate(ctx, tx, appointment.CreatedBy, appointment.ID, appointment)
	})
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *entity.Appointment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old entity.Appointment
		if err := tx.Where("id = ?", appointment.ID).First(&old).Error; err != nil {
			return err
		}

		result := tx.Model(&entity.Appointment{}).
			Where("id = ? AND status = ?", appointment.ID, appointment.Status).
			Updates(map[string]interface{}{
				"purpose_of_visit":   appointment.PurposeOfVisit,
				"date":               appointment.Date,
				"time":               appointment.Time,
				"email":              appointment.Email,
				"phone":              appointment.Phone,
				"message":            appointment.Message,
				"patient_id":         appointment.PatientID,
				"doctor_id":          appointment.DoctorID,
				"last_modified_by":   appointment.LastModifiedBy,
				"last_modified_date": appointment.LastModifiedDate,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainRepo.ErrStatusChanged
		}
		return r.auditService.LogUpdate(ctx, tx, appointment.LastModifiedBy, appointment.ID, &old, appointment)
	})
}

func (r *appointmentRepository) FindByID(ctx context.Context, id int64) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// CancelByID atomically cancels an appointment ONLY if it is still scheduled.
// Returns affected rows: 1 = cancelled, 0 = not found or no longer scheduled.
func (r *appointmentRepository) CancelByID(ctx context.Context, id int64, modifiedAt time.Time) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Appointment{}).
			Where("id = ? AND status = ?", id, entity.AppointmentStatusScheduled).
			Updates(map[string]interface{}{
				"status":             entity.AppointmentStatusCancelled,
				"last_modified_date": modifiedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		if affected == 0 {
			return nil
		}
		return r.auditService.LogCancel(ctx, tx, middleware.GetActorFromContext(ctx), id, entity.AppointmentStatusScheduled)
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func (r *appointmentRepository) List(ctx context.Context, filter entity.AppointmentFilter, pageNumber, pageSize int) ([]entity.Appointment, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Appointment{})

	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.Date != nil {
		query = query.Where("date = ?", filter.Date.Format(entity.DateLayout))
	}
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.DoctorID != nil {
		query = query.Where("doctor_id = ?", *filter.DoctorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	var appointments []entity.Appointment
	err := query.
		Order("date ASC, time ASC, id ASC").
		Offset((pageNumber - 1) * pageSize).
		Limit(pageSize).
		Find(&appointments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	return appointments, total, nil
}
