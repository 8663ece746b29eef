package service

import (
	"context"

	"appointment-service/internal/domain/entity"
	"appointment-service/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuditService interface {
	LogCreate(ctx context.Context, tx *gorm.DB, actor string, appointmentID int64, newValue interface{}) error
	LogUpdate(ctx context.Context, tx *gorm.DB, actor string, appointmentID int64, oldValue, newValue interface{}) error
	LogCancel(ctx context.Context, tx *gorm.DB, actor string, appointmentID int64, oldStatus entity.AppointmentStatus) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogCreate logs a create action
func (s *auditService) LogCreate(ctx context.Context, tx *gorm.DB, actor string, appointmentID int64, newValue interface{}) error {
	return s.write(ctx, tx, actor, entity.AuditActionAppointmentCreate, appointmentID, entity.JSON{
		"old_value": nil,
		"new_value": newValue,
	})
}

// LogUpdate logs an update action with old and new values
func (s *auditService) LogUpdate(ctx context.Context, tx *gorm.DB, actor string, appointmentID int64, oldValue, newValue interface{}) error {
	return s.write(ctx, tx, actor, entity.AuditActionAppointmentUpdate, appointmentID, entity.JSON{
		"old_value": oldValue,
		"new_value": newValue,
	})
}

// LogCancel logs a status change to CANCELLED
func (s *auditService) LogCancel(ctx context.Context, tx *gorm.DB, actor string, appointmentID int64, oldStatus entity.AppointmentStatus) error {
	return s.write(ctx, tx, actor, entity.AuditActionAppointmentCancel, appointmentID, entity.JSON{
		"old_value": map[string]interface{}{"status": oldStatus},
		"new_value": map[string]interface{}{"status": entity.AppointmentStatusCancelled},
	})
}

func (s *auditService) write(ctx context.Context, tx *gorm.DB, actor, action string, appointmentID int64, metadata entity.JSON) error {
	auditLog := &entity.AuditLog{
		AppointmentID: appointmentID,
		Actor:         actor,
		Action:        action,
		Metadata:      metadata,
	}

	if err := s.auditRepo.Create(tx.WithContext(ctx), auditLog); err != nil {
		s.log.Warnf("Failed to create audit log for appointment %d: %+v", appointmentID, err)
		return err
	}

	return nil
}
