package repository

import (
	"appointment-service/internal/domain/entity"

	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(db *gorm.DB, log *entity.AuditLog) error
	FindByAppointmentID(db *gorm.DB, appointmentID int64) ([]entity.AuditLog, error)
}
