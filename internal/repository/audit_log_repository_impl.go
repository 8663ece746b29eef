package repository

import (
	"appointment-service/internal/domain/entity"
	domainRepo "appointment-service/internal/domain/repository"

	"gorm.io/gorm"
)

type auditLogRepository struct{}

func NewAuditLogRepository() domainRepo.AuditLogRepository {
	return &auditLogRepository{}
}

func (r *auditLogRepository) Create(db *gorm.DB, log *entity.AuditLog) error {
	return db.Create(log).Error
}

func (r *auditLogRepository) FindByAppointmentID(db *gorm.DB, appointmentID int64) ([]entity.AuditLog, error) {
	var logs []entity.AuditLog
	err := db.Where("appointment_id = ?", appointmentID).Order("created_at ASC").Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
