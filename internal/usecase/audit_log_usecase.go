package usecase

import (
	"context"
	"fmt"

	"appointment-service/internal/domain/entity"
	"appointment-service/internal/domain/repository"
	"appointment-service/internal/service"
	"appointment-service/pkg/apperror"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditLogUsecase reads the change history written alongside appointment mutations.
type AuditLogUsecase interface {
	GetAppointmentHistory(ctx context.Context, appointmentID int64) ([]entity.AuditLog, error)
}

type auditLogUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	auditLogRepo    repository.AuditLogRepository
	appointmentRepo repository.AppointmentRepository
	messages        service.MessageService
}

func NewAuditLogUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
	appointmentRepo repository.AppointmentRepository,
	messages service.MessageService,
) AuditLogUsecase {
	return &auditLogUsecase{
		db:              db,
		log:             log,
		auditLogRepo:    auditLogRepo,
		appointmentRepo: appointmentRepo,
		messages:        messages,
	}
}

func (u *auditLogUsecase) GetAppointmentHistory(ctx context.Context, appointmentID int64) ([]entity.AuditLog, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", appointmentID, err)
		return nil, fmt.Errorf("find appointment %d: %w", appointmentID, err)
	}
	if appointment == nil {
		return nil, apperror.New(apperror.KindNotFound, u.messages.GetMessage(service.MsgInvalidAppointment))
	}

	logs, err := u.auditLogRepo.FindByAppointmentID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find audit logs for appointment %d: %+v", appointmentID, err)
		return nil, fmt.Errorf("find audit logs for appointment %d: %w", appointmentID, err)
	}
	if logs == nil {
		logs = []entity.AuditLog{}
	}

	return logs, nil
}
