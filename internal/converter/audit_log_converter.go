package converter

import (
	"appointment-service/internal/delivery/dto"
	"appointment-service/internal/domain/entity"
)

// AuditLogToResponse converts a AuditLog entity to AuditLogResponse DTO
func AuditLogToResponse(log *entity.AuditLog) *dto.AuditLogResponse {
	if log == nil {
		return nil
	}

	return &dto.AuditLogResponse{
		ID:            log.ID,
		AppointmentID: log.AppointmentID,
		Actor:         log.Actor,
		Action:        log.Action,
		Metadata:      log.Metadata,
		CreatedAt:     log.CreatedAt,
	}
}

// AuditLogsToResponses converts a slice of AuditLog entities to a list response
func AuditLogsToResponses(logs []entity.AuditLog) *dto.AuditLogListResponse {
	responses := make([]dto.AuditLogResponse, len(logs))
	for i := range logs {
		responses[i] = *AuditLogToResponse(&logs[i])
	}
	return &dto.AuditLogListResponse{
		Logs:  responses,
		Total: len(responses),
	}
}
