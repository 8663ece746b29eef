package dto

import (
	"appointment-service/internal/domain/entity"
	"time"
)

// Response DTOs

type AuditLogResponse struct {
	ID            int64       `json:"id"`
	AppointmentID int64       `json:"appointment_id"`
	Actor         string      `json:"actor,omitempty"`
	Action        string      `json:"action"`
	Metadata      entity.JSON `json:"metadata"`
	CreatedAt     time.Time   `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}
