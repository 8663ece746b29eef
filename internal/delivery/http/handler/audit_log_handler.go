package handler

import (
	"net/http"

	"appointment-service/internal/converter"
	"appointment-service/internal/usecase"
	"appointment-service/pkg/response"
)

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
	}
}

func (h *AuditLogHandler) GetAppointmentHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	logs, err := h.auditLogUsecase.GetAppointmentHistory(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to get appointment history")
		return
	}

	response.Success(w, http.StatusOK, "Appointment history retrieved successfully", converter.AuditLogsToResponses(logs))
}
