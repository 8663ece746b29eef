package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"appointment-service/internal/converter"
	"appointment-service/internal/delivery/dto"
	"appointment-service/internal/domain/entity"
	"appointment-service/internal/usecase"
	"appointment-service/pkg/apperror"
	"appointment-service/pkg/response"
	"appointment-service/pkg/validator"

	"github.com/gorilla/mux"
)

const (
	defaultPageNumber = 1
	defaultPageSize   = 20
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

// writeError maps error kinds to status codes. Anything without a kind is a 500.
func writeError(w http.ResponseWriter, err error, fallback string) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		response.InternalServerError(w, fallback)
		return
	}

	switch appErr.Kind {
	case apperror.KindNotFound:
		response.Error(w, http.StatusNotFound, appErr.Error(), appErr.Kind)
	case apperror.KindIllegalCancellation, apperror.KindInvalidStatusTransition:
		response.Error(w, http.StatusConflict, appErr.Error(), appErr.Kind)
	default:
		response.Error(w, http.StatusBadRequest, appErr.Error(), appErr.Kind)
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pagination reads pageNumber and pageSize, defaulting to 1 and 20. Range
// checks belong to the usecase so every caller gets the same rule.
func pagination(r *http.Request) (int, int, bool) {
	q := r.URL.Query()
	pageNumber, pageSize := defaultPageNumber, defaultPageSize

	if raw := q.Get("pageNumber"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, false
		}
		pageNumber = n
	}
	if raw := q.Get("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, false
		}
		pageSize = n
	}
	return pageNumber, pageSize, true
}

func writePage(w http.ResponseWriter, page *entity.PagedAppointments) {
	response.SuccessWithMeta(w, http.StatusOK, "Appointments retrieved successfully",
		converter.AppointmentsToResponses(page.Items),
		response.NewMeta(page.PageNumber, page.PageSize, page.TotalCount))
}

func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := converter.CreateRequestToAppointment(&req)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	created, err := h.appointmentUsecase.Create(r.Context(), appointment)
	if err != nil {
		writeError(w, err, "Failed to create appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment created successfully", converter.AppointmentToResponse(created))
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	appointment, err := h.appointmentUsecase.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", converter.AppointmentToResponse(appointment))
}

func (h *AppointmentHandler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	var req dto.UpdateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	payload, err := converter.UpdateRequestToPayload(&req)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	updated, err := h.appointmentUsecase.Update(r.Context(), id, payload)
	if err != nil {
		writeError(w, err, "Failed to update appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment updated successfully", converter.AppointmentToResponse(updated))
}

func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	if err := h.appointmentUsecase.Cancel(r.Context(), id); err != nil {
		writeError(w, err, "Failed to cancel appointment")
		return
	}

	response.NoContent(w)
}

func (h *AppointmentHandler) GetAllAppointments(w http.ResponseWriter, r *http.Request) {
	pageNumber, pageSize, ok := pagination(r)
	if !ok {
		response.BadRequest(w, "pageNumber and pageSize must be integers")
		return
	}

	page, err := h.appointmentUsecase.GetAll(r.Context(), pageNumber, pageSize)
	if err != nil {
		writeError(w, err, "Failed to get appointments")
		return
	}
	writePage(w, page)
}

func (h *AppointmentHandler) GetActiveAppointments(w http.ResponseWriter, r *http.Request) {
	pageNumber, pageSize, ok := pagination(r)
	if !ok {
		response.BadRequest(w, "pageNumber and pageSize must be integers")
		return
	}

	page, err := h.appointmentUsecase.GetActive(r.Context(), pageNumber, pageSize)
	if err != nil {
		writeError(w, err, "Failed to get active appointments")
		return
	}
	writePage(w, page)
}

func (h *AppointmentHandler) GetInactiveAppointments(w http.ResponseWriter, r *http.Request) {
	pageNumber, pageSize, ok := pagination(r)
	if !ok {
		response.BadRequest(w, "pageNumber and pageSize must be integers")
		return
	}

	page, err := h.appointmentUsecase.GetInactive(r.Context(), pageNumber, pageSize)
	if err != nil {
		writeError(w, err, "Failed to get inactive appointments")
		return
	}
	writePage(w, page)
}

func (h *AppointmentHandler) FilterByDate(w http.ResponseWriter, r *http.Request) {
	pageNumber, pageSize, ok := pagination(r)
	if !ok {
		response.BadRequest(w, "pageNumber and pageSize must be integers")
		return
	}

	date, err := converter.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		response.BadRequest(w, "date must be in YYYY-MM-DD format")
		return
	}

	page, err := h.appointmentUsecase.FilterByDate(r.Context(), date, pageNumber, pageSize)
	if err != nil {
		writeError(w, err, "Failed to filter appointments by date")
		return
	}
	writePage(w, page)
}

func (h *AppointmentHandler) FilterByStatus(w http.ResponseWriter, r *http.Request) {
	pageNumber, pageSize, ok := pagination(r)
	if !ok {
		response.BadRequest(w, "pageNumber and pageSize must be integers")
		return
	}

	page, err := h.appointmentUsecase.FilterByStatus(r.Context(), r.URL.Query().Get("status"), pageNumber, pageSize)
	if err != nil {
		writeError(w, err, "Failed to filter appointments by status")
		return
	}
	writePage(w, page)
}

func (h *AppointmentHandler) GetPatientAppointments(w http.ResponseWriter, r *http.Request) {
	patientID, ok := pathID(r, "patientId")
	if !ok {
		response.BadRequest(w, "Invalid patient ID")
		return
	}
	pageNumber, pageSize, ok := pagination(r)
	if !ok {
		response.BadRequest(w, "pageNumber and pageSize must be integers")
		return
	}

	page, err := h.appointmentUsecase.GetByPatientID(r.Context(), patientID, pageNumber, pageSize)
	if err != nil {
		writeError(w, err, "Failed to get patient appointments")
		return
	}
	writePage(w, page)
}

func (h *AppointmentHandler) GetDoctorAppointments(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathID(r, "doctorId")
	if !ok {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}
	pageNumber, pageSize, ok := pagination(r)
	if !ok {
		response.BadRequest(w, "pageNumber and pageSize must be integers")
		return
	}

	page, err := h.appointmentUsecase.GetByDoctorID(r.Context(), doctorID, pageNumber, pageSize)
	if err != nil {
		writeError(w, err, "Failed to get doctor appointments")
		return
	}
	writePage(w, page)
}
