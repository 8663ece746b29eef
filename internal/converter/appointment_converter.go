package converter

import (
	"time"

	"appointment-service/internal/delivery/dto"
	"appointment-service/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:               appointment.ID,
		PurposeOfVisit:   appointment.PurposeOfVisit,
		Date:             appointment.Date.Format(entity.DateLayout),
		Time:             appointment.Time,
		Email:            appointment.Email,
		Phone:            appointment.Phone,
		Status:           string(appointment.Status),
		Message:          appointment.Message,
		PatientID:        appointment.PatientID,
		DoctorID:         appointment.DoctorID,
		CreatedBy:        appointment.CreatedBy,
		CreatedDate:      appointment.CreatedDate,
		LastModifiedBy:   appointment.LastModifiedBy,
		LastModifiedDate: appointment.LastModifiedDate,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities, never returning nil
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}

// ParseDate reads a YYYY-MM-DD calendar date as local midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(entity.DateLayout, s, time.Local)
}

// CreateRequestToAppointment converts a validated create request to an entity.
func CreateRequestToAppointment(req *dto.CreateAppointmentRequest) (*entity.Appointment, error) {
	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	tod, err := entity.NormalizeTimeOfDay(req.Time)
	if err != nil {
		return nil, err
	}

	return &entity.Appointment{
		PurposeOfVisit: req.PurposeOfVisit,
		Date:           date,
		Time:           tod,
		Email:          req.Email,
		Phone:          req.Phone,
		Message:        req.Message,
		PatientID:      req.PatientID,
		DoctorID:       req.DoctorID,
		CreatedBy:      req.CreatedBy,
	}, nil
}

// UpdateRequestToPayload converts a validated update request to a partial update.
// Status text is matched case-insensitively.
func UpdateRequestToPayload(req *dto.UpdateAppointmentRequest) (*entity.AppointmentUpdate, error) {
	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	payload := &entity.AppointmentUpdate{
		PurposeOfVisit: req.PurposeOfVisit,
		Date:           date,
		Email:          req.Email,
		Phone:          req.Phone,
		Message:        req.Message,
		LastModifiedBy: req.LastModifiedBy,
		PatientID:      req.PatientID,
		DoctorID:       req.DoctorID,
	}

	if req.Time != nil {
		tod, err := entity.NormalizeTimeOfDay(*req.Time)
		if err != nil {
			return nil, err
		}
		payload.Time = &tod
	}
	if req.Status != nil {
		status, err := entity.ParseAppointmentStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		payload.Status = &status
	}

	return payload, nil
}
