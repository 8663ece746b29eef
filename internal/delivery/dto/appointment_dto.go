package dto

import "time"

// Request DTOs

type CreateAppointmentRequest struct {
	PurposeOfVisit string `json:"purpose_of_visit" validate:"required,min=1,max=255"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	Time           string `json:"time" validate:"required,timeofday"`
	Email          string `json:"email" validate:"required,email,max=255"`
	Phone          string `json:"phone" validate:"required,phone=91"`
	Message        string `json:"message" validate:"required,min=1,max=255"`
	PatientID      int64  `json:"patient_id" validate:"required,gt=0"`
	DoctorID       int64  `json:"doctor_id" validate:"required,gt=0"`
	CreatedBy      string `json:"created_by" validate:"omitempty,max=255"`
}

// UpdateAppointmentRequest leaves absent fields untouched. Date is always required
// because the scheduling window is checked on every update.
type UpdateAppointmentRequest struct {
	PurposeOfVisit *string `json:"purpose_of_visit" validate:"omitempty,min=1,max=255"`
	Date           string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time           *string `json:"time" validate:"omitempty,timeofday"`
	Email          *string `json:"email" validate:"omitempty,email,max=255"`
	Phone          *string `json:"phone" validate:"omitempty,phone=91"`
	Message        *string `json:"message" validate:"omitempty,min=1,max=255"`
	LastModifiedBy *string `json:"last_modified_by" validate:"omitempty,max=255"`
	Status         *string `json:"status"`
	PatientID      *int64  `json:"patient_id" validate:"omitempty,gt=0"`
	DoctorID       *int64  `json:"doctor_id" validate:"omitempty,gt=0"`
}

// Response DTOs

type AppointmentResponse struct {
	ID               int64     `json:"id"`
	PurposeOfVisit   string    `json:"purpose_of_visit"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Status           string    `json:"status"`
	Message          string    `json:"message"`
	PatientID        int64     `json:"patient_id"`
	DoctorID         int64     `json:"doctor_id"`
	CreatedBy        string    `json:"created_by"`
	CreatedDate      time.Time `json:"created_date"`
	LastModifiedBy   string    `json:"last_modified_by"`
	LastModifiedDate time.Time `json:"last_modified_date"`
}
