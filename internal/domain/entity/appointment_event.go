package entity

import "time"

type AppointmentEventType string

const (
	AppointmentEventCreated   AppointmentEventType = "appointment.created"
	AppointmentEventUpdated   AppointmentEventType = "appointment.updated"
	AppointmentEventCancelled AppointmentEventType = "appointment.cancelled"
)

// AppointmentEvent is published after a mutation has been stored.
type AppointmentEvent struct {
	ID            string               `json:"event_id"`
	Type          AppointmentEventType `json:"event_type"`
	AppointmentID int64                `json:"appointment_id"`
	Status        AppointmentStatus    `json:"status"`
	PatientID     int64                `json:"patient_id,omitempty"`
	DoctorID      int64                `json:"doctor_id,omitempty"`
	Date          string               `json:"date,omitempty"`
	Time          string               `json:"time,omitempty"`
	Actor         string               `json:"actor,omitempty"`
	OccurredAt    time.Time            `json:"occurred_at"`
}
