package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "SCHEDULED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusClosed    AppointmentStatus = "CLOSED"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

var ErrInvalidTimeOfDay = errors.New("invalid time format, use HH:MM or HH:MM:SS")

// ParseAppointmentStatus parses a status name case-insensitively.
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	switch AppointmentStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case AppointmentStatusScheduled:
		return AppointmentStatusScheduled, nil
	case AppointmentStatusCancelled:
		return AppointmentStatusCancelled, nil
	case AppointmentStatusClosed:
		return AppointmentStatusClosed, nil
	}
	return "", fmt.Errorf("unknown appointment status %q", s)
}

// InactiveStatuses are the terminal states.
var InactiveStatuses = []AppointmentStatus{AppointmentStatusCancelled, AppointmentStatusClosed}

// Appointment represents a scheduled patient-doctor encounter
type Appointment struct {
	ID               int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	PurposeOfVisit   string            `gorm:"type:varchar(255);not null" json:"purpose_of_visit"`
	Date             time.Time         `gorm:"type:date;not null;index" json:"date"`
	Time             string            `gorm:"type:time;not null" json:"time"`
	Email            string            `gorm:"type:varchar(255);not null" json:"email"`
	Phone            string            `gorm:"type:varchar(20);not null" json:"phone"`
	Status           AppointmentStatus `gorm:"type:varchar(20);not null;default:'SCHEDULED';index" json:"status"`
	Message          string            `gorm:"type:varchar(255);not null" json:"message"`
	PatientID        int64             `gorm:"not null;index" json:"patient_id"`
	DoctorID         int64             `gorm:"not null;index" json:"doctor_id"`
	CreatedBy        string            `gorm:"type:varchar(255)" json:"created_by"`
	CreatedDate      time.Time         `gorm:"not null" json:"created_date"`
	LastModifiedBy   string            `gorm:"type:varchar(255);not null" json:"last_modified_by"`
	LastModifiedDate time.Time         `gorm:"not null" json:"last_modified_date"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsScheduled checks if the appointment can still be cancelled or updated
func (a *Appointment) IsScheduled() bool {
	return a.Status == AppointmentStatusScheduled
}

// IsActive reports whether the appointment is still upcoming
func (a *Appointment) IsActive() bool {
	return a.IsScheduled()
}

// CanTransitionTo reports whether the status change is legal.
// SCHEDULED is the only state with outgoing transitions.
func (a *Appointment) CanTransitionTo(next AppointmentStatus) bool {
	if a.Status != AppointmentStatusScheduled {
		return false
	}
	return next == AppointmentStatusCancelled || next == AppointmentStatusClosed
}

// StartsAt combines the calendar date and the time of day in loc.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	tod, err := ParseTimeOfDay(a.Time)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(),
		tod.Hour(), tod.Minute(), tod.Second(), 0, loc), nil
}

// ParseTimeOfDay accepts HH:MM and HH:MM:SS.
func ParseTimeOfDay(s string) (time.Time, error) {
	for _, layout := range []string{TimeLayout, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidTimeOfDay
}

// NormalizeTimeOfDay returns s in HH:MM:SS form.
func NormalizeTimeOfDay(s string) (string, error) {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		return "", err
	}
	return t.Format(TimeLayout), nil
}

// AppointmentUpdate is a partial view of Appointment. Nil fields are left unchanged.
type AppointmentUpdate struct {
	PurposeOfVisit *string
	Date           time.Time
	Time           *string
	Email          *string
	Phone          *string
	Message        *string
	LastModifiedBy *string
	Status         *AppointmentStatus
	PatientID      *int64
	DoctorID       *int64
}

// ApplyTo merges the non-nil fields onto a.
func (u *AppointmentUpdate) ApplyTo(a *Appointment) {
	if u.PurposeOfVisit != nil {
		a.PurposeOfVisit = *u.PurposeOfVisit
	}
	a.Date = u.Date
	if u.Time != nil {
		a.Time = *u.Time
	}
	if u.Email != nil {
		a.Email = *u.Email
	}
	if u.Phone != nil {
		a.Phone = *u.Phone
	}
	if u.Message != nil {
		a.Message = *u.Message
	}
	if u.LastModifiedBy != nil {
		a.LastModifiedBy = *u.LastModifiedBy
	}
	if u.Status != nil {
		a.Status = *u.Status
	}
	if u.PatientID != nil {
		a.PatientID = *u.PatientID
	}
	if u.DoctorID != nil {
		a.DoctorID = *u.DoctorID
	}
}

// PagedAppointments is one page of a list query plus its total count
type PagedAppointments struct {
	Items      []Appointment
	TotalCount int64
	PageNumber int
	PageSize   int
}
