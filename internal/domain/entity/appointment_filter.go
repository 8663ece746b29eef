package entity

import "time"

// AppointmentFilter is a domain-level filter for listing appointments.
// Present criteria are ANDed; a nil or empty criterion matches everything.
type AppointmentFilter struct {
	Statuses  []AppointmentStatus
	Date      *time.Time
	PatientID *int64
	DoctorID  *int64
}

// Matches evaluates the filter in memory.
func (f AppointmentFilter) Matches(a *Appointment) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if a.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Date != nil && a.Date.Format(DateLayout) != f.Date.Format(DateLayout) {
		return false
	}
	if f.PatientID != nil && a.PatientID != *f.PatientID {
		return false
	}
	if f.DoctorID != nil && a.DoctorID != *f.DoctorID {
		return false
	}
	return true
}
