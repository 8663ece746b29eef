package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"appointment-service/internal/domain/entity"
	domainRepo "appointment-service/internal/domain/repository"
)

type memoryAppointmentRepository struct {
	mu           sync.RWMutex
	nextID       int64
	appointments map[int64]entity.Appointment
}

// NewMemoryAppointmentRepository returns a process-local store, used when DB_DRIVER=memory.
func NewMemoryAppointmentRepository() domainRepo.AppointmentRepository {
	return &memoryAppointmentRepository{
		appointments: make(map[int64]entity.Appointment),
	}
}

func (r *memoryAppointmentRepository) Create(_ context.Context, appointment *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	appointment.ID = r.nextID
	r.appointments[appointment.ID] = *appointment
	return nil
}

func (r *memoryAppointmentRepository) Update(_ context.Context, appointment *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.appointments[appointment.ID]
	if !ok {
		return fmt.Errorf("appointment %d does not exist", appointment.ID)
	}
	if stored.Status != appointment.Status {
		return domainRepo.ErrStatusChanged
	}

	updated := *appointment
	updated.CreatedBy = stored.CreatedBy
	updated.CreatedDate = stored.CreatedDate
	r.appointments[appointment.ID] = updated
	return nil
}

func (r *memoryAppointmentRepository) FindByID(_ context.Context, id int64) (*entity.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appointment, ok := r.appointments[id]
	if !ok {
		return nil, nil
	}
	return &appointment, nil
}

func (r *memoryAppointmentRepository) CancelByID(_ context.Context, id int64, modifiedAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appointment, ok := r.appointments[id]
	if !ok || !appointment.IsScheduled() {
		return 0, nil
	}
	appointment.Status = entity.AppointmentStatusCancelled
	appointment.LastModifiedDate = modifiedAt
	r.appointments[id] = appointment
	return 1, nil
}

func (r *memoryAppointmentRepository) List(_ context.Context, filter entity.AppointmentFilter, pageNumber, pageSize int) ([]entity.Appointment, int64, error) {
	r.mu.RLock()
	matched := make([]entity.Appointment, 0)
	for _, a := range r.appointments {
		if filter.Matches(&a) {
			matched = append(matched, a)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.ID < b.ID
	})

	total := int64(len(matched))
	start := (pageNumber - 1) * pageSize
	if start >= len(matched) {
		return []entity.Appointment{}, total, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}
