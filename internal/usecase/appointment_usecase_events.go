package usecase

import (
	"context"
	"time"

	"appointment-service/internal/delivery/http/middleware"
	"appointment-service/internal/domain/entity"
	"appointment-service/internal/infrastructure/messaging"
	"appointment-service/pkg/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// eventingAppointmentUsecase publishes an event after each successful mutation.
// A failed publish is logged and counted; the stored change stands.
type eventingAppointmentUsecase struct {
	AppointmentUsecase
	publisher messaging.EventPublisher
	metrics   *metrics.Collector
	log       *logrus.Logger
	clock     func() time.Time
}

func NewEventingAppointmentUsecase(next AppointmentUsecase, publisher messaging.EventPublisher, collector *metrics.Collector, log *logrus.Logger) AppointmentUsecase {
	return &eventingAppointmentUsecase{
		AppointmentUsecase: next,
		publisher:          publisher,
		metrics:            collector,
		log:                log,
		clock:              time.Now,
	}
}

func (u *eventingAppointmentUsecase) Create(ctx context.Context, appointment *entity.Appointment) (*entity.Appointment, error) {
	created, err := u.AppointmentUsecase.Create(ctx, appointment)
	if err != nil {
		return nil, err
	}
	u.publish(ctx, u.eventFor(ctx, entity.AppointmentEventCreated, created))
	return created, nil
}

func (u *eventingAppointmentUsecase) Update(ctx context.Context, id int64, payload *entity.AppointmentUpdate) (*entity.Appointment, error) {
	updated, err := u.AppointmentUsecase.Update(ctx, id, payload)
	if err != nil {
		return nil, err
	}
	u.publish(ctx, u.eventFor(ctx, entity.AppointmentEventUpdated, updated))
	return updated, nil
}

func (u *eventingAppointmentUsecase) Cancel(ctx context.Context, id int64) error {
	if err := u.AppointmentUsecase.Cancel(ctx, id); err != nil {
		return err
	}
	u.publish(ctx, &entity.AppointmentEvent{
		ID:            uuid.NewString(),
		Type:          entity.AppointmentEventCancelled,
		AppointmentID: id,
		Status:        entity.AppointmentStatusCancelled,
		Actor:         middleware.GetActorFromContext(ctx),
		OccurredAt:    u.clock().UTC(),
	})
	return nil
}

func (u *eventingAppointmentUsecase) eventFor(ctx context.Context, eventType entity.AppointmentEventType, a *entity.Appointment) *entity.AppointmentEvent {
	return &entity.AppointmentEvent{
		ID:            uuid.NewString(),
		Type:          eventType,
		AppointmentID: a.ID,
		Status:        a.Status,
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		Date:          a.Date.Format(entity.DateLayout),
		Time:          a.Time,
		Actor:         middleware.GetActorFromContext(ctx),
		OccurredAt:    u.clock().UTC(),
	}
}

func (u *eventingAppointmentUsecase) publish(ctx context.Context, event *entity.AppointmentEvent) {
	// The request may finish before the broker answers; keep trace values, drop cancellation.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	result := "ok"
	if err := u.publisher.Publish(ctx, event); err != nil {
		result = "error"
		u.log.Warnf("Failed to publish %s for appointment %d: %+v", event.Type, event.AppointmentID, err)
	}
	u.metrics.EventsPublishedTotal.WithLabelValues(string(event.Type), result).Inc()
}
