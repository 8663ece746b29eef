package usecase

import (
	"context"
	"time"

	"appointment-service/internal/domain/entity"
	"appointment-service/pkg/apperror"
	"appointment-service/pkg/metrics"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "appointment-service/usecase"

// instrumentedAppointmentUsecase logs, meters, and traces every call to the
// wrapped usecase. It never changes results.
type instrumentedAppointmentUsecase struct {
	next    AppointmentUsecase
	log     *logrus.Logger
	metrics *metrics.Collector
	tracer  trace.Tracer
}

func NewInstrumentedAppointmentUsecase(next AppointmentUsecase, log *logrus.Logger, collector *metrics.Collector) AppointmentUsecase {
	return &instrumentedAppointmentUsecase{
		next:    next,
		log:     log,
		metrics: collector,
		tracer:  otel.Tracer(tracerName),
	}
}

// observe runs fn inside a span and records its outcome.
func observe[T any](u *instrumentedAppointmentUsecase, ctx context.Context, op string, attrs []attribute.KeyValue, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := u.tracer.Start(ctx, "appointment."+op, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	result, err := fn(ctx)
	elapsed := time.Since(start)

	outcome := "ok"
	fields := logrus.Fields{
		"operation": op,
		"duration":  elapsed.String(),
	}
	for _, a := range attrs {
		fields[string(a.Key)] = a.Value.AsInterface()
	}

	switch kind := apperror.KindOf(err); {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case kind != "":
		outcome = string(kind)
		fields["error_kind"] = outcome
		span.SetAttributes(attribute.String("error.kind", outcome))
	default:
		outcome = "internal"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	u.metrics.OperationsTotal.WithLabelValues(op, outcome).Inc()
	u.metrics.OperationDuration.WithLabelValues(op).Observe(elapsed.Seconds())

	entry := u.log.WithContext(ctx).WithFields(fields)
	switch {
	case outcome == "internal":
		entry.WithError(err).Error("appointment operation failed")
	case outcome != "ok":
		entry.Info("appointment operation rejected")
	default:
		entry.Debug("appointment operation completed")
	}

	return result, err
}

func idAttr(id int64) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.Int64("appointment_id", id)}
}

func pageAttrs(pageNumber, pageSize int, extra ...attribute.KeyValue) []attribute.KeyValue {
	return append([]attribute.KeyValue{
		attribute.Int("page_number", pageNumber),
		attribute.Int("page_size", pageSize),
	}, extra...)
}

func (u *instrumentedAppointmentUsecase) Create(ctx context.Context, appointment *entity.Appointment) (*entity.Appointment, error) {
	attrs := []attribute.KeyValue{
		attribute.Int64("patient_id", appointment.PatientID),
		attribute.Int64("doctor_id", appointment.DoctorID),
	}
	created, err := observe(u, ctx, "create", attrs, func(ctx context.Context) (*entity.Appointment, error) {
		return u.next.Create(ctx, appointment)
	})
	if err == nil {
		u.metrics.AppointmentsTotal.WithLabelValues(string(entity.AppointmentStatusScheduled)).Inc()
		u.log.WithFields(logrus.Fields{
			"appointment_id": created.ID,
			"patient_id":     created.PatientID,
			"doctor_id":      created.DoctorID,
		}).Info("Appointment created")
	}
	return created, err
}

func (u *instrumentedAppointmentUsecase) Cancel(ctx context.Context, id int64) error {
	_, err := observe(u, ctx, "cancel", idAttr(id), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, u.next.Cancel(ctx, id)
	})
	if err == nil {
		u.metrics.AppointmentsTotal.WithLabelValues(string(entity.AppointmentStatusCancelled)).Inc()
		u.log.WithField("appointment_id", id).Info("Appointment cancelled")
	}
	return err
}

func (u *instrumentedAppointmentUsecase) Update(ctx context.Context, id int64, payload *entity.AppointmentUpdate) (*entity.Appointment, error) {
	updated, err := observe(u, ctx, "update", idAttr(id), func(ctx context.Context) (*entity.Appointment, error) {
		return u.next.Update(ctx, id, payload)
	})
	if err == nil {
		u.log.WithField("appointment_id", id).Info("Appointment updated")
	}
	return updated, err
}

func (u *instrumentedAppointmentUsecase) GetByID(ctx context.Context, id int64) (*entity.Appointment, error) {
	return observe(u, ctx, "get_by_id", idAttr(id), func(ctx context.Context) (*entity.Appointment, error) {
		return u.next.GetByID(ctx, id)
	})
}

func (u *instrumentedAppointmentUsecase) GetAll(ctx context.Context, pageNumber, pageSize int) (*entity.PagedAppointments, error) {
	return observe(u, ctx, "get_all", pageAttrs(pageNumber, pageSize), func(ctx context.Context) (*entity.PagedAppointments, error) {
		return u.next.GetAll(ctx, pageNumber, pageSize)
	})
}

func (u *instrumentedAppointmentUsecase) GetActive(ctx context.Context, pageNumber, pageSize int) (*entity.PagedAppointments, error) {
	return observe(u, ctx, "get_active", pageAttrs(pageNumber, pageSize), func(ctx context.Context) (*entity.PagedAppointments, error) {
		return u.next.GetActive(ctx, pageNumber, pageSize)
	})
}

func (u *instrumentedAppointmentUsecase) GetInactive(ctx context.Context, pageNumber, pageSize int) (*entity.PagedAppointments, error) {
	return observe(u, ctx, "get_inactive", pageAttrs(pageNumber, pageSize), func(ctx context.Context) (*entity.PagedAppointments, error) {
		return u.next.GetInactive(ctx, pageNumber, pageSize)
	})
}

func (u *instrumentedAppointmentUsecase) FilterByDate(ctx context.Context, date time.Time, pageNumber, pageSize int) (*entity.PagedAppointments, error) {
	attrs := pageAttrs(pageNumber, pageSize, attribute.String("date", date.Format(entity.DateLayout)))
	return observe(u, ctx, "filter_by_date", attrs, func(ctx context.Context) (*entity.PagedAppointments, error) {
		return u.next.FilterByDate(ctx, date, pageNumber, pageSize)
	})
}

func (u *instrumentedAppointmentUsecase) FilterByStatus(ctx context.Context, status string, pageNumber, pageSize int) (*entity.PagedAppointments, error) {
	attrs := pageAttrs(pageNumber, pageSize, attribute.String("status", status))
	return observe(u, ctx, "filter_by_status", attrs, func(ctx context.Context) (*entity.PagedAppointments, error) {
		return u.next.FilterByStatus(ctx, status, pageNumber, pageSize)
	})
}

func (u *instrumentedAppointmentUsecase) GetByPatientID(ctx context.Context, patientID int64, pageNumber, pageSize int) (*entity.PagedAppointments, error) {
	attrs := pageAttrs(pageNumber, pageSize, attribute.Int64("patient_id", patientID))
	return observe(u, ctx, "get_by_patient", attrs, func(ctx context.Context) (*entity.PagedAppointments, error) {
		return u.next.GetByPatientID(ctx, patientID, pageNumber, pageSize)
	})
}

func (u *instrumentedAppointmentUsecase) GetByDoctorID(ctx context.Context, doctorID int64, pageNumber, pageSize int) (*entity.PagedAppointments, error) {
	attrs := pageAttrs(pageNumber, pageSize, attribute.Int64("doctor_id", doctorID))
	return observe(u, ctx, "get_by_doctor", attrs, func(ctx context.Context) (*entity.PagedAppointments, error) {
		return u.next.GetByDoctorID(ctx, doctorID, pageNumber, pageSize)
	})
}
