package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"appointment-service/internal/delivery/http/middleware"
	"appointment-service/internal/domain/entity"
	"appointment-service/internal/domain/repository"
	"appointment-service/internal/service"
	"appointment-service/pkg/apperror"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// CancellationCutoff is the minimum notice required to cancel an appointment.
const CancellationCutoff = 24 * time.Hour

type AppointmentUsecase interface {
	Create(ctx context.Context, appointment *entity.Appointment) (*entity.Appointment, error)
	Cancel(ctx context.Context, id int64) error
	Update(ctx context.Context, id int64, payload *entity.AppointmentUpdate) (*entity.Appointment, error)
	GetByID(ctx context.Context, id int64) (*entity.Appointment, error)
	GetAll(ctx context.Context, pageNumber, pageSize int) (*entity.PagedAppointments, error)
	GetActive(ctx context.Context, pageNumber, pageSize int) (*entity.PagedAppointments, error)
	GetInactive(ctx context.Context, pageNumber, pageSize int) (*entity.PagedAppointments, error)
	FilterByDate(ctx context.Context, date time.Time, pageNumber, pageSize int) (*entity.PagedAppointments, error)
	FilterByStatus(ctx context.Context, status string, pageNumber, pageSize int) (*entity.PagedAppointments, error)
	GetByPatientID(ctx context.Context, patientID int64, pageNumber, pageSize int) (*entity.PagedAppointments, error)
	GetByDoctorID(ctx context.Context, doctorID int64, pageNumber, pageSize int) (*entity.PagedAppointments, error)
}

type appointmentUsecase struct {
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	patientChecker  service.ReferenceChecker
	doctorChecker   service.ReferenceChecker
	messages        service.MessageService
	dateValidator   *service.DateValidator
	clock           service.Clock
}

func NewAppointmentUsecase(
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	patientChecker service.ReferenceChecker,
	doctorChecker service.ReferenceChecker,
	messages service.MessageService,
	clock service.Clock,
) AppointmentUsecase {
	if clock == nil {
		clock = time.Now
	}
	return &appointmentUsecase{
		log:             log,
		appointmentRepo: appointmentRepo,
		patientChecker:  patientChecker,
		doctorChecker:   doctorChecker,
		messages:        messages,
		dateValidator:   service.NewDateValidator(clock),
		clock:           clock,
	}
}

func (u *appointmentUsecase) fail(kind apperror.Kind, key string) error {
	return apperror.New(kind, u.messages.GetMessage(key))
}

// Create books a new appointment after checking the date window and that the
// referenced patient and doctor exist. Nothing is stored when a check fails.
func (u *appointmentUsecase) Create(ctx context.Context, appointment *entity.Appointment) (*entity.Appointment, error) {
	if !u.dateValidator.Validate(appointment.Date) {
		return nil, u.fail(apperror.KindInvalidDate, service.MsgInvalidDate)
	}

	// Both checks always run to completion so a patient failure is reported
	// even when the doctor lookup finishes first.
	var patientOK, doctorOK bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		patientOK = u.patientChecker.Exists(gctx, appointment.PatientID)
		return nil
	})
	g.Go(func() error {
		doctorOK = u.doctorChecker.Exists(gctx, appointment.DoctorID)
		return nil
	})
	_ = g.Wait()

	if !patientOK {
		return nil, u.fail(apperror.KindInvalidPatientReference, service.MsgInvalidPatientID)
	}
	if !doctorOK {
		return nil, u.fail(apperror.KindInvalidDoctorReference, service.MsgInvalidDoctorID)
	}

	now := u.clock()
	if appointment.CreatedBy == "" {
		appointment.CreatedBy = middleware.GetActorFromContext(ctx)
	}
	if appointment.LastModifiedBy == "" {
		appointment.LastModifiedBy = appointment.CreatedBy
	}
	appointment.Status = entity.AppointmentStatusScheduled
	appointment.CreatedDate = now
	appointment.LastModifiedDate = now

	if err := u.appointmentRepo.Create(ctx, appointment); err != nil {
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	return appointment, nil
}

// Cancel moves a scheduled appointment to CANCELLED. Appointments that are no
// longer scheduled, or that start within CancellationCutoff, are refused.
func (u *appointmentUsecase) Cancel(ctx context.Context, id int64) error {
	appointment, err := u.find(ctx, id)
	if err != nil {
		return err
	}

	if !appointment.CanTransitionTo(entity.AppointmentStatusCancelled) {
		return u.fail(apperror.KindIllegalCancellation, service.MsgCompletedAppointmentCancellation)
	}

	now := u.clock()
	startsAt, err := appointment.StartsAt(now.Location())
	if err != nil {
		u.log.Warnf("Appointment %d has an unreadable time %q: %+v", id, appointment.Time, err)
		return fmt.Errorf("appointment %d start time: %w", id, err)
	}
	if startsAt.Sub(now) < CancellationCutoff {
		return u.fail(apperror.KindIllegalCancellation, service.MsgTwentyFourHoursPolicy)
	}

	affected, err := u.appointmentRepo.CancelByID(ctx, id, now)
	if err != nil {
		u.log.Warnf("Failed to cancel appointment %d: %+v", id, err)
		return fmt.Errorf("cancel appointment %d: %w", id, err)
	}
	if affected == 0 {
		// Someone else moved it out of SCHEDULED between the read and the write.
		return u.fail(apperror.KindIllegalCancellation, service.MsgCompletedAppointmentCancellation)
	}

	return nil
}

// Update merges the non-nil fields of payload onto the stored appointment.
// Status may only be repeated, never changed, through this path.
func (u *appointmentUsecase) Update(ctx context.Context, id int64, payload *entity.AppointmentUpdate) (*entity.Appointment, error) {
	appointment, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if !u.dateValidator.Validate(payload.Date) {
		return nil, u.fail(apperror.KindInvalidDate, service.MsgInvalidDate)
	}

	if payload.Status != nil && *payload.Status != appointment.Status {
		return nil, u.fail(apperror.KindInvalidStatusTransition, service.MsgInvalidStatusTransition)
	}

	payload.ApplyTo(appointment)
	appointment.ID = id
	appointment.LastModifiedDate = u.clock()
	if payload.LastModifiedBy == nil {
		if actor := middleware.GetActorFromContext(ctx); actor != "" {
			appointment.LastModifiedBy = actor
		}
	}

	if err := u.appointmentRepo.Update(ctx, appointment); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			// Cancelled or closed after it was read.
			return nil, u.fail(apperror.KindInvalidStatusTransition, service.MsgInvalidStatusTransition)
		}
		u.log.Warnf("Failed to update appointment %d: %+v", id, err)
		return nil, fmt.Errorf("update appointment %d: %w", id, err)
	}

	return appointment, nil
}

func (u *appointmentUsecase) GetByID(ctx context.Context, id int64) (*entity.Appointment, error) {
	return u.find(ctx, id)
}

func (u *appointmentUsecase) GetAll(ctx context.Context, pageNumber, pageSize int) (*entity.PagedAppointments, error) {
	return u.list(ctx, entity.AppointmentFilter{}, pageNumber, pageSize)
}

func (u *appointmentUsecase) GetActive(ctx context.Context, pageNumber, pageSize int) (*entity.PagedAppointments, error) {
	filter := entity.AppointmentFilter{
		Statuses: []entity.AppointmentStatus{entity.AppointmentStatusScheduled},
	}
	return u.list(ctx, filter, pageNumber, pageSize)
}

func (u *appointmentUsecase) GetInactive(ctx context.Context, pageNumber, pageSize int) (*entity.PagedAppointments, error) {
	return u.list(ctx, entity.AppointmentFilter{Statuses: entity.InactiveStatuses}, pageNumber, pageSize)
}

func (u *appointmentUsecase) FilterByDate(ctx context.Context, date time.Time, pageNumber, pageSize int) (*entity.PagedAppointments, error) {
	if !service.ValidatePagination(pageNumber, pageSize) {
		return nil, u.fail(apperror.KindInvalidPagination, service.MsgInvalidPagination)
	}
	if !u.dateValidator.Validate(date) {
		return nil, u.fail(apperror.KindInvalidDate, service.MsgInvalidDate)
	}
	return u.list(ctx, entity.AppointmentFilter{Date: &date}, pageNumber, pageSize)
}

func (u *appointmentUsecase) FilterByStatus(ctx context.Context, status string, pageNumber, pageSize int) (*entity.PagedAppointments, error) {
	if !service.ValidatePagination(pageNumber, pageSize) {
		return nil, u.fail(apperror.KindInvalidPagination, service.MsgInvalidPagination)
	}
	parsed, err := entity.ParseAppointmentStatus(status)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidStatusValue, u.messages.GetMessage(service.MsgInvalidStatus), err)
	}
	filter := entity.AppointmentFilter{Statuses: []entity.AppointmentStatus{parsed}}
	return u.list(ctx, filter, pageNumber, pageSize)
}

func (u *appointmentUsecase) GetByPatientID(ctx context.Context, patientID int64, pageNumber, pageSize int) (*entity.PagedAppointments, error) {
	return u.list(ctx, entity.AppointmentFilter{PatientID: &patientID}, pageNumber, pageSize)
}

func (u *appointmentUsecase) GetByDoctorID(ctx context.Context, doctorID int64, pageNumber, pageSize int) (*entity.PagedAppointments, error) {
	return u.list(ctx, entity.AppointmentFilter{DoctorID: &doctorID}, pageNumber, pageSize)
}

func (u *appointmentUsecase) find(ctx context.Context, id int64) (*entity.Appointment, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", id, err)
		return nil, fmt.Errorf("find appointment %d: %w", id, err)
	}
	if appointment == nil {
		return nil, u.fail(apperror.KindNotFound, service.MsgInvalidAppointment)
	}
	return appointment, nil
}

func (u *appointmentUsecase) list(ctx context.Context, filter entity.AppointmentFilter, pageNumber, pageSize int) (*entity.PagedAppointments, error) {
	if !service.ValidatePagination(pageNumber, pageSize) {
		return nil, u.fail(apperror.KindInvalidPagination, service.MsgInvalidPagination)
	}

	items, total, err := u.appointmentRepo.List(ctx, filter, pageNumber, pageSize)
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	if items == nil {
		items = []entity.Appointment{}
	}

	return &entity.PagedAppointments{
		Items:      items,
		TotalCount: total,
		PageNumber: pageNumber,
		PageSize:   pageSize,
	}, nil
}
