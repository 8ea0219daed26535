package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/carelane/hms-api/internal/domain"
	"github.com/carelane/hms-api/internal/domain/appointment"
	"github.com/carelane/hms-api/internal/domain/doctor"
	"github.com/carelane/hms-api/internal/domain/patient"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AppointmentService struct {
	repo        appointment.Repository
	doctorRepo  doctor.Repository
	patientRepo patient.Repository
	userRepo    UserRepository
	auditSvc    *AuditService
	notifier    *NotificationService
	log         *zap.Logger
}

func NewAppointmentService(
	repo appointment.Repository,
	doctorRepo doctor.Repository,
	patientRepo patient.Repository,
	userRepo UserRepository,
	auditSvc *AuditService,
	notifier *NotificationService,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		repo:        repo,
		doctorRepo:  doctorRepo,
		patientRepo: patientRepo,
		userRepo:    userRepo,
		auditSvc:    auditSvc,
		notifier:    notifier,
		log:         log,
	}
}

// Book creates a new appointment. Preconditions run in order: the doctor
// must exist and be accepting appointments, the patient must exist, and no
// active appointment may occupy the doctor's slot on that date. The created
// appointment starts Pending with a defaulted payment sub-record when none
// is supplied.
func (s *AppointmentService) Book(ctx context.Context, cmd *appointment.BookAppointmentCommand, callerID uuid.UUID, callerRole string, ip string) (*appointment.Appointment, error) {
	if err := validateBookCommand(cmd); err != nil {
		return nil, err
	}

	doc, err := s.doctorRepo.GetByID(ctx, cmd.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doc.IsActive() {
		return nil, doctor.ErrDoctorInactive
	}
	if _, err := s.patientRepo.GetByID(ctx, cmd.PatientID); err != nil {
		return nil, err
	}

	occupied, err := s.repo.FindActiveSlot(ctx, cmd.DoctorID, cmd.AppointmentDate, cmd.TimeSlot.Start)
	if err != nil {
		return nil, fmt.Errorf("checking slot conflict: %w", err)
	}
	if occupied != nil {
		return nil, appointment.ErrSlotTaken
	}

	pay := appointment.DefaultPayment()
	if cmd.Payment != nil {
		pay = *cmd.Payment
	}

	a := &appointment.Appointment{
		DoctorID:        cmd.DoctorID,
		PatientID:       cmd.PatientID,
		AppointmentDate: cmd.AppointmentDate,
		TimeSlot:        cmd.TimeSlot,
		Status:          appointment.StatusPending,
		ReasonForVisit:  cmd.ReasonForVisit,
		Payment:         pay,
		CreatedBy:       cmd.CreatedBy,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		// ErrSlotTaken here means a concurrent booking won the slot after
		// our pre-check; surface it the same way.
		if err != appointment.ErrSlotTaken {
			s.log.Error("failed to create appointment", zap.Error(err))
		}
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "create",
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
		IPAddress:    ip,
	})

	return a, nil
}

// Confirm is the staff confirmation flow. Preconditions run in order: the
// appointment must exist, the staff identity must resolve to a user in a
// staff role, the appointment must not already be Confirmed or Cancelled,
// and both referenced parties must still exist. Supplied notes replace the
// existing ones; absent notes leave them untouched.
func (s *AppointmentService) Confirm(ctx context.Context, id uuid.UUID, staffID uuid.UUID, notes *string, ip string) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	staff, err := s.resolveStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}

	if err := a.Confirm(notes); err != nil {
		return nil, err
	}

	doc, err := s.doctorRepo.GetByID(ctx, a.DoctorID)
	if err != nil {
		return nil, err
	}
	pat, err := s.patientRepo.GetByID(ctx, a.PatientID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("confirming appointment: %w", err)
	}

	when := fmt.Sprintf("%s at %s", a.AppointmentDate.Format("2006-01-02"), a.TimeSlot.Start)
	s.notifier.Dispatch(Notification{
		RecipientID:   a.PatientID,
		RecipientKind: "patient",
		Subject:       "Appointment confirmed",
		Body:          fmt.Sprintf("Your appointment with Dr. %s on %s has been confirmed.", doc.FullName(), when),
	})
	s.notifier.Dispatch(Notification{
		RecipientID:   a.DoctorID,
		RecipientKind: "doctor",
		Subject:       "Appointment confirmed",
		Body:          fmt.Sprintf("Appointment with %s on %s has been confirmed.", pat.FullName(), when),
	})

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       staff.ID,
		UserRole:     string(staff.Role),
		Action:       "update",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      `{"status":"Confirmed"}`,
	})

	return a, nil
}

// Reschedule applies any supplied new doctor/date/slot, resets the status
// to Pending, and prepends a reschedule note. Completed and Cancelled
// appointments cannot be rescheduled. A new doctor must exist.
func (s *AppointmentService) Reschedule(ctx context.Context, id uuid.UUID, staffID uuid.UUID, cmd *appointment.RescheduleCommand, ip string) (*appointment.Appointment, error) {
	staff, err := s.resolveStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.NewDoctorID != nil {
		if _, err := s.doctorRepo.GetByID(ctx, *cmd.NewDoctorID); err != nil {
			return nil, err
		}
	}

	if err := a.Reschedule(cmd.NewDoctorID, cmd.NewAppointmentDate, cmd.NewTimeSlot); err != nil {
		return nil, err
	}

	// No conflict pre-check here; the active-slot unique index rejects a
	// reschedule into an occupied slot and Save reports it as ErrSlotTaken.
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       staff.ID,
		UserRole:     string(staff.Role),
		Action:       "update",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      `{"action":"reschedule"}`,
	})

	return a, nil
}

// ListPending returns the staff work queue: every Pending appointment
// enriched with doctor and patient identity, ordered by
// (appointment date asc, slot start asc).
func (s *AppointmentService) ListPending(ctx context.Context) ([]*appointment.PendingAppointment, error) {
	appts, err := s.repo.ListByStatus(ctx, appointment.StatusPending)
	if err != nil {
		return nil, err
	}

	out := make([]*appointment.PendingAppointment, 0, len(appts))
	for _, a := range appts {
		enriched := &appointment.PendingAppointment{Appointment: a}

		if doc, err := s.doctorRepo.GetByID(ctx, a.DoctorID); err == nil {
			enriched.DoctorName = doc.FullName()
		} else {
			s.log.Warn("pending appointment references unknown doctor",
				zap.String("appointment_id", a.ID.String()),
				zap.String("doctor_id", a.DoctorID.String()),
			)
		}
		if pat, err := s.patientRepo.GetByID(ctx, a.PatientID); err == nil {
			enriched.PatientName = pat.FullName()
			enriched.PatientPhone = pat.Phone
			enriched.PatientEmail = pat.Email
		} else {
			s.log.Warn("pending appointment references unknown patient",
				zap.String("appointment_id", a.ID.String()),
				zap.String("patient_id", a.PatientID.String()),
			)
		}

		out = append(out, enriched)
	}

	return out, nil
}

func (s *AppointmentService) Get(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AppointmentService) ListAll(ctx context.Context) ([]*appointment.Appointment, error) {
	return s.repo.ListAll(ctx)
}

func (s *AppointmentService) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *AppointmentService) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}

// UpdateStatus sets the status directly. Only the value itself is
// validated; any transition between the four states is permitted here.
func (s *AppointmentService) UpdateStatus(ctx context.Context, id uuid.UUID, status appointment.Status, callerID uuid.UUID, callerRole string, ip string) (*appointment.Appointment, error) {
	if !status.IsValid() {
		return nil, appointment.ErrInvalidStatus
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.Status = status
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "update",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"status":%q}`, status),
	})

	return a, nil
}

// UpdateDetails merges the allow-listed fields of cmd into the
// appointment. Unsupplied fields keep their prior values.
func (s *AppointmentService) UpdateDetails(ctx context.Context, id uuid.UUID, cmd *appointment.UpdateDetailsCommand, callerID uuid.UUID, callerRole string, ip string) (*appointment.Appointment, error) {
	if cmd.Payment != nil && !cmd.Payment.Status.IsValid() {
		return nil, &ValidationError{Fields: []string{"payment.status is invalid"}}
	}
	if cmd.TimeSlot != nil && (strings.TrimSpace(cmd.TimeSlot.Start) == "" || strings.TrimSpace(cmd.TimeSlot.End) == "") {
		return nil, appointment.ErrMissingTimeSlot
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.AppointmentDate != nil {
		a.AppointmentDate = *cmd.AppointmentDate
	}
	if cmd.TimeSlot != nil {
		a.TimeSlot = *cmd.TimeSlot
	}
	if cmd.ReasonForVisit != nil {
		a.ReasonForVisit = *cmd.ReasonForVisit
	}
	if cmd.Notes != nil {
		a.Notes = *cmd.Notes
	}
	if cmd.Payment != nil {
		a.Payment = *cmd.Payment
	}

	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "update",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return a, nil
}

// Delete hard-deletes the appointment and returns the removed row.
func (s *AppointmentService) Delete(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string, ip string) (*appointment.Appointment, error) {
	a, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "delete",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return a, nil
}

// staffIdentity is the resolved identity of a staff member acting on an
// appointment.
type staffIdentity struct {
	ID   uuid.UUID
	Role domain.Role
}

func (s *AppointmentService) resolveStaff(ctx context.Context, staffID uuid.UUID) (*staffIdentity, error) {
	u, err := s.userRepo.GetByID(ctx, staffID)
	if err != nil {
		return nil, ErrStaffUnauthorized
	}
	if !u.Role.IsStaff() || !u.IsActive {
		return nil, ErrStaffUnauthorized
	}
	return &staffIdentity{ID: u.ID, Role: u.Role}, nil
}

func validateBookCommand(cmd *appointment.BookAppointmentCommand) error {
	var errs []string

	if cmd.DoctorID == uuid.Nil {
		errs = append(errs, "doctorId is required")
	}
	if cmd.PatientID == uuid.Nil {
		errs = append(errs, "patientId is required")
	}
	if cmd.AppointmentDate.IsZero() {
		errs = append(errs, "appointmentDate is required")
	}
	if strings.TrimSpace(cmd.TimeSlot.Start) == "" || strings.TrimSpace(cmd.TimeSlot.End) == "" {
		errs = append(errs, "timeSlot.start and timeSlot.end are required")
	}
	if cmd.Payment != nil && !cmd.Payment.Status.IsValid() {
		errs = append(errs, "payment.status is invalid")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
