package service

import (
	"context"
	"strings"

	"github.com/carelane/hms-api/internal/domain"
	"github.com/carelane/hms-api/internal/domain/patient"
	"github.com/carelane/hms-api/internal/domain/record"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RecordService struct {
	repo        record.Repository
	patientRepo patient.Repository
	auditSvc    *AuditService
	log         *zap.Logger
}

func NewRecordService(repo record.Repository, patientRepo patient.Repository, auditSvc *AuditService, log *zap.Logger) *RecordService {
	return &RecordService{
		repo:        repo,
		patientRepo: patientRepo,
		auditSvc:    auditSvc,
		log:         log,
	}
}

// CreateRecord writes a new medical record. Only doctors and nurses
// may author clinical documentation.
func (s *RecordService) CreateRecord(ctx context.Context, cmd *record.CreateRecordCommand, callerID uuid.UUID, callerRole string, ip string) (*record.MedicalRecord, error) {
	if callerRole != string(domain.RoleDoctor) && callerRole != string(domain.RoleNurse) && callerRole != string(domain.RoleAdmin) {
		return nil, ErrForbidden
	}
	if err := validateCreateRecordCommand(cmd); err != nil {
		return nil, err
	}

	if _, err := s.patientRepo.GetByID(ctx, cmd.PatientID); err != nil {
		return nil, err
	}

	r := &record.MedicalRecord{
		PatientID:     cmd.PatientID,
		DoctorID:      cmd.DoctorID,
		AppointmentID: cmd.AppointmentID,
		Type:          cmd.Type,
		Diagnoses:     cmd.Diagnoses,
		Attachments:   cmd.Attachments,
		Notes:         cmd.Notes,
		CreatedBy:     cmd.CreatedBy,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		s.log.Error("failed to create medical record", zap.Error(err))
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "create",
		ResourceType: "medical_record",
		ResourceID:   r.ID.String(),
		IPAddress:    ip,
	})

	s.log.Info("medical record created",
		zap.String("record_id", r.ID.String()),
		zap.String("patient_id", r.PatientID.String()),
		zap.String("type", string(r.Type)),
	)

	return r, nil
}

func (s *RecordService) GetRecord(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string, callerPatientID *uuid.UUID, ip string) (*record.MedicalRecord, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if callerRole == string(domain.RolePatient) {
		if callerPatientID == nil || *callerPatientID != r.PatientID {
			return nil, ErrForbidden
		}
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "read",
		ResourceType: "medical_record",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return r, nil
}

// AddAddendum appends a correction. The original record is never modified.
func (s *RecordService) AddAddendum(ctx context.Context, cmd *record.AddAddendumCommand, callerID uuid.UUID, callerRole string, ip string) (*record.Addendum, error) {
	if callerRole != string(domain.RoleDoctor) && callerRole != string(domain.RoleNurse) && callerRole != string(domain.RoleAdmin) {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(cmd.Content) == "" {
		return nil, record.ErrEmptyAddendum
	}

	a := &record.Addendum{
		MedicalRecordID: cmd.MedicalRecordID,
		Content:         cmd.Content,
		CreatedBy:       cmd.CreatedBy,
	}

	if err := s.repo.AddAddendum(ctx, a); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "update",
		ResourceType: "medical_record",
		ResourceID:   cmd.MedicalRecordID.String(),
		IPAddress:    ip,
	})

	return a, nil
}

func (s *RecordService) ListRecords(ctx context.Context, q *record.ListRecordsQuery, callerRole string, callerPatientID *uuid.UUID) (*record.PagedRecords, error) {
	// Patients see only their own records regardless of the filter supplied
	if callerRole == string(domain.RolePatient) {
		if callerPatientID == nil {
			return nil, ErrForbidden
		}
		q.PatientID = callerPatientID
	}

	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	return s.repo.List(ctx, q)
}

func validateCreateRecordCommand(cmd *record.CreateRecordCommand) error {
	var errs []string

	if cmd.PatientID == uuid.Nil {
		errs = append(errs, "patient_id is required")
	}
	if cmd.DoctorID == uuid.Nil {
		errs = append(errs, "doctor_id is required")
	}
	if !cmd.Type.IsValid() {
		errs = append(errs, "type is invalid")
	}
	if strings.TrimSpace(cmd.Notes) == "" {
		errs = append(errs, "notes is required")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
