package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/carelane/hms-api/internal/domain"
	"github.com/carelane/hms-api/internal/domain/doctor"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type DoctorService struct {
	repo     doctor.Repository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewDoctorService(repo doctor.Repository, auditSvc *AuditService, log *zap.Logger) *DoctorService {
	return &DoctorService{repo: repo, auditSvc: auditSvc, log: log}
}

// RegisterDoctor creates the doctor profile together with its linked login
// account. Both writes happen in one transaction so a failure leaves
// neither behind.
func (s *DoctorService) RegisterDoctor(ctx context.Context, cmd *doctor.RegisterDoctorCommand, callerID uuid.UUID, callerRole string, ip string) (*doctor.Doctor, error) {
	if err := validateRegisterDoctorCommand(cmd); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByLicense(ctx, strings.TrimSpace(cmd.LicenseNumber))
	if err != nil {
		return nil, fmt.Errorf("checking license uniqueness: %w", err)
	}
	if exists {
		return nil, doctor.ErrDoctorAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	d := &doctor.Doctor{
		FirstName:       strings.TrimSpace(cmd.FirstName),
		LastName:        strings.TrimSpace(cmd.LastName),
		Specialization:  strings.TrimSpace(cmd.Specialization),
		LicenseNumber:   strings.TrimSpace(cmd.LicenseNumber),
		Email:           strings.ToLower(strings.TrimSpace(cmd.Email)),
		Phone:           strings.TrimSpace(cmd.Phone),
		ConsultationFee: cmd.ConsultationFee,
		Status:          doctor.StatusActive,
		CreatedBy:       cmd.CreatedBy,
	}
	u := &domain.User{
		Email:        d.Email,
		PasswordHash: string(hash),
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Role:         domain.RoleDoctor,
		IsActive:     true,
	}

	if err := s.repo.CreateWithUser(ctx, d, u); err != nil {
		s.log.Error("failed to register doctor", zap.Error(err))
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "create",
		ResourceType: "doctor",
		ResourceID:   d.ID.String(),
		IPAddress:    ip,
	})

	s.log.Info("doctor registered",
		zap.String("doctor_id", d.ID.String()),
		zap.String("specialization", d.Specialization),
	)

	return d, nil
}

func (s *DoctorService) GetDoctor(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DoctorService) UpdateDoctor(ctx context.Context, id uuid.UUID, cmd *doctor.UpdateDoctorCommand, callerID uuid.UUID, callerRole string, ip string) (*doctor.Doctor, error) {
	d, err := s.repo.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "update",
		ResourceType: "doctor",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return d, nil
}

func (s *DoctorService) RemoveDoctor(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string, ip string) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "delete",
		ResourceType: "doctor",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return nil
}

func (s *DoctorService) ListDoctors(ctx context.Context, q *doctor.ListDoctorsQuery) (*doctor.PagedDoctors, error) {
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.List(ctx, q)
}

func validateRegisterDoctorCommand(cmd *doctor.RegisterDoctorCommand) error {
	var errs []string

	if strings.TrimSpace(cmd.FirstName) == "" {
		errs = append(errs, "first_name is required")
	}
	if strings.TrimSpace(cmd.LastName) == "" {
		errs = append(errs, "last_name is required")
	}
	if strings.TrimSpace(cmd.Specialization) == "" {
		errs = append(errs, "specialization is required")
	}
	if strings.TrimSpace(cmd.LicenseNumber) == "" {
		errs = append(errs, "license_number is required")
	}
	if strings.TrimSpace(cmd.Email) == "" {
		errs = append(errs, "email is required")
	}
	if len(cmd.Password) < 12 {
		errs = append(errs, "password must be at least 12 characters")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
