package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carelane/hms-api/internal/domain/appointment"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository struct {
	db *gorm.DB
}

var _ appointment.Repository = (*AppointmentRepository)(nil)

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// The active-slot unique index fired: a concurrent writer won
			// the slot between our conflict pre-check and this insert.
			return appointment.ErrSlotTaken
		}
		return fmt.Errorf("inserting appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appointment.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("fetching appointment: %w", err)
	}
	return &a, nil
}

func (r *AppointmentRepository) Save(ctx context.Context, a *appointment.Appointment) error {
	if err := r.db.WithContext(ctx).Save(a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return appointment.ErrSlotTaken
		}
		return fmt.Errorf("saving appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Hard delete: appointments carry no retention requirement.
	if err := r.db.WithContext(ctx).Unscoped().Delete(&appointment.Appointment{}, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("deleting appointment: %w", err)
	}
	return a, nil
}

func (r *AppointmentRepository) ListAll(ctx context.Context) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Order("appointment_date DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	return out, nil
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("appointment_date DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing patient appointments: %w", err)
	}
	return out, nil
}

func (r *AppointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("appointment_date ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing doctor appointments: %w", err)
	}
	return out, nil
}

func (r *AppointmentRepository) ListByStatus(ctx context.Context, status appointment.Status) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("appointment_date ASC").
		Order("slot_start ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing appointments by status: %w", err)
	}
	return out, nil
}

func (r *AppointmentRepository) FindActiveSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, slotStart string) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND appointment_date = ? AND slot_start = ? AND status IN ?",
			doctorID, date.Format("2006-01-02"), slotStart, appointment.ActiveStatuses).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("checking slot conflict: %w", err)
	}
	return &a, nil
}
