package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/carelane/hms-api/internal/domain/record"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecordRepository struct {
	db *gorm.DB
}

var _ record.Repository = (*RecordRepository)(nil)

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Create(ctx context.Context, rec *record.MedicalRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("inserting medical record: %w", err)
	}
	return nil
}

func (r *RecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*record.MedicalRecord, error) {
	var rec record.MedicalRecord
	err := r.db.WithContext(ctx).Preload("Addenda").First(&rec, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, record.ErrRecordNotFound
		}
		return nil, fmt.Errorf("fetching medical record: %w", err)
	}
	return &rec, nil
}

func (r *RecordRepository) AddAddendum(ctx context.Context, a *record.Addendum) error {
	// Verify the parent exists; addenda must never dangle.
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&record.MedicalRecord{}).
		Where("id = ?", a.MedicalRecordID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("checking parent record: %w", err)
	}
	if count == 0 {
		return record.ErrRecordNotFound
	}

	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("inserting addendum: %w", err)
	}
	return nil
}

func (r *RecordRepository) List(ctx context.Context, q *record.ListRecordsQuery) (*record.PagedRecords, error) {
	query := r.db.WithContext(ctx).Model(&record.MedicalRecord{})

	if q.PatientID != nil {
		query = query.Where("patient_id = ?", *q.PatientID)
	}
	if q.DoctorID != nil {
		query = query.Where("doctor_id = ?", *q.DoctorID)
	}
	if q.Type != nil {
		query = query.Where("type = ?", *q.Type)
	}
	if q.AppointmentID != nil {
		query = query.Where("appointment_id = ?", *q.AppointmentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting medical records: %w", err)
	}

	var records []*record.MedicalRecord
	err := query.
		Order("created_at DESC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("listing medical records: %w", err)
	}

	return &record.PagedRecords{
		Records:    records,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(q.PageSize))),
	}, nil
}
