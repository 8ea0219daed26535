package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/carelane/hms-api/internal/domain"
	"github.com/carelane/hms-api/internal/domain/doctor"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorRepository struct {
	db *gorm.DB
}

var _ doctor.Repository = (*DoctorRepository)(nil)

func NewDoctorRepository(db *gorm.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

// CreateWithUser writes the doctor profile and its login account together.
// The transaction guarantees no orphan account exists if either insert fails.
func (r *DoctorRepository) CreateWithUser(ctx context.Context, d *doctor.Doctor, u *domain.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(d).Error; err != nil {
			return err
		}
		u.DoctorID = &d.ID
		return tx.Create(u).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return doctor.ErrDoctorAlreadyExists
		}
		return fmt.Errorf("creating doctor with user: %w", err)
	}
	return nil
}

func (r *DoctorRepository) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	var d doctor.Doctor
	err := r.db.WithContext(ctx).Where("deleted_at IS NULL").First(&d, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, doctor.ErrDoctorNotFound
		}
		return nil, fmt.Errorf("fetching doctor: %w", err)
	}
	return &d, nil
}

func (r *DoctorRepository) Update(ctx context.Context, id uuid.UUID, cmd *doctor.UpdateDoctorCommand) (*doctor.Doctor, error) {
	d, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.FirstName != nil {
		d.FirstName = *cmd.FirstName
	}
	if cmd.LastName != nil {
		d.LastName = *cmd.LastName
	}
	if cmd.Specialization != nil {
		d.Specialization = *cmd.Specialization
	}
	if cmd.Phone != nil {
		d.Phone = *cmd.Phone
	}
	if cmd.ConsultationFee != nil {
		d.ConsultationFee = *cmd.ConsultationFee
	}
	if cmd.Status != nil {
		d.Status = *cmd.Status
	}

	if err := r.db.WithContext(ctx).Save(d).Error; err != nil {
		return nil, fmt.Errorf("updating doctor: %w", err)
	}
	return d, nil
}

func (r *DoctorRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&doctor.Doctor{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", gorm.Expr("NOW()"))
	if res.Error != nil {
		return fmt.Errorf("soft-deleting doctor: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return doctor.ErrDoctorNotFound
	}
	return nil
}

func (r *DoctorRepository) List(ctx context.Context, q *doctor.ListDoctorsQuery) (*doctor.PagedDoctors, error) {
	query := r.db.WithContext(ctx).Model(&doctor.Doctor{}).Where("deleted_at IS NULL")

	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR specialization ILIKE ?", pattern, pattern, pattern)
	}
	if q.Specialization != nil {
		query = query.Where("specialization = ?", *q.Specialization)
	}
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting doctors: %w", err)
	}

	var doctors []*doctor.Doctor
	err := query.
		Order("last_name ASC, first_name ASC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&doctors).Error
	if err != nil {
		return nil, fmt.Errorf("listing doctors: %w", err)
	}

	return &doctor.PagedDoctors{
		Doctors:    doctors,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(q.PageSize))),
	}, nil
}

func (r *DoctorRepository) ExistsByLicense(ctx context.Context, licenseNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&doctor.Doctor{}).
		Where("license_number = ?", licenseNumber).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking license uniqueness: %w", err)
	}
	return count > 0, nil
}
