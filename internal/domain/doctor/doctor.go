package doctor

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusOnLeave  Status = "on_leave"
	StatusInactive Status = "inactive"
)

type Doctor struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt *time.Time `gorm:"index" json:"-"`

	FirstName      string `gorm:"column:first_name;type:varchar(100);not null" json:"firstName"`
	LastName       string `gorm:"column:last_name;type:varchar(100);not null" json:"lastName"`
	Specialization string `gorm:"column:specialization;type:varchar(100);not null;index" json:"specialization"`
	LicenseNumber  string `gorm:"column:license_number;type:varchar(50);uniqueIndex" json:"licenseNumber"`

	Email string `gorm:"column:email;type:varchar(255);not null" json:"email"`
	Phone string `gorm:"column:phone;type:varchar(20)" json:"phone"`

	ConsultationFee float64 `gorm:"column:consultation_fee;default:0" json:"consultationFee"`

	Status Status `gorm:"column:status;type:varchar(20);default:'active';index" json:"status"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null" json:"-"`
}

func (Doctor) TableName() string {
	return "clinical.doctors"
}

func (d *Doctor) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

func (d *Doctor) IsActive() bool {
	return d.Status == StatusActive && d.DeletedAt == nil
}

type RegisterDoctorCommand struct {
	FirstName       string
	LastName        string
	Specialization  string
	LicenseNumber   string
	Email           string
	Phone           string
	ConsultationFee float64

	// Credentials for the linked user account, created in the same
	// transaction as the doctor profile.
	Password string

	CreatedBy uuid.UUID
}

type UpdateDoctorCommand struct {
	FirstName       *string
	LastName        *string
	Specialization  *string
	Phone           *string
	ConsultationFee *float64
	Status          *Status
	UpdatedBy       uuid.UUID
}

type ListDoctorsQuery struct {
	Search         string // name or specialization
	Specialization *string
	Status         *Status
	Page           int
	PageSize       int
}

type PagedDoctors struct {
	Doctors    []*Doctor
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
