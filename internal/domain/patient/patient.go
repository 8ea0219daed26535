package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderUnknown:
		return true
	}
	return false
}

// Status represents the lifecycle state of a patient record.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeceased Status = "deceased"
)

type ContactInfo struct {
	Phone   string `gorm:"column:phone;type:varchar(20)" json:"phone"`
	Email   string `gorm:"column:email;type:varchar(255)" json:"email"`
	Address string `gorm:"column:address;type:text" json:"address"`
	City    string `gorm:"column:city;type:varchar(100)" json:"city"`
	Country string `gorm:"column:country;type:varchar(100)" json:"country"`
}

type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

type Patient struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt *time.Time `gorm:"index" json:"-"` // Soft delete; clinical history is retained

	FirstName   string    `gorm:"column:first_name;type:varchar(100);not null" json:"firstName"`
	LastName    string    `gorm:"column:last_name;type:varchar(100);not null" json:"lastName"`
	DateOfBirth time.Time `gorm:"column:date_of_birth;not null" json:"dateOfBirth"`
	Gender      Gender    `gorm:"column:gender;type:varchar(20);not null" json:"gender"`
	NationalID  string    `gorm:"column:national_id;type:varchar(50);uniqueIndex" json:"nationalId"`

	ContactInfo

	EmergencyContact *EmergencyContact `gorm:"column:emergency_contact;serializer:json" json:"emergencyContact,omitempty"`

	Allergies []string `gorm:"column:allergies;serializer:json" json:"allergies,omitempty"`

	Status Status `gorm:"column:status;type:varchar(20);default:'active';index" json:"status"`
	Notes  string `gorm:"column:notes;type:text" json:"notes,omitempty"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null" json:"-"`
}

func (Patient) TableName() string {
	return "clinical.patients"
}

func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p *Patient) Age() int {
	now := time.Now()
	years := now.Year() - p.DateOfBirth.Year()
	if now.Month() < p.DateOfBirth.Month() ||
		(now.Month() == p.DateOfBirth.Month() && now.Day() < p.DateOfBirth.Day()) {
		years--
	}
	return years
}

func (p *Patient) IsActive() bool {
	return p.Status == StatusActive && p.DeletedAt == nil
}

func (p *Patient) Deactivate() error {
	if p.Status == StatusDeceased {
		return ErrPatientDeceased
	}
	p.Status = StatusInactive
	return nil
}

type CreatePatientCommand struct {
	FirstName        string
	LastName         string
	DateOfBirth      time.Time
	Gender           Gender
	NationalID       string
	Phone            string
	Email            string
	Address          string
	City             string
	Country          string
	EmergencyContact *EmergencyContact
	Allergies        []string
	Notes            string
	CreatedBy        uuid.UUID
}

type UpdatePatientCommand struct {
	FirstName        *string
	LastName         *string
	Gender           *Gender
	Phone            *string
	Email            *string
	Address          *string
	City             *string
	Country          *string
	EmergencyContact *EmergencyContact
	Allergies        *[]string
	Notes            *string
	UpdatedBy        uuid.UUID
}

// ListPatientsQuery defines filtering and pagination for patient list queries.
type ListPatientsQuery struct {
	Search   string // name search
	Status   *Status
	Page     int
	PageSize int
}

type PagedPatients struct {
	Patients   []*Patient
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
