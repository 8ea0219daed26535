package record

import (
	"time"

	"github.com/google/uuid"
)

type RecordType string

const (
	TypeConsultationNote RecordType = "consultation_note"
	TypeDiagnosis        RecordType = "diagnosis"
	TypeLabReport        RecordType = "lab_report"
	TypeImagingReport    RecordType = "imaging_report"
	TypeDischargeSummary RecordType = "discharge_summary"
)

func (t RecordType) IsValid() bool {
	switch t {
	case TypeConsultationNote, TypeDiagnosis, TypeLabReport, TypeImagingReport, TypeDischargeSummary:
		return true
	}
	return false
}

// Attachment references an already-uploaded artifact (e.g. a lab PDF).
// Upload handling lives outside this service; only the object key is kept.
type Attachment struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	ObjectKey   string `json:"objectKey"`
	SizeBytes   int64  `json:"sizeBytes"`
}

// MedicalRecord is append-only: once created it cannot be edited or
// deleted, only extended with addenda.
type MedicalRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`

	PatientID     uuid.UUID  `gorm:"column:patient_id;type:uuid;not null;index" json:"patientId"`
	DoctorID      uuid.UUID  `gorm:"column:doctor_id;type:uuid;not null;index" json:"doctorId"`
	AppointmentID *uuid.UUID `gorm:"column:appointment_id;type:uuid;index" json:"appointmentId,omitempty"`

	Type RecordType `gorm:"column:type;type:varchar(50);not null;index" json:"type"`

	Diagnoses   []string     `gorm:"column:diagnoses;serializer:json" json:"diagnoses,omitempty"`
	Attachments []Attachment `gorm:"column:attachments;serializer:json" json:"attachments,omitempty"`

	Notes string `gorm:"column:notes;type:text" json:"notes"`

	// Addenda: corrections appended without modifying the original
	Addenda []Addendum `gorm:"foreignKey:MedicalRecordID" json:"addenda,omitempty"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null" json:"-"`
}

func (MedicalRecord) TableName() string {
	return "clinical.medical_records"
}

// Addendum is an append-only correction to an existing medical record.
type Addendum struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
	MedicalRecordID uuid.UUID `gorm:"column:medical_record_id;type:uuid;not null;index" json:"medicalRecordId"`
	Content         string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedBy       uuid.UUID `gorm:"column:created_by;type:uuid;not null" json:"-"`
}

func (Addendum) TableName() string {
	return "clinical.medical_record_addenda"
}

type CreateRecordCommand struct {
	PatientID     uuid.UUID
	DoctorID      uuid.UUID
	AppointmentID *uuid.UUID
	Type          RecordType
	Diagnoses     []string
	Attachments   []Attachment
	Notes         string
	CreatedBy     uuid.UUID
}

type AddAddendumCommand struct {
	MedicalRecordID uuid.UUID
	Content         string
	CreatedBy       uuid.UUID
}

type ListRecordsQuery struct {
	PatientID     *uuid.UUID
	DoctorID      *uuid.UUID
	Type          *RecordType
	AppointmentID *uuid.UUID
	Page          int
	PageSize      int
}

type PagedRecords struct {
	Records    []*MedicalRecord
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
