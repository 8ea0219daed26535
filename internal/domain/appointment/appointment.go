package appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ActiveStatuses are the statuses that occupy a doctor's slot for
// conflict purposes. Completed and Cancelled appointments free the slot.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentRefunded PaymentStatus = "Refunded"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

// TimeSlot is a bookable window within a day. Start and End are opaque
// time-of-day strings (e.g. "10:00 AM"); Start is the disambiguating key
// for conflict checks and is compared for exact equality only.
type TimeSlot struct {
	Start string `gorm:"column:slot_start;type:varchar(20);not null" json:"start"`
	End   string `gorm:"column:slot_end;type:varchar(20);not null" json:"end"`
}

type Payment struct {
	Amount        float64       `gorm:"column:amount;not null;default:0" json:"amount"`
	Status        PaymentStatus `gorm:"column:status;type:varchar(20);not null;default:'Pending'" json:"status"`
	TransactionID string        `gorm:"column:transaction_id;type:varchar(100)" json:"transactionId,omitempty"`
}

// DefaultPayment is the payment sub-record applied when a booking
// supplies none.
func DefaultPayment() Payment {
	return Payment{Amount: 0, Status: PaymentPending}
}

type Appointment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index" json:"doctorId"`
	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index" json:"patientId"`

	AppointmentDate time.Time `gorm:"column:appointment_date;type:date;not null;index" json:"appointmentDate"`
	TimeSlot        TimeSlot  `gorm:"embedded" json:"timeSlot"`

	Status Status `gorm:"column:status;type:varchar(20);not null;default:'Pending';index" json:"status"`

	ReasonForVisit string `gorm:"column:reason_for_visit;type:text" json:"reasonForVisit,omitempty"`
	Notes          string `gorm:"column:notes;type:text" json:"notes,omitempty"`

	Payment Payment `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null" json:"-"`
}

func (Appointment) TableName() string {
	return "clinical.appointments"
}

// CanConfirm guards the confirm operation: an appointment that is already
// Confirmed or Cancelled cannot be confirmed again.
func (a *Appointment) CanConfirm() bool {
	return a.Status != StatusConfirmed && a.Status != StatusCancelled
}

// IsClosed reports whether the appointment has reached a terminal state.
// Closed appointments cannot be rescheduled.
func (a *Appointment) IsClosed() bool {
	return a.Status == StatusCompleted || a.Status == StatusCancelled
}

// Confirm moves the appointment to Confirmed. A nil notes pointer leaves
// the existing notes untouched.
func (a *Appointment) Confirm(notes *string) error {
	if !a.CanConfirm() {
		return ErrInvalidStatusTransition
	}
	a.Status = StatusConfirmed
	if notes != nil {
		a.Notes = *notes
	}
	return nil
}

// Reschedule applies whichever of the new doctor, date, and slot were
// supplied, resets the status to Pending, and prepends a human-readable
// note describing the new schedule to the existing notes.
func (a *Appointment) Reschedule(newDoctorID *uuid.UUID, newDate *time.Time, newSlot *TimeSlot) error {
	if a.IsClosed() {
		return ErrInvalidStatusTransition
	}
	if newDoctorID != nil {
		a.DoctorID = *newDoctorID
	}
	if newDate != nil {
		a.AppointmentDate = *newDate
	}
	if newSlot != nil {
		a.TimeSlot = *newSlot
	}

	note := fmt.Sprintf("Rescheduled to %s at %s - %s.",
		a.AppointmentDate.Format("2006-01-02"), a.TimeSlot.Start, a.TimeSlot.End)
	if a.Notes != "" {
		note += "\n" + a.Notes
	}
	a.Notes = note

	a.Status = StatusPending
	return nil
}

type BookAppointmentCommand struct {
	DoctorID        uuid.UUID
	PatientID       uuid.UUID
	AppointmentDate time.Time
	TimeSlot        TimeSlot
	ReasonForVisit  string
	Payment         *Payment
	CreatedBy       uuid.UUID
}

// UpdateDetailsCommand is the allow-list of fields mutable via the generic
// update operation. Unsupplied fields keep their prior values.
type UpdateDetailsCommand struct {
	AppointmentDate *time.Time
	TimeSlot        *TimeSlot
	ReasonForVisit  *string
	Notes           *string
	Payment         *Payment
}

type RescheduleCommand struct {
	NewDoctorID        *uuid.UUID
	NewAppointmentDate *time.Time
	NewTimeSlot        *TimeSlot
}

// PendingAppointment is a pending appointment enriched with the doctor and
// patient identity needed by the staff work queue.
type PendingAppointment struct {
	Appointment  *Appointment `json:"appointment"`
	DoctorName   string       `json:"doctorName"`
	PatientName  string       `json:"patientName"`
	PatientPhone string       `json:"patientPhone,omitempty"`
	PatientEmail string       `json:"patientEmail,omitempty"`
}
