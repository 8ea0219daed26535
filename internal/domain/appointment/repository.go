package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error

	// GetByID returns ErrAppointmentNotFound when no row matches.
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// Save persists all fields of an already-loaded appointment.
	Save(ctx context.Context, a *Appointment) error

	// Delete hard-deletes the appointment and returns the removed row.
	Delete(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// ListAll returns every appointment, newest appointment date first.
	ListAll(ctx context.Context) ([]*Appointment, error)

	// ListByPatient returns a patient's appointments, newest date first.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)

	// ListByDoctor returns a doctor's appointments, earliest date first.
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)

	// ListByStatus returns appointments in the given status ordered by
	// (appointment date asc, slot start asc).
	ListByStatus(ctx context.Context, status Status) ([]*Appointment, error)

	// FindActiveSlot returns the appointment occupying the doctor's slot on
	// the given date, considering only ActiveStatuses. Slot start is matched
	// by exact string equality. Returns (nil, nil) when the slot is free.
	FindActiveSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, slotStart string) (*Appointment, error)
}
