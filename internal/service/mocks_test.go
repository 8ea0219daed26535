package service

import (
	"context"
	"sort"
	"time"

	"github.com/carelane/hms-api/internal/domain"
	"github.com/carelane/hms-api/internal/domain/appointment"
	"github.com/carelane/hms-api/internal/domain/doctor"
	"github.com/carelane/hms-api/internal/domain/patient"
	"github.com/carelane/hms-api/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// newTestCollector builds a Collector with unregistered counters so each
// test gets its own, avoiding the global prometheus registry.
func newTestCollector() *metrics.Collector {
	return &metrics.Collector{
		AuditEntriesTotal:  prometheus.NewCounter(prometheus.CounterOpts{Name: "audit_entries_total"}),
		AuditBufferDropped: prometheus.NewCounter(prometheus.CounterOpts{Name: "audit_buffer_dropped_total"}),
		NotificationsSent:  prometheus.NewCounter(prometheus.CounterOpts{Name: "notify_dispatched_total"}),
	}
}

// mockAppointmentRepo is an in-memory appointment.Repository. Behavior can
// be overridden per test via the func fields; the default implementation
// backs onto the store map and mirrors the ordering and conflict semantics
// of the real repository.
type mockAppointmentRepo struct {
	store map[uuid.UUID]*appointment.Appointment

	createFn         func(ctx context.Context, a *appointment.Appointment) error
	getByIDFn        func(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	saveFn           func(ctx context.Context, a *appointment.Appointment) error
	findActiveSlotFn func(ctx context.Context, doctorID uuid.UUID, date time.Time, slotStart string) (*appointment.Appointment, error)
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{store: make(map[uuid.UUID]*appointment.Appointment)}
}

func (m *mockAppointmentRepo) Create(ctx context.Context, a *appointment.Appointment) error {
	if m.createFn != nil {
		return m.createFn(ctx, a)
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	cp := *a
	m.store[a.ID] = &cp
	return nil
}

func (m *mockAppointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	a, ok := m.store[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAppointmentRepo) Save(ctx context.Context, a *appointment.Appointment) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, a)
	}
	if _, ok := m.store[a.ID]; !ok {
		return appointment.ErrAppointmentNotFound
	}
	cp := *a
	m.store[a.ID] = &cp
	return nil
}

func (m *mockAppointmentRepo) Delete(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	a, ok := m.store[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	delete(m.store, id)
	return a, nil
}

func (m *mockAppointmentRepo) ListAll(ctx context.Context) ([]*appointment.Appointment, error) {
	out := m.all()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AppointmentDate.After(out[j].AppointmentDate)
	})
	return out, nil
}

func (m *mockAppointmentRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	for _, a := range m.all() {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AppointmentDate.After(out[j].AppointmentDate)
	})
	return out, nil
}

func (m *mockAppointmentRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	for _, a := range m.all() {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AppointmentDate.Before(out[j].AppointmentDate)
	})
	return out, nil
}

func (m *mockAppointmentRepo) ListByStatus(ctx context.Context, status appointment.Status) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	for _, a := range m.all() {
		if a.Status == status {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].AppointmentDate.Equal(out[j].AppointmentDate) {
			return out[i].AppointmentDate.Before(out[j].AppointmentDate)
		}
		return out[i].TimeSlot.Start < out[j].TimeSlot.Start
	})
	return out, nil
}

func (m *mockAppointmentRepo) FindActiveSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, slotStart string) (*appointment.Appointment, error) {
	if m.findActiveSlotFn != nil {
		return m.findActiveSlotFn(ctx, doctorID, date, slotStart)
	}
	for _, a := range m.all() {
		if a.DoctorID != doctorID || a.TimeSlot.Start != slotStart {
			continue
		}
		if a.AppointmentDate.Format("2006-01-02") != date.Format("2006-01-02") {
			continue
		}
		for _, s := range appointment.ActiveStatuses {
			if a.Status == s {
				return a, nil
			}
		}
	}
	return nil, nil
}

func (m *mockAppointmentRepo) all() []*appointment.Appointment {
	out := make([]*appointment.Appointment, 0, len(m.store))
	for _, a := range m.store {
		cp := *a
		out = append(out, &cp)
	}
	return out
}

type mockDoctorRepo struct {
	doctors map[uuid.UUID]*doctor.Doctor

	createWithUserFn func(ctx context.Context, d *doctor.Doctor, u *domain.User) error
	existsByLicense  func(ctx context.Context, licenseNumber string) (bool, error)
}

func newMockDoctorRepo(docs ...*doctor.Doctor) *mockDoctorRepo {
	m := &mockDoctorRepo{doctors: make(map[uuid.UUID]*doctor.Doctor)}
	for _, d := range docs {
		m.doctors[d.ID] = d
	}
	return m
}

func (m *mockDoctorRepo) CreateWithUser(ctx context.Context, d *doctor.Doctor, u *domain.User) error {
	if m.createWithUserFn != nil {
		return m.createWithUserFn(ctx, d, u)
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, doctor.ErrDoctorNotFound
	}
	return d, nil
}

func (m *mockDoctorRepo) Update(ctx context.Context, id uuid.UUID, cmd *doctor.UpdateDoctorCommand) (*doctor.Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, doctor.ErrDoctorNotFound
	}
	return d, nil
}

func (m *mockDoctorRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.doctors[id]; !ok {
		return doctor.ErrDoctorNotFound
	}
	delete(m.doctors, id)
	return nil
}

func (m *mockDoctorRepo) List(ctx context.Context, q *doctor.ListDoctorsQuery) (*doctor.PagedDoctors, error) {
	out := make([]*doctor.Doctor, 0, len(m.doctors))
	for _, d := range m.doctors {
		out = append(out, d)
	}
	return &doctor.PagedDoctors{Doctors: out, TotalCount: int64(len(out)), Page: q.Page, PageSize: q.PageSize}, nil
}

func (m *mockDoctorRepo) ExistsByLicense(ctx context.Context, licenseNumber string) (bool, error) {
	if m.existsByLicense != nil {
		return m.existsByLicense(ctx, licenseNumber)
	}
	for _, d := range m.doctors {
		if d.LicenseNumber == licenseNumber {
			return true, nil
		}
	}
	return false, nil
}

type mockPatientRepo struct {
	patients map[uuid.UUID]*patient.Patient

	existsByNationalID func(ctx context.Context, nationalID string, excludeID *uuid.UUID) (bool, error)
}

func newMockPatientRepo(pats ...*patient.Patient) *mockPatientRepo {
	m := &mockPatientRepo{patients: make(map[uuid.UUID]*patient.Patient)}
	for _, p := range pats {
		m.patients[p.ID] = p
	}
	return m
}

func (m *mockPatientRepo) Create(ctx context.Context, p *patient.Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	return p, nil
}

func (m *mockPatientRepo) Update(ctx context.Context, id uuid.UUID, cmd *patient.UpdatePatientCommand) (*patient.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	return p, nil
}

func (m *mockPatientRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.patients[id]; !ok {
		return patient.ErrPatientNotFound
	}
	delete(m.patients, id)
	return nil
}

func (m *mockPatientRepo) List(ctx context.Context, q *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	out := make([]*patient.Patient, 0, len(m.patients))
	for _, p := range m.patients {
		out = append(out, p)
	}
	return &patient.PagedPatients{Patients: out, TotalCount: int64(len(out)), Page: q.Page, PageSize: q.PageSize}, nil
}

func (m *mockPatientRepo) ExistsByNationalID(ctx context.Context, nationalID string, excludeID *uuid.UUID) (bool, error) {
	if m.existsByNationalID != nil {
		return m.existsByNationalID(ctx, nationalID, excludeID)
	}
	for _, p := range m.patients {
		if p.NationalID == nationalID {
			return true, nil
		}
	}
	return false, nil
}

type mockUserRepo struct {
	users map[uuid.UUID]*domain.User

	getByEmailFn func(ctx context.Context, email string) (*domain.User, error)
}

func newMockUserRepo(users ...*domain.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrInvalidCredentials
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (m *mockUserRepo) UpdateLoginAttempt(ctx context.Context, id uuid.UUID, success bool) error {
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return ErrInvalidCredentials
	}
	u.PasswordHash = hash
	return nil
}

type mockAuditRepo struct {
	entries []*domain.AuditLog
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	m.entries = append(m.entries, entry)
	return nil
}
