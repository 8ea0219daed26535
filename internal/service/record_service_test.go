package service

import (
	"context"
	"testing"

	"github.com/carelane/hms-api/internal/domain/patient"
	"github.com/carelane/hms-api/internal/domain/record"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRecordRepo struct {
	records map[uuid.UUID]*record.MedicalRecord
	addenda []*record.Addendum
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{records: make(map[uuid.UUID]*record.MedicalRecord)}
}

func (m *mockRecordRepo) Create(ctx context.Context, r *record.MedicalRecord) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	m.records[r.ID] = r
	return nil
}

func (m *mockRecordRepo) GetByID(ctx context.Context, id uuid.UUID) (*record.MedicalRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, record.ErrRecordNotFound
	}
	return r, nil
}

func (m *mockRecordRepo) AddAddendum(ctx context.Context, a *record.Addendum) error {
	if _, ok := m.records[a.MedicalRecordID]; !ok {
		return record.ErrRecordNotFound
	}
	m.addenda = append(m.addenda, a)
	return nil
}

func (m *mockRecordRepo) List(ctx context.Context, q *record.ListRecordsQuery) (*record.PagedRecords, error) {
	out := make([]*record.MedicalRecord, 0, len(m.records))
	for _, r := range m.records {
		if q.PatientID != nil && r.PatientID != *q.PatientID {
			continue
		}
		out = append(out, r)
	}
	return &record.PagedRecords{Records: out, TotalCount: int64(len(out)), Page: q.Page, PageSize: q.PageSize}, nil
}

func newRecordFixture(t *testing.T) (*RecordService, *mockRecordRepo, *patient.Patient) {
	t.Helper()
	log := zap.NewNop()
	auditSvc := NewAuditService(&mockAuditRepo{}, newTestCollector(), log)
	t.Cleanup(auditSvc.Shutdown)

	p := &patient.Patient{ID: uuid.New(), FirstName: "Rohan", Status: patient.StatusActive}
	repo := newMockRecordRepo()
	svc := NewRecordService(repo, newMockPatientRepo(p), auditSvc, log)
	return svc, repo, p
}

func createRecordCmd(patientID uuid.UUID) *record.CreateRecordCommand {
	return &record.CreateRecordCommand{
		PatientID: patientID,
		DoctorID:  uuid.New(),
		Type:      record.TypeConsultationNote,
		Notes:     "patient presented with mild fever",
	}
}

func TestCreateRecord(t *testing.T) {
	t.Run("doctor can author records", func(t *testing.T) {
		svc, _, p := newRecordFixture(t)

		r, err := svc.CreateRecord(context.Background(), createRecordCmd(p.ID), uuid.New(), "doctor", "")

		require.NoError(t, err)
		assert.Equal(t, record.TypeConsultationNote, r.Type)
		assert.NotEqual(t, uuid.Nil, r.ID)
	})

	t.Run("receptionist cannot author records", func(t *testing.T) {
		svc, _, p := newRecordFixture(t)

		_, err := svc.CreateRecord(context.Background(), createRecordCmd(p.ID), uuid.New(), "receptionist", "")

		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown patient", func(t *testing.T) {
		svc, _, _ := newRecordFixture(t)

		_, err := svc.CreateRecord(context.Background(), createRecordCmd(uuid.New()), uuid.New(), "doctor", "")

		assert.ErrorIs(t, err, patient.ErrPatientNotFound)
	})

	t.Run("invalid type", func(t *testing.T) {
		svc, _, p := newRecordFixture(t)
		cmd := createRecordCmd(p.ID)
		cmd.Type = "tweet"

		_, err := svc.CreateRecord(context.Background(), cmd, uuid.New(), "doctor", "")

		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}

func TestAddAddendum(t *testing.T) {
	t.Run("appends without touching the record", func(t *testing.T) {
		svc, repo, p := newRecordFixture(t)
		r, err := svc.CreateRecord(context.Background(), createRecordCmd(p.ID), uuid.New(), "doctor", "")
		require.NoError(t, err)

		a, err := svc.AddAddendum(context.Background(), &record.AddAddendumCommand{
			MedicalRecordID: r.ID,
			Content:         "correction: fever resolved after 2 days",
		}, uuid.New(), "doctor", "")

		require.NoError(t, err)
		assert.Equal(t, r.ID, a.MedicalRecordID)
		assert.Equal(t, "patient presented with mild fever", repo.records[r.ID].Notes)
	})

	t.Run("empty content rejected", func(t *testing.T) {
		svc, _, p := newRecordFixture(t)
		r, err := svc.CreateRecord(context.Background(), createRecordCmd(p.ID), uuid.New(), "doctor", "")
		require.NoError(t, err)

		_, err = svc.AddAddendum(context.Background(), &record.AddAddendumCommand{
			MedicalRecordID: r.ID,
			Content:         "   ",
		}, uuid.New(), "doctor", "")

		assert.ErrorIs(t, err, record.ErrEmptyAddendum)
	})

	t.Run("unknown record", func(t *testing.T) {
		svc, _, _ := newRecordFixture(t)

		_, err := svc.AddAddendum(context.Background(), &record.AddAddendumCommand{
			MedicalRecordID: uuid.New(),
			Content:         "orphan",
		}, uuid.New(), "nurse", "")

		assert.ErrorIs(t, err, record.ErrRecordNotFound)
	})
}

func TestListRecordsScoping(t *testing.T) {
	svc, _, p := newRecordFixture(t)
	_, err := svc.CreateRecord(context.Background(), createRecordCmd(p.ID), uuid.New(), "doctor", "")
	require.NoError(t, err)

	t.Run("patient queries are forced onto their own records", func(t *testing.T) {
		other := uuid.New()
		q := &record.ListRecordsQuery{PatientID: &other}

		page, err := svc.ListRecords(context.Background(), q, "patient", &p.ID)

		require.NoError(t, err)
		require.Len(t, page.Records, 1)
		assert.Equal(t, p.ID, page.Records[0].PatientID)
	})

	t.Run("patient without a linked record is refused", func(t *testing.T) {
		_, err := svc.ListRecords(context.Background(), &record.ListRecordsQuery{}, "patient", nil)

		assert.ErrorIs(t, err, ErrForbidden)
	})
}
