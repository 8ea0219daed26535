package service

import (
	"context"
	"errors"
	"testing"

	"github.com/carelane/hms-api/internal/domain"
	"github.com/carelane/hms-api/internal/domain/doctor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newDoctorService(t *testing.T, repo *mockDoctorRepo) *DoctorService {
	t.Helper()
	log := zap.NewNop()
	auditSvc := NewAuditService(&mockAuditRepo{}, newTestCollector(), log)
	t.Cleanup(auditSvc.Shutdown)
	return NewDoctorService(repo, auditSvc, log)
}

func registerCmd() *doctor.RegisterDoctorCommand {
	return &doctor.RegisterDoctorCommand{
		FirstName:       "Asha",
		LastName:        "Verma",
		Specialization:  "Cardiology",
		LicenseNumber:   "LIC-1001",
		Email:           "Asha.Verma@Example.com",
		Phone:           "555-0101",
		ConsultationFee: 120,
		Password:        "a-long-enough-password",
	}
}

func TestRegisterDoctor(t *testing.T) {
	t.Run("creates profile and linked account atomically", func(t *testing.T) {
		repo := newMockDoctorRepo()
		var gotUser *domain.User
		repo.createWithUserFn = func(ctx context.Context, d *doctor.Doctor, u *domain.User) error {
			d.ID = uuid.New()
			repo.doctors[d.ID] = d
			gotUser = u
			return nil
		}
		svc := newDoctorService(t, repo)

		d, err := svc.RegisterDoctor(context.Background(), registerCmd(), uuid.New(), "admin", "")

		require.NoError(t, err)
		assert.Equal(t, "asha.verma@example.com", d.Email)
		assert.Equal(t, doctor.StatusActive, d.Status)

		require.NotNil(t, gotUser)
		assert.Equal(t, domain.RoleDoctor, gotUser.Role)
		assert.Equal(t, d.Email, gotUser.Email)
		assert.True(t, gotUser.IsActive)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(gotUser.PasswordHash), []byte("a-long-enough-password")))
	})

	t.Run("duplicate license is rejected", func(t *testing.T) {
		existing := &doctor.Doctor{ID: uuid.New(), LicenseNumber: "LIC-1001"}
		svc := newDoctorService(t, newMockDoctorRepo(existing))

		_, err := svc.RegisterDoctor(context.Background(), registerCmd(), uuid.New(), "admin", "")

		assert.ErrorIs(t, err, doctor.ErrDoctorAlreadyExists)
	})

	t.Run("short password is rejected", func(t *testing.T) {
		svc := newDoctorService(t, newMockDoctorRepo())
		cmd := registerCmd()
		cmd.Password = "short"

		_, err := svc.RegisterDoctor(context.Background(), cmd, uuid.New(), "admin", "")

		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("transaction failure surfaces and creates nothing", func(t *testing.T) {
		repo := newMockDoctorRepo()
		boom := errors.New("tx rolled back")
		repo.createWithUserFn = func(ctx context.Context, d *doctor.Doctor, u *domain.User) error {
			return boom
		}
		svc := newDoctorService(t, repo)

		_, err := svc.RegisterDoctor(context.Background(), registerCmd(), uuid.New(), "admin", "")

		assert.ErrorIs(t, err, boom)
		assert.Empty(t, repo.doctors)
	})
}

func TestListDoctorsClampsPaging(t *testing.T) {
	svc := newDoctorService(t, newMockDoctorRepo())

	page, err := svc.ListDoctors(context.Background(), &doctor.ListDoctorsQuery{Page: -1, PageSize: 1000})

	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
}
