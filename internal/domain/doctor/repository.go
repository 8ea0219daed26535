package doctor

import (
	"context"

	"github.com/carelane/hms-api/internal/domain"
	"github.com/google/uuid"
)

type Repository interface {
	// CreateWithUser persists the doctor profile and its linked user account
	// in a single transaction: both writes succeed or fail together.
	CreateWithUser(ctx context.Context, d *Doctor, u *domain.User) error

	// GetByID returns ErrDoctorNotFound when no row matches.
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)

	// Update applies partial updates to an existing doctor profile.
	Update(ctx context.Context, id uuid.UUID, cmd *UpdateDoctorCommand) (*Doctor, error)

	// SoftDelete marks the doctor as removed without losing history.
	SoftDelete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context, q *ListDoctorsQuery) (*PagedDoctors, error)

	// ExistsByLicense checks license-number uniqueness without fetching the row.
	ExistsByLicense(ctx context.Context, licenseNumber string) (bool, error)
}
