package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines the persistence operations of the identity store.
type UserRepository interface {
	// Create stores u and fills ID and timestamps. ErrDuplicate on a taken email.
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// Update persists name and profile picture.
	Update(ctx context.Context, u *entity.User) error
	SetVerified(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}
