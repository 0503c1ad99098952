package repository

import (
	"context"

	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
)

// VerificationRepository is the ledger of pending verification tokens.
type VerificationRepository interface {
	// Create stores v. ErrDuplicate when a record for (UserID, Purpose) exists.
	Create(ctx context.Context, v *entity.VerificationToken) error
	FindByUserAndPurpose(ctx context.Context, userID string, purpose entity.Purpose) (*entity.VerificationToken, error)
	FindByUserAndToken(ctx context.Context, userID, token string) (*entity.VerificationToken, error)
	Delete(ctx context.Context, id string) error
	// Consume deletes the record and reports whether this call removed it.
	// Exactly one of several concurrent callers sees true.
	Consume(ctx context.Context, id string) (bool, error)
}
