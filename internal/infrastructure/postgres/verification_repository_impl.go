package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
	"github.com/oksasatya/project-tracker-api/internal/domain/repository"
)

const verificationColumns = `id, user_id, token, purpose, expires_at, created_at`

type VerificationRepository struct {
	db DB
}

func NewVerificationRepository(db DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) Create(ctx context.Context, v *entity.VerificationToken) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO verification_tokens (user_id, token, purpose, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, v.UserID, v.Token, string(v.Purpose), v.ExpiresAt)

	if err := row.Scan(&v.ID, &v.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert verification token: %w", err)
	}
	return nil
}

func (r *VerificationRepository) FindByUserAndPurpose(ctx context.Context, userID string, purpose entity.Purpose) (*entity.VerificationToken, error) {
	return r.getOne(ctx, `SELECT `+verificationColumns+` FROM verification_tokens WHERE user_id = $1 AND purpose = $2`, userID, string(purpose))
}

func (r *VerificationRepository) FindByUserAndToken(ctx context.Context, userID, token string) (*entity.VerificationToken, error) {
	return r.getOne(ctx, `SELECT `+verificationColumns+` FROM verification_tokens WHERE user_id = $1 AND token = $2`, userID, token)
}

func (r *VerificationRepository) getOne(ctx context.Context, query string, args ...any) (*entity.VerificationToken, error) {
	var (
		v       entity.VerificationToken
		purpose string
	)
	row := r.db.QueryRow(ctx, query, args...)
	if err := row.Scan(&v.ID, &v.UserID, &v.Token, &purpose, &v.ExpiresAt, &v.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select verification token: %w", err)
	}
	v.Purpose = entity.Purpose(purpose)
	return &v, nil
}

// Delete is idempotent; deleting a consumed record is not an error.
func (r *VerificationRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM verification_tokens WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete verification token: %w", err)
	}
	return nil
}

func (r *VerificationRepository) Consume(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM verification_tokens WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("consume verification token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

var _ repository.VerificationRepository = (*VerificationRepository)(nil)
