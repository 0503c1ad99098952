// Package memory keeps users, verification tokens, workspaces and projects
// in process memory.
// It backs STORE_DRIVER=memory and the service and handler tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
	"github.com/oksasatya/project-tracker-api/internal/domain/repository"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entity.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byID: map[string]*entity.User{}, byEmail: map[string]string{}}
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.Email = entity.NormalizeEmail(u.Email)
	if _, ok := r.byEmail[u.Email]; ok {
		return repository.ErrDuplicate
	}
	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = now, now

	cp := *u
	r.byID[u.ID] = &cp
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[entity.NormalizeEmail(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) Update(_ context.Context, u *entity.User) error {
	return r.mutate(u.ID, func(s *entity.User) {
		s.Name = u.Name
		s.ProfilePicture = u.ProfilePicture
		u.UpdatedAt = s.UpdatedAt
	})
}

func (r *UserRepository) SetVerified(_ context.Context, id string) error {
	return r.mutate(id, func(s *entity.User) { s.IsEmailVerified = true })
}

func (r *UserRepository) UpdatePassword(_ context.Context, id, hash string) error {
	return r.mutate(id, func(s *entity.User) { s.Password = hash })
}

func (r *UserRepository) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	return r.mutate(id, func(s *entity.User) {
		t := at
		s.LastLogin = &t
	})
}

func (r *UserRepository) mutate(id string, fn func(*entity.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.UpdatedAt = time.Now().UTC()
	fn(u)
	return nil
}

type VerificationRepository struct {
	mu     sync.RWMutex
	tokens map[string]*entity.VerificationToken
}

func NewVerificationRepository() *VerificationRepository {
	return &VerificationRepository{tokens: map[string]*entity.VerificationToken{}}
}

func (r *VerificationRepository) Create(_ context.Context, v *entity.VerificationToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if (t.UserID == v.UserID && t.Purpose == v.Purpose) || t.Token == v.Token {
			return repository.ErrDuplicate
		}
	}
	v.ID = uuid.NewString()
	v.CreatedAt = time.Now().UTC()
	cp := *v
	r.tokens[v.ID] = &cp
	return nil
}

func (r *VerificationRepository) FindByUserAndPurpose(_ context.Context, userID string, purpose entity.Purpose) (*entity.VerificationToken, error) {
	return r.find(func(t *entity.VerificationToken) bool { return t.UserID == userID && t.Purpose == purpose })
}

func (r *VerificationRepository) FindByUserAndToken(_ context.Context, userID, token string) (*entity.VerificationToken, error) {
	return r.find(func(t *entity.VerificationToken) bool { return t.UserID == userID && t.Token == token })
}

func (r *VerificationRepository) find(match func(*entity.VerificationToken) bool) (*entity.VerificationToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tokens {
		if match(t) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *VerificationRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, id)
	return nil
}

func (r *VerificationRepository) Consume(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[id]; !ok {
		return false, nil
	}
	delete(r.tokens, id)
	return true, nil
}

// Len reports how many records are stored.
func (r *VerificationRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}

var (
	_ repository.UserRepository         = (*UserRepository)(nil)
	_ repository.VerificationRepository = (*VerificationRepository)(nil)
)
