package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
	"github.com/oksasatya/project-tracker-api/internal/domain/repository"
)

type userDoc struct {
	ID              bson.ObjectID `bson:"_id"`
	Email           string        `bson:"email"`
	Password        string        `bson:"password"`
	Name            string        `bson:"name"`
	ProfilePicture  string        `bson:"profilePicture,omitempty"`
	IsEmailVerified bool          `bson:"isEmailVerified"`
	LastLogin       *time.Time    `bson:"lastLogin,omitempty"`
	CreatedAt       time.Time     `bson:"createdAt"`
	UpdatedAt       time.Time     `bson:"updatedAt"`
}

func (d *userDoc) toEntity() *entity.User {
	return &entity.User{
		ID:              d.ID.Hex(),
		Email:           d.Email,
		Password:        d.Password,
		Name:            d.Name,
		ProfilePicture:  d.ProfilePicture,
		IsEmailVerified: d.IsEmailVerified,
		LastLogin:       d.LastLogin,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func newUserDoc(u *entity.User, now time.Time) userDoc {
	return userDoc{
		ID:              bson.NewObjectID(),
		Email:           entity.NormalizeEmail(u.Email),
		Password:        u.Password,
		Name:            u.Name,
		ProfilePicture:  u.ProfilePicture,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

type UserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		coll: db.Collection(usersCollection),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	doc := newUserDoc(u, r.now().Truncate(time.Millisecond))
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = doc.ID.Hex()
	u.Email = doc.Email
	u.CreatedAt = doc.CreatedAt
	u.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": entity.NormalizeEmail(email)})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = r.now()
	return r.set(ctx, u.ID, bson.M{"name": u.Name, "profilePicture": u.ProfilePicture, "updatedAt": u.UpdatedAt})
}

func (r *UserRepository) SetVerified(ctx context.Context, id string) error {
	return r.set(ctx, id, bson.M{"isEmailVerified": true, "updatedAt": r.now()})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.set(ctx, id, bson.M{"password": hash, "updatedAt": r.now()})
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.set(ctx, id, bson.M{"lastLogin": at})
}

func (r *UserRepository) set(ctx context.Context, id string, fields bson.M) error {
	oid, ok := objectID(id)
	if !ok {
		return repository.ErrNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
