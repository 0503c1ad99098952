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

type verificationDoc struct {
	ID        bson.ObjectID `bson:"_id"`
	UserID    bson.ObjectID `bson:"userId"`
	Token     string        `bson:"token"`
	Purpose   string        `bson:"purpose"`
	ExpiresAt time.Time     `bson:"expiresAt"`
	CreatedAt time.Time     `bson:"createdAt"`
}

func (d *verificationDoc) toEntity() *entity.VerificationToken {
	return &entity.VerificationToken{
		ID:        d.ID.Hex(),
		UserID:    d.UserID.Hex(),
		Token:     d.Token,
		Purpose:   entity.Purpose(d.Purpose),
		ExpiresAt: d.ExpiresAt,
		CreatedAt: d.CreatedAt,
	}
}

type VerificationRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewVerificationRepository(db *mongo.Database) *VerificationRepository {
	return &VerificationRepository{
		coll: db.Collection(verificationsCollection),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *VerificationRepository) Create(ctx context.Context, v *entity.VerificationToken) error {
	uid, ok := objectID(v.UserID)
	if !ok {
		return fmt.Errorf("insert verification token: invalid user id %q", v.UserID)
	}
	doc := verificationDoc{
		ID:        bson.NewObjectID(),
		UserID:    uid,
		Token:     v.Token,
		Purpose:   string(v.Purpose),
		ExpiresAt: v.ExpiresAt.UTC(),
		CreatedAt: r.now().Truncate(time.Millisecond),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert verification token: %w", err)
	}
	v.ID = doc.ID.Hex()
	v.CreatedAt = doc.CreatedAt
	return nil
}

func (r *VerificationRepository) FindByUserAndPurpose(ctx context.Context, userID string, purpose entity.Purpose) (*entity.VerificationToken, error) {
	uid, ok := objectID(userID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"userId": uid, "purpose": string(purpose)})
}

func (r *VerificationRepository) FindByUserAndToken(ctx context.Context, userID, token string) (*entity.VerificationToken, error) {
	uid, ok := objectID(userID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"userId": uid, "token": token})
}

func (r *VerificationRepository) findOne(ctx context.Context, filter bson.M) (*entity.VerificationToken, error) {
	var doc verificationDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find verification token: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *VerificationRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return nil
	}
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("delete verification token: %w", err)
	}
	return nil
}

func (r *VerificationRepository) Consume(ctx context.Context, id string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("consume verification token: %w", err)
	}
	return res.DeletedCount == 1, nil
}

var _ repository.VerificationRepository = (*VerificationRepository)(nil)
