package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
)

func TestUserDoc_RoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	doc := newUserDoc(&entity.User{Email: " Ann@X.com", Password: "hash", Name: "Ann"}, now)

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var decoded userDoc
	require.NoError(t, bson.Unmarshal(raw, &decoded))

	u := decoded.toEntity()
	assert.Equal(t, doc.ID.Hex(), u.ID)
	assert.Equal(t, "ann@x.com", u.Email)
	assert.Equal(t, "hash", u.Password)
	assert.False(t, u.IsEmailVerified)
	assert.Nil(t, u.LastLogin)
	assert.True(t, now.Equal(u.CreatedAt))
}

func TestUserDoc_FieldNames(t *testing.T) {
	doc := newUserDoc(&entity.User{Email: "a@x.com", Name: "Ann"}, time.Now())
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	for _, k := range []string{"_id", "email", "password", "name", "isEmailVerified", "createdAt", "updatedAt"} {
		assert.Contains(t, m, k)
	}
	assert.NotContains(t, m, "lastLogin")
}

func TestVerificationDoc_ToEntity(t *testing.T) {
	uid := bson.NewObjectID()
	doc := verificationDoc{ID: bson.NewObjectID(), UserID: uid, Token: "tok", Purpose: "reset-password", ExpiresAt: time.Now()}
	v := doc.toEntity()
	assert.Equal(t, uid.Hex(), v.UserID)
	assert.Equal(t, entity.PurposeResetPassword, v.Purpose)
}

func TestObjectID(t *testing.T) {
	_, ok := objectID("not-hex")
	assert.False(t, ok)

	id := bson.NewObjectID()
	got, ok := objectID(id.Hex())
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestWorkspaceDoc_ToEntity(t *testing.T) {
	owner := bson.NewObjectID()
	doc := workspaceDoc{ID: bson.NewObjectID(), Name: "Core", Color: "#fff", Owner: owner,
		Members: []memberDoc{{User: owner, Role: "owner"}}}

	w := doc.toEntity()
	assert.Equal(t, owner.Hex(), w.OwnerID)
	role, ok := w.RoleOf(owner.Hex())
	assert.True(t, ok)
	assert.Equal(t, entity.WorkspaceOwner, role)
}

func TestProjectDoc_FieldNames(t *testing.T) {
	doc := projectDoc{ID: bson.NewObjectID(), Workspace: bson.NewObjectID(), Title: "Launch", Status: "Planning"}
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	for _, k := range []string{"workspace", "title", "status", "startDate", "dueDate", "members", "tags", "createdBy"} {
		assert.Contains(t, m, k)
	}
	assert.NotContains(t, m, "description")
	assert.Equal(t, []string{}, doc.toEntity().Tags)
}
