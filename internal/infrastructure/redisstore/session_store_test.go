package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
)

func newStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewSessionStore(rdb, time.Hour), mr
}

func TestSessionStore_SaveGet(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, entity.Session{ID: "sid-1", UserID: "u1", Email: "a@x.com", Name: "Ann", CreatedAt: created}))

	sess, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "sid-1", sess.ID)
	assert.Equal(t, "Ann", sess.Name)
	assert.True(t, created.Equal(sess.CreatedAt))
	assert.Equal(t, time.Hour, mr.TTL("user:session:u1"))
}

func TestSessionStore_SaveReplaces(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, entity.Session{ID: "old", UserID: "u1", Name: "Ann"}))
	require.NoError(t, store.Save(ctx, entity.Session{ID: "new", UserID: "u1"}))

	sess, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "new", sess.ID)
	assert.Empty(t, sess.Name)
}

func TestSessionStore_Expiry(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, entity.Session{ID: "sid", UserID: "u1"}))
	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_TouchDelete(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	// no session: touch is a no-op
	require.NoError(t, store.Touch(ctx, "u1", "Ann"))
	assert.False(t, mr.Exists("user:session:u1"))

	require.NoError(t, store.Save(ctx, entity.Session{ID: "sid", UserID: "u1", Name: "Ann"}))
	mr.FastForward(10 * time.Minute)
	require.NoError(t, store.Touch(ctx, "u1", "Ann B"))

	sess, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ann B", sess.Name)
	assert.Equal(t, 50*time.Minute, mr.TTL("user:session:u1"))

	require.NoError(t, store.Delete(ctx, "u1"))
	_, err = store.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_RedisError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewSessionStore(db, time.Hour)

	mock.ExpectHGetAll("user:session:u1").SetErr(errors.New("connection refused"))
	_, err := store.Get(context.Background(), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)

	mock.ExpectDel("user:session:u1").SetErr(errors.New("connection refused"))
	assert.Error(t, store.Delete(context.Background(), "u1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionStore_TouchAfterExpiry(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, entity.Session{ID: "sid", UserID: "u1", Name: "Ann"}))
	mr.FastForward(2 * time.Hour)

	require.NoError(t, store.Touch(ctx, "u1", "Ann B"))
	assert.False(t, mr.Exists("user:session:u1"))
}

func TestSessionStore_TouchSingleRoundTrip(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewSessionStore(db, time.Hour)

	mock.ExpectEvalSha(touchScript.Hash(), []string{"user:session:u1"}, "Ann").SetVal(int64(0))
	require.NoError(t, store.Touch(context.Background(), "u1", "Ann"))

	mock.ExpectEvalSha(touchScript.Hash(), []string{"user:session:u1"}, "Ann").SetErr(errors.New("connection refused"))
	assert.ErrorContains(t, store.Touch(context.Background(), "u1", "Ann"), "touch session")

	assert.NoError(t, mock.ExpectationsWereMet())
}
