package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_SignAndParse(t *testing.T) {
	m := NewJWTManager("test-secret")

	tok, exp, err := m.Sign("user-1", "email-verification", "", 24*time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), exp, 5*time.Second)

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "email-verification", claims.Purpose)
	assert.Empty(t, claims.SessionID)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTManager_UniqueTokens(t *testing.T) {
	m := NewJWTManager("test-secret")
	a, _, err := m.Sign("user-1", "login", "sid", time.Hour)
	require.NoError(t, err)
	b, _, err := m.Sign("user-1", "login", "sid", time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestJWTManager_Parse_Failures(t *testing.T) {
	m := NewJWTManager("test-secret")
	good, _, err := m.Sign("user-1", "reset-password", "", time.Hour)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("other-secret")
		_, err := other.Parse(good)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := m.Parse(good + "x")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewJWTManager("test-secret")
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		old, _, err := past.Sign("user-1", "reset-password", "", time.Hour)
		require.NoError(t, err)
		_, err = m.Parse(old)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := &Claims{UserID: "user-1", Purpose: "login", RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		s, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Parse(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing purpose", func(t *testing.T) {
		s, _, err := m.Sign("user-1", "", "", time.Hour)
		require.NoError(t, err)
		_, err = m.Parse(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
