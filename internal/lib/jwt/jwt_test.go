package jwt

import (
	"testing"
	"time"

	"quizserver/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() models.User {
	return models.User{
		ID:    1,
		Email: "a@x.com",
		Name:  "A",
		Role:  models.RoleUser,
	}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 10*time.Minute)

	token, err := tm.NewToken(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestTokenManager_ExpiryBoundary(t *testing.T) {
	tm := NewTokenManager("test-secret", 10*time.Minute)

	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return issuedAt }

	token, err := tm.NewToken(testUser())
	require.NoError(t, err)

	tm.now = func() time.Time { return issuedAt.Add(599 * time.Second) }
	_, err = tm.ParseToken(token)
	assert.NoError(t, err)

	tm.now = func() time.Time { return issuedAt.Add(601 * time.Second) }
	_, err = tm.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_WrongKey(t *testing.T) {
	tm := NewTokenManager("test-secret", 10*time.Minute)
	other := NewTokenManager("other-secret", 10*time.Minute)

	token, err := other.NewToken(testUser())
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_WrongKeyAndExpired(t *testing.T) {
	// A bad signature wins over expiry: the expired variant is only reported
	// for tokens we actually signed.
	other := NewTokenManager("other-secret", -time.Minute)

	token, err := other.NewToken(testUser())
	require.NoError(t, err)

	tm := NewTokenManager("test-secret", 10*time.Minute)

	_, err = tm.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Garbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 10*time.Minute)

	_, err := tm.ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewRefreshToken_Opaque(t *testing.T) {
	first, err := NewRefreshToken()
	require.NoError(t, err)

	second, err := NewRefreshToken()
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
	assert.NotContains(t, first, ".")
}
