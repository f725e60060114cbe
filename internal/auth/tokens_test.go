package auth

import (
	"context"
	"testing"
	"time"

	"carrent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	return &models.User{ID: 42, Username: "alice", IsStaff: true}
}

func TestTokenManager_IssueParse(t *testing.T) {
	ctx := context.Background()
	mgr := NewTokenManager("test-secret", time.Hour, NewMemoryBlacklist())

	token, err := mgr.Issue(testUser())
	require.NoError(t, err)

	claims, err := mgr.Parse(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.IsStaff)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	ctx := context.Background()
	mgr := NewTokenManager("test-secret", time.Hour, NewMemoryBlacklist())
	other := NewTokenManager("other-secret", time.Hour, NewMemoryBlacklist())

	token, err := mgr.Issue(testUser())
	require.NoError(t, err)

	_, err = other.Parse(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Garbage(t *testing.T) {
	ctx := context.Background()
	mgr := NewTokenManager("test-secret", time.Hour, NewMemoryBlacklist())

	_, err := mgr.Parse(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Revoke(t *testing.T) {
	ctx := context.Background()
	mgr := NewTokenManager("test-secret", time.Hour, NewMemoryBlacklist())

	token, err := mgr.Issue(testUser())
	require.NoError(t, err)

	claims, err := mgr.Parse(ctx, token)
	require.NoError(t, err)

	require.NoError(t, mgr.Revoke(ctx, claims))

	_, err = mgr.Parse(ctx, token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestMemoryBlacklist_Expiry(t *testing.T) {
	ctx := context.Background()
	bl := NewMemoryBlacklist()

	require.NoError(t, bl.Add(ctx, "tok", -time.Second))
	revoked, err := bl.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked, "expired entries are dropped")
}
