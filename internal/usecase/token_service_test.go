package usecase

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postly/backend/internal/config"
	"github.com/postly/backend/internal/domain"
	"github.com/postly/backend/internal/repository/memory"
)

func newTestTokenService(t *testing.T) (*TokenService, *memory.UserRepository, *memory.RevocationRepository, *domain.User) {
	t.Helper()

	userRepo := memory.NewUserRepository()
	revocations := memory.NewRevocationRepository()
	cfg := &config.JWTConfig{
		Secret:     "test-secret",
		AccessTTL:  time.Hour,
		RefreshTTL: 7 * 24 * time.Hour,
	}
	svc := NewTokenService(userRepo, revocations, cfg)

	user := &domain.User{
		Email:        "alice@example.com",
		PasswordHash: "x",
		FirstName:    "Alice",
		LastName:     "Smith",
		IsActive:     true,
	}
	require.NoError(t, userRepo.Create(user))

	return svc, userRepo, revocations, user
}

func TestIssueAndVerifyAccess(t *testing.T) {
	svc, _, _, user := newTestTokenService(t)

	pair, err := svc.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	userID, err := svc.VerifyAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestVerifyAccessRejectsRefreshKind(t *testing.T) {
	svc, _, _, user := newTestTokenService(t)

	pair, err := svc.Issue(user)
	require.NoError(t, err)

	_, err = svc.VerifyAccess(pair.Refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyAccessExpired(t *testing.T) {
	svc, _, _, user := newTestTokenService(t)

	// Issue in the past so the access TTL has already elapsed.
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	pair, err := svc.Issue(user)
	require.NoError(t, err)
	svc.now = time.Now

	_, err = svc.VerifyAccess(pair.Access)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyAccessTampered(t *testing.T) {
	svc, _, _, user := newTestTokenService(t)

	pair, err := svc.Issue(user)
	require.NoError(t, err)

	_, err = svc.VerifyAccess(pair.Access + "x")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.VerifyAccess("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyAccessWrongSecret(t *testing.T) {
	svc, _, _, user := newTestTokenService(t)

	pair, err := svc.Issue(user)
	require.NoError(t, err)

	svc.cfg.Secret = "a-different-secret"
	_, err = svc.VerifyAccess(pair.Access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefresh(t *testing.T) {
	svc, _, _, user := newTestTokenService(t)

	pair, err := svc.Issue(user)
	require.NoError(t, err)

	access, err := svc.Refresh(pair.Refresh)
	require.NoError(t, err)
	require.NotEmpty(t, access)

	// The minted access token verifies independently to the same subject.
	userID, err := svc.VerifyAccess(access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	// Without rotation the refresh token stays usable.
	_, err = svc.Refresh(pair.Refresh)
	assert.NoError(t, err)
}

func TestRefreshRejectsAccessKind(t *testing.T) {
	svc, _, _, user := newTestTokenService(t)

	pair, err := svc.Issue(user)
	require.NoError(t, err)

	_, err = svc.Refresh(pair.Access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshExpired(t *testing.T) {
	svc, _, _, user := newTestTokenService(t)

	svc.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	pair, err := svc.Issue(user)
	require.NoError(t, err)
	svc.now = time.Now

	_, err = svc.Refresh(pair.Refresh)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRevokeThenRefresh(t *testing.T) {
	svc, _, _, user := newTestTokenService(t)

	pair, err := svc.Issue(user)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(pair.Refresh))

	_, err = svc.Refresh(pair.Refresh)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// Revocation is idempotent.
	assert.NoError(t, svc.Revoke(pair.Refresh))
}

func TestRevokeInvalidToken(t *testing.T) {
	svc, _, _, _ := newTestTokenService(t)

	assert.ErrorIs(t, svc.Revoke("garbage"), ErrTokenInvalid)
}

func TestRevokeExpiredTokenIsAccepted(t *testing.T) {
	svc, _, _, user := newTestTokenService(t)

	svc.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	pair, err := svc.Issue(user)
	require.NoError(t, err)
	svc.now = time.Now

	// An expired token cannot be used anyway; recording it is harmless.
	assert.NoError(t, svc.Revoke(pair.Refresh))
}

func TestRefreshScopedToOneToken(t *testing.T) {
	svc, _, _, user := newTestTokenService(t)

	first, err := svc.Issue(user)
	require.NoError(t, err)
	second, err := svc.Issue(user)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(first.Refresh))

	// Revoking one session leaves the other untouched.
	_, err = svc.Refresh(first.Refresh)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = svc.Refresh(second.Refresh)
	assert.NoError(t, err)
}

func TestUserCutoffRevokesOutstandingTokens(t *testing.T) {
	svc, _, revocations, user := newTestTokenService(t)

	base := time.Now()
	svc.now = func() time.Time { return base }
	pair, err := svc.Issue(user)
	require.NoError(t, err)

	require.NoError(t, revocations.SetUserCutoff(user.ID, base.Add(time.Minute)))

	svc.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = svc.Refresh(pair.Refresh)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// A token issued after the cutoff is unaffected.
	svc.now = func() time.Time { return base.Add(3 * time.Minute) }
	fresh, err := svc.Issue(user)
	require.NoError(t, err)
	_, err = svc.Refresh(fresh.Refresh)
	assert.NoError(t, err)
}

func TestRefreshForDeletedUser(t *testing.T) {
	svc, _, _, _ := newTestTokenService(t)

	ghost := &domain.User{ID: uuid.New(), IsActive: true}
	pair, err := svc.Issue(ghost)
	require.NoError(t, err)

	// Well-formed token, but no matching user.
	_, err = svc.Refresh(pair.Refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshForDeactivatedUser(t *testing.T) {
	svc, userRepo, _, user := newTestTokenService(t)

	pair, err := svc.Issue(user)
	require.NoError(t, err)

	user.IsActive = false
	require.NoError(t, userRepo.Update(user))

	_, err = svc.Refresh(pair.Refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyAccessReverifiesSubjectWhenConfigured(t *testing.T) {
	svc, userRepo, _, user := newTestTokenService(t)

	pair, err := svc.Issue(user)
	require.NoError(t, err)

	user.IsActive = false
	require.NoError(t, userRepo.Update(user))

	// Default policy trusts the payload for access tokens.
	_, err = svc.VerifyAccess(pair.Access)
	assert.NoError(t, err)

	svc.cfg.ReverifySubject = true
	_, err = svc.VerifyAccess(pair.Access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
