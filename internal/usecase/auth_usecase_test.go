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

func newTestAuth(t *testing.T) (*AuthUsecase, *TokenService, *memory.UserRepository) {
	t.Helper()

	userRepo := memory.NewUserRepository()
	revocations := memory.NewRevocationRepository()
	jwtCfg := &config.JWTConfig{
		Secret:     "test-secret",
		AccessTTL:  time.Hour,
		RefreshTTL: 7 * 24 * time.Hour,
	}
	policy := &config.PasswordConfig{MinLength: 8, MinClasses: 2}

	tokens := NewTokenService(userRepo, revocations, jwtCfg)
	auth := NewAuthUsecase(userRepo, revocations, tokens, policy)
	return auth, tokens, userRepo
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Smith",
		Password:  "SecurePass1",
		Password2: "SecurePass1",
	}
}

func TestRegister(t *testing.T) {
	auth, tokens, _ := newTestAuth(t)

	user, pair, err := auth.Register(validRegistration())
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotNil(t, pair)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "SecurePass1", user.PasswordHash)
	assert.NotContains(t, user.PasswordHash, "SecurePass1")

	subject, err := tokens.VerifyAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	auth, _, repo := newTestAuth(t)

	input := validRegistration()
	input.Email = "  Alice@EXAMPLE.com "
	user, _, err := auth.Register(input)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	stored, err := repo.GetByEmail("ALICE@example.COM")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, user.ID, stored.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth, _, _ := newTestAuth(t)

	_, _, err := auth.Register(validRegistration())
	require.NoError(t, err)

	// Same address in a different case must conflict.
	input := validRegistration()
	input.Email = "ALICE@example.com"
	_, _, err = auth.Register(input)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		field  string
	}{
		{"password mismatch", func(in *RegisterInput) { in.Password2 = "Different1" }, "password"},
		{"malformed email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"short password", func(in *RegisterInput) { in.Password, in.Password2 = "Ab1", "Ab1" }, "password"},
		{"single class password", func(in *RegisterInput) { in.Password, in.Password2 = "alllowercase", "alllowercase" }, "password"},
		{"missing first name", func(in *RegisterInput) { in.FirstName = "" }, "first_name"},
		{"missing last name", func(in *RegisterInput) { in.LastName = "" }, "last_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, _, repo := newTestAuth(t)

			input := validRegistration()
			tt.mutate(&input)

			_, _, err := auth.Register(input)
			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)

			// No user may be created on a failed registration.
			stored, err := repo.GetByEmail("alice@example.com")
			require.NoError(t, err)
			assert.Nil(t, stored)
		})
	}
}

func TestLogin(t *testing.T) {
	auth, tokens, _ := newTestAuth(t)

	registered, _, err := auth.Register(validRegistration())
	require.NoError(t, err)

	user, pair, err := auth.Login("alice@example.com", "SecurePass1")
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.Equal(t, registered.ID, user.ID)
	require.NotNil(t, user.LastLoginAt)

	subject, err := tokens.VerifyAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, subject)
}

func TestLoginCaseInsensitiveEmail(t *testing.T) {
	auth, _, _ := newTestAuth(t)

	_, _, err := auth.Register(validRegistration())
	require.NoError(t, err)

	_, _, err = auth.Login("Alice@Example.COM", "SecurePass1")
	assert.NoError(t, err)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	auth, _, repo := newTestAuth(t)

	registered, _, err := auth.Register(validRegistration())
	require.NoError(t, err)

	_, _, wrongPassword := auth.Login("alice@example.com", "WrongPass1")
	_, _, noSuchUser := auth.Login("nobody@example.com", "SecurePass1")

	// Neither failure discloses which factor was wrong.
	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, noSuchUser, ErrInvalidCredentials)

	// The store is untouched by a failed login.
	stored, err := repo.GetByID(registered.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LastLoginAt)
}

func TestLoginDisabledAccount(t *testing.T) {
	auth, _, repo := newTestAuth(t)

	user, _, err := auth.Register(validRegistration())
	require.NoError(t, err)

	user.IsActive = false
	require.NoError(t, repo.Update(user))

	_, _, err = auth.Login("alice@example.com", "SecurePass1")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestChangePassword(t *testing.T) {
	auth, _, _ := newTestAuth(t)

	user, _, err := auth.Register(validRegistration())
	require.NoError(t, err)

	require.NoError(t, auth.ChangePassword(user.ID, "SecurePass1", "NewSecret2", "NewSecret2"))

	_, _, err = auth.Login("alice@example.com", "SecurePass1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = auth.Login("alice@example.com", "NewSecret2")
	assert.NoError(t, err)
}

func TestChangePasswordWrongOldPassword(t *testing.T) {
	auth, _, repo := newTestAuth(t)

	user, _, err := auth.Register(validRegistration())
	require.NoError(t, err)
	before, err := repo.GetByID(user.ID)
	require.NoError(t, err)

	err = auth.ChangePassword(user.ID, "WrongPass1", "NewSecret2", "NewSecret2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// The stored hash must be unchanged.
	after, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
}

func TestChangePasswordMismatch(t *testing.T) {
	auth, _, _ := newTestAuth(t)

	user, _, err := auth.Register(validRegistration())
	require.NoError(t, err)

	err = auth.ChangePassword(user.ID, "SecurePass1", "NewSecret2", "Different2")
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "new_password", vErr.Field)
}

func TestChangePasswordRevokesOutstandingSessions(t *testing.T) {
	auth, tokens, _ := newTestAuth(t)

	base := time.Now()
	tokens.now = func() time.Time { return base }
	auth.now = func() time.Time { return base.Add(time.Minute) }

	user, pair, err := auth.Register(validRegistration())
	require.NoError(t, err)

	require.NoError(t, auth.ChangePassword(user.ID, "SecurePass1", "NewSecret2", "NewSecret2"))

	// A session stolen before the change must not survive it.
	tokens.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = tokens.Refresh(pair.Refresh)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestUpdateProfilePartial(t *testing.T) {
	auth, _, _ := newTestAuth(t)

	user, _, err := auth.Register(validRegistration())
	require.NoError(t, err)

	phone := "+1 555 0100"
	updated, err := auth.UpdateProfile(user.ID, UpdateProfileInput{PhoneNumber: &phone})
	require.NoError(t, err)

	assert.Equal(t, "+1 555 0100", updated.PhoneNumber)
	assert.Equal(t, "Alice", updated.FirstName)
	assert.Equal(t, "Smith", updated.LastName)
}

func TestGetProfileUnknownUser(t *testing.T) {
	auth, _, _ := newTestAuth(t)

	_, err := auth.GetProfile(uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
