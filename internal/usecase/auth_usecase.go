package usecase

import (
	"errors"
	"fmt"
	"net/mail"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/postly/backend/internal/config"
	"github.com/postly/backend/internal/domain"
)

// AuthUsecase verifies and changes credentials against the user store and
// drives the session lifecycle through the TokenService.
type AuthUsecase struct {
	userRepo    domain.UserRepository
	revocations domain.RevocationRepository
	tokens      *TokenService
	policy      *config.PasswordConfig

	now func() time.Time
}

func NewAuthUsecase(userRepo domain.UserRepository, revocations domain.RevocationRepository, tokens *TokenService, policy *config.PasswordConfig) *AuthUsecase {
	return &AuthUsecase{
		userRepo:    userRepo,
		revocations: revocations,
		tokens:      tokens,
		policy:      policy,
		now:         time.Now,
	}
}

type RegisterInput struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	Password2   string `json:"password2"`
}

func (u *AuthUsecase) Register(input RegisterInput) (*domain.User, *TokenPair, error) {
	email := domain.NormalizeEmail(input.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil, domain.NewValidationError("email", "enter a valid email address")
	}
	if input.FirstName == "" {
		return nil, nil, domain.NewValidationError("first_name", "this field is required")
	}
	if input.LastName == "" {
		return nil, nil, domain.NewValidationError("last_name", "this field is required")
	}
	if input.Password != input.Password2 {
		return nil, nil, domain.NewValidationError("password", "password fields didn't match")
	}
	if err := u.validatePassword(input.Password); err != nil {
		return nil, nil, err
	}

	existing, err := u.userRepo.GetByEmail(email)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PhoneNumber:  input.PhoneNumber,
		IsActive:     true,
	}
	if err := u.userRepo.Create(user); err != nil {
		// Concurrent registration with the same email loses here.
		if errors.Is(err, domain.ErrConflict) {
			return nil, nil, ErrEmailExists
		}
		return nil, nil, err
	}

	pair, err := u.tokens.Issue(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (u *AuthUsecase) Login(email, password string) (*domain.User, *TokenPair, error) {
	user, err := u.userRepo.GetByEmail(domain.NormalizeEmail(email))
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		// Burn a comparison anyway so a missing account is not
		// distinguishable from a wrong password by response time.
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, ErrAccountDisabled
	}

	now := u.now().UTC()
	if err := u.userRepo.UpdateLastLogin(user.ID, now); err != nil {
		return nil, nil, err
	}
	user.LastLoginAt = &now

	pair, err := u.tokens.Issue(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// ChangePassword rehashes the credential and invalidates every outstanding
// refresh token for the subject, so a leaked session does not survive the
// change.
func (u *AuthUsecase) ChangePassword(userID uuid.UUID, oldPassword, newPassword, newPassword2 string) error {
	if newPassword != newPassword2 {
		return domain.NewValidationError("new_password", "new password fields didn't match")
	}
	if err := u.validatePassword(newPassword); err != nil {
		return err
	}

	user, err := u.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := u.userRepo.UpdatePassword(userID, string(hash)); err != nil {
		return err
	}
	return u.revocations.SetUserCutoff(userID, u.now().UTC())
}

func (u *AuthUsecase) GetProfile(userID uuid.UUID) (*domain.User, error) {
	user, err := u.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

type UpdateProfileInput struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
}

func (u *AuthUsecase) UpdateProfile(userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	user, err := u.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = *input.PhoneNumber
	}

	if err := u.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *AuthUsecase) validatePassword(password string) error {
	if len(password) < u.policy.MinLength {
		return domain.NewValidationError("password", fmt.Sprintf("password must be at least %d characters", u.policy.MinLength))
	}
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	classes := 0
	for _, present := range []bool{lower, upper, digit, symbol} {
		if present {
			classes++
		}
	}
	if classes < u.policy.MinClasses {
		return domain.NewValidationError("password", fmt.Sprintf("password must mix at least %d character classes", u.policy.MinClasses))
	}
	return nil
}

// dummyHash is a valid bcrypt hash of an unguessable value, used to equalize
// login timing when no account matches the email.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")
