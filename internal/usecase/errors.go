package usecase

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("user account is disabled")
	ErrEmailExists        = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")

	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")

	ErrForbidden       = errors.New("forbidden")
	ErrPostNotFound    = errors.New("post not found")
	ErrProductNotFound = errors.New("product not found")
)
