package domain

import (
	"time"

	"github.com/google/uuid"
)

// RevokedToken marks a refresh token's jti as no longer honored. Rows are
// written at logout and never mutated afterwards; they can be garbage
// collected once the underlying token would have expired anyway.
type RevokedToken struct {
	JTI       uuid.UUID `json:"jti"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	RevokedAt time.Time `json:"revoked_at"`
}

// RevocationRepository is the revocation set consulted on every refresh
// attempt. It is the only shared mutable state in the auth core.
//
// Besides per-token revocation it keeps a per-user cutoff timestamp: any
// refresh token issued at or before the cutoff is treated as revoked. This is
// how a password change invalidates every outstanding session without having
// to enumerate live token ids.
type RevocationRepository interface {
	Revoke(rec *RevokedToken) error
	IsRevoked(jti uuid.UUID) (bool, error)
	SetUserCutoff(userID uuid.UUID, cutoff time.Time) error
	UserCutoff(userID uuid.UUID) (time.Time, error)
	DeleteExpired() error
}
