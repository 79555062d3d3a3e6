package usecase

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/postly/backend/internal/config"
	"github.com/postly/backend/internal/domain"
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

// TokenService issues, verifies, refreshes and revokes signed session tokens.
// Both the short-lived access token and the long-lived refresh token are
// HS256 JWTs carrying the subject id, a kind discriminator and a unique jti.
//
// Access tokens are stateless and never revocable; only refresh tokens are
// checked against the revocation set. A refresh token keeps its identity
// across refreshes (no rotation): refreshing mints a new access token and
// leaves the refresh token valid until it expires or is revoked.
type TokenService struct {
	userRepo    domain.UserRepository
	revocations domain.RevocationRepository
	cfg         *config.JWTConfig

	now func() time.Time
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type Claims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

func NewTokenService(userRepo domain.UserRepository, revocations domain.RevocationRepository, cfg *config.JWTConfig) *TokenService {
	return &TokenService{
		userRepo:    userRepo,
		revocations: revocations,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Issue mints an access/refresh pair for the user.
func (s *TokenService) Issue(user *domain.User) (*TokenPair, error) {
	access, err := s.sign(user.ID, kindAccess, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user.ID, kindRefresh, s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// VerifyAccess authenticates a bearer access token and returns the subject
// id. Expired tokens fail with ErrTokenExpired so clients know to refresh;
// every other defect is ErrTokenInvalid.
func (s *TokenService) VerifyAccess(token string) (uuid.UUID, error) {
	claims, err := s.parse(token, kindAccess)
	if err != nil {
		return uuid.Nil, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	if s.cfg.ReverifySubject {
		user, err := s.userRepo.GetByID(userID)
		if err != nil {
			return uuid.Nil, err
		}
		if user == nil || !user.IsActive {
			return uuid.Nil, ErrTokenInvalid
		}
	}
	return userID, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token must verify, be of the refresh kind, be unexpired, not be in
// the revocation set, and belong to a user that still exists and is active.
func (s *TokenService) Refresh(refreshToken string) (string, error) {
	claims, err := s.parse(refreshToken, kindRefresh)
	if err != nil {
		return "", err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return "", ErrTokenInvalid
	}
	jti, err := uuid.Parse(claims.ID)
	if err != nil {
		return "", ErrTokenInvalid
	}

	revoked, err := s.revocations.IsRevoked(jti)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", ErrTokenRevoked
	}
	cutoff, err := s.revocations.UserCutoff(userID)
	if err != nil {
		return "", err
	}
	if !cutoff.IsZero() && claims.IssuedAt != nil && !claims.IssuedAt.Time.After(cutoff) {
		return "", ErrTokenRevoked
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", err
	}
	if user == nil || !user.IsActive {
		return "", ErrTokenInvalid
	}

	return s.sign(userID, kindAccess, s.cfg.AccessTTL)
}

// Revoke records a refresh token's jti in the revocation set. Only signature
// and kind are validated; revoking an expired or already-revoked token is
// not an error.
func (s *TokenService) Revoke(refreshToken string) error {
	claims, err := s.parseUnchecked(refreshToken, kindRefresh)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ErrTokenInvalid
	}
	jti, err := uuid.Parse(claims.ID)
	if err != nil {
		return ErrTokenInvalid
	}

	rec := &domain.RevokedToken{
		JTI:       jti,
		UserID:    userID,
		RevokedAt: s.now().UTC(),
	}
	if claims.ExpiresAt != nil {
		rec.ExpiresAt = claims.ExpiresAt.Time
	}
	return s.revocations.Revoke(rec)
}

func (s *TokenService) sign(userID uuid.UUID, kind string, ttl time.Duration) (string, error) {
	now := s.now().UTC()
	claims := &Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

func (s *TokenService) parse(token, kind string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, s.keyFunc, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Kind != kind {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// parseUnchecked validates signature and kind but not expiry, for revocation.
func (s *TokenService) parseUnchecked(token, kind string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, s.keyFunc, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, ErrTokenInvalid
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	if claims.Kind != kind {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (s *TokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method != jwt.SigningMethodHS256 {
		return nil, ErrTokenInvalid
	}
	return []byte(s.cfg.Secret), nil
}
