package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/postly/backend/internal/domain"
)

// RevocationRepository is a mutex-guarded revocation set. Revoking the same
// jti twice is a no-op; lookups are map reads and stay O(1) regardless of
// how many tokens were ever issued.
type RevocationRepository struct {
	mu      sync.RWMutex
	revoked map[uuid.UUID]*domain.RevokedToken
	cutoffs map[uuid.UUID]time.Time
}

func NewRevocationRepository() *RevocationRepository {
	return &RevocationRepository{
		revoked: make(map[uuid.UUID]*domain.RevokedToken),
		cutoffs: make(map[uuid.UUID]time.Time),
	}
}

func (r *RevocationRepository) Revoke(rec *domain.RevokedToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.revoked[rec.JTI]; exists {
		return nil
	}
	stored := *rec
	r.revoked[rec.JTI] = &stored
	return nil
}

func (r *RevocationRepository) IsRevoked(jti uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.revoked[jti]
	return ok, nil
}

func (r *RevocationRepository) SetUserCutoff(userID uuid.UUID, cutoff time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.cutoffs[userID]; !ok || cutoff.After(existing) {
		r.cutoffs[userID] = cutoff
	}
	return nil
}

func (r *RevocationRepository) UserCutoff(userID uuid.UUID) (time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.cutoffs[userID], nil
}

func (r *RevocationRepository) DeleteExpired() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for jti, rec := range r.revoked {
		if rec.ExpiresAt.Before(now) {
			delete(r.revoked, jti)
		}
	}
	return nil
}
