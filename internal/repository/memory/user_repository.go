// Package memory holds mutex-guarded in-process implementations of the
// repository contracts. They back the test suites and single-node setups
// that run without Postgres.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/postly/backend/internal/domain"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*domain.User
	byEmail map[string]uuid.UUID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[uuid.UUID]*domain.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (r *UserRepository) Create(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	if _, exists := r.byEmail[email]; exists {
		return domain.ErrConflict
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	r.byID[user.ID] = &stored
	r.byEmail[email] = user.ID
	return nil
}

func (r *UserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *UserRepository) GetByEmail(email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	copied := *r.byID[id]
	return &copied, nil
}

func (r *UserRepository) Update(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[user.ID]
	if !ok {
		return nil
	}
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.PhoneNumber = user.PhoneNumber
	stored.IsActive = user.IsActive
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *UserRepository) UpdatePassword(id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, ok := r.byID[id]; ok {
		stored.PasswordHash = passwordHash
		stored.UpdatedAt = time.Now()
	}
	return nil
}

func (r *UserRepository) UpdateLastLogin(id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, ok := r.byID[id]; ok {
		stored.LastLoginAt = &at
	}
	return nil
}
