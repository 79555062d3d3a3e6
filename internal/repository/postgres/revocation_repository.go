package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/postly/backend/internal/domain"
)

// RevocationRepository persists the refresh-token revocation set. Lookups
// are primary-key reads, so checking a token never scans historical volume.
type RevocationRepository struct {
	db *pgxpool.Pool
}

func NewRevocationRepository(db *pgxpool.Pool) *RevocationRepository {
	return &RevocationRepository{db: db}
}

func (r *RevocationRepository) Revoke(rec *domain.RevokedToken) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// ON CONFLICT DO NOTHING keeps revocation idempotent under concurrent
	// logouts of the same token.
	query := `
		INSERT INTO revoked_tokens (jti, user_id, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (jti) DO NOTHING
	`

	if rec.RevokedAt.IsZero() {
		rec.RevokedAt = time.Now()
	}

	_, err := r.db.Exec(ctx, query, rec.JTI, rec.UserID, rec.ExpiresAt, rec.RevokedAt)
	return err
}

func (r *RevocationRepository) IsRevoked(jti uuid.UUID) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `SELECT 1 FROM revoked_tokens WHERE jti = $1`

	var one int
	err := r.db.QueryRow(ctx, query, jti).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *RevocationRepository) SetUserCutoff(userID uuid.UUID, cutoff time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO token_cutoffs (user_id, cutoff)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET cutoff = GREATEST(token_cutoffs.cutoff, EXCLUDED.cutoff)
	`

	_, err := r.db.Exec(ctx, query, userID, cutoff)
	return err
}

func (r *RevocationRepository) UserCutoff(userID uuid.UUID) (time.Time, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `SELECT cutoff FROM token_cutoffs WHERE user_id = $1`

	var cutoff time.Time
	err := r.db.QueryRow(ctx, query, userID).Scan(&cutoff)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return cutoff, nil
}

func (r *RevocationRepository) DeleteExpired() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `DELETE FROM revoked_tokens WHERE expires_at < NOW()`
	_, err := r.db.Exec(ctx, query)
	return err
}
