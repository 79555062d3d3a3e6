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

type PostRepository struct {
	db *pgxpool.Pool
}

func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

const postColumns = `id, title, content, author_id, is_published, created_at, updated_at`

func scanPost(row pgx.Row) (*domain.Post, error) {
	post := &domain.Post{}
	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.AuthorID,
		&post.IsPublished,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *PostRepository) Create(post *domain.Post) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO posts (id, title, content, author_id, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	_, err := r.db.Exec(ctx, query,
		post.ID,
		post.Title,
		post.Content,
		post.AuthorID,
		post.IsPublished,
		post.CreatedAt,
		post.UpdatedAt,
	)
	return err
}

func (r *PostRepository) GetByID(id uuid.UUID) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	return scanPost(r.db.QueryRow(ctx, query, id))
}

func (r *PostRepository) List(limit, offset int) ([]*domain.Post, int, error) {
	return r.list(
		`SELECT COUNT(*) FROM posts`,
		`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		nil, limit, offset,
	)
}

func (r *PostRepository) ListByAuthor(authorID uuid.UUID, limit, offset int) ([]*domain.Post, int, error) {
	return r.list(
		`SELECT COUNT(*) FROM posts WHERE author_id = $1`,
		`SELECT `+postColumns+` FROM posts WHERE author_id = $3 ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		[]interface{}{authorID}, limit, offset,
	)
}

func (r *PostRepository) ListPublished(limit, offset int) ([]*domain.Post, int, error) {
	return r.list(
		`SELECT COUNT(*) FROM posts WHERE is_published = true`,
		`SELECT `+postColumns+` FROM posts WHERE is_published = true ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		nil, limit, offset,
	)
}

func (r *PostRepository) list(countQuery, query string, extra []interface{}, limit, offset int) ([]*domain.Post, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, extra...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args := append([]interface{}{limit, offset}, extra...)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		post := &domain.Post{}
		if err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Content,
			&post.AuthorID,
			&post.IsPublished,
			&post.CreatedAt,
			&post.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		posts = append(posts, post)
	}
	return posts, total, rows.Err()
}

func (r *PostRepository) Update(post *domain.Post) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		UPDATE posts SET title = $2, content = $3, is_published = $4, updated_at = $5
		WHERE id = $1
	`

	post.UpdatedAt = time.Now()
	_, err := r.db.Exec(ctx, query, post.ID, post.Title, post.Content, post.IsPublished, post.UpdatedAt)
	return err
}

func (r *PostRepository) Delete(id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
