package domain

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	AuthorID    uuid.UUID `json:"author"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PostRepository interface {
	Create(post *Post) error
	GetByID(id uuid.UUID) (*Post, error)
	List(limit, offset int) ([]*Post, int, error)
	ListByAuthor(authorID uuid.UUID, limit, offset int) ([]*Post, int, error)
	ListPublished(limit, offset int) ([]*Post, int, error)
	Update(post *Post) error
	Delete(id uuid.UUID) error
}
