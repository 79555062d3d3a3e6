package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/postly/backend/internal/domain"
)

type PostRepository struct {
	mu    sync.RWMutex
	posts map[uuid.UUID]*domain.Post
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[uuid.UUID]*domain.Post)}
}

func (r *PostRepository) Create(post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	stored := *post
	r.posts[post.ID] = &stored
	return nil
}

func (r *PostRepository) GetByID(id uuid.UUID) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	copied := *post
	return &copied, nil
}

func (r *PostRepository) List(limit, offset int) ([]*domain.Post, int, error) {
	return r.list(limit, offset, func(*domain.Post) bool { return true })
}

func (r *PostRepository) ListByAuthor(authorID uuid.UUID, limit, offset int) ([]*domain.Post, int, error) {
	return r.list(limit, offset, func(p *domain.Post) bool { return p.AuthorID == authorID })
}

func (r *PostRepository) ListPublished(limit, offset int) ([]*domain.Post, int, error) {
	return r.list(limit, offset, func(p *domain.Post) bool { return p.IsPublished })
}

func (r *PostRepository) Update(post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.posts[post.ID]
	if !ok {
		return nil
	}
	stored.Title = post.Title
	stored.Content = post.Content
	stored.IsPublished = post.IsPublished
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *PostRepository) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.posts, id)
	return nil
}

func (r *PostRepository) list(limit, offset int, keep func(*domain.Post) bool) ([]*domain.Post, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*domain.Post
	for _, post := range r.posts {
		if keep(post) {
			copied := *post
			all = append(all, &copied)
		}
	}
	// Newest first, matching the Postgres ordering.
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if limit <= 0 {
		limit = 20
	}
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}
