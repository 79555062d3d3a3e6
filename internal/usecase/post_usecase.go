package usecase

import (
	"github.com/google/uuid"

	"github.com/postly/backend/internal/authz"
	"github.com/postly/backend/internal/domain"
)

// PostUsecase applies the ownership rule table to every mutation before it
// touches the repository: a Deny short-circuits the operation entirely.
type PostUsecase struct {
	postRepo domain.PostRepository
}

func NewPostUsecase(postRepo domain.PostRepository) *PostUsecase {
	return &PostUsecase{postRepo: postRepo}
}

type CreatePostInput struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsPublished bool   `json:"is_published"`
}

func (u *PostUsecase) Create(subject authz.Subject, input CreatePostInput) (*domain.Post, error) {
	if authz.Decide(subject, authz.ActionWrite, subject.ID) == authz.Deny {
		return nil, ErrForbidden
	}
	if input.Title == "" {
		return nil, domain.NewValidationError("title", "this field is required")
	}

	post := &domain.Post{
		Title:       input.Title,
		Content:     input.Content,
		AuthorID:    subject.ID,
		IsPublished: input.IsPublished,
	}
	if err := u.postRepo.Create(post); err != nil {
		return nil, err
	}
	return post, nil
}

func (u *PostUsecase) Get(id uuid.UUID) (*domain.Post, error) {
	post, err := u.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (u *PostUsecase) List(limit, offset int) ([]*domain.Post, int, error) {
	return u.postRepo.List(limit, offset)
}

func (u *PostUsecase) ListPublished(limit, offset int) ([]*domain.Post, int, error) {
	return u.postRepo.ListPublished(limit, offset)
}

func (u *PostUsecase) ListByAuthor(subject authz.Subject, limit, offset int) ([]*domain.Post, int, error) {
	return u.postRepo.ListByAuthor(subject.ID, limit, offset)
}

type UpdatePostInput struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	IsPublished *bool   `json:"is_published"`
}

func (u *PostUsecase) Update(subject authz.Subject, id uuid.UUID, input UpdatePostInput) (*domain.Post, error) {
	post, err := u.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if authz.Decide(subject, authz.ActionWrite, post.AuthorID) == authz.Deny {
		return nil, ErrForbidden
	}

	if input.Title != nil {
		post.Title = *input.Title
	}
	if input.Content != nil {
		post.Content = *input.Content
	}
	if input.IsPublished != nil {
		post.IsPublished = *input.IsPublished
	}

	if err := u.postRepo.Update(post); err != nil {
		return nil, err
	}
	return post, nil
}

func (u *PostUsecase) Delete(subject authz.Subject, id uuid.UUID) error {
	post, err := u.postRepo.GetByID(id)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if authz.Decide(subject, authz.ActionWrite, post.AuthorID) == authz.Deny {
		return ErrForbidden
	}
	return u.postRepo.Delete(id)
}
