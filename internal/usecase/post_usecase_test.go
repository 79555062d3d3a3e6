package usecase

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postly/backend/internal/authz"
	"github.com/postly/backend/internal/domain"
	"github.com/postly/backend/internal/repository/memory"
)

func newTestPosts(t *testing.T) (*PostUsecase, *memory.PostRepository) {
	t.Helper()
	repo := memory.NewPostRepository()
	return NewPostUsecase(repo), repo
}

func TestPostCreateRequiresAuthentication(t *testing.T) {
	posts, _ := newTestPosts(t)

	_, err := posts.Create(authz.Anonymous(), CreatePostInput{Title: "Hello"})
	assert.ErrorIs(t, err, ErrForbidden)

	post, err := posts.Create(authz.Authenticated(uuid.New()), CreatePostInput{Title: "Hello", Content: "World"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)
}

func TestPostCreateValidation(t *testing.T) {
	posts, _ := newTestPosts(t)

	_, err := posts.Create(authz.Authenticated(uuid.New()), CreatePostInput{})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "title", vErr.Field)
}

func TestPostUpdateOwnership(t *testing.T) {
	posts, repo := newTestPosts(t)

	owner := uuid.New()
	stranger := uuid.New()
	post, err := posts.Create(authz.Authenticated(owner), CreatePostInput{Title: "Mine"})
	require.NoError(t, err)

	newTitle := "Hijacked"
	_, err = posts.Update(authz.Authenticated(stranger), post.ID, UpdatePostInput{Title: &newTitle})
	assert.ErrorIs(t, err, ErrForbidden)

	// A denied mutation leaves the resource untouched.
	stored, err := repo.GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", stored.Title)

	ownTitle := "Still mine"
	updated, err := posts.Update(authz.Authenticated(owner), post.ID, UpdatePostInput{Title: &ownTitle})
	require.NoError(t, err)
	assert.Equal(t, "Still mine", updated.Title)
}

func TestPostUpdatePartial(t *testing.T) {
	posts, _ := newTestPosts(t)

	owner := uuid.New()
	post, err := posts.Create(authz.Authenticated(owner), CreatePostInput{Title: "Draft", Content: "Body"})
	require.NoError(t, err)

	published := true
	updated, err := posts.Update(authz.Authenticated(owner), post.ID, UpdatePostInput{IsPublished: &published})
	require.NoError(t, err)

	assert.True(t, updated.IsPublished)
	assert.Equal(t, "Draft", updated.Title)
	assert.Equal(t, "Body", updated.Content)
}

func TestPostDeleteOwnership(t *testing.T) {
	posts, repo := newTestPosts(t)

	owner := uuid.New()
	post, err := posts.Create(authz.Authenticated(owner), CreatePostInput{Title: "Mine"})
	require.NoError(t, err)

	assert.ErrorIs(t, posts.Delete(authz.Anonymous(), post.ID), ErrForbidden)
	assert.ErrorIs(t, posts.Delete(authz.Authenticated(uuid.New()), post.ID), ErrForbidden)

	stored, err := repo.GetByID(post.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	require.NoError(t, posts.Delete(authz.Authenticated(owner), post.ID))
	gone, err := posts.Get(post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.Nil(t, gone)
}

func TestPostListsAreOpenAndFiltered(t *testing.T) {
	posts, _ := newTestPosts(t)

	alice := uuid.New()
	bob := uuid.New()
	_, err := posts.Create(authz.Authenticated(alice), CreatePostInput{Title: "a1", IsPublished: true})
	require.NoError(t, err)
	_, err = posts.Create(authz.Authenticated(alice), CreatePostInput{Title: "a2"})
	require.NoError(t, err)
	_, err = posts.Create(authz.Authenticated(bob), CreatePostInput{Title: "b1", IsPublished: true})
	require.NoError(t, err)

	all, total, err := posts.List(10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)

	published, total, err := posts.ListPublished(10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, p := range published {
		assert.True(t, p.IsPublished)
	}

	mine, total, err := posts.ListByAuthor(authz.Authenticated(alice), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, p := range mine {
		assert.Equal(t, alice, p.AuthorID)
	}
}

func TestProductOwnership(t *testing.T) {
	repo := memory.NewProductRepository()
	products := NewProductUsecase(repo)

	owner := uuid.New()
	product, err := products.Create(authz.Authenticated(owner), CreateProductInput{Name: "Widget", Price: "9.99", Cost: "4.50"})
	require.NoError(t, err)
	assert.Equal(t, owner, product.CreatedBy)

	price := "19.99"
	_, err = products.Update(authz.Authenticated(uuid.New()), product.ID, UpdateProductInput{Price: &price})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := products.Update(authz.Authenticated(owner), product.ID, UpdateProductInput{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "19.99", updated.Price)

	assert.ErrorIs(t, products.Delete(authz.Anonymous(), product.ID), ErrForbidden)
	require.NoError(t, products.Delete(authz.Authenticated(owner), product.ID))
}
