package repository

import (
	"context"
	"errors"

	"github.com/Demonism0/blog-api/internal/model"
)

var ErrNotFound = errors.New("not found")

// PostFilter narrows GetPosts. The zero value selects every post.
type PostFilter struct {
	PublicOnly bool
}

// Match reports whether post passes the filter.
func (f PostFilter) Match(post model.Post) bool {
	return !f.PublicOnly || post.Public
}

type Repository interface {
	PostRepository
	CommentRepository
	UserRepository
}

// PostRepository lists are ordered by creation time, newest first.
type PostRepository interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id string) (*model.Post, error)
	GetPosts(ctx context.Context, filter PostFilter) ([]model.Post, error)
	UpdatePost(ctx context.Context, post *model.Post) error
	DeletePost(ctx context.Context, id string) error
}

type CommentRepository interface {
	// CreateComment returns ErrNotFound when the parent post is missing and
	// the backend is able to tell at insert time.
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, id string) (*model.Comment, error)
	GetComments(ctx context.Context, postID string) ([]model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	DeleteComments(ctx context.Context, postID string) (int, error)
}

type UserRepository interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	// SaveUser inserts the user or replaces the record with the same username.
	SaveUser(ctx context.Context, user *model.User) error
}

// Transactor is implemented by backends that can apply several writes as a
// single all-or-nothing unit. fn receives a Repository bound to the unit.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repo Repository) error) error
}
