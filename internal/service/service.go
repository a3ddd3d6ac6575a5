package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Demonism0/blog-api/internal/auth"
	"github.com/Demonism0/blog-api/internal/model"
	"github.com/Demonism0/blog-api/internal/policy"
	"github.com/Demonism0/blog-api/internal/repository"
	"github.com/Demonism0/blog-api/pkg/logger"
)

const defaultWriteTimeout = 10 * time.Second

// Thread is a post together with its comments, newest first.
type Thread struct {
	Post     model.Post      `json:"post"`
	Comments []model.Comment `json:"commentList"`
}

type Service struct {
	repo     repository.Repository
	verifier *auth.Verifier
	logger   *slog.Logger

	now          func() time.Time
	newID        func() string
	writeTimeout time.Duration
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(svc *Service) { svc.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// WithWriteTimeout bounds every mutating operation. Mutations are detached
// from request cancellation, so this is the only limit they observe.
func WithWriteTimeout(d time.Duration) Option {
	return func(svc *Service) { svc.writeTimeout = d }
}

func New(repo repository.Repository, verifier *auth.Verifier, opts ...Option) *Service {
	svc := &Service{
		repo:         repo,
		verifier:     verifier,
		logger:       logger.Discard(),
		now:          time.Now,
		newID:        uuid.NewString,
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (svc *Service) ListPosts(ctx context.Context, who auth.Result) (policy.Listing, error) {
	posts, err := svc.repo.GetPosts(ctx, policy.PostFilter(who))
	if err != nil {
		return policy.Listing{}, fail("list posts", err)
	}
	return policy.FilterPosts(posts, who), nil
}

// GetPost is not subject to the visibility policy.
func (svc *Service) GetPost(ctx context.Context, id string) (*Thread, error) {
	var (
		post     *model.Post
		comments []model.Comment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		post, err = svc.repo.GetPost(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = svc.repo.GetComments(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fail("get post", err)
	}

	return &Thread{Post: *post, Comments: comments}, nil
}

// CreateComment is open to every caller. The parent is checked before the
// comment is written, so a missing post never gains a comment.
func (svc *Service) CreateComment(ctx context.Context, postID string, in CommentInput) (*Thread, error) {
	comment, err := in.comment()
	if err != nil {
		return nil, err
	}

	ctx, cancel := svc.detach(ctx)
	defer cancel()

	post, err := svc.repo.GetPost(ctx, postID)
	if err != nil {
		return nil, fail("create comment", err)
	}

	comment.ID = svc.newID()
	comment.Parent = post.ID
	comment.CreatedAt = svc.timestamp()
	if err := svc.repo.CreateComment(ctx, &comment); err != nil {
		return nil, fail("create comment", err)
	}
	svc.logger.Info("comment created", "post_id", post.ID, "comment_id", comment.ID)

	comments, err := svc.repo.GetComments(ctx, post.ID)
	if err != nil {
		return nil, fail("create comment", err)
	}
	return &Thread{Post: *post, Comments: comments}, nil
}

// Login returns a signed credential. An unknown username yields ErrNotFound
// and a wrong password ErrForbidden.
func (svc *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := svc.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", fail("login", err)
	}
	if !auth.CheckPassword(strings.TrimSpace(password), user.PasswordHash) {
		svc.logger.Warn("login rejected", "username", user.Username)
		return "", fmt.Errorf("login: %w", ErrForbidden)
	}

	token, err := svc.verifier.Issue(*user)
	if err != nil {
		return "", fmt.Errorf("login: issue credential: %w", err)
	}
	svc.logger.Info("login succeeded", "username", user.Username)
	return token, nil
}

// SeedUser stores username with a hash of password, replacing any previous
// password of the same user.
func (svc *Service) SeedUser(ctx context.Context, username, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("seed user: hash password: %w", err)
	}
	user := &model.User{ID: svc.newID(), Username: username, PasswordHash: hash}
	if err := svc.repo.SaveUser(ctx, user); err != nil {
		return fail("seed user", err)
	}
	return nil
}

func (svc *Service) CreatePost(ctx context.Context, who auth.Result, in PostInput) (*model.Post, error) {
	if !policy.CanMutate(who) {
		return nil, fmt.Errorf("create post: %w", ErrForbidden)
	}
	post, err := in.post()
	if err != nil {
		return nil, err
	}

	ctx, cancel := svc.detach(ctx)
	defer cancel()

	post.ID = svc.newID()
	post.CreatedAt = svc.timestamp()
	if err := svc.repo.CreatePost(ctx, &post); err != nil {
		return nil, fail("create post", err)
	}
	svc.logger.Info("post created", "post_id", post.ID, "public", post.Public)
	return &post, nil
}

// UpdatePost replaces title, body and visibility. The id and creation time of
// the stored post are kept.
func (svc *Service) UpdatePost(ctx context.Context, who auth.Result, id string, in PostInput) (*Thread, error) {
	if !policy.CanMutate(who) {
		return nil, fmt.Errorf("update post: %w", ErrForbidden)
	}
	fields, err := in.post()
	if err != nil {
		return nil, err
	}

	ctx, cancel := svc.detach(ctx)
	defer cancel()

	existing, err := svc.repo.GetPost(ctx, id)
	if err != nil {
		return nil, fail("update post", err)
	}

	updated := model.Post{
		ID:        existing.ID,
		Title:     fields.Title,
		Body:      fields.Body,
		Public:    fields.Public,
		CreatedAt: existing.CreatedAt,
	}
	if err := svc.repo.UpdatePost(ctx, &updated); err != nil {
		return nil, fail("update post", err)
	}
	svc.logger.Info("post updated", "post_id", updated.ID, "public", updated.Public)

	comments, err := svc.repo.GetComments(ctx, updated.ID)
	if err != nil {
		return nil, fail("update post", err)
	}
	return &Thread{Post: updated, Comments: comments}, nil
}

// DeletePost removes the post and every comment attached to it and returns
// the post as it was before deletion.
//
// Backends implementing repository.Transactor apply both deletions in one
// transaction. Others go through purgePost, which restores the comments if
// the post cannot be deleted.
func (svc *Service) DeletePost(ctx context.Context, who auth.Result, id string) (*model.Post, error) {
	if !policy.CanMutate(who) {
		return nil, fmt.Errorf("delete post: %w", ErrForbidden)
	}

	ctx, cancel := svc.detach(ctx)
	defer cancel()

	post, err := svc.repo.GetPost(ctx, id)
	if err != nil {
		return nil, fail("delete post", err)
	}

	if tx, ok := svc.repo.(repository.Transactor); ok {
		err = tx.WithinTx(ctx, func(repo repository.Repository) error {
			if _, err := repo.DeleteComments(ctx, post.ID); err != nil {
				return err
			}
			return repo.DeletePost(ctx, post.ID)
		})
	} else {
		err = svc.purgePost(ctx, post.ID)
	}
	if err != nil {
		svc.logger.Error("post delete failed", "post_id", post.ID, "error", err)
		return nil, fail("delete post", err)
	}

	svc.logger.Info("post deleted", "post_id", post.ID)
	return post, nil
}

// purgePost deletes comments first and the post second, then sweeps the
// comments once more to catch any that were created in between.
func (svc *Service) purgePost(ctx context.Context, postID string) error {
	snapshot, err := svc.repo.GetComments(ctx, postID)
	if err != nil {
		return err
	}

	if _, err := svc.repo.DeleteComments(ctx, postID); err != nil {
		return svc.restoreComments(ctx, postID, snapshot, err)
	}
	if err := svc.repo.DeletePost(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// lost a race against another delete of the same post
			return err
		}
		return svc.restoreComments(ctx, postID, snapshot, err)
	}

	n, err := svc.repo.DeleteComments(ctx, postID)
	if err != nil {
		return fmt.Errorf("%w: post %s deleted but its comments were not: %w", ErrInconsistent, postID, err)
	}
	if n > 0 {
		svc.logger.Warn("removed comments created during post delete", "post_id", postID, "count", n)
	}
	return nil
}

// restoreComments puts back the comments of snapshot that are missing and
// returns cause. If any cannot be restored the result is ErrInconsistent.
func (svc *Service) restoreComments(ctx context.Context, postID string, snapshot []model.Comment, cause error) error {
	for i := range snapshot {
		comment := snapshot[i]
		_, err := svc.repo.GetComment(ctx, comment.ID)
		if err == nil {
			continue
		}
		if errors.Is(err, repository.ErrNotFound) {
			err = svc.repo.CreateComment(ctx, &comment)
		}
		if err != nil {
			return fmt.Errorf("%w: post %s: restoring comment %s after %v: %w",
				ErrInconsistent, postID, comment.ID, cause, err)
		}
	}
	svc.logger.Warn("post delete undone", "post_id", postID, "restored", len(snapshot), "cause", cause)
	return cause
}

func (svc *Service) DeleteComment(ctx context.Context, who auth.Result, postID, commentID string) (*model.Comment, error) {
	if !policy.CanMutate(who) {
		return nil, fmt.Errorf("delete comment: %w", ErrForbidden)
	}

	ctx, cancel := svc.detach(ctx)
	defer cancel()

	comment, err := svc.repo.GetComment(ctx, commentID)
	if err != nil {
		return nil, fail("delete comment", err)
	}
	if comment.Parent != postID {
		return nil, fmt.Errorf("delete comment: comment %s is not on post %s: %w", commentID, postID, ErrNotFound)
	}

	if err := svc.repo.DeleteComment(ctx, comment.ID); err != nil {
		return nil, fail("delete comment", err)
	}
	svc.logger.Info("comment deleted", "post_id", postID, "comment_id", comment.ID)
	return comment, nil
}

// detach keeps a mutation running after the client goes away.
func (svc *Service) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), svc.writeTimeout)
}

// timestamp truncates to milliseconds so every backend round-trips it exactly.
func (svc *Service) timestamp() time.Time {
	return svc.now().UTC().Truncate(time.Millisecond)
}
