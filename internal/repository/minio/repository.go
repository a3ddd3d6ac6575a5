// Package minio stores every record as a JSON object in a single bucket:
//
//	posts/<id>.json
//	comments/<post id>/<id>.json
//	users/<escaped username>.json
//
// Single-object writes are atomic; nothing spanning several objects is.
package minio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Demonism0/blog-api/config"
	"github.com/Demonism0/blog-api/internal/model"
	"github.com/Demonism0/blog-api/internal/repository"
)

const (
	postsPrefix    = "posts/"
	commentsPrefix = "comments/"
	usersPrefix    = "users/"

	contentType = "application/json"
)

type minioRepository struct {
	store  objectStore
	logger *slog.Logger
}

// userDocument keeps the password hash, which model.User hides from JSON.
type userDocument struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

func New(conf config.MinIO, logger *slog.Logger) (*minioRepository, error) {
	client, err := minio.New(fmt.Sprintf("%s:%s", conf.Host, conf.Port), &minio.Options{
		Creds:  credentials.NewStaticV4(conf.User, conf.Pass, ""),
		Secure: conf.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio.New: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, conf.Bucket)
	if err != nil {
		return nil, fmt.Errorf("client.BucketExists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, conf.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("client.MakeBucket: %w", err)
		}
		logger.Info("created bucket", "bucket", conf.Bucket)
	}

	return newRepository(&bucket{cli: client, name: conf.Bucket, logger: logger}, logger), nil
}

func newRepository(store objectStore, logger *slog.Logger) *minioRepository {
	return &minioRepository{store: store, logger: logger}
}

func (mr *minioRepository) CreatePost(ctx context.Context, post *model.Post) error {
	return mr.put(ctx, postKey(post.ID), post)
}

func (mr *minioRepository) GetPost(ctx context.Context, id string) (*model.Post, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	post := &model.Post{}
	if err := mr.get(ctx, postKey(id), post); err != nil {
		return nil, err
	}
	return post, nil
}

func (mr *minioRepository) GetPosts(ctx context.Context, filter repository.PostFilter) ([]model.Post, error) {
	keys, err := mr.list(ctx, postsPrefix)
	if err != nil {
		return nil, err
	}

	posts := make([]model.Post, 0, len(keys))
	for _, key := range keys {
		post := model.Post{}
		if err := mr.get(ctx, key, &post); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// removed between list and get
				continue
			}
			return nil, err
		}
		if filter.Match(post) {
			posts = append(posts, post)
		}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (mr *minioRepository) UpdatePost(ctx context.Context, post *model.Post) error {
	existing, err := mr.GetPost(ctx, post.ID)
	if err != nil {
		return err
	}
	existing.Title = post.Title
	existing.Body = post.Body
	existing.Public = post.Public
	return mr.put(ctx, postKey(post.ID), existing)
}

func (mr *minioRepository) DeletePost(ctx context.Context, id string) error {
	if _, err := mr.GetPost(ctx, id); err != nil {
		return err
	}
	return mr.remove(ctx, postKey(id))
}

// CreateComment checks the parent before and after writing. A cascading
// delete sweeps comments after removing the post, so either the sweep sees
// this comment or the second check sees the post gone and takes it back.
func (mr *minioRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	if _, err := mr.GetPost(ctx, comment.Parent); err != nil {
		return err
	}
	key := commentKey(comment.Parent, comment.ID)
	if err := mr.put(ctx, key, comment); err != nil {
		return err
	}

	if _, err := mr.GetPost(ctx, comment.Parent); err != nil {
		if rmErr := mr.remove(ctx, key); rmErr != nil {
			return errors.Join(err, rmErr)
		}
		mr.logger.Warn("withdrew comment on deleted post", "post_id", comment.Parent, "comment_id", comment.ID)
		return err
	}
	return nil
}

func (mr *minioRepository) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	key, err := mr.findCommentKey(ctx, id)
	if err != nil {
		return nil, err
	}
	comment := &model.Comment{}
	if err := mr.get(ctx, key, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (mr *minioRepository) GetComments(ctx context.Context, postID string) ([]model.Comment, error) {
	comments := []model.Comment{}
	if !validID(postID) {
		return comments, nil
	}
	keys, err := mr.list(ctx, commentsPrefix+postID+"/")
	if err != nil {
		return nil, err
	}

	for _, key := range keys {
		comment := model.Comment{}
		if err := mr.get(ctx, key, &comment); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		comments = append(comments, comment)
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

func (mr *minioRepository) DeleteComment(ctx context.Context, id string) error {
	key, err := mr.findCommentKey(ctx, id)
	if err != nil {
		return err
	}
	return mr.remove(ctx, key)
}

func (mr *minioRepository) DeleteComments(ctx context.Context, postID string) (int, error) {
	if !validID(postID) {
		return 0, nil
	}
	keys, err := mr.list(ctx, commentsPrefix+postID+"/")
	if err != nil {
		return 0, err
	}

	n := 0
	for _, key := range keys {
		if err := mr.remove(ctx, key); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (mr *minioRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	doc := userDocument{}
	if err := mr.get(ctx, userKey(username), &doc); err != nil {
		return nil, err
	}
	return &model.User{ID: doc.ID, Username: doc.Username, PasswordHash: doc.PasswordHash}, nil
}

func (mr *minioRepository) SaveUser(ctx context.Context, user *model.User) error {
	existing, err := mr.GetUserByUsername(ctx, user.Username)
	switch {
	case err == nil:
		user.ID = existing.ID
	case !errors.Is(err, repository.ErrNotFound):
		return err
	}
	return mr.put(ctx, userKey(user.Username), userDocument{
		ID:           user.ID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
	})
}

func (mr *minioRepository) findCommentKey(ctx context.Context, id string) (string, error) {
	if !validID(id) {
		return "", repository.ErrNotFound
	}
	keys, err := mr.list(ctx, commentsPrefix)
	if err != nil {
		return "", err
	}
	suffix := "/" + id + ".json"
	for _, key := range keys {
		if strings.HasSuffix(key, suffix) {
			return key, nil
		}
	}
	return "", repository.ErrNotFound
}

func (mr *minioRepository) put(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}
	return mr.store.put(ctx, key, body)
}

func (mr *minioRepository) get(ctx context.Context, key string, v any) error {
	body, err := mr.store.get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("json.Unmarshal %s: %w", key, err)
	}
	return nil
}

func (mr *minioRepository) remove(ctx context.Context, key string) error {
	return mr.store.remove(ctx, key)
}

func (mr *minioRepository) list(ctx context.Context, prefix string) ([]string, error) {
	return mr.store.list(ctx, prefix)
}

func postKey(id string) string {
	return postsPrefix + id + ".json"
}

func commentKey(postID, id string) string {
	return commentsPrefix + postID + "/" + id + ".json"
}

func userKey(username string) string {
	return usersPrefix + url.PathEscape(username) + ".json"
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
