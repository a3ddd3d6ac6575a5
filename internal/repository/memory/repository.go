// Package memory keeps posts, comments and users in process memory. It backs
// the "memory" storage backend and the unit tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Demonism0/blog-api/internal/model"
	"github.com/Demonism0/blog-api/internal/repository"
)

type memoryRepository struct {
	mu sync.RWMutex

	seq      uint64
	posts    map[string]record[model.Post]
	comments map[string]record[model.Comment]
	users    map[string]model.User
}

// record remembers insertion order so that equal timestamps still list newest first.
type record[T any] struct {
	seq uint64
	val T
}

func New() *memoryRepository {
	return &memoryRepository{
		posts:    make(map[string]record[model.Post]),
		comments: make(map[string]record[model.Comment]),
		users:    make(map[string]model.User),
	}
}

func (mr *memoryRepository) CreatePost(ctx context.Context, post *model.Post) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	mr.seq++
	mr.posts[post.ID] = record[model.Post]{seq: mr.seq, val: *post}
	return nil
}

func (mr *memoryRepository) GetPost(ctx context.Context, id string) (*model.Post, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	rec, ok := mr.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	post := rec.val
	return &post, nil
}

func (mr *memoryRepository) GetPosts(ctx context.Context, filter repository.PostFilter) ([]model.Post, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	recs := make([]record[model.Post], 0, len(mr.posts))
	for _, rec := range mr.posts {
		if filter.Match(rec.val) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if !a.val.CreatedAt.Equal(b.val.CreatedAt) {
			return a.val.CreatedAt.After(b.val.CreatedAt)
		}
		return a.seq > b.seq
	})

	posts := make([]model.Post, 0, len(recs))
	for _, rec := range recs {
		posts = append(posts, rec.val)
	}
	return posts, nil
}

func (mr *memoryRepository) UpdatePost(ctx context.Context, post *model.Post) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	rec, ok := mr.posts[post.ID]
	if !ok {
		return repository.ErrNotFound
	}
	rec.val.Title = post.Title
	rec.val.Body = post.Body
	rec.val.Public = post.Public
	mr.posts[post.ID] = rec
	return nil
}

func (mr *memoryRepository) DeletePost(ctx context.Context, id string) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	if _, ok := mr.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(mr.posts, id)
	return nil
}

func (mr *memoryRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	if _, ok := mr.posts[comment.Parent]; !ok {
		return repository.ErrNotFound
	}
	mr.seq++
	mr.comments[comment.ID] = record[model.Comment]{seq: mr.seq, val: *comment}
	return nil
}

func (mr *memoryRepository) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	rec, ok := mr.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	comment := rec.val
	return &comment, nil
}

func (mr *memoryRepository) GetComments(ctx context.Context, postID string) ([]model.Comment, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	recs := []record[model.Comment]{}
	for _, rec := range mr.comments {
		if rec.val.Parent == postID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if !a.val.CreatedAt.Equal(b.val.CreatedAt) {
			return a.val.CreatedAt.After(b.val.CreatedAt)
		}
		return a.seq > b.seq
	})

	comments := make([]model.Comment, 0, len(recs))
	for _, rec := range recs {
		comments = append(comments, rec.val)
	}
	return comments, nil
}

func (mr *memoryRepository) DeleteComment(ctx context.Context, id string) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	if _, ok := mr.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(mr.comments, id)
	return nil
}

func (mr *memoryRepository) DeleteComments(ctx context.Context, postID string) (int, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	n := 0
	for id, rec := range mr.comments {
		if rec.val.Parent == postID {
			delete(mr.comments, id)
			n++
		}
	}
	return n, nil
}

func (mr *memoryRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	user, ok := mr.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (mr *memoryRepository) SaveUser(ctx context.Context, user *model.User) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	key := user.Username
	if existing, ok := mr.users[key]; ok {
		user.ID = existing.ID
	}
	mr.users[key] = *user
	return nil
}
