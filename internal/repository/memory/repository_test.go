package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Demonism0/blog-api/internal/model"
	"github.com/Demonism0/blog-api/internal/repository"
)

var _ repository.Repository = (*memoryRepository)(nil)

var base = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestPostsOrderedNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := New()

	for i, public := range []bool{true, false, true} {
		post := &model.Post{ID: fmt.Sprint("p", i), Public: public, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.CreatePost(ctx, post); err != nil {
			t.Fatalf("create post: %v", err)
		}
	}

	all, err := repo.GetPosts(ctx, repository.PostFilter{})
	if err != nil {
		t.Fatalf("get posts: %v", err)
	}
	if len(all) != 3 || all[0].ID != "p2" || all[2].ID != "p0" {
		t.Fatalf("unexpected order %+v", all)
	}

	public, err := repo.GetPosts(ctx, repository.PostFilter{PublicOnly: true})
	if err != nil {
		t.Fatalf("get posts: %v", err)
	}
	if len(public) != 2 {
		t.Fatalf("expected 2 public posts, got %d", len(public))
	}
}

func TestEqualTimestampsUseInsertOrder(t *testing.T) {
	ctx := context.Background()
	repo := New()
	if err := repo.CreatePost(ctx, &model.Post{ID: "p", CreatedAt: base}); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"c1", "c2", "c3"} {
		if err := repo.CreateComment(ctx, &model.Comment{ID: id, Parent: "p", CreatedAt: base}); err != nil {
			t.Fatal(err)
		}
	}

	comments, err := repo.GetComments(ctx, "p")
	if err != nil {
		t.Fatal(err)
	}
	if comments[0].ID != "c3" || comments[2].ID != "c1" {
		t.Fatalf("unexpected order %+v", comments)
	}
}

func TestCreateCommentRequiresParent(t *testing.T) {
	ctx := context.Background()
	repo := New()

	err := repo.CreateComment(ctx, &model.Comment{ID: "c", Parent: "missing"})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetComment(ctx, "c"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("comment persisted without parent: %v", err)
	}
}

func TestUpdatePostKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	repo := New()
	if err := repo.CreatePost(ctx, &model.Post{ID: "p", Title: "old", Public: true, CreatedAt: base}); err != nil {
		t.Fatal(err)
	}

	err := repo.UpdatePost(ctx, &model.Post{ID: "p", Title: "new", Public: false, CreatedAt: base.Add(time.Hour)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.GetPost(ctx, "p")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "new" || got.Public || !got.CreatedAt.Equal(base) {
		t.Fatalf("unexpected post %+v", got)
	}

	if err := repo.UpdatePost(ctx, &model.Post{ID: "missing"}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeletes(t *testing.T) {
	ctx := context.Background()
	repo := New()
	if err := repo.CreatePost(ctx, &model.Post{ID: "p", CreatedAt: base}); err != nil {
		t.Fatal(err)
	}
	if err := repo.CreatePost(ctx, &model.Post{ID: "q", CreatedAt: base}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := repo.CreateComment(ctx, &model.Comment{ID: fmt.Sprint("p", i), Parent: "p"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := repo.CreateComment(ctx, &model.Comment{ID: "q0", Parent: "q"}); err != nil {
		t.Fatal(err)
	}

	n, err := repo.DeleteComments(ctx, "p")
	if err != nil || n != 3 {
		t.Fatalf("delete comments: n=%d err=%v", n, err)
	}
	if left, _ := repo.GetComments(ctx, "q"); len(left) != 1 {
		t.Fatalf("other post lost comments: %+v", left)
	}

	if err := repo.DeletePost(ctx, "p"); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	if err := repo.DeletePost(ctx, "p"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteComment(ctx, "q0"); err != nil {
		t.Fatalf("delete comment: %v", err)
	}
	if err := repo.DeleteComment(ctx, "q0"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestSaveUserUpserts(t *testing.T) {
	ctx := context.Background()
	repo := New()

	first := &model.User{ID: "u1", Username: "admin", PasswordHash: "h1"}
	if err := repo.SaveUser(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := &model.User{ID: "u2", Username: "admin", PasswordHash: "h2"}
	if err := repo.SaveUser(ctx, second); err != nil {
		t.Fatal(err)
	}
	if second.ID != "u1" {
		t.Fatalf("expected id to be kept, got %s", second.ID)
	}

	got, err := repo.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatal(err)
	}
	if got.PasswordHash != "h2" {
		t.Fatalf("password not replaced: %+v", got)
	}
	if _, err := repo.GetUserByUsername(ctx, "Admin"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("usernames must match exactly, got %v", err)
	}
}

func TestConcurrentCommentsAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := New()
	if err := repo.CreatePost(ctx, &model.Post{ID: "p", CreatedAt: base}); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.CreateComment(ctx, &model.Comment{ID: fmt.Sprint("c", i), Parent: "p"})
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				t.Errorf("create comment: %v", err)
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := repo.DeletePost(ctx, "p"); err != nil {
			t.Errorf("delete post: %v", err)
		}
		if _, err := repo.DeleteComments(ctx, "p"); err != nil {
			t.Errorf("delete comments: %v", err)
		}
	}()
	wg.Wait()

	// once the post is gone no new comment can land, so one more purge
	// leaves nothing behind
	if _, err := repo.DeleteComments(ctx, "p"); err != nil {
		t.Fatal(err)
	}
	if left, _ := repo.GetComments(ctx, "p"); len(left) != 0 {
		t.Fatalf("expected no comments, got %d", len(left))
	}
}
