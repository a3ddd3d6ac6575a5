package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Demonism0/blog-api/internal/model"
	"github.com/Demonism0/blog-api/internal/repository"
)

var _ repository.Transactor = (*postgresRepository)(nil)

type fakeResult struct {
	affected int64
	err      error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, errors.New("unsupported") }
func (r fakeResult) RowsAffected() (int64, error) { return r.affected, r.err }

// fakeQuerier answers every Exec with result/err and counts calls.
type fakeQuerier struct {
	result sql.Result
	err    error
	calls  int
}

func (q *fakeQuerier) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	q.calls++
	return q.result, q.err
}

func (q *fakeQuerier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	q.calls++
	return nil, errors.New("unexpected query")
}

func (q *fakeQuerier) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	q.calls++
	return nil
}

func newTestRepo(q *fakeQuerier) *postgresRepository {
	return &postgresRepository{q: q}
}

func TestCreateCommentForeignKeyViolation(t *testing.T) {
	q := &fakeQuerier{err: &pq.Error{Code: foreignKeyViolation}}
	repo := newTestRepo(q)

	err := repo.CreateComment(context.Background(), &model.Comment{ID: uuid.NewString(), Parent: uuid.NewString()})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	q.err = &pq.Error{Code: "23505"}
	err = repo.CreateComment(context.Background(), &model.Comment{ID: uuid.NewString(), Parent: uuid.NewString()})
	if err == nil || errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("unique violation must not read as not found: %v", err)
	}
}

func TestDeleteNothingAffected(t *testing.T) {
	q := &fakeQuerier{result: fakeResult{affected: 0}}
	repo := newTestRepo(q)
	ctx := context.Background()

	if err := repo.DeletePost(ctx, uuid.NewString()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("delete post: expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteComment(ctx, uuid.NewString()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("delete comment: expected ErrNotFound, got %v", err)
	}
	if err := repo.UpdatePost(ctx, &model.Post{ID: uuid.NewString()}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("update post: expected ErrNotFound, got %v", err)
	}

	q.result = fakeResult{affected: 1}
	if err := repo.DeletePost(ctx, uuid.NewString()); err != nil {
		t.Fatalf("delete post: %v", err)
	}
}

func TestDeleteCommentsCount(t *testing.T) {
	q := &fakeQuerier{result: fakeResult{affected: 4}}
	repo := newTestRepo(q)

	n, err := repo.DeleteComments(context.Background(), uuid.NewString())
	if err != nil || n != 4 {
		t.Fatalf("n=%d err=%v", n, err)
	}
}

func TestInvalidIDsSkipDatabase(t *testing.T) {
	q := &fakeQuerier{}
	repo := newTestRepo(q)
	ctx := context.Background()

	if _, err := repo.GetPost(ctx, "42"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("get post: %v", err)
	}
	if _, err := repo.GetComment(ctx, "42"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("get comment: %v", err)
	}
	if err := repo.DeletePost(ctx, "42"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("delete post: %v", err)
	}
	if err := repo.CreateComment(ctx, &model.Comment{ID: uuid.NewString(), Parent: "42"}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("create comment: %v", err)
	}
	if comments, err := repo.GetComments(ctx, "42"); err != nil || len(comments) != 0 {
		t.Fatalf("get comments: %v %v", comments, err)
	}
	if n, err := repo.DeleteComments(ctx, "42"); err != nil || n != 0 {
		t.Fatalf("delete comments: %d %v", n, err)
	}
	if q.calls != 0 {
		t.Fatalf("database called %d times", q.calls)
	}
}

type rowScanner struct{ err error }

func (s rowScanner) Scan(dest ...any) error { return s.err }

func TestScanNoRows(t *testing.T) {
	if _, err := scanPost(rowScanner{err: sql.ErrNoRows}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("scan post: %v", err)
	}
	if _, err := scanComment(rowScanner{err: sql.ErrNoRows}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("scan comment: %v", err)
	}
}

func TestExpectAffectedError(t *testing.T) {
	boom := errors.New("boom")
	if err := expectAffected(fakeResult{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestCommentsCascadeWithPost(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "000001_init.up.sql"))
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	fk := regexp.MustCompile(`post_id\s+UUID\s+NOT NULL\s+REFERENCES blog\.posts \(id\) ON DELETE CASCADE`)
	if !fk.Match(raw) {
		t.Fatal("comments.post_id must cascade on post delete")
	}
}
