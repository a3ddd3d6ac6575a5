package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Demonism0/blog-api/config"
	"github.com/Demonism0/blog-api/internal/model"
	"github.com/Demonism0/blog-api/internal/repository"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/google/uuid"
	"github.com/lib/pq"

	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const foreignKeyViolation = "23503"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type postgresRepository struct {
	db *sql.DB
	q  querier
}

func New(conf config.Postgres, logger *slog.Logger) (*postgresRepository, error) {
	url := fmt.Sprintf(
		"postgresql://%v:%v@%v:%v/%v?sslmode=disable", conf.User, conf.Pass, conf.Host, conf.Port, conf.DB)

	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), conf.Timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}

	if err := applyMigrations(db, conf, logger); err != nil {
		db.Close()
		return nil, err
	}

	return &postgresRepository{db: db, q: db}, nil
}

func applyMigrations(db *sql.DB, conf config.Postgres, logger *slog.Logger) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("postgres.WithInstance: %w", err)
	}
	migrations := fmt.Sprintf("file://%v", conf.Migrations)
	m, err := migrate.NewWithDatabaseInstance(migrations, conf.DB, driver)
	if err != nil {
		return fmt.Errorf("migrate.NewWithDatabaseInstance: %w", err)
	}

	logger.Info("applying migrations", "source", migrations)
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("nothing to migrate")
			return nil
		}
		return fmt.Errorf("error when migrating: %w", err)
	}
	logger.Info("migrated successfully")
	return nil
}

func (pr *postgresRepository) Close() error {
	return pr.db.Close()
}

// WithinTx runs fn against a repository bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (pr *postgresRepository) WithinTx(ctx context.Context, fn func(repo repository.Repository) error) error {
	tx, err := pr.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTx: %w", err)
	}

	if err := fn(&postgresRepository{db: pr.db, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("tx.Rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit: %w", err)
	}
	return nil
}

func (pr *postgresRepository) CreatePost(ctx context.Context, post *model.Post) error {
	_, err := pr.q.ExecContext(ctx,
		"INSERT INTO blog.posts (id, title, body, public, created_at) VALUES ($1, $2, $3, $4, $5)",
		post.ID, post.Title, post.Body, post.Public, post.CreatedAt)
	return err
}

func (pr *postgresRepository) GetPost(ctx context.Context, id string) (*model.Post, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	row := pr.q.QueryRowContext(ctx,
		"SELECT id, title, body, public, created_at FROM blog.posts WHERE id = $1", id)
	post, err := scanPost(row)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (pr *postgresRepository) GetPosts(ctx context.Context, filter repository.PostFilter) ([]model.Post, error) {
	rows, err := pr.q.QueryContext(ctx,
		"SELECT id, title, body, public, created_at FROM blog.posts WHERE ($1 = FALSE OR public) ORDER BY created_at DESC",
		filter.PublicOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (pr *postgresRepository) UpdatePost(ctx context.Context, post *model.Post) error {
	if !validID(post.ID) {
		return repository.ErrNotFound
	}
	res, err := pr.q.ExecContext(ctx,
		"UPDATE blog.posts SET title = $2, body = $3, public = $4 WHERE id = $1",
		post.ID, post.Title, post.Body, post.Public)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (pr *postgresRepository) DeletePost(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := pr.q.ExecContext(ctx, "DELETE FROM blog.posts WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (pr *postgresRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	if !validID(comment.Parent) {
		return repository.ErrNotFound
	}
	_, err := pr.q.ExecContext(ctx,
		"INSERT INTO blog.comments (id, post_id, body, author, created_at) VALUES ($1, $2, $3, $4, $5)",
		comment.ID, comment.Parent, comment.Body, comment.Author, comment.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return repository.ErrNotFound
	}
	return err
}

func (pr *postgresRepository) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	row := pr.q.QueryRowContext(ctx,
		"SELECT id, post_id, body, author, created_at FROM blog.comments WHERE id = $1", id)
	comment, err := scanComment(row)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (pr *postgresRepository) GetComments(ctx context.Context, postID string) ([]model.Comment, error) {
	comments := []model.Comment{}
	if !validID(postID) {
		return comments, nil
	}
	rows, err := pr.q.QueryContext(ctx,
		"SELECT id, post_id, body, author, created_at FROM blog.comments WHERE post_id = $1 ORDER BY created_at DESC",
		postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (pr *postgresRepository) DeleteComment(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := pr.q.ExecContext(ctx, "DELETE FROM blog.comments WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (pr *postgresRepository) DeleteComments(ctx context.Context, postID string) (int, error) {
	if !validID(postID) {
		return 0, nil
	}
	res, err := pr.q.ExecContext(ctx, "DELETE FROM blog.comments WHERE post_id = $1", postID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (pr *postgresRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	user := &model.User{}
	err := pr.q.QueryRowContext(ctx,
		"SELECT id, username, password_hash FROM blog.users WHERE username = $1", username).Scan(
		&user.ID, &user.Username, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (pr *postgresRepository) SaveUser(ctx context.Context, user *model.User) error {
	return pr.q.QueryRowContext(ctx, `
INSERT INTO blog.users (id, username, password_hash) VALUES ($1, $2, $3)
ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
RETURNING id`, user.ID, user.Username, user.PasswordHash).Scan(&user.ID)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (model.Post, error) {
	post := model.Post{}
	err := s.Scan(&post.ID, &post.Title, &post.Body, &post.Public, &post.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Post{}, repository.ErrNotFound
	}
	post.CreatedAt = post.CreatedAt.UTC()
	return post, err
}

func scanComment(s scanner) (model.Comment, error) {
	comment := model.Comment{}
	err := s.Scan(&comment.ID, &comment.Parent, &comment.Body, &comment.Author, &comment.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Comment{}, repository.ErrNotFound
	}
	comment.CreatedAt = comment.CreatedAt.UTC()
	return comment, err
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// validID filters out identifiers that postgres would reject as uuid input.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
