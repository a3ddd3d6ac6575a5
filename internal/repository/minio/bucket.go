package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/Demonism0/blog-api/internal/repository"
)

// objectStore is the subset of bucket operations the repository needs.
// Missing keys are reported as repository.ErrNotFound.
type objectStore interface {
	put(ctx context.Context, key string, body []byte) error
	get(ctx context.Context, key string) ([]byte, error)
	remove(ctx context.Context, key string) error
	list(ctx context.Context, prefix string) ([]string, error)
}

type bucket struct {
	cli    *minio.Client
	name   string
	logger *slog.Logger
}

func (b *bucket) put(ctx context.Context, key string, body []byte) error {
	_, err := b.cli.PutObject(ctx, b.name, key, bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		b.logger.Error("failed to put object", "key", key, "error", err)
		return fmt.Errorf("client.PutObject %s: %w", key, err)
	}
	return nil
}

func (b *bucket) get(ctx context.Context, key string) ([]byte, error) {
	obj, err := b.cli.GetObject(ctx, b.name, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapError(key, err)
	}
	defer obj.Close()

	body, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapError(key, err)
	}
	return body, nil
}

func (b *bucket) remove(ctx context.Context, key string) error {
	if err := b.cli.RemoveObject(ctx, b.name, key, minio.RemoveObjectOptions{}); err != nil {
		b.logger.Error("failed to remove object", "key", key, "error", err)
		return fmt.Errorf("client.RemoveObject %s: %w", key, err)
	}
	return nil
}

func (b *bucket) list(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	for info := range b.cli.ListObjects(ctx, b.name, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			return nil, fmt.Errorf("client.ListObjects %s: %w", prefix, info.Err)
		}
		if strings.HasSuffix(info.Key, ".json") {
			keys = append(keys, info.Key)
		}
	}
	return keys, nil
}

// mapError turns a missing object into repository.ErrNotFound. GetObject is
// lazy, so the error usually shows up on the first read.
func mapError(key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return repository.ErrNotFound
	}
	return fmt.Errorf("client.GetObject %s: %w", key, err)
}
