package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Demonism0/blog-api/config"
	"github.com/Demonism0/blog-api/internal/auth"
	v1 "github.com/Demonism0/blog-api/internal/handlers/http/v1"
	"github.com/Demonism0/blog-api/internal/httpserver"
	"github.com/Demonism0/blog-api/internal/repository"
	"github.com/Demonism0/blog-api/internal/repository/memory"
	"github.com/Demonism0/blog-api/internal/repository/minio"
	"github.com/Demonism0/blog-api/internal/repository/postgres"
	"github.com/Demonism0/blog-api/internal/service"
)

func Run(ctx context.Context, conf config.Config, logger *slog.Logger) error {
	repo, closeRepo, err := openRepository(conf, logger)
	if err != nil {
		return fmt.Errorf("error when setting up repository: %v", err)
	}
	defer closeRepo()

	verifier := auth.NewVerifier([]byte(conf.SigningKey), conf.TokenTTL)

	service := service.New(repo, verifier,
		service.WithLogger(logger.With("component", "service")),
		service.WithWriteTimeout(conf.Storage.WriteTimeout),
	)

	if conf.AdminUsername != "" {
		if err := service.SeedUser(ctx, conf.AdminUsername, conf.AdminPassword); err != nil {
			return fmt.Errorf("error when seeding admin user: %v", err)
		}
		logger.Info("admin user ready", "username", conf.AdminUsername)
	}

	handler, err := v1.New(service, verifier, conf.CORSAllowOrigins, logger.With("component", "http"))
	if err != nil {
		return fmt.Errorf("error when setting up handler: %v", err)
	}

	httpserver := httpserver.New(conf.HTTPServer, handler, logger)

	return httpserver.Run(ctx)
}

func openRepository(conf config.Config, logger *slog.Logger) (repository.Repository, func(), error) {
	logger = logger.With("component", "repository", "backend", conf.Storage.Backend)

	switch conf.Storage.Backend {
	case "postgres":
		repo, err := postgres.New(conf.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if err := repo.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}, nil
	case "minio":
		repo, err := minio.New(conf.MinIO, logger)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil
	case "memory":
		logger.Warn("using in-memory storage, data is lost on restart")
		return memory.New(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", conf.Storage.Backend)
	}
}
