package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Storage
	Postgres
	MinIO
	HTTPServer
	Auth
	Log
}

type Storage struct {
	Backend      string        `env:"STORAGE_BACKEND" env-default:"postgres"`
	WriteTimeout time.Duration `env:"STORAGE_WRITE_TIMEOUT" env-default:"10s"`
}

type Postgres struct {
	User       string        `env:"POSTGRES_USER" env-default:"postgres"`
	Pass       string        `env:"POSTGRES_PASSWORD" env-default:"postgres"`
	Host       string        `env:"POSTGRES_HOST" env-default:"localhost"`
	Port       string        `env:"POSTGRES_PORT" env-default:"5432"`
	DB         string        `env:"POSTGRES_DB" env-default:"blog"`
	Timeout    time.Duration `env:"POSTGRES_TIMEOUT" env-default:"5s"`
	Migrations string        `env:"POSTGRES_MIGRATIONS" env-default:"./migrations"`
}

type MinIO struct {
	User   string `env:"MINIO_USER" env-default:"minioadmin"`
	Pass   string `env:"MINIO_PASSWORD" env-default:"minioadmin"`
	Host   string `env:"MINIO_HOST" env-default:"localhost"`
	Port   string `env:"MINIO_PORT" env-default:"9000"`
	Bucket string `env:"MINIO_BUCKET" env-default:"blog"`
	Secure bool   `env:"MINIO_SECURE" env-default:"false"`
}

type HTTPServer struct {
	BindAddress      string        `env:"BIND_ADDRESS" env-default:"localhost"`
	BindPort         string        `env:"BIND_PORT" env-default:"8000"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
	ReadTimeout      time.Duration `env:"READ_TIMEOUT" env-default:"5s"`
	WriteTimeout     time.Duration `env:"WRITE_TIMEOUT" env-default:"15s"`
	CORSAllowOrigins []string      `env:"CORS_ALLOW_ORIGINS" env-default:"*" env-separator:","`
}

type Auth struct {
	SigningKey    string        `env:"AUTH_SIGNING_KEY" env-required:"true"`
	TokenTTL      time.Duration `env:"AUTH_TOKEN_TTL" env-default:"0s"`
	AdminUsername string        `env:"ADMIN_USERNAME"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
}

var backends = map[string]bool{"postgres": true, "minio": true, "memory": true}

// New reads the configuration from the environment. Values in env, if that
// file exists, override the process environment.
func New(env string) (*Config, error) {
	conf := &Config{}

	if env != "" {
		if _, err := os.Stat(env); err == nil {
			if err := godotenv.Overload(env); err != nil {
				return nil, fmt.Errorf("godotenv.Overload: %v", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("os.Stat: %v", err)
		}
	}

	if err := cleanenv.ReadEnv(conf); err != nil {
		return nil, fmt.Errorf("cleanenv.Readenv: %v", err)
	}

	if conf.SigningKey == "" {
		return nil, errors.New("AUTH_SIGNING_KEY must not be empty")
	}
	if !backends[conf.Storage.Backend] {
		return nil, fmt.Errorf("unknown storage backend %q", conf.Storage.Backend)
	}
	if (conf.AdminUsername == "") != (conf.AdminPassword == "") {
		return nil, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}

	return conf, nil
}
