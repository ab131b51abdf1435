package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/kafka-files/pkg/kafkafile"
	"github.com/tendant/kafka-files/pkg/kafkafile/repo/memory"
	repopg "github.com/tendant/kafka-files/pkg/kafkafile/repo/postgres"
	reposqlite "github.com/tendant/kafka-files/pkg/kafkafile/repo/sqlite"
	fsstorage "github.com/tendant/kafka-files/pkg/kafkafile/storage/fs"
	memorystorage "github.com/tendant/kafka-files/pkg/kafkafile/storage/memory"
	s3storage "github.com/tendant/kafka-files/pkg/kafkafile/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:            "8080",
		Environment:     "development",
		DatabaseType:    "memory",
		StorageType:     "memory",
		AutoMigrate:     true,
		MaxPreviewBytes: kafkafile.DefaultMaxPreviewBytes,
		S3: S3Config{
			Region: "us-east-1",
		},
	}
}

// ServerConfig represents server configuration for the kafka file registry
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseType string // "memory", "postgres", "sqlite"
	DatabaseURL  string // postgres connection string, or the sqlite file path
	AutoMigrate  bool   // apply postgres migrations on startup

	// Storage configuration
	StorageType    string // "memory", "fs", "s3"
	StorageDir     string // base directory for "fs"
	StorageBaseURL string // public download prefix
	S3             S3Config

	MaxPreviewBytes int64

	// ClusterNames holds display names of Kafka clusters keyed by id
	ClusterNames map[int64]string
}

// S3Config holds the settings of the s3 blob backend
type S3Config struct {
	Bucket                 string
	Region                 string
	Endpoint               string
	AccessKeyID            string
	SecretAccessKey        string
	UsePathStyle           bool
	CreateBucketIfNotExist bool
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case "memory":
	case "postgres", "sqlite":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required when using %s", c.DatabaseType)
		}
	default:
		return errors.New("database_type must be 'memory', 'postgres' or 'sqlite'")
	}

	switch c.StorageType {
	case "memory":
	case "fs":
		if c.StorageDir == "" {
			return errors.New("storage directory is required when using fs")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("s3 bucket is required when using s3")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}

	if c.MaxPreviewBytes <= 0 {
		return errors.New("max preview bytes must be positive")
	}

	return nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// BuildRegistry creates a Registry from the server configuration. The returned
// closer releases the database connections.
func (c *ServerConfig) BuildRegistry(ctx context.Context, logger *slog.Logger) (kafkafile.Registry, io.Closer, error) {
	repo, closer, err := c.buildRepository(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build repository: %w", err)
	}

	store, err := c.buildBlobStore(ctx)
	if err != nil {
		closer.Close()
		return nil, nil, fmt.Errorf("failed to build storage backend %s: %w", c.StorageType, err)
	}

	options := []kafkafile.Option{
		kafkafile.WithRepository(repo),
		kafkafile.WithBlobStore(store),
		kafkafile.WithMaxPreviewBytes(c.MaxPreviewBytes),
	}
	if logger != nil {
		options = append(options, kafkafile.WithLogger(logger))
	}

	registry, err := kafkafile.New(options...)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}

	return registry, closer, nil
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository(ctx context.Context) (kafkafile.Repository, io.Closer, error) {
	noop := closerFunc(func() error { return nil })

	switch c.DatabaseType {
	case "memory":
		return memory.New(), noop, nil

	case "postgres":
		if c.AutoMigrate {
			if err := repopg.Migrate(c.DatabaseURL); err != nil {
				return nil, nil, err
			}
		}
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("database ping failed: %w", err)
		}
		return repopg.NewWithPool(pool), closerFunc(func() error {
			pool.Close()
			return nil
		}), nil

	case "sqlite":
		repo, err := reposqlite.Open(c.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// buildBlobStore creates a BlobStore based on the configuration
func (c *ServerConfig) buildBlobStore(ctx context.Context) (kafkafile.BlobStore, error) {
	switch c.StorageType {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   c.StorageDir,
			URLPrefix: c.StorageBaseURL,
		})

	case "s3":
		return s3storage.New(ctx, s3storage.Config{
			Region:                 c.S3.Region,
			Bucket:                 c.S3.Bucket,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			BaseURL:                c.StorageBaseURL,
			CreateBucketIfNotExist: c.S3.CreateBucketIfNotExist,
		})

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}
}
