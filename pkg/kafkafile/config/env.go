package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvConfig is the environment surface of the server.
type EnvConfig struct {
	Port            string `env:"PORT" env-default:"8080"`
	Environment     string `env:"ENVIRONMENT" env-default:"development"`
	DatabaseURL     string `env:"DATABASE_URL" env-default:"memory"`
	StorageURL      string `env:"STORAGE_URL" env-default:"memory://"`
	StorageBaseURL  string `env:"STORAGE_BASE_URL"`
	AutoMigrate     bool   `env:"AUTO_MIGRATE" env-default:"true"`
	MaxPreviewBytes int64  `env:"MAX_PREVIEW_BYTES" env-default:"1048576"`

	// ClusterNames maps cluster ids to display names, e.g. "1:orders-prod,2:payments"
	ClusterNames map[string]string `env:"CLUSTER_NAMES" env-separator:","`

	AWSRegion          string `env:"AWS_REGION" env-default:"us-east-1"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSS3Endpoint      string `env:"AWS_S3_ENDPOINT"`
	AWSS3UsePathStyle  bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
	AWSS3CreateBucket  bool   `env:"AWS_S3_CREATE_BUCKET" env-default:"false"`
}

// WithEnv applies configuration read from the environment.
//
//	PORT              - Server port (default: "8080")
//	ENVIRONMENT       - Runtime environment (default: "development")
//	DATABASE_URL      - "memory", "postgres://...", "postgresql://..." or "sqlite:///path/to/db"
//	STORAGE_URL       - "memory://", "file:///path/to/data" or "s3://bucket?region=..&endpoint=..&path_style=true"
//	STORAGE_BASE_URL  - Public download prefix
//	AUTO_MIGRATE      - Apply postgres migrations on startup (default: true)
//	CLUSTER_NAMES     - Cluster display names, "id:name,id:name"
//	AWS_*             - S3 credentials and endpoint, overridden by STORAGE_URL query parameters
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env EnvConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return FromEnvConfig(env)(c)
	}
}

// FromEnvConfig applies an already populated EnvConfig.
func FromEnvConfig(env EnvConfig) Option {
	return func(c *ServerConfig) error {
		if env.Port != "" {
			c.Port = env.Port
		}
		if env.Environment != "" {
			c.Environment = env.Environment
		}
		c.AutoMigrate = env.AutoMigrate
		c.StorageBaseURL = env.StorageBaseURL
		if env.MaxPreviewBytes > 0 {
			c.MaxPreviewBytes = env.MaxPreviewBytes
		}

		for rawID, name := range env.ClusterNames {
			id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid cluster id %q in CLUSTER_NAMES: %w", rawID, err)
			}
			if c.ClusterNames == nil {
				c.ClusterNames = make(map[int64]string)
			}
			c.ClusterNames[id] = strings.TrimSpace(name)
		}

		if env.AWSRegion != "" {
			c.S3.Region = env.AWSRegion
		}
		c.S3.AccessKeyID = env.AWSAccessKeyID
		c.S3.SecretAccessKey = env.AWSSecretAccessKey
		c.S3.Endpoint = env.AWSS3Endpoint
		c.S3.UsePathStyle = env.AWSS3UsePathStyle
		c.S3.CreateBucketIfNotExist = env.AWSS3CreateBucket

		if err := applyDatabaseURL(env.DatabaseURL, c); err != nil {
			return err
		}
		return applyStorageURL(env.StorageURL, c)
	}
}

// applyDatabaseURL detects the metadata store from the URL scheme
func applyDatabaseURL(dbURL string, c *ServerConfig) error {
	switch {
	case dbURL == "" || dbURL == "memory" || dbURL == "memory://":
		c.DatabaseType = "memory"
		c.DatabaseURL = ""
	case strings.HasPrefix(dbURL, "postgresql://"), strings.HasPrefix(dbURL, "postgres://"):
		c.DatabaseType = "postgres"
		c.DatabaseURL = dbURL
	case strings.HasPrefix(dbURL, "sqlite://"):
		path := strings.TrimPrefix(dbURL, "sqlite://")
		if path == "" {
			return fmt.Errorf("sqlite path cannot be empty in DATABASE_URL")
		}
		c.DatabaseType = "sqlite"
		c.DatabaseURL = path
	default:
		return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory', 'postgresql://...' or 'sqlite://...')", dbURL)
	}
	return nil
}

// applyStorageURL detects the blob backend from the URL scheme
func applyStorageURL(storageURL string, c *ServerConfig) error {
	switch {
	case storageURL == "" || storageURL == "memory" || storageURL == "memory://":
		c.StorageType = "memory"
		return nil
	case strings.HasPrefix(storageURL, "file://"):
		path := strings.TrimPrefix(storageURL, "file://")
		if path == "" {
			return fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
		}
		c.StorageType = "fs"
		c.StorageDir = path
		return nil
	case strings.HasPrefix(storageURL, "s3://"):
		return applyS3URL(storageURL, c)
	}
	return fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", storageURL)
}

// applyS3URL configures S3 storage from URL
// Format: s3://bucket?region=us-east-1&endpoint=http://localhost:9000&path_style=true
func applyS3URL(raw string, c *ServerConfig) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid STORAGE_URL: %w", err)
	}
	if u.Host == "" {
		return fmt.Errorf("S3 bucket name cannot be empty in STORAGE_URL")
	}

	c.StorageType = "s3"
	c.S3.Bucket = u.Host

	q := u.Query()
	if v := q.Get("region"); v != "" {
		c.S3.Region = v
	}
	if v := q.Get("endpoint"); v != "" {
		c.S3.Endpoint = v
	}
	if v := q.Get("path_style"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean for path_style: %w", err)
		}
		c.S3.UsePathStyle = b
	}
	return nil
}
