package config

import (
	"fmt"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithDatabaseURL configures the metadata store from a URL.
// See applyDatabaseURL for the accepted forms.
func WithDatabaseURL(databaseURL string) Option {
	return func(c *ServerConfig) error {
		return applyDatabaseURL(databaseURL, c)
	}
}

// WithStorageURL configures the blob backend from a URL.
// See applyStorageURL for the accepted forms.
func WithStorageURL(storageURL string) Option {
	return func(c *ServerConfig) error {
		return applyStorageURL(storageURL, c)
	}
}

// WithStorageBaseURL sets the public download prefix
func WithStorageBaseURL(baseURL string) Option {
	return func(c *ServerConfig) error {
		c.StorageBaseURL = baseURL
		return nil
	}
}

// WithAutoMigrate toggles schema migrations on startup
func WithAutoMigrate(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.AutoMigrate = enabled
		return nil
	}
}

// WithMaxPreviewBytes caps the size of preview responses
func WithMaxPreviewBytes(n int64) Option {
	return func(c *ServerConfig) error {
		if n <= 0 {
			return fmt.Errorf("max preview bytes must be positive, got: %d", n)
		}
		c.MaxPreviewBytes = n
		return nil
	}
}
