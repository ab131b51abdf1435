package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tendant/kafka-files/pkg/kafkafile"
)

// Backend is a filesystem implementation of the kafkafile.BlobStore interface.
// Objects live at <BaseDir>/<md5>/<file name>.
type Backend struct {
	baseDir   string
	urlPrefix string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir   string // Base directory for storing files
	URLPrefix string // Optional URL prefix for download links
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{
		baseDir:   config.BaseDir,
		urlPrefix: strings.TrimRight(config.URLPrefix, "/"),
	}, nil
}

// Kind returns kafkafile.StorageKindFS
func (b *Backend) Kind() kafkafile.StorageKind {
	return kafkafile.StorageKindFS
}

// DownloadBaseURL returns the configured URL prefix with a trailing slash,
// or a file:// URL of the base directory when no prefix is set
func (b *Backend) DownloadBaseURL() string {
	if b.urlPrefix == "" {
		return "file://" + filepath.ToSlash(b.baseDir) + "/"
	}
	return b.urlPrefix + "/"
}

// Upload writes the content to a temp file, checks its md5, then renames it
// into place. Readers never observe a partial object.
func (b *Backend) Upload(ctx context.Context, fileName, fileMd5 string, reader io.Reader) error {
	filePath := b.path(fileName, fileMd5)

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmpPath := filepath.Join(dir, "."+uuid.NewString()+".tmp")
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	cr := kafkafile.NewChecksumReader(reader)
	if _, err := io.Copy(file, cr); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := cr.Verify(fileMd5); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// Download opens the stored object
func (b *Backend) Download(ctx context.Context, fileName, fileMd5 string) (io.ReadCloser, error) {
	file, err := os.Open(b.path(fileName, fileMd5))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", kafkafile.ErrObjectNotFound, kafkafile.ObjectKey(fileName, fileMd5))
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

func (b *Backend) path(fileName, fileMd5 string) string {
	return filepath.Join(b.baseDir, filepath.FromSlash(kafkafile.ObjectKey(fileName, fileMd5)))
}
