package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tendant/kafka-files/pkg/kafkafile"
)

// Backend is an in-memory implementation of the kafkafile.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string][]byte),
		baseURL: "memory://",
	}
}

// Kind returns kafkafile.StorageKindMemory
func (b *Backend) Kind() kafkafile.StorageKind {
	return kafkafile.StorageKindMemory
}

// DownloadBaseURL returns a placeholder prefix; memory objects are not
// reachable over the network
func (b *Backend) DownloadBaseURL() string {
	return b.baseURL
}

// Upload stores the content once its md5 has been checked against fileMd5
func (b *Backend) Upload(ctx context.Context, fileName, fileMd5 string, reader io.Reader) error {
	cr := kafkafile.NewChecksumReader(reader)
	data, err := io.ReadAll(cr)
	if err != nil {
		return err
	}
	if err := cr.Verify(fileMd5); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[kafkafile.ObjectKey(fileName, fileMd5)] = data
	return nil
}

// Download downloads content directly
func (b *Backend) Download(ctx context.Context, fileName, fileMd5 string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	key := kafkafile.ObjectKey(fileName, fileMd5)
	data, exists := b.objects[key]
	if !exists {
		return nil, fmt.Errorf("%w: %s", kafkafile.ErrObjectNotFound, key)
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Exists reports whether an object is stored under (fileName, fileMd5)
func (b *Backend) Exists(fileName, fileMd5 string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, exists := b.objects[kafkafile.ObjectKey(fileName, fileMd5)]
	return exists
}

// Len returns the number of stored objects
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}
