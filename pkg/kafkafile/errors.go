package kafkafile

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrFileNotFound indicates no metadata row matched the id or name
	ErrFileNotFound = errors.New("kafka file not found")

	// ErrDuplicateFileName indicates the metadata store rejected a row because
	// another row already uses the file name
	ErrDuplicateFileName = errors.New("kafka file name already exists")

	// ErrObjectNotFound indicates the blob store has nothing under the key
	ErrObjectNotFound = errors.New("object not found")

	// ErrChecksumMismatch indicates the uploaded bytes do not hash to the
	// declared md5
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// RecordError represents a failed metadata store operation
type RecordError struct {
	ID   int64
	Name string
	Op   string
	Err  error
}

func (e *RecordError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("record operation %s failed for file %d (%s): %v", e.Op, e.ID, e.Name, e.Err)
	}
	return fmt.Sprintf("record operation %s failed for file %d: %v", e.Op, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// StorageError represents a failed blob store operation
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
