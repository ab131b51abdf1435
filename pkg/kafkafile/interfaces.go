package kafkafile

import (
	"context"
	"io"
)

// Repository is the metadata store for file records. It owns id assignment
// and the uniqueness of FileName.
type Repository interface {
	// Insert stores a new record and sets record.ID. A name clash returns an
	// error matching ErrDuplicateFileName.
	Insert(ctx context.Context, record *FileRecord) error

	// UpdateByID overwrites the mutable fields (name, md5, description,
	// operator) of the row with record.ID and returns the rows affected.
	UpdateByID(ctx context.Context, record *FileRecord) (int64, error)

	// DeleteByID removes the row and returns the rows affected.
	DeleteByID(ctx context.Context, id int64) (int64, error)

	// GetByID returns ErrFileNotFound when no row matches.
	GetByID(ctx context.Context, id int64) (*FileRecord, error)

	// GetByName returns ErrFileNotFound when no row matches.
	GetByName(ctx context.Context, fileName string) (*FileRecord, error)

	// List returns every record ordered by id.
	List(ctx context.Context) ([]*FileRecord, error)
}

// BlobStore is a content-addressed store for file bytes keyed by
// (file name, md5). Implementations must not acknowledge an upload whose
// bytes do not hash to fileMd5.
type BlobStore interface {
	// Upload stores the bytes read from reader under ObjectKey(fileName, fileMd5)
	Upload(ctx context.Context, fileName, fileMd5 string, reader io.Reader) error

	// Download opens the bytes stored under ObjectKey(fileName, fileMd5)
	Download(ctx context.Context, fileName, fileMd5 string) (io.ReadCloser, error)

	// DownloadBaseURL returns the prefix used to build absolute download links
	DownloadBaseURL() string

	// Kind names the backend implementation
	Kind() StorageKind
}
