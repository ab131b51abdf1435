package kafkafile

import "context"

// Registry is the entry point for managing Kafka files. Every mutating call
// returns a Status; read calls degrade to empty results on store failures.
type Registry interface {
	// Save uploads a new file, or replaces an existing one when req.Modify is set
	Save(ctx context.Context, req *FileRequest, operator string) Status

	// Upload registers a new file: metadata first, then the blob
	Upload(ctx context.Context, req *FileRequest, operator string) Status

	// Replace changes the name, content and description of an existing file
	Replace(ctx context.Context, req *FileRequest, operator string) Status

	// Delete removes the metadata row. The blob is left in place.
	Delete(ctx context.Context, id int64) Status

	List(ctx context.Context) []*FileRecord
	GetByID(ctx context.Context, id int64) *FileRecord
	GetByName(ctx context.Context, fileName string) *FileRecord

	// DownloadForPreview returns the text content of a config file
	DownloadForPreview(ctx context.Context, id int64) (string, Status)

	// DownloadBaseURL returns the blob store download prefix
	DownloadBaseURL() string

	// StorageKind names the configured blob backend
	StorageKind() StorageKind
}
