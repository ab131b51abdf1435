package kafkafile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// DefaultMaxPreviewBytes caps how much of a config file a preview returns.
const DefaultMaxPreviewBytes int64 = 1 << 20

// registry implements the Registry interface
type registry struct {
	repository      Repository
	blobStore       BlobStore
	logger          *slog.Logger
	maxPreviewBytes int64
}

// Option represents a functional option for configuring the registry
type Option func(*registry)

// WithRepository sets the metadata store
func WithRepository(repo Repository) Option {
	return func(r *registry) {
		r.repository = repo
	}
}

// WithBlobStore sets the blob backend
func WithBlobStore(store BlobStore) Option {
	return func(r *registry) {
		r.blobStore = store
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *registry) {
		r.logger = logger
	}
}

// WithMaxPreviewBytes caps the size of preview content
func WithMaxPreviewBytes(n int64) Option {
	return func(r *registry) {
		r.maxPreviewBytes = n
	}
}

// New creates a registry with the given options
func New(options ...Option) (Registry, error) {
	r := &registry{
		maxPreviewBytes: DefaultMaxPreviewBytes,
	}

	for _, option := range options {
		option(r)
	}

	if r.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if r.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.maxPreviewBytes <= 0 {
		r.maxPreviewBytes = DefaultMaxPreviewBytes
	}
	r.logger = r.logger.With("component", "kafka_file_registry")

	return r, nil
}

func (r *registry) Save(ctx context.Context, req *FileRequest, operator string) Status {
	if req != nil && req.Modify {
		return r.Replace(ctx, req, operator)
	}
	return r.Upload(ctx, req, operator)
}

func (r *registry) Upload(ctx context.Context, req *FileRequest, operator string) Status {
	if !ValidateCreate(req) {
		return observe("upload", StatusParamIllegal)
	}

	fileType, _ := FileTypeByCode(*req.FileType)
	clusterID := req.ClusterID
	if fileType == FileTypePackage {
		clusterID = NoCluster
	}

	now := time.Now().UTC()
	record := &FileRecord{
		ClusterID:   clusterID,
		FileName:    req.FileName,
		FileMd5:     strings.ToLower(req.FileMd5),
		FileType:    fileType,
		Description: req.Description,
		Operator:    operator,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := r.repository.Insert(ctx, record); err != nil {
		if errors.Is(err, ErrDuplicateFileName) {
			r.logger.Warn("kafka file name already exists", "file_name", record.FileName)
			return observe("upload", StatusResourceAlreadyExisted)
		}
		r.logger.Error("insert kafka file failed",
			"file_name", record.FileName, "file_md5", record.FileMd5,
			"error", &RecordError{Name: record.FileName, Op: "insert", Err: err})
		return observe("upload", StatusMetadataError)
	}

	if err := r.blobStore.Upload(ctx, record.FileName, record.FileMd5, req.Content); err != nil {
		r.logger.Error("upload kafka file failed",
			"id", record.ID, "file_name", record.FileName,
			"error", &StorageError{
				Backend: string(r.blobStore.Kind()),
				Key:     ObjectKey(record.FileName, record.FileMd5),
				Op:      "upload",
				Err:     err,
			})
		r.compensateCreate(ctx, record)
		return observe("upload", StatusUploadFileFail)
	}

	r.logger.Info("kafka file uploaded",
		"id", record.ID, "file_name", record.FileName, "file_md5", record.FileMd5, "operator", operator)
	return observe("upload", StatusSuccess)
}

// compensateCreate removes the row inserted by Upload. A failure leaves an
// orphaned row without a blob; it is logged, not retried.
func (r *registry) compensateCreate(ctx context.Context, record *FileRecord) {
	rows, err := r.repository.DeleteByID(ctx, record.ID)
	if err == nil && rows <= 0 {
		err = ErrFileNotFound
	}
	if err != nil {
		r.logger.Error("compensation failed, metadata row left without blob",
			"compensation", "delete_inserted_row",
			"id", record.ID, "file_name", record.FileName, "file_md5", record.FileMd5,
			"error", &RecordError{ID: record.ID, Name: record.FileName, Op: "delete", Err: err})
		observeCompensation("upload", false)
		return
	}
	observeCompensation("upload", true)
}

func (r *registry) Replace(ctx context.Context, req *FileRequest, operator string) Status {
	if !ValidateModify(req) {
		return observe("replace", StatusParamIllegal)
	}

	existing, err := r.repository.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return observe("replace", StatusResourceNotExist)
		}
		r.logger.Error("get kafka file failed", "id", req.ID,
			"error", &RecordError{ID: req.ID, Op: "get", Err: err})
		return observe("replace", StatusMetadataError)
	}

	fileType, ok := FileTypeByCode(int(existing.FileType))
	if !ok {
		r.logger.Warn("kafka file has unknown type", "id", existing.ID, "file_type", int(existing.FileType))
		return observe("replace", StatusOperationFailed)
	}
	if req.FileType != nil && *req.FileType != fileType.Code() {
		return observe("replace", StatusOperationFailed)
	}
	if !SuffixMatches(req.FileName, fileType) {
		return observe("replace", StatusOperationFailed)
	}

	updated := *existing
	updated.FileName = req.FileName
	updated.FileMd5 = strings.ToLower(req.FileMd5)
	updated.Description = req.Description
	updated.Operator = operator
	updated.UpdatedAt = time.Now().UTC()

	rows, err := r.repository.UpdateByID(ctx, &updated)
	if err != nil {
		if errors.Is(err, ErrDuplicateFileName) {
			r.logger.Warn("kafka file name already exists", "id", updated.ID, "file_name", updated.FileName)
			return observe("replace", StatusResourceNameDuplicated)
		}
		r.logger.Error("update kafka file failed", "id", updated.ID,
			"error", &RecordError{ID: updated.ID, Name: updated.FileName, Op: "update", Err: err})
		return observe("replace", StatusMetadataError)
	}
	if rows <= 0 {
		r.logger.Error("update kafka file affected no rows", "id", updated.ID, "file_name", updated.FileName)
		return observe("replace", StatusMetadataError)
	}

	err = r.blobStore.Upload(ctx, updated.FileName, updated.FileMd5, req.Content)
	if err == nil {
		r.logger.Info("kafka file replaced",
			"id", updated.ID, "file_name", updated.FileName, "file_md5", updated.FileMd5,
			"previous_file_md5", existing.FileMd5, "operator", operator)
		return observe("replace", StatusSuccess)
	}

	r.logger.Error("upload kafka file failed",
		"id", updated.ID, "file_name", updated.FileName,
		"error", &StorageError{
			Backend: string(r.blobStore.Kind()),
			Key:     ObjectKey(updated.FileName, updated.FileMd5),
			Op:      "upload",
			Err:     err,
		})
	if !r.compensateReplace(ctx, existing) {
		return observe("replace", StatusMetadataError)
	}
	return observe("replace", StatusUploadFileFail)
}

// compensateReplace writes the pre-modify row back. The old blob lives under
// its own key, so restoring the row is enough to point at it again.
func (r *registry) compensateReplace(ctx context.Context, original *FileRecord) bool {
	rows, err := r.repository.UpdateByID(ctx, original)
	if err == nil && rows <= 0 {
		err = ErrFileNotFound
	}
	if err != nil {
		r.logger.Error("compensation failed, metadata row points at a missing blob",
			"compensation", "restore_previous_row",
			"id", original.ID, "file_name", original.FileName, "file_md5", original.FileMd5,
			"error", &RecordError{ID: original.ID, Name: original.FileName, Op: "restore", Err: err})
		observeCompensation("replace", false)
		return false
	}
	observeCompensation("replace", true)
	return true
}

func (r *registry) Delete(ctx context.Context, id int64) Status {
	rows, err := r.repository.DeleteByID(ctx, id)
	if err != nil {
		r.logger.Error("delete kafka file failed", "id", id,
			"error", &RecordError{ID: id, Op: "delete", Err: err})
		return observe("delete", StatusMetadataError)
	}
	if rows <= 0 {
		r.logger.Warn("delete kafka file affected no rows", "id", id)
		return observe("delete", StatusMetadataError)
	}
	r.logger.Info("kafka file deleted", "id", id)
	return observe("delete", StatusSuccess)
}

func (r *registry) List(ctx context.Context) []*FileRecord {
	records, err := r.repository.List(ctx)
	if err != nil {
		r.logger.Error("list kafka files failed", "error", err)
		return []*FileRecord{}
	}
	if records == nil {
		return []*FileRecord{}
	}
	return records
}

func (r *registry) GetByID(ctx context.Context, id int64) *FileRecord {
	record, err := r.repository.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrFileNotFound) {
			r.logger.Error("get kafka file failed", "id", id, "error", err)
		}
		return nil
	}
	return record
}

func (r *registry) GetByName(ctx context.Context, fileName string) *FileRecord {
	record, err := r.repository.GetByName(ctx, fileName)
	if err != nil {
		if !errors.Is(err, ErrFileNotFound) {
			r.logger.Error("get kafka file failed", "file_name", fileName, "error", err)
		}
		return nil
	}
	return record
}

func (r *registry) DownloadForPreview(ctx context.Context, id int64) (string, Status) {
	record, err := r.repository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return "", observe("preview", StatusResourceNotExist)
		}
		r.logger.Error("get kafka file failed", "id", id, "error", err)
		return "", observe("preview", StatusMetadataError)
	}
	if !record.FileType.Previewable() {
		return "", observe("preview", StatusFileTypeNotSupported)
	}

	reader, err := r.blobStore.Download(ctx, record.FileName, record.FileMd5)
	if err != nil {
		r.logger.Error("download kafka file failed", "id", id,
			"error", &StorageError{
				Backend: string(r.blobStore.Kind()),
				Key:     ObjectKey(record.FileName, record.FileMd5),
				Op:      "download",
				Err:     err,
			})
		if errors.Is(err, ErrObjectNotFound) {
			return "", observe("preview", StatusResourceNotExist)
		}
		return "", observe("preview", StatusDownloadFileFail)
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, r.maxPreviewBytes))
	if err != nil {
		r.logger.Error("read kafka file failed", "id", id, "error", err)
		return "", observe("preview", StatusDownloadFileFail)
	}
	return string(data), observe("preview", StatusSuccess)
}

func (r *registry) DownloadBaseURL() string {
	return r.blobStore.DownloadBaseURL()
}

func (r *registry) StorageKind() StorageKind {
	return r.blobStore.Kind()
}
