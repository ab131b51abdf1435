package kafkafile

import (
	"io"
	"time"
)

// FileType is the kind of a registered file. The numeric code is what gets
// persisted.
type FileType int

// File type constants.
const (
	FileTypePackage      FileType = 0
	FileTypeServerConfig FileType = 1
)

type fileTypeInfo struct {
	message     string
	suffix      string
	previewable bool
}

var fileTypes = map[FileType]fileTypeInfo{
	FileTypePackage:      {message: "kafka server package", suffix: ".tgz", previewable: false},
	FileTypeServerConfig: {message: "kafka server config", suffix: ".properties", previewable: true},
}

// FileTypeByCode returns the file type registered under code.
func FileTypeByCode(code int) (FileType, bool) {
	ft := FileType(code)
	_, ok := fileTypes[ft]
	return ft, ok
}

// Code returns the persisted code of the file type.
func (t FileType) Code() int { return int(t) }

// Suffix returns the file name suffix required for the type.
func (t FileType) Suffix() string { return fileTypes[t].suffix }

// Message returns a human readable description of the type.
func (t FileType) Message() string { return fileTypes[t].message }

// Previewable reports whether files of this type hold text that can be
// returned by a preview.
func (t FileType) Previewable() bool { return fileTypes[t].previewable }

// FileTypeInfo describes a file type for enumeration endpoints.
type FileTypeInfo struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Suffix  string `json:"suffix"`
}

// FileTypes lists every known file type ordered by code.
func FileTypes() []FileTypeInfo {
	return []FileTypeInfo{
		{Code: FileTypePackage.Code(), Message: FileTypePackage.Message(), Suffix: FileTypePackage.Suffix()},
		{Code: FileTypeServerConfig.Code(), Message: FileTypeServerConfig.Message(), Suffix: FileTypeServerConfig.Suffix()},
	}
}

// StorageKind names a blob backend implementation.
type StorageKind string

// Storage kind constants.
const (
	StorageKindMemory StorageKind = "memory"
	StorageKindFS     StorageKind = "fs"
	StorageKindS3     StorageKind = "s3"
)

// StorageKindInfo describes a storage kind for enumeration endpoints.
type StorageKindInfo struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// StorageKinds lists the supported blob backends.
func StorageKinds() []StorageKindInfo {
	return []StorageKindInfo{
		{Code: 0, Message: string(StorageKindMemory)},
		{Code: 1, Message: string(StorageKindFS)},
		{Code: 2, Message: string(StorageKindS3)},
	}
}

// NoCluster is the cluster id carried by files that are not bound to a
// cluster, i.e. server packages.
const NoCluster int64 = -1

// FileRecord is the metadata row of a registered file.
//
// FileName is unique across records and always ends with the suffix of
// FileType. FileType never changes after creation. FileMd5 is the md5 of the
// bytes stored under ObjectKey(FileName, FileMd5).
type FileRecord struct {
	ID          int64     `json:"id"`
	ClusterID   int64     `json:"cluster_id"`
	FileName    string    `json:"file_name"`
	FileMd5     string    `json:"file_md5"`
	FileType    FileType  `json:"file_type"`
	Description string    `json:"description,omitempty"`
	Operator    string    `json:"operator"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ObjectKey returns the blob address of a file with the given name and md5.
// A new hash always lands on a new key, so replacing a file never overwrites
// the bytes the previous record points to. The registry stores md5s in lower
// case, so a given content has exactly one key.
func ObjectKey(fileName, fileMd5 string) string {
	return fileMd5 + "/" + fileName
}

// FileRequest carries a create or modify request.
//
// FileType is a pointer so that a missing type can be told apart from the
// package type, whose code is zero. Modify selects Replace instead of Upload
// when the request goes through Registry.Save.
type FileRequest struct {
	ID          int64
	ClusterID   int64
	FileName    string
	FileMd5     string
	FileType    *int
	Content     io.Reader
	Description string
	Modify      bool
}
