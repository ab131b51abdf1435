// Package kafkafile provides a registry for the configuration files and
// server packages used to deploy Kafka clusters.
//
// File metadata (name, type, content hash, description, operator) is kept in a
// Repository, while the file bytes are kept in a content-addressed BlobStore
// keyed by (file name, md5). The Registry keeps the two consistent on a best
// effort basis: a failed blob write after a metadata write is compensated by
// deleting the new row (create) or restoring the previous row (replace).
// Compensation can itself fail; that case is logged and counted but never
// retried.
//
// Implementations of repositories (memory, Postgres, SQLite) and blob stores
// (memory, filesystem, S3) are provided under subpackages.
package kafkafile
