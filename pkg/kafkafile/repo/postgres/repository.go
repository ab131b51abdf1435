package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/kafka-files/pkg/kafkafile"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements kafkafile.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

const selectColumns = `
	SELECT id, cluster_id, file_name, file_md5, file_type, description,
	       operator, created_at, updated_at
	FROM kafka_file`

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return kafkafile.ErrFileNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", kafkafile.ErrDuplicateFileName, pgErr.Detail)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) Insert(ctx context.Context, record *kafkafile.FileRecord) error {
	query := `
		INSERT INTO kafka_file (
			cluster_id, file_name, file_md5, file_type, description,
			operator, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		record.ClusterID, record.FileName, record.FileMd5, int(record.FileType),
		record.Description, record.Operator, record.CreatedAt, record.UpdatedAt,
	).Scan(&record.ID)
	if err != nil {
		return r.handlePostgresError("insert kafka file", err)
	}

	return nil
}

func (r *Repository) UpdateByID(ctx context.Context, record *kafkafile.FileRecord) (int64, error) {
	query := `
		UPDATE kafka_file SET
			file_name = $2, file_md5 = $3, description = $4,
			operator = $5, updated_at = $6
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		record.ID, record.FileName, record.FileMd5, record.Description,
		record.Operator, record.UpdatedAt)
	if err != nil {
		return 0, r.handlePostgresError("update kafka file", err)
	}

	return tag.RowsAffected(), nil
}

func (r *Repository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM kafka_file WHERE id = $1`, id)
	if err != nil {
		return 0, r.handlePostgresError("delete kafka file", err)
	}

	return tag.RowsAffected(), nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*kafkafile.FileRecord, error) {
	record, err := scanRecord(r.db.QueryRow(ctx, selectColumns+` WHERE id = $1`, id))
	if err != nil {
		return nil, r.handlePostgresError("get kafka file", err)
	}
	return record, nil
}

func (r *Repository) GetByName(ctx context.Context, fileName string) (*kafkafile.FileRecord, error) {
	record, err := scanRecord(r.db.QueryRow(ctx, selectColumns+` WHERE file_name = $1`, fileName))
	if err != nil {
		return nil, r.handlePostgresError("get kafka file by name", err)
	}
	return record, nil
}

func (r *Repository) List(ctx context.Context) ([]*kafkafile.FileRecord, error) {
	rows, err := r.db.Query(ctx, selectColumns+` ORDER BY id`)
	if err != nil {
		return nil, r.handlePostgresError("list kafka files", err)
	}
	defer rows.Close()

	records := []*kafkafile.FileRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan kafka file", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list kafka files", err)
	}

	return records, nil
}

func scanRecord(row pgx.Row) (*kafkafile.FileRecord, error) {
	var record kafkafile.FileRecord
	var fileType int16
	err := row.Scan(
		&record.ID, &record.ClusterID, &record.FileName, &record.FileMd5, &fileType,
		&record.Description, &record.Operator, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}
	record.FileType = kafkafile.FileType(fileType)
	return &record, nil
}
