// Package sqlite stores file records in an embedded SQLite database through
// gorm. It suits single-node deployments and the CLI.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tendant/kafka-files/pkg/kafkafile"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fileModel is the gorm row of a file record.
type fileModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	ClusterID   int64     `gorm:"not null;default:-1;index"`
	FileName    string    `gorm:"size:255;not null;uniqueIndex:uniq_kafka_file_name"`
	FileMd5     string    `gorm:"size:32;not null"`
	FileType    int       `gorm:"not null"`
	Description string    `gorm:"not null;default:''"`
	Operator    string    `gorm:"size:128;not null;default:''"`
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

func (fileModel) TableName() string {
	return "kafka_file"
}

func toModel(record *kafkafile.FileRecord) *fileModel {
	return &fileModel{
		ID:          record.ID,
		ClusterID:   record.ClusterID,
		FileName:    record.FileName,
		FileMd5:     record.FileMd5,
		FileType:    record.FileType.Code(),
		Description: record.Description,
		Operator:    record.Operator,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func (m *fileModel) toRecord() *kafkafile.FileRecord {
	return &kafkafile.FileRecord{
		ID:          m.ID,
		ClusterID:   m.ClusterID,
		FileName:    m.FileName,
		FileMd5:     m.FileMd5,
		FileType:    kafkafile.FileType(m.FileType),
		Description: m.Description,
		Operator:    m.Operator,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// Repository implements kafkafile.Repository on SQLite
type Repository struct {
	db *gorm.DB
}

// Open opens (or creates) the database file at path and migrates the schema.
func Open(path string) (*Repository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return New(db)
}

// New wraps an open gorm handle and migrates the schema. The handle must be
// opened with TranslateError so duplicate names are reported.
func New(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&fileModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kafka_file: %w", err)
	}
	return &Repository{db: db}, nil
}

// Close closes the underlying connection pool
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *Repository) handleError(operation string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return kafkafile.ErrFileNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", kafkafile.ErrDuplicateFileName, err)
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) Insert(ctx context.Context, record *kafkafile.FileRecord) error {
	model := toModel(record)
	model.ID = 0
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return r.handleError("insert kafka file", err)
	}
	record.ID = model.ID
	return nil
}

func (r *Repository) UpdateByID(ctx context.Context, record *kafkafile.FileRecord) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&fileModel{}).
		Where("id = ?", record.ID).
		Updates(map[string]interface{}{
			"file_name":   record.FileName,
			"file_md5":    record.FileMd5,
			"description": record.Description,
			"operator":    record.Operator,
			"updated_at":  record.UpdatedAt,
		})
	if result.Error != nil {
		return 0, r.handleError("update kafka file", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *Repository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&fileModel{}, id)
	if result.Error != nil {
		return 0, r.handleError("delete kafka file", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*kafkafile.FileRecord, error) {
	var model fileModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		return nil, r.handleError("get kafka file", err)
	}
	return model.toRecord(), nil
}

func (r *Repository) GetByName(ctx context.Context, fileName string) (*kafkafile.FileRecord, error) {
	var model fileModel
	if err := r.db.WithContext(ctx).Where("file_name = ?", fileName).First(&model).Error; err != nil {
		return nil, r.handleError("get kafka file by name", err)
	}
	return model.toRecord(), nil
}

func (r *Repository) List(ctx context.Context) ([]*kafkafile.FileRecord, error) {
	var models []fileModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, r.handleError("list kafka files", err)
	}

	records := make([]*kafkafile.FileRecord, 0, len(models))
	for i := range models {
		records = append(records, models[i].toRecord())
	}
	return records, nil
}
