package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tendant/kafka-files/pkg/kafkafile"
)

// Repository implements kafkafile.Repository using in-memory storage
type Repository struct {
	mu      sync.RWMutex
	nextID  int64
	records map[int64]*kafkafile.FileRecord
	byName  map[string]int64 // file_name -> id
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		records: make(map[int64]*kafkafile.FileRecord),
		byName:  make(map[string]int64),
	}
}

func (r *Repository) Insert(ctx context.Context, record *kafkafile.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[record.FileName]; exists {
		return fmt.Errorf("%w: %s", kafkafile.ErrDuplicateFileName, record.FileName)
	}

	r.nextID++
	record.ID = r.nextID
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = now
	}

	// Create a copy to avoid external modifications
	recordCopy := *record
	r.records[record.ID] = &recordCopy
	r.byName[record.FileName] = record.ID

	return nil
}

func (r *Repository) UpdateByID(ctx context.Context, record *kafkafile.FileRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.records[record.ID]
	if !exists {
		return 0, nil
	}
	if owner, taken := r.byName[record.FileName]; taken && owner != record.ID {
		return 0, fmt.Errorf("%w: %s", kafkafile.ErrDuplicateFileName, record.FileName)
	}

	delete(r.byName, current.FileName)
	current.FileName = record.FileName
	current.FileMd5 = record.FileMd5
	current.Description = record.Description
	current.Operator = record.Operator
	current.UpdatedAt = record.UpdatedAt
	if current.UpdatedAt.IsZero() {
		current.UpdatedAt = time.Now().UTC()
	}
	r.byName[current.FileName] = current.ID

	return 1, nil
}

func (r *Repository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.records[id]
	if !exists {
		return 0, nil
	}
	delete(r.byName, record.FileName)
	delete(r.records, id)
	return 1, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*kafkafile.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.records[id]
	if !exists {
		return nil, kafkafile.ErrFileNotFound
	}

	// Return a copy to prevent external modifications
	recordCopy := *record
	return &recordCopy, nil
}

func (r *Repository) GetByName(ctx context.Context, fileName string) (*kafkafile.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byName[fileName]
	if !exists {
		return nil, kafkafile.ErrFileNotFound
	}
	recordCopy := *r.records[id]
	return &recordCopy, nil
}

func (r *Repository) List(ctx context.Context) ([]*kafkafile.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*kafkafile.FileRecord, 0, len(r.records))
	for _, record := range r.records {
		recordCopy := *record
		result = append(result, &recordCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}
