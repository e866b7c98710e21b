package state

import (
	"SmartCanteen-Backend/entities"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	StateRepository interface {
		GetDocument(ctx context.Context, name string) (*entities.StateDocument, error)
		SaveDocument(ctx context.Context, doc *entities.StateDocument) error
	}

	stateRepository struct {
		db *gorm.DB
	}
)

func NewStateRepository(db *gorm.DB) StateRepository {
	return &stateRepository{db: db}
}

// GetDocument returns nil without error when the document was never written.
func (r *stateRepository) GetDocument(ctx context.Context, name string) (*entities.StateDocument, error) {
	var doc entities.StateDocument
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// SaveDocument replaces the whole document in one statement.
func (r *stateRepository) SaveDocument(ctx context.Context, doc *entities.StateDocument) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"schema_version", "payload", "updated_at"}),
	}).Create(doc).Error
}

type memoryRepository struct {
	mu   sync.RWMutex
	docs map[string]entities.StateDocument
}

// NewMemoryRepository keeps documents in process memory. It backs the offline
// forecast command and service tests.
func NewMemoryRepository() StateRepository {
	return &memoryRepository{docs: make(map[string]entities.StateDocument)}
}

func (r *memoryRepository) GetDocument(_ context.Context, name string) (*entities.StateDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[name]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (r *memoryRepository) SaveDocument(_ context.Context, doc *entities.StateDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	now := time.Now()
	if existing, ok := r.docs[doc.Name]; ok {
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
	} else {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	r.docs[doc.Name] = *doc
	return nil
}
