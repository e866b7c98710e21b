package history

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/entities"
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
)

type (
	HistoryRepository interface {
		CreateEntry(ctx context.Context, entry *entities.DailyEntry) error
		// DeleteEntry only undoes a CreateEntry whose surrounding update failed.
		DeleteEntry(ctx context.Context, id string) error
		// GetEntries returns entries in ledger order: by date, then by insertion.
		GetEntries(ctx context.Context, filter domain.HistoryFilter) ([]*entities.DailyEntry, error)
	}

	historyRepository struct {
		db *gorm.DB
	}
)

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) CreateEntry(ctx context.Context, entry *entities.DailyEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *historyRepository) DeleteEntry(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.DailyEntry{}).Error
}

func (r *historyRepository) GetEntries(ctx context.Context, filter domain.HistoryFilter) ([]*entities.DailyEntry, error) {
	var entries []*entities.DailyEntry
	query := r.db.WithContext(ctx).Model(&entities.DailyEntry{})

	if filter.MenuItemID != "" {
		query = query.Where("menu_item_id = ?", filter.MenuItemID)
	}
	if filter.From != "" {
		query = query.Where("date >= ?", filter.From)
	}
	if filter.To != "" {
		query = query.Where("date <= ?", filter.To)
	}

	if err := query.
		Order("date asc").
		Order("created_at asc").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

type memoryRepository struct {
	mu      sync.RWMutex
	entries []entities.DailyEntry
}

// NewMemoryRepository keeps the ledger in process memory, in append order.
func NewMemoryRepository(entries ...*entities.DailyEntry) HistoryRepository {
	r := &memoryRepository{}
	for _, entry := range entries {
		r.entries = append(r.entries, *entry)
	}
	return r
}

func (r *memoryRepository) CreateEntry(_ context.Context, entry *entities.DailyEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memoryRepository) DeleteEntry(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.entries {
		if r.entries[i].ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memoryRepository) GetEntries(_ context.Context, filter domain.HistoryFilter) ([]*entities.DailyEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.DailyEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		if filter.MenuItemID != "" && entry.MenuItemID != filter.MenuItemID {
			continue
		}
		if filter.From != "" && entry.Date < filter.From {
			continue
		}
		if filter.To != "" && entry.Date > filter.To {
			continue
		}
		copied := entry
		out = append(out, &copied)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out, nil
}
