package menu

import (
	"SmartCanteen-Backend/entities"
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
)

type memoryRepository struct {
	mu    sync.RWMutex
	items map[string]entities.MenuItem
}

// NewMemoryRepository serves the catalog from process memory, in insertion order
// unless positions say otherwise.
func NewMemoryRepository(items ...*entities.MenuItem) MenuRepository {
	r := &memoryRepository{items: make(map[string]entities.MenuItem)}
	for i, item := range items {
		copied := *item
		if copied.Position == 0 {
			copied.Position = i
		}
		r.items[copied.ID] = copied
	}
	return r
}

func (r *memoryRepository) GetMenuItems(_ context.Context) ([]*entities.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.MenuItem, 0, len(r.items))
	for _, item := range r.items {
		copied := item
		out = append(out, &copied)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memoryRepository) GetMenuItemByID(_ context.Context, id string) (*entities.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &item, nil
}

func (r *memoryRepository) CreateMenuItem(_ context.Context, item *entities.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; ok {
		return gorm.ErrDuplicatedKey
	}
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	r.items[item.ID] = *item
	return nil
}

func (r *memoryRepository) UpdateMenuItem(_ context.Context, item *entities.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item.UpdatedAt = time.Now()
	r.items[item.ID] = *item
	return nil
}

func (r *memoryRepository) DeleteMenuItem(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memoryRepository) NextPosition(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	next := 0
	for _, item := range r.items {
		if item.Position >= next {
			next = item.Position + 1
		}
	}
	return next, nil
}
