package notification

import (
	"SmartCanteen-Backend/entities"
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu    sync.Mutex
	items []entities.Notification
}

// NewMemoryRepository keeps the feed in process memory, newest last.
func NewMemoryRepository() NotificationRepository {
	return &memoryRepository{}
}

func (r *memoryRepository) CreateNotification(_ context.Context, notification *entities.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, *notification)
	return nil
}

// newest returns the feed newest first. Equal timestamps keep the later insert first.
func (r *memoryRepository) newest() []entities.Notification {
	out := make([]entities.Notification, len(r.items))
	for i := range r.items {
		out[len(r.items)-1-i] = r.items[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt > out[j].SentAt })
	return out
}

func (r *memoryRepository) GetLatest(_ context.Context, limit int) ([]*entities.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sorted := r.newest()
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	out := make([]*entities.Notification, 0, len(sorted))
	for i := range sorted {
		out = append(out, &sorted[i])
	}
	return out, nil
}

func (r *memoryRepository) TrimTo(_ context.Context, keep int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sorted := r.newest()
	if len(sorted) <= keep {
		return nil
	}
	sorted = sorted[:keep]
	r.items = r.items[:0]
	for i := len(sorted) - 1; i >= 0; i-- {
		r.items = append(r.items, sorted[i])
	}
	return nil
}

func (r *memoryRepository) MarkAllRead(_ context.Context, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].Role == "" || r.items[i].Role == role {
			r.items[i].IsRead = true
		}
	}
	return nil
}
