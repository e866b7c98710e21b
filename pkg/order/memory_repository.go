package order

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/entities"
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
)

type memoryRepository struct {
	mu     sync.RWMutex
	orders []entities.ActiveOrder
}

// NewMemoryRepository keeps orders in process memory, in placement order.
func NewMemoryRepository() OrderRepository {
	return &memoryRepository{}
}

func (r *memoryRepository) CreateOrder(_ context.Context, order *entities.ActiveOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.orders {
		if existing.ID == order.ID {
			return gorm.ErrDuplicatedKey
		}
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.orders = append(r.orders, *order)
	return nil
}

func (r *memoryRepository) UpdateOrder(_ context.Context, order *entities.ActiveOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.orders {
		if r.orders[i].ID == order.ID {
			order.UpdatedAt = time.Now()
			r.orders[i] = *order
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memoryRepository) DeleteOrder(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memoryRepository) GetOrderByID(_ context.Context, id string) (*entities.ActiveOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.ID == id {
			copied := order
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryRepository) GetLatestOpenOrder(ctx context.Context) (*entities.ActiveOrder, error) {
	orders, err := r.GetOrders(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		if order.Status != string(domain.StatusPickedUp) {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryRepository) GetOrders(_ context.Context, status string) ([]*entities.ActiveOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.ActiveOrder, 0, len(r.orders))
	for i := len(r.orders) - 1; i >= 0; i-- {
		if status != "" && r.orders[i].Status != status {
			continue
		}
		copied := r.orders[i]
		out = append(out, &copied)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PlacedAt > out[j].PlacedAt
	})
	return out, nil
}

func (r *memoryRepository) CountByStatus(_ context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, order := range r.orders {
		counts[order.Status]++
	}
	return counts, nil
}
