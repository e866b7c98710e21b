package order

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/entities"
	"context"
	"errors"

	"gorm.io/gorm"
)

type (
	OrderRepository interface {
		CreateOrder(ctx context.Context, order *entities.ActiveOrder) error
		UpdateOrder(ctx context.Context, order *entities.ActiveOrder) error
		DeleteOrder(ctx context.Context, id string) error
		GetOrderByID(ctx context.Context, id string) (*entities.ActiveOrder, error)
		// GetLatestOpenOrder returns the newest order that has not been picked up.
		GetLatestOpenOrder(ctx context.Context) (*entities.ActiveOrder, error)
		// GetOrders lists orders newest first, optionally restricted to one status.
		GetOrders(ctx context.Context, status string) ([]*entities.ActiveOrder, error)
		CountByStatus(ctx context.Context) (map[string]int, error)
	}

	orderRepository struct {
		db *gorm.DB
	}
)

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *entities.ActiveOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) UpdateOrder(ctx context.Context, order *entities.ActiveOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *orderRepository) DeleteOrder(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.ActiveOrder{}).Error
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id string) (*entities.ActiveOrder, error) {
	var order entities.ActiveOrder
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetLatestOpenOrder(ctx context.Context) (*entities.ActiveOrder, error) {
	var order entities.ActiveOrder
	if err := r.db.WithContext(ctx).
		Where("status <> ?", string(domain.StatusPickedUp)).
		Order("placed_at desc").
		Order("created_at desc").
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetOrders(ctx context.Context, status string) ([]*entities.ActiveOrder, error) {
	var orders []*entities.ActiveOrder
	query := r.db.WithContext(ctx).Model(&entities.ActiveOrder{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.
		Order("placed_at desc").
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Status string
		Total  int
	}
	if err := r.db.WithContext(ctx).
		Model(&entities.ActiveOrder{}).
		Select("status, count(*) as total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
