package order

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/entities"
	"encoding/json"
)

func toEntity(order domain.ActiveOrder) (*entities.ActiveOrder, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, err
	}
	comments := ""
	if len(order.ItemComments) > 0 {
		raw, err := json.Marshal(order.ItemComments)
		if err != nil {
			return nil, err
		}
		comments = string(raw)
	}

	return &entities.ActiveOrder{
		ID:           order.ID,
		Items:        string(items),
		ItemComments: comments,
		Status:       string(order.Status),
		PlacedAt:     order.Timestamp,
	}, nil
}

func toDomain(entity *entities.ActiveOrder) (domain.ActiveOrder, error) {
	items := domain.OrderMap{}
	if entity.Items != "" {
		if err := json.Unmarshal([]byte(entity.Items), &items); err != nil {
			return domain.ActiveOrder{}, err
		}
	}
	var comments map[string]string
	if entity.ItemComments != "" {
		if err := json.Unmarshal([]byte(entity.ItemComments), &comments); err != nil {
			return domain.ActiveOrder{}, err
		}
	}

	return domain.ActiveOrder{
		ID:           entity.ID,
		Items:        items,
		ItemComments: comments,
		Status:       domain.OrderStatus(entity.Status),
		Timestamp:    entity.PlacedAt,
	}, nil
}

func toDomainList(orders []*entities.ActiveOrder) ([]domain.ActiveOrder, error) {
	out := make([]domain.ActiveOrder, 0, len(orders))
	for _, entity := range orders {
		order, err := toDomain(entity)
		if err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	return out, nil
}
