package menu

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/entities"
	"encoding/json"
)

func encodeList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	raw, _ := json.Marshal(values)
	return string(raw)
}

func decodeList(raw string) []string {
	var values []string
	if raw == "" {
		return []string{}
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return []string{}
	}
	return values
}

func ToDomain(item *entities.MenuItem) domain.MenuItem {
	return domain.MenuItem{
		ID:                  item.ID,
		Name:                item.Name,
		Category:            domain.Category(item.Category),
		Description:         item.Description,
		Unit:                item.Unit,
		BaseQuantity:        item.BaseQuantity,
		Price:               item.Price,
		Calories:            item.Calories,
		Allergens:           decodeList(item.Allergens),
		IsLowCarbon:         item.IsLowCarbon,
		IsVeg:               item.IsVeg,
		CarbonGrams:         item.CarbonGrams,
		PopularityScore:     item.PopularityScore,
		Image:               item.Image,
		IsFlashSale:         item.IsFlashSale,
		FlashSaleStartTime:  item.FlashSaleStartTime,
		FlashSalePercentage: item.FlashSalePercentage,
		IsSurpriseDish:      item.IsSurpriseDish,
		Ingredients:         decodeList(item.Ingredients),
	}
}

func ToDomainList(items []*entities.MenuItem) []domain.MenuItem {
	out := make([]domain.MenuItem, 0, len(items))
	for _, item := range items {
		out = append(out, ToDomain(item))
	}
	return out
}

// ToEntity converts a catalog item for storage. Position is left to the caller.
func ToEntity(item domain.MenuItem) *entities.MenuItem {
	return &entities.MenuItem{
		ID:                  item.ID,
		Name:                item.Name,
		Category:            string(item.Category),
		Description:         item.Description,
		Unit:                item.Unit,
		BaseQuantity:        item.BaseQuantity,
		Price:               item.Price,
		Calories:            item.Calories,
		Allergens:           encodeList(item.Allergens),
		IsLowCarbon:         item.IsLowCarbon,
		IsVeg:               item.IsVeg,
		CarbonGrams:         item.CarbonGrams,
		PopularityScore:     item.PopularityScore,
		Image:               item.Image,
		IsFlashSale:         item.IsFlashSale,
		FlashSaleStartTime:  item.FlashSaleStartTime,
		FlashSalePercentage: item.FlashSalePercentage,
		IsSurpriseDish:      item.IsSurpriseDish,
		Ingredients:         encodeList(item.Ingredients),
	}
}
