package seed

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/entities"
	"SmartCanteen-Backend/pkg/history"
	"SmartCanteen-Backend/pkg/menu"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func image(id string) string {
	return "https://images.unsplash.com/photo-" + id + "?q=80&w=800&auto=format&fit=crop"
}

// InitialMenu is the catalog a fresh canteen starts with.
func InitialMenu() []domain.MenuItem {
	return []domain.MenuItem{
		{ID: "1", Name: "Chicken Curry & Rice", Category: domain.CategoryMain, Unit: "Portions", BaseQuantity: 100, Price: 220, Calories: 650, Allergens: []string{"Gluten", "Dairy"}, CarbonGrams: 1200, PopularityScore: 85, Image: image("1604908176997-125f25cc6f3d")},
		{ID: "2", Name: "Vegetable Pasta", Category: domain.CategoryMain, Unit: "Portions", BaseQuantity: 80, Price: 180, Calories: 520, Allergens: []string{"Gluten"}, IsLowCarbon: true, IsVeg: true, CarbonGrams: 350, PopularityScore: 72, Image: image("1555949258-eb67b1ef0ceb")},
		{ID: "3", Name: "Garden Salad", Category: domain.CategorySide, Unit: "Bowls", BaseQuantity: 50, Price: 120, Calories: 150, Allergens: []string{}, IsLowCarbon: true, IsVeg: true, CarbonGrams: 150, PopularityScore: 60, Image: image("1540189549336-e6e99c3679fe")},
		{ID: "4", Name: "Chocolate Brownie", Category: domain.CategoryDessert, Unit: "Pieces", BaseQuantity: 120, Price: 90, Calories: 380, Allergens: []string{"Egg", "Dairy", "Gluten"}, CarbonGrams: 280, PopularityScore: 95, Image: image("1606313564200-e75d5e30476c")},
		{ID: "5", Name: "Iced Lemon Tea", Category: domain.CategoryDrink, Unit: "Liters", BaseQuantity: 30, Price: 60, Calories: 90, Allergens: []string{}, IsLowCarbon: true, IsVeg: true, CarbonGrams: 80, PopularityScore: 88, Image: image("1558642452-9d2a7deb7f62")},
		{ID: "6", Name: "Paneer Butter Masala", Category: domain.CategoryMain, Unit: "Portions", BaseQuantity: 60, Price: 200, Calories: 450, Allergens: []string{"Dairy", "Nuts"}, IsVeg: true, CarbonGrams: 700, PopularityScore: 92, Image: image("1631452180519-c014fe946bc7")},
		{ID: "7", Name: "Classic Veg Burger", Category: domain.CategoryMain, Unit: "Portions", BaseQuantity: 50, Price: 150, Calories: 380, Allergens: []string{"Gluten", "Sesame"}, IsLowCarbon: true, IsVeg: true, CarbonGrams: 400, PopularityScore: 78, Image: image("1550547660-d9450f859349")},
		{ID: "8", Name: "Fresh Fruit Bowl", Category: domain.CategoryDessert, Unit: "Bowls", BaseQuantity: 40, Price: 100, Calories: 120, Allergens: []string{}, IsLowCarbon: true, IsVeg: true, CarbonGrams: 50, PopularityScore: 65, Image: image("1490474418585-ba9bad8fd0ea")},
		{ID: "9", Name: "Coca-Cola", Category: domain.CategoryDrink, Unit: "Cans", BaseQuantity: 100, Price: 40, Calories: 140, Allergens: []string{}, IsVeg: true, CarbonGrams: 150, PopularityScore: 90, Image: image("1622483767028-3f66f32aef97")},
		{ID: "10", Name: "Sprite", Category: domain.CategoryDrink, Unit: "Cans", BaseQuantity: 80, Price: 40, Calories: 140, Allergens: []string{}, IsVeg: true, CarbonGrams: 150, PopularityScore: 85, Image: image("1625772299848-391b6a87d7b3")},
		{ID: "11", Name: "Minute Maid Orange", Category: domain.CategoryDrink, Unit: "Bottles", BaseQuantity: 60, Price: 50, Calories: 110, Allergens: []string{}, IsLowCarbon: true, IsVeg: true, CarbonGrams: 100, PopularityScore: 80, Image: image("1613478223719-2ab802602423")},
	}
}

type historySeed struct {
	id, date, itemID              string
	prepared, consumed, preOrders int
}

var initialHistory = []historySeed{
	{"e1", "2023-10-23", "1", 100, 85, 40},
	{"e2", "2023-10-23", "2", 80, 75, 30},
	{"e3", "2023-10-24", "1", 110, 105, 55},
	{"e4", "2023-10-24", "2", 80, 60, 25},
	{"e5", "2023-10-25", "1", 95, 90, 45},
	{"e6", "2023-10-26", "1", 120, 80, 30},
}

// InitialHistory is a week of ledger entries for the first two menu items.
func InitialHistory() ([]domain.DailyEntry, error) {
	entries := make([]domain.DailyEntry, 0, len(initialHistory))
	for _, s := range initialHistory {
		entry, err := domain.NewDailyEntry(s.id, s.date, s.itemID, s.prepared, s.consumed, s.preOrders, false, "")
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// MenuEntities returns InitialMenu as rows, positioned in catalog order.
func MenuEntities() []*entities.MenuItem {
	items := InitialMenu()
	rows := make([]*entities.MenuItem, 0, len(items))
	for i, item := range items {
		row := menu.ToEntity(item)
		row.Position = i
		rows = append(rows, row)
	}
	return rows
}

func HistoryEntities() ([]*entities.DailyEntry, error) {
	entries, err := InitialHistory()
	if err != nil {
		return nil, err
	}
	rows := make([]*entities.DailyEntry, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, history.ToEntity(entry))
	}
	return rows, nil
}

// Seed inserts the initial catalog and ledger. Rows that already exist are left alone.
func Seed(db *gorm.DB) error {
	menuRows := MenuEntities()
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&menuRows).Error; err != nil {
		return fmt.Errorf("error seeding menu items: %w", err)
	}

	historyRows, err := HistoryEntities()
	if err != nil {
		return err
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&historyRows).Error; err != nil {
		return fmt.Errorf("error seeding history: %w", err)
	}

	fmt.Printf("Seeded %d menu items and %d history entries\n", len(menuRows), len(historyRows))
	return nil
}
