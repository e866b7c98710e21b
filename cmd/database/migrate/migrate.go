package migration

import (
	"SmartCanteen-Backend/entities"
	"fmt"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";").Error; err != nil {
		return fmt.Errorf("error enabling uuid-ossp: %w", err)
	}

	models := []struct {
		name  string
		model interface{}
	}{
		{"menu item", &entities.MenuItem{}},
		{"daily entry", &entities.DailyEntry{}},
		{"active order", &entities.ActiveOrder{}},
		{"notification", &entities.Notification{}},
		{"state document", &entities.StateDocument{}},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m.model); err != nil {
			return fmt.Errorf("error migrating %s table: %w", m.name, err)
		}
	}

	fmt.Println("Database migration complete")
	return nil
}
