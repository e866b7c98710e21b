package entities

import (
	"time"
)

// DailyEntry rows are append-only. MenuItemID is deliberately not a foreign key:
// entries for removed menu items stay in the ledger and are filtered at read time.
type DailyEntry struct {
	ID                  string    `gorm:"type:varchar(64);primary_key" json:"id"`
	Date                string    `gorm:"type:varchar(10);index;not null" json:"date"`
	MenuItemID          string    `gorm:"type:varchar(64);index;not null" json:"menu_item_id"`
	Prepared            int       `json:"prepared"`
	Consumed            int       `json:"consumed"`
	Waste               int       `json:"waste"`
	PreOrders           int       `json:"pre_orders"`
	DayOfWeek           string    `json:"day_of_week"`
	IsHoliday           bool      `json:"is_holiday"`
	QualitativeFeedback string    `gorm:"type:text" json:"qualitative_feedback,omitempty"`
	CreatedAt           time.Time `gorm:"type:timestamp;autoCreateTime;index" json:"created_at"`
}
