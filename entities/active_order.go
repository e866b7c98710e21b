package entities

type ActiveOrder struct {
	ID           string `gorm:"type:varchar(32);primary_key" json:"id"`
	Items        string `gorm:"type:text;not null" json:"items"`
	ItemComments string `gorm:"type:text" json:"item_comments"`
	Status       string `gorm:"type:varchar(16);index;not null" json:"status"` // PREPARING, READY, PICKED_UP
	PlacedAt     int64  `gorm:"index" json:"placed_at"`

	Timestamp
}
