package entities

type MenuItem struct {
	ID                  string  `gorm:"type:varchar(64);primary_key" json:"id"`
	Name                string  `gorm:"not null" json:"name"`
	Category            string  `gorm:"type:varchar(16);not null" json:"category"` // Main, Side, Dessert, Drink
	Description         string  `gorm:"type:text" json:"description,omitempty"`
	Unit                string  `json:"unit"`
	BaseQuantity        int     `json:"base_quantity"`
	Price               float64 `json:"price"`
	Calories            int     `json:"calories"`
	Allergens           string  `gorm:"type:text" json:"allergens"`
	IsLowCarbon         bool    `json:"is_low_carbon"`
	IsVeg               bool    `json:"is_veg"`
	CarbonGrams         float64 `json:"carbon_grams"`
	PopularityScore     int     `json:"popularity_score"`
	Image               string  `json:"image,omitempty"`
	IsFlashSale         bool    `json:"is_flash_sale"`
	FlashSaleStartTime  *int64  `json:"flash_sale_start_time,omitempty"`
	FlashSalePercentage *int    `json:"flash_sale_percentage,omitempty"`
	IsSurpriseDish      bool    `json:"is_surprise_dish"`
	Ingredients         string  `gorm:"type:text" json:"ingredients"`
	// Position keeps catalog order stable across reads.
	Position int `gorm:"not null;default:0;index" json:"position"`

	Timestamp
}
