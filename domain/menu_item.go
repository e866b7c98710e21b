package domain

import (
	"errors"
	"time"
)

type Category string

const (
	CategoryMain    Category = "Main"
	CategorySide    Category = "Side"
	CategoryDessert Category = "Dessert"
	CategoryDrink   Category = "Drink"
)

const (
	FlashSaleWindow            = 10 * time.Minute
	DefaultFlashSalePercentage = 50
	SurplusThreshold           = 3
	PreOrderDiscount           = 0.05
	SurplusFlashDiscount       = 0.5
)

var (
	MessageSuccessGetMenu         = "menu retrieved successfully"
	MessageSuccessGetMenuItem     = "menu item retrieved successfully"
	MessageSuccessCreateMenuItem  = "menu item created successfully"
	MessageSuccessUpdateMenuItem  = "menu item updated successfully"
	MessageSuccessDeleteMenuItem  = "menu item deleted successfully"
	MessageSuccessToggleFlashSale = "flash sale updated successfully"
	MessageSuccessGetSurplus      = "surplus items retrieved successfully"
	MessageSuccessQuote           = "price quote calculated successfully"
	MessageSuccessCreateSurprise  = "surprise dish created successfully"
	MessageSuccessRemoveSurprise  = "surprise dish removed successfully"
	MessageFailedGetMenu          = "failed to retrieve menu"
	MessageFailedGetMenuItem      = "failed to retrieve menu item"
	MessageFailedCreateMenuItem   = "failed to create menu item"
	MessageFailedUpdateMenuItem   = "failed to update menu item"
	MessageFailedDeleteMenuItem   = "failed to delete menu item"
	MessageFailedToggleFlashSale  = "failed to update flash sale"
	MessageFailedGetSurplus       = "failed to retrieve surplus items"
	MessageFailedQuote            = "failed to calculate price quote"
	MessageFailedCreateSurprise   = "failed to create surprise dish"
	MessageFailedRemoveSurprise   = "failed to remove surprise dish"

	ErrMenuItemNotFound    = errors.New("menu item not found")
	ErrInvalidCategory     = errors.New("invalid menu category")
	ErrInvalidFlashSale    = errors.New("flash sale percentage must be between 1 and 100")
	ErrNotSurpriseDish     = errors.New("menu item is not a surprise dish")
	ErrNoLeftovers         = errors.New("no leftover items selected")
	ErrDuplicateMenuItemID = errors.New("menu item id already exists")
)

func (c Category) Valid() bool {
	switch c {
	case CategoryMain, CategorySide, CategoryDessert, CategoryDrink:
		return true
	}
	return false
}

type (
	MenuItem struct {
		ID                  string   `json:"id"`
		Name                string   `json:"name"`
		Category            Category `json:"category"`
		Description         string   `json:"description,omitempty"`
		Unit                string   `json:"unit"`
		BaseQuantity        int      `json:"baseQuantity"`
		Price               float64  `json:"price"`
		Calories            int      `json:"calories"`
		Allergens           []string `json:"allergens"`
		IsLowCarbon         bool     `json:"isLowCarbon"`
		IsVeg               bool     `json:"isVeg"`
		CarbonGrams         float64  `json:"carbonGrams"`
		PopularityScore     int      `json:"popularityScore"`
		Image               string   `json:"image,omitempty"`
		IsFlashSale         bool     `json:"isFlashSale"`
		FlashSaleStartTime  *int64   `json:"flashSaleStartTime,omitempty"`
		FlashSalePercentage *int     `json:"flashSalePercentage,omitempty"`
		IsSurpriseDish      bool     `json:"isSurpriseDish"`
		Ingredients         []string `json:"ingredients,omitempty"`
	}

	MenuItemRequest struct {
		ID                  string   `json:"id" validate:"omitempty,max=64"`
		Name                string   `json:"name" validate:"required"`
		Category            Category `json:"category" validate:"required,oneof=Main Side Dessert Drink"`
		Description         string   `json:"description"`
		Unit                string   `json:"unit" validate:"required"`
		BaseQuantity        int      `json:"baseQuantity" validate:"min=0"`
		Price               float64  `json:"price" validate:"min=0"`
		Calories            int      `json:"calories" validate:"min=0"`
		Allergens           []string `json:"allergens"`
		IsLowCarbon         bool     `json:"isLowCarbon"`
		IsVeg               bool     `json:"isVeg"`
		CarbonGrams         float64  `json:"carbonGrams" validate:"min=0"`
		PopularityScore     int      `json:"popularityScore" validate:"min=0,max=100"`
		Image               string   `json:"image" validate:"omitempty,url"`
		IsFlashSale         bool     `json:"isFlashSale"`
		FlashSalePercentage int      `json:"flashSalePercentage" validate:"omitempty,min=1,max=100"`
	}

	FlashSaleToggleRequest struct {
		Percentage int `json:"percentage" validate:"omitempty,min=1,max=100"`
	}

	FlashSalePercentageRequest struct {
		Percentage int `json:"percentage" validate:"required,min=1,max=100"`
	}

	QuoteRequest struct {
		Items      OrderMap `json:"items" validate:"required"`
		IsPreOrder bool     `json:"isPreOrder"`
	}

	QuoteLine struct {
		Key          string  `json:"key"`
		MenuItemID   string  `json:"menuItemId"`
		Size         string  `json:"size"`
		Quantity     int     `json:"quantity"`
		UnitPrice    float64 `json:"unitPrice"`
		LineTotal    float64 `json:"lineTotal"`
		CarbonSaving float64 `json:"carbonSaving"`
		Discount     string  `json:"discount,omitempty"`
	}

	QuoteResponse struct {
		Lines      []QuoteLine `json:"lines"`
		TotalItems int         `json:"totalItems"`
		TotalPrice float64     `json:"totalPrice"`
	}

	SurplusResponse struct {
		Items           []MenuItem `json:"items"`
		FlashWindowOpen bool       `json:"flashWindowOpen"`
	}

	SurpriseDishRequest struct {
		MenuItemIDs []string `json:"menuItemIds" validate:"omitempty,dive,required"`
	}
)

// IsFlashSaleActive reports whether a manually started flash sale is still inside its window.
func (m MenuItem) IsFlashSaleActive(now time.Time) bool {
	if !m.IsFlashSale || m.FlashSaleStartTime == nil {
		return false
	}
	elapsed := now.Sub(time.UnixMilli(*m.FlashSaleStartTime))
	return elapsed < FlashSaleWindow
}

// FlashDiscountPercent falls back to the default when the item has no explicit percentage.
func (m MenuItem) FlashDiscountPercent() int {
	if m.FlashSalePercentage == nil || *m.FlashSalePercentage <= 0 {
		return DefaultFlashSalePercentage
	}
	return *m.FlashSalePercentage
}

// IsAutoFlashWindow is the afternoon clearance window, 15:15 until 16:00 local time.
func IsAutoFlashWindow(now time.Time) bool {
	minutes := now.Hour()*60 + now.Minute()
	return minutes >= 15*60+15 && minutes < 16*60
}
