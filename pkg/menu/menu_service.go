package menu

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/entities"
	"SmartCanteen-Backend/pkg/state"
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Leftover Alchemist listing defaults.
const (
	SurpriseDishBaseQuantity = 20
	SurpriseDishPrice        = 150
	SurpriseDishCarbonGrams  = 50
	SurpriseDishPopularity   = 100
	SurpriseDishFlashPercent = 40
)

type (
	MenuService interface {
		GetMenu(ctx context.Context) ([]domain.MenuItem, error)
		GetMenuItem(ctx context.Context, id string) (domain.MenuItem, error)
		CreateMenuItem(ctx context.Context, req domain.MenuItemRequest) (domain.MenuItem, error)
		UpdateMenuItem(ctx context.Context, id string, req domain.MenuItemRequest) (domain.MenuItem, error)
		DeleteMenuItem(ctx context.Context, id string) error
		ToggleFlashSale(ctx context.Context, id string, req domain.FlashSaleToggleRequest) (domain.MenuItem, error)
		SetFlashSalePercentage(ctx context.Context, id string, percentage int) (domain.MenuItem, error)
		GetSurplus(ctx context.Context) (domain.SurplusResponse, error)
		Quote(ctx context.Context, req domain.QuoteRequest) (domain.QuoteResponse, error)
		AddSurpriseDish(ctx context.Context, dish domain.SurpriseDish) (domain.MenuItem, error)
		RemoveSurpriseDish(ctx context.Context, id string) error
	}

	menuService struct {
		menuRepository MenuRepository
		stateService   state.StateService
		now            func() time.Time
	}
)

func NewMenuService(menuRepository MenuRepository, stateService state.StateService) MenuService {
	return &menuService{
		menuRepository: menuRepository,
		stateService:   stateService,
		now:            time.Now,
	}
}

func (s *menuService) GetMenu(ctx context.Context) ([]domain.MenuItem, error) {
	items, err := s.menuRepository.GetMenuItems(ctx)
	if err != nil {
		return nil, err
	}
	return ToDomainList(items), nil
}

func (s *menuService) GetMenuItem(ctx context.Context, id string) (domain.MenuItem, error) {
	item, err := s.menuRepository.GetMenuItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.MenuItem{}, domain.ErrMenuItemNotFound
		}
		return domain.MenuItem{}, err
	}
	return ToDomain(item), nil
}

func (s *menuService) CreateMenuItem(ctx context.Context, req domain.MenuItemRequest) (domain.MenuItem, error) {
	if !req.Category.Valid() {
		return domain.MenuItem{}, domain.ErrInvalidCategory
	}

	id := req.ID
	if id == "" {
		id = uuid.New().String()
	} else {
		_, err := s.menuRepository.GetMenuItemByID(ctx, id)
		if err == nil {
			return domain.MenuItem{}, domain.ErrDuplicateMenuItemID
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.MenuItem{}, err
		}
	}

	item := applyRequest(domain.MenuItem{ID: id}, req, s.now())

	position, err := s.menuRepository.NextPosition(ctx)
	if err != nil {
		return domain.MenuItem{}, err
	}
	entity := ToEntity(item)
	entity.Position = position
	if err := s.menuRepository.CreateMenuItem(ctx, entity); err != nil {
		return domain.MenuItem{}, err
	}
	return item, nil
}

func (s *menuService) UpdateMenuItem(ctx context.Context, id string, req domain.MenuItemRequest) (domain.MenuItem, error) {
	if !req.Category.Valid() {
		return domain.MenuItem{}, domain.ErrInvalidCategory
	}

	existing, err := s.menuRepository.GetMenuItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.MenuItem{}, domain.ErrMenuItemNotFound
		}
		return domain.MenuItem{}, err
	}

	item := applyRequest(ToDomain(existing), req, s.now())
	if err := s.save(ctx, existing, item); err != nil {
		return domain.MenuItem{}, err
	}
	return item, nil
}

// applyRequest copies editable fields onto item. Turning the flash sale on stamps
// the start time, keeping it on preserves the original stamp, turning it off clears it.
func applyRequest(item domain.MenuItem, req domain.MenuItemRequest, now time.Time) domain.MenuItem {
	wasFlashSale := item.IsFlashSale && item.FlashSaleStartTime != nil

	item.Name = req.Name
	item.Category = req.Category
	item.Description = req.Description
	item.Unit = req.Unit
	item.BaseQuantity = req.BaseQuantity
	item.Price = req.Price
	item.Calories = req.Calories
	item.Allergens = req.Allergens
	if item.Allergens == nil {
		item.Allergens = []string{}
	}
	item.IsLowCarbon = req.IsLowCarbon
	item.IsVeg = req.IsVeg
	item.CarbonGrams = req.CarbonGrams
	item.PopularityScore = req.PopularityScore
	item.Image = req.Image

	switch {
	case !req.IsFlashSale:
		item.IsFlashSale = false
		item.FlashSaleStartTime = nil
		item.FlashSalePercentage = nil
	case wasFlashSale:
		if req.FlashSalePercentage > 0 {
			pct := req.FlashSalePercentage
			item.FlashSalePercentage = &pct
		}
	default:
		startFlashSale(&item, req.FlashSalePercentage, now)
	}
	return item
}

func startFlashSale(item *domain.MenuItem, percentage int, now time.Time) {
	if percentage <= 0 {
		percentage = domain.DefaultFlashSalePercentage
	}
	start := now.UnixMilli()
	item.IsFlashSale = true
	item.FlashSaleStartTime = &start
	item.FlashSalePercentage = &percentage
}

func (s *menuService) DeleteMenuItem(ctx context.Context, id string) error {
	if err := s.menuRepository.DeleteMenuItem(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrMenuItemNotFound
		}
		return err
	}
	return nil
}

func (s *menuService) ToggleFlashSale(ctx context.Context, id string, req domain.FlashSaleToggleRequest) (domain.MenuItem, error) {
	existing, err := s.menuRepository.GetMenuItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.MenuItem{}, domain.ErrMenuItemNotFound
		}
		return domain.MenuItem{}, err
	}

	item := ToDomain(existing)
	if item.IsFlashSaleActive(s.now()) {
		item.IsFlashSale = false
		item.FlashSaleStartTime = nil
		item.FlashSalePercentage = nil
	} else {
		percentage := req.Percentage
		if percentage == 0 && item.FlashSalePercentage != nil {
			percentage = *item.FlashSalePercentage
		}
		startFlashSale(&item, percentage, s.now())
	}

	if err := s.save(ctx, existing, item); err != nil {
		return domain.MenuItem{}, err
	}
	return item, nil
}

func (s *menuService) SetFlashSalePercentage(ctx context.Context, id string, percentage int) (domain.MenuItem, error) {
	if percentage < 1 || percentage > 100 {
		return domain.MenuItem{}, domain.ErrInvalidFlashSale
	}

	existing, err := s.menuRepository.GetMenuItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.MenuItem{}, domain.ErrMenuItemNotFound
		}
		return domain.MenuItem{}, err
	}

	item := ToDomain(existing)
	item.FlashSalePercentage = &percentage
	if err := s.save(ctx, existing, item); err != nil {
		return domain.MenuItem{}, err
	}
	return item, nil
}

// save writes item over existing, keeping its catalog position and creation time.
func (s *menuService) save(ctx context.Context, existing *entities.MenuItem, item domain.MenuItem) error {
	entity := ToEntity(item)
	entity.Position = existing.Position
	entity.Timestamp = existing.Timestamp
	return s.menuRepository.UpdateMenuItem(ctx, entity)
}

func (s *menuService) loadPlanAndOrders(ctx context.Context) (domain.AppliedPlan, domain.OrderMap, error) {
	var plan domain.AppliedPlan
	if err := s.stateService.Load(ctx, state.DocProductionPlan, &plan); err != nil {
		return domain.AppliedPlan{}, nil, err
	}
	today := domain.OrderMap{}
	if err := s.stateService.Load(ctx, state.DocPreOrdersToday, &today); err != nil {
		return domain.AppliedPlan{}, nil, err
	}
	return plan, today, nil
}

// surplusItems lists items whose planned quantity exceeds today's ordered count
// by more than the surplus threshold. Items missing from the plan count as zero.
func surplusItems(menu []domain.MenuItem, plan domain.ProductionPlan, today domain.OrderMap) []domain.MenuItem {
	out := []domain.MenuItem{}
	if len(plan) == 0 {
		return out
	}
	for _, item := range menu {
		planned, _ := plan.QuantityFor(item.ID, 0)
		if planned > today.QuantityFor(item.ID)+domain.SurplusThreshold {
			out = append(out, item)
		}
	}
	return out
}

func (s *menuService) GetSurplus(ctx context.Context) (domain.SurplusResponse, error) {
	menu, err := s.GetMenu(ctx)
	if err != nil {
		return domain.SurplusResponse{}, err
	}
	plan, today, err := s.loadPlanAndOrders(ctx)
	if err != nil {
		return domain.SurplusResponse{}, err
	}

	surplus := surplusItems(menu, plan.Items, today)
	return domain.SurplusResponse{
		Items:           surplus,
		FlashWindowOpen: domain.IsAutoFlashWindow(s.now()) && len(surplus) > 0,
	}, nil
}

func (s *menuService) Quote(ctx context.Context, req domain.QuoteRequest) (domain.QuoteResponse, error) {
	if err := req.Items.ValidateNew(); err != nil {
		return domain.QuoteResponse{}, err
	}

	menu, err := s.GetMenu(ctx)
	if err != nil {
		return domain.QuoteResponse{}, err
	}
	byID := make(map[string]domain.MenuItem, len(menu))
	for _, item := range menu {
		byID[item.ID] = item
	}

	plan, today, err := s.loadPlanAndOrders(ctx)
	if err != nil {
		return domain.QuoteResponse{}, err
	}
	now := s.now()
	surplusSet := map[string]bool{}
	if domain.IsAutoFlashWindow(now) {
		for _, item := range surplusItems(menu, plan.Items, today) {
			surplusSet[item.ID] = true
		}
	}

	keys := make([]domain.OrderKey, 0, len(req.Items))
	for key := range req.Items {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	resp := domain.QuoteResponse{Lines: make([]domain.QuoteLine, 0, len(keys))}
	for _, key := range keys {
		item, ok := byID[key.ItemID]
		if !ok {
			return domain.QuoteResponse{}, fmt.Errorf("%w: %s", domain.ErrMenuItemNotFound, key.ItemID)
		}
		qty := req.Items[key]

		unitPrice, discount := dynamicPrice(item, key.Size, req.IsPreOrder, surplusSet[item.ID], now)
		line := domain.QuoteLine{
			Key:          key.String(),
			MenuItemID:   item.ID,
			Size:         string(key.Size),
			Quantity:     qty,
			UnitPrice:    unitPrice,
			LineTotal:    unitPrice * float64(qty),
			CarbonSaving: math.Round(item.CarbonGrams * (1.3 - key.Size.Multiplier())),
			Discount:     discount,
		}
		resp.Lines = append(resp.Lines, line)
		resp.TotalItems += qty
		resp.TotalPrice += line.LineTotal
	}
	return resp, nil
}

// dynamicPrice applies the size multiplier, then at most one discount: the
// pre-order discount, the surplus clearance during the auto window, or an
// active manual flash sale, in that order of precedence.
func dynamicPrice(item domain.MenuItem, size domain.PortionSize, isPreOrder, isSurplus bool, now time.Time) (float64, string) {
	price := item.Price * size.Multiplier()
	discount := ""

	switch {
	case isPreOrder:
		price *= 1 - domain.PreOrderDiscount
		discount = "PRE_ORDER"
	case isSurplus:
		price *= 1 - domain.SurplusFlashDiscount
		discount = "SURPLUS_FLASH"
	case item.IsFlashSaleActive(now):
		price *= 1 - float64(item.FlashDiscountPercent())/100
		discount = "FLASH_SALE"
	}
	return math.Round(price), discount
}

func (s *menuService) AddSurpriseDish(ctx context.Context, dish domain.SurpriseDish) (domain.MenuItem, error) {
	percentage := SurpriseDishFlashPercent
	start := s.now().UnixMilli()
	allergens := dish.Allergens
	if allergens == nil {
		allergens = []string{}
	}

	item := domain.MenuItem{
		ID:                  "surprise-" + uuid.New().String(),
		Name:                dish.Name,
		Category:            domain.CategoryMain,
		Description:         dish.Description,
		Unit:                "portion",
		BaseQuantity:        SurpriseDishBaseQuantity,
		Price:               SurpriseDishPrice,
		Calories:            dish.Calories,
		Allergens:           allergens,
		IsLowCarbon:         true,
		CarbonGrams:         SurpriseDishCarbonGrams,
		PopularityScore:     SurpriseDishPopularity,
		IsFlashSale:         true,
		FlashSaleStartTime:  &start,
		FlashSalePercentage: &percentage,
		IsSurpriseDish:      true,
		Ingredients:         dish.Ingredients,
	}

	// Surprise dishes are listed first.
	entity := ToEntity(item)
	entity.Position = -1
	if err := s.menuRepository.CreateMenuItem(ctx, entity); err != nil {
		return domain.MenuItem{}, err
	}
	return item, nil
}

func (s *menuService) RemoveSurpriseDish(ctx context.Context, id string) error {
	item, err := s.GetMenuItem(ctx, id)
	if err != nil {
		return err
	}
	if !item.IsSurpriseDish {
		return domain.ErrNotSurpriseDish
	}
	return s.DeleteMenuItem(ctx, id)
}
