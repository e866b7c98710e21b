package recipe

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/internal/utils/gemini"
	"SmartCanteen-Backend/pkg/history"
	"SmartCanteen-Backend/pkg/menu"
	"SmartCanteen-Backend/pkg/state"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
)

type (
	RecipeService interface {
		// GenerateSurpriseDish turns leftovers into a new discounted menu item.
		GenerateSurpriseDish(ctx context.Context, req domain.SurpriseDishRequest) (domain.MenuItem, error)
		AnalyzeWaste(ctx context.Context) (domain.WasteAnalysisResponse, error)
	}

	recipeService struct {
		menuService       menu.MenuService
		historyRepository history.HistoryRepository
		stateService      state.StateService
		client            gemini.Client
	}
)

func NewRecipeService(
	menuService menu.MenuService,
	historyRepository history.HistoryRepository,
	stateService state.StateService,
	client gemini.Client,
) RecipeService {
	return &recipeService{
		menuService:       menuService,
		historyRepository: historyRepository,
		stateService:      stateService,
		client:            client,
	}
}

func (s *recipeService) GenerateSurpriseDish(ctx context.Context, req domain.SurpriseDishRequest) (domain.MenuItem, error) {
	leftovers, err := s.leftovers(ctx, req.MenuItemIDs)
	if err != nil {
		return domain.MenuItem{}, err
	}

	names := make([]string, 0, len(leftovers))
	for _, item := range leftovers {
		names = append(names, item.Name)
	}

	dish, err := s.proposeDish(ctx, names)
	if err != nil {
		log.Warnf("surprise dish falls back to the house fusion: %v", err)
		dish = domain.FallbackSurpriseDish(names)
	}
	if len(dish.Ingredients) == 0 {
		dish.Ingredients = names
	}

	return s.menuService.AddSurpriseDish(ctx, dish)
}

// leftovers resolves the requested items, or everything the kitchen has marked prepared.
func (s *recipeService) leftovers(ctx context.Context, ids []string) ([]domain.MenuItem, error) {
	if len(ids) > 0 {
		items := make([]domain.MenuItem, 0, len(ids))
		for _, id := range ids {
			item, err := s.menuService.GetMenuItem(ctx, id)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	}

	prepared := map[string]int{}
	if err := s.stateService.Load(ctx, state.DocKitchenPrepared, &prepared); err != nil {
		return nil, err
	}
	catalog, err := s.menuService.GetMenu(ctx)
	if err != nil {
		return nil, err
	}

	var items []domain.MenuItem
	for _, item := range catalog {
		if prepared[item.ID] > 0 {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil, domain.ErrNoLeftovers
	}
	return items, nil
}

func (s *recipeService) proposeDish(ctx context.Context, leftoverNames []string) (domain.SurpriseDish, error) {
	if s.client == nil {
		return domain.SurpriseDish{}, &gemini.Error{Kind: gemini.KindConfig, Err: errors.New("text service client is not configured")}
	}

	prompt := fmt.Sprintf(
		"Context: You are a creative Master Chef at SmartCanteen focused on zero waste.\n"+
			"Objective: Create one NEW exciting \"Surprise Dish\" combining these leftovers:\n%s\n\n"+
			"Rules:\n"+
			"1. The name must be catchy and sound fresh (not like leftovers).\n"+
			"2. The description should explain the creative fusion.\n"+
			"3. Return ONLY a JSON object with these fields: name (string), description (string), "+
			"calories (integer), allergens (array of strings), ingredients (array of strings).",
		"- "+strings.Join(leftoverNames, "\n- "),
	)

	text, err := s.client.GenerateText(ctx, prompt)
	if err != nil {
		return domain.SurpriseDish{}, err
	}

	var dish domain.SurpriseDish
	if err := gemini.DecodeJSON(text, &dish); err != nil {
		return domain.SurpriseDish{}, err
	}
	if strings.TrimSpace(dish.Name) == "" {
		return domain.SurpriseDish{}, gemini.Malformed(errors.New("dish has no name"))
	}
	if dish.Calories < 0 {
		return domain.SurpriseDish{}, gemini.Malformed(errors.New("dish has negative calories"))
	}
	return dish, nil
}

// AnalyzeWaste asks for a free-text weekly strategy. Unlike forecasting it has no fallback.
func (s *recipeService) AnalyzeWaste(ctx context.Context) (domain.WasteAnalysisResponse, error) {
	if s.client == nil {
		return domain.WasteAnalysisResponse{}, fmt.Errorf("%w: text service client is not configured", domain.ErrGeminiAPIFailed)
	}

	entries, err := s.historyRepository.GetEntries(ctx, domain.HistoryFilter{})
	if err != nil {
		return domain.WasteAnalysisResponse{}, err
	}
	if len(entries) == 0 {
		return domain.WasteAnalysisResponse{}, domain.ErrNoHistory
	}

	ledger := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		ledger = append(ledger, map[string]interface{}{
			"date":       entry.Date,
			"menuItemId": entry.MenuItemID,
			"prepared":   entry.Prepared,
			"consumed":   entry.Consumed,
			"waste":      entry.Waste,
			"preOrders":  entry.PreOrders,
			"dayOfWeek":  entry.DayOfWeek,
			"isHoliday":  entry.IsHoliday,
		})
	}
	ledgerJSON, err := json.Marshal(ledger)
	if err != nil {
		return domain.WasteAnalysisResponse{}, err
	}

	text, err := s.client.GenerateText(ctx, "Give weekly canteen optimization strategy using this data:\n"+string(ledgerJSON))
	if err != nil {
		return domain.WasteAnalysisResponse{}, fmt.Errorf("%w: %v", domain.ErrGeminiAPIFailed, err)
	}
	return domain.WasteAnalysisResponse{Strategy: text}, nil
}
