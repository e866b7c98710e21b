package forecast

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/internal/utils/gemini"
	"SmartCanteen-Backend/pkg/history"
	"SmartCanteen-Backend/pkg/menu"
	"SmartCanteen-Backend/pkg/state"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/singleflight"
)

var errClientNotConfigured = &gemini.Error{Kind: gemini.KindConfig, Err: errors.New("text service client is not configured")}

type (
	ForecastService interface {
		Generate(ctx context.Context, req domain.ForecastRequest) (domain.ForecastResponse, error)
	}

	forecastService struct {
		menuRepository    menu.MenuRepository
		historyRepository history.HistoryRepository
		stateService      state.StateService
		client            gemini.Client
		loc               *time.Location
		now               func() time.Time
		group             singleflight.Group
	}
)

// NewForecastService builds the engine. A nil client runs every forecast on the fallback path.
func NewForecastService(
	menuRepository menu.MenuRepository,
	historyRepository history.HistoryRepository,
	stateService state.StateService,
	client gemini.Client,
	loc *time.Location,
) ForecastService {
	if loc == nil {
		loc = time.Local
	}
	return &forecastService{
		menuRepository:    menuRepository,
		historyRepository: historyRepository,
		stateService:      stateService,
		client:            client,
		loc:               loc,
		now:               time.Now,
	}
}

func (s *forecastService) Generate(ctx context.Context, req domain.ForecastRequest) (domain.ForecastResponse, error) {
	today := s.now().In(s.loc)
	todayDate := today.Format(domain.DateLayout)
	tomorrowDate := today.AddDate(0, 0, 1).Format(domain.DateLayout)

	targetDate := req.TargetDate
	if targetDate == "" {
		targetDate = tomorrowDate
	} else if _, err := time.Parse(domain.DateLayout, targetDate); err != nil {
		return domain.ForecastResponse{}, fmt.Errorf("%w: %q", domain.ErrInvalidTargetDate, targetDate)
	}

	mode, err := s.resolveMode(ctx, req.Mode)
	if err != nil {
		return domain.ForecastResponse{}, err
	}

	var ordersDoc string
	switch targetDate {
	case tomorrowDate:
		ordersDoc = state.DocPreOrdersTomorrow
	case todayDate:
		ordersDoc = state.DocPreOrdersToday
	}

	// Concurrent requests for the same date and mode share one computation.
	key := targetDate + "|" + string(mode)
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.compute(context.WithoutCancel(ctx), targetDate, mode, ordersDoc)
	})
	if err != nil {
		return domain.ForecastResponse{}, err
	}
	return result.(domain.ForecastResponse), nil
}

func (s *forecastService) resolveMode(ctx context.Context, requested domain.OptimizationMode) (domain.OptimizationMode, error) {
	if requested != "" {
		if !requested.Valid() {
			return "", domain.ErrInvalidMode
		}
		return requested, nil
	}

	mode := domain.ModeNormal
	if err := s.stateService.Load(ctx, state.DocOptimizationMode, &mode); err != nil {
		return "", err
	}
	if !mode.Valid() {
		return domain.ModeNormal, nil
	}
	return mode, nil
}

func (s *forecastService) compute(ctx context.Context, targetDate string, mode domain.OptimizationMode, ordersDoc string) (domain.ForecastResponse, error) {
	in, err := s.loadInput(ctx, targetDate, mode, ordersDoc)
	if err != nil {
		return domain.ForecastResponse{}, err
	}

	predictions, err := s.predict(ctx, in)
	predictions, source := withFallback(in, predictions, err)

	return domain.ForecastResponse{
		TargetDate:  targetDate,
		Mode:        mode,
		Source:      source,
		Predictions: predictions,
	}, nil
}

func (s *forecastService) loadInput(ctx context.Context, targetDate string, mode domain.OptimizationMode, ordersDoc string) (Input, error) {
	items, err := s.menuRepository.GetMenuItems(ctx)
	if err != nil {
		return Input{}, err
	}
	if len(items) == 0 {
		return Input{}, domain.ErrEmptyCatalog
	}
	catalog := menu.ToDomainList(items)

	known := make(map[string]struct{}, len(catalog))
	for _, item := range catalog {
		known[item.ID] = struct{}{}
	}

	entries, err := s.historyRepository.GetEntries(ctx, domain.HistoryFilter{})
	if err != nil {
		return Input{}, err
	}
	ledger := make([]domain.DailyEntry, 0, len(entries))
	for _, entry := range entries {
		if _, ok := known[entry.MenuItemID]; !ok {
			continue
		}
		ledger = append(ledger, domain.DailyEntry{
			ID:         entry.ID,
			Date:       entry.Date,
			MenuItemID: entry.MenuItemID,
			Prepared:   entry.Prepared,
			Consumed:   entry.Consumed,
			Waste:      entry.Waste,
			PreOrders:  entry.PreOrders,
			DayOfWeek:  entry.DayOfWeek,
			IsHoliday:  entry.IsHoliday,
		})
	}

	orders := domain.OrderMap{}
	if ordersDoc != "" {
		if err := s.stateService.Load(ctx, ordersDoc, &orders); err != nil {
			return Input{}, err
		}
	}

	return Input{
		Menu:       catalog,
		History:    ledger,
		Orders:     orders,
		Mode:       mode,
		TargetDate: targetDate,
	}, nil
}

// predict asks the text service for the whole forecast. Every failure is a *gemini.Error.
func (s *forecastService) predict(ctx context.Context, in Input) ([]domain.PredictionResult, error) {
	if s.client == nil {
		return nil, errClientNotConfigured
	}

	prompt, err := BuildPrompt(in)
	if err != nil {
		return nil, gemini.Malformed(err)
	}
	text, err := s.client.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var predictions []domain.PredictionResult
	if err := gemini.DecodeJSON(text, &predictions); err != nil {
		return nil, err
	}
	if len(predictions) == 0 {
		return nil, gemini.Malformed(errors.New("prediction array is empty"))
	}
	for _, p := range predictions {
		if err := p.Validate(); err != nil {
			return nil, gemini.Malformed(err)
		}
	}
	return predictions, nil
}

// withFallback maps any failure of the text service to the deterministic forecast.
func withFallback(in Input, predictions []domain.PredictionResult, err error) ([]domain.PredictionResult, domain.ForecastSource) {
	if err == nil {
		return predictions, domain.SourceAI
	}

	var geminiErr *gemini.Error
	if errors.As(err, &geminiErr) {
		log.Warnf("forecast for %s falls back to history (%s): %v", in.TargetDate, geminiErr.Kind, err)
	} else {
		log.Warnf("forecast for %s falls back to history: %v", in.TargetDate, err)
	}
	return Fallback(in), domain.SourceFallback
}
