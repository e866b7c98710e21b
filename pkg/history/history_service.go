package history

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/entities"
	"SmartCanteen-Backend/internal/utils/events"
	"SmartCanteen-Backend/internal/utils/storage"
	"SmartCanteen-Backend/pkg/menu"
	"SmartCanteen-Backend/pkg/notification"
	"SmartCanteen-Backend/pkg/plan"
	"SmartCanteen-Backend/pkg/state"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// CarbonGramsPerWasteUnit converts logged waste into the dashboard's CO2e figure.
	CarbonGramsPerWasteUnit = 180
	DashboardLatestEntries  = 7
)

var csvHeader = []string{"Date", "Menu Item", "Prepared", "Consumed", "Waste", "Pre-Orders", "Efficiency %"}

type (
	HistoryService interface {
		SubmitAuditLog(ctx context.Context, req domain.AuditLogRequest) (domain.DailyEntry, error)
		AuditDefaults(ctx context.Context, itemID string) (domain.AuditDefaultsResponse, error)
		CloseoutWaste(ctx context.Context, req domain.WasteCloseoutRequest) (domain.DailyEntry, error)
		GetHistory(ctx context.Context, filter domain.HistoryFilter) ([]domain.DailyEntry, error)
		GetDashboard(ctx context.Context) (domain.DashboardStatsResponse, error)
		ExportHistory(ctx context.Context) (domain.ExportHistoryResponse, []byte, error)
	}

	historyService struct {
		historyRepository   HistoryRepository
		menuRepository      menu.MenuRepository
		planService         plan.PlanService
		stateService        state.StateService
		notificationService notification.NotificationService
		publisher           events.Publisher
		s3                  storage.AwsS3
		loc                 *time.Location
		now                 func() time.Time
	}
)

func NewHistoryService(
	historyRepository HistoryRepository,
	menuRepository menu.MenuRepository,
	planService plan.PlanService,
	stateService state.StateService,
	notificationService notification.NotificationService,
	publisher events.Publisher,
	s3 storage.AwsS3,
	loc *time.Location,
) HistoryService {
	if loc == nil {
		loc = time.Local
	}
	return &historyService{
		historyRepository:   historyRepository,
		menuRepository:      menuRepository,
		planService:         planService,
		stateService:        stateService,
		notificationService: notificationService,
		publisher:           publisher,
		s3:                  s3,
		loc:                 loc,
		now:                 time.Now,
	}
}

func (s *historyService) today() string {
	return s.now().In(s.loc).Format(domain.DateLayout)
}

func (s *historyService) getMenuItem(ctx context.Context, id string) (*entities.MenuItem, error) {
	item, err := s.menuRepository.GetMenuItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMenuItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *historyService) SubmitAuditLog(ctx context.Context, req domain.AuditLogRequest) (domain.DailyEntry, error) {
	if req.Prepared == nil || req.Consumed == nil {
		return domain.DailyEntry{}, fmt.Errorf("%w: prepared and consumed are required", domain.ErrInvalidDailyEntry)
	}
	if _, err := s.getMenuItem(ctx, req.MenuItemID); err != nil {
		return domain.DailyEntry{}, err
	}

	return s.recordEntry(ctx, func(today domain.OrderMap) (domain.DailyEntry, error) {
		entry, err := domain.NewDailyEntry(
			uuid.New().String(),
			req.Date,
			req.MenuItemID,
			*req.Prepared,
			*req.Consumed,
			today.QuantityFor(req.MenuItemID),
			req.IsHoliday,
			req.QualitativeFeedback,
		)
		if err != nil {
			return domain.DailyEntry{}, err
		}
		// Only the legacy bare key is settled by a manual audit.
		delete(today, domain.NewOrderKey(req.MenuItemID, ""))
		return entry, nil
	})
}

// recordEntry appends the entry built from today's aggregate and saves the settled
// aggregate under one lock. A failed save removes the appended row again.
func (s *historyService) recordEntry(ctx context.Context, build func(today domain.OrderMap) (domain.DailyEntry, error)) (domain.DailyEntry, error) {
	var (
		entry   domain.DailyEntry
		created bool
	)
	today := domain.OrderMap{}
	err := s.stateService.Update(ctx, state.DocPreOrdersToday, &today, func() error {
		var err error
		entry, err = build(today)
		if err != nil {
			return err
		}
		if err := s.historyRepository.CreateEntry(ctx, ToEntity(entry)); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		if created {
			if delErr := s.historyRepository.DeleteEntry(ctx, entry.ID); delErr != nil {
				log.Errorf("failed to roll back ledger entry %s: %v", entry.ID, delErr)
			}
		}
		return domain.DailyEntry{}, err
	}
	return entry, nil
}

func (s *historyService) AuditDefaults(ctx context.Context, itemID string) (domain.AuditDefaultsResponse, error) {
	quantity, fromPlan, err := s.planService.PlannedQuantity(ctx, itemID)
	if err != nil {
		return domain.AuditDefaultsResponse{}, err
	}
	return domain.AuditDefaultsResponse{
		MenuItemID: itemID,
		Prepared:   quantity,
		FromPlan:   fromPlan,
	}, nil
}

func (s *historyService) CloseoutWaste(ctx context.Context, req domain.WasteCloseoutRequest) (domain.DailyEntry, error) {
	if req.Waste == nil || *req.Waste < 0 {
		return domain.DailyEntry{}, fmt.Errorf("%w: waste must not be negative", domain.ErrInvalidDailyEntry)
	}
	item, err := s.getMenuItem(ctx, req.MenuItemID)
	if err != nil {
		return domain.DailyEntry{}, err
	}

	entry, err := s.recordEntry(ctx, func(today domain.OrderMap) (domain.DailyEntry, error) {
		ordered := today.QuantityFor(req.MenuItemID)
		entry, err := domain.NewDailyEntry(
			uuid.New().String(),
			s.today(),
			req.MenuItemID,
			ordered+*req.Waste,
			ordered,
			ordered,
			false,
			"",
		)
		if err != nil {
			return domain.DailyEntry{}, err
		}
		today.Clear(req.MenuItemID)
		return entry, nil
	})
	if err != nil {
		return domain.DailyEntry{}, err
	}

	prepared := map[string]int{}
	if err := s.stateService.Update(ctx, state.DocKitchenPrepared, &prepared, func() error {
		delete(prepared, req.MenuItemID)
		return nil
	}); err != nil {
		log.Warnf("failed to reset kitchen counter for %s: %v", req.MenuItemID, err)
	}

	if _, err := s.notificationService.Push(
		ctx,
		"Audit Logged",
		fmt.Sprintf("Waste data for %s saved to historical records.", item.Name),
		domain.NotificationInfo,
		domain.RoleAdmin,
	); err != nil {
		log.Warnf("failed to notify audit logged: %v", err)
	}
	if err := s.publisher.Publish(ctx, events.TypeWasteLogged, entry.MenuItemID, entry); err != nil {
		log.Warnf("failed to publish waste closeout: %v", err)
	}

	return entry, nil
}

func (s *historyService) GetHistory(ctx context.Context, filter domain.HistoryFilter) ([]domain.DailyEntry, error) {
	if filter.From != "" {
		if _, err := time.Parse(domain.DateLayout, filter.From); err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidEntryDate, filter.From)
		}
	}
	if filter.To != "" {
		if _, err := time.Parse(domain.DateLayout, filter.To); err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidEntryDate, filter.To)
		}
	}

	entries, err := s.historyRepository.GetEntries(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toDomainList(entries), nil
}

func (s *historyService) GetDashboard(ctx context.Context) (domain.DashboardStatsResponse, error) {
	entries, err := s.GetHistory(ctx, domain.HistoryFilter{})
	if err != nil {
		return domain.DashboardStatsResponse{}, err
	}
	today := domain.OrderMap{}
	if err := s.stateService.Load(ctx, state.DocPreOrdersToday, &today); err != nil {
		return domain.DashboardStatsResponse{}, err
	}

	stats := domain.DashboardStatsResponse{PendingOrders: today.Total()}
	for _, entry := range entries {
		stats.TotalWaste += entry.Waste
		stats.TotalPrepared += entry.Prepared
		stats.TotalConsumed += entry.Consumed
	}
	if stats.TotalPrepared > 0 {
		efficiency := float64(stats.TotalPrepared-stats.TotalWaste) / float64(stats.TotalPrepared) * 100
		stats.AvgEfficiency = math.Round(efficiency*10) / 10
	}
	stats.CarbonSavedGrams = stats.TotalWaste * CarbonGramsPerWasteUnit

	start := len(entries) - DashboardLatestEntries
	if start < 0 {
		start = 0
	}
	stats.LatestEntries = entries[start:]
	return stats, nil
}

func (s *historyService) ExportHistory(ctx context.Context) (domain.ExportHistoryResponse, []byte, error) {
	entries, err := s.GetHistory(ctx, domain.HistoryFilter{})
	if err != nil {
		return domain.ExportHistoryResponse{}, nil, err
	}
	if len(entries) == 0 {
		return domain.ExportHistoryResponse{}, nil, domain.ErrNoHistory
	}

	items, err := s.menuRepository.GetMenuItems(ctx)
	if err != nil {
		return domain.ExportHistoryResponse{}, nil, err
	}
	names := make(map[string]string, len(items))
	for _, item := range items {
		names[item.ID] = item.Name
	}

	data, err := renderCSV(entries, names)
	if err != nil {
		return domain.ExportHistoryResponse{}, nil, err
	}

	resp := domain.ExportHistoryResponse{
		FileName: fmt.Sprintf("smartcanteen_logs_%s.csv", s.today()),
		Rows:     len(entries),
	}
	if s.s3.Enabled() {
		key, err := s.s3.UploadBytes(ctx, "exports/"+resp.FileName, storage.ContentTypeCSV, data)
		if err != nil {
			return domain.ExportHistoryResponse{}, nil, err
		}
		resp.URL = s.s3.GetPublicLinkKey(key)
	}
	return resp, data, nil
}

// renderCSV writes one row per entry. Entries whose item left the catalog are labelled Unknown.
func renderCSV(entries []domain.DailyEntry, names map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		name, ok := names[entry.MenuItemID]
		if !ok {
			name = "Unknown"
		}
		efficiency := "0%"
		if entry.Prepared > 0 {
			efficiency = strconv.FormatFloat(entry.Efficiency(), 'f', 1, 64) + "%"
		}
		if err := writer.Write([]string{
			entry.Date,
			name,
			strconv.Itoa(entry.Prepared),
			strconv.Itoa(entry.Consumed),
			strconv.Itoa(entry.Waste),
			strconv.Itoa(entry.PreOrders),
			efficiency,
		}); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToEntity converts a ledger entry for storage.
func ToEntity(entry domain.DailyEntry) *entities.DailyEntry {
	return &entities.DailyEntry{
		ID:                  entry.ID,
		Date:                entry.Date,
		MenuItemID:          entry.MenuItemID,
		Prepared:            entry.Prepared,
		Consumed:            entry.Consumed,
		Waste:               entry.Waste,
		PreOrders:           entry.PreOrders,
		DayOfWeek:           entry.DayOfWeek,
		IsHoliday:           entry.IsHoliday,
		QualitativeFeedback: entry.QualitativeFeedback,
	}
}

func toDomainList(entries []*entities.DailyEntry) []domain.DailyEntry {
	out := make([]domain.DailyEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, domain.DailyEntry{
			ID:                  entry.ID,
			Date:                entry.Date,
			MenuItemID:          entry.MenuItemID,
			Prepared:            entry.Prepared,
			Consumed:            entry.Consumed,
			Waste:               entry.Waste,
			PreOrders:           entry.PreOrders,
			DayOfWeek:           entry.DayOfWeek,
			IsHoliday:           entry.IsHoliday,
			QualitativeFeedback: entry.QualitativeFeedback,
		})
	}
	return out
}
