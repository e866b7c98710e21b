package history

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/entities"
	"SmartCanteen-Backend/internal/utils/events"
	"SmartCanteen-Backend/internal/utils/mailing"
	"SmartCanteen-Backend/internal/utils/storage"
	"SmartCanteen-Backend/pkg/menu"
	"SmartCanteen-Backend/pkg/plan"
	"SmartCanteen-Backend/pkg/state"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	titles []string
	roles  []domain.UserRole
}

func (r *recordingNotifier) Push(_ context.Context, title, _ string, _ domain.NotificationType, role domain.UserRole) (domain.Notification, error) {
	r.titles = append(r.titles, title)
	r.roles = append(r.roles, role)
	return domain.Notification{Title: title}, nil
}

func (r *recordingNotifier) GetFeed(context.Context, domain.UserRole) (domain.NotificationFeedResponse, error) {
	return domain.NotificationFeedResponse{}, nil
}

func (r *recordingNotifier) MarkAllRead(context.Context, domain.UserRole) error {
	return nil
}

type fixture struct {
	svc      *historyService
	repo     HistoryRepository
	state    state.StateService
	plan     plan.PlanService
	notifier *recordingNotifier
}

type failingStateRepository struct {
	state.StateRepository
	failOn string
}

func (r *failingStateRepository) SaveDocument(ctx context.Context, doc *entities.StateDocument) error {
	if doc.Name == r.failOn {
		return errors.New("disk full")
	}
	return r.StateRepository.SaveDocument(ctx, doc)
}

func newFixture(t *testing.T, entries ...*entities.DailyEntry) fixture {
	return newFixtureWithState(t, state.NewMemoryRepository(), entries...)
}

func newFixtureWithState(t *testing.T, stateRepository state.StateRepository, entries ...*entities.DailyEntry) fixture {
	t.Helper()
	catalog := menu.NewMemoryRepository(
		&entities.MenuItem{ID: "1", Name: "Rice Bowl", Category: "Main", BaseQuantity: 50},
		&entities.MenuItem{ID: "2", Name: "Samosa", Category: "Side", BaseQuantity: 30},
	)
	stateService := state.NewStateService(stateRepository)
	notifier := &recordingNotifier{}
	planService := plan.NewPlanService(stateService, catalog, notifier, events.NoopPublisher(), storage.Disabled(), mailing.NewMailer(mailing.MailConfig{}))
	repo := NewMemoryRepository(entries...)

	svc := NewHistoryService(repo, catalog, planService, stateService, notifier, events.NoopPublisher(), storage.Disabled(), time.UTC).(*historyService)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC) }
	return fixture{svc: svc, repo: repo, state: stateService, plan: planService, notifier: notifier}
}

func intPtr(v int) *int {
	return &v
}

func TestSubmitAuditLog(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.state.Save(ctx, state.DocPreOrdersToday, domain.OrderMap{
		domain.NewOrderKey("1", ""):               2,
		domain.NewOrderKey("1", domain.SizeLarge): 3,
	}))

	entry, err := f.svc.SubmitAuditLog(ctx, domain.AuditLogRequest{
		Date:       "2026-03-09",
		MenuItemID: "1",
		Prepared:   intPtr(100),
		Consumed:   intPtr(85),
	})
	require.NoError(t, err)
	assert.Equal(t, 15, entry.Waste)
	assert.Equal(t, "Monday", entry.DayOfWeek)
	assert.Equal(t, 5, entry.PreOrders)

	today := domain.OrderMap{}
	require.NoError(t, f.state.Load(ctx, state.DocPreOrdersToday, &today))
	assert.Equal(t, domain.OrderMap{domain.NewOrderKey("1", domain.SizeLarge): 3}, today)

	stored, err := f.repo.GetEntries(ctx, domain.HistoryFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestLedgerWrites_RollBackWhenAggregateSaveFails(t *testing.T) {
	ctx := context.Background()
	stateRepository := &failingStateRepository{StateRepository: state.NewMemoryRepository()}
	f := newFixtureWithState(t, stateRepository)
	seeded := domain.OrderMap{
		domain.NewOrderKey("1", ""):               2,
		domain.NewOrderKey("2", domain.SizeSmall): 4,
	}
	require.NoError(t, f.state.Save(ctx, state.DocPreOrdersToday, seeded))

	stateRepository.failOn = state.DocPreOrdersToday
	_, err := f.svc.SubmitAuditLog(ctx, domain.AuditLogRequest{
		Date: "2026-03-09", MenuItemID: "1", Prepared: intPtr(10), Consumed: intPtr(8),
	})
	require.Error(t, err)

	_, err = f.svc.CloseoutWaste(ctx, domain.WasteCloseoutRequest{MenuItemID: "2", Waste: intPtr(3)})
	require.Error(t, err)

	stored, err := f.repo.GetEntries(ctx, domain.HistoryFilter{})
	require.NoError(t, err)
	assert.Empty(t, stored)

	today := domain.OrderMap{}
	require.NoError(t, f.state.Load(ctx, state.DocPreOrdersToday, &today))
	assert.Equal(t, seeded, today)
	assert.Empty(t, f.notifier.titles)
}

func TestSubmitAuditLog_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.SubmitAuditLog(ctx, domain.AuditLogRequest{
		Date: "2026-03-09", MenuItemID: "1", Prepared: intPtr(10), Consumed: intPtr(11),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDailyEntry)

	_, err = f.svc.SubmitAuditLog(ctx, domain.AuditLogRequest{
		Date: "2026-03-09", MenuItemID: "404", Prepared: intPtr(10), Consumed: intPtr(1),
	})
	assert.ErrorIs(t, err, domain.ErrMenuItemNotFound)

	stored, err := f.repo.GetEntries(ctx, domain.HistoryFilter{})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestCloseoutWaste(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.state.Save(ctx, state.DocPreOrdersToday, domain.OrderMap{
		domain.NewOrderKey("1", domain.SizeSmall):   4,
		domain.NewOrderKey("1", domain.SizeLarge):   2,
		domain.NewOrderKey("1", ""):                 3,
		domain.NewOrderKey("2", domain.SizeRegular): 5,
	}))
	require.NoError(t, f.state.Save(ctx, state.DocKitchenPrepared, map[string]int{"1": 6, "2": 1}))

	entry, err := f.svc.CloseoutWaste(ctx, domain.WasteCloseoutRequest{MenuItemID: "1", Waste: intPtr(7)})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", entry.Date)
	assert.Equal(t, 16, entry.Prepared)
	assert.Equal(t, 9, entry.Consumed)
	assert.Equal(t, 7, entry.Waste)
	assert.Equal(t, 9, entry.PreOrders)

	today := domain.OrderMap{}
	require.NoError(t, f.state.Load(ctx, state.DocPreOrdersToday, &today))
	assert.Equal(t, domain.OrderMap{domain.NewOrderKey("2", domain.SizeRegular): 5}, today)

	prepared := map[string]int{}
	require.NoError(t, f.state.Load(ctx, state.DocKitchenPrepared, &prepared))
	assert.Equal(t, map[string]int{"2": 1}, prepared)

	assert.Equal(t, []string{"Audit Logged"}, f.notifier.titles)
	assert.Equal(t, []domain.UserRole{domain.RoleAdmin}, f.notifier.roles)
}

func TestAuditDefaults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	defaults, err := f.svc.AuditDefaults(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 50, defaults.Prepared)
	assert.False(t, defaults.FromPlan)

	_, err = f.plan.Apply(ctx, domain.ApplyPlanRequest{Plan: domain.ProductionPlan{"1": {Quantity: 64}}})
	require.NoError(t, err)

	defaults, err = f.svc.AuditDefaults(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 64, defaults.Prepared)
	assert.True(t, defaults.FromPlan)
}

func ledger(n int) []*entities.DailyEntry {
	out := make([]*entities.DailyEntry, 0, n)
	for i := 0; i < n; i++ {
		entry, _ := domain.NewDailyEntry(fmt.Sprintf("e%d", i), fmt.Sprintf("2026-03-%02d", i+1), "1", 100, 90, 0, false, "")
		out = append(out, ToEntity(entry))
	}
	return out
}

func TestGetDashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ledger(9)...)
	require.NoError(t, f.state.Save(ctx, state.DocPreOrdersToday, domain.OrderMap{
		domain.NewOrderKey("2", domain.SizeSmall): 4,
	}))

	stats, err := f.svc.GetDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 90, stats.TotalWaste)
	assert.Equal(t, 900, stats.TotalPrepared)
	assert.Equal(t, 810, stats.TotalConsumed)
	assert.Equal(t, 90.0, stats.AvgEfficiency)
	assert.Equal(t, 90*CarbonGramsPerWasteUnit, stats.CarbonSavedGrams)
	assert.Equal(t, 4, stats.PendingOrders)
	require.Len(t, stats.LatestEntries, DashboardLatestEntries)
	assert.Equal(t, "2026-03-09", stats.LatestEntries[DashboardLatestEntries-1].Date)
}

func TestGetHistory_Filter(t *testing.T) {
	f := newFixture(t, ledger(5)...)

	entries, err := f.svc.GetHistory(context.Background(), domain.HistoryFilter{From: "2026-03-02", To: "2026-03-03"})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = f.svc.GetHistory(context.Background(), domain.HistoryFilter{From: "yesterday"})
	assert.ErrorIs(t, err, domain.ErrInvalidEntryDate)
}

func TestExportHistory(t *testing.T) {
	ctx := context.Background()
	orphan, _ := domain.NewDailyEntry("x", "2026-03-05", "gone", 10, 0, 0, false, "")
	f := newFixture(t, append(ledger(1), ToEntity(orphan))...)

	resp, data, err := f.svc.ExportHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "smartcanteen_logs_2026-03-10.csv", resp.FileName)
	assert.Equal(t, 2, resp.Rows)
	assert.Empty(t, resp.URL)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Menu Item,Prepared,Consumed,Waste,Pre-Orders,Efficiency %", lines[0])
	assert.Equal(t, "2026-03-01,Rice Bowl,100,90,10,0,90.0%", lines[1])
	assert.Equal(t, "2026-03-05,Unknown,10,0,10,0,0.0%", lines[2])
}

func TestExportHistory_Empty(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.ExportHistory(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoHistory)
}
