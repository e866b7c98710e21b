package routes

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/entities"
	"SmartCanteen-Backend/internal/api/handlers"
	"SmartCanteen-Backend/internal/middleware"
	"SmartCanteen-Backend/internal/utils"
	"SmartCanteen-Backend/internal/utils/events"
	"SmartCanteen-Backend/internal/utils/mailing"
	"SmartCanteen-Backend/internal/utils/storage"
	"SmartCanteen-Backend/pkg/forecast"
	"SmartCanteen-Backend/pkg/history"
	"SmartCanteen-Backend/pkg/jwt"
	"SmartCanteen-Backend/pkg/menu"
	"SmartCanteen-Backend/pkg/notification"
	"SmartCanteen-Backend/pkg/order"
	"SmartCanteen-Backend/pkg/plan"
	"SmartCanteen-Backend/pkg/recipe"
	"SmartCanteen-Backend/pkg/settings"
	"SmartCanteen-Backend/pkg/state"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	utils.InitValidator()

	adminHash, err := bcrypt.GenerateFromPassword([]byte("4321"), bcrypt.MinCost)
	require.NoError(t, err)

	entry, err := domain.NewDailyEntry("e1", "2026-03-09", "1", 100, 80, 10, false, "")
	require.NoError(t, err)

	publisher := events.NoopPublisher()
	mailer := mailing.NewMailer(mailing.MailConfig{})
	s3 := storage.Disabled()

	menuRepository := menu.NewMemoryRepository(
		&entities.MenuItem{ID: "1", Name: "Rice Bowl", Category: "Main", BaseQuantity: 50, Price: 100},
		&entities.MenuItem{ID: "2", Name: "Samosa", Category: "Side", BaseQuantity: 30, Price: 40},
	)
	historyRepository := history.NewMemoryRepository(history.ToEntity(entry))

	jwtService := jwt.NewJWTServiceWithSecret("test-secret")
	stateService := state.NewStateService(state.NewMemoryRepository())
	notificationService := notification.NewNotificationService(notification.NewMemoryRepository(), publisher, mailer)
	menuService := menu.NewMenuService(menuRepository, stateService)
	planService := plan.NewPlanService(stateService, menuRepository, notificationService, publisher, s3, mailer)
	historyService := history.NewHistoryService(historyRepository, menuRepository, planService, stateService, notificationService, publisher, s3, time.UTC)
	forecastService := forecast.NewForecastService(menuRepository, historyRepository, stateService, nil, time.UTC)
	orderService := order.NewOrderService(order.NewMemoryRepository(), menuRepository, planService, stateService, notificationService, publisher)
	recipeService := recipe.NewRecipeService(menuService, historyRepository, stateService, nil)
	settingsService := settings.NewSettingsService(stateService, jwtService, map[domain.UserRole]string{domain.RoleAdmin: string(adminHash)})

	app := fiber.New()
	config := Config{
		App:                 app,
		SettingsHandler:     handlers.NewSettingsHandler(settingsService, utils.Validate),
		MenuHandler:         handlers.NewMenuHandler(menuService, recipeService, utils.Validate),
		HistoryHandler:      handlers.NewHistoryHandler(historyService, recipeService, utils.Validate),
		OrderHandler:        handlers.NewOrderHandler(orderService, utils.Validate),
		ForecastHandler:     handlers.NewForecastHandler(forecastService, planService, utils.Validate),
		NotificationHandler: handlers.NewNotificationHandler(notificationService),
		Middleware:          middleware.NewMiddleware(nil),
		JWTService:          jwtService,
	}
	config.Setup()
	return app
}

func do(t *testing.T, app *fiber.App, method, path, token, body string) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func startSession(t *testing.T, app *fiber.App, role domain.UserRole, pin string) string {
	t.Helper()
	resp, env := do(t, app, fiber.MethodPost, "/api/v1/session", "", `{"role":"`+string(role)+`","pin":"`+pin+`"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Error)

	var session domain.SessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &session))
	return session.Token
}

func TestPing(t *testing.T) {
	app := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMenu_RoleChecks(t *testing.T) {
	app := newTestApp(t)

	resp, env := do(t, app, fiber.MethodGet, "/api/v1/menu", "", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var items []domain.MenuItem
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 2)

	resp, _ = do(t, app, fiber.MethodGet, "/api/v1/menu/404", "", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	body := `{"name":"Kheer","category":"Dessert","unit":"Bowls","baseQuantity":20,"price":60}`
	resp, _ = do(t, app, fiber.MethodPost, "/api/v1/menu", "", body)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = do(t, app, fiber.MethodPost, "/api/v1/session", "", `{"role":"ADMIN","pin":"0000"}`)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	admin := startSession(t, app, domain.RoleAdmin, "4321")
	resp, env = do(t, app, fiber.MethodPost, "/api/v1/menu", admin, body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Error)

	resp, _ = do(t, app, fiber.MethodGet, "/api/v1/menu", "not-a-token", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestOrderFlow(t *testing.T) {
	app := newTestApp(t)

	resp, env := do(t, app, fiber.MethodPost, "/api/v1/orders", "", `{"items":{"1:REGULAR":2,"2:SMALL":1}}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Error)
	var placed domain.ActiveOrder
	require.NoError(t, json.Unmarshal(env.Data, &placed))
	assert.Equal(t, domain.StatusPreparing, placed.Status)

	resp, _ = do(t, app, fiber.MethodPost, "/api/v1/orders", "", `{"items":{"1":2}}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, fiber.MethodPost, "/api/v1/orders", "", `{"items":{"1:LARGE":60}}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	statusPath := "/api/v1/orders/" + placed.ID + "/status"
	resp, _ = do(t, app, fiber.MethodPatch, statusPath, "", `{"status":"READY"}`)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	staff := startSession(t, app, domain.RoleStaff, "")
	resp, env = do(t, app, fiber.MethodPatch, statusPath, staff, `{"status":"READY"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Error)

	resp, _ = do(t, app, fiber.MethodPatch, statusPath, staff, `{"status":"PREPARING"}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, env = do(t, app, fiber.MethodGet, "/api/v1/orders/counts", "", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var counts domain.OrderCountsResponse
	require.NoError(t, json.Unmarshal(env.Data, &counts))
	assert.Equal(t, domain.OrderCountsResponse{Ready: 1}, counts)

	resp, env = do(t, app, fiber.MethodGet, "/api/v1/notifications", "", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var feed domain.NotificationFeedResponse
	require.NoError(t, json.Unmarshal(env.Data, &feed))
	require.Len(t, feed.Notifications, 2)
	assert.Equal(t, "Order Ready", feed.Notifications[0].Title)

	resp, _ = do(t, app, fiber.MethodGet, "/api/v1/kitchen/queue", "", "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp, _ = do(t, app, fiber.MethodGet, "/api/v1/kitchen/queue", staff, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHistoryEndpoints(t *testing.T) {
	app := newTestApp(t)
	admin := startSession(t, app, domain.RoleAdmin, "4321")

	resp, _ := do(t, app, fiber.MethodGet, "/api/v1/history", "", "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/history/export", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+admin)
	csvResp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, csvResp.StatusCode)
	assert.Equal(t, "text/csv", csvResp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, csvResp.Header.Get(fiber.HeaderContentDisposition), "smartcanteen_logs_")
	raw, err := io.ReadAll(csvResp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "Date,Menu Item,Prepared,Consumed,Waste,Pre-Orders,Efficiency %"))
	assert.Contains(t, string(raw), "Rice Bowl")

	resp, env := do(t, app, fiber.MethodPost, "/api/v1/history/audit", admin, `{"date":"2026-03-10","menuItemId":"2","prepared":10,"consumed":12}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, env.Error)

	resp, env = do(t, app, fiber.MethodPost, "/api/v1/history/audit", admin, `{"date":"2026-03-10","menuItemId":"2","prepared":12,"consumed":10}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Error)
	var entry domain.DailyEntry
	require.NoError(t, json.Unmarshal(env.Data, &entry))
	assert.Equal(t, 2, entry.Waste)

	// no text service is configured, and analysis has no fallback
	resp, _ = do(t, app, fiber.MethodGet, "/api/v1/history/analysis", admin, "")
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestForecastAndPlan(t *testing.T) {
	app := newTestApp(t)
	admin := startSession(t, app, domain.RoleAdmin, "4321")

	resp, _ := do(t, app, fiber.MethodPost, "/api/v1/forecasts", "", "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, env := do(t, app, fiber.MethodPost, "/api/v1/forecasts", admin, `{"targetDate":"2030-01-07","mode":"FEST"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Error)
	var forecastRes domain.ForecastResponse
	require.NoError(t, json.Unmarshal(env.Data, &forecastRes))
	assert.Equal(t, domain.SourceFallback, forecastRes.Source)
	require.Len(t, forecastRes.Predictions, 2)

	body, err := json.Marshal(domain.ApplyPlanRequest{Predictions: forecastRes.Predictions})
	require.NoError(t, err)
	resp, env = do(t, app, fiber.MethodPost, "/api/v1/plan", admin, string(body))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Error)

	resp, env = do(t, app, fiber.MethodGet, "/api/v1/plan", "", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var current domain.AppliedPlan
	require.NoError(t, json.Unmarshal(env.Data, &current))
	assert.Equal(t, forecastRes.Predictions[0].PredictedQuantity, current.Items["1"].Quantity)

	resp, env = do(t, app, fiber.MethodPut, "/api/v1/settings/mode", admin, `{"mode":"EXAM"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Error)
	resp, _ = do(t, app, fiber.MethodPut, "/api/v1/settings/mode", admin, `{"mode":"HOLIDAY"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
