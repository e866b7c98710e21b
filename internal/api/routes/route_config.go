package routes

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/internal/api/handlers"
	"SmartCanteen-Backend/internal/middleware"
	"SmartCanteen-Backend/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App                 *fiber.App
	SettingsHandler     handlers.SettingsHandler
	MenuHandler         handlers.MenuHandler
	HistoryHandler      handlers.HistoryHandler
	OrderHandler        handlers.OrderHandler
	ForecastHandler     handlers.ForecastHandler
	NotificationHandler handlers.NotificationHandler
	Middleware          middleware.Middleware
	JWTService          jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.GuestRoute()
	c.Session()
	c.Menu()
	c.History()
	c.Orders()
	c.Kitchen()
	c.Forecasts()
	c.Settings()
	c.Notifications()
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong, its works. test"})
	})
}

func (c *Config) auth() fiber.Handler {
	return c.Middleware.AuthMiddleware(c.JWTService)
}

func (c *Config) Session() {
	c.App.Post("/api/v1/session", c.SettingsHandler.StartSession)
}

func (c *Config) Menu() {
	menu := c.App.Group("/api/v1/menu", c.auth())
	staff := c.Middleware.RequireRole(domain.RoleStaff)
	admin := c.Middleware.RequireRole(domain.RoleAdmin)

	// static paths first so they are not captured by /:id
	menu.Get("/surplus", c.MenuHandler.GetSurplus)
	menu.Post("/quote", c.MenuHandler.Quote)
	menu.Post("/surprise", staff, c.MenuHandler.CreateSurpriseDish)
	menu.Delete("/surprise/:id", staff, c.MenuHandler.RemoveSurpriseDish)

	menu.Get("", c.MenuHandler.GetMenu)
	menu.Get("/:id", c.MenuHandler.GetMenuItem)
	menu.Post("", admin, c.MenuHandler.CreateMenuItem)
	menu.Put("/:id", admin, c.MenuHandler.UpdateMenuItem)
	menu.Delete("/:id", admin, c.MenuHandler.DeleteMenuItem)

	menu.Post("/:id/flash-sale", staff, c.MenuHandler.ToggleFlashSale)
	menu.Post("/:id/flash-sale/percentage", staff, c.MenuHandler.SetFlashSalePercentage)
}

func (c *Config) History() {
	history := c.App.Group("/api/v1/history", c.auth())
	admin := c.Middleware.RequireRole(domain.RoleAdmin)

	history.Post("/closeout", c.Middleware.RequireRole(domain.RoleStaff), c.HistoryHandler.CloseoutWaste)

	history.Get("", admin, c.HistoryHandler.GetHistory)
	history.Post("/audit", admin, c.HistoryHandler.SubmitAuditLog)
	history.Get("/audit/defaults/:itemId", admin, c.HistoryHandler.GetAuditDefaults)
	history.Get("/dashboard", admin, c.HistoryHandler.GetDashboard)
	history.Get("/export", admin, c.HistoryHandler.ExportHistory)
	history.Get("/analysis", admin, c.HistoryHandler.AnalyzeWaste)
}

func (c *Config) Orders() {
	orders := c.App.Group("/api/v1/orders", c.auth())
	{
		orders.Post("", c.OrderHandler.ConfirmOrder)
		orders.Get("", c.OrderHandler.GetOrders)
		orders.Get("/counts", c.OrderHandler.GetOrderCounts)
		orders.Post("/last/items", c.OrderHandler.AddToLastOrder)
		orders.Patch("/:id/status", c.Middleware.RequireRole(domain.RoleStaff), c.OrderHandler.UpdateStatus)
	}

	preOrders := c.App.Group("/api/v1/preorders", c.auth())
	{
		preOrders.Get("", c.OrderHandler.GetPreOrders)
		preOrders.Post("", c.OrderHandler.ConfirmPreOrder)
		preOrders.Patch("", c.OrderHandler.AdjustPreOrder)
	}
}

func (c *Config) Kitchen() {
	kitchen := c.App.Group("/api/v1/kitchen", c.auth(), c.Middleware.RequireRole(domain.RoleStaff))
	kitchen.Get("/queue", c.OrderHandler.GetKitchenQueue)
	kitchen.Post("/prepared", c.OrderHandler.MarkPrepared)
}

func (c *Config) Forecasts() {
	admin := c.Middleware.RequireRole(domain.RoleAdmin)

	c.App.Post("/api/v1/forecasts", c.auth(), admin, c.ForecastHandler.GenerateForecast)
	c.App.Get("/api/v1/plan", c.auth(), c.ForecastHandler.GetPlan)
	c.App.Post("/api/v1/plan", c.auth(), admin, c.ForecastHandler.ApplyPlan)
}

func (c *Config) Settings() {
	settings := c.App.Group("/api/v1/settings", c.auth(), c.Middleware.RequireRole(domain.RoleAdmin))
	settings.Get("/mode", c.SettingsHandler.GetMode)
	settings.Put("/mode", c.SettingsHandler.SetMode)
}

func (c *Config) Notifications() {
	notifications := c.App.Group("/api/v1/notifications", c.auth())
	notifications.Get("", c.NotificationHandler.GetNotifications)
	notifications.Post("/read", c.NotificationHandler.MarkAllRead)
}
