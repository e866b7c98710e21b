package config

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/internal/api/handlers"
	"SmartCanteen-Backend/internal/api/routes"
	"SmartCanteen-Backend/internal/middleware"
	"SmartCanteen-Backend/internal/utils"
	"SmartCanteen-Backend/internal/utils/events"
	"SmartCanteen-Backend/internal/utils/gemini"
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
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

const defaultTimezone = "Asia/Jakarta"

// Location resolves TIMEZONE, the zone that decides what "today" and "tomorrow" mean.
func Location() (*time.Location, error) {
	name := utils.GetConfig("TIMEZONE")
	if name == "" {
		name = defaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

// NewPublisher connects to the kitchen event stream, or returns a no-op publisher
// when KAFKA_BROKERS is unset.
func NewPublisher() (events.Publisher, error) {
	brokers := utils.GetConfigList("KAFKA_BROKERS")
	if len(brokers) == 0 {
		return events.NoopPublisher(), nil
	}
	topic := utils.GetConfig("KAFKA_TOPIC")
	if topic == "" {
		topic = events.DefaultTopic
	}
	return events.NewKafkaPublisher(brokers, topic)
}

func pinHashes() map[domain.UserRole]string {
	return map[domain.UserRole]string{
		domain.RoleAdmin: utils.GetConfig("ADMIN_PIN_HASH"),
		domain.RoleStaff: utils.GetConfig("STAFF_PIN_HASH"),
	}
}

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	validator := utils.Validate

	// the text service is required to serve; missing credentials stop startup here
	geminiClient, err := gemini.NewClientFromConfig()
	if err != nil {
		return nil, err
	}
	loc, err := Location()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	middlewares := middleware.NewMiddleware(utils.GetConfigList("CORS_ORIGINS"))

	// setting up logging and limiter
	err = os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   loc.String(),
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3, err := storage.NewAwsS3(context.Background())
	if err != nil {
		return nil, err
	}
	publisher, err := NewPublisher()
	if err != nil {
		return nil, err
	}
	mailer := mailing.NewMailer(mailing.LoadMailConfig())
	app.Hooks().OnShutdown(func() error {
		return publisher.Close()
	})

	// Repository
	stateRepository := state.NewStateRepository(db)
	menuRepository := menu.NewMenuRepository(db)
	historyRepository := history.NewHistoryRepository(db)
	orderRepository := order.NewOrderRepository(db)
	notificationRepository := notification.NewNotificationRepository(db)

	// Service
	jwtService := jwt.NewJWTService()
	stateService := state.NewStateService(stateRepository)
	notificationService := notification.NewNotificationService(notificationRepository, publisher, mailer)
	menuService := menu.NewMenuService(menuRepository, stateService)
	planService := plan.NewPlanService(stateService, menuRepository, notificationService, publisher, s3, mailer)
	historyService := history.NewHistoryService(
		historyRepository,
		menuRepository,
		planService,
		stateService,
		notificationService,
		publisher,
		s3,
		loc,
	)
	forecastService := forecast.NewForecastService(menuRepository, historyRepository, stateService, geminiClient, loc)
	orderService := order.NewOrderService(
		orderRepository,
		menuRepository,
		planService,
		stateService,
		notificationService,
		publisher,
	)
	recipeService := recipe.NewRecipeService(menuService, historyRepository, stateService, geminiClient)
	settingsService := settings.NewSettingsService(stateService, jwtService, pinHashes())

	// Handler
	settingsHandler := handlers.NewSettingsHandler(settingsService, validator)
	menuHandler := handlers.NewMenuHandler(menuService, recipeService, validator)
	historyHandler := handlers.NewHistoryHandler(historyService, recipeService, validator)
	orderHandler := handlers.NewOrderHandler(orderService, validator)
	forecastHandler := handlers.NewForecastHandler(forecastService, planService, validator)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// routes
	routesConfig := routes.Config{
		App:                 app,
		SettingsHandler:     settingsHandler,
		MenuHandler:         menuHandler,
		HistoryHandler:      historyHandler,
		OrderHandler:        orderHandler,
		ForecastHandler:     forecastHandler,
		NotificationHandler: notificationHandler,
		Middleware:          middlewares,
		JWTService:          jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
