package handlers

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/internal/api/presenters"
	"SmartCanteen-Backend/pkg/forecast"
	"SmartCanteen-Backend/pkg/plan"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	ForecastHandler interface {
		GenerateForecast(c *fiber.Ctx) error
		GetPlan(c *fiber.Ctx) error
		ApplyPlan(c *fiber.Ctx) error
	}

	forecastHandler struct {
		forecastService forecast.ForecastService
		planService     plan.PlanService
		validator       *validator.Validate
	}
)

func NewForecastHandler(forecastService forecast.ForecastService, planService plan.PlanService, validator *validator.Validate) ForecastHandler {
	return &forecastHandler{
		forecastService: forecastService,
		planService:     planService,
		validator:       validator,
	}
}

func (h *forecastHandler) GenerateForecast(c *fiber.Ctx) error {
	req := new(domain.ForecastRequest)

	// an empty body forecasts tomorrow in the persisted mode
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
		}
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGenerateForecast, err)
	}

	res, err := h.forecastService.Generate(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGenerateForecast, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGenerateForecast)
}

func (h *forecastHandler) GetPlan(c *fiber.Ctx) error {
	res, err := h.planService.Current(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetPlan, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetPlan)
}

func (h *forecastHandler) ApplyPlan(c *fiber.Ctx) error {
	req := new(domain.ApplyPlanRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedApplyPlan, err)
	}

	res, err := h.planService.Apply(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedApplyPlan, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessApplyPlan)
}
