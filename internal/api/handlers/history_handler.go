package handlers

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/internal/api/presenters"
	"SmartCanteen-Backend/pkg/history"
	"SmartCanteen-Backend/pkg/recipe"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	HistoryHandler interface {
		GetHistory(c *fiber.Ctx) error
		SubmitAuditLog(c *fiber.Ctx) error
		GetAuditDefaults(c *fiber.Ctx) error
		CloseoutWaste(c *fiber.Ctx) error
		GetDashboard(c *fiber.Ctx) error
		ExportHistory(c *fiber.Ctx) error
		AnalyzeWaste(c *fiber.Ctx) error
	}

	historyHandler struct {
		historyService history.HistoryService
		recipeService  recipe.RecipeService
		validator      *validator.Validate
	}
)

func NewHistoryHandler(historyService history.HistoryService, recipeService recipe.RecipeService, validator *validator.Validate) HistoryHandler {
	return &historyHandler{
		historyService: historyService,
		recipeService:  recipeService,
		validator:      validator,
	}
}

func (h *historyHandler) GetHistory(c *fiber.Ctx) error {
	filter := domain.HistoryFilter{
		MenuItemID: c.Query("menuItemId"),
		From:       c.Query("from"),
		To:         c.Query("to"),
	}

	res, err := h.historyService.GetHistory(c.Context(), filter)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetHistory, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetHistory)
}

func (h *historyHandler) SubmitAuditLog(c *fiber.Ctx) error {
	req := new(domain.AuditLogRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSubmitAuditLog, err)
	}

	res, err := h.historyService.SubmitAuditLog(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedSubmitAuditLog, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessSubmitAuditLog)
}

func (h *historyHandler) GetAuditDefaults(c *fiber.Ctx) error {
	res, err := h.historyService.AuditDefaults(c.Context(), c.Params("itemId"))
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetAuditDefault, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetAuditDefault)
}

func (h *historyHandler) CloseoutWaste(c *fiber.Ctx) error {
	req := new(domain.WasteCloseoutRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCloseoutWaste, err)
	}

	res, err := h.historyService.CloseoutWaste(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedCloseoutWaste, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCloseoutWaste)
}

func (h *historyHandler) GetDashboard(c *fiber.Ctx) error {
	res, err := h.historyService.GetDashboard(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetDashboard, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetDashboard)
}

// ExportHistory returns a download link when the export went to object storage,
// and the CSV itself otherwise.
func (h *historyHandler) ExportHistory(c *fiber.Ctx) error {
	res, data, err := h.historyService.ExportHistory(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedExportHistory, err)
	}

	if res.URL != "" {
		return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessExportHistory)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", res.FileName))
	return c.Status(fiber.StatusOK).Send(data)
}

func (h *historyHandler) AnalyzeWaste(c *fiber.Ctx) error {
	res, err := h.recipeService.AnalyzeWaste(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedWasteAnalysis, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessWasteAnalysis)
}
