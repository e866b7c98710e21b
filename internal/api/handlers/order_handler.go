package handlers

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/internal/api/presenters"
	"SmartCanteen-Backend/pkg/order"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	OrderHandler interface {
		ConfirmOrder(c *fiber.Ctx) error
		AddToLastOrder(c *fiber.Ctx) error
		ConfirmPreOrder(c *fiber.Ctx) error
		AdjustPreOrder(c *fiber.Ctx) error
		GetOrders(c *fiber.Ctx) error
		GetOrderCounts(c *fiber.Ctx) error
		GetPreOrders(c *fiber.Ctx) error
		UpdateStatus(c *fiber.Ctx) error
		GetKitchenQueue(c *fiber.Ctx) error
		MarkPrepared(c *fiber.Ctx) error
	}

	orderHandler struct {
		orderService order.OrderService
		validator    *validator.Validate
	}
)

func NewOrderHandler(orderService order.OrderService, validator *validator.Validate) OrderHandler {
	return &orderHandler{
		orderService: orderService,
		validator:    validator,
	}
}

func (h *orderHandler) ConfirmOrder(c *fiber.Ctx) error {
	req := new(domain.ConfirmOrderRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedConfirmOrder, err)
	}

	res, err := h.orderService.ConfirmOrder(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedConfirmOrder, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessConfirmOrder)
}

func (h *orderHandler) AddToLastOrder(c *fiber.Ctx) error {
	req := new(domain.AddItemsRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAddToLastOrder, err)
	}

	res, err := h.orderService.AddToLastOrder(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedAddToLastOrder, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessAddToLastOrder)
}

func (h *orderHandler) ConfirmPreOrder(c *fiber.Ctx) error {
	req := new(domain.AddItemsRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedConfirmPreOrder, err)
	}

	res, err := h.orderService.ConfirmPreOrder(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedConfirmPreOrder, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessConfirmPreOrder)
}

func (h *orderHandler) AdjustPreOrder(c *fiber.Ctx) error {
	req := new(domain.AdjustPreOrderRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAdjustPreOrder, err)
	}

	res, err := h.orderService.AdjustPreOrder(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedAdjustPreOrder, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessAdjustPreOrder)
}

func (h *orderHandler) GetOrders(c *fiber.Ctx) error {
	res, err := h.orderService.GetOrders(c.Context(), domain.OrderStatus(c.Query("status")))
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetOrders, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetOrders)
}

func (h *orderHandler) GetOrderCounts(c *fiber.Ctx) error {
	res, err := h.orderService.GetOrderCounts(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetOrderCounts, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetOrderCounts)
}

func (h *orderHandler) GetPreOrders(c *fiber.Ctx) error {
	res, err := h.orderService.GetPreOrders(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetPreOrders, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetPreOrders)
}

func (h *orderHandler) UpdateStatus(c *fiber.Ctx) error {
	req := new(domain.UpdateOrderStatusRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateStatus, err)
	}

	res, err := h.orderService.UpdateStatus(c.Context(), c.Params("id"), req.Status)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedUpdateStatus, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateStatus)
}

func (h *orderHandler) GetKitchenQueue(c *fiber.Ctx) error {
	res, err := h.orderService.GetKitchenQueue(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetKitchenQueue, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetKitchenQueue)
}

func (h *orderHandler) MarkPrepared(c *fiber.Ctx) error {
	req := new(domain.MarkPreparedRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedMarkPrepared, err)
	}

	res, err := h.orderService.MarkPrepared(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedMarkPrepared, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessMarkPrepared)
}
