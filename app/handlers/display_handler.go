package handlers

import (
	"context"
	"time"

	"github.com/antrian-id/antrian-loket/app/dto"
	businessflow "github.com/antrian-id/antrian-loket/business_flow"
	"github.com/antrian-id/antrian-loket/utils"
	"github.com/gofiber/fiber/v3"
)

// DisplayHandlerInterface defines the contract for the public display queries
type DisplayHandlerInterface interface {
	LoketInfo(c fiber.Ctx) error
	EventState(c fiber.Ctx) error
}

// DisplayHandler serves the read-only queue snapshots consumed by
// waiting-room displays.
type DisplayHandler struct {
	flow businessflow.QueryFlow
}

// NewDisplayHandler creates a new display handler
func NewDisplayHandler(flow businessflow.QueryFlow) *DisplayHandler {
	return &DisplayHandler{flow: flow}
}

func (h *DisplayHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *DisplayHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Loket Info
// @Description Snapshot of one loket's queue: current number, queue length and held numbers
// @Tags Display
// @Produce json
// @Param loket_id path int true "Loket ID"
// @Success 200 {object} dto.APIResponse{data=dto.LoketInfoDTO} "Snapshot retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Loket not found"
// @Router /api/v1/lokets/{loket_id}/info [get]
func (h *DisplayHandler) LoketInfo(c fiber.Ctx) error {
	loketID, ok := parseIDParam(c, "loket_id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid loket ID", "INVALID_LOKET_ID", nil)
	}

	result, err := h.flow.LoketInfo(h.createRequestContext(c, "/api/v1/lokets/:loket_id/info"), loketID)
	if err != nil {
		if businessflow.IsLoketNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Loket not found", "LOKET_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get loket info", "INTERNAL_ERROR", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Snapshot retrieved successfully", result)
}

// Event State
// @Description Snapshot of all loket queues of an event, taken in one read
// @Tags Display
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.LoketInfoDTO} "State retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Event not found"
// @Router /api/v1/events/{id}/state [get]
func (h *DisplayHandler) EventState(c fiber.Ctx) error {
	eventID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid event ID", "INVALID_EVENT_ID", nil)
	}

	result, err := h.flow.EventState(h.createRequestContext(c, "/api/v1/events/:id/state"), eventID)
	if err != nil {
		if businessflow.IsEventNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Event not found", "EVENT_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get event state", "INTERNAL_ERROR", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "State retrieved successfully", result)
}

func (h *DisplayHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *DisplayHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
