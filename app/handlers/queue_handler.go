package handlers

import (
	"context"
	"time"

	"github.com/antrian-id/antrian-loket/app/dto"
	businessflow "github.com/antrian-id/antrian-loket/business_flow"
	"github.com/antrian-id/antrian-loket/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// QueueHandlerInterface defines the contract for queue handlers
type QueueHandlerInterface interface {
	Issue(c fiber.Ctx) error
	CallNext(c fiber.Ctx) error
	Hold(c fiber.Ctx) error
	Recall(c fiber.Ctx) error
	Repeat(c fiber.Ctx) error
}

// QueueHandler handles the call/hold/recall queue operations
type QueueHandler struct {
	flow      businessflow.QueueFlow
	validator *validator.Validate
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(flow businessflow.QueueFlow) *QueueHandler {
	return &QueueHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *QueueHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *QueueHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// queueError maps the shared queue failure modes to HTTP responses.
// Returns nil when the error needs operation-specific handling.
func (h *QueueHandler) queueError(c fiber.Ctx, err error) error {
	if businessflow.IsEventNotFound(err) {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Event not found", "EVENT_NOT_FOUND", nil)
	}
	if businessflow.IsLoketNotFound(err) {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Loket not found", "LOKET_NOT_FOUND", nil)
	}
	if businessflow.IsStoreContention(err) {
		return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Queue is busy, please retry", "STORE_CONTENTION", nil)
	}
	if businessflow.IsQueueStateCorrupted(err) {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Queue state is inconsistent", "QUEUE_STATE_CORRUPTED", nil)
	}
	return nil
}

// Issue Ticket
// @Description Take the next queue number at a loket
// @Tags Queue
// @Produce json
// @Param id path int true "Event ID"
// @Param loket_id path int true "Loket ID"
// @Success 201 {object} dto.APIResponse{data=dto.IssueTicketResponse} "Ticket issued successfully"
// @Failure 404 {object} dto.APIResponse "Event or loket not found"
// @Failure 503 {object} dto.APIResponse "Store contention, retry later"
// @Router /api/v1/events/{id}/lokets/{loket_id}/tickets [post]
func (h *QueueHandler) Issue(c fiber.Ctx) error {
	eventID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid event ID", "INVALID_EVENT_ID", nil)
	}
	loketID, ok := parseIDParam(c, "loket_id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid loket ID", "INVALID_LOKET_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.IssueTicket(h.createRequestContext(c, "/api/v1/events/:id/lokets/:loket_id/tickets"), eventID, loketID, metadata)
	if err != nil {
		if resp := h.queueError(c, err); resp != nil {
			return resp
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to issue ticket", "INTERNAL_ERROR", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Ticket issued successfully", result)
}

// Call Next
// @Description Call the lowest waiting number at a loket. An empty queue is not an error.
// @Tags Queue
// @Produce json
// @Param loket_id path int true "Loket ID"
// @Success 200 {object} dto.APIResponse{data=dto.CallNextResponse} "Call processed"
// @Failure 404 {object} dto.APIResponse "Loket not found"
// @Failure 503 {object} dto.APIResponse "Store contention, retry later"
// @Router /api/v1/lokets/{loket_id}/call-next [post]
func (h *QueueHandler) CallNext(c fiber.Ctx) error {
	loketID, ok := parseIDParam(c, "loket_id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid loket ID", "INVALID_LOKET_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.CallNext(h.createRequestContext(c, "/api/v1/lokets/:loket_id/call-next"), loketID, metadata)
	if err != nil {
		if resp := h.queueError(c, err); resp != nil {
			return resp
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to call next number", "INTERNAL_ERROR", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Hold Current
// @Description Put the number currently being served on hold
// @Tags Queue
// @Produce json
// @Param loket_id path int true "Loket ID"
// @Success 200 {object} dto.APIResponse{data=dto.TicketDTO} "Number put on hold"
// @Failure 404 {object} dto.APIResponse "Loket not found"
// @Failure 422 {object} dto.APIResponse "No number is being served or ticket cannot be held"
// @Router /api/v1/lokets/{loket_id}/hold [post]
func (h *QueueHandler) Hold(c fiber.Ctx) error {
	loketID, ok := parseIDParam(c, "loket_id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid loket ID", "INVALID_LOKET_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.HoldCurrent(h.createRequestContext(c, "/api/v1/lokets/:loket_id/hold"), loketID, metadata)
	if err != nil {
		if resp := h.queueError(c, err); resp != nil {
			return resp
		}
		if businessflow.IsNoActiveNumber(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "No number is being served", "NO_ACTIVE_NUMBER", nil)
		}
		if businessflow.IsCannotHoldStatus(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Ticket cannot be held in its current status", "CANNOT_HOLD_STATUS", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to hold number", "INTERNAL_ERROR", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Number put on hold", result)
}

// Recall Held
// @Description Bring a held number back to being served
// @Tags Queue
// @Accept json
// @Produce json
// @Param loket_id path int true "Loket ID"
// @Param request body dto.RecallRequest true "Held number to recall"
// @Success 200 {object} dto.APIResponse{data=dto.TicketDTO} "Number recalled"
// @Failure 404 {object} dto.APIResponse "Loket or held number not found"
// @Router /api/v1/lokets/{loket_id}/recall [post]
func (h *QueueHandler) Recall(c fiber.Ctx) error {
	loketID, ok := parseIDParam(c, "loket_id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid loket ID", "INVALID_LOKET_ID", nil)
	}

	var req dto.RecallRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.RecallHeld(h.createRequestContext(c, "/api/v1/lokets/:loket_id/recall"), loketID, req.Number, metadata)
	if err != nil {
		if resp := h.queueError(c, err); resp != nil {
			return resp
		}
		if businessflow.IsHeldTicketNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Held number not found", "HELD_TICKET_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to recall number", "INTERNAL_ERROR", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Number recalled", result)
}

// Repeat Call
// @Description Announce the current number again on the displays
// @Tags Queue
// @Produce json
// @Param loket_id path int true "Loket ID"
// @Success 200 {object} dto.APIResponse{data=dto.LoketDTO} "Repeat recorded"
// @Failure 404 {object} dto.APIResponse "Loket not found"
// @Router /api/v1/lokets/{loket_id}/repeat [post]
func (h *QueueHandler) Repeat(c fiber.Ctx) error {
	loketID, ok := parseIDParam(c, "loket_id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid loket ID", "INVALID_LOKET_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.Repeat(h.createRequestContext(c, "/api/v1/lokets/:loket_id/repeat"), loketID, metadata)
	if err != nil {
		if resp := h.queueError(c, err); resp != nil {
			return resp
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to repeat call", "INTERNAL_ERROR", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Repeat recorded", result)
}

func (h *QueueHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *QueueHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
