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

// LoketHandlerInterface defines the contract for loket handlers
type LoketHandlerInterface interface {
	Create(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	Reset(c fiber.Ctx) error
}

// LoketHandler handles loket-related HTTP requests
type LoketHandler struct {
	flow      businessflow.LoketFlow
	validator *validator.Validate
}

// NewLoketHandler creates a new loket handler
func NewLoketHandler(flow businessflow.LoketFlow) *LoketHandler {
	return &LoketHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *LoketHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *LoketHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// pathIDs extracts the event and loket IDs shared by most loket routes
func (h *LoketHandler) pathIDs(c fiber.Ctx) (uint, uint, error) {
	eventID, ok := parseIDParam(c, "id")
	if !ok {
		return 0, 0, h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid event ID", "INVALID_EVENT_ID", nil)
	}
	loketID, ok := parseIDParam(c, "loket_id")
	if !ok {
		return 0, 0, h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid loket ID", "INVALID_LOKET_ID", nil)
	}
	return eventID, loketID, nil
}

// Create Loket
// @Description Create a new loket under an event
// @Tags Lokets
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param request body dto.CreateLoketRequest true "Loket data"
// @Success 201 {object} dto.APIResponse{data=dto.LoketDTO} "Loket created successfully"
// @Failure 404 {object} dto.APIResponse "Event not found"
// @Router /api/v1/events/{id}/lokets [post]
func (h *LoketHandler) Create(c fiber.Ctx) error {
	eventID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid event ID", "INVALID_EVENT_ID", nil)
	}

	var req dto.CreateLoketRequest
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
	result, err := h.flow.CreateLoket(h.createRequestContext(c, "/api/v1/events/:id/lokets"), eventID, &req, metadata)
	if err != nil {
		if businessflow.IsEventNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Event not found", "EVENT_NOT_FOUND", nil)
		}
		if be, ok := err.(*businessflow.BusinessError); ok {
			return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create loket", be.Code, be.Error())
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create loket", "INTERNAL_ERROR", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Loket created successfully", result)
}

// Get Loket
// @Description Get a single loket of an event
// @Tags Lokets
// @Produce json
// @Param id path int true "Event ID"
// @Param loket_id path int true "Loket ID"
// @Success 200 {object} dto.APIResponse{data=dto.LoketDTO} "Loket retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Event or loket not found"
// @Router /api/v1/events/{id}/lokets/{loket_id} [get]
func (h *LoketHandler) Get(c fiber.Ctx) error {
	eventID, loketID, errResp := h.pathIDs(c)
	if errResp != nil {
		return errResp
	}

	result, err := h.flow.GetLoket(h.createRequestContext(c, "/api/v1/events/:id/lokets/:loket_id"), eventID, loketID)
	if err != nil {
		if businessflow.IsEventNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Event not found", "EVENT_NOT_FOUND", nil)
		}
		if businessflow.IsLoketNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Loket not found", "LOKET_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get loket", "INTERNAL_ERROR", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Loket retrieved successfully", result)
}

// List Lokets
// @Description List all lokets of an event
// @Tags Lokets
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.LoketDTO} "Lokets retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Event not found"
// @Router /api/v1/events/{id}/lokets [get]
func (h *LoketHandler) List(c fiber.Ctx) error {
	eventID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid event ID", "INVALID_EVENT_ID", nil)
	}

	result, err := h.flow.ListLokets(h.createRequestContext(c, "/api/v1/events/:id/lokets"), eventID)
	if err != nil {
		if businessflow.IsEventNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Event not found", "EVENT_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list lokets", "INTERNAL_ERROR", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Lokets retrieved successfully", result)
}

// Update Loket
// @Description Update a loket's name, code or description
// @Tags Lokets
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param loket_id path int true "Loket ID"
// @Param request body dto.UpdateLoketRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.LoketDTO} "Loket updated successfully"
// @Failure 404 {object} dto.APIResponse "Event or loket not found"
// @Router /api/v1/events/{id}/lokets/{loket_id} [put]
func (h *LoketHandler) Update(c fiber.Ctx) error {
	eventID, loketID, errResp := h.pathIDs(c)
	if errResp != nil {
		return errResp
	}

	var req dto.UpdateLoketRequest
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
	result, err := h.flow.UpdateLoket(h.createRequestContext(c, "/api/v1/events/:id/lokets/:loket_id"), eventID, loketID, &req, metadata)
	if err != nil {
		if businessflow.IsEventNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Event not found", "EVENT_NOT_FOUND", nil)
		}
		if businessflow.IsLoketNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Loket not found", "LOKET_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update loket", "INTERNAL_ERROR", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Loket updated successfully", result)
}

// Delete Loket
// @Description Delete a loket. Fails while tickets are still waiting.
// @Tags Lokets
// @Produce json
// @Param id path int true "Event ID"
// @Param loket_id path int true "Loket ID"
// @Success 200 {object} dto.APIResponse "Loket deleted successfully"
// @Failure 404 {object} dto.APIResponse "Event or loket not found"
// @Failure 409 {object} dto.APIResponse "Loket still has waiting tickets"
// @Router /api/v1/events/{id}/lokets/{loket_id} [delete]
func (h *LoketHandler) Delete(c fiber.Ctx) error {
	eventID, loketID, errResp := h.pathIDs(c)
	if errResp != nil {
		return errResp
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	err := h.flow.DeleteLoket(h.createRequestContext(c, "/api/v1/events/:id/lokets/:loket_id"), eventID, loketID, metadata)
	if err != nil {
		if businessflow.IsEventNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Event not found", "EVENT_NOT_FOUND", nil)
		}
		if businessflow.IsLoketNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Loket not found", "LOKET_NOT_FOUND", nil)
		}
		if businessflow.IsLoketHasWaitingTickets(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Loket still has waiting tickets", "LOKET_HAS_WAITING_TICKETS", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete loket", "INTERNAL_ERROR", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Loket deleted successfully", nil)
}

// Reset Loket
// @Description Clear the loket's queue and restart numbering from 1
// @Tags Lokets
// @Produce json
// @Param id path int true "Event ID"
// @Param loket_id path int true "Loket ID"
// @Success 200 {object} dto.APIResponse{data=dto.LoketDTO} "Loket reset successfully"
// @Failure 404 {object} dto.APIResponse "Event or loket not found"
// @Failure 503 {object} dto.APIResponse "Store contention, retry later"
// @Router /api/v1/events/{id}/lokets/{loket_id}/reset [post]
func (h *LoketHandler) Reset(c fiber.Ctx) error {
	eventID, loketID, errResp := h.pathIDs(c)
	if errResp != nil {
		return errResp
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.ResetLoket(h.createRequestContext(c, "/api/v1/events/:id/lokets/:loket_id/reset"), eventID, loketID, metadata)
	if err != nil {
		if businessflow.IsEventNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Event not found", "EVENT_NOT_FOUND", nil)
		}
		if businessflow.IsLoketNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Loket not found", "LOKET_NOT_FOUND", nil)
		}
		if businessflow.IsStoreContention(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Queue is busy, please retry", "STORE_CONTENTION", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reset loket", "INTERNAL_ERROR", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Loket reset successfully", result)
}

func (h *LoketHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *LoketHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
