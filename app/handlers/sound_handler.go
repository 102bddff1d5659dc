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

// SoundHandlerInterface defines the contract for sound config handlers
type SoundHandlerInterface interface {
	Get(c fiber.Ctx) error
	Update(c fiber.Ctx) error
}

// SoundHandler handles per-display sound configuration requests
type SoundHandler struct {
	flow      businessflow.SoundFlow
	validator *validator.Validate
}

// NewSoundHandler creates a new sound handler
func NewSoundHandler(flow businessflow.SoundFlow) *SoundHandler {
	return &SoundHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *SoundHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *SoundHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Get Sound Config
// @Description Get the sound setting of one display role of an event
// @Tags Sound
// @Produce json
// @Param id path int true "Event ID"
// @Param role query string true "Display role"
// @Success 200 {object} dto.APIResponse{data=dto.SoundConfigDTO} "Sound config retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Unknown display role"
// @Failure 404 {object} dto.APIResponse "Event not found"
// @Router /api/v1/events/{id}/sound [get]
func (h *SoundHandler) Get(c fiber.Ctx) error {
	eventID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid event ID", "INVALID_EVENT_ID", nil)
	}
	role := c.Query("role")
	if role == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Missing role query parameter", "MISSING_ROLE", nil)
	}

	result, err := h.flow.GetSoundConfig(h.createRequestContext(c, "/api/v1/events/:id/sound"), eventID, role)
	if err != nil {
		if businessflow.IsEventNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Event not found", "EVENT_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidSoundRole(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown display role", "INVALID_SOUND_ROLE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get sound config", "INTERNAL_ERROR", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Sound config retrieved successfully", result)
}

// Update Sound Config
// @Description Replace the sound settings of all display roles of an event
// @Tags Sound
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param request body dto.UpdateSoundConfigRequest true "Sound settings per role"
// @Success 200 {object} dto.APIResponse{data=dto.SoundConfigAllDTO} "Sound config updated successfully"
// @Failure 404 {object} dto.APIResponse "Event not found"
// @Router /api/v1/events/{id}/sound [put]
func (h *SoundHandler) Update(c fiber.Ctx) error {
	eventID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid event ID", "INVALID_EVENT_ID", nil)
	}

	var req dto.UpdateSoundConfigRequest
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
	result, err := h.flow.UpdateSoundConfig(h.createRequestContext(c, "/api/v1/events/:id/sound"), eventID, &req, metadata)
	if err != nil {
		if businessflow.IsEventNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Event not found", "EVENT_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update sound config", "INTERNAL_ERROR", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Sound config updated successfully", result)
}

func (h *SoundHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *SoundHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
