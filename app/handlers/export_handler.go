package handlers

import (
	"context"
	"time"

	"github.com/antrian-id/antrian-loket/app/dto"
	businessflow "github.com/antrian-id/antrian-loket/business_flow"
	"github.com/antrian-id/antrian-loket/utils"
	"github.com/gofiber/fiber/v3"
)

// ExportHandlerInterface defines the contract for export handlers
type ExportHandlerInterface interface {
	EventsCSV(c fiber.Ctx) error
	LoketsCSV(c fiber.Ctx) error
	TicketsCSV(c fiber.Ctx) error
	EventArchive(c fiber.Ctx) error
	EventWorkbook(c fiber.Ctx) error
}

// ExportHandler serves CSV, ZIP and XLSX downloads of queue data
type ExportHandler struct {
	flow businessflow.ExportFlow
}

// NewExportHandler creates a new export handler
func NewExportHandler(flow businessflow.ExportFlow) *ExportHandler {
	return &ExportHandler{flow: flow}
}

func (h *ExportHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ExportHandler) exportError(c fiber.Ctx, err error, message string) error {
	if businessflow.IsEventNotFound(err) {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Event not found", "EVENT_NOT_FOUND", nil)
	}
	if be, ok := err.(*businessflow.BusinessError); ok {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, message, be.Code, be.Error())
	}
	return h.ErrorResponse(c, fiber.StatusInternalServerError, message, "INTERNAL_ERROR", nil)
}

// Export Events CSV
// @Description Download all events as CSV
// @Tags Export
// @Produce text/csv
// @Success 200 {file} file "CSV download"
// @Router /api/v1/export/events [get]
func (h *ExportHandler) EventsCSV(c fiber.Ctx) error {
	filename, data, err := h.flow.ExportEventsCSV(h.createRequestContext(c, "/api/v1/export/events"))
	if err != nil {
		return h.exportError(c, err, "Failed to export events")
	}

	c.Set("Content-Type", "text/csv; charset=utf-8")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

// Export Lokets CSV
// @Description Download the lokets of one event as CSV
// @Tags Export
// @Produce text/csv
// @Param id path int true "Event ID"
// @Success 200 {file} file "CSV download"
// @Failure 404 {object} dto.APIResponse "Event not found"
// @Router /api/v1/export/events/{id}/lokets [get]
func (h *ExportHandler) LoketsCSV(c fiber.Ctx) error {
	eventID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid event ID", "INVALID_EVENT_ID", nil)
	}

	filename, data, err := h.flow.ExportLoketsCSV(h.createRequestContext(c, "/api/v1/export/events/:id/lokets"), eventID)
	if err != nil {
		return h.exportError(c, err, "Failed to export lokets")
	}

	c.Set("Content-Type", "text/csv; charset=utf-8")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

// Export Tickets CSV
// @Description Download the tickets of one event as CSV
// @Tags Export
// @Produce text/csv
// @Param id path int true "Event ID"
// @Success 200 {file} file "CSV download"
// @Failure 404 {object} dto.APIResponse "Event not found"
// @Router /api/v1/export/events/{id}/tickets [get]
func (h *ExportHandler) TicketsCSV(c fiber.Ctx) error {
	eventID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid event ID", "INVALID_EVENT_ID", nil)
	}

	filename, data, err := h.flow.ExportTicketsCSV(h.createRequestContext(c, "/api/v1/export/events/:id/tickets"), eventID)
	if err != nil {
		return h.exportError(c, err, "Failed to export tickets")
	}

	c.Set("Content-Type", "text/csv; charset=utf-8")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

// Export Event Archive
// @Description Download one event's lokets and tickets as a ZIP of CSV files
// @Tags Export
// @Produce application/zip
// @Param id path int true "Event ID"
// @Success 200 {file} file "ZIP download"
// @Failure 404 {object} dto.APIResponse "Event not found"
// @Router /api/v1/export/events/{id}/archive [get]
func (h *ExportHandler) EventArchive(c fiber.Ctx) error {
	eventID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid event ID", "INVALID_EVENT_ID", nil)
	}

	filename, data, err := h.flow.ExportEventArchive(h.createRequestContext(c, "/api/v1/export/events/:id/archive"), eventID)
	if err != nil {
		return h.exportError(c, err, "Failed to export archive")
	}

	c.Set("Content-Type", "application/zip")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

// Export Event Workbook
// @Description Download one event's tickets as an XLSX workbook, one sheet per loket
// @Tags Export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Event ID"
// @Success 200 {file} file "XLSX download"
// @Failure 404 {object} dto.APIResponse "Event not found"
// @Router /api/v1/export/events/{id}/workbook [get]
func (h *ExportHandler) EventWorkbook(c fiber.Ctx) error {
	eventID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid event ID", "INVALID_EVENT_ID", nil)
	}

	filename, data, err := h.flow.ExportEventWorkbook(h.createRequestContext(c, "/api/v1/export/events/:id/workbook"), eventID)
	if err != nil {
		return h.exportError(c, err, "Failed to export workbook")
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

func (h *ExportHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 60*time.Second)
}

func (h *ExportHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
