package businessflow

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/antrian-id/antrian-loket/models"
	"github.com/antrian-id/antrian-loket/repository"
	"github.com/antrian-id/antrian-loket/utils"
	"github.com/xuri/excelize/v2"
)

// ExportFlow builds downloadable snapshots of queue data.
// Each method returns a filename and the file body.
type ExportFlow interface {
	ExportEventsCSV(ctx context.Context) (string, []byte, error)
	ExportLoketsCSV(ctx context.Context, eventID uint) (string, []byte, error)
	ExportTicketsCSV(ctx context.Context, eventID uint) (string, []byte, error)
	// ExportEventArchive bundles the loket and ticket CSVs of one event
	// into a single ZIP.
	ExportEventArchive(ctx context.Context, eventID uint) (string, []byte, error)
	// ExportEventWorkbook builds an XLSX workbook with one sheet per loket.
	ExportEventWorkbook(ctx context.Context, eventID uint) (string, []byte, error)
}

// ExportFlowImpl implements ExportFlow
type ExportFlowImpl struct {
	eventRepo  repository.EventRepository
	loketRepo  repository.LoketRepository
	ticketRepo repository.TicketRepository
}

func NewExportFlow(eventRepo repository.EventRepository, loketRepo repository.LoketRepository, ticketRepo repository.TicketRepository) ExportFlow {
	return &ExportFlowImpl{eventRepo: eventRepo, loketRepo: loketRepo, ticketRepo: ticketRepo}
}

func rowsToCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportStamp() string {
	return utils.UTCNowFormat("20060102-150405")
}

func (f *ExportFlowImpl) ExportEventsCSV(ctx context.Context) (string, []byte, error) {
	events, err := f.eventRepo.ByFilter(ctx, models.EventFilter{}, "id ASC", 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_EVENTS_FAILED", "Failed to fetch events", err)
	}

	rows := make([][]string, 0, len(events))
	for _, e := range events {
		active := "0"
		if utils.IsTrue(e.IsActive) {
			active = "1"
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(e.ID), 10),
			e.Name,
			e.Code,
			active,
		})
	}

	body, err := rowsToCSV([]string{"id", "name", "code", "is_active"}, rows)
	if err != nil {
		return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV", err)
	}
	return fmt.Sprintf("events-%s.csv", exportStamp()), body, nil
}

func (f *ExportFlowImpl) loketRows(ctx context.Context, eventID uint) ([][]string, error) {
	lokets, err := f.loketRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(lokets))
	for _, l := range lokets {
		current := ""
		if l.CurrentNumber != nil {
			current = strconv.Itoa(*l.CurrentNumber)
		}
		desc := ""
		if l.Description != nil {
			desc = *l.Description
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(l.ID), 10),
			l.Name,
			l.Code,
			desc,
			current,
			strconv.Itoa(l.LastTicketNumber),
		})
	}
	return rows, nil
}

var loketCSVHeaders = []string{"id", "name", "code", "description", "current_number", "last_ticket_number"}

func (f *ExportFlowImpl) ExportLoketsCSV(ctx context.Context, eventID uint) (string, []byte, error) {
	if _, err := getEvent(ctx, f.eventRepo, eventID); err != nil {
		return "", nil, err
	}

	rows, err := f.loketRows(ctx, eventID)
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_LOKETS_FAILED", "Failed to fetch lokets", err)
	}

	body, err := rowsToCSV(loketCSVHeaders, rows)
	if err != nil {
		return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV", err)
	}
	return fmt.Sprintf("lokets-event%d-%s.csv", eventID, exportStamp()), body, nil
}

func (f *ExportFlowImpl) ticketRows(ctx context.Context, eventID uint) ([][]string, error) {
	tickets, err := f.ticketRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(tickets))
	for _, t := range tickets {
		calledAt := ""
		if t.CalledAt != nil {
			calledAt = t.CalledAt.UTC().Format("2006-01-02 15:04:05")
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(t.ID), 10),
			strconv.FormatUint(uint64(t.LoketID), 10),
			strconv.Itoa(t.Number),
			t.Status.String(),
			t.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			calledAt,
		})
	}
	return rows, nil
}

var ticketCSVHeaders = []string{"id", "loket_id", "number", "status", "created_at", "called_at"}

func (f *ExportFlowImpl) ExportTicketsCSV(ctx context.Context, eventID uint) (string, []byte, error) {
	if _, err := getEvent(ctx, f.eventRepo, eventID); err != nil {
		return "", nil, err
	}

	rows, err := f.ticketRows(ctx, eventID)
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_TICKETS_FAILED", "Failed to fetch tickets", err)
	}

	body, err := rowsToCSV(ticketCSVHeaders, rows)
	if err != nil {
		return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV", err)
	}
	return fmt.Sprintf("tickets-event%d-%s.csv", eventID, exportStamp()), body, nil
}

func (f *ExportFlowImpl) ExportEventArchive(ctx context.Context, eventID uint) (string, []byte, error) {
	if _, err := getEvent(ctx, f.eventRepo, eventID); err != nil {
		return "", nil, err
	}

	loketRows, err := f.loketRows(ctx, eventID)
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_ARCHIVE_FAILED", "Failed to fetch lokets", err)
	}
	ticketRows, err := f.ticketRows(ctx, eventID)
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_ARCHIVE_FAILED", "Failed to fetch tickets", err)
	}

	loketCSV, err := rowsToCSV(loketCSVHeaders, loketRows)
	if err != nil {
		return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV", err)
	}
	ticketCSV, err := rowsToCSV(ticketCSVHeaders, ticketRows)
	if err != nil {
		return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string][]byte{
		"lokets.csv":  loketCSV,
		"tickets.csv": ticketCSV,
	} {
		w, err := zw.Create(name)
		if err != nil {
			return "", nil, NewBusinessError("ZIP_WRITE_ERROR", "Failed to write ZIP", err)
		}
		if _, err := w.Write(body); err != nil {
			return "", nil, NewBusinessError("ZIP_WRITE_ERROR", "Failed to write ZIP", err)
		}
	}
	if err := zw.Close(); err != nil {
		return "", nil, NewBusinessError("ZIP_WRITE_ERROR", "Failed to write ZIP", err)
	}

	return fmt.Sprintf("event%d-%s.zip", eventID, exportStamp()), buf.Bytes(), nil
}

func (f *ExportFlowImpl) ExportEventWorkbook(ctx context.Context, eventID uint) (string, []byte, error) {
	event, err := getEvent(ctx, f.eventRepo, eventID)
	if err != nil {
		return "", nil, err
	}

	lokets, err := f.loketRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_WORKBOOK_FAILED", "Failed to fetch lokets", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	for i, loket := range lokets {
		name := sanitizeSheetName(fmt.Sprintf("%s %s", loket.Code, loket.Name))
		if i == 0 {
			xl.SetSheetName(xl.GetSheetName(0), name)
		} else {
			_, _ = xl.NewSheet(name)
		}

		header := []string{"number", "status", "created_at", "called_at"}
		_ = xl.SetSheetRow(name, "A1", &header)

		tickets, err := f.ticketRepo.ListByLoket(ctx, loket.ID)
		if err != nil {
			return "", nil, NewBusinessError("EXPORT_WORKBOOK_FAILED", "Failed to fetch tickets", err)
		}
		for ri, t := range tickets {
			calledAt := ""
			if t.CalledAt != nil {
				calledAt = t.CalledAt.UTC().Format("2006-01-02 15:04:05")
			}
			row := []any{
				t.Number,
				t.Status.String(),
				t.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
				calledAt,
			}
			cell := fmt.Sprintf("A%d", ri+2)
			_ = xl.SetSheetRow(name, cell, &row)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	return fmt.Sprintf("%s-%s.xlsx", event.Code, exportStamp()), buf.Bytes(), nil
}

func sanitizeSheetName(name string) string {
	// Excel sheet names cannot contain: : \ / ? * [ ] and must be <= 31 chars
	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")
	safe := strings.TrimSpace(replacer.Replace(name))
	if len(safe) > 31 {
		safe = safe[:31]
	}
	if safe == "" {
		safe = "Sheet1"
	}
	return safe
}
