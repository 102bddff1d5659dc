package tests

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	businessflow "github.com/antrian-id/antrian-loket/business_flow"
	"github.com/antrian-id/antrian-loket/models"
	"github.com/antrian-id/antrian-loket/repository"
	testingutil "github.com/antrian-id/antrian-loket/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newExportFlow(testDB *testingutil.TestDB) businessflow.ExportFlow {
	return businessflow.NewExportFlow(
		repository.NewEventRepository(testDB.DB),
		repository.NewLoketRepository(testDB.DB),
		repository.NewTicketRepository(testDB.DB),
	)
}

func parseCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportCSV(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newExportFlow(testDB)
		ctx := testingutil.CreateTestContext()

		event, err := fixtures.CreateTestEvent("Export Expo")
		require.NoError(t, err)
		loket, err := fixtures.CreateTestLoket(event.ID, "Export Desk")
		require.NoError(t, err)
		_, err = fixtures.CreateTestTicket(event.ID, loket.ID, 1, models.TicketStatusDone)
		require.NoError(t, err)
		_, err = fixtures.CreateTestTicket(event.ID, loket.ID, 2, models.TicketStatusWaiting)
		require.NoError(t, err)

		t.Run("Events", func(t *testing.T) {
			filename, data, err := flow.ExportEventsCSV(ctx)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(filename, "events-"))
			assert.True(t, strings.HasSuffix(filename, ".csv"))

			records := parseCSV(t, data)
			require.Len(t, records, 2)
			assert.Equal(t, []string{"id", "name", "code", "is_active"}, records[0])
			assert.Equal(t, "Export Expo", records[1][1])
			assert.Equal(t, "1", records[1][3])
		})

		t.Run("Lokets", func(t *testing.T) {
			_, data, err := flow.ExportLoketsCSV(ctx, event.ID)
			require.NoError(t, err)

			records := parseCSV(t, data)
			require.Len(t, records, 2)
			assert.Equal(t, "Export Desk", records[1][1])
		})

		t.Run("Tickets", func(t *testing.T) {
			_, data, err := flow.ExportTicketsCSV(ctx, event.ID)
			require.NoError(t, err)

			records := parseCSV(t, data)
			require.Len(t, records, 3)
			assert.Equal(t, []string{"id", "loket_id", "number", "status", "created_at", "called_at"}, records[0])
			assert.Equal(t, "done", records[1][3])
			assert.NotEmpty(t, records[1][5], "called_at set for a done ticket")
			assert.Empty(t, records[2][5], "called_at empty for a waiting ticket")
		})

		t.Run("UnknownEvent", func(t *testing.T) {
			_, _, err := flow.ExportLoketsCSV(ctx, 99999)
			assert.True(t, businessflow.IsEventNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestExportEventArchive(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newExportFlow(testDB)
		ctx := testingutil.CreateTestContext()

		event, err := fixtures.CreateTestEvent("Archive Expo")
		require.NoError(t, err)
		loket, err := fixtures.CreateTestLoket(event.ID, "Archive Desk")
		require.NoError(t, err)
		_, err = fixtures.CreateTestTicket(event.ID, loket.ID, 1, models.TicketStatusWaiting)
		require.NoError(t, err)

		filename, data, err := flow.ExportEventArchive(ctx, event.ID)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(filename, ".zip"))

		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)

		names := make(map[string]bool, len(zr.File))
		for _, f := range zr.File {
			names[f.Name] = true
			assert.NotZero(t, f.UncompressedSize64)
		}
		assert.True(t, names["lokets.csv"])
		assert.True(t, names["tickets.csv"])

		return nil
	})
	require.NoError(t, err)
}

func TestExportEventWorkbook(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newExportFlow(testDB)
		ctx := testingutil.CreateTestContext()

		event, err := fixtures.CreateTestEvent("Workbook Expo")
		require.NoError(t, err)
		loketA, err := fixtures.CreateTestLoket(event.ID, "Sheet Desk A")
		require.NoError(t, err)
		_, err = fixtures.CreateTestLoket(event.ID, "Sheet Desk B")
		require.NoError(t, err)
		_, err = fixtures.CreateTestTicket(event.ID, loketA.ID, 1, models.TicketStatusCalled)
		require.NoError(t, err)

		filename, data, err := flow.ExportEventWorkbook(ctx, event.ID)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(filename, event.Code))
		assert.True(t, strings.HasSuffix(filename, ".xlsx"))

		xl, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer func() { _ = xl.Close() }()

		sheets := xl.GetSheetList()
		require.Len(t, sheets, 2)

		rows, err := xl.GetRows(sheets[0])
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, []string{"number", "status", "created_at", "called_at"}, rows[0])
		assert.Equal(t, "1", rows[1][0])
		assert.Equal(t, "called", rows[1][1])

		return nil
	})
	require.NoError(t, err)
}
