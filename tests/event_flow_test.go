package tests

import (
	"testing"

	"github.com/antrian-id/antrian-loket/app/dto"
	businessflow "github.com/antrian-id/antrian-loket/business_flow"
	"github.com/antrian-id/antrian-loket/models"
	"github.com/antrian-id/antrian-loket/repository"
	testingutil "github.com/antrian-id/antrian-loket/testing"
	"github.com/antrian-id/antrian-loket/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventFlow(testDB *testingutil.TestDB) businessflow.EventFlow {
	return businessflow.NewEventFlow(
		repository.NewEventRepository(testDB.DB),
		repository.NewLoketRepository(testDB.DB),
		testDB.DB,
	)
}

func newLoketFlow(testDB *testingutil.TestDB) businessflow.LoketFlow {
	return businessflow.NewLoketFlow(
		repository.NewEventRepository(testDB.DB),
		repository.NewLoketRepository(testDB.DB),
		repository.NewTicketRepository(testDB.DB),
		testDB.DB,
		nil,
	)
}

func TestEventCRUD(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newEventFlow(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("CreateAndGet", func(t *testing.T) {
			created, err := flow.CreateEvent(ctx, &dto.CreateEventRequest{
				Name: "Career Expo",
				Code: "EXPO-2026",
			}, testMetadata())
			require.NoError(t, err)
			assert.NotZero(t, created.ID)
			assert.Equal(t, "Career Expo", created.Name)
			assert.True(t, created.IsActive)

			got, err := flow.GetEvent(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, created.Code, got.Code)
		})

		t.Run("DuplicateCode", func(t *testing.T) {
			_, err := flow.CreateEvent(ctx, &dto.CreateEventRequest{
				Name: "Second Expo",
				Code: "EXPO-2026",
			}, testMetadata())
			assert.True(t, businessflow.IsEventCodeExists(err))
		})

		t.Run("List", func(t *testing.T) {
			events, err := flow.ListEvents(ctx)
			require.NoError(t, err)
			assert.Len(t, events, 1)
		})

		t.Run("Update", func(t *testing.T) {
			events, err := flow.ListEvents(ctx)
			require.NoError(t, err)
			require.NotEmpty(t, events)

			updated, err := flow.UpdateEvent(ctx, events[0].ID, &dto.UpdateEventRequest{
				Name:     utils.ToPtr("Career Expo 2026"),
				IsActive: utils.ToPtr(false),
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "Career Expo 2026", updated.Name)
			assert.False(t, updated.IsActive)
		})

		t.Run("UpdateToTakenCode", func(t *testing.T) {
			first, err := flow.CreateEvent(ctx, &dto.CreateEventRequest{Name: "A", Code: "CODE-A"}, testMetadata())
			require.NoError(t, err)
			second, err := flow.CreateEvent(ctx, &dto.CreateEventRequest{Name: "B", Code: "CODE-B"}, testMetadata())
			require.NoError(t, err)

			_, err = flow.UpdateEvent(ctx, second.ID, &dto.UpdateEventRequest{
				Code: utils.ToPtr(first.Code),
			}, testMetadata())
			assert.True(t, businessflow.IsEventCodeExists(err))
		})

		t.Run("GetUnknown", func(t *testing.T) {
			_, err := flow.GetEvent(ctx, 99999)
			assert.True(t, businessflow.IsEventNotFound(err))
		})

		t.Run("Delete", func(t *testing.T) {
			created, err := flow.CreateEvent(ctx, &dto.CreateEventRequest{Name: "Gone", Code: "GONE"}, testMetadata())
			require.NoError(t, err)

			require.NoError(t, flow.DeleteEvent(ctx, created.ID, testMetadata()))

			_, err = flow.GetEvent(ctx, created.ID)
			assert.True(t, businessflow.IsEventNotFound(err))
		})

		t.Run("DeleteWithLokets", func(t *testing.T) {
			fixtures := testingutil.NewTestFixtures(testDB)
			event, err := fixtures.CreateTestEvent("Busy Expo")
			require.NoError(t, err)
			_, err = fixtures.CreateTestLoket(event.ID, "Counter")
			require.NoError(t, err)

			err = flow.DeleteEvent(ctx, event.ID, testMetadata())
			assert.True(t, businessflow.IsEventHasLokets(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLoketCRUD(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newLoketFlow(testDB)
		ctx := testingutil.CreateTestContext()

		event, err := fixtures.CreateTestEvent("Loket Expo")
		require.NoError(t, err)

		t.Run("CreateAndGet", func(t *testing.T) {
			created, err := flow.CreateLoket(ctx, event.ID, &dto.CreateLoketRequest{
				Name:        "Front Desk",
				Code:        "FD-1",
				Description: utils.ToPtr("Main entrance"),
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, event.ID, created.EventID)
			assert.Nil(t, created.CurrentNumber)
			assert.Equal(t, 0, created.LastTicketNumber)

			got, err := flow.GetLoket(ctx, event.ID, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "FD-1", got.Code)
			require.NotNil(t, got.Description)
			assert.Equal(t, "Main entrance", *got.Description)
		})

		t.Run("CreateUnderUnknownEvent", func(t *testing.T) {
			_, err := flow.CreateLoket(ctx, 99999, &dto.CreateLoketRequest{Name: "X", Code: "X-1"}, testMetadata())
			assert.True(t, businessflow.IsEventNotFound(err))
		})

		t.Run("List", func(t *testing.T) {
			lokets, err := flow.ListLokets(ctx, event.ID)
			require.NoError(t, err)
			assert.Len(t, lokets, 1)
		})

		t.Run("Update", func(t *testing.T) {
			lokets, err := flow.ListLokets(ctx, event.ID)
			require.NoError(t, err)
			require.NotEmpty(t, lokets)

			updated, err := flow.UpdateLoket(ctx, event.ID, lokets[0].ID, &dto.UpdateLoketRequest{
				Name: utils.ToPtr("Front Desk A"),
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "Front Desk A", updated.Name)
			assert.Equal(t, "FD-1", updated.Code)
		})

		t.Run("GetFromOtherEvent", func(t *testing.T) {
			other, err := fixtures.CreateTestEvent("Other Expo")
			require.NoError(t, err)
			lokets, err := flow.ListLokets(ctx, event.ID)
			require.NoError(t, err)
			require.NotEmpty(t, lokets)

			_, err = flow.GetLoket(ctx, other.ID, lokets[0].ID)
			assert.True(t, businessflow.IsLoketNotFound(err))
		})

		t.Run("DeleteWithWaitingTickets", func(t *testing.T) {
			loket, err := fixtures.CreateTestLoket(event.ID, "Crowded")
			require.NoError(t, err)
			_, err = fixtures.CreateTestTicket(event.ID, loket.ID, 1, models.TicketStatusWaiting)
			require.NoError(t, err)

			err = flow.DeleteLoket(ctx, event.ID, loket.ID, testMetadata())
			assert.True(t, businessflow.IsLoketHasWaitingTickets(err))
		})

		t.Run("Delete", func(t *testing.T) {
			loket, err := fixtures.CreateTestLoket(event.ID, "Closing")
			require.NoError(t, err)

			require.NoError(t, flow.DeleteLoket(ctx, event.ID, loket.ID, testMetadata()))

			_, err = flow.GetLoket(ctx, event.ID, loket.ID)
			assert.True(t, businessflow.IsLoketNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
