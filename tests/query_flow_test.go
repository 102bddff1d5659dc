package tests

import (
	"testing"

	businessflow "github.com/antrian-id/antrian-loket/business_flow"
	"github.com/antrian-id/antrian-loket/models"
	"github.com/antrian-id/antrian-loket/repository"
	testingutil "github.com/antrian-id/antrian-loket/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueryFlow(testDB *testingutil.TestDB) businessflow.QueryFlow {
	return businessflow.NewQueryFlow(
		repository.NewEventRepository(testDB.DB),
		repository.NewLoketRepository(testDB.DB),
		repository.NewTicketRepository(testDB.DB),
		testDB.DB,
		nil,
	)
}

func TestLoketInfo(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newQueryFlow(testDB)
		ctx := testingutil.CreateTestContext()

		event, err := fixtures.CreateTestEvent("Info Expo")
		require.NoError(t, err)
		loket, err := fixtures.CreateTestLoket(event.ID, "Info Desk")
		require.NoError(t, err)

		t.Run("FreshLoket", func(t *testing.T) {
			info, err := flow.LoketInfo(ctx, loket.ID)
			require.NoError(t, err)
			assert.Equal(t, loket.ID, info.LoketID)
			assert.Nil(t, info.CurrentNumber)
			assert.Equal(t, int64(0), info.QueueLength)
			assert.Empty(t, info.HoldNumbers)
			assert.Equal(t, 0, info.LastTicketNumber)
		})

		t.Run("PopulatedQueue", func(t *testing.T) {
			// Numbers 1-6: 3 is current, 5 and 2 on hold, 1 done, rest waiting
			_, err := fixtures.CreateTestTicket(event.ID, loket.ID, 1, models.TicketStatusDone)
			require.NoError(t, err)
			_, err = fixtures.CreateTestTicket(event.ID, loket.ID, 2, models.TicketStatusHold)
			require.NoError(t, err)
			_, err = fixtures.CreateTestTicket(event.ID, loket.ID, 3, models.TicketStatusCalled)
			require.NoError(t, err)
			_, err = fixtures.CreateTestTicket(event.ID, loket.ID, 4, models.TicketStatusWaiting)
			require.NoError(t, err)
			_, err = fixtures.CreateTestTicket(event.ID, loket.ID, 5, models.TicketStatusHold)
			require.NoError(t, err)
			_, err = fixtures.CreateTestTicket(event.ID, loket.ID, 6, models.TicketStatusWaiting)
			require.NoError(t, err)

			current := 3
			require.NoError(t, testDB.DB.Model(&models.Loket{}).
				Where("id = ?", loket.ID).
				Updates(map[string]interface{}{"current_number": current, "last_ticket_number": 6}).Error)

			info, err := flow.LoketInfo(ctx, loket.ID)
			require.NoError(t, err)
			require.NotNil(t, info.CurrentNumber)
			assert.Equal(t, 3, *info.CurrentNumber)
			assert.Equal(t, int64(2), info.QueueLength)
			assert.Equal(t, []int{2, 5}, info.HoldNumbers)
			assert.Equal(t, 6, info.LastTicketNumber)
		})

		t.Run("UnknownLoket", func(t *testing.T) {
			_, err := flow.LoketInfo(ctx, 99999)
			assert.True(t, businessflow.IsLoketNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestEventState(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newQueryFlow(testDB)
		ctx := testingutil.CreateTestContext()

		event, err := fixtures.CreateTestEvent("State Expo")
		require.NoError(t, err)
		loketA, err := fixtures.CreateTestLoket(event.ID, "Desk A")
		require.NoError(t, err)
		loketB, err := fixtures.CreateTestLoket(event.ID, "Desk B")
		require.NoError(t, err)

		_, err = fixtures.CreateTestTicket(event.ID, loketB.ID, 1, models.TicketStatusWaiting)
		require.NoError(t, err)
		_, err = fixtures.CreateTestTicket(event.ID, loketB.ID, 2, models.TicketStatusWaiting)
		require.NoError(t, err)

		state, err := flow.EventState(ctx, event.ID)
		require.NoError(t, err)
		require.Len(t, state, 2)

		byID := make(map[uint]int64, len(state))
		for _, info := range state {
			byID[info.LoketID] = info.QueueLength
		}
		assert.Equal(t, int64(0), byID[loketA.ID])
		assert.Equal(t, int64(2), byID[loketB.ID])

		t.Run("UnknownEvent", func(t *testing.T) {
			_, err := flow.EventState(ctx, 99999)
			assert.True(t, businessflow.IsEventNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
