package tests

import (
	"context"
	"testing"

	"github.com/antrian-id/antrian-loket/models"
	"github.com/antrian-id/antrian-loket/repository"
	testingutil "github.com/antrian-id/antrian-loket/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewTicketRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		event, err := fixtures.CreateTestEvent("Repo Expo")
		require.NoError(t, err)
		loket, err := fixtures.CreateTestLoket(event.ID, "Repo Desk")
		require.NoError(t, err)

		_, err = fixtures.CreateTestTicket(event.ID, loket.ID, 1, models.TicketStatusDone)
		require.NoError(t, err)
		_, err = fixtures.CreateTestTicket(event.ID, loket.ID, 2, models.TicketStatusHold)
		require.NoError(t, err)
		_, err = fixtures.CreateTestTicket(event.ID, loket.ID, 3, models.TicketStatusWaiting)
		require.NoError(t, err)
		_, err = fixtures.CreateTestTicket(event.ID, loket.ID, 4, models.TicketStatusWaiting)
		require.NoError(t, err)
		_, err = fixtures.CreateTestTicket(event.ID, loket.ID, 5, models.TicketStatusHold)
		require.NoError(t, err)

		t.Run("MinWaitingByLoket", func(t *testing.T) {
			ticket, err := repo.MinWaitingByLoket(ctx, loket.ID)
			require.NoError(t, err)
			require.NotNil(t, ticket)
			assert.Equal(t, 3, ticket.Number)
		})

		t.Run("MinWaitingByLoketEmpty", func(t *testing.T) {
			empty, err := fixtures.CreateTestLoket(event.ID, "Empty Desk")
			require.NoError(t, err)

			ticket, err := repo.MinWaitingByLoket(ctx, empty.ID)
			require.NoError(t, err)
			assert.Nil(t, ticket)
		})

		t.Run("ByLoketAndNumber", func(t *testing.T) {
			ticket, err := repo.ByLoketAndNumber(ctx, loket.ID, 2)
			require.NoError(t, err)
			require.NotNil(t, ticket)
			assert.Equal(t, models.TicketStatusHold, ticket.Status)

			missing, err := repo.ByLoketAndNumber(ctx, loket.ID, 42)
			require.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("HoldNumbersAscending", func(t *testing.T) {
			numbers, err := repo.HoldNumbersByLoket(ctx, loket.ID)
			require.NoError(t, err)
			assert.Equal(t, []int{2, 5}, numbers)
		})

		t.Run("CountByLoketAndStatus", func(t *testing.T) {
			waiting, err := repo.CountByLoketAndStatus(ctx, loket.ID, models.TicketStatusWaiting)
			require.NoError(t, err)
			assert.Equal(t, int64(2), waiting)

			done, err := repo.CountByLoketAndStatus(ctx, loket.ID, models.TicketStatusDone)
			require.NoError(t, err)
			assert.Equal(t, int64(1), done)
		})

		t.Run("DeleteByLoket", func(t *testing.T) {
			require.NoError(t, repo.DeleteByLoket(ctx, loket.ID))

			tickets, err := repo.ListByLoket(ctx, loket.ID)
			require.NoError(t, err)
			assert.Empty(t, tickets)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLoketRepositoryLocking(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewLoketRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		event, err := fixtures.CreateTestEvent("Lock Expo")
		require.NoError(t, err)
		loket, err := fixtures.CreateTestLoket(event.ID, "Lock Desk")
		require.NoError(t, err)

		t.Run("ByIDForUpdateInTransaction", func(t *testing.T) {
			err := repository.WithTransaction(ctx, testDB.DB, func(txCtx context.Context) error {
				locked, err := repo.ByIDForUpdate(txCtx, loket.ID)
				if err != nil {
					return err
				}
				assert.Equal(t, loket.ID, locked.ID)
				return nil
			})
			require.NoError(t, err)
		})

		t.Run("ByEventAndID", func(t *testing.T) {
			found, err := repo.ByEventAndID(ctx, event.ID, loket.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, loket.Code, found.Code)

			other, err := fixtures.CreateTestEvent("Lock Expo B")
			require.NoError(t, err)
			missing, err := repo.ByEventAndID(ctx, other.ID, loket.ID)
			require.NoError(t, err)
			assert.Nil(t, missing)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestEventRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewEventRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		event, err := fixtures.CreateTestEvent("Event Repo Expo")
		require.NoError(t, err)

		t.Run("ByCode", func(t *testing.T) {
			found, err := repo.ByCode(ctx, event.Code)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, event.ID, found.ID)

			missing, err := repo.ByCode(ctx, "NO-SUCH-CODE")
			require.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("FilterByActive", func(t *testing.T) {
			active := true
			events, err := repo.ByFilter(ctx, models.EventFilter{IsActive: &active}, "id ASC", 0, 0)
			require.NoError(t, err)
			assert.Len(t, events, 1)
		})

		return nil
	})
	require.NoError(t, err)
}
