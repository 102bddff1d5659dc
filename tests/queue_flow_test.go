// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"sync"
	"testing"

	businessflow "github.com/antrian-id/antrian-loket/business_flow"
	"github.com/antrian-id/antrian-loket/models"
	"github.com/antrian-id/antrian-loket/repository"
	testingutil "github.com/antrian-id/antrian-loket/testing"
	"github.com/antrian-id/antrian-loket/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueueFlow(testDB *testingutil.TestDB) businessflow.QueueFlow {
	return businessflow.NewQueueFlow(
		repository.NewEventRepository(testDB.DB),
		repository.NewLoketRepository(testDB.DB),
		repository.NewTicketRepository(testDB.DB),
		testDB.DB,
		nil,
	)
}

func testMetadata() *businessflow.ClientMetadata {
	return businessflow.NewClientMetadata("127.0.0.1", "test-agent")
}

func TestIssueTicket(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newQueueFlow(testDB)
		ctx := testingutil.CreateTestContext()

		event, err := fixtures.CreateTestEvent("Job Fair")
		require.NoError(t, err)
		loket, err := fixtures.CreateTestLoket(event.ID, "Registration")
		require.NoError(t, err)

		t.Run("SequentialNumbers", func(t *testing.T) {
			for want := 1; want <= 5; want++ {
				resp, err := flow.IssueTicket(ctx, event.ID, loket.ID, testMetadata())
				require.NoError(t, err)
				assert.Equal(t, want, resp.Number)
				assert.Equal(t, models.TicketStatusWaiting.String(), resp.Status)
				assert.Equal(t, event.Name, resp.EventName)
				assert.Equal(t, loket.Code, resp.LoketCode)
			}

			var stored models.Loket
			require.NoError(t, testDB.DB.First(&stored, loket.ID).Error)
			assert.Equal(t, 5, stored.LastTicketNumber)
		})

		t.Run("UnknownLoket", func(t *testing.T) {
			_, err := flow.IssueTicket(ctx, event.ID, 99999, testMetadata())
			assert.True(t, businessflow.IsLoketNotFound(err))
		})

		t.Run("LoketOfOtherEvent", func(t *testing.T) {
			other, err := fixtures.CreateTestEvent("Other Fair")
			require.NoError(t, err)

			_, err = flow.IssueTicket(ctx, other.ID, loket.ID, testMetadata())
			assert.True(t, businessflow.IsLoketNotFound(err))
		})

		t.Run("InactiveEventStillIssues", func(t *testing.T) {
			// Deactivating an event does not close its queues
			inactive, err := fixtures.CreateTestEvent("Closed Fair")
			require.NoError(t, err)
			inactive.IsActive = utils.ToPtr(false)
			require.NoError(t, testDB.DB.Save(inactive).Error)

			closedLoket, err := fixtures.CreateTestLoket(inactive.ID, "Closed")
			require.NoError(t, err)

			resp, err := flow.IssueTicket(ctx, inactive.ID, closedLoket.ID, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, 1, resp.Number)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestIssueTicketConcurrent(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newQueueFlow(testDB)
		ctx := testingutil.CreateTestContext()

		event, err := fixtures.CreateTestEvent("Concurrency Fair")
		require.NoError(t, err)
		loket, err := fixtures.CreateTestLoket(event.ID, "Counter A")
		require.NoError(t, err)

		const n = 120

		var wg sync.WaitGroup
		var mu sync.Mutex
		numbers := make(map[int]int, n)
		var failures []error

		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				resp, err := flow.IssueTicket(ctx, event.ID, loket.ID, testMetadata())
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failures = append(failures, err)
					return
				}
				numbers[resp.Number]++
			}()
		}
		wg.Wait()

		require.Empty(t, failures)
		require.Len(t, numbers, n)
		for want := 1; want <= n; want++ {
			assert.Equal(t, 1, numbers[want], "number %d issued exactly once", want)
		}

		var stored models.Loket
		require.NoError(t, testDB.DB.First(&stored, loket.ID).Error)
		assert.Equal(t, n, stored.LastTicketNumber)

		return nil
	})
	require.NoError(t, err)
}

func TestCallNext(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newQueueFlow(testDB)
		ctx := testingutil.CreateTestContext()

		event, err := fixtures.CreateTestEvent("Call Fair")
		require.NoError(t, err)
		loket, err := fixtures.CreateTestLoket(event.ID, "Counter B")
		require.NoError(t, err)

		t.Run("EmptyQueue", func(t *testing.T) {
			resp, err := flow.CallNext(ctx, loket.ID, testMetadata())
			require.NoError(t, err)
			assert.Nil(t, resp.CalledNumber)
			assert.Nil(t, resp.Ticket)
			assert.Equal(t, "No ticket waiting", resp.Message)
		})

		t.Run("CallsLowestWaiting", func(t *testing.T) {
			for i := 0; i < 3; i++ {
				_, err := flow.IssueTicket(ctx, event.ID, loket.ID, testMetadata())
				require.NoError(t, err)
			}

			resp, err := flow.CallNext(ctx, loket.ID, testMetadata())
			require.NoError(t, err)
			require.NotNil(t, resp.CalledNumber)
			assert.Equal(t, 1, *resp.CalledNumber)
			require.NotNil(t, resp.Ticket)
			assert.Equal(t, models.TicketStatusCalled.String(), resp.Ticket.Status)
			assert.NotNil(t, resp.Ticket.CalledAt)

			var stored models.Loket
			require.NoError(t, testDB.DB.First(&stored, loket.ID).Error)
			require.NotNil(t, stored.CurrentNumber)
			assert.Equal(t, 1, *stored.CurrentNumber)
		})

		t.Run("SkipsHeldNumbers", func(t *testing.T) {
			// Hold number 2 out of band, leaving 3 as the lowest waiting
			var second models.Ticket
			require.NoError(t, testDB.DB.Where("loket_id = ? AND number = ?", loket.ID, 2).First(&second).Error)
			second.Status = models.TicketStatusHold
			require.NoError(t, testDB.DB.Save(&second).Error)

			resp, err := flow.CallNext(ctx, loket.ID, testMetadata())
			require.NoError(t, err)
			require.NotNil(t, resp.CalledNumber)
			assert.Equal(t, 3, *resp.CalledNumber)
		})

		t.Run("UnknownLoket", func(t *testing.T) {
			_, err := flow.CallNext(ctx, 99999, testMetadata())
			assert.True(t, businessflow.IsLoketNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestHoldAndRecall(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newQueueFlow(testDB)
		ctx := testingutil.CreateTestContext()

		event, err := fixtures.CreateTestEvent("Hold Fair")
		require.NoError(t, err)
		loket, err := fixtures.CreateTestLoket(event.ID, "Counter C")
		require.NoError(t, err)

		t.Run("HoldWithoutCurrent", func(t *testing.T) {
			_, err := flow.HoldCurrent(ctx, loket.ID, testMetadata())
			assert.True(t, businessflow.IsNoActiveNumber(err))
		})

		t.Run("HoldClearsCurrent", func(t *testing.T) {
			_, err := flow.IssueTicket(ctx, event.ID, loket.ID, testMetadata())
			require.NoError(t, err)
			_, err = flow.CallNext(ctx, loket.ID, testMetadata())
			require.NoError(t, err)

			held, err := flow.HoldCurrent(ctx, loket.ID, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, 1, held.Number)
			assert.Equal(t, models.TicketStatusHold.String(), held.Status)

			var stored models.Loket
			require.NoError(t, testDB.DB.First(&stored, loket.ID).Error)
			assert.Nil(t, stored.CurrentNumber)
		})

		t.Run("RecallUnknownNumber", func(t *testing.T) {
			_, err := flow.RecallHeld(ctx, loket.ID, 42, testMetadata())
			assert.True(t, businessflow.IsHeldTicketNotFound(err))
		})

		t.Run("RecallWaitingNumberFails", func(t *testing.T) {
			resp, err := flow.IssueTicket(ctx, event.ID, loket.ID, testMetadata())
			require.NoError(t, err)

			_, err = flow.RecallHeld(ctx, loket.ID, resp.Number, testMetadata())
			assert.True(t, businessflow.IsHeldTicketNotFound(err))
		})

		t.Run("HoldFromForbiddenStatus", func(t *testing.T) {
			doneLoket, err := fixtures.CreateTestLoket(event.ID, "Done Desk")
			require.NoError(t, err)
			_, err = fixtures.CreateTestTicket(event.ID, doneLoket.ID, 1, models.TicketStatusDone)
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(&models.Loket{}).
				Where("id = ?", doneLoket.ID).
				Updates(map[string]interface{}{"current_number": 1, "last_ticket_number": 1}).Error)

			_, err = flow.HoldCurrent(ctx, doneLoket.ID, testMetadata())
			assert.True(t, businessflow.IsCannotHoldStatus(err))
		})

		t.Run("CurrentNumberWithoutTicket", func(t *testing.T) {
			brokenLoket, err := fixtures.CreateTestLoket(event.ID, "Broken Desk")
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(&models.Loket{}).
				Where("id = ?", brokenLoket.ID).
				Update("current_number", 99).Error)

			_, err = flow.HoldCurrent(ctx, brokenLoket.ID, testMetadata())
			assert.True(t, businessflow.IsQueueStateCorrupted(err))
		})

		t.Run("RecallRestoresCurrent", func(t *testing.T) {
			recalled, err := flow.RecallHeld(ctx, loket.ID, 1, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, 1, recalled.Number)
			assert.Equal(t, models.TicketStatusCalled.String(), recalled.Status)

			var stored models.Loket
			require.NoError(t, testDB.DB.First(&stored, loket.ID).Error)
			require.NotNil(t, stored.CurrentNumber)
			assert.Equal(t, 1, *stored.CurrentNumber)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRepeat(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newQueueFlow(testDB)
		ctx := testingutil.CreateTestContext()

		event, err := fixtures.CreateTestEvent("Repeat Fair")
		require.NoError(t, err)
		loket, err := fixtures.CreateTestLoket(event.ID, "Counter D")
		require.NoError(t, err)

		updated, err := flow.Repeat(ctx, loket.ID, testMetadata())
		require.NoError(t, err)
		assert.NotNil(t, updated.LastRepeatAt)

		var stored models.Loket
		require.NoError(t, testDB.DB.First(&stored, loket.ID).Error)
		assert.NotNil(t, stored.LastRepeatAt)

		return nil
	})
	require.NoError(t, err)
}

func TestQueueLifecycle(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newQueueFlow(testDB)
		loketFlow := businessflow.NewLoketFlow(
			repository.NewEventRepository(testDB.DB),
			repository.NewLoketRepository(testDB.DB),
			repository.NewTicketRepository(testDB.DB),
			testDB.DB,
			nil,
		)
		ctx := testingutil.CreateTestContext()

		event, err := fixtures.CreateTestEvent("Lifecycle Fair")
		require.NoError(t, err)
		loket, err := fixtures.CreateTestLoket(event.ID, "Counter E")
		require.NoError(t, err)

		// Three visitors take numbers
		for i := 0; i < 3; i++ {
			_, err := flow.IssueTicket(ctx, event.ID, loket.ID, testMetadata())
			require.NoError(t, err)
		}

		// Serve 1, hold it, serve 2, recall 1
		first, err := flow.CallNext(ctx, loket.ID, testMetadata())
		require.NoError(t, err)
		assert.Equal(t, 1, *first.CalledNumber)

		_, err = flow.HoldCurrent(ctx, loket.ID, testMetadata())
		require.NoError(t, err)

		second, err := flow.CallNext(ctx, loket.ID, testMetadata())
		require.NoError(t, err)
		assert.Equal(t, 2, *second.CalledNumber)

		recalled, err := flow.RecallHeld(ctx, loket.ID, 1, testMetadata())
		require.NoError(t, err)
		assert.Equal(t, 1, recalled.Number)

		var stored models.Loket
		require.NoError(t, testDB.DB.First(&stored, loket.ID).Error)
		require.NotNil(t, stored.CurrentNumber)
		assert.Equal(t, 1, *stored.CurrentNumber)

		// The ticket called before the recall stays called
		var ticket2 models.Ticket
		require.NoError(t, testDB.DB.Where("loket_id = ? AND number = ?", loket.ID, 2).First(&ticket2).Error)
		assert.Equal(t, models.TicketStatusCalled, ticket2.Status)

		// Reset wipes the queue and restarts numbering
		reset, err := loketFlow.ResetLoket(ctx, event.ID, loket.ID, testMetadata())
		require.NoError(t, err)
		assert.Nil(t, reset.CurrentNumber)
		assert.Equal(t, 0, reset.LastTicketNumber)

		var count int64
		require.NoError(t, testDB.DB.Model(&models.Ticket{}).Where("loket_id = ?", loket.ID).Count(&count).Error)
		assert.Equal(t, int64(0), count)

		next, err := flow.IssueTicket(ctx, event.ID, loket.ID, testMetadata())
		require.NoError(t, err)
		assert.Equal(t, 1, next.Number)

		return nil
	})
	require.NoError(t, err)
}
