package tests

import (
	"testing"

	"github.com/antrian-id/antrian-loket/app/dto"
	businessflow "github.com/antrian-id/antrian-loket/business_flow"
	"github.com/antrian-id/antrian-loket/models"
	"github.com/antrian-id/antrian-loket/repository"
	testingutil "github.com/antrian-id/antrian-loket/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSoundFlow(testDB *testingutil.TestDB) businessflow.SoundFlow {
	return businessflow.NewSoundFlow(
		repository.NewEventRepository(testDB.DB),
		repository.NewSoundSourceRepository(testDB.DB),
		testDB.DB,
	)
}

func TestSoundConfig(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newSoundFlow(testDB)
		ctx := testingutil.CreateTestContext()

		event, err := fixtures.CreateTestEvent("Sound Expo")
		require.NoError(t, err)

		t.Run("Defaults", func(t *testing.T) {
			defaults := map[string]bool{
				models.SoundRoleMultiDisplay:    true,
				models.SoundRoleMultiDisplayLED: false,
				models.SoundRoleLoketDisplay:    true,
				models.SoundRoleLoketDisplayLED: false,
				models.SoundRoleLoketAdmin:      false,
			}
			for role, want := range defaults {
				cfg, err := flow.GetSoundConfig(ctx, event.ID, role)
				require.NoError(t, err, "role %s", role)
				assert.Equal(t, want, cfg.Enabled, "role %s", role)
			}
		})

		t.Run("InvalidRole", func(t *testing.T) {
			_, err := flow.GetSoundConfig(ctx, event.ID, "kiosk")
			assert.True(t, businessflow.IsInvalidSoundRole(err))
		})

		t.Run("UnknownEvent", func(t *testing.T) {
			_, err := flow.GetSoundConfig(ctx, 99999, models.SoundRoleMultiDisplay)
			assert.True(t, businessflow.IsEventNotFound(err))
		})

		t.Run("UpdateReplacesAllRoles", func(t *testing.T) {
			updated, err := flow.UpdateSoundConfig(ctx, event.ID, &dto.UpdateSoundConfigRequest{
				MultiDisplay:    false,
				MultiDisplayLED: true,
				LoketDisplay:    false,
				LoketDisplayLED: true,
				LoketAdmin:      true,
			}, testMetadata())
			require.NoError(t, err)
			assert.False(t, updated.MultiDisplay)
			assert.True(t, updated.LoketAdmin)

			cfg, err := flow.GetSoundConfig(ctx, event.ID, models.SoundRoleMultiDisplay)
			require.NoError(t, err)
			assert.False(t, cfg.Enabled)

			cfg, err = flow.GetSoundConfig(ctx, event.ID, models.SoundRoleLoketAdmin)
			require.NoError(t, err)
			assert.True(t, cfg.Enabled)
		})

		t.Run("UpdateIsIdempotentUpsert", func(t *testing.T) {
			_, err := flow.UpdateSoundConfig(ctx, event.ID, &dto.UpdateSoundConfigRequest{
				MultiDisplay: true,
			}, testMetadata())
			require.NoError(t, err)

			cfg, err := flow.GetSoundConfig(ctx, event.ID, models.SoundRoleMultiDisplay)
			require.NoError(t, err)
			assert.True(t, cfg.Enabled)

			var count int64
			require.NoError(t, testDB.DB.Model(&models.SoundSource{}).
				Where("event_id = ?", event.ID).Count(&count).Error)
			assert.Equal(t, int64(5), count)
		})

		return nil
	})
	require.NoError(t, err)
}
