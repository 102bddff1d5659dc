package tests

import (
	"testing"

	"github.com/antrian-id/antrian-loket/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketStatus(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		for _, s := range []models.TicketStatus{
			models.TicketStatusWaiting,
			models.TicketStatusCalled,
			models.TicketStatusHold,
			models.TicketStatusDone,
		} {
			assert.True(t, s.Valid(), "status %s", s)
		}
		assert.False(t, models.TicketStatus("cancelled").Valid())
		assert.False(t, models.TicketStatus("").Valid())
	})

	t.Run("CanHold", func(t *testing.T) {
		assert.True(t, models.TicketStatusWaiting.CanHold())
		assert.True(t, models.TicketStatusCalled.CanHold())
		assert.False(t, models.TicketStatusHold.CanHold())
		assert.False(t, models.TicketStatusDone.CanHold())
	})

	t.Run("ScanAndValue", func(t *testing.T) {
		var s models.TicketStatus
		require.NoError(t, s.Scan("hold"))
		assert.Equal(t, models.TicketStatusHold, s)

		require.NoError(t, s.Scan([]byte("called")))
		assert.Equal(t, models.TicketStatusCalled, s)

		require.NoError(t, s.Scan(nil))
		assert.Equal(t, models.TicketStatus(""), s)

		assert.Error(t, s.Scan(42))

		v, err := models.TicketStatusDone.Value()
		require.NoError(t, err)
		assert.Equal(t, "done", v)
	})
}

func TestDefaultSoundEnabled(t *testing.T) {
	assert.True(t, models.DefaultSoundEnabled(models.SoundRoleMultiDisplay))
	assert.True(t, models.DefaultSoundEnabled(models.SoundRoleLoketDisplay))
	assert.False(t, models.DefaultSoundEnabled(models.SoundRoleMultiDisplayLED))
	assert.False(t, models.DefaultSoundEnabled(models.SoundRoleLoketDisplayLED))
	assert.False(t, models.DefaultSoundEnabled(models.SoundRoleLoketAdmin))
}
