package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestDecodeDueDateConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		for _, raw := range []string{"", "{}", `{"days_before": 0}`, `{"days_before": -2}`} {
			cfg, err := DecodeDueDateConfig(datatypes.JSON(raw))
			require.NoError(t, err, raw)
			assert.Equal(t, 1, cfg.DaysBefore, raw)
		}
	})

	t.Run("PriorityFilter", func(t *testing.T) {
		cfg, err := DecodeDueDateConfig(datatypes.JSON(`{"days_before": 3, "priority_filter": ["high", "urgent"]}`))
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.DaysBefore)
		assert.True(t, cfg.Matches(PriorityHigh))
		assert.False(t, cfg.Matches(PriorityMedium))
	})

	t.Run("EmptyFilterMatchesAll", func(t *testing.T) {
		cfg, err := DecodeDueDateConfig(datatypes.JSON(`{}`))
		require.NoError(t, err)
		assert.True(t, cfg.Matches(PriorityLow))
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := DecodeDueDateConfig(datatypes.JSON(`{"days_before": "soon"}`))
		assert.Error(t, err)
	})
}

func TestDecodeScheduleConfig(t *testing.T) {
	t.Run("DailyDefault", func(t *testing.T) {
		cfg, err := DecodeScheduleConfig(datatypes.JSON(`{"schedule_time": "07:30"}`))
		require.NoError(t, err)
		assert.Equal(t, ScheduleDaily, cfg.ScheduleType)
	})

	t.Run("RejectsUnknownType", func(t *testing.T) {
		_, err := DecodeScheduleConfig(datatypes.JSON(`{"schedule_type": "monthly", "schedule_time": "07:30"}`))
		assert.Error(t, err)
	})

	t.Run("RejectsBadTime", func(t *testing.T) {
		for _, raw := range []string{`{"schedule_time": "24:00"}`, `{"schedule_time": "nine"}`, `{}`} {
			_, err := DecodeScheduleConfig(datatypes.JSON(raw))
			assert.Error(t, err, raw)
		}
	})
}

func TestDecodeActions(t *testing.T) {
	t.Run("SendNotification", func(t *testing.T) {
		actions, err := DecodeActions(datatypes.JSON(
			`[{"type": "send_notification", "title": "Heads up", "priority": "urgent"}]`))
		require.NoError(t, err)
		require.Len(t, actions, 1)

		a, ok := actions[0].(SendNotificationAction)
		require.True(t, ok)
		assert.Equal(t, "Heads up", a.Title)
		assert.Equal(t, PriorityUrgent, a.Priority)
	})

	t.Run("PreservesOrder", func(t *testing.T) {
		actions, err := DecodeActions(datatypes.JSON(
			`[{"type": "send_notification", "title": "first"}, {"type": "send_notification", "title": "second"}]`))
		require.NoError(t, err)
		require.Len(t, actions, 2)
		assert.Equal(t, "first", actions[0].(SendNotificationAction).Title)
		assert.Equal(t, "second", actions[1].(SendNotificationAction).Title)
	})

	t.Run("UnknownTypeFailsLoudly", func(t *testing.T) {
		_, err := DecodeActions(datatypes.JSON(`[{"type": "send_email"}]`))
		require.Error(t, err)

		var unsupported *UnsupportedActionError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, "send_email", unsupported.Type)
	})

	t.Run("EmptyIsAllowed", func(t *testing.T) {
		actions, err := DecodeActions(nil)
		require.NoError(t, err)
		assert.Empty(t, actions)
	})
}
