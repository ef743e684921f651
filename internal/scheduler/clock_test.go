package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayBoundaries(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	t.Run("DayStartTruncatesInLocation", func(t *testing.T) {
		at := time.Date(2026, 3, 10, 23, 45, 0, 0, time.UTC)
		start := dayStart(at, time.UTC)
		assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), start)
	})

	t.Run("SameDayDependsOnLocation", func(t *testing.T) {
		// 2026-03-11 02:00 UTC is still 2026-03-10 in Chicago.
		a := time.Date(2026, 3, 11, 2, 0, 0, 0, time.UTC)
		b := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)

		assert.False(t, sameDay(a, b, time.UTC))
		assert.True(t, sameDay(a, b, chicago))
	})

	t.Run("DayKeyRendersInLocation", func(t *testing.T) {
		at := time.Date(2026, 3, 11, 2, 0, 0, 0, time.UTC)
		assert.Equal(t, "2026-03-11", dayKey(at, time.UTC))
		assert.Equal(t, "2026-03-10", dayKey(at, chicago))
	})
}
