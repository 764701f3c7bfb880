//go:build unit

package cache

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	serviceID := uuid.New()
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	t.Run("location midnight and utc midnight of the same day share a key", func(t *testing.T) {
		// Reads key by the handler's UTC-midnight date; invalidation keys by
		// the window's location midnight. Both must land on one entry.
		utcMidnight := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		tokyoMidnight := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)

		assert.Equal(t, cacheKey(serviceID, utcMidnight), cacheKey(serviceID, tokyoMidnight))
	})

	t.Run("different calendar days never share a key", func(t *testing.T) {
		assert.NotEqual(t,
			cacheKey(serviceID, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)),
			cacheKey(serviceID, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)),
		)
	})

	t.Run("different services never share a key", func(t *testing.T) {
		day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		assert.NotEqual(t, cacheKey(serviceID, day), cacheKey(uuid.New(), day))
	})
}
