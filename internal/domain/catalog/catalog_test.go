//go:build unit

package catalog_test

import (
	"testing"
	"time"

	"slotbook/internal/domain/catalog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewService(t *testing.T) {
	id := uuid.New()

	t.Run("valid service", func(t *testing.T) {
		svc, err := catalog.NewService(id, "Consultation", 60, 5000, "general")
		require.NoError(t, err)
		assert.Equal(t, id, svc.ID())
		assert.Equal(t, 60, svc.DurationMin())
		assert.Equal(t, time.Hour, svc.Duration())
	})

	t.Run("name is required", func(t *testing.T) {
		_, err := catalog.NewService(id, "", 60, 5000, "general")
		assert.ErrorIs(t, err, catalog.ErrNameRequired)
	})

	t.Run("duration must be positive", func(t *testing.T) {
		_, err := catalog.NewService(id, "Consultation", 0, 5000, "general")
		assert.ErrorIs(t, err, catalog.ErrInvalidDuration)
	})

	t.Run("price cannot be negative", func(t *testing.T) {
		_, err := catalog.NewService(id, "Consultation", 60, -1, "general")
		assert.ErrorIs(t, err, catalog.ErrNegativePrice)
	})
}

func TestNewProvider(t *testing.T) {
	t.Run("valid provider", func(t *testing.T) {
		p, err := catalog.NewProvider(uuid.New(), "Dana")
		require.NoError(t, err)
		assert.Equal(t, "Dana", p.Name())
	})

	t.Run("name is required", func(t *testing.T) {
		_, err := catalog.NewProvider(uuid.New(), "")
		assert.ErrorIs(t, err, catalog.ErrProviderNameRequired)
	})
}

func TestQualifiedProviders(t *testing.T) {
	mk := func(name string) *catalog.Provider {
		p, err := catalog.NewProvider(uuid.New(), name)
		require.NoError(t, err)
		return p
	}
	dana := mk("Dana")
	riley := mk("Riley")
	all := []*catalog.Provider{dana, riley}

	t.Run("no qualification rows means every provider qualifies", func(t *testing.T) {
		assert.Equal(t, all, catalog.QualifiedProviders(all, nil))
	})

	t.Run("explicit rows restrict the set", func(t *testing.T) {
		out := catalog.QualifiedProviders(all, []uuid.UUID{riley.ID()})
		require.Len(t, out, 1)
		assert.Equal(t, riley.ID(), out[0].ID())
	})

	t.Run("rows naming no known provider yield nothing", func(t *testing.T) {
		assert.Empty(t, catalog.QualifiedProviders(all, []uuid.UUID{uuid.New()}))
	})
}

func TestIsQualified(t *testing.T) {
	id := uuid.New()
	assert.True(t, catalog.IsQualified(id, nil))
	assert.True(t, catalog.IsQualified(id, []uuid.UUID{id}))
	assert.False(t, catalog.IsQualified(id, []uuid.UUID{uuid.New()}))
}
