//go:build unit

package booking_test

import (
	"testing"
	"time"

	"slotbook/internal/domain/booking"
	"slotbook/internal/domain/schedule"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func newTestReservation(t *testing.T) *booking.Reservation {
	t.Helper()
	window, err := schedule.NewTimeWindow(testNow.Add(time.Hour), testNow.Add(2*time.Hour))
	require.NoError(t, err)
	contact, err := booking.NewContact("Dana Reyes", "555-0100", "dana@example.com", "")
	require.NoError(t, err)

	res, err := booking.NewReservation(
		uuid.New(), uuid.New(), uuid.New(), uuid.New(),
		window, time.Hour, contact, testNow,
	)
	require.NoError(t, err)
	return res
}

func TestNewReservation(t *testing.T) {
	t.Run("starts pending", func(t *testing.T) {
		res := newTestReservation(t)
		assert.Equal(t, booking.StatusPending, res.Status())
		assert.True(t, res.IsActive())
	})

	t.Run("window must match service duration", func(t *testing.T) {
		window, err := schedule.NewTimeWindow(testNow, testNow.Add(30*time.Minute))
		require.NoError(t, err)
		contact, err := booking.NewContact("Dana Reyes", "", "dana@example.com", "")
		require.NoError(t, err)

		_, err = booking.NewReservation(
			uuid.New(), uuid.New(), uuid.New(), uuid.New(),
			window, time.Hour, contact, testNow,
		)
		assert.Error(t, err)
	})
}

func TestReservationTransitions(t *testing.T) {
	later := testNow.Add(time.Minute)

	t.Run("pending to confirmed", func(t *testing.T) {
		res := newTestReservation(t)
		require.NoError(t, res.Confirm(later))
		assert.Equal(t, booking.StatusConfirmed, res.Status())
		assert.Equal(t, later, res.UpdatedAt())
	})

	t.Run("pending to cancelled", func(t *testing.T) {
		res := newTestReservation(t)
		require.NoError(t, res.Cancel(later))
		assert.True(t, res.IsCancelled())
		assert.False(t, res.IsActive())
	})

	t.Run("confirmed to cancelled", func(t *testing.T) {
		res := newTestReservation(t)
		require.NoError(t, res.Confirm(later))
		require.NoError(t, res.Cancel(later))
		assert.True(t, res.IsCancelled())
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		res := newTestReservation(t)
		require.NoError(t, res.Cancel(later))
		assert.Error(t, res.Confirm(later))
		assert.Error(t, res.Cancel(later))
	})

	t.Run("confirmed cannot confirm again", func(t *testing.T) {
		res := newTestReservation(t)
		require.NoError(t, res.Confirm(later))
		assert.Error(t, res.Confirm(later))
	})
}

func TestReservationReschedule(t *testing.T) {
	later := testNow.Add(time.Minute)

	t.Run("moves the window and resets to pending", func(t *testing.T) {
		res := newTestReservation(t)
		require.NoError(t, res.Confirm(later))

		newEntry := uuid.New()
		newWindow, err := schedule.NewTimeWindow(testNow.Add(3*time.Hour), testNow.Add(4*time.Hour))
		require.NoError(t, err)

		require.NoError(t, res.Reschedule(newEntry, res.ProviderID(), newWindow, later))
		assert.Equal(t, booking.StatusPending, res.Status())
		assert.Equal(t, newEntry, res.LedgerEntryID())
		assert.True(t, res.Window().Equal(newWindow))
	})

	t.Run("can switch provider", func(t *testing.T) {
		res := newTestReservation(t)
		newProvider := uuid.New()
		newWindow, err := schedule.NewTimeWindow(testNow.Add(3*time.Hour), testNow.Add(4*time.Hour))
		require.NoError(t, err)

		require.NoError(t, res.Reschedule(uuid.New(), newProvider, newWindow, later))
		assert.Equal(t, newProvider, res.ProviderID())
	})

	t.Run("cancelled booking cannot be rescheduled", func(t *testing.T) {
		res := newTestReservation(t)
		require.NoError(t, res.Cancel(later))

		newWindow, err := schedule.NewTimeWindow(testNow.Add(3*time.Hour), testNow.Add(4*time.Hour))
		require.NoError(t, err)
		assert.Error(t, res.Reschedule(uuid.New(), res.ProviderID(), newWindow, later))
	})
}

func TestReservationOwnership(t *testing.T) {
	res := newTestReservation(t)
	assert.True(t, res.IsOwnedBy(res.ClientID()))
	assert.False(t, res.IsOwnedBy(uuid.New()))
}

func TestContact(t *testing.T) {
	t.Run("name is required", func(t *testing.T) {
		_, err := booking.NewContact("", "", "dana@example.com", "")
		assert.Error(t, err)
	})

	t.Run("email must look like an address", func(t *testing.T) {
		_, err := booking.NewContact("Dana Reyes", "", "not-an-email", "")
		assert.Error(t, err)
	})

	t.Run("email is optional", func(t *testing.T) {
		_, err := booking.NewContact("Dana Reyes", "555-0100", "", "")
		assert.NoError(t, err)
	})
}
