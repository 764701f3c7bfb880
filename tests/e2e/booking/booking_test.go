//go:build e2e

package booking_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"slotbook/internal/domain/identity"
	"slotbook/internal/infra/outbox"
	"slotbook/internal/infra/readstore"
	"slotbook/internal/infra/repository"
	"slotbook/internal/infra/uow"
	"slotbook/internal/pkg/clock"
	"slotbook/internal/pkg/config"
	"slotbook/internal/pkg/errs"
	"slotbook/internal/usecase/commands"
	"slotbook/internal/usecase/queries"
	"slotbook/tests/e2e"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BookingSuite struct {
	suite.Suite
	pool  *pgxpool.Pool
	cmds  commands.BookingCommands
	avail queries.AvailabilityQueries

	serviceID  uuid.UUID
	providerID uuid.UUID
	day        time.Time
}

func (s *BookingSuite) SetupSuite() {
	s.pool = e2e.SetupDatabase(s.T())
	s.day = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	s.serviceID, s.providerID = e2e.SeedCatalog(s.T(), s.pool, 60, s.day, 9, 18)

	unit := uow.NewPostgresUoW(s.pool, config.NewTestConfig())
	views := readstore.NewBookingReadStore(s.pool)
	profiles := repository.NewProfileRepository(s.pool)
	s.cmds = commands.NewBookingCommands(unit, views, profiles, nil, clock.NewRealClock())
	s.avail = queries.NewAvailabilityQueries(readstore.NewAvailabilityReadStore(s.pool), nil, 30)
}

func TestBookingSuite(t *testing.T) {
	suite.Run(t, new(BookingSuite))
}

func (s *BookingSuite) requestor() commands.Requestor {
	return commands.Requestor{ClientID: uuid.New(), Email: "client@example.com", Role: identity.RoleClient}
}

func (s *BookingSuite) params(startHour int) commands.CreateBookingParams {
	start := s.day.Add(time.Duration(startHour) * time.Hour)
	return commands.CreateBookingParams{
		ServiceID:  s.serviceID,
		ProviderID: s.providerID,
		Start:      start,
		End:        start.Add(time.Hour),
		Contact:    commands.ContactParams{Name: "Dana Reyes", Email: "dana@example.com"},
	}
}

func (s *BookingSuite) ledgerState(entryID uuid.UUID) string {
	var state string
	err := s.pool.QueryRow(context.Background(),
		`SELECT state FROM slot_ledger WHERE id = $1`, entryID).Scan(&state)
	require.NoError(s.T(), err)
	return state
}

func (s *BookingSuite) reservationRow(id uuid.UUID) (status string, start time.Time, entryID uuid.UUID) {
	err := s.pool.QueryRow(context.Background(),
		`SELECT status, start_time, ledger_entry_id FROM reservations WHERE id = $1`, id).
		Scan(&status, &start, &entryID)
	require.NoError(s.T(), err)
	return status, start, entryID
}

func (s *BookingSuite) TestConcurrentClaimsOnlyOneWins() {
	ctx := context.Background()
	params := s.params(9)

	const racers = 8
	var wg sync.WaitGroup
	errsCh := make(chan error, racers)

	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.cmds.CreateBooking(ctx, s.requestor(), params)
			errsCh <- err
		}()
	}
	wg.Wait()
	close(errsCh)

	var wins, conflicts int
	for err := range errsCh {
		switch {
		case err == nil:
			wins++
		default:
			s.Require().ErrorIs(err, errs.ErrSlotUnavailable)
			conflicts++
		}
	}
	s.Equal(1, wins, "exactly one racer books the window")
	s.Equal(racers-1, conflicts)

	var occupied int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM slot_ledger
		 WHERE provider_id = $1 AND start_time = $2 AND state = 'occupied'`,
		s.providerID, params.Start).Scan(&occupied)
	s.Require().NoError(err)
	s.Equal(1, occupied)
}

func (s *BookingSuite) TestCancelReleasesTheWindow() {
	ctx := context.Background()
	req := s.requestor()

	created, err := s.cmds.CreateBooking(ctx, req, s.params(11))
	s.Require().NoError(err)
	_, _, entryID := s.reservationRow(created.ID)

	cancelled, err := s.cmds.CancelBooking(ctx, req, created.ID)
	s.Require().NoError(err)
	s.Equal("cancelled", cancelled.Status)
	s.Equal("open", s.ledgerState(entryID))

	// Released window is immediately bookable by someone else.
	_, err = s.cmds.CreateBooking(ctx, s.requestor(), s.params(11))
	s.Require().NoError(err)
}

func (s *BookingSuite) TestRescheduleIsAtomic() {
	ctx := context.Background()
	req := s.requestor()

	booked, err := s.cmds.CreateBooking(ctx, req, s.params(13))
	s.Require().NoError(err)
	_, err = s.cmds.CreateBooking(ctx, s.requestor(), s.params(14))
	s.Require().NoError(err)

	_, _, oldEntryID := s.reservationRow(booked.ID)

	s.Run("lost claim leaves the booking untouched", func() {
		_, err := s.cmds.RescheduleBooking(ctx, req, booked.ID, commands.RescheduleParams{
			Start: s.day.Add(14 * time.Hour),
			End:   s.day.Add(15 * time.Hour),
		})
		s.Require().ErrorIs(err, errs.ErrSlotUnavailable)

		status, start, entryID := s.reservationRow(booked.ID)
		s.Equal("pending", status)
		s.True(start.Equal(s.day.Add(13 * time.Hour)))
		s.Equal(oldEntryID, entryID)
		s.Equal("occupied", s.ledgerState(oldEntryID))
	})

	s.Run("successful move swaps ledger entries", func() {
		moved, err := s.cmds.RescheduleBooking(ctx, req, booked.ID, commands.RescheduleParams{
			Start: s.day.Add(15 * time.Hour),
			End:   s.day.Add(16 * time.Hour),
		})
		s.Require().NoError(err)
		s.True(moved.Start.Equal(s.day.Add(15 * time.Hour)))

		_, _, newEntryID := s.reservationRow(booked.ID)
		s.NotEqual(oldEntryID, newEntryID)
		s.Equal("open", s.ledgerState(oldEntryID))
		s.Equal("occupied", s.ledgerState(newEntryID))
	})
}

func (s *BookingSuite) TestAvailabilityExcludesBookedWindows() {
	ctx := context.Background()

	created, err := s.cmds.CreateBooking(ctx, s.requestor(), s.params(17))
	s.Require().NoError(err)

	candidates, err := s.avail.Candidates(ctx, s.serviceID, s.day, true)
	s.Require().NoError(err)
	s.NotEmpty(candidates)
	for _, c := range candidates {
		overlap := c.Start.Before(created.End) && created.Start.Before(c.End)
		s.False(overlap, "candidate %s overlaps the booked window", c.Start)
	}
}

func (s *BookingSuite) TestOutboxDeliversNotificationIntents() {
	ctx := context.Background()

	created, err := s.cmds.CreateBooking(ctx, s.requestor(), s.params(10))
	s.Require().NoError(err)

	var pending int
	err = s.pool.QueryRow(ctx,
		`SELECT count(*) FROM notification_jobs WHERE reservation_id = $1 AND done_at IS NULL`,
		created.ID).Scan(&pending)
	s.Require().NoError(err)
	s.Equal(2, pending, "one intent per audience rides the booking commit")

	dispatcher := outbox.NewDispatcher(s.pool, outbox.NewLogSender("owner@test.local"), config.OutboxConfig{
		PollInterval: 50 * time.Millisecond,
		BatchSize:    20,
		MaxAttempts:  3,
		OwnerEmail:   "owner@test.local",
	})

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		dispatcher.Run(runCtx)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		err = s.pool.QueryRow(ctx,
			`SELECT count(*) FROM notification_jobs WHERE reservation_id = $1 AND done_at IS NULL`,
			created.ID).Scan(&pending)
		s.Require().NoError(err)
		if pending == 0 {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	cancel()
	<-done

	s.Equal(0, pending, "all intents delivered and marked done")
}

func (s *BookingSuite) TestLedgerRejectsOverlapAtTheConstraintLevel() {
	ctx := context.Background()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO slot_ledger (provider_id, start_time, end_time, state)
		 VALUES ($1, $2, $3, 'held')`,
		s.providerID, s.day.Add(12*time.Hour), s.day.Add(13*time.Hour))
	s.Require().NoError(err)

	// A second blocking row on an intersecting range must be rejected even
	// when the application-level serialization is bypassed.
	_, err = s.pool.Exec(ctx,
		`INSERT INTO slot_ledger (provider_id, start_time, end_time, state)
		 VALUES ($1, $2, $3, 'held')`,
		s.providerID, s.day.Add(12*time.Hour+30*time.Minute), s.day.Add(13*time.Hour+30*time.Minute))
	s.Require().Error(err)
	s.Contains(err.Error(), "slot_ledger_no_overlap")
}
