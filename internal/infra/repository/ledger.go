package repository

import (
	"context"
	"errors"
	"hash/fnv"
	"time"

	"slotbook/internal/domain/schedule"
	"slotbook/internal/infra"
	"slotbook/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgErrCodeExclusionViolation = "23P01"

const defaultClaimLockWait = 3 * time.Second

// LedgerRepository owns every state transition of slot_ledger rows. It must
// run inside the caller's transaction: a claim that commits alone would leave
// a held row with no reservation bound to it.
type LedgerRepository struct {
	dbtx     db.DBTX
	lockWait time.Duration
}

func NewLedgerRepository(dbtx db.DBTX, lockWait time.Duration) *LedgerRepository {
	if lockWait <= 0 {
		lockWait = defaultClaimLockWait
	}
	return &LedgerRepository{dbtx: dbtx, lockWait: lockWait}
}

// Claim serializes against concurrent claims for the same provider and day
// with a transaction-scoped advisory lock, re-checks for overlap, then
// inserts the window as held. The exclusion constraint on slot_ledger is the
// backstop: even without the lock, two overlapping inserts cannot both
// commit.
//
// The lock wait is bounded by lockWait: a contended claim fails as a timeout
// instead of blocking the request indefinitely.
func (r *LedgerRepository) Claim(ctx context.Context, providerID uuid.UUID, window schedule.TimeWindow) (uuid.UUID, error) {
	lockKey := claimLockKey(providerID, window.Start())
	lockCtx, cancel := context.WithTimeout(ctx, r.lockWait)
	defer cancel()
	if _, err := r.dbtx.Exec(lockCtx, `SELECT pg_advisory_xact_lock($1)`, lockKey); err != nil {
		return uuid.Nil, wrapLedgerErr("failed to acquire claim lock", err)
	}

	var blocked bool
	err := r.dbtx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM slot_ledger
			WHERE provider_id = $1
				AND state IN ('held', 'occupied')
				AND start_time < $3
				AND end_time > $2
		)
	`, providerID, window.Start(), window.End()).Scan(&blocked)
	if err != nil {
		return uuid.Nil, wrapLedgerErr("failed to check window occupancy", err)
	}
	if blocked {
		return uuid.Nil, infra.WrapRepoErr("window already held or occupied", schedule.ErrWindowConflict, infra.KindConflict)
	}

	var entryID uuid.UUID
	err = r.dbtx.QueryRow(ctx, `
		INSERT INTO slot_ledger (provider_id, start_time, end_time, state)
		VALUES ($1, $2, $3, 'held')
		RETURNING id
	`, providerID, window.Start(), window.End()).Scan(&entryID)
	if err != nil {
		return uuid.Nil, wrapLedgerErr("failed to insert held entry", err)
	}
	return entryID, nil
}

// Release reopens the entry and clears its back-reference. Releasing an
// already-open entry is a no-op so cancel stays idempotent.
func (r *LedgerRepository) Release(ctx context.Context, entryID uuid.UUID) error {
	_, err := r.dbtx.Exec(ctx, `
		UPDATE slot_ledger
		SET state = 'open', reservation_id = NULL, updated_at = now()
		WHERE id = $1
	`, entryID)
	if err != nil {
		return wrapLedgerErr("failed to release ledger entry", err)
	}
	return nil
}

// Bind transitions held to occupied, stamping the reservation reference.
func (r *LedgerRepository) Bind(ctx context.Context, entryID, reservationID uuid.UUID) error {
	tag, err := r.dbtx.Exec(ctx, `
		UPDATE slot_ledger
		SET state = 'occupied', reservation_id = $2, updated_at = now()
		WHERE id = $1 AND state = 'held'
	`, entryID, reservationID)
	if err != nil {
		return wrapLedgerErr("failed to bind ledger entry", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("entry is not held", schedule.ErrEntryNotHeld, infra.KindConflict)
	}
	return nil
}

func (r *LedgerRepository) FindEntry(ctx context.Context, entryID uuid.UUID) (*schedule.LedgerEntry, error) {
	var entry schedule.LedgerEntry
	var state string
	err := r.dbtx.QueryRow(ctx, `
		SELECT id, provider_id, start_time, end_time, state, reservation_id, updated_at
		FROM slot_ledger
		WHERE id = $1
	`, entryID).Scan(
		&entry.ID,
		&entry.ProviderID,
		&entry.StartTime,
		&entry.EndTime,
		&state,
		&entry.ReservationID,
		&entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("ledger entry not found", schedule.ErrEntryNotFound, infra.KindNotFound)
		}
		return nil, wrapLedgerErr("failed to find ledger entry", err)
	}
	entry.State = schedule.EntryState(state)
	return &entry, nil
}

func (r *LedgerRepository) CountActiveReservations(ctx context.Context, entryID uuid.UUID) (int, error) {
	var count int
	err := r.dbtx.QueryRow(ctx, `
		SELECT COUNT(*) FROM reservations
		WHERE ledger_entry_id = $1 AND status IN ('pending', 'confirmed')
	`, entryID).Scan(&count)
	if err != nil {
		return 0, wrapLedgerErr("failed to count entry reservations", err)
	}
	return count, nil
}

// SweepStaleHolds reopens held entries older than maxAge. Holds normally
// commit or roll back with their transaction; survivors are crash leftovers.
// Runs against the pool directly since it is a standalone maintenance pass.
func SweepStaleHolds(ctx context.Context, pool *pgxpool.Pool, maxAge time.Duration) (int64, error) {
	tag, err := pool.Exec(ctx, `
		UPDATE slot_ledger
		SET state = 'open', reservation_id = NULL, updated_at = now()
		WHERE state = 'held' AND updated_at < now() - make_interval(secs => $1)
	`, maxAge.Seconds())
	if err != nil {
		return 0, wrapLedgerErr("failed to sweep stale holds", err)
	}
	return tag.RowsAffected(), nil
}

// claimLockKey folds provider id and calendar day into the advisory lock
// keyspace. Collisions only cost extra serialization, never correctness.
func claimLockKey(providerID uuid.UUID, start time.Time) int64 {
	h := fnv.New64a()
	h.Write(providerID[:])
	day := start.UTC().Format("2006-01-02")
	h.Write([]byte(day))
	// #nosec G115 -- advisory lock keys use the full signed range
	return int64(h.Sum64())
}

func wrapLedgerErr(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeExclusionViolation {
		return infra.WrapRepoErr(msg, err, infra.KindConflict)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return infra.WrapRepoErr(msg, err, infra.KindTimeout)
	}
	return infra.WrapRepoErr(msg, err)
}
