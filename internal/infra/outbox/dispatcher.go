package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"slotbook/internal/pkg/config"
)

// PendingJob is a notification intent read back from the outbox table.
type PendingJob struct {
	ID            uuid.UUID
	ReservationID uuid.UUID
	Audience      string
	Kind          string
	Payload       []byte
	Attempts      int
}

// Sender delivers one notification. Implementations must tolerate duplicate
// delivery: a crash between send and mark-done redelivers the job.
type Sender interface {
	Send(ctx context.Context, job PendingJob) error
}

// Dispatcher drains notification_jobs in batches. FOR UPDATE SKIP LOCKED
// lets multiple instances poll concurrently without double-claiming a job.
type Dispatcher struct {
	pool   *pgxpool.Pool
	sender Sender
	cfg    config.OutboxConfig
}

func NewDispatcher(pool *pgxpool.Pool, sender Sender, cfg config.OutboxConfig) *Dispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &Dispatcher{pool: pool, sender: sender, cfg: cfg}
}

func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.processBatch(ctx); err != nil {
				slog.Error("notification batch failed", "error", err.Error())
			}
		}
	}
}

func (d *Dispatcher) processBatch(ctx context.Context) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	jobs, err := fetchDue(ctx, tx, d.cfg.BatchSize)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return tx.Commit(ctx)
	}

	for _, job := range jobs {
		if err := d.sender.Send(ctx, job); err != nil {
			attempts := job.Attempts + 1
			if err := markFailed(ctx, tx, job.ID, attempts, d.cfg.MaxAttempts, err.Error()); err != nil {
				return err
			}
			slog.Warn("notification delivery failed",
				"job_id", job.ID,
				"kind", job.Kind,
				"attempt", attempts,
				"error", err.Error())
			continue
		}
		if err := markDone(ctx, tx, job.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func fetchDue(ctx context.Context, tx pgx.Tx, limit int) ([]PendingJob, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, reservation_id, audience, kind, payload, attempts
		FROM notification_jobs
		WHERE done_at IS NULL AND run_at <= now()
		ORDER BY run_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []PendingJob
	for rows.Next() {
		var j PendingJob
		if err := rows.Scan(&j.ID, &j.ReservationID, &j.Audience, &j.Kind, &j.Payload, &j.Attempts); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return jobs, nil
}

func markDone(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE notification_jobs
		SET done_at = now(), last_error = NULL
		WHERE id = $1
	`, id)
	return err
}

// markFailed reschedules with linear backoff until the attempt budget is
// spent, then parks the job as done with the error recorded.
func markFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID, attempts, maxAttempts int, lastErr string) error {
	if attempts >= maxAttempts {
		_, err := tx.Exec(ctx, `
			UPDATE notification_jobs
			SET done_at = now(), attempts = $2, last_error = $3
			WHERE id = $1
		`, id, attempts, lastErr)
		return err
	}
	_, err := tx.Exec(ctx, `
		UPDATE notification_jobs
		SET attempts = $2,
			last_error = $3,
			run_at = now() + make_interval(secs => 30 * $2)
		WHERE id = $1
	`, id, attempts, lastErr)
	return err
}
