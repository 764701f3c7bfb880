package repository

import (
	"context"

	"slotbook/internal/infra"
	"slotbook/internal/infra/db"
	"slotbook/internal/usecase/shared"
)

// OutboxRepository writes notification intents. All inserts happen inside the
// booking transaction; the dispatcher in infra/outbox reads them back.
type OutboxRepository struct {
	dbtx db.DBTX
}

func NewOutboxRepository(dbtx db.DBTX) *OutboxRepository {
	return &OutboxRepository{dbtx: dbtx}
}

func (r *OutboxRepository) Enqueue(ctx context.Context, job shared.OutboxJob) error {
	_, err := r.dbtx.Exec(ctx, `
		INSERT INTO notification_jobs (reservation_id, audience, kind, payload, run_at)
		VALUES ($1, $2, $3, $4, $5)
	`, job.ReservationID, string(job.Audience), job.Kind, job.Payload, job.RunAt)
	if err != nil {
		return infra.WrapRepoErr("failed to enqueue notification job", err)
	}
	return nil
}
