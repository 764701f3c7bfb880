package outbox

import (
	"context"
	"encoding/json"
	"log/slog"

	"slotbook/internal/usecase/shared"
)

// LogSender writes each notification to the structured log instead of an
// external channel. It stands in for a mail or SMS integration; swapping it
// out only touches the Sender binding.
type LogSender struct {
	ownerEmail string
}

func NewLogSender(ownerEmail string) Sender {
	return &LogSender{ownerEmail: ownerEmail}
}

func (s *LogSender) Send(_ context.Context, job PendingJob) error {
	var payload map[string]any
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		// A malformed payload will never become deliverable; log and drop.
		slog.Error("notification payload unreadable, dropping",
			"job_id", job.ID, "reservation_id", job.ReservationID)
		return nil
	}

	recipient := "client"
	if job.Audience == string(shared.AudienceOwner) {
		recipient = s.ownerEmail
	}

	slog.Info("notification delivered",
		"job_id", job.ID,
		"reservation_id", job.ReservationID,
		"recipient", recipient,
		"kind", job.Kind,
		"status", payload["status"],
		"start", payload["start"],
	)
	return nil
}
