package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "loom/contexts/content-sharing/sharing-workflow-service/application"
	"loom/contexts/content-sharing/sharing-workflow-service/ports"
)

// OutboxRelay drains pending sharing outbox rows to the event bus.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.SharingEventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("sharing outbox list failed",
			"event", "sharing_outbox_list_failed",
			"module", "content-sharing/sharing-workflow-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		var event ports.SharingEvent
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			return err
		}
		if err := r.Publisher.PublishSharingEvent(ctx, event); err != nil {
			logger.Error("sharing outbox publish failed",
				"event", "sharing_outbox_publish_failed",
				"module", "content-sharing/sharing-workflow-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			return err
		}
	}
	return nil
}
