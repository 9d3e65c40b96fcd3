package queue

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/logger"
	"github.com/segal-ziv/smartbill/internal/pubsub"
)

const metadataJobKey = "job_key"

// Enqueuer publishes jobs onto the queue transport. Publishing is
// unconditional; duplicate suppression happens at the consumer, where
// the KeyRegistry lives, so a job key never outlives the process that
// releases it.
type Enqueuer struct {
	publisher pubsub.Publisher
	logger    *logger.Logger
}

func NewEnqueuer(publisher pubsub.Publisher, logger *logger.Logger) *Enqueuer {
	return &Enqueuer{
		publisher: publisher,
		logger:    logger,
	}
}

// Enqueue publishes a job to the named queue, tagging it with the
// idempotency key the worker dedups on.
func (e *Enqueuer) Enqueue(ctx context.Context, queue Name, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to serialize job payload").
			Mark(ierr.ErrSystem)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(metadataJobKey, key)

	if err := e.publisher.Publish(ctx, queue.Topic(), msg); err != nil {
		return ierr.WithError(err).
			WithHint("failed to publish job").
			WithReportableDetails(map[string]any{
				"queue":   queue,
				"job_key": key,
			}).
			Mark(ierr.ErrSystem)
	}

	e.logger.Debugw("enqueued job",
		"queue", queue,
		"job_key", key,
	)
	return nil
}
