package queue

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cenkalti/backoff/v4"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"

	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/logger"
	"github.com/segal-ziv/smartbill/internal/pubsub"
	"github.com/segal-ziv/smartbill/internal/sentry"
)

// Handler processes one job payload. Returning an error marked with
// ierr.ErrExtraction (or wrapped in backoff.Permanent) stops further
// retries for that job.
type Handler func(ctx context.Context, payload []byte) error

// Worker consumes one queue: bounded concurrency, optional rate limit,
// and in-process retry per the queue policy. Messages are always acked;
// at-least-once redelivery is owned by the retry budget here, not by
// the transport.
type Worker struct {
	name     Name
	policy   Policy
	handler  Handler
	pubsub   pubsub.Subscriber
	registry *KeyRegistry
	history  *History
	limiter  *rate.Limiter
	sentry   *sentry.Service
	logger   *logger.Logger
}

func NewWorker(
	name Name,
	handler Handler,
	subscriber pubsub.Subscriber,
	registry *KeyRegistry,
	sentrySvc *sentry.Service,
	log *logger.Logger,
) *Worker {
	policy := PolicyFor(name)

	var limiter *rate.Limiter
	if policy.RateLimit > 0 {
		limiter = rate.NewLimiter(policy.RateLimit, int(policy.RateLimit))
	}

	return &Worker{
		name:     name,
		policy:   policy,
		handler:  handler,
		pubsub:   subscriber,
		registry: registry,
		history:  NewHistory(policy),
		limiter:  limiter,
		sentry:   sentrySvc,
		logger:   log.With("queue", name),
	}
}

// History exposes the worker's finished-job records.
func (w *Worker) History() *History {
	return w.history
}

// Run consumes jobs until the context is cancelled or the subscription
// channel closes.
func (w *Worker) Run(ctx context.Context) error {
	messages, err := w.pubsub.Subscribe(ctx, w.name.Topic())
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to subscribe to queue topic").
			Mark(ierr.ErrSystem)
	}

	w.logger.Infow("queue worker started",
		"concurrency", w.policy.Concurrency,
		"max_attempts", w.policy.MaxAttempts,
	)

	p := pool.New().WithMaxGoroutines(w.policy.Concurrency)
	for msg := range messages {
		msg := msg
		p.Go(func() {
			w.processMessage(ctx, msg)
		})
	}
	p.Wait()

	w.logger.Infow("queue worker stopped")
	return nil
}

func (w *Worker) processMessage(ctx context.Context, msg *message.Message) {
	// The transport never redelivers: retries are owned here, terminal
	// failures go to the failed set.
	defer msg.Ack()

	// Acquire and release happen in this process: a key held here means
	// the same logical job is already being processed by another
	// goroutine, so the duplicate delivery is dropped.
	key := msg.Metadata.Get(metadataJobKey)
	if !w.registry.TryAcquire(key) {
		w.logger.Debugw("skipping duplicate job, key already processing",
			"job_key", key,
		)
		return
	}
	defer w.registry.Release(key)

	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			return
		}
	}

	span, spanCtx := w.sentry.StartJobSpan(ctx, string(w.name), key)
	if spanCtx != nil {
		ctx = spanCtx
	}
	if span != nil {
		defer span.Finish()
	}

	attempts := 0
	operation := func() error {
		attempts++
		err := w.handler(ctx, msg.Payload)
		if err == nil {
			return nil
		}
		if ierr.IsExtraction(err) || ierr.IsValidation(err) {
			return backoff.Permanent(err)
		}
		w.logger.Warnw("job attempt failed",
			"job_key", key,
			"attempt", attempts,
			"error", err,
		)
		return err
	}

	err := backoff.Retry(operation, w.backoffPolicy(ctx))

	record := JobRecord{
		Queue:      w.name,
		Key:        key,
		Attempts:   attempts,
		FinishedAt: time.Now().UTC(),
	}

	if err != nil {
		record.Status = JobFailed
		record.Error = err.Error()
		w.history.Record(record)
		w.sentry.CaptureException(err)
		w.logger.Errorw("job failed terminally",
			"job_key", key,
			"attempts", attempts,
			"error", err,
		)
		return
	}

	record.Status = JobCompleted
	w.history.Record(record)
	w.logger.Debugw("job completed",
		"job_key", key,
		"attempts", attempts,
	)
}

func (w *Worker) backoffPolicy(ctx context.Context) backoff.BackOffContext {
	var policy backoff.BackOff
	if w.policy.FixedBackoff {
		policy = backoff.NewConstantBackOff(w.policy.InitialBackoff)
	} else {
		expo := backoff.NewExponentialBackOff()
		expo.InitialInterval = w.policy.InitialBackoff
		expo.RandomizationFactor = 0
		policy = expo
	}

	policy = backoff.WithMaxRetries(policy, uint64(w.policy.MaxAttempts-1))
	return backoff.WithContext(policy, ctx)
}
