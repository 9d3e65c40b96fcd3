package queue

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segal-ziv/smartbill/internal/config"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/logger"
	"github.com/segal-ziv/smartbill/internal/pubsub"
	memoryPubsub "github.com/segal-ziv/smartbill/internal/pubsub/memory"
	"github.com/segal-ziv/smartbill/internal/sentry"
	"github.com/segal-ziv/smartbill/internal/types"
)

// testQueue has no named policy, so jobs run once with no retries and
// no rate limit. That keeps failure tests fast.
const testQueue = Name("test")

func newWorkerFixture(t *testing.T, name Name, handler Handler) (*Worker, pubsub.PubSub, func()) {
	t.Helper()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelError
	log, err := logger.NewLogger(cfg)
	require.NoError(t, err)

	ps := memoryPubsub.NewPubSub(log)
	registry := NewKeyRegistry()
	sentrySvc := sentry.NewSentryService(cfg, log)
	w := NewWorker(name, handler, ps, registry, sentrySvc, log)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = w.Run(ctx)
	}()

	cleanup := func() {
		cancel()
		_ = ps.Close()
	}
	return w, ps, cleanup
}

func testEnqueuer(t *testing.T, ps pubsub.Publisher) *Enqueuer {
	t.Helper()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelError
	log, err := logger.NewLogger(cfg)
	require.NoError(t, err)
	return NewEnqueuer(ps, log)
}

func TestWorkerProcessesJob(t *testing.T) {
	var got atomic.Value
	w, ps, cleanup := newWorkerFixture(t, testQueue, func(ctx context.Context, payload []byte) error {
		got.Store(string(payload))
		return nil
	})
	defer cleanup()
	enq := testEnqueuer(t, ps)

	err := enq.Enqueue(context.Background(), testQueue, "job-1", map[string]string{"k": "v"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(w.History().Completed()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.JSONEq(t, `{"k":"v"}`, got.Load().(string))

	record := w.History().Completed()[0]
	assert.Equal(t, testQueue, record.Queue)
	assert.Equal(t, "job-1", record.Key)
	assert.Equal(t, 1, record.Attempts)
}

func TestWorkerRecordsTerminalFailure(t *testing.T) {
	w, ps, cleanup := newWorkerFixture(t, testQueue, func(ctx context.Context, payload []byte) error {
		return ierr.NewError("no text detected").Mark(ierr.ErrExtraction)
	})
	defer cleanup()
	enq := testEnqueuer(t, ps)

	err := enq.Enqueue(context.Background(), testQueue, "job-2", map[string]string{})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(w.History().Failed()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	record := w.History().Failed()[0]
	assert.Equal(t, JobFailed, record.Status)
	assert.Equal(t, 1, record.Attempts)
	assert.Contains(t, record.Error, "no text detected")
	assert.Empty(t, w.History().Completed())
}

func TestWorkerReleasesKeyAfterJob(t *testing.T) {
	w, ps, cleanup := newWorkerFixture(t, testQueue, func(ctx context.Context, payload []byte) error {
		return nil
	})
	defer cleanup()
	enq := testEnqueuer(t, ps)

	require.NoError(t, enq.Enqueue(context.Background(), testQueue, "job-3", map[string]string{}))

	require.Eventually(t, func() bool {
		return len(w.History().Completed()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// the key is free for the next enqueue of the same unit of work
	require.Eventually(t, func() bool {
		return !w.registry.IsActive("job-3")
	}, time.Second, 10*time.Millisecond)
}

// A job that fails in the worker must stay requeueable from any other
// process. The publisher holds no key state, so a second enqueuer with
// nothing shared beyond the transport gets its delivery processed.
func TestRequeueFromSeparateEnqueuerIsProcessed(t *testing.T) {
	var calls atomic.Int32
	w, ps, cleanup := newWorkerFixture(t, testQueue, func(ctx context.Context, payload []byte) error {
		if calls.Add(1) == 1 {
			return ierr.NewError("no text detected").Mark(ierr.ErrExtraction)
		}
		return nil
	})
	defer cleanup()

	ctx := context.Background()
	first := testEnqueuer(t, ps)
	require.NoError(t, first.Enqueue(ctx, testQueue, "ocr-doc-1", map[string]string{"run": "1"}))

	require.Eventually(t, func() bool {
		return len(w.History().Failed()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.False(t, w.registry.IsActive("ocr-doc-1"))

	second := testEnqueuer(t, ps)
	require.NoError(t, second.Enqueue(ctx, testQueue, "ocr-doc-1", map[string]string{"run": "2"}))

	require.Eventually(t, func() bool {
		return len(w.History().Completed()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())
}

// While a key is being processed, a duplicate delivery of the same key
// is dropped instead of running the handler twice.
func TestWorkerSkipsDuplicateDeliveryOfActiveKey(t *testing.T) {
	gate := make(chan struct{})
	var calls atomic.Int32
	w, ps, cleanup := newWorkerFixture(t, QueueIngestion, func(ctx context.Context, payload []byte) error {
		calls.Add(1)
		<-gate
		return nil
	})
	defer cleanup()
	enq := testEnqueuer(t, ps)

	ctx := context.Background()
	require.NoError(t, enq.Enqueue(ctx, QueueIngestion, "ingestion-u1-GMAIL", map[string]string{"n": "1"}))

	require.Eventually(t, func() bool {
		return w.registry.IsActive("ingestion-u1-GMAIL")
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, enq.Enqueue(ctx, QueueIngestion, "ingestion-u1-GMAIL", map[string]string{"n": "2"}))

	// the duplicate is acked without reaching the handler
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	close(gate)
	require.Eventually(t, func() bool {
		return len(w.History().Completed()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestBackoffPolicyShapes(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelError
	log, err := logger.NewLogger(cfg)
	require.NoError(t, err)

	ps := memoryPubsub.NewPubSub(log)
	defer ps.Close()
	sentrySvc := sentry.NewSentryService(cfg, log)

	fixed := NewWorker(QueueExport, nil, ps, NewKeyRegistry(), sentrySvc, log)
	policy := fixed.backoffPolicy(context.Background())
	assert.Equal(t, 3*time.Second, policy.NextBackOff())
	// the retry budget is one re-run
	assert.Equal(t, backoff.Stop, policy.NextBackOff())

	expo := NewWorker(QueueOCR, nil, ps, NewKeyRegistry(), sentrySvc, log)
	policy = expo.backoffPolicy(context.Background())
	first := policy.NextBackOff()
	second := policy.NextBackOff()
	assert.Equal(t, 2*time.Second, first)
	assert.Greater(t, second, first)
}
