package queue

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/segal-ziv/smartbill/internal/types"
)

// Name identifies one of the job queues.
type Name string

const (
	QueueIngestion Name = "ingestion"
	QueueOCR       Name = "ocr"
	QueueExport    Name = "export"
)

// Topic returns the transport topic messages for this queue flow over.
func (n Name) Topic() string {
	return string(n) + "_jobs"
}

// Retention bounds how much finished-job metadata a queue keeps around
// for operational inspection.
type Retention struct {
	MaxCount int
	MaxAge   time.Duration
}

// Policy is the per-queue execution contract: bounded concurrency,
// optional throughput limit, retry budget and backoff shape.
type Policy struct {
	Concurrency    int
	RateLimit      rate.Limit // jobs per second, 0 means unlimited
	MaxAttempts    int
	InitialBackoff time.Duration
	FixedBackoff   bool

	CompletedRetention Retention
	FailedRetention    Retention
}

// PolicyFor returns the execution policy for the given queue.
func PolicyFor(name Name) Policy {
	switch name {
	case QueueOCR:
		return Policy{
			Concurrency:        5,
			RateLimit:          10,
			MaxAttempts:        3,
			InitialBackoff:     2 * time.Second,
			CompletedRetention: Retention{MaxCount: 100, MaxAge: 24 * time.Hour},
			FailedRetention:    Retention{MaxCount: 500, MaxAge: 7 * 24 * time.Hour},
		}
	case QueueIngestion:
		return Policy{
			Concurrency:        3,
			MaxAttempts:        3,
			InitialBackoff:     5 * time.Second,
			CompletedRetention: Retention{MaxCount: 100, MaxAge: 24 * time.Hour},
			FailedRetention:    Retention{MaxCount: 500, MaxAge: 7 * 24 * time.Hour},
		}
	case QueueExport:
		return Policy{
			Concurrency:        2,
			MaxAttempts:        2,
			InitialBackoff:     3 * time.Second,
			FixedBackoff:       true,
			CompletedRetention: Retention{MaxCount: 50, MaxAge: 24 * time.Hour},
			FailedRetention:    Retention{MaxCount: 100, MaxAge: 7 * 24 * time.Hour},
		}
	default:
		return Policy{
			Concurrency:    1,
			MaxAttempts:    1,
			InitialBackoff: time.Second,
		}
	}
}

// OCRJobPayload asks the OCR worker to process a single document. The
// file bytes are always pulled fresh from storage, never carried on the
// queue.
type OCRJobPayload struct {
	DocumentID string `json:"document_id"`
	OwnerID    string `json:"owner_id"`
}

// IngestionJobPayload asks the ingestion worker to run a mailbox sync
// pass for one user.
type IngestionJobPayload struct {
	OwnerID string                `json:"owner_id"`
	Source  types.IngestionSource `json:"source"`
}

// ExportJobPayload asks the export worker to build a spreadsheet for
// the documents matching the filter.
type ExportJobPayload struct {
	OwnerID     string               `json:"owner_id"`
	RequestedAt int64                `json:"requested_at"`
	Filter      types.DocumentFilter `json:"filter"`
}
