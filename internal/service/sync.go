package service

import (
	"context"

	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/idempotency"
	"github.com/segal-ziv/smartbill/internal/ingestion"
	"github.com/segal-ziv/smartbill/internal/queue"
	"github.com/segal-ziv/smartbill/internal/types"
)

// SyncService triggers and runs mailbox synchronization passes for the
// pull-based sources.
type SyncService interface {
	// Enqueue schedules an async sync job for the given source.
	Enqueue(ctx context.Context, source types.IngestionSource) error

	// Sync runs one pass against the source's mailbox and reports how
	// many documents were ingested.
	Sync(ctx context.Context, source types.IngestionSource) (int, error)
}

type syncService struct {
	ServiceParams
	gmail *ingestion.GmailAdapter
	imap  *ingestion.IMAPAdapter
}

func NewSyncService(params ServiceParams, gmail *ingestion.GmailAdapter, imap *ingestion.IMAPAdapter) SyncService {
	return &syncService{
		ServiceParams: params,
		gmail:         gmail,
		imap:          imap,
	}
}

func (s *syncService) Enqueue(ctx context.Context, source types.IngestionSource) error {
	ownerID := types.GetOwnerID(ctx)
	if ownerID == "" {
		return ierr.NewError("owner is required for sync").
			Mark(ierr.ErrValidation)
	}
	if source != types.IngestionSourceGmail && source != types.IngestionSourceIMAP {
		return ierr.NewError("source does not support sync").
			WithReportableDetails(map[string]any{"source": source}).
			Mark(ierr.ErrValidation)
	}

	return s.Enqueuer.Enqueue(ctx, queue.QueueIngestion,
		idempotency.IngestionJobKey(ownerID, string(source)),
		queue.IngestionJobPayload{
			OwnerID: ownerID,
			Source:  source,
		})
}

func (s *syncService) Sync(ctx context.Context, source types.IngestionSource) (int, error) {
	switch source {
	case types.IngestionSourceGmail:
		return s.gmail.Sync(ctx)
	case types.IngestionSourceIMAP:
		return s.imap.Sync(ctx)
	default:
		return 0, ierr.NewError("source does not support sync").
			WithReportableDetails(map[string]any{"source": source}).
			Mark(ierr.ErrValidation)
	}
}
