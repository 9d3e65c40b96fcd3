package worker

import (
	"context"
	"encoding/json"

	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/logger"
	"github.com/segal-ziv/smartbill/internal/queue"
	"github.com/segal-ziv/smartbill/internal/service"
	"github.com/segal-ziv/smartbill/internal/types"
)

// OCRHandler decodes OCR job payloads and runs the extraction pipeline.
func OCRHandler(svc service.OCRService) queue.Handler {
	return func(ctx context.Context, payload []byte) error {
		var job queue.OCRJobPayload
		if err := json.Unmarshal(payload, &job); err != nil {
			return ierr.WithError(err).
				WithHint("malformed ocr job payload").
				Mark(ierr.ErrValidation)
		}
		ctx = types.SetOwnerID(ctx, job.OwnerID)
		return svc.Process(ctx, job.DocumentID)
	}
}

// IngestionHandler decodes sync job payloads and runs one mailbox pass.
func IngestionHandler(svc service.SyncService, log *logger.Logger) queue.Handler {
	return func(ctx context.Context, payload []byte) error {
		var job queue.IngestionJobPayload
		if err := json.Unmarshal(payload, &job); err != nil {
			return ierr.WithError(err).
				WithHint("malformed ingestion job payload").
				Mark(ierr.ErrValidation)
		}
		ctx = types.SetOwnerID(ctx, job.OwnerID)

		count, err := svc.Sync(ctx, job.Source)
		if err != nil {
			return err
		}
		log.Infow("mailbox sync finished",
			"owner_id", job.OwnerID,
			"source", job.Source,
			"ingested", count,
		)
		return nil
	}
}

// ExportHandler decodes export job payloads and builds the spreadsheet.
func ExportHandler(svc service.ExportService, log *logger.Logger) queue.Handler {
	return func(ctx context.Context, payload []byte) error {
		var job queue.ExportJobPayload
		if err := json.Unmarshal(payload, &job); err != nil {
			return ierr.WithError(err).
				WithHint("malformed export job payload").
				Mark(ierr.ErrValidation)
		}
		ctx = types.SetOwnerID(ctx, job.OwnerID)

		result, err := svc.Generate(ctx, &job.Filter)
		if err != nil {
			return err
		}
		log.Infow("export job finished",
			"owner_id", job.OwnerID,
			"record_count", result.RecordCount,
			"file_name", result.FileName,
		)
		return nil
	}
}
