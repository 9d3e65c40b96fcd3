package idempotency

import "fmt"

// OCRJobKey returns the deduplication key for an OCR job. At most one
// pending or running OCR job exists per document.
func OCRJobKey(documentID string) string {
	return fmt.Sprintf("ocr-%s", documentID)
}

// IngestionJobKey returns the deduplication key for a mailbox sync
// job. At most one sync per owner and source runs at a time.
func IngestionJobKey(ownerID, source string) string {
	return fmt.Sprintf("ingestion-%s-%s", ownerID, source)
}

// ExportJobKey returns the deduplication key for an export job.
func ExportJobKey(ownerID string, unixTimestamp int64) string {
	return fmt.Sprintf("export-%s-%d", ownerID, unixTimestamp)
}
