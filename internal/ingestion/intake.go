package ingestion

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/samber/lo"

	"github.com/segal-ziv/smartbill/internal/domain/document"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/types"
)

// RawIntake is the normalized form every source adapter produces:
// file bytes plus provenance. It is consumed immediately by the
// ingestion coordinator and never persisted.
type RawIntake struct {
	Source     types.IngestionSource
	OwnerID    string
	FileName   string
	MimeType   string
	Data       []byte
	Provenance map[string]interface{}
	// SupplierID is set when the adapter already matched a supplier,
	// e.g. by sender email domain.
	SupplierID *string
}

// Ingester turns a RawIntake into a persisted Document and schedules
// its OCR job. Implemented by the ingestion service.
type Ingester interface {
	Ingest(ctx context.Context, intake *RawIntake) (*document.Document, error)
}

// uploadExtensions is the direct-upload allow-list.
var uploadExtensions = []string{"pdf", "jpg", "jpeg", "png", "webp", "heic", "heif"}

// mailExtensions is the narrower allow-list for mailbox attachments.
var mailExtensions = []string{"pdf", "jpg", "jpeg", "png"}

var contentTypeByExtension = map[string]string{
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"heic": "image/heic",
	"heif": "image/heif",
}

// FileExtension returns the lower-cased extension without the dot.
func FileExtension(fileName string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
}

// ContentTypeForExtension derives the storage-facing content type from
// the file extension.
func ContentTypeForExtension(fileName string) string {
	if ct, ok := contentTypeByExtension[FileExtension(fileName)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// IsInvoiceAttachment reports whether a mailbox attachment file name
// looks like an invoice document.
func IsInvoiceAttachment(fileName string) bool {
	return lo.Contains(mailExtensions, FileExtension(fileName))
}

// ValidateUpload rejects direct uploads before any storage write:
// extension allow-list, size cap, and a content sniff so a renamed
// executable cannot pass as an image.
func ValidateUpload(fileName string, data []byte, maxSizeBytes int64) error {
	ext := FileExtension(fileName)
	if !lo.Contains(uploadExtensions, ext) {
		return ierr.NewError("unsupported file type").
			WithHintf("supported extensions are: %v", uploadExtensions).
			WithReportableDetails(map[string]any{
				"file_name": fileName,
				"extension": ext,
			}).
			Mark(ierr.ErrValidation)
	}

	if maxSizeBytes > 0 && int64(len(data)) > maxSizeBytes {
		return ierr.NewError("file exceeds the maximum upload size").
			WithReportableDetails(map[string]any{
				"file_name": fileName,
				"size":      len(data),
				"max_size":  maxSizeBytes,
			}).
			Mark(ierr.ErrValidation)
	}

	if len(data) == 0 {
		return ierr.NewError("file is empty").
			Mark(ierr.ErrValidation)
	}

	kind, err := filetype.Match(data)
	if err == nil && kind != filetype.Unknown {
		if !lo.Contains(uploadExtensions, kind.Extension) {
			return ierr.NewError("file content does not match a supported type").
				WithReportableDetails(map[string]any{
					"file_name":     fileName,
					"detected_type": kind.MIME.Value,
				}).
				Mark(ierr.ErrValidation)
		}
	}

	return nil
}

// DomainFromAddress extracts the bare domain from an email sender
// header such as `"ACME Ltd" <billing@acme.co.il>`.
func DomainFromAddress(address string) string {
	address = strings.TrimSpace(address)
	if start := strings.LastIndex(address, "<"); start >= 0 {
		if end := strings.Index(address[start:], ">"); end > 0 {
			address = address[start+1 : start+end]
		}
	}
	at := strings.LastIndex(address, "@")
	if at < 0 || at == len(address)-1 {
		return ""
	}
	return strings.ToLower(address[at+1:])
}
