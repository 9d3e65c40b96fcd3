package types

import (
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/samber/lo"
)

// DocumentStatus is the user-driven lifecycle status of a document.
// There are no automatic transitions between these states.
type DocumentStatus string

const (
	DocumentStatusDraft    DocumentStatus = "DRAFT"
	DocumentStatusPending  DocumentStatus = "PENDING"
	DocumentStatusApproved DocumentStatus = "APPROVED"
	DocumentStatusRejected DocumentStatus = "REJECTED"
)

func (s DocumentStatus) String() string {
	return string(s)
}

func (s DocumentStatus) Validate() error {
	allowed := []DocumentStatus{
		DocumentStatusDraft,
		DocumentStatusPending,
		DocumentStatusApproved,
		DocumentStatusRejected,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid document status").
			WithHintf("allowed statuses are: %v", allowed).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// OCRStatus is the machine-driven extraction state of a document.
// Transitions are monotonic (PENDING -> PROCESSING -> COMPLETED | FAILED)
// except FAILED -> PROCESSING which is reachable only via an explicit re-queue.
type OCRStatus string

const (
	OCRStatusPending    OCRStatus = "PENDING"
	OCRStatusProcessing OCRStatus = "PROCESSING"
	OCRStatusCompleted  OCRStatus = "COMPLETED"
	OCRStatusFailed     OCRStatus = "FAILED"
)

func (s OCRStatus) String() string {
	return string(s)
}

func (s OCRStatus) Validate() error {
	allowed := []OCRStatus{
		OCRStatusPending,
		OCRStatusProcessing,
		OCRStatusCompleted,
		OCRStatusFailed,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid ocr status").
			WithHintf("allowed statuses are: %v", allowed).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CanTransitionTo reports whether the transition from s to next is allowed.
func (s OCRStatus) CanTransitionTo(next OCRStatus) bool {
	allowedTransitions := map[OCRStatus][]OCRStatus{
		OCRStatusPending:    {OCRStatusProcessing, OCRStatusFailed},
		OCRStatusProcessing: {OCRStatusCompleted, OCRStatusFailed},
		OCRStatusFailed:     {OCRStatusProcessing},
	}
	return lo.Contains(allowedTransitions[s], next)
}

// IngestionSource identifies the channel a document arrived through.
type IngestionSource string

const (
	IngestionSourceGmail    IngestionSource = "GMAIL"
	IngestionSourceIMAP     IngestionSource = "IMAP"
	IngestionSourceWhatsApp IngestionSource = "WHATSAPP"
	IngestionSourceManual   IngestionSource = "MANUAL"
	IngestionSourceEmail    IngestionSource = "EMAIL"
)

func (s IngestionSource) String() string {
	return string(s)
}

func (s IngestionSource) Validate() error {
	allowed := []IngestionSource{
		IngestionSourceGmail,
		IngestionSourceIMAP,
		IngestionSourceWhatsApp,
		IngestionSourceManual,
		IngestionSourceEmail,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid ingestion source").
			WithHintf("allowed sources are: %v", allowed).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// OCRProvider identifies a text-detection backend.
type OCRProvider string

const (
	OCRProviderGoogleVision OCRProvider = "GOOGLE_VISION"
	OCRProviderAWSTextract  OCRProvider = "AWS_TEXTRACT"
)

func (p OCRProvider) String() string {
	return string(p)
}

func (p OCRProvider) Validate() error {
	allowed := []OCRProvider{
		OCRProviderGoogleVision,
		OCRProviderAWSTextract,
	}
	if !lo.Contains(allowed, p) {
		return ierr.NewError("invalid ocr provider").
			WithHintf("allowed providers are: %v", allowed).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// AuditAction identifies an audit log entry kind.
type AuditAction string

const (
	AuditActionCreate     AuditAction = "CREATE"
	AuditActionUpdate     AuditAction = "UPDATE"
	AuditActionDelete     AuditAction = "DELETE"
	AuditActionExport     AuditAction = "EXPORT"
	AuditActionOCRProcess AuditAction = "OCR_PROCESS"
)

func (a AuditAction) String() string {
	return string(a)
}

// ExportFormat identifies the output format of an export job.
type ExportFormat string

const (
	ExportFormatExcel ExportFormat = "excel"
)

func (f ExportFormat) String() string {
	return string(f)
}
