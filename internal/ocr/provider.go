package ocr

import (
	"context"

	"github.com/segal-ziv/smartbill/internal/types"
)

// Recognition is the raw output of a text-detection provider.
type Recognition struct {
	FullText    string
	Confidence  float64
	Annotations map[string]interface{}
}

// Provider is the capability interface for text detection. One call per
// document file; implementations must be safe for concurrent use.
type Provider interface {
	Recognize(ctx context.Context, fileBytes []byte, mimeType string) (*Recognition, error)
	Name() types.OCRProvider
}
