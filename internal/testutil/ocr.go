package testutil

import (
	"context"

	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/ocr"
	"github.com/segal-ziv/smartbill/internal/types"
)

// StubOCRProvider returns canned recognition output, or fails a set
// number of times first.
type StubOCRProvider struct {
	Text       string
	Confidence float64

	// FailuresLeft makes Recognize return a retryable error this many
	// times before succeeding.
	FailuresLeft int

	// Permanent makes every failure a non-retryable extraction error.
	Permanent bool

	Calls int
}

func (p *StubOCRProvider) Recognize(ctx context.Context, fileBytes []byte, mimeType string) (*ocr.Recognition, error) {
	p.Calls++
	if p.FailuresLeft > 0 {
		p.FailuresLeft--
		if p.Permanent {
			return nil, ierr.NewError("no text detected").
				Mark(ierr.ErrExtraction)
		}
		return nil, ierr.NewError("provider unavailable").
			Mark(ierr.ErrHTTPClient)
	}
	return &ocr.Recognition{
		FullText:   p.Text,
		Confidence: p.Confidence,
	}, nil
}

func (p *StubOCRProvider) Name() types.OCRProvider {
	return types.OCRProviderGoogleVision
}
