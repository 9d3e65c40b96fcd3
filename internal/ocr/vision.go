package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/segal-ziv/smartbill/internal/config"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/httpclient"
	"github.com/segal-ziv/smartbill/internal/logger"
	"github.com/segal-ziv/smartbill/internal/types"
)

// visionProvider calls the Google Vision images:annotate REST endpoint
// with an API key. Document text detection covers both photographed and
// scanned invoices.
type visionProvider struct {
	client   httpclient.Client
	endpoint string
	apiKey   string
	logger   *logger.Logger
}

// NewVisionProvider creates the Google Vision text-detection provider.
func NewVisionProvider(cfg *config.Configuration, client httpclient.Client, logger *logger.Logger) (Provider, error) {
	if cfg.OCR.APIKey == "" {
		return nil, ierr.NewError("vision api key not configured").
			WithHint("set the OCR api key before enabling extraction").
			Mark(ierr.ErrInvalidOperation)
	}

	return &visionProvider{
		client:   client,
		endpoint: cfg.OCR.EndpointURL,
		apiKey:   cfg.OCR.APIKey,
		logger:   logger,
	}, nil
}

func (p *visionProvider) Name() types.OCRProvider {
	return types.OCRProviderGoogleVision
}

type visionRequest struct {
	Requests []visionAnnotateRequest `json:"requests"`
}

type visionAnnotateRequest struct {
	Image    visionImage     `json:"image"`
	Features []visionFeature `json:"features"`
}

type visionImage struct {
	Content string `json:"content"`
}

type visionFeature struct {
	Type string `json:"type"`
}

type visionResponse struct {
	Responses []visionAnnotateResponse `json:"responses"`
}

type visionAnnotateResponse struct {
	FullTextAnnotation *visionFullText          `json:"fullTextAnnotation"`
	TextAnnotations    []map[string]interface{} `json:"textAnnotations"`
	Error              *visionError             `json:"error"`
}

type visionFullText struct {
	Text  string       `json:"text"`
	Pages []visionPage `json:"pages"`
}

type visionPage struct {
	Confidence float64 `json:"confidence"`
}

type visionError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Recognize implements Provider.
func (p *visionProvider) Recognize(ctx context.Context, fileBytes []byte, mimeType string) (*Recognition, error) {
	reqBody, err := json.Marshal(visionRequest{
		Requests: []visionAnnotateRequest{
			{
				Image:    visionImage{Content: base64.StdEncoding.EncodeToString(fileBytes)},
				Features: []visionFeature{{Type: "DOCUMENT_TEXT_DETECTION"}},
			},
		},
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to build vision request").
			Mark(ierr.ErrSystem)
	}

	resp, err := p.client.Send(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    fmt.Sprintf("%s?key=%s", p.endpoint, p.apiKey),
		Body:   reqBody,
	})
	if err != nil {
		if httpErr, ok := httpclient.IsHTTPError(err); ok && !httpErr.Retryable() {
			return nil, ierr.WithError(err).
				WithHint("vision rejected the document").
				Mark(ierr.ErrExtraction)
		}
		return nil, err
	}

	var parsed visionResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to decode vision response").
			Mark(ierr.ErrHTTPClient)
	}

	if len(parsed.Responses) == 0 {
		return nil, ierr.NewError("vision returned no responses").
			Mark(ierr.ErrExtraction)
	}

	annotate := parsed.Responses[0]
	if annotate.Error != nil {
		return nil, ierr.NewErrorf("vision error %d: %s", annotate.Error.Code, annotate.Error.Message).
			Mark(ierr.ErrExtraction)
	}

	if annotate.FullTextAnnotation == nil || annotate.FullTextAnnotation.Text == "" {
		return nil, ierr.NewError("vision detected no text in document").
			Mark(ierr.ErrExtraction)
	}

	confidence := 0.0
	if len(annotate.FullTextAnnotation.Pages) > 0 {
		confidence = annotate.FullTextAnnotation.Pages[0].Confidence
	}

	annotations := map[string]interface{}{}
	if len(annotate.TextAnnotations) > 0 {
		annotations["text_annotations"] = annotate.TextAnnotations
	}

	return &Recognition{
		FullText:    annotate.FullTextAnnotation.Text,
		Confidence:  confidence,
		Annotations: annotations,
	}, nil
}
