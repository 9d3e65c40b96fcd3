package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	ierr "github.com/segal-ziv/smartbill/internal/errors"
)

// Request is a transport-agnostic HTTP request. Body, when set, is sent
// as JSON unless the headers say otherwise.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response carries the status, body and first value of each header.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// Client sends outbound HTTP requests. The OCR provider and webhook
// media fetches go through this so tests can stub the transport.
type Client interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

type defaultClient struct {
	client *http.Client
}

// NewDefaultClient returns a Client with a timeout sized for OCR
// requests, which upload whole documents inline.
func NewDefaultClient() Client {
	return NewClientWithTimeout(60 * time.Second)
}

// NewClientWithTimeout returns a Client with an explicit timeout.
func NewClientWithTimeout(timeout time.Duration) Client {
	return &defaultClient{
		client: &http.Client{Timeout: timeout},
	}
}

func (c *defaultClient) Send(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("invalid outbound request").
			Mark(ierr.ErrHTTPClient)
	}

	if req.Body != nil {
		httpReq.ContentLength = int64(len(req.Body))
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("upstream request failed").
			Mark(ierr.ErrHTTPClient)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to read upstream response").
			Mark(ierr.ErrHTTPClient)
	}

	headers := make(map[string]string, len(resp.Header))
	for k, v := range resp.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	if resp.StatusCode >= 400 {
		return nil, NewError(resp.StatusCode, respBody)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Headers:    headers,
	}, nil
}
