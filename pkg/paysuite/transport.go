package paysuite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultErrorMessage = "Unknown error occurred"

// Request is what the client hands to a Transport: a fully built URL, the
// headers to send, and an optional JSON body.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Transport sends one request and returns the raw response body. Failures
// must be returned as API errors.
type Transport interface {
	Send(ctx context.Context, req *Request) (string, error)
}

// TransportFunc adapts a plain function to Transport.
type TransportFunc func(ctx context.Context, req *Request) (string, error)

func (f TransportFunc) Send(ctx context.Context, req *Request) (string, error) {
	return f(ctx, req)
}

// HTTPTransport is the default Transport on top of net/http.
type HTTPTransport struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewHTTPTransport uses httpClient when given, otherwise a client with
// timeout. The timeout also bounds every request context.
func NewHTTPTransport(httpClient *http.Client, timeout time.Duration) *HTTPTransport {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTPTransport{
		httpClient: httpClient,
		timeout:    timeout,
	}
}

func (t *HTTPTransport) Send(ctx context.Context, req *Request) (string, error) {
	ctx, cancel := withTimeout(ctx, t.timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return "", NewTransportError(fmt.Errorf("failed to create HTTP request: %w", err))
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return "", NewTransportError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewTransportError(fmt.Errorf("failed to read response body: %w", err))
	}

	return interpretResponse(resp.StatusCode, payload)
}

// interpretResponse maps an HTTP status and body to either the raw body or an
// API error.
func interpretResponse(statusCode int, payload []byte) (string, error) {
	if statusCode >= http.StatusBadRequest {
		return "", NewAPIError(errorMessage(payload), ErrCodeHTTPStatus, statusCode)
	}
	if isEmptyBody(string(payload)) {
		return "", NewAPIError(ErrEmptyResponse.Message, ErrCodeEmptyResponse, statusCode)
	}
	return string(payload), nil
}

// isEmptyBody treats a blank body and a bare "0" alike; neither carries an
// envelope.
func isEmptyBody(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw == "" || raw == "0"
}

func errorMessage(payload []byte) string {
	var envelope struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil || envelope.Message == nil {
		return defaultErrorMessage
	}
	return *envelope.Message
}

// withTimeout bounds ctx by duration unless duration is zero or negative.
func withTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, duration)
}
