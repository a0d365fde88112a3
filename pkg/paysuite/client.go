// Package paysuite is a client for the PaySuite payments API.
//
// A Client creates payment requests and looks them up by id:
//
//	client, err := paysuite.NewClient(token)
//	if err != nil {
//		return err
//	}
//	resp, err := client.CreatePayment(ctx, paysuite.Payload{
//		"amount":      "100.50",
//		"reference":   "INV1001",
//		"description": "Order #1001",
//		"return_url":  "https://example.com/return",
//	})
//
// Errors are *AppError values; use IsValidationError, IsAPIError and
// IsInvalidArgument to tell them apart. A response whose envelope status is
// "error" is not a Go error: check Response.IsSuccess.
package paysuite

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/frahmantamala/paysuite/pkg/logger"
)

const (
	DefaultBaseURL = "https://paysuite.tech/api/v1"
	DefaultTimeout = 30 * time.Second
)

type Client struct {
	mu    sync.RWMutex
	token string

	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	transport  Transport
	logger     *slog.Logger
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the http.Client used by the default transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTransport overrides how requests are sent. It takes precedence over
// WithHTTPClient.
func WithTransport(transport Transport) Option {
	return func(c *Client) {
		c.transport = transport
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient fails with an invalid-argument error when token is empty or only
// whitespace.
func NewClient(token string, opts ...Option) (*Client, error) {
	token, err := normalizeToken(token)
	if err != nil {
		return nil, err
	}

	c := &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.transport == nil {
		c.transport = NewHTTPTransport(c.httpClient, c.timeout)
	}
	if c.logger == nil {
		c.logger = logger.L()
	}

	return c, nil
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) error {
	token, err := normalizeToken(token)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// CreatePayment validates data and submits it with POST /payments.
func (c *Client) CreatePayment(ctx context.Context, data Payload) (*Response, error) {
	log := c.log(ctx)

	if err := ValidatePaymentPayload(data); err != nil {
		log.Debug("paysuite: payment request rejected", "error", err)
		return nil, err
	}

	body, err := json.Marshal(data)
	if err != nil {
		return nil, NewAPIError("Failed to encode payment request", ErrCodeEncodeFailed, 0).WithCause(err)
	}

	log.Debug("paysuite: creating payment request",
		"reference", data["reference"],
		"amount", data["amount"])

	resp, err := c.do(ctx, http.MethodPost, "payments", body)
	if err != nil {
		log.Error("paysuite: create payment failed",
			"reference", data["reference"],
			"error", err)
		return nil, err
	}

	log.Info("paysuite: payment request created",
		"reference", data["reference"],
		"status", resp.Status())

	return resp, nil
}

// GetPayment fetches a payment request by its UUID with GET /payments/{id}.
func (c *Client) GetPayment(ctx context.Context, id string) (*Response, error) {
	log := c.log(ctx)

	if err := ValidatePaymentID(id); err != nil {
		log.Debug("paysuite: payment id rejected", "payment_id", id, "error", err)
		return nil, err
	}

	log.Debug("paysuite: getting payment request", "payment_id", id)

	resp, err := c.do(ctx, http.MethodGet, "payments/"+url.PathEscape(id), nil)
	if err != nil {
		log.Error("paysuite: get payment failed",
			"payment_id", id,
			"error", err)
		return nil, err
	}

	log.Info("paysuite: payment request retrieved",
		"payment_id", id,
		"status", resp.Status())

	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*Response, error) {
	req := &Request{
		Method: method,
		URL:    c.baseURL + "/" + path,
		Header: c.headers(),
		Body:   body,
	}

	raw, err := c.transport.Send(ctx, req)
	if err != nil {
		if _, ok := IsAppError(err); ok {
			return nil, err
		}
		return nil, NewTransportError(err)
	}
	if isEmptyBody(raw) {
		return nil, NewAPIError(ErrEmptyResponse.Message, ErrCodeEmptyResponse, 0)
	}

	return NewResponse(raw)
}

func (c *Client) headers() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("Authorization", fmt.Sprintf("Bearer %s", c.Token()))
	return h
}

func (c *Client) log(ctx context.Context) *slog.Logger {
	if l, ok := logger.FromContext(ctx); ok {
		return l
	}
	return c.logger
}

func normalizeToken(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", NewInvalidArgumentError(ErrEmptyToken.Message, ErrCodeEmptyToken)
	}
	return token, nil
}
