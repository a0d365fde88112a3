package paysuite

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"strings"

	"github.com/shopspring/decimal"
)

const StatusSuccess = "success"

// Response is a parsed API envelope: {"status": ..., "data": {...}, "message": ...}.
// It is built once from the raw body and never changes afterwards.
type Response struct {
	raw        string
	content    map[string]interface{}
	status     string
	data       map[string]interface{}
	message    string
	hasMessage bool
}

// NewResponse parses raw. Bodies that are not a JSON object are rejected with
// a malformed-response API error instead of yielding an empty envelope.
func NewResponse(raw string) (*Response, error) {
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()

	var content map[string]interface{}
	if err := decoder.Decode(&content); err != nil {
		return nil, NewAPIError("Malformed response from server", ErrCodeMalformedResponse, 0).WithCause(err)
	}
	if content == nil {
		return nil, NewAPIError("Malformed response from server", ErrCodeMalformedResponse, 0).
			WithCause(errors.New("expected a JSON object, got null"))
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, NewAPIError("Malformed response from server", ErrCodeMalformedResponse, 0).
			WithCause(errors.New("unexpected data after JSON object"))
	}

	r := &Response{
		raw:     raw,
		content: content,
		data:    map[string]interface{}{},
	}
	if status, ok := content["status"].(string); ok {
		r.status = status
	}
	if data, ok := content["data"].(map[string]interface{}); ok {
		r.data = data
	}
	if message, ok := content["message"].(string); ok {
		r.message = message
		r.hasMessage = true
	}
	return r, nil
}

func (r *Response) IsSuccess() bool {
	return r.status == StatusSuccess
}

func (r *Response) Status() string {
	return r.status
}

// Data returns a shallow copy of the data object; it is never nil.
func (r *Response) Data() map[string]interface{} {
	return maps.Clone(r.data)
}

func (r *Response) Message() (string, bool) {
	return r.message, r.hasMessage
}

// Content returns a shallow copy of the whole envelope.
func (r *Response) Content() map[string]interface{} {
	return maps.Clone(r.content)
}

// Raw returns the body the response was parsed from.
func (r *Response) Raw() string {
	return r.raw
}

func (r *Response) Reference() (string, bool) {
	return r.stringField("reference")
}

func (r *Response) CheckoutURL() (string, bool) {
	return r.stringField("checkout_url")
}

// Amount reads data.amount, which the API sends either as a number or as a
// decimal string. A value that is not numeric, such as "abc", reports false;
// RawAmount returns it unparsed.
func (r *Response) Amount() (decimal.Decimal, bool) {
	value, ok := r.data["amount"]
	if !ok || value == nil {
		return decimal.Zero, false
	}
	amount, err := ParseAmount(value)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

// RawAmount returns data.amount exactly as decoded: a json.Number, string or
// whatever else the server sent.
func (r *Response) RawAmount() (interface{}, bool) {
	value, ok := r.data["amount"]
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

// Payment decodes the data object into a Payment.
func (r *Response) Payment() (*Payment, error) {
	body, err := json.Marshal(r.data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment data: %w", err)
	}
	var p Payment
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to decode payment data: %w", err)
	}
	return &p, nil
}

func (r *Response) stringField(key string) (string, bool) {
	switch v := r.data[key].(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	}
	return "", false
}
